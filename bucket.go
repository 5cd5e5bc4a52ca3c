package filehashjoin

import "github.com/gostonefire/filehashjoin/internal/model"

// Bucket - One partition of both relations: an ordered list of page ids per side together with the number of
// records those pages hold. Pages are only ever appended.
type Bucket struct {
	pages  [2][]model.PageID
	counts [2]int64
}

// NewBucket - Returns a pointer to a new empty Bucket
func NewBucket() *Bucket {
	return &Bucket{}
}

// AddPage - Appends a page to the list of a side.
//   - side is the relation the page belongs to
//   - pageID is the id of the page in the page store
//   - recordCount is the number of records on the page, as known by whoever flushed it
func (B *Bucket) AddPage(side model.Side, pageID model.PageID, recordCount int) {
	B.pages[side] = append(B.pages[side], pageID)
	B.counts[side] += int64(recordCount)
}

// Pages - Returns a copy of the page list of a side
func (B *Bucket) Pages(side model.Side) []model.PageID {
	pages := make([]model.PageID, len(B.pages[side]))
	copy(pages, B.pages[side])
	return pages
}

// RecordCount - Returns the total number of records on the pages of a side
func (B *Bucket) RecordCount(side model.Side) int64 {
	return B.counts[side]
}
