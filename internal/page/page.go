package page

import (
	"fmt"

	"github.com/gostonefire/filehashjoin/fhjerrors"
	"github.com/gostonefire/filehashjoin/internal/conf"
	"github.com/gostonefire/filehashjoin/internal/model"
)

// Page - A fixed capacity ordered sequence of records, or of joined pairs, as held by a buffer slot.
// A record page holds up to RecordsPerPage records. A pair page uses two record entries per pair and thus
// holds up to RecordsPerPage/2 pairs, which keeps both kinds at the same size on disk.
type Page struct {
	kind    model.PageKind
	layout  model.PageLayout
	records []model.Record
	pairs   []model.Pair
}

// New - Returns a pointer to a new empty Page of the given kind
func New(kind model.PageKind, layout model.PageLayout) *Page {
	p := &Page{kind: kind, layout: layout}
	p.records = make([]model.Record, 0, layout.RecordsPerPage)
	p.pairs = make([]model.Pair, 0, layout.RecordsPerPage/2)
	return p
}

// Size - Returns the page size in bytes on disk for a given layout
func Size(layout model.PageLayout) int64 {
	return conf.PageHeaderLength + layout.RecordsPerPage*(conf.StateBytes+layout.KeyLength+layout.ValueLength)
}

// Kind - Returns what the page currently holds
func (P *Page) Kind() model.PageKind {
	return P.kind
}

// Layout - Returns the page layout
func (P *Page) Layout() model.PageLayout {
	return P.layout
}

// Size - Returns the number of records, or pairs for a pair page, currently held
func (P *Page) Size() int {
	if P.kind == model.PairPage {
		return len(P.pairs)
	}
	return len(P.records)
}

// Capacity - Returns the maximum number of records, or pairs for a pair page
func (P *Page) Capacity() int {
	if P.kind == model.PairPage {
		return int(P.layout.RecordsPerPage / 2)
	}
	return int(P.layout.RecordsPerPage)
}

// IsFull - Returns true if no more records, or pairs, can be appended
func (P *Page) IsFull() bool {
	return P.Size() >= P.Capacity()
}

// IsEmpty - Returns true if the page holds nothing
func (P *Page) IsEmpty() bool {
	return P.Size() == 0
}

// RecordAt - Returns record i of a record page
func (P *Page) RecordAt(i int) model.Record {
	return P.records[i]
}

// PairAt - Returns pair i of a pair page
func (P *Page) PairAt(i int) model.Pair {
	return P.pairs[i]
}

// AppendRecord - Appends a record to a record page.
// It returns an error of type fhjerrors.PageFull if the page is at capacity, the page is never overfilled.
func (P *Page) AppendRecord(record model.Record) (err error) {
	if P.kind != model.RecordPage {
		err = fmt.Errorf("can not append a record to a page of kind %d", P.kind)
		return
	}
	if err = P.checkRecord(record); err != nil {
		return
	}
	if P.IsFull() {
		err = fhjerrors.PageFull{}
		return
	}

	P.records = append(P.records, record)

	return
}

// AppendPair - Appends a joined pair to a pair page.
//   - build is the record from the in-memory side
//   - probe is the record from the streamed side
//   - buildSide is the relation build came from
//
// It returns an error of type fhjerrors.PageFull if the page is at capacity.
func (P *Page) AppendPair(build, probe model.Record, buildSide model.Side) (err error) {
	if P.kind != model.PairPage {
		err = fmt.Errorf("can not append a pair to a page of kind %d", P.kind)
		return
	}
	if err = P.checkRecord(build); err != nil {
		return
	}
	if err = P.checkRecord(probe); err != nil {
		return
	}
	if P.IsFull() {
		err = fhjerrors.PageFull{}
		return
	}

	P.pairs = append(P.pairs, model.Pair{Build: build, Probe: probe, BuildSide: buildSide})

	return
}

// Clear - Removes all records and pairs, the kind is kept
func (P *Page) Clear() {
	P.records = P.records[:0]
	P.pairs = P.pairs[:0]
}

// ClearAs - Removes all records and pairs and changes the kind of the page
func (P *Page) ClearAs(kind model.PageKind) {
	P.Clear()
	P.kind = kind
}

// checkRecord - Verifies that key and value conform to the page layout
func (P *Page) checkRecord(record model.Record) (err error) {
	if int64(len(record.Key)) != P.layout.KeyLength {
		err = fmt.Errorf("wrong length of key, should be %d", P.layout.KeyLength)
		return
	}
	if int64(len(record.Value)) != P.layout.ValueLength {
		err = fmt.Errorf("wrong length of value, should be %d", P.layout.ValueLength)
		return
	}

	return
}
