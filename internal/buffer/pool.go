package buffer

import (
	"fmt"

	"github.com/gostonefire/filehashjoin/internal/model"
	"github.com/gostonefire/filehashjoin/internal/page"
	"github.com/gostonefire/filehashjoin/internal/storage"
	"github.com/pkg/errors"
)

// Pool - A fixed set of in-memory page slots in front of a page store. Slots are addressed by index and never
// evicted on their own: what a slot holds is decided entirely by the caller, which binds each slot to a role
// for the duration of a phase.
type Pool struct {
	store  storage.DiskStore
	layout model.PageLayout
	slots  []*page.Page
}

// NewPool - Returns a pointer to a new Pool with all slots empty
//   - size is the number of slots (B)
//   - store is the page store to load from and flush to
//   - layout is the page layout of every slot
func NewPool(size int, store storage.DiskStore, layout model.PageLayout) (pool *Pool, err error) {
	if size <= 0 {
		err = fmt.Errorf("buffer pool size must be a positive value higher than 0 (zero)")
		return
	}
	if store.PageSize() != page.Size(layout) {
		err = fmt.Errorf("page store page size %d differs from layout page size %d", store.PageSize(), page.Size(layout))
		return
	}

	pool = &Pool{store: store, layout: layout, slots: make([]*page.Page, size)}
	for i := range pool.slots {
		pool.slots[i] = page.New(model.RecordPage, layout)
	}

	return
}

// Size - Returns the number of slots
func (P *Pool) Size() int {
	return len(P.slots)
}

// Slot - Returns the page held by slot i. The page must not be retained past the loop iteration that asked for it.
func (P *Pool) Slot(i int) *page.Page {
	return P.slots[i]
}

// LoadFromDisk - Reads a page from the store into slot i, replacing what the slot held
func (P *Pool) LoadFromDisk(pageID model.PageID, i int) (err error) {
	data, err := P.store.ReadPage(pageID)
	if err != nil {
		return
	}

	err = P.slots[i].Load(data, pageID)

	return
}

// FlushToDisk - Writes slot i to a newly allocated page and clears the slot.
// It returns:
//   - pageID is the id of the new page
//   - count is the number of records (or pairs) the page holds, so callers never need to read it back
//   - err is a standard error, if something went wrong the slot is left untouched
func (P *Pool) FlushToDisk(i int) (pageID model.PageID, count int, err error) {
	pg := P.slots[i]

	pageID, err = P.store.AllocateAndWrite(pg.Bytes())
	if err != nil {
		err = errors.Wrapf(err, "error while flushing buffer slot %d", i)
		return
	}
	count = pg.Size()
	pg.Clear()

	return
}

// ClearSlot - Empties slot i
func (P *Pool) ClearSlot(i int) {
	P.slots[i].Clear()
}

// Reset - Empties every slot and binds them back to record pages
func (P *Pool) Reset() {
	for _, pg := range P.slots {
		pg.ClearAs(model.RecordPage)
	}
}

// InUse - Returns the number of slots currently holding anything
func (P *Pool) InUse() (n int) {
	for _, pg := range P.slots {
		if !pg.IsEmpty() {
			n++
		}
	}

	return
}

// Stats - Returns the read and write counters of the underlying store
func (P *Pool) Stats() model.IOStats {
	return P.store.Stats()
}
