package filehashjoin

import (
	"github.com/gostonefire/filehashjoin/fhjerrors"
	"github.com/gostonefire/filehashjoin/internal/model"
	"github.com/gostonefire/filehashjoin/internal/page"
	pair "github.com/notEpsilon/go-pair"
	"github.com/pkg/errors"
)

// WriteRelation - Packs records into full record pages and appends them to the page store.
//   - records are the records of the relation in the order they should be stored, key and value lengths must
//     be as given in the Config
//
// It returns:
//   - pageRange is the range of contiguous pages written, it is empty if records is empty
//   - err is a standard error, if something went wrong
func (F *FileHashJoin) WriteRelation(records []Record) (pageRange PageRange, err error) {
	start := PageID(F.store.NumPages())
	pageRange = PageRange{Start: start, End: start}

	pg := page.New(model.RecordPage, F.layout)
	write := func() (werr error) {
		_, werr = F.store.AllocateAndWrite(pg.Bytes())
		if werr != nil {
			return
		}
		pageRange.End++
		pg.Clear()
		return
	}

	for i, record := range records {
		if pg.IsFull() {
			if err = write(); err != nil {
				return
			}
		}
		if err = pg.AppendRecord(record); err != nil {
			err = errors.Wrapf(err, "%s: record %d", fhjerrors.PhaseRelation, i)
			return
		}
	}
	if !pg.IsEmpty() {
		err = write()
	}

	F.logger.WithField("pages", pageRange.Len()).Debug("relation written")

	return
}

// ReadRelation - Returns the records stored in a page range, in stored order
//   - pageRange is a range as returned by WriteRelation
//
// It returns:
//   - records are the records of all pages in the range
//   - err is either of type fhjerrors.InvalidRange, fhjerrors.CorruptPage or a standard error
func (F *FileHashJoin) ReadRelation(pageRange PageRange) (records []Record, err error) {
	if err = checkRange(pageRange, fhjerrors.PhaseRelation); err != nil {
		return
	}

	pg := page.New(model.RecordPage, F.layout)
	records = make([]Record, 0, pageRange.Len()*F.layout.RecordsPerPage)
	for pageID := pageRange.Start; pageID < pageRange.End; pageID++ {
		if err = F.readPage(pg, pageID); err != nil {
			records = nil
			return
		}
		if pg.Kind() != model.RecordPage {
			records = nil
			err = fhjerrors.NewCorruptPage(fhjerrors.PhaseRelation, int64(pageID), "expected a record page")
			return
		}
		for i := 0; i < pg.Size(); i++ {
			records = append(records, pg.RecordAt(i))
		}
	}

	return
}

// ReadResult - Decodes joined pairs from result pages as returned by Join or Probe.
// Regardless of which side was built in memory, every pair is returned as left record first and right record second.
//   - pages are result page ids
//
// It returns:
//   - pairs are the joined pairs in result order
//   - err is either of type fhjerrors.CorruptPage or a standard error
func (F *FileHashJoin) ReadResult(pages []PageID) (pairs []pair.Pair[Record, Record], err error) {
	pg := page.New(model.PairPage, F.layout)
	pairs = make([]pair.Pair[Record, Record], 0, int64(len(pages))*F.layout.RecordsPerPage/2)
	for _, pageID := range pages {
		if err = F.readPage(pg, pageID); err != nil {
			pairs = nil
			return
		}
		if pg.Kind() != model.PairPage {
			pairs = nil
			err = fhjerrors.NewCorruptPage(fhjerrors.PhaseRelation, int64(pageID), "expected a result page")
			return
		}
		for i := 0; i < pg.Size(); i++ {
			left, right := pg.PairAt(i).LeftRight()
			pairs = append(pairs, pair.Pair[Record, Record]{First: left, Second: right})
		}
	}

	return
}

// readPage - Reads and decodes one page outside the buffer pool
func (F *FileHashJoin) readPage(pg *page.Page, pageID PageID) (err error) {
	data, err := F.store.ReadPage(pageID)
	if err != nil {
		return
	}

	err = withPhase(pg.Load(data, pageID), fhjerrors.PhaseRelation)

	return
}
