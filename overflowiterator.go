package filehashjoin

import "github.com/gostonefire/filehashjoin/internal/model"

// spill - A build page written to disk because its sub-bucket buffer was full
type spill struct {
	pageID    model.PageID
	subBucket int
}

// spillBatches - Is used to iterate over spilled build pages in batches that fit the sub-bucket slots.
type spillBatches struct {
	spills    []spill
	batchSize int
	position  int
}

// newSpillBatches - Returns a pointer to a new spillBatches struct
//   - spills are the spilled pages of one bucket in the order they were written
//   - batchSize is the number of pages that can be held in memory at once (B-2)
func newSpillBatches(spills []spill, batchSize int) *spillBatches {

	return &spillBatches{
		spills:    spills,
		batchSize: batchSize,
	}
}

// hasNext - Returns true if there are more batches to be fetched from a call to next.
func (S *spillBatches) hasNext() bool {
	return S.position < len(S.spills)
}

// next - Returns the next batch, which is empty once all batches are consumed.
func (S *spillBatches) next() (batch []spill) {
	end := S.position + S.batchSize
	if end > len(S.spills) {
		end = len(S.spills)
	}

	batch = S.spills[S.position:end]
	S.position = end

	return
}
