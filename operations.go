package filehashjoin

import (
	"errors"

	"github.com/gostonefire/filehashjoin/fhjerrors"
	"github.com/gostonefire/filehashjoin/internal/model"
	"github.com/gostonefire/filehashjoin/internal/utils"
	"github.com/sirupsen/logrus"
)

// Join - Joins the left and right relations and returns the pages holding all joined pairs.
// It runs Partition followed by Probe. If any of the ranges is empty there is nothing to join, an empty
// result is returned and no page is allocated.
//   - left is the page range of the left relation
//   - right is the page range of the right relation
//
// It returns:
//   - result is the list of result page ids, see ReadResult to decode them
//   - err is either of type fhjerrors.InvalidRange, fhjerrors.BufferExhausted, fhjerrors.CorruptPage or a standard error
func (F *FileHashJoin) Join(left, right PageRange) (result []PageID, err error) {
	if err = checkRange(left, fhjerrors.PhasePartition); err != nil {
		return
	}
	if err = checkRange(right, fhjerrors.PhasePartition); err != nil {
		return
	}
	if left.IsEmpty() || right.IsEmpty() {
		F.logger.WithFields(rangeFields(left, right)).Debug("empty relation, nothing to join")
		result = []PageID{}
		return
	}

	buckets, err := F.Partition(left, right)
	if err != nil {
		return
	}

	result, err = F.Probe(buckets)

	return
}

// Partition - Spreads both relations over B-1 buckets by partition hash of the join key.
// One buffer slot is used as input cursor and the other B-1 as per bucket accumulators, a full accumulator is
// flushed to a new page which is recorded in its bucket. The buffer pool is empty when Partition returns.
//   - left is the page range of the left relation, it must not be empty
//   - right is the page range of the right relation, it must not be empty
//
// It returns:
//   - buckets holds exactly B-1 buckets, bucket h holds every record with partition hash h modulo B-1
//   - err is either of type fhjerrors.InvalidRange, fhjerrors.BufferExhausted, fhjerrors.CorruptPage or a standard error
func (F *FileHashJoin) Partition(left, right PageRange) (buckets []*Bucket, err error) {
	slots := F.pool.Size()
	if slots < 2 {
		err = fhjerrors.BufferExhausted{Phase: fhjerrors.PhasePartition, Slots: slots, Required: 2}
		return
	}
	for _, r := range []PageRange{left, right} {
		if r.IsEmpty() {
			err = fhjerrors.InvalidRange{Phase: fhjerrors.PhasePartition, Start: int64(r.Start), End: int64(r.End)}
			return
		}
		if err = checkRange(r, fhjerrors.PhasePartition); err != nil {
			return
		}
	}

	F.logger.WithFields(rangeFields(left, right)).Debug("partition started")
	defer F.pool.Reset()

	buckets = make([]*Bucket, slots-1)
	for i := range buckets {
		buckets[i] = NewBucket()
	}

	if err = F.partitionSide(left, model.Left, buckets); err == nil {
		err = F.partitionSide(right, model.Right, buckets)
	}
	if err != nil {
		F.logger.WithError(err).Warn("partition aborted")
		buckets = nil
		return
	}

	F.logger.WithField("buckets", len(buckets)).Debug("partition finished")

	return
}

// partitionSide - Runs one relation through the accumulators and flushes what is left in them
func (F *FileHashJoin) partitionSide(r PageRange, side model.Side, buckets []*Bucket) (err error) {
	inputSlot := len(buckets)
	n := uint64(len(buckets))

	for pageID := r.Start; pageID < r.End; pageID++ {
		if err = F.loadRecordPage(pageID, inputSlot, fhjerrors.PhasePartition); err != nil {
			return
		}

		input := F.pool.Slot(inputSlot)
		for i := 0; i < input.Size(); i++ {
			record := input.RecordAt(i)
			h := int(F.hashAlgorithm.PartitionHash(record.Key) % n)

			if F.pool.Slot(h).IsFull() {
				if err = F.flushToBucket(h, side, buckets[h]); err != nil {
					return
				}
			}
			if err = F.pool.Slot(h).AppendRecord(record); err != nil {
				return
			}
		}
	}

	for h := range buckets {
		if !F.pool.Slot(h).IsEmpty() {
			if err = F.flushToBucket(h, side, buckets[h]); err != nil {
				return
			}
		}
	}
	F.pool.ClearSlot(inputSlot)

	return
}

// Probe - Joins the two sides of every bucket and returns the pages holding all joined pairs.
// Per bucket the side with fewer records is built into B-2 in-memory sub-buckets by probe hash, ties go to the
// left side, and the other side is streamed against it. The last slot accumulates joined pairs across buckets
// and is flushed whenever full and once more at the end if not empty. The buffer pool is empty when Probe returns.
//
// A full sub-bucket is spilled to a new page which is also appended to the build side of the bucket. Spilled
// pages are joined in overflow passes after the bucket's regular probe step, so that every build record meets
// every probe record of its sub-bucket exactly once.
//   - buckets are the buckets as returned by Partition
//
// It returns:
//   - result is the list of result page ids, see ReadResult to decode them
//   - err is either of type fhjerrors.BufferExhausted, fhjerrors.CorruptPage or a standard error
func (F *FileHashJoin) Probe(buckets []*Bucket) (result []PageID, err error) {
	slots := F.pool.Size()
	if slots < 3 {
		err = fhjerrors.BufferExhausted{Phase: fhjerrors.PhaseProbe, Slots: slots, Required: 3}
		return
	}

	F.logger.WithField("buckets", len(buckets)).Debug("probe started")
	defer F.pool.Reset()

	F.pool.Reset()
	F.pool.Slot(slots - 1).ClearAs(model.PairPage)

	result = []PageID{}
	for i, bucket := range buckets {
		if err = F.probeBucket(i, bucket, &result); err != nil {
			break
		}
	}

	if err == nil && !F.pool.Slot(slots-1).IsEmpty() {
		err = F.flushResult(&result)
	}
	if err != nil {
		F.logger.WithError(err).Warn("probe aborted")
		result = nil
		return
	}

	F.logger.WithField("result_pages", len(result)).Debug("probe finished")

	return
}

// probeBucket - Runs the build, probe and overflow steps for one bucket and clears every slot but the output
func (F *FileHashJoin) probeBucket(bucketNo int, bucket *Bucket, result *[]PageID) (err error) {
	buildSide := model.Left
	if bucket.RecordCount(model.Right) < bucket.RecordCount(model.Left) {
		buildSide = model.Right
	}
	probeSide := buildSide.Other()

	// Snapshot before building, pages spilled below are handled by the overflow passes
	buildPages := bucket.Pages(buildSide)
	probePages := bucket.Pages(probeSide)

	log := F.logger.WithFields(logrus.Fields{
		"bucket":     bucketNo,
		"build_side": buildSide.String(),
		"build":      bucket.RecordCount(buildSide),
		"probe":      bucket.RecordCount(probeSide),
	})
	if len(buildPages) == 0 || len(probePages) == 0 {
		log.Debug("bucket has an empty side, skipped")
		return
	}

	spills, err := F.build(buildPages, buildSide, bucket)
	if err != nil {
		return
	}

	subBuckets := F.pool.Size() - 2
	tags := make([]int, subBuckets)
	for i := range tags {
		tags[i] = i
	}
	if err = F.probePages(probePages, buildSide, tags, result); err != nil {
		return
	}

	if len(spills) > 0 {
		log.WithField("spilled_pages", len(spills)).Debug("joining spilled build pages")
	}
	batches := newSpillBatches(spills, subBuckets)
	for batches.hasNext() {
		batch := batches.next()

		F.clearSubBuckets()
		tags = tags[:len(batch)]
		for j, s := range batch {
			if err = F.loadRecordPage(s.pageID, j, fhjerrors.PhaseProbe); err != nil {
				return
			}
			tags[j] = s.subBucket
		}

		if err = F.probePages(probePages, buildSide, tags, result); err != nil {
			return
		}
		F.stat.OverflowPasses++
	}

	F.clearSubBuckets()

	return
}

// build - Loads the build pages into the sub-bucket slots, spilling full sub-buckets.
// It returns the spilled pages in the order they were written.
func (F *FileHashJoin) build(buildPages []PageID, buildSide model.Side, bucket *Bucket) (spills []spill, err error) {
	inputSlot := F.pool.Size() - 2
	n := uint64(inputSlot)

	for _, pageID := range buildPages {
		if err = F.loadRecordPage(pageID, inputSlot, fhjerrors.PhaseProbe); err != nil {
			return
		}

		input := F.pool.Slot(inputSlot)
		for i := 0; i < input.Size(); i++ {
			record := input.RecordAt(i)
			h := int(F.hashAlgorithm.ProbeHash(record.Key) % n)

			if F.pool.Slot(h).IsFull() {
				var spilled PageID
				var count int
				spilled, count, err = F.pool.FlushToDisk(h)
				if err != nil {
					return
				}
				bucket.AddPage(buildSide, spilled, count)
				spills = append(spills, spill{pageID: spilled, subBucket: h})
				F.stat.SpilledPages++
			}
			if err = F.pool.Slot(h).AppendRecord(record); err != nil {
				return
			}
		}
	}
	F.pool.ClearSlot(inputSlot)

	return
}

// probePages - Streams the probe pages through the input cursor. Each probe record is compared with the records
// of every sub-bucket slot j with tags[j] equal to its own sub-bucket.
func (F *FileHashJoin) probePages(probePages []PageID, buildSide model.Side, tags []int, result *[]PageID) (err error) {
	inputSlot := F.pool.Size() - 2
	outputSlot := F.pool.Size() - 1
	n := uint64(inputSlot)

	for _, pageID := range probePages {
		if err = F.loadRecordPage(pageID, inputSlot, fhjerrors.PhaseProbe); err != nil {
			return
		}

		input := F.pool.Slot(inputSlot)
		for i := 0; i < input.Size(); i++ {
			probe := input.RecordAt(i)
			h := int(F.hashAlgorithm.ProbeHash(probe.Key) % n)

			for j, tag := range tags {
				if tag != h {
					continue
				}
				sub := F.pool.Slot(j)
				for k := 0; k < sub.Size(); k++ {
					build := sub.RecordAt(k)
					if !utils.IsEqual(build.Key, probe.Key) {
						continue
					}

					if F.pool.Slot(outputSlot).IsFull() {
						if err = F.flushResult(result); err != nil {
							return
						}
					}
					if err = F.pool.Slot(outputSlot).AppendPair(build, probe, buildSide); err != nil {
						return
					}
					F.stat.ResultPairs++
				}
			}
		}
	}
	F.pool.ClearSlot(inputSlot)

	return
}

// flushToBucket - Flushes an accumulator slot and records the page in the bucket
func (F *FileHashJoin) flushToBucket(slot int, side model.Side, bucket *Bucket) (err error) {
	pageID, count, err := F.pool.FlushToDisk(slot)
	if err != nil {
		return
	}
	bucket.AddPage(side, pageID, count)

	return
}

// flushResult - Flushes the output slot and appends the page to the result
func (F *FileHashJoin) flushResult(result *[]PageID) (err error) {
	pageID, _, err := F.pool.FlushToDisk(F.pool.Size() - 1)
	if err != nil {
		return
	}
	*result = append(*result, pageID)

	return
}

// clearSubBuckets - Empties the sub-bucket slots and the input cursor, the output slot is left as is
func (F *FileHashJoin) clearSubBuckets() {
	for i := 0; i < F.pool.Size()-1; i++ {
		F.pool.ClearSlot(i)
	}
}

// loadRecordPage - Loads a page into a slot and makes sure it is a record page.
// Decoding errors are reported as fhjerrors.CorruptPage of the given phase.
func (F *FileHashJoin) loadRecordPage(pageID PageID, slot int, phase fhjerrors.Phase) (err error) {
	err = F.pool.LoadFromDisk(pageID, slot)
	if err != nil {
		err = withPhase(err, phase)
		return
	}

	if F.pool.Slot(slot).Kind() != model.RecordPage {
		F.pool.ClearSlot(slot)
		err = fhjerrors.NewCorruptPage(phase, int64(pageID), "expected a record page")
	}

	return
}

// withPhase - Tags a CorruptPage error with the phase it surfaced in, other errors are returned as is
func withPhase(err error, phase fhjerrors.Phase) error {
	var corrupt fhjerrors.CorruptPage
	if errors.As(err, &corrupt) {
		corrupt.Phase = phase
		return corrupt
	}
	return err
}

// checkRange - Fails with fhjerrors.InvalidRange on an inverted range
func checkRange(r PageRange, phase fhjerrors.Phase) (err error) {
	if r.IsInverted() {
		err = fhjerrors.InvalidRange{Phase: phase, Start: int64(r.Start), End: int64(r.End)}
	}

	return
}

// rangeFields - Log fields describing the input ranges
func rangeFields(left, right PageRange) logrus.Fields {
	return logrus.Fields{
		"left_start":  left.Start,
		"left_end":    left.End,
		"right_start": right.Start,
		"right_end":   right.End,
	}
}
