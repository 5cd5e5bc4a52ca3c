//go:build unit

package filehashjoin

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/gostonefire/filehashjoin/fhjerrors"
	"github.com/gostonefire/filehashjoin/hashfunc"
	"github.com/gostonefire/filehashjoin/internal/hash"
	"github.com/gostonefire/filehashjoin/internal/model"
	"github.com/gostonefire/filehashjoin/internal/page"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// byteHash - Partition hash equal to the last key byte, which makes bucket placement predictable
func byteHash(key []byte) uint64 {
	return uint64(key[len(key)-1])
}

func newTestJoin(t *testing.T, bufferSlots int, recordsPerPage int64, alg hashfunc.HashAlgorithm) *FileHashJoin {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	fhj, err := NewFileHashJoin(Config{
		Store:          StoreMemory,
		BufferSlots:    bufferSlots,
		RecordsPerPage: recordsPerPage,
		KeyLength:      2,
		ValueLength:    2,
		HashAlgorithm:  alg,
		Logger:         logger,
	})
	require.NoError(t, err, "creates file hash join")

	return fhj
}

// rawPairs - Decodes result pages keeping the build/probe orientation
func rawPairs(t *testing.T, fhj *FileHashJoin, pages []PageID) (pairs []model.Pair) {
	pg := page.New(model.PairPage, fhj.layout)
	for _, pageID := range pages {
		data, err := fhj.store.ReadPage(pageID)
		require.NoError(t, err, "reads result page")
		require.NoError(t, pg.Load(data, pageID), "decodes result page")
		for i := 0; i < pg.Size(); i++ {
			pairs = append(pairs, pg.PairAt(i))
		}
	}
	return
}

func TestFileHashJoin_Partition(t *testing.T) {
	t.Run("distributes records by partition hash", func(t *testing.T) {
		// Prepare
		fhj := newTestJoin(t, 5, 3, hash.FuncHashAlgorithm{Partition: byteHash, Probe: byteHash})
		left, err := fhj.WriteRelation([]Record{rec(1, 1), rec(2, 2), rec(3, 3), rec(4, 4), rec(5, 5), rec(6, 6)})
		require.NoError(t, err, "writes left")
		right, err := fhj.WriteRelation([]Record{rec(3, 10), rec(7, 11)})
		require.NoError(t, err, "writes right")

		// Execute
		buckets, err := fhj.Partition(left, right)

		// Check
		assert.NoError(t, err, "partitions")
		require.Len(t, buckets, 4, "B-1 buckets")
		assert.Equal(t, int64(1), buckets[0].RecordCount(model.Left), "key 4")
		assert.Equal(t, int64(2), buckets[1].RecordCount(model.Left), "keys 1 and 5")
		assert.Equal(t, int64(2), buckets[2].RecordCount(model.Left), "keys 2 and 6")
		assert.Equal(t, int64(1), buckets[3].RecordCount(model.Left), "key 3")
		assert.Equal(t, int64(0), buckets[0].RecordCount(model.Right), "no right records")
		assert.Equal(t, int64(2), buckets[3].RecordCount(model.Right), "keys 3 and 7")
		assert.Equal(t, 0, fhj.pool.InUse(), "buffer pool reset")
	})

	t.Run("conserves records per side", func(t *testing.T) {
		// Prepare
		fhj := newTestJoin(t, 4, 4, nil)
		rnd := rand.New(rand.NewSource(1))
		var leftRecords, rightRecords []Record
		for i := 0; i < 97; i++ {
			leftRecords = append(leftRecords, rec(byte(rnd.Intn(256)), byte(i)))
		}
		for i := 0; i < 41; i++ {
			rightRecords = append(rightRecords, rec(byte(rnd.Intn(256)), byte(i)))
		}
		left, err := fhj.WriteRelation(leftRecords)
		require.NoError(t, err, "writes left")
		right, err := fhj.WriteRelation(rightRecords)
		require.NoError(t, err, "writes right")

		// Execute
		buckets, err := fhj.Partition(left, right)

		// Check
		require.NoError(t, err, "partitions")
		var leftCount, rightCount int64
		var partitioned []Record
		for _, bucket := range buckets {
			leftCount += bucket.RecordCount(model.Left)
			rightCount += bucket.RecordCount(model.Right)
			for _, pageID := range bucket.Pages(model.Left) {
				records, err := fhj.ReadRelation(PageRange{Start: pageID, End: pageID + 1})
				require.NoError(t, err, "reads bucket page")
				partitioned = append(partitioned, records...)
			}
		}
		assert.Equal(t, int64(97), leftCount, "left records conserved")
		assert.Equal(t, int64(41), rightCount, "right records conserved")
		assert.ElementsMatch(t, leftRecords, partitioned, "left records in bucket pages")
	})

	t.Run("fails on empty or inverted ranges", func(t *testing.T) {
		fhj := newTestJoin(t, 4, 4, nil)

		_, err := fhj.Partition(PageRange{Start: 0, End: 0}, PageRange{Start: 0, End: 1})
		assert.ErrorIs(t, err, fhjerrors.InvalidRange{}, "empty left range")

		_, err = fhj.Partition(PageRange{Start: 0, End: 1}, PageRange{Start: 3, End: 1})
		assert.ErrorIs(t, err, fhjerrors.InvalidRange{}, "inverted right range")
	})

	t.Run("fails with too few buffer slots", func(t *testing.T) {
		fhj := newTestJoin(t, 1, 4, nil)

		_, err := fhj.Partition(PageRange{Start: 0, End: 1}, PageRange{Start: 0, End: 1})

		var exhausted fhjerrors.BufferExhausted
		require.True(t, errors.As(err, &exhausted), "buffer exhausted")
		assert.Equal(t, fhjerrors.PhasePartition, exhausted.Phase, "phase")
		assert.Equal(t, 2, exhausted.Required, "required slots")
	})

	t.Run("fails on a corrupt page", func(t *testing.T) {
		// Prepare
		fhj := newTestJoin(t, 4, 4, nil)
		right, err := fhj.WriteRelation([]Record{rec(1, 1)})
		require.NoError(t, err, "writes right")
		bad, err := fhj.store.AllocateAndWrite(make([]byte, fhj.store.PageSize()))
		require.NoError(t, err, "writes garbage page")

		// Execute
		buckets, err := fhj.Partition(PageRange{Start: bad, End: bad + 1}, right)

		// Check
		var corrupt fhjerrors.CorruptPage
		require.True(t, errors.As(err, &corrupt), "corrupt page")
		assert.Equal(t, fhjerrors.PhasePartition, corrupt.Phase, "phase")
		assert.Equal(t, int64(bad), corrupt.PageID, "page id")
		assert.Nil(t, buckets, "no partial result")
		assert.Equal(t, 0, fhj.pool.InUse(), "buffer pool reset")
	})
}

func TestFileHashJoin_Probe(t *testing.T) {
	t.Run("joins the single matching pair with five buffer slots", func(t *testing.T) {
		// Prepare
		fhj := newTestJoin(t, 5, 3, hash.FuncHashAlgorithm{Partition: byteHash, Probe: byteHash})
		l3 := rec(3, 3)
		r1 := rec(3, 10)
		left, err := fhj.WriteRelation([]Record{rec(1, 1), rec(2, 2), l3, rec(4, 4), rec(5, 5), rec(6, 6)})
		require.NoError(t, err, "writes left")
		right, err := fhj.WriteRelation([]Record{r1, rec(7, 11)})
		require.NoError(t, err, "writes right")
		require.Equal(t, int64(2), left.Len(), "two left pages")
		require.Equal(t, int64(1), right.Len(), "one right page")
		buckets, err := fhj.Partition(left, right)
		require.NoError(t, err, "partitions")

		// Execute
		result, err := fhj.Probe(buckets)

		// Check
		require.NoError(t, err, "probes")
		require.Len(t, result, 1, "one result page")
		pairs := rawPairs(t, fhj, result)
		require.Len(t, pairs, 1, "one pair")
		assert.Equal(t, l3, pairs[0].Build, "left record is build")
		assert.Equal(t, r1, pairs[0].Probe, "right record is probe")
		assert.Equal(t, model.Left, pairs[0].BuildSide, "left is build side")
		assert.Equal(t, 0, fhj.pool.InUse(), "buffer pool reset")
	})

	t.Run("left is build side on equal counts", func(t *testing.T) {
		// Prepare
		fhj := newTestJoin(t, 3, 4, hash.FuncHashAlgorithm{Partition: hash.Constant(0), Probe: byteHash})
		left, err := fhj.WriteRelation([]Record{rec(1, 1), rec(2, 2)})
		require.NoError(t, err, "writes left")
		right, err := fhj.WriteRelation([]Record{rec(2, 20), rec(1, 10)})
		require.NoError(t, err, "writes right")
		buckets, err := fhj.Partition(left, right)
		require.NoError(t, err, "partitions")

		// Execute
		result, err := fhj.Probe(buckets)

		// Check
		require.NoError(t, err, "probes")
		pairs := rawPairs(t, fhj, result)
		require.Len(t, pairs, 2, "two pairs")
		for _, p := range pairs {
			assert.Equal(t, model.Left, p.BuildSide, "left is build side")
		}
	})

	t.Run("smaller right side is build side", func(t *testing.T) {
		// Prepare
		fhj := newTestJoin(t, 3, 4, hash.FuncHashAlgorithm{Partition: hash.Constant(0), Probe: byteHash})
		left, err := fhj.WriteRelation([]Record{rec(1, 1), rec(2, 2), rec(3, 3)})
		require.NoError(t, err, "writes left")
		right, err := fhj.WriteRelation([]Record{rec(2, 20)})
		require.NoError(t, err, "writes right")
		buckets, err := fhj.Partition(left, right)
		require.NoError(t, err, "partitions")

		// Execute
		result, err := fhj.Probe(buckets)

		// Check
		require.NoError(t, err, "probes")
		pairs := rawPairs(t, fhj, result)
		require.Len(t, pairs, 1, "one pair")
		assert.Equal(t, model.Right, pairs[0].BuildSide, "right is build side")
		assert.Equal(t, rec(2, 20), pairs[0].Build, "build record")
		assert.Equal(t, rec(2, 2), pairs[0].Probe, "probe record")
	})

	t.Run("spilled build pages are added to the bucket and still joined", func(t *testing.T) {
		// Prepare
		fhj := newTestJoin(t, 3, 2, hash.FuncHashAlgorithm{Partition: hash.Constant(0), Probe: hash.Constant(0)})
		leftRecords := []Record{rec(1, 1), rec(2, 2), rec(3, 3), rec(4, 4), rec(5, 5)}
		rightRecords := []Record{rec(1, 10), rec(2, 20), rec(3, 30), rec(4, 40), rec(5, 50), rec(1, 11)}
		left, err := fhj.WriteRelation(leftRecords)
		require.NoError(t, err, "writes left")
		right, err := fhj.WriteRelation(rightRecords)
		require.NoError(t, err, "writes right")
		buckets, err := fhj.Partition(left, right)
		require.NoError(t, err, "partitions")
		require.Len(t, buckets, 2, "two buckets")
		leftPages := buckets[0].Pages(model.Left)

		// Execute
		result, err := fhj.Probe(buckets)

		// Check
		require.NoError(t, err, "probes")
		spilled := buckets[0].Pages(model.Left)
		assert.Len(t, spilled, len(leftPages)+2, "two spilled pages added to build side")
		assert.Equal(t, int64(9), buckets[0].RecordCount(model.Left), "spilled records counted")
		assert.Equal(t, int64(6), buckets[0].RecordCount(model.Right), "probe side untouched")

		pairs, err := fhj.ReadResult(result)
		require.NoError(t, err, "reads result")
		assert.Equal(t, nestedLoopJoin(leftRecords, rightRecords), resultMultiset(pairs), "all matches found")

		stat := fhj.Stat()
		assert.Equal(t, int64(2), stat.SpilledPages, "spilled pages")
		assert.Equal(t, int64(2), stat.OverflowPasses, "one overflow pass per spilled page")
		assert.Equal(t, int64(6), stat.ResultPairs, "result pairs")
		assert.Equal(t, 0, fhj.pool.InUse(), "buffer pool reset")
	})

	t.Run("output accumulator persists across buckets", func(t *testing.T) {
		// Prepare
		fhj := newTestJoin(t, 4, 4, hash.FuncHashAlgorithm{Partition: byteHash, Probe: byteHash})
		left, err := fhj.WriteRelation([]Record{rec(0, 1), rec(1, 2), rec(2, 3)})
		require.NoError(t, err, "writes left")
		right, err := fhj.WriteRelation([]Record{rec(0, 4), rec(1, 5), rec(2, 6)})
		require.NoError(t, err, "writes right")
		buckets, err := fhj.Partition(left, right)
		require.NoError(t, err, "partitions")

		// Execute
		result, err := fhj.Probe(buckets)

		// Check
		require.NoError(t, err, "probes")
		assert.Len(t, result, 2, "two pairs per result page over three buckets")
		pairs, err := fhj.ReadResult(result)
		require.NoError(t, err, "reads result")
		assert.Len(t, pairs, 3, "three pairs")
	})

	t.Run("fails with too few buffer slots", func(t *testing.T) {
		fhj := newTestJoin(t, 2, 4, nil)
		left, err := fhj.WriteRelation([]Record{rec(1, 1)})
		require.NoError(t, err, "writes left")
		buckets, err := fhj.Partition(left, left)
		require.NoError(t, err, "partitions with two slots")

		result, err := fhj.Probe(buckets)

		var exhausted fhjerrors.BufferExhausted
		require.True(t, errors.As(err, &exhausted), "buffer exhausted")
		assert.Equal(t, fhjerrors.PhaseProbe, exhausted.Phase, "phase")
		assert.Equal(t, 3, exhausted.Required, "required slots")
		assert.Nil(t, result, "no partial result")
	})

	t.Run("fails on a corrupt bucket page", func(t *testing.T) {
		// Prepare
		fhj := newTestJoin(t, 3, 4, nil)
		bad, err := fhj.store.AllocateAndWrite(make([]byte, fhj.store.PageSize()))
		require.NoError(t, err, "writes garbage page")
		bucket := NewBucket()
		bucket.AddPage(model.Left, bad, 1)
		bucket.AddPage(model.Right, bad, 2)

		// Execute
		result, err := fhj.Probe([]*Bucket{bucket})

		// Check
		var corrupt fhjerrors.CorruptPage
		require.True(t, errors.As(err, &corrupt), "corrupt page")
		assert.Equal(t, fhjerrors.PhaseProbe, corrupt.Phase, "phase")
		assert.Nil(t, result, "no partial result")
	})
}

func TestFileHashJoin_Join(t *testing.T) {
	t.Run("matches a nested loop join on random data", func(t *testing.T) {
		tests := []struct {
			bufferSlots    int
			recordsPerPage int64
			alg            hashfunc.HashAlgorithm
		}{
			{bufferSlots: 3, recordsPerPage: 2, alg: nil},
			{bufferSlots: 4, recordsPerPage: 4, alg: hash.NewCRCHashAlgorithm()},
			{bufferSlots: 5, recordsPerPage: 3, alg: nil},
			{bufferSlots: 8, recordsPerPage: 8, alg: hash.NewCRCHashAlgorithm()},
			{bufferSlots: 6, recordsPerPage: 4, alg: hash.FuncHashAlgorithm{Partition: byteHash, Probe: hash.Constant(7)}},
		}

		for i, test := range tests {
			t.Run(fmt.Sprintf("B=%d records per page=%d", test.bufferSlots, test.recordsPerPage), func(t *testing.T) {
				// Prepare
				fhj := newTestJoin(t, test.bufferSlots, test.recordsPerPage, test.alg)
				rnd := rand.New(rand.NewSource(int64(i)))
				var leftRecords, rightRecords []Record
				nLeft, nRight := 50+rnd.Intn(50), 30+rnd.Intn(50)
				for j := 0; j < nLeft; j++ {
					leftRecords = append(leftRecords, rec(byte(rnd.Intn(20)), byte(j)))
				}
				for j := 0; j < nRight; j++ {
					rightRecords = append(rightRecords, rec(byte(rnd.Intn(20)), byte(j)))
				}
				left, err := fhj.WriteRelation(leftRecords)
				require.NoError(t, err, "writes left")
				right, err := fhj.WriteRelation(rightRecords)
				require.NoError(t, err, "writes right")

				// Execute
				result, err := fhj.Join(left, right)

				// Check
				require.NoError(t, err, "joins")
				pairs, err := fhj.ReadResult(result)
				require.NoError(t, err, "reads result")
				assert.Equal(t, nestedLoopJoin(leftRecords, rightRecords), resultMultiset(pairs), "same multiset as nested loop")
				assert.Equal(t, int64(len(pairs)), fhj.Stat().ResultPairs, "result pairs counted")
				assert.Equal(t, 0, fhj.pool.InUse(), "buffer pool reset")
			})
		}
	})

	t.Run("repeated joins give identical results", func(t *testing.T) {
		// Prepare
		fhj := newTestJoin(t, 4, 4, nil)
		rnd := rand.New(rand.NewSource(42))
		var leftRecords, rightRecords []Record
		for j := 0; j < 60; j++ {
			leftRecords = append(leftRecords, rec(byte(rnd.Intn(10)), byte(j)))
			rightRecords = append(rightRecords, rec(byte(rnd.Intn(10)), byte(j)))
		}
		left, err := fhj.WriteRelation(leftRecords)
		require.NoError(t, err, "writes left")
		right, err := fhj.WriteRelation(rightRecords)
		require.NoError(t, err, "writes right")

		// Execute
		first, err := fhj.Join(left, right)
		require.NoError(t, err, "first join")
		second, err := fhj.Join(left, right)
		require.NoError(t, err, "second join")

		// Check
		firstPairs, err := fhj.ReadResult(first)
		require.NoError(t, err, "reads first result")
		secondPairs, err := fhj.ReadResult(second)
		require.NoError(t, err, "reads second result")
		assert.Equal(t, firstPairs, secondPairs, "identical results")
	})

	t.Run("empty relation gives empty result without allocating pages", func(t *testing.T) {
		// Prepare
		fhj := newTestJoin(t, 4, 4, nil)
		left, err := fhj.WriteRelation([]Record{rec(1, 1)})
		require.NoError(t, err, "writes left")
		right, err := fhj.WriteRelation(nil)
		require.NoError(t, err, "writes empty right")
		pages := fhj.store.NumPages()

		// Execute
		result, err := fhj.Join(left, right)

		// Check
		assert.NoError(t, err, "joins")
		assert.Empty(t, result, "empty result")
		assert.Equal(t, pages, fhj.store.NumPages(), "no page allocated")
	})

	t.Run("fails on inverted range", func(t *testing.T) {
		fhj := newTestJoin(t, 4, 4, nil)

		result, err := fhj.Join(PageRange{Start: 2, End: 1}, PageRange{Start: 0, End: 0})

		assert.ErrorIs(t, err, fhjerrors.InvalidRange{}, "invalid range")
		assert.Nil(t, result, "no result")
	})

	t.Run("no match gives empty result", func(t *testing.T) {
		fhj := newTestJoin(t, 4, 4, nil)
		left, err := fhj.WriteRelation([]Record{rec(1, 1), rec(2, 2)})
		require.NoError(t, err, "writes left")
		right, err := fhj.WriteRelation([]Record{rec(3, 3)})
		require.NoError(t, err, "writes right")

		result, err := fhj.Join(left, right)

		assert.NoError(t, err, "joins")
		assert.Empty(t, result, "no result pages")
	})
}
