//go:build unit || integration

package filehashjoin

import (
	"fmt"

	pair "github.com/notEpsilon/go-pair"
)

func rec(key, value byte) Record {
	return Record{Key: []byte{0, key}, Value: []byte{0, value}}
}

func pairKey(p pair.Pair[Record, Record]) string {
	return fmt.Sprintf("%v%v|%v%v", p.First.Key, p.First.Value, p.Second.Key, p.Second.Value)
}

// nestedLoopJoin - Reference result as a multiset of left/right pairs
func nestedLoopJoin(left, right []Record) map[string]int {
	expected := make(map[string]int)
	for _, l := range left {
		for _, r := range right {
			if string(l.Key) == string(r.Key) {
				expected[pairKey(pair.Pair[Record, Record]{First: l, Second: r})]++
			}
		}
	}
	return expected
}

func resultMultiset(pairs []pair.Pair[Record, Record]) map[string]int {
	got := make(map[string]int)
	for _, p := range pairs {
		got[pairKey(p)]++
	}
	return got
}
