package model

// PageID - Identifier of a page in a page store
type PageID int64

// InvalidPageID - Represents a page id that refers to no page
const InvalidPageID PageID = -1

// PageRange - A half open interval [Start, End) of page ids in a page store
type PageRange struct {
	Start PageID
	End   PageID
}

// IsEmpty - Returns true if the range covers no pages
func (P PageRange) IsEmpty() bool {
	return P.End == P.Start
}

// IsInverted - Returns true if End lies before Start
func (P PageRange) IsInverted() bool {
	return P.End < P.Start
}

// Len - Returns the number of pages covered by the range, zero for an inverted range
func (P PageRange) Len() int64 {
	if P.IsInverted() {
		return 0
	}
	return int64(P.End - P.Start)
}

// Side - Identifies one of the two relations of a join
type Side int

const (
	// Left - The left relation
	Left Side = iota
	// Right - The right relation
	Right
)

// String - Returns the name of the side
func (S Side) String() string {
	if S == Right {
		return "right"
	}
	return "left"
}

// Other - Returns the opposite side
func (S Side) Other() Side {
	if S == Right {
		return Left
	}
	return Right
}

// Record - Represents one record of a relation, the join key is Key
type Record struct {
	Key   []byte
	Value []byte
}

// Pair - Represents one joined pair as it is stored on a result page
//   - Build is the record from the side that was loaded into memory
//   - Probe is the record from the side that was streamed
//   - BuildSide tells which relation Build came from
type Pair struct {
	Build     Record
	Probe     Record
	BuildSide Side
}

// LeftRight - Returns the two records of the pair ordered as left relation record, right relation record
func (P Pair) LeftRight() (left, right Record) {
	if P.BuildSide == Right {
		return P.Probe, P.Build
	}
	return P.Build, P.Probe
}

// PageLayout - Represents the fixed geometry of every page handled by a join
//   - KeyLength is the length of the join key in each record
//   - ValueLength is the length of the payload in each record
//   - RecordsPerPage is the number of records a record page can hold, a pair page holds half as many pairs
type PageLayout struct {
	KeyLength      int64
	ValueLength    int64
	RecordsPerPage int64
}

// IOStats - Counters kept by a page store
type IOStats struct {
	PagesRead    int64
	PagesWritten int64
}
