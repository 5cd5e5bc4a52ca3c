package model

// EntryRecord - State of an entry slot holding a plain record
const EntryRecord uint8 = 1

// EntryPairBuildLeft - State of the first entry slot of a pair whose build record came from the left relation
const EntryPairBuildLeft uint8 = 2

// EntryPairBuildRight - State of the first entry slot of a pair whose build record came from the right relation
const EntryPairBuildRight uint8 = 3

// EntryPairProbe - State of the second entry slot of a pair
const EntryPairProbe uint8 = 4

// PageKind - Tells what a page holds
type PageKind uint8

const (
	// RecordPage - Page holding records of one relation
	RecordPage PageKind = 1
	// PairPage - Page holding joined pairs
	PairPage PageKind = 2
)
