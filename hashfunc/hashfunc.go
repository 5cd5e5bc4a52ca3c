package hashfunc

// HashAlgorithm - Interface that permits a user of FileHashJoin to supply the two hash functions used by the join.
// Both functions must be pure functions of the key: equal keys must always produce equal values.
// The two functions should be independent of each other, otherwise records that collide while partitioning
// will also collide in the in-memory table of the probe phase.
type HashAlgorithm interface {
	// PartitionHash - Given key it generates a hash value used to select the partition bucket.
	// The join takes the value modulo the number of partition buckets (B-1).
	PartitionHash(key []byte) uint64

	// ProbeHash - Given key it generates a hash value used to select the in-memory sub-bucket of the probe phase.
	// The join takes the value modulo the number of sub-buckets (B-2).
	ProbeHash(key []byte) uint64
}
