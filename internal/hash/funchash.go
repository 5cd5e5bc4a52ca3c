package hash

// FuncHashAlgorithm - Adapts two plain functions to the hashfunc.HashAlgorithm interface.
// Useful for controlled distributions, for instance a probe function that sends every key to the same sub-bucket.
type FuncHashAlgorithm struct {
	Partition func(key []byte) uint64
	Probe     func(key []byte) uint64
}

// PartitionHash - Calls the partition function
func (F FuncHashAlgorithm) PartitionHash(key []byte) uint64 {
	return F.Partition(key)
}

// ProbeHash - Calls the probe function
func (F FuncHashAlgorithm) ProbeHash(key []byte) uint64 {
	return F.Probe(key)
}

// Constant - Returns a hash function that maps every key to v
func Constant(v uint64) func(key []byte) uint64 {
	return func(key []byte) uint64 { return v }
}
