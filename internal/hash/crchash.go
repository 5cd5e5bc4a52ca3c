package hash

import (
	"hash/crc32"
	"hash/fnv"
)

// CRCHashAlgorithm - Alternative hash algorithm using crc32.ChecksumIEEE for partitioning and FNV-1a for probing.
type CRCHashAlgorithm struct{}

// NewCRCHashAlgorithm - Returns a pointer to a new CRCHashAlgorithm instance
func NewCRCHashAlgorithm() *CRCHashAlgorithm {
	return &CRCHashAlgorithm{}
}

// PartitionHash - Given key it generates the partition hash value
func (C *CRCHashAlgorithm) PartitionHash(key []byte) uint64 {
	return uint64(crc32.ChecksumIEEE(key))
}

// ProbeHash - Given key it generates the probe hash value
func (C *CRCHashAlgorithm) ProbeHash(key []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(key)
	return h.Sum64()
}
