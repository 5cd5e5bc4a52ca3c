package hash

import (
	"encoding/binary"

	"github.com/OneOfOne/xxhash"
	"github.com/spaolacci/murmur3"
)

// DefaultHashAlgorithm - The internally used hash algorithm. Partitioning uses xxhash64 over the key while probing uses
// the lower 64 bits of murmur3 128, so the two phases distribute keys independently.
type DefaultHashAlgorithm struct{}

// NewDefaultHashAlgorithm - Returns a pointer to a new DefaultHashAlgorithm instance
func NewDefaultHashAlgorithm() *DefaultHashAlgorithm {
	return &DefaultHashAlgorithm{}
}

// PartitionHash - Given key it generates the partition hash value
func (D *DefaultHashAlgorithm) PartitionHash(key []byte) uint64 {
	h := xxhash.New64()
	_, _ = h.Write(key)
	return h.Sum64()
}

// ProbeHash - Given key it generates the probe hash value
func (D *DefaultHashAlgorithm) ProbeHash(key []byte) uint64 {
	h := murmur3.New128()
	_, _ = h.Write(key)
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}
