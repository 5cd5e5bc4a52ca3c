package utils

import "encoding/binary"

// IsEqual - Returns true if a and b are equal both in size and contents
func IsEqual(a, b []byte) bool {
	lenA := len(a)
	if lenA != len(b) {
		return false
	}

	for i := 0; i < lenA; i++ {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// ExtendByteSlice - Extends a byte slice by prepending or appending a number of zero bytes
func ExtendByteSlice(a []byte, extension int64, prepend bool) (b []byte) {
	b = make([]byte, len(a))
	_ = copy(b, a)
	if extension > 0 {
		if prepend {
			b = append(make([]byte, extension), b...)
		} else {
			b = append(b, make([]byte, extension)...)
		}
	}

	return
}

// UintToBytes - Returns v as a big endian byte slice of exactly length bytes.
// Lengths below 8 keep the lowest bytes, lengths above 8 are zero padded in front.
func UintToBytes(v uint64, length int64) (b []byte) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	if length <= 8 {
		b = buf[8-length:]
		return
	}

	b = ExtendByteSlice(buf, length-8, true)

	return
}
