package hash

import (
	"fmt"

	"github.com/gostonefire/filehashjoin/hashfunc"
)

// Names of the internal hash algorithms as used in configuration files
const (
	DefaultName = "default"
	CRCName     = "crc32"
)

// ByName - Returns the internal hash algorithm registered under name, an empty name gives the default
func ByName(name string) (alg hashfunc.HashAlgorithm, err error) {
	switch name {
	case "", DefaultName:
		alg = NewDefaultHashAlgorithm()
	case CRCName:
		alg = NewCRCHashAlgorithm()
	default:
		err = fmt.Errorf("unknown hash algorithm %q", name)
	}

	return
}
