package memstore

import (
	"github.com/dsnet/golib/memfile"
	"github.com/gostonefire/filehashjoin/internal/storage"
)

// MemStore - Represents a page store held in memory, laid out exactly like the file store
type MemStore struct {
	*storage.PageFile
	file *memfile.File
}

// NewMemStore - Returns a pointer to a new empty MemStore
//   - pageSize is the size in bytes of every page
func NewMemStore(pageSize int64) (memStore *MemStore, err error) {
	file := memfile.New(make([]byte, 0))

	pageFile, err := storage.NewPageFile(file, pageSize)
	if err != nil {
		return
	}

	memStore = &MemStore{PageFile: pageFile, file: file}

	return
}

// Close - Nothing to flush for an in-memory store
func (M *MemStore) Close() error {
	return nil
}

// Remove - Drops all page data
func (M *MemStore) Remove() error {
	return M.file.Truncate(0)
}

// Bytes - Returns the raw store content, header included
func (M *MemStore) Bytes() []byte {
	return M.file.Bytes()
}
