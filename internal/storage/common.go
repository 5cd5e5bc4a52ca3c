package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/gostonefire/filehashjoin/internal/conf"
	"github.com/gostonefire/filehashjoin/internal/model"
)

// DiskStore - Interface for any page store implementation. Pages are addressed by an opaque id handed out
// at allocation time and are never rewritten once allocated.
type DiskStore interface {
	// ReadPage - Returns the raw bytes of the page with the given id
	ReadPage(pageID model.PageID) (data []byte, err error)
	// AllocateAndWrite - Allocates a new page id, writes data to it and returns the id.
	// Ids are handed out in increasing order without gaps.
	AllocateAndWrite(data []byte) (pageID model.PageID, err error)
	// NumPages - Returns the number of pages allocated so far
	NumPages() int64
	// PageSize - Returns the fixed size in bytes of every page
	PageSize() int64
	// Stats - Returns read and write counters
	Stats() model.IOStats
	// Close - Flushes and closes the store
	Close() error
	// Remove - Removes whatever the store persisted, call Close first
	Remove() error
}

// Header - Represents the page store header data
type Header struct {
	PageSize int64
	NumPages int64
}

// GetStoreFileName - Return the page store file name given the join name
func GetStoreFileName(name string) (fileName string) {
	return fmt.Sprintf("%s-pages.bin", name)
}

// GetStoreDirName - Return the page store directory name given the join name
func GetStoreDirName(name string) (dirName string) {
	return fmt.Sprintf("%s-pages.db", name)
}

// bytesToHeader - Converts a slice of bytes to a Header struct
func bytesToHeader(buf []byte) (header Header, err error) {
	if binary.LittleEndian.Uint32(buf[conf.StoreMagicOffset:]) != conf.StoreMagic {
		err = fmt.Errorf("page store header has bad magic")
		return
	}

	header = Header{
		PageSize: int64(binary.LittleEndian.Uint64(buf[conf.StorePageSizeOffset:])),
		NumPages: int64(binary.LittleEndian.Uint64(buf[conf.StoreNumPagesOffset:])),
	}

	return
}

// headerToBytes - Converts a Header struct to a slice of bytes
func headerToBytes(header Header) (buf []byte) {
	buf = make([]byte, conf.StoreFileHeaderLength)

	binary.LittleEndian.PutUint32(buf[conf.StoreMagicOffset:], conf.StoreMagic)
	binary.LittleEndian.PutUint64(buf[conf.StorePageSizeOffset:], uint64(header.PageSize))
	binary.LittleEndian.PutUint64(buf[conf.StoreNumPagesOffset:], uint64(header.NumPages))

	return
}
