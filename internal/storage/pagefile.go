package storage

import (
	"fmt"
	"io"

	"github.com/gostonefire/filehashjoin/fhjerrors"
	"github.com/gostonefire/filehashjoin/internal/conf"
	"github.com/gostonefire/filehashjoin/internal/model"
	"github.com/pkg/errors"
)

// ReadWriterAt - The random access file operations a PageFile needs
type ReadWriterAt interface {
	io.ReaderAt
	io.WriterAt
}

// PageFile - Lays out fixed size pages one after the other behind a header in any random access file.
// It implements everything in DiskStore except Close and Remove, which depend on what the file is.
type PageFile struct {
	file     ReadWriterAt
	pageSize int64
	numPages int64
	stats    model.IOStats
}

// NewPageFile - Returns a pointer to a new PageFile and writes a fresh header to file
//   - file is an empty (or truncated) random access file
//   - pageSize is the size in bytes of every page
func NewPageFile(file ReadWriterAt, pageSize int64) (pageFile *PageFile, err error) {
	if pageSize <= 0 {
		err = fmt.Errorf("page size must be a positive value higher than 0 (zero)")
		return
	}

	pageFile = &PageFile{file: file, pageSize: pageSize}
	err = pageFile.WriteHeader()
	if err != nil {
		pageFile = nil
	}

	return
}

// OpenPageFile - Returns a pointer to a PageFile over a file that already carries a header
//   - file is the random access file to open
//   - pageSize is the expected page size, a mismatch with the header fails
func OpenPageFile(file ReadWriterAt, pageSize int64) (pageFile *PageFile, err error) {
	buf := make([]byte, conf.StoreFileHeaderLength)
	_, err = file.ReadAt(buf, 0)
	if err != nil {
		err = errors.Wrap(err, "unable to read header from page store")
		return
	}

	header, err := bytesToHeader(buf)
	if err != nil {
		return
	}
	if header.PageSize != pageSize {
		err = fmt.Errorf("page store has page size %d but %d was expected", header.PageSize, pageSize)
		return
	}

	pageFile = &PageFile{file: file, pageSize: pageSize, numPages: header.NumPages}

	return
}

// WriteHeader - Writes the current header to the file
func (P *PageFile) WriteHeader() (err error) {
	buf := headerToBytes(Header{PageSize: P.pageSize, NumPages: P.numPages})
	_, err = P.file.WriteAt(buf, 0)
	if err != nil {
		err = errors.Wrap(err, "error while writing header to page store")
	}

	return
}

// ReadPage - Returns the raw bytes of the page with the given id.
// It returns an error of type fhjerrors.PageNotFound if the id was never allocated.
func (P *PageFile) ReadPage(pageID model.PageID) (data []byte, err error) {
	if pageID < 0 || int64(pageID) >= P.numPages {
		err = fhjerrors.PageNotFound{PageID: int64(pageID)}
		return
	}

	data = make([]byte, P.pageSize)
	_, err = P.file.ReadAt(data, P.pageAddress(pageID))
	if err != nil {
		data = nil
		err = errors.Wrapf(err, "error while reading page %d", pageID)
		return
	}
	P.stats.PagesRead++

	return
}

// AllocateAndWrite - Writes data to the next free page id and returns that id
func (P *PageFile) AllocateAndWrite(data []byte) (pageID model.PageID, err error) {
	if int64(len(data)) != P.pageSize {
		err = fmt.Errorf("wrong length of page data %d, should be %d", len(data), P.pageSize)
		return
	}

	pageID = model.PageID(P.numPages)
	_, err = P.file.WriteAt(data, P.pageAddress(pageID))
	if err != nil {
		pageID = model.InvalidPageID
		err = errors.Wrapf(err, "error while writing page %d", P.numPages)
		return
	}
	P.numPages++
	P.stats.PagesWritten++

	return
}

// NumPages - Returns the number of pages allocated so far
func (P *PageFile) NumPages() int64 {
	return P.numPages
}

// PageSize - Returns the page size in bytes
func (P *PageFile) PageSize() int64 {
	return P.pageSize
}

// Stats - Returns read and write counters
func (P *PageFile) Stats() model.IOStats {
	return P.stats
}

// pageAddress - Returns the file offset of a page
func (P *PageFile) pageAddress(pageID model.PageID) int64 {
	return conf.StoreFileHeaderLength + int64(pageID)*P.pageSize
}
