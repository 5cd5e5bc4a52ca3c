package pebblestore

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/cockroachdb/pebble"
	"github.com/golang/snappy"
	"github.com/gostonefire/filehashjoin/fhjerrors"
	"github.com/gostonefire/filehashjoin/internal/model"
	"github.com/gostonefire/filehashjoin/internal/storage"
	"github.com/pkg/errors"
)

// metaKey - Key under which the number of allocated pages is kept, it sorts after every page key
var metaKey = []byte{0xff, 'm', 'e', 't', 'a'}

// PebbleStore - Represents a page store kept in a Pebble LSM database. Each page is one key (big endian page id)
// whose value is the snappy compressed page.
type PebbleStore struct {
	dirName  string
	db       *pebble.DB
	pageSize int64
	numPages int64
	stats    model.IOStats
}

// NewPebbleStore - Returns a pointer to a new PebbleStore. Any existing database directory is removed first.
//   - name is the name to base the database directory name on
//   - pageSize is the size in bytes of every page
func NewPebbleStore(name string, pageSize int64) (pebbleStore *PebbleStore, err error) {
	if name == "" {
		err = fmt.Errorf("name can not be empty, it will be used to name physical files")
		return
	}
	if pageSize <= 0 {
		err = fmt.Errorf("page size must be a positive value higher than 0 (zero)")
		return
	}

	dirName := storage.GetStoreDirName(name)
	if err = os.RemoveAll(dirName); err != nil {
		err = errors.Wrap(err, "error while removing old page store directory")
		return
	}

	db, err := pebble.Open(dirName, &pebble.Options{})
	if err != nil {
		err = errors.Wrap(err, "error while opening page store database")
		return
	}

	pebbleStore = &PebbleStore{dirName: dirName, db: db, pageSize: pageSize}

	return
}

// NewPebbleStoreFromExistingDir - Returns a pointer to a PebbleStore over an existing database directory
//   - name is the name the database directory name was based on
//   - pageSize is the size in bytes of every page
func NewPebbleStoreFromExistingDir(name string, pageSize int64) (pebbleStore *PebbleStore, err error) {
	dirName := storage.GetStoreDirName(name)
	if _, err = os.Stat(dirName); err != nil {
		err = fmt.Errorf("page store directory not found")
		return
	}

	db, err := pebble.Open(dirName, &pebble.Options{})
	if err != nil {
		err = errors.Wrap(err, "error while opening page store database")
		return
	}

	pebbleStore = &PebbleStore{dirName: dirName, db: db, pageSize: pageSize}

	val, closer, err := db.Get(metaKey)
	if err == pebble.ErrNotFound {
		err = nil
		return
	}
	if err != nil {
		_ = db.Close()
		pebbleStore = nil
		err = errors.Wrap(err, "error while reading page store meta data")
		return
	}
	pebbleStore.numPages = int64(binary.BigEndian.Uint64(val))
	_ = closer.Close()

	return
}

// ReadPage - Returns the raw bytes of the page with the given id
func (P *PebbleStore) ReadPage(pageID model.PageID) (data []byte, err error) {
	if pageID < 0 || int64(pageID) >= P.numPages {
		err = fhjerrors.PageNotFound{PageID: int64(pageID)}
		return
	}

	val, closer, err := P.db.Get(pageKey(pageID))
	if err == pebble.ErrNotFound {
		err = fhjerrors.PageNotFound{PageID: int64(pageID)}
		return
	}
	if err != nil {
		err = errors.Wrapf(err, "error while reading page %d", pageID)
		return
	}
	// val is only valid until closer.Close(), snappy.Decode copies into a fresh slice
	data, err = snappy.Decode(nil, val)
	_ = closer.Close()
	if err != nil {
		data = nil
		err = fhjerrors.NewCorruptPage(fhjerrors.PhaseStorage, int64(pageID), err.Error())
		return
	}
	P.stats.PagesRead++

	return
}

// AllocateAndWrite - Writes data under the next free page id and returns that id
func (P *PebbleStore) AllocateAndWrite(data []byte) (pageID model.PageID, err error) {
	if int64(len(data)) != P.pageSize {
		err = fmt.Errorf("wrong length of page data %d, should be %d", len(data), P.pageSize)
		return
	}

	pageID = model.PageID(P.numPages)
	err = P.db.Set(pageKey(pageID), snappy.Encode(nil, data), pebble.NoSync)
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
func (P *PebbleStore) NumPages() int64 {
	return P.numPages
}

// PageSize - Returns the page size in bytes
func (P *PebbleStore) PageSize() int64 {
	return P.pageSize
}

// Stats - Returns read and write counters
func (P *PebbleStore) Stats() model.IOStats {
	return P.stats
}

// Close - Persists the page count and closes the database
func (P *PebbleStore) Close() (err error) {
	if P.db == nil {
		return
	}

	meta := make([]byte, 8)
	binary.BigEndian.PutUint64(meta, uint64(P.numPages))
	err = P.db.Set(metaKey, meta, pebble.Sync)
	if cerr := P.db.Close(); err == nil {
		err = cerr
	}
	P.db = nil

	return
}

// Remove - Removes the database directory, make sure to close it first before calling this function
func (P *PebbleStore) Remove() (err error) {
	if stat, ok := os.Stat(P.dirName); ok == nil && stat.IsDir() {
		err = os.RemoveAll(P.dirName)
		if err != nil {
			err = errors.Wrap(err, "error while removing page store directory")
		}
	}

	return
}

// pageKey - Encodes a page id as a big endian key, which keeps Pebble's key order equal to page id order
func pageKey(pageID model.PageID) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(pageID))
	return b
}
