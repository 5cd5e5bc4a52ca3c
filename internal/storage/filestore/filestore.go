package filestore

import (
	"fmt"
	"os"

	"github.com/gostonefire/filehashjoin/internal/storage"
	"github.com/pkg/errors"
)

// FileStore - Represents a page store in one file on disk. Pages follow a 1024 byte header in allocation order.
type FileStore struct {
	*storage.PageFile
	fileName string
	file     *os.File
}

// NewFileStore - Returns a pointer to a new FileStore.
// It always creates a new file (or opens and truncate existing file)
//   - name is the name to base the store file name on
//   - pageSize is the size in bytes of every page
func NewFileStore(name string, pageSize int64) (fileStore *FileStore, err error) {
	if name == "" {
		err = fmt.Errorf("name can not be empty, it will be used to name physical files")
		return
	}

	fileStore = &FileStore{fileName: storage.GetStoreFileName(name)}

	fileStore.file, err = os.OpenFile(fileStore.fileName, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		err = errors.Wrap(err, "error while open/create new page store file")
		return
	}

	fileStore.PageFile, err = storage.NewPageFile(fileStore.file, pageSize)
	if err != nil {
		_ = fileStore.file.Close()
		fileStore.file = nil
	}

	return
}

// NewFileStoreFromExistingFile - Returns a pointer to a FileStore over an existing store file.
// If the file doesn't exist, doesn't have a valid header or has another page size it fails with error.
//   - name is the name the store file name was based on
//   - pageSize is the expected page size
func NewFileStoreFromExistingFile(name string, pageSize int64) (fileStore *FileStore, err error) {
	fileStore = &FileStore{fileName: storage.GetStoreFileName(name)}

	if _, err = os.Stat(fileStore.fileName); err != nil {
		err = fmt.Errorf("page store file not found")
		return
	}

	fileStore.file, err = os.OpenFile(fileStore.fileName, os.O_RDWR, 0644)
	if err != nil {
		err = errors.Wrap(err, "unable to open existing page store file")
		return
	}

	fileStore.PageFile, err = storage.OpenPageFile(fileStore.file, pageSize)
	if err != nil {
		_ = fileStore.file.Close()
		fileStore.file = nil
	}

	return
}

// Close - Writes the header and closes the store file
func (F *FileStore) Close() (err error) {
	if F.file == nil {
		return
	}

	err = F.WriteHeader()
	if err == nil {
		err = F.file.Sync()
	}
	if cerr := F.file.Close(); err == nil {
		err = cerr
	}
	F.file = nil

	return
}

// Remove - Removes the store file, make sure to close it first before calling this function
func (F *FileStore) Remove() (err error) {
	// Only try to remove if exists, and is not by accident a directory
	if stat, ok := os.Stat(F.fileName); ok == nil {
		if !stat.IsDir() {
			err = os.Remove(F.fileName)
			if err != nil {
				err = errors.Wrap(err, "error while removing page store file")
				return
			}
		}
	}

	return
}

// FileName - Returns the name of the store file
func (F *FileStore) FileName() string {
	return F.fileName
}
