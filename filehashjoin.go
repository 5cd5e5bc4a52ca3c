package filehashjoin

import (
	"fmt"

	"github.com/gostonefire/filehashjoin/hashfunc"
	"github.com/gostonefire/filehashjoin/internal/buffer"
	"github.com/gostonefire/filehashjoin/internal/conf"
	"github.com/gostonefire/filehashjoin/internal/hash"
	"github.com/gostonefire/filehashjoin/internal/model"
	"github.com/gostonefire/filehashjoin/internal/page"
	"github.com/gostonefire/filehashjoin/internal/storage"
	"github.com/gostonefire/filehashjoin/internal/storage/filestore"
	"github.com/gostonefire/filehashjoin/internal/storage/memstore"
	"github.com/gostonefire/filehashjoin/internal/storage/pebblestore"
	"github.com/sirupsen/logrus"
)

// Record - A record of a relation, Key is the join key
type Record = model.Record

// PageID - Identifier of a page in the page store of a FileHashJoin
type PageID = model.PageID

// PageRange - A half open interval [Start, End) of page ids
type PageRange = model.PageRange

// Names of the available page stores
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StorePebble = "pebble"
)

// Config - Configuration of a FileHashJoin
//   - Name is used to form the file or directory name of the page store, not needed for the memory store
//   - Store is one of StoreMemory, StoreFile or StorePebble, empty gives StoreMemory
//   - BufferSlots is the number of in-memory page slots (B), at least 2 to partition and 3 to probe
//   - RecordsPerPage is the number of records a page holds, a result page holds half as many pairs
//   - KeyLength is the length of the join key of every record
//   - ValueLength is the length of the payload of every record
//   - HashAlgorithm is an optional custom pair of hash functions, nil gives the internal default
//   - Logger is an optional logger, nil gives the logrus standard logger
type Config struct {
	Name           string
	Store          string
	BufferSlots    int
	RecordsPerPage int64
	KeyLength      int64
	ValueLength    int64
	HashAlgorithm  hashfunc.HashAlgorithm
	Logger         logrus.FieldLogger
}

// JoinStat - Counters accumulated since the FileHashJoin was created
//   - PagesRead is the number of pages read from the page store
//   - PagesWritten is the number of pages written to the page store
//   - SpilledPages is the number of build pages written because a sub-bucket buffer was full
//   - OverflowPasses is the number of extra scans of a probe side against spilled build pages
//   - ResultPairs is the number of joined pairs produced
type JoinStat struct {
	PagesRead      int64
	PagesWritten   int64
	SpilledPages   int64
	OverflowPasses int64
	ResultPairs    int64
}

// FileHashJoin - The main implementation struct
type FileHashJoin struct {
	store         storage.DiskStore
	pool          *buffer.Pool
	layout        model.PageLayout
	hashAlgorithm hashfunc.HashAlgorithm
	logger        logrus.FieldLogger
	name          string
	stat          JoinStat
}

// NewFileHashJoin - Returns a new FileHashJoin with an empty page store and an empty buffer pool.
//   - conf is a Config struct, see Config for details on each field
//
// It returns:
//   - fileHashJoin is a pointer to a FileHashJoin struct
//   - err is a normal go Error which should be nil if everything went ok
func NewFileHashJoin(config Config) (fileHashJoin *FileHashJoin, err error) {
	// Check if the buffer slots are valid
	if config.BufferSlots <= 0 {
		err = fmt.Errorf("buffer slots must be a positive value higher than 0 (zero)")
		return
	}

	// Check if records per page is valid, a result page must hold at least one pair
	if config.RecordsPerPage < 2 || config.RecordsPerPage > conf.MaxRecordsPerPage {
		err = fmt.Errorf("records per page must be between 2 and %d", conf.MaxRecordsPerPage)
		return
	}

	// Check if the key length is valid
	if config.KeyLength <= 0 {
		err = fmt.Errorf("key length must be a positive value higher than 0 (zero)")
		return
	}

	// Check if the valueLength is valid
	if config.ValueLength < 0 {
		err = fmt.Errorf("value length can not be negative")
		return
	}

	if config.Store == "" {
		config.Store = StoreMemory
	}

	// Check if name is empty
	if config.Store != StoreMemory && config.Name == "" {
		err = fmt.Errorf("name can not be empty, it will be used to name physical files")
		return
	}

	hashAlgorithm := config.HashAlgorithm
	if hashAlgorithm == nil {
		hashAlgorithm = hash.NewDefaultHashAlgorithm()
	}

	logger := config.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	layout := model.PageLayout{
		KeyLength:      config.KeyLength,
		ValueLength:    config.ValueLength,
		RecordsPerPage: config.RecordsPerPage,
	}

	store, err := newStore(config.Store, config.Name, page.Size(layout))
	if err != nil {
		return
	}

	pool, err := buffer.NewPool(config.BufferSlots, store, layout)
	if err != nil {
		_ = store.Remove()
		return
	}

	fileHashJoin = &FileHashJoin{
		store:         store,
		pool:          pool,
		layout:        layout,
		hashAlgorithm: hashAlgorithm,
		logger:        logger.WithField("component", "filehashjoin"),
		name:          config.Name,
	}

	fileHashJoin.logger.WithFields(logrus.Fields{
		"store":        config.Store,
		"buffer_slots": config.BufferSlots,
		"page_size":    page.Size(layout),
	}).Debug("created file hash join")

	return
}

// newStore - Creates the page store named by kind
func newStore(kind, name string, pageSize int64) (store storage.DiskStore, err error) {
	switch kind {
	case StoreMemory:
		store, err = memstore.NewMemStore(pageSize)
	case StoreFile:
		store, err = filestore.NewFileStore(name, pageSize)
	case StorePebble:
		store, err = pebblestore.NewPebbleStore(name, pageSize)
	default:
		err = fmt.Errorf("unknown page store %q", kind)
	}

	return
}

// BufferSlots - Returns the number of buffer slots (B)
func (F *FileHashJoin) BufferSlots() int {
	return F.pool.Size()
}

// Stat - Returns counters accumulated since the FileHashJoin was created
func (F *FileHashJoin) Stat() (stat JoinStat) {
	stat = F.stat
	io := F.store.Stats()
	stat.PagesRead = io.PagesRead
	stat.PagesWritten = io.PagesWritten

	return
}

// Close - Closes the page store. Use this preferably in a "defer" directly after NewFileHashJoin.
func (F *FileHashJoin) Close() error {
	return F.store.Close()
}

// Remove - Closes and removes the page store, all relations and results are lost
func (F *FileHashJoin) Remove() (err error) {
	_ = F.store.Close()
	return F.store.Remove()
}
