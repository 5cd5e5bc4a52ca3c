package conf

// PageHeaderLength - Length of the header in front of the entries of every page
const PageHeaderLength int64 = 32

// PageMagic - Marks the start of a valid page ("FHJP")
const PageMagic uint32 = 0x464a4850

// MagicOffset - Header offset to the page magic - 4 bytes
const MagicOffset int64 = 0

// KindOffset - Header offset to the page kind (records or pairs) - 1 byte
const KindOffset int64 = 4

// SizeOffset - Header offset to the number of records or pairs stored - 2 bytes
const SizeOffset int64 = 6

// RecordsPerPageOffset - Header offset to the record capacity of the page layout - 2 bytes
const RecordsPerPageOffset int64 = 8

// KeyLengthOffset - Header offset to the key length of the page layout - 4 bytes
const KeyLengthOffset int64 = 10

// ValueLengthOffset - Header offset to the value length of the page layout - 4 bytes
const ValueLengthOffset int64 = 14

// StateBytes - Number of bytes in front of each entry holding the entry state
const StateBytes int64 = 1

// MaxRecordsPerPage - Upper limit of records per page given the 2 byte size fields
const MaxRecordsPerPage int64 = 1<<16 - 1

// StoreFileHeaderLength - Length of the page store file header
const StoreFileHeaderLength int64 = 1024

// StoreMagicOffset - Store header offset to the store magic - 4 bytes
const StoreMagicOffset int64 = 0

// StorePageSizeOffset - Store header offset to the page size - 8 bytes
const StorePageSizeOffset int64 = 4

// StoreNumPagesOffset - Store header offset to the number of allocated pages - 8 bytes
const StoreNumPagesOffset int64 = 12

// StoreMagic - Marks a valid page store file ("FHJS")
const StoreMagic uint32 = 0x464a4853
