package filehashjoin

import (
	"os"
	"strings"

	"github.com/gostonefire/filehashjoin/internal/hash"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// Defaults used by LoadConfig for keys missing in the configuration file
const (
	DefaultBufferSlots    = 16
	DefaultRecordsPerPage = 64
	DefaultKeyLength      = 8
	DefaultValueLength    = 8
)

// LoadConfig - Reads a Config from an ini file with the sections below, missing keys get their defaults.
//
//	[join]     buffer_slots, records_per_page, key_length, value_length
//	[storage]  store (memory, file or pebble), name
//	[hash]     algorithm (default or crc32)
//	[log]      level (logrus level name), format (text or json)
//
// The returned Config carries a logger configured from the [log] section.
func LoadConfig(fileName string) (config Config, err error) {
	if _, err = os.Stat(fileName); err != nil {
		err = errors.Wrapf(err, "configuration file %s", fileName)
		return
	}

	file, err := ini.Load(fileName)
	if err != nil {
		err = errors.Wrapf(err, "error while parsing configuration file %s", fileName)
		return
	}

	config, err = parseConfig(file)

	return
}

// parseConfig - Maps the sections of a loaded ini file to a Config
func parseConfig(file *ini.File) (config Config, err error) {
	join := file.Section("join")
	config.BufferSlots = join.Key("buffer_slots").MustInt(DefaultBufferSlots)
	config.RecordsPerPage = join.Key("records_per_page").MustInt64(DefaultRecordsPerPage)
	config.KeyLength = join.Key("key_length").MustInt64(DefaultKeyLength)
	config.ValueLength = join.Key("value_length").MustInt64(DefaultValueLength)

	store := file.Section("storage")
	config.Store = strings.ToLower(store.Key("store").MustString(StoreMemory))
	config.Name = store.Key("name").String()

	config.HashAlgorithm, err = hash.ByName(strings.ToLower(file.Section("hash").Key("algorithm").MustString(hash.DefaultName)))
	if err != nil {
		return
	}

	logger, err := newLogger(file.Section("log"))
	if err != nil {
		return
	}
	config.Logger = logger

	return
}

// newLogger - Creates a logger from the [log] section
func newLogger(section *ini.Section) (logger *logrus.Logger, err error) {
	level, err := logrus.ParseLevel(section.Key("level").MustString("info"))
	if err != nil {
		return
	}

	logger = logrus.New()
	logger.SetLevel(level)

	switch format := strings.ToLower(section.Key("format").MustString("text")); format {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger = nil
		err = errors.Errorf("unknown log format %q", format)
	}

	return
}
