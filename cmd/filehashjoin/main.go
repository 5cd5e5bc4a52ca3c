package main

import (
	"flag"
	"math/rand"
	"os"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gostonefire/filehashjoin"
	"github.com/gostonefire/filehashjoin/internal/utils"
	"github.com/sirupsen/logrus"
)

func main() {
	var configPath string
	var leftRecords, rightRecords, distinctKeys int
	var seed int64
	var keep bool
	flag.StringVar(&configPath, "config", "", "ini configuration file, defaults are used if not given")
	flag.IntVar(&leftRecords, "left", 10000, "number of records in the generated left relation")
	flag.IntVar(&rightRecords, "right", 5000, "number of records in the generated right relation")
	flag.IntVar(&distinctKeys, "keys", 2000, "number of distinct join keys to draw from")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	flag.BoolVar(&keep, "keep", false, "keep the page store after the run")
	flag.Parse()

	config := filehashjoin.Config{
		BufferSlots:    filehashjoin.DefaultBufferSlots,
		RecordsPerPage: filehashjoin.DefaultRecordsPerPage,
		KeyLength:      filehashjoin.DefaultKeyLength,
		ValueLength:    filehashjoin.DefaultValueLength,
	}
	if configPath != "" {
		var err error
		config, err = filehashjoin.LoadConfig(configPath)
		if err != nil {
			logrus.WithError(err).Fatal("could not load configuration")
		}
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	log := config.Logger

	fhj, err := filehashjoin.NewFileHashJoin(config)
	if err != nil {
		log.WithError(err).Fatal("could not create file hash join")
	}

	code := run(fhj, config, log, leftRecords, rightRecords, distinctKeys, seed)

	if keep {
		err = fhj.Close()
	} else {
		err = fhj.Remove()
	}
	if err != nil {
		log.WithError(err).Error("could not release page store")
		code = 1
	}

	os.Exit(code)
}

// run - Generates both relations, joins them and verifies the result, returning the process exit code
func run(fhj *filehashjoin.FileHashJoin, config filehashjoin.Config, log logrus.FieldLogger, nLeft, nRight, keys int, seed int64) int {
	rnd := rand.New(rand.NewSource(seed))
	left := generate(rnd, nLeft, keys, config)
	right := generate(rnd, nRight, keys, config)

	leftRange, err := fhj.WriteRelation(left)
	if err != nil {
		log.WithError(err).Error("could not write left relation")
		return 1
	}
	rightRange, err := fhj.WriteRelation(right)
	if err != nil {
		log.WithError(err).Error("could not write right relation")
		return 1
	}

	start := time.Now()
	result, err := fhj.Join(leftRange, rightRange)
	if err != nil {
		log.WithError(err).Error("join failed")
		return 1
	}
	elapsed := time.Since(start)

	pairs, err := fhj.ReadResult(result)
	if err != nil {
		log.WithError(err).Error("could not read result")
		return 1
	}

	stat := fhj.Stat()
	log.WithFields(logrus.Fields{
		"seed":            seed,
		"left_records":    len(left),
		"right_records":   len(right),
		"result_pages":    len(result),
		"result_pairs":    len(pairs),
		"pages_read":      stat.PagesRead,
		"pages_written":   stat.PagesWritten,
		"spilled_pages":   stat.SpilledPages,
		"overflow_passes": stat.OverflowPasses,
		"elapsed":         elapsed,
	}).Info("join finished")

	// Distinct matched keys must be exactly the keys the two relations have in common
	leftKeys, rightKeys, matched := mapset.NewSet[string](), mapset.NewSet[string](), mapset.NewSet[string]()
	for _, r := range left {
		leftKeys.Add(string(r.Key))
	}
	for _, r := range right {
		rightKeys.Add(string(r.Key))
	}
	for _, p := range pairs {
		if string(p.First.Key) != string(p.Second.Key) {
			log.Error("result holds a pair with different keys")
			return 1
		}
		matched.Add(string(p.First.Key))
	}

	common := leftKeys.Intersect(rightKeys)
	if !common.Equal(matched) {
		log.WithFields(logrus.Fields{
			"common_keys":  common.Cardinality(),
			"matched_keys": matched.Cardinality(),
		}).Error("matched keys differ from common keys")
		return 1
	}
	log.WithField("matched_keys", matched.Cardinality()).Info("result verified")

	return 0
}

// generate - Returns n records with keys drawn from a domain of the given size
func generate(rnd *rand.Rand, n, keys int, config filehashjoin.Config) (records []filehashjoin.Record) {
	records = make([]filehashjoin.Record, n)
	for i := range records {
		value := make([]byte, config.ValueLength)
		_, _ = rnd.Read(value)
		records[i] = filehashjoin.Record{
			Key:   utils.UintToBytes(uint64(rnd.Intn(keys)), config.KeyLength),
			Value: value,
		}
	}

	return
}
