package page

import (
	"encoding/binary"
	"fmt"

	"github.com/gostonefire/filehashjoin/fhjerrors"
	"github.com/gostonefire/filehashjoin/internal/conf"
	"github.com/gostonefire/filehashjoin/internal/model"
)

// Bytes - Converts the page to its on-disk representation, the result is always Size(layout) long
func (P *Page) Bytes() (buf []byte) {
	buf = make([]byte, Size(P.layout))

	binary.LittleEndian.PutUint32(buf[conf.MagicOffset:], conf.PageMagic)
	buf[conf.KindOffset] = uint8(P.kind)
	binary.LittleEndian.PutUint16(buf[conf.SizeOffset:], uint16(P.Size()))
	binary.LittleEndian.PutUint16(buf[conf.RecordsPerPageOffset:], uint16(P.layout.RecordsPerPage))
	binary.LittleEndian.PutUint32(buf[conf.KeyLengthOffset:], uint32(P.layout.KeyLength))
	binary.LittleEndian.PutUint32(buf[conf.ValueLengthOffset:], uint32(P.layout.ValueLength))

	offset := conf.PageHeaderLength
	if P.kind == model.PairPage {
		for _, pair := range P.pairs {
			state := model.EntryPairBuildLeft
			if pair.BuildSide == model.Right {
				state = model.EntryPairBuildRight
			}
			offset = P.putEntry(buf, offset, state, pair.Build)
			offset = P.putEntry(buf, offset, model.EntryPairProbe, pair.Probe)
		}
	} else {
		for _, record := range P.records {
			offset = P.putEntry(buf, offset, model.EntryRecord, record)
		}
	}

	return
}

// Load - Replaces the contents of the page with the page decoded from buf.
// The page layout is not taken from buf but verified against it.
//   - buf is the raw page as read from a page store
//   - pageID is the id buf was read from, it is only used in errors
//
// It returns an error of type fhjerrors.CorruptPage if buf does not decode against the layout.
func (P *Page) Load(buf []byte, pageID model.PageID) (err error) {
	corrupt := func(format string, a ...interface{}) error {
		return fhjerrors.NewCorruptPage(fhjerrors.PhaseStorage, int64(pageID), fmt.Sprintf(format, a...))
	}

	if int64(len(buf)) != Size(P.layout) {
		err = corrupt("length %d differs from page size %d", len(buf), Size(P.layout))
		return
	}
	if binary.LittleEndian.Uint32(buf[conf.MagicOffset:]) != conf.PageMagic {
		err = corrupt("bad magic")
		return
	}
	if int64(binary.LittleEndian.Uint16(buf[conf.RecordsPerPageOffset:])) != P.layout.RecordsPerPage ||
		int64(binary.LittleEndian.Uint32(buf[conf.KeyLengthOffset:])) != P.layout.KeyLength ||
		int64(binary.LittleEndian.Uint32(buf[conf.ValueLengthOffset:])) != P.layout.ValueLength {
		err = corrupt("page layout does not match")
		return
	}

	kind := model.PageKind(buf[conf.KindOffset])
	if kind != model.RecordPage && kind != model.PairPage {
		err = corrupt("unknown page kind %d", kind)
		return
	}
	P.ClearAs(kind)

	size := int(binary.LittleEndian.Uint16(buf[conf.SizeOffset:]))
	if size > P.Capacity() {
		err = corrupt("stored count %d exceeds capacity %d", size, P.Capacity())
		return
	}

	offset := conf.PageHeaderLength
	var state, probeState uint8
	var record, probe model.Record
	for i := 0; i < size; i++ {
		state, record, offset = P.getEntry(buf, offset)
		if kind == model.RecordPage {
			if state != model.EntryRecord {
				err = corrupt("entry %d has state %d in a record page", i, state)
				break
			}
			P.records = append(P.records, record)
			continue
		}

		probeState, probe, offset = P.getEntry(buf, offset)
		if probeState != model.EntryPairProbe || (state != model.EntryPairBuildLeft && state != model.EntryPairBuildRight) {
			err = corrupt("pair %d has states %d/%d", i, state, probeState)
			break
		}
		buildSide := model.Left
		if state == model.EntryPairBuildRight {
			buildSide = model.Right
		}
		P.pairs = append(P.pairs, model.Pair{Build: record, Probe: probe, BuildSide: buildSide})
	}

	if err != nil {
		P.Clear()
	}

	return
}

// putEntry - Writes one entry at offset and returns the offset of the next entry
func (P *Page) putEntry(buf []byte, offset int64, state uint8, record model.Record) int64 {
	buf[offset] = state
	offset += conf.StateBytes
	offset += int64(copy(buf[offset:offset+P.layout.KeyLength], record.Key))
	offset += int64(copy(buf[offset:offset+P.layout.ValueLength], record.Value))
	return offset
}

// getEntry - Reads one entry at offset and returns it with the offset of the next entry
func (P *Page) getEntry(buf []byte, offset int64) (state uint8, record model.Record, next int64) {
	state = buf[offset]
	keyStart := offset + conf.StateBytes
	valueStart := keyStart + P.layout.KeyLength

	record = model.Record{
		Key:   make([]byte, P.layout.KeyLength),
		Value: make([]byte, P.layout.ValueLength),
	}
	_ = copy(record.Key, buf[keyStart:valueStart])
	_ = copy(record.Value, buf[valueStart:valueStart+P.layout.ValueLength])
	next = valueStart + P.layout.ValueLength

	return
}
