// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmbox

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	envelopeSize = 112
	typeTagSize  = 32
	semNameSize  = 64

	// TypeTagFloat64Array marks a payload of packed float64 values.
	TypeTagFloat64Array = "double_array"
)

// envelope is the fixed header at offset 0 of a channel segment.
// Independently built producers and consumers agree on this layout
// without exchanging any schema. All fields are little-endian:
//	offset 0:  u64 payload size in bytes
//	offset 8:  u64 element count
//	offset 16: [32]byte type tag, NUL-padded
//	offset 48: [64]byte semaphore name, NUL-padded
// Invariant: payload size == element count * element width, and the
// segment capacity is at least envelopeSize + payload size.
type envelope struct {
	payloadSize  uint64
	elementCount uint64
	typeTag      string
	semName      string
}

func (e *envelope) marshal() ([]byte, error) {
	if len(e.typeTag) >= typeTagSize {
		return nil, errors.Errorf("type tag %q is too long", e.typeTag)
	}
	if len(e.semName) >= semNameSize {
		return nil, errors.Errorf("semaphore name %q is too long", e.semName)
	}
	buf := make([]byte, envelopeSize)
	binary.LittleEndian.PutUint64(buf[0:8], e.payloadSize)
	binary.LittleEndian.PutUint64(buf[8:16], e.elementCount)
	copy(buf[16:16+typeTagSize], e.typeTag)
	copy(buf[48:48+semNameSize], e.semName)
	return buf, nil
}

func unmarshalEnvelope(b []byte) (envelope, error) {
	if len(b) < envelopeSize {
		return envelope{}, errors.Errorf("envelope needs %d bytes, got %d", envelopeSize, len(b))
	}
	return envelope{
		payloadSize:  binary.LittleEndian.Uint64(b[0:8]),
		elementCount: binary.LittleEndian.Uint64(b[8:16]),
		typeTag:      cString(b[16 : 16+typeTagSize]),
		semName:      cString(b[48 : 48+semNameSize]),
	}, nil
}

// cString cuts a NUL-padded byte field down to a string.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
