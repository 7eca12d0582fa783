// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmbox

import (
	"math"

	"github.com/pkg/errors"

	"github.com/nxgtw/go-shmbox/internal/allocator"
)

// f64Width is the wire width of one array element.
const f64Width = 8

// WriteBytes copies p into the named segment starting at the byte
// offset off. The segment is attached on first use, so callers never
// need an explicit attach step. The copy is all-or-nothing: on
// ErrOutOfBounds the segment contents are unchanged.
func (m *Manager) WriteBytes(name string, p []byte, off int64) error {
	seg, err := m.Segment(name)
	if err != nil {
		return err
	}
	return seg.writeAt(p, off)
}

// ReadBytes fills p with len(p) bytes of the named segment starting at
// the byte offset off. Same auto-attach and bounds rules as WriteBytes.
func (m *Manager) ReadBytes(name string, p []byte, off int64) error {
	seg, err := m.Segment(name)
	if err != nil {
		return err
	}
	return seg.readAt(p, off)
}

// WriteFloat64s copies values into the named segment starting at the
// given element offset. Offsets and lengths are converted to bytes
// before the bounds check, so large element counts fail cleanly with
// ErrOutOfBounds instead of overflowing.
func (m *Manager) WriteFloat64s(name string, values []float64, elemOffset int) error {
	p, off, err := f64Range(name, values, elemOffset)
	if err != nil {
		return err
	}
	return m.WriteBytes(name, p, off)
}

// ReadFloat64s fills values with len(values) elements of the named
// segment starting at the given element offset.
func (m *Manager) ReadFloat64s(name string, values []float64, elemOffset int) error {
	p, off, err := f64Range(name, values, elemOffset)
	if err != nil {
		return err
	}
	return m.ReadBytes(name, p, off)
}

// f64Range converts an element slice and offset into the byte view and
// byte offset used by the transfer engine.
func f64Range(name string, values []float64, elemOffset int) ([]byte, int64, error) {
	if elemOffset < 0 || int64(elemOffset) > math.MaxInt64/f64Width {
		return nil, 0, errors.Wrapf(ErrOutOfBounds,
			"segment %q: invalid element offset %d", name, elemOffset)
	}
	return allocator.Float64Bytes(values), int64(elemOffset) * f64Width, nil
}
