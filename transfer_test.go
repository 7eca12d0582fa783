// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build linux

package shmbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestByteRoundTrip(t *testing.T) {
	a := assert.New(t)
	const name = "shmbox-io-bytes"
	m := newTestManager(t, name)
	if _, err := m.CreateSegment(name, 1024); !a.NoError(err) {
		return
	}
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	a.NoError(m.WriteBytes(name, data, 100))
	actual := make([]byte, len(data))
	a.NoError(m.ReadBytes(name, actual, 100))
	a.Equal(data, actual)
	// empty transfers at the very end of the segment are valid.
	a.NoError(m.WriteBytes(name, nil, 1024))
	a.NoError(m.ReadBytes(name, nil, 1024))
}

func TestTransferAutoAttach(t *testing.T) {
	a := assert.New(t)
	const name = "shmbox-io-autoattach"
	m := newTestManager(t, name)
	seg, err := m.CreateSegment(name, 256)
	if !a.NoError(err) {
		return
	}
	a.False(seg.Attached())
	a.NoError(m.WriteBytes(name, []byte{42}, 0))
	a.True(seg.Attached())
}

func TestTransferUnknownName(t *testing.T) {
	a := assert.New(t)
	m := newTestManager(t)
	a.True(IsNotFound(m.WriteBytes("shmbox-io-nobody", []byte{1}, 0)))
	a.True(IsNotFound(m.ReadBytes("shmbox-io-nobody", make([]byte, 1), 0)))
}

func TestTransferOutOfBounds(t *testing.T) {
	a := assert.New(t)
	const name = "shmbox-io-bounds"
	m := newTestManager(t, name)
	if _, err := m.CreateSegment(name, 64); !a.NoError(err) {
		return
	}
	pattern := make([]byte, 64)
	for i := range pattern {
		pattern[i] = byte(i)
	}
	a.NoError(m.WriteBytes(name, pattern, 0))

	big := make([]byte, 32)
	a.True(IsOutOfBounds(m.WriteBytes(name, big, 40)))
	a.True(IsOutOfBounds(m.WriteBytes(name, big, -1)))
	a.True(IsOutOfBounds(m.WriteBytes(name, big, 65)))
	a.True(IsOutOfBounds(m.ReadBytes(name, big, 40)))

	// a rejected write leaves the contents unchanged.
	actual := make([]byte, 64)
	a.NoError(m.ReadBytes(name, actual, 0))
	a.Equal(pattern, actual)
}

func TestFloat64RoundTrip(t *testing.T) {
	a := assert.New(t)
	const name = "shmbox-io-doubles"
	m := newTestManager(t, name)
	if _, err := m.CreateSegment(name, 4096); !a.NoError(err) {
		return
	}
	values := []float64{0, 1.5, -2.25, 3.14159, 1e300, -1e-300, 42, 7}
	a.NoError(m.WriteFloat64s(name, values, 0))
	actual := make([]float64, len(values))
	a.NoError(m.ReadFloat64s(name, actual, 0))
	a.Equal(values, actual)

	// element offsets convert to byte offsets.
	a.NoError(m.WriteFloat64s(name, values, 3))
	shifted := make([]float64, len(values))
	a.NoError(m.ReadFloat64s(name, shifted, 3))
	a.Equal(values, shifted)
	var single [1]float64
	a.NoError(m.ReadFloat64s(name, single[:], 3))
	a.Equal(values[0], single[0])
}

func TestFloat64Bounds(t *testing.T) {
	a := assert.New(t)
	const name = "shmbox-io-doublesbounds"
	m := newTestManager(t, name)
	// 4096 bytes hold exactly 512 elements.
	if _, err := m.CreateSegment(name, 4096); !a.NoError(err) {
		return
	}
	values := make([]float64, 8)
	a.NoError(m.WriteFloat64s(name, values, 504))
	a.True(IsOutOfBounds(m.WriteFloat64s(name, values, 505)))
	a.True(IsOutOfBounds(m.WriteFloat64s(name, values, -1)))
	// element offsets too large to convert to bytes must not overflow
	// past the bounds check.
	huge := int(^uint(0) >> 2)
	a.True(IsOutOfBounds(m.WriteFloat64s(name, values, huge)))
	a.True(IsOutOfBounds(m.ReadFloat64s(name, values, huge)))
}

func TestSecondHandleSeesWrites(t *testing.T) {
	a := assert.New(t)
	const name = "shmbox-io-shared"
	producer := newTestManager(t, name)
	if _, err := producer.CreateSegment(name, 4096); !a.NoError(err) {
		return
	}
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	a.NoError(producer.WriteFloat64s(name, values, 0))

	// an independent manager maps the same physical memory.
	consumer := NewManager(Config{Logger: zaptest.NewLogger(t)})
	defer consumer.Close()
	if _, err := consumer.OpenSegment(name, 4096); !a.NoError(err) {
		return
	}
	actual := make([]float64, len(values))
	a.NoError(consumer.ReadFloat64s(name, actual, 0))
	a.Equal(values, actual)
}
