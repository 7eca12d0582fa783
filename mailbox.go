// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmbox

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	ipcsync "github.com/nxgtw/go-shmbox/sync"
)

// semNameFor derives the channel semaphore name from the segment name.
// The derivation is deterministic, so a consumer can fall back to it
// even before the envelope is readable.
func semNameFor(name string) string {
	return "sem_" + name
}

// PublishArray writes values into the named channel and raises its
// semaphore. The data segment is created on first publish, sized for
// the envelope plus the payload; an existing smaller segment fails
// with ErrSizeMismatch, it is never silently truncated.
//
// The envelope and the payload are fully written before the semaphore
// is raised: the raised semaphore is the only externally observable
// marker that the channel is ready, so a failure at any earlier step
// leaves the channel not-ready rather than half-published.
//
// A second publish before a consume overwrites the payload; the
// channel is a single-slot mailbox, not a queue.
func (m *Manager) PublishArray(name string, values []float64) error {
	payloadSize := int64(len(values)) * f64Width
	total := int64(envelopeSize) + payloadSize
	seg, err := m.OpenSegment(name, total)
	if err != nil {
		return err
	}
	if seg.Size() < total {
		return errors.Wrapf(ErrSizeMismatch,
			"channel %q holds %d bytes, publish needs %d", name, seg.Size(), total)
	}
	env := envelope{
		payloadSize:  uint64(payloadSize),
		elementCount: uint64(len(values)),
		typeTag:      TypeTagFloat64Array,
		semName:      semNameFor(name),
	}
	header, err := env.marshal()
	if err != nil {
		return err
	}
	if err := m.WriteBytes(name, header, 0); err != nil {
		return err
	}
	if err := m.WriteFloat64s(name, values, envelopeSize/f64Width); err != nil {
		return err
	}
	sem, err := ipcsync.NewSemaphore(env.semName, os.O_CREATE, m.perm, 0)
	if err != nil {
		return errors.Wrapf(ErrSyncUnavailable, "channel %q: %v", name, err)
	}
	defer sem.Close()
	if err := sem.Signal(1); err != nil {
		return errors.Wrapf(ErrSyncUnavailable, "channel %q: %v", name, err)
	}
	m.logger.Debug("array published",
		zap.String("channel", name), zap.Int("elements", len(values)))
	return nil
}

// ConsumeArray waits for a publish on the named channel and returns
// the payload. A negative timeout means the manager's default.
//
// The segment is opened but never created here: consuming a channel
// that was never published fails with ErrNotFound. The envelope is
// re-read after the wait succeeds, as it is authoritative only then.
// On a type tag mismatch the semaphore unit is put back, so a
// correctly-typed consumer can still proceed, and ErrTypeMismatch is
// returned. On success the consumed unit is not restored: a second
// immediate consume times out until the next publish.
func (m *Manager) ConsumeArray(name string, timeout time.Duration) ([]float64, error) {
	if timeout < 0 {
		timeout = m.timeout
	}
	seg, err := m.openExisting(name)
	if err != nil {
		return nil, err
	}
	header := make([]byte, envelopeSize)
	if err := m.ReadBytes(name, header, 0); err != nil {
		return nil, err
	}
	env, err := unmarshalEnvelope(header)
	if err != nil {
		return nil, err
	}
	if env.semName == "" {
		return nil, errors.Wrapf(ErrSyncUnavailable, "channel %q was never published", name)
	}
	sem, err := ipcsync.NewSemaphore(env.semName, 0, m.perm, 0)
	if err != nil {
		return nil, errors.Wrapf(ErrSyncUnavailable, "channel %q semaphore %q: %v", name, env.semName, err)
	}
	defer sem.Close()
	ok, err := sem.WaitTimeout(timeout)
	if err != nil {
		return nil, errors.Wrapf(ErrSyncUnavailable, "channel %q wait: %v", name, err)
	}
	if !ok {
		return nil, errors.Wrapf(ErrTimeout, "channel %q: no publish within %v", name, timeout)
	}
	if err := m.ReadBytes(name, header, 0); err != nil {
		return nil, err
	}
	if env, err = unmarshalEnvelope(header); err != nil {
		return nil, err
	}
	if env.typeTag != TypeTagFloat64Array || env.payloadSize != env.elementCount*f64Width {
		if serr := sem.Signal(1); serr != nil {
			m.logger.Warn("failed to restore the channel semaphore",
				zap.String("channel", name), zap.Error(serr))
		}
		return nil, errors.Wrapf(ErrTypeMismatch,
			"channel %q holds %q (%d bytes, %d elements), want %q",
			name, env.typeTag, env.payloadSize, env.elementCount, TypeTagFloat64Array)
	}
	if env.elementCount > uint64((seg.Size()-envelopeSize)/f64Width) {
		return nil, errors.Wrapf(ErrOutOfBounds,
			"channel %q envelope claims %d elements, segment holds %d bytes",
			name, env.elementCount, seg.Size())
	}
	values := make([]float64, env.elementCount)
	if err := m.ReadFloat64s(name, values, envelopeSize/f64Width); err != nil {
		return nil, err
	}
	m.logger.Debug("array consumed",
		zap.String("channel", name), zap.Int("elements", len(values)))
	return values, nil
}
