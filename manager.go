// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmbox

import (
	"os"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nxgtw/go-shmbox/shm"
	ipcsync "github.com/nxgtw/go-shmbox/sync"
)

// Manager owns a process-scoped registry of named segments.
// Several independent managers can coexist in one process; handles are
// not shared between them. All methods are safe for concurrent use.
type Manager struct {
	registry cmap.ConcurrentMap[string, *Segment]
	logger   *zap.Logger
	timeout  time.Duration
	perm     os.FileMode
}

// NewManager creates a manager with the given config.
// Manager{} is not usable, always use this func.
func NewManager(cfg Config) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		registry: cmap.New[*Segment](),
		logger:   cfg.Logger,
		timeout:  cfg.DefaultTimeout,
		perm:     cfg.Perm,
	}
}

// CreateSegment creates a segment of at least size bytes and registers
// it under the given name. It fails with ErrAlreadyExists, if the name
// is already registered in this manager. The OS object is reused, if a
// segment of that name is already present in the kernel namespace; in
// that case its size must not be smaller than requested
// (ErrSizeMismatch otherwise).
func (m *Manager) CreateSegment(name string, size int64) (*Segment, error) {
	if size <= 0 {
		return nil, errors.Errorf("invalid segment size %d", size)
	}
	seg := &Segment{name: name, size: size}
	seg.mu.Lock()
	defer seg.mu.Unlock()
	if !m.registry.SetIfAbsent(name, seg) {
		return nil, errors.Wrapf(ErrAlreadyExists, "segment %q", name)
	}
	obj, created, err := shm.NewMemoryObjectSize(name, os.O_CREATE, m.perm, size)
	if err != nil {
		m.registry.Remove(name)
		m.logger.Warn("segment create failed", zap.String("name", name), zap.Error(err))
		return nil, errors.Wrapf(ErrAttachFailed, "segment %q: %v", name, err)
	}
	if !created {
		if actual := obj.Size(); actual < size {
			m.registry.Remove(name)
			obj.Close()
			return nil, errors.Wrapf(ErrSizeMismatch,
				"segment %q holds %d bytes, need %d", name, actual, size)
		} else if actual > size {
			seg.size = actual
		}
	}
	seg.obj = obj
	m.logger.Debug("segment registered",
		zap.String("name", name), zap.Int64("size", seg.size), zap.Bool("created", created))
	return seg, nil
}

// OpenSegment returns the registered segment with the given name, or
// creates one of at least size bytes. Opening a registered name is
// idempotent and ignores the size argument; the caller must check the
// capacity, if it matters.
func (m *Manager) OpenSegment(name string, size int64) (*Segment, error) {
	for {
		if seg, ok := m.registry.Get(name); ok {
			return seg, nil
		}
		seg, err := m.CreateSegment(name, size)
		if err == nil {
			return seg, nil
		}
		if !IsAlreadyExists(err) {
			return nil, err
		}
		// lost a create race inside this process, take the winner's handle
	}
}

// DestroySegment detaches the named segment, removes the kernel object
// and deregisters the handle. On an OS-level release failure, the
// registry entry is removed anyway and ErrDestroyFailed is returned,
// since the process-local handle is no longer valid.
func (m *Manager) DestroySegment(name string) error {
	seg, ok := m.registry.Pop(name)
	if !ok {
		return errors.Wrapf(ErrNotFound, "segment %q", name)
	}
	if err := seg.destroy(); err != nil {
		m.logger.Warn("segment destroy failed", zap.String("name", name), zap.Error(err))
		return errors.Wrapf(ErrDestroyFailed, "segment %q: %v", name, err)
	}
	m.logger.Debug("segment destroyed", zap.String("name", name))
	return nil
}

// AttachSegment maps the named segment into the process address space.
// Attaching an attached segment is a no-op.
func (m *Manager) AttachSegment(name string) error {
	seg, ok := m.registry.Get(name)
	if !ok {
		return errors.Wrapf(ErrNotFound, "segment %q", name)
	}
	return seg.Attach()
}

// DetachSegment unmaps the named segment. Detaching a detached
// segment is a no-op; the kernel object stays intact.
func (m *Manager) DetachSegment(name string) error {
	seg, ok := m.registry.Get(name)
	if !ok {
		return errors.Wrapf(ErrNotFound, "segment %q", name)
	}
	return seg.Detach()
}

// Segment returns the registered segment with the given name.
func (m *Manager) Segment(name string) (*Segment, error) {
	seg, ok := m.registry.Get(name)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "segment %q", name)
	}
	return seg, nil
}

// ListSegments returns the names registered in this manager,
// in no particular order.
func (m *Manager) ListSegments() []string {
	return m.registry.Keys()
}

// ListOSSegments returns the names of all shared-memory objects
// present in the kernel namespace, including segments created by other
// processes and segments abandoned after a crash.
func (m *Manager) ListOSSegments() ([]string, error) {
	return shm.ListMemoryObjects()
}

// Reclaim removes the named channel from the kernel namespace: the
// data segment and its companion semaphore, whether or not they are
// registered in this manager. It is meant for cleaning up after
// processes that crashed before destroying their channels.
func (m *Manager) Reclaim(name string) error {
	if seg, ok := m.registry.Pop(name); ok {
		if err := seg.Detach(); err != nil {
			m.logger.Warn("reclaim detach failed", zap.String("name", name), zap.Error(err))
		}
	}
	semErr := ipcsync.DestroySemaphore(semNameFor(name))
	objErr := shm.DestroyMemoryObject(name)
	if objErr != nil {
		return errors.Wrapf(ErrDestroyFailed, "segment %q: %v", name, objErr)
	}
	if semErr != nil {
		return errors.Wrapf(ErrDestroyFailed, "semaphore for %q: %v", name, semErr)
	}
	m.logger.Debug("channel reclaimed", zap.String("name", name))
	return nil
}

// Close detaches all registered segments and empties the registry.
// Kernel objects are left intact and can be reopened later.
func (m *Manager) Close() error {
	var firstErr error
	for _, name := range m.registry.Keys() {
		if seg, ok := m.registry.Pop(name); ok {
			if err := seg.Detach(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// openExisting resolves a name to a segment without ever creating the
// kernel object: a registry hit is returned as is, otherwise the OS
// object is opened and registered. Used by the consume path, which
// must not create garbage segments.
func (m *Manager) openExisting(name string) (*Segment, error) {
	for {
		if seg, ok := m.registry.Get(name); ok {
			return seg, nil
		}
		obj, _, err := shm.NewMemoryObjectSize(name, 0, m.perm, 0)
		if err != nil {
			if os.IsNotExist(errors.Cause(err)) {
				return nil, errors.Wrapf(ErrNotFound, "segment %q", name)
			}
			return nil, errors.Wrapf(ErrAttachFailed, "segment %q: %v", name, err)
		}
		seg := &Segment{name: name, size: obj.Size(), obj: obj}
		if m.registry.SetIfAbsent(name, seg) {
			return seg, nil
		}
		// lost a registration race, use the winner's handle
		obj.Close()
	}
}
