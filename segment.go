// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmbox

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/nxgtw/go-shmbox/mmf"
	"github.com/nxgtw/go-shmbox/shm"
)

// Segment is one named shared-memory handle, owned by a Manager.
// At most one Segment exists per name per Manager; other processes
// open the same name independently and map the same physical memory.
// The size is fixed at creation/open time.
type Segment struct {
	mu     sync.Mutex
	name   string
	size   int64
	obj    *shm.MemoryObject
	region *mmf.MemoryRegion
}

// Name returns the rendezvous name of the segment.
func (s *Segment) Name() string {
	return s.name
}

// Size returns the segment capacity in bytes.
func (s *Segment) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Attached reports whether the segment is currently mapped
// into this process' address space.
func (s *Segment) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.region != nil
}

// Attach maps the segment into the process address space.
// Attaching an already attached segment keeps the existing mapping.
func (s *Segment) Attach() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.attachLocked()
	return err
}

// Detach unmaps the segment. Detaching a detached segment is a no-op.
// The kernel object stays intact and can be attached again.
func (s *Segment) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detachLocked()
}

func (s *Segment) attachLocked() (*mmf.MemoryRegion, error) {
	if s.region != nil {
		return s.region, nil
	}
	if s.obj == nil {
		return nil, errors.Wrapf(ErrNotFound, "segment %q has no backing object", s.name)
	}
	region, err := mmf.NewMemoryRegion(s.obj, mmf.MEM_READWRITE, 0, int(s.size))
	if err != nil {
		return nil, errors.Wrapf(ErrAttachFailed, "segment %q: %v", s.name, err)
	}
	s.region = region
	return region, nil
}

func (s *Segment) detachLocked() error {
	if s.region == nil {
		return nil
	}
	err := s.region.Close()
	s.region = nil
	if err != nil {
		return errors.Wrapf(ErrAttachFailed, "segment %q unmap: %v", s.name, err)
	}
	return nil
}

// destroy detaches if necessary and releases the kernel object.
func (s *Segment) destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	detachErr := s.detachLocked()
	if s.obj == nil {
		return detachErr
	}
	err := s.obj.Destroy()
	s.obj = nil
	if err != nil {
		return err
	}
	return detachErr
}

// writeAt copies p into the mapped region at the byte offset off,
// attaching the segment first if needed. The copy is all-or-nothing:
// an out of bounds range leaves the segment contents unchanged.
func (s *Segment) writeAt(p []byte, off int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	region, err := s.attachLocked()
	if err != nil {
		return err
	}
	if err := s.checkBoundsLocked(int64(len(p)), off); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	w := mmf.NewMemoryRegionWriter(region)
	if _, err := w.WriteAt(p, off); err != nil {
		return errors.Wrapf(ErrOutOfBounds, "segment %q short write: %v", s.name, err)
	}
	return nil
}

// readAt fills p with bytes from the mapped region starting at off.
func (s *Segment) readAt(p []byte, off int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	region, err := s.attachLocked()
	if err != nil {
		return err
	}
	if err := s.checkBoundsLocked(int64(len(p)), off); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	r := mmf.NewMemoryRegionReader(region)
	if _, err := r.ReadAt(p, off); err != nil {
		return errors.Wrapf(ErrOutOfBounds, "segment %q short read: %v", s.name, err)
	}
	return nil
}

// checkBoundsLocked validates the byte range [off, off+length) against
// the segment capacity. The check is done in byte units, so large
// element counts cannot overflow past it.
func (s *Segment) checkBoundsLocked(length, off int64) error {
	if off < 0 || off > s.size || length < 0 || length > s.size-off {
		return errors.Wrapf(ErrOutOfBounds,
			"segment %q: range [%d, %d) exceeds size %d", s.name, off, off+length, s.size)
	}
	return nil
}
