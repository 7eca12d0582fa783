// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package shm provides access to named OS shared-memory objects,
// which can be mapped into the address spaces of several processes.
package shm

import (
	"os"
	"runtime"

	"github.com/pkg/errors"

	"github.com/nxgtw/go-shmbox/internal/common"
)

// MemoryObject represents an object which can be used to
// map shared memory regions into the process' address space.
type MemoryObject struct {
	*memoryObject
}

// NewMemoryObject creates a new shared memory object.
//	name - a name of the object. should not contain '/' and exceed 255 symbols.
//	flag - 0 to open an existing object, os.O_CREATE to open or create,
//	       os.O_CREATE|os.O_EXCL to create only. combine with os.O_RDWR for writable objects.
//	perm - file's mode and permission bits.
func NewMemoryObject(name string, flag int, perm os.FileMode) (*MemoryObject, error) {
	impl, err := newMemoryObject(name, flag, perm)
	if err != nil {
		return nil, err
	}
	result := &MemoryObject{impl}
	runtime.SetFinalizer(impl, func(memObject *memoryObject) {
		memObject.Close()
	})
	return result, nil
}

// NewMemoryObjectSize opens or creates a shared memory object with the given name.
// If the object was created, it is truncated to 'size'.
// Otherwise, the size is unchanged, and the caller must check it.
// The returned flag reports whether the object was created.
func NewMemoryObjectSize(name string, flag int, perm os.FileMode, size int64) (*MemoryObject, bool, error) {
	var obj *MemoryObject
	creator := func(create bool) error {
		creatorFlag := os.O_RDWR
		if create {
			creatorFlag |= os.O_CREATE | os.O_EXCL
		}
		var err error
		obj, err = NewMemoryObject(name, creatorFlag, perm)
		return err
	}
	created, err := common.OpenOrCreate(creator, flag)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to open/create memory object")
	}
	if created {
		if err = obj.Truncate(size); err != nil {
			obj.Destroy()
			return nil, false, errors.Wrap(err, "failed to truncate memory object")
		}
	}
	return obj, created, nil
}

// DestroyMemoryObject removes an object with the given name from the OS namespace.
// It is not an error to destroy a non-existing object.
func DestroyMemoryObject(name string) error {
	return destroyMemoryObject(name)
}

// ListMemoryObjects returns the names of all shared memory objects
// currently present in the OS namespace. It can be used to discover
// segments abandoned by crashed processes.
func ListMemoryObjects() ([]string, error) {
	return listMemoryObjects()
}
