// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build linux

package sync

import (
	"os"

	"github.com/pkg/errors"

	"github.com/nxgtw/go-shmbox/internal/common"
)

type sembuf struct {
	semnum uint16
	semop  int16
	semflg int16
}

// semaphore is a named sysV semaphore.
type semaphore struct {
	name string
	id   int
}

// newSemaphore creates a new sysV semaphore with the given name.
// It derives a key from the name via common.KeyForName, so that
// independent processes using the same name address the same primitive.
func newSemaphore(name string, flag int, perm os.FileMode, initial int) (*semaphore, error) {
	k, err := common.KeyForName(name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate a key for the name")
	}
	result, err := newSemaphoreKey(uint64(k), flag, perm, initial)
	if err != nil {
		return nil, err
	}
	result.name = name
	return result, nil
}

// newSemaphoreKey creates a new sysV semaphore for the given key.
func newSemaphoreKey(key uint64, flag int, perm os.FileMode, initial int) (*semaphore, error) {
	var id int
	creator := func(create bool) error {
		var creatorErr error
		flags := int(perm)
		if create {
			flags |= common.IpcCreate | common.IpcExcl
		}
		id, creatorErr = semget(common.Key(key), 1, flags)
		return creatorErr
	}
	created, err := common.OpenOrCreate(creator, flag)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open/create sysv semaphore")
	}
	result := &semaphore{id: id}
	if created && initial > 0 {
		if err = result.signal(initial); err != nil {
			result.destroy()
			return nil, errors.Wrap(err, "failed to add initial semaphore value")
		}
	}
	return result, nil
}

func (s *semaphore) signal(count int) error {
	return s.add(count)
}

func (s *semaphore) wait() error {
	return s.add(-1)
}

// close is a no-op on unix, as sysV semaphores have no per-process handles.
func (s *semaphore) close() error {
	return nil
}

func (s *semaphore) destroy() error {
	return removeSysVSemaByID(s.id, s.name)
}

func (s *semaphore) add(value int) error {
	return common.UninterruptedSyscall(func() error { return semAdd(s.id, value) })
}

func semAdd(id, value int) error {
	b := sembuf{semnum: 0, semop: int16(value), semflg: 0}
	return semop(id, []sembuf{b})
}

// destroySemaphore permanently removes the semaphore with the given name.
func destroySemaphore(name string) error {
	k, err := common.KeyForName(name)
	if err != nil {
		return errors.Wrap(err, "failed to get a key for the name")
	}
	id, err := semget(k, 1, 0)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			os.Remove(common.TmpFilename(name))
			return nil
		}
		return errors.Wrap(err, "failed to get semaphore id")
	}
	return removeSysVSemaByID(id, name)
}

func removeSysVSemaByID(id int, name string) error {
	err := semctl(id, 0, common.IpcRmid)
	if err == nil && len(name) > 0 {
		if err = os.Remove(common.TmpFilename(name)); os.IsNotExist(err) {
			err = nil
		} else if err != nil {
			err = errors.Wrap(err, "failed to remove the key file")
		}
	}
	return err
}
