// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package sync provides a named, kernel-persistent semaphore, which
// independent processes can use as a ready-flag over shared data.
package sync

import (
	"os"
	"time"
)

const (
	// CSemMaxVal is the maximum semaphore value,
	// which is guaranteed to be supported on all platforms.
	CSemMaxVal = 32767
)

// Semaphore is a synchronization object with a resource counter,
// which can be used to control access to a shared resource.
// It wraps the actual OS semaphore primitive (semget on unix).
// The semaphore outlives the process and must be removed with
// DestroySemaphore by an owning party.
type Semaphore semaphore

// NewSemaphore opens or creates a semaphore with the given name.
//	name - object name. used by all processes to address the same primitive.
//	flag - 0 to open existing, os.O_CREATE to open or create,
//	       os.O_CREATE|os.O_EXCL to create only.
//	perm - object's permission bits.
//	initial - this value will be added to the semaphore's value, if it was created.
func NewSemaphore(name string, flag int, perm os.FileMode, initial int) (*Semaphore, error) {
	result, err := newSemaphore(name, flag, perm, initial)
	if err != nil {
		return nil, err
	}
	return (*Semaphore)(result), nil
}

// Signal increments the value of the semaphore variable by count,
// waking waiting processes (if any).
func (s *Semaphore) Signal(count int) error {
	return (*semaphore)(s).signal(count)
}

// Wait decrements the value of the semaphore variable by 1,
// blocking while the value is zero.
func (s *Semaphore) Wait() error {
	return (*semaphore)(s).wait()
}

// WaitTimeout decrements the value of the semaphore variable by 1.
// If the value is zero, it waits for not longer than timeout.
// A negative timeout means waiting forever.
// It returns false, if the timeout expired before the semaphore was raised.
func (s *Semaphore) WaitTimeout(timeout time.Duration) (bool, error) {
	return (*semaphore)(s).waitTimeout(timeout)
}

// Close closes the semaphore. The kernel object is not removed.
func (s *Semaphore) Close() error {
	return (*semaphore)(s).close()
}

// Destroy removes the semaphore permanently.
func (s *Semaphore) Destroy() error {
	return (*semaphore)(s).destroy()
}

// DestroySemaphore removes the semaphore with the given name permanently.
// It is not an error to destroy a non-existing semaphore.
func DestroySemaphore(name string) error {
	return destroySemaphore(name)
}
