// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build linux

package sync

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSemaName = "go-shmbox-test-sema"

func TestSemaOpenMode(t *testing.T) {
	a := assert.New(t)
	if !a.NoError(DestroySemaphore(testSemaName)) {
		return
	}
	// open-only must fail while the semaphore does not exist.
	_, err := NewSemaphore(testSemaName, 0, 0666, 0)
	a.Error(err)
	s, err := NewSemaphore(testSemaName, os.O_CREATE|os.O_EXCL, 0666, 1)
	if !a.NoError(err) {
		return
	}
	defer func() {
		a.NoError(s.Destroy())
	}()
	// create-only must fail while the semaphore exists.
	_, err = NewSemaphore(testSemaName, os.O_CREATE|os.O_EXCL, 0666, 1)
	a.Error(err)
	s2, err := NewSemaphore(testSemaName, 0, 0666, 0)
	if !a.NoError(err) {
		return
	}
	a.NoError(s2.Close())
	s3, err := NewSemaphore(testSemaName, os.O_CREATE, 0666, 1)
	if !a.NoError(err) {
		return
	}
	a.NoError(s3.Close())
}

func TestSemaSignalWait(t *testing.T) {
	a := assert.New(t)
	if !a.NoError(DestroySemaphore(testSemaName)) {
		return
	}
	s, err := NewSemaphore(testSemaName, os.O_CREATE|os.O_EXCL, 0666, 0)
	if !a.NoError(err) {
		return
	}
	defer func() {
		a.NoError(s.Destroy())
	}()
	a.NoError(s.Signal(1))
	a.NoError(s.Wait())
	a.NoError(s.Signal(2))
	a.NoError(s.Wait())
	a.NoError(s.Wait())
}

func TestSemaInitialValue(t *testing.T) {
	a := assert.New(t)
	if !a.NoError(DestroySemaphore(testSemaName)) {
		return
	}
	s, err := NewSemaphore(testSemaName, os.O_CREATE|os.O_EXCL, 0666, 2)
	if !a.NoError(err) {
		return
	}
	defer func() {
		a.NoError(s.Destroy())
	}()
	// the initial value is only applied on creation.
	s2, err := NewSemaphore(testSemaName, os.O_CREATE, 0666, 2)
	if !a.NoError(err) {
		return
	}
	defer s2.Close()
	a.NoError(s.Wait())
	a.NoError(s.Wait())
	ok, err := s.WaitTimeout(0)
	a.NoError(err)
	a.False(ok)
}

func TestSemaWaitTimeout(t *testing.T) {
	a := assert.New(t)
	if !a.NoError(DestroySemaphore(testSemaName)) {
		return
	}
	s, err := NewSemaphore(testSemaName, os.O_CREATE|os.O_EXCL, 0666, 0)
	if !a.NoError(err) {
		return
	}
	defer func() {
		a.NoError(s.Destroy())
	}()
	const timeout = 100 * time.Millisecond
	start := time.Now()
	ok, err := s.WaitTimeout(timeout)
	elapsed := time.Since(start)
	a.NoError(err)
	a.False(ok)
	a.True(elapsed >= timeout-10*time.Millisecond, "returned too early: %v", elapsed)
	a.True(elapsed < timeout+500*time.Millisecond, "returned too late: %v", elapsed)
	a.NoError(s.Signal(1))
	ok, err = s.WaitTimeout(timeout)
	a.NoError(err)
	a.True(ok)
}

func TestSemaCrossHandle(t *testing.T) {
	a := assert.New(t)
	if !a.NoError(DestroySemaphore(testSemaName)) {
		return
	}
	s, err := NewSemaphore(testSemaName, os.O_CREATE|os.O_EXCL, 0666, 0)
	if !a.NoError(err) {
		return
	}
	defer func() {
		a.NoError(s.Destroy())
	}()
	// a second handle opened by name addresses the same kernel object.
	s2, err := NewSemaphore(testSemaName, 0, 0666, 0)
	if !a.NoError(err) {
		return
	}
	defer s2.Close()
	go func() {
		time.Sleep(50 * time.Millisecond)
		s2.Signal(1)
	}()
	ok, err := s.WaitTimeout(5 * time.Second)
	a.NoError(err)
	a.True(ok)
}

func TestDestroySemaphoreIdempotent(t *testing.T) {
	a := assert.New(t)
	a.NoError(DestroySemaphore(testSemaName))
	a.NoError(DestroySemaphore(testSemaName))
}
