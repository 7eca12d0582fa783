// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build linux || darwin || freebsd

package common

import (
	"os"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	IpcCreate = 00001000 /* create if key is nonexistent */
	IpcExcl   = 00002000 /* fail if key exists */

	IpcRmid = 0 /* remove resource */
)

// Key is a sysV IPC key.
type Key uint64

// KeyForName derives a sysV IPC key from a logical object name.
// It creates an empty file in the temp dir and runs an ftok-like hash
// over its inode and device numbers, so that independent processes
// agree on the key without sharing any state but the file.
// The derivation is best-effort: the 16-bit inode fold can collide,
// in which case the colliding open/create call fails and the error is
// surfaced to the caller. A derived key is never assumed unique
// without that failure check.
func KeyForName(name string) (Key, error) {
	name = TmpFilename(name)
	file, err := os.Create(name)
	if err != nil {
		return 0, errors.Wrap(err, "invalid name for key")
	}
	file.Close()
	k, err := Ftok(name)
	if err != nil {
		os.Remove(name)
		return 0, errors.Wrap(err, "invalid name for key")
	}
	return k, nil
}

// TmpFilename returns the name of the key file for the given object name.
func TmpFilename(name string) string {
	return os.TempDir() + "/" + name
}

// Ftok hashes a file's inode and device numbers into an IPC key,
// the way glibc's ftok(3) does with proj_id = 1.
func Ftok(name string) (Key, error) {
	var st unix.Stat_t
	if err := unix.Stat(name, &st); err != nil {
		return Key(0), err
	}
	return Key(uint64(st.Ino)&0xFFFF | ((uint64(st.Dev) & 0xFF) << 16) | (1 << 24)), nil
}

// TimeoutToTimeSpec converts a relative timeout into a timespec.
// A negative timeout means 'infinite' and converts to nil.
func TimeoutToTimeSpec(timeout time.Duration) *unix.Timespec {
	if timeout >= 0 {
		ts := unix.NsecToTimespec(timeout.Nanoseconds())
		return &ts
	}
	return nil
}

// IsInterruptedSyscallErr returns true, if the error is EINTR.
func IsInterruptedSyscallErr(err error) bool {
	return SyscallErrHasCode(err, syscall.EINTR)
}

// IsTimeoutErr returns true, if the error is EAGAIN, which sysV
// timed operations return on expired timeout.
func IsTimeoutErr(err error) bool {
	return SyscallErrHasCode(err, syscall.EAGAIN)
}

// SyscallErrHasCode reports whether err is an os.SyscallError
// with the given errno.
func SyscallErrHasCode(err error, code syscall.Errno) bool {
	if sysErr, ok := errors.Cause(err).(*os.SyscallError); ok {
		if errno, ok := sysErr.Err.(syscall.Errno); ok {
			return errno == code
		}
	}
	return false
}

// UninterruptedSyscall runs a syscall, restarting it on EINTR.
func UninterruptedSyscall(f func() error) error {
	for {
		if err := f(); !IsInterruptedSyscallErr(err) {
			return err
		}
	}
}

// UninterruptedSyscallTimeout runs a timed syscall, restarting it on
// EINTR with the remaining part of the timeout. A negative timeout
// is passed through unchanged on each attempt.
func UninterruptedSyscallTimeout(f func(time.Duration) error, timeout time.Duration) error {
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		cur := timeout
		if timeout >= 0 {
			if cur = time.Until(deadline); cur < 0 {
				cur = 0
			}
		}
		if err := f(cur); !IsInterruptedSyscallErr(err) {
			return err
		}
	}
}
