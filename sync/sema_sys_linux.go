// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build linux && (amd64 || arm64)

package sync

import (
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/nxgtw/go-shmbox/internal/allocator"
	"github.com/nxgtw/go-shmbox/internal/common"
)

func semget(k common.Key, nsems, semflg int) (int, error) {
	id, _, err := unix.Syscall(unix.SYS_SEMGET, uintptr(k), uintptr(nsems), uintptr(semflg))
	if err != syscall.Errno(0) {
		if err == unix.EEXIST || err == unix.ENOENT {
			return 0, &os.PathError{Op: "SEMGET", Path: "", Err: err}
		}
		return 0, os.NewSyscallError("SEMGET", err)
	}
	return int(id), nil
}

func semctl(id, num, cmd int) error {
	_, _, err := unix.Syscall(unix.SYS_SEMCTL, uintptr(id), uintptr(num), uintptr(cmd))
	if err != syscall.Errno(0) {
		return os.NewSyscallError("SEMCTL", err)
	}
	return nil
}

func semop(id int, ops []sembuf) error {
	return semtimedop(id, ops, nil)
}

func semtimedop(id int, ops []sembuf, timeout *unix.Timespec) error {
	if len(ops) == 0 {
		return nil
	}
	pOps := unsafe.Pointer(&ops[0])
	pTimeout := unsafe.Pointer(timeout)
	_, _, err := unix.Syscall6(unix.SYS_SEMTIMEDOP, uintptr(id), uintptr(pOps), uintptr(len(ops)), uintptr(pTimeout), 0, 0)
	allocator.Use(pOps)
	allocator.Use(pTimeout)
	if err != syscall.Errno(0) {
		return os.NewSyscallError("SEMTIMEDOP", err)
	}
	return nil
}
