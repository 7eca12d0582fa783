// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build linux && 386

package sync

import (
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/nxgtw/go-shmbox/internal/allocator"
	"github.com/nxgtw/go-shmbox/internal/common"
)

// multiplexed sysV ipc call numbers, see ipc(2).
const (
	cSEMOP      = 1
	cSEMGET     = 2
	cSEMCTL     = 3
	cSEMTIMEDOP = 4
)

// semun is a union used in the semctl syscall. it is not actually used,
// so its size matches the size in kernel. we need only one global
// readonly pointer to it.
type semun struct {
	unused uintptr
}

var semunInst = unsafe.Pointer(&semun{})

func semget(k common.Key, nsems, semflg int) (int, error) {
	id, _, err := unix.Syscall6(unix.SYS_IPC, cSEMGET, uintptr(k), uintptr(nsems), uintptr(semflg), 0, 0)
	if err != syscall.Errno(0) {
		if err == unix.EEXIST || err == unix.ENOENT {
			return 0, &os.PathError{Op: "SEMGET", Path: "", Err: err}
		}
		return 0, os.NewSyscallError("SEMGET", err)
	}
	return int(id), nil
}

func semctl(id, num, cmd int) error {
	_, _, err := unix.Syscall6(unix.SYS_IPC, cSEMCTL, uintptr(id), uintptr(num), uintptr(cmd), uintptr(semunInst), 0)
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
	_, _, err := unix.Syscall6(unix.SYS_IPC, cSEMTIMEDOP, uintptr(id), uintptr(len(ops)), 0, uintptr(pOps), uintptr(pTimeout))
	allocator.Use(pOps)
	allocator.Use(pTimeout)
	if err != syscall.Errno(0) {
		return os.NewSyscallError("SEMTIMEDOP", err)
	}
	return nil
}
