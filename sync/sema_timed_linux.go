// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build linux

package sync

import (
	"time"

	"github.com/nxgtw/go-shmbox/internal/common"
)

// waitTimeout decrements the semaphore with a bounded wait via
// semtimedop. An interrupted wait is restarted with the remaining
// part of the timeout.
func (s *semaphore) waitTimeout(timeout time.Duration) (bool, error) {
	err := common.UninterruptedSyscallTimeout(func(curTimeout time.Duration) error {
		b := sembuf{semnum: 0, semop: -1, semflg: 0}
		return semtimedop(s.id, []sembuf{b}, common.TimeoutToTimeSpec(curTimeout))
	}, timeout)
	if err == nil {
		return true, nil
	}
	if common.IsTimeoutErr(err) {
		return false, nil
	}
	return false, err
}
