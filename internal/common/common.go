// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package common contains open/create machinery and syscall helpers
// shared by the shm, sync, and root packages.
package common

import (
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	raceRetryInterval = 5 * time.Millisecond
	raceRetryAttempts = 16
)

// OpenOrCreate runs the creator func in a mode, defined by the flag:
//	0                       - open existing only.
//	os.O_CREATE             - open existing or create.
//	os.O_CREATE|os.O_EXCL   - create only, fail if it already exists.
// The creator receives 'true', if it must create the object, and
// must return an error, for which os.IsExist/os.IsNotExist report
// the corresponding conditions. The first return value tells whether
// the object was actually created.
//
// In open-or-create mode another process can create or destroy the
// object between our two attempts, so the attempts are retried with
// a bounded constant backoff.
func OpenOrCreate(creator func(create bool) error, flag int) (bool, error) {
	switch flag & (os.O_CREATE | os.O_EXCL) {
	case 0:
		return false, creator(false)
	case os.O_CREATE | os.O_EXCL:
		if err := creator(true); err != nil {
			return false, err
		}
		return true, nil
	case os.O_CREATE:
		var created bool
		b := backoff.WithMaxRetries(backoff.NewConstantBackOff(raceRetryInterval), raceRetryAttempts)
		err := backoff.Retry(func() error {
			if err := creator(true); !os.IsExist(err) {
				created = true
				return backoff.Permanent(err)
			}
			if err := creator(false); !os.IsNotExist(err) {
				created = false
				return backoff.Permanent(err)
			}
			return fmt.Errorf("the object was destroyed between open attempts")
		}, b)
		return created && err == nil, err
	default:
		return false, fmt.Errorf("invalid open flags")
	}
}
