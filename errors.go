// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmbox

import (
	"github.com/pkg/errors"
)

// Error kinds returned by Manager operations. OS-call failures are
// converted to one of these at the package boundary; the original
// error text is preserved in the wrapping message. Use the Is*
// predicates to classify a returned error.
var (
	// ErrNotFound - the name is not registered, or the OS object is absent.
	ErrNotFound = errors.New("segment is not registered")
	// ErrAlreadyExists - strict create hit a registered name.
	ErrAlreadyExists = errors.New("segment already exists")
	// ErrOutOfBounds - offset/length exceeds segment capacity.
	ErrOutOfBounds = errors.New("transfer range exceeds segment size")
	// ErrAttachFailed - the OS mapping call failed.
	ErrAttachFailed = errors.New("failed to attach the segment")
	// ErrDestroyFailed - the OS release call failed. The registry entry
	// is removed regardless, as the handle is no longer valid.
	ErrDestroyFailed = errors.New("failed to destroy the segment")
	// ErrSizeMismatch - an existing segment is smaller than a publish requires.
	ErrSizeMismatch = errors.New("existing segment is smaller than required")
	// ErrTypeMismatch - the envelope type tag does not match the requested type.
	ErrTypeMismatch = errors.New("unexpected payload type tag")
	// ErrTimeout - the consume wait exceeded its deadline.
	ErrTimeout = errors.New("wait deadline exceeded")
	// ErrSyncUnavailable - the channel semaphore is missing or inaccessible.
	ErrSyncUnavailable = errors.New("channel semaphore is not available")
)

// IsNotFound reports whether err is of the ErrNotFound kind.
func IsNotFound(err error) bool { return errors.Cause(err) == ErrNotFound }

// IsAlreadyExists reports whether err is of the ErrAlreadyExists kind.
func IsAlreadyExists(err error) bool { return errors.Cause(err) == ErrAlreadyExists }

// IsOutOfBounds reports whether err is of the ErrOutOfBounds kind.
func IsOutOfBounds(err error) bool { return errors.Cause(err) == ErrOutOfBounds }

// IsAttachFailed reports whether err is of the ErrAttachFailed kind.
func IsAttachFailed(err error) bool { return errors.Cause(err) == ErrAttachFailed }

// IsDestroyFailed reports whether err is of the ErrDestroyFailed kind.
func IsDestroyFailed(err error) bool { return errors.Cause(err) == ErrDestroyFailed }

// IsSizeMismatch reports whether err is of the ErrSizeMismatch kind.
func IsSizeMismatch(err error) bool { return errors.Cause(err) == ErrSizeMismatch }

// IsTypeMismatch reports whether err is of the ErrTypeMismatch kind.
func IsTypeMismatch(err error) bool { return errors.Cause(err) == ErrTypeMismatch }

// IsTimeout reports whether err is of the ErrTimeout kind.
func IsTimeout(err error) bool { return errors.Cause(err) == ErrTimeout }

// IsSyncUnavailable reports whether err is of the ErrSyncUnavailable kind.
func IsSyncUnavailable(err error) bool { return errors.Cause(err) == ErrSyncUnavailable }
