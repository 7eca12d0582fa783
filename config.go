// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmbox

import (
	"os"
	"time"

	"go.uber.org/zap"
)

// DefaultConsumeTimeout bounds ConsumeArray waits when the caller
// passes a negative timeout and the Config does not override it.
const DefaultConsumeTimeout = 10 * time.Second

const defaultPerm os.FileMode = 0666

// Config holds Manager creation parameters.
// The zero value is usable: no logging, 10s consume timeout, 0666 objects.
type Config struct {
	// Logger receives debug records for lifecycle and handoff operations
	// and warnings for OS-call failures. nil disables logging.
	Logger *zap.Logger
	// DefaultTimeout is used by ConsumeArray when the caller passes a
	// negative timeout. Zero means DefaultConsumeTimeout.
	DefaultTimeout time.Duration
	// Perm - permission bits for created segments and semaphores.
	// Zero means 0666.
	Perm os.FileMode
}

func (cfg Config) withDefaults() Config {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.DefaultTimeout == 0 {
		cfg.DefaultTimeout = DefaultConsumeTimeout
	}
	if cfg.Perm == 0 {
		cfg.Perm = defaultPerm
	}
	return cfg
}
