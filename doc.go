// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package shmbox moves float64 arrays between independent processes
// through named shared-memory segments, without serialization.
//
// A Manager owns a process-scoped registry of named segments. Segments
// support offset-addressed, bounds-checked byte and float64 transfers.
// On top of that, PublishArray/ConsumeArray implement a single-slot
// mailbox: the producer writes a fixed envelope and the payload into
// the segment and raises a named semaphore; the consumer waits on the
// semaphore with a bounded timeout and reads the payload back.
//
// The segment and its semaphore are kernel-persistent and outlive any
// single process. Whoever creates a channel should eventually destroy
// it; Reclaim and ListOSSegments help a supervisor find and remove
// channels abandoned by crashed processes.
//
// The mailbox provides single-producer/single-consumer semantics.
// A second publish before a consume overwrites the payload, and two
// consumers racing on the same ready channel can both observe
// readiness before either lowers the semaphore. Coordinating multiple
// concurrent writers or readers of one channel is up to the caller.
package shmbox
