// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package allocator contains unsafe helpers for viewing typed data
// as raw bytes and for keeping objects alive across syscalls.
package allocator

import (
	"runtime"
	"unsafe"
)

// Use ensures, that the object is alive at the moment of the call.
// It is used to protect pointers passed to syscalls from the gc.
func Use(p unsafe.Pointer) {
	runtime.KeepAlive(p)
}

// ByteSliceData returns a pointer to the data of the given byte slice.
func ByteSliceData(slice []byte) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(slice))
}

// ByteSliceFromUnsafePointer returns a slice of bytes with the given length.
// Memory pointed to by the unsafe.Pointer is used for the slice.
func ByteSliceFromUnsafePointer(memory unsafe.Pointer, length int) []byte {
	return unsafe.Slice((*byte)(memory), length)
}

// Float64Bytes returns a byte slice, which uses the same memory,
// that the given float64 slice uses. Returns nil for an empty slice.
func Float64Bytes(values []float64) []byte {
	if len(values) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), len(values)*8)
}
