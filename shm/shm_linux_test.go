// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build linux

package shm

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testObjName = "go-shmbox-shm-test"

func TestShmFsFromReader(t *testing.T) {
	const (
		testData = `
			#
			# /etc/fstab
			# name dir type opts freq passno
			UUID=cd459033-ae0a-4fb4-96fb-2323365a8e21 /                       ext4    defaults        1 1
			UUID=4542ef12-df3d-4336-9d12-740763854139 /boot                   ext4    defaults        1 2
			UUID=95bd9dce-550c-4622-9466-6cd1e1ffd278 /home                   ext4    defaults        1 2
			UUID=53d61062-7b6b-4f5b-80fd-7baf4017f96d swap                    swap    defaults        0 0
			tmpfs /dev/shm tmpfs rw,seclabel,nosuid,nodev 0 0
		`
		testData2 = "tmpfs /dev/shm nottmpfs rw,seclabel,nosuid,nodev 0 0"
	)
	path := shmFsFromReader(strings.NewReader(testData))
	if path != "/dev/shm/" {
		t.Errorf("shm mountpoints not parsed. expected '/dev/shm/', got '%s'", path)
	}
	path = shmFsFromReader(strings.NewReader(testData2))
	if path != "" {
		t.Errorf("shm mountpoint should not be parsed. got '%s'", path)
	}
}

func TestShmFsFromMountPoints(t *testing.T) {
	path := shmFsFromMounts()
	if len(path) == 0 {
		t.Errorf("couldn't find a correct shm path")
	}
}

func TestShmNameValidation(t *testing.T) {
	a := assert.New(t)
	_, err := shmName("")
	a.Error(err)
	_, err = shmName("a/b")
	a.Error(err)
	_, err = shmName(strings.Repeat("q", maxNameLen+1))
	a.Error(err)
	path, err := shmName("/leading-slash")
	if a.NoError(err) {
		a.True(strings.HasSuffix(path, "/leading-slash"))
	}
}

func TestMemoryObjectLifecycle(t *testing.T) {
	a := assert.New(t)
	if !a.NoError(DestroyMemoryObject(testObjName)) {
		return
	}
	obj, err := NewMemoryObject(testObjName, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0666)
	if !a.NoError(err) {
		return
	}
	defer DestroyMemoryObject(testObjName)
	a.Equal(testObjName, obj.Name())
	if !a.NoError(obj.Truncate(1024)) {
		return
	}
	a.Equal(int64(1024), obj.Size())
	// a second create-only open must fail while the object exists.
	_, err = NewMemoryObject(testObjName, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0666)
	a.Error(err)
	// plain open sees the same object.
	obj2, err := NewMemoryObject(testObjName, os.O_RDWR, 0666)
	if a.NoError(err) {
		a.Equal(int64(1024), obj2.Size())
		a.NoError(obj2.Close())
	}
	a.NoError(obj.Destroy())
	_, err = NewMemoryObject(testObjName, os.O_RDWR, 0666)
	a.Error(err)
}

func TestMemoryObjectSize(t *testing.T) {
	a := assert.New(t)
	if !a.NoError(DestroyMemoryObject(testObjName)) {
		return
	}
	obj, created, err := NewMemoryObjectSize(testObjName, os.O_CREATE, 0666, 4096)
	if !a.NoError(err) {
		return
	}
	defer DestroyMemoryObject(testObjName)
	a.True(created)
	a.Equal(int64(4096), obj.Size())
	// opening an existing object must not change its size.
	obj2, created, err := NewMemoryObjectSize(testObjName, os.O_CREATE, 0666, 8192)
	if a.NoError(err) {
		a.False(created)
		a.Equal(int64(4096), obj2.Size())
		a.NoError(obj2.Close())
	}
	a.NoError(obj.Close())
}

func TestListMemoryObjects(t *testing.T) {
	a := assert.New(t)
	if !a.NoError(DestroyMemoryObject(testObjName)) {
		return
	}
	obj, _, err := NewMemoryObjectSize(testObjName, os.O_CREATE, 0666, 1024)
	if !a.NoError(err) {
		return
	}
	defer obj.Destroy()
	names, err := ListMemoryObjects()
	if !a.NoError(err) {
		return
	}
	a.Contains(names, testObjName)
}
