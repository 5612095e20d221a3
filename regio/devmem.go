// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package regio

import (
	"fmt"
	"os"
	"sync/atomic"
	"syscall"
	"unsafe"
)

// DevMem is a register block mapped from physical memory through
// /dev/mem. One DevMem is exclusively owned by one hardware instance.
type DevMem struct {
	Phys uint64
	f    *os.File
	mem  []byte
}

// MapDevMem maps size bytes of physical address space starting at phys.
// phys and size must be page aligned.
func MapDevMem(phys uint64, size int) (*DevMem, error) {
	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	mem, err := syscall.Mmap(int(f.Fd()), int64(phys), size,
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %#x[%#x]: %v", phys, size, err)
	}
	return &DevMem{Phys: phys, f: f, mem: mem}, nil
}

func (m *DevMem) R32(off uint32) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(&m.mem[off])))
}

func (m *DevMem) W32(off, val uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&m.mem[off])), val)
}

func (m *DevMem) Close() error {
	err := syscall.Munmap(m.mem)
	m.mem = nil
	if xerr := m.f.Close(); err == nil {
		err = xerr
	}
	return err
}
