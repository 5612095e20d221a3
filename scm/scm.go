// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package scm is the channel to the secure-firmware agent that owns the
// write-protected sequencer registers. The agent serves an rpc server
// on an abstract socket; every write is synchronous and a non-zero
// status fails the caller.
package scm

import (
	"fmt"
	"net/rpc"
	"sync"

	"github.com/platinasystems/goes/external/atsock"
)

// Io writes one 32-bit value to a physical register address.
type Io interface {
	WriteIo(addr uint64, val uint32) error
}

type IoWrite struct {
	Addr  uint64
	Value uint32
}

// Rpc is the production channel: calls "Scm.IoWrite" on the agent named
// by Sock (default "scmd").
type Rpc struct {
	Sock string

	mu     sync.Mutex
	client *rpc.Client
}

func (r *Rpc) WriteIo(addr uint64, val uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		sock := r.Sock
		if sock == "" {
			sock = "scmd"
		}
		client, err := atsock.NewRpcClient(sock)
		if err != nil {
			return err
		}
		r.client = client
	}
	var status int
	err := r.client.Call("Scm.IoWrite", IoWrite{addr, val}, &status)
	if err != nil {
		r.client.Close()
		r.client = nil
		return err
	}
	if status != 0 {
		return fmt.Errorf("io write %#x: status %d", addr, status)
	}
	return nil
}

func (r *Rpc) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}
