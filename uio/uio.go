// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package uio drives an interrupt line exposed through the Linux
// Userspace IO chardev protocol: reading the device blocks until the
// next interrupt, writing 1/0 unmasks/masks the line.
package uio

import (
	"encoding/binary"
	"os"
	"sync"
)

type Irq struct {
	f      *os.File
	events chan struct{}
	once   sync.Once
}

func Open(path string) (*Irq, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	q := &Irq{f: f, events: make(chan struct{}, 1)}
	go q.reader()
	return q, nil
}

func (q *Irq) reader() {
	var count [4]byte
	for {
		if _, err := q.f.Read(count[:]); err != nil {
			close(q.events)
			return
		}
		select {
		case q.events <- struct{}{}:
		default:
			// Consumer is mid-poll; the line stays masked until it
			// re-arms, so a dropped edge cannot be missed work.
		}
	}
}

// Events delivers one value per interrupt. The channel closes when the
// line is closed.
func (q *Irq) Events() <-chan struct{} { return q.events }

func (q *Irq) Enable() error  { return q.irqcontrol(1) }
func (q *Irq) Disable() error { return q.irqcontrol(0) }

func (q *Irq) irqcontrol(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := q.f.Write(b[:])
	return err
}

func (q *Irq) Close() (err error) {
	q.once.Do(func() { err = q.f.Close() })
	return
}
