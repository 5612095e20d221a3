// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package osm

import (
	"sync"
	"time"

	"github.com/platinasystems/log"
)

// The hardware may keep lowering its autonomous vote faster than an
// interrupt can usefully be re-armed, so after the first interrupt the
// line stays masked and the vote is polled until it recovers to at
// least the last requested frequency.
const throttlePollInterval = 10 * time.Millisecond

type throttleMode int

const (
	irqArmed throttleMode = iota
	polling
	cancelled
)

type throttleState struct {
	mu     sync.Mutex
	mode   throttleMode
	cancel bool

	wake chan struct{}
	done chan struct{}
}

func (d *Domain) initThrottle() error {
	if d.Irq == nil {
		return nil
	}
	t := &throttleState{
		mode: irqArmed,
		wake: make(chan struct{}),
		done: make(chan struct{}),
	}
	if err := d.Irq.Enable(); err != nil {
		return err
	}
	d.th = t
	go d.throttleLoop()
	return nil
}

// exitThrottle requests cancellation, joins any in-flight poll, then
// releases the interrupt line. No poll runs after it returns.
func (d *Domain) exitThrottle() {
	t := d.th
	if t == nil {
		return
	}
	t.mu.Lock()
	t.cancel = true
	t.mu.Unlock()
	close(t.wake)
	<-t.done
	t.mu.Lock()
	t.mode = cancelled
	t.mu.Unlock()
	if err := d.Irq.Close(); err != nil {
		log.Print("osm", d.Index, ": irq close: ", err)
	}
	d.th = nil
}

func (d *Domain) throttleLoop() {
	t := d.th
	defer close(t.done)
	for {
		select {
		case _, ok := <-d.Irq.Events():
			if !ok {
				return
			}
		case <-t.wake:
			return
		}

		// Interrupt fired: mask the line and poll the vote until it
		// recovers or teardown asks us to stop.
		if err := d.Irq.Disable(); err != nil {
			log.Print("osm", d.Index, ": irq disable: ", err)
		}
		t.mu.Lock()
		t.mode = polling
		t.mu.Unlock()
		for {
			rearm, stop := d.throttleNotify()
			if stop {
				return
			}
			if rearm {
				break
			}
			select {
			case <-time.After(throttlePollInterval):
			case <-t.wake:
				return
			}
		}
	}
}

// throttleNotify is one poll iteration: read and publish the throttled
// frequency, then decide under the domain lock whether to stop, re-arm
// the interrupt, or keep polling.
func (d *Domain) throttleNotify() (rearm, stop bool) {
	t := d.th
	throttledKHz := d.throttleFreqKHz()
	if d.Pressure != nil {
		d.Pressure.ReportPressure(d.Cpus, throttledKHz)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel {
		t.mode = cancelled
		return false, true
	}
	// A vote at or above the last requested frequency means the
	// hardware stopped throttling.
	if throttledKHz >= d.Get() {
		if err := d.Irq.Enable(); err != nil {
			log.Print("osm", d.Index, ": irq enable: ", err)
		}
		t.mode = irqArmed
		return true, false
	}
	return false, false
}

// throttleFreqKHz converts the current autonomous vote to a frequency
// and resolves it against the operating points, floor first, ceiling
// when below range. With nothing to resolve against it reports zero;
// thermal mitigation keeps running regardless.
func (d *Domain) throttleFreqKHz() uint64 {
	kHz := uint64(d.Regs.R32(d.Soc.RegCurrentVote)&0x3ff) * 19200
	if d.Opps == nil || d.Opps.Len() == 0 {
		return 0
	}
	hz := kHz * 1000
	e, err := d.Opps.FindFloor(hz)
	if err != nil {
		e, err = d.Opps.FindCeil(hz)
	}
	if err != nil {
		return 0
	}
	return e.Hz / 1000
}
