// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package opp models platform operating-point tables: the per-frequency
// voltage, bandwidth and PLL metadata that the platform publishes for a
// CPU cluster.
package opp

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrRange means no enabled operating point satisfies the lookup. A
// ceil search past the fastest entry returns it; that is the normal
// end-of-table signal when walking the table upward.
var ErrRange = errors.New("no operating point in range")

type Entry struct {
	Hz         uint64
	MicroVolts int

	// PLL override word for this corner; opaque to the control engine,
	// calibrated per chip. Mandatory for OS-side hardware bring-up.
	Override    uint32
	HasOverride bool

	// MEM-ACC level hint. Never decreases with frequency; the slowest
	// corner always carries level 1.
	Spare uint32

	// PLL post-divider hint, DIV1 when absent.
	PllDiv uint32

	// Interconnect vote, 0 when the platform does no bandwidth scaling.
	PeakBandwidthKBps uint32

	ClockLatencyNs uint32

	disabled bool
}

// Table is an ascending-frequency operating-point collection for one
// frequency domain.
type Table struct {
	entries []Entry
}

func New(entries []Entry) (*Table, error) {
	t := &Table{entries: append([]Entry(nil), entries...)}
	sort.Slice(t.entries, func(i, j int) bool {
		return t.entries[i].Hz < t.entries[j].Hz
	})
	for i := 1; i < len(t.entries); i++ {
		if t.entries[i].Hz == t.entries[i-1].Hz {
			return nil, fmt.Errorf("duplicate operating point %d Hz",
				t.entries[i].Hz)
		}
	}
	return t, nil
}

func (t *Table) Len() int { return len(t.entries) }

// FindCeil returns the slowest enabled entry at or above hz.
func (t *Table) FindCeil(hz uint64) (*Entry, error) {
	for i := range t.entries {
		e := &t.entries[i]
		if !e.disabled && e.Hz >= hz {
			return e, nil
		}
	}
	return nil, ErrRange
}

// FindFloor returns the fastest enabled entry at or below hz.
func (t *Table) FindFloor(hz uint64) (*Entry, error) {
	for i := len(t.entries) - 1; i >= 0; i-- {
		e := &t.entries[i]
		if !e.disabled && e.Hz <= hz {
			return e, nil
		}
	}
	return nil, ErrRange
}

func (t *Table) FindExact(hz uint64) (*Entry, error) {
	for i := range t.entries {
		e := &t.entries[i]
		if !e.disabled && e.Hz == hz {
			return e, nil
		}
	}
	return nil, ErrRange
}

// DisableAll suppresses every entry, ahead of re-enabling the subset
// that the programmed hardware table actually supports.
func (t *Table) DisableAll() {
	for i := range t.entries {
		t.entries[i].disabled = true
	}
}

func (t *Table) Enable(hz uint64) error  { return t.setDisabled(hz, false) }
func (t *Table) Disable(hz uint64) error { return t.setDisabled(hz, true) }

func (t *Table) setDisabled(hz uint64, disabled bool) error {
	for i := range t.entries {
		if t.entries[i].Hz == hz {
			t.entries[i].disabled = disabled
			return nil
		}
	}
	return ErrRange
}

// AdjustVoltage rewrites the voltage of the entry at hz to what the
// hardware table reports for the matching corner.
func (t *Table) AdjustVoltage(hz uint64, uv int) error {
	for i := range t.entries {
		if t.entries[i].Hz == hz {
			t.entries[i].MicroVolts = uv
			return nil
		}
	}
	return ErrRange
}

// Add inserts a dynamic entry, keeping the table ordered. An entry at
// the same frequency is overwritten.
func (t *Table) Add(e Entry) {
	for i := range t.entries {
		if t.entries[i].Hz == e.Hz {
			t.entries[i] = e
			return
		}
		if t.entries[i].Hz > e.Hz {
			t.entries = append(t.entries[:i],
				append([]Entry{e}, t.entries[i:]...)...)
			return
		}
	}
	t.entries = append(t.entries, e)
}

// TransitionLatency is the worst case clock-latency the platform
// advertises, or 0 when no entry advertises one.
func (t *Table) TransitionLatency() time.Duration {
	var max uint32
	for i := range t.entries {
		if t.entries[i].ClockLatencyNs > max {
			max = t.entries[i].ClockLatencyNs
		}
	}
	return time.Duration(max) * time.Nanosecond
}
