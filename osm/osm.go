// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package osm programs and operates the Operating State Manager, the
// per-cluster hardware block that walks a lookup table of
// frequency/voltage pairs in response to a single performance-index
// write and autonomously throttles under thermal or power duress.
package osm

import (
	"fmt"
	"time"

	"github.com/platinasystems/log"
	"github.com/platinasystems/osm/cpr"
	"github.com/platinasystems/osm/opp"
	"github.com/platinasystems/osm/regio"
	"github.com/platinasystems/osm/scm"
)

// TransitionLatencyUnbounded is reported when the platform advertises
// no transition latency.
const TransitionLatencyUnbounded = time.Duration(-1)

// Irq is the throttle interrupt line. Events delivers one value per
// edge and closes when the line is closed.
type Irq interface {
	Enable() error
	Disable() error
	Events() <-chan struct{}
	Close() error
}

// PressureReporter receives the throttled frequency for the CPUs of a
// domain whenever the hardware's autonomous vote is re-read.
type PressureReporter interface {
	ReportPressure(cpus []int, freqKHz uint64)
}

// BandwidthVoter requests an interconnect bandwidth matching a new
// performance state. Vote failures never fail the frequency change.
type BandwidthVoter interface {
	VoteBandwidth(domain int, kBps uint32) error
}

// Freq is one resolved row of the programmed lookup table.
type Freq struct {
	KHz        uint64
	MilliVolts uint32
	Valid      bool
	Boost      bool
}

// Config carries everything one frequency domain needs at construction.
// Crystal and alternate clock rates are per-domain configuration here,
// not process state.
type Config struct {
	Index int
	Regs  regio.IO
	Phys  uint64   // physical base, for firmware-channel addressing
	Acd   regio.IO // nil when the domain has no ACD block
	Soc   *SocData
	Cpus  []int

	XoRateHz  uint64
	AltRateHz uint64

	Opps *opp.Table
	Cpr  cpr.Data
	Scm  scm.Io

	Irq       Irq // nil when no throttle interrupt line is wired
	Pressure  PressureReporter
	Bandwidth BandwidthVoter
}

// Domain is one OSM instance, exclusively owning its register block.
type Domain struct {
	Config
	freqs         []Freq
	crossValidate bool
	th            *throttleState
}

func New(cfg Config) (*Domain, error) {
	if cfg.Regs == nil || cfg.Soc == nil {
		return nil, fmt.Errorf("osm%d: no register block or soc data", cfg.Index)
	}
	if len(cfg.Cpus) == 0 {
		return nil, fmt.Errorf("osm%d: no cpus", cfg.Index)
	}
	if cfg.XoRateHz == 0 {
		return nil, fmt.Errorf("osm%d: no crystal rate", cfg.Index)
	}
	if !cfg.Soc.UsesTz {
		if cfg.Soc.Setup == nil {
			return nil, fmt.Errorf("osm%d: no setup registers",
				cfg.Index)
		}
		if cfg.Scm == nil {
			return nil, fmt.Errorf("osm%d: no firmware channel",
				cfg.Index)
		}
		if cfg.Opps == nil || cfg.Opps.Len() == 0 {
			return nil, fmt.Errorf("osm%d: no operating points",
				cfg.Index)
		}
	}
	return &Domain{Config: cfg}, nil
}

// Init brings the domain to the running state: on variants that trusted
// firmware does not own, the full bring-up sequence; on all variants,
// the enable check, lookup-table readback and throttle notifier start.
func (d *Domain) Init() error {
	if !d.Soc.UsesTz {
		if err := d.setup(); err != nil {
			return err
		}
	}
	if d.Regs.R32(d.Soc.RegEnable)&1 == 0 {
		return fmt.Errorf("osm%d: %w", d.Index, ErrNotEnabled)
	}
	if err := d.readLut(); err != nil {
		return err
	}
	return d.initThrottle()
}

// Close tears the domain down, joining any in-flight throttle poll
// before the interrupt line is released.
func (d *Domain) Close() error {
	d.exitThrottle()
	return nil
}

// SetIndex requests performance state index and, when the platform
// scales the interconnect, votes the matching bandwidth. A failed vote
// is logged and ignored.
func (d *Domain) SetIndex(index int) error {
	if index < 0 || index >= len(d.freqs) {
		return fmt.Errorf("osm%d: index %d out of range", d.Index, index)
	}
	d.Regs.W32(d.Soc.RegPerfState, uint32(index))
	if d.Bandwidth != nil && d.Opps != nil {
		e, err := d.Opps.FindExact(d.freqs[index].KHz * 1000)
		if err == nil && e.PeakBandwidthKBps != 0 {
			err = d.Bandwidth.VoteBandwidth(d.Index, e.PeakBandwidthKBps)
			if err != nil {
				log.Print("osm", d.Index, ": bandwidth vote: ", err)
			}
		}
	}
	return nil
}

// Get reads the current performance state back from the hardware and
// maps it through the resolved table.
func (d *Domain) Get() uint64 {
	if len(d.freqs) == 0 {
		return 0
	}
	i := int(d.Regs.R32(d.Soc.RegPerfState))
	if i >= len(d.freqs) {
		i = len(d.freqs) - 1
	}
	return d.freqs[i].KHz
}

// CurrentIndex reads the performance state back from the hardware,
// clamped to the resolved table.
func (d *Domain) CurrentIndex() int {
	i := int(d.Regs.R32(d.Soc.RegPerfState))
	if i >= len(d.freqs) {
		i = len(d.freqs) - 1
	}
	return i
}

// FastSwitch writes the index with no bookkeeping, for callers that
// cannot block.
func (d *Domain) FastSwitch(index int) uint64 {
	d.Regs.W32(d.Soc.RegPerfState, uint32(index))
	return d.freqs[index].KHz
}

// Freqs is the resolved frequency table, one element per programmed
// lookup-table row up to the end-of-table marker.
func (d *Domain) Freqs() []Freq { return d.freqs }

// TransitionLatency is what the platform advertises, or unbounded.
func (d *Domain) TransitionLatency() time.Duration {
	if d.Opps != nil {
		if l := d.Opps.TransitionLatency(); l != 0 {
			return l
		}
	}
	return TransitionLatencyUnbounded
}

// IrqAffinityHint is the CPU set the throttle interrupt should be
// steered to.
func (d *Domain) IrqAffinityHint() []int { return d.Cpus }

// readLut decodes the programmed table, whether written here or by the
// bootloader, and cross-validates the platform operating points against
// it: entries the table does not carry stay suppressed.
func (d *Domain) readLut() error {
	soc := d.Soc
	div := soc.ClkHwDiv
	if div == 0 {
		div++
	}
	altKHz := d.AltRateHz / uint64(div) / 1000

	d.crossValidate = d.Opps != nil && d.Opps.Len() > 0
	if d.crossValidate {
		d.Opps.DisableAll()
	}

	rows := make([]Freq, 0, LutMaxEntries)
	var prevKHz uint64
	for i := 0; i < LutMaxEntries; i++ {
		pos := uint32(i) * soc.LutRowSize
		data := d.Regs.R32(soc.RegFreqLut + pos)
		src := fieldGet(soc.FreqLutSrcMask, data)
		lval := fieldGet(lutLValMask, data)
		coreCount := fieldGet(lutCoreCountMask, data)
		mv := fieldGet(lutVoltMask, d.Regs.R32(soc.RegVoltLut+pos))

		kHz := altKHz
		if src != 0 {
			kHz = d.XoRateHz * uint64(lval) / 1000
		}

		f := Freq{KHz: kHz, MilliVolts: mv}
		if kHz != prevKHz && coreCount != lutTurboIndicator {
			if err := d.updateOpp(kHz, mv); err == nil {
				f.Valid = true
			} else {
				log.Print("osm", d.Index, ": opp update ", kHz, " kHz: ", err)
			}
		}

		// Two rows at the same frequency mean end of table; a pending
		// turbo row right before the end is the boost frequency.
		if i > 0 && prevKHz == kHz {
			p := &rows[i-1]
			if !p.Valid {
				if err := d.updateOpp(prevKHz, mv); err == nil {
					p.Valid = true
					p.Boost = true
				}
			}
			break
		}

		rows = append(rows, f)
		prevKHz = kHz
	}
	if len(rows) == 0 {
		return fmt.Errorf("osm%d: empty hardware table", d.Index)
	}
	d.freqs = rows
	return nil
}

func (d *Domain) updateOpp(kHz uint64, mv uint32) error {
	if d.Opps == nil {
		return nil
	}
	hz := kHz * 1000
	if d.crossValidate {
		if err := d.Opps.AdjustVoltage(hz, int(mv)*1000); err != nil {
			return err
		}
		return d.Opps.Enable(hz)
	}
	d.Opps.Add(opp.Entry{Hz: hz, MicroVolts: int(mv) * 1000})
	return nil
}
