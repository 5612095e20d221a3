// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package osm

import (
	"errors"
	"fmt"
	"time"
)

const (
	acdPollStep  = time.Microsecond
	acdPollBound = 3 * time.Microsecond
)

// Each ACD sub-register owns the status/config bit at its word index.
func acdRegBit(reg uint32) uint32 { return 1 << (reg / 4) }

func (d *Domain) acdPoll(sts, bits uint32) error {
	deadline := time.Now().Add(acdPollBound)
	for {
		if d.Acd.R32(sts)&bits != 0 {
			return nil
		}
		if time.Now().After(deadline) {
			break
		}
		time.Sleep(acdPollStep)
	}
	if d.Acd.R32(sts)&bits != 0 {
		return nil
	}
	return ErrAcdTransferTimeout
}

// acdAutoXfer transfers the sub-registers in mask: configure, pulse
// the start bit, wait for done.
func (d *Domain) acdAutoXfer(mask uint32) error {
	a := d.Soc.Acd
	d.Acd.W32(a.AutoXferCfgReg, mask)
	d.Acd.W32(a.AutoXferReg, 0)
	d.Acd.W32(a.AutoXferReg, 1)
	return d.acdPoll(a.AutoXferStsReg, 1)
}

// acdWriteXfer writes one sub-register and initiates a manual local
// transfer of it.
func (d *Domain) acdWriteXfer(reg, val uint32) error {
	a := d.Soc.Acd
	d.Acd.W32(reg, val)
	d.Acd.W32(a.WriteCtlReg, 0)
	d.Acd.W32(a.WriteCtlReg,
		(reg/4)<<acdWriteCtlSelectShift|acdWriteCtlUpdateEn)
	return d.acdPoll(a.WriteStsReg, acdRegBit(reg))
}

// acdInit hands the Adaptive Clock Distribution block its calibration
// values and switches the CPU clock source onto the ACD clock. Domains
// without an ACD iospace skip this with no error.
func (d *Domain) acdInit() error {
	if d.Acd == nil || d.Soc.Acd == nil {
		return nil
	}
	a := d.Soc.Acd

	d.Acd.W32(a.TlDelayReg, a.TlDelayVal)
	d.Acd.W32(a.AcdCtrlReg, a.AcdCtrlVal)
	d.Acd.W32(a.SoftStartReg, a.SoftStartVal)
	d.Acd.W32(a.ExtIntfReg, a.ExtIntf0Val)
	d.Acd.W32(a.AutoXferCtlReg, a.AutoXferVal)

	rmask := acdRegBit(a.AcdCtrlReg) | acdRegBit(a.TlDelayReg) |
		acdRegBit(a.SoftStartReg) | acdRegBit(a.ExtIntfReg)
	if err := d.acdAutoXfer(rmask); err != nil {
		return d.acdFail("initial auto transfer", err)
	}

	// Switch the CPU subsystem clock source to the ACD clock.
	if err := d.acdWriteXfer(a.GfmuxCfgReg, 1); err != nil {
		return d.acdFail("clock mux select", err)
	}

	// Pulse software DCVS to force a transfer.
	if err := d.acdWriteXfer(a.DcvsSwReg, 1); err != nil {
		return d.acdFail("dcvs sw set", err)
	}
	if err := d.acdWriteXfer(a.DcvsSwReg, 0); err != nil {
		return d.acdFail("dcvs sw clear", err)
	}

	// Clock switch time.
	time.Sleep(time.Microsecond)

	if err := d.acdWriteXfer(a.ExtIntfReg, a.ExtIntf1Val); err != nil {
		return d.acdFail("final external interface", err)
	}

	// Initiate transfer of the final value, mux select included.
	rmask |= acdRegBit(a.GfmuxCfgReg)
	d.Acd.W32(a.AutoXferCfgReg, rmask)

	time.Sleep(osmBootTimeUs * time.Microsecond)
	return nil
}

func (d *Domain) acdFail(step string, err error) error {
	if errors.Is(err, ErrAcdTransferTimeout) {
		return fmt.Errorf("osm%d: acd %s: %v: %w",
			d.Index, step, err, ErrAcdSequenceTimeout)
	}
	return fmt.Errorf("osm%d: acd %s: %w", d.Index, step, err)
}
