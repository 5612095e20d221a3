// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package osm

import (
	"errors"
	"testing"
)

// respondingAcd models an ACD block that confirms every transfer: the
// auto-transfer start bit sets status bit 0 and a manual write-control
// update sets the selected sub-register's status bit.
func respondingAcd() *fakeIO {
	a := Msm8998.Acd
	f := newFakeIO()
	f.onWrite = func(f *fakeIO, off, val uint32) {
		switch off {
		case a.AutoXferReg:
			if val == 1 {
				f.or(a.AutoXferStsReg, 1)
			}
		case a.WriteCtlReg:
			if val&acdWriteCtlUpdateEn != 0 {
				f.or(a.WriteStsReg, 1<<(val>>acdWriteCtlSelectShift))
			}
		}
	}
	return f
}

func newAcdDomain(acd *fakeIO) *Domain {
	return &Domain{Config: Config{
		Index: 1,
		Regs:  newFakeIO(),
		Acd:   acd,
		Soc:   Msm8998,
	}}
}

func TestAcdInit(t *testing.T) {
	acd := respondingAcd()
	d := newAcdDomain(acd)
	if err := d.acdInit(); err != nil {
		t.Fatal(err)
	}
	a := Msm8998.Acd

	for _, x := range []struct {
		name string
		off  uint32
		want uint32
	}{
		{"tl delay", a.TlDelayReg, a.TlDelayVal},
		{"acd ctrl", a.AcdCtrlReg, a.AcdCtrlVal},
		{"soft start", a.SoftStartReg, a.SoftStartVal},
		{"external interface", a.ExtIntfReg, a.ExtIntf1Val},
		{"auto transfer ctl", a.AutoXferCtlReg, a.AutoXferVal},
		{"clock mux", a.GfmuxCfgReg, 1},
		{"dcvs sw", a.DcvsSwReg, 0},
	} {
		if got := acd.reg[x.off]; got != x.want {
			t.Errorf("%s wrong: %#x want %#x", x.name, got, x.want)
		}
	}

	// The final auto-transfer config includes the mux select bit.
	rmask := acdRegBit(a.AcdCtrlReg) | acdRegBit(a.TlDelayReg) |
		acdRegBit(a.SoftStartReg) | acdRegBit(a.ExtIntfReg)
	want := rmask | acdRegBit(a.GfmuxCfgReg)
	if got := acd.reg[a.AutoXferCfgReg]; got != want {
		t.Errorf("auto transfer cfg wrong: %#x want %#x", got, want)
	}
}

func TestAcdInitSkipped(t *testing.T) {
	d := &Domain{Config: Config{Regs: newFakeIO(), Soc: Msm8998}}
	if err := d.acdInit(); err != nil {
		t.Error("absent block must not fail:", err)
	}
}

func TestAcdTransferTimeout(t *testing.T) {
	// A block that never confirms.
	d := newAcdDomain(newFakeIO())
	err := d.acdAutoXfer(1)
	if !errors.Is(err, ErrAcdTransferTimeout) {
		t.Error("wrong:", err)
	}
	err = d.acdWriteXfer(Msm8998.Acd.GfmuxCfgReg, 1)
	if !errors.Is(err, ErrAcdTransferTimeout) {
		t.Error("wrong:", err)
	}
}

func TestAcdInitSequenceTimeout(t *testing.T) {
	d := newAcdDomain(newFakeIO())
	err := d.acdInit()
	if !errors.Is(err, ErrAcdSequenceTimeout) {
		t.Error("wrong:", err)
	}
}

func TestAcdRegBit(t *testing.T) {
	for _, x := range []struct{ reg, want uint32 }{
		{0x4, 1 << 1},
		{0x8, 1 << 2},
		{0x30, 1 << 12},
		{0x3c, 1 << 15},
	} {
		if got := acdRegBit(x.reg); got != x.want {
			t.Errorf("%#x wrong: %#x want %#x", x.reg, got, x.want)
		}
	}
}
