// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package osm

import "fmt"

// seqWord is the physical address of one sequencer word. The sequencer
// is never mapped here; its words are written through the firmware
// channel by physical address.
func seqWord(seqAddr uint64, word int) uint64 {
	return seqAddr + uint64(word)*4
}

func (d *Domain) scmWrite(addr uint64, val uint32) error {
	if err := d.Scm.WriteIo(addr, val); err != nil {
		return fmt.Errorf("osm%d: %#x: %v: %w",
			d.Index, addr, err, ErrFirmwareRpc)
	}
	return nil
}

// programTable encodes the platform operating points, derives the rail
// crossovers, and writes both into the hardware: the lookup-table rows
// through MMIO, the sequencer words through the firmware channel. Rows
// past the real entry count repeat the last real row.
func (d *Domain) programTable() error {
	soc := d.Soc
	sregs := soc.Setup
	seqAddr := d.Phys + uint64(sregs.RegOsmSequencer)

	p, err := genParams(d.Opps, d.Cpr, d.XoRateHz, len(d.Cpus),
		soc.FreqLutSrcMask)
	if err != nil {
		return fmt.Errorf("osm%d: %w", d.Index, err)
	}
	cs, err := deriveCrossovers(p)
	if err != nil {
		return fmt.Errorf("osm%d: %w", d.Index, err)
	}

	n := len(p.Rows)
	for i := 0; i < LutMaxEntries; i++ {
		pos := uint32(i) * soc.LutRowSize
		entry := &p.Rows[n-1]
		if i < n {
			entry = &p.Rows[i]
		}
		d.Regs.W32(soc.RegIndex+pos, uint32(i))
		d.Regs.W32(soc.RegVoltLut+pos, entry.VoltLutVal)
		d.Regs.W32(soc.RegFreqLut+pos, entry.FreqLutVal)
		d.Regs.W32(sregs.RegOverride+pos, entry.OverrideVal)
		d.Regs.W32(sregs.RegSpare+pos, entry.SpareVal)
	}

	// A customized corner sits in the external regulation table right
	// after the APM one, so past the end of the dvfs entries.
	if cs.CustomAcc {
		err = d.scmWrite(seqWord(seqAddr, seqMemAccCrossoverVc),
			uint32(n+1))
		if err != nil {
			return err
		}
	}
	for i, v := range cs.Acc {
		err = d.scmWrite(seqWord(seqAddr, seqMemAcc0+i), uint32(v))
		if err != nil {
			return err
		}
	}
	err = d.scmWrite(seqWord(seqAddr, seqMemAccLVal), cs.AccLVal)
	if err != nil {
		return err
	}

	// The APM crossover corner in the external regulation table is
	// always appended right after the dvfs entries.
	d.Regs.W32(sregs.RegSeq1, uint32(n))
	err = d.scmWrite(seqWord(seqAddr, seqApmCrossoverVc), uint32(n))
	if err != nil {
		return err
	}
	err = d.scmWrite(seqWord(seqAddr, seqApmThreshVc), uint32(cs.ApmVc))
	if err != nil {
		return err
	}
	err = d.scmWrite(seqWord(seqAddr, seqApmThreshPreVc),
		uint32(cs.ApmVc-1))
	if err != nil {
		return err
	}
	return d.scmWrite(seqWord(seqAddr, seqApmParam),
		0x39|uint32(cs.ApmVc)<<6)
}
