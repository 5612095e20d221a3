// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package osm

import (
	"fmt"

	"github.com/platinasystems/osm/cpr"
	"github.com/platinasystems/osm/opp"
)

// AccNotRequired marks a domain whose table needs no customized MEM-ACC
// corner; the sequencer then scales from the table crossovers alone.
const AccNotRequired = 0xff

// hwParams is one encoded lookup-table row, ready for the register
// arrays.
type hwParams struct {
	FreqLutVal  uint32
	VoltLutVal  uint32
	OverrideVal uint32
	SpareVal    uint32
}

// tableParams is the product of reading the platform operating points:
// the encoded rows plus the raw APM and MEM-ACC crossover candidates.
// ApmVc is -1 when no operating point reached the APM threshold; AccVc
// is AccNotRequired when no customized MEM-ACC corner applies.
type tableParams struct {
	Rows  []hwParams
	ApmVc int
	AccVc int
}

// genParams walks the ascending operating-point list and encodes one
// row per point. The virtual corner of a row is its index. Only the
// first row runs from the alternate clock source, since that is the
// one used for low power idle states.
func genParams(opps *opp.Table, cd cpr.Data, xoRateHz uint64,
	cpuCount int, srcMask uint32) (*tableParams, error) {
	count := opps.Len()
	if count < 2 {
		return nil, fmt.Errorf("%d operating points: %w",
			count, ErrInvalidOpData)
	}
	if cd.ApmThresholdUV <= 0 {
		return nil, fmt.Errorf("no apm threshold: %w", ErrInvalidOpData)
	}

	p := &tableParams{ApmVc: -1, AccVc: -1}
	accUV := cd.MemAccThresholdUV
	if accUV <= 0 {
		p.AccVc = AccNotRequired
	}

	rate := uint64(1000)
	for i := 0; i <= count; i, rate = i+1, rate+1 {
		// Past the last defined frequency the search fails; that is
		// the expected end of table, not an error.
		e, err := opps.FindCeil(rate)
		if err != nil {
			break
		}
		rate = e.Hz

		if !e.HasOverride {
			return nil, fmt.Errorf("opp %d Hz has no pll override: %w",
				e.Hz, ErrInvalidOpData)
		}

		uV := e.MicroVolts
		if uV >= cd.ApmThresholdUV && p.ApmVc < 0 {
			p.ApmVc = i
		}
		if accUV > 0 && uV >= accUV && p.AccVc < 0 {
			p.AccVc = i
		}

		mV := uV / 1000
		if mV < 150 || mV > 1400 {
			return nil, fmt.Errorf("voltage %d mV out of range: %w",
				mV, ErrInvalidOpData)
		}

		var fsrc uint32
		if i > 0 {
			fsrc = 1
		}
		p.Rows = append(p.Rows, hwParams{
			VoltLutVal: fieldPrep(lutVoltVcMask, uint32(i)) |
				fieldPrep(lutVoltMask, uint32(mV)),
			FreqLutVal: fieldPrep(srcMask, fsrc) |
				uint32(e.Hz/xoRateHz) |
				fieldPrep(lutCoreCountMask, uint32(cpuCount)) |
				fieldPrep(lutPllDivMask, e.PllDiv),
			OverrideVal: e.Override,
			SpareVal:    e.Spare,
		})
	}

	// A customized MEM-ACC corner below the minimum level count cannot
	// drive mem-acc scaling; fall back to the table crossovers.
	if accUV > 0 && p.AccVc < seqMemAccMaxLevels-1 {
		p.AccVc = AccNotRequired
	}

	if len(p.Rows) < count {
		return nil, fmt.Errorf("%d of %d operating points usable: %w",
			len(p.Rows), count, ErrInvalidOpData)
	}
	return p, nil
}
