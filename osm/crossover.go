// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package osm

import "fmt"

// crossoverSet is where the rail switches happen: two (low,high)
// MEM-ACC transition pairs, the APM switch corner, and the L-value of
// the first corner requesting the highest MEM-ACC level.
type crossoverSet struct {
	Acc       [seqMemAccMaxLevels]int
	ApmVc     int
	AccLVal   uint32
	CustomAcc bool
}

// deriveCrossovers scans the encoded rows for MEM-ACC level
// transitions and applies the customized-corner adjustment when the
// regulation data supplied one.
//
// The spare value can never be zero and the first is always 1, so a
// strict increase marks a level transition. Example (C = corner,
// M = MEM-ACC level):
//
//	C0 M1 - C1 M1 - C2 M2 - C3 M2 - C4 M2 - C5 M3
//	pairs: 1-2, 4-5
func deriveCrossovers(p *tableParams) (*crossoverSet, error) {
	s := &crossoverSet{ApmVc: p.ApmVc}

	lastSpare := uint32(1)
	idx := 0
	for i := range p.Rows {
		if p.Rows[i].SpareVal <= lastSpare ||
			idx >= seqMemAccMaxLevels-1 {
			continue
		}
		lastSpare = p.Rows[i].SpareVal
		s.Acc[idx] = i - 1
		s.Acc[idx+1] = i
		idx += 2
	}
	// Two full pairs, four values, are mandatory.
	if idx < seqMemAccMaxLevels-1 {
		return nil, fmt.Errorf("%d mem-acc transition values: %w",
			idx, ErrCrossoverDerivation)
	}

	if accVc := p.AccVc; accVc > 0 && accVc != AccNotRequired {
		s.CustomAcc = true

		// Switch the ACC at one corner lower than what was found.
		// At the price of slightly higher power consumption this is
		// needed on at least some chips for full system stability.
		accVc--

		// Change only when the corner moves down, then sanitize the
		// previously recorded pair so the ordering holds.
		if accVc < s.Acc[3] {
			s.Acc[2] = accVc - 1
			s.Acc[3] = accVc
		}
		if s.Acc[2] <= s.Acc[1] {
			s.Acc[1] = s.Acc[2] - 1
		}
		if s.Acc[1] <= s.Acc[0] {
			s.Acc[0] = s.Acc[1] - 1
		}
		for _, v := range s.Acc {
			if v < 0 {
				return nil, fmt.Errorf("mem-acc corner %d: %w",
					v, ErrCrossoverDerivation)
			}
		}
	}

	// The APM switch defaults past every real corner when no operating
	// point reached the threshold voltage.
	if s.ApmVc < 0 {
		s.ApmVc = LutMaxEntries - 1
	}

	s.AccLVal = fieldGet(lutLValMask, p.Rows[s.Acc[3]].FreqLutVal)
	return s, nil
}
