// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package osm

import (
	"errors"
	"testing"
)

// rowsWithSpares builds a parameter table whose row i carries L-value
// 16*(i+1), spare as given.
func rowsWithSpares(apmVc, accVc int, spares ...uint32) *tableParams {
	p := &tableParams{ApmVc: apmVc, AccVc: accVc}
	for i, s := range spares {
		p.Rows = append(p.Rows, hwParams{
			FreqLutVal: uint32(16 * (i + 1)),
			SpareVal:   s,
		})
	}
	return p
}

func checkOrdered(t *testing.T, acc [seqMemAccMaxLevels]int) {
	t.Helper()
	for i := 0; i < len(acc); i++ {
		if acc[i] < 0 {
			t.Error("negative corner:", acc)
			return
		}
		if i > 0 && acc[i] <= acc[i-1] {
			t.Error("not strictly ascending:", acc)
			return
		}
	}
}

func TestDeriveCrossoverPairs(t *testing.T) {
	s, err := deriveCrossovers(
		rowsWithSpares(3, AccNotRequired, 1, 1, 2, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	want := [seqMemAccMaxLevels]int{1, 2, 3, 4}
	if s.Acc != want {
		t.Error("wrong pairs:", s.Acc, "want", want)
	}
	checkOrdered(t, s.Acc)
	if s.ApmVc != 3 {
		t.Error("wrong apm corner:", s.ApmVc)
	}
	if s.CustomAcc {
		t.Error("custom corner without candidate")
	}
	// L-value of the row at the final high bound, corner 4.
	if s.AccLVal != 16*5 {
		t.Error("wrong lval:", s.AccLVal)
	}
}

func TestDeriveCrossoverTooFewLevels(t *testing.T) {
	_, err := deriveCrossovers(
		rowsWithSpares(3, AccNotRequired, 1, 1, 1, 1, 1))
	if !errors.Is(err, ErrCrossoverDerivation) {
		t.Error("wrong:", err)
	}
}

func TestDeriveCrossoverCustomCorner(t *testing.T) {
	s, err := deriveCrossovers(rowsWithSpares(3, 4, 1, 1, 2, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	if !s.CustomAcc {
		t.Fatal("custom corner not applied")
	}
	// Candidate 4 drops to 3, moving the upper pair to (2,3) and
	// cascading the lower pair down to (0,1).
	want := [seqMemAccMaxLevels]int{0, 1, 2, 3}
	if s.Acc != want {
		t.Error("wrong pairs:", s.Acc, "want", want)
	}
	checkOrdered(t, s.Acc)
	if s.AccLVal != 16*4 {
		t.Error("wrong lval:", s.AccLVal)
	}
}

func TestDeriveCrossoverZeroCandidate(t *testing.T) {
	// Corner 0 means not required and must not alter the pairs.
	s, err := deriveCrossovers(rowsWithSpares(3, 0, 1, 1, 2, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	want := [seqMemAccMaxLevels]int{1, 2, 3, 4}
	if s.Acc != want {
		t.Error("wrong pairs:", s.Acc, "want", want)
	}
	if s.CustomAcc {
		t.Error("corner 0 treated as custom")
	}
}

func TestDeriveCrossoverNegativeRepair(t *testing.T) {
	// Early transitions leave no room for the cascade repair.
	_, err := deriveCrossovers(rowsWithSpares(3, 3, 1, 2, 3, 3, 3))
	if !errors.Is(err, ErrCrossoverDerivation) {
		t.Error("wrong:", err)
	}
}

func TestDeriveCrossoverApmDefault(t *testing.T) {
	s, err := deriveCrossovers(
		rowsWithSpares(-1, AccNotRequired, 1, 1, 2, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	if s.ApmVc != LutMaxEntries-1 {
		t.Error("wrong apm corner:", s.ApmVc)
	}
}
