// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package opp

import (
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/platinasystems/fdt"
)

func mustNew(t *testing.T, entries []Entry) *Table {
	t.Helper()
	tbl, err := New(entries)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func threePoints(t *testing.T) *Table {
	return mustNew(t, []Entry{
		{Hz: 900000000, MicroVolts: 700000},
		{Hz: 300000000, MicroVolts: 500000},
		{Hz: 600000000, MicroVolts: 600000},
	})
}

func TestNewSortsAscending(t *testing.T) {
	tbl := threePoints(t)
	var prev uint64
	for hz := uint64(1); ; hz = prev + 1 {
		e, err := tbl.FindCeil(hz)
		if err != nil {
			break
		}
		if e.Hz <= prev {
			t.Fatal("not ascending:", e.Hz, "after", prev)
		}
		prev = e.Hz
	}
	if prev != 900000000 {
		t.Error("wrong fastest point:", prev)
	}
}

func TestNewRejectsDuplicate(t *testing.T) {
	_, err := New([]Entry{{Hz: 300000000}, {Hz: 300000000}})
	if err == nil {
		t.Error("duplicate accepted")
	}
}

func TestFindCeilFloor(t *testing.T) {
	tbl := threePoints(t)

	e, err := tbl.FindCeil(300000001)
	if err != nil || e.Hz != 600000000 {
		t.Error("ceil wrong:", e, err)
	}
	e, err = tbl.FindFloor(899999999)
	if err != nil || e.Hz != 600000000 {
		t.Error("floor wrong:", e, err)
	}
	if _, err = tbl.FindCeil(900000001); err != ErrRange {
		t.Error("past the table:", err)
	}
	if _, err = tbl.FindFloor(299999999); err != ErrRange {
		t.Error("below the table:", err)
	}
}

func TestDisableSkipsEntries(t *testing.T) {
	tbl := threePoints(t)
	tbl.DisableAll()
	if _, err := tbl.FindCeil(1); err != ErrRange {
		t.Fatal("disabled entry found:", err)
	}
	if err := tbl.Enable(600000000); err != nil {
		t.Fatal(err)
	}
	e, err := tbl.FindCeil(1)
	if err != nil || e.Hz != 600000000 {
		t.Error("wrong:", e, err)
	}
	if err = tbl.Disable(600000000); err != nil {
		t.Fatal(err)
	}
	if _, err = tbl.FindExact(600000000); err != ErrRange {
		t.Error("disabled entry found:", err)
	}
}

func TestAdjustVoltage(t *testing.T) {
	tbl := threePoints(t)
	if err := tbl.AdjustVoltage(600000000, 650000); err != nil {
		t.Fatal(err)
	}
	e, err := tbl.FindExact(600000000)
	if err != nil || e.MicroVolts != 650000 {
		t.Error("wrong:", e, err)
	}
	if err = tbl.AdjustVoltage(100, 0); err != ErrRange {
		t.Error("wrong:", err)
	}
}

func TestAddKeepsOrder(t *testing.T) {
	tbl := threePoints(t)
	tbl.Add(Entry{Hz: 450000000, MicroVolts: 550000})
	e, err := tbl.FindCeil(300000001)
	if err != nil || e.Hz != 450000000 {
		t.Error("wrong:", e, err)
	}
	// Same frequency overwrites.
	tbl.Add(Entry{Hz: 450000000, MicroVolts: 560000})
	if tbl.Len() != 4 {
		t.Error("wrong length:", tbl.Len())
	}
	e, _ = tbl.FindExact(450000000)
	if e.MicroVolts != 560000 {
		t.Error("not overwritten:", e.MicroVolts)
	}
}

func TestTransitionLatency(t *testing.T) {
	tbl := mustNew(t, []Entry{
		{Hz: 300000000, ClockLatencyNs: 200},
		{Hz: 600000000, ClockLatencyNs: 500},
	})
	if got := tbl.TransitionLatency(); got != 500*time.Nanosecond {
		t.Error("wrong:", got)
	}
	if got := threePoints(t).TransitionLatency(); got != 0 {
		t.Error("wrong:", got)
	}
}

func be32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func be64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func oppNode(hz uint64, props map[string][]byte) *fdt.Node {
	n := &fdt.Node{
		Name:       fmt.Sprintf("opp-%d", hz),
		Properties: map[string][]byte{"opp-hz": be64(hz)},
	}
	for k, v := range props {
		n.Properties[k] = v
	}
	return n
}

func TestFromFdt(t *testing.T) {
	tree := &fdt.Tree{IsLittleEndian: false}
	table := &fdt.Node{
		Name: "opp-table",
		Children: map[string]*fdt.Node{
			"opp-300000000": oppNode(300000000, map[string][]byte{
				"opp-microvolt":     be32(500000),
				"qcom,pll-override": be32(0x400),
				"qcom,spare-data":   be32(1),
				"clock-latency-ns":  be32(200),
			}),
			"opp-600000000": oppNode(600000000, map[string][]byte{
				"opp-microvolt":     be32(600000),
				"qcom,pll-override": be32(0x401),
				"qcom,spare-data":   be32(2),
				"qcom,pll-div":      be32(1),
				"opp-peak-kBps":     be32(7216000),
			}),
			"skipped": {
				Name:       "skipped",
				Properties: map[string][]byte{"foo": be32(1)},
			},
		},
	}

	tbl, err := FromFdt(tree, table)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 2 {
		t.Fatal("wrong length:", tbl.Len())
	}

	e, err := tbl.FindExact(300000000)
	if err != nil {
		t.Fatal(err)
	}
	if e.MicroVolts != 500000 || !e.HasOverride || e.Override != 0x400 ||
		e.Spare != 1 || e.ClockLatencyNs != 200 {
		t.Error("wrong:", e)
	}

	e, err = tbl.FindExact(600000000)
	if err != nil {
		t.Fatal(err)
	}
	if e.PllDiv != 1 || e.PeakBandwidthKBps != 7216000 {
		t.Error("wrong:", e)
	}
}

func TestFromFdtEmpty(t *testing.T) {
	tree := &fdt.Tree{IsLittleEndian: false}
	n := &fdt.Node{Name: "opp-table"}
	if _, err := FromFdt(tree, n); err == nil {
		t.Error("empty table accepted")
	}
}
