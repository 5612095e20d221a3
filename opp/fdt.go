// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package opp

import (
	"fmt"

	"github.com/platinasystems/fdt"
)

// FromFdt reads an operating-point table node of the flattened device
// tree: every child carrying an "opp-hz" property becomes one entry.
func FromFdt(t *fdt.Tree, n *fdt.Node) (*Table, error) {
	var entries []Entry
	for _, c := range n.Children {
		b, found := c.Properties["opp-hz"]
		if !found {
			continue
		}
		e := Entry{Hz: propUint64(t, b)}
		if b, found = c.Properties["opp-microvolt"]; found {
			e.MicroVolts = int(t.PropUint32(b))
		}
		if b, found = c.Properties["qcom,pll-override"]; found {
			e.Override = t.PropUint32(b)
			e.HasOverride = true
		}
		if b, found = c.Properties["qcom,spare-data"]; found {
			e.Spare = t.PropUint32(b)
		}
		if b, found = c.Properties["qcom,pll-div"]; found {
			e.PllDiv = t.PropUint32(b)
		}
		if b, found = c.Properties["opp-peak-kBps"]; found {
			e.PeakBandwidthKBps = t.PropUint32(b)
		}
		if b, found = c.Properties["clock-latency-ns"]; found {
			e.ClockLatencyNs = t.PropUint32(b)
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: no operating points", n.Name)
	}
	return New(entries)
}

// opp-hz is a 64-bit cell pair.
func propUint64(t *fdt.Tree, b []byte) uint64 {
	s := t.PropUint32Slice(b)
	if len(s) < 2 {
		if len(s) == 1 {
			return uint64(s[0])
		}
		return 0
	}
	return uint64(s[0])<<32 | uint64(s[1])
}
