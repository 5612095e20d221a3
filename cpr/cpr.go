// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package cpr carries the threshold voltages published by the CPR
// voltage-regulation coprocessor driver. The control engine only needs
// the two rail-switch thresholds; everything else about CPR is out of
// scope.
package cpr

import (
	"fmt"

	"github.com/platinasystems/fdt"
)

type Data struct {
	// First voltage requiring the Array Power Mux to switch rails.
	// Required; a domain without it cannot be brought up safely.
	ApmThresholdUV int

	// Customized MEM-ACC switch voltage. Zero or negative means the
	// part does not need one and the LUT-derived corners stand.
	MemAccThresholdUV int
}

// FromFdt reads the threshold properties of a cpr node.
func FromFdt(t *fdt.Tree, n *fdt.Node) (Data, error) {
	var d Data
	b, found := n.Properties["qcom,apm-threshold-microvolt"]
	if !found {
		return d, fmt.Errorf("%s: no apm threshold", n.Name)
	}
	d.ApmThresholdUV = int(t.PropUint32(b))
	if b, found = n.Properties["qcom,mem-acc-threshold-microvolt"]; found {
		d.MemAccThresholdUV = int(t.PropUint32(b))
	}
	return d, nil
}
