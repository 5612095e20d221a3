// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package cpr

import (
	"encoding/binary"
	"testing"

	"github.com/platinasystems/fdt"
)

func be32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func TestFromFdt(t *testing.T) {
	tree := &fdt.Tree{IsLittleEndian: false}
	n := &fdt.Node{
		Name: "domain@0",
		Properties: map[string][]byte{
			"qcom,apm-threshold-microvolt":     be32(750000),
			"qcom,mem-acc-threshold-microvolt": be32(850000),
		},
	}
	d, err := FromFdt(tree, n)
	if err != nil {
		t.Fatal(err)
	}
	if d.ApmThresholdUV != 750000 {
		t.Error("wrong apm threshold:", d.ApmThresholdUV)
	}
	if d.MemAccThresholdUV != 850000 {
		t.Error("wrong mem-acc threshold:", d.MemAccThresholdUV)
	}
}

func TestFromFdtOptionalMemAcc(t *testing.T) {
	tree := &fdt.Tree{IsLittleEndian: false}
	n := &fdt.Node{
		Name: "domain@0",
		Properties: map[string][]byte{
			"qcom,apm-threshold-microvolt": be32(750000),
		},
	}
	d, err := FromFdt(tree, n)
	if err != nil {
		t.Fatal(err)
	}
	if d.MemAccThresholdUV != 0 {
		t.Error("wrong mem-acc threshold:", d.MemAccThresholdUV)
	}
}

func TestFromFdtMissingApm(t *testing.T) {
	tree := &fdt.Tree{IsLittleEndian: false}
	n := &fdt.Node{Name: "domain@0"}
	if _, err := FromFdt(tree, n); err == nil {
		t.Error("missing apm threshold accepted")
	}
}
