// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package osmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/platinasystems/fdt"
	"github.com/platinasystems/log"
	"github.com/platinasystems/osm/cpr"
	"github.com/platinasystems/osm/opp"
	"github.com/platinasystems/osm/osm"
)

// domainConf is one frequency domain as described by the device tree,
// before any hardware resource is claimed.
type domainConf struct {
	index     int
	soc       *osm.SocData
	phys      uint64
	size      int
	acdPhys   uint64
	acdSize   int
	cpus      []int
	xoRateHz  uint64
	altRateHz uint64
	opps      *opp.Table
	cprData   cpr.Data
	uio       string
}

const (
	defaultXoRateHz  = 19200000
	defaultAltRateHz = 600000000
)

// probe gathers every node carrying a known compatible string. A
// malformed domain node is logged and skipped; the other domains are
// unaffected.
func probe(t *fdt.Tree) []*domainConf {
	var confs []*domainConf
	for compat, soc := range osm.ByCompatible {
		compat, soc := compat, soc
		t.EachProperty("compatible", compat,
			func(n *fdt.Node, name, value string) {
				// The tree walk matches substrings, so insist on the
				// exact compatible string.
				if strings.SplitN(value, "\x00", 2)[0] != compat {
					return
				}
				dc, err := parseDomain(t, n, soc)
				if err != nil {
					log.Print("osmd: ", n.Name, ": ", err)
					return
				}
				confs = append(confs, dc)
			})
	}
	sort.Slice(confs, func(i, j int) bool {
		return confs[i].index < confs[j].index
	})
	return confs
}

func parseDomain(t *fdt.Tree, n *fdt.Node, soc *osm.SocData) (*domainConf, error) {
	dc := &domainConf{
		soc:       soc,
		xoRateHz:  defaultXoRateHz,
		altRateHz: defaultAltRateHz,
	}

	at := strings.IndexByte(n.Name, '@')
	if at < 0 {
		return nil, fmt.Errorf("no unit address")
	}
	u, err := strconv.ParseUint(n.Name[at+1:], 16, 32)
	if err != nil {
		return nil, fmt.Errorf("unit address: %v", err)
	}
	dc.index = int(u)

	reg, found := n.Properties["reg"]
	if !found || len(reg) < 8 {
		return nil, fmt.Errorf("no reg")
	}
	cells := t.PropUint32Slice(reg)
	dc.phys = uint64(cells[0])
	dc.size = int(cells[1])

	if acd, found := n.Properties["acd-reg"]; found && len(acd) >= 8 {
		cells = t.PropUint32Slice(acd)
		dc.acdPhys = uint64(cells[0])
		dc.acdSize = int(cells[1])
	}

	cpus, found := n.Properties["cpus"]
	if !found {
		return nil, fmt.Errorf("no cpus")
	}
	for _, cpu := range t.PropUint32Slice(cpus) {
		dc.cpus = append(dc.cpus, int(cpu))
	}

	if b, found := n.Properties["xo-rate-hz"]; found {
		dc.xoRateHz = uint64(t.PropUint32(b))
	}
	if b, found := n.Properties["alternate-rate-hz"]; found {
		dc.altRateHz = uint64(t.PropUint32(b))
	}
	if b, found := n.Properties["uio"]; found {
		dc.uio = t.PropString(b)
	}

	if ot, found := n.Children["opp-table"]; found {
		dc.opps, err = opp.FromFdt(t, ot)
		if err != nil {
			return nil, err
		}
	}

	// Variants that the OS brings up also need the regulation
	// thresholds; pre-configured ones never look at them.
	if !soc.UsesTz {
		dc.cprData, err = cpr.FromFdt(t, n)
		if err != nil {
			return nil, err
		}
	}
	return dc, nil
}
