// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// This is the operating state manager machine: the osmd daemon plus
// its control command.
package main

import (
	"fmt"
	"os"

	"github.com/platinasystems/goes"
	"github.com/platinasystems/goes/cmd"
	"github.com/platinasystems/goes/cmd/cli"
	"github.com/platinasystems/goes/lang"
	"github.com/platinasystems/osm/cmd/osmctl"
	"github.com/platinasystems/osm/cmd/osmd"
)

var Goes = &goes.Goes{
	NAME:  "goes-osm",
	USAGE: "goes-osm COMMAND [ ARGS ]...",
	APROPOS: lang.Alt{
		lang.EnUS: "operating state manager",
	},
	ByName: map[string]cmd.Cmd{
		"cli":    &cli.Command{},
		"osmd":   &osmd.Command{},
		"osmctl": osmctl.Command{},
	},
}

func main() {
	if err := Goes.Main(os.Args...); err != nil {
		fmt.Fprintln(os.Stderr, "goes-osm:", err)
		os.Exit(1)
	}
}
