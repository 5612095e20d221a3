// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package osmctl queries and controls the operating state manager
// daemon through redis.
package osmctl

import (
	"fmt"
	"strconv"

	"github.com/platinasystems/goes/cmd"
	"github.com/platinasystems/goes/external/flags"
	"github.com/platinasystems/goes/external/redis"
	"github.com/platinasystems/goes/lang"
	"github.com/platinasystems/osm/osm"
)

func New() Command { return Command{} }

type Command struct{}

func (Command) String() string { return "osmctl" }

func (Command) Usage() string {
	return "osmctl show [-lut] DOMAIN | osmctl set DOMAIN INDEX"
}

func (Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "control the operating state manager",
	}
}

func (Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Query and set the per-domain performance state through the osmd
	daemon.

	show [-lut] DOMAIN
		print the domain's current frequency, index and throttled
		frequency; with -lut, the resolved lookup table rows too

	set DOMAIN INDEX
		request performance state INDEX`,
	}
}

func (Command) Kind() cmd.Kind { return cmd.DontFork }

func (Command) Main(args ...string) error {
	flag, args := flags.New(args, "-lut")
	if len(args) == 0 {
		return fmt.Errorf("OPERATION: missing")
	}
	op := args[0]
	args = args[1:]
	switch op {
	case "show":
		if len(args) == 0 {
			return fmt.Errorf("DOMAIN: missing")
		}
		return show(args[0], flag.ByName["-lut"])
	case "set":
		if len(args) < 2 {
			return fmt.Errorf("DOMAIN INDEX: missing")
		}
		return set(args[0], args[1])
	}
	return fmt.Errorf("%s: unknown operation", op)
}

func show(domain string, lut bool) error {
	if _, err := strconv.Atoi(domain); err != nil {
		return fmt.Errorf("DOMAIN: %v", err)
	}
	for _, suffix := range []string{"freq.khz", "index", "throttle.khz"} {
		field := "osm." + domain + "." + suffix
		s, err := redis.Hget(redis.DefaultHash, field)
		if err != nil || len(s) == 0 {
			continue
		}
		fmt.Println(field+":", s)
	}
	if !lut {
		return nil
	}
	for i := 0; i < osm.LutMaxEntries; i++ {
		field := fmt.Sprint("osm.", domain, ".lut.", i)
		s, err := redis.Hget(redis.DefaultHash, field)
		if err != nil || len(s) == 0 {
			break
		}
		fmt.Println(field+":", s)
	}
	return nil
}

func set(domain, index string) error {
	if _, err := strconv.Atoi(domain); err != nil {
		return fmt.Errorf("DOMAIN: %v", err)
	}
	if _, err := strconv.Atoi(index); err != nil {
		return fmt.Errorf("INDEX: %v", err)
	}
	_, err := redis.Hset(redis.DefaultHash, "osm."+domain+".index", index)
	return err
}
