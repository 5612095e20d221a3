// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package osmd is the Operating State Manager daemon. It probes the
// device tree for frequency domains, brings each one up, publishes
// per-domain state to redis and accepts performance-index writes.
package osmd

import (
	"fmt"
	"io"
	"io/ioutil"
	"net/rpc"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/platinasystems/fdt"
	"github.com/platinasystems/goes/cmd"
	"github.com/platinasystems/goes/external/atsock"
	"github.com/platinasystems/goes/external/redis"
	"github.com/platinasystems/goes/external/redis/publisher"
	"github.com/platinasystems/goes/external/redis/rpc/args"
	"github.com/platinasystems/goes/external/redis/rpc/reply"
	"github.com/platinasystems/goes/lang"
	"github.com/platinasystems/log"
	"github.com/platinasystems/osm/osm"
	"github.com/platinasystems/osm/regio"
	"github.com/platinasystems/osm/scm"
	"github.com/platinasystems/osm/uio"
)

var (
	// File is the flattened device tree describing the domains.
	File = "/boot/linux.dtb"

	pollInterval time.Duration = 1
)

type Command struct {
	Info
}

type Info struct {
	mutex   sync.Mutex
	rpc     *atsock.RpcServer
	pub     *publisher.Publisher
	stop    chan struct{}
	domains map[int]*osm.Domain
	closers []io.Closer
	lasts   map[string]string
}

func (*Command) String() string { return "osmd" }

func (*Command) Usage() string { return "osmd" }

func (*Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "operating state manager daemon",
	}
}

func (*Command) Kind() cmd.Kind { return cmd.Daemon }

func (c *Command) Main(...string) error {
	err := redis.IsReady()
	if err != nil {
		return err
	}

	c.stop = make(chan struct{})
	c.lasts = make(map[string]string)
	c.domains = make(map[int]*osm.Domain)

	if c.pub, err = publisher.New(); err != nil {
		return err
	}

	b, err := ioutil.ReadFile(File)
	if err != nil {
		return err
	}
	t := &fdt.Tree{Debug: false, IsLittleEndian: false}
	if err = t.Parse(b); err != nil {
		return err
	}

	defer c.closeDomains()
	for _, dc := range probe(t) {
		// A failed bring-up disables that domain only.
		d, err := c.bringUp(dc)
		if err != nil {
			log.Print("osm", dc.index, ": ", err)
			continue
		}
		c.domains[dc.index] = d
	}
	if len(c.domains) == 0 {
		return fmt.Errorf("%s: no frequency domains", File)
	}
	c.publishTables()

	if c.rpc, err = atsock.NewRpcServer("osmd"); err != nil {
		return err
	}
	rpc.Register(&c.Info)
	err = redis.Assign(redis.DefaultHash+":osm.", "osmd", "Info")
	if err != nil {
		return err
	}

	tick := time.NewTicker(pollInterval * time.Second)
	defer tick.Stop()
	for {
		select {
		case <-c.stop:
			return nil
		case <-tick.C:
			c.update()
		}
	}
}

func (c *Command) Close() error {
	close(c.stop)
	return nil
}

// bringUp claims the hardware resources a probed domain names and runs
// its initialization. Resources claimed for a domain that then fails
// are released right away.
func (c *Command) bringUp(dc *domainConf) (*osm.Domain, error) {
	var claimed []io.Closer
	fail := func(err error) (*osm.Domain, error) {
		for _, cl := range claimed {
			cl.Close()
		}
		return nil, err
	}

	regs, err := regio.MapDevMem(dc.phys, dc.size)
	if err != nil {
		return fail(err)
	}
	claimed = append(claimed, regs)

	cfg := osm.Config{
		Index:     dc.index,
		Regs:      regs,
		Phys:      dc.phys,
		Soc:       dc.soc,
		Cpus:      dc.cpus,
		XoRateHz:  dc.xoRateHz,
		AltRateHz: dc.altRateHz,
		Opps:      dc.opps,
		Cpr:       dc.cprData,
		Pressure: &throttlePub{
			pub: c.pub,
			key: fmt.Sprint("osm.", dc.index, ".throttle.khz"),
		},
	}

	if dc.acdPhys != 0 {
		acd, err := regio.MapDevMem(dc.acdPhys, dc.acdSize)
		if err != nil {
			return fail(err)
		}
		claimed = append(claimed, acd)
		cfg.Acd = acd
	}
	if !dc.soc.UsesTz {
		rpcIo := new(scm.Rpc)
		claimed = append(claimed, rpcIo)
		cfg.Scm = rpcIo
	}
	if dc.uio != "" {
		irq, err := uio.Open("/dev/" + dc.uio)
		if err != nil {
			return fail(err)
		}
		// Close here is idempotent; the domain also closes its line
		// during teardown.
		claimed = append(claimed, irq)
		cfg.Irq = irq
	}

	d, err := osm.New(cfg)
	if err != nil {
		return fail(err)
	}
	if err = d.Init(); err != nil {
		return fail(err)
	}
	c.closers = append(c.closers, claimed...)
	return d, nil
}

func (c *Command) closeDomains() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, d := range c.domains {
		d.Close()
	}
	for _, cl := range c.closers {
		cl.Close()
	}
	c.domains = make(map[int]*osm.Domain)
	c.closers = nil
}

// publishTables pushes every resolved table row once, at startup.
func (c *Command) publishTables() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, idx := range c.indexes() {
		d := c.domains[idx]
		for i, f := range d.Freqs() {
			if !f.Valid {
				continue
			}
			v := fmt.Sprint(f.KHz, " khz ", f.MilliVolts, " mv")
			if f.Boost {
				v += " boost"
			}
			c.pub.Print(fmt.Sprint("osm.", idx, ".lut.", i), ": ", v)
		}
	}
}

func (c *Command) update() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, idx := range c.indexes() {
		d := c.domains[idx]
		c.publish(fmt.Sprint("osm.", idx, ".freq.khz"),
			fmt.Sprint(d.Get()))
		c.publish(fmt.Sprint("osm.", idx, ".index"),
			fmt.Sprint(d.CurrentIndex()))
	}
}

func (c *Command) publish(k, v string) {
	if v != c.lasts[k] {
		c.pub.Print(k, ": ", v)
		c.lasts[k] = v
	}
}

func (c *Command) indexes() []int {
	idxs := make([]int, 0, len(c.domains))
	for idx := range c.domains {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)
	return idxs
}

// Hset accepts "osm.N.index" writes assigned to this daemon.
func (i *Info) Hset(a args.Hset, r *reply.Hset) error {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	v := strings.TrimRight(string(a.Value), "\n")

	f := strings.TrimPrefix(a.Field, "osm.")
	parts := strings.SplitN(f, ".", 2)
	if len(parts) != 2 || parts[1] != "index" {
		return fmt.Errorf("%s: unknown field", a.Field)
	}
	idx, err := strconv.Atoi(parts[0])
	if err != nil {
		return err
	}
	d, found := i.domains[idx]
	if !found {
		return fmt.Errorf("osm%d: no such domain", idx)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	if err = d.SetIndex(n); err != nil {
		return err
	}
	*r = reply.Hset(len(a.Value))
	return nil
}

// throttlePub publishes the throttled frequency the notifier observed.
// The publisher carries its own lock, so this never contends with the
// daemon mutex and teardown cannot deadlock against an in-flight poll.
type throttlePub struct {
	pub *publisher.Publisher
	key string
}

func (p *throttlePub) ReportPressure(cpus []int, kHz uint64) {
	p.pub.Print(p.key, ": ", kHz)
}
