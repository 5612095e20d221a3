// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package osm

import "time"

// boostSetup programs one boost FSM timer group of three registers
// starting at timer0.
func (d *Domain) boostSetup(timer0 uint32) {
	length := d.Soc.Setup.BoostTimerRegLen

	val := fieldPrep(boostTimerLoMask, pllWaitLockTimeNs)
	val |= fieldPrep(boostTimerHiMask, safeFreqWaitNs)
	d.Regs.W32(timer0, val)

	val = fieldPrep(boostTimerLoMask, pllWaitLockTimeNs)
	val |= fieldPrep(boostTimerHiMask, pllWaitLockTimeNs)
	d.Regs.W32(timer0+length, val)

	d.Regs.W32(timer0+2*length,
		fieldPrep(boostTimerLoMask, dextDecrementWaitNs))
}

// setup runs the whole bring-up sequence on hardware nothing else has
// configured: table, cycle counter, policy hysteresis, boost and droop
// FSMs, ACD, enable. Any failing step leaves the hardware unenabled.
func (d *Domain) setup() error {
	if err := d.programTable(); err != nil {
		return err
	}
	s := d.Soc.Setup

	// Run the cycle counter from the crystal edge at the fixed ratio.
	val := fieldPrep(cycleCounterClkRatioMask, osmXoRatioVal)
	val |= cycleCounterUseXoEdge | 1
	d.Regs.W32(s.RegCycleCounter, val)

	// Core-count policy wait times for frequency moves.
	val = fieldPrep(hysteresisUpMask, hysteresisCcNs)
	val |= fieldPrep(hysteresisDnMask, hysteresisCcNs)
	d.Regs.W32(s.RegSpmCcHyst, val)

	// Frequency index 0 with override on cluster power collapse.
	d.Regs.W32(s.RegCcZeroBehavior, 1)

	// Treat cores in retention as active.
	d.Regs.W32(s.RegSpmCoreRetMap, 0)

	// Enable core-count based DCVS.
	d.Regs.W32(s.RegSpmCcDcvsDis, 0)

	// Load-management policy wait times, frequency then voltage.
	val = fieldPrep(hysteresisUpMask, hysteresisLlmNs)
	val |= fieldPrep(hysteresisDnMask, hysteresisLlmNs)
	d.Regs.W32(s.RegLlmFreqVoteHyst, val)
	d.Regs.W32(s.RegLlmVoltVoteHyst, val)

	// Enable load-management frequency and voltage voting.
	d.Regs.W32(s.RegLlmIntfDcvsDis, 0)

	d.boostSetup(s.RegCcBoostTimer)
	d.boostSetup(s.RegDcvsBoostTimer)
	d.boostSetup(s.RegPsBoostTimer)

	// PLL signal timing control for boost.
	d.Regs.W32(s.RegBoostSyncDelay, boostSyncDelay)

	// WFx and PC/RET droop unstall and wait-to-release.
	val = fieldPrep(droopTimer1Mask, droopTimerNs)
	val |= fieldPrep(droopTimer0Mask, droopTimerNs)
	d.Regs.W32(s.RegDroopUnstallCtrl, val)
	val = fieldPrep(droopTimer1Mask, droopWaitReleaseTimerNs)
	val |= fieldPrep(droopTimer0Mask, droopWaitReleaseTimerNs)
	d.Regs.W32(s.RegDroopWaitReleaseCtrl, val)

	// PLL signal timing control for droop.
	d.Regs.W32(s.RegDroopSyncDelay, 1)

	// DCVS droop timers.
	d.Regs.W32(s.RegDroopReleaseCtrl, droopReleaseTimerNs)
	d.Regs.W32(s.RegDroopTimerCtrl, droopTimerNs)

	d.Regs.W32(s.RegDroopCtrl, d.Regs.R32(s.RegDroopCtrl)|droopCtrlVal)

	// Enable the boost and droop FSMs.
	val = d.Regs.R32(s.RegPdnFsmCtrl)
	val |= ccBoostEn | psBoostEn | dcvsBoostEn
	val |= wfxDroopEn | pcRetExitDroopEn | dcvsDroopEn
	d.Regs.W32(s.RegPdnFsmCtrl, val)

	d.Regs.W32(s.RegPllOverride, pllOverrideDroopEn)

	if err := d.acdInit(); err != nil {
		return err
	}

	// Ready: enable the OSM and give it time to boot.
	d.Regs.W32(d.Soc.RegEnable, 1)
	time.Sleep(osmBootTimeUs * time.Microsecond)
	return nil
}
