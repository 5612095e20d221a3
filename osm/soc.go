// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package osm

import "math/bits"

// The OSM holds up to 40 lookup-table rows; shorter platform tables are
// padded by repeating the last real row.
const LutMaxEntries = 40

const (
	lutSrc845Mask     = 0x3 << 30
	lutSrc8998Mask    = 0x3 << 26
	lutPllDivMask     = 0x3 << 24
	lutLValMask       = 0xff
	lutCoreCountMask  = 0x7 << 16
	lutVoltVcMask     = 0x3f << 16
	lutVoltMask       = 0xfff
	lutTurboIndicator = 1
)

const osmBootTimeUs = 5

// Cycle counter control
const (
	cycleCounterClkRatioMask = 0x1f << 1
	osmXoRatioVal            = 10 - 1
	cycleCounterUseXoEdge    = 1 << 8
)

// Boost FSM control
const (
	ccBoostEn        = 1 << 0
	psBoostEn        = 1 << 1
	dcvsBoostEn      = 1 << 2
	boostTimerHiMask = 0xffff << 16
	boostTimerLoMask = 0xffff

	pllWaitLockTimeNs   = 2000
	safeFreqWaitNs      = 1000
	dextDecrementWaitNs = 200

	boostSyncDelay = 5
)

// Hysteresis
const (
	hysteresisUpMask = 0xffff << 16
	hysteresisDnMask = 0xffff
	hysteresisCcNs   = 200
	hysteresisLlmNs  = 65535
)

// Droop FSM control
const (
	pcRetExitDroopEn = 1 << 3
	wfxDroopEn       = 1 << 4
	dcvsDroopEn      = 1 << 5
	droopTimer1Mask  = 0xffff << 16
	droopTimer0Mask  = 0xffff
	droopCtrlVal     = 1<<3 | 1<<17 | 1<<31

	droopTimerNs            = 100
	droopWaitReleaseTimerNs = 50
	droopReleaseTimerNs     = 1
)

const pllOverrideDroopEn = 1 << 0

// Sequencer word indices, addressed physically through the firmware
// channel at 4 bytes per word.
const (
	seqApmThreshVc       = 15
	seqApmThreshPreVc    = 31
	seqMemAccLVal        = 32
	seqMemAcc0           = 55
	seqApmCrossoverVc    = 72
	seqApmParam          = 76
	seqMemAccCrossoverVc = 88
	seqMemAccMaxLevels   = 4
)

// ACD write control
const (
	acdWriteCtlUpdateEn    = 1 << 0
	acdWriteCtlSelectShift = 1
)

func fieldPrep(mask, val uint32) uint32 {
	return (val << uint(bits.TrailingZeros32(mask))) & mask
}

func fieldGet(mask, val uint32) uint32 {
	return (val & mask) >> uint(bits.TrailingZeros32(mask))
}

// SetupData holds the register offsets used to program the OSM when the
// bootloader and trusted firmware have not. Only variants with UsesTz
// unset carry one.
//
// CC = core count, PS = power save, LLM = limits load management.
type SetupData struct {
	// Offset of the sequencer inside the domain's physical block; its
	// registers are reached through the firmware channel, not MMIO.
	RegOsmSequencer uint32

	RegOverride             uint32
	RegSpare                uint32
	RegCcZeroBehavior       uint32
	RegSpmCcHyst            uint32
	RegSpmCcDcvsDis         uint32
	RegSpmCoreRetMap        uint32
	RegLlmFreqVoteHyst      uint32
	RegLlmVoltVoteHyst      uint32
	RegLlmIntfDcvsDis       uint32
	RegSeq1                 uint32
	RegPdnFsmCtrl           uint32
	RegCcBoostTimer         uint32
	RegDcvsBoostTimer       uint32
	RegPsBoostTimer         uint32
	BoostTimerRegLen        uint32
	RegBoostSyncDelay       uint32
	RegDroopCtrl            uint32
	RegDroopReleaseCtrl     uint32
	RegDroopUnstallCtrl     uint32
	RegDroopWaitReleaseCtrl uint32
	RegDroopTimerCtrl       uint32
	RegDroopSyncDelay       uint32
	RegPllOverride          uint32
	RegCycleCounter         uint32
}

// AcdData describes one Adaptive Clock Distribution block: register
// offsets from the ACD iospace base and the values handed to it during
// the transfer handshake.
type AcdData struct {
	TlDelayReg     uint32
	AcdCtrlReg     uint32
	SoftStartReg   uint32
	ExtIntfReg     uint32
	AutoXferReg    uint32
	AutoXferCfgReg uint32
	AutoXferCtlReg uint32
	AutoXferStsReg uint32
	DcvsSwReg      uint32
	GfmuxCfgReg    uint32
	WriteCtlReg    uint32
	WriteStsReg    uint32

	TlDelayVal   uint32
	AcdCtrlVal   uint32
	SoftStartVal uint32
	ExtIntf0Val  uint32
	ExtIntf1Val  uint32
	AutoXferVal  uint32
}

// SocData is the register shape of one OSM variant. All offsets are
// relative to the per-domain MMIO base.
type SocData struct {
	RegEnable      uint32
	RegIndex       uint32
	RegFreqLut     uint32
	FreqLutSrcMask uint32
	RegVoltLut     uint32
	RegCurrentVote uint32
	RegPerfState   uint32
	LutRowSize     uint32
	ClkHwDiv       uint32

	// UsesTz marks hardware already configured (and write-protected) by
	// trusted firmware. Running the bring-up sequence on such a part
	// faults the hypervisor and takes the system down, so Setup and Acd
	// stay nil and Init only verifies the enable bit.
	UsesTz bool

	Setup *SetupData
	Acd   *AcdData
}

var Sdm845 = &SocData{
	RegEnable:      0x0,
	RegFreqLut:     0x110,
	FreqLutSrcMask: lutSrc845Mask,
	RegVoltLut:     0x114,
	RegCurrentVote: 0x704,
	RegPerfState:   0x920,
	LutRowSize:     32,
	ClkHwDiv:       2,
	UsesTz:         true,
}

var Msm8998 = &SocData{
	RegEnable:      0x4,
	RegIndex:       0x150,
	RegFreqLut:     0x154,
	FreqLutSrcMask: lutSrc8998Mask,
	RegVoltLut:     0x158,
	RegPerfState:   0xf10,
	LutRowSize:     32,
	ClkHwDiv:       1,
	UsesTz:         false,
	Setup: &SetupData{
		RegOsmSequencer: 0x300,

		RegOverride:             0x15c,
		RegSpare:                0x164,
		RegCcZeroBehavior:       0x0c,
		RegSpmCcHyst:            0x1c,
		RegSpmCcDcvsDis:         0x20,
		RegSpmCoreRetMap:        0x24,
		RegLlmFreqVoteHyst:      0x2c,
		RegLlmVoltVoteHyst:      0x30,
		RegLlmIntfDcvsDis:       0x34,
		RegSeq1:                 0x48,
		RegPdnFsmCtrl:           0x70,
		RegCcBoostTimer:         0x74,
		RegDcvsBoostTimer:       0x84,
		RegPsBoostTimer:         0x94,
		BoostTimerRegLen:        0x4,
		RegBoostSyncDelay:       0xa0,
		RegDroopCtrl:            0xa4,
		RegDroopReleaseCtrl:     0xa8,
		RegDroopUnstallCtrl:     0xac,
		RegDroopWaitReleaseCtrl: 0xb0,
		RegDroopTimerCtrl:       0xb8,
		RegDroopSyncDelay:       0xbc,
		RegPllOverride:          0xc0,
		RegCycleCounter:         0xf00,
	},
	Acd: &AcdData{
		AcdCtrlReg:     0x4,
		TlDelayReg:     0x8,
		SoftStartReg:   0x28,
		ExtIntfReg:     0x30,
		DcvsSwReg:      0x34,
		GfmuxCfgReg:    0x3c,
		AutoXferCfgReg: 0x80,
		AutoXferReg:    0x84,
		AutoXferCtlReg: 0x88,
		AutoXferStsReg: 0x8c,
		WriteCtlReg:    0x90,
		WriteStsReg:    0x94,
		TlDelayVal:     38417,
		AcdCtrlVal:     0x2b5ffd,
		SoftStartVal:   0x501,
		ExtIntf0Val:    0x2cf9ae8,
		ExtIntf1Val:    0x2cf9afe,
		AutoXferVal:    0x15,
	},
}

var Epss = &SocData{
	RegEnable:      0x0,
	RegFreqLut:     0x100,
	FreqLutSrcMask: lutSrc845Mask,
	RegVoltLut:     0x200,
	RegCurrentVote: 0x704,
	RegPerfState:   0x320,
	LutRowSize:     4,
	ClkHwDiv:       2,
	UsesTz:         true,
}

// ByCompatible maps device-tree compatible strings to register shapes.
var ByCompatible = map[string]*SocData{
	"qcom,cpufreq-hw":      Sdm845,
	"qcom,cpufreq-hw-8998": Msm8998,
	"qcom,cpufreq-epss":    Epss,
}
