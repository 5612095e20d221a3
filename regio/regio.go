// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package regio provides 32-bit access to memory mapped hardware
// register blocks.
package regio

// IO is one mapped register block. Offsets are in bytes from the start
// of the block and must be 32-bit aligned.
type IO interface {
	R32(off uint32) uint32
	W32(off, val uint32)
}
