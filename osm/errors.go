// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package osm

import "errors"

// Bring-up failures are local to one frequency domain and are never
// retried; the domain is simply left disabled.
var (
	// Malformed or out-of-range platform operating-point data.
	ErrInvalidOpData = errors.New("invalid operating-point data")

	// The table exposes too few distinct MEM-ACC levels, or the
	// customized corner repair went below corner 0.
	ErrCrossoverDerivation = errors.New("crossover derivation failed")

	// One ACD register transfer did not confirm within its bound.
	ErrAcdTransferTimeout = errors.New("acd transfer timeout")

	// The ACD handshake sequence was aborted by a transfer timeout.
	ErrAcdSequenceTimeout = errors.New("acd sequence timeout")

	// The secure-firmware channel rejected a protected register write.
	ErrFirmwareRpc = errors.New("firmware register write failed")

	// The enable bit never went high, whether bring-up ran here or the
	// hardware claimed to be firmware-configured.
	ErrNotEnabled = errors.New("osm hardware not enabled")
)
