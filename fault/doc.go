// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches
//
// Errors are split into three tiers:
//
//   consensus: BasicError (structural, stateless) and StateError
//   (storage dependent) - expected, data-dependent failures that make
//   one transition invalid without stopping the block; each carries a
//   stable numeric code via Code()
//
//   fatal: ProtocolError, DriveError and ExecutionError - the running
//   binary disagrees with protocol rules or on-disk data is
//   inconsistent; block processing must abort
//
//   proof: ProofError - verification of untrusted proofs only; always
//   returned, never panics
package fault
