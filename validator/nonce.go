// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package validator

import (
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/platformversion"
)

// a stored nonce record folds two things into one uint64: the lower
// 40 bits hold the newest accepted nonce, the upper 24 bits are a
// bitmap of nonces just below it that have NOT been seen yet; bit i
// (counting from zero) marks tip minus one minus i as missing
//
// this lets transitions arrive slightly out of order without opening a
// replay hole: a nonce below the tip is accepted exactly once, while
// its missing bit is still set
const (
	nonceValueBits = 40
	nonceValueMask = uint64(1)<<nonceValueBits - 1

	// bound on how far a nonce may run ahead of or trail behind the
	// tip; a distance of the full window no longer fits the bitmap and
	// is rejected
	nonceMissingWindow = uint64(24)
	nonceMissingMask   = uint64(1)<<nonceMissingWindow - 1
)

// MergeNonce - merge an incoming nonce into a stored nonce record
//
// previous is the stored record, present reports whether one exists;
// on success the updated record to store is returned, every failure
// maps to a distinct consensus error
func MergeNonce(previous uint64, present bool, nonce uint64, pv *platformversion.PlatformVersion) (uint64, error) {
	if err := platformversion.Dispatch("validation.nonce.merge", pv.Validation.NonceMerge, 0); nil != err {
		return 0, err
	}

	if 0 == nonce || 0 != nonce&^nonceValueMask {
		return 0, fault.InvalidNonce
	}

	tip := uint64(0)
	missing := uint64(0)
	if present {
		tip = previous & nonceValueMask
		missing = previous >> nonceValueBits & nonceMissingMask
	}

	switch {
	case present && nonce == tip:
		return 0, fault.NonceAlreadyPresentAtTip

	case nonce > tip:
		forward := nonce - tip
		if forward >= nonceMissingWindow {
			return 0, fault.NonceTooFarInFuture
		}
		// everything skipped between the old tip and the new nonce
		// becomes missing; the old tip itself stays seen
		skipped := uint64(1)<<(forward-1) - 1
		merged := (missing<<forward | skipped) & nonceMissingMask
		return nonce | merged<<nonceValueBits, nil

	default:
		back := tip - nonce
		if back >= nonceMissingWindow {
			return 0, fault.NonceTooFarInPast
		}
		bit := uint64(1) << (back - 1)
		if 0 == missing&bit {
			return 0, fault.NonceAlreadyPresentInPast
		}
		return tip | (missing&^bit)<<nonceValueBits, nil
	}
}
