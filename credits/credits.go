// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package credits - the platform fee and balance unit
//
// all credit arithmetic is checked; an overflow is a corrupted state
// condition and surfaces as a fatal drive error, never a silent wrap
package credits

import (
	"math"

	"github.com/dashpay/platformd/fault"
)

// Credits - unsigned credit amount
type Credits uint64

// SignedCredits - signed ledger entry amount, e.g. storage refunds
type SignedCredits int64

// MaxCredits - hard cap on any single balance
const MaxCredits = Credits(math.MaxInt64)

// PerDuff - credits created per locked core chain duff
const PerDuff = uint64(1000)

// Add - checked addition
func (c Credits) Add(other Credits) (Credits, error) {
	sum := c + other
	if sum < c || sum > MaxCredits {
		return 0, fault.CreditsOverflow
	}
	return sum, nil
}

// Sub - checked subtraction
func (c Credits) Sub(other Credits) (Credits, error) {
	if other > c {
		return 0, fault.CreditsOverflow
	}
	return c - other, nil
}

// Mul - checked multiplication
func (c Credits) Mul(factor uint64) (Credits, error) {
	if 0 == factor || 0 == c {
		return 0, nil
	}
	product := c * Credits(factor)
	if product/Credits(factor) != c || product > MaxCredits {
		return 0, fault.CreditsOverflow
	}
	return product, nil
}

// ToSigned - checked conversion to a signed ledger entry
func (c Credits) ToSigned() (SignedCredits, error) {
	if c > MaxCredits {
		return 0, fault.CreditsOverflow
	}
	return SignedCredits(c), nil
}

// Add - checked signed addition
func (s SignedCredits) Add(other SignedCredits) (SignedCredits, error) {
	sum := s + other
	if (other > 0 && sum < s) || (other < 0 && sum > s) {
		return 0, fault.CreditsOverflow
	}
	return sum, nil
}

// ToUnsigned - checked conversion back to credits
//
// a negative ledger total indicates balance corruption
func (s SignedCredits) ToUnsigned() (Credits, error) {
	if s < 0 {
		return 0, fault.CreditsOverflow
	}
	return Credits(s), nil
}
