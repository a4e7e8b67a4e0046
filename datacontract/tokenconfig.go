// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package datacontract

import (
	"sort"

	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/identifier"
)

// MaxDistributionParam - upper bound on any token amount parameter
const MaxDistributionParam = uint64(281474976710655) // 2^48 - 1

// MaxTokenNoteLen - upper bound on a token operation note
const MaxTokenNoteLen = 2048

// TakerKind - who may perform an authorized token action
type TakerKind uint8

const (
	NoOne TakerKind = iota
	ContractOwner
	SpecifiedIdentity
	MainGroup
	SpecifiedGroup
	invalidTakerKind
)

// ActionTaker - authorized action taker policy for one token action
type ActionTaker struct {
	Kind     TakerKind
	Identity identifier.Identifier // SpecifiedIdentity only
	Group    uint16                // SpecifiedGroup only
}

// Allows - check an acting identity against the policy
//
// group policies are only satisfied through a completed group action,
// which the caller signals with groupApproved
func (t *ActionTaker) Allows(actor identifier.Identifier, owner identifier.Identifier, groupApproved bool) bool {
	switch t.Kind {
	case NoOne:
		return false
	case ContractOwner:
		return actor == owner
	case SpecifiedIdentity:
		return actor == t.Identity
	case MainGroup, SpecifiedGroup:
		return groupApproved
	default:
		return false
	}
}

// PerpetualDistribution - fixed amount released every interval
type PerpetualDistribution struct {
	Amount         uint64
	IntervalBlocks uint64
	Recipient      identifier.Identifier
}

// PreProgrammedDistribution - amounts released at fixed times
type PreProgrammedDistribution struct {
	// time (unix millis) to recipient to amount
	Releases map[uint64]map[identifier.Identifier]uint64
}

// DistributionRules - how new supply enters circulation
type DistributionRules struct {
	Perpetual     *PerpetualDistribution
	PreProgrammed *PreProgrammedDistribution
}

// TokenConfiguration - one token defined by a contract
type TokenConfiguration struct {
	BaseSupply       uint64
	MaxSupply        uint64 // zero means unlimited
	StartAsPaused    bool
	MainControlGroup *uint16

	Manager struct {
		Mint            ActionTaker
		Burn            ActionTaker
		Freeze          ActionTaker
		Unfreeze        ActionTaker
		EmergencyAction ActionTaker
		ConfigUpdate    ActionTaker
	}

	Distribution DistributionRules

	// direct purchase price schedule: minimum purchased amount to
	// price in credits per token; empty means not purchasable
	PricingSchedule map[uint64]uint64
}

// Validate - bounds and group reference checks
func (tc *TokenConfiguration) Validate(groups map[uint16]*Group) error {
	if tc.BaseSupply > MaxDistributionParam {
		return fault.InvalidTokenAmount
	}
	if 0 != tc.MaxSupply {
		if tc.MaxSupply > MaxDistributionParam || tc.MaxSupply < tc.BaseSupply {
			return fault.InvalidTokenAmount
		}
	}
	if nil != tc.MainControlGroup {
		if _, ok := groups[*tc.MainControlGroup]; !ok {
			return fault.IndexMissingControlGroup
		}
	}
	if p := tc.Distribution.Perpetual; nil != p {
		if 0 == p.Amount || p.Amount > MaxDistributionParam || 0 == p.IntervalBlocks {
			return fault.InvalidTokenAmount
		}
	}
	if pp := tc.Distribution.PreProgrammed; nil != pp {
		for _, releases := range pp.Releases {
			for _, amount := range releases {
				if 0 == amount || amount > MaxDistributionParam {
					return fault.InvalidTokenAmount
				}
			}
		}
	}
	return nil
}

// PriceFor - price in credits for a direct purchase amount
//
// the schedule entry with the largest minimum not exceeding amount
// applies; ok is false when the token is not purchasable at amount
func (tc *TokenConfiguration) PriceFor(amount uint64) (uint64, bool) {
	if 0 == len(tc.PricingSchedule) || 0 == amount {
		return 0, false
	}
	minimums := make([]uint64, 0, len(tc.PricingSchedule))
	for minimum := range tc.PricingSchedule {
		minimums = append(minimums, minimum)
	}
	sort.Slice(minimums, func(i, j int) bool { return minimums[i] < minimums[j] })

	price := uint64(0)
	found := false
	for _, minimum := range minimums {
		if amount >= minimum {
			price = tc.PricingSchedule[minimum]
			found = true
		}
	}
	return price, found
}
