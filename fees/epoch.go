// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fees - execution cost pricing
//
// every transition pays processing fees for the work it causes and
// storage fees for the bytes it leaves behind; storage refunds flow
// back when bytes are removed, discounted per epoch
package fees

// EpochsPerEra - epochs in one era, the refund bookkeeping horizon
const EpochsPerEra = uint16(40)

// Epoch - one fee epoch
//
// an epoch advances with the core chain and scales storage pricing by
// its multiplier; proposer counts accumulate for the arrears payout
// when the epoch closes
type Epoch struct {
	Index          uint16
	StartHeight    uint64
	StartTimeMs    uint64
	FeeMultiplier  uint64 // permille, 1000 = neutral
	ProposerCounts map[[32]byte]uint64
}

// NewEpoch - open an epoch at a block boundary
func NewEpoch(index uint16, height uint64, timeMs uint64, multiplier uint64) *Epoch {
	if 0 == multiplier {
		multiplier = 1000
	}
	return &Epoch{
		Index:          index,
		StartHeight:    height,
		StartTimeMs:    timeMs,
		FeeMultiplier:  multiplier,
		ProposerCounts: make(map[[32]byte]uint64),
	}
}

// CountProposer - record one proposed block
func (e *Epoch) CountProposer(proposer [32]byte) {
	e.ProposerCounts[proposer] += 1
}

// TotalBlocks - blocks proposed in this epoch so far
func (e *Epoch) TotalBlocks() uint64 {
	total := uint64(0)
	for _, count := range e.ProposerCounts {
		total += count
	}
	return total
}

// ProposerShare - integer share of a fee pool owed to one proposer
//
// the remainder after all shares stays in the pool for the next
// distribution, so shares never overpay
func (e *Epoch) ProposerShare(proposer [32]byte, pool uint64) uint64 {
	total := e.TotalBlocks()
	if 0 == total {
		return 0
	}
	return pool * e.ProposerCounts[proposer] / total
}
