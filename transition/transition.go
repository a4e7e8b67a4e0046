// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transition - state transitions
//
// a transition is the only way platform state changes; ordered blocks
// of packed transitions arrive from consensus and are replayed through
// validation into storage operations
package transition

import (
	"github.com/dashpay/platformd/identifier"
)

// TagType - type code for transitions
type TagType uint64

// enumerate the possible transition types
// this is encoded as a Varint64 at the start of the packed bytes
const (
	// null marks beginning of list - not used as a record type
	NullTag = TagType(iota)

	IdentityCreateTag           = TagType(iota)
	IdentityTopUpTag            = TagType(iota)
	IdentityUpdateTag           = TagType(iota)
	IdentityCreditWithdrawalTag = TagType(iota)
	IdentityCreditTransferTag   = TagType(iota)
	DataContractCreateTag       = TagType(iota)
	DataContractUpdateTag       = TagType(iota)
	DocumentsBatchTag           = TagType(iota)
	TokenMintTag                = TagType(iota)
	TokenBurnTag                = TagType(iota)
	TokenTransferTag            = TagType(iota)
	TokenFreezeTag              = TagType(iota)
	TokenUnfreezeTag            = TagType(iota)
	TokenEmergencyActionTag     = TagType(iota)
	TokenClaimTag               = TagType(iota)
	TokenDirectPurchaseTag      = TagType(iota)
	TokenConfigUpdateTag        = TagType(iota)
	MasternodeVoteTag           = TagType(iota)

	// this item must be last
	InvalidTag = TagType(iota)
)

// Packed - packed transitions are just a byte slice
type Packed []byte

// Transition - generic transition interface
type Transition interface {
	Tag() TagType

	// identity paying for and signing the transition
	OwnerId() identifier.Identifier

	// extra processing fee the sender volunteers (priority tip)
	UserTip() uint64

	// packed bytes excluding the signature fields; this is what the
	// owner key signs
	SignableBytes() []byte

	Pack() Packed
}

// AssetLockKind - how an asset lock transaction is proven final
type AssetLockKind uint8

const (
	InstantProof AssetLockKind = iota
	ChainProof
	invalidAssetLockKind
)

// AssetLockProof - proof that core chain funds were locked to platform
//
// the instant variant carries the signed instant lock, the chain
// variant relies on the transaction being buried under the locked
// core height
type AssetLockProof struct {
	Kind AssetLockKind

	// raw core transaction containing the asset lock output
	Transaction []byte

	// which output of the transaction is the lock
	OutputIndex uint32

	// InstantProof: raw instant lock signature message
	InstantLock []byte

	// ChainProof: height the chain is locked at
	CoreChainLockedHeight uint32
}

// Outpoint - the spent-marker key of an asset lock
//
// txid is not available without decoding the raw transaction, so the
// outpoint used for replay marking is the digest of the raw bytes plus
// the output index
func (p *AssetLockProof) Outpoint() identifier.Identifier {
	return identifier.NewDerived(p.Transaction, []byte{
		byte(p.OutputIndex >> 24),
		byte(p.OutputIndex >> 16),
		byte(p.OutputIndex >> 8),
		byte(p.OutputIndex),
	})
}
