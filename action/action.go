// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package action - validated transitions resolved into actions
//
// an action is the executable form of a transition: identifiers are
// resolved against their contracts, asset lock funding is decoded and
// nothing in an action needs further lookups to turn into storage
// operations
//
// transformers never touch storage; everything they resolve comes
// through the caller supplied resolver
package action

import (
	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/document"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/identity"
	"github.com/dashpay/platformd/transition"
	"github.com/dashpay/platformd/vote"
)

// Resolver - contract lookup supplied by the caller
//
// executors back this with a block scoped cache; tests back it with a
// map
type Resolver func(contractId identifier.Identifier) (datacontract.DataContract, error)

// Action - one executable state change
type Action interface {
	// the identity whose balance pays for execution; zero for actions
	// funded by an asset lock
	Payer() identifier.Identifier
}

// IdentityCreate - register a new funded identity
type IdentityCreate struct {
	Identity identity.Identity
	Outpoint identifier.Identifier
	Funding  credits.Credits
	Tip      uint64
}

// IdentityTopUp - add asset lock funding to an identity
type IdentityTopUp struct {
	IdentityId identifier.Identifier
	Outpoint   identifier.Identifier
	Funding    credits.Credits
	Tip        uint64
}

// IdentityUpdate - add and disable identity keys
type IdentityUpdate struct {
	IdentityId          identifier.Identifier
	Revision            uint64
	Nonce               uint64
	AddPublicKeys       []identity.PublicKey
	DisablePublicKeyIds []uint32
	Tip                 uint64
}

// CreditWithdrawal - burn credits into a queued core transaction
type CreditWithdrawal struct {
	IdentityId     identifier.Identifier
	Amount         credits.Credits
	CoreFeePerByte uint32
	OutputScript   []byte
	Nonce          uint64
	Tip            uint64
}

// CreditTransfer - move credits between identities
type CreditTransfer struct {
	Sender    identifier.Identifier
	Recipient identifier.Identifier
	Amount    credits.Credits
	Nonce     uint64
	Tip       uint64
}

// ContractCreate - store a new contract
type ContractCreate struct {
	Contract datacontract.DataContract
	Nonce    uint64
	Tip      uint64
}

// ContractUpdate - replace a stored contract
type ContractUpdate struct {
	Contract datacontract.DataContract
	Nonce    uint64
	Tip      uint64
}

// DocumentChange - one resolved document transition
type DocumentChange struct {
	Operation    transition.DocumentOperation
	Contract     datacontract.DataContract
	DocumentType *datacontract.DocumentType

	// create and replace carry the assembled document; the other
	// operations only address a stored one
	Document   document.Document
	DocumentId identifier.Identifier
	Nonce      uint64

	// contested creates lock this into the poll's prefunded balance
	PrefundedVotingBalance credits.Credits

	Recipient identifier.Identifier
	Price     credits.Credits
}

// DocumentsBatch - ordered document changes of one owner
type DocumentsBatch struct {
	Owner   identifier.Identifier
	Changes []DocumentChange
	Tip     uint64
}

// TokenKind - which token operation an action performs
type TokenKind uint8

const (
	Mint TokenKind = iota
	Burn
	Transfer
	Freeze
	Unfreeze
	Emergency
	Claim
	DirectPurchase
	ConfigUpdate
)

// Token - one resolved token operation
type Token struct {
	Kind          TokenKind
	Owner         identifier.Identifier
	ContractOwner identifier.Identifier
	TokenId       identifier.Identifier
	ContractId    identifier.Identifier
	Configuration *datacontract.TokenConfiguration
	Nonce         uint64
	Tip           uint64

	Amount    uint64
	Recipient identifier.Identifier // mint, transfer
	Target    identifier.Identifier // freeze, unfreeze
	Pause     bool                  // emergency
	ClaimKind transition.ClaimKind

	Price                uint64 // direct purchase
	UpdatedConfiguration *datacontract.TokenConfiguration
}

// MasternodeVote - a resolved ballot
type MasternodeVote struct {
	Vote  vote.Vote
	Nonce uint64
	Tip   uint64

	// contract the poll lives under, for the nonce record
	ContractId identifier.Identifier
}

func (a *IdentityCreate) Payer() identifier.Identifier { return identifier.Identifier{} }
func (a *IdentityTopUp) Payer() identifier.Identifier  { return identifier.Identifier{} }

func (a *IdentityUpdate) Payer() identifier.Identifier   { return a.IdentityId }
func (a *CreditWithdrawal) Payer() identifier.Identifier { return a.IdentityId }
func (a *CreditTransfer) Payer() identifier.Identifier   { return a.Sender }
func (a *ContractCreate) Payer() identifier.Identifier   { return a.Contract.OwnerId() }
func (a *ContractUpdate) Payer() identifier.Identifier   { return a.Contract.OwnerId() }
func (a *DocumentsBatch) Payer() identifier.Identifier   { return a.Owner }
func (a *Token) Payer() identifier.Identifier            { return a.Owner }
func (a *MasternodeVote) Payer() identifier.Identifier   { return a.Vote.Voter }
