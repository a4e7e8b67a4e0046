// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transition

import (
	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/identifier"
)

// TokenBase - fields shared by every token transition
//
// the token is addressed by contract and position; replay protection
// is per identity and contract; an optional group position routes the
// action through a contract group threshold
type TokenBase struct {
	Owner                identifier.Identifier
	ContractId           identifier.Identifier
	TokenPosition        uint16
	Nonce                uint64
	UsingGroup           *uint16
	Note                 string
	UserFeeIncrease      uint64
	SignaturePublicKeyId uint32
	Signature            []byte
}

func (t *TokenBase) OwnerId() identifier.Identifier { return t.Owner }
func (t *TokenBase) UserTip() uint64 { return t.UserFeeIncrease }

// TokenId - the derived token this transition addresses
func (t *TokenBase) TokenId() identifier.Identifier {
	return datacontract.TokenId(t.ContractId, t.TokenPosition)
}

// TokenMint - create new supply to a recipient
//
// a zero recipient mints to the owner
type TokenMint struct {
	TokenBase
	Amount    uint64
	Recipient identifier.Identifier
}

func (t *TokenMint) Tag() TagType { return TokenMintTag }

// TokenBurn - destroy supply from the owner's balance
type TokenBurn struct {
	TokenBase
	Amount uint64
}

func (t *TokenBurn) Tag() TagType { return TokenBurnTag }

// TokenTransfer - move balance to another identity
type TokenTransfer struct {
	TokenBase
	Amount    uint64
	Recipient identifier.Identifier
}

func (t *TokenTransfer) Tag() TagType { return TokenTransferTag }

// TokenFreeze - freeze one identity's token account
type TokenFreeze struct {
	TokenBase
	FrozenIdentity identifier.Identifier
}

func (t *TokenFreeze) Tag() TagType { return TokenFreezeTag }

// TokenUnfreeze - release a frozen token account
type TokenUnfreeze struct {
	TokenBase
	FrozenIdentity identifier.Identifier
}

func (t *TokenUnfreeze) Tag() TagType { return TokenUnfreezeTag }

// EmergencyKind - pause or resume all operations of a token
type EmergencyKind uint8

const (
	EmergencyPause EmergencyKind = iota
	EmergencyResume
	invalidEmergencyKind
)

// TokenEmergencyAction - pause or resume a token
type TokenEmergencyAction struct {
	TokenBase
	Action EmergencyKind
}

func (t *TokenEmergencyAction) Tag() TagType { return TokenEmergencyActionTag }

// ClaimKind - which distribution channel a claim draws from
type ClaimKind uint8

const (
	ClaimPerpetual ClaimKind = iota
	ClaimPreProgrammed
	invalidClaimKind
)

// TokenClaim - claim due distribution amounts
type TokenClaim struct {
	TokenBase
	Claim ClaimKind
}

func (t *TokenClaim) Tag() TagType { return TokenClaimTag }

// TokenDirectPurchase - buy tokens at the contract price schedule
//
// the agreed price protects the buyer against a schedule change
// between signing and execution
type TokenDirectPurchase struct {
	TokenBase
	Amount           uint64
	TotalAgreedPrice uint64
}

func (t *TokenDirectPurchase) Tag() TagType { return TokenDirectPurchaseTag }

// TokenConfigUpdate - replace the token configuration
type TokenConfigUpdate struct {
	TokenBase
	UpdatedConfiguration *datacontract.TokenConfiguration
}

func (t *TokenConfigUpdate) Tag() TagType { return TokenConfigUpdateTag }
