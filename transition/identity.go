// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transition

import (
	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/identity"
)

// IdentityCreate - register a new identity funded by an asset lock
//
// the identity id is derived from the asset lock outpoint so the same
// lock can never create two identities; signed by the asset lock
// private key, not an identity key
type IdentityCreate struct {
	IdentityId      identifier.Identifier
	AssetLock       AssetLockProof
	PublicKeys      []identity.PublicKey
	UserFeeIncrease uint64
	Signature       []byte
}

func (t *IdentityCreate) Tag() TagType { return IdentityCreateTag }
func (t *IdentityCreate) OwnerId() identifier.Identifier { return t.IdentityId }
func (t *IdentityCreate) UserTip() uint64 { return t.UserFeeIncrease }

// IdentityTopUp - add credits to an existing identity from a new
// asset lock; signed by the asset lock private key
type IdentityTopUp struct {
	IdentityId      identifier.Identifier
	AssetLock       AssetLockProof
	UserFeeIncrease uint64
	Signature       []byte
}

func (t *IdentityTopUp) Tag() TagType { return IdentityTopUpTag }
func (t *IdentityTopUp) OwnerId() identifier.Identifier { return t.IdentityId }
func (t *IdentityTopUp) UserTip() uint64 { return t.UserFeeIncrease }

// IdentityUpdate - add or disable public keys
type IdentityUpdate struct {
	IdentityId           identifier.Identifier
	Revision             uint64
	Nonce                uint64
	AddPublicKeys        []identity.PublicKey
	DisablePublicKeyIds  []uint32
	UserFeeIncrease      uint64
	SignaturePublicKeyId uint32
	Signature            []byte
}

func (t *IdentityUpdate) Tag() TagType { return IdentityUpdateTag }
func (t *IdentityUpdate) OwnerId() identifier.Identifier { return t.IdentityId }
func (t *IdentityUpdate) UserTip() uint64 { return t.UserFeeIncrease }

// IdentityCreditWithdrawal - burn credits and queue a core chain
// withdrawal transaction paying the output script
type IdentityCreditWithdrawal struct {
	IdentityId           identifier.Identifier
	Amount               credits.Credits
	CoreFeePerByte       uint32
	OutputScript         []byte
	Nonce                uint64
	UserFeeIncrease      uint64
	SignaturePublicKeyId uint32
	Signature            []byte
}

func (t *IdentityCreditWithdrawal) Tag() TagType { return IdentityCreditWithdrawalTag }
func (t *IdentityCreditWithdrawal) OwnerId() identifier.Identifier { return t.IdentityId }
func (t *IdentityCreditWithdrawal) UserTip() uint64 { return t.UserFeeIncrease }

// IdentityCreditTransfer - move credits between identities
type IdentityCreditTransfer struct {
	IdentityId           identifier.Identifier
	Recipient            identifier.Identifier
	Amount               credits.Credits
	Nonce                uint64
	UserFeeIncrease      uint64
	SignaturePublicKeyId uint32
	Signature            []byte
}

func (t *IdentityCreditTransfer) Tag() TagType { return IdentityCreditTransferTag }
func (t *IdentityCreditTransfer) OwnerId() identifier.Identifier { return t.IdentityId }
func (t *IdentityCreditTransfer) UserTip() uint64 { return t.UserFeeIncrease }
