// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transition

import (
	"github.com/dashpay/platformd/identity"
)

// KeySigned - transitions authorized by one of the owner's keys
//
// identity create and top up are outside this set: they are signed by
// the asset lock private key instead
type KeySigned interface {
	Transition
	SignatureKeyId() uint32
	SignatureBytes() []byte
}

func (t *IdentityUpdate) SignatureKeyId() uint32 { return t.SignaturePublicKeyId }
func (t *IdentityUpdate) SignatureBytes() []byte { return t.Signature }

func (t *IdentityCreditWithdrawal) SignatureKeyId() uint32 { return t.SignaturePublicKeyId }
func (t *IdentityCreditWithdrawal) SignatureBytes() []byte { return t.Signature }

func (t *IdentityCreditTransfer) SignatureKeyId() uint32 { return t.SignaturePublicKeyId }
func (t *IdentityCreditTransfer) SignatureBytes() []byte { return t.Signature }

func (t *DataContractCreate) SignatureKeyId() uint32 { return t.SignaturePublicKeyId }
func (t *DataContractCreate) SignatureBytes() []byte { return t.Signature }

func (t *DataContractUpdate) SignatureKeyId() uint32 { return t.SignaturePublicKeyId }
func (t *DataContractUpdate) SignatureBytes() []byte { return t.Signature }

func (t *DocumentsBatch) SignatureKeyId() uint32 { return t.SignaturePublicKeyId }
func (t *DocumentsBatch) SignatureBytes() []byte { return t.Signature }

func (t *TokenBase) SignatureKeyId() uint32 { return t.SignaturePublicKeyId }
func (t *TokenBase) SignatureBytes() []byte { return t.Signature }

func (t *MasternodeVote) SignatureKeyId() uint32 { return t.SignaturePublicKeyId }
func (t *MasternodeVote) SignatureBytes() []byte { return t.Signature }

// VerifySignature - check a key signed transition against the key it
// names; the caller resolves the key id to a stored identity key
func VerifySignature(t KeySigned, key identity.PublicKey) error {
	return key.Verify(t.SignableBytes(), t.SignatureBytes())
}
