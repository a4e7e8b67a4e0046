// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transition

// canonical wire form
//
// Varint64(tag) then fields in struct order, signature fields last;
// SignableBytes is the packed form cut before the signature fields so
// verification never re-serializes

import (
	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/document"
	"github.com/dashpay/platformd/util"
)

const (
	maxNoteLength         = 2048
	maxSignatureLength    = 96
	maxOutputScriptLength = 128
)

func packAssetLock(message []byte, proof *AssetLockProof) []byte {
	message = append(message, byte(proof.Kind))
	message = util.AppendBytes(message, proof.Transaction)
	message = util.AppendUint64(message, uint64(proof.OutputIndex))
	message = util.AppendBytes(message, proof.InstantLock)
	message = util.AppendUint64(message, uint64(proof.CoreChainLockedHeight))
	return message
}

func packOptionalGroup(message []byte, group *uint16) []byte {
	if nil == group {
		return append(message, 0)
	}
	message = append(message, 1)
	return util.AppendUint64(message, uint64(*group))
}

// trailer for transitions signed with an identity key
func packKeySignature(message []byte, keyId uint32, signature []byte) []byte {
	message = util.AppendUint64(message, uint64(keyId))
	return util.AppendBytes(message, signature)
}

func (t *IdentityCreate) SignableBytes() []byte {
	message := util.ToVarint64(uint64(t.Tag()))
	message = util.AppendFixed(message, t.IdentityId[:])
	message = packAssetLock(message, &t.AssetLock)
	message = util.AppendUint64(message, uint64(len(t.PublicKeys)))
	for _, key := range t.PublicKeys {
		message = util.AppendBytes(message, key.Pack())
	}
	message = util.AppendUint64(message, t.UserFeeIncrease)
	return message
}

func (t *IdentityCreate) Pack() Packed {
	return util.AppendBytes(t.SignableBytes(), t.Signature)
}

func (t *IdentityTopUp) SignableBytes() []byte {
	message := util.ToVarint64(uint64(t.Tag()))
	message = util.AppendFixed(message, t.IdentityId[:])
	message = packAssetLock(message, &t.AssetLock)
	message = util.AppendUint64(message, t.UserFeeIncrease)
	return message
}

func (t *IdentityTopUp) Pack() Packed {
	return util.AppendBytes(t.SignableBytes(), t.Signature)
}

func (t *IdentityUpdate) SignableBytes() []byte {
	message := util.ToVarint64(uint64(t.Tag()))
	message = util.AppendFixed(message, t.IdentityId[:])
	message = util.AppendUint64(message, t.Revision)
	message = util.AppendUint64(message, t.Nonce)
	message = util.AppendUint64(message, uint64(len(t.AddPublicKeys)))
	for _, key := range t.AddPublicKeys {
		message = util.AppendBytes(message, key.Pack())
	}
	message = util.AppendUint64(message, uint64(len(t.DisablePublicKeyIds)))
	for _, keyId := range t.DisablePublicKeyIds {
		message = util.AppendUint64(message, uint64(keyId))
	}
	message = util.AppendUint64(message, t.UserFeeIncrease)
	return message
}

func (t *IdentityUpdate) Pack() Packed {
	return packKeySignature(t.SignableBytes(), t.SignaturePublicKeyId, t.Signature)
}

func (t *IdentityCreditWithdrawal) SignableBytes() []byte {
	message := util.ToVarint64(uint64(t.Tag()))
	message = util.AppendFixed(message, t.IdentityId[:])
	message = util.AppendUint64(message, uint64(t.Amount))
	message = util.AppendUint64(message, uint64(t.CoreFeePerByte))
	message = util.AppendBytes(message, t.OutputScript)
	message = util.AppendUint64(message, t.Nonce)
	message = util.AppendUint64(message, t.UserFeeIncrease)
	return message
}

func (t *IdentityCreditWithdrawal) Pack() Packed {
	return packKeySignature(t.SignableBytes(), t.SignaturePublicKeyId, t.Signature)
}

func (t *IdentityCreditTransfer) SignableBytes() []byte {
	message := util.ToVarint64(uint64(t.Tag()))
	message = util.AppendFixed(message, t.IdentityId[:])
	message = util.AppendFixed(message, t.Recipient[:])
	message = util.AppendUint64(message, uint64(t.Amount))
	message = util.AppendUint64(message, t.Nonce)
	message = util.AppendUint64(message, t.UserFeeIncrease)
	return message
}

func (t *IdentityCreditTransfer) Pack() Packed {
	return packKeySignature(t.SignableBytes(), t.SignaturePublicKeyId, t.Signature)
}

func (t *DataContractCreate) SignableBytes() []byte {
	message := util.ToVarint64(uint64(t.Tag()))
	message = util.AppendBytes(message, t.Contract.Pack())
	message = util.AppendUint64(message, t.Nonce)
	message = util.AppendUint64(message, t.UserFeeIncrease)
	return message
}

func (t *DataContractCreate) Pack() Packed {
	return packKeySignature(t.SignableBytes(), t.SignaturePublicKeyId, t.Signature)
}

func (t *DataContractUpdate) SignableBytes() []byte {
	message := util.ToVarint64(uint64(t.Tag()))
	message = util.AppendBytes(message, t.Contract.Pack())
	message = util.AppendUint64(message, t.Nonce)
	message = util.AppendUint64(message, t.UserFeeIncrease)
	return message
}

func (t *DataContractUpdate) Pack() Packed {
	return packKeySignature(t.SignableBytes(), t.SignaturePublicKeyId, t.Signature)
}

func (t *DocumentsBatch) SignableBytes() []byte {
	message := util.ToVarint64(uint64(t.Tag()))
	message = util.AppendFixed(message, t.Owner[:])
	message = util.AppendUint64(message, uint64(len(t.Transitions)))
	for i := range t.Transitions {
		message = packDocumentTransition(message, &t.Transitions[i])
	}
	message = util.AppendUint64(message, t.UserFeeIncrease)
	return message
}

func (t *DocumentsBatch) Pack() Packed {
	return packKeySignature(t.SignableBytes(), t.SignaturePublicKeyId, t.Signature)
}

func packDocumentTransition(message []byte, dt *DocumentTransition) []byte {
	message = append(message, byte(dt.Operation))
	message = util.AppendFixed(message, dt.DocumentId[:])
	message = util.AppendFixed(message, dt.ContractId[:])
	message = util.AppendString(message, dt.DocumentTypeName)
	message = util.AppendUint64(message, dt.Nonce)

	switch dt.Operation {
	case DocumentCreate:
		message = util.AppendBytes(message, dt.Entropy)
		message = document.PackFields(message, dt.Data)
		message = util.AppendUint64(message, dt.PrefundedVotingBalance)
	case DocumentReplace:
		message = util.AppendUint64(message, dt.Revision)
		message = document.PackFields(message, dt.Data)
	case DocumentDelete:
		// addressing fields only
	case DocumentTransfer:
		message = util.AppendFixed(message, dt.Recipient[:])
	case DocumentPurchase:
		message = util.AppendUint64(message, dt.Revision)
		message = util.AppendUint64(message, dt.Price)
	}
	return message
}

func (t *TokenBase) packBase(tag TagType) []byte {
	message := util.ToVarint64(uint64(tag))
	message = util.AppendFixed(message, t.Owner[:])
	message = util.AppendFixed(message, t.ContractId[:])
	message = util.AppendUint64(message, uint64(t.TokenPosition))
	message = util.AppendUint64(message, t.Nonce)
	message = packOptionalGroup(message, t.UsingGroup)
	message = util.AppendString(message, t.Note)
	return message
}

func (t *TokenBase) packTail(message []byte) []byte {
	message = util.AppendUint64(message, t.UserFeeIncrease)
	return message
}

func (t *TokenMint) SignableBytes() []byte {
	message := t.packBase(t.Tag())
	message = util.AppendUint64(message, t.Amount)
	message = util.AppendFixed(message, t.Recipient[:])
	return t.packTail(message)
}

func (t *TokenMint) Pack() Packed {
	return packKeySignature(t.SignableBytes(), t.SignaturePublicKeyId, t.Signature)
}

func (t *TokenBurn) SignableBytes() []byte {
	message := t.packBase(t.Tag())
	message = util.AppendUint64(message, t.Amount)
	return t.packTail(message)
}

func (t *TokenBurn) Pack() Packed {
	return packKeySignature(t.SignableBytes(), t.SignaturePublicKeyId, t.Signature)
}

func (t *TokenTransfer) SignableBytes() []byte {
	message := t.packBase(t.Tag())
	message = util.AppendUint64(message, t.Amount)
	message = util.AppendFixed(message, t.Recipient[:])
	return t.packTail(message)
}

func (t *TokenTransfer) Pack() Packed {
	return packKeySignature(t.SignableBytes(), t.SignaturePublicKeyId, t.Signature)
}

func (t *TokenFreeze) SignableBytes() []byte {
	message := t.packBase(t.Tag())
	message = util.AppendFixed(message, t.FrozenIdentity[:])
	return t.packTail(message)
}

func (t *TokenFreeze) Pack() Packed {
	return packKeySignature(t.SignableBytes(), t.SignaturePublicKeyId, t.Signature)
}

func (t *TokenUnfreeze) SignableBytes() []byte {
	message := t.packBase(t.Tag())
	message = util.AppendFixed(message, t.FrozenIdentity[:])
	return t.packTail(message)
}

func (t *TokenUnfreeze) Pack() Packed {
	return packKeySignature(t.SignableBytes(), t.SignaturePublicKeyId, t.Signature)
}

func (t *TokenEmergencyAction) SignableBytes() []byte {
	message := t.packBase(t.Tag())
	message = append(message, byte(t.Action))
	return t.packTail(message)
}

func (t *TokenEmergencyAction) Pack() Packed {
	return packKeySignature(t.SignableBytes(), t.SignaturePublicKeyId, t.Signature)
}

func (t *TokenClaim) SignableBytes() []byte {
	message := t.packBase(t.Tag())
	message = append(message, byte(t.Claim))
	return t.packTail(message)
}

func (t *TokenClaim) Pack() Packed {
	return packKeySignature(t.SignableBytes(), t.SignaturePublicKeyId, t.Signature)
}

func (t *TokenDirectPurchase) SignableBytes() []byte {
	message := t.packBase(t.Tag())
	message = util.AppendUint64(message, t.Amount)
	message = util.AppendUint64(message, t.TotalAgreedPrice)
	return t.packTail(message)
}

func (t *TokenDirectPurchase) Pack() Packed {
	return packKeySignature(t.SignableBytes(), t.SignaturePublicKeyId, t.Signature)
}

func (t *TokenConfigUpdate) SignableBytes() []byte {
	message := t.packBase(t.Tag())
	message = util.AppendBytes(message, datacontract.PackTokenConfiguration(t.UpdatedConfiguration))
	return t.packTail(message)
}

func (t *TokenConfigUpdate) Pack() Packed {
	return packKeySignature(t.SignableBytes(), t.SignaturePublicKeyId, t.Signature)
}

func (t *MasternodeVote) SignableBytes() []byte {
	message := util.ToVarint64(uint64(t.Tag()))
	message = util.AppendFixed(message, t.ProTxHash[:])
	message = util.AppendFixed(message, t.ContractId[:])
	message = util.AppendString(message, t.DocumentTypeName)
	message = util.AppendString(message, t.IndexName)
	message = util.AppendUint64(message, uint64(len(t.IndexValues)))
	for _, value := range t.IndexValues {
		message = util.AppendBytes(message, value)
	}
	message = append(message, byte(t.Choice.Kind))
	message = util.AppendFixed(message, t.Choice.Identity[:])
	message = util.AppendUint64(message, t.Nonce)
	message = util.AppendUint64(message, t.UserFeeIncrease)
	return message
}

func (t *MasternodeVote) Pack() Packed {
	return packKeySignature(t.SignableBytes(), t.SignaturePublicKeyId, t.Signature)
}
