// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transition

import (
	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/document"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/identity"
	"github.com/dashpay/platformd/util"
	"github.com/dashpay/platformd/vote"
)

// Unpack - decode a packed transition of any type
func (packed Packed) Unpack() (Transition, error) {
	tag, rest, ok := util.NextUint64(packed)
	if !ok {
		return nil, fault.CorruptedSerialization
	}

	switch TagType(tag) {
	case IdentityCreateTag:
		return unpackIdentityCreate(rest)
	case IdentityTopUpTag:
		return unpackIdentityTopUp(rest)
	case IdentityUpdateTag:
		return unpackIdentityUpdate(rest)
	case IdentityCreditWithdrawalTag:
		return unpackIdentityCreditWithdrawal(rest)
	case IdentityCreditTransferTag:
		return unpackIdentityCreditTransfer(rest)
	case DataContractCreateTag, DataContractUpdateTag:
		return unpackDataContract(TagType(tag), rest)
	case DocumentsBatchTag:
		return unpackDocumentsBatch(rest)
	case TokenMintTag, TokenBurnTag, TokenTransferTag, TokenFreezeTag,
		TokenUnfreezeTag, TokenEmergencyActionTag, TokenClaimTag,
		TokenDirectPurchaseTag, TokenConfigUpdateTag:
		return unpackToken(TagType(tag), rest)
	case MasternodeVoteTag:
		return unpackMasternodeVote(rest)
	default:
		return nil, fault.CorruptedSerialization
	}
}

func nextIdentifier(buffer []byte) (identifier.Identifier, []byte, bool) {
	idBytes, rest, ok := util.NextFixed(buffer, identifier.Length)
	if !ok {
		return identifier.Identifier{}, buffer, false
	}
	id, err := identifier.FromBytes(idBytes)
	if nil != err {
		return identifier.Identifier{}, buffer, false
	}
	return id, rest, true
}

func nextAssetLock(buffer []byte) (AssetLockProof, []byte, bool) {
	proof := AssetLockProof{}
	kind, rest, ok := util.NextFixed(buffer, 1)
	if !ok || AssetLockKind(kind[0]) >= invalidAssetLockKind {
		return proof, buffer, false
	}
	proof.Kind = AssetLockKind(kind[0])
	proof.Transaction, rest, ok = util.NextBytes(rest)
	if !ok {
		return proof, buffer, false
	}
	outputIndex, rest, ok := util.NextUint64(rest)
	if !ok || outputIndex > 0xffffffff {
		return proof, buffer, false
	}
	proof.OutputIndex = uint32(outputIndex)
	proof.InstantLock, rest, ok = util.NextBytes(rest)
	if !ok {
		return proof, buffer, false
	}
	lockedHeight, rest, ok := util.NextUint64(rest)
	if !ok || lockedHeight > 0xffffffff {
		return proof, buffer, false
	}
	proof.CoreChainLockedHeight = uint32(lockedHeight)
	return proof, rest, true
}

func nextOptionalGroup(buffer []byte) (*uint16, []byte, bool) {
	flag, rest, ok := util.NextFixed(buffer, 1)
	if !ok || flag[0] > 1 {
		return nil, buffer, false
	}
	if 0 == flag[0] {
		return nil, rest, true
	}
	position, rest, ok := util.NextUint64(rest)
	if !ok || position > 0xffff {
		return nil, buffer, false
	}
	group := uint16(position)
	return &group, rest, true
}

// trailer shared by identity key signed transitions
func nextKeySignature(buffer []byte) (uint32, []byte, []byte, bool) {
	keyId, rest, ok := util.NextUint64(buffer)
	if !ok || keyId > 0xffffffff {
		return 0, nil, buffer, false
	}
	signature, rest, ok := util.NextBytes(rest)
	if !ok || 0 != len(rest) {
		return 0, nil, buffer, false
	}
	return uint32(keyId), signature, rest, true
}

func unpackIdentityCreate(buffer []byte) (*IdentityCreate, error) {
	t := &IdentityCreate{}
	var ok bool
	var rest []byte
	t.IdentityId, rest, ok = nextIdentifier(buffer)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.AssetLock, rest, ok = nextAssetLock(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	keyCount, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	for i := uint64(0); i < keyCount; i += 1 {
		var packed []byte
		packed, rest, ok = util.NextBytes(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		key, err := identity.UnpackKey(packed)
		if nil != err {
			return nil, err
		}
		t.PublicKeys = append(t.PublicKeys, key)
	}
	t.UserFeeIncrease, rest, ok = util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.Signature, rest, ok = util.NextBytes(rest)
	if !ok || 0 != len(rest) {
		return nil, fault.CorruptedSerialization
	}
	return t, nil
}

func unpackIdentityTopUp(buffer []byte) (*IdentityTopUp, error) {
	t := &IdentityTopUp{}
	var ok bool
	var rest []byte
	t.IdentityId, rest, ok = nextIdentifier(buffer)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.AssetLock, rest, ok = nextAssetLock(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.UserFeeIncrease, rest, ok = util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.Signature, rest, ok = util.NextBytes(rest)
	if !ok || 0 != len(rest) {
		return nil, fault.CorruptedSerialization
	}
	return t, nil
}

func unpackIdentityUpdate(buffer []byte) (*IdentityUpdate, error) {
	t := &IdentityUpdate{}
	var ok bool
	var rest []byte
	t.IdentityId, rest, ok = nextIdentifier(buffer)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.Revision, rest, ok = util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.Nonce, rest, ok = util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	addCount, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	for i := uint64(0); i < addCount; i += 1 {
		var packed []byte
		packed, rest, ok = util.NextBytes(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		key, err := identity.UnpackKey(packed)
		if nil != err {
			return nil, err
		}
		t.AddPublicKeys = append(t.AddPublicKeys, key)
	}
	disableCount, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	for i := uint64(0); i < disableCount; i += 1 {
		var keyId uint64
		keyId, rest, ok = util.NextUint64(rest)
		if !ok || keyId > 0xffffffff {
			return nil, fault.CorruptedSerialization
		}
		t.DisablePublicKeyIds = append(t.DisablePublicKeyIds, uint32(keyId))
	}
	t.UserFeeIncrease, rest, ok = util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.SignaturePublicKeyId, t.Signature, _, ok = nextKeySignature(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	return t, nil
}

func unpackIdentityCreditWithdrawal(buffer []byte) (*IdentityCreditWithdrawal, error) {
	t := &IdentityCreditWithdrawal{}
	var ok bool
	var rest []byte
	t.IdentityId, rest, ok = nextIdentifier(buffer)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	amount, rest, ok := util.NextUint64(rest)
	if !ok || credits.Credits(amount) > credits.MaxCredits {
		return nil, fault.CorruptedSerialization
	}
	t.Amount = credits.Credits(amount)
	coreFee, rest, ok := util.NextUint64(rest)
	if !ok || coreFee > 0xffffffff {
		return nil, fault.CorruptedSerialization
	}
	t.CoreFeePerByte = uint32(coreFee)
	t.OutputScript, rest, ok = util.NextBytes(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.Nonce, rest, ok = util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.UserFeeIncrease, rest, ok = util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.SignaturePublicKeyId, t.Signature, _, ok = nextKeySignature(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	return t, nil
}

func unpackIdentityCreditTransfer(buffer []byte) (*IdentityCreditTransfer, error) {
	t := &IdentityCreditTransfer{}
	var ok bool
	var rest []byte
	t.IdentityId, rest, ok = nextIdentifier(buffer)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.Recipient, rest, ok = nextIdentifier(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	amount, rest, ok := util.NextUint64(rest)
	if !ok || credits.Credits(amount) > credits.MaxCredits {
		return nil, fault.CorruptedSerialization
	}
	t.Amount = credits.Credits(amount)
	t.Nonce, rest, ok = util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.UserFeeIncrease, rest, ok = util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.SignaturePublicKeyId, t.Signature, _, ok = nextKeySignature(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	return t, nil
}

func unpackDataContract(tag TagType, buffer []byte) (Transition, error) {
	packed, rest, ok := util.NextBytes(buffer)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	contract, err := datacontract.Unpack(packed)
	if nil != err {
		return nil, err
	}
	nonce, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	tip, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	keyId, signature, _, ok := nextKeySignature(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}

	if DataContractCreateTag == tag {
		return &DataContractCreate{
			Contract:             contract,
			Nonce:                nonce,
			UserFeeIncrease:      tip,
			SignaturePublicKeyId: keyId,
			Signature:            signature,
		}, nil
	}
	return &DataContractUpdate{
		Contract:             contract,
		Nonce:                nonce,
		UserFeeIncrease:      tip,
		SignaturePublicKeyId: keyId,
		Signature:            signature,
	}, nil
}

func unpackDocumentsBatch(buffer []byte) (*DocumentsBatch, error) {
	t := &DocumentsBatch{}
	var ok bool
	var rest []byte
	t.Owner, rest, ok = nextIdentifier(buffer)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	count, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	for i := uint64(0); i < count; i += 1 {
		var dt DocumentTransition
		var err error
		dt, rest, err = unpackDocumentTransition(rest)
		if nil != err {
			return nil, err
		}
		t.Transitions = append(t.Transitions, dt)
	}
	t.UserFeeIncrease, rest, ok = util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.SignaturePublicKeyId, t.Signature, _, ok = nextKeySignature(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	return t, nil
}

func unpackDocumentTransition(buffer []byte) (DocumentTransition, []byte, error) {
	dt := DocumentTransition{}
	operation, rest, ok := util.NextFixed(buffer, 1)
	if !ok || DocumentOperation(operation[0]) >= invalidDocumentOperation {
		return dt, buffer, fault.CorruptedSerialization
	}
	dt.Operation = DocumentOperation(operation[0])
	dt.DocumentId, rest, ok = nextIdentifier(rest)
	if !ok {
		return dt, buffer, fault.CorruptedSerialization
	}
	dt.ContractId, rest, ok = nextIdentifier(rest)
	if !ok {
		return dt, buffer, fault.CorruptedSerialization
	}
	dt.DocumentTypeName, rest, ok = util.NextString(rest)
	if !ok {
		return dt, buffer, fault.CorruptedSerialization
	}
	dt.Nonce, rest, ok = util.NextUint64(rest)
	if !ok {
		return dt, buffer, fault.CorruptedSerialization
	}

	var err error
	switch dt.Operation {
	case DocumentCreate:
		dt.Entropy, rest, ok = util.NextBytes(rest)
		if !ok {
			return dt, buffer, fault.CorruptedSerialization
		}
		dt.Data, rest, err = document.NextFields(rest)
		if nil != err {
			return dt, buffer, err
		}
		dt.PrefundedVotingBalance, rest, ok = util.NextUint64(rest)
		if !ok {
			return dt, buffer, fault.CorruptedSerialization
		}
	case DocumentReplace:
		dt.Revision, rest, ok = util.NextUint64(rest)
		if !ok {
			return dt, buffer, fault.CorruptedSerialization
		}
		dt.Data, rest, err = document.NextFields(rest)
		if nil != err {
			return dt, buffer, err
		}
	case DocumentDelete:
		// addressing fields only
	case DocumentTransfer:
		dt.Recipient, rest, ok = nextIdentifier(rest)
		if !ok {
			return dt, buffer, fault.CorruptedSerialization
		}
	case DocumentPurchase:
		dt.Revision, rest, ok = util.NextUint64(rest)
		if !ok {
			return dt, buffer, fault.CorruptedSerialization
		}
		dt.Price, rest, ok = util.NextUint64(rest)
		if !ok {
			return dt, buffer, fault.CorruptedSerialization
		}
	}
	return dt, rest, nil
}

func unpackToken(tag TagType, buffer []byte) (Transition, error) {
	base := TokenBase{}
	var ok bool
	var rest []byte
	base.Owner, rest, ok = nextIdentifier(buffer)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	base.ContractId, rest, ok = nextIdentifier(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	position, rest, ok := util.NextUint64(rest)
	if !ok || position > 0xffff {
		return nil, fault.CorruptedSerialization
	}
	base.TokenPosition = uint16(position)
	base.Nonce, rest, ok = util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	base.UsingGroup, rest, ok = nextOptionalGroup(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	base.Note, rest, ok = util.NextString(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}

	var result Transition
	switch tag {
	case TokenMintTag:
		t := &TokenMint{TokenBase: base}
		t.Amount, rest, ok = util.NextUint64(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		t.Recipient, rest, ok = nextIdentifier(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		result = t
	case TokenBurnTag:
		t := &TokenBurn{TokenBase: base}
		t.Amount, rest, ok = util.NextUint64(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		result = t
	case TokenTransferTag:
		t := &TokenTransfer{TokenBase: base}
		t.Amount, rest, ok = util.NextUint64(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		t.Recipient, rest, ok = nextIdentifier(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		result = t
	case TokenFreezeTag:
		t := &TokenFreeze{TokenBase: base}
		t.FrozenIdentity, rest, ok = nextIdentifier(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		result = t
	case TokenUnfreezeTag:
		t := &TokenUnfreeze{TokenBase: base}
		t.FrozenIdentity, rest, ok = nextIdentifier(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		result = t
	case TokenEmergencyActionTag:
		t := &TokenEmergencyAction{TokenBase: base}
		action, r, ok := util.NextFixed(rest, 1)
		if !ok || EmergencyKind(action[0]) >= invalidEmergencyKind {
			return nil, fault.CorruptedSerialization
		}
		t.Action = EmergencyKind(action[0])
		rest = r
		result = t
	case TokenClaimTag:
		t := &TokenClaim{TokenBase: base}
		claim, r, ok := util.NextFixed(rest, 1)
		if !ok || ClaimKind(claim[0]) >= invalidClaimKind {
			return nil, fault.CorruptedSerialization
		}
		t.Claim = ClaimKind(claim[0])
		rest = r
		result = t
	case TokenDirectPurchaseTag:
		t := &TokenDirectPurchase{TokenBase: base}
		t.Amount, rest, ok = util.NextUint64(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		t.TotalAgreedPrice, rest, ok = util.NextUint64(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		result = t
	case TokenConfigUpdateTag:
		t := &TokenConfigUpdate{TokenBase: base}
		var packed []byte
		packed, rest, ok = util.NextBytes(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		tc, err := datacontract.UnpackTokenConfiguration(packed)
		if nil != err {
			return nil, err
		}
		t.UpdatedConfiguration = tc
		result = t
	default:
		return nil, fault.CorruptedSerialization
	}

	tip, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	keyId, signature, _, ok := nextKeySignature(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}

	switch t := result.(type) {
	case *TokenMint:
		t.UserFeeIncrease, t.SignaturePublicKeyId, t.Signature = tip, keyId, signature
	case *TokenBurn:
		t.UserFeeIncrease, t.SignaturePublicKeyId, t.Signature = tip, keyId, signature
	case *TokenTransfer:
		t.UserFeeIncrease, t.SignaturePublicKeyId, t.Signature = tip, keyId, signature
	case *TokenFreeze:
		t.UserFeeIncrease, t.SignaturePublicKeyId, t.Signature = tip, keyId, signature
	case *TokenUnfreeze:
		t.UserFeeIncrease, t.SignaturePublicKeyId, t.Signature = tip, keyId, signature
	case *TokenEmergencyAction:
		t.UserFeeIncrease, t.SignaturePublicKeyId, t.Signature = tip, keyId, signature
	case *TokenClaim:
		t.UserFeeIncrease, t.SignaturePublicKeyId, t.Signature = tip, keyId, signature
	case *TokenDirectPurchase:
		t.UserFeeIncrease, t.SignaturePublicKeyId, t.Signature = tip, keyId, signature
	case *TokenConfigUpdate:
		t.UserFeeIncrease, t.SignaturePublicKeyId, t.Signature = tip, keyId, signature
	}
	return result, nil
}

func unpackMasternodeVote(buffer []byte) (*MasternodeVote, error) {
	t := &MasternodeVote{}
	var ok bool
	var rest []byte
	t.ProTxHash, rest, ok = nextIdentifier(buffer)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.ContractId, rest, ok = nextIdentifier(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.DocumentTypeName, rest, ok = util.NextString(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.IndexName, rest, ok = util.NextString(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	valueCount, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	for i := uint64(0); i < valueCount; i += 1 {
		var value []byte
		value, rest, ok = util.NextBytes(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		t.IndexValues = append(t.IndexValues, value)
	}
	kind, rest, ok := util.NextFixed(rest, 1)
	if !ok || vote.ChoiceKind(kind[0]) > vote.Lock {
		return nil, fault.CorruptedSerialization
	}
	t.Choice.Kind = vote.ChoiceKind(kind[0])
	t.Choice.Identity, rest, ok = nextIdentifier(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.Nonce, rest, ok = util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.UserFeeIncrease, rest, ok = util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	t.SignaturePublicKeyId, t.Signature, _, ok = nextKeySignature(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	return t, nil
}
