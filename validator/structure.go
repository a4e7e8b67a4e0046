// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package validator

import (
	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/identity"
	"github.com/dashpay/platformd/platformversion"
	"github.com/dashpay/platformd/transition"
)

// bounds shared with the wire format
const (
	maxSignatureLength    = 96
	maxOutputScriptLength = 128
)

// ValidateStructure - pure bounds, enum and shape checks
//
// no storage is touched; everything found here would be wrong no
// matter what state the chain is in; a manifest naming a wire format
// this binary does not implement is a fatal version mismatch
func ValidateStructure(t transition.Transition, pv *platformversion.PlatformVersion) (*Result, error) {
	if err := platformversion.Dispatch("dpp.transition.wire", pv.DPP.TransitionWireFormat, 0); nil != err {
		return nil, err
	}

	result := &Result{}

	switch t := t.(type) {
	case *transition.IdentityCreate:
		checkKeys(result, t.PublicKeys, true)
		checkAssetLock(result, &t.AssetLock)
		checkSignature(result, t.Signature)

	case *transition.IdentityTopUp:
		checkAssetLock(result, &t.AssetLock)
		checkSignature(result, t.Signature)

	case *transition.IdentityUpdate:
		if 0 == len(t.AddPublicKeys) && 0 == len(t.DisablePublicKeyIds) {
			result.Add(fault.InvalidRevision)
		}
		checkKeys(result, t.AddPublicKeys, false)
		checkNonceShape(result, t.Nonce)
		checkSignature(result, t.Signature)

	case *transition.IdentityCreditWithdrawal:
		checkCredits(result, t.Amount)
		if 0 == len(t.OutputScript) || len(t.OutputScript) > maxOutputScriptLength {
			result.Add(fault.WithdrawalOutputScriptInvalid)
		}
		checkNonceShape(result, t.Nonce)
		checkSignature(result, t.Signature)

	case *transition.IdentityCreditTransfer:
		checkCredits(result, t.Amount)
		if t.Recipient.IsZero() || t.Recipient == t.IdentityId {
			result.Add(fault.InvalidAmount)
		}
		checkNonceShape(result, t.Nonce)
		checkSignature(result, t.Signature)

	case *transition.DataContractCreate:
		if err := t.Contract.Validate(); nil != err {
			result.Add(err)
		}
		checkNonceShape(result, t.Nonce)
		checkSignature(result, t.Signature)

	case *transition.DataContractUpdate:
		if err := t.Contract.Validate(); nil != err {
			result.Add(err)
		}
		checkNonceShape(result, t.Nonce)
		checkSignature(result, t.Signature)

	case *transition.DocumentsBatch:
		if 0 == len(t.Transitions) {
			result.Add(fault.InvalidAmount)
		}
		for i := range t.Transitions {
			checkDocumentTransition(result, &t.Transitions[i])
		}
		checkSignature(result, t.Signature)

	case *transition.TokenMint:
		checkTokenBase(result, &t.TokenBase)
		checkTokenAmount(result, t.Amount)

	case *transition.TokenBurn:
		checkTokenBase(result, &t.TokenBase)
		checkTokenAmount(result, t.Amount)

	case *transition.TokenTransfer:
		checkTokenBase(result, &t.TokenBase)
		checkTokenAmount(result, t.Amount)
		if t.Recipient.IsZero() || t.Recipient == t.Owner {
			result.Add(fault.InvalidTokenAmount)
		}

	case *transition.TokenFreeze:
		checkTokenBase(result, &t.TokenBase)
		if t.FrozenIdentity.IsZero() {
			result.Add(fault.InvalidTokenAmount)
		}

	case *transition.TokenUnfreeze:
		checkTokenBase(result, &t.TokenBase)
		if t.FrozenIdentity.IsZero() {
			result.Add(fault.InvalidTokenAmount)
		}

	case *transition.TokenEmergencyAction:
		checkTokenBase(result, &t.TokenBase)
		if t.Action > transition.EmergencyResume {
			result.Add(fault.InvalidTokenAmount)
		}

	case *transition.TokenClaim:
		checkTokenBase(result, &t.TokenBase)
		if t.Claim > transition.ClaimPreProgrammed {
			result.Add(fault.InvalidTokenAmount)
		}

	case *transition.TokenDirectPurchase:
		checkTokenBase(result, &t.TokenBase)
		checkTokenAmount(result, t.Amount)
		if 0 == t.TotalAgreedPrice {
			result.Add(fault.InvalidAmount)
		}

	case *transition.TokenConfigUpdate:
		checkTokenBase(result, &t.TokenBase)
		if nil == t.UpdatedConfiguration {
			result.Add(fault.InvalidTokenAmount)
		}

	case *transition.MasternodeVote:
		if !t.Choice.Valid() {
			result.Add(fault.InvalidVoteChoice)
		}
		if 0 == len(t.IndexValues) {
			result.Add(fault.InvalidVoteChoice)
		}
		checkNonceShape(result, t.Nonce)
		checkSignature(result, t.Signature)

	default:
		result.Add(fault.CorruptedSerialization)
	}
	return result, nil
}

func checkSignature(result *Result, signature []byte) {
	if 0 == len(signature) || len(signature) > maxSignatureLength {
		result.Add(fault.SignatureNotVerifiable)
	}
}

// nonce zero or overflowing its 40 bit field can never merge
func checkNonceShape(result *Result, nonce uint64) {
	if 0 == nonce || 0 != nonce&^nonceValueMask {
		result.Add(fault.InvalidNonce)
	}
}

func checkCredits(result *Result, amount credits.Credits) {
	if 0 == amount || amount > credits.MaxCredits {
		result.Add(fault.InvalidAmount)
	}
}

func checkTokenAmount(result *Result, amount uint64) {
	if 0 == amount || amount > datacontract.MaxDistributionParam {
		result.Add(fault.InvalidTokenAmount)
	}
}

func checkTokenBase(result *Result, base *transition.TokenBase) {
	if len(base.Note) > datacontract.MaxTokenNoteLen {
		result.Add(fault.TokenNoteTooLong)
	}
	checkNonceShape(result, base.Nonce)
	checkSignature(result, base.Signature)
}

// identity keys: enum ranges, unique ids, unique data and for a fresh
// identity at least one master authentication key
func checkKeys(result *Result, keys []identity.PublicKey, requireMaster bool) {
	seenIds := make(map[uint32]struct{}, len(keys))
	hasMaster := false

	for i, key := range keys {
		if !key.KeyPurpose().Valid() {
			result.Add(fault.InvalidKeyPurpose)
		}
		if !key.KeySecurityLevel().Valid() {
			result.Add(fault.InvalidSecurityLevel)
		}
		if !key.KeyType().Valid() || 0 == len(key.KeyData()) {
			result.Add(fault.InvalidKeyType)
		}
		if _, ok := seenIds[key.KeyId()]; ok {
			result.Add(fault.DuplicatedKeyId)
		}
		seenIds[key.KeyId()] = struct{}{}

		for _, other := range keys[:i] {
			if string(other.KeyData()) == string(key.KeyData()) {
				result.Add(fault.DuplicatedKeyData)
				break
			}
		}

		if identity.Authentication == key.KeyPurpose() && identity.Master == key.KeySecurityLevel() {
			hasMaster = true
		}
	}

	if requireMaster && !hasMaster {
		result.Add(fault.MissingMasterKey)
	}
}

func checkAssetLock(result *Result, proof *transition.AssetLockProof) {
	if 0 == len(proof.Transaction) {
		result.Add(fault.AssetLockProofInvalid)
		return
	}
	switch proof.Kind {
	case transition.InstantProof:
		if 0 == len(proof.InstantLock) {
			result.Add(fault.AssetLockProofInvalid)
		}
	case transition.ChainProof:
		if 0 == proof.CoreChainLockedHeight {
			result.Add(fault.AssetLockProofInvalid)
		}
	default:
		result.Add(fault.AssetLockProofInvalid)
	}
}

func checkDocumentTransition(result *Result, dt *transition.DocumentTransition) {
	if dt.Operation >= transition.DocumentPurchase+1 {
		result.Add(fault.CorruptedSerialization)
		return
	}
	if dt.DocumentId.IsZero() || dt.ContractId.IsZero() || "" == dt.DocumentTypeName {
		result.Add(fault.DocumentFieldMissing)
	}
	checkNonceShape(result, dt.Nonce)

	switch dt.Operation {
	case transition.DocumentCreate:
		if 0 == len(dt.Entropy) {
			result.Add(fault.DocumentIdMismatch)
		}
	case transition.DocumentReplace:
		if dt.Revision < 1 {
			result.Add(fault.InvalidRevision)
		}
	case transition.DocumentTransfer:
		if dt.Recipient.IsZero() {
			result.Add(fault.DocumentFieldMissing)
		}
	case transition.DocumentPurchase:
		if 0 == dt.Price {
			result.Add(fault.InvalidAmount)
		}
	}
}
