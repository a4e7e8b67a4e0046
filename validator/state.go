// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package validator

import (
	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/document"
	"github.com/dashpay/platformd/drive"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/identity"
	"github.com/dashpay/platformd/platformversion"
	"github.com/dashpay/platformd/transition"
	"github.com/dashpay/platformd/vote"
)

// ValidateState - check a transition against current state
//
// reads go through the open block transaction so a transition observes
// every earlier transition of the same block; now is the block time in
// unix millis
//
// consensus failures accumulate in the result; a non nil error is a
// fatal fault and aborts block processing
func ValidateState(trx *grove.Transaction, t transition.Transition, now uint64, pv *platformversion.PlatformVersion) (*Result, error) {
	if err := dispatchStateValidation(t, pv); nil != err {
		return nil, err
	}

	result := &Result{}
	var err error

	switch t := t.(type) {
	case *transition.IdentityCreate:
		err = validateIdentityCreate(trx, result, t)
	case *transition.IdentityTopUp:
		err = validateIdentityTopUp(trx, result, t)
	case *transition.IdentityUpdate:
		err = validateIdentityUpdate(trx, result, t, pv)
	case *transition.IdentityCreditWithdrawal:
		err = validateWithdrawal(trx, result, t, pv)
	case *transition.IdentityCreditTransfer:
		err = validateCreditTransfer(trx, result, t, pv)
	case *transition.DataContractCreate:
		err = validateContractCreate(trx, result, t, pv)
	case *transition.DataContractUpdate:
		err = validateContractUpdate(trx, result, t, pv)
	case *transition.DocumentsBatch:
		err = validateDocumentsBatch(trx, result, t, now, pv)
	case *transition.TokenMint:
		err = validateTokenMint(trx, result, t, pv)
	case *transition.TokenBurn:
		err = validateTokenBurn(trx, result, t, pv)
	case *transition.TokenTransfer:
		err = validateTokenTransfer(trx, result, t, pv)
	case *transition.TokenFreeze:
		err = validateTokenFreeze(trx, result, t, &t.TokenBase, t.FrozenIdentity, true, pv)
	case *transition.TokenUnfreeze:
		err = validateTokenFreeze(trx, result, t, &t.TokenBase, t.FrozenIdentity, false, pv)
	case *transition.TokenEmergencyAction:
		err = validateTokenEmergency(trx, result, t, pv)
	case *transition.TokenClaim:
		err = validateTokenClaim(trx, result, t, now, pv)
	case *transition.TokenDirectPurchase:
		err = validateTokenPurchase(trx, result, t, pv)
	case *transition.TokenConfigUpdate:
		err = validateTokenConfigUpdate(trx, result, t, pv)
	case *transition.MasternodeVote:
		err = validateMasternodeVote(trx, result, t, now, pv)
	default:
		err = fault.CorruptedCodeExecution
	}
	if nil != err {
		return nil, err
	}
	return result, nil
}

// route an error: consensus goes into the result, anything else is
// fatal and propagates
func sift(result *Result, e error) error {
	if nil == e {
		return nil
	}
	if fault.IsConsensus(e) {
		result.Add(e)
		return nil
	}
	return e
}

// fetch the owner and verify the named key signature; returns nil
// identity after recording a consensus error
func ownerWithSignature(trx *grove.Transaction, result *Result, t transition.KeySigned) (identity.Identity, error) {
	owner, e := drive.FetchIdentity(trx, t.OwnerId())
	if nil != e {
		return nil, sift(result, e)
	}

	key, ok := owner.PublicKey(t.SignatureKeyId())
	if !ok {
		result.Add(fault.IdentityKeyNotFound)
		return owner, nil
	}
	if _, disabled := key.DisabledAt(); disabled {
		result.Add(fault.IdentityKeyNotFound)
		return owner, nil
	}
	if e := transition.VerifySignature(t, key); nil != e {
		return owner, sift(result, e)
	}
	return owner, nil
}

func checkIdentityNonce(trx *grove.Transaction, result *Result, id identifier.Identifier, nonce uint64, pv *platformversion.PlatformVersion) error {
	previous, present, e := drive.FetchIdentityNonce(trx, id)
	if nil != e {
		return e
	}
	_, e = MergeNonce(previous, present, nonce, pv)
	return sift(result, e)
}

func checkContractNonce(trx *grove.Transaction, result *Result, id identifier.Identifier, contractId identifier.Identifier, nonce uint64, pv *platformversion.PlatformVersion) error {
	previous, present, e := drive.FetchIdentityContractNonce(trx, id, contractId)
	if nil != e {
		return e
	}
	_, e = MergeNonce(previous, present, nonce, pv)
	return sift(result, e)
}

// key contract bounds must point at things that exist
func checkKeyBounds(trx *grove.Transaction, result *Result, keys []identity.PublicKey) error {
	for _, key := range keys {
		bounds := key.Bounds()
		if nil == bounds {
			continue
		}
		contract, e := drive.FetchContract(trx, bounds.ContractId)
		if fault.DataContractNotFound == e {
			result.Add(fault.KeyBoundContractNotFound)
			continue
		} else if nil != e {
			return e
		}
		if identity.SingleContractDocumentType == bounds.Kind {
			if _, ok := contract.DocumentType(bounds.DocumentTypeName); !ok {
				result.Add(fault.KeyBoundDocumentTypeNotFound)
			}
		}
	}
	return nil
}

func checkKeyHashesFree(trx *grove.Transaction, result *Result, keys []identity.PublicKey, self identifier.Identifier) error {
	for _, key := range keys {
		holder, e := drive.FetchIdentityByKeyHash(trx, key.Hash())
		if fault.IdentityNotFound == e {
			continue
		} else if nil != e {
			return e
		}
		if holder != self {
			result.Add(fault.IdentityKeyAlreadyExists)
		}
	}
	return nil
}

func validateIdentityCreate(trx *grove.Transaction, result *Result, t *transition.IdentityCreate) error {
	outpoint := t.AssetLock.Outpoint()
	if identifier.NewDerived(outpoint[:]) != t.IdentityId {
		result.Add(fault.IdentityIdMismatch)
	}

	_, e := drive.FetchIdentity(trx, t.IdentityId)
	if nil == e {
		result.Add(fault.IdentityAlreadyExists)
	} else if fault.IdentityNotFound != e {
		return e
	}

	spent, e := drive.IsAssetLockSpent(trx, outpoint)
	if nil != e {
		return e
	}
	if spent {
		result.Add(fault.AssetLockAlreadySpent)
	}

	if e := checkKeyHashesFree(trx, result, t.PublicKeys, identifier.Identifier{}); nil != e {
		return e
	}
	return checkKeyBounds(trx, result, t.PublicKeys)
}

func validateIdentityTopUp(trx *grove.Transaction, result *Result, t *transition.IdentityTopUp) error {
	if _, e := drive.FetchIdentity(trx, t.IdentityId); nil != e {
		return sift(result, e)
	}
	spent, e := drive.IsAssetLockSpent(trx, t.AssetLock.Outpoint())
	if nil != e {
		return e
	}
	if spent {
		result.Add(fault.AssetLockAlreadySpent)
	}
	return nil
}

func validateIdentityUpdate(trx *grove.Transaction, result *Result, t *transition.IdentityUpdate, pv *platformversion.PlatformVersion) error {
	owner, e := ownerWithSignature(trx, result, t)
	if nil != e || nil == owner {
		return e
	}

	if t.Revision != owner.Revision()+1 {
		result.Add(fault.IdentityRevisionMismatch)
	}
	if e := checkIdentityNonce(trx, result, t.IdentityId, t.Nonce, pv); nil != e {
		return e
	}

	for _, key := range t.AddPublicKeys {
		if _, ok := owner.PublicKey(key.KeyId()); ok {
			result.Add(fault.DuplicatedKeyId)
		}
	}
	for _, keyId := range t.DisablePublicKeyIds {
		if _, ok := owner.PublicKey(keyId); !ok {
			result.Add(fault.IdentityKeyNotFound)
		}
	}
	if e := checkKeyHashesFree(trx, result, t.AddPublicKeys, t.IdentityId); nil != e {
		return e
	}
	return checkKeyBounds(trx, result, t.AddPublicKeys)
}

func validateWithdrawal(trx *grove.Transaction, result *Result, t *transition.IdentityCreditWithdrawal, pv *platformversion.PlatformVersion) error {
	owner, e := ownerWithSignature(trx, result, t)
	if nil != e || nil == owner {
		return e
	}
	if e := checkIdentityNonce(trx, result, t.IdentityId, t.Nonce, pv); nil != e {
		return e
	}
	balance, e := drive.FetchBalance(trx, t.IdentityId)
	if nil != e {
		return e
	}
	if balance < t.Amount {
		result.Add(fault.IdentityInsufficientBalance)
	}
	return nil
}

func validateCreditTransfer(trx *grove.Transaction, result *Result, t *transition.IdentityCreditTransfer, pv *platformversion.PlatformVersion) error {
	owner, e := ownerWithSignature(trx, result, t)
	if nil != e || nil == owner {
		return e
	}
	if e := checkIdentityNonce(trx, result, t.IdentityId, t.Nonce, pv); nil != e {
		return e
	}
	if _, e := drive.FetchIdentity(trx, t.Recipient); nil != e {
		return sift(result, e)
	}
	balance, e := drive.FetchBalance(trx, t.IdentityId)
	if nil != e {
		return e
	}
	if balance < t.Amount {
		result.Add(fault.IdentityInsufficientBalance)
	}
	return nil
}

func validateContractCreate(trx *grove.Transaction, result *Result, t *transition.DataContractCreate, pv *platformversion.PlatformVersion) error {
	owner, e := ownerWithSignature(trx, result, t)
	if nil != e || nil == owner {
		return e
	}

	if transition.ContractId(t.Contract.OwnerId(), t.Nonce) != t.Contract.Id() {
		result.Add(fault.DataContractIdMismatch)
	}

	_, e = drive.FetchContract(trx, t.Contract.Id())
	if nil == e {
		result.Add(fault.DataContractAlreadyExists)
	} else if fault.DataContractNotFound != e {
		return e
	}
	return checkIdentityNonce(trx, result, t.Contract.OwnerId(), t.Nonce, pv)
}

func validateContractUpdate(trx *grove.Transaction, result *Result, t *transition.DataContractUpdate, pv *platformversion.PlatformVersion) error {
	owner, e := ownerWithSignature(trx, result, t)
	if nil != e || nil == owner {
		return e
	}

	stored, e := drive.FetchContract(trx, t.Contract.Id())
	if nil != e {
		return sift(result, e)
	}
	if e := sift(result, datacontract.CheckUpdate(stored, t.Contract)); nil != e {
		return e
	}
	return checkContractNonce(trx, result, t.Contract.OwnerId(), t.Contract.Id(), t.Nonce, pv)
}

// assemble the document a create or replace transition describes
func documentFromTransition(dt *transition.DocumentTransition, owner identifier.Identifier, revision uint64, now uint64) *document.V0 {
	return &document.V0{
		DocumentId: dt.DocumentId,
		Owner:      owner,
		Revision:   revision,
		CreatedAt:  now,
		UpdatedAt:  now,
		Properties: dt.Data,
	}
}

func validateDocumentsBatch(trx *grove.Transaction, result *Result, t *transition.DocumentsBatch, now uint64, pv *platformversion.PlatformVersion) error {
	owner, e := ownerWithSignature(trx, result, t)
	if nil != e || nil == owner {
		return e
	}

	for i := range t.Transitions {
		dt := &t.Transitions[i]

		contract, e := drive.FetchContract(trx, dt.ContractId)
		if nil != e {
			if e := sift(result, e); nil != e {
				return e
			}
			continue
		}
		documentType, ok := contract.DocumentType(dt.DocumentTypeName)
		if !ok {
			result.Add(fault.DocumentTypeNotFound)
			continue
		}
		if e := checkContractNonce(trx, result, t.Owner, dt.ContractId, dt.Nonce, pv); nil != e {
			return e
		}

		switch dt.Operation {
		case transition.DocumentCreate:
			e = validateDocumentCreate(trx, result, t.Owner, dt, documentType, now)
		case transition.DocumentReplace:
			e = validateDocumentReplace(trx, result, t.Owner, dt, documentType, now)
		case transition.DocumentDelete:
			e = validateDocumentDelete(trx, result, t.Owner, dt, documentType)
		case transition.DocumentTransfer:
			e = validateDocumentTransfer(trx, result, t.Owner, dt, documentType)
		case transition.DocumentPurchase:
			e = validateDocumentPurchase(trx, result, t.Owner, dt, documentType)
		}
		if nil != e {
			return e
		}
	}
	return nil
}

func validateDocumentCreate(trx *grove.Transaction, result *Result, owner identifier.Identifier, dt *transition.DocumentTransition, documentType *datacontract.DocumentType, now uint64) error {
	if document.NewId(dt.ContractId, owner, dt.DocumentTypeName, dt.Entropy) != dt.DocumentId {
		result.Add(fault.DocumentIdMismatch)
	}

	_, e := drive.FetchDocument(trx, dt.ContractId, dt.DocumentTypeName, dt.DocumentId)
	if nil == e {
		result.Add(fault.DocumentAlreadyExists)
	} else if fault.DocumentNotFound != e {
		return e
	}

	candidate := documentFromTransition(dt, owner, 1, now)
	if e := sift(result, document.Conforms(candidate, documentType)); nil != e {
		return e
	}

	for i := range documentType.Indices {
		index := &documentType.Indices[i]
		if !index.Unique {
			continue
		}
		values, ok := drive.IndexValueBytes(candidate, index)
		if !ok {
			continue
		}
		holder, e := drive.IndexHolder(trx, dt.ContractId, dt.DocumentTypeName, index.Name, values)
		if nil != e {
			return e
		}
		if !holder.IsZero() {
			result.Add(fault.DuplicateUniqueIndexValue)
			continue
		}
		if nil == index.Contested {
			continue
		}

		// a free contested value opens or joins a poll; joining needs
		// an open window and a prefunded voting balance
		poll := &vote.ContestedDocumentResourceVotePoll{
			ContractId:       dt.ContractId,
			DocumentTypeName: dt.DocumentTypeName,
			IndexName:        index.Name,
			IndexValues:      [][]byte{values},
		}
		existing, e := drive.FetchPoll(trx, poll.Id())
		if fault.VotePollNotFound != e {
			if nil != e {
				return e
			}
			if !existing.Joinable(now) {
				result.Add(fault.DocumentContestNotJoinable)
			}
		}
		if 0 == dt.PrefundedVotingBalance {
			result.Add(fault.PrefundedBalanceInsufficient)
		}
	}
	return nil
}

func validateDocumentReplace(trx *grove.Transaction, result *Result, owner identifier.Identifier, dt *transition.DocumentTransition, documentType *datacontract.DocumentType, now uint64) error {
	stored, e := drive.FetchDocument(trx, dt.ContractId, dt.DocumentTypeName, dt.DocumentId)
	if nil != e {
		return sift(result, e)
	}
	if stored.OwnerId() != owner {
		result.Add(fault.DocumentOwnerMismatch)
	}
	if dt.Revision != stored.DocumentRevision()+1 {
		result.Add(fault.DocumentRevisionMismatch)
	}

	replacement := documentFromTransition(dt, owner, dt.Revision, now)
	if e := sift(result, document.Conforms(replacement, documentType)); nil != e {
		return e
	}
	return sift(result, document.CheckImmutable(stored, replacement, documentType))
}

func validateDocumentDelete(trx *grove.Transaction, result *Result, owner identifier.Identifier, dt *transition.DocumentTransition, documentType *datacontract.DocumentType) error {
	stored, e := drive.FetchDocument(trx, dt.ContractId, dt.DocumentTypeName, dt.DocumentId)
	if nil != e {
		return sift(result, e)
	}
	if stored.OwnerId() != owner {
		result.Add(fault.DocumentOwnerMismatch)
	}
	if !documentType.CanBeDeleted {
		result.Add(fault.DocumentDeletionProhibited)
	}
	return nil
}

func validateDocumentTransfer(trx *grove.Transaction, result *Result, owner identifier.Identifier, dt *transition.DocumentTransition, documentType *datacontract.DocumentType) error {
	stored, e := drive.FetchDocument(trx, dt.ContractId, dt.DocumentTypeName, dt.DocumentId)
	if nil != e {
		return sift(result, e)
	}
	if stored.OwnerId() != owner {
		result.Add(fault.DocumentOwnerMismatch)
	}
	if !documentType.Transferable {
		result.Add(fault.DocumentNotTransferable)
	}
	if _, e := drive.FetchIdentity(trx, dt.Recipient); nil != e {
		return sift(result, e)
	}
	return nil
}

// the batch owner is the buyer; the stored owner is paid the price
func validateDocumentPurchase(trx *grove.Transaction, result *Result, buyer identifier.Identifier, dt *transition.DocumentTransition, documentType *datacontract.DocumentType) error {
	stored, e := drive.FetchDocument(trx, dt.ContractId, dt.DocumentTypeName, dt.DocumentId)
	if nil != e {
		return sift(result, e)
	}
	if stored.OwnerId() == buyer {
		result.Add(fault.DocumentOwnerMismatch)
	}
	if !documentType.Transferable {
		result.Add(fault.DocumentNotTransferable)
	}
	balance, e := drive.FetchBalance(trx, buyer)
	if nil != e {
		return e
	}
	if uint64(balance) < dt.Price {
		result.Add(fault.IdentityInsufficientBalance)
	}
	return nil
}

// shared token checks: owner signature, contract, configuration, nonce
// and an optional group routing
//
// signed is the concrete transition carrying the signature; base is its
// embedded token header
func tokenCommon(trx *grove.Transaction, result *Result, signed transition.KeySigned, base *transition.TokenBase, pv *platformversion.PlatformVersion) (*datacontract.TokenConfiguration, identifier.Identifier, bool, error) {
	owner, e := ownerWithSignature(trx, result, signed)
	if nil != e || nil == owner {
		return nil, identifier.Identifier{}, false, e
	}

	contract, e := drive.FetchContract(trx, base.ContractId)
	if nil != e {
		return nil, identifier.Identifier{}, false, sift(result, e)
	}
	configuration, ok := contract.Token(base.TokenPosition)
	if !ok {
		result.Add(fault.TokenNotFound)
		return nil, identifier.Identifier{}, false, nil
	}
	if e := checkContractNonce(trx, result, base.Owner, base.ContractId, base.Nonce, pv); nil != e {
		return nil, identifier.Identifier{}, false, e
	}

	// a group routed action is authorized only when the acting member
	// alone already reaches the threshold; partial approvals wait in
	// the group action queue and arrive here as a completed action
	groupApproved := false
	if nil != base.UsingGroup {
		group, ok := contract.Group(*base.UsingGroup)
		if !ok {
			result.Add(fault.GroupNotFound)
		} else if 0 == group.MemberPower(base.Owner) {
			result.Add(fault.GroupActionNotAuthorized)
		} else if !group.Reached([]identifier.Identifier{base.Owner}) {
			result.Add(fault.GroupThresholdNotMet)
		} else {
			groupApproved = true
		}
	}
	return configuration, contract.OwnerId(), groupApproved, nil
}

func checkTokenActive(trx *grove.Transaction, result *Result, tokenId identifier.Identifier) error {
	paused, e := drive.IsTokenPaused(trx, tokenId)
	if nil != e {
		return e
	}
	if paused {
		result.Add(fault.TokenPaused)
	}
	return nil
}

func validateTokenMint(trx *grove.Transaction, result *Result, t *transition.TokenMint, pv *platformversion.PlatformVersion) error {
	configuration, contractOwner, groupApproved, e := tokenCommon(trx, result, t, &t.TokenBase, pv)
	if nil != e || nil == configuration {
		return e
	}
	if e := checkTokenActive(trx, result, t.TokenId()); nil != e {
		return e
	}
	if !configuration.Manager.Mint.Allows(t.Owner, contractOwner, groupApproved) {
		result.Add(fault.GroupActionNotAuthorized)
	}
	if !t.Recipient.IsZero() {
		if _, e := drive.FetchIdentity(trx, t.Recipient); nil != e {
			return sift(result, e)
		}
	}
	if 0 != configuration.MaxSupply {
		supply, e := drive.FetchTokenSupply(trx, t.TokenId())
		if nil != e {
			return e
		}
		if supply+t.Amount < supply || supply+t.Amount > configuration.MaxSupply {
			result.Add(fault.TokenMaxSupplyExceeded)
		}
	}
	return nil
}

func validateTokenBurn(trx *grove.Transaction, result *Result, t *transition.TokenBurn, pv *platformversion.PlatformVersion) error {
	configuration, contractOwner, groupApproved, e := tokenCommon(trx, result, t, &t.TokenBase, pv)
	if nil != e || nil == configuration {
		return e
	}
	if e := checkTokenActive(trx, result, t.TokenId()); nil != e {
		return e
	}
	if !configuration.Manager.Burn.Allows(t.Owner, contractOwner, groupApproved) {
		result.Add(fault.GroupActionNotAuthorized)
	}
	return checkSpendable(trx, result, t.TokenId(), t.Owner, t.Amount)
}

func checkSpendable(trx *grove.Transaction, result *Result, tokenId identifier.Identifier, id identifier.Identifier, amount uint64) error {
	frozen, e := drive.IsTokenFrozen(trx, tokenId, id)
	if nil != e {
		return e
	}
	if frozen {
		result.Add(fault.TokenFrozen)
	}
	balance, e := drive.FetchTokenBalance(trx, tokenId, id)
	if nil != e {
		return e
	}
	if balance < amount {
		result.Add(fault.TokenInsufficientBalance)
	}
	return nil
}

func validateTokenTransfer(trx *grove.Transaction, result *Result, t *transition.TokenTransfer, pv *platformversion.PlatformVersion) error {
	configuration, _, _, e := tokenCommon(trx, result, t, &t.TokenBase, pv)
	if nil != e || nil == configuration {
		return e
	}
	if e := checkTokenActive(trx, result, t.TokenId()); nil != e {
		return e
	}
	if _, e := drive.FetchIdentity(trx, t.Recipient); nil != e {
		return sift(result, e)
	}
	recipientFrozen, e := drive.IsTokenFrozen(trx, t.TokenId(), t.Recipient)
	if nil != e {
		return e
	}
	if recipientFrozen {
		result.Add(fault.TokenFrozen)
	}
	return checkSpendable(trx, result, t.TokenId(), t.Owner, t.Amount)
}

func validateTokenFreeze(trx *grove.Transaction, result *Result, signed transition.KeySigned, base *transition.TokenBase, frozen identifier.Identifier, freeze bool, pv *platformversion.PlatformVersion) error {
	configuration, contractOwner, groupApproved, e := tokenCommon(trx, result, signed, base, pv)
	if nil != e || nil == configuration {
		return e
	}
	if e := checkTokenActive(trx, result, base.TokenId()); nil != e {
		return e
	}
	taker := &configuration.Manager.Freeze
	if !freeze {
		taker = &configuration.Manager.Unfreeze
	}
	if !taker.Allows(base.Owner, contractOwner, groupApproved) {
		result.Add(fault.GroupActionNotAuthorized)
	}
	if _, e := drive.FetchIdentity(trx, frozen); nil != e {
		return sift(result, e)
	}
	return nil
}

func validateTokenEmergency(trx *grove.Transaction, result *Result, t *transition.TokenEmergencyAction, pv *platformversion.PlatformVersion) error {
	configuration, contractOwner, groupApproved, e := tokenCommon(trx, result, t, &t.TokenBase, pv)
	if nil != e || nil == configuration {
		return e
	}
	// the emergency taker acts even while the token is paused, that is
	// the whole point of a resume
	if !configuration.Manager.EmergencyAction.Allows(t.Owner, contractOwner, groupApproved) {
		result.Add(fault.GroupActionNotAuthorized)
	}
	return nil
}

func validateTokenClaim(trx *grove.Transaction, result *Result, t *transition.TokenClaim, now uint64, pv *platformversion.PlatformVersion) error {
	configuration, _, _, e := tokenCommon(trx, result, t, &t.TokenBase, pv)
	if nil != e || nil == configuration {
		return e
	}
	if e := checkTokenActive(trx, result, t.TokenId()); nil != e {
		return e
	}

	switch t.Claim {
	case transition.ClaimPerpetual:
		perpetual := configuration.Distribution.Perpetual
		if nil == perpetual || perpetual.Recipient != t.Owner {
			result.Add(fault.TokenNoDistribution)
		}
	case transition.ClaimPreProgrammed:
		preProgrammed := configuration.Distribution.PreProgrammed
		due := false
		if nil != preProgrammed {
			for releaseTime, releases := range preProgrammed.Releases {
				if releaseTime <= now {
					if _, ok := releases[t.Owner]; ok {
						due = true
					}
				}
			}
		}
		if !due {
			result.Add(fault.TokenNoDistribution)
		}
	}
	return nil
}

func validateTokenPurchase(trx *grove.Transaction, result *Result, t *transition.TokenDirectPurchase, pv *platformversion.PlatformVersion) error {
	configuration, contractOwner, _, e := tokenCommon(trx, result, t, &t.TokenBase, pv)
	if nil != e || nil == configuration {
		return e
	}
	if e := checkTokenActive(trx, result, t.TokenId()); nil != e {
		return e
	}

	price, ok := configuration.PriceFor(t.Amount)
	if !ok || price*t.Amount != t.TotalAgreedPrice {
		result.Add(fault.TokenPriceMismatch)
	}
	balance, e := drive.FetchBalance(trx, t.Owner)
	if nil != e {
		return e
	}
	if uint64(balance) < t.TotalAgreedPrice {
		result.Add(fault.IdentityInsufficientBalance)
	}
	// the seller is the contract owner, whose holdings cover the sale
	return checkSpendable(trx, result, t.TokenId(), contractOwner, t.Amount)
}

func validateTokenConfigUpdate(trx *grove.Transaction, result *Result, t *transition.TokenConfigUpdate, pv *platformversion.PlatformVersion) error {
	configuration, contractOwner, groupApproved, e := tokenCommon(trx, result, t, &t.TokenBase, pv)
	if nil != e || nil == configuration {
		return e
	}
	if !configuration.Manager.ConfigUpdate.Allows(t.Owner, contractOwner, groupApproved) {
		result.Add(fault.GroupActionNotAuthorized)
	}

	contract, e := drive.FetchContract(trx, t.ContractId)
	if nil != e {
		return sift(result, e)
	}
	return sift(result, t.UpdatedConfiguration.Validate(contract.Groups()))
}

func validateMasternodeVote(trx *grove.Transaction, result *Result, t *transition.MasternodeVote, now uint64, pv *platformversion.PlatformVersion) error {
	owner, e := ownerWithSignature(trx, result, t)
	if nil != e || nil == owner {
		return e
	}

	poll, e := drive.FetchPoll(trx, t.Poll().Id())
	if nil != e {
		return sift(result, e)
	}
	if now >= poll.EndsAt {
		result.Add(fault.DocumentContestNotJoinable)
	}

	if vote.TowardsIdentity == t.Choice.Kind {
		contender, e := drive.IsContender(trx, poll.Id(), t.Choice.Identity)
		if nil != e {
			return e
		}
		if !contender {
			result.Add(fault.InvalidVoteChoice)
		}
	}

	prefund, e := drive.FetchPrefundedBalance(trx, poll.Id())
	if nil != e {
		return e
	}
	if 0 == prefund {
		result.Add(fault.PrefundedBalanceInsufficient)
	}
	return checkContractNonce(trx, result, t.ProTxHash, t.ContractId, t.Nonce, pv)
}
