// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package action

import (
	"bytes"

	"github.com/btcsuite/btcd/wire"

	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/document"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/identity"
	"github.com/dashpay/platformd/transition"
	"github.com/dashpay/platformd/vote"
)

// FromTransition - resolve a validated transition into an action
//
// structure and state validation must have passed already; this only
// fails on conditions those stages cannot see without the resolver,
// such as a malformed asset lock transaction or a contract the
// resolver no longer finds
func FromTransition(t transition.Transition, resolve Resolver, now uint64) (Action, error) {

	switch tr := t.(type) {

	case *transition.IdentityCreate:
		funding, err := lockedFunding(&tr.AssetLock)
		if nil != err {
			return nil, err
		}
		created, err := identity.NewV0(tr.IdentityId, tr.PublicKeys, funding)
		if nil != err {
			return nil, err
		}
		return &IdentityCreate{
			Identity: created,
			Outpoint: tr.AssetLock.Outpoint(),
			Funding:  funding,
			Tip:      tr.UserTip(),
		}, nil

	case *transition.IdentityTopUp:
		funding, err := lockedFunding(&tr.AssetLock)
		if nil != err {
			return nil, err
		}
		return &IdentityTopUp{
			IdentityId: tr.IdentityId,
			Outpoint:   tr.AssetLock.Outpoint(),
			Funding:    funding,
			Tip:        tr.UserTip(),
		}, nil

	case *transition.IdentityUpdate:
		return &IdentityUpdate{
			IdentityId:          tr.IdentityId,
			Revision:            tr.Revision,
			Nonce:               tr.Nonce,
			AddPublicKeys:       tr.AddPublicKeys,
			DisablePublicKeyIds: tr.DisablePublicKeyIds,
			Tip:                 tr.UserTip(),
		}, nil

	case *transition.IdentityCreditWithdrawal:
		return &CreditWithdrawal{
			IdentityId:     tr.IdentityId,
			Amount:         tr.Amount,
			CoreFeePerByte: tr.CoreFeePerByte,
			OutputScript:   tr.OutputScript,
			Nonce:          tr.Nonce,
			Tip:            tr.UserTip(),
		}, nil

	case *transition.IdentityCreditTransfer:
		return &CreditTransfer{
			Sender:    tr.IdentityId,
			Recipient: tr.Recipient,
			Amount:    tr.Amount,
			Nonce:     tr.Nonce,
			Tip:       tr.UserTip(),
		}, nil

	case *transition.DataContractCreate:
		return &ContractCreate{
			Contract: tr.Contract,
			Nonce:    tr.Nonce,
			Tip:      tr.UserTip(),
		}, nil

	case *transition.DataContractUpdate:
		return &ContractUpdate{
			Contract: tr.Contract,
			Nonce:    tr.Nonce,
			Tip:      tr.UserTip(),
		}, nil

	case *transition.DocumentsBatch:
		return documentsBatch(tr, resolve, now)

	case *transition.TokenMint:
		return token(&tr.TokenBase, resolve, func(a *Token) {
			a.Kind = Mint
			a.Amount = tr.Amount
			a.Recipient = tr.Recipient
			if tr.Recipient.IsZero() {
				a.Recipient = tr.Owner
			}
		})

	case *transition.TokenBurn:
		return token(&tr.TokenBase, resolve, func(a *Token) {
			a.Kind = Burn
			a.Amount = tr.Amount
		})

	case *transition.TokenTransfer:
		return token(&tr.TokenBase, resolve, func(a *Token) {
			a.Kind = Transfer
			a.Amount = tr.Amount
			a.Recipient = tr.Recipient
		})

	case *transition.TokenFreeze:
		return token(&tr.TokenBase, resolve, func(a *Token) {
			a.Kind = Freeze
			a.Target = tr.FrozenIdentity
		})

	case *transition.TokenUnfreeze:
		return token(&tr.TokenBase, resolve, func(a *Token) {
			a.Kind = Unfreeze
			a.Target = tr.FrozenIdentity
		})

	case *transition.TokenEmergencyAction:
		return token(&tr.TokenBase, resolve, func(a *Token) {
			a.Kind = Emergency
			a.Pause = transition.EmergencyPause == tr.Action
		})

	case *transition.TokenClaim:
		return token(&tr.TokenBase, resolve, func(a *Token) {
			a.Kind = Claim
			a.ClaimKind = tr.Claim
		})

	case *transition.TokenDirectPurchase:
		return token(&tr.TokenBase, resolve, func(a *Token) {
			a.Kind = DirectPurchase
			a.Amount = tr.Amount
			a.Price = tr.TotalAgreedPrice
		})

	case *transition.TokenConfigUpdate:
		return token(&tr.TokenBase, resolve, func(a *Token) {
			a.Kind = ConfigUpdate
			a.UpdatedConfiguration = tr.UpdatedConfiguration
		})

	case *transition.MasternodeVote:
		poll := tr.Poll()
		return &MasternodeVote{
			Vote: vote.Vote{
				PollId: poll.Id(),
				Voter:  tr.ProTxHash,
				Choice: tr.Choice,
			},
			Nonce:      tr.Nonce,
			Tip:        tr.UserTip(),
			ContractId: tr.ContractId,
		}, nil
	}

	return nil, fault.CorruptedCodeExecution
}

func documentsBatch(tr *transition.DocumentsBatch, resolve Resolver, now uint64) (Action, error) {
	batch := &DocumentsBatch{
		Owner: tr.Owner,
		Tip:   tr.UserTip(),
	}
	if 0 != len(tr.Transitions) {
		batch.Changes = make([]DocumentChange, len(tr.Transitions))
	}
	for i := range tr.Transitions {
		dt := &tr.Transitions[i]

		contract, err := resolve(dt.ContractId)
		if nil != err {
			return nil, err
		}
		documentType, ok := contract.DocumentType(dt.DocumentTypeName)
		if !ok {
			return nil, fault.DocumentTypeNotFound
		}

		change := DocumentChange{
			Operation:    dt.Operation,
			Contract:     contract,
			DocumentType: documentType,
			DocumentId:   dt.DocumentId,
			Nonce:        dt.Nonce,
		}
		switch dt.Operation {
		case transition.DocumentCreate:
			change.Document = &document.V0{
				DocumentId: dt.DocumentId,
				Owner:      tr.Owner,
				Revision:   1,
				CreatedAt:  now,
				UpdatedAt:  now,
				Properties: dt.Data,
			}
			change.PrefundedVotingBalance = credits.Credits(dt.PrefundedVotingBalance)

		case transition.DocumentReplace:
			change.Document = &document.V0{
				DocumentId: dt.DocumentId,
				Owner:      tr.Owner,
				Revision:   dt.Revision,
				UpdatedAt:  now,
				Properties: dt.Data,
			}

		case transition.DocumentTransfer:
			change.Recipient = dt.Recipient

		case transition.DocumentPurchase:
			change.Price = credits.Credits(dt.Price)
		}
		batch.Changes[i] = change
	}
	return batch, nil
}

func token(base *transition.TokenBase, resolve Resolver, fill func(*Token)) (Action, error) {
	contract, err := resolve(base.ContractId)
	if nil != err {
		return nil, err
	}
	configuration, ok := contract.Token(base.TokenPosition)
	if !ok {
		return nil, fault.TokenNotFound
	}
	a := &Token{
		Owner:         base.Owner,
		ContractOwner: contract.OwnerId(),
		TokenId:       base.TokenId(),
		ContractId:    base.ContractId,
		Configuration: configuration,
		Nonce:         base.Nonce,
		Tip:           base.UserFeeIncrease,
	}
	fill(a)
	return a, nil
}

// lockedFunding - credits created by an asset lock output
//
// the raw core transaction is decoded in process; the output at the
// proven index funds the identity at the fixed credits per duff rate
func lockedFunding(proof *transition.AssetLockProof) (credits.Credits, error) {
	var tx wire.MsgTx
	err := tx.Deserialize(bytes.NewReader(proof.Transaction))
	if nil != err {
		return 0, fault.AssetLockProofInvalid
	}
	if uint32(len(tx.TxOut)) <= proof.OutputIndex {
		return 0, fault.AssetLockProofInvalid
	}
	value := tx.TxOut[proof.OutputIndex].Value
	if value <= 0 {
		return 0, fault.AssetLockProofInvalid
	}
	return credits.Credits(value).Mul(credits.PerDuff)
}
