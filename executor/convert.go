// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package executor

import (
	"bytes"
	"sort"

	"github.com/btcsuite/btcd/wire"

	"github.com/dashpay/platformd/action"
	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/document"
	"github.com/dashpay/platformd/drive"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/fees"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/platformversion"
	"github.com/dashpay/platformd/transition"
	"github.com/dashpay/platformd/trigger"
	"github.com/dashpay/platformd/validator"
	"github.com/dashpay/platformd/vote"
)

// how long a contested resource stays open for contenders and votes
const contestWindowMs = uint64(14 * 24 * 3600 * 1000)

// conversion - the storage operations of one action plus who pays
type conversion struct {
	operations []drive.Operation
	payer      identifier.Identifier
	tip        uint64

	// non zero: the fee comes from this poll's prefunded balance
	// instead of the payer's credit balance
	feePoll identifier.Identifier
}

// convert - turn a resolved action into ordered storage operations
func convert(trx *grove.Transaction, act action.Action, pv *platformversion.PlatformVersion) (*conversion, error) {
	if err := platformversion.Dispatch("drive.conversion", pv.Drive.Conversion, 0); nil != err {
		return nil, err
	}

	switch a := act.(type) {

	case *action.IdentityCreate:
		return &conversion{
			operations: []drive.Operation{
				drive.AssetLockMark{Outpoint: a.Outpoint},
				drive.IdentityInsert{Identity: a.Identity},
				drive.BalanceAdd{Id: a.Identity.Id(), Amount: a.Funding},
			},
			payer: a.Identity.Id(),
			tip:   a.Tip,
		}, nil

	case *action.IdentityTopUp:
		return &conversion{
			operations: []drive.Operation{
				drive.AssetLockMark{Outpoint: a.Outpoint},
				drive.BalanceAdd{Id: a.IdentityId, Amount: a.Funding},
			},
			payer: a.IdentityId,
			tip:   a.Tip,
		}, nil

	case *action.IdentityUpdate:
		return convertIdentityUpdate(trx, a, pv)

	case *action.CreditWithdrawal:
		return convertWithdrawal(trx, a, pv)

	case *action.CreditTransfer:
		nonceOp, err := identityNonceOp(trx, a.Sender, a.Nonce, pv)
		if nil != err {
			return nil, err
		}
		return &conversion{
			operations: []drive.Operation{
				nonceOp,
				drive.BalanceRemove{Id: a.Sender, Amount: a.Amount},
				drive.BalanceAdd{Id: a.Recipient, Amount: a.Amount},
			},
			payer: a.Sender,
			tip:   a.Tip,
		}, nil

	case *action.ContractCreate:
		nonceOp, err := identityNonceOp(trx, a.Contract.OwnerId(), a.Nonce, pv)
		if nil != err {
			return nil, err
		}
		return &conversion{
			operations: []drive.Operation{
				nonceOp,
				drive.ContractInsert{Contract: a.Contract},
			},
			payer: a.Contract.OwnerId(),
			tip:   a.Tip,
		}, nil

	case *action.ContractUpdate:
		nonceOp, err := contractNonceOp(trx, a.Contract.OwnerId(), a.Contract.Id(), a.Nonce, pv)
		if nil != err {
			return nil, err
		}
		globalData.cache.Reset()
		return &conversion{
			operations: []drive.Operation{
				nonceOp,
				drive.ContractReplace{Contract: a.Contract},
			},
			payer: a.Contract.OwnerId(),
			tip:   a.Tip,
		}, nil

	case *action.DocumentsBatch:
		return convertDocumentsBatch(trx, a, pv)

	case *action.Token:
		return convertToken(trx, a, pv)

	case *action.MasternodeVote:
		nonceOp, err := contractNonceOp(trx, a.Vote.Voter, a.ContractId, a.Nonce, pv)
		if nil != err {
			return nil, err
		}
		return &conversion{
			operations: []drive.Operation{
				nonceOp,
				drive.BallotPut{Vote: &a.Vote},
			},
			payer:   a.Vote.Voter,
			tip:     a.Tip,
			feePoll: a.Vote.PollId,
		}, nil
	}

	return nil, fault.CorruptedCodeExecution
}

// charge - debit the fee and feed the pools
//
// the pools receive exactly what is debited so total credits are
// conserved; processing and tip fill the processing pool first, the
// remainder goes to storage
func charge(trx *grove.Transaction, converted *conversion, feeResult *fees.FeeResult, total credits.Credits) error {
	if 0 == total {
		return nil
	}

	processingShare := feeResult.Processing + feeResult.Tip
	if processingShare > total {
		processingShare = total
	}
	storageShare := total - processingShare

	operations := make([]drive.Operation, 0, 3)
	if converted.feePoll.IsZero() {
		operations = append(operations, drive.BalanceRemove{Id: converted.payer, Amount: total})
	} else {
		operations = append(operations, drive.PrefundDeduct{PollId: converted.feePoll, Amount: total})
	}
	operations = append(operations, drive.PoolAdd{Key: drive.ProcessingPoolKey, Delta: int64(processingShare)})
	if 0 != storageShare {
		operations = append(operations, drive.PoolAdd{Key: drive.StoragePoolKey, Delta: int64(storageShare)})
	}

	_, err := drive.Apply(trx, operations, true)
	return err
}

func identityNonceOp(trx *grove.Transaction, id identifier.Identifier, nonce uint64, pv *platformversion.PlatformVersion) (drive.Operation, error) {
	previous, present, err := drive.FetchIdentityNonce(trx, id)
	if nil != err {
		return nil, err
	}
	merged, err := validator.MergeNonce(previous, present, nonce, pv)
	if nil != err {
		return nil, err
	}
	return drive.IdentityNonceSet{Id: id, Nonce: merged}, nil
}

func contractNonceOp(trx *grove.Transaction, id identifier.Identifier, contractId identifier.Identifier, nonce uint64, pv *platformversion.PlatformVersion) (drive.Operation, error) {
	previous, present, err := drive.FetchIdentityContractNonce(trx, id, contractId)
	if nil != err {
		return nil, err
	}
	merged, err := validator.MergeNonce(previous, present, nonce, pv)
	if nil != err {
		return nil, err
	}
	return drive.IdentityContractNonceSet{Id: id, ContractId: contractId, Nonce: merged}, nil
}

func convertIdentityUpdate(trx *grove.Transaction, a *action.IdentityUpdate, pv *platformversion.PlatformVersion) (*conversion, error) {
	record, err := drive.FetchIdentity(trx, a.IdentityId)
	if nil != err {
		return nil, err
	}

	nonceOp, err := identityNonceOp(trx, a.IdentityId, a.Nonce, pv)
	if nil != err {
		return nil, err
	}
	operations := []drive.Operation{nonceOp}

	for _, keyId := range a.DisablePublicKeyIds {
		if key, ok := record.PublicKey(keyId); ok {
			operations = append(operations, drive.KeyHashDelete{Hash: key.Hash()})
		}
	}
	if err := record.AddPublicKeys(a.AddPublicKeys); nil != err {
		return nil, err
	}
	if err := record.DisablePublicKeys(a.DisablePublicKeyIds, globalData.block.timeMs); nil != err {
		return nil, err
	}
	record.SetRevision(a.Revision)

	for _, key := range a.AddPublicKeys {
		operations = append(operations, drive.KeyHashInsert{Hash: key.Hash(), Id: a.IdentityId})
	}
	operations = append(operations, drive.IdentityReplace{Identity: record})

	return &conversion{
		operations: operations,
		payer:      a.IdentityId,
		tip:        a.Tip,
	}, nil
}

func convertWithdrawal(trx *grove.Transaction, a *action.CreditWithdrawal, pv *platformversion.PlatformVersion) (*conversion, error) {
	nonceOp, err := identityNonceOp(trx, a.IdentityId, a.Nonce, pv)
	if nil != err {
		return nil, err
	}
	index, err := drive.NextWithdrawalIndex(trx)
	if nil != err {
		return nil, err
	}

	// unsigned core transaction paying the output script; the
	// validator quorum signs it after the vote extension round
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxOut(wire.NewTxOut(int64(uint64(a.Amount)/credits.PerDuff), a.OutputScript))
	buffer := new(bytes.Buffer)
	if err := tx.Serialize(buffer); nil != err {
		return nil, err
	}

	return &conversion{
		operations: []drive.Operation{
			nonceOp,
			drive.BalanceRemove{Id: a.IdentityId, Amount: a.Amount},
			drive.WithdrawalEnqueue{Index: index, Transaction: buffer.Bytes()},
		},
		payer: a.IdentityId,
		tip:   a.Tip,
	}, nil
}

func convertDocumentsBatch(trx *grove.Transaction, a *action.DocumentsBatch, pv *platformversion.PlatformVersion) (*conversion, error) {
	context := &trigger.Context{
		BlockHeight: globalData.block.height,
		Owner:       a.Owner,
	}

	var operations []drive.Operation
	for i := range a.Changes {
		change := &a.Changes[i]

		if err := trigger.Run(change, context); nil != err {
			return nil, err
		}

		nonceOp, err := contractNonceOp(trx, a.Owner, change.Contract.Id(), change.Nonce, pv)
		if nil != err {
			return nil, err
		}
		operations = append(operations, nonceOp)

		changeOps, err := convertDocumentChange(trx, a.Owner, change)
		if nil != err {
			return nil, err
		}
		operations = append(operations, changeOps...)
	}

	return &conversion{
		operations: operations,
		payer:      a.Owner,
		tip:        a.Tip,
	}, nil
}

func convertDocumentChange(trx *grove.Transaction, owner identifier.Identifier, change *action.DocumentChange) ([]drive.Operation, error) {
	contractId := change.Contract.Id()
	typeName := change.DocumentType.Name

	switch change.Operation {

	case transition.DocumentCreate:
		entries := drive.UniqueIndexEntries(change.Document, change.DocumentType)
		operations := []drive.Operation{}

		// a contested index value is not claimed at creation; the
		// poll settlement awards it to the winning document
		if contested, ok := change.DocumentType.ContestedIndex(); ok {
			values, valuesOk := drive.IndexValueBytes(change.Document, contested)
			if valuesOk {
				kept := entries[:0]
				for _, entry := range entries {
					if entry.IndexName != contested.Name {
						kept = append(kept, entry)
					}
				}
				entries = kept

				poll := &vote.ContestedDocumentResourceVotePoll{
					ContractId:       contractId,
					DocumentTypeName: typeName,
					IndexName:        contested.Name,
					IndexValues:      [][]byte{values},
					EndsAt:           globalData.block.timeMs + contestWindowMs,
				}
				if _, err := drive.FetchPoll(trx, poll.Id()); fault.VotePollNotFound == err {
					operations = append(operations, drive.PollInsert{Poll: poll})
				} else if nil != err {
					return nil, err
				}
				operations = append(operations,
					drive.ContenderAdd{
						PollId:     poll.Id(),
						Id:         owner,
						DocumentId: change.Document.Id(),
					},
					drive.BalanceRemove{Id: owner, Amount: change.PrefundedVotingBalance},
					drive.PrefundAdd{PollId: poll.Id(), Amount: change.PrefundedVotingBalance},
				)
			}
		}

		operations = append(operations, drive.DocumentInsert{
			ContractId:       contractId,
			DocumentTypeName: typeName,
			Document:         change.Document,
			IndexEntries:     entries,
		})
		return operations, nil

	case transition.DocumentReplace:
		stored, err := drive.FetchDocument(trx, contractId, typeName, change.DocumentId)
		if nil != err {
			return nil, err
		}
		if replacement, ok := change.Document.(*document.V0); ok {
			if storedV0, ok := stored.(*document.V0); ok {
				replacement.CreatedAt = storedV0.CreatedAt
			}
		}

		oldEntries := drive.UniqueIndexEntries(stored, change.DocumentType)
		newEntries := drive.UniqueIndexEntries(change.Document, change.DocumentType)
		added, removed := diffEntries(oldEntries, newEntries)

		return []drive.Operation{
			drive.DocumentReplace{
				ContractId:       contractId,
				DocumentTypeName: typeName,
				Document:         change.Document,
				AddedEntries:     added,
				RemovedEntries:   removed,
			},
		}, nil

	case transition.DocumentDelete:
		stored, err := drive.FetchDocument(trx, contractId, typeName, change.DocumentId)
		if nil != err {
			return nil, err
		}
		return []drive.Operation{
			drive.DocumentDelete{
				ContractId:       contractId,
				DocumentTypeName: typeName,
				DocumentId:       change.DocumentId,
				RemovedEntries:   drive.UniqueIndexEntries(stored, change.DocumentType),
			},
		}, nil

	case transition.DocumentTransfer:
		return convertDocumentHandover(trx, change, change.Recipient, nil)

	case transition.DocumentPurchase:
		buyer := owner
		return convertDocumentHandover(trx, change, buyer, func(seller identifier.Identifier) []drive.Operation {
			return []drive.Operation{
				drive.BalanceRemove{Id: buyer, Amount: change.Price},
				drive.BalanceAdd{Id: seller, Amount: change.Price},
			}
		})
	}

	return nil, fault.CorruptedCodeExecution
}

// move a document to a new owner, optionally paying the old one
func convertDocumentHandover(trx *grove.Transaction, change *action.DocumentChange, newOwner identifier.Identifier, payment func(seller identifier.Identifier) []drive.Operation) ([]drive.Operation, error) {
	contractId := change.Contract.Id()
	typeName := change.DocumentType.Name

	stored, err := drive.FetchDocument(trx, contractId, typeName, change.DocumentId)
	if nil != err {
		return nil, err
	}

	replacement := &document.V0{
		DocumentId: change.DocumentId,
		Owner:      newOwner,
		Revision:   stored.DocumentRevision() + 1,
		UpdatedAt:  globalData.block.timeMs,
		Properties: stored.Fields(),
	}
	if storedV0, ok := stored.(*document.V0); ok {
		replacement.CreatedAt = storedV0.CreatedAt
	}

	var operations []drive.Operation
	if nil != payment {
		operations = payment(stored.OwnerId())
	}
	operations = append(operations, drive.DocumentReplace{
		ContractId:       contractId,
		DocumentTypeName: typeName,
		Document:         replacement,
	})
	return operations, nil
}

func diffEntries(old []drive.IndexEntry, new []drive.IndexEntry) (added []drive.IndexEntry, removed []drive.IndexEntry) {
	for _, entry := range new {
		if !containsEntry(old, entry) {
			added = append(added, entry)
		}
	}
	for _, entry := range old {
		if !containsEntry(new, entry) {
			removed = append(removed, entry)
		}
	}
	return added, removed
}

func containsEntry(entries []drive.IndexEntry, entry drive.IndexEntry) bool {
	for _, e := range entries {
		if e.IndexName == entry.IndexName && bytes.Equal(e.Values, entry.Values) {
			return true
		}
	}
	return false
}

func convertToken(trx *grove.Transaction, a *action.Token, pv *platformversion.PlatformVersion) (*conversion, error) {
	nonceOp, err := contractNonceOp(trx, a.Owner, a.ContractId, a.Nonce, pv)
	if nil != err {
		return nil, err
	}
	operations := []drive.Operation{nonceOp}

	switch a.Kind {

	case action.Mint:
		operations = append(operations,
			drive.TokenSupplyAdd{TokenId: a.TokenId, Delta: int64(a.Amount)},
			drive.TokenBalanceAdd{TokenId: a.TokenId, Id: a.Recipient, Delta: int64(a.Amount)},
		)

	case action.Burn:
		operations = append(operations,
			drive.TokenBalanceAdd{TokenId: a.TokenId, Id: a.Owner, Delta: -int64(a.Amount)},
			drive.TokenSupplyAdd{TokenId: a.TokenId, Delta: -int64(a.Amount)},
		)

	case action.Transfer:
		operations = append(operations,
			drive.TokenBalanceAdd{TokenId: a.TokenId, Id: a.Owner, Delta: -int64(a.Amount)},
			drive.TokenBalanceAdd{TokenId: a.TokenId, Id: a.Recipient, Delta: int64(a.Amount)},
		)

	case action.Freeze:
		operations = append(operations, drive.TokenFrozenSet{TokenId: a.TokenId, Id: a.Target, Frozen: true})

	case action.Unfreeze:
		operations = append(operations, drive.TokenFrozenSet{TokenId: a.TokenId, Id: a.Target, Frozen: false})

	case action.Emergency:
		operations = append(operations, drive.TokenStatusSet{TokenId: a.TokenId, Paused: a.Pause})

	case action.Claim:
		claimOps, err := convertTokenClaim(trx, a)
		if nil != err {
			return nil, err
		}
		operations = append(operations, claimOps...)

	case action.DirectPurchase:
		operations = append(operations,
			drive.BalanceRemove{Id: a.Owner, Amount: credits.Credits(a.Price)},
			drive.BalanceAdd{Id: a.ContractOwner, Amount: credits.Credits(a.Price)},
			drive.TokenBalanceAdd{TokenId: a.TokenId, Id: a.ContractOwner, Delta: -int64(a.Amount)},
			drive.TokenBalanceAdd{TokenId: a.TokenId, Id: a.Owner, Delta: int64(a.Amount)},
		)

	case action.ConfigUpdate:
		operations = append(operations, drive.TokenConfigSet{
			TokenId:       a.TokenId,
			Configuration: a.UpdatedConfiguration,
		})

	default:
		return nil, fault.CorruptedCodeExecution
	}

	return &conversion{
		operations: operations,
		payer:      a.Owner,
		tip:        a.Tip,
	}, nil
}

// price a distribution claim against the claim bookkeeping
//
// perpetual claims release one amount per elapsed interval since the
// last claim; pre programmed claims release every due, unclaimed entry
func convertTokenClaim(trx *grove.Transaction, a *action.Token) ([]drive.Operation, error) {
	configuration, err := drive.FetchTokenConfiguration(trx, a.TokenId)
	if nil != err {
		return nil, err
	}

	switch a.ClaimKind {

	case transition.ClaimPerpetual:
		perpetual := configuration.Distribution.Perpetual
		if nil == perpetual || 0 == perpetual.IntervalBlocks {
			return nil, fault.TokenNoDistribution
		}

		height := globalData.block.height
		amount := perpetual.Amount
		newLast := height

		last, present, err := drive.FetchTokenLastClaim(trx, a.TokenId, a.Owner)
		if nil != err {
			return nil, err
		}
		if present {
			intervals := (height - last) / perpetual.IntervalBlocks
			if 0 == intervals {
				return nil, fault.TokenNoDistribution
			}
			amount = intervals * perpetual.Amount
			newLast = last + intervals*perpetual.IntervalBlocks
		}

		return []drive.Operation{
			drive.TokenSupplyAdd{TokenId: a.TokenId, Delta: int64(amount)},
			drive.TokenBalanceAdd{TokenId: a.TokenId, Id: a.Owner, Delta: int64(amount)},
			drive.TokenLastClaimSet{TokenId: a.TokenId, Id: a.Owner, Height: newLast},
		}, nil

	case transition.ClaimPreProgrammed:
		preProgrammed := configuration.Distribution.PreProgrammed
		if nil == preProgrammed {
			return nil, fault.TokenNoDistribution
		}

		var due []uint64
		for releaseTime, releases := range preProgrammed.Releases {
			if releaseTime > globalData.block.timeMs {
				continue
			}
			if _, ok := releases[a.Owner]; !ok {
				continue
			}
			claimed, err := drive.IsTokenReleaseClaimed(trx, a.TokenId, releaseTime, a.Owner)
			if nil != err {
				return nil, err
			}
			if !claimed {
				due = append(due, releaseTime)
			}
		}
		if 0 == len(due) {
			return nil, fault.TokenNoDistribution
		}
		sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })

		var operations []drive.Operation
		for _, releaseTime := range due {
			amount := preProgrammed.Releases[releaseTime][a.Owner]
			operations = append(operations,
				drive.TokenSupplyAdd{TokenId: a.TokenId, Delta: int64(amount)},
				drive.TokenBalanceAdd{TokenId: a.TokenId, Id: a.Owner, Delta: int64(amount)},
				drive.TokenReleaseMark{TokenId: a.TokenId, ReleaseTime: releaseTime, Id: a.Owner},
			)
		}
		return operations, nil
	}

	return nil, fault.CorruptedCodeExecution
}
