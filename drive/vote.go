// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package drive

import (
	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/fees"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/vote"
)

// PollInsert - open a contested resource vote poll
type PollInsert struct {
	Poll *vote.ContestedDocumentResourceVotePoll
}

func (op PollInsert) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	return putElement(trx, grove.Votes, pollKey(op.Poll.Id()), &grove.Item{Value: op.Poll.Pack()}, applyMode)
}

// ContenderAdd - register an identity as contender on a poll
//
// the value is the contender's document id so settlement can award the
// contested index entry to the winning document
type ContenderAdd struct {
	PollId     identifier.Identifier
	Id         identifier.Identifier
	DocumentId identifier.Identifier
}

func (op ContenderAdd) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	return putElement(trx, grove.Votes, contenderKey(op.PollId, op.Id), &grove.Item{Value: op.DocumentId[:]}, applyMode)
}

// BallotPut - record a masternode ballot, replacing an earlier one
//
// one key per voter so a revote overwrites rather than accumulates
type BallotPut struct {
	Vote *vote.Vote
}

func (op BallotPut) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	return putElement(trx, grove.Votes, ballotKey(op.Vote.PollId, op.Vote.Voter), &grove.Item{Value: op.Vote.Pack()}, applyMode)
}

// PollCleanup - remove a settled poll with its ballots and contenders
type PollCleanup struct {
	PollId identifier.Identifier
}

func (op PollCleanup) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	if !applyMode {
		return fees.OperationCost{RemovedBytes: uint64(len(pollKey(op.PollId)) + 1), Seeks: 1}, nil
	}

	var doomed [][]byte
	err := trx.Scan(grove.Votes, op.PollId[:], func(key []byte, element grove.Element) (bool, error) {
		doomed = append(doomed, append([]byte{}, key...))
		return true, nil
	})
	if nil != err {
		return fees.OperationCost{}, err
	}

	cost := fees.OperationCost{}
	for _, key := range doomed {
		extra, err := deleteElement(trx, grove.Votes, key, true)
		if nil != err {
			return fees.OperationCost{}, err
		}
		cost = combine(cost, extra)
	}
	return cost, nil
}

// ContestedIndexAward - assign a contested index value to the winner
//
// written at poll settlement; from then on the value is occupied like
// any other unique index entry
type ContestedIndexAward struct {
	ContractId       identifier.Identifier
	DocumentTypeName string
	IndexName        string
	Values           []byte
	DocumentId       identifier.Identifier
}

func (op ContestedIndexAward) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	reference := &grove.Reference{
		ReferencedSubtree: grove.ContractDocuments,
		ReferencedKey:     documentKey(op.ContractId, op.DocumentTypeName, op.DocumentId),
	}
	return putElement(trx, grove.ContractDocuments, indexKey(op.ContractId, op.DocumentTypeName, op.IndexName, op.Values), reference, applyMode)
}

// PrefundAdd - credit a poll's prefunded specialized balance
type PrefundAdd struct {
	PollId identifier.Identifier
	Amount credits.Credits
}

func (op PrefundAdd) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	if op.Amount > credits.MaxCredits {
		return fees.OperationCost{}, fault.CreditsOverflow
	}
	return addToSum(trx, grove.Pools, prefundKey(op.PollId), int64(op.Amount), fault.PrefundedBalanceInsufficient, applyMode)
}

// PrefundDeduct - pay a voting fee from the prefunded balance
type PrefundDeduct struct {
	PollId identifier.Identifier
	Amount credits.Credits
}

func (op PrefundDeduct) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	if op.Amount > credits.MaxCredits {
		return fees.OperationCost{}, fault.CreditsOverflow
	}
	return addToSum(trx, grove.Pools, prefundKey(op.PollId), -int64(op.Amount), fault.PrefundedBalanceInsufficient, applyMode)
}

// PoolAdd - move credits into or out of a fee pool
type PoolAdd struct {
	Key   []byte
	Delta int64
}

func (op PoolAdd) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	return addToSum(trx, grove.Pools, op.Key, op.Delta, fault.CreditsOverflow, applyMode)
}
