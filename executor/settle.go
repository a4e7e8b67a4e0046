// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package executor

import (
	"bytes"
	"sort"

	"github.com/dashpay/platformd/drive"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/vote"
)

// settleExpiredPolls - close every contest whose window has ended
//
// the winning contender's document receives the contested index entry;
// every other contender's document is removed; leftover prefunded
// credits flow into the processing pool and the poll records are
// cleaned up
//
// runs on every node at the same block so the outcome is part of
// consensus; any failure here is fatal to the block attempt
func settleExpiredPolls(trx *grove.Transaction, now uint64) error {
	expired, err := drive.FetchExpiredPolls(trx, now)
	if nil != err {
		return err
	}

	for _, poll := range expired {
		if err := settlePoll(trx, poll); nil != err {
			return err
		}
	}
	return nil
}

func settlePoll(trx *grove.Transaction, poll *vote.ContestedDocumentResourceVotePoll) error {
	pollId := poll.Id()

	ballots, err := drive.FetchPollVotes(trx, pollId)
	if nil != err {
		return err
	}
	votes := make([]vote.Vote, len(ballots))
	for i, ballot := range ballots {
		votes[i] = *ballot
	}
	tally := vote.Count(votes)
	winner, locked, decided := tally.Winner()

	contenders, err := drive.FetchContenders(trx, pollId)
	if nil != err {
		return err
	}

	// an undecided contest falls to the earliest contender by id so
	// every node settles identically; a locked contest has no winner
	if !decided && !locked && 0 != len(contenders) {
		sort.Slice(contenders, func(i, j int) bool {
			return bytes.Compare(contenders[i][:], contenders[j][:]) < 0
		})
		winner = contenders[0]
		decided = true
	}

	if decided && !locked {
		documentId, err := drive.FetchContenderDocument(trx, pollId, winner)
		if nil != err {
			return err
		}
		if _, err := drive.Apply(trx, []drive.Operation{
			drive.ContestedIndexAward{
				ContractId:       poll.ContractId,
				DocumentTypeName: poll.DocumentTypeName,
				IndexName:        poll.IndexName,
				Values:           poll.IndexValues[0],
				DocumentId:       documentId,
			},
		}, true); nil != err {
			return err
		}
	}

	for _, contender := range contenders {
		if decided && !locked && contender == winner {
			continue
		}
		if err := removeContenderDocument(trx, poll, pollId, contender); nil != err {
			return err
		}
	}

	remaining, err := drive.FetchPrefundedBalance(trx, pollId)
	if nil != err {
		return err
	}

	operations := make([]drive.Operation, 0, 3)
	if 0 != remaining {
		operations = append(operations,
			drive.PrefundDeduct{PollId: pollId, Amount: remaining},
			drive.PoolAdd{Key: drive.ProcessingPoolKey, Delta: int64(remaining)},
		)
	}
	operations = append(operations, drive.PollCleanup{PollId: pollId})

	_, err = drive.Apply(trx, operations, true)
	return err
}

// drop a losing contender's document with its unique index claims
//
// the contested entry was never written for it, so only the other
// unique indices need releasing
func removeContenderDocument(trx *grove.Transaction, poll *vote.ContestedDocumentResourceVotePoll, pollId identifier.Identifier, contender identifier.Identifier) error {
	documentId, err := drive.FetchContenderDocument(trx, pollId, contender)
	if nil != err {
		return err
	}

	stored, err := drive.FetchDocument(trx, poll.ContractId, poll.DocumentTypeName, documentId)
	if nil != err {
		return err
	}
	contract, err := drive.FetchContract(trx, poll.ContractId)
	if nil != err {
		return err
	}
	documentType, ok := contract.DocumentType(poll.DocumentTypeName)
	if !ok {
		return nil
	}

	entries := drive.UniqueIndexEntries(stored, documentType)
	kept := entries[:0]
	for _, entry := range entries {
		if entry.IndexName != poll.IndexName {
			kept = append(kept, entry)
		}
	}

	_, err = drive.Apply(trx, []drive.Operation{
		drive.DocumentDelete{
			ContractId:       poll.ContractId,
			DocumentTypeName: poll.DocumentTypeName,
			DocumentId:       documentId,
			RemovedEntries:   kept,
		},
	}, true)
	return err
}
