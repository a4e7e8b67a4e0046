// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package drive

import (
	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/document"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/identity"
	"github.com/dashpay/platformd/util"
	"github.com/dashpay/platformd/vote"
)

// FetchIdentity - load a stored identity
func FetchIdentity(trx *grove.Transaction, id identifier.Identifier) (identity.Identity, error) {
	element, err := trx.Get(grove.Identities, identityKey(id))
	if nil != err {
		return nil, err
	}
	if nil == element {
		return nil, fault.IdentityNotFound
	}
	item, ok := element.(*grove.Item)
	if !ok {
		return nil, fault.CorruptedDriveState
	}
	return identity.Unpack(item.Value)
}

// FetchBalance - credits held by an identity, zero when absent
func FetchBalance(trx *grove.Transaction, id identifier.Identifier) (credits.Credits, error) {
	element, err := trx.Get(grove.Balances, balanceKey(id))
	if nil != err {
		return 0, err
	}
	if nil == element {
		return 0, nil
	}
	sum, ok := element.(*grove.SumItem)
	if !ok {
		return 0, fault.CorruptedDriveState
	}
	if sum.Value < 0 {
		return 0, fault.CorruptedDriveState
	}
	return credits.Credits(sum.Value), nil
}

// FetchIdentityNonce - last merged identity nonce record
//
// the bool reports whether a record exists; a first transition from an
// identity finds none
func FetchIdentityNonce(trx *grove.Transaction, id identifier.Identifier) (uint64, bool, error) {
	return fetchNonce(trx, identityNonceKey(id))
}

// FetchIdentityContractNonce - last merged per contract nonce record
func FetchIdentityContractNonce(trx *grove.Transaction, id identifier.Identifier, contractId identifier.Identifier) (uint64, bool, error) {
	return fetchNonce(trx, identityContractNonceKey(id, contractId))
}

func fetchNonce(trx *grove.Transaction, key []byte) (uint64, bool, error) {
	element, err := trx.Get(grove.Misc, key)
	if nil != err {
		return 0, false, err
	}
	if nil == element {
		return 0, false, nil
	}
	item, ok := element.(*grove.Item)
	if !ok {
		return 0, false, fault.CorruptedDriveState
	}
	nonce, rest, ok := util.NextUint64(item.Value)
	if !ok || 0 != len(rest) {
		return 0, false, fault.CorruptedDriveState
	}
	return nonce, true, nil
}

// FetchContract - load a stored data contract
func FetchContract(trx *grove.Transaction, contractId identifier.Identifier) (datacontract.DataContract, error) {
	element, err := trx.Get(grove.ContractDocuments, contractKey(contractId))
	if nil != err {
		return nil, err
	}
	if nil == element {
		return nil, fault.DataContractNotFound
	}
	item, ok := element.(*grove.Item)
	if !ok {
		return nil, fault.CorruptedDriveState
	}
	return datacontract.Unpack(item.Value)
}

// FetchDocument - load one document of a contract
func FetchDocument(trx *grove.Transaction, contractId identifier.Identifier, documentTypeName string, documentId identifier.Identifier) (document.Document, error) {
	element, err := trx.Get(grove.ContractDocuments, documentKey(contractId, documentTypeName, documentId))
	if nil != err {
		return nil, err
	}
	if nil == element {
		return nil, fault.DocumentNotFound
	}
	item, ok := element.(*grove.Item)
	if !ok {
		return nil, fault.CorruptedDriveState
	}
	return document.Unpack(item.Value)
}

// IndexHolder - the document currently holding a unique index value
//
// returns the zero identifier when the value is free
func IndexHolder(trx *grove.Transaction, contractId identifier.Identifier, documentTypeName string, indexName string, values []byte) (identifier.Identifier, error) {
	element, err := trx.Get(grove.ContractDocuments, indexKey(contractId, documentTypeName, indexName, values))
	if nil != err {
		return identifier.Identifier{}, err
	}
	if nil == element {
		return identifier.Identifier{}, nil
	}
	reference, ok := element.(*grove.Reference)
	if !ok {
		return identifier.Identifier{}, fault.CorruptedDriveState
	}
	key := reference.ReferencedKey
	if len(key) < identifier.Length {
		return identifier.Identifier{}, fault.CorruptedDriveState
	}
	var holder identifier.Identifier
	copy(holder[:], key[len(key)-identifier.Length:])
	return holder, nil
}

// IsAssetLockSpent - true once an asset lock outpoint was consumed
func IsAssetLockSpent(trx *grove.Transaction, outpoint identifier.Identifier) (bool, error) {
	return trx.Has(grove.SpentAssetLockTransactions, outpointKey(outpoint))
}

// FetchIdentityByKeyHash - reverse lookup from a key hash
func FetchIdentityByKeyHash(trx *grove.Transaction, hash [20]byte) (identifier.Identifier, error) {
	element, err := trx.Get(grove.PublicKeyHashesToIdentities, keyHashKey(hash))
	if nil != err {
		return identifier.Identifier{}, err
	}
	if nil == element {
		return identifier.Identifier{}, fault.IdentityNotFound
	}
	item, ok := element.(*grove.Item)
	if !ok || identifier.Length != len(item.Value) {
		return identifier.Identifier{}, fault.CorruptedDriveState
	}
	var id identifier.Identifier
	copy(id[:], item.Value)
	return id, nil
}

// FetchTokenBalance - token units held by an identity, zero when absent
func FetchTokenBalance(trx *grove.Transaction, tokenId identifier.Identifier, id identifier.Identifier) (uint64, error) {
	element, err := trx.Get(grove.TokenBalances, tokenBalanceKey(tokenId, id))
	if nil != err {
		return 0, err
	}
	if nil == element {
		return 0, nil
	}
	sum, ok := element.(*grove.SumItem)
	if !ok || sum.Value < 0 {
		return 0, fault.CorruptedDriveState
	}
	return uint64(sum.Value), nil
}

// IsTokenFrozen - true while an identity token account is frozen
func IsTokenFrozen(trx *grove.Transaction, tokenId identifier.Identifier, id identifier.Identifier) (bool, error) {
	return trx.Has(grove.TokenBalances, tokenFrozenKey(tokenId, id))
}

// IsTokenPaused - true while an emergency action pauses the token
func IsTokenPaused(trx *grove.Transaction, tokenId identifier.Identifier) (bool, error) {
	element, err := trx.Get(grove.Tokens, tokenStatusKey(tokenId))
	if nil != err {
		return false, err
	}
	if nil == element {
		return false, nil
	}
	item, ok := element.(*grove.Item)
	if !ok || 1 != len(item.Value) {
		return false, fault.CorruptedDriveState
	}
	return 1 == item.Value[0], nil
}

// FetchTokenSupply - total minted units, zero when the token is unknown
func FetchTokenSupply(trx *grove.Transaction, tokenId identifier.Identifier) (uint64, error) {
	element, err := trx.Get(grove.Tokens, tokenSupplyKey(tokenId))
	if nil != err {
		return 0, err
	}
	if nil == element {
		return 0, nil
	}
	item, ok := element.(*grove.Item)
	if !ok {
		return 0, fault.CorruptedDriveState
	}
	supply, rest, ok := util.NextUint64(item.Value)
	if !ok || 0 != len(rest) {
		return 0, fault.CorruptedDriveState
	}
	return supply, nil
}

// FetchTokenConfiguration - the stored configuration of a token
func FetchTokenConfiguration(trx *grove.Transaction, tokenId identifier.Identifier) (*datacontract.TokenConfiguration, error) {
	element, err := trx.Get(grove.Tokens, tokenConfigKey(tokenId))
	if nil != err {
		return nil, err
	}
	if nil == element {
		return nil, fault.TokenNotFound
	}
	item, ok := element.(*grove.Item)
	if !ok {
		return nil, fault.CorruptedDriveState
	}
	return datacontract.UnpackTokenConfiguration(item.Value)
}

// FetchPoll - a stored contested resource vote poll
func FetchPoll(trx *grove.Transaction, pollId identifier.Identifier) (*vote.ContestedDocumentResourceVotePoll, error) {
	element, err := trx.Get(grove.Votes, pollKey(pollId))
	if nil != err {
		return nil, err
	}
	if nil == element {
		return nil, fault.VotePollNotFound
	}
	item, ok := element.(*grove.Item)
	if !ok {
		return nil, fault.CorruptedDriveState
	}
	return vote.UnpackPoll(item.Value)
}

// FetchPollVotes - every ballot cast on one poll
func FetchPollVotes(trx *grove.Transaction, pollId identifier.Identifier) ([]*vote.Vote, error) {
	prefix := append([]byte{}, pollId[:]...)
	prefix = append(prefix, voteBallotTag)

	var votes []*vote.Vote
	err := trx.Scan(grove.Votes, prefix, func(key []byte, element grove.Element) (bool, error) {
		item, ok := element.(*grove.Item)
		if !ok {
			return false, fault.CorruptedDriveState
		}
		v, err := vote.UnpackVote(item.Value)
		if nil != err {
			return false, err
		}
		votes = append(votes, v)
		return true, nil
	})
	if nil != err {
		return nil, err
	}
	return votes, nil
}

// FetchContenders - identities contending for one contested resource
func FetchContenders(trx *grove.Transaction, pollId identifier.Identifier) ([]identifier.Identifier, error) {
	prefix := append([]byte{}, pollId[:]...)
	prefix = append(prefix, voteContenderTag)

	var contenders []identifier.Identifier
	err := trx.Scan(grove.Votes, prefix, func(key []byte, element grove.Element) (bool, error) {
		if len(key) < identifier.Length {
			return false, fault.CorruptedDriveState
		}
		var id identifier.Identifier
		copy(id[:], key[len(key)-identifier.Length:])
		contenders = append(contenders, id)
		return true, nil
	})
	if nil != err {
		return nil, err
	}
	return contenders, nil
}

// IsContender - true when the identity contends on the poll
func IsContender(trx *grove.Transaction, pollId identifier.Identifier, id identifier.Identifier) (bool, error) {
	return trx.Has(grove.Votes, contenderKey(pollId, id))
}

// FetchPrefundedBalance - remaining prefunded credits of a poll
func FetchPrefundedBalance(trx *grove.Transaction, pollId identifier.Identifier) (credits.Credits, error) {
	element, err := trx.Get(grove.Pools, prefundKey(pollId))
	if nil != err {
		return 0, err
	}
	if nil == element {
		return 0, nil
	}
	sum, ok := element.(*grove.SumItem)
	if !ok || sum.Value < 0 {
		return 0, fault.CorruptedDriveState
	}
	return credits.Credits(sum.Value), nil
}

// FetchPool - credits accumulated in a fee pool
func FetchPool(trx *grove.Transaction, key []byte) (credits.Credits, error) {
	element, err := trx.Get(grove.Pools, key)
	if nil != err {
		return 0, err
	}
	if nil == element {
		return 0, nil
	}
	sum, ok := element.(*grove.SumItem)
	if !ok || sum.Value < 0 {
		return 0, fault.CorruptedDriveState
	}
	return credits.Credits(sum.Value), nil
}

// QueuedWithdrawal - one withdrawal waiting for broadcast
type QueuedWithdrawal struct {
	Index       uint64
	Transaction []byte
}

// FetchWithdrawals - queued withdrawal transactions in enqueue order
func FetchWithdrawals(trx *grove.Transaction, limit int) ([]QueuedWithdrawal, error) {
	var queued []QueuedWithdrawal
	err := trx.Scan(grove.WithdrawalTransactions, nil, func(key []byte, element grove.Element) (bool, error) {
		item, ok := element.(*grove.Item)
		if !ok || 8 != len(key) {
			return false, fault.CorruptedDriveState
		}
		index := uint64(0)
		for _, b := range key {
			index = index<<8 | uint64(b)
		}
		queued = append(queued, QueuedWithdrawal{Index: index, Transaction: item.Value})
		return len(queued) < limit, nil
	})
	if nil != err {
		return nil, err
	}
	return queued, nil
}

// FetchTokenLastClaim - height a perpetual recipient last claimed at
func FetchTokenLastClaim(trx *grove.Transaction, tokenId identifier.Identifier, id identifier.Identifier) (uint64, bool, error) {
	element, err := trx.Get(grove.Tokens, tokenClaimKey(tokenId, id))
	if nil != err {
		return 0, false, err
	}
	if nil == element {
		return 0, false, nil
	}
	item, ok := element.(*grove.Item)
	if !ok {
		return 0, false, fault.CorruptedDriveState
	}
	height, rest, ok := util.NextUint64(item.Value)
	if !ok || 0 != len(rest) {
		return 0, false, fault.CorruptedDriveState
	}
	return height, true, nil
}

// IsTokenReleaseClaimed - whether one pre programmed release was taken
func IsTokenReleaseClaimed(trx *grove.Transaction, tokenId identifier.Identifier, releaseTime uint64, id identifier.Identifier) (bool, error) {
	return trx.Has(grove.Tokens, tokenReleaseKey(tokenId, releaseTime, id))
}

// FetchContenderDocument - the document a contender entered a poll with
func FetchContenderDocument(trx *grove.Transaction, pollId identifier.Identifier, id identifier.Identifier) (identifier.Identifier, error) {
	element, err := trx.Get(grove.Votes, contenderKey(pollId, id))
	if nil != err {
		return identifier.Identifier{}, err
	}
	if nil == element {
		return identifier.Identifier{}, fault.CorruptedDriveState
	}
	item, ok := element.(*grove.Item)
	if !ok {
		return identifier.Identifier{}, fault.CorruptedDriveState
	}
	return identifier.FromBytes(item.Value)
}

// FetchExpiredPolls - every poll whose contest window has closed
func FetchExpiredPolls(trx *grove.Transaction, now uint64) ([]*vote.ContestedDocumentResourceVotePoll, error) {
	var expired []*vote.ContestedDocumentResourceVotePoll
	err := trx.Scan(grove.Votes, nil, func(key []byte, element grove.Element) (bool, error) {
		if identifier.Length+1 != len(key) || votePollTag != key[identifier.Length] {
			return true, nil
		}
		item, ok := element.(*grove.Item)
		if !ok {
			return false, fault.CorruptedDriveState
		}
		poll, err := vote.UnpackPoll(item.Value)
		if nil != err {
			return false, err
		}
		if poll.EndsAt <= now {
			expired = append(expired, poll)
		}
		return true, nil
	})
	if nil != err {
		return nil, err
	}
	return expired, nil
}
