// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package drive - the storage operation layer
//
// validation produces domain shaped operations; this package converts
// them to grove writes, prices them and applies them, so that the
// executor never touches raw keys
package drive

import (
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/util"
)

// key constructions under each subtree
//
// all keys are exact byte concatenations of fixed width parts; the
// single byte discriminators keep different record families of one
// subtree apart without variable length framing

const (
	identityContractNonceTag = byte(0x01)
	identityNonceTag         = byte(0x00)

	documentRecordTag = byte(0x00)
	documentIndexTag  = byte(0x01)

	tokenBalanceTag = byte(0x00)
	tokenFrozenTag  = byte(0x01)

	tokenConfigTag  = byte(0x00)
	tokenStatusTag  = byte(0x01)
	tokenSupplyTag  = byte(0x02)
	tokenClaimTag   = byte(0x03)
	tokenReleaseTag = byte(0x04)

	votePollTag      = byte(0x00)
	voteBallotTag    = byte(0x01)
	voteContenderTag = byte(0x02)
	votePrefundTag   = byte(0x03)
)

// processing and storage fee pools, and the withdrawal queue counter
var (
	ProcessingPoolKey = []byte("processing")
	StoragePoolKey    = []byte("storage")
)

func identityKey(id identifier.Identifier) []byte {
	return id[:]
}

func balanceKey(id identifier.Identifier) []byte {
	return id[:]
}

func keyHashKey(hash [20]byte) []byte {
	return hash[:]
}

func identityNonceKey(id identifier.Identifier) []byte {
	k := []byte{identityNonceTag}
	return append(k, id[:]...)
}

func identityContractNonceKey(id identifier.Identifier, contract identifier.Identifier) []byte {
	k := []byte{identityContractNonceTag}
	k = append(k, id[:]...)
	return append(k, contract[:]...)
}

func contractKey(contractId identifier.Identifier) []byte {
	return contractId[:]
}

func documentKey(contractId identifier.Identifier, documentTypeName string, documentId identifier.Identifier) []byte {
	k := append([]byte{}, contractId[:]...)
	k = append(k, documentRecordTag)
	k = util.AppendString(k, documentTypeName)
	return append(k, documentId[:]...)
}

// unique index entry: one key per indexed value combination
func indexKey(contractId identifier.Identifier, documentTypeName string, indexName string, values []byte) []byte {
	k := append([]byte{}, contractId[:]...)
	k = append(k, documentIndexTag)
	k = util.AppendString(k, documentTypeName)
	k = util.AppendString(k, indexName)
	return append(k, values...)
}

func tokenBalanceKey(tokenId identifier.Identifier, id identifier.Identifier) []byte {
	k := append([]byte{}, tokenId[:]...)
	k = append(k, tokenBalanceTag)
	return append(k, id[:]...)
}

func tokenFrozenKey(tokenId identifier.Identifier, id identifier.Identifier) []byte {
	k := append([]byte{}, tokenId[:]...)
	k = append(k, tokenFrozenTag)
	return append(k, id[:]...)
}

func tokenConfigKey(tokenId identifier.Identifier) []byte {
	k := append([]byte{}, tokenId[:]...)
	return append(k, tokenConfigTag)
}

func tokenStatusKey(tokenId identifier.Identifier) []byte {
	k := append([]byte{}, tokenId[:]...)
	return append(k, tokenStatusTag)
}

func tokenSupplyKey(tokenId identifier.Identifier) []byte {
	k := append([]byte{}, tokenId[:]...)
	return append(k, tokenSupplyTag)
}

func tokenClaimKey(tokenId identifier.Identifier, id identifier.Identifier) []byte {
	k := append([]byte{}, tokenId[:]...)
	k = append(k, tokenClaimTag)
	return append(k, id[:]...)
}

func tokenReleaseKey(tokenId identifier.Identifier, releaseTime uint64, id identifier.Identifier) []byte {
	k := append([]byte{}, tokenId[:]...)
	k = append(k, tokenReleaseTag)
	k = util.AppendUint64(k, releaseTime)
	return append(k, id[:]...)
}

func pollKey(pollId identifier.Identifier) []byte {
	k := append([]byte{}, pollId[:]...)
	return append(k, votePollTag)
}

func ballotKey(pollId identifier.Identifier, voter identifier.Identifier) []byte {
	k := append([]byte{}, pollId[:]...)
	k = append(k, voteBallotTag)
	return append(k, voter[:]...)
}

func contenderKey(pollId identifier.Identifier, contender identifier.Identifier) []byte {
	k := append([]byte{}, pollId[:]...)
	k = append(k, voteContenderTag)
	return append(k, contender[:]...)
}

func prefundKey(pollId identifier.Identifier) []byte {
	k := append([]byte{}, pollId[:]...)
	return append(k, votePrefundTag)
}

func outpointKey(outpoint identifier.Identifier) []byte {
	return outpoint[:]
}

// exported key builders, shared by proof generation in the query
// service and proof verification in light clients

// IdentityKey - key of an identity record under Identities
func IdentityKey(id identifier.Identifier) []byte { return identityKey(id) }

// BalanceKey - key of a credit balance under Balances
func BalanceKey(id identifier.Identifier) []byte { return balanceKey(id) }

// ContractKey - key of a contract record under ContractDocuments
func ContractKey(contractId identifier.Identifier) []byte { return contractKey(contractId) }

// DocumentKey - key of a document record under ContractDocuments
func DocumentKey(contractId identifier.Identifier, documentTypeName string, documentId identifier.Identifier) []byte {
	return documentKey(contractId, documentTypeName, documentId)
}

// TokenBalanceKey - key of a token balance under TokenBalances
func TokenBalanceKey(tokenId identifier.Identifier, id identifier.Identifier) []byte {
	return tokenBalanceKey(tokenId, id)
}

// PollKey - key of a vote poll record under Votes
func PollKey(pollId identifier.Identifier) []byte { return pollKey(pollId) }

func withdrawalKey(index uint64) []byte {
	return []byte{
		byte(index >> 56),
		byte(index >> 48),
		byte(index >> 40),
		byte(index >> 32),
		byte(index >> 24),
		byte(index >> 16),
		byte(index >> 8),
		byte(index),
	}
}
