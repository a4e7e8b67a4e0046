// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package query

import (
	"net/http"

	"github.com/bitmark-inc/logger"
	"github.com/mr-tron/base58"

	"github.com/dashpay/platformd/drive"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/platformversion"
)

// Platform - the query service
//
// identifiers travel base58 encoded; stored records travel in their
// packed wire form so a light client can check them against the proof
type Platform struct {
	log *logger.L
}

// IdentityArguments - arguments for Platform.Identity
type IdentityArguments struct {
	Version    uint32 `json:"version"`
	IdentityId string `json:"identityId"`
	Prove      bool   `json:"prove"`
}

// IdentityReply - packed identity record, nil when absent
type IdentityReply struct {
	Identity []byte `json:"identity"`
	Proof    []byte `json:"proof,omitempty"`
	RootHash []byte `json:"rootHash,omitempty"`
}

// Identity - fetch one identity record
func (p *Platform) Identity(r *http.Request, args *IdentityArguments, reply *IdentityReply) error {
	if err := checkVersion(args.Version, func(q *platformversion.QueryVersions) platformversion.FeatureVersionBounds {
		return q.Identity
	}); nil != err {
		return err
	}
	id, err := decodeId(args.IdentityId)
	if nil != err {
		return err
	}

	trx, err := grove.NewTransaction()
	if nil != err {
		return err
	}
	defer trx.Rollback()

	reply.Identity, err = fetchItem(trx, grove.Identities, drive.IdentityKey(id))
	if nil != err {
		return err
	}
	return attachProof(trx, grove.Identities, drive.IdentityKey(id), args.Prove, &reply.Proof, &reply.RootHash)
}

// BalanceArguments - arguments for Platform.IdentityBalance
type BalanceArguments struct {
	Version    uint32 `json:"version"`
	IdentityId string `json:"identityId"`
	Prove      bool   `json:"prove"`
}

// BalanceReply - credits held, zero when the identity has no balance
type BalanceReply struct {
	Balance  uint64 `json:"balance"`
	Proof    []byte `json:"proof,omitempty"`
	RootHash []byte `json:"rootHash,omitempty"`
}

// IdentityBalance - fetch the credit balance of an identity
func (p *Platform) IdentityBalance(r *http.Request, args *BalanceArguments, reply *BalanceReply) error {
	if err := checkVersion(args.Version, func(q *platformversion.QueryVersions) platformversion.FeatureVersionBounds {
		return q.IdentityBalance
	}); nil != err {
		return err
	}
	id, err := decodeId(args.IdentityId)
	if nil != err {
		return err
	}

	trx, err := grove.NewTransaction()
	if nil != err {
		return err
	}
	defer trx.Rollback()

	reply.Balance, err = fetchSum(trx, grove.Balances, drive.BalanceKey(id))
	if nil != err {
		return err
	}
	return attachProof(trx, grove.Balances, drive.BalanceKey(id), args.Prove, &reply.Proof, &reply.RootHash)
}

// ContractArguments - arguments for Platform.DataContract
type ContractArguments struct {
	Version    uint32 `json:"version"`
	ContractId string `json:"contractId"`
	Prove      bool   `json:"prove"`
}

// ContractReply - packed contract record, nil when absent
type ContractReply struct {
	Contract []byte `json:"contract"`
	Proof    []byte `json:"proof,omitempty"`
	RootHash []byte `json:"rootHash,omitempty"`
}

// DataContract - fetch one data contract record
func (p *Platform) DataContract(r *http.Request, args *ContractArguments, reply *ContractReply) error {
	if err := checkVersion(args.Version, func(q *platformversion.QueryVersions) platformversion.FeatureVersionBounds {
		return q.DataContract
	}); nil != err {
		return err
	}
	id, err := decodeId(args.ContractId)
	if nil != err {
		return err
	}

	trx, err := grove.NewTransaction()
	if nil != err {
		return err
	}
	defer trx.Rollback()

	reply.Contract, err = fetchItem(trx, grove.ContractDocuments, drive.ContractKey(id))
	if nil != err {
		return err
	}
	return attachProof(trx, grove.ContractDocuments, drive.ContractKey(id), args.Prove, &reply.Proof, &reply.RootHash)
}

// DocumentArguments - arguments for Platform.Document
type DocumentArguments struct {
	Version      uint32 `json:"version"`
	ContractId   string `json:"contractId"`
	DocumentType string `json:"documentType"`
	DocumentId   string `json:"documentId"`
	Prove        bool   `json:"prove"`
}

// DocumentReply - packed document record, nil when absent
type DocumentReply struct {
	Document []byte `json:"document"`
	Proof    []byte `json:"proof,omitempty"`
	RootHash []byte `json:"rootHash,omitempty"`
}

// Document - fetch one document of a contract
func (p *Platform) Document(r *http.Request, args *DocumentArguments, reply *DocumentReply) error {
	if err := checkVersion(args.Version, func(q *platformversion.QueryVersions) platformversion.FeatureVersionBounds {
		return q.Documents
	}); nil != err {
		return err
	}
	contractId, err := decodeId(args.ContractId)
	if nil != err {
		return err
	}
	documentId, err := decodeId(args.DocumentId)
	if nil != err {
		return err
	}

	trx, err := grove.NewTransaction()
	if nil != err {
		return err
	}
	defer trx.Rollback()

	key := drive.DocumentKey(contractId, args.DocumentType, documentId)
	reply.Document, err = fetchItem(trx, grove.ContractDocuments, key)
	if nil != err {
		return err
	}
	return attachProof(trx, grove.ContractDocuments, key, args.Prove, &reply.Proof, &reply.RootHash)
}

// TokenBalanceArguments - arguments for Platform.TokenBalance
type TokenBalanceArguments struct {
	Version    uint32 `json:"version"`
	TokenId    string `json:"tokenId"`
	IdentityId string `json:"identityId"`
	Prove      bool   `json:"prove"`
}

// TokenBalanceReply - token units held, zero when absent
type TokenBalanceReply struct {
	Balance  uint64 `json:"balance"`
	Proof    []byte `json:"proof,omitempty"`
	RootHash []byte `json:"rootHash,omitempty"`
}

// TokenBalance - fetch one identity token account
func (p *Platform) TokenBalance(r *http.Request, args *TokenBalanceArguments, reply *TokenBalanceReply) error {
	if err := checkVersion(args.Version, func(q *platformversion.QueryVersions) platformversion.FeatureVersionBounds {
		return q.TokenBalance
	}); nil != err {
		return err
	}
	tokenId, err := decodeId(args.TokenId)
	if nil != err {
		return err
	}
	id, err := decodeId(args.IdentityId)
	if nil != err {
		return err
	}

	trx, err := grove.NewTransaction()
	if nil != err {
		return err
	}
	defer trx.Rollback()

	key := drive.TokenBalanceKey(tokenId, id)
	reply.Balance, err = fetchSum(trx, grove.TokenBalances, key)
	if nil != err {
		return err
	}
	return attachProof(trx, grove.TokenBalances, key, args.Prove, &reply.Proof, &reply.RootHash)
}

// VotePollArguments - arguments for Platform.VotePoll
type VotePollArguments struct {
	Version uint32 `json:"version"`
	PollId  string `json:"pollId"`
	Prove   bool   `json:"prove"`
}

// VotePollReply - packed poll record plus remaining prefund
type VotePollReply struct {
	Poll     []byte `json:"poll"`
	Prefund  uint64 `json:"prefund"`
	Proof    []byte `json:"proof,omitempty"`
	RootHash []byte `json:"rootHash,omitempty"`
}

// VotePoll - fetch one contested resource vote poll
func (p *Platform) VotePoll(r *http.Request, args *VotePollArguments, reply *VotePollReply) error {
	if err := checkVersion(args.Version, func(q *platformversion.QueryVersions) platformversion.FeatureVersionBounds {
		return q.VotePoll
	}); nil != err {
		return err
	}
	pollId, err := decodeId(args.PollId)
	if nil != err {
		return err
	}

	trx, err := grove.NewTransaction()
	if nil != err {
		return err
	}
	defer trx.Rollback()

	reply.Poll, err = fetchItem(trx, grove.Votes, drive.PollKey(pollId))
	if nil != err {
		return err
	}
	prefund, err := drive.FetchPrefundedBalance(trx, pollId)
	if nil != err {
		return err
	}
	reply.Prefund = uint64(prefund)
	return attachProof(trx, grove.Votes, drive.PollKey(pollId), args.Prove, &reply.Proof, &reply.RootHash)
}

// TotalCreditsArguments - arguments for Platform.TotalCredits
type TotalCreditsArguments struct {
	Version uint32 `json:"version"`
}

// TotalCreditsReply - all credits in circulation
//
// the sum of every identity balance plus every pool including poll
// prefunds; conserved across blocks except for asset lock funding,
// withdrawals and proposer payouts
type TotalCreditsReply struct {
	Balances uint64 `json:"balances"`
	Pools    uint64 `json:"pools"`
	Total    uint64 `json:"total"`
}

// TotalCredits - sum all credits known to the platform
func (p *Platform) TotalCredits(r *http.Request, args *TotalCreditsArguments, reply *TotalCreditsReply) error {
	if err := checkVersion(args.Version, func(q *platformversion.QueryVersions) platformversion.FeatureVersionBounds {
		return q.TotalCredits
	}); nil != err {
		return err
	}

	trx, err := grove.NewTransaction()
	if nil != err {
		return err
	}
	defer trx.Rollback()

	balances, err := grove.SubtreeSum(trx, grove.Balances)
	if nil != err {
		return err
	}
	pools, err := grove.SubtreeSum(trx, grove.Pools)
	if nil != err {
		return err
	}
	if balances < 0 || pools < 0 {
		return fault.CorruptedDriveState
	}

	reply.Balances = uint64(balances)
	reply.Pools = uint64(pools)
	reply.Total = uint64(balances) + uint64(pools)
	return nil
}

func checkVersion(version uint32, bounds func(*platformversion.QueryVersions) platformversion.FeatureVersionBounds) error {
	pv, err := platformversion.Current()
	if nil != err {
		return err
	}
	if !bounds(&pv.Queries).Contains(platformversion.FeatureVersion(version)) {
		return fault.UnsupportedQueryVersion
	}
	return nil
}

func decodeId(encoded string) (identifier.Identifier, error) {
	raw, err := base58.Decode(encoded)
	if nil != err {
		return identifier.Identifier{}, fault.InvalidIdentifierLength
	}
	return identifier.FromBytes(raw)
}

// packed record bytes at an item key, nil when the key is free
func fetchItem(trx *grove.Transaction, subtree grove.Subtree, key []byte) ([]byte, error) {
	element, err := trx.Get(subtree, key)
	if nil != err {
		return nil, err
	}
	if nil == element {
		return nil, nil
	}
	item, ok := element.(*grove.Item)
	if !ok {
		return nil, fault.CorruptedDriveState
	}
	return item.Value, nil
}

// non negative sum value at a key, zero when the key is free
func fetchSum(trx *grove.Transaction, subtree grove.Subtree, key []byte) (uint64, error) {
	element, err := trx.Get(subtree, key)
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

func attachProof(trx *grove.Transaction, subtree grove.Subtree, key []byte, prove bool, proof *[]byte, rootHash *[]byte) error {
	if !prove {
		return nil
	}
	generated, err := grove.GenerateProof(trx, subtree, key)
	if nil != err {
		return err
	}
	root, err := grove.RootHash(trx)
	if nil != err {
		return err
	}
	*proof = generated
	*rootHash = root[:]
	return nil
}
