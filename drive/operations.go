// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package drive

import (
	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/document"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/fees"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/identity"
	"github.com/dashpay/platformd/util"
)

// Operation - one state change expressed in domain terms
//
// validation emits operations; Apply executes them against a grove
// transaction and prices each one, or only prices them in estimate
// mode without touching state
type Operation interface {
	execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error)
}

// Apply - run every operation in order and collect the costs
//
// the first failing operation aborts; the caller owns the transaction
// and decides whether to commit or roll back
func Apply(trx *grove.Transaction, operations []Operation, applyMode bool) ([]fees.OperationCost, error) {
	costs := make([]fees.OperationCost, 0, len(operations))
	for _, op := range operations {
		cost, err := op.execute(trx, applyMode)
		if nil != err {
			return nil, err
		}
		costs = append(costs, cost)
	}
	return costs, nil
}

// write an element, pricing an insert or a replace depending on what
// the key already holds; estimate mode prices a fresh insert and does
// not write
func putElement(trx *grove.Transaction, subtree grove.Subtree, key []byte, element grove.Element, applyMode bool) (fees.OperationCost, error) {
	bytes := uint64(len(key) + len(element.Pack()) + 1)
	if !applyMode {
		return fees.OperationCost{InsertedBytes: bytes, Seeks: 1}, nil
	}

	existing, err := trx.Get(subtree, key)
	if nil != err {
		return fees.OperationCost{}, err
	}
	if err := trx.Put(subtree, key, element); nil != err {
		return fees.OperationCost{}, err
	}
	if nil == existing {
		return fees.OperationCost{InsertedBytes: bytes, Seeks: 1}, nil
	}

	cost := fees.OperationCost{ProcessedBytes: bytes, Seeks: 1}
	oldBytes := uint64(len(key) + len(existing.Pack()) + 1)
	if bytes > oldBytes {
		cost.InsertedBytes = bytes - oldBytes
	} else {
		cost.RemovedBytes = oldBytes - bytes
	}
	return cost, nil
}

func deleteElement(trx *grove.Transaction, subtree grove.Subtree, key []byte, applyMode bool) (fees.OperationCost, error) {
	if !applyMode {
		return fees.OperationCost{RemovedBytes: uint64(len(key) + 1), Seeks: 1}, nil
	}

	existing, err := trx.Get(subtree, key)
	if nil != err {
		return fees.OperationCost{}, err
	}
	if nil == existing {
		return fees.OperationCost{Seeks: 1}, nil
	}
	if err := trx.Delete(subtree, key); nil != err {
		return fees.OperationCost{}, err
	}
	return fees.OperationCost{
		RemovedBytes: uint64(len(key) + len(existing.Pack()) + 1),
		Seeks:        1,
	}, nil
}

// adjust a sum element by delta, failing when the result would go
// negative; estimate mode prices the write without reading
func addToSum(trx *grove.Transaction, subtree grove.Subtree, key []byte, delta int64, underflow error, applyMode bool) (fees.OperationCost, error) {
	if !applyMode {
		return fees.OperationCost{ProcessedBytes: uint64(len(key) + 10), Seeks: 1}, nil
	}

	current := int64(0)
	element, err := trx.Get(subtree, key)
	if nil != err {
		return fees.OperationCost{}, err
	}
	if nil != element {
		sum, ok := element.(*grove.SumItem)
		if !ok {
			return fees.OperationCost{}, fault.CorruptedDriveState
		}
		current = sum.Value
	}

	next := current + delta
	if delta > 0 && next < current {
		return fees.OperationCost{}, fault.CreditsOverflow
	}
	if next < 0 {
		return fees.OperationCost{}, underflow
	}
	if err := trx.Put(subtree, key, &grove.SumItem{Value: next}); nil != err {
		return fees.OperationCost{}, err
	}
	return fees.OperationCost{ProcessedBytes: uint64(len(key) + 10), Seeks: 1}, nil
}

// IdentityInsert - store a new identity with its reverse key lookups
type IdentityInsert struct {
	Identity identity.Identity
}

func (op IdentityInsert) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	id := op.Identity.Id()
	cost, err := putElement(trx, grove.Identities, identityKey(id), &grove.Item{Value: op.Identity.Pack()}, applyMode)
	if nil != err {
		return fees.OperationCost{}, err
	}

	for _, key := range op.Identity.PublicKeys() {
		hash := key.Hash()
		extra, err := putElement(trx, grove.PublicKeyHashesToIdentities, keyHashKey(hash), &grove.Item{Value: id[:]}, applyMode)
		if nil != err {
			return fees.OperationCost{}, err
		}
		cost = combine(cost, extra)
	}
	return cost, nil
}

// IdentityReplace - overwrite a stored identity after an update
type IdentityReplace struct {
	Identity identity.Identity
}

func (op IdentityReplace) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	return putElement(trx, grove.Identities, identityKey(op.Identity.Id()), &grove.Item{Value: op.Identity.Pack()}, applyMode)
}

// KeyHashInsert - register one key hash for reverse lookup
type KeyHashInsert struct {
	Hash [20]byte
	Id   identifier.Identifier
}

func (op KeyHashInsert) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	return putElement(trx, grove.PublicKeyHashesToIdentities, keyHashKey(op.Hash), &grove.Item{Value: op.Id[:]}, applyMode)
}

// KeyHashDelete - drop the reverse lookup of a disabled key
type KeyHashDelete struct {
	Hash [20]byte
}

func (op KeyHashDelete) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	return deleteElement(trx, grove.PublicKeyHashesToIdentities, keyHashKey(op.Hash), applyMode)
}

// BalanceAdd - credit an identity balance
type BalanceAdd struct {
	Id     identifier.Identifier
	Amount credits.Credits
}

func (op BalanceAdd) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	if op.Amount > credits.MaxCredits {
		return fees.OperationCost{}, fault.CreditsOverflow
	}
	return addToSum(trx, grove.Balances, balanceKey(op.Id), int64(op.Amount), fault.IdentityInsufficientBalance, applyMode)
}

// BalanceRemove - debit an identity balance, failing on underflow
type BalanceRemove struct {
	Id     identifier.Identifier
	Amount credits.Credits
}

func (op BalanceRemove) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	if op.Amount > credits.MaxCredits {
		return fees.OperationCost{}, fault.CreditsOverflow
	}
	return addToSum(trx, grove.Balances, balanceKey(op.Id), -int64(op.Amount), fault.IdentityInsufficientBalance, applyMode)
}

// IdentityNonceSet - store the merged identity nonce record
type IdentityNonceSet struct {
	Id    identifier.Identifier
	Nonce uint64
}

func (op IdentityNonceSet) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	return putElement(trx, grove.Misc, identityNonceKey(op.Id), &grove.Item{Value: util.ToVarint64(op.Nonce)}, applyMode)
}

// IdentityContractNonceSet - store the merged per contract nonce record
type IdentityContractNonceSet struct {
	Id         identifier.Identifier
	ContractId identifier.Identifier
	Nonce      uint64
}

func (op IdentityContractNonceSet) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	return putElement(trx, grove.Misc, identityContractNonceKey(op.Id, op.ContractId), &grove.Item{Value: util.ToVarint64(op.Nonce)}, applyMode)
}

// AssetLockMark - burn an asset lock outpoint forever
type AssetLockMark struct {
	Outpoint identifier.Identifier
}

func (op AssetLockMark) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	return putElement(trx, grove.SpentAssetLockTransactions, outpointKey(op.Outpoint), &grove.Item{Value: []byte{1}}, applyMode)
}

// ContractInsert - store a new data contract and its token records
type ContractInsert struct {
	Contract datacontract.DataContract
}

func (op ContractInsert) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	cost, err := putElement(trx, grove.ContractDocuments, contractKey(op.Contract.Id()), &grove.Item{Value: op.Contract.Pack()}, applyMode)
	if nil != err {
		return fees.OperationCost{}, err
	}

	contractId := op.Contract.Id()
	for position, configuration := range op.Contract.Tokens() {
		tokenId := datacontract.TokenId(contractId, position)
		extra, err := putElement(trx, grove.Tokens, tokenConfigKey(tokenId), &grove.Item{Value: datacontract.PackTokenConfiguration(configuration)}, applyMode)
		if nil != err {
			return fees.OperationCost{}, err
		}
		cost = combine(cost, extra)

		if 0 != configuration.BaseSupply {
			extra, err = putElement(trx, grove.Tokens, tokenSupplyKey(tokenId), &grove.Item{Value: util.ToVarint64(configuration.BaseSupply)}, applyMode)
			if nil != err {
				return fees.OperationCost{}, err
			}
			cost = combine(cost, extra)

			extra, err = addToSum(trx, grove.TokenBalances, tokenBalanceKey(tokenId, op.Contract.OwnerId()), int64(configuration.BaseSupply), fault.TokenInsufficientBalance, applyMode)
			if nil != err {
				return fees.OperationCost{}, err
			}
			cost = combine(cost, extra)
		}
	}
	return cost, nil
}

// ContractReplace - overwrite a stored contract after an update
type ContractReplace struct {
	Contract datacontract.DataContract
}

func (op ContractReplace) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	return putElement(trx, grove.ContractDocuments, contractKey(op.Contract.Id()), &grove.Item{Value: op.Contract.Pack()}, applyMode)
}

// IndexEntry - one unique index value combination of a document
type IndexEntry struct {
	IndexName string
	Values    []byte
}

// DocumentInsert - store a new document and claim its index values
type DocumentInsert struct {
	ContractId       identifier.Identifier
	DocumentTypeName string
	Document         document.Document
	IndexEntries     []IndexEntry
}

func (op DocumentInsert) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	recordKey := documentKey(op.ContractId, op.DocumentTypeName, op.Document.Id())
	cost, err := putElement(trx, grove.ContractDocuments, recordKey, &grove.Item{Value: op.Document.Pack()}, applyMode)
	if nil != err {
		return fees.OperationCost{}, err
	}

	for _, entry := range op.IndexEntries {
		reference := &grove.Reference{
			ReferencedSubtree: grove.ContractDocuments,
			ReferencedKey:     recordKey,
		}
		extra, err := putElement(trx, grove.ContractDocuments, indexKey(op.ContractId, op.DocumentTypeName, entry.IndexName, entry.Values), reference, applyMode)
		if nil != err {
			return fees.OperationCost{}, err
		}
		cost = combine(cost, extra)
	}
	return cost, nil
}

// DocumentReplace - overwrite a document, moving changed index values
type DocumentReplace struct {
	ContractId       identifier.Identifier
	DocumentTypeName string
	Document         document.Document
	AddedEntries     []IndexEntry
	RemovedEntries   []IndexEntry
}

func (op DocumentReplace) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	recordKey := documentKey(op.ContractId, op.DocumentTypeName, op.Document.Id())
	cost, err := putElement(trx, grove.ContractDocuments, recordKey, &grove.Item{Value: op.Document.Pack()}, applyMode)
	if nil != err {
		return fees.OperationCost{}, err
	}

	for _, entry := range op.RemovedEntries {
		extra, err := deleteElement(trx, grove.ContractDocuments, indexKey(op.ContractId, op.DocumentTypeName, entry.IndexName, entry.Values), applyMode)
		if nil != err {
			return fees.OperationCost{}, err
		}
		cost = combine(cost, extra)
	}
	for _, entry := range op.AddedEntries {
		reference := &grove.Reference{
			ReferencedSubtree: grove.ContractDocuments,
			ReferencedKey:     recordKey,
		}
		extra, err := putElement(trx, grove.ContractDocuments, indexKey(op.ContractId, op.DocumentTypeName, entry.IndexName, entry.Values), reference, applyMode)
		if nil != err {
			return fees.OperationCost{}, err
		}
		cost = combine(cost, extra)
	}
	return cost, nil
}

// DocumentDelete - remove a document and release its index values
type DocumentDelete struct {
	ContractId       identifier.Identifier
	DocumentTypeName string
	DocumentId       identifier.Identifier
	RemovedEntries   []IndexEntry
}

func (op DocumentDelete) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	cost, err := deleteElement(trx, grove.ContractDocuments, documentKey(op.ContractId, op.DocumentTypeName, op.DocumentId), applyMode)
	if nil != err {
		return fees.OperationCost{}, err
	}
	for _, entry := range op.RemovedEntries {
		extra, err := deleteElement(trx, grove.ContractDocuments, indexKey(op.ContractId, op.DocumentTypeName, entry.IndexName, entry.Values), applyMode)
		if nil != err {
			return fees.OperationCost{}, err
		}
		cost = combine(cost, extra)
	}
	return cost, nil
}

func combine(a fees.OperationCost, b fees.OperationCost) fees.OperationCost {
	return fees.OperationCost{
		InsertedBytes:  a.InsertedBytes + b.InsertedBytes,
		RemovedBytes:   a.RemovedBytes + b.RemovedBytes,
		ProcessedBytes: a.ProcessedBytes + b.ProcessedBytes,
		Seeks:          a.Seeks + b.Seeks,
	}
}
