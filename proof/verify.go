// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package proof

import (
	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/document"
	"github.com/dashpay/platformd/drive"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/identity"
	"github.com/dashpay/platformd/vote"
)

// typed verifiers: each checks the proof against the root, then
// decodes the proved value into its domain record; a proof whose value
// does not decode to the expected record kind is rejected

// VerifyIdentity - prove an identity record, nil when absent
func VerifyIdentity(proofBytes []byte, root grove.Digest, id identifier.Identifier) (identity.Identity, error) {
	value, present, err := Verify(proofBytes, root, grove.Identities, drive.IdentityKey(id))
	if nil != err {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	item, err := provedItem(value)
	if nil != err {
		return nil, err
	}
	record, err := identity.Unpack(item)
	if nil != err {
		return nil, fault.UnexpectedResultProof
	}
	if record.Id() != id {
		return nil, fault.UnexpectedResultProof
	}
	return record, nil
}

// VerifyIdentityBalance - prove a credit balance; absent proves zero
func VerifyIdentityBalance(proofBytes []byte, root grove.Digest, id identifier.Identifier) (credits.Credits, error) {
	value, present, err := Verify(proofBytes, root, grove.Balances, drive.BalanceKey(id))
	if nil != err {
		return 0, err
	}
	if !present {
		return 0, nil
	}
	return provedSum(value)
}

// VerifyDataContract - prove a contract record, nil when absent
func VerifyDataContract(proofBytes []byte, root grove.Digest, contractId identifier.Identifier) (datacontract.DataContract, error) {
	value, present, err := Verify(proofBytes, root, grove.ContractDocuments, drive.ContractKey(contractId))
	if nil != err {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	item, err := provedItem(value)
	if nil != err {
		return nil, err
	}
	contract, err := datacontract.Unpack(item)
	if nil != err {
		return nil, fault.UnexpectedResultProof
	}
	if contract.Id() != contractId {
		return nil, fault.UnexpectedResultProof
	}
	return contract, nil
}

// VerifyDocument - prove a document record, nil when absent
func VerifyDocument(proofBytes []byte, root grove.Digest, contractId identifier.Identifier, documentTypeName string, documentId identifier.Identifier) (document.Document, error) {
	key := drive.DocumentKey(contractId, documentTypeName, documentId)
	value, present, err := Verify(proofBytes, root, grove.ContractDocuments, key)
	if nil != err {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	item, err := provedItem(value)
	if nil != err {
		return nil, err
	}
	record, err := document.Unpack(item)
	if nil != err {
		return nil, fault.UnexpectedResultProof
	}
	if record.Id() != documentId {
		return nil, fault.UnexpectedResultProof
	}
	return record, nil
}

// VerifyTokenBalance - prove a token balance; absent proves zero
func VerifyTokenBalance(proofBytes []byte, root grove.Digest, tokenId identifier.Identifier, id identifier.Identifier) (uint64, error) {
	key := drive.TokenBalanceKey(tokenId, id)
	value, present, err := Verify(proofBytes, root, grove.TokenBalances, key)
	if nil != err {
		return 0, err
	}
	if !present {
		return 0, nil
	}
	balance, err := provedSum(value)
	return uint64(balance), err
}

// VerifyVotePoll - prove a vote poll record, nil when absent
func VerifyVotePoll(proofBytes []byte, root grove.Digest, pollId identifier.Identifier) (*vote.ContestedDocumentResourceVotePoll, error) {
	value, present, err := Verify(proofBytes, root, grove.Votes, drive.PollKey(pollId))
	if nil != err {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	item, err := provedItem(value)
	if nil != err {
		return nil, err
	}
	poll, err := vote.UnpackPoll(item)
	if nil != err {
		return nil, fault.UnexpectedResultProof
	}
	return poll, nil
}

func provedItem(value []byte) ([]byte, error) {
	element, err := grove.UnpackElement(value)
	if nil != err {
		return nil, fault.UnexpectedResultProof
	}
	item, ok := element.(*grove.Item)
	if !ok {
		return nil, fault.UnexpectedResultProof
	}
	return item.Value, nil
}

func provedSum(value []byte) (credits.Credits, error) {
	element, err := grove.UnpackElement(value)
	if nil != err {
		return 0, fault.UnexpectedResultProof
	}
	sum, ok := element.(*grove.SumItem)
	if !ok {
		return 0, fault.UnexpectedResultProof
	}
	if sum.Value < 0 {
		return 0, fault.UnexpectedResultProof
	}
	return credits.Credits(sum.Value), nil
}
