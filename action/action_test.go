// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package action_test

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/wire"

	"github.com/dashpay/platformd/action"
	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/document"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/transition"
)

// resolver over a fixed contract set
func mapResolver(contracts ...datacontract.DataContract) action.Resolver {
	m := make(map[identifier.Identifier]datacontract.DataContract, len(contracts))
	for _, c := range contracts {
		m[c.Id()] = c
	}
	return func(contractId identifier.Identifier) (datacontract.DataContract, error) {
		c, ok := m[contractId]
		if !ok {
			return nil, fault.DataContractNotFound
		}
		return c, nil
	}
}

func testContract() *datacontract.V1 {
	return &datacontract.V1{
		V0: datacontract.V0{
			ContractId: identifier.Identifier{0x21},
			Owner:      identifier.Identifier{0x22},
			Types: []*datacontract.DocumentType{
				{
					Name: "profile",
					Properties: []datacontract.Property{
						{Name: "name", Type: datacontract.String, Required: true},
					},
				},
			},
		},
		ContractTokens: map[uint16]*datacontract.TokenConfiguration{
			0: {BaseSupply: 100},
		},
	}
}

// serialize a core transaction with the given output values in duffs
func assetLockTransaction(t *testing.T, values ...int64) []byte {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{}, nil, nil))
	for _, value := range values {
		tx.AddTxOut(wire.NewTxOut(value, []byte{0x6a}))
	}
	buffer := new(bytes.Buffer)
	if err := tx.Serialize(buffer); nil != err {
		t.Fatalf("serialize: %v", err)
	}
	return buffer.Bytes()
}

func TestAssetLockFunding(t *testing.T) {
	raw := assetLockTransaction(t, 700, 1500)
	tr := &transition.IdentityTopUp{
		IdentityId: identifier.Identifier{0x31},
		AssetLock: transition.AssetLockProof{
			Kind:        transition.InstantProof,
			Transaction: raw,
			OutputIndex: 1,
		},
	}
	a, err := action.FromTransition(tr, mapResolver(), 0)
	if nil != err {
		t.Fatalf("transform: %v", err)
	}
	topUp := a.(*action.IdentityTopUp)
	if credits.Credits(1500*credits.PerDuff) != topUp.Funding {
		t.Errorf("funding: actual: %d  expected: %d", topUp.Funding, 1500*credits.PerDuff)
	}
	if topUp.Outpoint != tr.AssetLock.Outpoint() {
		t.Errorf("outpoint mismatch")
	}
	if !topUp.Payer().IsZero() {
		t.Errorf("asset lock funded action must have no payer")
	}
}

func TestAssetLockBadOutput(t *testing.T) {
	raw := assetLockTransaction(t, 700)
	tr := &transition.IdentityTopUp{
		IdentityId: identifier.Identifier{0x31},
		AssetLock: transition.AssetLockProof{
			Transaction: raw,
			OutputIndex: 5,
		},
	}
	_, err := action.FromTransition(tr, mapResolver(), 0)
	if fault.AssetLockProofInvalid != err {
		t.Fatalf("out of range output: actual: %v  expected: %v", err, fault.AssetLockProofInvalid)
	}

	tr.AssetLock.Transaction = []byte{0x00, 0x01, 0x02}
	tr.AssetLock.OutputIndex = 0
	_, err = action.FromTransition(tr, mapResolver(), 0)
	if fault.AssetLockProofInvalid != err {
		t.Fatalf("garbage transaction: actual: %v  expected: %v", err, fault.AssetLockProofInvalid)
	}
}

func TestTokenMintDefaultsRecipient(t *testing.T) {
	contract := testContract()
	owner := identifier.Identifier{0x41}
	tr := &transition.TokenMint{
		TokenBase: transition.TokenBase{
			Owner:      owner,
			ContractId: contract.ContractId,
			Nonce:      3,
		},
		Amount: 25,
	}
	a, err := action.FromTransition(tr, mapResolver(contract), 0)
	if nil != err {
		t.Fatalf("transform: %v", err)
	}
	mint := a.(*action.Token)
	if action.Mint != mint.Kind {
		t.Errorf("kind: actual: %d  expected mint", mint.Kind)
	}
	if mint.Recipient != owner {
		t.Errorf("zero recipient must default to the owner")
	}
	if mint.TokenId != datacontract.TokenId(contract.ContractId, 0) {
		t.Errorf("token id mismatch")
	}
	if mint.ContractOwner != contract.Owner {
		t.Errorf("contract owner mismatch")
	}
}

func TestTokenUnknownPosition(t *testing.T) {
	contract := testContract()
	tr := &transition.TokenBurn{
		TokenBase: transition.TokenBase{
			Owner:         identifier.Identifier{0x41},
			ContractId:    contract.ContractId,
			TokenPosition: 7,
		},
		Amount: 1,
	}
	_, err := action.FromTransition(tr, mapResolver(contract), 0)
	if fault.TokenNotFound != err {
		t.Fatalf("actual: %v  expected: %v", err, fault.TokenNotFound)
	}
}

func TestDocumentsBatchCreate(t *testing.T) {
	contract := testContract()
	owner := identifier.Identifier{0x51}
	entropy := []byte{1, 2, 3, 4}
	docId := document.NewId(contract.ContractId, owner, "profile", entropy)

	tr := &transition.DocumentsBatch{
		Owner: owner,
		Transitions: []transition.DocumentTransition{
			{
				Operation:        transition.DocumentCreate,
				DocumentId:       docId,
				ContractId:       contract.ContractId,
				DocumentTypeName: "profile",
				Nonce:            1,
				Entropy:          entropy,
				Data: map[string]document.Value{
					"name": document.StringValue("alice"),
				},
				PrefundedVotingBalance: 90,
			},
		},
	}
	a, err := action.FromTransition(tr, mapResolver(contract), 12345)
	if nil != err {
		t.Fatalf("transform: %v", err)
	}
	batch := a.(*action.DocumentsBatch)
	if 1 != len(batch.Changes) {
		t.Fatalf("changes: actual: %d  expected: 1", len(batch.Changes))
	}
	change := batch.Changes[0]
	if "profile" != change.DocumentType.Name {
		t.Errorf("document type: actual: %q", change.DocumentType.Name)
	}
	if 1 != change.Document.DocumentRevision() {
		t.Errorf("created document revision: actual: %d  expected: 1", change.Document.DocumentRevision())
	}
	if credits.Credits(90) != change.PrefundedVotingBalance {
		t.Errorf("prefunded balance: actual: %d  expected: 90", change.PrefundedVotingBalance)
	}
	if batch.Payer() != owner {
		t.Errorf("payer: actual: %v  expected owner", batch.Payer())
	}
}

func TestDocumentsBatchUnknownType(t *testing.T) {
	contract := testContract()
	tr := &transition.DocumentsBatch{
		Owner: identifier.Identifier{0x51},
		Transitions: []transition.DocumentTransition{
			{
				Operation:        transition.DocumentCreate,
				ContractId:       contract.ContractId,
				DocumentTypeName: "nosuch",
			},
		},
	}
	_, err := action.FromTransition(tr, mapResolver(contract), 0)
	if fault.DocumentTypeNotFound != err {
		t.Fatalf("actual: %v  expected: %v", err, fault.DocumentTypeNotFound)
	}
}

func TestMasternodeVotePollId(t *testing.T) {
	tr := &transition.MasternodeVote{
		ProTxHash:        identifier.Identifier{0x61},
		ContractId:       identifier.Identifier{0x21},
		DocumentTypeName: "profile",
		IndexName:        "name",
		IndexValues:      [][]byte{[]byte("alice")},
		Nonce:            2,
	}
	a, err := action.FromTransition(tr, mapResolver(), 0)
	if nil != err {
		t.Fatalf("transform: %v", err)
	}
	mv := a.(*action.MasternodeVote)
	if mv.Vote.PollId != tr.Poll().Id() {
		t.Errorf("poll id mismatch")
	}
	if mv.Vote.Voter != tr.ProTxHash {
		t.Errorf("voter mismatch")
	}
	if mv.ContractId != tr.ContractId {
		t.Errorf("contract id mismatch")
	}
}
