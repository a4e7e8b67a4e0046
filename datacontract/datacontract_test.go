// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package datacontract_test

import (
	"reflect"
	"testing"

	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/identifier"
)

func makeContractV0() *datacontract.V0 {
	return &datacontract.V0{
		ContractId: identifier.New([]byte("contract")),
		Owner:      identifier.New([]byte("owner")),
		Revision:   1,
		History:    false,
		Types: []*datacontract.DocumentType{
			{
				Name: "note",
				Properties: []datacontract.Property{
					{Name: "message", Type: datacontract.String, Required: true, MaxLength: 256},
					{Name: "author", Type: datacontract.IdentifierField, Immutable: true},
				},
				Indices: []datacontract.Index{
					{Name: "byAuthor", Properties: []string{"author"}},
				},
				CanBeDeleted: true,
			},
		},
	}
}

func makeContractV1() *datacontract.V1 {
	mcg := uint16(0)
	contract := &datacontract.V1{
		V0: datacontract.V0{
			ContractId: identifier.New([]byte("token contract")),
			Owner:      identifier.New([]byte("owner")),
			Revision:   1,
			Types: []*datacontract.DocumentType{
				{
					Name: "domain",
					Properties: []datacontract.Property{
						{Name: "label", Type: datacontract.String, Required: true, MaxLength: 63},
					},
					Indices: []datacontract.Index{
						{
							Name:       "byLabel",
							Properties: []string{"label"},
							Unique:     true,
							Contested: &datacontract.ContestedRules{
								MatchPrefix:      "",
								MainControlGroup: &mcg,
							},
						},
					},
				},
			},
		},
		ContractGroups: map[uint16]*datacontract.Group{
			0: {
				Members: map[identifier.Identifier]uint32{
					identifier.New([]byte("alice")): 2,
					identifier.New([]byte("bob")):   1,
				},
				RequiredPower: 2,
			},
		},
		ContractTokens: map[uint16]*datacontract.TokenConfiguration{
			0: {
				BaseSupply:      1000000,
				MaxSupply:       2000000,
				PricingSchedule: map[uint64]uint64{1: 50, 100: 40},
			},
		},
	}
	tc := contract.ContractTokens[0]
	tc.Manager.Mint = datacontract.ActionTaker{Kind: datacontract.ContractOwner}
	tc.Manager.Burn = datacontract.ActionTaker{Kind: datacontract.ContractOwner}
	tc.Manager.Freeze = datacontract.ActionTaker{Kind: datacontract.MainGroup}
	tc.Manager.Unfreeze = datacontract.ActionTaker{Kind: datacontract.MainGroup}
	tc.Manager.EmergencyAction = datacontract.ActionTaker{Kind: datacontract.NoOne}
	tc.Manager.ConfigUpdate = datacontract.ActionTaker{Kind: datacontract.NoOne}
	tc.Distribution.Perpetual = &datacontract.PerpetualDistribution{
		Amount:         100,
		IntervalBlocks: 10,
		Recipient:      identifier.New([]byte("treasury")),
	}
	tc.Distribution.PreProgrammed = &datacontract.PreProgrammedDistribution{
		Releases: map[uint64]map[identifier.Identifier]uint64{
			1700000000000: {
				identifier.New([]byte("alice")): 500,
			},
		},
	}
	return contract
}

func TestPackUnpackRoundTripV0(t *testing.T) {
	original := makeContractV0()
	restored, err := datacontract.Unpack(original.Pack())
	if nil != err {
		t.Fatalf("unpack: %v", err)
	}
	if !reflect.DeepEqual(original, restored) {
		t.Errorf("round trip mismatch\nactual:   %#v\nexpected: %#v", restored, original)
	}
}

func TestPackUnpackRoundTripV1(t *testing.T) {
	original := makeContractV1()
	restored, err := datacontract.Unpack(original.Pack())
	if nil != err {
		t.Fatalf("unpack: %v", err)
	}
	if !reflect.DeepEqual(original, restored) {
		t.Errorf("round trip mismatch\nactual:   %#v\nexpected: %#v", restored, original)
	}
}

func TestPackIsDeterministic(t *testing.T) {
	first := makeContractV1().Pack()
	second := makeContractV1().Pack()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("packing the same contract twice must give identical bytes")
	}
}

func TestUnpackRejectsCorruptedBuffers(t *testing.T) {
	packed := makeContractV1().Pack()
	for i := 0; i < len(packed); i += 1 {
		_, err := datacontract.Unpack(packed[:i])
		if nil == err {
			t.Errorf("truncated at %d: expected error", i)
		}
	}
	_, err := datacontract.Unpack(append(packed, 0x00))
	if nil == err {
		t.Errorf("trailing bytes must be rejected")
	}

	_, err = datacontract.Unpack([]byte{0x07})
	if _, ok := err.(fault.UnknownVersionMismatch); !ok {
		t.Errorf("actual: %v  expected UnknownVersionMismatch", err)
	}
}

func TestValidateIndexProperties(t *testing.T) {
	contract := makeContractV0()
	if err := contract.Validate(); nil != err {
		t.Fatalf("validate: %v", err)
	}

	contract.Types[0].Indices = append(contract.Types[0].Indices, datacontract.Index{
		Name:       "broken",
		Properties: []string{"missing"},
	})
	if fault.DocumentFieldUnknown != contract.Validate() {
		t.Errorf("index on undefined property must fail")
	}
}

func TestValidateContestedControlGroup(t *testing.T) {
	contract := makeContractV1()
	if err := contract.Validate(); nil != err {
		t.Fatalf("validate: %v", err)
	}

	delete(contract.ContractGroups, 0)
	if fault.IndexMissingControlGroup != contract.Validate() {
		t.Errorf("contested index without its control group must fail")
	}
}

func TestValidateTokenBounds(t *testing.T) {
	contract := makeContractV1()
	contract.ContractTokens[0].MaxSupply = 500 // below base supply
	if fault.InvalidTokenAmount != contract.Validate() {
		t.Errorf("max supply below base supply must fail")
	}
}

func TestGroupThreshold(t *testing.T) {
	group := &datacontract.Group{
		Members: map[identifier.Identifier]uint32{
			identifier.New([]byte("alice")): 2,
			identifier.New([]byte("bob")):   1,
		},
		RequiredPower: 3,
	}

	alice := identifier.New([]byte("alice"))
	bob := identifier.New([]byte("bob"))
	outsider := identifier.New([]byte("carol"))

	if group.Reached([]identifier.Identifier{alice}) {
		t.Errorf("2 of 3 must not reach threshold")
	}
	if !group.Reached([]identifier.Identifier{alice, bob}) {
		t.Errorf("3 of 3 must reach threshold")
	}
	if group.Reached([]identifier.Identifier{alice, alice}) {
		t.Errorf("duplicate approvers must only count once")
	}
	if group.Reached([]identifier.Identifier{outsider, bob}) {
		t.Errorf("non members contribute no power")
	}
}

func TestActionTakerPolicies(t *testing.T) {
	owner := identifier.New([]byte("owner"))
	other := identifier.New([]byte("other"))

	noOne := &datacontract.ActionTaker{Kind: datacontract.NoOne}
	if noOne.Allows(owner, owner, true) {
		t.Errorf("no one policy must reject everyone")
	}

	ownerOnly := &datacontract.ActionTaker{Kind: datacontract.ContractOwner}
	if !ownerOnly.Allows(owner, owner, false) || ownerOnly.Allows(other, owner, false) {
		t.Errorf("owner policy must admit exactly the owner")
	}

	specified := &datacontract.ActionTaker{Kind: datacontract.SpecifiedIdentity, Identity: other}
	if !specified.Allows(other, owner, false) || specified.Allows(owner, owner, false) {
		t.Errorf("specified identity policy must admit exactly that identity")
	}

	group := &datacontract.ActionTaker{Kind: datacontract.MainGroup}
	if !group.Allows(other, owner, true) || group.Allows(other, owner, false) {
		t.Errorf("group policy follows completed group approval")
	}
}

func TestPriceForSchedule(t *testing.T) {
	tc := &datacontract.TokenConfiguration{
		PricingSchedule: map[uint64]uint64{1: 50, 100: 40, 1000: 30},
	}

	testCases := []struct {
		amount uint64
		price  uint64
		found  bool
	}{
		{0, 0, false},
		{1, 50, true},
		{99, 50, true},
		{100, 40, true},
		{5000, 30, true},
	}
	for _, testCase := range testCases {
		price, found := tc.PriceFor(testCase.amount)
		if price != testCase.price || found != testCase.found {
			t.Errorf("PriceFor(%d): actual: %d, %v  expected: %d, %v",
				testCase.amount, price, found, testCase.price, testCase.found)
		}
	}

	empty := &datacontract.TokenConfiguration{}
	if _, found := empty.PriceFor(10); found {
		t.Errorf("token without schedule is not purchasable")
	}
}

func TestCheckUpdateCompatibility(t *testing.T) {
	stored := makeContractV0()

	compatible := makeContractV0()
	compatible.Revision = 2
	compatible.Types[0].Properties = append(compatible.Types[0].Properties,
		datacontract.Property{Name: "tag", Type: datacontract.String})
	if err := datacontract.CheckUpdate(stored, compatible); nil != err {
		t.Errorf("adding an optional property must be allowed: %v", err)
	}

	wrongRevision := makeContractV0()
	wrongRevision.Revision = 3
	if fault.DataContractRevisionMismatch != datacontract.CheckUpdate(stored, wrongRevision) {
		t.Errorf("revision must advance by exactly one")
	}

	retyped := makeContractV0()
	retyped.Revision = 2
	retyped.Types[0].Properties[0].Type = datacontract.Bytes
	if fault.DataContractUpdateIncompatible != datacontract.CheckUpdate(stored, retyped) {
		t.Errorf("changing a property type must fail")
	}

	removed := makeContractV0()
	removed.Revision = 2
	removed.Types = nil
	if fault.DataContractUpdateIncompatible != datacontract.CheckUpdate(stored, removed) {
		t.Errorf("removing a document type must fail")
	}

	newUnique := makeContractV0()
	newUnique.Revision = 2
	newUnique.Types[0].Indices = append(newUnique.Types[0].Indices, datacontract.Index{
		Name:       "byMessage",
		Properties: []string{"message"},
		Unique:     true,
	})
	if fault.DataContractUpdateIncompatible != datacontract.CheckUpdate(stored, newUnique) {
		t.Errorf("adding a unique index to an existing type must fail")
	}

	newRequired := makeContractV0()
	newRequired.Revision = 2
	newRequired.Types[0].Properties = append(newRequired.Types[0].Properties,
		datacontract.Property{Name: "stamp", Type: datacontract.Integer, Required: true})
	if fault.DataContractUpdateIncompatible != datacontract.CheckUpdate(stored, newRequired) {
		t.Errorf("adding a required property to an existing type must fail")
	}
}

func TestTokenIdDerivation(t *testing.T) {
	contractId := identifier.New([]byte("contract"))
	first := datacontract.TokenId(contractId, 0)
	second := datacontract.TokenId(contractId, 1)
	if first == second {
		t.Errorf("different positions must derive different token ids")
	}
	if first != datacontract.TokenId(contractId, 0) {
		t.Errorf("token id derivation must be deterministic")
	}
}
