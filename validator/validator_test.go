// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package validator_test

import (
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/logger"

	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/drive"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/identity"
	"github.com/dashpay/platformd/platformversion"
	"github.com/dashpay/platformd/transition"
	"github.com/dashpay/platformd/validator"
	"github.com/dashpay/platformd/vote"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "validator-test")
	if nil != err {
		os.Exit(1)
	}

	logging := logger.Configuration{
		Directory: dir,
		File:      "validator.log",
		Size:      1048576,
		Count:     10,
		Levels: map[string]string{
			logger.DefaultTag: "error",
		},
	}
	if err := logger.Initialise(logging); nil != err {
		os.RemoveAll(dir)
		os.Exit(1)
	}

	if err := grove.Initialise(filepath.Join(dir, "test"), false); nil != err {
		os.RemoveAll(dir)
		os.Exit(1)
	}
	rc := m.Run()
	grove.Finalise()
	os.RemoveAll(dir)
	os.Exit(rc)
}

// nonce merging

func TestMergeNonceShape(t *testing.T) {
	_, err := validator.MergeNonce(0, false, 0, platformversion.Latest)
	if fault.InvalidNonce != err {
		t.Errorf("zero: actual: %v  expected: %v", err, fault.InvalidNonce)
	}
	_, err = validator.MergeNonce(0, false, uint64(1)<<40, platformversion.Latest)
	if fault.InvalidNonce != err {
		t.Errorf("overflow: actual: %v  expected: %v", err, fault.InvalidNonce)
	}
}

func TestMergeNonceFresh(t *testing.T) {
	merged, err := validator.MergeNonce(0, false, 1, platformversion.Latest)
	if nil != err {
		t.Fatalf("fresh: %v", err)
	}
	if 1 != merged {
		t.Errorf("fresh record: actual: %x  expected: 1", merged)
	}

	_, err = validator.MergeNonce(0, false, 26, platformversion.Latest)
	if fault.NonceTooFarInFuture != err {
		t.Errorf("fresh too far: actual: %v  expected: %v", err, fault.NonceTooFarInFuture)
	}
}

func TestMergeNonceOutOfOrder(t *testing.T) {
	record, err := validator.MergeNonce(0, false, 5, platformversion.Latest)
	if nil != err {
		t.Fatalf("start: %v", err)
	}

	// jump ahead, skipping 6 and 7
	record, err = validator.MergeNonce(record, true, 8, platformversion.Latest)
	if nil != err {
		t.Fatalf("jump: %v", err)
	}

	_, err = validator.MergeNonce(record, true, 8, platformversion.Latest)
	if fault.NonceAlreadyPresentAtTip != err {
		t.Errorf("tip replay: actual: %v  expected: %v", err, fault.NonceAlreadyPresentAtTip)
	}

	// the skipped nonce arrives late, exactly once
	record, err = validator.MergeNonce(record, true, 7, platformversion.Latest)
	if nil != err {
		t.Fatalf("late arrival: %v", err)
	}
	_, err = validator.MergeNonce(record, true, 7, platformversion.Latest)
	if fault.NonceAlreadyPresentInPast != err {
		t.Errorf("late replay: actual: %v  expected: %v", err, fault.NonceAlreadyPresentInPast)
	}

	record, err = validator.MergeNonce(record, true, 6, platformversion.Latest)
	if nil != err {
		t.Fatalf("second late arrival: %v", err)
	}

	// 5 was the original tip, it was never missing
	_, err = validator.MergeNonce(record, true, 5, platformversion.Latest)
	if fault.NonceAlreadyPresentInPast != err {
		t.Errorf("old tip replay: actual: %v  expected: %v", err, fault.NonceAlreadyPresentInPast)
	}
}

func TestMergeNonceWindow(t *testing.T) {
	record, err := validator.MergeNonce(0, false, 10, platformversion.Latest)
	if nil != err {
		t.Fatalf("start: %v", err)
	}
	record, err = validator.MergeNonce(record, true, 30, platformversion.Latest)
	if nil != err {
		t.Fatalf("advance: %v", err)
	}

	_, err = validator.MergeNonce(record, true, 2, platformversion.Latest)
	if fault.NonceTooFarInPast != err {
		t.Errorf("behind window: actual: %v  expected: %v", err, fault.NonceTooFarInPast)
	}
	_, err = validator.MergeNonce(record, true, 55, platformversion.Latest)
	if fault.NonceTooFarInFuture != err {
		t.Errorf("ahead of window: actual: %v  expected: %v", err, fault.NonceTooFarInFuture)
	}
}

// the bitmap tracks 24 missing nonces below the tip, so a distance of
// exactly 24 in either direction is already outside the window
func TestMergeNonceWindowEdge(t *testing.T) {
	record, err := validator.MergeNonce(0, false, 23, platformversion.Latest)
	if nil != err {
		t.Fatalf("distance 23 ahead must merge: %v", err)
	}
	if 0 == record {
		t.Fatalf("merged record must not be empty")
	}

	_, err = validator.MergeNonce(0, false, 24, platformversion.Latest)
	if fault.NonceTooFarInFuture != err {
		t.Errorf("distance 24 ahead: actual: %v  expected: %v", err, fault.NonceTooFarInFuture)
	}

	record, err = validator.MergeNonce(0, false, 10, platformversion.Latest)
	if nil != err {
		t.Fatalf("start: %v", err)
	}
	record, err = validator.MergeNonce(record, true, 30, platformversion.Latest)
	if nil != err {
		t.Fatalf("advance: %v", err)
	}

	_, err = validator.MergeNonce(record, true, 6, platformversion.Latest)
	if fault.NonceTooFarInPast != err {
		t.Errorf("distance 24 behind: actual: %v  expected: %v", err, fault.NonceTooFarInPast)
	}
	if _, err = validator.MergeNonce(record, true, 11, platformversion.Latest); nil != err {
		t.Errorf("distance 19 behind must merge: %v", err)
	}
}

// structure validation

func TestStructureTokenNote(t *testing.T) {
	mint := &transition.TokenMint{
		TokenBase: transition.TokenBase{
			Owner:      identifier.New([]byte("owner")),
			ContractId: identifier.New([]byte("contract")),
			Nonce:      1,
			Note:       string(bytes.Repeat([]byte{'x'}, 2049)),
			Signature:  bytes.Repeat([]byte{0x01}, 64),
		},
		Amount: 100,
	}
	result, err := validator.ValidateStructure(mint, platformversion.Latest)
	if nil != err {
		t.Fatalf("validate: %v", err)
	}
	if result.IsValid() {
		t.Fatalf("overlong note must fail")
	}
	if fault.TokenNoteTooLong != result.FirstError() {
		t.Errorf("actual: %v  expected: %v", result.FirstError(), fault.TokenNoteTooLong)
	}
	if fault.Code(fault.TokenNoteTooLong) != result.Code() {
		t.Errorf("code mapping is wrong")
	}
}

func TestStructureTokenBurnAmount(t *testing.T) {
	base := transition.TokenBase{
		Owner:      identifier.New([]byte("burn owner")),
		ContractId: identifier.New([]byte("burn contract")),
		Nonce:      1,
		Signature:  bytes.Repeat([]byte{0x01}, 64),
	}

	for _, amount := range []uint64{0, datacontract.MaxDistributionParam + 1} {
		burn := &transition.TokenBurn{TokenBase: base, Amount: amount}
		result, err := validator.ValidateStructure(burn, platformversion.Latest)
		if nil != err {
			t.Fatalf("validate: %v", err)
		}
		if fault.InvalidTokenAmount != result.FirstError() {
			t.Errorf("amount %d: actual: %v  expected: %v", amount, result.FirstError(), fault.InvalidTokenAmount)
		}
	}

	burn := &transition.TokenBurn{TokenBase: base, Amount: 1}
	result, err := validator.ValidateStructure(burn, platformversion.Latest)
	if nil != err {
		t.Fatalf("validate: %v", err)
	}
	if !result.IsValid() {
		t.Errorf("unit burn must pass: %v", result.FirstError())
	}
}

func TestStructureMissingMasterKey(t *testing.T) {
	create := &transition.IdentityCreate{
		IdentityId: identifier.New([]byte("identity")),
		AssetLock: transition.AssetLockProof{
			Kind:        transition.InstantProof,
			Transaction: []byte{0x01},
			InstantLock: []byte{0x02},
		},
		PublicKeys: []identity.PublicKey{
			&identity.KeyV0{
				Id:            0,
				Purpose:       identity.Transfer,
				SecurityLevel: identity.Critical,
				Type:          identity.Ed25519,
				Data:          bytes.Repeat([]byte{0x11}, 32),
			},
		},
		Signature: bytes.Repeat([]byte{0x01}, 64),
	}
	result, err := validator.ValidateStructure(create, platformversion.Latest)
	if nil != err {
		t.Fatalf("validate: %v", err)
	}
	if fault.MissingMasterKey != result.FirstError() {
		t.Errorf("actual: %v  expected: %v", result.FirstError(), fault.MissingMasterKey)
	}
}

func TestStructureWithdrawalScript(t *testing.T) {
	withdrawal := &transition.IdentityCreditWithdrawal{
		IdentityId: identifier.New([]byte("identity")),
		Amount:     1000,
		Nonce:      1,
		Signature:  bytes.Repeat([]byte{0x01}, 64),
	}
	result, err := validator.ValidateStructure(withdrawal, platformversion.Latest)
	if nil != err {
		t.Fatalf("validate: %v", err)
	}
	if fault.WithdrawalOutputScriptInvalid != result.FirstError() {
		t.Errorf("actual: %v  expected: %v", result.FirstError(), fault.WithdrawalOutputScriptInvalid)
	}
}

func TestStructureValidTransfer(t *testing.T) {
	transfer := &transition.IdentityCreditTransfer{
		IdentityId: identifier.New([]byte("sender")),
		Recipient:  identifier.New([]byte("recipient")),
		Amount:     1000,
		Nonce:      1,
		Signature:  bytes.Repeat([]byte{0x01}, 64),
	}
	result, err := validator.ValidateStructure(transfer, platformversion.Latest)
	if nil != err {
		t.Fatalf("validate: %v", err)
	}
	if !result.IsValid() {
		t.Errorf("well formed transfer must pass: %v", result.FirstError())
	}
	if 0 != result.Code() {
		t.Errorf("valid result must map to code 0")
	}
}

// a manifest naming an implementation this binary does not carry must
// abort with a fatal error, never fall through to version zero
func TestVersionMismatchIsFatal(t *testing.T) {
	transfer := &transition.IdentityCreditTransfer{
		IdentityId: identifier.New([]byte("versioned sender")),
		Recipient:  identifier.New([]byte("versioned recipient")),
		Amount:     1000,
		Nonce:      1,
		Signature:  bytes.Repeat([]byte{0x01}, 64),
	}

	wireMismatch := &platformversion.PlatformVersion{}
	wireMismatch.DPP.TransitionWireFormat = 9
	result, err := validator.ValidateStructure(transfer, wireMismatch)
	if nil == err {
		t.Fatalf("unknown wire format must be fatal")
	}
	if nil != result {
		t.Errorf("fatal mismatch must not produce a result")
	}
	if fault.IsConsensus(err) {
		t.Errorf("version mismatch must not be a consensus error: %v", err)
	}

	trx, err := grove.NewTransaction()
	if nil != err {
		t.Fatalf("begin: %v", err)
	}
	defer trx.Rollback()

	stateMismatch := &platformversion.PlatformVersion{}
	stateMismatch.Validation.CreditTransfer = 9
	result, err = validator.ValidateState(trx, transfer, 0, stateMismatch)
	if nil == err {
		t.Fatalf("unknown validator version must be fatal")
	}
	if nil != result {
		t.Errorf("fatal mismatch must not produce a result")
	}

	mergeMismatch := &platformversion.PlatformVersion{}
	mergeMismatch.Validation.NonceMerge = 9
	if _, err = validator.MergeNonce(0, false, 1, mergeMismatch); nil == err {
		t.Fatalf("unknown nonce merge version must be fatal")
	}
}

// state validation

type testIdentity struct {
	id      identifier.Identifier
	private ed25519.PrivateKey
}

// store an identity with one master key and a credit balance
func storeIdentity(t *testing.T, trx *grove.Transaction, seed string, balance uint64) *testIdentity {
	t.Helper()

	public, private, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		t.Fatalf("generate key: %v", err)
	}
	key := &identity.KeyV0{
		Id:            0,
		Purpose:       identity.Authentication,
		SecurityLevel: identity.Master,
		Type:          identity.Ed25519,
		Data:          public,
	}

	id := identifier.New([]byte(seed))
	stored, err := identity.NewV0(id, []identity.PublicKey{key}, 0)
	if nil != err {
		t.Fatalf("new identity: %v", err)
	}

	operations := []drive.Operation{
		drive.IdentityInsert{Identity: stored},
		drive.BalanceAdd{Id: id, Amount: credits.Credits(balance)},
	}
	if _, err := drive.Apply(trx, operations, true); nil != err {
		t.Fatalf("store identity: %v", err)
	}
	return &testIdentity{id: id, private: private}
}

func TestStateTransferInsufficientBalance(t *testing.T) {
	trx, err := grove.NewTransaction()
	if nil != err {
		t.Fatalf("begin: %v", err)
	}
	defer trx.Rollback()

	sender := storeIdentity(t, trx, "state sender", 500)
	recipient := storeIdentity(t, trx, "state recipient", 0)

	transfer := &transition.IdentityCreditTransfer{
		IdentityId: sender.id,
		Recipient:  recipient.id,
		Amount:     1000,
		Nonce:      1,
	}
	transfer.Signature = ed25519.Sign(sender.private, transfer.SignableBytes())

	result, err := validator.ValidateState(trx, transfer, 0, platformversion.Latest)
	if nil != err {
		t.Fatalf("validate: %v", err)
	}
	if fault.IdentityInsufficientBalance != result.FirstError() {
		t.Errorf("actual: %v  expected: %v", result.FirstError(), fault.IdentityInsufficientBalance)
	}
}

func TestStateNonceReplay(t *testing.T) {
	trx, err := grove.NewTransaction()
	if nil != err {
		t.Fatalf("begin: %v", err)
	}
	defer trx.Rollback()

	sender := storeIdentity(t, trx, "replay sender", 5000)
	recipient := storeIdentity(t, trx, "replay recipient", 0)

	if _, err := drive.Apply(trx, []drive.Operation{
		drive.IdentityNonceSet{Id: sender.id, Nonce: 1},
	}, true); nil != err {
		t.Fatalf("seed nonce: %v", err)
	}

	transfer := &transition.IdentityCreditTransfer{
		IdentityId: sender.id,
		Recipient:  recipient.id,
		Amount:     100,
		Nonce:      1,
	}
	transfer.Signature = ed25519.Sign(sender.private, transfer.SignableBytes())

	result, err := validator.ValidateState(trx, transfer, 0, platformversion.Latest)
	if nil != err {
		t.Fatalf("validate: %v", err)
	}
	if fault.NonceAlreadyPresentAtTip != result.FirstError() {
		t.Errorf("actual: %v  expected: %v", result.FirstError(), fault.NonceAlreadyPresentAtTip)
	}
}

func TestStateBadSignature(t *testing.T) {
	trx, err := grove.NewTransaction()
	if nil != err {
		t.Fatalf("begin: %v", err)
	}
	defer trx.Rollback()

	sender := storeIdentity(t, trx, "forged sender", 5000)
	recipient := storeIdentity(t, trx, "forged recipient", 0)

	transfer := &transition.IdentityCreditTransfer{
		IdentityId: sender.id,
		Recipient:  recipient.id,
		Amount:     100,
		Nonce:      1,
		Signature:  bytes.Repeat([]byte{0x42}, 64),
	}

	result, err := validator.ValidateState(trx, transfer, 0, platformversion.Latest)
	if nil != err {
		t.Fatalf("validate: %v", err)
	}
	if fault.SignatureNotVerifiable != result.FirstError() {
		t.Errorf("actual: %v  expected: %v", result.FirstError(), fault.SignatureNotVerifiable)
	}
}

func TestStateIdentityCreateReplay(t *testing.T) {
	trx, err := grove.NewTransaction()
	if nil != err {
		t.Fatalf("begin: %v", err)
	}
	defer trx.Rollback()

	assetLock := transition.AssetLockProof{
		Kind:        transition.InstantProof,
		Transaction: []byte("replayed core transaction"),
		OutputIndex: 0,
		InstantLock: []byte{0x01},
	}
	outpoint := assetLock.Outpoint()
	identityId := identifier.NewDerived(outpoint[:])

	if _, err := drive.Apply(trx, []drive.Operation{
		drive.AssetLockMark{Outpoint: outpoint},
	}, true); nil != err {
		t.Fatalf("mark outpoint: %v", err)
	}

	create := &transition.IdentityCreate{
		IdentityId: identityId,
		AssetLock:  assetLock,
		PublicKeys: []identity.PublicKey{
			&identity.KeyV0{
				Id:            0,
				Purpose:       identity.Authentication,
				SecurityLevel: identity.Master,
				Type:          identity.Ed25519,
				Data:          bytes.Repeat([]byte{0x11}, 32),
			},
		},
		Signature: bytes.Repeat([]byte{0x01}, 64),
	}

	result, err := validator.ValidateState(trx, create, 0, platformversion.Latest)
	if nil != err {
		t.Fatalf("validate: %v", err)
	}
	if fault.AssetLockAlreadySpent != result.FirstError() {
		t.Errorf("actual: %v  expected: %v", result.FirstError(), fault.AssetLockAlreadySpent)
	}
}

func TestStateTokenBurnInsufficientBalance(t *testing.T) {
	trx, err := grove.NewTransaction()
	if nil != err {
		t.Fatalf("begin: %v", err)
	}
	defer trx.Rollback()

	burner := storeIdentity(t, trx, "token burner", 5000)

	contractId := identifier.New([]byte("burn state contract"))
	configuration := &datacontract.TokenConfiguration{}
	configuration.Manager.Burn = datacontract.ActionTaker{Kind: datacontract.ContractOwner}
	contract := &datacontract.V1{
		V0: datacontract.V0{
			ContractId: contractId,
			Owner:      burner.id,
		},
		ContractTokens: map[uint16]*datacontract.TokenConfiguration{
			0: configuration,
		},
	}

	tokenId := datacontract.TokenId(contractId, 0)
	if _, err := drive.Apply(trx, []drive.Operation{
		drive.ContractInsert{Contract: contract},
		drive.TokenBalanceAdd{TokenId: tokenId, Id: burner.id, Delta: 50},
	}, true); nil != err {
		t.Fatalf("seed token: %v", err)
	}

	burn := &transition.TokenBurn{
		TokenBase: transition.TokenBase{
			Owner:      burner.id,
			ContractId: contractId,
			Nonce:      1,
		},
		Amount: 100,
	}
	burn.Signature = ed25519.Sign(burner.private, burn.SignableBytes())

	result, err := validator.ValidateState(trx, burn, 0, platformversion.Latest)
	if nil != err {
		t.Fatalf("validate: %v", err)
	}
	if fault.TokenInsufficientBalance != result.FirstError() {
		t.Errorf("actual: %v  expected: %v", result.FirstError(), fault.TokenInsufficientBalance)
	}
}

func TestStateVoteAfterContestEnds(t *testing.T) {
	trx, err := grove.NewTransaction()
	if nil != err {
		t.Fatalf("begin: %v", err)
	}
	defer trx.Rollback()

	voter := storeIdentity(t, trx, "late masternode", 5000)

	contractId := identifier.New([]byte("late vote contract"))
	indexValues := [][]byte{[]byte("scarce label")}
	poll := &vote.ContestedDocumentResourceVotePoll{
		ContractId:       contractId,
		DocumentTypeName: "domain",
		IndexName:        "byLabel",
		IndexValues:      indexValues,
		EndsAt:           1000,
	}
	if _, err := drive.Apply(trx, []drive.Operation{
		drive.PollInsert{Poll: poll},
	}, true); nil != err {
		t.Fatalf("seed poll: %v", err)
	}

	ballot := &transition.MasternodeVote{
		ProTxHash:        voter.id,
		ContractId:       contractId,
		DocumentTypeName: "domain",
		IndexName:        "byLabel",
		IndexValues:      indexValues,
		Choice:           vote.ResourceVoteChoice{Kind: vote.Abstain},
		Nonce:            1,
	}
	ballot.Signature = ed25519.Sign(voter.private, ballot.SignableBytes())

	// block time already past the poll window
	result, err := validator.ValidateState(trx, ballot, 2000, platformversion.Latest)
	if nil != err {
		t.Fatalf("validate: %v", err)
	}
	if fault.DocumentContestNotJoinable != result.FirstError() {
		t.Errorf("actual: %v  expected: %v", result.FirstError(), fault.DocumentContestNotJoinable)
	}
}
