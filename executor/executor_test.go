// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package executor_test

import (
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/logger"
	"github.com/btcsuite/btcd/wire"

	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/document"
	"github.com/dashpay/platformd/drive"
	"github.com/dashpay/platformd/executor"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/identity"
	"github.com/dashpay/platformd/platformversion"
	"github.com/dashpay/platformd/transition"
	"github.com/dashpay/platformd/vote"
)

// every block of the suite uses the same proposer so the epoch
// rollover at the end pays out to a single known identity
var blockProposer = identifier.Identifier{0xaa}

// stand-in core chain daemon; flags select the failure to simulate
type coreChainStub struct {
	rejectLocks bool
	unavailable bool
}

func (c *coreChainStub) VerifyInstantLock(lock []byte) (bool, error) {
	if c.unavailable {
		return false, fault.CoreChainRPCFailed
	}
	return !c.rejectLocks, nil
}

func (c *coreChainStub) SendRawTransaction(raw []byte) error {
	if c.unavailable {
		return fault.CoreChainRPCFailed
	}
	return nil
}

var testCoreChain = &coreChainStub{}

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "executor-test")
	if nil != err {
		os.Exit(1)
	}

	logging := logger.Configuration{
		Directory: dir,
		File:      "executor.log",
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
	if err := platformversion.Initialise(platformversion.Latest); nil != err {
		grove.Finalise()
		os.RemoveAll(dir)
		os.Exit(1)
	}
	if err := executor.Initialise(testCoreChain); nil != err {
		grove.Finalise()
		os.RemoveAll(dir)
		os.Exit(1)
	}
	rc := m.Run()
	executor.Finalise()
	platformversion.Finalise()
	grove.Finalise()
	os.RemoveAll(dir)
	os.Exit(rc)
}

// write operations straight to storage outside any block
func seed(t *testing.T, operations []drive.Operation) {
	t.Helper()

	trx, err := grove.NewTransaction()
	if nil != err {
		t.Fatalf("begin seed: %v", err)
	}
	if _, err := drive.Apply(trx, operations, true); nil != err {
		trx.Rollback()
		t.Fatalf("seed: %v", err)
	}
	if err := trx.Commit(); nil != err {
		t.Fatalf("commit seed: %v", err)
	}
}

// read only view of committed state
func view(t *testing.T) *grove.Transaction {
	t.Helper()

	trx, err := grove.NewTransaction()
	if nil != err {
		t.Fatalf("begin view: %v", err)
	}
	t.Cleanup(func() { trx.Rollback() })
	return trx
}

func runBlock(t *testing.T, height uint64, timeMs uint64, epoch uint16, packed []transition.Packed) []executor.TransitionResult {
	t.Helper()

	if err := executor.BeginBlock(height, 0, blockProposer, timeMs, epoch); nil != err {
		t.Fatalf("begin block: %v", err)
	}
	results, err := executor.ExecuteTransitions(packed)
	if nil != err {
		t.Fatalf("execute: %v", err)
	}
	root, err := executor.FinalizeBlock()
	if nil != err {
		t.Fatalf("finalize: %v", err)
	}
	if (grove.Digest{}) == root {
		t.Fatalf("committed root must not be zero")
	}
	return results
}

// serialized core transaction with one asset lock output; the marker
// byte keeps outpoints distinct between tests
func assetLockTransaction(t *testing.T, value int64, marker byte) []byte {
	t.Helper()

	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{}, nil, nil))
	tx.AddTxOut(wire.NewTxOut(value, []byte{0x6a, marker}))
	buffer := new(bytes.Buffer)
	if err := tx.Serialize(buffer); nil != err {
		t.Fatalf("serialize asset lock: %v", err)
	}
	return buffer.Bytes()
}

func newIdentityCreate(t *testing.T, duffs int64, marker byte) (*transition.IdentityCreate, ed25519.PrivateKey) {
	t.Helper()

	public, private, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		t.Fatalf("generate key: %v", err)
	}

	assetLock := transition.AssetLockProof{
		Kind:        transition.InstantProof,
		Transaction: assetLockTransaction(t, duffs, marker),
		OutputIndex: 0,
		InstantLock: []byte{0x01},
	}
	outpoint := assetLock.Outpoint()

	create := &transition.IdentityCreate{
		IdentityId: identifier.NewDerived(outpoint[:]),
		AssetLock:  assetLock,
		PublicKeys: []identity.PublicKey{
			&identity.KeyV0{
				Id:            0,
				Purpose:       identity.Authentication,
				SecurityLevel: identity.Master,
				Type:          identity.Ed25519,
				Data:          public,
			},
		},
	}
	create.Signature = ed25519.Sign(private, create.SignableBytes())
	return create, private
}

type seededIdentity struct {
	id      identifier.Identifier
	private ed25519.PrivateKey
}

func seedIdentity(t *testing.T, name string, balance uint64) *seededIdentity {
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

	id := identifier.New([]byte(name))
	stored, err := identity.NewV0(id, []identity.PublicKey{key}, 0)
	if nil != err {
		t.Fatalf("new identity: %v", err)
	}

	seed(t, []drive.Operation{
		drive.IdentityInsert{Identity: stored},
		drive.BalanceAdd{Id: id, Amount: credits.Credits(balance)},
	})
	return &seededIdentity{id: id, private: private}
}

func TestIdentityCreateEndToEnd(t *testing.T) {
	const duffs = 100000
	create, _ := newIdentityCreate(t, duffs, 0x01)

	results := runBlock(t, 1, 1000, 0, []transition.Packed{create.Pack()})
	if 1 != len(results) {
		t.Fatalf("result count: actual: %d  expected: 1", len(results))
	}
	if 0 != results[0].Code {
		t.Fatalf("create failed: code: %d  info: %q", results[0].Code, results[0].Info)
	}
	if 0 == results[0].GasUsed {
		t.Errorf("execution must consume gas")
	}

	trx := view(t)
	balance, err := drive.FetchBalance(trx, create.IdentityId)
	if nil != err {
		t.Fatalf("fetch balance: %v", err)
	}
	funding := uint64(duffs) * credits.PerDuff
	expected := credits.Credits(funding - results[0].GasUsed)
	if expected != balance {
		t.Errorf("balance: actual: %d  expected: %d", balance, expected)
	}

	if _, err := drive.FetchIdentity(trx, create.IdentityId); nil != err {
		t.Errorf("identity record missing: %v", err)
	}
	spent, err := drive.IsAssetLockSpent(trx, create.AssetLock.Outpoint())
	if nil != err {
		t.Fatalf("check outpoint: %v", err)
	}
	if !spent {
		t.Errorf("asset lock outpoint must be marked spent")
	}
}

func TestNonceReplayRevertsCleanly(t *testing.T) {
	const initial = 50000000
	const amount = 100000

	sender := seedIdentity(t, "replay block sender", initial)
	recipient := seedIdentity(t, "replay block recipient", 0)

	transfer := &transition.IdentityCreditTransfer{
		IdentityId: sender.id,
		Recipient:  recipient.id,
		Amount:     amount,
		Nonce:      1,
	}
	transfer.Signature = ed25519.Sign(sender.private, transfer.SignableBytes())

	// the identical transfer twice in one block; the replay must fail
	// and leave no trace
	results := runBlock(t, 2, 2000, 0, []transition.Packed{transfer.Pack(), transfer.Pack()})
	if 0 != results[0].Code {
		t.Fatalf("first transfer failed: code: %d  info: %q", results[0].Code, results[0].Info)
	}
	if fault.Code(fault.NonceAlreadyPresentAtTip) != results[1].Code {
		t.Errorf("replay code: actual: %d  expected: %d", results[1].Code, fault.Code(fault.NonceAlreadyPresentAtTip))
	}
	if 0 != results[1].GasUsed {
		t.Errorf("rejected transition must not consume gas")
	}
	if "" == results[1].Info {
		t.Errorf("rejected transition must carry an info text")
	}

	trx := view(t)
	received, err := drive.FetchBalance(trx, recipient.id)
	if nil != err {
		t.Fatalf("fetch recipient: %v", err)
	}
	if credits.Credits(amount) != received {
		t.Errorf("recipient: actual: %d  expected: %d", received, amount)
	}
	remaining, err := drive.FetchBalance(trx, sender.id)
	if nil != err {
		t.Fatalf("fetch sender: %v", err)
	}
	expected := credits.Credits(initial - amount - results[0].GasUsed)
	if expected != remaining {
		t.Errorf("sender: actual: %d  expected: %d", remaining, expected)
	}
}

func TestContestSettlement(t *testing.T) {
	contractId := identifier.New([]byte("settlement contract"))
	contractOwner := identifier.New([]byte("settlement contract owner"))
	ownerA := identifier.New([]byte("contender a"))
	ownerB := identifier.New([]byte("contender b"))

	contested := datacontract.Index{
		Name:       "byLabel",
		Properties: []string{"label"},
		Unique:     true,
		Contested:  &datacontract.ContestedRules{},
	}
	contract := &datacontract.V0{
		ContractId: contractId,
		Owner:      contractOwner,
		Types: []*datacontract.DocumentType{
			{
				Name: "domain",
				Properties: []datacontract.Property{
					{Name: "label", Type: datacontract.String, Required: true},
				},
				Indices:      []datacontract.Index{contested},
				CanBeDeleted: true,
			},
		},
	}

	docA := &document.V0{
		DocumentId: identifier.New([]byte("document a")),
		Owner:      ownerA,
		Revision:   1,
		Properties: map[string]document.Value{
			"label": document.StringValue("scarce"),
		},
	}
	docB := &document.V0{
		DocumentId: identifier.New([]byte("document b")),
		Owner:      ownerB,
		Revision:   1,
		Properties: map[string]document.Value{
			"label": document.StringValue("scarce"),
		},
	}
	values, ok := drive.IndexValueBytes(docA, &contested)
	if !ok {
		t.Fatalf("index values must pack")
	}

	poll := &vote.ContestedDocumentResourceVotePoll{
		ContractId:       contractId,
		DocumentTypeName: "domain",
		IndexName:        contested.Name,
		IndexValues:      [][]byte{values},
		EndsAt:           5000,
	}
	towardsA := vote.ResourceVoteChoice{Kind: vote.TowardsIdentity, Identity: ownerA}
	towardsB := vote.ResourceVoteChoice{Kind: vote.TowardsIdentity, Identity: ownerB}

	seed(t, []drive.Operation{
		drive.ContractInsert{Contract: contract},
		drive.DocumentInsert{ContractId: contractId, DocumentTypeName: "domain", Document: docA},
		drive.DocumentInsert{ContractId: contractId, DocumentTypeName: "domain", Document: docB},
		drive.PollInsert{Poll: poll},
		drive.ContenderAdd{PollId: poll.Id(), Id: ownerA, DocumentId: docA.DocumentId},
		drive.ContenderAdd{PollId: poll.Id(), Id: ownerB, DocumentId: docB.DocumentId},
		drive.PrefundAdd{PollId: poll.Id(), Amount: 4000},
		drive.BallotPut{Vote: &vote.Vote{PollId: poll.Id(), Voter: identifier.New([]byte("mn 1")), Choice: towardsA}},
		drive.BallotPut{Vote: &vote.Vote{PollId: poll.Id(), Voter: identifier.New([]byte("mn 2")), Choice: towardsA}},
		drive.BallotPut{Vote: &vote.Vote{PollId: poll.Id(), Voter: identifier.New([]byte("mn 3")), Choice: towardsB}},
	})

	// block time past the contest window settles the poll
	runBlock(t, 3, 6000, 0, nil)

	trx := view(t)
	holder, err := drive.IndexHolder(trx, contractId, "domain", contested.Name, values)
	if nil != err {
		t.Fatalf("index holder: %v", err)
	}
	if docA.DocumentId != holder {
		t.Errorf("contested value holder: actual: %x  expected: %x", holder, docA.DocumentId)
	}

	if _, err := drive.FetchDocument(trx, contractId, "domain", docA.DocumentId); nil != err {
		t.Errorf("winning document missing: %v", err)
	}
	if _, err := drive.FetchDocument(trx, contractId, "domain", docB.DocumentId); fault.DocumentNotFound != err {
		t.Errorf("losing document: actual: %v  expected: %v", err, fault.DocumentNotFound)
	}

	if _, err := drive.FetchPoll(trx, poll.Id()); fault.VotePollNotFound != err {
		t.Errorf("settled poll: actual: %v  expected: %v", err, fault.VotePollNotFound)
	}
	prefund, err := drive.FetchPrefundedBalance(trx, poll.Id())
	if nil != err {
		t.Fatalf("prefund: %v", err)
	}
	if 0 != prefund {
		t.Errorf("prefund must drain into the processing pool, left: %d", prefund)
	}
}

func TestFabricatedInstantLockRejected(t *testing.T) {
	testCoreChain.rejectLocks = true
	defer func() { testCoreChain.rejectLocks = false }()

	create, _ := newIdentityCreate(t, 100000, 0x02)

	results := runBlock(t, 4, 6500, 0, []transition.Packed{create.Pack()})
	if 1 != len(results) {
		t.Fatalf("result count: actual: %d  expected: 1", len(results))
	}
	if fault.Code(fault.AssetLockProofInvalid) != results[0].Code {
		t.Errorf("code: actual: %d  expected: %d", results[0].Code, fault.Code(fault.AssetLockProofInvalid))
	}
	if 0 != results[0].GasUsed {
		t.Errorf("rejected create must not consume gas")
	}

	trx := view(t)
	if _, err := drive.FetchIdentity(trx, create.IdentityId); fault.IdentityNotFound != err {
		t.Errorf("identity lookup: actual: %v  expected: %v", err, fault.IdentityNotFound)
	}
	spent, err := drive.IsAssetLockSpent(trx, create.AssetLock.Outpoint())
	if nil != err {
		t.Fatalf("check outpoint: %v", err)
	}
	if spent {
		t.Errorf("rejected asset lock must not be marked spent")
	}
}

func TestCoreChainOutageAbortsBlock(t *testing.T) {
	testCoreChain.unavailable = true
	defer func() { testCoreChain.unavailable = false }()

	create, _ := newIdentityCreate(t, 100000, 0x03)

	if err := executor.BeginBlock(5, 0, blockProposer, 6600, 0); nil != err {
		t.Fatalf("begin block: %v", err)
	}
	_, err := executor.ExecuteTransitions([]transition.Packed{create.Pack()})
	if fault.CoreChainRPCFailed != err {
		t.Fatalf("execute: actual: %v  expected: %v", err, fault.CoreChainRPCFailed)
	}

	// the aborted block must leave no trace
	trx := view(t)
	if _, err := drive.FetchIdentity(trx, create.IdentityId); fault.IdentityNotFound != err {
		t.Errorf("identity lookup: actual: %v  expected: %v", err, fault.IdentityNotFound)
	}
}

// must stay the last test: it advances the global epoch
func TestEpochRolloverPaysProposer(t *testing.T) {
	seed(t, []drive.Operation{
		drive.PoolAdd{Key: drive.ProcessingPoolKey, Delta: 5000},
	})

	before, err := grove.NewTransaction()
	if nil != err {
		t.Fatalf("begin: %v", err)
	}
	pool, err := drive.FetchPool(before, drive.ProcessingPoolKey)
	before.Rollback()
	if nil != err {
		t.Fatalf("fetch pool: %v", err)
	}
	if 0 == pool {
		t.Fatalf("processing pool must hold fees by now")
	}

	// sole proposer of the whole suite collects the full pool
	runBlock(t, 6, 7000, 1, nil)

	trx := view(t)
	balance, err := drive.FetchBalance(trx, blockProposer)
	if nil != err {
		t.Fatalf("fetch proposer balance: %v", err)
	}
	if pool != balance {
		t.Errorf("proposer payout: actual: %d  expected: %d", balance, pool)
	}
	remaining, err := drive.FetchPool(trx, drive.ProcessingPoolKey)
	if nil != err {
		t.Fatalf("fetch pool: %v", err)
	}
	if 0 != remaining {
		t.Errorf("pool after payout: actual: %d  expected: 0", remaining)
	}
}
