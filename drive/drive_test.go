// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package drive_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/document"
	"github.com/dashpay/platformd/drive"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/identity"
	"github.com/dashpay/platformd/vote"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "drive-test")
	if nil != err {
		os.Exit(1)
	}

	logging := logger.Configuration{
		Directory: dir,
		File:      "drive.log",
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

func begin(t *testing.T) *grove.Transaction {
	t.Helper()
	trx, err := grove.NewTransaction()
	if nil != err {
		t.Fatalf("begin: %v", err)
	}
	t.Cleanup(trx.Rollback)
	return trx
}

func apply(t *testing.T, trx *grove.Transaction, operations ...drive.Operation) {
	t.Helper()
	if _, err := drive.Apply(trx, operations, true); nil != err {
		t.Fatalf("apply: %v", err)
	}
}

func TestIdentityRoundTrip(t *testing.T) {
	trx := begin(t)

	id := identifier.Identifier{0x01}
	stored, err := identity.NewV0(id, nil, 0)
	if nil != err {
		t.Fatalf("new identity: %v", err)
	}

	_, err = drive.FetchIdentity(trx, id)
	if fault.IdentityNotFound != err {
		t.Errorf("before insert: actual: %v  expected: %v", err, fault.IdentityNotFound)
	}

	apply(t, trx, drive.IdentityInsert{Identity: stored})

	fetched, err := drive.FetchIdentity(trx, id)
	if nil != err {
		t.Fatalf("fetch: %v", err)
	}
	if fetched.Id() != id {
		t.Errorf("fetched wrong identity")
	}
}

func TestBalanceUnderflow(t *testing.T) {
	trx := begin(t)

	id := identifier.Identifier{0x02}
	apply(t, trx, drive.BalanceAdd{Id: id, Amount: 1000})

	balance, err := drive.FetchBalance(trx, id)
	if nil != err {
		t.Fatalf("fetch: %v", err)
	}
	if 1000 != balance {
		t.Errorf("balance: actual: %d  expected: 1000", balance)
	}

	_, err = drive.Apply(trx, []drive.Operation{
		drive.BalanceRemove{Id: id, Amount: 1001},
	}, true)
	if fault.IdentityInsufficientBalance != err {
		t.Errorf("overdraw: actual: %v  expected: %v", err, fault.IdentityInsufficientBalance)
	}

	apply(t, trx, drive.BalanceRemove{Id: id, Amount: 1000})
	balance, err = drive.FetchBalance(trx, id)
	if nil != err {
		t.Fatalf("fetch: %v", err)
	}
	if 0 != balance {
		t.Errorf("drained balance: actual: %d  expected: 0", balance)
	}
}

func TestNonceStorage(t *testing.T) {
	trx := begin(t)

	id := identifier.Identifier{0x03}
	contract := identifier.Identifier{0x04}

	_, present, err := drive.FetchIdentityContractNonce(trx, id, contract)
	if nil != err || present {
		t.Fatalf("fresh nonce must be absent: %v %v", present, err)
	}

	apply(t, trx, drive.IdentityContractNonceSet{Id: id, ContractId: contract, Nonce: 0x0123456789})

	nonce, present, err := drive.FetchIdentityContractNonce(trx, id, contract)
	if nil != err {
		t.Fatalf("fetch: %v", err)
	}
	if !present || 0x0123456789 != nonce {
		t.Errorf("nonce: actual: %x present: %v  expected: 123456789 true", nonce, present)
	}

	// identity nonce is a separate record
	_, present, err = drive.FetchIdentityNonce(trx, id)
	if nil != err || present {
		t.Errorf("identity nonce must not alias the contract nonce")
	}
}

func TestContractInsertMintsBaseSupply(t *testing.T) {
	trx := begin(t)

	owner := identifier.Identifier{0x05}
	contract := &datacontract.V1{
		V0: datacontract.V0{
			ContractId: identifier.Identifier{0x06},
			Owner:      owner,
		},
		ContractTokens: map[uint16]*datacontract.TokenConfiguration{
			0: {BaseSupply: 5000},
		},
	}
	apply(t, trx, drive.ContractInsert{Contract: contract})

	fetched, err := drive.FetchContract(trx, contract.ContractId)
	if nil != err {
		t.Fatalf("fetch contract: %v", err)
	}
	if fetched.Id() != contract.ContractId {
		t.Errorf("fetched wrong contract")
	}

	tokenId := datacontract.TokenId(contract.ContractId, 0)
	supply, err := drive.FetchTokenSupply(trx, tokenId)
	if nil != err {
		t.Fatalf("supply: %v", err)
	}
	if 5000 != supply {
		t.Errorf("supply: actual: %d  expected: 5000", supply)
	}
	balance, err := drive.FetchTokenBalance(trx, tokenId, owner)
	if nil != err {
		t.Fatalf("token balance: %v", err)
	}
	if 5000 != balance {
		t.Errorf("owner balance: actual: %d  expected: 5000", balance)
	}
}

func TestDocumentIndexLifecycle(t *testing.T) {
	trx := begin(t)

	contractId := identifier.Identifier{0x07}
	owner := identifier.Identifier{0x08}
	doc := &document.V0{
		DocumentId: identifier.Identifier{0x09},
		Owner:      owner,
		Properties: map[string]document.Value{
			"label": document.StringValue("alice"),
		},
	}
	entry := drive.IndexEntry{IndexName: "byLabel", Values: []byte("alice")}

	apply(t, trx, drive.DocumentInsert{
		ContractId:       contractId,
		DocumentTypeName: "profile",
		Document:         doc,
		IndexEntries:     []drive.IndexEntry{entry},
	})

	holder, err := drive.IndexHolder(trx, contractId, "profile", "byLabel", []byte("alice"))
	if nil != err {
		t.Fatalf("index holder: %v", err)
	}
	if holder != doc.DocumentId {
		t.Errorf("index must point at the inserted document")
	}

	free, err := drive.IndexHolder(trx, contractId, "profile", "byLabel", []byte("bob"))
	if nil != err {
		t.Fatalf("free value: %v", err)
	}
	if !free.IsZero() {
		t.Errorf("unclaimed value must report the zero identifier")
	}

	apply(t, trx, drive.DocumentDelete{
		ContractId:       contractId,
		DocumentTypeName: "profile",
		DocumentId:       doc.DocumentId,
		RemovedEntries:   []drive.IndexEntry{entry},
	})

	_, err = drive.FetchDocument(trx, contractId, "profile", doc.DocumentId)
	if fault.DocumentNotFound != err {
		t.Errorf("after delete: actual: %v  expected: %v", err, fault.DocumentNotFound)
	}
	holder, err = drive.IndexHolder(trx, contractId, "profile", "byLabel", []byte("alice"))
	if nil != err {
		t.Fatalf("released value: %v", err)
	}
	if !holder.IsZero() {
		t.Errorf("deleted document must release its index value")
	}
}

func TestPollBallotsAndCleanup(t *testing.T) {
	trx := begin(t)

	poll := &vote.ContestedDocumentResourceVotePoll{
		ContractId:       identifier.Identifier{0x0a},
		DocumentTypeName: "domain",
		IndexName:        "byName",
		IndexValues:      [][]byte{[]byte("scarce")},
		EndsAt:           9000,
	}
	pollId := poll.Id()
	contender := identifier.Identifier{0x0b}
	voter1 := identifier.Identifier{0x0c}
	voter2 := identifier.Identifier{0x0d}

	apply(t, trx,
		drive.PollInsert{Poll: poll},
		drive.ContenderAdd{PollId: pollId, Id: contender, DocumentId: identifier.Identifier{0x0e}},
		drive.BallotPut{Vote: &vote.Vote{
			PollId: pollId,
			Voter:  voter1,
			Choice: vote.ResourceVoteChoice{Kind: vote.TowardsIdentity, Identity: contender},
		}},
		drive.BallotPut{Vote: &vote.Vote{
			PollId: pollId,
			Voter:  voter2,
			Choice: vote.ResourceVoteChoice{Kind: vote.Abstain},
		}},
	)

	// a revote replaces, not accumulates
	apply(t, trx, drive.BallotPut{Vote: &vote.Vote{
		PollId: pollId,
		Voter:  voter2,
		Choice: vote.ResourceVoteChoice{Kind: vote.Lock},
	}})

	votes, err := drive.FetchPollVotes(trx, pollId)
	if nil != err {
		t.Fatalf("fetch votes: %v", err)
	}
	if 2 != len(votes) {
		t.Fatalf("ballots: actual: %d  expected: 2", len(votes))
	}

	contenders, err := drive.FetchContenders(trx, pollId)
	if nil != err {
		t.Fatalf("contenders: %v", err)
	}
	if 1 != len(contenders) || contenders[0] != contender {
		t.Errorf("contender list is wrong")
	}

	apply(t, trx, drive.PollCleanup{PollId: pollId})

	_, err = drive.FetchPoll(trx, pollId)
	if fault.VotePollNotFound != err {
		t.Errorf("after cleanup: actual: %v  expected: %v", err, fault.VotePollNotFound)
	}
	votes, err = drive.FetchPollVotes(trx, pollId)
	if nil != err {
		t.Fatalf("fetch after cleanup: %v", err)
	}
	if 0 != len(votes) {
		t.Errorf("cleanup must remove the ballots")
	}
}

func TestPrefundedBalance(t *testing.T) {
	trx := begin(t)

	pollId := identifier.Identifier{0x0e}
	apply(t, trx, drive.PrefundAdd{PollId: pollId, Amount: 400})

	_, err := drive.Apply(trx, []drive.Operation{
		drive.PrefundDeduct{PollId: pollId, Amount: 500},
	}, true)
	if fault.PrefundedBalanceInsufficient != err {
		t.Errorf("overdraw: actual: %v  expected: %v", err, fault.PrefundedBalanceInsufficient)
	}

	apply(t, trx, drive.PrefundDeduct{PollId: pollId, Amount: 150})
	remaining, err := drive.FetchPrefundedBalance(trx, pollId)
	if nil != err {
		t.Fatalf("fetch: %v", err)
	}
	if 250 != remaining {
		t.Errorf("remaining: actual: %d  expected: 250", remaining)
	}
}

func TestWithdrawalQueue(t *testing.T) {
	trx := begin(t)

	index, err := drive.NextWithdrawalIndex(trx)
	if nil != err {
		t.Fatalf("next index: %v", err)
	}
	apply(t, trx,
		drive.WithdrawalEnqueue{Index: index, Transaction: []byte("core tx 1")},
		drive.WithdrawalEnqueue{Index: index + 1, Transaction: []byte("core tx 2")},
	)

	next, err := drive.NextWithdrawalIndex(trx)
	if nil != err {
		t.Fatalf("next index: %v", err)
	}
	if index+2 != next {
		t.Errorf("counter: actual: %d  expected: %d", next, index+2)
	}

	queued, err := drive.FetchWithdrawals(trx, 10)
	if nil != err {
		t.Fatalf("fetch: %v", err)
	}
	if 2 != len(queued) || "core tx 1" != string(queued[0].Transaction) {
		t.Fatalf("queue order is wrong")
	}

	apply(t, trx, drive.WithdrawalDequeue{Index: queued[0].Index})
	queued, err = drive.FetchWithdrawals(trx, 10)
	if nil != err {
		t.Fatalf("fetch: %v", err)
	}
	if 1 != len(queued) || "core tx 2" != string(queued[0].Transaction) {
		t.Errorf("dequeue must drop only the broadcast entry")
	}
}

func TestEstimateDoesNotWrite(t *testing.T) {
	trx := begin(t)

	id := identifier.Identifier{0x0f}
	costs, err := drive.Apply(trx, []drive.Operation{
		drive.BalanceAdd{Id: id, Amount: 777},
	}, false)
	if nil != err {
		t.Fatalf("estimate: %v", err)
	}
	if 1 != len(costs) || 0 == costs[0].Seeks {
		t.Errorf("estimate must still price the work")
	}

	balance, err := drive.FetchBalance(trx, id)
	if nil != err {
		t.Fatalf("fetch: %v", err)
	}
	if 0 != balance {
		t.Errorf("estimate mode must not touch state")
	}
}
