// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package grove

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/dashpay/platformd/fault"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "grove-test")
	if nil != err {
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	logging := logger.Configuration{
		Directory: dir,
		File:      "grove.log",
		Size:      1048576,
		Count:     10,
		Levels: map[string]string{
			logger.DefaultTag: "error",
		},
	}
	if err := logger.Initialise(logging); nil != err {
		os.Exit(1)
	}

	if err := Initialise(filepath.Join(dir, "test"), false); nil != err {
		os.Exit(1)
	}
	rc := m.Run()
	Finalise()
	os.RemoveAll(dir)
	os.Exit(rc)
}

func TestReadYourWrites(t *testing.T) {
	trx, err := NewTransaction()
	if nil != err {
		t.Fatalf("begin: %v", err)
	}
	defer trx.Rollback()

	key := []byte("identity 1")
	if err := trx.Put(Identities, key, &Item{Value: []byte("payload")}); nil != err {
		t.Fatalf("put: %v", err)
	}

	element, err := trx.Get(Identities, key)
	if nil != err {
		t.Fatalf("get: %v", err)
	}
	item, ok := element.(*Item)
	if !ok || "payload" != string(item.Value) {
		t.Errorf("uncommitted write must be visible inside the transaction")
	}

	// not visible outside the transaction
	outside, err := Get(Identities, key)
	if nil != err {
		t.Fatalf("outside get: %v", err)
	}
	if nil != outside {
		t.Errorf("uncommitted write must not be visible outside")
	}

	if err := trx.Delete(Identities, key); nil != err {
		t.Fatalf("delete: %v", err)
	}
	element, err = trx.Get(Identities, key)
	if nil != err {
		t.Fatalf("get after delete: %v", err)
	}
	if nil != element {
		t.Errorf("pending delete must hide the key")
	}
}

func TestSingleTransaction(t *testing.T) {
	trx, err := NewTransaction()
	if nil != err {
		t.Fatalf("begin: %v", err)
	}
	defer trx.Rollback()

	_, err = NewTransaction()
	if fault.TransactionInUse != err {
		t.Errorf("actual: %v  expected: %v", err, fault.TransactionInUse)
	}
}

func TestCommitPersists(t *testing.T) {
	trx, err := NewTransaction()
	if nil != err {
		t.Fatalf("begin: %v", err)
	}

	key := []byte("contract 1")
	trx.Put(ContractDocuments, key, &Item{Value: []byte("contract bytes")})
	if err := trx.Commit(); nil != err {
		t.Fatalf("commit: %v", err)
	}

	element, err := Get(ContractDocuments, key)
	if nil != err {
		t.Fatalf("get: %v", err)
	}
	item, ok := element.(*Item)
	if !ok || "contract bytes" != string(item.Value) {
		t.Errorf("committed write must be durable")
	}

	// the transaction is released after commit
	trx2, err := NewTransaction()
	if nil != err {
		t.Fatalf("second begin: %v", err)
	}
	trx2.Delete(ContractDocuments, key)
	trx2.Commit()
}

func TestRollbackDiscards(t *testing.T) {
	trx, err := NewTransaction()
	if nil != err {
		t.Fatalf("begin: %v", err)
	}
	key := []byte("discard me")
	trx.Put(Misc, key, &Item{Value: []byte("x")})
	trx.Rollback()

	element, err := Get(Misc, key)
	if nil != err {
		t.Fatalf("get: %v", err)
	}
	if nil != element {
		t.Errorf("rolled back write must vanish")
	}
}

func TestElementRoundTrip(t *testing.T) {
	elements := []Element{
		&Item{Value: []byte{0x01, 0x02}},
		&SumItem{Value: -77},
		&SumItem{Value: 1 << 40},
		&Tree{},
		&Reference{ReferencedSubtree: Identities, ReferencedKey: []byte("key")},
	}
	for _, original := range elements {
		restored, err := UnpackElement(original.Pack())
		if nil != err {
			t.Fatalf("kind %d unpack: %v", original.Kind(), err)
		}
		if restored.Kind() != original.Kind() {
			t.Errorf("kind mismatch: actual: %d  expected: %d", restored.Kind(), original.Kind())
		}
	}

	_, err := UnpackElement([]byte{0xff})
	if fault.CorruptedDriveState != err {
		t.Errorf("unknown kind must fail: %v", err)
	}
}

func TestRootHashChangesWithState(t *testing.T) {
	before, err := RootHash(nil)
	if nil != err {
		t.Fatalf("root: %v", err)
	}

	trx, err := NewTransaction()
	if nil != err {
		t.Fatalf("begin: %v", err)
	}
	defer trx.Rollback()

	trx.Put(Balances, []byte("identity a"), &SumItem{Value: 1000})

	during, err := RootHash(trx)
	if nil != err {
		t.Fatalf("root with trx: %v", err)
	}
	if before == during {
		t.Errorf("pending writes must change the transaction root hash")
	}

	// committed state unchanged until commit
	committed, err := RootHash(nil)
	if nil != err {
		t.Fatalf("committed root: %v", err)
	}
	if before != committed {
		t.Errorf("committed root must not move before commit")
	}
}

func TestSubtreeSum(t *testing.T) {
	trx, err := NewTransaction()
	if nil != err {
		t.Fatalf("begin: %v", err)
	}
	defer trx.Rollback()

	trx.Put(Balances, []byte("identity a"), &SumItem{Value: 700})
	trx.Put(Balances, []byte("identity b"), &SumItem{Value: 300})

	total, err := SubtreeSum(trx, Balances)
	if nil != err {
		t.Fatalf("sum: %v", err)
	}
	if 1000 != total {
		t.Errorf("actual: %d  expected: 1000", total)
	}

	_, err = SubtreeSum(trx, Identities)
	if fault.WrongElementType != err {
		t.Errorf("sum over a non sum subtree must fail: %v", err)
	}
}

func TestFoldPathMatchesRoot(t *testing.T) {
	trx, err := NewTransaction()
	if nil != err {
		t.Fatalf("begin: %v", err)
	}
	defer trx.Rollback()

	keys := [][]byte{
		[]byte("key 1"), []byte("key 2"), []byte("key 3"),
		[]byte("key 4"), []byte("key 5"),
	}
	for _, key := range keys {
		trx.Put(Votes, key, &Item{Value: append([]byte("value for "), key...)})
	}

	want, err := SubtreeHash(trx, Votes)
	if nil != err {
		t.Fatalf("subtree hash: %v", err)
	}

	leaves, err := subtreeLeaves(trx, Votes)
	if nil != err {
		t.Fatalf("leaves: %v", err)
	}
	digests := make([]Digest, len(leaves))
	for i, l := range leaves {
		digests[i] = LeafDigest(l.key, l.value)
	}

	for i := range leaves {
		path := merklePath(digests, i)
		got, err := FoldPath(digests[i], i, len(leaves), path)
		if nil != err {
			t.Fatalf("fold %d: %v", i, err)
		}
		if got != want {
			t.Errorf("leaf %d: folded hash disagrees with subtree hash", i)
		}
	}
}
