// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package grove

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/dashpay/platformd/fault"
)

// overlay entry: either a pending write or a pending delete
type pending struct {
	deleted bool
	value   []byte
}

// Transaction - the single writable view over the store
//
// writes go to a batch plus an overlay map so that reads within the
// same block observe earlier writes; Commit flushes the batch
// atomically, Rollback discards everything
type Transaction struct {
	sync.Mutex
	inUse   bool
	db      *leveldb.DB
	batch   *leveldb.Batch
	overlay map[string]pending
}

func newTransaction(db *leveldb.DB) *Transaction {
	return &Transaction{
		db:    db,
		batch: new(leveldb.Batch),
	}
}

func (trx *Transaction) begin() error {
	trx.Lock()
	defer trx.Unlock()

	if trx.inUse {
		return fault.TransactionInUse
	}
	trx.inUse = true
	trx.batch.Reset()
	trx.overlay = make(map[string]pending)
	return nil
}

// Put - store an element
func (trx *Transaction) Put(subtree Subtree, key []byte, element Element) error {
	trx.Lock()
	defer trx.Unlock()

	if !trx.inUse {
		return fault.TransactionNotStarted
	}
	k := storageKey(subtree, key)
	value := element.Pack()
	trx.overlay[string(k)] = pending{value: value}
	trx.batch.Put(k, value)
	return nil
}

// Delete - remove an element
func (trx *Transaction) Delete(subtree Subtree, key []byte) error {
	trx.Lock()
	defer trx.Unlock()

	if !trx.inUse {
		return fault.TransactionNotStarted
	}
	k := storageKey(subtree, key)
	trx.overlay[string(k)] = pending{deleted: true}
	trx.batch.Delete(k)
	return nil
}

// Get - read an element, observing earlier writes in this transaction
//
// a missing key returns nil, nil
func (trx *Transaction) Get(subtree Subtree, key []byte) (Element, error) {
	trx.Lock()
	defer trx.Unlock()

	if !trx.inUse {
		return nil, fault.TransactionNotStarted
	}
	k := storageKey(subtree, key)
	if p, ok := trx.overlay[string(k)]; ok {
		if p.deleted {
			return nil, nil
		}
		return UnpackElement(p.value)
	}

	value, err := trx.db.Get(k, nil)
	if leveldb.ErrNotFound == err {
		return nil, nil
	} else if nil != err {
		return nil, err
	}
	return UnpackElement(value)
}

// Has - existence check with the same visibility as Get
func (trx *Transaction) Has(subtree Subtree, key []byte) (bool, error) {
	element, err := trx.Get(subtree, key)
	if nil != err {
		return false, err
	}
	return nil != element, nil
}

// Checkpoint - a snapshot of the pending writes
type Checkpoint struct {
	overlay map[string]pending
}

// Checkpoint - capture the pending writes for a partial rollback
//
// the executor sets one before each transition so a consensus failure
// can drop that transition's writes without losing the block's
func (trx *Transaction) Checkpoint() (*Checkpoint, error) {
	trx.Lock()
	defer trx.Unlock()

	if !trx.inUse {
		return nil, fault.TransactionNotStarted
	}
	snapshot := make(map[string]pending, len(trx.overlay))
	for k, p := range trx.overlay {
		snapshot[k] = p
	}
	return &Checkpoint{overlay: snapshot}, nil
}

// Revert - restore the transaction to a checkpoint
//
// the batch is rebuilt from the restored overlay; each key holds only
// its final state so ordering within the batch is immaterial
func (trx *Transaction) Revert(checkpoint *Checkpoint) error {
	trx.Lock()
	defer trx.Unlock()

	if !trx.inUse {
		return fault.TransactionNotStarted
	}
	trx.overlay = make(map[string]pending, len(checkpoint.overlay))
	trx.batch.Reset()
	for k, p := range checkpoint.overlay {
		trx.overlay[k] = p
		if p.deleted {
			trx.batch.Delete([]byte(k))
		} else {
			trx.batch.Put([]byte(k), p.value)
		}
	}
	return nil
}

// Commit - atomically apply every pending write and release the
// transaction
func (trx *Transaction) Commit() error {
	trx.Lock()
	defer trx.Unlock()

	if !trx.inUse {
		return fault.TransactionNotStarted
	}
	if err := trx.db.Write(trx.batch, nil); nil != err {
		return err
	}
	trx.batch.Reset()
	trx.overlay = nil
	trx.inUse = false
	return nil
}

// Rollback - discard every pending write and release the transaction
func (trx *Transaction) Rollback() {
	trx.Lock()
	defer trx.Unlock()

	trx.batch.Reset()
	trx.overlay = nil
	trx.inUse = false
}
