// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package grove

import (
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/dashpay/platformd/fault"
)

// holds the database handle
var globalData struct {
	sync.RWMutex
	log         *logger.L
	db          *leveldb.DB
	trx         *Transaction
	initialised bool
}

// Initialise - open up the database connection
//
// this must be called before any subtree is accessed
func Initialise(database string, readOnly bool) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("grove")
	globalData.log.Info("starting…")

	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}
	db, err := leveldb.OpenFile(database+"-grove.leveldb", opt)
	if nil != err {
		return err
	}

	globalData.db = db
	globalData.trx = newTransaction(db)
	globalData.initialised = true
	return nil
}

// Finalise - close the database connection
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.db.Close()
	globalData.db = nil
	globalData.trx = nil
	globalData.initialised = false
	return nil
}

// NewTransaction - claim the single block transaction
//
// only one transaction may be open; the executor owns it for the
// whole block
func NewTransaction() (*Transaction, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	if !globalData.initialised {
		return nil, fault.NotInitialised
	}
	if err := globalData.trx.begin(); nil != err {
		return nil, err
	}
	return globalData.trx, nil
}

// storage key: subtree byte then the exact key bytes
func storageKey(subtree Subtree, key []byte) []byte {
	k := make([]byte, 0, 1+len(key))
	k = append(k, byte(subtree))
	return append(k, key...)
}

// Get - read an element outside any transaction
func Get(subtree Subtree, key []byte) (Element, error) {
	globalData.RLock()
	db := globalData.db
	initialised := globalData.initialised
	globalData.RUnlock()

	if !initialised {
		return nil, fault.NotInitialised
	}

	value, err := db.Get(storageKey(subtree, key), nil)
	if leveldb.ErrNotFound == err {
		return nil, nil
	} else if nil != err {
		return nil, err
	}
	return UnpackElement(value)
}
