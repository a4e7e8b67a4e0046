// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package grove

import (
	"bytes"
	"sort"

	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/dashpay/platformd/fault"
)

// Scan - visit every element of a subtree whose key starts with
// prefix, in key order, observing pending writes
//
// the callback returns false to stop early; keys are passed without
// the subtree byte
func (trx *Transaction) Scan(subtree Subtree, prefix []byte, callback func(key []byte, element Element) (bool, error)) error {
	trx.Lock()
	if !trx.inUse {
		trx.Unlock()
		return fault.TransactionNotStarted
	}

	storagePrefix := append([]byte{byte(subtree)}, prefix...)
	merged := make(map[string][]byte)

	iter := trx.db.NewIterator(ldb_util.BytesPrefix(storagePrefix), nil)
	for iter.Next() {
		key := make([]byte, len(iter.Key())-1)
		copy(key, iter.Key()[1:])
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		merged[string(key)] = value
	}
	iter.Release()
	if err := iter.Error(); nil != err {
		trx.Unlock()
		return err
	}

	for k, p := range trx.overlay {
		if len(k) <= len(prefix) || k[0] != byte(subtree) {
			continue
		}
		if !bytes.HasPrefix([]byte(k[1:]), prefix) {
			continue
		}
		if p.deleted {
			delete(merged, k[1:])
		} else {
			merged[k[1:]] = p.value
		}
	}
	trx.Unlock()

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		element, err := UnpackElement(merged[k])
		if nil != err {
			return err
		}
		more, err := callback([]byte(k), element)
		if nil != err {
			return err
		}
		if !more {
			break
		}
	}
	return nil
}
