// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package drive

import (
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/fees"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/util"
)

var withdrawalCounterKey = []byte("withdrawal counter")

// NextWithdrawalIndex - the queue position for the next withdrawal
func NextWithdrawalIndex(trx *grove.Transaction) (uint64, error) {
	element, err := trx.Get(grove.Misc, withdrawalCounterKey)
	if nil != err {
		return 0, err
	}
	if nil == element {
		return 0, nil
	}
	item, ok := element.(*grove.Item)
	if !ok {
		return 0, fault.CorruptedDriveState
	}
	index, rest, ok := util.NextUint64(item.Value)
	if !ok || 0 != len(rest) {
		return 0, fault.CorruptedDriveState
	}
	return index, nil
}

// WithdrawalEnqueue - append a signed core transaction to the queue
//
// big endian index keys keep the queue in enqueue order under the
// sorted key space
type WithdrawalEnqueue struct {
	Index       uint64
	Transaction []byte
}

func (op WithdrawalEnqueue) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	cost, err := putElement(trx, grove.WithdrawalTransactions, withdrawalKey(op.Index), &grove.Item{Value: op.Transaction}, applyMode)
	if nil != err {
		return fees.OperationCost{}, err
	}
	extra, err := putElement(trx, grove.Misc, withdrawalCounterKey, &grove.Item{Value: util.ToVarint64(op.Index + 1)}, applyMode)
	if nil != err {
		return fees.OperationCost{}, err
	}
	return combine(cost, extra), nil
}

// WithdrawalDequeue - drop a broadcast withdrawal from the queue
type WithdrawalDequeue struct {
	Index uint64
}

func (op WithdrawalDequeue) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	return deleteElement(trx, grove.WithdrawalTransactions, withdrawalKey(op.Index), applyMode)
}
