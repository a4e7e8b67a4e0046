// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fees

import (
	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/platformversion"
)

// OperationCost - cost dimensions of one low level storage operation
type OperationCost struct {
	InsertedBytes  uint64 // key and value bytes newly stored
	RemovedBytes   uint64 // key and value bytes deleted
	ProcessedBytes uint64 // bytes read or rewritten without growth
	Seeks          uint64
}

// RefundEntry - storage credits owed back, per epoch ledger line
type RefundEntry struct {
	Epoch  uint16
	Amount credits.Credits
}

// FeeResult - the priced outcome of one transition
type FeeResult struct {
	Storage    credits.Credits
	Processing credits.Credits
	Refunds    []RefundEntry
	Tip        credits.Credits
}

// Total - net credits the identity pays, checked
//
// refunds reduce the total but never below zero: storage already paid
// for in earlier epochs cannot subsidise processing
func (r *FeeResult) Total() (credits.Credits, error) {
	total, err := r.Storage.Add(r.Processing)
	if nil != err {
		return 0, err
	}
	total, err = total.Add(r.Tip)
	if nil != err {
		return 0, err
	}

	refunded := credits.Credits(0)
	for _, entry := range r.Refunds {
		refunded, err = refunded.Add(entry.Amount)
		if nil != err {
			return 0, err
		}
	}
	if refunded >= total {
		return 0, nil
	}
	return total.Sub(refunded)
}

// Calculate - price a list of operation costs
//
// pure: same costs, same epoch, same version always price identically;
// every step uses checked arithmetic so a hostile operation list
// cannot overflow into a cheap fee
func Calculate(costs []OperationCost, tip uint64, epoch *Epoch, pv *platformversion.PlatformVersion) (*FeeResult, error) {
	fee := pv.Fees

	insertedBytes := uint64(0)
	removedBytes := uint64(0)
	processedBytes := uint64(0)
	seeks := uint64(0)
	operations := uint64(len(costs))

	for _, cost := range costs {
		var err error
		insertedBytes, err = checkedAdd(insertedBytes, cost.InsertedBytes)
		if nil != err {
			return nil, err
		}
		removedBytes, err = checkedAdd(removedBytes, cost.RemovedBytes)
		if nil != err {
			return nil, err
		}
		processedBytes, err = checkedAdd(processedBytes, cost.ProcessedBytes)
		if nil != err {
			return nil, err
		}
		seeks, err = checkedAdd(seeks, cost.Seeks)
		if nil != err {
			return nil, err
		}
	}

	storage, err := credits.Credits(insertedBytes).Mul(fee.StoragePerByte)
	if nil != err {
		return nil, err
	}
	multiplier := uint64(1000)
	if nil != epoch && 0 != epoch.FeeMultiplier {
		multiplier = epoch.FeeMultiplier
	}
	storage, err = storage.Mul(multiplier)
	if nil != err {
		return nil, err
	}
	storage /= 1000

	processing, err := credits.Credits(processedBytes).Add(credits.Credits(insertedBytes))
	if nil != err {
		return nil, err
	}
	processing, err = processing.Mul(fee.ProcessingPerByte)
	if nil != err {
		return nil, err
	}
	perOperation, err := credits.Credits(operations).Mul(fee.ProcessingPerOperation)
	if nil != err {
		return nil, err
	}
	processing, err = processing.Add(perOperation)
	if nil != err {
		return nil, err
	}
	seekCost, err := credits.Credits(seeks).Mul(fee.SeekProcessingCost)
	if nil != err {
		return nil, err
	}
	processing, err = processing.Add(seekCost)
	if nil != err {
		return nil, err
	}

	totalTip, err := credits.Credits(fee.DefaultUserTip).Add(credits.Credits(tip))
	if nil != err {
		return nil, err
	}
	result := &FeeResult{
		Storage:    storage,
		Processing: processing,
		Tip:        totalTip,
	}

	if 0 != removedBytes {
		refund, err := credits.Credits(removedBytes).Mul(fee.StoragePerByte)
		if nil != err {
			return nil, err
		}
		refund, err = refund.Mul(fee.StorageRefundPercentage)
		if nil != err {
			return nil, err
		}
		refund /= 100
		epochIndex := uint16(0)
		if nil != epoch {
			epochIndex = epoch.Index
		}
		result.Refunds = append(result.Refunds, RefundEntry{
			Epoch:  epochIndex,
			Amount: refund,
		})
	}
	return result, nil
}

func checkedAdd(a uint64, b uint64) (uint64, error) {
	sum, err := credits.Credits(a).Add(credits.Credits(b))
	return uint64(sum), err
}
