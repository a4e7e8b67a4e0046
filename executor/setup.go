// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package executor - the block execution boundary
//
// consensus hands over ordered blocks of packed transitions; the
// executor validates, prices and applies each one inside the single
// block transaction and reports a per transition result; the root
// hash after commit is a pure function of the previous root and the
// ordered transition list
package executor

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/dashpay/platformd/action"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/fees"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/identifier"
)

// CoreChain - the executor's window onto the core chain daemon
//
// instant locks are checked through it before an asset lock funds
// anything; withdrawal broadcast is fire and forget, a failure is
// logged and never affects block state
type CoreChain interface {
	VerifyInstantLock(lock []byte) (bool, error)
	SendRawTransaction(raw []byte) error
}

// how many queued withdrawals one block hands to the vote extension
const withdrawalBatchLimit = 16

// block facts fixed at BeginBlock
type blockContext struct {
	height   uint64
	round    uint32
	proposer identifier.Identifier
	timeMs   uint64
}

var globalData struct {
	sync.RWMutex
	log         *logger.L
	cache       *action.ContractCache
	coreChain   CoreChain
	epoch       *fees.Epoch
	block       blockContext
	trx         *grove.Transaction
	inBlock     bool
	initialised bool
}

// Initialise - prepare for block execution
//
// a nil core chain disables withdrawal broadcasting and fails every
// instant lock check closed, so a node without core chain access never
// accepts an asset lock it cannot verify
func Initialise(coreChain CoreChain) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("executor")
	globalData.log.Info("starting…")

	globalData.cache = action.NewContractCache()
	globalData.coreChain = coreChain
	globalData.epoch = fees.NewEpoch(0, 0, 0, 0)
	globalData.initialised = true
	return nil
}

// Finalise - stop block execution
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	if globalData.inBlock && nil != globalData.trx {
		globalData.trx.Rollback()
	}
	globalData.trx = nil
	globalData.cache = nil
	globalData.inBlock = false
	globalData.initialised = false
	return nil
}
