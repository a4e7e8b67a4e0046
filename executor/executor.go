// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package executor

import (
	"bytes"
	"sort"

	"github.com/bitmark-inc/logger"

	"github.com/dashpay/platformd/action"
	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/drive"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/fees"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/platformversion"
	"github.com/dashpay/platformd/transition"
	"github.com/dashpay/platformd/validator"
)

// TransitionResult - outcome of one transition in a block
//
// code zero is success; a non zero code is the stable mapping of the
// consensus error that excluded the transition's effects
type TransitionResult struct {
	Code    uint32
	Info    string
	GasUsed uint64
}

// BeginBlock - open the block transaction and fix the block facts
//
// an epoch change triggers the arrears payout of the previous epoch's
// processing fees before any transition of the new block executes
func BeginBlock(height uint64, round uint32, proposer identifier.Identifier, timeMs uint64, epochIndex uint16) error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}
	if globalData.inBlock {
		return fault.TransactionInUse
	}

	trx, err := grove.NewTransaction()
	if nil != err {
		return err
	}

	globalData.trx = trx
	globalData.block = blockContext{
		height:   height,
		round:    round,
		proposer: proposer,
		timeMs:   timeMs,
	}
	globalData.inBlock = true
	globalData.cache.Reset()

	if epochIndex != globalData.epoch.Index {
		if err := rolloverEpoch(trx, epochIndex, height, timeMs); nil != err {
			trx.Rollback()
			globalData.inBlock = false
			return err
		}
	}
	globalData.epoch.CountProposer([32]byte(proposer))

	globalData.log.Debugf("begin block: height: %d  round: %d  epoch: %d", height, round, epochIndex)
	return nil
}

// ExecuteTransitions - run the ordered transitions of the block
//
// a consensus failure produces a per transition result and reverts
// only that transition's writes; a fatal error aborts the whole block
// attempt and the transaction is rolled back
func ExecuteTransitions(packed []transition.Packed) ([]TransitionResult, error) {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised || !globalData.inBlock {
		return nil, fault.NotInitialised
	}

	results := make([]TransitionResult, len(packed))
	for i, p := range packed {
		result, err := executeOne(globalData.trx, p)
		if nil != err {
			globalData.trx.Rollback()
			globalData.inBlock = false
			return nil, err
		}
		results[i] = result
	}
	return results, nil
}

// ExtendVote - the queued withdrawal transactions of this block
//
// consensus circulates these for threshold signing; state is not
// modified here
func ExtendVote() ([][]byte, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	if !globalData.initialised || !globalData.inBlock {
		return nil, fault.NotInitialised
	}

	queued, err := drive.FetchWithdrawals(globalData.trx, withdrawalBatchLimit)
	if nil != err {
		return nil, err
	}
	raw := make([][]byte, len(queued))
	for i, w := range queued {
		raw[i] = w.Transaction
	}
	return raw, nil
}

// FinalizeBlock - settle expired polls, commit and hand back the root
//
// the broadcast batch is dequeued deterministically on every node;
// actual broadcasting is fire and forget
func FinalizeBlock() (grove.Digest, error) {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised || !globalData.inBlock {
		return grove.Digest{}, fault.NotInitialised
	}
	trx := globalData.trx

	if err := settleExpiredPolls(trx, globalData.block.timeMs); nil != err {
		trx.Rollback()
		globalData.inBlock = false
		return grove.Digest{}, err
	}

	queued, err := drive.FetchWithdrawals(trx, withdrawalBatchLimit)
	if nil != err {
		trx.Rollback()
		globalData.inBlock = false
		return grove.Digest{}, err
	}
	for _, w := range queued {
		if _, err := drive.Apply(trx, []drive.Operation{
			drive.WithdrawalDequeue{Index: w.Index},
		}, true); nil != err {
			trx.Rollback()
			globalData.inBlock = false
			return grove.Digest{}, err
		}
	}

	root, err := grove.RootHash(trx)
	if nil != err {
		trx.Rollback()
		globalData.inBlock = false
		return grove.Digest{}, err
	}
	if err := trx.Commit(); nil != err {
		globalData.inBlock = false
		return grove.Digest{}, err
	}
	globalData.inBlock = false

	if nil != globalData.coreChain && 0 != len(queued) {
		go broadcast(globalData.coreChain, globalData.log, queued)
	}

	globalData.log.Infof("block committed: height: %d  root: %x", globalData.block.height, root)
	return root, nil
}

func broadcast(c CoreChain, log *logger.L, queued []drive.QueuedWithdrawal) {
	for _, w := range queued {
		if err := c.SendRawTransaction(w.Transaction); nil != err {
			log.Warnf("withdrawal broadcast failed: index: %d: %s", w.Index, err)
		}
	}
}

// run one transition against the block transaction
func executeOne(trx *grove.Transaction, packed transition.Packed) (TransitionResult, error) {
	checkpoint, err := trx.Checkpoint()
	if nil != err {
		return TransitionResult{}, err
	}

	failed := func(e error) (TransitionResult, error) {
		if err := trx.Revert(checkpoint); nil != err {
			return TransitionResult{}, err
		}
		return TransitionResult{
			Code: fault.Code(e),
			Info: e.Error(),
		}, nil
	}

	t, err := packed.Unpack()
	if nil != err {
		return failed(err)
	}

	pv, err := platformversion.Current()
	if nil != err {
		return TransitionResult{}, err
	}

	structure, err := validator.ValidateStructure(t, pv)
	if nil != err {
		return TransitionResult{}, err
	}
	if !structure.IsValid() {
		return failed(structure.FirstError())
	}

	if err := verifyAssetLock(t); nil != err {
		if fault.IsConsensus(err) {
			return failed(err)
		}
		return TransitionResult{}, err
	}

	state, err := validator.ValidateState(trx, t, globalData.block.timeMs, pv)
	if nil != err {
		return TransitionResult{}, err
	}
	if !state.IsValid() {
		return failed(state.FirstError())
	}

	act, err := action.FromTransition(t, globalData.cache.Resolver(trx), globalData.block.timeMs)
	if nil != err {
		if fault.IsConsensus(err) {
			return failed(err)
		}
		return TransitionResult{}, err
	}

	converted, err := convert(trx, act, pv)
	if nil != err {
		if fault.IsConsensus(err) {
			return failed(err)
		}
		return TransitionResult{}, err
	}

	costs, err := drive.Apply(trx, converted.operations, true)
	if nil != err {
		if fault.IsConsensus(err) {
			return failed(err)
		}
		return TransitionResult{}, err
	}

	feeResult, err := fees.Calculate(costs, converted.tip, globalData.epoch, pv)
	if nil != err {
		return TransitionResult{}, err
	}
	total, err := feeResult.Total()
	if nil != err {
		return TransitionResult{}, err
	}

	if err := charge(trx, converted, feeResult, total); nil != err {
		if fault.IsConsensus(err) {
			return failed(err)
		}
		return TransitionResult{}, err
	}

	return TransitionResult{GasUsed: uint64(total)}, nil
}

// an instant asset lock must be accepted by the core chain before the
// transition can fund anything
//
// the core chain is consulted outside the storage transaction; an
// unreachable daemon aborts the block attempt, it never passes a lock
// it could not check
func verifyAssetLock(t transition.Transition) error {
	var proof *transition.AssetLockProof
	switch tr := t.(type) {
	case *transition.IdentityCreate:
		proof = &tr.AssetLock
	case *transition.IdentityTopUp:
		proof = &tr.AssetLock
	default:
		return nil
	}
	if transition.InstantProof != proof.Kind {
		return nil
	}

	if nil == globalData.coreChain {
		return fault.CoreChainUnavailable
	}
	accepted, err := globalData.coreChain.VerifyInstantLock(proof.InstantLock)
	if nil != err {
		return err
	}
	if !accepted {
		return fault.AssetLockProofInvalid
	}
	return nil
}

// pay an epoch's accumulated processing fees to its proposers,
// proportional to the blocks each proposed
func rolloverEpoch(trx *grove.Transaction, index uint16, height uint64, timeMs uint64) error {
	pool, err := drive.FetchPool(trx, drive.ProcessingPoolKey)
	if nil != err {
		return err
	}

	counts := globalData.epoch.ProposerCounts

	if 0 != pool && 0 != globalData.epoch.TotalBlocks() {
		distributed := int64(0)
		for _, proposer := range sortedProposers(counts) {
			share := globalData.epoch.ProposerShare([32]byte(proposer), uint64(pool))
			if 0 == share {
				continue
			}
			if _, err := drive.Apply(trx, []drive.Operation{
				drive.BalanceAdd{Id: proposer, Amount: credits.Credits(share)},
			}, true); nil != err {
				return err
			}
			distributed += int64(share)
		}
		if 0 != distributed {
			if _, err := drive.Apply(trx, []drive.Operation{
				drive.PoolAdd{Key: drive.ProcessingPoolKey, Delta: -distributed},
			}, true); nil != err {
				return err
			}
		}
		globalData.log.Infof("epoch %d closed: distributed %d of %d to %d proposers",
			globalData.epoch.Index, distributed, pool, len(counts))
	}

	globalData.epoch = fees.NewEpoch(index, height, timeMs, 0)
	return nil
}

func sortedProposers(counts map[[32]byte]uint64) []identifier.Identifier {
	proposers := make([]identifier.Identifier, 0, len(counts))
	for proposer := range counts {
		proposers = append(proposers, identifier.Identifier(proposer))
	}
	sort.Slice(proposers, func(i, j int) bool {
		return bytes.Compare(proposers[i][:], proposers[j][:]) < 0
	})
	return proposers
}
