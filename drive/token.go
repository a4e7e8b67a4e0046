// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package drive

import (
	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/fees"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/util"
)

// TokenBalanceAdd - adjust one identity token account by delta
//
// negative deltas fail when the account cannot cover them
type TokenBalanceAdd struct {
	TokenId identifier.Identifier
	Id      identifier.Identifier
	Delta   int64
}

func (op TokenBalanceAdd) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	return addToSum(trx, grove.TokenBalances, tokenBalanceKey(op.TokenId, op.Id), op.Delta, fault.TokenInsufficientBalance, applyMode)
}

// TokenSupplyAdd - adjust the recorded total supply by delta
type TokenSupplyAdd struct {
	TokenId identifier.Identifier
	Delta   int64
}

func (op TokenSupplyAdd) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	key := tokenSupplyKey(op.TokenId)
	if !applyMode {
		return fees.OperationCost{ProcessedBytes: uint64(len(key) + 10), Seeks: 1}, nil
	}

	supply, err := FetchTokenSupply(trx, op.TokenId)
	if nil != err {
		return fees.OperationCost{}, err
	}
	next := int64(supply) + op.Delta
	if next < 0 {
		return fees.OperationCost{}, fault.TokenInsufficientBalance
	}
	if op.Delta > 0 && uint64(next) < supply {
		return fees.OperationCost{}, fault.CreditsOverflow
	}
	if err := trx.Put(grove.Tokens, key, &grove.Item{Value: util.ToVarint64(uint64(next))}); nil != err {
		return fees.OperationCost{}, err
	}
	return fees.OperationCost{ProcessedBytes: uint64(len(key) + 10), Seeks: 1}, nil
}

// TokenFrozenSet - freeze or unfreeze one identity token account
type TokenFrozenSet struct {
	TokenId identifier.Identifier
	Id      identifier.Identifier
	Frozen  bool
}

func (op TokenFrozenSet) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	key := tokenFrozenKey(op.TokenId, op.Id)
	if op.Frozen {
		return putElement(trx, grove.TokenBalances, key, &grove.SumItem{Value: 0}, applyMode)
	}
	return deleteElement(trx, grove.TokenBalances, key, applyMode)
}

// TokenStatusSet - pause or resume a token by emergency action
type TokenStatusSet struct {
	TokenId identifier.Identifier
	Paused  bool
}

func (op TokenStatusSet) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	status := byte(0)
	if op.Paused {
		status = 1
	}
	return putElement(trx, grove.Tokens, tokenStatusKey(op.TokenId), &grove.Item{Value: []byte{status}}, applyMode)
}

// TokenLastClaimSet - record the height up to which a perpetual
// distribution recipient has claimed
type TokenLastClaimSet struct {
	TokenId identifier.Identifier
	Id      identifier.Identifier
	Height  uint64
}

func (op TokenLastClaimSet) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	return putElement(trx, grove.Tokens, tokenClaimKey(op.TokenId, op.Id), &grove.Item{Value: util.ToVarint64(op.Height)}, applyMode)
}

// TokenReleaseMark - mark one pre programmed release as claimed
type TokenReleaseMark struct {
	TokenId     identifier.Identifier
	ReleaseTime uint64
	Id          identifier.Identifier
}

func (op TokenReleaseMark) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	return putElement(trx, grove.Tokens, tokenReleaseKey(op.TokenId, op.ReleaseTime, op.Id), &grove.Item{Value: []byte{1}}, applyMode)
}

// TokenConfigSet - overwrite the stored token configuration
type TokenConfigSet struct {
	TokenId       identifier.Identifier
	Configuration *datacontract.TokenConfiguration
}

func (op TokenConfigSet) execute(trx *grove.Transaction, applyMode bool) (fees.OperationCost, error) {
	return putElement(trx, grove.Tokens, tokenConfigKey(op.TokenId), &grove.Item{Value: datacontract.PackTokenConfiguration(op.Configuration)}, applyMode)
}
