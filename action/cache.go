// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package action

import (
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/drive"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/identifier"
)

const (
	contractExpiration = 1 * time.Minute
	contractSweep      = 2 * time.Minute
)

// ContractCache - short lived contract lookup cache
//
// transitions in a block overwhelmingly address the same few
// contracts, so the first fetch in a block pays for the unpack and the
// rest hit the cache; Reset must be called whenever a stored contract
// changes, the executor does this per block
type ContractCache struct {
	contracts *cache.Cache
}

// NewContractCache - create an empty cache
func NewContractCache() *ContractCache {
	return &ContractCache{
		contracts: cache.New(contractExpiration, contractSweep),
	}
}

// Resolver - a contract resolver reading through the cache
//
// misses fall through to storage inside the supplied transaction
func (c *ContractCache) Resolver(trx *grove.Transaction) Resolver {
	return func(contractId identifier.Identifier) (datacontract.DataContract, error) {
		key := string(contractId[:])
		if cached, found := c.contracts.Get(key); found {
			return cached.(datacontract.DataContract), nil
		}
		contract, err := drive.FetchContract(trx, contractId)
		if nil != err {
			return nil, err
		}
		c.contracts.Set(key, contract, cache.DefaultExpiration)
		return contract, nil
	}
}

// Reset - drop all cached contracts
func (c *ContractCache) Reset() {
	c.contracts.Flush()
}
