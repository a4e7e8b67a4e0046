// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package grove

// Subtree - one fixed root subtree of the store
type Subtree byte

// the subtree bytes are part of the authenticated structure and of
// every proof, so they must never change
const (
	Identities                  Subtree = 0x00
	TokenBalances               Subtree = 0x10
	Tokens                      Subtree = 0x14
	ContractDocuments           Subtree = 0x40
	PublicKeyHashesToIdentities Subtree = 0x48
	Pools                       Subtree = 0x50
	Balances                    Subtree = 0x60
	SpentAssetLockTransactions  Subtree = 0x68
	Votes                       Subtree = 0x70
	Misc                        Subtree = 0x74
	Versions                    Subtree = 0x78
	WithdrawalTransactions      Subtree = 0x80
)

// Order - every subtree in root hash order
//
// the root digest folds the subtree hashes in exactly this order
var Order = []Subtree{
	Identities,
	TokenBalances,
	Tokens,
	ContractDocuments,
	PublicKeyHashesToIdentities,
	Pools,
	Balances,
	SpentAssetLockTransactions,
	Votes,
	Misc,
	Versions,
	WithdrawalTransactions,
}

// Sum - true for subtrees that maintain an aggregate sum
func (s Subtree) Sum() bool {
	return Balances == s || TokenBalances == s || Pools == s
}

// Valid - true for a defined subtree byte
func (s Subtree) Valid() bool {
	for _, known := range Order {
		if known == s {
			return true
		}
	}
	return false
}
