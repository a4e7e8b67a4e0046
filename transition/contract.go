// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transition

import (
	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/identifier"
)

// DataContractCreate - register a new contract
//
// the contract id must be the derivation of owner and identity nonce,
// which state validation recomputes
type DataContractCreate struct {
	Contract             datacontract.DataContract
	Nonce                uint64
	UserFeeIncrease      uint64
	SignaturePublicKeyId uint32
	Signature            []byte
}

func (t *DataContractCreate) Tag() TagType { return DataContractCreateTag }
func (t *DataContractCreate) OwnerId() identifier.Identifier { return t.Contract.OwnerId() }
func (t *DataContractCreate) UserTip() uint64 { return t.UserFeeIncrease }

// ContractId - derive the only contract id this create may register
func ContractId(owner identifier.Identifier, nonce uint64) identifier.Identifier {
	return identifier.NewDerived(owner[:], []byte{
		byte(nonce >> 56),
		byte(nonce >> 48),
		byte(nonce >> 40),
		byte(nonce >> 32),
		byte(nonce >> 24),
		byte(nonce >> 16),
		byte(nonce >> 8),
		byte(nonce),
	})
}

// DataContractUpdate - replace a stored contract with the next
// revision; compatibility rules are checked by state validation
type DataContractUpdate struct {
	Contract             datacontract.DataContract
	Nonce                uint64 // identity contract nonce
	UserFeeIncrease      uint64
	SignaturePublicKeyId uint32
	Signature            []byte
}

func (t *DataContractUpdate) Tag() TagType { return DataContractUpdateTag }
func (t *DataContractUpdate) OwnerId() identifier.Identifier { return t.Contract.OwnerId() }
func (t *DataContractUpdate) UserTip() uint64 { return t.UserFeeIncrease }
