// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transition

import (
	"github.com/dashpay/platformd/document"
	"github.com/dashpay/platformd/identifier"
)

// DocumentOperation - what one document transition does
type DocumentOperation uint8

const (
	DocumentCreate DocumentOperation = iota
	DocumentReplace
	DocumentDelete
	DocumentTransfer
	DocumentPurchase
	invalidDocumentOperation
)

// DocumentTransition - one document change inside a batch
//
// only the fields relevant to the operation are set: entropy and data
// for create, revision and data for replace, recipient for transfer,
// price and revision for purchase
type DocumentTransition struct {
	Operation        DocumentOperation
	DocumentId       identifier.Identifier
	ContractId       identifier.Identifier
	DocumentTypeName string

	// per identity and contract replay protection
	Nonce uint64

	Entropy  []byte
	Data     map[string]document.Value
	Revision uint64

	// credits locked to pay for a contested resource vote resolution
	PrefundedVotingBalance uint64

	Recipient identifier.Identifier
	Price     uint64
}

// DocumentsBatch - ordered document transitions of one owner
//
// transitions apply in order; the first consensus failure invalidates
// the whole batch
type DocumentsBatch struct {
	Owner                identifier.Identifier
	Transitions          []DocumentTransition
	UserFeeIncrease      uint64
	SignaturePublicKeyId uint32
	Signature            []byte
}

func (t *DocumentsBatch) Tag() TagType { return DocumentsBatchTag }
func (t *DocumentsBatch) OwnerId() identifier.Identifier { return t.Owner }
func (t *DocumentsBatch) UserTip() uint64 { return t.UserFeeIncrease }
