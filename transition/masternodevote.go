// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transition

import (
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/vote"
)

// MasternodeVote - cast a resource vote in a contested document poll
//
// the voter is the masternode identity; a later vote by the same
// voter in the same poll replaces the earlier one
type MasternodeVote struct {
	ProTxHash            identifier.Identifier
	ContractId           identifier.Identifier
	DocumentTypeName     string
	IndexName            string
	IndexValues          [][]byte
	Choice               vote.ResourceVoteChoice
	Nonce                uint64
	UserFeeIncrease      uint64
	SignaturePublicKeyId uint32
	Signature            []byte
}

func (t *MasternodeVote) Tag() TagType { return MasternodeVoteTag }
func (t *MasternodeVote) OwnerId() identifier.Identifier { return t.ProTxHash }
func (t *MasternodeVote) UserTip() uint64 { return t.UserFeeIncrease }

// Poll - the poll this vote addresses
func (t *MasternodeVote) Poll() *vote.ContestedDocumentResourceVotePoll {
	return &vote.ContestedDocumentResourceVotePoll{
		ContractId:       t.ContractId,
		DocumentTypeName: t.DocumentTypeName,
		IndexName:        t.IndexName,
		IndexValues:      t.IndexValues,
	}
}
