// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package validator

import (
	"github.com/dashpay/platformd/platformversion"
	"github.com/dashpay/platformd/transition"
)

// map a transition to its validation manifest leaf
//
// every validation stage checks its leaf before doing any work, so a
// manifest asking for an implementation this binary does not have is
// caught as a version mismatch instead of silently running version zero
func dispatchStateValidation(t transition.Transition, pv *platformversion.PlatformVersion) error {
	v := &pv.Validation
	switch t.(type) {
	case *transition.IdentityCreate:
		return platformversion.Dispatch("validation.identity.create", v.IdentityCreate, 0)
	case *transition.IdentityTopUp:
		return platformversion.Dispatch("validation.identity.topup", v.IdentityTopUp, 0)
	case *transition.IdentityUpdate:
		return platformversion.Dispatch("validation.identity.update", v.IdentityUpdate, 0)
	case *transition.IdentityCreditWithdrawal:
		return platformversion.Dispatch("validation.credit.withdrawal", v.CreditWithdrawal, 0)
	case *transition.IdentityCreditTransfer:
		return platformversion.Dispatch("validation.credit.transfer", v.CreditTransfer, 0)
	case *transition.DataContractCreate:
		return platformversion.Dispatch("validation.contract.create", v.ContractCreate, 0)
	case *transition.DataContractUpdate:
		return platformversion.Dispatch("validation.contract.update", v.ContractUpdate, 0)
	case *transition.DocumentsBatch:
		return platformversion.Dispatch("validation.documents.batch", v.DocumentsBatch, 0)
	case *transition.TokenMint, *transition.TokenBurn, *transition.TokenTransfer,
		*transition.TokenFreeze, *transition.TokenUnfreeze, *transition.TokenEmergencyAction,
		*transition.TokenClaim, *transition.TokenDirectPurchase, *transition.TokenConfigUpdate:
		return platformversion.Dispatch("validation.token", v.Token, 0)
	case *transition.MasternodeVote:
		return platformversion.Dispatch("validation.masternode.vote", v.MasternodeVote, 0)
	}
	return nil
}
