// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// stable numeric codes for consensus errors
//
// these values form part of the per-transaction block results and must
// never be renumbered; add new errors at the end of their range
//
// ranges: 0 = success, 102xx structural, 403xx..406xx state
var codes = map[error]uint32{
	// basic
	InvalidIdentifierLength:       10200,
	DuplicatedKeyId:               10201,
	DuplicatedKeyData:             10202,
	InvalidKeyPurpose:             10203,
	InvalidKeyType:                10204,
	InvalidSecurityLevel:          10205,
	MissingMasterKey:              10206,
	InvalidNonce:                  10207,
	InvalidRevision:               10208,
	InvalidAmount:                 10209,
	InvalidTokenAmount:            10210,
	TokenNoteTooLong:              10211,
	InvalidVoteChoice:             10212,
	DocumentFieldMissing:          10213,
	DocumentFieldTypeMismatch:     10214,
	DocumentFieldUnknown:          10215,
	IndexMissingControlGroup:      10216,
	SignatureNotVerifiable:        10217,
	WithdrawalOutputScriptInvalid: 10218,
	UnsupportedQueryVersion:       10219,
	DocumentFieldTooLong:          10220,
	DataContractIdMismatch:        10221,
	DocumentIdMismatch:            10222,
	IdentityIdMismatch:            10223,

	// state: identity
	IdentityNotFound:             40300,
	IdentityAlreadyExists:        40301,
	IdentityKeyAlreadyExists:     40302,
	IdentityInsufficientBalance:  40303,
	IdentityRevisionMismatch:     40304,
	AssetLockAlreadySpent:        40305,
	AssetLockProofInvalid:        40306,
	KeyBoundContractNotFound:     40307,
	KeyBoundDocumentTypeNotFound: 40308,
	IdentityKeyNotFound:          40309,

	// state: nonce
	NonceAlreadyPresentAtTip:  40310,
	NonceAlreadyPresentInPast: 40311,
	NonceTooFarInFuture:       40312,
	NonceTooFarInPast:         40313,

	// state: contract
	DataContractNotFound:           40400,
	DataContractAlreadyExists:      40401,
	DataContractUpdateIncompatible: 40402,
	DataContractRevisionMismatch:   40403,

	// state: document
	DocumentNotFound:              40500,
	DocumentAlreadyExists:         40501,
	DocumentOwnerMismatch:         40502,
	DocumentRevisionMismatch:      40503,
	DocumentTypeNotFound:          40504,
	DocumentImmutableFieldChanged: 40505,
	DuplicateUniqueIndexValue:     40506,
	DocumentContestNotJoinable:    40507,
	DataTriggerConditionFailed:    40508,
	DocumentDeletionProhibited:    40509,
	DocumentNotTransferable:       40510,

	// state: token and group
	TokenNotFound:            40600,
	TokenInsufficientBalance: 40601,
	TokenFrozen:              40602,
	TokenPaused:              40603,
	TokenMaxSupplyExceeded:   40604,
	TokenPriceMismatch:       40605,
	TokenNoDistribution:      40606,
	GroupNotFound:            40610,
	GroupActionNotAuthorized: 40611,
	GroupThresholdNotMet:     40612,

	// state: voting
	VotePollNotFound:             40700,
	PrefundedBalanceInsufficient: 40701,
}

// unknown consensus errors map to this code so that a response is
// always classifiable
const UnknownConsensusCode = 49999

// Code - stable numeric code for an error
//
// returns 0 for nil, the registered code for consensus errors and
// UnknownConsensusCode for anything else
func Code(e error) uint32 {
	if nil == e {
		return 0
	}
	if code, ok := codes[e]; ok {
		return code
	}
	return UnknownConsensusCode
}
