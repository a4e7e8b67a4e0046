// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// consensus tier: expected, data-dependent, recoverable per transition
type BasicError GenericError
type StateError GenericError

// fatal tier: must abort the current block processing attempt
type ProtocolError GenericError
type DriveError GenericError
type ExecutionError GenericError

// proof tier: verification of untrusted input
type ProofError GenericError

// basic errors - structural, stateless - keep in alphabetic order
var (
	DataContractIdMismatch        = BasicError("data contract id does not match its derivation")
	DocumentFieldMissing          = BasicError("required document field is missing")
	DocumentFieldTooLong          = BasicError("document field exceeds its maximum length")
	DocumentFieldTypeMismatch     = BasicError("document field type does not match schema")
	DocumentFieldUnknown          = BasicError("document field is not defined by schema")
	DocumentIdMismatch            = BasicError("document id does not match its derivation")
	DuplicatedKeyData             = BasicError("duplicated public key data")
	DuplicatedKeyId               = BasicError("duplicated public key id")
	IdentityIdMismatch            = BasicError("identity id does not match its derivation")
	IndexMissingControlGroup      = BasicError("contested index references undefined main control group")
	InvalidAmount                 = BasicError("amount is out of range")
	InvalidIdentifierLength       = BasicError("identifier must be 32 bytes")
	InvalidKeyPurpose             = BasicError("invalid public key purpose")
	InvalidKeyType                = BasicError("invalid public key type")
	InvalidNonce                  = BasicError("nonce is invalid")
	InvalidRevision               = BasicError("revision is invalid")
	InvalidSecurityLevel          = BasicError("invalid public key security level")
	InvalidTokenAmount            = BasicError("token amount is out of range")
	InvalidVoteChoice             = BasicError("invalid resource vote choice")
	MissingMasterKey              = BasicError("identity requires a master authentication key")
	SignatureNotVerifiable        = BasicError("signature cannot be verified")
	TokenNoteTooLong              = BasicError("token note is too long")
	UnsupportedQueryVersion       = BasicError("query version is not supported")
	WithdrawalOutputScriptInvalid = BasicError("withdrawal output script is invalid")
)

// state errors - storage dependent - keep in alphabetic order
var (
	AssetLockAlreadySpent          = StateError("asset lock outpoint was already spent")
	AssetLockProofInvalid          = StateError("asset lock proof is invalid")
	DataContractAlreadyExists      = StateError("data contract already exists")
	DataContractNotFound           = StateError("data contract was not found")
	DataContractRevisionMismatch   = StateError("data contract revision is not the next revision")
	DataContractUpdateIncompatible = StateError("data contract update breaks compatibility rules")
	DataTriggerConditionFailed     = StateError("data trigger condition was not satisfied")
	DocumentAlreadyExists          = StateError("document already exists")
	DocumentContestNotJoinable     = StateError("document contest is not joinable")
	DocumentDeletionProhibited     = StateError("document type prohibits deletion")
	DocumentImmutableFieldChanged  = StateError("immutable document field cannot change")
	DocumentNotFound               = StateError("document was not found")
	DocumentNotTransferable        = StateError("document type prohibits transfer")
	DocumentOwnerMismatch          = StateError("document is not owned by this identity")
	DocumentRevisionMismatch       = StateError("document revision is not the next revision")
	DocumentTypeNotFound           = StateError("document type is not defined by the contract")
	DuplicateUniqueIndexValue      = StateError("unique index value already taken")
	GroupActionNotAuthorized       = StateError("identity is not authorized for this group action")
	GroupNotFound                  = StateError("group was not found")
	GroupThresholdNotMet           = StateError("group action threshold is not met")
	IdentityAlreadyExists          = StateError("identity already exists")
	IdentityInsufficientBalance    = StateError("identity balance is not enough")
	IdentityKeyAlreadyExists       = StateError("identity public key hash already exists")
	IdentityKeyNotFound            = StateError("identity public key was not found")
	IdentityNotFound               = StateError("identity was not found")
	IdentityRevisionMismatch       = StateError("identity revision is not the next revision")
	KeyBoundContractNotFound       = StateError("key contract bounds reference a missing contract")
	KeyBoundDocumentTypeNotFound   = StateError("key contract bounds reference a missing document type")
	NonceAlreadyPresentAtTip       = StateError("nonce is already present at tip")
	NonceAlreadyPresentInPast      = StateError("nonce is already present in past")
	NonceTooFarInFuture            = StateError("nonce is too far in future")
	NonceTooFarInPast              = StateError("nonce is too far in past")
	PrefundedBalanceInsufficient   = StateError("prefunded specialized balance is not enough")
	TokenFrozen                    = StateError("token account is frozen")
	TokenInsufficientBalance       = StateError("token balance is not enough")
	TokenMaxSupplyExceeded         = StateError("token max supply exceeded")
	TokenNoDistribution            = StateError("token has no matching distribution")
	TokenNotFound                  = StateError("token was not found")
	TokenPaused                    = StateError("token is paused by emergency action")
	TokenPriceMismatch             = StateError("agreed price does not match the pricing schedule")
	VotePollNotFound               = StateError("vote poll was not found")
)

// fatal errors - keep in alphabetic order
var (
	AlreadyInitialised     = ExecutionError("already initialised")
	CoreChainRPCFailed     = ExecutionError("core chain RPC returned an error")
	CoreChainUnavailable   = ExecutionError("core chain is unavailable")
	CorruptedCodeExecution = ExecutionError("corrupted code execution")
	CorruptedDriveState    = DriveError("corrupted drive state")
	CorruptedSerialization = ProtocolError("corrupted serialization")
	CreditsOverflow        = DriveError("credits arithmetic overflow")
	InvalidChain           = ExecutionError("invalid chain")
	InvalidConfiguration   = ExecutionError("invalid configuration")
	InvalidTreePath        = DriveError("invalid tree path")
	NotInitialised         = ExecutionError("not initialised")
	TransactionInUse       = DriveError("transaction already in use")
	TransactionNotStarted  = DriveError("transaction is not started")
	WrongElementType       = DriveError("wrong element type at key")
)

// proof errors
var (
	CorruptedProof        = ProofError("corrupted proof")
	IncompleteProof       = ProofError("incomplete proof")
	IncorrectProof        = ProofError("incorrect proof")
	ProofAnchorNotFound   = ProofError("proof anchor key is not stored")
	UnexpectedResultProof = ProofError("proof returned an unexpected result")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e BasicError) Error() string     { return string(e) }
func (e StateError) Error() string     { return string(e) }
func (e ProtocolError) Error() string  { return string(e) }
func (e DriveError) Error() string     { return string(e) }
func (e ExecutionError) Error() string { return string(e) }
func (e ProofError) Error() string     { return string(e) }

// IsConsensus - true for errors that invalidate one transition only
func IsConsensus(e error) bool {
	switch e.(type) {
	case BasicError, StateError:
		return true
	default:
		return false
	}
}

// IsFatal - true for errors that must abort block processing
func IsFatal(e error) bool {
	switch e.(type) {
	case ProtocolError, DriveError, ExecutionError, UnknownVersionMismatch:
		return true
	default:
		return false
	}
}

// IsProof - true for proof verification failures
func IsProof(e error) bool {
	_, ok := e.(ProofError)
	return ok
}
