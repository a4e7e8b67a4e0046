// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package platformversion - the protocol version manifest
//
// every versioned method reads one leaf of this table to select its
// numbered implementation; new behaviour is added as a new numbered
// function and a new manifest entry, never by editing old versions
package platformversion

// FeatureVersion - implementation number of one versioned method
type FeatureVersion uint16

// FeatureVersionBounds - supported version window for query features
type FeatureVersionBounds struct {
	Min     FeatureVersion
	Max     FeatureVersion
	Default FeatureVersion
}

// Contains - check a requested version against the bounds
func (b FeatureVersionBounds) Contains(version FeatureVersion) bool {
	return version >= b.Min && version <= b.Max
}

// DPPVersions - structure versions of the domain model
type DPPVersions struct {
	IdentityStructure     FeatureVersion
	PublicKeyStructure    FeatureVersion
	DataContractStructure FeatureVersion
	DocumentStructure     FeatureVersion
	TransitionWireFormat  FeatureVersion
	VoteStructure         FeatureVersion
}

// ValidationVersions - implementation numbers of validators
type ValidationVersions struct {
	IdentityCreate     FeatureVersion
	IdentityTopUp      FeatureVersion
	IdentityUpdate     FeatureVersion
	CreditWithdrawal   FeatureVersion
	CreditTransfer     FeatureVersion
	ContractCreate     FeatureVersion
	ContractUpdate     FeatureVersion
	DocumentsBatch     FeatureVersion
	Token              FeatureVersion
	MasternodeVote     FeatureVersion
	ContractBoundsKeys FeatureVersion
	NonceMerge         FeatureVersion
}

// DriveVersions - implementation numbers of the storage operation layer
type DriveVersions struct {
	IdentityOperations FeatureVersion
	BalanceOperations  FeatureVersion
	ContractOperations FeatureVersion
	DocumentOperations FeatureVersion
	TokenOperations    FeatureVersion
	VoteOperations     FeatureVersion
	Conversion         FeatureVersion
	Proofs             FeatureVersion
}

// FeeVersion - fee constants active for one protocol version
//
// all values are in credits; changing any value is a protocol change
// and therefore requires a new manifest entry
type FeeVersion struct {
	Version                 FeatureVersion
	StoragePerByte          uint64
	ProcessingPerByte       uint64
	ProcessingPerOperation  uint64
	SeekProcessingCost      uint64
	DefaultUserTip          uint64
	StorageRefundPercentage uint64 // of original storage fee, per removed byte
}

// QueryVersions - supported wire format windows of the query boundary
type QueryVersions struct {
	Identity        FeatureVersionBounds
	IdentityBalance FeatureVersionBounds
	DataContract    FeatureVersionBounds
	Documents       FeatureVersionBounds
	TokenBalance    FeatureVersionBounds
	VotePoll        FeatureVersionBounds
	TotalCredits    FeatureVersionBounds
}

// PlatformVersion - the complete manifest for one protocol version
//
// immutable after process initialisation; passed explicitly through
// every versioned call so that validation stays pure and testable
type PlatformVersion struct {
	ProtocolVersion uint32
	DPP             DPPVersions
	Validation      ValidationVersions
	Drive           DriveVersions
	Fees            FeeVersion
	Queries         QueryVersions
}

// V1 - the initial protocol version
//
// all methods at implementation zero
var V1 = &PlatformVersion{
	ProtocolVersion: 1,
	DPP:             DPPVersions{},
	Validation:      ValidationVersions{},
	Drive:           DriveVersions{},
	Fees: FeeVersion{
		Version:                 0,
		StoragePerByte:          27,
		ProcessingPerByte:       12,
		ProcessingPerOperation:  500,
		SeekProcessingCost:      100,
		DefaultUserTip:          0,
		StorageRefundPercentage: 95,
	},
	Queries: QueryVersions{
		Identity:        FeatureVersionBounds{Min: 0, Max: 0, Default: 0},
		IdentityBalance: FeatureVersionBounds{Min: 0, Max: 0, Default: 0},
		DataContract:    FeatureVersionBounds{Min: 0, Max: 0, Default: 0},
		Documents:       FeatureVersionBounds{Min: 0, Max: 0, Default: 0},
		TokenBalance:    FeatureVersionBounds{Min: 0, Max: 0, Default: 0},
		VotePoll:        FeatureVersionBounds{Min: 0, Max: 0, Default: 0},
		TotalCredits:    FeatureVersionBounds{Min: 0, Max: 0, Default: 0},
	},
}

// Latest - the newest protocol version this binary implements
var Latest = V1

// all known versions in ascending protocol version order
var knownVersions = []*PlatformVersion{V1}

// FromProtocolVersion - look up the manifest for a protocol version
func FromProtocolVersion(protocolVersion uint32) (*PlatformVersion, bool) {
	for _, v := range knownVersions {
		if v.ProtocolVersion == protocolVersion {
			return v, true
		}
	}
	return nil, false
}
