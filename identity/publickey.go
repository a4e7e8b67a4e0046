// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"bytes"

	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"

	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/platformversion"
)

// Purpose - what a key may be used for
type Purpose uint8

const (
	Authentication Purpose = iota
	Encryption
	Decryption
	Transfer
	System
	Voting
	Owner
	invalidPurpose
)

// Valid - range check a purpose
func (p Purpose) Valid() bool { return p < invalidPurpose }

// String - purpose represented as a string
func (p Purpose) String() string {
	switch p {
	case Authentication:
		return "Authentication"
	case Encryption:
		return "Encryption"
	case Decryption:
		return "Decryption"
	case Transfer:
		return "Transfer"
	case System:
		return "System"
	case Voting:
		return "Voting"
	case Owner:
		return "Owner"
	default:
		return "*Unknown*"
	}
}

// SecurityLevel - how strongly a key must be protected
type SecurityLevel uint8

const (
	Master SecurityLevel = iota
	Critical
	High
	Medium
	invalidSecurityLevel
)

// Valid - range check a security level
func (l SecurityLevel) Valid() bool { return l < invalidSecurityLevel }

// String - security level represented as a string
func (l SecurityLevel) String() string {
	switch l {
	case Master:
		return "Master"
	case Critical:
		return "Critical"
	case High:
		return "High"
	case Medium:
		return "Medium"
	default:
		return "*Unknown*"
	}
}

// KeyType - cryptographic scheme of the key data
type KeyType uint8

const (
	Ed25519 KeyType = iota
	ECDSASecp256k1
	BLS12381
	invalidKeyType
)

// Valid - range check a key type
func (k KeyType) Valid() bool { return k < invalidKeyType }

// operator identities created from the masternode list carry keys at
// fixed ids; the assignment is a protocol convention so keep the
// indices in one place - a divergent id seen on chain is a
// compatibility bug, not something to correct locally
const (
	OperatorOwnerKeyId          = uint32(0)
	OperatorAuthenticationKeyId = uint32(1)
	OperatorPayoutKeyId         = uint32(2)
)

// BoundsKind - how contract bounds restrict a key
type BoundsKind uint8

const (
	SingleContract BoundsKind = iota
	SingleContractDocumentType
	invalidBoundsKind
)

// ContractBounds - optional restriction of a key to one contract, and
// optionally to one of its document types
type ContractBounds struct {
	Kind             BoundsKind
	ContractId       identifier.Identifier
	DocumentTypeName string
}

// KeyHashLength - bytes in a public key hash
const KeyHashLength = 20

// PublicKey - access to any structure version of an identity key
type PublicKey interface {
	Version() platformversion.FeatureVersion
	KeyId() uint32
	KeyPurpose() Purpose
	KeySecurityLevel() SecurityLevel
	KeyType() KeyType
	KeyData() []byte
	Bounds() *ContractBounds
	DisabledAt() (uint64, bool)
	Disable(at uint64)
	Hash() [KeyHashLength]byte
	Verify(message []byte, signature []byte) error
	Pack() []byte
}

// KeyV0 - structure version zero of an identity public key
type KeyV0 struct {
	Id            uint32
	Purpose       Purpose
	SecurityLevel SecurityLevel
	Type          KeyType
	ReadOnly      bool
	Data          []byte
	ContractLimit *ContractBounds
	Disabled      *uint64
}

func (key *KeyV0) Version() platformversion.FeatureVersion { return 0 }
func (key *KeyV0) KeyId() uint32                           { return key.Id }
func (key *KeyV0) KeyPurpose() Purpose                     { return key.Purpose }
func (key *KeyV0) KeySecurityLevel() SecurityLevel         { return key.SecurityLevel }
func (key *KeyV0) KeyType() KeyType                        { return key.Type }
func (key *KeyV0) KeyData() []byte                         { return key.Data }
func (key *KeyV0) Bounds() *ContractBounds                 { return key.ContractLimit }

func (key *KeyV0) DisabledAt() (uint64, bool) {
	if nil == key.Disabled {
		return 0, false
	}
	return *key.Disabled, true
}

func (key *KeyV0) Disable(at uint64) {
	key.Disabled = &at
}

// Hash - 20 byte hash of the key data
//
// this is the exact key used under PublicKeyHashesToIdentities, so the
// construction must never change
func (key *KeyV0) Hash() [KeyHashLength]byte {
	inner := sha3.Sum256(key.Data)
	outer := ripemd160.New()
	outer.Write(inner[:])
	var hash [KeyHashLength]byte
	copy(hash[:], outer.Sum(nil))
	return hash
}

// Verify - check a signature made by this key
func (key *KeyV0) Verify(message []byte, signature []byte) error {
	switch key.Type {
	case Ed25519:
		if ed25519.PublicKeySize != len(key.Data) {
			return fault.SignatureNotVerifiable
		}
		if !ed25519.Verify(ed25519.PublicKey(key.Data), message, signature) {
			return fault.SignatureNotVerifiable
		}
		return nil
	default:
		// other schemes are structurally valid key types but this
		// node cannot check their signatures
		return fault.SignatureNotVerifiable
	}
}

// SameData - true if another key carries identical key data
func (key *KeyV0) SameData(other PublicKey) bool {
	return bytes.Equal(key.Data, other.KeyData())
}
