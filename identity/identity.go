// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package identity - platform identities
//
// an identity owns a credit balance, a revision counter and a set of
// public keys; it is created by an identity create transition funded
// from an asset lock and is never physically deleted
//
// the stored shape is version tagged: exactly one variant struct per
// structure version, with the Identity interface forwarding to the
// active variant
package identity

import (
	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/platformversion"
)

// Identity - access to any structure version of an identity
type Identity interface {
	Version() platformversion.FeatureVersion
	Id() identifier.Identifier
	Balance() credits.Credits
	Revision() uint64
	PublicKeys() []PublicKey
	PublicKey(keyId uint32) (PublicKey, bool)
	SetBalance(balance credits.Credits)
	SetRevision(revision uint64)
	AddPublicKeys(keys []PublicKey) error
	DisablePublicKeys(keyIds []uint32, at uint64) error
	Pack() []byte
}

// V0 - structure version zero of an identity
type V0 struct {
	IdentityId identifier.Identifier
	Keys       []PublicKey
	Credits    credits.Credits
	Rev        uint64
}

// NewV0 - assemble a version zero identity
//
// key ids must be unique; this is the only invariant enforced at
// construction, balance limits are the caller's concern
func NewV0(id identifier.Identifier, keys []PublicKey, balance credits.Credits) (*V0, error) {
	seen := make(map[uint32]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := seen[key.KeyId()]; ok {
			return nil, fault.DuplicatedKeyId
		}
		seen[key.KeyId()] = struct{}{}
	}
	return &V0{
		IdentityId: id,
		Keys:       keys,
		Credits:    balance,
		Rev:        0,
	}, nil
}

func (identity *V0) Version() platformversion.FeatureVersion { return 0 }
func (identity *V0) Id() identifier.Identifier               { return identity.IdentityId }
func (identity *V0) Balance() credits.Credits                { return identity.Credits }
func (identity *V0) Revision() uint64                        { return identity.Rev }
func (identity *V0) PublicKeys() []PublicKey                 { return identity.Keys }

func (identity *V0) PublicKey(keyId uint32) (PublicKey, bool) {
	for _, key := range identity.Keys {
		if key.KeyId() == keyId {
			return key, true
		}
	}
	return nil, false
}

func (identity *V0) SetBalance(balance credits.Credits) { identity.Credits = balance }
func (identity *V0) SetRevision(revision uint64)        { identity.Rev = revision }

// AddPublicKeys - append keys, rejecting duplicate ids
func (identity *V0) AddPublicKeys(keys []PublicKey) error {
	for _, key := range keys {
		if _, ok := identity.PublicKey(key.KeyId()); ok {
			return fault.DuplicatedKeyId
		}
		identity.Keys = append(identity.Keys, key)
	}
	return nil
}

// DisablePublicKeys - mark keys disabled at a block time
func (identity *V0) DisablePublicKeys(keyIds []uint32, at uint64) error {
	for _, keyId := range keyIds {
		key, ok := identity.PublicKey(keyId)
		if !ok {
			return fault.IdentityKeyNotFound
		}
		key.Disable(at)
	}
	return nil
}
