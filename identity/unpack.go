// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/util"
)

// Unpack - decode any structure version of a stored identity
func Unpack(buffer []byte) (Identity, error) {
	version, rest, ok := util.NextUint64(buffer)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	switch version {
	case 0:
		return unpackV0(rest)
	default:
		return nil, fault.UnknownVersionMismatch{
			Method:        "identity.unpack",
			KnownVersions: []uint16{0},
			Received:      uint16(version),
		}
	}
}

func unpackV0(buffer []byte) (*V0, error) {
	idBytes, rest, ok := util.NextFixed(buffer, identifier.Length)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	id, err := identifier.FromBytes(idBytes)
	if nil != err {
		return nil, fault.CorruptedSerialization
	}

	balance, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	revision, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	keyCount, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}

	keys := make([]PublicKey, 0, keyCount)
	for i := uint64(0); i < keyCount; i += 1 {
		var packed []byte
		packed, rest, ok = util.NextBytes(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		key, err := UnpackKey(packed)
		if nil != err {
			return nil, err
		}
		keys = append(keys, key)
	}

	if 0 != len(rest) {
		return nil, fault.CorruptedSerialization
	}

	if credits.Credits(balance) > credits.MaxCredits {
		return nil, fault.CorruptedSerialization
	}

	return &V0{
		IdentityId: id,
		Keys:       keys,
		Credits:    credits.Credits(balance),
		Rev:        revision,
	}, nil
}

// UnpackKey - decode any structure version of a public key
func UnpackKey(buffer []byte) (PublicKey, error) {
	version, rest, ok := util.NextUint64(buffer)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	switch version {
	case 0:
		return unpackKeyV0(rest)
	default:
		return nil, fault.UnknownVersionMismatch{
			Method:        "identity.unpack-key",
			KnownVersions: []uint16{0},
			Received:      uint16(version),
		}
	}
}

func unpackKeyV0(buffer []byte) (*KeyV0, error) {
	keyId, rest, ok := util.NextUint64(buffer)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	purpose, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	securityLevel, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	keyType, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	readOnlyByte, rest, ok := util.NextFixed(rest, 1)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	data, rest, ok := util.NextBytes(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}

	key := &KeyV0{
		Id:            uint32(keyId),
		Purpose:       Purpose(purpose),
		SecurityLevel: SecurityLevel(securityLevel),
		Type:          KeyType(keyType),
		ReadOnly:      1 == readOnlyByte[0],
		Data:          data,
	}
	if !key.Purpose.Valid() || !key.SecurityLevel.Valid() || !key.Type.Valid() {
		return nil, fault.CorruptedSerialization
	}

	boundsFlag, rest, ok := util.NextFixed(rest, 1)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	if 1 == boundsFlag[0] {
		kind, r, ok := util.NextUint64(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		contractBytes, r, ok := util.NextFixed(r, identifier.Length)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		contractId, err := identifier.FromBytes(contractBytes)
		if nil != err {
			return nil, fault.CorruptedSerialization
		}
		documentTypeName, r, ok := util.NextString(r)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		if BoundsKind(kind) >= invalidBoundsKind {
			return nil, fault.CorruptedSerialization
		}
		key.ContractLimit = &ContractBounds{
			Kind:             BoundsKind(kind),
			ContractId:       contractId,
			DocumentTypeName: documentTypeName,
		}
		rest = r
	}

	disabledFlag, rest, ok := util.NextFixed(rest, 1)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	if 1 == disabledFlag[0] {
		at, r, ok := util.NextUint64(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		key.Disabled = &at
		rest = r
	}

	if 0 != len(rest) {
		return nil, fault.CorruptedSerialization
	}
	return key, nil
}
