// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

// canonical stored form
//
// identity: Varint64(version) then fields in struct order, keys last;
// key: Varint64(version) then fields in struct order with optional
// fields preceded by a presence byte
//
// this byte layout is consensus critical: independent implementations
// must produce identical bytes for identical identities

import (
	"github.com/dashpay/platformd/util"
)

// Pack - canonical bytes of a version zero identity
func (identity *V0) Pack() []byte {
	message := util.ToVarint64(uint64(identity.Version()))
	message = util.AppendFixed(message, identity.IdentityId[:])
	message = util.AppendUint64(message, uint64(identity.Credits))
	message = util.AppendUint64(message, identity.Rev)
	message = util.AppendUint64(message, uint64(len(identity.Keys)))
	for _, key := range identity.Keys {
		message = util.AppendBytes(message, key.Pack())
	}
	return message
}

// Pack - canonical bytes of a version zero key
func (key *KeyV0) Pack() []byte {
	message := util.ToVarint64(uint64(key.Version()))
	message = util.AppendUint64(message, uint64(key.Id))
	message = util.AppendUint64(message, uint64(key.Purpose))
	message = util.AppendUint64(message, uint64(key.SecurityLevel))
	message = util.AppendUint64(message, uint64(key.Type))
	readOnly := byte(0)
	if key.ReadOnly {
		readOnly = 1
	}
	message = append(message, readOnly)
	message = util.AppendBytes(message, key.Data)

	if nil == key.ContractLimit {
		message = append(message, 0)
	} else {
		message = append(message, 1)
		message = util.AppendUint64(message, uint64(key.ContractLimit.Kind))
		message = util.AppendFixed(message, key.ContractLimit.ContractId[:])
		message = util.AppendString(message, key.ContractLimit.DocumentTypeName)
	}

	if nil == key.Disabled {
		message = append(message, 0)
	} else {
		message = append(message, 1)
		message = util.AppendUint64(message, *key.Disabled)
	}
	return message
}
