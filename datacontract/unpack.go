// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package datacontract

import (
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/util"
)

// Unpack - decode any structure version of a stored contract
func Unpack(buffer []byte) (DataContract, error) {
	version, rest, ok := util.NextUint64(buffer)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	switch version {
	case 0:
		common, rest, err := unpackCommon(rest)
		if nil != err {
			return nil, err
		}
		if 0 != len(rest) {
			return nil, fault.CorruptedSerialization
		}
		return common, nil

	case 1:
		common, rest, err := unpackCommon(rest)
		if nil != err {
			return nil, err
		}
		contract := &V1{V0: *common}

		groupCount, rest, ok := util.NextUint64(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		if groupCount > 0 {
			contract.ContractGroups = make(map[uint16]*Group, groupCount)
		}
		for i := uint64(0); i < groupCount; i += 1 {
			var position uint64
			position, rest, ok = util.NextUint64(rest)
			if !ok || position > 0xffff {
				return nil, fault.CorruptedSerialization
			}
			var group *Group
			var err error
			group, rest, err = unpackGroup(rest)
			if nil != err {
				return nil, err
			}
			contract.ContractGroups[uint16(position)] = group
		}

		tokenCount, rest, ok := util.NextUint64(rest)
		if !ok {
			return nil, fault.CorruptedSerialization
		}
		if tokenCount > 0 {
			contract.ContractTokens = make(map[uint16]*TokenConfiguration, tokenCount)
		}
		for i := uint64(0); i < tokenCount; i += 1 {
			var position uint64
			position, rest, ok = util.NextUint64(rest)
			if !ok || position > 0xffff {
				return nil, fault.CorruptedSerialization
			}
			var tc *TokenConfiguration
			var err error
			tc, rest, err = unpackToken(rest)
			if nil != err {
				return nil, err
			}
			contract.ContractTokens[uint16(position)] = tc
		}

		if 0 != len(rest) {
			return nil, fault.CorruptedSerialization
		}
		return contract, nil

	default:
		return nil, fault.UnknownVersionMismatch{
			Method:        "datacontract.unpack",
			KnownVersions: []uint16{0, 1},
			Received:      uint16(version),
		}
	}
}

func unpackCommon(buffer []byte) (*V0, []byte, error) {
	idBytes, rest, ok := util.NextFixed(buffer, identifier.Length)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	contractId, err := identifier.FromBytes(idBytes)
	if nil != err {
		return nil, nil, fault.CorruptedSerialization
	}
	ownerBytes, rest, ok := util.NextFixed(rest, identifier.Length)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	owner, err := identifier.FromBytes(ownerBytes)
	if nil != err {
		return nil, nil, fault.CorruptedSerialization
	}
	revision, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	history, rest, ok := nextBool(rest)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}

	typeCount, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	var types []*DocumentType
	for i := uint64(0); i < typeCount; i += 1 {
		var dt *DocumentType
		dt, rest, err = unpackDocumentType(rest)
		if nil != err {
			return nil, nil, err
		}
		types = append(types, dt)
	}

	return &V0{
		ContractId: contractId,
		Owner:      owner,
		Revision:   revision,
		History:    history,
		Types:      types,
	}, rest, nil
}

func unpackDocumentType(buffer []byte) (*DocumentType, []byte, error) {
	name, rest, ok := util.NextString(buffer)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	keepsHistory, rest, ok := nextBool(rest)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	canBeDeleted, rest, ok := nextBool(rest)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	transferable, rest, ok := nextBool(rest)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}

	propertyCount, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	var properties []Property
	for i := uint64(0); i < propertyCount; i += 1 {
		var property Property
		property.Name, rest, ok = util.NextString(rest)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		var propertyType uint64
		propertyType, rest, ok = util.NextUint64(rest)
		if !ok || !PropertyType(propertyType).Valid() {
			return nil, nil, fault.CorruptedSerialization
		}
		property.Type = PropertyType(propertyType)
		property.Required, rest, ok = nextBool(rest)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		property.Immutable, rest, ok = nextBool(rest)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		property.MaxLength, rest, ok = util.NextUint64(rest)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		properties = append(properties, property)
	}

	indexCount, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	var indices []Index
	for i := uint64(0); i < indexCount; i += 1 {
		var index Index
		index.Name, rest, ok = util.NextString(rest)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		index.Unique, rest, ok = nextBool(rest)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		var nameCount uint64
		nameCount, rest, ok = util.NextUint64(rest)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		for j := uint64(0); j < nameCount; j += 1 {
			var propertyName string
			propertyName, rest, ok = util.NextString(rest)
			if !ok {
				return nil, nil, fault.CorruptedSerialization
			}
			index.Properties = append(index.Properties, propertyName)
		}
		var contested bool
		contested, rest, ok = nextBool(rest)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		if contested {
			rules := &ContestedRules{}
			rules.MatchPrefix, rest, ok = util.NextString(rest)
			if !ok {
				return nil, nil, fault.CorruptedSerialization
			}
			var hasGroup bool
			hasGroup, rest, ok = nextBool(rest)
			if !ok {
				return nil, nil, fault.CorruptedSerialization
			}
			if hasGroup {
				var position uint64
				position, rest, ok = util.NextUint64(rest)
				if !ok || position > 0xffff {
					return nil, nil, fault.CorruptedSerialization
				}
				group := uint16(position)
				rules.MainControlGroup = &group
			}
			index.Contested = rules
		}
		indices = append(indices, index)
	}

	return &DocumentType{
		Name:         name,
		Properties:   properties,
		Indices:      indices,
		KeepsHistory: keepsHistory,
		CanBeDeleted: canBeDeleted,
		Transferable: transferable,
	}, rest, nil
}

func unpackGroup(buffer []byte) (*Group, []byte, error) {
	memberCount, rest, ok := util.NextUint64(buffer)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	members := make(map[identifier.Identifier]uint32, memberCount)
	for i := uint64(0); i < memberCount; i += 1 {
		var memberBytes []byte
		memberBytes, rest, ok = util.NextFixed(rest, identifier.Length)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		member, err := identifier.FromBytes(memberBytes)
		if nil != err {
			return nil, nil, fault.CorruptedSerialization
		}
		var power uint64
		power, rest, ok = util.NextUint64(rest)
		if !ok || power > 0xffffffff {
			return nil, nil, fault.CorruptedSerialization
		}
		members[member] = uint32(power)
	}
	requiredPower, rest, ok := util.NextUint64(rest)
	if !ok || requiredPower > 0xffffffff {
		return nil, nil, fault.CorruptedSerialization
	}
	return &Group{
		Members:       members,
		RequiredPower: uint32(requiredPower),
	}, rest, nil
}

// UnpackTokenConfiguration - decode a standalone token configuration
func UnpackTokenConfiguration(buffer []byte) (*TokenConfiguration, error) {
	tc, rest, err := unpackToken(buffer)
	if nil != err {
		return nil, err
	}
	if 0 != len(rest) {
		return nil, fault.CorruptedSerialization
	}
	return tc, nil
}

func unpackToken(buffer []byte) (*TokenConfiguration, []byte, error) {
	tc := &TokenConfiguration{}

	var ok bool
	var rest []byte
	tc.BaseSupply, rest, ok = util.NextUint64(buffer)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	tc.MaxSupply, rest, ok = util.NextUint64(rest)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	tc.StartAsPaused, rest, ok = nextBool(rest)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	hasGroup, rest, ok := nextBool(rest)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	if hasGroup {
		var position uint64
		position, rest, ok = util.NextUint64(rest)
		if !ok || position > 0xffff {
			return nil, nil, fault.CorruptedSerialization
		}
		group := uint16(position)
		tc.MainControlGroup = &group
	}

	for _, taker := range []*ActionTaker{
		&tc.Manager.Mint,
		&tc.Manager.Burn,
		&tc.Manager.Freeze,
		&tc.Manager.Unfreeze,
		&tc.Manager.EmergencyAction,
		&tc.Manager.ConfigUpdate,
	} {
		var kind uint64
		kind, rest, ok = util.NextUint64(rest)
		if !ok || TakerKind(kind) >= invalidTakerKind {
			return nil, nil, fault.CorruptedSerialization
		}
		taker.Kind = TakerKind(kind)
		var idBytes []byte
		idBytes, rest, ok = util.NextFixed(rest, identifier.Length)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		id, err := identifier.FromBytes(idBytes)
		if nil != err {
			return nil, nil, fault.CorruptedSerialization
		}
		taker.Identity = id
		var group uint64
		group, rest, ok = util.NextUint64(rest)
		if !ok || group > 0xffff {
			return nil, nil, fault.CorruptedSerialization
		}
		taker.Group = uint16(group)
	}

	hasPerpetual, rest, ok := nextBool(rest)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	if hasPerpetual {
		p := &PerpetualDistribution{}
		p.Amount, rest, ok = util.NextUint64(rest)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		p.IntervalBlocks, rest, ok = util.NextUint64(rest)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		var recipientBytes []byte
		recipientBytes, rest, ok = util.NextFixed(rest, identifier.Length)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		recipient, err := identifier.FromBytes(recipientBytes)
		if nil != err {
			return nil, nil, fault.CorruptedSerialization
		}
		p.Recipient = recipient
		tc.Distribution.Perpetual = p
	}

	hasPreProgrammed, rest, ok := nextBool(rest)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	if hasPreProgrammed {
		var releaseCount uint64
		releaseCount, rest, ok = util.NextUint64(rest)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		releases := make(map[uint64]map[identifier.Identifier]uint64, releaseCount)
		for i := uint64(0); i < releaseCount; i += 1 {
			var when uint64
			when, rest, ok = util.NextUint64(rest)
			if !ok {
				return nil, nil, fault.CorruptedSerialization
			}
			var recipientCount uint64
			recipientCount, rest, ok = util.NextUint64(rest)
			if !ok {
				return nil, nil, fault.CorruptedSerialization
			}
			recipients := make(map[identifier.Identifier]uint64, recipientCount)
			for j := uint64(0); j < recipientCount; j += 1 {
				var recipientBytes []byte
				recipientBytes, rest, ok = util.NextFixed(rest, identifier.Length)
				if !ok {
					return nil, nil, fault.CorruptedSerialization
				}
				recipient, err := identifier.FromBytes(recipientBytes)
				if nil != err {
					return nil, nil, fault.CorruptedSerialization
				}
				var amount uint64
				amount, rest, ok = util.NextUint64(rest)
				if !ok {
					return nil, nil, fault.CorruptedSerialization
				}
				recipients[recipient] = amount
			}
			releases[when] = recipients
		}
		tc.Distribution.PreProgrammed = &PreProgrammedDistribution{Releases: releases}
	}

	scheduleCount, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	if scheduleCount > 0 {
		tc.PricingSchedule = make(map[uint64]uint64, scheduleCount)
	}
	for i := uint64(0); i < scheduleCount; i += 1 {
		var minimum uint64
		minimum, rest, ok = util.NextUint64(rest)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		var price uint64
		price, rest, ok = util.NextUint64(rest)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		tc.PricingSchedule[minimum] = price
	}

	return tc, rest, nil
}

func nextBool(buffer []byte) (bool, []byte, bool) {
	flag, rest, ok := util.NextFixed(buffer, 1)
	if !ok || flag[0] > 1 {
		return false, buffer, false
	}
	return 1 == flag[0], rest, true
}
