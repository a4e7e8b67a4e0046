// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package datacontract

// canonical stored form
//
// maps are emitted in sorted key order so identical contracts always
// produce identical bytes

import (
	"bytes"
	"sort"

	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/util"
)

// Pack - canonical bytes of a version zero contract
func (c *V0) Pack() []byte {
	message := util.ToVarint64(uint64(c.Version()))
	return c.packCommon(message)
}

// Pack - canonical bytes of a version one contract
func (c *V1) Pack() []byte {
	message := util.ToVarint64(uint64(c.Version()))
	message = c.packCommon(message)

	message = util.AppendUint64(message, uint64(len(c.ContractGroups)))
	for _, position := range sortedGroupPositions(c.ContractGroups) {
		group := c.ContractGroups[position]
		message = util.AppendUint64(message, uint64(position))
		message = util.AppendUint64(message, uint64(len(group.Members)))
		for _, member := range group.sortedMembers() {
			message = util.AppendFixed(message, member[:])
			message = util.AppendUint64(message, uint64(group.Members[member]))
		}
		message = util.AppendUint64(message, uint64(group.RequiredPower))
	}

	message = util.AppendUint64(message, uint64(len(c.ContractTokens)))
	for _, position := range sortedTokenPositions(c.ContractTokens) {
		message = util.AppendUint64(message, uint64(position))
		message = packToken(message, c.ContractTokens[position])
	}
	return message
}

func (c *V0) packCommon(message []byte) []byte {
	message = util.AppendFixed(message, c.ContractId[:])
	message = util.AppendFixed(message, c.Owner[:])
	message = util.AppendUint64(message, c.Revision)
	message = appendBool(message, c.History)
	message = util.AppendUint64(message, uint64(len(c.Types)))
	for _, dt := range c.Types {
		message = packDocumentType(message, dt)
	}
	return message
}

func packDocumentType(message []byte, dt *DocumentType) []byte {
	message = util.AppendString(message, dt.Name)
	message = appendBool(message, dt.KeepsHistory)
	message = appendBool(message, dt.CanBeDeleted)
	message = appendBool(message, dt.Transferable)

	message = util.AppendUint64(message, uint64(len(dt.Properties)))
	for _, property := range dt.Properties {
		message = util.AppendString(message, property.Name)
		message = util.AppendUint64(message, uint64(property.Type))
		message = appendBool(message, property.Required)
		message = appendBool(message, property.Immutable)
		message = util.AppendUint64(message, property.MaxLength)
	}

	message = util.AppendUint64(message, uint64(len(dt.Indices)))
	for i := range dt.Indices {
		index := &dt.Indices[i]
		message = util.AppendString(message, index.Name)
		message = appendBool(message, index.Unique)
		message = util.AppendUint64(message, uint64(len(index.Properties)))
		for _, propertyName := range index.Properties {
			message = util.AppendString(message, propertyName)
		}
		if nil == index.Contested {
			message = appendBool(message, false)
		} else {
			message = appendBool(message, true)
			message = util.AppendString(message, index.Contested.MatchPrefix)
			if nil == index.Contested.MainControlGroup {
				message = appendBool(message, false)
			} else {
				message = appendBool(message, true)
				message = util.AppendUint64(message, uint64(*index.Contested.MainControlGroup))
			}
		}
	}
	return message
}

// PackTokenConfiguration - canonical bytes of a standalone token
// configuration, as carried by a configuration update
func PackTokenConfiguration(tc *TokenConfiguration) []byte {
	return packToken(nil, tc)
}

func packToken(message []byte, tc *TokenConfiguration) []byte {
	message = util.AppendUint64(message, tc.BaseSupply)
	message = util.AppendUint64(message, tc.MaxSupply)
	message = appendBool(message, tc.StartAsPaused)
	if nil == tc.MainControlGroup {
		message = appendBool(message, false)
	} else {
		message = appendBool(message, true)
		message = util.AppendUint64(message, uint64(*tc.MainControlGroup))
	}

	for _, taker := range []*ActionTaker{
		&tc.Manager.Mint,
		&tc.Manager.Burn,
		&tc.Manager.Freeze,
		&tc.Manager.Unfreeze,
		&tc.Manager.EmergencyAction,
		&tc.Manager.ConfigUpdate,
	} {
		message = util.AppendUint64(message, uint64(taker.Kind))
		message = util.AppendFixed(message, taker.Identity[:])
		message = util.AppendUint64(message, uint64(taker.Group))
	}

	if nil == tc.Distribution.Perpetual {
		message = appendBool(message, false)
	} else {
		message = appendBool(message, true)
		message = util.AppendUint64(message, tc.Distribution.Perpetual.Amount)
		message = util.AppendUint64(message, tc.Distribution.Perpetual.IntervalBlocks)
		message = util.AppendFixed(message, tc.Distribution.Perpetual.Recipient[:])
	}

	if nil == tc.Distribution.PreProgrammed {
		message = appendBool(message, false)
	} else {
		message = appendBool(message, true)
		releases := tc.Distribution.PreProgrammed.Releases
		message = util.AppendUint64(message, uint64(len(releases)))
		for _, when := range sortedUint64Keys(releases) {
			message = util.AppendUint64(message, when)
			recipients := releases[when]
			message = util.AppendUint64(message, uint64(len(recipients)))
			for _, recipient := range sortedIdentifierKeys(recipients) {
				message = util.AppendFixed(message, recipient[:])
				message = util.AppendUint64(message, recipients[recipient])
			}
		}
	}

	message = util.AppendUint64(message, uint64(len(tc.PricingSchedule)))
	for _, minimum := range sortedScheduleKeys(tc.PricingSchedule) {
		message = util.AppendUint64(message, minimum)
		message = util.AppendUint64(message, tc.PricingSchedule[minimum])
	}
	return message
}

func appendBool(message []byte, value bool) []byte {
	if value {
		return append(message, 1)
	}
	return append(message, 0)
}

func sortedUint64Keys(m map[uint64]map[identifier.Identifier]uint64) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedIdentifierKeys(m map[identifier.Identifier]uint64) []identifier.Identifier {
	keys := make([]identifier.Identifier, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})
	return keys
}

func sortedScheduleKeys(m map[uint64]uint64) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
