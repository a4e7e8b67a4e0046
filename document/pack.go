// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package document

import (
	"sort"

	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/util"
)

// value tags in the canonical form; never renumber
const (
	tagString     = 0x00
	tagInteger    = 0x01
	tagBytes      = 0x02
	tagBoolean    = 0x03
	tagIdentifier = 0x04
)

// Pack - canonical bytes of a version zero document
//
// fields are emitted in sorted name order so the same document always
// packs to the same bytes
func (d *V0) Pack() []byte {
	message := util.ToVarint64(uint64(d.Version()))
	message = util.AppendFixed(message, d.DocumentId[:])
	message = util.AppendFixed(message, d.Owner[:])
	message = util.AppendUint64(message, d.Revision)
	message = util.AppendUint64(message, d.CreatedAt)
	message = util.AppendUint64(message, d.UpdatedAt)
	return PackFields(message, d.Properties)
}

// PackFields - append the canonical bytes of a field map
func PackFields(message []byte, fields map[string]Value) []byte {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	message = util.AppendUint64(message, uint64(len(names)))
	for _, name := range names {
		message = util.AppendString(message, name)
		message = packValue(message, fields[name])
	}
	return message
}

func packValue(message []byte, value Value) []byte {
	switch v := value.(type) {
	case StringValue:
		message = append(message, tagString)
		message = util.AppendString(message, string(v))
	case IntegerValue:
		message = append(message, tagInteger)
		message = util.AppendUint64(message, zigzag(int64(v)))
	case BytesValue:
		message = append(message, tagBytes)
		message = util.AppendBytes(message, v)
	case BooleanValue:
		message = append(message, tagBoolean)
		if v {
			message = append(message, 1)
		} else {
			message = append(message, 0)
		}
	case IdentifierValue:
		message = append(message, tagIdentifier)
		message = util.AppendFixed(message, v[:])
	}
	return message
}

// Unpack - decode any structure version of a stored document
func Unpack(buffer []byte) (Document, error) {
	version, rest, ok := util.NextUint64(buffer)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	switch version {
	case 0:
		return unpackV0(rest)
	default:
		return nil, fault.UnknownVersionMismatch{
			Method:        "document.unpack",
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
	documentId, err := identifier.FromBytes(idBytes)
	if nil != err {
		return nil, fault.CorruptedSerialization
	}
	ownerBytes, rest, ok := util.NextFixed(rest, identifier.Length)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	owner, err := identifier.FromBytes(ownerBytes)
	if nil != err {
		return nil, fault.CorruptedSerialization
	}
	revision, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	createdAt, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}
	updatedAt, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, fault.CorruptedSerialization
	}

	properties, rest, err := NextFields(rest)
	if nil != err {
		return nil, err
	}

	if 0 != len(rest) {
		return nil, fault.CorruptedSerialization
	}

	return &V0{
		DocumentId: documentId,
		Owner:      owner,
		Revision:   revision,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
		Properties: properties,
	}, nil
}

// NextFields - decode a count prefixed field map
func NextFields(buffer []byte) (map[string]Value, []byte, error) {
	fieldCount, rest, ok := util.NextUint64(buffer)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	var fields map[string]Value
	if fieldCount > 0 {
		fields = make(map[string]Value, fieldCount)
	}
	for i := uint64(0); i < fieldCount; i += 1 {
		var name string
		name, rest, ok = util.NextString(rest)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		var value Value
		var err error
		value, rest, err = unpackValue(rest)
		if nil != err {
			return nil, nil, err
		}
		if _, duplicate := fields[name]; duplicate {
			return nil, nil, fault.CorruptedSerialization
		}
		fields[name] = value
	}
	return fields, rest, nil
}

func unpackValue(buffer []byte) (Value, []byte, error) {
	tag, rest, ok := util.NextFixed(buffer, 1)
	if !ok {
		return nil, nil, fault.CorruptedSerialization
	}
	switch tag[0] {
	case tagString:
		s, rest, ok := util.NextString(rest)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		return StringValue(s), rest, nil
	case tagInteger:
		u, rest, ok := util.NextUint64(rest)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		return IntegerValue(unzigzag(u)), rest, nil
	case tagBytes:
		data, rest, ok := util.NextBytes(rest)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		return BytesValue(data), rest, nil
	case tagBoolean:
		flag, rest, ok := util.NextFixed(rest, 1)
		if !ok || flag[0] > 1 {
			return nil, nil, fault.CorruptedSerialization
		}
		return BooleanValue(1 == flag[0]), rest, nil
	case tagIdentifier:
		idBytes, rest, ok := util.NextFixed(rest, identifier.Length)
		if !ok {
			return nil, nil, fault.CorruptedSerialization
		}
		id, err := identifier.FromBytes(idBytes)
		if nil != err {
			return nil, nil, fault.CorruptedSerialization
		}
		return IdentifierValue(id), rest, nil
	default:
		return nil, nil, fault.CorruptedSerialization
	}
}

// signed integers varint encode through the usual zigzag fold so that
// small negative values stay short
func zigzag(value int64) uint64 {
	return uint64(value<<1) ^ uint64(value>>63)
}

func unzigzag(value uint64) int64 {
	return int64(value>>1) ^ -int64(value&1)
}
