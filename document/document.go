// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package document - documents stored under a contract
//
// a document is an instance of one contract document type; field
// values come from a closed set of types so every document has exactly
// one canonical byte form
package document

import (
	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/platformversion"
)

// Value - one document field value
type Value interface {
	Type() datacontract.PropertyType
}

type StringValue string
type IntegerValue int64
type BytesValue []byte
type BooleanValue bool
type IdentifierValue identifier.Identifier

func (StringValue) Type() datacontract.PropertyType     { return datacontract.String }
func (IntegerValue) Type() datacontract.PropertyType    { return datacontract.Integer }
func (BytesValue) Type() datacontract.PropertyType      { return datacontract.Bytes }
func (BooleanValue) Type() datacontract.PropertyType    { return datacontract.Boolean }
func (IdentifierValue) Type() datacontract.PropertyType { return datacontract.IdentifierField }

// Equal - compare two values of any type
func Equal(a Value, b Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case StringValue:
		return av == b.(StringValue)
	case IntegerValue:
		return av == b.(IntegerValue)
	case BytesValue:
		bv := b.(BytesValue)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case BooleanValue:
		return av == b.(BooleanValue)
	case IdentifierValue:
		return av == b.(IdentifierValue)
	default:
		return false
	}
}

// Document - access to any structure version of a document
type Document interface {
	Version() platformversion.FeatureVersion
	Id() identifier.Identifier
	OwnerId() identifier.Identifier
	DocumentRevision() uint64
	SetDocumentRevision(revision uint64)
	Field(name string) (Value, bool)
	Fields() map[string]Value
	Pack() []byte
}

// V0 - structure version zero
type V0 struct {
	DocumentId identifier.Identifier
	Owner      identifier.Identifier
	Revision   uint64
	CreatedAt  uint64 // unix millis, zero when type keeps no timestamps
	UpdatedAt  uint64
	Properties map[string]Value
}

func (d *V0) Version() platformversion.FeatureVersion { return 0 }
func (d *V0) Id() identifier.Identifier               { return d.DocumentId }
func (d *V0) OwnerId() identifier.Identifier          { return d.Owner }
func (d *V0) DocumentRevision() uint64                { return d.Revision }
func (d *V0) SetDocumentRevision(revision uint64)     { d.Revision = revision }
func (d *V0) Fields() map[string]Value                { return d.Properties }

func (d *V0) Field(name string) (Value, bool) {
	value, ok := d.Properties[name]
	return value, ok
}

// NewId - derive a document id from its creation coordinates
//
// the same owner creating the same type under the same contract gets
// distinct ids through the entropy bytes
func NewId(contractId identifier.Identifier, owner identifier.Identifier, documentTypeName string, entropy []byte) identifier.Identifier {
	return identifier.NewDerived(contractId[:], owner[:], []byte(documentTypeName), entropy)
}
