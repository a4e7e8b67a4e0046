// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package document

import (
	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/fault"
)

// Conforms - check the document fields against a document type
//
// every field must be defined by the schema with a matching type,
// every required property must be present and length bounded values
// must fit
func Conforms(d Document, dt *datacontract.DocumentType) error {
	for name, value := range d.Fields() {
		property, ok := dt.Property(name)
		if !ok {
			return fault.DocumentFieldUnknown
		}
		if value.Type() != property.Type {
			return fault.DocumentFieldTypeMismatch
		}
		if 0 != property.MaxLength {
			switch v := value.(type) {
			case StringValue:
				if uint64(len(v)) > property.MaxLength {
					return fault.DocumentFieldTooLong
				}
			case BytesValue:
				if uint64(len(v)) > property.MaxLength {
					return fault.DocumentFieldTooLong
				}
			}
		}
	}

	for i := range dt.Properties {
		property := &dt.Properties[i]
		if property.Required {
			if _, ok := d.Field(property.Name); !ok {
				return fault.DocumentFieldMissing
			}
		}
	}
	return nil
}

// CheckImmutable - verify a replacement against the stored document
//
// fields marked immutable by the schema must carry the same value in
// both; an immutable field absent from the stored document may be set
// once by a replacement
func CheckImmutable(stored Document, replacement Document, dt *datacontract.DocumentType) error {
	for i := range dt.Properties {
		property := &dt.Properties[i]
		if !property.Immutable {
			continue
		}
		oldValue, hadValue := stored.Field(property.Name)
		if !hadValue {
			continue
		}
		newValue, hasValue := replacement.Field(property.Name)
		if !hasValue || !Equal(oldValue, newValue) {
			return fault.DocumentImmutableFieldChanged
		}
	}
	return nil
}
