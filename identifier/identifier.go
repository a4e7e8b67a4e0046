// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package identifier - 32 byte content addressed handles
//
// identities, contracts, documents, tokens, groups and votes are all
// named by an Identifier; equality is byte equality and a handle never
// changes once assigned
package identifier

import (
	"golang.org/x/crypto/sha3"

	"github.com/mr-tron/base58"

	"github.com/dashpay/platformd/fault"
)

// Length - number of bytes in an identifier
const Length = 32

// Identifier - a 32 byte content addressed handle
//
// to convert to bytes just use id[:]
type Identifier [Length]byte

// New - derive an identifier from a record
func New(record []byte) Identifier {
	return Identifier(sha3.Sum256(record))
}

// NewDerived - derive an identifier from several components
//
// used where a handle is a function of other handles, e.g. a document
// id from (contract id, owner id, document type, entropy)
func NewDerived(components ...[]byte) Identifier {
	h := sha3.New256()
	for _, c := range components {
		h.Write(c)
	}
	var id Identifier
	copy(id[:], h.Sum(nil))
	return id
}

// FromBytes - convert a byte slice, length checked
func FromBytes(buffer []byte) (Identifier, error) {
	var id Identifier
	if Length != len(buffer) {
		return id, fault.InvalidIdentifierLength
	}
	copy(id[:], buffer)
	return id, nil
}

// FromString - convert a base58 representation
func FromString(s string) (Identifier, error) {
	buffer, err := base58.Decode(s)
	if nil != err {
		return Identifier{}, fault.InvalidIdentifierLength
	}
	return FromBytes(buffer)
}

// IsZero - true for the all zero identifier
func (id Identifier) IsZero() bool {
	for _, b := range id {
		if 0 != b {
			return false
		}
	}
	return true
}

// String - base58 representation for use by the fmt package (for %s)
func (id Identifier) String() string {
	return base58.Encode(id[:])
}

// GoString - representation for use by the fmt package (for %#v)
func (id Identifier) GoString() string {
	return "<id:" + base58.Encode(id[:]) + ">"
}

// MarshalText - convert an identifier to base58 text
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(base58.Encode(id[:])), nil
}

// UnmarshalText - convert base58 text to an identifier
func (id *Identifier) UnmarshalText(text []byte) error {
	decoded, err := FromString(string(text))
	if nil != err {
		return err
	}
	*id = decoded
	return nil
}
