// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package datacontract - data contracts
//
// a contract owns per document type schemas and indices, optional
// multi party groups and optional token configurations; the stored
// shape is version tagged: V0 is the original document-only contract,
// V1 adds tokens and groups
package datacontract

import (
	"sort"

	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/platformversion"
)

// PropertyType - closed set of document field types
type PropertyType uint8

const (
	String PropertyType = iota
	Integer
	Bytes
	Boolean
	IdentifierField
	invalidPropertyType
)

// Valid - range check a property type
func (p PropertyType) Valid() bool { return p < invalidPropertyType }

// Property - one typed field of a document type
type Property struct {
	Name      string
	Type      PropertyType
	Required  bool
	Immutable bool
	MaxLength uint64 // strings/bytes only; zero means unlimited
}

// ContestedRules - marks an index whose values are scarce resources
// assigned by masternode vote rather than first come first served
type ContestedRules struct {
	// only index values matching this prefix are contested; empty
	// matches everything
	MatchPrefix string

	// position of the contract group that may override resolution,
	// nil when resolution is purely by vote
	MainControlGroup *uint16
}

// Index - one index of a document type
type Index struct {
	Name       string
	Properties []string
	Unique     bool
	Contested  *ContestedRules
}

// DocumentType - one named document shape within a contract
type DocumentType struct {
	Name         string
	Properties   []Property
	Indices      []Index
	KeepsHistory bool
	CanBeDeleted bool
	Transferable bool
}

// Property - look up a property by name
func (dt *DocumentType) Property(name string) (*Property, bool) {
	for i := range dt.Properties {
		if dt.Properties[i].Name == name {
			return &dt.Properties[i], true
		}
	}
	return nil, false
}

// Index - look up an index by name
func (dt *DocumentType) Index(name string) (*Index, bool) {
	for i := range dt.Indices {
		if dt.Indices[i].Name == name {
			return &dt.Indices[i], true
		}
	}
	return nil, false
}

// ContestedIndex - the first contested index, if any
func (dt *DocumentType) ContestedIndex() (*Index, bool) {
	for i := range dt.Indices {
		if nil != dt.Indices[i].Contested {
			return &dt.Indices[i], true
		}
	}
	return nil, false
}

// DataContract - access to any structure version of a contract
type DataContract interface {
	Version() platformversion.FeatureVersion
	Id() identifier.Identifier
	OwnerId() identifier.Identifier
	ContractRevision() uint64
	SetContractRevision(revision uint64)
	KeepsHistory() bool
	DocumentTypes() []*DocumentType
	DocumentType(name string) (*DocumentType, bool)
	Groups() map[uint16]*Group
	Group(position uint16) (*Group, bool)
	Tokens() map[uint16]*TokenConfiguration
	Token(position uint16) (*TokenConfiguration, bool)
	Validate() error
	Pack() []byte
}

// V0 - structure version zero: documents only
type V0 struct {
	ContractId identifier.Identifier
	Owner      identifier.Identifier
	Revision   uint64
	History    bool
	Types      []*DocumentType
}

// V1 - structure version one: adds groups and tokens
type V1 struct {
	V0
	ContractGroups map[uint16]*Group
	ContractTokens map[uint16]*TokenConfiguration
}

func (c *V0) Version() platformversion.FeatureVersion { return 0 }
func (c *V1) Version() platformversion.FeatureVersion { return 1 }

func (c *V0) Id() identifier.Identifier           { return c.ContractId }
func (c *V0) OwnerId() identifier.Identifier      { return c.Owner }
func (c *V0) ContractRevision() uint64            { return c.Revision }
func (c *V0) SetContractRevision(revision uint64) { c.Revision = revision }
func (c *V0) KeepsHistory() bool                  { return c.History }
func (c *V0) DocumentTypes() []*DocumentType      { return c.Types }

func (c *V0) DocumentType(name string) (*DocumentType, bool) {
	for _, dt := range c.Types {
		if dt.Name == name {
			return dt, true
		}
	}
	return nil, false
}

// V0 contracts have no groups or tokens
func (c *V0) Groups() map[uint16]*Group                { return nil }
func (c *V0) Group(uint16) (*Group, bool)              { return nil, false }
func (c *V0) Tokens() map[uint16]*TokenConfiguration   { return nil }
func (c *V0) Token(uint16) (*TokenConfiguration, bool) { return nil, false }

func (c *V1) Groups() map[uint16]*Group { return c.ContractGroups }

func (c *V1) Group(position uint16) (*Group, bool) {
	g, ok := c.ContractGroups[position]
	return g, ok
}

func (c *V1) Tokens() map[uint16]*TokenConfiguration { return c.ContractTokens }

func (c *V1) Token(position uint16) (*TokenConfiguration, bool) {
	t, ok := c.ContractTokens[position]
	return t, ok
}

// TokenId - derive the identifier of a token at a contract position
func TokenId(contractId identifier.Identifier, position uint16) identifier.Identifier {
	return identifier.NewDerived(contractId[:], []byte{byte(position >> 8), byte(position)})
}

// sortedGroupPositions - deterministic iteration order for maps
func sortedGroupPositions(groups map[uint16]*Group) []uint16 {
	positions := make([]uint16, 0, len(groups))
	for p := range groups {
		positions = append(positions, p)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })
	return positions
}

func sortedTokenPositions(tokens map[uint16]*TokenConfiguration) []uint16 {
	positions := make([]uint16, 0, len(tokens))
	for p := range tokens {
		positions = append(positions, p)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })
	return positions
}

// Validate - structural invariants common to all versions
//
// every contested index naming a main control group must have that
// group defined on the contract
func (c *V0) Validate() error {
	return validateTypes(c.Types, nil)
}

func (c *V1) Validate() error {
	if err := validateTypes(c.Types, c.ContractGroups); nil != err {
		return err
	}
	for _, position := range sortedTokenPositions(c.ContractTokens) {
		if err := c.ContractTokens[position].Validate(c.ContractGroups); nil != err {
			return err
		}
	}
	return nil
}

func validateTypes(types []*DocumentType, groups map[uint16]*Group) error {
	for _, dt := range types {
		for i := range dt.Indices {
			index := &dt.Indices[i]
			for _, propertyName := range index.Properties {
				if _, ok := dt.Property(propertyName); !ok {
					return fault.DocumentFieldUnknown
				}
			}
			if nil != index.Contested && nil != index.Contested.MainControlGroup {
				if _, ok := groups[*index.Contested.MainControlGroup]; !ok {
					return fault.IndexMissingControlGroup
				}
			}
		}
	}
	return nil
}
