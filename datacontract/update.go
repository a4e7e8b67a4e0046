// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package datacontract

import (
	"github.com/dashpay/platformd/fault"
)

// CheckUpdate - verify a replacement contract against the stored one
//
// a contract update may add document types, properties and non unique
// indices; it must never invalidate documents already stored, so
// existing document types, properties and indices cannot be removed or
// retyped and existing types cannot gain new unique or required
// constraints
func CheckUpdate(stored DataContract, replacement DataContract) error {
	if stored.Id() != replacement.Id() {
		return fault.DataContractUpdateIncompatible
	}
	if stored.OwnerId() != replacement.OwnerId() {
		return fault.DataContractUpdateIncompatible
	}
	if replacement.ContractRevision() != stored.ContractRevision()+1 {
		return fault.DataContractRevisionMismatch
	}
	if stored.KeepsHistory() != replacement.KeepsHistory() {
		return fault.DataContractUpdateIncompatible
	}

	for _, oldType := range stored.DocumentTypes() {
		newType, ok := replacement.DocumentType(oldType.Name)
		if !ok {
			return fault.DataContractUpdateIncompatible
		}
		if err := checkTypeUpdate(oldType, newType); nil != err {
			return err
		}
	}

	// groups are append only and member sets are frozen
	for position, oldGroup := range stored.Groups() {
		newGroup, ok := replacement.Groups()[position]
		if !ok {
			return fault.DataContractUpdateIncompatible
		}
		if oldGroup.RequiredPower != newGroup.RequiredPower {
			return fault.DataContractUpdateIncompatible
		}
		if len(oldGroup.Members) != len(newGroup.Members) {
			return fault.DataContractUpdateIncompatible
		}
		for member, power := range oldGroup.Members {
			if newGroup.Members[member] != power {
				return fault.DataContractUpdateIncompatible
			}
		}
	}

	// tokens cannot be removed and their supply parameters are frozen
	for position, oldToken := range stored.Tokens() {
		newToken, ok := replacement.Tokens()[position]
		if !ok {
			return fault.DataContractUpdateIncompatible
		}
		if oldToken.BaseSupply != newToken.BaseSupply {
			return fault.DataContractUpdateIncompatible
		}
		if oldToken.MaxSupply != newToken.MaxSupply {
			return fault.DataContractUpdateIncompatible
		}
	}

	return replacement.Validate()
}

func checkTypeUpdate(oldType *DocumentType, newType *DocumentType) error {
	for i := range oldType.Properties {
		oldProperty := &oldType.Properties[i]
		newProperty, ok := newType.Property(oldProperty.Name)
		if !ok {
			return fault.DataContractUpdateIncompatible
		}
		if oldProperty.Type != newProperty.Type {
			return fault.DataContractUpdateIncompatible
		}
		if oldProperty.Immutable != newProperty.Immutable {
			return fault.DataContractUpdateIncompatible
		}
		if !oldProperty.Required && newProperty.Required {
			return fault.DataContractUpdateIncompatible
		}
	}

	// a property added to an existing type cannot be required since
	// stored documents would not carry it
	for i := range newType.Properties {
		newProperty := &newType.Properties[i]
		if _, exists := oldType.Property(newProperty.Name); !exists && newProperty.Required {
			return fault.DataContractUpdateIncompatible
		}
	}

	for i := range oldType.Indices {
		oldIndex := &oldType.Indices[i]
		newIndex, ok := newType.Index(oldIndex.Name)
		if !ok {
			return fault.DataContractUpdateIncompatible
		}
		if oldIndex.Unique != newIndex.Unique {
			return fault.DataContractUpdateIncompatible
		}
		if len(oldIndex.Properties) != len(newIndex.Properties) {
			return fault.DataContractUpdateIncompatible
		}
		for j, propertyName := range oldIndex.Properties {
			if newIndex.Properties[j] != propertyName {
				return fault.DataContractUpdateIncompatible
			}
		}
	}

	// a unique index added to an existing type could already be
	// violated by stored documents
	for i := range newType.Indices {
		newIndex := &newType.Indices[i]
		if _, exists := oldType.Index(newIndex.Name); !exists && newIndex.Unique {
			return fault.DataContractUpdateIncompatible
		}
	}

	if oldType.KeepsHistory != newType.KeepsHistory {
		return fault.DataContractUpdateIncompatible
	}
	if oldType.CanBeDeleted != newType.CanBeDeleted {
		return fault.DataContractUpdateIncompatible
	}

	return nil
}
