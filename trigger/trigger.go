// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package trigger - contract specific document rules
//
// a trigger is a rule attached to one contract, document type and
// operation that cannot be expressed in the generic schema; triggers
// run after state validation, before the storage operations of the
// document transition are applied
//
// a trigger failure is a consensus error bound to the document
// transition that fired it, never a fatal error
package trigger

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/dashpay/platformd/action"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/transition"
)

// Key - which document changes a trigger binds to
type Key struct {
	ContractId       identifier.Identifier
	DocumentTypeName string
	Operation        transition.DocumentOperation
}

// Context - block facts a trigger may inspect
type Context struct {
	BlockHeight uint64
	Owner       identifier.Identifier
}

// Trigger - one registered document rule
type Trigger interface {
	Execute(change *action.DocumentChange, context *Context) error
}

// the registry is resolved once at startup and read only afterwards
var globalData struct {
	sync.RWMutex
	log         *logger.L
	bindings    map[Key][]Trigger
	initialised bool
}

// Initialise - set up the registry with the built in triggers
//
// the system contract hosts the feature flag documents; only the
// system identity may create them
func Initialise(systemContractId identifier.Identifier, systemIdentity identifier.Identifier) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("trigger")
	globalData.log.Info("starting…")

	globalData.bindings = map[Key][]Trigger{}
	globalData.initialised = true

	register(Key{
		ContractId:       systemContractId,
		DocumentTypeName: featureFlagDocumentType,
		Operation:        transition.DocumentCreate,
	}, &featureFlagTrigger{
		systemIdentity: systemIdentity,
	})
	return nil
}

// Finalise - drop the registry
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.bindings = nil
	globalData.initialised = false
	return nil
}

// Register - append a trigger to its binding list
//
// order of registration is order of execution
func Register(key Key, trigger Trigger) error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}
	register(key, trigger)
	return nil
}

func register(key Key, trigger Trigger) {
	globalData.bindings[key] = append(globalData.bindings[key], trigger)
	globalData.log.Infof("registered trigger: contract: %x  type: %q  operation: %d",
		key.ContractId, key.DocumentTypeName, key.Operation)
}

// Run - execute all triggers matching a document change
//
// triggers run sequentially in registration order; the first failure
// stops the run and is returned
func Run(change *action.DocumentChange, context *Context) error {
	globalData.RLock()
	defer globalData.RUnlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	key := Key{
		ContractId:       change.Contract.Id(),
		DocumentTypeName: change.DocumentType.Name,
		Operation:        change.Operation,
	}
	for _, trigger := range globalData.bindings[key] {
		err := trigger.Execute(change, context)
		if nil != err {
			globalData.log.Debugf("trigger failed: contract: %x  type: %q: %s",
				key.ContractId, key.DocumentTypeName, err)
			return err
		}
	}
	return nil
}
