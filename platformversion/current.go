// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package platformversion

import (
	"sync"

	"github.com/dashpay/platformd/fault"
)

// the process wide current version
//
// set exactly once at startup before any block processing; read only
// thereafter - versioned operations still take the version as an
// explicit parameter, this cell only seeds the outermost callers
var globalData struct {
	sync.RWMutex
	current *PlatformVersion

	// set once during initialise
	initialised bool
}

// Initialise - set the current platform version
func Initialise(version *PlatformVersion) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}
	globalData.current = version
	globalData.initialised = true
	return nil
}

// Finalise - clear the current version, for tests only
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}
	globalData.current = nil
	globalData.initialised = false
	return nil
}

// Current - the active platform version
func Current() (*PlatformVersion, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	if !globalData.initialised {
		return nil, fault.NotInitialised
	}
	return globalData.current, nil
}
