// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package platformversion

import (
	"github.com/dashpay/platformd/fault"
)

// Dispatch - check a manifest leaf against the implemented versions
//
// every versioned method calls this first; an unknown version is a
// fatal consensus mismatch, not a transient fault
//
// typical use:
//	if err := platformversion.Dispatch("identity.create", v.Validation.IdentityCreate, 0); nil != err {
//		return err
//	}
func Dispatch(method string, received FeatureVersion, known ...FeatureVersion) error {
	for _, k := range known {
		if k == received {
			return nil
		}
	}
	knownList := make([]uint16, len(known))
	for i, k := range known {
		knownList[i] = uint16(k)
	}
	return fault.UnknownVersionMismatch{
		Method:        method,
		KnownVersions: knownList,
		Received:      uint16(received),
	}
}
