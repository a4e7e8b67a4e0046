// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
)

// UnknownVersionMismatch - a versioned method received a version number
// it has no implementation for
//
// this is a binary/consensus mismatch, not a transient fault: the node
// is running the wrong software for the active protocol version and
// must not continue processing the block
type UnknownVersionMismatch struct {
	Method        string
	KnownVersions []uint16
	Received      uint16
}

func (e UnknownVersionMismatch) Error() string {
	return fmt.Sprintf(
		"unknown version on %s, known versions: %v received: %d",
		e.Method, e.KnownVersions, e.Received,
	)
}
