// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package validator - transition validation
//
// validation runs in two stages: structure checks are pure and need no
// storage, state checks read through the open block transaction; both
// collect consensus errors into a result instead of failing outright,
// only fatal faults surface as plain errors
package validator

import (
	"github.com/dashpay/platformd/fault"
)

// Result - accumulated consensus errors of one transition
type Result struct {
	Errors []error
}

// Add - record a consensus error
func (r *Result) Add(e error) {
	r.Errors = append(r.Errors, e)
}

// IsValid - true when no consensus error was recorded
func (r *Result) IsValid() bool {
	return 0 == len(r.Errors)
}

// FirstError - the error that invalidates the transition, nil if valid
func (r *Result) FirstError() error {
	if 0 == len(r.Errors) {
		return nil
	}
	return r.Errors[0]
}

// Code - stable numeric code of the first error, zero when valid
func (r *Result) Code() uint32 {
	return fault.Code(r.FirstError())
}
