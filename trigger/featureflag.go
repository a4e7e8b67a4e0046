// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package trigger

import (
	"github.com/dashpay/platformd/action"
	"github.com/dashpay/platformd/document"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/identifier"
)

const (
	featureFlagDocumentType = "featureFlag"
	enableAtHeightField     = "enableAtHeight"
)

// featureFlagTrigger - restricts feature flag documents
//
// only the system identity may enable a flag, and the height the flag
// names must not lie in the past
type featureFlagTrigger struct {
	systemIdentity identifier.Identifier
}

func (f *featureFlagTrigger) Execute(change *action.DocumentChange, context *Context) error {
	if context.Owner != f.systemIdentity {
		return fault.DataTriggerConditionFailed
	}

	field, ok := change.Document.Field(enableAtHeightField)
	if !ok {
		return fault.DataTriggerConditionFailed
	}
	height, ok := field.(document.IntegerValue)
	if !ok {
		return fault.DataTriggerConditionFailed
	}
	if height < 0 || uint64(height) < context.BlockHeight {
		return fault.DataTriggerConditionFailed
	}
	return nil
}
