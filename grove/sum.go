// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package grove

import (
	"github.com/dashpay/platformd/fault"
)

// SubtreeSum - aggregate of all sum items under one subtree
//
// only defined for sum subtrees; a non sum element stored there is a
// corruption, not a value to skip over
func SubtreeSum(trx *Transaction, subtree Subtree) (int64, error) {
	if !subtree.Sum() {
		return 0, fault.WrongElementType
	}
	leaves, err := subtreeLeaves(trx, subtree)
	if nil != err {
		return 0, err
	}

	total := int64(0)
	for _, l := range leaves {
		element, err := UnpackElement(l.value)
		if nil != err {
			return 0, err
		}
		sumItem, ok := element.(*SumItem)
		if !ok {
			return 0, fault.WrongElementType
		}
		total += sumItem.Value
	}
	return total, nil
}
