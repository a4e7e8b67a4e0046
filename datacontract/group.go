// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package datacontract

import (
	"sort"

	"github.com/dashpay/platformd/identifier"
)

// Group - a multi party action threshold
//
// an action routed through a group only takes effect once the summed
// power of approving members reaches the required power
type Group struct {
	Members       map[identifier.Identifier]uint32
	RequiredPower uint32
}

// MemberPower - voting power of one member, zero for non members
func (g *Group) MemberPower(member identifier.Identifier) uint32 {
	return g.Members[member]
}

// TotalPower - sum of all member powers
func (g *Group) TotalPower() uint64 {
	total := uint64(0)
	for _, power := range g.Members {
		total += uint64(power)
	}
	return total
}

// Reached - true once the approvers meet the threshold
func (g *Group) Reached(approvers []identifier.Identifier) bool {
	accumulated := uint64(0)
	seen := make(map[identifier.Identifier]struct{}, len(approvers))
	for _, approver := range approvers {
		if _, duplicate := seen[approver]; duplicate {
			continue
		}
		seen[approver] = struct{}{}
		accumulated += uint64(g.Members[approver])
	}
	return accumulated >= uint64(g.RequiredPower)
}

// sortedMembers - deterministic member iteration for packing
func (g *Group) sortedMembers() []identifier.Identifier {
	members := make([]identifier.Identifier, 0, len(g.Members))
	for member := range g.Members {
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool {
		a := members[i]
		b := members[j]
		for k := 0; k < identifier.Length; k += 1 {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return members
}
