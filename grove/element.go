// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package grove

import (
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/util"
)

// ElementKind - what a stored element is
type ElementKind byte

const (
	ItemKind ElementKind = iota
	SumItemKind
	TreeKind
	ReferenceKind
	invalidElementKind
)

// Element - one stored value
type Element interface {
	Kind() ElementKind
	Pack() []byte
}

// Item - plain byte value
type Item struct {
	Value []byte
}

// SumItem - a value participating in the subtree aggregate sum
type SumItem struct {
	Value int64
}

// Tree - marker element opening a nested key space
type Tree struct{}

// Reference - pointer to an element elsewhere in the store
type Reference struct {
	ReferencedSubtree Subtree
	ReferencedKey     []byte
}

func (e *Item) Kind() ElementKind      { return ItemKind }
func (e *SumItem) Kind() ElementKind   { return SumItemKind }
func (e *Tree) Kind() ElementKind      { return TreeKind }
func (e *Reference) Kind() ElementKind { return ReferenceKind }

func (e *Item) Pack() []byte {
	message := []byte{byte(ItemKind)}
	return util.AppendBytes(message, e.Value)
}

func (e *SumItem) Pack() []byte {
	message := []byte{byte(SumItemKind)}
	return util.AppendUint64(message, uint64(e.Value<<1)^uint64(e.Value>>63))
}

func (e *Tree) Pack() []byte {
	return []byte{byte(TreeKind)}
}

func (e *Reference) Pack() []byte {
	message := []byte{byte(ReferenceKind), byte(e.ReferencedSubtree)}
	return util.AppendBytes(message, e.ReferencedKey)
}

// UnpackElement - decode a stored element
func UnpackElement(buffer []byte) (Element, error) {
	if 0 == len(buffer) {
		return nil, fault.CorruptedDriveState
	}
	kind := ElementKind(buffer[0])
	rest := buffer[1:]

	switch kind {
	case ItemKind:
		value, rest, ok := util.NextBytes(rest)
		if !ok || 0 != len(rest) {
			return nil, fault.CorruptedDriveState
		}
		return &Item{Value: value}, nil

	case SumItemKind:
		folded, rest, ok := util.NextUint64(rest)
		if !ok || 0 != len(rest) {
			return nil, fault.CorruptedDriveState
		}
		return &SumItem{Value: int64(folded>>1) ^ -int64(folded&1)}, nil

	case TreeKind:
		if 0 != len(rest) {
			return nil, fault.CorruptedDriveState
		}
		return &Tree{}, nil

	case ReferenceKind:
		if 0 == len(rest) {
			return nil, fault.CorruptedDriveState
		}
		subtree := Subtree(rest[0])
		key, rest, ok := util.NextBytes(rest[1:])
		if !ok || 0 != len(rest) || !subtree.Valid() {
			return nil, fault.CorruptedDriveState
		}
		return &Reference{ReferencedSubtree: subtree, ReferencedKey: key}, nil

	default:
		return nil, fault.CorruptedDriveState
	}
}
