// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package proof - verification of storage proofs
//
// a light client holds only a trusted root hash; a proof binds a key
// to its stored value, or to its absence, under that root
//
// verification fails closed: any malformed, truncated or inconsistent
// proof is rejected, never partially accepted
package proof

import (
	"bytes"

	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/util"
)

// one proved branch of a subtree
type branch struct {
	key   []byte
	value []byte
	index uint64
	path  []grove.Digest
}

// Verify - check a proof against a trusted root hash
//
// on success returns the stored value bytes and true, or nil and
// false when the proof shows the key is absent
func Verify(proofBytes []byte, root grove.Digest, subtree grove.Subtree, key []byte) ([]byte, bool, error) {
	if 0 == len(proofBytes) || proofBytes[0] != byte(subtree) {
		return nil, false, fault.IncorrectProof
	}
	rest := proofBytes[1:]

	leafCount, rest, ok := util.NextUint64(rest)
	if !ok || 0 == len(rest) {
		return nil, false, fault.IncompleteProof
	}
	presence := rest[0]
	rest = rest[1:]

	var subtreeHash grove.Digest
	var value []byte
	present := false

	switch presence {
	case 1:
		b, r, err := nextBranch(rest, leafCount)
		if nil != err {
			return nil, false, err
		}
		rest = r
		if !bytes.Equal(b.key, key) {
			return nil, false, fault.IncorrectProof
		}
		subtreeHash, err = foldBranch(b, leafCount)
		if nil != err {
			return nil, false, err
		}
		value = b.value
		present = true

	case 0:
		hash, r, err := verifyAbsence(rest, leafCount, subtree, key)
		if nil != err {
			return nil, false, err
		}
		subtreeHash = hash
		rest = r

	default:
		return nil, false, fault.CorruptedProof
	}

	computed, err := combineRoot(rest, subtree, subtreeHash)
	if nil != err {
		return nil, false, err
	}
	if computed != root {
		return nil, false, fault.IncorrectProof
	}
	return value, present, nil
}

// VerifyNeighbour - check a proof of the leaf after a known anchor key
//
// on success returns the key and stored value bytes of the leaf
// immediately after the anchor, or nil key and value when the proof
// shows the anchor is the last leaf of the subtree
func VerifyNeighbour(proofBytes []byte, root grove.Digest, subtree grove.Subtree, anchorKey []byte) ([]byte, []byte, error) {
	if 0 == len(proofBytes) || proofBytes[0] != byte(subtree) {
		return nil, nil, fault.IncorrectProof
	}
	rest := proofBytes[1:]

	leafCount, rest, ok := util.NextUint64(rest)
	if !ok || 0 == len(rest) {
		return nil, nil, fault.IncompleteProof
	}
	if 2 != rest[0] {
		return nil, nil, fault.CorruptedProof
	}
	rest = rest[1:]

	anchor, rest, err := nextBranch(rest, leafCount)
	if nil != err {
		return nil, nil, err
	}
	if !bytes.Equal(anchor.key, anchorKey) {
		return nil, nil, fault.IncorrectProof
	}
	subtreeHash, err := foldBranch(anchor, leafCount)
	if nil != err {
		return nil, nil, err
	}

	if 0 == len(rest) {
		return nil, nil, fault.IncompleteProof
	}
	hasNeighbour := rest[0]
	rest = rest[1:]

	var neighbour *branch
	switch hasNeighbour {
	case 1:
		b, r, err := nextBranch(rest, leafCount)
		if nil != err {
			return nil, nil, err
		}
		rest = r

		// adjacent indices under the same subtree hash pin the
		// neighbour as the very next leaf
		if anchor.index+1 != b.index || bytes.Compare(b.key, anchorKey) <= 0 {
			return nil, nil, fault.IncorrectProof
		}
		hash, err := foldBranch(b, leafCount)
		if nil != err {
			return nil, nil, err
		}
		if hash != subtreeHash {
			return nil, nil, fault.IncorrectProof
		}
		neighbour = b

	case 0:
		if anchor.index+1 != leafCount {
			return nil, nil, fault.IncorrectProof
		}

	default:
		return nil, nil, fault.CorruptedProof
	}

	computed, err := combineRoot(rest, subtree, subtreeHash)
	if nil != err {
		return nil, nil, err
	}
	if computed != root {
		return nil, nil, fault.IncorrectProof
	}
	if nil == neighbour {
		return nil, nil, nil
	}
	return neighbour.key, neighbour.value, nil
}

// check the two bounding branches of an absence proof
func verifyAbsence(rest []byte, leafCount uint64, subtree grove.Subtree, key []byte) (grove.Digest, []byte, error) {
	if 0 == leafCount {
		if len(rest) < 2 || 0 != rest[0] || 0 != rest[1] {
			return grove.Digest{}, nil, fault.CorruptedProof
		}
		return grove.EmptySubtreeHash(subtree), rest[2:], nil
	}

	var predecessor *branch
	var successor *branch

	if 0 == len(rest) {
		return grove.Digest{}, nil, fault.IncompleteProof
	}
	hasPredecessor := rest[0]
	rest = rest[1:]
	if 1 == hasPredecessor {
		b, r, err := nextBranch(rest, leafCount)
		if nil != err {
			return grove.Digest{}, nil, err
		}
		predecessor = b
		rest = r
	} else if 0 != hasPredecessor {
		return grove.Digest{}, nil, fault.CorruptedProof
	}

	if 0 == len(rest) {
		return grove.Digest{}, nil, fault.IncompleteProof
	}
	hasSuccessor := rest[0]
	rest = rest[1:]
	if 1 == hasSuccessor {
		b, r, err := nextBranch(rest, leafCount)
		if nil != err {
			return grove.Digest{}, nil, err
		}
		successor = b
		rest = r
	} else if 0 != hasSuccessor {
		return grove.Digest{}, nil, fault.CorruptedProof
	}

	// the bounding branches must straddle the key and be adjacent
	// leaves; a missing neighbour is only valid at the ends
	switch {
	case nil != predecessor && nil != successor:
		if bytes.Compare(predecessor.key, key) >= 0 ||
			bytes.Compare(successor.key, key) <= 0 ||
			predecessor.index+1 != successor.index {
			return grove.Digest{}, nil, fault.IncorrectProof
		}
	case nil != predecessor:
		if bytes.Compare(predecessor.key, key) >= 0 ||
			predecessor.index+1 != leafCount {
			return grove.Digest{}, nil, fault.IncorrectProof
		}
	case nil != successor:
		if bytes.Compare(successor.key, key) <= 0 ||
			0 != successor.index {
			return grove.Digest{}, nil, fault.IncorrectProof
		}
	default:
		return grove.Digest{}, nil, fault.CorruptedProof
	}

	var hash grove.Digest
	if nil != predecessor {
		h, err := foldBranch(predecessor, leafCount)
		if nil != err {
			return grove.Digest{}, nil, err
		}
		hash = h
	}
	if nil != successor {
		h, err := foldBranch(successor, leafCount)
		if nil != err {
			return grove.Digest{}, nil, err
		}
		if nil != predecessor && h != hash {
			return grove.Digest{}, nil, fault.IncorrectProof
		}
		hash = h
	}
	return hash, rest, nil
}

func nextBranch(rest []byte, leafCount uint64) (*branch, []byte, error) {
	key, rest, ok := util.NextBytes(rest)
	if !ok {
		return nil, nil, fault.IncompleteProof
	}
	value, rest, ok := util.NextBytes(rest)
	if !ok {
		return nil, nil, fault.IncompleteProof
	}
	index, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, nil, fault.IncompleteProof
	}
	if index >= leafCount {
		return nil, nil, fault.CorruptedProof
	}
	pathLength, rest, ok := util.NextUint64(rest)
	if !ok {
		return nil, nil, fault.IncompleteProof
	}
	if pathLength > 64 {
		return nil, nil, fault.CorruptedProof
	}
	path := make([]grove.Digest, pathLength)
	for i := range path {
		raw, r, ok := util.NextFixed(rest, grove.DigestLength)
		if !ok {
			return nil, nil, fault.IncompleteProof
		}
		copy(path[i][:], raw)
		rest = r
	}
	return &branch{
		key:   key,
		value: value,
		index: index,
		path:  path,
	}, rest, nil
}

func foldBranch(b *branch, leafCount uint64) (grove.Digest, error) {
	return grove.FoldPath(grove.LeafDigest(b.key, b.value), int(b.index), int(leafCount), b.path)
}

// fold the proved subtree hash with all the others to the root
func combineRoot(rest []byte, proved grove.Subtree, provedHash grove.Digest) (grove.Digest, error) {
	hashes := make([]grove.Digest, len(grove.Order))
	for i, subtree := range grove.Order {
		if subtree == proved {
			hashes[i] = provedHash
			continue
		}
		if 0 == len(rest) || rest[0] != byte(subtree) {
			return grove.Digest{}, fault.IncompleteProof
		}
		raw, r, ok := util.NextFixed(rest[1:], grove.DigestLength)
		if !ok {
			return grove.Digest{}, fault.IncompleteProof
		}
		copy(hashes[i][:], raw)
		rest = r
	}
	if 0 != len(rest) {
		return grove.Digest{}, fault.CorruptedProof
	}
	return grove.CombineSubtreeHashes(hashes), nil
}
