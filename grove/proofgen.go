// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package grove

import (
	"bytes"
	"sort"

	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/util"
)

// serialized proof layout
//
//	byte    subtree
//	varint  leaf count of the subtree
//	byte    presence flag: 1 present, 0 absent, 2 neighbour
//	present:   one branch
//	absent:    presence byte + branch for the predecessor, then the
//	           successor; a missing neighbour (key before the first or
//	           after the last leaf) has presence 0
//	neighbour: branch for the known anchor key, then presence byte +
//	           branch for the leaf at the next index; presence 0 when
//	           the anchor is the last leaf
//	then every other subtree hash as (byte subtree, 32 byte digest) in
//	root hash order
//
// branch = length prefixed key, length prefixed stored value,
// varint leaf index, varint path length, path digests
//
// an absence proof is sound because the two bounding branches fold to
// the same subtree hash at adjacent indices with the key strictly
// between them

// GenerateProof - prove presence or absence of one key
func GenerateProof(trx *Transaction, subtree Subtree, key []byte) ([]byte, error) {
	leaves, err := subtreeLeaves(trx, subtree)
	if nil != err {
		return nil, err
	}

	digests := make([]Digest, len(leaves))
	for i, l := range leaves {
		digests[i] = LeafDigest(l.key, l.value)
	}

	message := []byte{byte(subtree)}
	message = util.AppendUint64(message, uint64(len(leaves)))

	position := sort.Search(len(leaves), func(i int) bool {
		return bytes.Compare(leaves[i].key, key) >= 0
	})

	if position < len(leaves) && bytes.Equal(leaves[position].key, key) {
		message = append(message, 1)
		message = appendBranch(message, leaves, digests, position)
	} else {
		message = append(message, 0)
		if position > 0 {
			message = append(message, 1)
			message = appendBranch(message, leaves, digests, position-1)
		} else {
			message = append(message, 0)
		}
		if position < len(leaves) {
			message = append(message, 1)
			message = appendBranch(message, leaves, digests, position)
		} else {
			message = append(message, 0)
		}
	}

	for _, other := range Order {
		if other == subtree {
			continue
		}
		hash, err := SubtreeHash(trx, other)
		if nil != err {
			return nil, err
		}
		message = append(message, byte(other))
		message = append(message, hash[:]...)
	}
	return message, nil
}

// GenerateNeighbourProof - prove the leaf immediately after a known key
//
// the anchor key must be stored; the proof binds the anchor and its
// right hand neighbour to adjacent leaf indices so a verifier holding
// only the anchor learns the next element, or that none exists
func GenerateNeighbourProof(trx *Transaction, subtree Subtree, anchorKey []byte) ([]byte, error) {
	leaves, err := subtreeLeaves(trx, subtree)
	if nil != err {
		return nil, err
	}

	position := sort.Search(len(leaves), func(i int) bool {
		return bytes.Compare(leaves[i].key, anchorKey) >= 0
	})
	if position >= len(leaves) || !bytes.Equal(leaves[position].key, anchorKey) {
		return nil, fault.ProofAnchorNotFound
	}

	digests := make([]Digest, len(leaves))
	for i, l := range leaves {
		digests[i] = LeafDigest(l.key, l.value)
	}

	message := []byte{byte(subtree)}
	message = util.AppendUint64(message, uint64(len(leaves)))
	message = append(message, 2)
	message = appendBranch(message, leaves, digests, position)

	if position+1 < len(leaves) {
		message = append(message, 1)
		message = appendBranch(message, leaves, digests, position+1)
	} else {
		message = append(message, 0)
	}

	for _, other := range Order {
		if other == subtree {
			continue
		}
		hash, err := SubtreeHash(trx, other)
		if nil != err {
			return nil, err
		}
		message = append(message, byte(other))
		message = append(message, hash[:]...)
	}
	return message, nil
}

func appendBranch(message []byte, leaves []leaf, digests []Digest, index int) []byte {
	message = util.AppendBytes(message, leaves[index].key)
	message = util.AppendBytes(message, leaves[index].value)
	message = util.AppendUint64(message, uint64(index))
	path := merklePath(digests, index)
	message = util.AppendUint64(message, uint64(len(path)))
	for _, digest := range path {
		message = append(message, digest[:]...)
	}
	return message
}
