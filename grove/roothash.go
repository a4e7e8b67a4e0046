// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package grove

import (
	"bytes"
	"sort"

	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
	"golang.org/x/crypto/sha3"

	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/util"
)

// DigestLength - bytes in every digest
const DigestLength = 32

// Digest - a merkle node
type Digest [DigestLength]byte

type leaf struct {
	key   []byte
	value []byte
}

// LeafDigest - digest of one key/value leaf
//
// both parts are length prefixed so no two distinct leaves collide by
// concatenation
func LeafDigest(key []byte, value []byte) Digest {
	message := util.AppendBytes(nil, key)
	message = util.AppendBytes(message, value)
	return sha3.Sum256(message)
}

// EmptySubtreeHash - the hash of a subtree holding nothing
func EmptySubtreeHash(subtree Subtree) Digest {
	return sha3.Sum256([]byte{byte(subtree)})
}

// fold one merkle level; an odd trailing node is promoted unchanged
func foldLevel(level []Digest) []Digest {
	next := make([]Digest, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		if i+1 < len(level) {
			next = append(next, foldPair(level[i], level[i+1]))
		} else {
			next = append(next, level[i])
		}
	}
	return next
}

func foldPair(left Digest, right Digest) Digest {
	message := make([]byte, 0, 2*DigestLength)
	message = append(message, left[:]...)
	message = append(message, right[:]...)
	return sha3.Sum256(message)
}

func merkleRoot(leaves []Digest) Digest {
	if 0 == len(leaves) {
		return Digest{}
	}
	level := leaves
	for len(level) > 1 {
		level = foldLevel(level)
	}
	return level[0]
}

// merklePath - sibling digests from a leaf up to the root
func merklePath(leaves []Digest, index int) []Digest {
	var path []Digest
	level := leaves
	i := index
	for len(level) > 1 {
		sibling := i ^ 1
		if sibling < len(level) {
			path = append(path, level[sibling])
		}
		level = foldLevel(level)
		i >>= 1
	}
	return path
}

// FoldPath - recompute a subtree hash from one leaf and its path
//
// the caller supplies the leaf count so promotion of odd trailing
// nodes folds exactly as in the full computation
func FoldPath(leafDigest Digest, index int, leafCount int, path []Digest) (Digest, error) {
	if index < 0 || index >= leafCount {
		return Digest{}, fault.CorruptedProof
	}
	digest := leafDigest
	used := 0
	count := leafCount
	i := index
	for count > 1 {
		sibling := i ^ 1
		if sibling < count {
			if used >= len(path) {
				return Digest{}, fault.IncompleteProof
			}
			if 0 == i&1 {
				digest = foldPair(digest, path[used])
			} else {
				digest = foldPair(path[used], digest)
			}
			used += 1
		}
		count = (count + 1) / 2
		i >>= 1
	}
	if used != len(path) {
		return Digest{}, fault.CorruptedProof
	}
	return digest, nil
}

// CombineSubtreeHashes - fold the ordered subtree hashes to the root
func CombineSubtreeHashes(hashes []Digest) Digest {
	h := sha3.New256()
	for i, subtree := range Order {
		h.Write([]byte{byte(subtree)})
		h.Write(hashes[i][:])
	}
	var root Digest
	copy(root[:], h.Sum(nil))
	return root
}

// subtreeLeaves - sorted key/value pairs of one subtree
//
// a nil transaction reads committed state; an open transaction also
// observes its pending writes
func subtreeLeaves(trx *Transaction, subtree Subtree) ([]leaf, error) {
	globalData.RLock()
	db := globalData.db
	initialised := globalData.initialised
	globalData.RUnlock()

	if !initialised {
		return nil, fault.NotInitialised
	}

	prefix := []byte{byte(subtree)}
	merged := make(map[string][]byte)

	iter := db.NewIterator(ldb_util.BytesPrefix(prefix), nil)
	for iter.Next() {
		key := make([]byte, len(iter.Key())-1)
		copy(key, iter.Key()[1:])
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		merged[string(key)] = value
	}
	iter.Release()
	if err := iter.Error(); nil != err {
		return nil, err
	}

	if nil != trx {
		trx.Lock()
		for k, p := range trx.overlay {
			if 0 == len(k) || k[0] != byte(subtree) {
				continue
			}
			if p.deleted {
				delete(merged, k[1:])
			} else {
				merged[k[1:]] = p.value
			}
		}
		trx.Unlock()
	}

	leaves := make([]leaf, 0, len(merged))
	for key, value := range merged {
		leaves = append(leaves, leaf{key: []byte(key), value: value})
	}
	sort.Slice(leaves, func(i, j int) bool {
		return bytes.Compare(leaves[i].key, leaves[j].key) < 0
	})
	return leaves, nil
}

// SubtreeHash - the authenticated hash of one subtree
func SubtreeHash(trx *Transaction, subtree Subtree) (Digest, error) {
	leaves, err := subtreeLeaves(trx, subtree)
	if nil != err {
		return Digest{}, err
	}
	if 0 == len(leaves) {
		return EmptySubtreeHash(subtree), nil
	}
	digests := make([]Digest, len(leaves))
	for i, l := range leaves {
		digests[i] = LeafDigest(l.key, l.value)
	}
	return merkleRoot(digests), nil
}

// RootHash - the authenticated hash of the whole store
func RootHash(trx *Transaction) (Digest, error) {
	hashes := make([]Digest, len(Order))
	for i, subtree := range Order {
		hash, err := SubtreeHash(trx, subtree)
		if nil != err {
			return Digest{}, err
		}
		hashes[i] = hash
	}
	return CombineSubtreeHashes(hashes), nil
}
