// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package grove - authenticated key value store
//
// state lives under fixed single byte root subtrees inside one
// goleveldb database; every block mutates the store through a single
// Transaction whose writes are readable before commit, and the root
// hash over all subtrees authenticates the whole state
//
// the root hash is a pure function of the stored bytes: a merkle root
// per subtree over the sorted key/value leaf digests, combined in the
// fixed subtree order
package grove
