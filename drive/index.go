// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package drive

import (
	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/document"
)

// IndexValueBytes - canonical bytes of a document's values under one
// index
//
// both index claim keys and contested poll identities build on these
// bytes, so the encoding must never change; ok is false when the
// document misses an indexed field
func IndexValueBytes(d document.Document, index *datacontract.Index) ([]byte, bool) {
	fields := make(map[string]document.Value, len(index.Properties))
	for _, name := range index.Properties {
		value, ok := d.Field(name)
		if !ok {
			return nil, false
		}
		fields[name] = value
	}
	return document.PackFields(nil, fields), true
}

// UniqueIndexEntries - the index claims a document occupies
//
// one entry per unique index whose fields the document carries
func UniqueIndexEntries(d document.Document, dt *datacontract.DocumentType) []IndexEntry {
	var entries []IndexEntry
	for i := range dt.Indices {
		index := &dt.Indices[i]
		if !index.Unique {
			continue
		}
		values, ok := IndexValueBytes(d, index)
		if !ok {
			continue
		}
		entries = append(entries, IndexEntry{
			IndexName: index.Name,
			Values:    values,
		})
	}
	return entries
}
