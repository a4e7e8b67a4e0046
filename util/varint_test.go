// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util_test

import (
	"bytes"
	"testing"

	"github.com/dashpay/platformd/util"
)

func TestVarint64(t *testing.T) {
	tests := []struct {
		value   uint64
		encoded []byte
	}{
		{0x00, []byte{0x00}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{0x3fff, []byte{0xff, 0x7f}},
		{0x4000, []byte{0x80, 0x80, 0x01}},
		{0xffffffffffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}
	for i, item := range tests {
		encoded := util.ToVarint64(item.value)
		if !bytes.Equal(encoded, item.encoded) {
			t.Errorf("%d: encode %d: actual: %x  expected: %x", i, item.value, encoded, item.encoded)
		}
		value, n := util.FromVarint64(item.encoded)
		if value != item.value || n != len(item.encoded) {
			t.Errorf("%d: decode %x: actual: %d (%d bytes)", i, item.encoded, value, n)
		}
	}

	// truncated buffer
	if v, n := util.FromVarint64([]byte{0x80}); 0 != v || 0 != n {
		t.Errorf("truncated: actual: %d, %d  expected: 0, 0", v, n)
	}
}

func TestAppendNext(t *testing.T) {
	buffer := []byte{}
	buffer = util.AppendUint64(buffer, 1000)
	buffer = util.AppendString(buffer, "preorder")
	buffer = util.AppendBytes(buffer, []byte{0x01, 0x02})
	buffer = util.AppendFixed(buffer, bytes.Repeat([]byte{0xab}, 32))

	value, rest, ok := util.NextUint64(buffer)
	if !ok || 1000 != value {
		t.Fatalf("uint64: actual: %d ok=%v", value, ok)
	}
	s, rest, ok := util.NextString(rest)
	if !ok || "preorder" != s {
		t.Fatalf("string: actual: %q ok=%v", s, ok)
	}
	b, rest, ok := util.NextBytes(rest)
	if !ok || !bytes.Equal([]byte{0x01, 0x02}, b) {
		t.Fatalf("bytes: actual: %x ok=%v", b, ok)
	}
	f, rest, ok := util.NextFixed(rest, 32)
	if !ok || 32 != len(f) || 0 != len(rest) {
		t.Fatalf("fixed: length: %d remaining: %d ok=%v", len(f), len(rest), ok)
	}

	// short reads fail without consuming
	if _, _, ok := util.NextFixed([]byte{0x00}, 32); ok {
		t.Errorf("short fixed read must fail")
	}
	if _, _, ok := util.NextBytes([]byte{0x05, 0x01}); ok {
		t.Errorf("short bytes read must fail")
	}
}
