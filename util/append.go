// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

// canonical packing helpers shared by all wire formats
//
// every variable length field is preceded by its Varint64 byte count;
// fixed width fields (identifiers, hashes) are appended raw so that
// path construction stays byte compatible across implementations

// AppendUint64 - append a Varint64 encoded value
func AppendUint64(buffer []byte, value uint64) []byte {
	return append(buffer, ToVarint64(value)...)
}

// AppendBytes - append a length prefixed byte slice
func AppendBytes(buffer []byte, data []byte) []byte {
	buffer = append(buffer, ToVarint64(uint64(len(data)))...)
	return append(buffer, data...)
}

// AppendString - append a length prefixed utf-8 string
func AppendString(buffer []byte, s string) []byte {
	return AppendBytes(buffer, []byte(s))
}

// AppendFixed - append a fixed width field with no length prefix
func AppendFixed(buffer []byte, data []byte) []byte {
	return append(buffer, data...)
}

// NextUint64 - read a Varint64 from the front of a buffer
//
// returns value and remaining buffer; ok is false on truncation
func NextUint64(buffer []byte) (uint64, []byte, bool) {
	value, n := FromVarint64(buffer)
	if 0 == n {
		return 0, buffer, false
	}
	return value, buffer[n:], true
}

// NextBytes - read a length prefixed byte slice
func NextBytes(buffer []byte) ([]byte, []byte, bool) {
	length, rest, ok := NextUint64(buffer)
	if !ok || uint64(len(rest)) < length {
		return nil, buffer, false
	}
	return rest[:length], rest[length:], true
}

// NextString - read a length prefixed utf-8 string
func NextString(buffer []byte) (string, []byte, bool) {
	data, rest, ok := NextBytes(buffer)
	return string(data), rest, ok
}

// NextFixed - read a fixed width field
func NextFixed(buffer []byte, size int) ([]byte, []byte, bool) {
	if len(buffer) < size {
		return nil, buffer, false
	}
	return buffer[:size], buffer[size:], true
}
