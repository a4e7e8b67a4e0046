// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identifier_test

import (
	"encoding/json"
	"testing"

	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/identifier"
)

func TestNew(t *testing.T) {
	a := identifier.New([]byte("hello world"))
	b := identifier.New([]byte("hello world"))
	c := identifier.New([]byte("hello worlD"))
	if a != b {
		t.Errorf("same record must produce same identifier")
	}
	if a == c {
		t.Errorf("different records must produce different identifiers")
	}
	if a.IsZero() {
		t.Errorf("content addressed identifier must not be zero")
	}
}

func TestFromBytes(t *testing.T) {
	_, err := identifier.FromBytes(make([]byte, 31))
	if fault.InvalidIdentifierLength != err {
		t.Errorf("short buffer: actual: %v  expected: %v", err, fault.InvalidIdentifierLength)
	}
	id, err := identifier.FromBytes(make([]byte, 32))
	if nil != err {
		t.Fatalf("valid buffer: %v", err)
	}
	if !id.IsZero() {
		t.Errorf("zero buffer must give zero identifier")
	}
}

func TestTextRoundTrip(t *testing.T) {
	original := identifier.New([]byte("round trip"))

	marshalled, err := json.Marshal(original)
	if nil != err {
		t.Fatalf("marshal: %v", err)
	}

	var restored identifier.Identifier
	err = json.Unmarshal(marshalled, &restored)
	if nil != err {
		t.Fatalf("unmarshal: %v", err)
	}
	if original != restored {
		t.Errorf("actual: %v  expected: %v", restored, original)
	}

	fromString, err := identifier.FromString(original.String())
	if nil != err || fromString != original {
		t.Errorf("FromString(String()) mismatch: %v %v", fromString, err)
	}
}
