// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"testing"

	"github.com/dashpay/platformd/fault"
)

// ensure the tier classifiers do not overlap
func TestTiers(t *testing.T) {
	tests := []struct {
		err       error
		consensus bool
		fatal     bool
		proof     bool
	}{
		{fault.InvalidTokenAmount, true, false, false},
		{fault.IdentityNotFound, true, false, false},
		{fault.NonceTooFarInFuture, true, false, false},
		{fault.CorruptedSerialization, false, true, false},
		{fault.CorruptedDriveState, false, true, false},
		{fault.CreditsOverflow, false, true, false},
		{fault.UnknownVersionMismatch{Method: "x"}, false, true, false},
		{fault.IncorrectProof, false, false, true},
		{fault.CorruptedProof, false, false, true},
	}
	for i, item := range tests {
		if fault.IsConsensus(item.err) != item.consensus {
			t.Errorf("%d: IsConsensus(%q) != %v", i, item.err, item.consensus)
		}
		if fault.IsFatal(item.err) != item.fatal {
			t.Errorf("%d: IsFatal(%q) != %v", i, item.err, item.fatal)
		}
		if fault.IsProof(item.err) != item.proof {
			t.Errorf("%d: IsProof(%q) != %v", i, item.err, item.proof)
		}
	}
}

// codes must be stable and non-zero for every consensus error
func TestCodes(t *testing.T) {
	if 0 != fault.Code(nil) {
		t.Errorf("nil error must code to zero")
	}
	if 10210 != fault.Code(fault.InvalidTokenAmount) {
		t.Errorf("InvalidTokenAmount code changed: %d", fault.Code(fault.InvalidTokenAmount))
	}
	if 40310 != fault.Code(fault.NonceAlreadyPresentAtTip) {
		t.Errorf("NonceAlreadyPresentAtTip code changed: %d", fault.Code(fault.NonceAlreadyPresentAtTip))
	}
	if fault.UnknownConsensusCode != fault.Code(fault.CorruptedDriveState) {
		t.Errorf("unregistered error must map to UnknownConsensusCode")
	}
}

func TestVersionMismatchMessage(t *testing.T) {
	e := fault.UnknownVersionMismatch{
		Method:        "fees.calculate",
		KnownVersions: []uint16{0},
		Received:      7,
	}
	expected := "unknown version on fees.calculate, known versions: [0] received: 7"
	if expected != e.Error() {
		t.Errorf("actual: %q  expected: %q", e.Error(), expected)
	}
}
