// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package credits_test

import (
	"testing"

	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/fault"
)

func TestCheckedAdd(t *testing.T) {
	sum, err := credits.Credits(1000).Add(credits.Credits(234))
	if nil != err || credits.Credits(1234) != sum {
		t.Errorf("add: actual: %d, %v", sum, err)
	}

	_, err = credits.MaxCredits.Add(1)
	if fault.CreditsOverflow != err {
		t.Errorf("overflow add: actual: %v  expected: %v", err, fault.CreditsOverflow)
	}
}

func TestCheckedSub(t *testing.T) {
	difference, err := credits.Credits(1000).Sub(credits.Credits(999))
	if nil != err || credits.Credits(1) != difference {
		t.Errorf("sub: actual: %d, %v", difference, err)
	}

	_, err = credits.Credits(50).Sub(credits.Credits(100))
	if fault.CreditsOverflow != err {
		t.Errorf("underflow sub: actual: %v  expected: %v", err, fault.CreditsOverflow)
	}
}

func TestCheckedMul(t *testing.T) {
	product, err := credits.Credits(25).Mul(40)
	if nil != err || credits.Credits(1000) != product {
		t.Errorf("mul: actual: %d, %v", product, err)
	}

	product, err = credits.Credits(12345).Mul(0)
	if nil != err || credits.Credits(0) != product {
		t.Errorf("mul by zero: actual: %d, %v", product, err)
	}

	_, err = credits.MaxCredits.Mul(2)
	if fault.CreditsOverflow != err {
		t.Errorf("overflow mul: actual: %v  expected: %v", err, fault.CreditsOverflow)
	}
}

func TestSigned(t *testing.T) {
	s, err := credits.Credits(500).ToSigned()
	if nil != err || credits.SignedCredits(500) != s {
		t.Fatalf("to signed: actual: %d, %v", s, err)
	}

	s, err = s.Add(credits.SignedCredits(-200))
	if nil != err || credits.SignedCredits(300) != s {
		t.Fatalf("signed add: actual: %d, %v", s, err)
	}

	c, err := s.ToUnsigned()
	if nil != err || credits.Credits(300) != c {
		t.Fatalf("to unsigned: actual: %d, %v", c, err)
	}

	negative := credits.SignedCredits(-1)
	_, err = negative.ToUnsigned()
	if fault.CreditsOverflow != err {
		t.Errorf("negative total must be fatal: actual: %v", err)
	}
}
