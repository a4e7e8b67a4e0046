// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fees_test

import (
	"testing"

	"github.com/dashpay/platformd/credits"
	"github.com/dashpay/platformd/fees"
	"github.com/dashpay/platformd/platformversion"
)

func TestCalculateIsPure(t *testing.T) {
	costs := []fees.OperationCost{
		{InsertedBytes: 100, Seeks: 2},
		{ProcessedBytes: 50, Seeks: 1},
	}
	epoch := fees.NewEpoch(3, 1000, 0, 1000)

	first, err := fees.Calculate(costs, 10, epoch, platformversion.V1)
	if nil != err {
		t.Fatalf("calculate: %v", err)
	}
	second, err := fees.Calculate(costs, 10, epoch, platformversion.V1)
	if nil != err {
		t.Fatalf("calculate: %v", err)
	}
	if first.Storage != second.Storage || first.Processing != second.Processing {
		t.Errorf("same inputs must price identically")
	}
}

func TestCalculateValues(t *testing.T) {
	costs := []fees.OperationCost{
		{InsertedBytes: 100, Seeks: 2},
	}
	result, err := fees.Calculate(costs, 0, nil, platformversion.V1)
	if nil != err {
		t.Fatalf("calculate: %v", err)
	}

	// 100 bytes * 27 credits
	if credits.Credits(2700) != result.Storage {
		t.Errorf("storage: actual: %d  expected: 2700", result.Storage)
	}
	// 100 bytes * 12 + 1 op * 500 + 2 seeks * 100
	if credits.Credits(1900) != result.Processing {
		t.Errorf("processing: actual: %d  expected: 1900", result.Processing)
	}
	if 0 != len(result.Refunds) {
		t.Errorf("no removals, no refunds")
	}

	total, err := result.Total()
	if nil != err {
		t.Fatalf("total: %v", err)
	}
	if credits.Credits(4600) != total {
		t.Errorf("total: actual: %d  expected: 4600", total)
	}
}

func TestRefundIsDiscounted(t *testing.T) {
	costs := []fees.OperationCost{
		{RemovedBytes: 100},
	}
	epoch := fees.NewEpoch(7, 0, 0, 1000)
	result, err := fees.Calculate(costs, 0, epoch, platformversion.V1)
	if nil != err {
		t.Fatalf("calculate: %v", err)
	}
	if 1 != len(result.Refunds) {
		t.Fatalf("expected one refund entry")
	}
	// 100 bytes * 27 credits * 95%
	if credits.Credits(2565) != result.Refunds[0].Amount {
		t.Errorf("refund: actual: %d  expected: 2565", result.Refunds[0].Amount)
	}
	if 7 != result.Refunds[0].Epoch {
		t.Errorf("refund epoch: actual: %d  expected: 7", result.Refunds[0].Epoch)
	}
}

func TestTotalNeverNegative(t *testing.T) {
	result := &fees.FeeResult{
		Storage:    10,
		Processing: 10,
		Refunds: []fees.RefundEntry{
			{Epoch: 0, Amount: 1000},
		},
	}
	total, err := result.Total()
	if nil != err {
		t.Fatalf("total: %v", err)
	}
	if 0 != total {
		t.Errorf("refunds must clamp at zero, not go negative: %d", total)
	}
}

func TestEpochMultiplierScalesStorage(t *testing.T) {
	costs := []fees.OperationCost{{InsertedBytes: 100}}

	expensive := fees.NewEpoch(0, 0, 0, 2000)
	result, err := fees.Calculate(costs, 0, expensive, platformversion.V1)
	if nil != err {
		t.Fatalf("calculate: %v", err)
	}
	if credits.Credits(5400) != result.Storage {
		t.Errorf("doubled multiplier: actual: %d  expected: 5400", result.Storage)
	}
}

func TestProposerShares(t *testing.T) {
	epoch := fees.NewEpoch(0, 0, 0, 1000)
	a := [32]byte{0x01}
	b := [32]byte{0x02}
	epoch.CountProposer(a)
	epoch.CountProposer(a)
	epoch.CountProposer(b)

	if 3 != epoch.TotalBlocks() {
		t.Errorf("total blocks: actual: %d  expected: 3", epoch.TotalBlocks())
	}
	if 666 != epoch.ProposerShare(a, 1000) {
		t.Errorf("share a: actual: %d  expected: 666", epoch.ProposerShare(a, 1000))
	}
	if 333 != epoch.ProposerShare(b, 1000) {
		t.Errorf("share b: actual: %d  expected: 333", epoch.ProposerShare(b, 1000))
	}
}
