// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package checkpoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kelpchain/kelpd/blockdigest"
	"github.com/kelpchain/kelpd/checkpoint"
)

func makeDigest(b byte) blockdigest.Digest {
	d := blockdigest.Digest{}
	d[0] = b
	return d
}

var testTable = checkpoint.Table{
	0:    makeDigest(0x01),
	100:  makeDigest(0x02),
	500:  makeDigest(0x03),
	1000: makeDigest(0x04),
	5000: makeDigest(0x05),
}

func TestBestBelowMargin(t *testing.T) {
	// not enough blocks past any checkpoint
	assert.Equal(t, uint64(0), testTable.Best(0), "empty store")
	assert.Equal(t, uint64(0), testTable.Best(checkpoint.Margin), "exactly margin")
	assert.Equal(t, uint64(0), testTable.Best(checkpoint.Margin+1), "bound is 1, no height below it except 0")
}

func TestBestSelectsGreatestQualifying(t *testing.T) {
	items := []struct {
		total    uint64
		expected uint64
	}{
		{100 + checkpoint.Margin, 0},     // bound is 100, 100 does not qualify
		{101 + checkpoint.Margin, 100},   // bound is 101
		{500 + checkpoint.Margin, 100},   // 500 still too close
		{501 + checkpoint.Margin, 500},   // bound is 501
		{1 << 20, 5000},                  // far past every checkpoint
		{5000 + checkpoint.Margin, 1000}, // 5000 still too close
		{5001 + checkpoint.Margin, 5000}, // bound is 5001
	}
	for i, item := range items {
		actual := testTable.Best(item.total)
		assert.Equalf(t, item.expected, actual, "%d: total: %d", i, item.total)
	}
}

func TestBestResultIsInTable(t *testing.T) {
	for total := uint64(0); total < 8000; total += 97 {
		best := testTable.Best(total)
		_, ok := testTable.Hash(best)
		assert.Truef(t, ok, "total: %d  selected height: %d not in table", total, best)
	}
}

func TestBestAlwaysBelowBound(t *testing.T) {
	for total := uint64(checkpoint.Margin + 1); total < 8000; total += 89 {
		best := testTable.Best(total)
		assert.Truef(t, best < total-checkpoint.Margin, "total: %d  best: %d exceeds bound", total, best)
	}
}

func TestChainTables(t *testing.T) {
	live := checkpoint.Checkpoints(false)
	test := checkpoint.Checkpoints(true)

	// both tables anchor at genesis
	_, ok := live.Hash(0)
	assert.True(t, ok, "live table missing genesis")
	_, ok = test.Hash(0)
	assert.True(t, ok, "test table missing genesis")
}

func TestHeightsAreSorted(t *testing.T) {
	heights := testTable.Heights()
	assert.Equal(t, len(testTable), len(heights), "wrong count")
	for i := 1; i < len(heights); i += 1 {
		assert.True(t, heights[i-1] < heights[i], "heights not ascending")
	}
}
