// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package checkpoint - externally trusted (height, digest) pairs
//
// used to bound how much history the index loader has to re-verify:
// everything at or below the best qualifying checkpoint is taken on
// trust
package checkpoint

import (
	"sort"

	"github.com/kelpchain/kelpd/blockdigest"
	"github.com/kelpchain/kelpd/genesis"
)

// Margin - minimum number of blocks that must remain past the
// selected checkpoint so a reorg near the boundary stays possible
const Margin = 250

// Table - checkpoint table for one chain
type Table map[uint64]blockdigest.Digest

// the hard coded live chain checkpoints
//
// appended on each release, never edited
var liveCheckpoints = Table{
	genesis.BlockNumber: genesis.LiveGenesisDigest,
}

// the testing chain only trusts its genesis block
var testCheckpoints = Table{
	genesis.BlockNumber: genesis.TestGenesisDigest,
}

// Checkpoints - the table for the selected chain
func Checkpoints(testing bool) Table {
	if testing {
		return testCheckpoints
	}
	return liveCheckpoints
}

// Best - the highest checkpoint usable for a store of totalBlocks
// persisted block index records
//
// returns the greatest height H in the table with H < totalBlocks -
// Margin; zero when no checkpoint qualifies, meaning a full load is
// required
func (table Table) Best(totalBlocks uint64) uint64 {
	bound := uint64(0)
	if totalBlocks > Margin {
		bound = totalBlocks - Margin
	}

	best := uint64(0)
	for height := range table {
		if height < bound && height > best {
			best = height
		}
	}
	return best
}

// Hash - the digest recorded for a height
func (table Table) Hash(height uint64) (blockdigest.Digest, bool) {
	digest, ok := table[height]
	return digest, ok
}

// Heights - all checkpoint heights in ascending order
func (table Table) Heights() []uint64 {
	heights := make([]uint64, 0, len(table))
	for height := range table {
		heights = append(heights, height)
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })
	return heights
}
