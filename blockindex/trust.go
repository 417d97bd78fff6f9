// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockindex

import (
	"bytes"
	"math/big"
	"sort"
)

// AccumulateTrust - compute cumulative chain trust for every node
//
// nodes are processed parents-before-children: sorted by ascending
// height with the digest bytes as tie break so the result is
// deterministic for any map iteration order; a node whose parent is
// outside the graph starts its chain at its own trust
func (g *Graph) AccumulateTrust() {
	ordered := make([]*Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		ordered = append(ordered, node)
	}
	sort.Slice(ordered, func(i int, j int) bool {
		if ordered[i].Height != ordered[j].Height {
			return ordered[i].Height < ordered[j].Height
		}
		return bytes.Compare(ordered[i].digest[:], ordered[j].digest[:]) < 0
	})

	for _, node := range ordered {
		trust := new(big.Int)
		if nil != node.Previous && nil != node.Previous.ChainTrust {
			trust.Set(node.Previous.ChainTrust)
		}
		node.ChainTrust = trust.Add(trust, node.BlockTrust())
	}
}
