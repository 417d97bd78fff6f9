// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockindex - the in-memory chain graph
//
// a single arena owns every node for the process lifetime, nodes are
// never freed, neighbour pointers are non-owning references into the
// arena; no locking: the startup load/verify sequence is the only
// mutator and runs single threaded
package blockindex

import (
	"math/big"

	"github.com/kelpchain/kelpd/blockdigest"
	"github.com/kelpchain/kelpd/blockrecord"
)

// StakeKey - identity of one consumed stake: the output spent by the
// stake and the stake timestamp
type StakeKey struct {
	OutPoint blockrecord.OutPoint
	Time     uint32
}

// Graph - mapping from block digest to node, the owner of all nodes
type Graph struct {
	nodes     map[blockdigest.Digest]*Node
	stakeSeen map[StakeKey]struct{}

	genesis *Node
	best    *Node
}

// New - create an empty graph
func New() *Graph {
	return &Graph{
		nodes:     make(map[blockdigest.Digest]*Node),
		stakeSeen: make(map[StakeKey]struct{}),
	}
}

// Insert - look up a node, creating a placeholder on first sight
//
// the null digest means "no neighbour" and maps to nil
func (g *Graph) Insert(digest blockdigest.Digest) *Node {
	if digest.IsEmpty() {
		return nil
	}
	if node, ok := g.nodes[digest]; ok {
		return node
	}
	node := &Node{digest: digest}
	g.nodes[digest] = node
	return node
}

// Lookup - find an existing node
func (g *Graph) Lookup(digest blockdigest.Digest) (*Node, bool) {
	node, ok := g.nodes[digest]
	return node, ok
}

// Has - check a digest is present
func (g *Graph) Has(digest blockdigest.Digest) bool {
	_, ok := g.nodes[digest]
	return ok
}

// Size - number of nodes including placeholders
func (g *Graph) Size() int {
	return len(g.nodes)
}

// Resolve - consume one persisted record into the graph
//
// the node identity is the scrypt digest of the record's embedded
// header; a record seen a second time is a no-op and cannot create a
// duplicate node
func (g *Graph) Resolve(record *blockrecord.DiskBlockIndex) *Node {
	digest := record.Header.Digest()

	node := g.Insert(digest)
	if node.filled {
		return node
	}

	node.Previous = g.Insert(record.PreviousBlock)
	node.Next = g.Insert(record.Next)
	node.File = record.File
	node.Offset = record.Offset
	node.Height = record.Height
	node.Mint = record.Mint
	node.MoneySupply = record.MoneySupply
	node.Flags = record.Flags
	node.StakeModifier = record.StakeModifier
	node.StakeSpent = record.StakeSpent
	node.StakeTime = record.StakeTime
	node.ProofOfStake = record.ProofOfStake
	node.Version = record.Version
	node.MerkleRoot = record.MerkleRoot
	node.Timestamp = record.Timestamp
	node.Bits = record.Bits
	node.Nonce = record.Nonce
	node.filled = true

	return node
}

// Genesis - the chain root, nil until seen during load
func (g *Graph) Genesis() *Node {
	return g.genesis
}

// SetGenesis - record the chain root
func (g *Graph) SetGenesis(node *Node) {
	if nil == g.genesis {
		g.genesis = node
	}
}

// Best - the best chain tip, nil before tip resolution
func (g *Graph) Best() *Node {
	return g.best
}

// SetBest - move the best chain tip
func (g *Graph) SetBest(node *Node) {
	g.best = node
}

// BestHeight - height of the best chain tip
func (g *Graph) BestHeight() uint64 {
	if nil == g.best {
		return 0
	}
	return g.best.Height
}

// BestTrust - cumulative trust of the best chain tip
func (g *Graph) BestTrust() *big.Int {
	if nil == g.best || nil == g.best.ChainTrust {
		return big.NewInt(0)
	}
	return g.best.ChainTrust
}

// MarkStakeSeen - register a consumed stake for duplicate detection
func (g *Graph) MarkStakeSeen(outPoint blockrecord.OutPoint, stakeTime uint32) {
	g.stakeSeen[StakeKey{OutPoint: outPoint, Time: stakeTime}] = struct{}{}
}

// IsStakeSeen - check if a stake has already been consumed
func (g *Graph) IsStakeSeen(outPoint blockrecord.OutPoint, stakeTime uint32) bool {
	_, ok := g.stakeSeen[StakeKey{OutPoint: outPoint, Time: stakeTime}]
	return ok
}
