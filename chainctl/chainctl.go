// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainctl - consensus checks and best chain movement
//
// re-runs the structural validity rules over blocks read back from
// disk and rewinds the best chain pointer, disconnecting the
// transaction index entries of orphaned blocks
package chainctl

import (
	"github.com/bitmark-inc/logger"

	"github.com/kelpchain/kelpd/blockfile"
	"github.com/kelpchain/kelpd/blockindex"
	"github.com/kelpchain/kelpd/blockrecord"
	"github.com/kelpchain/kelpd/fault"
	"github.com/kelpchain/kelpd/merkle"
	"github.com/kelpchain/kelpd/txdb"
)

// total currency cap in base units
const maximumValue = 2000000000 * 1000000

// Controller - operates on the best chain
type Controller struct {
	log   *logger.L
	store *blockfile.Store
}

// New - create a controller over a block file store
func New(store *blockfile.Store) *Controller {
	return &Controller{
		log:   logger.New("chainctl"),
		store: store,
	}
}

// CheckBlock - structural validity of a block
//
// with checkSignature set every transaction is re-checked as well
func (c *Controller) CheckBlock(block *blockrecord.Block, checkSignature bool) bool {
	if nil == block || 0 == len(block.Txs) {
		return false
	}
	if block.Header.Version < blockrecord.MinimumVersion {
		return false
	}
	if 0 == block.Header.Timestamp {
		return false
	}

	// first transaction must be the generation, nowhere else
	if !isGeneration(&block.Txs[0]) {
		return false
	}
	for i := 1; i < len(block.Txs); i += 1 {
		if isGeneration(&block.Txs[i]) {
			return false
		}
	}

	digests := make([]merkle.Digest, len(block.Txs))
	for i := range block.Txs {
		digests[i] = block.Txs[i].Digest()
	}
	if merkle.Root(digests) != block.Header.MerkleRoot {
		return false
	}

	if checkSignature {
		for i := range block.Txs {
			if !c.CheckTransaction(&block.Txs[i]) {
				return false
			}
		}
	}
	return true
}

// CheckTransaction - structural validity of a transaction
func (c *Controller) CheckTransaction(tx *blockrecord.Transaction) bool {
	if nil == tx || 0 == len(tx.Vin) || 0 == len(tx.Vout) {
		return false
	}

	total := int64(0)
	for _, out := range tx.Vout {
		if out.Value < 0 || out.Value > maximumValue {
			return false
		}
		total += out.Value
		if total > maximumValue {
			return false
		}
	}

	// duplicate inputs are forbidden
	seen := make(map[blockrecord.OutPoint]struct{}, len(tx.Vin))
	for _, in := range tx.Vin {
		if in.PrevOut.IsNull() {
			continue
		}
		if _, ok := seen[in.PrevOut]; ok {
			return false
		}
		seen[in.PrevOut] = struct{}{}
	}
	return true
}

// SetBestChain - rewind the best chain pointer to the given block
//
// every block above the new tip is disconnected tip first: its
// transactions leave the index and the outputs they consumed become
// unspent again; finally the persisted tip record and the in-memory
// graph are updated
func (c *Controller) SetBestChain(block *blockrecord.Block, node *blockindex.Node) error {
	if nil == node {
		return fault.ErrBlockNotFound
	}

	graph := txdb.Graph()
	if nil == graph {
		return fault.ErrNotInitialised
	}

	for current := graph.Best(); nil != current && current != node; current = current.Previous {
		body, err := c.store.ReadBlock(current.BlockPos())
		if nil != err {
			return err
		}
		if err := c.disconnectBlock(body); nil != err {
			return err
		}
		current.Next = nil
		c.log.Warnf("disconnected block at height: %d  digest: %s", current.Height, current.Digest())
	}

	node.Next = nil
	if err := txdb.WriteBestChain(node.Digest()); nil != err {
		return err
	}
	graph.SetBest(node)
	c.log.Infof("best chain now at height: %d  digest: %s", node.Height, node.Digest())
	return nil
}

// take one block's transactions back out of the index
//
// transactions go in reverse so an output spent later in the same
// block is unmarked before its owner is erased
func (c *Controller) disconnectBlock(block *blockrecord.Block) error {
	for i := len(block.Txs) - 1; i >= 0; i -= 1 {
		tx := &block.Txs[i]

		for _, in := range tx.Vin {
			if in.PrevOut.IsNull() {
				continue
			}
			prevIndex, err := txdb.ReadTxIndex(in.PrevOut.TxId)
			if fault.ErrTransactionNotFound == err {
				continue
			} else if nil != err {
				return err
			}
			if err := prevIndex.MarkSpent(in.PrevOut.Index, blockrecord.NullTxPos()); nil != err {
				return err
			}
			if err := txdb.UpdateTxIndex(in.PrevOut.TxId, prevIndex); nil != err {
				return err
			}
		}

		if err := txdb.EraseTxIndex(tx.Digest()); nil != err {
			return err
		}
	}
	return nil
}

// a generation transaction creates new currency from a null prevout
func isGeneration(tx *blockrecord.Transaction) bool {
	return 1 == len(tx.Vin) && tx.Vin[0].PrevOut.IsNull()
}
