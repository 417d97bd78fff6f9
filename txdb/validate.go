// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txdb

import (
	"github.com/bitmark-inc/logger"

	"github.com/kelpchain/kelpd/blockindex"
	"github.com/kelpchain/kelpd/blockrecord"
	"github.com/kelpchain/kelpd/fault"
	"github.com/kelpchain/kelpd/mode"
)

// audit severity, escalating per level
//
//   1  block validity
//   2  every transaction is indexed
//   3  indexed positions match the block being walked
//   4  spends happened inside the walked chain
//   5  consumed inputs are marked spent at their origin
//   6  the spending transaction is readable, valid and really spends
//   7  block signatures too
const (
	DefaultCheckLevel = 1
	DefaultCheckDepth = 2500
	MaximumCheckLevel = 7
)

// verifyBestChain - walk the best chain backward re-checking each
// block, returning the repair point or nil when the chain is sound
//
// every failure moves the repair point to the predecessor of the
// offending block; the walk continues to completion so the deepest
// failure decides where to cut; a shutdown request aborts the walk
// and the partial result must not be acted on
//
// read failures from the store or the flat files during the walk are
// fatal: an audit that cannot read its inputs proves nothing
func verifyBestChain(log *logger.L, graph *blockindex.Graph, reader BlockReader, control ChainControl, checkLevel int, checkDepth uint64) (*blockindex.Node, error) {
	best := graph.Best()
	if nil == best {
		return nil, nil
	}

	if 0 == checkDepth || checkDepth > best.Height {
		checkDepth = best.Height
	}
	log.Infof("verifying last %d blocks at level %d", checkDepth, checkLevel)

	var fork *blockindex.Node

	// positions visited so far, to prove spends stayed on this chain
	blockPositions := make(map[blockrecord.DiskPos]*blockindex.Node)

walk:
	for node := best; nil != node && nil != node.Previous; node = node.Previous {
		if mode.Is(mode.Stopped) || node.Height < best.Height-checkDepth {
			break walk
		}

		block, err := reader.ReadBlock(node.BlockPos())
		if nil != err {
			return nil, fault.ErrBlockReadFailed
		}

		if checkLevel > 0 && !control.CheckBlock(block, checkLevel > 6) {
			log.Errorf("bad block at height: %d  digest: %s", node.Height, node.Digest())
			fork = node.Previous
		}

		if checkLevel <= 1 {
			continue walk
		}

		blockPositions[node.BlockPos()] = node

		for i := range block.Txs {
			tx := &block.Txs[i]
			txId := tx.Digest()

			txindex, err := ReadTxIndex(txId)
			if fault.ErrTransactionNotFound == err {
				log.Errorf("missing index for transaction: %s in block at height: %d", txId, node.Height)
				fork = node.Previous
				txindex = nil
			} else if nil != err {
				return nil, err
			}

			if nil != txindex {

				// a position mismatch at any level is either an error
				// or a duplicate transaction; level 3 rereads always
				if checkLevel > 2 || node.File != txindex.Pos.File || node.Offset != txindex.Pos.BlockOffset {
					txFound, err := reader.ReadTransaction(txindex.Pos)
					if nil != err {
						log.Errorf("cannot read mislocated transaction: %s", txId)
						fork = node.Previous
					} else if txId != txFound.Digest() {
						log.Errorf("invalid position for transaction: %s", txId)
						fork = node.Previous
					}
				}

				if checkLevel > 3 {
					for output, spent := range txindex.Spent {
						if spent.IsNull() {
							continue
						}
						if _, ok := blockPositions[spent.BlockPos()]; !ok {
							log.Errorf("bad spend at height: %d  block: %s  transaction: %s", node.Height, node.Digest(), txId)
							fork = node.Previous
						}
						if checkLevel > 5 {
							txSpend, err := reader.ReadTransaction(spent)
							if nil != err {
								log.Errorf("cannot read spending transaction of %s:%d", txId, output)
								fork = node.Previous
							} else if !control.CheckTransaction(txSpend) {
								log.Errorf("spending transaction of %s:%d is invalid", txId, output)
								fork = node.Previous
							} else if !txSpend.SpendsOutput(txId, uint32(output)) {
								log.Errorf("spending transaction of %s:%d does not spend it", txId, output)
								fork = node.Previous
							}
						}
					}
				}
			}

			if checkLevel > 4 {
				for _, in := range tx.Vin {
					if in.PrevOut.IsNull() {
						continue
					}
					prevIndex, err := ReadTxIndex(in.PrevOut.TxId)
					if fault.ErrTransactionNotFound == err {
						continue
					} else if nil != err {
						return nil, err
					}
					if int(in.PrevOut.Index) >= len(prevIndex.Spent) || prevIndex.Spent[in.PrevOut.Index].IsNull() {
						log.Errorf("unspent prevout %s:%d consumed in %s", in.PrevOut.TxId, in.PrevOut.Index, txId)
						fork = node.Previous
					}
				}
			}
		}
	}

	if mode.Is(mode.Stopped) {
		return nil, nil
	}
	return fork, nil
}
