// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txdb

import (
	"github.com/kelpchain/kelpd/blockindex"
	"github.com/kelpchain/kelpd/blockrecord"
	"github.com/kelpchain/kelpd/checkpoint"
	"github.com/kelpchain/kelpd/fault"
	"github.com/kelpchain/kelpd/genesis"
	"github.com/kelpchain/kelpd/mode"
	"github.com/kelpchain/kelpd/storage"
)

// returned by an iteration callback to stop cleanly on shutdown
var errInterrupted = fault.ProcessError("interrupted")

// LoadBlockIndex - rebuild the chain graph from the persisted index
//
// two passes over the block index pool: count all records, then
// stream them into memory and resolve each into a graph node; after
// resolution chain trust is accumulated, the best chain tip restored
// and the last checkDepth blocks audited at checkLevel, rewinding the
// best chain pointer if the audit finds corruption
//
// a shutdown request during any pass stops the load cleanly with a
// partial graph and no repair; that is not an error and the caller
// must not assume the graph is complete
//
// with deferred set, records at or below the checkpoint boundary are
// handed to a background process instead of being resolved inline;
// the audit never reaches below that boundary so the two never touch
// the same nodes, but chain trust stays provisional until the
// background process drains the backlog and recomputes it
//
// runs once at startup, single threaded over the graph
func LoadBlockIndex(checkLevel int, checkDepth uint64, deferred bool) error {
	globalData.Lock()
	if !globalData.initialised {
		globalData.Unlock()
		return fault.ErrNotInitialised
	}
	log := globalData.log
	graph := globalData.graph
	reader := globalData.reader
	control := globalData.control
	globalData.Unlock()

	// count pass
	totalBlocks := uint64(0)
	err := storage.Pool.BlockIndex.NewFetchCursor().Map(func(key []byte, value []byte) error {
		if mode.Is(mode.Stopped) {
			return errInterrupted
		}
		totalBlocks += 1
		return nil
	})
	if errInterrupted == err {
		log.Warn("index count interrupted by shutdown")
		return nil
	}
	if nil != err {
		return err
	}
	log.Infof("block index records: %d", totalBlocks)

	table := checkpoint.Checkpoints(mode.IsTesting())
	bestCheckpoint := table.Best(totalBlocks)
	log.Infof("load checkpoint height: %d", bestCheckpoint)

	// load pass: stream every record into memory first
	records := make([]*blockrecord.DiskBlockIndex, 0, totalBlocks)
	err = storage.Pool.BlockIndex.NewFetchCursor().Map(func(key []byte, value []byte) error {
		if mode.Is(mode.Stopped) {
			return errInterrupted
		}
		record, err := blockrecord.PackedDiskBlockIndex(value).Unpack()
		if nil != err {
			return err
		}
		records = append(records, record)
		return nil
	})
	if errInterrupted == err {
		log.Warn("index load interrupted by shutdown")
		return nil
	}
	if nil != err {
		return err
	}

	// resolve pass
	testnet := mode.IsTesting()
	backlog := []*blockrecord.DiskBlockIndex(nil)
	for _, record := range records {
		if deferred && 0 != bestCheckpoint && record.Height <= bestCheckpoint {
			backlog = append(backlog, record)
			continue
		}
		resolve(graph, record, testnet)
	}
	records = nil

	if mode.Is(mode.Stopped) {
		return nil
	}

	graph.AccumulateTrust()

	// restore the best chain tip
	bestDigest, err := ReadBestChain()
	if fault.ErrBestChainNotFound == err {
		if nil == graph.Genesis() {
			// an empty database, nothing more to do
			return nil
		}
		return err
	}
	if nil != err {
		return err
	}
	best, ok := graph.Lookup(bestDigest)
	if !ok {
		return fault.ErrBestChainUnknownBlock
	}
	graph.SetBest(best)
	log.Infof("best chain: height: %d  trust: %s", best.Height, best.ChainTrust)

	// record the checkpoint the load was based on
	checkpointDigest := genesis.LiveGenesisDigest
	if testnet {
		checkpointDigest = genesis.TestGenesisDigest
	}
	if 0 != bestCheckpoint {
		if digest, ok := table.Hash(bestCheckpoint); ok {
			checkpointDigest = digest
		}
	}
	if err := WriteSyncCheckpoint(checkpointDigest); nil != err {
		return fault.ErrSyncCheckpointWriteFailed
	}
	syncCheckpoint, err := ReadSyncCheckpoint()
	if nil != err {
		return err
	}
	log.Infof("synchronised checkpoint: %s", syncCheckpoint)

	// highest invalid chain trust, absent on a fresh database
	bestInvalidTrust, err := ReadBestInvalidTrust()
	if nil != err {
		return err
	}
	log.Debugf("best invalid chain trust: %s", bestInvalidTrust)

	// audit the recent best chain and rewind it if corrupt
	fork, err := verifyBestChain(log, graph, reader, control, checkLevel, checkDepth)
	if nil != err {
		return err
	}
	if nil != fork && mode.IsNot(mode.Stopped) {
		log.Warnf("moving best chain pointer back to height: %d  block: %s", fork.Height, fork.Digest())
		block, err := reader.ReadBlock(fork.BlockPos())
		if nil != err {
			return fault.ErrBlockReadFailed
		}
		if err := control.SetBestChain(block, fork); nil != err {
			return err
		}
	}

	if deferred && 0 != len(backlog) {
		globalData.Lock()
		globalData.backlog = backlog
		startFinisher()
		globalData.Unlock()
	}

	if nil != graph.Best() {
		log.Infof("best block loaded: %s", graph.Best())
	}
	return nil
}

// consume one record into the graph, watching for genesis and
// registering consumed stakes
func resolve(graph *blockindex.Graph, record *blockrecord.DiskBlockIndex, testnet bool) {
	node := graph.Resolve(record)

	if nil == graph.Genesis() && genesis.IsGenesisDigest(node.Digest(), testnet) {
		graph.SetGenesis(node)
	}

	if node.IsProofOfStake() {
		graph.MarkStakeSeen(node.StakeSpent, node.StakeTime)
	}
}
