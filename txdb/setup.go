// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txdb

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/kelpchain/kelpd/background"
	"github.com/kelpchain/kelpd/blockindex"
	"github.com/kelpchain/kelpd/blockrecord"
	"github.com/kelpchain/kelpd/fault"
	"github.com/kelpchain/kelpd/storage"
)

// BlockReader - access to block bodies stored in flat files
//
// positions come from index records; a read failure means the flat
// file is missing or truncated, not that the index is wrong
type BlockReader interface {
	ReadBlock(pos blockrecord.DiskPos) (*blockrecord.Block, error)
	ReadTransaction(pos blockrecord.DiskTxPos) (*blockrecord.Transaction, error)
}

// ChainControl - consensus operations invoked as black boxes
//
// CheckBlock and CheckTransaction re-run the consensus validity rules
// over data read back from disk; SetBestChain moves the best chain
// pointer to the given block, disconnecting any orphaned descendants
type ChainControl interface {
	CheckBlock(block *blockrecord.Block, checkSignature bool) bool
	CheckTransaction(tx *blockrecord.Transaction) bool
	SetBestChain(block *blockrecord.Block, node *blockindex.Node) error
}

// globals for background process
type globalDataType struct {
	sync.RWMutex

	log     *logger.L
	reader  BlockReader
	control ChainControl
	graph   *blockindex.Graph

	// deferred index loading
	backlog    []*blockrecord.DiskBlockIndex
	background *background.T

	initialised bool
}

var globalData globalDataType

// Initialise - connect the index to its collaborators
//
// the storage pools must already be initialised; the graph starts
// empty and is populated by LoadBlockIndex
func Initialise(reader BlockReader, control ChainControl) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}
	if !storage.IsInitialised() {
		return fault.ErrNotInitialised
	}

	globalData.log = logger.New("txdb")
	if nil == globalData.log {
		return fault.ErrInvalidLoggerChannel
	}
	globalData.log.Info("starting…")

	globalData.reader = reader
	globalData.control = control
	globalData.graph = blockindex.New()
	globalData.backlog = nil
	globalData.background = nil

	globalData.initialised = true
	return nil
}

// Finalise - shut down the index
func Finalise() error {
	globalData.Lock()
	if !globalData.initialised {
		globalData.Unlock()
		return fault.ErrNotInitialised
	}

	// the finisher takes the lock per record, stop it unlocked
	bg := globalData.background
	globalData.background = nil
	globalData.Unlock()

	bg.Stop()

	globalData.Lock()
	defer globalData.Unlock()

	globalData.log.Info("shutting down…")

	globalData.graph = nil
	globalData.backlog = nil
	globalData.initialised = false
	globalData.log.Flush()
	return nil
}

// Graph - the chain graph owned by this index
func Graph() *blockindex.Graph {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.graph
}

// IsInitialised - check the index is ready
func IsInitialised() bool {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.initialised
}
