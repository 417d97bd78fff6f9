// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txdb_test

import (
	"math/big"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/kelpchain/kelpd/blockindex"
	"github.com/kelpchain/kelpd/blockrecord"
	"github.com/kelpchain/kelpd/chain"
	"github.com/kelpchain/kelpd/chainctl"
	"github.com/kelpchain/kelpd/difficulty"
	"github.com/kelpchain/kelpd/fault"
	"github.com/kelpchain/kelpd/genesis"
	"github.com/kelpchain/kelpd/merkle"
	"github.com/kelpchain/kelpd/mode"
	"github.com/kelpchain/kelpd/storage"
	"github.com/kelpchain/kelpd/txdb"
)

const (
	testingDirName   = "testing-txdb"
	databaseFileName = "test.leveldb"
)

// in-memory block store standing in for the flat files
type fakeStore struct {
	blocks map[blockrecord.DiskPos]*blockrecord.Block
	txs    map[blockrecord.DiskTxPos]*blockrecord.Transaction
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		blocks: map[blockrecord.DiskPos]*blockrecord.Block{},
		txs:    map[blockrecord.DiskTxPos]*blockrecord.Transaction{},
	}
}

func (s *fakeStore) ReadBlock(pos blockrecord.DiskPos) (*blockrecord.Block, error) {
	block, ok := s.blocks[pos]
	if !ok {
		return nil, fault.ErrBlockNotFound
	}
	return block, nil
}

func (s *fakeStore) ReadTransaction(pos blockrecord.DiskTxPos) (*blockrecord.Transaction, error) {
	tx, ok := s.txs[pos]
	if !ok {
		return nil, fault.ErrTransactionNotFound
	}
	return tx, nil
}

// consensus checks are the real ones, best chain movement is only
// recorded so the tests can observe the chosen repair point
type fakeControl struct {
	checker  *chainctl.Controller
	repaired []*blockindex.Node
}

func (c *fakeControl) CheckBlock(block *blockrecord.Block, checkSignature bool) bool {
	return c.checker.CheckBlock(block, checkSignature)
}

func (c *fakeControl) CheckTransaction(tx *blockrecord.Transaction) bool {
	return c.checker.CheckTransaction(tx)
}

func (c *fakeControl) SetBestChain(block *blockrecord.Block, node *blockindex.Node) error {
	c.repaired = append(c.repaired, node)
	if err := txdb.WriteBestChain(node.Digest()); nil != err {
		return err
	}
	txdb.Graph().SetBest(node)
	return nil
}

func removeFiles() {
	_ = os.RemoveAll(testingDirName)
}

func setup(t *testing.T) (*fakeStore, *fakeControl) {
	removeFiles()
	if err := os.MkdirAll(testingDirName, 0700); nil != err {
		t.Fatalf("mkdir error: %s", err)
	}

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	_ = logger.Initialise(logging)

	if err := mode.Initialise(chain.Testing); nil != err {
		t.Fatalf("mode initialise error: %s", err)
	}
	if err := storage.Initialise(testingDirName, databaseFileName, 4, true); nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}

	store := newFakeStore()
	control := &fakeControl{checker: chainctl.New(nil)}
	if err := txdb.Initialise(store, control); nil != err {
		t.Fatalf("txdb initialise error: %s", err)
	}
	return store, control
}

func teardown() {
	_ = txdb.Finalise()
	storage.Finalise()
	_ = mode.Finalise()
	logger.Finalise()
	removeFiles()
}

// chain fixture

type testChain struct {
	blocks      []*blockrecord.Block
	records     []*blockrecord.DiskBlockIndex
	txPositions [][]blockrecord.DiskTxPos
}

func generation(height int) blockrecord.Transaction {
	return blockrecord.Transaction{
		Version:   1,
		Timestamp: 0x5d0e2f00 + uint32(height),
		Vin:       []blockrecord.TxIn{{PrevOut: blockrecord.NullOutPoint()}},
		Vout:      []blockrecord.TxOut{{Value: int64(100 + height)}},
	}
}

func sealBlock(block *blockrecord.Block) {
	digests := make([]merkle.Digest, len(block.Txs))
	for i := range block.Txs {
		digests[i] = block.Txs[i].Digest()
	}
	block.Header.MerkleRoot = merkle.Root(digests)
}

// buildChain - a linear chain of length blocks anchored at the
// testing chain genesis block
//
// spends maps block height to the height whose generation output
// that block additionally spends
func buildChain(length int, spends map[int]int) *testChain {
	c := &testChain{
		blocks:      make([]*blockrecord.Block, length),
		records:     make([]*blockrecord.DiskBlockIndex, length),
		txPositions: make([][]blockrecord.DiskTxPos, length),
	}

	c.blocks[0] = &blockrecord.Block{Header: genesis.TestGenesisHeader}

	for height := 1; height < length; height += 1 {
		block := &blockrecord.Block{
			Header: blockrecord.Header{
				Version:       1,
				PreviousBlock: c.blocks[height-1].Digest(),
				Timestamp:     0x5d0e2f00 + uint32(height),
				Bits:          difficulty.DefaultBits,
				Nonce:         uint32(height),
			},
			Txs: []blockrecord.Transaction{generation(height)},
		}
		if from, ok := spends[height]; ok {
			gen := c.blocks[from].Txs[0]
			block.Txs = append(block.Txs, blockrecord.Transaction{
				Version:   1,
				Timestamp: block.Header.Timestamp,
				Vin:       []blockrecord.TxIn{{PrevOut: blockrecord.OutPoint{TxId: gen.Digest(), Index: 0}}},
				Vout:      []blockrecord.TxOut{{Value: gen.Vout[0].Value}},
			})
		}
		sealBlock(block)
		c.blocks[height] = block
	}

	for height := 0; height < length; height += 1 {
		pos := blockrecord.DiskPos{File: 1, Offset: uint32(height) * 4096}
		c.records[height] = &blockrecord.DiskBlockIndex{
			Header: c.blocks[height].Header,
			File:   pos.File,
			Offset: pos.Offset,
			Height: uint64(height),
		}

		// the packed layout fixes each transaction's offset
		offset := uint32(blockrecord.PackedHeaderSize + 4)
		positions := make([]blockrecord.DiskTxPos, len(c.blocks[height].Txs))
		for i := range c.blocks[height].Txs {
			offset += 4
			positions[i] = blockrecord.DiskTxPos{
				File:        pos.File,
				BlockOffset: pos.Offset,
				TxOffset:    offset,
			}
			offset += uint32(len(c.blocks[height].Txs[i].Pack()))
		}
		c.txPositions[height] = positions
	}

	for height := 0; height < length-1; height += 1 {
		c.records[height].Next = c.records[height+1].Header.Digest()
	}
	return c
}

// commit - persist the fixture the way a running node would have
func commit(t *testing.T, c *testChain, store *fakeStore) {
	for height := range c.records {
		record := c.records[height]
		store.blocks[record.BlockPos()] = c.blocks[height]

		if err := txdb.WriteBlockIndex(record); nil != err {
			t.Fatalf("write index error: %s", err)
		}
		for i := range c.blocks[height].Txs {
			tx := &c.blocks[height].Txs[i]
			store.txs[c.txPositions[height][i]] = tx
			if err := txdb.AddTxIndex(tx, c.txPositions[height][i]); nil != err {
				t.Fatalf("add tx index error: %s", err)
			}
		}
	}
	tip := c.records[len(c.records)-1].Header.Digest()
	if err := txdb.WriteBestChain(tip); nil != err {
		t.Fatalf("write best chain error: %s", err)
	}
}

// markSpent - record that one generation output was consumed
func markSpent(t *testing.T, c *testChain, from int, by int, txOfBlock int) {
	genId := c.blocks[from].Txs[0].Digest()
	txindex, err := txdb.ReadTxIndex(genId)
	if nil != err {
		t.Fatalf("read tx index error: %s", err)
	}
	if err := txindex.MarkSpent(0, c.txPositions[by][txOfBlock]); nil != err {
		t.Fatalf("mark spent error: %s", err)
	}
	if err := txdb.UpdateTxIndex(genId, txindex); nil != err {
		t.Fatalf("update tx index error: %s", err)
	}
}

// the tests

func TestLoadEmptyDatabase(t *testing.T) {
	_, _ = setup(t)
	defer teardown()

	if err := txdb.LoadBlockIndex(1, 2500, false); nil != err {
		t.Fatalf("load error: %s", err)
	}
	if nil != txdb.Graph().Best() {
		t.Fatal("empty database produced a best chain")
	}
}

func TestLoadRestoresBestChain(t *testing.T) {
	store, control := setup(t)
	defer teardown()

	commit(t, buildChain(11, nil), store)

	if err := txdb.LoadBlockIndex(1, 2500, false); nil != err {
		t.Fatalf("load error: %s", err)
	}

	graph := txdb.Graph()
	best := graph.Best()
	if nil == best {
		t.Fatal("no best chain after load")
	}
	if 10 != best.Height {
		t.Fatalf("best height: %d  expected: 10", best.Height)
	}
	if 11 != graph.Size() {
		t.Fatalf("graph size: %d  expected: 11", graph.Size())
	}
	if nil == graph.Genesis() {
		t.Fatal("genesis block not recognised")
	}
	if graph.Genesis().Digest() != genesis.TestGenesisDigest {
		t.Fatalf("wrong genesis: %s", graph.Genesis().Digest())
	}

	// eleven proof-of-work blocks, one trust unit each
	if 0 != best.ChainTrust.Cmp(big.NewInt(11)) {
		t.Fatalf("chain trust: %s  expected: 11", best.ChainTrust)
	}

	// a sound chain needs no repair
	if 0 != len(control.repaired) {
		t.Fatalf("unexpected repair at height: %d", control.repaired[0].Height)
	}

	// without a qualifying checkpoint the load records genesis
	syncCheckpoint, err := txdb.ReadSyncCheckpoint()
	if nil != err {
		t.Fatalf("read sync checkpoint error: %s", err)
	}
	if syncCheckpoint != genesis.TestGenesisDigest {
		t.Fatalf("sync checkpoint: %s", syncCheckpoint)
	}
}

func TestLoadTwiceIsStable(t *testing.T) {
	store, _ := setup(t)
	defer teardown()

	commit(t, buildChain(11, nil), store)

	if err := txdb.LoadBlockIndex(1, 2500, false); nil != err {
		t.Fatalf("load error: %s", err)
	}
	firstBest := txdb.Graph().Best().Digest()
	firstSize := txdb.Graph().Size()

	if err := txdb.LoadBlockIndex(1, 2500, false); nil != err {
		t.Fatalf("reload error: %s", err)
	}
	if txdb.Graph().Best().Digest() != firstBest {
		t.Fatal("best chain moved on reload")
	}
	if txdb.Graph().Size() != firstSize {
		t.Fatalf("graph size changed on reload: %d -> %d", firstSize, txdb.Graph().Size())
	}
}

func TestLoadMissingRecordCreatesPlaceholder(t *testing.T) {
	store, _ := setup(t)
	defer teardown()

	c := buildChain(11, nil)
	commit(t, c, store)

	// lose one interior index record
	missing := c.records[5].Header.Digest()
	if err := storage.Pool.BlockIndex.Delete(missing[:]); nil != err {
		t.Fatalf("delete error: %s", err)
	}

	if err := txdb.LoadBlockIndex(1, 2500, false); nil != err {
		t.Fatalf("load error: %s", err)
	}

	graph := txdb.Graph()
	if 10 != graph.BestHeight() {
		t.Fatalf("best height: %d  expected: 10", graph.BestHeight())
	}

	// the successor still links to a placeholder with default fields
	node, ok := graph.Lookup(missing)
	if !ok {
		t.Fatal("no placeholder for the missing block")
	}
	if node.Filled() {
		t.Fatal("placeholder reports filled")
	}
	if 0 != node.Height {
		t.Fatalf("placeholder height: %d  expected: 0", node.Height)
	}

	successor, ok := graph.Lookup(c.records[6].Header.Digest())
	if !ok {
		t.Fatal("successor block missing")
	}
	if successor.Previous != node {
		t.Fatal("successor not linked to the placeholder")
	}
}

func TestLoadRepairsMissingTxIndex(t *testing.T) {
	store, control := setup(t)
	defer teardown()

	c := buildChain(11, nil)
	commit(t, c, store)

	// the transaction of block 7 loses its index record
	if err := txdb.EraseTxIndex(c.blocks[7].Txs[0].Digest()); nil != err {
		t.Fatalf("erase error: %s", err)
	}

	if err := txdb.LoadBlockIndex(2, 2500, false); nil != err {
		t.Fatalf("load error: %s", err)
	}

	// the best chain is cut back to the predecessor of the bad block
	if 1 != len(control.repaired) {
		t.Fatalf("repairs: %d  expected: 1", len(control.repaired))
	}
	if 6 != control.repaired[0].Height {
		t.Fatalf("repair height: %d  expected: 6", control.repaired[0].Height)
	}

	tip, err := txdb.ReadBestChain()
	if nil != err {
		t.Fatalf("read best chain error: %s", err)
	}
	if tip != c.records[6].Header.Digest() {
		t.Fatalf("best chain tip: %s", tip)
	}
	if 6 != txdb.Graph().BestHeight() {
		t.Fatalf("best height: %d  expected: 6", txdb.Graph().BestHeight())
	}
}

func TestLoadRepairSelectsDeepestFailure(t *testing.T) {
	store, control := setup(t)
	defer teardown()

	c := buildChain(11, nil)
	commit(t, c, store)

	// two corrupted blocks, the deeper one decides the cut
	if err := txdb.EraseTxIndex(c.blocks[7].Txs[0].Digest()); nil != err {
		t.Fatalf("erase error: %s", err)
	}
	if err := txdb.EraseTxIndex(c.blocks[4].Txs[0].Digest()); nil != err {
		t.Fatalf("erase error: %s", err)
	}

	if err := txdb.LoadBlockIndex(2, 2500, false); nil != err {
		t.Fatalf("load error: %s", err)
	}

	if 1 != len(control.repaired) {
		t.Fatalf("repairs: %d  expected: 1", len(control.repaired))
	}
	if 3 != control.repaired[0].Height {
		t.Fatalf("repair height: %d  expected: 3", control.repaired[0].Height)
	}
}

func TestLoadAuditsSpends(t *testing.T) {
	store, control := setup(t)
	defer teardown()

	// block 8 spends the generation output of block 7
	c := buildChain(11, map[int]int{8: 7})
	commit(t, c, store)
	markSpent(t, c, 7, 8, 1)

	if err := txdb.LoadBlockIndex(6, 2500, false); nil != err {
		t.Fatalf("load error: %s", err)
	}
	if 0 != len(control.repaired) {
		t.Fatalf("unexpected repair at height: %d", control.repaired[0].Height)
	}
	if 10 != txdb.Graph().BestHeight() {
		t.Fatalf("best height: %d  expected: 10", txdb.Graph().BestHeight())
	}
}

func TestLoadDetectsUnmarkedSpend(t *testing.T) {
	store, control := setup(t)
	defer teardown()

	// the consumed output was never marked spent at its origin
	c := buildChain(11, map[int]int{8: 7})
	commit(t, c, store)

	if err := txdb.LoadBlockIndex(5, 2500, false); nil != err {
		t.Fatalf("load error: %s", err)
	}
	if 1 != len(control.repaired) {
		t.Fatalf("repairs: %d  expected: 1", len(control.repaired))
	}
	if 7 != control.repaired[0].Height {
		t.Fatalf("repair height: %d  expected: 7", control.repaired[0].Height)
	}
}

func TestLoadInterruptedByShutdown(t *testing.T) {
	store, _ := setup(t)
	defer teardown()

	commit(t, buildChain(11, nil), store)

	// a shutdown request during the count pass stops the load
	// cleanly with nothing built
	mode.Set(mode.Stopped)

	if err := txdb.LoadBlockIndex(1, 2500, false); nil != err {
		t.Fatalf("load error: %s", err)
	}
	if nil != txdb.Graph().Best() {
		t.Fatal("interrupted load produced a best chain")
	}
	if 0 != txdb.Graph().Size() {
		t.Fatalf("interrupted load built %d nodes", txdb.Graph().Size())
	}
}
