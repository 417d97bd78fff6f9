// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/kelpchain/kelpd/blockfile"
	"github.com/kelpchain/kelpd/blockrecord"
	"github.com/kelpchain/kelpd/difficulty"
)

const testingDirName = "testing-blockfile"

func removeFiles() {
	_ = os.RemoveAll(testingDirName)
}

func setup(t *testing.T) *blockfile.Store {
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

	store, err := blockfile.New(testingDirName)
	if nil != err {
		t.Fatalf("open error: %s", err)
	}
	return store
}

func teardown() {
	logger.Finalise()
	removeFiles()
}

func makeBlock(nonce uint32, txCount int) *blockrecord.Block {
	block := &blockrecord.Block{
		Header: blockrecord.Header{
			Version:   1,
			Timestamp: 0x5d0e2f00,
			Bits:      difficulty.DefaultBits,
			Nonce:     nonce,
		},
	}
	for i := 0; i < txCount; i += 1 {
		block.Txs = append(block.Txs, blockrecord.Transaction{
			Version:   1,
			Timestamp: 0x5d0e2f00 + uint32(i),
			Vin:       []blockrecord.TxIn{{PrevOut: blockrecord.NullOutPoint()}},
			Vout:      []blockrecord.TxOut{{Value: int64(100 + i)}},
		})
	}
	return block
}

func TestWriteReadBlock(t *testing.T) {
	store := setup(t)
	defer teardown()

	block := makeBlock(1, 2)
	pos, txPositions, err := store.WriteBlock(block)
	if nil != err {
		t.Fatalf("write error: %s", err)
	}
	if pos.IsNull() {
		t.Fatal("null position returned")
	}
	if len(txPositions) != len(block.Txs) {
		t.Fatalf("tx positions: %d  expected: %d", len(txPositions), len(block.Txs))
	}

	read, err := store.ReadBlock(pos)
	if nil != err {
		t.Fatalf("read error: %s", err)
	}
	if read.Digest() != block.Digest() {
		t.Fatalf("digest mismatch: actual: %s  expected: %s", read.Digest(), block.Digest())
	}
	if len(read.Txs) != len(block.Txs) {
		t.Fatalf("tx count: %d  expected: %d", len(read.Txs), len(block.Txs))
	}
}

func TestReadTransaction(t *testing.T) {
	store := setup(t)
	defer teardown()

	block := makeBlock(2, 3)
	_, txPositions, err := store.WriteBlock(block)
	if nil != err {
		t.Fatalf("write error: %s", err)
	}

	for i, pos := range txPositions {
		tx, err := store.ReadTransaction(pos)
		if nil != err {
			t.Fatalf("tx %d read error: %s", i, err)
		}
		if tx.Digest() != block.Txs[i].Digest() {
			t.Fatalf("tx %d digest mismatch", i)
		}
	}
}

func TestPositionsAdvance(t *testing.T) {
	store := setup(t)
	defer teardown()

	first, _, err := store.WriteBlock(makeBlock(3, 1))
	if nil != err {
		t.Fatalf("write error: %s", err)
	}
	second, _, err := store.WriteBlock(makeBlock(4, 1))
	if nil != err {
		t.Fatalf("write error: %s", err)
	}

	if first.File != second.File {
		t.Fatalf("file changed: %d -> %d", first.File, second.File)
	}
	if second.Offset <= first.Offset {
		t.Fatalf("offset did not advance: %d -> %d", first.Offset, second.Offset)
	}

	// both blocks stay readable after the second append
	one, err := store.ReadBlock(first)
	if nil != err {
		t.Fatalf("read error: %s", err)
	}
	if 3 != one.Header.Nonce {
		t.Fatalf("wrong block: nonce: %d", one.Header.Nonce)
	}
}

func TestReopenContinuesHighestFile(t *testing.T) {
	store := setup(t)
	defer teardown()

	pos, _, err := store.WriteBlock(makeBlock(5, 1))
	if nil != err {
		t.Fatalf("write error: %s", err)
	}

	// a later numbered file forces appends to continue there
	empty := filepath.Join(testingDirName, "blk0002.dat")
	f, err := os.Create(empty)
	if nil != err {
		t.Fatalf("create error: %s", err)
	}
	f.Close()

	reopened, err := blockfile.New(testingDirName)
	if nil != err {
		t.Fatalf("reopen error: %s", err)
	}

	next, _, err := reopened.WriteBlock(makeBlock(6, 1))
	if nil != err {
		t.Fatalf("write error: %s", err)
	}
	if 2 != next.File {
		t.Fatalf("append file: %d  expected: 2", next.File)
	}

	// the original record is still readable through the new store
	if _, err := reopened.ReadBlock(pos); nil != err {
		t.Fatalf("read error: %s", err)
	}
}

func TestReadNullPosition(t *testing.T) {
	store := setup(t)
	defer teardown()

	if _, err := store.ReadBlock(blockrecord.NullPos()); nil == err {
		t.Fatal("null position accepted")
	}
}
