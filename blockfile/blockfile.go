// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockfile - block bodies in numbered flat files
//
// each file holds a sequence of records, a 4 byte little endian
// length followed by the packed block; positions handed out by
// WriteBlock are the only way back in
package blockfile

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/kelpchain/kelpd/blockrecord"
	"github.com/kelpchain/kelpd/fault"
)

// rollover to the next numbered file past this size
const maximumFileSize = 128 * 1024 * 1024

// Store - access to the numbered block files in one directory
type Store struct {
	sync.Mutex

	log       *logger.L
	directory string
	current   uint32 // file being appended to
}

// New - open a block file store over a directory
//
// appends continue in the highest numbered file already present
func New(directory string) (*Store, error) {
	s := &Store{
		log:       logger.New("blockfile"),
		directory: directory,
		current:   1,
	}

	for file := uint32(1); ; file += 1 {
		if _, err := os.Stat(s.fileName(file)); nil != err {
			if os.IsNotExist(err) {
				break
			}
			return nil, err
		}
		s.current = file
	}
	return s, nil
}

func (s *Store) fileName(file uint32) string {
	return filepath.Join(s.directory, fmt.Sprintf("blk%04d.dat", file))
}

// ReadBlock - fetch and unpack the block at a position
func (s *Store) ReadBlock(pos blockrecord.DiskPos) (*blockrecord.Block, error) {
	packed, err := s.readPacked(pos)
	if nil != err {
		return nil, err
	}
	return packed.Unpack()
}

// ReadTransaction - fetch and unpack one transaction of a block
//
// the transaction offset is relative to the start of the packed block
func (s *Store) ReadTransaction(pos blockrecord.DiskTxPos) (*blockrecord.Transaction, error) {
	packed, err := s.readPacked(pos.BlockPos())
	if nil != err {
		return nil, err
	}
	if pos.TxOffset >= uint32(len(packed)) {
		return nil, fault.ErrTransactionNotFound
	}
	tx, _, err := blockrecord.PackedTransaction(packed[pos.TxOffset:]).Unpack()
	return tx, err
}

// WriteBlock - append a block, returning its position and the
// position of every transaction in it
func (s *Store) WriteBlock(block *blockrecord.Block) (blockrecord.DiskPos, []blockrecord.DiskTxPos, error) {
	s.Lock()
	defer s.Unlock()

	packed := block.Pack()

	f, err := os.OpenFile(s.fileName(s.current), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if nil != err {
		return blockrecord.NullPos(), nil, err
	}

	info, err := f.Stat()
	if nil != err {
		f.Close()
		return blockrecord.NullPos(), nil, err
	}
	if info.Size() > 0 && info.Size()+int64(len(packed))+4 > maximumFileSize {
		f.Close()
		s.current += 1
		f, err = os.OpenFile(s.fileName(s.current), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if nil != err {
			return blockrecord.NullPos(), nil, err
		}
		info, err = f.Stat()
		if nil != err {
			f.Close()
			return blockrecord.NullPos(), nil, err
		}
	}
	defer f.Close()

	pos := blockrecord.DiskPos{
		File:   s.current,
		Offset: uint32(info.Size()),
	}

	length := make([]byte, 4)
	binary.LittleEndian.PutUint32(length, uint32(len(packed)))
	if _, err := f.Write(length); nil != err {
		return blockrecord.NullPos(), nil, err
	}
	if _, err := f.Write(packed); nil != err {
		return blockrecord.NullPos(), nil, err
	}

	txPositions := transactionOffsets(block, pos)

	s.log.Debugf("wrote block at: %s  size: %d", pos, len(packed))
	return pos, txPositions, nil
}

// the packed block layout fixes each transaction's offset
func transactionOffsets(block *blockrecord.Block, pos blockrecord.DiskPos) []blockrecord.DiskTxPos {
	positions := make([]blockrecord.DiskTxPos, len(block.Txs))

	offset := uint32(blockrecord.PackedHeaderSize + 4)
	for i := range block.Txs {
		offset += 4 // the length prefix
		positions[i] = blockrecord.DiskTxPos{
			File:        pos.File,
			BlockOffset: pos.Offset,
			TxOffset:    offset,
		}
		offset += uint32(len(block.Txs[i].Pack()))
	}
	return positions
}

// read one length prefixed record
func (s *Store) readPacked(pos blockrecord.DiskPos) (blockrecord.PackedBlock, error) {
	if pos.IsNull() {
		return nil, fault.ErrBlockNotFound
	}

	f, err := os.Open(s.fileName(pos.File))
	if nil != err {
		return nil, err
	}
	defer f.Close()

	length := make([]byte, 4)
	if _, err := f.ReadAt(length, int64(pos.Offset)); nil != err {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(length)

	packed := make([]byte, n)
	if _, err := f.ReadAt(packed, int64(pos.Offset)+4); nil != err {
		return nil, err
	}
	return packed, nil
}
