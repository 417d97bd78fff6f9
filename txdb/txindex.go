// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txdb

import (
	"github.com/kelpchain/kelpd/blockrecord"
	"github.com/kelpchain/kelpd/fault"
	"github.com/kelpchain/kelpd/merkle"
	"github.com/kelpchain/kelpd/storage"
)

// ReadTxIndex - fetch the index record of a confirmed transaction
//
// a missing record returns fault.ErrTransactionNotFound so callers
// can tell absence from a store failure
func ReadTxIndex(txId merkle.Digest) (*blockrecord.TxIndex, error) {
	packed, err := storage.Pool.Transactions.Get(txId[:])
	if nil != err {
		return nil, err
	}
	if nil == packed {
		return nil, fault.ErrTransactionNotFound
	}
	return blockrecord.PackedTxIndex(packed).Unpack()
}

// UpdateTxIndex - store the index record of a transaction
func UpdateTxIndex(txId merkle.Digest, txindex *blockrecord.TxIndex) error {
	return storage.Pool.Transactions.Put(txId[:], txindex.Pack())
}

// AddTxIndex - index a newly confirmed transaction at its disk position
//
// all outputs start unspent
func AddTxIndex(tx *blockrecord.Transaction, pos blockrecord.DiskTxPos) error {
	txId := tx.Digest()
	txindex := blockrecord.NewTxIndex(pos, len(tx.Vout))
	return storage.Pool.Transactions.Put(txId[:], txindex.Pack())
}

// EraseTxIndex - remove a transaction from the index
//
// used when its block is disconnected from the best chain
func EraseTxIndex(txId merkle.Digest) error {
	return storage.Pool.Transactions.Delete(txId[:])
}

// ContainsTx - check a transaction is indexed
func ContainsTx(txId merkle.Digest) (bool, error) {
	return storage.Pool.Transactions.Has(txId[:])
}

// ReadDiskTx - fetch a transaction body together with its index record
//
// the index gives the disk position, the body comes from the flat
// files via the block reader and its digest must match the key
func ReadDiskTx(txId merkle.Digest) (*blockrecord.Transaction, *blockrecord.TxIndex, error) {
	globalData.RLock()
	reader := globalData.reader
	globalData.RUnlock()

	if nil == reader {
		return nil, nil, fault.ErrNotInitialised
	}

	txindex, err := ReadTxIndex(txId)
	if nil != err {
		return nil, nil, err
	}

	tx, err := reader.ReadTransaction(txindex.Pos)
	if nil != err {
		return nil, nil, err
	}
	if txId != tx.Digest() {
		return nil, nil, fault.ErrTransactionNotFound
	}
	return tx, txindex, nil
}

// ReadDiskTxOutPoint - fetch the transaction owning an out point
func ReadDiskTxOutPoint(out blockrecord.OutPoint) (*blockrecord.Transaction, *blockrecord.TxIndex, error) {
	return ReadDiskTx(out.TxId)
}
