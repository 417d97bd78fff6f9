// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

// Transaction - all-or-nothing batch over the whole store
//
// reads issued between Begin and Commit observe the buffered
// writes and erases of the batch before the persisted records
type Transaction interface {
	Begin() error
	Commit() error
	Abort()
	InUse() bool
	Dump() []byte
}

type TransactionImpl struct {
	dataAccess []DataAccess
}

func newTransaction(access []DataAccess) Transaction {
	return &TransactionImpl{
		dataAccess: access,
	}
}

// Begin - open the batch
//
// opening a second batch before committing the first is an error
func (t *TransactionImpl) Begin() error {
	for i, access := range t.dataAccess {
		if err := access.Begin(); nil != err {
			// roll back any already opened access
			for _, opened := range t.dataAccess[:i] {
				opened.Abort()
			}
			return err
		}
	}
	return nil
}

// Commit - atomically apply the batch
//
// on failure the batch content is discarded, not reapplied
func (t *TransactionImpl) Commit() error {
	for _, access := range t.dataAccess {
		if err := access.Commit(); nil != err {
			return err
		}
	}
	return nil
}

// Abort - drop the batch without applying it
func (t *TransactionImpl) Abort() {
	for _, access := range t.dataAccess {
		access.Abort()
	}
}

// InUse - check if a batch is currently open
func (t *TransactionImpl) InUse() bool {
	for _, access := range t.dataAccess {
		if access.InUse() {
			return true
		}
	}
	return false
}

// Dump - serialised batch content, for diagnostics
func (t *TransactionImpl) Dump() []byte {
	buffer := []byte{}
	for _, access := range t.dataAccess {
		buffer = append(buffer, access.DumpTx()...)
	}
	return buffer
}
