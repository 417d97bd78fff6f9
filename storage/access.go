// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/kelpchain/kelpd/fault"
)

// DataAccess - for database access with an optional open batch
type DataAccess interface {
	Abort()
	Begin() error
	Commit() error
	Delete([]byte) error
	DumpTx() []byte
	Get([]byte) ([]byte, error)
	Has([]byte) (bool, error)
	InUse() bool
	Iterator(*ldb_util.Range) iterator.Iterator
	Put([]byte, []byte) error
}

type AccessData struct {
	sync.Mutex
	inUse bool
	db    *leveldb.DB
	batch *leveldb.Batch
	cache Cache
}

func newDA(db *leveldb.DB, trx *leveldb.Batch, cache Cache) DataAccess {
	return &AccessData{
		inUse: false,
		db:    db,
		batch: trx,
		cache: cache,
	}
}

// Begin - open the batch
//
// at most one batch per handle; a second Begin without Commit is a
// caller programming error
func (d *AccessData) Begin() error {
	d.Lock()
	defer d.Unlock()

	if d.inUse {
		return fault.ErrBatchAlreadyInUse
	}

	d.inUse = true
	return nil
}

// Put - store a key/value pair
//
// buffered into the open batch if one is active, otherwise applied
// to the database immediately
func (d *AccessData) Put(key []byte, value []byte) error {
	d.Lock()
	defer d.Unlock()

	if d.inUse {
		d.cache.Set(dbPut, string(key), value)
		d.batch.Put(key, value)
		return nil
	}
	return d.db.Put(key, value, nil)
}

// Delete - erase a key
//
// buffered into the open batch if one is active, otherwise applied
// to the database immediately
func (d *AccessData) Delete(key []byte) error {
	d.Lock()
	defer d.Unlock()

	if d.inUse {
		d.cache.Set(dbDelete, string(key), []byte{})
		d.batch.Delete(key)
		return nil
	}
	return d.db.Delete(key, nil)
}

// Commit - atomically flush the batch
//
// a commit without an open batch is a caller programming error, not
// a silent no-op; the batch is discarded whether or not the write
// succeeded, a failure is reported and must not be retried with stale
// state
func (d *AccessData) Commit() error {
	d.Lock()
	defer d.Unlock()

	if !d.inUse {
		return fault.ErrBatchNotInUse
	}

	err := d.db.Write(d.batch, nil)
	d.batch.Reset()
	d.cache.Clear()
	d.inUse = false
	return err
}

// DumpTx - the serialised batch content, for diagnostics
func (d *AccessData) DumpTx() []byte {
	return d.batch.Dump()
}

// Get - read a key, observing any uncommitted batch content first
func (d *AccessData) Get(key []byte) ([]byte, error) {
	value, op, found := d.cache.Lookup(string(key))
	if found {
		if dbDelete == op {
			return nil, leveldb.ErrNotFound
		}
		return value, nil
	}
	return d.db.Get(key, nil)
}

// Has - check a key, observing any uncommitted batch content first
func (d *AccessData) Has(key []byte) (bool, error) {
	_, op, found := d.cache.Lookup(string(key))
	if found {
		return dbDelete != op, nil
	}
	return d.db.Has(key, nil)
}

// Iterator - ordered iteration of the underlying store
//
// note: only committed records are visible to an iterator
func (d *AccessData) Iterator(searchRange *ldb_util.Range) iterator.Iterator {
	return d.db.NewIterator(searchRange, nil)
}

func (d *AccessData) InUse() bool {
	d.Lock()
	defer d.Unlock()
	return d.inUse
}

// Abort - drop the batch without applying it
func (d *AccessData) Abort() {
	d.Lock()
	defer d.Unlock()

	d.batch.Reset()
	d.cache.Clear()
	d.inUse = false
}
