// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/kelpchain/kelpd/fault"
)

// PoolHandle - handle for a storage pool
type PoolHandle struct {
	prefix     []byte
	limit      []byte
	dataAccess DataAccess
}

// Element - a binary data item
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, len(p.prefix), len(p.prefix)+len(key))
	copy(prefixedKey, p.prefix)
	return append(prefixedKey, key...)
}

// Put - store a key/value bytes pair
//
// buffered if a batch is open, applied immediately otherwise
func (p *PoolHandle) Put(key []byte, value []byte) error {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.dataAccess {
		return fault.ErrNotInitialised
	}
	return p.dataAccess.Put(p.prefixKey(key), value)
}

// Delete - remove a key
func (p *PoolHandle) Delete(key []byte) error {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.dataAccess {
		return fault.ErrNotInitialised
	}
	return p.dataAccess.Delete(p.prefixKey(key))
}

// Get - read a value for a given key
//
// returns nil if the key does not exist
func (p *PoolHandle) Get(key []byte) ([]byte, error) {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.dataAccess {
		return nil, fault.ErrNotInitialised
	}
	value, err := p.dataAccess.Get(p.prefixKey(key))
	if leveldb.ErrNotFound == err {
		return nil, nil
	}
	return value, err
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) (bool, error) {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.dataAccess {
		return false, fault.ErrNotInitialised
	}
	return p.dataAccess.Has(p.prefixKey(key))
}
