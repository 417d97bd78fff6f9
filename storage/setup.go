// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_filter "github.com/syndtr/goleveldb/leveldb/filter"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/kelpchain/kelpd/fault"
)

// exported storage pools
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type pools struct {
	BlockIndex   *PoolHandle `prefix:"blockindex"`
	Transactions *PoolHandle `prefix:"tx"`
	Metadata     *PoolHandle `prefix:""`
}

// Pool - the set of exported pools
var Pool pools

// MetadataKey... - the scalar record keys of the Metadata pool
var (
	MetadataBestChain           = []byte("hashBestChain")
	MetadataBestInvalidTrust    = []byte("bnBestInvalidTrust")
	MetadataSyncCheckpoint      = []byte("hashSyncCheckpoint")
	MetadataCheckpointPublicKey = []byte("strCheckpointPubKey")
)

// the schema version record
var versionKey = []byte("version")

// CurrentDBVersion - version of the database schema this code expects
const CurrentDBVersion = 0x101

const (
	defaultCacheSizeMB = 25
	bloomFilterBits    = 10
)

// holds the database handle
var poolData struct {
	sync.RWMutex
	db     *leveldb.DB
	batch  *leveldb.Batch
	cache  Cache
	access DataAccess
	trx    Transaction

	directory string // for auxiliary block file erasure
	dbPath    string

	// set once during initialise
	initialised bool
}

// Initialise - open up the database connection
//
// this must be called before any pool is accessed; sharing the
// handle is the normal case so a second call is a no-op reusing the
// existing handle
//
// the very first opener performs the schema migration: a database
// recorded at an older version is completely erased, together with
// the auxiliary flat block files, and recreated at the current
// version
func Initialise(directory string, name string, cacheSizeMB int, create bool) error {
	poolData.Lock()
	defer poolData.Unlock()

	// reopen is a no-op on the shared handle
	if poolData.initialised {
		return nil
	}

	if cacheSizeMB <= 0 {
		cacheSizeMB = defaultCacheSizeMB
	}

	dbPath := filepath.Join(directory, name)

	db, version, err := openDB(dbPath, cacheSizeMB, create)
	if nil != err {
		return err
	}

	// ensure no database downgrade
	if version > CurrentDBVersion {
		logger.Criticalf("database version: %d > current version: %d", version, CurrentDBVersion)
		db.Close()
		return fault.ErrDatabaseDowngrade
	}

	// erase and recreate an old database, including the auxiliary
	// numbered block files alongside it
	if 0 < version && version < CurrentDBVersion {

		logger.Criticalf("database version: %d < current version: %d  removing old database", version, CurrentDBVersion)

		db.Close()
		err = os.RemoveAll(dbPath)
		if nil != err {
			return err
		}
		removeBlockFiles(directory)

		db, _, err = openDB(dbPath, cacheSizeMB, true)
		if nil != err {
			return err
		}
		version = 0
	}

	// tag a fresh database as current version
	if 0 == version {
		err = putVersion(db, CurrentDBVersion)
		if nil != err {
			db.Close()
			return err
		}
	}

	poolData.db = db
	poolData.directory = directory
	poolData.dbPath = dbPath
	poolData.batch = new(leveldb.Batch)
	poolData.cache = newCache()
	poolData.access = newDA(db, poolData.batch, poolData.cache)
	poolData.trx = newTransaction([]DataAccess{poolData.access})

	// this will be a struct type
	poolType := reflect.TypeOf(Pool)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&Pool).Elem()

	// scan each field
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)
		prefixTag := fieldInfo.Tag.Get("prefix")

		prefix := []byte(prefixTag)
		limit := []byte(nil)
		if len(prefix) > 0 {
			limit = make([]byte, len(prefix))
			copy(limit, prefix)
			limit[len(limit)-1] += 1
		}

		p := &PoolHandle{
			prefix:     prefix,
			limit:      limit,
			dataAccess: poolData.access,
		}
		poolValue.Field(i).Set(reflect.ValueOf(p))
	}

	poolData.initialised = true
	return nil
}

// Finalise - close the database connection
func Finalise() {
	poolData.Lock()
	defer poolData.Unlock()

	if !poolData.initialised {
		return
	}

	poolData.db.Close()
	poolData.db = nil
	poolData.access = nil
	poolData.trx = nil

	// reset pools to prevent use after close
	poolValue := reflect.ValueOf(&Pool).Elem()
	for i := 0; i < poolValue.NumField(); i += 1 {
		poolValue.Field(i).Set(reflect.Zero(poolValue.Field(i).Type()))
	}

	poolData.initialised = false
}

// IsInitialised - check the database is open
func IsInitialised() bool {
	poolData.RLock()
	defer poolData.RUnlock()
	return poolData.initialised
}

// NewDBTransaction - open the store wide batch
func NewDBTransaction() (Transaction, error) {
	poolData.RLock()
	defer poolData.RUnlock()
	if !poolData.initialised {
		return nil, fault.ErrNotInitialised
	}
	err := poolData.trx.Begin()
	if nil != err {
		return nil, err
	}
	return poolData.trx, nil
}

// IsTransactionInUse - check if the store wide batch is open
func IsTransactionInUse() bool {
	poolData.RLock()
	defer poolData.RUnlock()
	if !poolData.initialised {
		return false
	}
	return poolData.trx.InUse()
}

// return:
//   database handle
//   version number
func openDB(name string, cacheSizeMB int, create bool) (*leveldb.DB, int, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:       false,
		ErrorIfMissing:     !create,
		BlockCacheCapacity: cacheSizeMB * ldb_opt.MiB,
		Filter:             ldb_filter.NewBloomFilter(bloomFilterBits),
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, 0, err
	}

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return db, 0, nil
	} else if nil != err {
		db.Close()
		return nil, 0, err
	}

	if 4 != len(versionValue) {
		db.Close()
		return nil, 0, fault.ErrWrongDatabaseVersionLength
	}

	version := int(binary.BigEndian.Uint32(versionValue))
	return db, version, nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}

// remove the auxiliary numbered block files next to the database
//
// files are named blk0001.dat, blk0002.dat, … with no gaps, so stop
// at the first missing number
func removeBlockFiles(directory string) {
	for i := 1; ; i += 1 {
		name := filepath.Join(directory, fmt.Sprintf("blk%04d.dat", i))
		if _, err := os.Stat(name); nil != err {
			break
		}
		os.Remove(name)
	}
}
