// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetAndLookup(t *testing.T) {
	c := newCache()

	c.Set(dbPut, "key", []byte("value"))

	value, op, found := c.Lookup("key")
	assert.True(t, found, "stored key not found")
	assert.Equal(t, dbPut, op, "wrong operation")
	assert.Equal(t, []byte("value"), value, "wrong value")
}

func TestCacheRecordsDelete(t *testing.T) {
	c := newCache()

	c.Set(dbPut, "key", []byte("value"))
	c.Set(dbDelete, "key", []byte{})

	// a delete is remembered, not forgotten
	_, op, found := c.Lookup("key")
	assert.True(t, found, "deleted key dropped from cache")
	assert.Equal(t, dbDelete, op, "delete operation not recorded")
}

func TestCacheMissing(t *testing.T) {
	c := newCache()

	_, _, found := c.Lookup("absent")
	assert.False(t, found, "missing key reported found")
}

func TestCacheClear(t *testing.T) {
	c := newCache()

	c.Set(dbPut, "one", []byte("1"))
	c.Set(dbDelete, "two", []byte{})
	c.Clear()

	_, _, found := c.Lookup("one")
	assert.False(t, found, "clear left data behind")
	_, _, found = c.Lookup("two")
	assert.False(t, found, "clear left delete behind")
}
