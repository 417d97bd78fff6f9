// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised         = ExistsError("already initialised")
	ErrBatchAlreadyInUse          = ProcessError("batch already in use")
	ErrBatchNotInUse              = ProcessError("batch not in use")
	ErrBestChainNotFound          = NotFoundError("best chain record not found")
	ErrBestChainUnknownBlock      = InvalidError("best chain hash is not in the block index")
	ErrBlockNotFound              = NotFoundError("block not found")
	ErrBlockReadFailed            = ProcessError("block read from disk failed")
	ErrBlockVersionMustBeLeast1   = InvalidError("block version must be at least 1")
	ErrCannotDecodeRecord         = InvalidError("cannot decode record")
	ErrDatabaseDowngrade          = InvalidError("database version is newer than this program supports")
	ErrGenesisBlockNotFound       = NotFoundError("genesis block not found")
	ErrInvalidBlockHeaderSize     = InvalidError("invalid block header size")
	ErrInvalidChain               = InvalidError("invalid chain")
	ErrInvalidCount               = InvalidError("invalid count")
	ErrInvalidCursor              = InvalidError("invalid cursor")
	ErrInvalidLoggerChannel       = InvalidError("invalid logger channel")
	ErrKeyNotFound                = NotFoundError("key not found")
	ErrNotInitialised             = NotFoundError("not initialised")
	ErrNotLink                    = InvalidError("not a valid link")
	ErrOutOfRangeSpentIndex       = InvalidError("spent index is out of range")
	ErrSyncCheckpointWriteFailed  = ProcessError("sync checkpoint write failed")
	ErrSyncCheckpointNotFound     = NotFoundError("sync checkpoint not found")
	ErrTransactionNotFound        = NotFoundError("transaction not found")
	ErrWrongDatabaseVersionLength = InvalidError("incorrect database version record length")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
