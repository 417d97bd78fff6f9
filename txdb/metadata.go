// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txdb

import (
	"math/big"

	"github.com/kelpchain/kelpd/blockdigest"
	"github.com/kelpchain/kelpd/blockrecord"
	"github.com/kelpchain/kelpd/fault"
	"github.com/kelpchain/kelpd/storage"
)

// WriteBlockIndex - persist one block index record
//
// the record key is the digest of the embedded header
func WriteBlockIndex(record *blockrecord.DiskBlockIndex) error {
	digest := record.Header.Digest()
	return storage.Pool.BlockIndex.Put(digest[:], record.Pack())
}

// ReadBlockIndex - fetch one block index record by digest
func ReadBlockIndex(digest blockdigest.Digest) (*blockrecord.DiskBlockIndex, error) {
	packed, err := storage.Pool.BlockIndex.Get(digest[:])
	if nil != err {
		return nil, err
	}
	if nil == packed {
		return nil, fault.ErrBlockNotFound
	}
	return blockrecord.PackedDiskBlockIndex(packed).Unpack()
}

// ReadBestChain - the digest of the best chain tip
func ReadBestChain() (blockdigest.Digest, error) {
	value, err := storage.Pool.Metadata.Get(storage.MetadataBestChain)
	if nil != err {
		return blockdigest.Empty, err
	}
	if nil == value {
		return blockdigest.Empty, fault.ErrBestChainNotFound
	}
	var digest blockdigest.Digest
	if err := blockdigest.DigestFromBytes(&digest, value); nil != err {
		return blockdigest.Empty, err
	}
	return digest, nil
}

// WriteBestChain - record a new best chain tip
func WriteBestChain(digest blockdigest.Digest) error {
	return storage.Pool.Metadata.Put(storage.MetadataBestChain, digest[:])
}

// ReadBestInvalidTrust - highest chain trust seen on an invalid chain
//
// absence is normal and reads as zero
func ReadBestInvalidTrust() (*big.Int, error) {
	value, err := storage.Pool.Metadata.Get(storage.MetadataBestInvalidTrust)
	if nil != err {
		return nil, err
	}
	trust := new(big.Int)
	if nil != value {
		trust.SetBytes(value)
	}
	return trust, nil
}

// WriteBestInvalidTrust - record the highest invalid chain trust
func WriteBestInvalidTrust(trust *big.Int) error {
	return storage.Pool.Metadata.Put(storage.MetadataBestInvalidTrust, trust.Bytes())
}

// ReadSyncCheckpoint - the current synchronised checkpoint digest
func ReadSyncCheckpoint() (blockdigest.Digest, error) {
	value, err := storage.Pool.Metadata.Get(storage.MetadataSyncCheckpoint)
	if nil != err {
		return blockdigest.Empty, err
	}
	if nil == value {
		return blockdigest.Empty, fault.ErrSyncCheckpointNotFound
	}
	var digest blockdigest.Digest
	if err := blockdigest.DigestFromBytes(&digest, value); nil != err {
		return blockdigest.Empty, err
	}
	return digest, nil
}

// WriteSyncCheckpoint - record the synchronised checkpoint digest
func WriteSyncCheckpoint(digest blockdigest.Digest) error {
	return storage.Pool.Metadata.Put(storage.MetadataSyncCheckpoint, digest[:])
}

// ReadCheckpointPublicKey - the key that signs broadcast checkpoints
func ReadCheckpointPublicKey() (string, error) {
	value, err := storage.Pool.Metadata.Get(storage.MetadataCheckpointPublicKey)
	if nil != err {
		return "", err
	}
	if nil == value {
		return "", fault.ErrKeyNotFound
	}
	return string(value), nil
}

// WriteCheckpointPublicKey - record the checkpoint signing key
func WriteCheckpointPublicKey(publicKey string) error {
	return storage.Pool.Metadata.Put(storage.MetadataCheckpointPublicKey, []byte(publicKey))
}

// EraseCheckpointPublicKey - drop the checkpoint signing key
//
// done when the configured key changes so the new one is adopted on
// the next checkpoint reset
func EraseCheckpointPublicKey() error {
	return storage.Pool.Metadata.Delete(storage.MetadataCheckpointPublicKey)
}
