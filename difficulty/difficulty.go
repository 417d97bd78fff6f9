// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package difficulty - compact difficulty encoding and chain trust
//
// the 32 bit "bits" value packs a 256 bit target as:
//   exponent = bits >> 24           (byte length of the target)
//   mantissa = bits & 0x007fffff    (top three bytes of the target)
// the 0x00800000 bit marks a negative number and never occurs in a
// valid header
package difficulty

import (
	"math/big"
)

// DefaultBits - the easiest allowed target in compact form
const DefaultBits = 0x1e0fffff

var (
	one = big.NewInt(1)

	// 2^256 as the numerator of the trust calculation
	trustNumerator = new(big.Int).Lsh(big.NewInt(1), 256)
)

// TargetFromBits - expand a compact representation to the full target
//
// returns nil for a negative or zero compact value
func TargetFromBits(bits uint32) *big.Int {
	mantissa := int64(bits & 0x007fffff)
	if 0 == mantissa || 0 != bits&0x00800000 {
		return nil
	}
	exponent := uint(bits >> 24)

	target := big.NewInt(mantissa)
	if exponent <= 3 {
		target.Rsh(target, 8*(3-exponent))
	} else {
		target.Lsh(target, 8*(exponent-3))
	}
	return target
}

// BitsFromTarget - compress a target back to compact form
func BitsFromTarget(target *big.Int) uint32 {
	if nil == target || target.Sign() <= 0 {
		return 0
	}

	exponent := uint(len(target.Bytes()))
	var mantissa uint32
	if exponent <= 3 {
		mantissa = uint32(target.Int64() << (8 * (3 - exponent)))
	} else {
		tn := new(big.Int).Rsh(target, 8*(exponent-3))
		mantissa = uint32(tn.Int64())
	}

	// normalise: the mantissa sign bit must stay clear
	if 0 != mantissa&0x00800000 {
		mantissa >>= 8
		exponent += 1
	}
	return uint32(exponent)<<24 | mantissa
}

// BlockTrust - the intrinsic trust contribution of one block
//
// proof-of-stake blocks score 2^256/(target+1), proof-of-work blocks
// count as a single unit, a malformed target contributes nothing
func BlockTrust(bits uint32, proofOfStake bool) *big.Int {
	target := TargetFromBits(bits)
	if nil == target || target.Sign() <= 0 {
		return big.NewInt(0)
	}
	if !proofOfStake {
		return big.NewInt(1)
	}
	trust := new(big.Int).Add(target, one)
	return trust.Div(trustNumerator, trust)
}
