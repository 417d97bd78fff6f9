// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle

// Root - compute the merkle root over a list of transaction digests
//
// pairs are hashed together level by level; an odd digest at the end
// of a level is paired with itself; an empty list gives the empty
// digest and a single digest is its own root
func Root(digests []Digest) Digest {
	if 0 == len(digests) {
		return Empty
	}

	level := make([]Digest, len(digests))
	copy(level, digests)

	for len(level) > 1 {
		next := make([]Digest, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}
			buffer := make([]byte, 0, 2*DigestLength)
			buffer = append(buffer, left[:]...)
			buffer = append(buffer, right[:]...)
			next = append(next, NewDigest(buffer))
		}
		level = next
	}
	return level[0]
}
