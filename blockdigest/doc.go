// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockdigest - implementation of block header hashing
//
// using the scrypt(1024,1,1) proof algorithm
package blockdigest
