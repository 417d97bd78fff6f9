// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txdb - the persistent chain index
//
// maps transaction and block digests to their flat file positions,
// rebuilds the in-memory chain graph at startup, accumulates chain
// trust and audits the best chain at a configurable check level,
// rewinding the best chain pointer when corruption is found
//
// block bodies themselves live in flat files outside this package;
// reading them and judging their consensus validity are delegated to
// the BlockReader and ChainControl collaborators supplied at
// initialisation
package txdb
