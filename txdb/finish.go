// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txdb

import (
	"github.com/kelpchain/kelpd/background"
	"github.com/kelpchain/kelpd/mode"
)

// the background process draining deferred ancient index records
type finisher struct{}

// startFinisher - resolve deferred ancient history in the background
//
// only records at or below the checkpoint boundary are in the
// backlog, heights the startup audit never visits, so the finisher
// and the synchronous path never touch the same nodes; chain trust
// is recomputed over the full graph once the backlog is drained
//
// caller must hold the globalData lock
func startFinisher() {
	globalData.log.Infof("deferring %d ancient index records", len(globalData.backlog))

	globalData.background = background.Start(background.Processes{
		&finisher{},
	}, &globalData)
}

func (f *finisher) Run(args interface{}, shutdown <-chan struct{}) {
	data := args.(*globalDataType)

	data.Lock()
	backlog := data.backlog
	data.backlog = nil
	data.Unlock()

	testnet := mode.IsTesting()

	for _, record := range backlog {
		select {
		case <-shutdown:
			return
		default:
		}
		if mode.Is(mode.Stopped) {
			return
		}

		data.Lock()
		resolve(data.graph, record, testnet)
		data.Unlock()
	}

	// the synchronous pass accumulated trust while nodes at or
	// below the boundary were still unfilled placeholders, so every
	// node above it carries an understated sum; redo the whole
	// accumulation now that the ancient parents are in place
	data.Lock()
	data.graph.AccumulateTrust()
	data.Unlock()

	data.log.Info("ancient index records resolved")
}
