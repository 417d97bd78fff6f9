// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/kelpchain/kelpd/chain"
	"github.com/kelpchain/kelpd/checkpoint"
	"github.com/kelpchain/kelpd/configuration"
	"github.com/kelpchain/kelpd/storage"
	"github.com/kelpchain/kelpd/txdb"
)

// setup command handler
//
// commands that cannot access any internal database or states or the
// configuration file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "version":
		fmt.Printf("%s\n", version)

	case "help", "h", "?":
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)
		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                             (h)      - display this message\n\n")
		fmt.Printf("  version                          (v)      - display version\n\n")
		fmt.Printf("  chain                                     - display the chain selected by the configuration\n")
		fmt.Printf("  database                                  - display the database settings\n")
		fmt.Printf("  checkpoints                               - display the checkpoint table for the selected chain\n\n")
		fmt.Printf("  best-chain                                - display the persisted best chain tip\n")
		fmt.Printf("  db-version                                - display the database schema version\n\n")

	default:
		// not handled here
		return false
	}

	// indicate processed
	return true
}

// config command handler
//
// commands that perform enquiries on the configuration
func processConfigCommand(arguments []string, options *configuration.Configuration) bool {

	command := arguments[0]

	switch command {
	case "chain":
		fmt.Printf("chain: %s\n", options.Chain)

	case "database":
		fmt.Printf("directory: %s\n", options.Database.Directory)
		fmt.Printf("name: %s\n", options.Database.Name)
		fmt.Printf("cache size: %d MB\n", options.Database.CacheSizeMB)

	case "checkpoints":
		table := checkpoint.Checkpoints(chain.Kelp != options.Chain)
		for _, height := range table.Heights() {
			digest, _ := table.Hash(height)
			fmt.Printf("%9d: %s\n", height, digest)
		}

	default:
		// not handled here
		return false
	}

	// indicate processed
	return true
}

// data command handler
//
// commands that are allowed to access the internal database
func processDataCommand(log *logger.L, arguments []string, options *configuration.Configuration) bool {

	command := arguments[0]

	switch command {
	case "best-chain":
		digest, err := txdb.ReadBestChain()
		if nil != err {
			exitwithstatus.Message("best chain read error: %s", err)
		}
		fmt.Printf("best chain: %s\n", digest)

	case "db-version":
		fmt.Printf("database schema version: 0x%x\n", storage.CurrentDBVersion)

	default:
		// not handled here
		return false
	}

	// indicate processed
	return true
}
