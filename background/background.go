// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package background - run processes in background and control their
// shutdown
package background

// Process - a background process must implement this interface
//
// Run is started as a goroutine and must return promptly after the
// shutdown channel is closed
type Process interface {
	Run(args interface{}, shutdown <-chan struct{})
}

// Processes - the list of processes to start
type Processes []Process

// the per-process control channels
type control struct {
	shutdown chan struct{}
	finished chan struct{}
}

// T - handle for controlling a set of started processes
type T struct {
	c []control
}

// Start - run a set of background processes, all sharing args
func Start(processes Processes, args interface{}) *T {

	register := new(T)
	register.c = make([]control, len(processes))

	for i, p := range processes {
		shutdown := make(chan struct{})
		finished := make(chan struct{})
		register.c[i].shutdown = shutdown
		register.c[i].finished = finished
		go func(p Process, shutdown <-chan struct{}, finished chan<- struct{}) {
			p.Run(args, shutdown)
			close(finished)
		}(p, shutdown, finished)
	}
	return register
}

// Stop - stop all background processes and wait for them to return
func (t *T) Stop() {

	if nil == t {
		return
	}

	for _, item := range t.c {
		close(item.shutdown)
	}

	for _, item := range t.c {
		<-item.finished
	}
}
