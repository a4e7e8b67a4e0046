// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package background - run processes in the background with
// coordinated shutdown
package background

// T - handle to a set of started processes
type T struct {
	finished []chan struct{}
	shutdown chan struct{}
}

// Process - a single background process
//
// Run must return promptly after the shutdown channel closes
type Process interface {
	Run(args interface{}, shutdown <-chan struct{})
}

// Processes - the list of processes to start
type Processes []Process

// Start - start up the background processes
func Start(processes Processes, args interface{}) *T {
	register := &T{
		finished: make([]chan struct{}, len(processes)),
		shutdown: make(chan struct{}),
	}

	for i, p := range processes {
		finished := make(chan struct{})
		register.finished[i] = finished
		go func(p Process, finished chan struct{}) {
			p.Run(args, register.shutdown)
			close(finished)
		}(p, finished)
	}
	return register
}

// Stop - stop the background processes and wait for them to finish
func (t *T) Stop() {
	if nil == t {
		return
	}
	close(t.shutdown)
	for _, finished := range t.finished {
		<-finished
	}
}
