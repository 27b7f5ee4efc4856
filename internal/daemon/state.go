/*
 * MIT License
 *
 * Copyright (c) 2026 The runns Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package daemon is the supervisor: it owns the socket's lifecycle, runs
// the accept loop, dispatches each request and keeps the worker registry
// current.
package daemon

import "fmt"

// State is one stage of the daemon's lifecycle.
type State int

const (
	StateInit State = iota
	StateDaemonized
	StateBound
	StateServing
	StateShuttingDown
	StateExited
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateDaemonized:
		return "daemonized"
	case StateBound:
		return "bound"
	case StateServing:
		return "serving"
	case StateShuttingDown:
		return "shutting-down"
	case StateExited:
		return "exited"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// validTransitions enumerates the only state changes the supervisor is
// allowed to make, in the order the original daemon's main() performs
// them: daemonize, bind the socket, start serving, then shut down.
var validTransitions = map[State][]State{
	StateInit:         {StateDaemonized},
	StateDaemonized:   {StateBound},
	StateBound:        {StateServing},
	StateServing:      {StateShuttingDown},
	StateShuttingDown: {StateExited},
}

// transition moves d's state forward, rejecting any jump that is not one
// of the recognized steps.
func (d *Daemon) transition(to State) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, allowed := range validTransitions[d.state] {
		if allowed == to {
			d.state = to
			return nil
		}
	}
	return fmt.Errorf("daemon: invalid state transition %s -> %s", d.state, to)
}

// State reports the daemon's current lifecycle stage.
func (d *Daemon) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}
