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

package daemon

import "testing"

func TestStateTransitionsFollowLifecycleOrder(t *testing.T) {
	d := &Daemon{state: StateInit}

	order := []State{StateDaemonized, StateBound, StateServing, StateShuttingDown, StateExited}
	for _, to := range order {
		if err := d.transition(to); err != nil {
			t.Fatalf("transition to %s: %v", to, err)
		}
	}
	if got := d.State(); got != StateExited {
		t.Fatalf("final state = %s, want %s", got, StateExited)
	}
}

func TestStateTransitionRejectsSkippingAStep(t *testing.T) {
	d := &Daemon{state: StateInit}
	if err := d.transition(StateBound); err == nil {
		t.Fatalf("transition StateInit -> StateBound succeeded, want rejection")
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateInit:         "init",
		StateDaemonized:   "daemonized",
		StateBound:        "bound",
		StateServing:      "serving",
		StateShuttingDown: "shutting-down",
		StateExited:       "exited",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("State(%d).String() = %q, want %q", int(state), got, want)
		}
	}
}
