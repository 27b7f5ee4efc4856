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

// Command runnsctl is the client for the runns daemon: it assembles a
// launch, list or stop request from its flags and the calling shell's
// own environment, and speaks the wire protocol in internal/wire
// directly over a unix socket. It never needs namespace or privilege
// capabilities of its own; every privileged step happens daemon-side.
package main

import (
	"fmt"
	"net"
	"os"

	libcbr "github.com/nabbar/golib/cobra"
	libcon "github.com/nabbar/golib/console"
	libver "github.com/nabbar/golib/version"
	spfcbr "github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/sh1r4s3/runns-go/internal/clientenv"
	"github.com/sh1r4s3/runns-go/internal/daemon"
	"github.com/sh1r4s3/runns-go/internal/wire"
)

func main() {
	var (
		socketPath string
		program    string
		netns      string
		verbose    bool
		stop       bool
		list       bool
		createPTY  bool
		forwards   []string
	)

	app := libcbr.New()
	app.SetVersion(clientVersion())
	app.SetForceNoInfo(true)
	app.Init()

	app.AddFlagString(true, &socketPath, "socket", "", daemon.DefaultSocketPath, "path to the runns socket")
	app.AddFlagString(true, &program, "program", "p", "", "program to run in the desired network namespace")
	app.AddFlagString(true, &netns, "set-netns", "", "", "network namespace to switch to")
	app.AddFlagBool(true, &verbose, "verbose", "v", false, "be verbose")
	app.AddFlagBool(true, &stop, "stop", "s", false, "stop the runns daemon (root only)")
	app.AddFlagBool(true, &list, "list", "l", false, "list the caller's running workers")
	app.AddFlagBool(true, &createPTY, "create-ptms", "t", false, "attach a fresh controlling pty to the worker")
	app.AddFlagStringArray(true, &forwards, "forward-port", "f", nil, "<ip>:<port>:<netns path>:<proto><family>")

	app.Cobra().RunE = func(cmd *spfcbr.Command, args []string) error {
		return run(socketPath, program, netns, verbose, stop, list, createPTY, forwards, args)
	}

	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func clientVersion() libver.Version {
	return libver.NewVersion(
		libver.License_MIT,
		"runnsctl",
		"client for the runns namespace-launch daemon",
		"2026-01-01T00:00:00Z",
		"",
		"",
		"The runns Authors",
		"RUNNSCTL",
		struct{}{},
		0,
	)
}

func run(socketPath, program, netns string, verbose, stop, list, createPTY bool, forwards, args []string) error {
	if stop && list {
		return fmt.Errorf("runnsctl: --stop and --list are mutually exclusive")
	}

	var flag wire.Flag
	switch {
	case stop:
		flag = wire.FlagStop
	case list:
		flag = wire.FlagList
	default:
		if netns == "" || program == "" {
			return fmt.Errorf("runnsctl: --set-netns and --program are required for a launch")
		}
		if createPTY {
			flag = wire.FlagNewPTY
		}
	}

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return fmt.Errorf("runnsctl: connecting to %s: %w", socketPath, err)
	}
	defer conn.Close()

	req := wire.Request{
		Header: wire.Header{Flag: flag},
		Prog:   program,
		Netns:  netns,
		// Args carries only the caller's extra arguments: the worker
		// prepends the program path as argv[0] itself before exec.
		Args:   args,
		Env:    buildEnv(forwards, clientenv.Filter(os.Environ())),
	}
	req.Header.TMode = currentTermios()
	req.EncodeSizes()

	if verbose {
		logVerbose(flag, program, netns)
	}

	if err := wire.WriteRequest(conn, req); err != nil {
		return fmt.Errorf("runnsctl: sending request: %w", err)
	}

	switch {
	case stop:
		return nil
	case list:
		return printList(conn)
	default:
		status, err := wire.ReadStatus(conn)
		if err != nil {
			return fmt.Errorf("runnsctl: reading status: %w", err)
		}
		if status != wire.StatusOK {
			return fmt.Errorf("runnsctl: daemon rejected the launch request")
		}
		return nil
	}
}

// buildEnv appends one RUNNS_NETNS_<i>/RUNNS_NETNS_IPV6_<i> variable per
// --forward-port argument to the filtered shell environment; malformed
// entries are skipped with a warning rather than aborting the request.
func buildEnv(forwards []string, base []string) []string {
	env := base
	ipv4Idx, ipv6Idx := 0, 0
	for _, spec := range forwards {
		fp, err := clientenv.ParseForwardPort(spec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "runnsctl: %v\n", err)
			continue
		}
		idx := ipv4Idx
		if fp.IPv6 {
			idx = ipv6Idx
		}
		env = append(env, fp.EnvVar(idx))
		if fp.IPv6 {
			ipv6Idx++
		} else {
			ipv4Idx++
		}
	}
	return env
}

func currentTermios() unix.Termios {
	t, err := unix.IoctlGetTermios(int(os.Stdin.Fd()), unix.TCGETS)
	if err != nil || t == nil {
		return unix.Termios{}
	}
	return *t
}

func logVerbose(flag wire.Flag, program, netns string) {
	switch {
	case flag.Has(wire.FlagStop):
		libcon.ColorPrint.Println("command to runns daemon: STOP")
	case flag.Has(wire.FlagList):
		libcon.ColorPrint.Println("command to runns daemon: LIST")
	default:
		libcon.ColorPrint.PrintLnf("network namespace to switch is: %s", netns)
		libcon.ColorPrint.PrintLnf("program to run: %s", program)
	}
}

func printList(conn net.Conn) error {
	workers, err := wire.ReadListReply(conn)
	if err != nil {
		return fmt.Errorf("runnsctl: reading list reply: %w", err)
	}
	for _, w := range workers {
		libcon.ColorPrint.PrintLnf("%d", w.Pid)
	}
	return nil
}
