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

package clientenv

import (
	"fmt"
	"strings"
)

// ForwardPort is one parsed --forward-port argument: <ip>:<port>:<netns
// path>[:<proto><family>]. It does not touch the daemon at all; it only
// produces an environment variable the spawned program's own
// port-forwarding loader is expected to read (spec.md's "Environment
// (client side, for the port-forwarding auxiliary library)").
type ForwardPort struct {
	IP       string
	Port     string
	NetnsPath string
	Proto    string // "tcp" or "udp", empty if unspecified
	IPv6     bool
}

// ParseForwardPort splits a -f/--forward-port argument on ':'. The
// optional fourth field is a protocol name followed by "4" or "6"
// (e.g. "tcp4", "udp6"); a missing or malformed fourth field leaves
// Proto empty and IPv6 false, matching the original client's tolerant
// fallback to AF_INET on an unparsable suffix.
func ParseForwardPort(spec string) (ForwardPort, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 3 {
		return ForwardPort{}, fmt.Errorf("clientenv: forward-port %q: need ip:port:netns_path", spec)
	}

	fp := ForwardPort{IP: parts[0], Port: parts[1], NetnsPath: parts[2]}
	if len(parts) >= 4 {
		suffix := strings.ToLower(parts[3])
		if len(suffix) == 4 && (suffix[:3] == "tcp" || suffix[:3] == "udp") &&
			(suffix[3] == '4' || suffix[3] == '6') {
			fp.Proto = suffix[:3]
			fp.IPv6 = suffix[3] == '6'
		}
	}
	return fp, nil
}

// EnvVar returns the RUNNS_NETNS_<i> or RUNNS_NETNS_IPV6_<i> variable
// (name and value) this forward describes, numbered by its position
// among all forwards of the same address family.
func (fp ForwardPort) EnvVar(index int) string {
	name := "RUNNS_NETNS"
	if fp.IPv6 {
		name = "RUNNS_NETNS_IPV6"
	}
	value := fmt.Sprintf("%s;%s;%s", fp.IP, fp.Port, fp.NetnsPath)
	if fp.Proto != "" {
		family := "4"
		if fp.IPv6 {
			family = "6"
		}
		value += ";" + fp.Proto + family
	}
	return fmt.Sprintf("%s_%d=%s", name, index, value)
}
