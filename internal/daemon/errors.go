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

import (
	liberr "github.com/nabbar/golib/errors"
)

// Error code ranges for the daemon package, one family per failure
// taxonomy bucket: configuration, socket lifecycle, protocol, launch,
// registry.
const (
	ErrConfig liberr.CodeError = iota + 4100
	ErrSocket
	ErrProtocol
	ErrLaunch
	ErrRegistry
)

func init() {
	liberr.RegisterIdFctMessage(ErrConfig, func(code liberr.CodeError) string {
		return "invalid daemon configuration"
	})
	liberr.RegisterIdFctMessage(ErrSocket, func(code liberr.CodeError) string {
		return "socket setup or lifecycle failure"
	})
	liberr.RegisterIdFctMessage(ErrProtocol, func(code liberr.CodeError) string {
		return "malformed or rejected request"
	})
	liberr.RegisterIdFctMessage(ErrLaunch, func(code liberr.CodeError) string {
		return "launch pipeline failure"
	})
	liberr.RegisterIdFctMessage(ErrRegistry, func(code liberr.CodeError) string {
		return "worker registry failure"
	})
}
