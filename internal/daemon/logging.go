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
	"context"
	"fmt"

	liblog "github.com/nabbar/golib/logger"
	logcfg "github.com/nabbar/golib/logger/config"
)

// NewSyslogLogger builds a Logger that writes to the local syslog under
// facility "daemon" with tag "runns", the Go equivalent of the original
// daemon's openlog(..., LOG_DAEMON) / syslog(LOG_INFO, ...) calls.
func NewSyslogLogger(ctx context.Context) (liblog.Logger, error) {
	lg := liblog.New(ctx)

	opt := &logcfg.Options{
		LogSyslogExtend: false,
		LogSyslog: logcfg.OptionsSyslogs{
			{
				Facility: "daemon",
				Tag:      "runns",
				LogLevel: []string{"INFO", "WARNING", "ERROR", "FATAL"},
			},
		},
	}

	if err := lg.SetOptions(opt); err != nil {
		return nil, fmt.Errorf("daemon: configuring syslog logger: %w", err)
	}
	return lg, nil
}
