/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger is the logging surface injected into every discovery component.
type Logger interface {
	Trace() *zerolog.Event
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	With() zerolog.Context
	WithComponent(component string) zerolog.Logger
	WithFields(fields map[string]interface{}) zerolog.Logger
	SetLevel(level zerolog.Level)
	SetDebug(debug bool)
}

// zlogger adapts a zerolog.Logger value to Logger.
type zlogger struct {
	zl zerolog.Logger
}

// Wrap returns a Logger backed by zl.
func Wrap(zl zerolog.Logger) Logger {
	return &zlogger{zl: zl}
}

func (l *zlogger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *zlogger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *zlogger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *zlogger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *zlogger) Error() *zerolog.Event { return l.zl.Error() }
func (l *zlogger) With() zerolog.Context { return l.zl.With() }

func (l *zlogger) WithComponent(component string) zerolog.Logger {
	return l.zl.With().Str("component", component).Logger()
}

func (l *zlogger) WithFields(fields map[string]interface{}) zerolog.Logger {
	return l.zl.With().Fields(fields).Logger()
}

func (l *zlogger) SetLevel(level zerolog.Level) {
	l.zl = l.zl.Level(level)
}

func (l *zlogger) SetDebug(debug bool) {
	if debug {
		l.SetLevel(zerolog.DebugLevel)
	} else {
		l.SetLevel(zerolog.InfoLevel)
	}
}

// Component derives a Logger tagged with a component field.
func Component(parent Logger, component string) Logger {
	return Wrap(parent.WithComponent(component))
}

// NewTestLogger creates a no-op logger for testing that discards all output
func NewTestLogger() Logger {
	return Wrap(zerolog.New(io.Discard).Level(zerolog.Disabled))
}

// NewWriterLogger logs JSON lines to w at debug level; tests use it to assert on emitted records.
func NewWriterLogger(w io.Writer) Logger {
	return Wrap(zerolog.New(w).Level(zerolog.DebugLevel))
}
