// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log provides the small structured-logging interface SAIL
// threads through the registry, loader and session engine.
package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Level is the severity of a log record.
type Level int

// Levels, most to least verbose is Trace..Fatal.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal sink SAIL components log through.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// stdLogger writes formatted records to an io.Writer.
type stdLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdLogger returns a Logger that writes "time level k=v ..." lines
// to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

func (l *stdLogger) Log(level Level, keyvals ...interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintf(l.w, "%s level=%s", time.Now().Format(time.RFC3339), level)
	if err != nil {
		return err
	}
	for i := 0; i+1 < len(keyvals); i += 2 {
		if _, err := fmt.Fprintf(l.w, " %v=%v", keyvals[i], keyvals[i+1]); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(l.w)
	return err
}

// filter wraps a Logger and drops records below a minimum level.
type filter struct {
	next Logger
	min  Level
}

// FilterOption configures a filtering Logger built by NewFilter.
type FilterOption func(*filter)

// FilterLevel sets the minimum level a record must reach to pass
// through the filter.
func FilterLevel(min Level) FilterOption {
	return func(f *filter) { f.min = min }
}

// NewFilter wraps next with the given options.
func NewFilter(next Logger, opts ...FilterOption) Logger {
	f := &filter{next: next, min: LevelInfo}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, keyvals ...interface{}) error {
	if level < f.min {
		return nil
	}
	return f.next.Log(level, keyvals...)
}

// Helper is a leveled logging facade over a Logger, offering the
// printf-style methods every SAIL component calls (Errorf, Warnf,
// Debugf, Tracef).
type Helper struct {
	logger Logger
}

// NewHelper wraps logger in a Helper.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) logf(level Level, format string, args ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	_ = h.logger.Log(level, "msg", fmt.Sprintf(format, args...))
}

func (h *Helper) log(level Level, args ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	_ = h.logger.Log(level, "msg", fmt.Sprint(args...))
}

// Tracef logs at LevelTrace.
func (h *Helper) Tracef(format string, args ...interface{}) { h.logf(LevelTrace, format, args...) }

// Debugf logs at LevelDebug.
func (h *Helper) Debugf(format string, args ...interface{}) { h.logf(LevelDebug, format, args...) }

// Infof logs at LevelInfo.
func (h *Helper) Infof(format string, args ...interface{}) { h.logf(LevelInfo, format, args...) }

// Warnf logs at LevelWarn.
func (h *Helper) Warnf(format string, args ...interface{}) { h.logf(LevelWarn, format, args...) }

// Errorf logs at LevelError.
func (h *Helper) Errorf(format string, args ...interface{}) { h.logf(LevelError, format, args...) }

// Warn logs a pre-formatted message at LevelWarn.
func (h *Helper) Warn(args ...interface{}) { h.log(LevelWarn, args...) }

// Error logs a pre-formatted message at LevelError.
func (h *Helper) Error(args ...interface{}) { h.log(LevelError, args...) }
