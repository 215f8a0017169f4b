package vkrender

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

const logFlags = log.Ldate | log.Ltime | log.Lshortfile

// Logger is a set of leveled loggers. Fatal messages terminate the process
// through the exit hook.
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	fatal *log.Logger
	debug *log.Logger

	closers []io.Closer

	// Exit is called after a fatal message. Defaults to os.Exit.
	Exit func(code int)
}

// NewLogger sends every level to w.
func NewLogger(w io.Writer) *Logger {
	return &Logger{
		info:  log.New(w, "INFO: ", logFlags),
		warn:  log.New(w, "WARNING: ", logFlags),
		err:   log.New(w, "ERROR: ", logFlags),
		fatal: log.New(w, "FATAL: ", logFlags),
		debug: log.New(io.Discard, "DEBUG: ", logFlags),
		Exit:  os.Exit,
	}
}

// NewFileLogger appends each level to its own file in dir.
func NewFileLogger(dir string) (*Logger, error) {
	l := NewLogger(os.Stderr)
	open := func(name string) (*os.File, error) {
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			l.Close()
			return nil, err
		}
		l.closers = append(l.closers, f)
		return f, nil
	}

	info, err := open("info_log.txt")
	if err != nil {
		return nil, err
	}
	warn, err := open("warn_log.txt")
	if err != nil {
		return nil, err
	}
	errf, err := open("error_log.txt")
	if err != nil {
		return nil, err
	}
	fatal, err := open("fatal_log.txt")
	if err != nil {
		return nil, err
	}

	l.info.SetOutput(info)
	l.warn.SetOutput(warn)
	l.err.SetOutput(errf)
	l.fatal.SetOutput(io.MultiWriter(fatal, os.Stderr))
	return l, nil
}

// EnableDebug routes verbose driver diagnostics to w.
func (l *Logger) EnableDebug(w io.Writer) {
	l.debug.SetOutput(w)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.info.Output(2, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.warn.Output(2, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.err.Output(2, fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.debug.Output(2, fmt.Sprintf(format, args...))
}

// Fatalf logs one line and exits.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.fatal.Output(2, fmt.Sprintf(format, args...))
	l.Close()
	l.Exit(1)
}

// Fatal does nothing when err is nil. Otherwise finalizers run in order, the
// error is logged and the process exits.
func (l *Logger) Fatal(err error, finalizers ...func()) {
	if err == nil {
		return
	}
	for _, fn := range finalizers {
		fn()
	}
	l.fatal.Output(2, err.Error())
	l.Close()
	l.Exit(1)
}

func (l *Logger) Close() {
	for _, c := range l.closers {
		c.Close()
	}
	l.closers = nil
}
