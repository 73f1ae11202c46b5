package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/phuslu/log"
)

// New returns a leveled logger writing to stderr: colored console output
// on a terminal, JSON lines otherwise.
func New(level string) *log.Logger {
	var writer log.Writer = &log.IOWriter{Writer: os.Stderr}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		writer = &log.ConsoleWriter{ColorOutput: true, Writer: os.Stderr}
	}
	return &log.Logger{
		Level:  log.ParseLevel(level),
		Writer: writer,
	}
}

// Discard is a logger for tests.
func Discard() *log.Logger {
	return &log.Logger{
		Level:  log.PanicLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}
