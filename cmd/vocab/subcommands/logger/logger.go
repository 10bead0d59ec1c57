// Package logger builds loggers for vocab subcommands.
package logger

import (
	"io"
	"log"
)

// New returns a logger writing to w, prefixed with "[name] ".
func New(w io.Writer, name string) *log.Logger {
	return log.New(w, "["+name+"] ", log.LstdFlags)
}

// Null returns a logger discarding everything. Use it in tests.
func Null() *log.Logger {
	return log.New(io.Discard, "", 0)
}
