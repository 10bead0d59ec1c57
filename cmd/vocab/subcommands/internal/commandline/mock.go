// Package commandline provides a flarc.Commandline for tests of subcommands.
package commandline

import (
	"io"
	"strings"

	"github.com/youta-t/flarc"
)

// Fake is a flarc.Commandline with given flags and args.
//
// Outputs are kept in Out and Err.
type Fake[T any] struct {
	fullname string
	flags    T
	args     map[string][]string
	in       io.Reader

	Out *strings.Builder
	Err *strings.Builder
}

var _ flarc.Commandline[struct{}] = &Fake[struct{}]{}

// New creates a Fake with empty stdin.
//
// args can be nil.
func New[T any](fullname string, flags T, args map[string][]string) *Fake[T] {
	if args == nil {
		args = map[string][]string{}
	}
	return &Fake[T]{
		fullname: fullname,
		flags:    flags,
		args:     args,
		in:       strings.NewReader(""),
		Out:      new(strings.Builder),
		Err:      new(strings.Builder),
	}
}

// WithStdin replaces stdin, and returns f itself.
func (f *Fake[T]) WithStdin(r io.Reader) *Fake[T] {
	f.in = r
	return f
}

func (f *Fake[T]) Fullname() string          { return f.fullname }
func (f *Fake[T]) Stdin() io.Reader          { return f.in }
func (f *Fake[T]) Stdout() io.Writer         { return f.Out }
func (f *Fake[T]) Stderr() io.Writer         { return f.Err }
func (f *Fake[T]) Flags() T                  { return f.flags }
func (f *Fake[T]) Args() map[string][]string { return f.args }
