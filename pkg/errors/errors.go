// Package errors marks errors with where they have passed.
//
//	return xe.Wrap(err)
//
// A wrapped error reads like
//
//	vocabulary.go:42 postgres.(*pgVocabulary).Create: original message
//
// so a chain of Wrap tells the route of the error.
package errors

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrWithCaller is an error with the location where it is wrapped.
type ErrWithCaller struct {
	file     string
	line     int
	funcname string
	note     string
	err      error
}

func (e *ErrWithCaller) File() string {
	return e.file
}

func (e *ErrWithCaller) Line() int {
	return e.line
}

// Caller returns "FILE:LINE FUNC", where FILE is the base name.
func (e *ErrWithCaller) Caller() string {
	return fmt.Sprintf("%s:%d %s", filepath.Base(e.file), e.line, e.funcname)
}

func (e *ErrWithCaller) Error() string {
	msg := new(strings.Builder)
	msg.WriteString(e.Caller())
	if e.note != "" {
		msg.WriteString(" (" + e.note + ")")
	}
	msg.WriteString(": " + e.err.Error())
	return msg.String()
}

func (e *ErrWithCaller) Unwrap() error {
	return e.err
}

// Wrap marks err with the caller. nil stays nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return wrap("", err)
}

// WrapWithNote is Wrap with a note on what the caller was doing.
func WrapWithNote(note string, err error) error {
	if err == nil {
		return nil
	}
	return wrap(note, err)
}

func wrap(note string, err error) error {
	// skip wrap and Wrap(WithNote)
	pc, file, line, ok := runtime.Caller(2)
	if !ok {
		file, line = "?", -1
	}
	funcname := "?"
	if fn := runtime.FuncForPC(pc); ok && fn != nil {
		funcname = fn.Name()
		// drop the package path, keeping the package name.
		if i := strings.LastIndex(funcname, "/"); 0 <= i {
			funcname = funcname[i+1:]
		}
	}
	return &ErrWithCaller{file: file, line: line, funcname: funcname, note: note, err: err}
}
