// Package errors defines errors to be shown to users of the CLI.
package errors

import (
	"errors"
	"strings"
)

// Verbose is an error which can explain itself in detail.
type Verbose interface {
	Verbose() string
}

// CUIError is an error with a message for humans.
//
// Error() is the summary. Verbose() adds details, hints and the chain of causes.
type CUIError struct {
	Summary string

	// Detail follows the summary in Verbose, like a raw server response.
	Detail string

	// Hint is shown in parentheses in Verbose.
	Hint string

	Cause error
}

var _ Verbose = &CUIError{}

// New creates a CUIError. cause can be nil.
func New(summary string, cause error) *CUIError {
	return &CUIError{Summary: summary, Cause: cause}
}

func (ce *CUIError) WithDetail(detail string) *CUIError {
	ce.Detail = detail
	return ce
}

func (ce *CUIError) WithHint(hint string) *CUIError {
	ce.Hint = hint
	return ce
}

func (ce *CUIError) Error() string {
	return ce.Summary
}

func (ce *CUIError) Unwrap() error {
	return ce.Cause
}

func (ce *CUIError) Verbose() string {
	lines := []string{ce.Summary}
	if ce.Detail != "" {
		lines = append(lines, ce.Detail)
	}
	if ce.Hint != "" {
		lines = append(lines, "("+ce.Hint+")")
	}

	var v Verbose
	switch {
	case ce.Cause == nil:
	case errors.As(ce.Cause, &v):
		lines = append(lines, "caused by: "+v.Verbose())
	default:
		lines = append(lines, "caused by: "+ce.Cause.Error())
	}
	return strings.Join(lines, "\n")
}

// VerboseOf explains err in detail if it can, or returns err.Error().
func VerboseOf(err error) string {
	var v Verbose
	if errors.As(err, &v) {
		return v.Verbose()
	}
	return err.Error()
}
