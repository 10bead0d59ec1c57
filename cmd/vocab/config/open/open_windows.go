//go:build windows

package open

import (
	"os"

	winacl "github.com/hectane/go-acl"
)

// NewSafeFile creates (or truncates) a file which only the current user can access.
func NewSafeFile(filepath string) (*os.File, error) {
	// acl can be applied only to existing files. create, restrict, then truncate.
	f, err := os.OpenFile(filepath, os.O_CREATE|os.O_RDWR, os.FileMode(0600))
	if err != nil {
		return nil, err
	}
	if err := winacl.Chmod(filepath, os.FileMode(0600)); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Truncate(0); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
