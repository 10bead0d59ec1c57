package io

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CreateAll creates a file with its missing parent directories.
//
// dmod is applied only to directories created here.
// An existing file is truncated.
func CreateAll(name string, fmod os.FileMode, dmod os.FileMode) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(name), dmod); err != nil {
		return nil, err
	}
	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, fmod)
}

// DirCopy copies regular files under src into dst, keeping the tree and file modes.
//
// Files in dst which are not in src are left as they are.
// Symlinks and other special files are not copied.
func DirCopy(src string, dst string) error {
	s, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !s.IsDir() {
		return &fs.PathError{Op: "dircopy", Path: src, Err: errors.New("not a directory")}
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0700)
		case info.Mode().IsRegular():
			return copyFile(path, target, info.Mode().Perm())
		default:
			return nil
		}
	})
}

func copyFile(src string, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := CreateAll(dst, mode, 0755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
