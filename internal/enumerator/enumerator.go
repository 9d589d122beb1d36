// Package enumerator lists the regular files under a backup source root.
package enumerator

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

var ErrSourceNotFound = errors.New("source not found")

type File struct {
	Path string
	Size int64
}

type Enumerator struct {
	ignoreList []string
}

// New returns an Enumerator skipping any path with a component matching
// one of the ignore globs.
func New(ignoreList []string) *Enumerator {
	return &Enumerator{ignoreList: ignoreList}
}

// Files checks that root is a readable directory and returns a lazy
// sequence of the absolute paths of every regular file below it, in
// lexical walk order. A walk error ends the sequence after being yielded.
func (e *Enumerator) Files(root string) (iter.Seq2[File, error], error) {
	absRoot, err := checkRoot(root)
	if err != nil {
		return nil, err
	}

	seq := func(yield func(File, error) bool) {
		err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if path != absRoot && e.shouldIgnore(absRoot, path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				return nil
			}

			info, ok := regularInfo(path, d)
			if !ok {
				return nil
			}

			if !yield(File{Path: path, Size: info.Size()}, nil) {
				return filepath.SkipAll
			}
			return nil
		})

		if err != nil {
			yield(File{}, fmt.Errorf("failed to walk %s: %w", absRoot, err))
		}
	}

	return seq, nil
}

// Collect drains Files into a slice.
func (e *Enumerator) Collect(root string) ([]File, error) {
	seq, err := e.Files(root)
	if err != nil {
		return nil, err
	}

	var files []File
	for f, err := range seq {
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	return files, nil
}

func checkRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: invalid path %q: %v", ErrSourceNotFound, root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceNotFound, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrSourceNotFound, absRoot)
	}

	f, err := os.Open(absRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceNotFound, err)
	}
	_ = f.Close()

	return absRoot, nil
}

// regularInfo follows symlinks so a link to a regular file is copied as
// that file; links to directories are not descended.
func regularInfo(path string, d fs.DirEntry) (fs.FileInfo, bool) {
	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil, false
		}
		return info, true
	}

	if !d.Type().IsRegular() {
		return nil, false
	}

	info, err := d.Info()
	if err != nil {
		return nil, false
	}

	return info, true
}

func (e *Enumerator) shouldIgnore(root, path string) bool {
	if len(e.ignoreList) == 0 {
		return false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		for _, pattern := range e.ignoreList {
			if matched, err := filepath.Match(pattern, part); err == nil && matched {
				return true
			}
		}
	}

	return false
}
