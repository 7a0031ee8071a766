package pathstore

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const (
	leftSuffix  = ".left.bin"
	rightSuffix = ".right.bin"
)

// FilePaths returns where SaveFiles writes the two streams of id inside directory.
func (s *Store) FilePaths(directory, id string) (left, right string, err error) {
	if SanitizeFilename(id) == "" {
		return "", "", errors.Errorf("path id %q has no usable filename characters", id)
	}
	left = filepath.FromSlash(MakeFilePathUnder(s.root, directory, id+leftSuffix))
	right = filepath.FromSlash(MakeFilePathUnder(s.root, directory, id+rightSuffix))
	return left, right, nil
}

// SaveFiles writes the pair stored under id to `<root>/<directory>/<id>.left.bin` and
// `.right.bin`, creating the directory if needed.
func (s *Store) SaveFiles(directory, id string) (err error) {
	if !s.Has(id) {
		return NewNotFoundError(id)
	}
	leftPath, rightPath, err := s.FilePaths(directory, id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(leftPath), 0o750); err != nil {
		return errors.Wrap(err, "error creating path directory")
	}

	//nolint:gosec
	left, err := os.Create(leftPath)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Combine(err, left.Close()) }()
	//nolint:gosec
	right, err := os.Create(rightPath)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Combine(err, right.Close()) }()

	return s.Save(id, left, right)
}

// LoadFiles reads the files written by SaveFiles and stores the pair under id.
func (s *Store) LoadFiles(directory, id string) (err error) {
	leftPath, rightPath, err := s.FilePaths(directory, id)
	if err != nil {
		return err
	}

	//nolint:gosec
	left, err := os.Open(leftPath)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Combine(err, left.Close()) }()
	//nolint:gosec
	right, err := os.Open(rightPath)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Combine(err, right.Close()) }()

	return s.Load(id, left, right)
}
