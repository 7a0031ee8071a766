// Package pathstore holds generated trajectory pairs by ID and persists them in a fixed-size
// binary record format.
package pathstore

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/treadline/pathfollow/trajectory"
)

// Store maps path IDs to trajectory pairs. Keys keep their insertion order; replacing an entry
// keeps its position. All methods are safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	paths map[string]trajectory.Pair
	keys  []string
	root  string
}

// NewStore returns an empty store whose files live under root. An empty root means DefaultRoot.
func NewStore(root string) *Store {
	if root == "" {
		root = DefaultRoot
	}
	return &Store{
		paths: map[string]trajectory.Pair{},
		root:  root,
	}
}

// Root returns the directory files are saved under.
func (s *Store) Root() string {
	return s.root
}

// Put stores the pair under id, replacing any existing entry. A pair whose sides differ in length
// or cadence is rejected and the store is left untouched.
func (s *Store) Put(id string, pair trajectory.Pair) error {
	if err := pair.Validate(); err != nil {
		return errors.Wrapf(err, "cannot store path %q", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.paths[id]; !ok {
		s.keys = append(s.keys, id)
	}
	s.paths[id] = pair
	return nil
}

// Get returns the pair stored under id, or a NotFoundError.
func (s *Store) Get(id string) (trajectory.Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pair, ok := s.paths[id]
	if !ok {
		return trajectory.Pair{}, NewNotFoundError(id)
	}
	return pair, nil
}

// Has returns whether id is stored.
func (s *Store) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.paths[id]
	return ok
}

// Remove deletes the entry for id. Removing an absent id does nothing.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.paths[id]; !ok {
		return
	}
	delete(s.paths, id)
	s.keys = lo.Without(s.keys, id)
}

// Keys returns the stored IDs in insertion order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...)
}

// Len returns the number of stored paths.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// Save encodes the pair stored under id as two parallel record streams.
func (s *Store) Save(id string, left, right io.Writer) error {
	pair, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := pair.Validate(); err != nil {
		return errors.Wrapf(err, "cannot save path %q", id)
	}
	if err := EncodeTrajectory(left, pair.Left); err != nil {
		return errors.Wrapf(err, "error saving left side of path %q", id)
	}
	if err := EncodeTrajectory(right, pair.Right); err != nil {
		return errors.Wrapf(err, "error saving right side of path %q", id)
	}
	return nil
}

// Load decodes two parallel record streams and stores the result under id. On any error the
// store is left untouched; malformed data yields a CorruptPathError.
func (s *Store) Load(id string, left, right io.Reader) error {
	pair, err := DecodePair(id, left, right)
	if err != nil {
		return err
	}
	return s.Put(id, pair)
}
