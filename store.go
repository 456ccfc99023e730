package ncplot

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CorruptStoreError is returned by LoadStore when a colorfile exists but
// cannot be decoded.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("ncplot: decoding colorfile %s: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }

// Store holds a colorfile: a mapping from variable name to the ColorScheme
// that was used to render that variable. A Store is used by a single
// sequential pass over the variables of one dataset; it is not safe for
// concurrent use.
type Store struct {
	schemes map[string]ColorScheme
	dirty   bool
}

// NewStore creates an empty colorfile store.
func NewStore() *Store {
	return &Store{schemes: make(map[string]ColorScheme)}
}

// LoadStore reads a previously saved colorfile. If the file exists but
// cannot be decoded, the returned error is a *CorruptStoreError.
func LoadStore(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s := NewStore()
	if err := gob.NewDecoder(f).Decode(&s.schemes); err != nil {
		return nil, &CorruptStoreError{Path: path, Err: err}
	}
	return s, nil
}

// Get looks up the scheme cached for the named variable.
func (s *Store) Get(name string) (ColorScheme, bool) {
	cs, ok := s.schemes[name]
	return cs, ok
}

// Put inserts or overwrites the scheme for the named variable and marks
// the store dirty.
func (s *Store) Put(name string, cs ColorScheme) {
	s.schemes[name] = cs
	s.dirty = true
}

// Dirty reports whether the store has been modified since it was created
// or loaded.
func (s *Store) Dirty() bool { return s.dirty }

// Len returns the number of cached schemes.
func (s *Store) Len() int { return len(s.schemes) }

// Names returns the cached variable names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.schemes))
	for name := range s.schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save writes the store to path. The data are written to a temporary file
// in the destination directory and renamed into place on success, so a
// failure partway through leaves any existing file at path untouched.
func (s *Store) Save(path string) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".ncplot-cf-*")
	if err != nil {
		return fmt.Errorf("ncplot: saving colorfile: %v", err)
	}
	tmp := f.Name()
	if err := s.writeTo(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("ncplot: saving colorfile %s: %v", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("ncplot: saving colorfile %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ncplot: saving colorfile %s: %v", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ncplot: saving colorfile %s: %v", path, err)
	}
	return nil
}

func (s *Store) writeTo(w io.Writer) error {
	return gob.NewEncoder(w).Encode(s.schemes)
}

// ColorfilePath gives the default colorfile location for a dataset: the
// dataset path with its extension replaced by ".cf".
func ColorfilePath(ncPath string) string {
	return strings.TrimSuffix(ncPath, filepath.Ext(ncPath)) + ".cf"
}
