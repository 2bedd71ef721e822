// Package property loads key=value property files.
//
// A script calls Open once and then Get as often as it likes. The default
// store lives for the rest of the process; there is no update or delete.
package property

import (
	"sort"
	"sync"

	"github.com/magiconair/properties"
	"github.com/pkg/errors"
	"github.com/scalesql/groovyutil/internal/files"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// DefaultFile is the resource opened when no name is given
const DefaultFile = "application.properties"

var (
	mu       sync.RWMutex
	defaults = &Store{props: properties.NewProperties()}
)

// Store holds one loaded property file
type Store struct {
	name  string
	props *properties.Properties
}

// Open finds a property resource by name and makes it the default store.
// See files.Find for the search order.
func Open(name string) error {
	if name == "" {
		name = DefaultFile
	}
	fullfile, err := files.Find(name)
	if err != nil {
		return errors.Wrapf(err, "files.find: %s", name)
	}
	s, err := Load(fullfile)
	if err != nil {
		return err
	}
	mu.Lock()
	defaults = s
	mu.Unlock()
	return nil
}

// Get returns a property from the default store or "" if it isn't set
func Get(key string) string {
	mu.RLock()
	defer mu.RUnlock()
	return defaults.Get(key)
}

// Default returns the default store
func Default() *Store {
	mu.RLock()
	defer mu.RUnlock()
	return defaults
}

// Load reads a property file from disk
func Load(path string) (*Store, error) {
	return LoadFs(afero.NewOsFs(), path)
}

// LoadFs reads a property file from fs
func LoadFs(fs afero.Fs, path string) (*Store, error) {
	bb, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrap(err, "afero.readfile")
	}
	s, err := Parse(bb)
	if err != nil {
		return nil, errors.Wrapf(err, "parse: %s", path)
	}
	s.name = path
	logrus.Debugf("property: loaded %d keys from %s", len(s.props.Keys()), path)
	return s, nil
}

// Parse builds a store from the text of a property file
func Parse(bb []byte) (*Store, error) {
	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadBytes(bb)
	if err != nil {
		return nil, errors.Wrap(err, "properties.loadbytes")
	}
	return &Store{props: p}, nil
}

// FromMap builds a store from a map. It is mostly useful in tests.
func FromMap(m map[string]string) *Store {
	return &Store{props: properties.LoadMap(m)}
}

// Name is the file the store was loaded from
func (s *Store) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Get returns the value of key or ""
func (s *Store) Get(key string) string {
	v, _ := s.Lookup(key)
	return v
}

// Lookup returns the value of key and whether it was set
func (s *Store) Lookup(key string) (string, bool) {
	if s == nil || s.props == nil {
		return "", false
	}
	return s.props.Get(key)
}

// Keys returns the sorted keys
func (s *Store) Keys() []string {
	if s == nil || s.props == nil {
		return []string{}
	}
	keys := s.props.Keys()
	sort.Strings(keys)
	return keys
}
