package fileutil

import (
	"os"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// HasWildcard is true if the name contains * or ?
func HasWildcard(name string) bool {
	return strings.ContainsAny(name, "*?")
}

// compileWildcard compiles a shell style name pattern.
// Only * and ? are special; everything else matches itself.
func compileWildcard(pattern string) (glob.Glob, error) {
	var sb strings.Builder
	for _, r := range pattern {
		switch r {
		case '[', ']', '{', '}', '\\', '!':
			sb.WriteRune('\\')
		}
		sb.WriteRune(r)
	}
	g, err := glob.Compile(sb.String())
	if err != nil {
		return nil, errors.Wrapf(err, "glob.compile: %s", pattern)
	}
	return g, nil
}

// MatchName reports whether a file name matches a wildcard pattern
func MatchName(pattern, name string) (bool, error) {
	g, err := compileWildcard(pattern)
	if err != nil {
		return false, err
	}
	return g.Match(name), nil
}

// matchEntries returns the entries of dir whose names match pattern.
// An empty pattern matches everything.
func matchEntries(fs afero.Fs, dir, pattern string, filesOnly bool) ([]os.FileInfo, error) {
	if pattern == "" {
		pattern = "*"
	}
	g, err := compileWildcard(pattern)
	if err != nil {
		return nil, err
	}
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, errors.Wrap(err, "afero.readdir")
	}
	matches := make([]os.FileInfo, 0, len(entries))
	for _, fi := range entries {
		if filesOnly && !fi.Mode().IsRegular() {
			continue
		}
		if g.Match(fi.Name()) {
			matches = append(matches, fi)
		}
	}
	return matches, nil
}
