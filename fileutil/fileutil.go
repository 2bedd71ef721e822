// Package fileutil copies, moves, deletes, stamps, archives and zips files
// named by plain path strings.
//
// A source path may end in a wildcard name ("/in/*.csv", "/in/report_??.txt").
// Wildcard and directory sources always need an existing directory as the
// destination. Archived files land in a date bucket below their own folder:
//
//	/in/orders.csv  ->  /in/2024-03/2024-03-15/orders.csv
//
// All operations run against an afero.Fs and a clock.Clock so they can be
// tested without touching the disk. The package level functions use the
// OS file system and the wall clock.
package fileutil

import (
	"os"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var (
	// ErrWildcardDest is returned when a wildcard source isn't paired with a directory
	ErrWildcardDest = errors.New("wildcard source: destination is not a directory")
	// ErrDirectoryDest is returned when a directory source isn't paired with a directory
	ErrDirectoryDest = errors.New("directory source: destination is not a directory")
	// ErrDeleteDirectory is returned when Delete is given a directory
	ErrDeleteDirectory = errors.New("delete not allowed on directory source")
	// ErrNotDirectory is returned when a directory was expected
	ErrNotDirectory = errors.New("not a directory")
	// ErrRename is returned when a rename source isn't a file or the target exists
	ErrRename = errors.New("rename: source and destination must be files")
	// ErrOnlyOne is returned by OnlyOneFile
	ErrOnlyOne = errors.New("exactly one file expected")
	// ErrExists is returned when a move would overwrite a file
	ErrExists = errors.New("destination already exists")
)

// FileUtility runs file operations against a file system and a clock
type FileUtility struct {
	fs    afero.Fs
	clock clock.Clock
}

// New returns a FileUtility on the OS file system and the wall clock
func New() *FileUtility {
	return &FileUtility{fs: afero.NewOsFs(), clock: clock.New()}
}

// NewWith returns a FileUtility on fs and clk. Nil values get the defaults.
func NewWith(fs afero.Fs, clk clock.Clock) *FileUtility {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if clk == nil {
		clk = clock.New()
	}
	return &FileUtility{fs: fs, clock: clk}
}

// Fs is the file system used by fu
func (fu *FileUtility) Fs() afero.Fs {
	return fu.fs
}

func isSeparator(c byte) bool {
	return c == '/' || os.IsPathSeparator(c)
}

func lastSeparator(p string) int {
	for i := len(p) - 1; i >= 0; i-- {
		if isSeparator(p[i]) {
			return i
		}
	}
	return -1
}

// FilePath returns the directory part of p including the trailing separator.
// "/a/b/c.txt" returns "/a/b/" and "c.txt" returns "".
func FilePath(p string) string {
	dir := p[:lastSeparator(p)+1]
	logrus.Tracef("fileutil: full filename = %s, path = %s", p, dir)
	return dir
}

// FileName returns the last segment of p
func FileName(p string) string {
	return p[lastSeparator(p)+1:]
}

// FileExtension returns the extension of the last segment without the dot
func FileExtension(p string) string {
	name := FileName(p)
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[i+1:]
}

// FileBaseName returns the last segment of p without its extension
func FileBaseName(p string) string {
	name := FileName(p)
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name
	}
	return name[:i]
}

// OnlyOneFile returns the only entry in list.
// what describes the listing for the error message.
func OnlyOneFile(list []string, what string) (string, error) {
	if len(list) != 1 {
		return "", errors.Wrapf(ErrOnlyOne, "only one file for %s: there are %d files", what, len(list))
	}
	return list[0], nil
}

// parentDir is FilePath with the current directory for bare names
func parentDir(p string) string {
	dir := FilePath(p)
	if dir == "" {
		return "."
	}
	return dir
}
