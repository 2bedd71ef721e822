package fileutil

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/exp/slices"
)

// Dir lists the entries matching a path like "/in/*.csv".
// It returns absolute paths. If newestFirst is true the list is sorted
// by modification time with the most recent first.
func (fu *FileUtility) Dir(pattern string, newestFirst bool) ([]string, error) {
	dir := parentDir(pattern)
	entries, err := matchEntries(fu.fs, dir, FileName(pattern), false)
	if err != nil {
		return []string{}, errors.Wrapf(err, "dir: %s", pattern)
	}
	if newestFirst {
		slices.SortStableFunc(entries, func(a, b os.FileInfo) int {
			return b.ModTime().Compare(a.ModTime())
		})
	}
	names := make([]string, 0, len(entries))
	for _, fi := range entries {
		names = append(names, absPath(filepath.Join(dir, fi.Name())))
	}
	logrus.Debugf("fileutil: dir %s: %d entries", pattern, len(names))
	return names, nil
}

// FileExists is true if the path exists and isn't a directory
func (fu *FileUtility) FileExists(name string) bool {
	fi, err := fu.fs.Stat(name)
	if err != nil {
		return false
	}
	return !fi.IsDir()
}

// MakeDirectory creates a directory and any parents.
// It is not an error if the directory already exists.
func (fu *FileUtility) MakeDirectory(dir string) (string, error) {
	fi, err := fu.fs.Stat(dir)
	if err == nil {
		if fi.IsDir() {
			logrus.Debugf("fileutil: makedirectory: %s already exists", dir)
			return dir, nil
		}
		logrus.Errorf("fileutil: makedirectory: %s exists and is a file", dir)
		return dir, errors.Wrapf(ErrNotDirectory, "makedirectory: %s exists", dir)
	}
	if !os.IsNotExist(err) {
		return dir, errors.Wrap(err, "fs.stat")
	}
	err = fu.fs.MkdirAll(dir, 0755)
	if err != nil {
		return dir, errors.Wrap(err, "fs.mkdirall")
	}
	logrus.Infof("fileutil: makedirectory: %s created", dir)
	return dir, nil
}

// CleanDirectory removes everything inside dir but leaves dir
func (fu *FileUtility) CleanDirectory(dir string) error {
	ok, err := afero.IsDir(fu.fs, dir)
	if err != nil || !ok {
		return errors.Wrapf(ErrNotDirectory, "cleandirectory: %s", dir)
	}
	entries, err := afero.ReadDir(fu.fs, dir)
	if err != nil {
		return errors.Wrap(err, "afero.readdir")
	}
	for _, fi := range entries {
		err = fu.fs.RemoveAll(filepath.Join(dir, fi.Name()))
		if err != nil {
			return errors.Wrap(err, "fs.removeall")
		}
	}
	logrus.Debugf("fileutil: cleandirectory: %s: %d entries removed", dir, len(entries))
	return nil
}

// DeleteDirectory removes dir and everything in it
func (fu *FileUtility) DeleteDirectory(dir string) error {
	err := fu.CleanDirectory(dir)
	if err != nil {
		return errors.Wrap(err, "cleandirectory")
	}
	err = fu.fs.RemoveAll(dir)
	if err != nil {
		return errors.Wrap(err, "fs.removeall")
	}
	logrus.Debugf("fileutil: deletedirectory: %s deleted", dir)
	return nil
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
