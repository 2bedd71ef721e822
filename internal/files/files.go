// Package files locates resource files the way a classpath lookup would:
// next to the executable, in its config folder, then in the working directory.
package files

import (
	"os"
	"path/filepath"

	"github.com/kardianos/osext"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var fs = afero.NewOsFs()

// Find returns the fully qualified name of the first resource found.
// An absolute name is only checked for existence.
// If the file doesn't exist, it returns os.ErrNotExist
func Find(name string) (string, error) {
	if filepath.IsAbs(name) {
		return first(fs, []string{""}, name)
	}
	dirs := make([]string, 0, 3)
	wd, err := osext.ExecutableFolder()
	if err != nil {
		logrus.Debug(errors.Wrap(err, "osext.executablefolder"))
	} else {
		dirs = append(dirs, wd, filepath.Join(wd, "config"))
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "os.getwd")
	}
	dirs = append(dirs, cwd)
	return first(fs, dirs, name)
}

func first(fs afero.Fs, dirs []string, name string) (string, error) {
	for _, d := range dirs {
		fp := filepath.Join(d, name)
		fi, err := fs.Stat(fp)
		if err == nil && !fi.IsDir() {
			logrus.Tracef("files: found: %s", fp)
			return fp, nil
		}
	}
	return "", os.ErrNotExist
}
