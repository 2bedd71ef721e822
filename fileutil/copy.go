package fileutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

type transferFunc func(src, dst string) error

// Copy copies a file, a wildcard set or the files of a directory.
// It returns the absolute destination paths.
func (fu *FileUtility) Copy(src, dest string) ([]string, error) {
	return fu.transfer("copy", src, dest, fu.copyFile)
}

// CopyAll runs Copy for each source and concatenates the results
func (fu *FileUtility) CopyAll(srcs []string, dest string) ([]string, error) {
	return eachDest(srcs, dest, fu.Copy)
}

// Move moves a file, a wildcard set or the files of a directory.
// It returns the destination paths.
func (fu *FileUtility) Move(src, dest string) ([]string, error) {
	return fu.transfer("move", src, dest, fu.moveFile)
}

// MoveAll runs Move for each source and concatenates the results
func (fu *FileUtility) MoveAll(srcs []string, dest string) ([]string, error) {
	return eachDest(srcs, dest, fu.Move)
}

// Delete removes a file or every file matching a wildcard.
// Directories are refused. It returns the deleted paths.
func (fu *FileUtility) Delete(src string) ([]string, error) {
	if HasWildcard(FileName(src)) {
		matches, err := matchEntries(fu.fs, parentDir(src), FileName(src), true)
		if err != nil {
			return []string{}, errors.Wrapf(err, "delete: %s", src)
		}
		logrus.Infof("fileutil: delete: wildcard source %s: %d files", src, len(matches))
		deleted := make([]string, 0, len(matches))
		for _, fi := range matches {
			name := filepath.Join(parentDir(src), fi.Name())
			err = fu.fs.Remove(name)
			if err != nil {
				return deleted, errors.Wrap(err, "fs.remove")
			}
			deleted = append(deleted, absPath(name))
			logrus.Infof("fileutil: file %s deleted", name)
		}
		return deleted, nil
	}

	isDir, _ := afero.IsDir(fu.fs, src)
	if isDir {
		logrus.Errorf("fileutil: delete not allowed with directory source %s", src)
		return []string{}, errors.Wrapf(ErrDeleteDirectory, "delete: %s", src)
	}
	err := fu.fs.Remove(src)
	if err != nil {
		return []string{}, errors.Wrap(err, "fs.remove")
	}
	logrus.Infof("fileutil: file %s deleted", src)
	return []string{absPath(src)}, nil
}

// DeleteAll runs Delete for each source and concatenates the results
func (fu *FileUtility) DeleteAll(srcs []string) ([]string, error) {
	return each(srcs, fu.Delete)
}

func eachDest(srcs []string, dest string, fn func(src, dest string) ([]string, error)) ([]string, error) {
	all := make([]string, 0, len(srcs))
	for _, src := range srcs {
		list, err := fn(src, dest)
		all = append(all, list...)
		if err != nil {
			return all, err
		}
	}
	return all, nil
}

// transfer applies the shared copy/move policy
func (fu *FileUtility) transfer(op, src, dest string, fn transferFunc) ([]string, error) {
	destIsDir, _ := afero.IsDir(fu.fs, dest)

	if HasWildcard(FileName(src)) {
		if !destIsDir {
			logrus.Errorf("fileutil: %s with wildcard source %s: destination %s is not a directory", op, src, dest)
			return []string{}, errors.Wrapf(ErrWildcardDest, "%s: %s -> %s", op, src, dest)
		}
		matches, err := matchEntries(fu.fs, parentDir(src), FileName(src), true)
		if err != nil {
			return []string{}, errors.Wrapf(err, "%s: %s", op, src)
		}
		logrus.Infof("fileutil: %s: wildcard source %s to directory %s: %d files", op, src, dest, len(matches))
		return fu.toDirectory(op, parentDir(src), matches, dest, fn)
	}

	srcIsDir, _ := afero.IsDir(fu.fs, src)
	if srcIsDir {
		if !destIsDir {
			logrus.Errorf("fileutil: %s with directory source %s: destination %s is not a directory", op, src, dest)
			return []string{}, errors.Wrapf(ErrDirectoryDest, "%s: %s -> %s", op, src, dest)
		}
		matches, err := matchEntries(fu.fs, src, "*", true)
		if err != nil {
			return []string{}, errors.Wrapf(err, "%s: %s", op, src)
		}
		logrus.Infof("fileutil: %s: directory source %s to directory %s: %d files", op, src, dest, len(matches))
		return fu.toDirectory(op, src, matches, dest, fn)
	}

	dst := dest
	if destIsDir {
		dst = filepath.Join(dest, FileName(src))
	}
	err := fn(src, dst)
	if err != nil {
		return []string{}, err
	}
	logrus.Infof("fileutil: %s: file %s to %s", op, src, dst)
	return []string{absPath(dst)}, nil
}

func (fu *FileUtility) toDirectory(op, dir string, files []os.FileInfo, dest string, fn transferFunc) ([]string, error) {
	done := make([]string, 0, len(files))
	for _, fi := range files {
		src := filepath.Join(dir, fi.Name())
		dst := filepath.Join(dest, fi.Name())
		err := fn(src, dst)
		if err != nil {
			return done, err
		}
		done = append(done, absPath(dst))
		logrus.Infof("fileutil: %s: file %s to %s", op, src, dst)
	}
	return done, nil
}

// copyFile copies one file, keeping its mode and modification time.
// An existing destination file is overwritten.
func (fu *FileUtility) copyFile(src, dst string) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return errors.Errorf("copy: source and destination are the same: %s", src)
	}
	in, err := fu.fs.Open(src)
	if err != nil {
		return errors.Wrap(err, "fs.open")
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return errors.Wrap(err, "in.stat")
	}
	if fi.IsDir() {
		return errors.Errorf("copy: source is a directory: %s", src)
	}

	err = fu.fs.MkdirAll(filepath.Dir(dst), 0755)
	if err != nil {
		return errors.Wrap(err, "fs.mkdirall")
	}
	out, err := fu.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return errors.Wrap(err, "fs.openfile")
	}
	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return errors.Wrap(err, "io.copy")
	}
	err = out.Close()
	if err != nil {
		return errors.Wrap(err, "out.close")
	}
	err = fu.fs.Chtimes(dst, fi.ModTime(), fi.ModTime())
	if err != nil {
		return errors.Wrap(err, "fs.chtimes")
	}
	logrus.Debugf("fileutil: copied %s (%s)", src, humanize.Bytes(uint64(n)))
	return nil
}

// moveFile renames one file. It falls back to copy and remove
// when the rename fails, such as across devices.
func (fu *FileUtility) moveFile(src, dst string) error {
	if fu.exists(dst) {
		return errors.Wrapf(ErrExists, "move: %s", dst)
	}
	fi, err := fu.fs.Stat(src)
	if err != nil {
		return errors.Wrap(err, "fs.stat")
	}
	if fi.IsDir() {
		return errors.Errorf("move: source is a directory: %s", src)
	}
	err = fu.fs.MkdirAll(filepath.Dir(dst), 0755)
	if err != nil {
		return errors.Wrap(err, "fs.mkdirall")
	}
	err = fu.fs.Rename(src, dst)
	if err == nil {
		return nil
	}
	logrus.Debugf("fileutil: rename %s failed, copying: %s", src, err)
	err = fu.copyFile(src, dst)
	if err != nil {
		return errors.Wrap(err, "copyfile")
	}
	err = fu.fs.Remove(src)
	if err != nil {
		return errors.Wrap(err, "fs.remove")
	}
	return nil
}

func (fu *FileUtility) exists(name string) bool {
	ok, err := afero.Exists(fu.fs, name)
	return ok && err == nil
}
