package fileutil

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/scalesql/groovyutil/datetime"
	"github.com/sirupsen/logrus"
)

// Archive moves src into <parent>/yyyy-MM/yyyy-MM-dd/ using today's date.
// src may be a wildcard. It returns the archived paths.
func (fu *FileUtility) Archive(src string) ([]string, error) {
	sub := filepath.FromSlash(fu.FormattedNow(datetime.ArchivePattern))
	dest := filepath.Join(FilePath(src), sub)
	logrus.Infof("fileutil: archive %s to %s", src, dest)

	_, err := fu.MakeDirectory(dest)
	if err != nil {
		return []string{}, errors.Wrap(err, "makedirectory")
	}
	return fu.Move(src, dest)
}

// ArchiveAll archives each source
func (fu *FileUtility) ArchiveAll(srcs []string) ([]string, error) {
	return each(srcs, fu.Archive)
}

// ArchiveAndTimeStamp time stamps src and then archives it
func (fu *FileUtility) ArchiveAndTimeStamp(src string) ([]string, error) {
	stamped, err := fu.TimeStamp(src)
	if err != nil {
		return []string{}, errors.Wrap(err, "timestamp")
	}
	archived, err := fu.Archive(stamped)
	if err != nil {
		return archived, errors.Wrap(err, "archive")
	}
	logrus.Infof("fileutil: archiveandtimestamp: original <%s> new <%v>", src, archived)
	return archived, nil
}

// ArchiveAndTimeStampAll runs ArchiveAndTimeStamp for each source
func (fu *FileUtility) ArchiveAndTimeStampAll(srcs []string) ([]string, error) {
	return each(srcs, fu.ArchiveAndTimeStamp)
}

// ArchiveAndDateStamp date stamps src and then archives it
func (fu *FileUtility) ArchiveAndDateStamp(src string) ([]string, error) {
	stamped, err := fu.DateStamp(src)
	if err != nil {
		return []string{}, errors.Wrap(err, "datestamp")
	}
	archived, err := fu.Archive(stamped)
	if err != nil {
		return archived, errors.Wrap(err, "archive")
	}
	logrus.Infof("fileutil: archiveanddatestamp: original <%s> new <%v>", src, archived)
	return archived, nil
}

// ArchiveAndDateStampAll runs ArchiveAndDateStamp for each source
func (fu *FileUtility) ArchiveAndDateStampAll(srcs []string) ([]string, error) {
	return each(srcs, fu.ArchiveAndDateStamp)
}

// TimeStamp renames dir/base.ext to dir/base.yyyyMMdd-HHmmss.ext
func (fu *FileUtility) TimeStamp(src string) (string, error) {
	return fu.stamp(src, fu.DateTimeString())
}

// DateStamp renames dir/base.ext to dir/base.yyyyMMdd.ext
func (fu *FileUtility) DateStamp(src string) (string, error) {
	return fu.stamp(src, fu.DateString())
}

// StampedName inserts token between the base name and the extension.
// A name without an extension gets the token as its extension.
func StampedName(src, token string) string {
	name := FilePath(src) + FileBaseName(src) + "." + token
	if ext := FileExtension(src); ext != "" {
		name += "." + ext
	}
	return name
}

func (fu *FileUtility) stamp(src, token string) (string, error) {
	stamped := StampedName(src, token)
	logrus.Infof("fileutil: source file %s stamped to %s", src, stamped)
	err := fu.rename(src, stamped)
	if err != nil {
		return "", err
	}
	return stamped, nil
}

// rename needs a regular file source and a target that doesn't exist
func (fu *FileUtility) rename(src, dst string) error {
	fi, err := fu.fs.Stat(src)
	if err != nil || !fi.Mode().IsRegular() || fu.exists(dst) {
		logrus.Errorf("fileutil: rename source file %s and dest file %s must be files", src, dst)
		return errors.Wrapf(ErrRename, "%s -> %s", src, dst)
	}
	return fu.moveFile(src, dst)
}

// DateString is today as yyyyMMdd
func (fu *FileUtility) DateString() string {
	return fu.FormattedNow(datetime.DatePattern)
}

// DateTimeString is now as yyyyMMdd-HHmmss
func (fu *FileUtility) DateTimeString() string {
	return fu.FormattedNow(datetime.DateTimePattern)
}

// FormattedNow formats the current time with a datetime pattern
func (fu *FileUtility) FormattedNow(pattern string) string {
	return datetime.Format(fu.clock.Now(), pattern)
}

func each(srcs []string, fn func(string) ([]string, error)) ([]string, error) {
	all := make([]string, 0, len(srcs))
	for _, src := range srcs {
		list, err := fn(src)
		all = append(all, list...)
		if err != nil {
			return all, err
		}
	}
	return all, nil
}
