package fileutil

import (
	"archive/zip"
	"compress/flate"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// normalLevel matches the "normal" deflate level of common zip tools
const normalLevel = 5

// zipEntry is a file system path and its name inside the archive
type zipEntry struct {
	path string
	name string
	dir  bool
}

// Zip adds name to name.zip
func (fu *FileUtility) Zip(name string) (string, error) {
	zipName := name + ".zip"
	return zipName, fu.ZipTo(name, zipName)
}

// ZipTo adds name to zipName. An existing archive keeps its other entries.
func (fu *FileUtility) ZipTo(name, zipName string) error {
	return fu.ZipFiles([]string{name}, zipName)
}

// ZipFiles adds the files to zipName without their folders
func (fu *FileUtility) ZipFiles(names []string, zipName string) error {
	entries := make([]zipEntry, 0, len(names))
	for _, n := range names {
		isDir, _ := afero.IsDir(fu.fs, n)
		if isDir {
			return errors.Errorf("zip: %s is a directory, use zipdirectory", n)
		}
		entries = append(entries, zipEntry{path: n, name: FileName(n)})
	}
	n, err := fu.writeZip(zipName, entries)
	if err != nil {
		return err
	}
	logrus.Infof("fileutil: zip: %d files added to %s (%s)", len(entries), zipName, humanize.Bytes(uint64(n)))
	return nil
}

// ZipDirectory zips a directory into <dir>.zip beside it.
// Only the files directly in dir are added unless recursive is set.
// Entry names are relative to dir. It returns the name of the zip file.
func (fu *FileUtility) ZipDirectory(dir string, recursive bool) (string, error) {
	isDir, _ := afero.IsDir(fu.fs, dir)
	if !isDir {
		logrus.Errorf("fileutil: zipdirectory: %s is not a directory", dir)
		return "", errors.Wrapf(ErrNotDirectory, "zipdirectory: %s", dir)
	}
	root := strings.TrimRight(dir, "/"+string(filepath.Separator))
	zipName := root + ".zip"

	entries := make([]zipEntry, 0)
	if recursive {
		err := afero.Walk(fu.fs, dir, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return errors.Wrap(err, "filepath.rel")
			}
			if rel == "." {
				return nil
			}
			e := zipEntry{path: p, name: filepath.ToSlash(rel), dir: fi.IsDir()}
			if e.dir {
				e.name += "/"
			}
			entries = append(entries, e)
			return nil
		})
		if err != nil {
			return zipName, errors.Wrap(err, "afero.walk")
		}
	} else {
		files, err := matchEntries(fu.fs, dir, "*", true)
		if err != nil {
			return zipName, errors.Wrap(err, "matchentries")
		}
		for _, fi := range files {
			entries = append(entries, zipEntry{path: filepath.Join(dir, fi.Name()), name: fi.Name()})
		}
	}

	n, err := fu.writeZip(zipName, entries)
	if err != nil {
		return zipName, err
	}
	logrus.Infof("fileutil: zipdirectory: %s added to %s: %d entries (%s)", dir, zipName, len(entries), humanize.Bytes(uint64(n)))
	return zipName, nil
}

// writeZip writes entries plus any existing entries of zipName to a temp
// file and then replaces zipName. It returns the uncompressed bytes added.
func (fu *FileUtility) writeZip(zipName string, entries []zipEntry) (int64, error) {
	replaced := make(map[string]bool, len(entries))
	for _, e := range entries {
		replaced[e.name] = true
	}

	tmpName := zipName + "." + uuid.NewV4().String() + ".tmp"
	tmp, err := fu.fs.Create(tmpName)
	if err != nil {
		return 0, errors.Wrap(err, "fs.create")
	}
	defer func() {
		// only left behind on failure
		_ = fu.fs.Remove(tmpName)
	}()

	zw := zip.NewWriter(tmp)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, normalLevel)
	})

	existed := fu.exists(zipName)
	if existed {
		err = fu.copyZipEntries(zw, zipName, replaced)
		if err != nil {
			tmp.Close()
			return 0, err
		}
	}

	var total int64
	for _, e := range entries {
		n, err := fu.addZipEntry(zw, e)
		if err != nil {
			tmp.Close()
			return total, errors.Wrapf(err, "add: %s", e.path)
		}
		total += n
	}
	err = zw.Close()
	if err != nil {
		tmp.Close()
		return total, errors.Wrap(err, "zw.close")
	}
	err = tmp.Close()
	if err != nil {
		return total, errors.Wrap(err, "tmp.close")
	}
	if existed {
		err = fu.fs.Remove(zipName)
		if err != nil {
			return total, errors.Wrap(err, "fs.remove")
		}
	}
	err = fu.fs.Rename(tmpName, zipName)
	if err != nil {
		return total, errors.Wrap(err, "fs.rename")
	}
	return total, nil
}

func (fu *FileUtility) copyZipEntries(zw *zip.Writer, zipName string, skip map[string]bool) error {
	zr, closer, err := fu.openZip(zipName)
	if err != nil {
		return err
	}
	defer closer.Close()
	for _, f := range zr.File {
		if skip[f.Name] {
			continue
		}
		err = zw.Copy(f)
		if err != nil {
			return errors.Wrapf(err, "zw.copy: %s", f.Name)
		}
	}
	return nil
}

func (fu *FileUtility) addZipEntry(zw *zip.Writer, e zipEntry) (int64, error) {
	fi, err := fu.fs.Stat(e.path)
	if err != nil {
		return 0, errors.Wrap(err, "fs.stat")
	}
	hdr, err := zip.FileInfoHeader(fi)
	if err != nil {
		return 0, errors.Wrap(err, "zip.fileinfoheader")
	}
	hdr.Name = e.name
	if e.dir {
		hdr.Method = zip.Store
		_, err = zw.CreateHeader(hdr)
		return 0, errors.Wrap(err, "zw.createheader")
	}
	hdr.Method = zip.Deflate
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return 0, errors.Wrap(err, "zw.createheader")
	}
	in, err := fu.fs.Open(e.path)
	if err != nil {
		return 0, errors.Wrap(err, "fs.open")
	}
	defer in.Close()
	n, err := io.Copy(w, in)
	if err != nil {
		return n, errors.Wrap(err, "io.copy")
	}
	return n, nil
}

func (fu *FileUtility) openZip(zipName string) (*zip.Reader, io.Closer, error) {
	f, err := fu.fs.Open(zipName)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fs.open")
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(err, "f.stat")
	}
	zr, err := zip.NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrapf(err, "zip.newreader: %s", zipName)
	}
	return zr, f, nil
}

// Unzip extracts every entry of zipName below destDir.
// It returns the extracted file paths.
func (fu *FileUtility) Unzip(zipName, destDir string) ([]string, error) {
	zr, closer, err := fu.openZip(zipName)
	if err != nil {
		return []string{}, err
	}
	defer closer.Close()

	root := filepath.Clean(destDir)
	extracted := make([]string, 0, len(zr.File))
	var total int64
	for _, f := range zr.File {
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if !below(root, target) {
			return extracted, errors.Errorf("unzip: illegal entry %q in %s", f.Name, zipName)
		}
		if f.FileInfo().IsDir() {
			err = fu.fs.MkdirAll(target, 0755)
			if err != nil {
				return extracted, errors.Wrap(err, "fs.mkdirall")
			}
			continue
		}
		n, err := fu.extract(f, target)
		if err != nil {
			return extracted, errors.Wrapf(err, "extract: %s", f.Name)
		}
		total += n
		extracted = append(extracted, target)
	}
	logrus.Infof("fileutil: unzip: %s to %s directory: %d files (%s)", zipName, destDir, len(extracted), humanize.Bytes(uint64(total)))
	return extracted, nil
}

// below reports whether target is root or inside it
func below(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (fu *FileUtility) extract(f *zip.File, target string) (int64, error) {
	err := fu.fs.MkdirAll(filepath.Dir(target), 0755)
	if err != nil {
		return 0, errors.Wrap(err, "fs.mkdirall")
	}
	rc, err := f.Open()
	if err != nil {
		return 0, errors.Wrap(err, "f.open")
	}
	defer rc.Close()
	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}
	out, err := fu.fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return 0, errors.Wrap(err, "fs.openfile")
	}
	n, err := io.Copy(out, rc)
	if err != nil {
		out.Close()
		return n, errors.Wrap(err, "io.copy")
	}
	err = out.Close()
	if err != nil {
		return n, errors.Wrap(err, "out.close")
	}
	if !f.Modified.IsZero() {
		_ = fu.fs.Chtimes(target, f.Modified, f.Modified)
	}
	return n, nil
}
