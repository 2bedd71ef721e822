package ftputil

import (
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/scalesql/groovyutil/fileutil"
	"github.com/spf13/afero"
)

// Put uploads a local file or wildcard into the remote working directory
func (s *Session) Put(local string) ([]string, error) {
	return s.PutTo(local, "")
}

// PutTo uploads local to remote. An empty or directory remote keeps
// the local names. It returns the remote paths written.
func (s *Session) PutTo(local, remote string) ([]string, error) {
	if err := s.connected(); err != nil {
		return []string{}, err
	}
	sources, err := s.localMatches(s.local(local))
	if err != nil {
		return []string{}, err
	}
	if len(sources) == 0 {
		return []string{}, errors.Errorf("put: no such file: %s", local)
	}

	dest := s.rwd
	if remote != "" {
		dest = s.remote(remote)
	}
	toDir := s.remoteIsDir(dest)
	if len(sources) > 1 && !toDir {
		return []string{}, errors.Errorf("put: multiple sources: %s is not a directory", dest)
	}

	done := make([]string, 0, len(sources))
	for _, src := range sources {
		dst := dest
		if toDir {
			dst = path.Join(dest, filepath.Base(src))
		}
		n, err := s.upload(src, dst)
		if err != nil {
			return done, errors.Wrapf(err, "put: %s", src)
		}
		s.log.Infof("put %s to %s (%s)", src, dst, humanize.Bytes(uint64(n)))
		done = append(done, dst)
	}
	return done, nil
}

func (s *Session) upload(src, dst string) (int64, error) {
	in, err := s.fs.Open(src)
	if err != nil {
		return 0, errors.Wrap(err, "fs.open")
	}
	defer in.Close()
	out, err := s.client.Create(dst)
	if err != nil {
		return 0, errors.Wrap(err, "client.create")
	}
	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, errors.Wrap(err, "io.copy")
	}
	err = out.Close()
	if err != nil {
		return n, errors.Wrap(err, "out.close")
	}
	return n, nil
}

// Get downloads a remote file or wildcard into the local working directory
func (s *Session) Get(remote string) ([]string, error) {
	return s.GetTo(remote, "")
}

// GetTo downloads remote to local. An empty or directory local keeps
// the remote names. It returns the local paths written.
func (s *Session) GetTo(remote, local string) ([]string, error) {
	if err := s.connected(); err != nil {
		return []string{}, err
	}
	sources, err := s.remoteMatches(s.remote(remote), true)
	if err != nil {
		return []string{}, err
	}
	if len(sources) == 0 {
		return []string{}, errors.Errorf("get: no such file: %s", remote)
	}

	dest := s.lwd
	if local != "" {
		dest = s.local(local)
	}
	toDir, _ := afero.IsDir(s.fs, dest)
	if len(sources) > 1 && !toDir {
		return []string{}, errors.Errorf("get: multiple sources: %s is not a directory", dest)
	}

	done := make([]string, 0, len(sources))
	for _, src := range sources {
		dst := dest
		if toDir {
			dst = filepath.Join(dest, path.Base(src))
		}
		n, err := s.download(src, dst)
		if err != nil {
			return done, errors.Wrapf(err, "get: %s", src)
		}
		s.log.Infof("get %s to %s (%s)", src, dst, humanize.Bytes(uint64(n)))
		done = append(done, dst)
	}
	return done, nil
}

func (s *Session) download(src, dst string) (int64, error) {
	in, err := s.client.Open(src)
	if err != nil {
		return 0, errors.Wrap(err, "client.open")
	}
	defer in.Close()
	out, err := s.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, errors.Wrap(err, "fs.openfile")
	}
	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, errors.Wrap(err, "io.copy")
	}
	err = out.Close()
	if err != nil {
		return n, errors.Wrap(err, "out.close")
	}
	return n, nil
}

// Ls lists names. A directory lists its entries, a wildcard lists
// its matches and a file lists itself.
func (s *Session) Ls(spec string) ([]string, error) {
	if err := s.connected(); err != nil {
		return []string{}, err
	}
	target := s.remote(spec)
	if !fileutil.HasWildcard(path.Base(target)) && s.remoteIsDir(target) {
		target = path.Join(target, "*")
	}
	matches, err := s.remoteMatches(target, false)
	if err != nil {
		return []string{}, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, path.Base(m))
	}
	s.log.Debugf("ls %s: %d entries", spec, len(names))
	return names, nil
}

// Rm removes a remote file or every file matching a wildcard
func (s *Session) Rm(remote string) ([]string, error) {
	if err := s.connected(); err != nil {
		return []string{}, err
	}
	matches, err := s.remoteMatches(s.remote(remote), true)
	if err != nil {
		return []string{}, err
	}
	if len(matches) == 0 {
		return []string{}, errors.Errorf("rm: no such file: %s", remote)
	}
	removed := make([]string, 0, len(matches))
	for _, m := range matches {
		err = s.client.Remove(m)
		if err != nil {
			return removed, errors.Wrapf(err, "client.remove: %s", m)
		}
		s.log.Infof("rm %s", m)
		removed = append(removed, m)
	}
	return removed, nil
}

func (s *Session) remoteIsDir(p string) bool {
	fi, err := s.client.Stat(p)
	return err == nil && fi.IsDir()
}

// remoteMatches expands a wildcard in the last segment of an absolute
// remote path. Without a wildcard the path itself is returned if it exists.
func (s *Session) remoteMatches(p string, filesOnly bool) ([]string, error) {
	pattern := path.Base(p)
	if !fileutil.HasWildcard(pattern) {
		fi, err := s.client.Stat(p)
		if err != nil {
			return []string{}, errors.Wrapf(err, "client.stat: %s", p)
		}
		if filesOnly && fi.IsDir() {
			return []string{}, errors.Errorf("%s is a directory", p)
		}
		return []string{p}, nil
	}
	dir := path.Dir(p)
	entries, err := s.client.ReadDir(dir)
	if err != nil {
		return []string{}, errors.Wrapf(err, "client.readdir: %s", dir)
	}
	matches := make([]string, 0, len(entries))
	for _, fi := range entries {
		if fi.Name() == "." || fi.Name() == ".." {
			continue
		}
		if filesOnly && !fi.Mode().IsRegular() {
			continue
		}
		ok, err := fileutil.MatchName(pattern, fi.Name())
		if err != nil {
			return []string{}, err
		}
		if ok {
			matches = append(matches, path.Join(dir, fi.Name()))
		}
	}
	return matches, nil
}

// localMatches expands a local wildcard to regular files
func (s *Session) localMatches(p string) ([]string, error) {
	if !fileutil.HasWildcard(filepath.Base(p)) {
		return []string{p}, nil
	}
	fu := fileutil.NewWith(s.fs, nil)
	list, err := fu.Dir(p, false)
	if err != nil {
		return []string{}, errors.Wrap(err, "fileutil.dir")
	}
	files := make([]string, 0, len(list))
	for _, f := range list {
		if fu.FileExists(f) {
			files = append(files, f)
		}
	}
	return files, nil
}
