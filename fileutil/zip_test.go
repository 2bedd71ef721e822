package fileutil

import (
	"archive/zip"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipNames(t *testing.T, fu *FileUtility, name string) []string {
	t.Helper()
	zr, closer, err := fu.openZip(name)
	require.NoError(t, err)
	defer closer.Close()
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestZipAppend(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	fu, _ := newTestUtility(t)

	name, err := fu.Zip("/in/a.csv")
	require.NoError(err)
	assert.Equal("/in/a.csv.zip", name)
	assert.Equal([]string{"a.csv"}, zipNames(t, fu, name))

	require.NoError(fu.ZipTo("/in/b.csv", name))
	assert.Equal([]string{"a.csv", "b.csv"}, zipNames(t, fu, name))

	// same name replaces the entry
	require.NoError(afero.WriteFile(fu.Fs(), "/in/a.csv", []byte("alpha two"), 0644))
	require.NoError(fu.ZipFiles([]string{"/in/a.csv", "/in/sub/d.csv"}, name))
	assert.Equal([]string{"a.csv", "b.csv", "d.csv"}, zipNames(t, fu, name))

	list, err := fu.Unzip(name, "/x")
	require.NoError(err)
	assert.Len(list, 3)
	body, err := afero.ReadFile(fu.Fs(), "/x/a.csv")
	require.NoError(err)
	assert.Equal("alpha two", string(body))

	// no temp files left behind
	left, err := afero.Glob(fu.Fs(), "/in/*.tmp")
	require.NoError(err)
	assert.Empty(left)

	err = fu.ZipTo("/in/sub", "/in/sub.zip")
	assert.Error(err)
}

func TestZipDirectory(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	fu, _ := newTestUtility(t)

	name, err := fu.ZipDirectory("/in/", false)
	require.NoError(err)
	assert.Equal("/in.zip", name)
	assert.Equal([]string{"a.csv", "b.csv", "c.txt"}, zipNames(t, fu, name))

	require.NoError(fu.fs.Remove(name))
	name, err = fu.ZipDirectory("/in", true)
	require.NoError(err)
	assert.Equal([]string{"a.csv", "b.csv", "c.txt", "sub/", "sub/d.csv"}, zipNames(t, fu, name))

	list, err := fu.Unzip(name, "/restore")
	require.NoError(err)
	assert.Len(list, 4)
	body, err := afero.ReadFile(fu.Fs(), "/restore/sub/d.csv")
	require.NoError(err)
	assert.Equal("delta", string(body))

	_, err = fu.ZipDirectory("/in/a.csv", false)
	assert.ErrorIs(err, ErrNotDirectory)
}

func TestUnzipRejectsEscape(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	fu, _ := newTestUtility(t)

	f, err := fu.Fs().Create("/bad.zip")
	require.NoError(err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("../evil.txt")
	require.NoError(err)
	_, err = w.Write([]byte("nope"))
	require.NoError(err)
	require.NoError(zw.Close())
	require.NoError(f.Close())

	_, err = fu.Unzip("/bad.zip", "/x")
	assert.Error(err)
	ok, _ := afero.Exists(fu.Fs(), "/evil.txt")
	assert.False(ok)

	_, err = fu.Unzip("/in/a.csv", "/x")
	assert.Error(err)
}

func TestUnzipToCurrentAndRoot(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	fu, _ := newTestUtility(t)

	name, err := fu.Zip("/in/a.csv")
	require.NoError(err)

	for _, dest := range []string{".", "", "/", "/out/"} {
		list, err := fu.Unzip(name, dest)
		require.NoError(err, dest)
		assert.Len(list, 1, dest)
		ok, err := afero.Exists(fu.Fs(), list[0])
		require.NoError(err)
		assert.True(ok, list[0])
	}
	assert.Equal([]string{"a.csv"}, zipNames(t, fu, name))
	ok, _ := afero.Exists(fu.Fs(), "/out/a.csv")
	assert.True(ok)
}

func TestBelow(t *testing.T) {
	assert := assert.New(t)
	assert.True(below(".", "a.txt"))
	assert.True(below("/", "/a.txt"))
	assert.True(below("/x", "/x"))
	assert.True(below("/x", "/x/..y"))
	assert.False(below("/x", "/evil.txt"))
	assert.False(below(".", "../a.txt"))
	assert.False(below("/x", "/"))
}
