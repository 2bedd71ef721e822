package fileutil

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUtility(t *testing.T) (*FileUtility, *clock.Mock) {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/in/a.csv":     "alpha",
		"/in/b.csv":     "bravo",
		"/in/c.txt":     "charlie",
		"/in/sub/d.csv": "delta",
	}
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0644))
	}
	require.NoError(t, fs.MkdirAll("/out", 0755))
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 3, 15, 10, 20, 30, 0, time.Local))
	return NewWith(fs, mock), mock
}

func TestPathParts(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("/a/b/", FilePath("/a/b/c.txt"))
	assert.Equal("", FilePath("c.txt"))
	assert.Equal("c.txt", FileName("/a/b/c.txt"))
	assert.Equal("txt", FileExtension("/a/b/c.txt"))
	assert.Equal("", FileExtension("/a/b/README"))
	assert.Equal("c", FileBaseName("/a/b/c.txt"))
	assert.Equal("c.tar", FileBaseName("/a/b/c.tar.gz"))
	assert.Equal("README", FileBaseName("README"))
}

func TestWildcards(t *testing.T) {
	assert := assert.New(t)
	assert.True(HasWildcard("*.csv"))
	assert.True(HasWildcard("report_??.txt"))
	assert.False(HasWildcard("orders.csv"))

	type test struct {
		pattern string
		name    string
		want    bool
	}
	tests := []test{
		{"*.csv", "a.csv", true},
		{"*.csv", "a.CSV", false},
		{"report_??.txt", "report_01.txt", true},
		{"report_??.txt", "report_1.txt", false},
		{"data[1].csv", "data[1].csv", true},
		{"{a}.txt", "{a}.txt", true},
	}
	for _, tc := range tests {
		got, err := MatchName(tc.pattern, tc.name)
		assert.NoError(err)
		assert.Equal(tc.want, got, "%s ~ %s", tc.pattern, tc.name)
	}
}

func TestOnlyOneFile(t *testing.T) {
	assert := assert.New(t)
	f, err := OnlyOneFile([]string{"/in/a.csv"}, "orders")
	assert.NoError(err)
	assert.Equal("/in/a.csv", f)

	_, err = OnlyOneFile([]string{"/in/a.csv", "/in/b.csv"}, "orders")
	assert.ErrorIs(err, ErrOnlyOne)
	assert.Contains(err.Error(), "only one file for orders: there are 2 files")

	_, err = OnlyOneFile(nil, "orders")
	assert.ErrorIs(err, ErrOnlyOne)
}

func TestDir(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	fu, mock := newTestUtility(t)

	list, err := fu.Dir("/in/*.csv", false)
	require.NoError(err)
	assert.Equal([]string{"/in/a.csv", "/in/b.csv"}, list)

	// directories match too
	list, err = fu.Dir("/in/*", false)
	require.NoError(err)
	assert.Len(list, 4)
	assert.Contains(list, "/in/sub")

	old := mock.Now().Add(-time.Hour)
	require.NoError(fu.Fs().Chtimes("/in/a.csv", old, old))
	newer := mock.Now()
	require.NoError(fu.Fs().Chtimes("/in/b.csv", newer, newer))
	list, err = fu.Dir("/in/*.csv", true)
	require.NoError(err)
	assert.Equal([]string{"/in/b.csv", "/in/a.csv"}, list)

	_, err = fu.Dir("/missing/*.csv", false)
	assert.Error(err)
}

func TestFileExists(t *testing.T) {
	assert := assert.New(t)
	fu, _ := newTestUtility(t)
	assert.True(fu.FileExists("/in/a.csv"))
	assert.False(fu.FileExists("/in/sub"))
	assert.False(fu.FileExists("/in/zzz.csv"))
}

func TestCopyWildcard(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	fu, _ := newTestUtility(t)

	list, err := fu.Copy("/in/*.csv", "/out")
	require.NoError(err)
	assert.Equal([]string{"/out/a.csv", "/out/b.csv"}, list)
	body, err := afero.ReadFile(fu.Fs(), "/out/b.csv")
	require.NoError(err)
	assert.Equal("bravo", string(body))
	// sources stay
	assert.True(fu.FileExists("/in/a.csv"))

	_, err = fu.Copy("/in/*.csv", "/out/new.csv")
	assert.ErrorIs(err, ErrWildcardDest)
	_, err = fu.Copy("/in/*.csv", "/out/a.csv")
	assert.ErrorIs(err, ErrWildcardDest)
}

func TestCopyDirectorySource(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	fu, _ := newTestUtility(t)

	list, err := fu.Copy("/in", "/out")
	require.NoError(err)
	assert.Equal([]string{"/out/a.csv", "/out/b.csv", "/out/c.txt"}, list)
	assert.False(fu.FileExists("/out/d.csv"))
	ok, err := afero.DirExists(fu.Fs(), "/out/sub")
	require.NoError(err)
	assert.False(ok)

	_, err = fu.Copy("/in", "/out/a.csv")
	assert.ErrorIs(err, ErrDirectoryDest)
}

func TestCopySingle(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	fu, _ := newTestUtility(t)

	list, err := fu.Copy("/in/a.csv", "/out")
	require.NoError(err)
	assert.Equal([]string{"/out/a.csv"}, list)

	// exact destination with new parents
	list, err = fu.Copy("/in/a.csv", "/out/deep/renamed.csv")
	require.NoError(err)
	assert.Equal([]string{"/out/deep/renamed.csv"}, list)

	// overwrite
	list, err = fu.Copy("/in/b.csv", "/out/a.csv")
	require.NoError(err)
	assert.Equal([]string{"/out/a.csv"}, list)
	body, err := afero.ReadFile(fu.Fs(), "/out/a.csv")
	require.NoError(err)
	assert.Equal("bravo", string(body))

	_, err = fu.Copy("/in/a.csv", "/in/a.csv")
	assert.Error(err)
	_, err = fu.Copy("/in/missing.csv", "/out")
	assert.Error(err)
}

func TestCopyAll(t *testing.T) {
	assert := assert.New(t)
	fu, _ := newTestUtility(t)
	list, err := fu.CopyAll([]string{"/in/c.txt", "/in/*.csv"}, "/out")
	assert.NoError(err)
	assert.Equal([]string{"/out/c.txt", "/out/a.csv", "/out/b.csv"}, list)
}

func TestMove(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	fu, _ := newTestUtility(t)

	list, err := fu.Move("/in/*.csv", "/out")
	require.NoError(err)
	assert.Equal([]string{"/out/a.csv", "/out/b.csv"}, list)
	assert.False(fu.FileExists("/in/a.csv"))
	assert.True(fu.FileExists("/out/a.csv"))

	require.NoError(afero.WriteFile(fu.Fs(), "/in/a.csv", []byte("again"), 0644))
	_, err = fu.Move("/in/a.csv", "/out")
	assert.ErrorIs(err, ErrExists)
	_, err = fu.Move("/in/a.csv", "/out/b.csv")
	assert.ErrorIs(err, ErrExists)

	list, err = fu.MoveAll([]string{"/in/c.txt"}, "/out/renamed.txt")
	require.NoError(err)
	assert.Equal([]string{"/out/renamed.txt"}, list)
	assert.False(fu.FileExists("/in/c.txt"))
}

func TestDelete(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	fu, _ := newTestUtility(t)

	_, err := fu.Delete("/in/sub")
	assert.ErrorIs(err, ErrDeleteDirectory)
	assert.True(fu.FileExists("/in/sub/d.csv"))

	list, err := fu.Delete("/in/*.csv")
	require.NoError(err)
	assert.Equal([]string{"/in/a.csv", "/in/b.csv"}, list)
	assert.False(fu.FileExists("/in/a.csv"))
	assert.True(fu.FileExists("/in/c.txt"))

	list, err = fu.DeleteAll([]string{"/in/c.txt"})
	require.NoError(err)
	assert.Equal([]string{"/in/c.txt"}, list)

	_, err = fu.Delete("/in/c.txt")
	assert.Error(err)
}

func TestDirectories(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	fu, _ := newTestUtility(t)

	dir, err := fu.MakeDirectory("/new/a/b")
	require.NoError(err)
	assert.Equal("/new/a/b", dir)
	_, err = fu.MakeDirectory("/new/a/b")
	assert.NoError(err)
	_, err = fu.MakeDirectory("/in/a.csv")
	assert.ErrorIs(err, ErrNotDirectory)

	require.NoError(fu.CleanDirectory("/in"))
	ok, err := afero.IsEmpty(fu.Fs(), "/in")
	require.NoError(err)
	assert.True(ok)
	assert.ErrorIs(fu.CleanDirectory("/missing"), ErrNotDirectory)

	require.NoError(fu.DeleteDirectory("/new"))
	ok, err = afero.Exists(fu.Fs(), "/new")
	require.NoError(err)
	assert.False(ok)
}

func TestArchive(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	fu, _ := newTestUtility(t)

	list, err := fu.Archive("/in/a.csv")
	require.NoError(err)
	assert.Equal([]string{"/in/2024-03/2024-03-15/a.csv"}, list)
	assert.False(fu.FileExists("/in/a.csv"))

	list, err = fu.ArchiveAll([]string{"/in/*.txt"})
	require.NoError(err)
	assert.Equal([]string{"/in/2024-03/2024-03-15/c.txt"}, list)
}

func TestStamps(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	fu, mock := newTestUtility(t)

	assert.Equal("20240315", fu.DateString())
	assert.Equal("20240315-102030", fu.DateTimeString())
	assert.Equal("2024-03", fu.FormattedNow("yyyy-MM"))
	assert.Equal("/in/a.20240315.csv", StampedName("/in/a.csv", "20240315"))
	assert.Equal("/in/README.20240315", StampedName("/in/README", "20240315"))

	name, err := fu.TimeStamp("/in/a.csv")
	require.NoError(err)
	assert.Equal("/in/a.20240315-102030.csv", name)
	assert.True(fu.FileExists(name))

	name, err = fu.DateStamp("/in/b.csv")
	require.NoError(err)
	assert.Equal("/in/b.20240315.csv", name)

	// the stamped name already exists
	require.NoError(afero.WriteFile(fu.Fs(), "/in/b.csv", []byte("bravo"), 0644))
	_, err = fu.DateStamp("/in/b.csv")
	assert.ErrorIs(err, ErrRename)
	_, err = fu.DateStamp("/in/sub")
	assert.ErrorIs(err, ErrRename)

	mock.Add(24 * time.Hour)
	list, err := fu.ArchiveAndDateStamp("/in/b.csv")
	require.NoError(err)
	assert.Equal([]string{"/in/2024-03/2024-03-16/b.20240316.csv"}, list)

	list, err = fu.ArchiveAndTimeStampAll([]string{"/in/c.txt"})
	require.NoError(err)
	assert.Equal([]string{"/in/2024-03/2024-03-16/c.20240316-102030.txt"}, list)
}
