package fileutil

// std is used by the package level functions
var std = New()

// Dir lists entries matching pattern. See FileUtility.Dir.
func Dir(pattern string, newestFirst bool) ([]string, error) {
	return std.Dir(pattern, newestFirst)
}

func FileExists(name string) bool { return std.FileExists(name) }

func Copy(src, dest string) ([]string, error) { return std.Copy(src, dest) }

func CopyAll(srcs []string, dest string) ([]string, error) { return std.CopyAll(srcs, dest) }

func Move(src, dest string) ([]string, error) { return std.Move(src, dest) }

func MoveAll(srcs []string, dest string) ([]string, error) { return std.MoveAll(srcs, dest) }

func Delete(src string) ([]string, error) { return std.Delete(src) }

func DeleteAll(srcs []string) ([]string, error) { return std.DeleteAll(srcs) }

func MakeDirectory(dir string) (string, error) { return std.MakeDirectory(dir) }

func CleanDirectory(dir string) error { return std.CleanDirectory(dir) }

func DeleteDirectory(dir string) error { return std.DeleteDirectory(dir) }

func Archive(src string) ([]string, error) { return std.Archive(src) }

func ArchiveAll(srcs []string) ([]string, error) { return std.ArchiveAll(srcs) }

func ArchiveAndTimeStamp(src string) ([]string, error) { return std.ArchiveAndTimeStamp(src) }

func ArchiveAndTimeStampAll(srcs []string) ([]string, error) {
	return std.ArchiveAndTimeStampAll(srcs)
}

func ArchiveAndDateStamp(src string) ([]string, error) { return std.ArchiveAndDateStamp(src) }

func ArchiveAndDateStampAll(srcs []string) ([]string, error) {
	return std.ArchiveAndDateStampAll(srcs)
}

func TimeStamp(src string) (string, error) { return std.TimeStamp(src) }

func DateStamp(src string) (string, error) { return std.DateStamp(src) }

func DateString() string { return std.DateString() }

func DateTimeString() string { return std.DateTimeString() }

func FormattedNow(pattern string) string { return std.FormattedNow(pattern) }

func Zip(name string) (string, error) { return std.Zip(name) }

func ZipTo(name, zipName string) error { return std.ZipTo(name, zipName) }

func ZipFiles(names []string, zipName string) error { return std.ZipFiles(names, zipName) }

func ZipDirectory(dir string, recursive bool) (string, error) {
	return std.ZipDirectory(dir, recursive)
}

func Unzip(zipName, destDir string) ([]string, error) { return std.Unzip(zipName, destDir) }
