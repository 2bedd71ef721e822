package settings

import "bytes"

// FixSlashes escapes back slashes so Windows paths decode as written.
// Both C:\keys and C:\\keys end up as C:\\keys.
func FixSlashes(bb []byte) []byte {
	bb = bytes.ReplaceAll(bb, []byte(`\`), []byte(`\\`))
	bb = bytes.ReplaceAll(bb, []byte(`\\\\`), []byte(`\\`))
	return bb
}

func ptr[T any](v T) *T {
	return &v
}
