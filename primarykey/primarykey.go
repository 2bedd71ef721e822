// Package primarykey compares, hashes and prints composite key structs by
// walking their fields, so key types don't need hand written methods.
package primarykey

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/pkg/errors"
)

// Equal reports whether a and b have the same type and field values.
// Unexported fields are compared too.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return cmp.Equal(a, b, cmp.Exporter(func(reflect.Type) bool { return true }))
}

// Hash returns a hash of the exported field values of v
func Hash(v any) (uint64, error) {
	h, err := hashstructure.Hash(v, hashstructure.FormatV2, nil)
	if err != nil {
		return 0, errors.Wrap(err, "hashstructure.hash")
	}
	return h, nil
}

// String renders v as Type{field:value field:value}.
// Unexported fields are included so two keys that are not Equal never
// print the same.
func String(v any) string {
	if v == nil {
		return "<nil>"
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return fmt.Sprintf("%T(nil)", v)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return fmt.Sprintf("%v", v)
	}
	rt := rv.Type()
	parts := make([]string, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		parts = append(parts, fmt.Sprintf("%s:%v", rt.Field(i).Name, rv.Field(i)))
	}
	return fmt.Sprintf("%s{%s}", rt.Name(), strings.Join(parts, " "))
}
