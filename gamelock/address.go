package gamelock

import (
	"reflect"

	"github.com/segmentio/fasthash/fnv1a"
)

// addressOf returns a pointer-identity value for obj: for a pointer-typed
// obj, its runtime address; otherwise (a non-pointer is a caller error,
// since the table is keyed by object identity) a hash of its type name so
// distinct call sites at least do not collide silently.
func addressOf(obj any) uintptr {
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Ptr && !v.IsNil() {
		return v.Pointer()
	}
	if obj == nil {
		return 0
	}
	return uintptr(fnv1a.HashBytes64([]byte(reflect.TypeOf(obj).String())))
}
