package segmap

import "reflect"

// isNilValue reports whether v is a nil pointer, interface, map, slice,
// channel, or function. spec §3 invariant 4 rejects nil keys and values
// outright, but Go generics only make "nil" meaningful for these kinds —
// an int or a plain struct can never be nil, so the check is always false
// for them and the validation compiles down to nothing of consequence.
func isNilValue[T any](v T) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		// v is an untyped nil boxed into an interface-typed T.
		return true
	}
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
