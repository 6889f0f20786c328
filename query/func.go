package query

import "github.com/creachadair/jwatch/value"

// Exists returns a selection that reports true if its argument satisfies the
// specified query. The arguments have the same constraints as Path.
func Exists(keys ...any) Selection {
	q := Path(keys...)
	return func(v value.Value) bool {
		_, err := q.eval(v)
		return err == nil
	}
}

// Is returns a selection that reports true if its argument is of type T.
func Is[T value.Value]() Selection {
	return func(v value.Value) bool { _, ok := v.(T); return ok }
}

// IsNot returns a selection that reports true if its argument is not of type T.
func IsNot[T value.Value]() Selection {
	return func(v value.Value) bool { _, ok := v.(T); return !ok }
}

// Filter constructs a selection from the given function. The resulting
// selection will discard any value whose type does not match T.
func Filter[T value.Value](f func(T) bool) Selection {
	return func(v value.Value) bool { w, ok := v.(T); return ok && f(w) }
}

// Text evaluates q against root and renders the result as text: a string is
// unquoted, and any other value is rendered as JSON.
func Text(root value.Value, q Query) (string, error) {
	v, err := q.eval(root)
	if err != nil {
		return "", err
	}
	if s, ok := v.(*value.String); ok {
		return s.Unquote(), nil
	}
	return v.JSON(), nil
}
