// Package optional provides a JSON field wrapper that distinguishes an
// omitted field from one explicitly set to null.
package optional

import (
	"bytes"
	"encoding/json"
)

// Field records whether a JSON field was present in the payload and, when it
// was, whether it carried null or a concrete value. The zero value means the
// field was omitted.
type Field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// UnmarshalJSON implements json.Unmarshaler. It only runs for fields present
// in the payload, which is what makes the Set flag reliable.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(data, []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// Get returns the value and true when the field was set to a non-null value
func (f Field[T]) Get() (T, bool) {
	if !f.Set || f.Null {
		var zero T
		return zero, false
	}
	return f.Value, true
}
