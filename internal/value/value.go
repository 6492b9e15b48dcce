// Package value holds the plain representation handed to callbacks: ordered
// objects, slices for arrays and scalars as decoded.
package value

import (
	gojson "github.com/goccy/go-json"
)

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Object keeps members in document order. Duplicate keys are preserved.
type Object []Member

// MarshalJSON encodes members in order without HTML escaping.
func (o Object) MarshalJSON() ([]byte, error) {
	return Append(nil, o, false)
}

// Append encodes v as JSON onto dst. Objects keep member order and are
// written directly rather than through a Marshaler, so escapeHTML applies to
// every string at any depth.
func Append(dst []byte, v any, escapeHTML bool) ([]byte, error) {
	switch v := v.(type) {
	case Object:
		dst = append(dst, '{')
		for i, m := range v {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = Append(dst, m.Key, escapeHTML); err != nil {
				return nil, err
			}
			dst = append(dst, ':')
			if dst, err = Append(dst, m.Value, escapeHTML); err != nil {
				return nil, err
			}
		}
		return append(dst, '}'), nil
	case []any:
		dst = append(dst, '[')
		for i, e := range v {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = Append(dst, e, escapeHTML); err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	}

	var (
		b   []byte
		err error
	)
	if escapeHTML {
		b, err = gojson.Marshal(v)
	} else {
		b, err = gojson.MarshalNoEscape(v)
	}
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}
