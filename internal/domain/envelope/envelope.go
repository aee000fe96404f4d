// Package envelope decodes upstream REST list responses of the form
// {"<key>": [ ... ]} and coerces loosely typed JSON scalars the way GraphQL
// scalar serialization does.
package envelope

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// ErrMissing is returned when the expected top-level key is absent or null.
var ErrMissing = errors.New("envelope key missing")

// FieldError reports a value that could not be coerced into its field type.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Decode walks the top-level object in data and calls item for every element
// of the array stored under key. Other keys are skipped. A repeated key or
// trailing data after the object is an error.
func Decode(data []byte, key string, item func(d *jx.Decoder) error) error {
	var seen, found bool
	d := jx.DecodeBytes(data)
	if err := d.ObjBytes(func(d *jx.Decoder, k []byte) error {
		if string(k) != key {
			return d.Skip()
		}
		if seen {
			return errors.New("duplicate key")
		}
		seen = true
		if d.Next() == jx.Null {
			return d.Null()
		}
		found = true
		return d.Arr(item)
	}); err != nil {
		return errors.Wrapf(err, "decode %q", key)
	}
	if tt := d.Next(); tt != jx.Invalid {
		return errors.Errorf("decode %q: unexpected %s after object", key, tt)
	}
	if !found {
		return errors.Wrapf(ErrMissing, "decode %q", key)
	}
	return nil
}

// Object decodes a single JSON object, calling field for each key. Errors
// returned by field are annotated with the key.
func Object(d *jx.Decoder, field func(d *jx.Decoder, key string) error) error {
	if d.Next() == jx.Null {
		return errors.New("unexpected null object")
	}
	return d.ObjBytes(func(d *jx.Decoder, k []byte) error {
		key := string(k)
		if err := field(d, key); err != nil {
			return &FieldError{Field: key, Err: err}
		}
		return nil
	})
}

// String reads a nullable String. Numbers keep their literal text and
// booleans become "true"/"false", so numeric upstream ids survive intact.
func String(d *jx.Decoder) (*string, error) {
	var s string
	switch tt := d.Next(); tt {
	case jx.Null:
		return nil, d.Null()
	case jx.String:
		v, err := d.Str()
		if err != nil {
			return nil, err
		}
		s = v
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return nil, err
		}
		s = string(n)
	case jx.Bool:
		v, err := d.Bool()
		if err != nil {
			return nil, err
		}
		s = strconv.FormatBool(v)
	default:
		return nil, errors.Errorf("cannot represent %s as String", tt)
	}
	return &s, nil
}

// Int reads a nullable 32-bit Int. Integral numbers, numeric strings and
// booleans are accepted.
func Int(d *jx.Decoder) (*int32, error) {
	var raw string
	switch tt := d.Next(); tt {
	case jx.Null:
		return nil, d.Null()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return nil, err
		}
		raw = string(n)
	case jx.String:
		v, err := d.Str()
		if err != nil {
			return nil, err
		}
		raw = v
	case jx.Bool:
		v, err := d.Bool()
		if err != nil {
			return nil, err
		}
		var i int32
		if v {
			i = 1
		}
		return &i, nil
	default:
		return nil, errors.Errorf("cannot represent %s as Int", tt)
	}
	i, err := parseInt32(raw)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func parseInt32(raw string) (int32, error) {
	if v, err := strconv.ParseInt(raw, 10, 32); err == nil {
		return int32(v), nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, errors.Errorf("cannot represent %q as Int", raw)
	}
	return int32(f), nil
}

// Bool reads a nullable Boolean.
func Bool(d *jx.Decoder) (*bool, error) {
	switch tt := d.Next(); tt {
	case jx.Null:
		return nil, d.Null()
	case jx.Bool:
		v, err := d.Bool()
		if err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return nil, errors.Errorf("cannot represent %s as Boolean", tt)
	}
}
