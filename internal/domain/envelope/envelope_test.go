package envelope

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectStrings(t *testing.T, data, key string) ([]string, error) {
	t.Helper()
	var out []string
	err := Decode([]byte(data), key, func(d *jx.Decoder) error {
		s, err := String(d)
		if err != nil {
			return err
		}
		if s == nil {
			out = append(out, "<nil>")
			return nil
		}
		out = append(out, *s)
		return nil
	})
	return out, err
}

func TestDecode(t *testing.T) {
	out, err := collectStrings(t, `{"other":{"a":[1,2]},"items":["a",1001,true,null]}`, "items")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "1001", "true", "<nil>"}, out)
}

func TestDecode_EmptyArray(t *testing.T) {
	out, err := collectStrings(t, `{"items":[]}`, "items")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDecode_TrailingWhitespace(t *testing.T) {
	out, err := collectStrings(t, "{\"items\":[\"a\"]}\n\t ", "items")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, out)
}

func TestDecode_MissingKey(t *testing.T) {
	for name, data := range map[string]string{
		"absent": `{"errors":"Not Found"}`,
		"null":   `{"items":null}`,
		"empty":  `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := collectStrings(t, data, "items")
			require.ErrorIs(t, err, ErrMissing)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	for name, data := range map[string]string{
		"not json":   `<html>`,
		"array":      `[1,2]`,
		"truncated":  `{"items":["a"`,
		"not a list": `{"items":{"a":1}}`,
		"trailing":   `{"items":[]} junk`,
		"two values": `{"items":[]}{"items":["a"]}`,
		"duplicate":  `{"items":["a"],"items":["b"]}`,
		"null twice": `{"items":null,"items":["b"]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := collectStrings(t, data, "items")
			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrMissing))
		})
	}
}

func TestInt(t *testing.T) {
	for _, tt := range []struct {
		input string
		want  *int32
		err   bool
	}{
		{input: `3`, want: ptr[int32](3)},
		{input: `-7`, want: ptr[int32](-7)},
		{input: `2.0`, want: ptr[int32](2)},
		{input: `"42"`, want: ptr[int32](42)},
		{input: `true`, want: ptr[int32](1)},
		{input: `null`, want: nil},
		{input: `2.5`, err: true},
		{input: `"abc"`, err: true},
		{input: `4294967296`, err: true},
		{input: `[1]`, err: true},
	} {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Int(jx.DecodeStr(tt.input))
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBool(t *testing.T) {
	got, err := Bool(jx.DecodeStr(`false`))
	require.NoError(t, err)
	assert.Equal(t, ptr(false), got)

	got, err = Bool(jx.DecodeStr(`null`))
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = Bool(jx.DecodeStr(`"yes"`))
	require.Error(t, err)
}

func TestString_Object(t *testing.T) {
	_, err := String(jx.DecodeStr(`{"a":1}`))
	require.Error(t, err)
}

func TestObject_FieldError(t *testing.T) {
	err := Object(jx.DecodeStr(`{"quantity":"many"}`), func(d *jx.Decoder, key string) error {
		_, err := Int(d)
		return err
	})

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "quantity", fe.Field)
}

func TestObject_Null(t *testing.T) {
	err := Object(jx.DecodeStr(`null`), func(d *jx.Decoder, key string) error {
		return d.Skip()
	})
	require.Error(t, err)
}

func ptr[T any](v T) *T { return &v }
