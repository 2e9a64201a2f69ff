package irjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	doc := JObject{"b": JInt(2), "a": JInt(1), "c": JInt(3)}
	out, err := MarshalCanonical(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"c":3}`, string(out))
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	out, err := MarshalCanonical(JObject{"s": JString(`<a&b>`)})
	require.NoError(t, err)
	assert.Equal(t, `{"s":"<a&b>"}`, string(out))
}

func TestMarshalCanonicalNFCNormalizes(t *testing.T) {
	// e + combining acute vs precomposed: both must serialize the same.
	decomposed, err := MarshalCanonical(JString("é"))
	require.NoError(t, err)
	precomposed, err := MarshalCanonical(JString("é"))
	require.NoError(t, err)
	assert.Equal(t, precomposed, decomposed)
}

func TestMarshalCanonicalEscapes(t *testing.T) {
	out, err := MarshalCanonical(JString("a\"b\\c\nd\x01e"))
	require.NoError(t, err)
	assert.Equal(t, `"a\"b\\c\nde"`, string(out))
}

func TestMarshalCanonicalNilForbidden(t *testing.T) {
	_, err := MarshalCanonical(JArray{nil})
	assert.Error(t, err)
}

func TestUnmarshalRejectsFloatsAndNull(t *testing.T) {
	_, err := Unmarshal([]byte(`{"x":1.5}`))
	assert.Error(t, err)
	_, err = Unmarshal([]byte(`{"x":null}`))
	assert.Error(t, err)
	_, err = Unmarshal([]byte(`{"x":1e3}`))
	assert.Error(t, err)
}

func TestUnmarshalRoundTrip(t *testing.T) {
	src := `{"arr":[1,true,"s"],"nested":{"k":-7}}`
	v, err := Unmarshal([]byte(src))
	require.NoError(t, err)
	out, err := MarshalCanonical(v)
	require.NoError(t, err)
	assert.Equal(t, src, string(out))
}

func TestContentKeyStable(t *testing.T) {
	a := JObject{"x": JInt(1), "y": JString("s")}
	b := JObject{"y": JString("s"), "x": JInt(1)}

	ka, err := ContentKey(a)
	require.NoError(t, err)
	kb, err := ContentKey(b)
	require.NoError(t, err)
	assert.Equal(t, ka, kb)
	assert.Len(t, ka, 64)

	kc, err := ContentKey(JObject{"x": JInt(2), "y": JString("s")})
	require.NoError(t, err)
	assert.NotEqual(t, ka, kc)
}

func TestCompareUTF16Ordering(t *testing.T) {
	// U+10000 encodes as a surrogate pair starting at 0xD800, so in
	// UTF-16 order it sorts before U+FFFF; UTF-8 byte order says the
	// opposite.
	assert.Negative(t, compareUTF16("\U00010000", "￿"))
	assert.Positive(t, compareUTF16("b", "a"))
	assert.Zero(t, compareUTF16("same", "same"))
	assert.Negative(t, compareUTF16("ab", "abc"))
}
