package irjson

import (
	"fmt"
	"slices"
	"unicode/utf16"
)

// JVal is the document value model. Only the shapes canonical JSON
// permits exist: no floats, no null.
type JVal interface {
	jval()
}

type JString string
type JInt int64
type JBool bool
type JArray []JVal
type JObject map[string]JVal

func (JString) jval() {}
func (JInt) jval()    {}
func (JBool) jval()   {}
func (JArray) jval()  {}
func (JObject) jval() {}

// SortedKeys returns the object's keys in RFC 8785 canonical order,
// which sorts by UTF-16 code units. The distinction from byte order
// matters for strings with supplementary-plane characters.
func (o JObject) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// Accessors used by the importer. Each returns an error naming the path
// component so malformed documents fail with a usable message.

func (o JObject) obj(key string) (JObject, error) {
	v, ok := o[key]
	if !ok {
		return nil, fmt.Errorf("missing object %q", key)
	}
	obj, ok := v.(JObject)
	if !ok {
		return nil, fmt.Errorf("%q: expected object, got %T", key, v)
	}
	return obj, nil
}

func (o JObject) arr(key string) (JArray, error) {
	v, ok := o[key]
	if !ok {
		return nil, fmt.Errorf("missing array %q", key)
	}
	a, ok := v.(JArray)
	if !ok {
		return nil, fmt.Errorf("%q: expected array, got %T", key, v)
	}
	return a, nil
}

func (o JObject) optArr(key string) (JArray, error) {
	v, ok := o[key]
	if !ok {
		return nil, nil
	}
	a, ok := v.(JArray)
	if !ok {
		return nil, fmt.Errorf("%q: expected array, got %T", key, v)
	}
	return a, nil
}

func (o JObject) str(key string) (string, error) {
	v, ok := o[key]
	if !ok {
		return "", fmt.Errorf("missing string %q", key)
	}
	s, ok := v.(JString)
	if !ok {
		return "", fmt.Errorf("%q: expected string, got %T", key, v)
	}
	return string(s), nil
}

func (o JObject) integer(key string) (int64, error) {
	v, ok := o[key]
	if !ok {
		return 0, fmt.Errorf("missing int %q", key)
	}
	n, ok := v.(JInt)
	if !ok {
		return 0, fmt.Errorf("%q: expected int, got %T", key, v)
	}
	return int64(n), nil
}

func (o JObject) boolean(key string) (bool, error) {
	v, ok := o[key]
	if !ok {
		return false, fmt.Errorf("missing bool %q", key)
	}
	b, ok := v.(JBool)
	if !ok {
		return false, fmt.Errorf("%q: expected bool, got %T", key, v)
	}
	return bool(b), nil
}
