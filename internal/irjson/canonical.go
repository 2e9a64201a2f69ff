package irjson

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical renders a document value as RFC 8785 canonical JSON:
// NFC-normalized strings, object keys in UTF-16 code unit order, no
// HTML escaping, only mandatory string escapes. Equal documents produce
// identical bytes, so the output doubles as a hashing pre-image.
func MarshalCanonical(v JVal) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ContentKey returns the hex SHA-256 of a document's canonical bytes.
func ContentKey(v JVal) (string, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func marshalCanonical(buf *bytes.Buffer, v JVal) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case JString:
		writeCanonicalString(buf, string(val))
		return nil
	case JInt:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case JBool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case JArray:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalCanonical(buf, elem); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	case JObject:
		buf.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			if err := marshalCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("%q: %w", k, err)
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("unsupported document value %T", v)
	}
}

// writeCanonicalString emits an NFC-normalized JSON string with the
// minimal escape set: quote, backslash, and C0 controls. < > & and the
// U+2028/U+2029 separators stay literal per RFC 8785.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

// Unmarshal parses JSON bytes into the document value model, rejecting
// the shapes canonical JSON forbids. It accepts non-canonical input
// (whitespace, unsorted keys); canonicalization happens on output.
func Unmarshal(data []byte) (JVal, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("irjson: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("irjson: trailing data after document")
	}
	return fromRaw(raw)
}

func fromRaw(raw any) (JVal, error) {
	switch val := raw.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden")
	case string:
		return JString(val), nil
	case bool:
		return JBool(val), nil
	case json.Number:
		if strings.ContainsAny(val.String(), ".eE") {
			return nil, fmt.Errorf("floats are forbidden: %s", val)
		}
		n, err := val.Int64()
		if err != nil {
			return nil, err
		}
		return JInt(n), nil
	case []any:
		arr := make(JArray, len(val))
		for i, elem := range val {
			jv, err := fromRaw(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = jv
		}
		return arr, nil
	case map[string]any:
		obj := make(JObject, len(val))
		for k, elem := range val {
			jv, err := fromRaw(elem)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", k, err)
			}
			obj[k] = jv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value %T", raw)
	}
}
