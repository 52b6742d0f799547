// Package canon renders structured values into a canonical string form
// so that two semantically identical payloads hash identically regardless
// of field insertion order. Objects are rendered with lexicographically
// sorted keys, arrays keep their original order, and scalars are rendered
// as JSON literals.
package canon

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Encode returns the canonical rendering of v. The value is first
// normalized through encoding/json, so any struct, map, slice, or scalar
// that marshals to JSON is accepted.
func Encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("canon: marshal: %w", err)
	}
	return EncodeRaw(raw)
}

// EncodeRaw canonicalizes an already-serialized JSON document.
func EncodeRaw(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var node any
	if err := dec.Decode(&node); err != nil {
		return "", fmt.Errorf("canon: decode: %w", err)
	}
	var buf bytes.Buffer
	if err := write(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// HashHex returns the lowercase hex sha256 of the canonical encoding of v.
// This is the content hash used for transaction integrity and dedup.
func HashHex(v any) (string, error) {
	enc, err := Encode(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(enc))
	return hex.EncodeToString(sum[:]), nil
}

func write(buf *bytes.Buffer, node any) error {
	switch n := node.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if n {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		buf.WriteString(n.String())
	case string:
		b, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("canon: string: %w", err)
		}
		buf.Write(b)
	case []any:
		buf.WriteByte('[')
		for i, item := range n {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := write(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return fmt.Errorf("canon: key: %w", err)
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := write(buf, n[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("canon: unsupported node type %T", node)
	}
	return nil
}
