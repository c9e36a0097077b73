package util

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"
)

// TryParseJSON attempts to interpret a payload as UTF-8 encoded JSON.
// On success it returns the compact re-encoded form; otherwise ok is false.
func TryParseJSON(data []byte) (compact string, ok bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	var obj interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&obj); err != nil {
		return "", false
	}
	// Trailing garbage after the first value is not JSON.
	if dec.More() {
		return "", false
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// PrettyJSON is the indented sibling of TryParseJSON, used for the
// latest-value pane.
func PrettyJSON(data []byte, indent int) (string, bool) {
	compact, ok := TryParseJSON(data)
	if !ok {
		return "", false
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(compact), "", spaces(indent)); err != nil {
		return "", false
	}
	return buf.String(), true
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
