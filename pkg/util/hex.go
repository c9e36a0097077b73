package util

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseError indicates malformed hex or text input from the user. It is
// always raised before any transport call is attempted.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse %q: %s", e.Input, e.Reason)
}

// HexGroups formats a payload as space-separated lowercase byte pairs,
// e.g. []byte{0xff, 0x00} -> "ff 00". Empty payload yields "".
func HexGroups(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	h := hex.EncodeToString(data)
	groups := make([]string, 0, len(data))
	for i := 0; i < len(h); i += 2 {
		groups = append(groups, h[i:i+2])
	}
	return strings.Join(groups, " ")
}

// ParseHex decodes user-entered hex into a payload. Whitespace between
// groups is tolerated, so "0a 0b" and "0A0B" are equivalent. An empty
// string yields an empty payload. Odd-length or non-hex input fails with
// a ParseError.
func ParseHex(s string) ([]byte, error) {
	cleaned := strings.Join(strings.Fields(s), "")
	if cleaned == "" {
		return []byte{}, nil
	}
	if len(cleaned)%2 != 0 {
		return nil, &ParseError{Input: s, Reason: "odd number of hex digits"}
	}
	data, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, &ParseError{Input: s, Reason: "invalid hex digit"}
	}
	return data, nil
}
