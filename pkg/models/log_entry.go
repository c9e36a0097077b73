package models

import (
	"time"

	"github.com/gattscope/gattscope/pkg/util"
)

// LogEntry is one received (or echoed outgoing) characteristic value.
// Immutable once constructed.
type LogEntry struct {
	TS      time.Time
	Payload []byte

	parsedJSON string
	hasJSON    bool
}

// NewLogEntry stamps the payload and attempts a JSON decode up front, so
// consumers never re-parse per render.
func NewLogEntry(payload []byte) LogEntry {
	entry := LogEntry{TS: time.Now(), Payload: payload}
	entry.parsedJSON, entry.hasJSON = util.TryParseJSON(payload)
	return entry
}

// JSON returns the compact re-encoded JSON form of the payload, or false
// when the payload was not valid UTF-8 JSON.
func (e LogEntry) JSON() (string, bool) {
	return e.parsedJSON, e.hasJSON
}

// Hex returns the payload as space-grouped lowercase hex byte pairs.
func (e LogEntry) Hex() string {
	return util.HexGroups(e.Payload)
}

func (e LogEntry) Size() int { return len(e.Payload) }
