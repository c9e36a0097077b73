package gatt

import (
	"fmt"

	"github.com/gattscope/gattscope/pkg/models"
)

// ScanError indicates device discovery could not run, typically because the
// radio is unavailable or disabled. Recoverable; reported as status text.
type ScanError struct {
	Err error
}

func (e *ScanError) Error() string { return "scan failed: " + e.Err.Error() }
func (e *ScanError) Unwrap() error { return e.Err }

// ConnectError indicates a connection attempt failed or timed out. State is
// left exactly as it was before the attempt.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %s failed: %s", e.Addr, e.Err.Error())
}
func (e *ConnectError) Unwrap() error { return e.Err }

// CapabilityError indicates an operation was attempted against a
// characteristic lacking the required flag, or with no active connection.
// Raised before any transport call.
type CapabilityError struct {
	Key  models.CharKey
	Need string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s requires %s", e.Key, e.Need)
}

// ReadError indicates a transport-level read failure. No log entry is
// appended on this path.
type ReadError struct {
	Key models.CharKey
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s failed: %s", e.Key, e.Err.Error())
}
func (e *ReadError) Unwrap() error { return e.Err }

// WriteError indicates a transport-level write failure. Op distinguishes
// value writes from the CCCD writes behind subscribe/unsubscribe.
type WriteError struct {
	Key models.CharKey
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s failed: %s", e.Op, e.Key, e.Err.Error())
}
func (e *WriteError) Unwrap() error { return e.Err }

// BusyError indicates a subscribe/unsubscribe is already in flight for the
// key. The caller retries once the first toggle settles.
type BusyError struct {
	Key models.CharKey
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("notify toggle already in flight for %s", e.Key)
}
