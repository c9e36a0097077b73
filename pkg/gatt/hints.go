package gatt

import "strings"

// Hint maps common transport failure text to an actionable suggestion for
// the status line. Returns "" when no specific advice applies.
func Hint(err error) string {
	if err == nil {
		return ""
	}
	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "permission denied"),
		strings.Contains(text, "operation not permitted"):
		return "HCI access denied; run with sufficient privileges or grant CAP_NET_ADMIN"
	case strings.Contains(text, "no such device"),
		strings.Contains(text, "no devices available"):
		return "no Bluetooth adapter found; check hardware and rfkill"
	case strings.Contains(text, "powered off"),
		strings.Contains(text, "invalid state"),
		strings.Contains(text, "can't down device"),
		strings.Contains(text, "network is down"):
		return "Bluetooth appears to be off; enable it and retry"
	case strings.Contains(text, "address in use"),
		strings.Contains(text, "resource busy"):
		return "adapter is busy; stop other BLE tools (or bluetoothd scans) and retry"
	}
	return ""
}
