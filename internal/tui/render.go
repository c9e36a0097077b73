package tui

import (
	"fmt"
	"strings"

	"github.com/gattscope/gattscope/pkg/models"
	"github.com/gattscope/gattscope/pkg/util"
)

const hexPreviewWidth = 52

// StatusLine composes the one-line footer summary.
func StatusLine(status string, connectedAddr string, scanning bool, selected *models.CharKey, subscribed int) string {
	conn := "Disconnected"
	if connectedAddr != "" {
		conn = "Connected " + connectedAddr
	}
	scan := "Idle"
	if scanning {
		scan = "Scanning"
	}
	char := "-"
	if selected != nil {
		char = shortUUID(selected.CharUUID)
	}
	return fmt.Sprintf("[CONN %s] [SCAN %s] [CHAR %s] [NOTIFY %d] %s",
		conn, scan, char, subscribed, status)
}

func shortUUID(u string) string {
	if len(u) > 8 {
		return u[:8]
	}
	return u
}

// CharacteristicLabel renders one GATT tree row; subscribed rows carry an
// [N] marker.
func CharacteristicLabel(info models.CharacteristicInfo, subscribed bool) string {
	mark := ""
	if subscribed {
		mark = " [N]"
	}
	return fmt.Sprintf("%s h=%d [%s]%s",
		info.Key.CharUUID, info.Key.Handle, info.PropertyList(), mark)
}

// DeviceRow renders one device table row, strongest-first ordering is the
// caller's concern.
func DeviceRow(dev models.DeviceInfo, connected bool) string {
	mark := "  "
	if connected {
		mark = "* "
	}
	name := dev.Name
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("%s%4d  %-20s %s", mark, dev.RSSI, name, dev.Addr)
}

// LogMeta summarises the selected characteristic above the history pane.
// maxed appends a MAX marker once the cap has been hit.
func LogMeta(info models.CharacteristicInfo, count int, maxed bool) string {
	suffix := fmt.Sprintf("%d entries", count)
	if maxed {
		suffix = fmt.Sprintf("%d entries (MAX)", count)
	}
	return fmt.Sprintf("%s [%s] | %s", info.Key.CharUUID, info.PropertyList(), suffix)
}

// LogLine renders one history row: timestamp, size, truncated hex, and the
// compact JSON form when the payload parsed.
func LogLine(entry models.LogEntry) string {
	hexPreview := entry.Hex()
	if len(hexPreview) > hexPreviewWidth {
		hexPreview = hexPreview[:hexPreviewWidth-3] + "..."
	}
	ts := entry.TS.Format("15:04:05.000")
	if parsed, ok := entry.JSON(); ok {
		return fmt.Sprintf("%s | %4dB | %-*s | %s", ts, entry.Size(), hexPreviewWidth, hexPreview, parsed)
	}
	return fmt.Sprintf("%s | %4dB | %s", ts, entry.Size(), hexPreview)
}

// LatestValue renders the newest entry for the latest-value pane, with an
// indented JSON section when the payload parsed.
func LatestValue(entry models.LogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s | %dB\n\nHex:\n%s", entry.TS.Format("15:04:05.000"), entry.Size(), entry.Hex())
	if pretty, ok := util.PrettyJSON(entry.Payload, 2); ok {
		b.WriteString("\n\nJSON:\n")
		b.WriteString(pretty)
	}
	return b.String()
}
