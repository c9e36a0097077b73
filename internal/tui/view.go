package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gattscope/gattscope/pkg/models"
)

// valueCollapsedRows caps the latest-value block until the user expands it.
const valueCollapsedRows = 8

// View renders the three-pane layout: devices, GATT tree, values.
func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = 120
	}
	height := m.height
	if height <= 0 {
		height = 30
	}
	listHeight := max(4, height-8)

	devWidth := 38
	gattWidth := max(42, (width-devWidth)/2-4)
	valWidth := max(34, width-devWidth-gattWidth-10)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.viewDevices(devWidth, listHeight),
		m.viewGatt(gattWidth, listHeight),
		m.viewValues(valWidth, listHeight),
	)

	rows := []string{panes}
	if m.writeActive {
		rows = append(rows, m.viewWriteDialog())
	}
	rows = append(rows, m.viewStatus(width), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) paneStyle(p Pane) lipgloss.Style {
	if m.pane == p {
		return m.styles.FocusedPane
	}
	return m.styles.Pane
}

func (m Model) viewDevices(width, height int) string {
	title := "Devices"
	if m.scanning {
		title = "Devices " + m.spinner.View()
	}
	lines := []string{m.styles.PaneTitle.Render(title)}

	devs := m.st.OrderedDevices()
	if len(devs) == 0 {
		lines = append(lines, m.styles.Dim.Render("no devices yet"))
	}
	connected := m.st.ConnectedAddr()
	for i, dev := range devs {
		if i >= height {
			break
		}
		row := DeviceRow(dev, dev.Addr == connected)
		if m.pane == PaneDevices && i == m.deviceCursor {
			row = m.styles.Selected.Render(row)
		}
		lines = append(lines, row)
	}
	return m.paneStyle(PaneDevices).Width(width).Height(height + 1).
		Render(strings.Join(lines, "\n"))
}

func (m Model) viewGatt(width, height int) string {
	lines := []string{m.styles.PaneTitle.Render("GATT")}

	topo := m.st.Topology()
	if len(topo) == 0 {
		lines = append(lines, m.styles.Dim.Render("not connected"))
	}
	lastService := ""
	rows := 0
	for i, info := range topo {
		if rows >= height {
			break
		}
		if info.Key.ServiceUUID != lastService {
			lastService = info.Key.ServiceUUID
			lines = append(lines, "Service "+info.Key.ServiceUUID)
			rows++
		}
		row := "  " + CharacteristicLabel(info, m.st.IsSubscribed(info.Key))
		if m.pane == PaneGatt && i == m.charCursor {
			row = m.styles.Selected.Render(row)
		} else if m.st.IsSubscribed(info.Key) {
			row = m.styles.NotifyMarker.Render(row)
		}
		lines = append(lines, row)
		rows++
	}
	return m.paneStyle(PaneGatt).Width(width).Height(height + 1).
		Render(strings.Join(lines, "\n"))
}

func (m Model) viewValues(width, height int) string {
	lines := []string{m.styles.PaneTitle.Render("Values")}

	info, ok := m.selectedChar()
	if !ok {
		lines = append(lines, m.styles.Dim.Render("No characteristic selected"))
		return m.paneStyle(PaneValues).Width(width).Height(height + 1).
			Render(strings.Join(lines, "\n"))
	}

	count, maxed := m.st.LogCount(info.Key)
	lines = append(lines, LogMeta(info, count, maxed))

	if latest, any := m.st.Latest(info.Key); any {
		latestLines := strings.Split(LatestValue(latest), "\n")
		if !m.valueExpanded && len(latestLines) > valueCollapsedRows {
			latestLines = append(latestLines[:valueCollapsedRows], "... (h to expand)")
		}
		lines = append(lines, latestLines...)
	} else {
		lines = append(lines, m.styles.Dim.Render("No data received yet"))
	}

	lines = append(lines, "", m.styles.PaneTitle.Render("History"))
	log := m.st.LogFor(info.Key)
	historyRows := max(1, height-len(lines))
	start := max(0, len(log)-historyRows)
	for _, entry := range log[start:] {
		lines = append(lines, LogLine(entry))
	}
	return m.paneStyle(PaneValues).Width(width).Height(height + 1).
		Render(strings.Join(lines, "\n"))
}

func (m Model) viewWriteDialog() string {
	info, _ := m.selectedChar()
	mode := "hex"
	if m.writeAsText {
		mode = "text"
	}
	return fmt.Sprintf("Write to %s (%s): %s  [enter send | ctrl+t %s | esc cancel]",
		info.Key.CharUUID, mode, m.writeInput.View(), otherMode(mode))
}

func otherMode(mode string) string {
	if mode == "hex" {
		return "text"
	}
	return "hex"
}

func (m Model) viewStatus(width int) string {
	var selected *models.CharKey
	if info, ok := m.selectedChar(); ok {
		key := info.Key
		selected = &key
	}
	line := StatusLine(m.status, m.st.ConnectedAddr(), m.scanning, selected, m.st.SubscribedCount())
	style := m.styles.StatusBar
	if m.statusErr {
		style = m.styles.ErrorStatus
	}
	return style.Width(width).Render(line)
}
