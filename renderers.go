package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

func (m *model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	var body string
	switch m.screen {
	case screenObsList:
		if m.obsList != nil {
			body = m.obsList.View()
		}
	case screenPicker:
		body = m.picker.View()
	default:
		body = m.bookmarks.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusView())
}

// statusView is the bottom bar: the last manager message, or the key hints.
func (m *model) statusView() string {
	text := m.status
	if text == "" {
		text = "ctrl+b bookmarks | ctrl+o observing list | ctrl+f select object | ctrl+c quit"
	}
	style := statusStyle
	if m.failed {
		style = errorStyle
	}
	return style.Width(max(m.width, 1)).Render(text)
}

func renderStatus(text string, failed bool) string {
	if text == "" {
		return ""
	}
	if failed {
		return errorStyle.Render(text)
	}
	return statusStyle.Render(text)
}

// renderMarkdown renders md for the terminal, falling back to the raw text.
func renderMarkdown(md string, width int) string {
	styled, err := renderWithStyle(md, width)
	if err != nil {
		return md
	}
	return styled
}

func renderWithStyle(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-2, 20)),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func bookmarkDetails(id string, rec BookmarkRecord) string {
	var b strings.Builder
	b.WriteString("## " + rec.Name + "\n\n")
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Latitude | %s |\n", rec.Latitude)
	fmt.Fprintf(&b, "| Longitude | %s |\n", rec.Longitude)
	if rec.JD != "" {
		fmt.Fprintf(&b, "| Date and time | %s |\n", rec.JD)
	}
	fmt.Fprintf(&b, "\n`%s`\n", id)
	return b.String()
}

func obsListRecordDetails(id string, rec ObservingListRecord) string {
	var b strings.Builder
	b.WriteString("## " + rec.Name + "\n\n")
	if rec.NameI18n != "" && rec.NameI18n != rec.Name {
		b.WriteString("*" + rec.NameI18n + "*\n\n")
	}

	b.WriteString("| | |\n|---|---|\n")
	rows := [][2]string{
		{"Type", rec.Type},
		{"Right ascension", rec.RA},
		{"Declination", rec.Dec},
		{"Magnitude", rec.Magnitude},
		{"Constellation", rec.Constellation},
		{"Observed", rec.JD},
		{"From", rec.Location},
	}
	for _, row := range rows {
		if row[1] != "" {
			fmt.Fprintf(&b, "| %s | %s |\n", row[0], row[1])
		}
	}
	if rec.FOV > 0 {
		fmt.Fprintf(&b, "| Field of view | %s° |\n", formatNumber(rec.FOV))
	}
	if rec.IsVisibleMarker {
		b.WriteString("| Marker | visible |\n")
	}
	fmt.Fprintf(&b, "\n`%s`\n", id)
	return b.String()
}
