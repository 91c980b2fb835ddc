package main

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ============================================================================
// MESSAGES BETWEEN DIALOGS AND THE DIALOG MANAGER
// ============================================================================

type pickerKind int

const (
	pickLocation pickerKind = iota
	pickCatalogObject
)

// openPickerMsg asks the manager to show a picker and hand the choice back.
type openPickerMsg struct {
	kind pickerKind
}

// obsListExitMsg is emitted when the observing list dialog is closed. The
// manager drops the dialog instance when it receives it.
type obsListExitMsg struct {
	ListName string
	ListUUID string
}

func openPicker(kind pickerKind) tea.Cmd {
	return func() tea.Msg { return openPickerMsg{kind: kind} }
}

// ============================================================================
// COMMAND TABLES
// ============================================================================

// command binds one key to one user action of a dialog.
type command struct {
	binding key.Binding
	run     func() tea.Cmd
}

func newCommand(keys []string, helpKey, helpText string, run func() tea.Cmd) command {
	return command{
		binding: key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, helpText)),
		run:     run,
	}
}

// dispatch runs the first command bound to msg.
func dispatch(commands []command, msg tea.KeyMsg) (tea.Cmd, bool) {
	for _, c := range commands {
		if key.Matches(msg, c.binding) {
			return c.run(), true
		}
	}
	return nil, false
}

func helpView(h help.Model, commands []command) string {
	bindings := make([]key.Binding, 0, len(commands))
	for _, c := range commands {
		bindings = append(bindings, c.binding)
	}
	return h.ShortHelpView(bindings)
}

// ============================================================================
// PROMPTS
// ============================================================================

type promptKind int

const (
	promptNone promptKind = iota
	promptGPS
	promptImport
	promptExport
	promptClear
	promptListName
)

func (p promptKind) label() string {
	switch p {
	case promptGPS:
		return "Coordinates (lat, lon): "
	case promptImport:
		return "Import from (.json/.html): "
	case promptExport:
		return "Export to (.json/.html): "
	case promptClear:
		return "Remove every bookmark? (y/N): "
	case promptListName:
		return "List name: "
	default:
		return ""
	}
}

func newPromptInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	ti.PromptStyle = promptStyle
	ti.Blur()
	return ti
}

func newRecordTableModel(t *recordTable) table.Model {
	tbl := table.New(
		table.WithColumns(t.Columns()),
		table.WithRows(t.Rows()),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	tbl.SetStyles(tableStyles())
	return tbl
}

// selectedID returns the UUID of the row under the table cursor.
func selectedID(tbl table.Model) (string, bool) {
	row := tbl.SelectedRow()
	if len(row) == 0 {
		return "", false
	}
	return row[uuidColumn], true
}

// syncTable copies the store's display model into the bubbles table and
// keeps the cursor on focusID when it is still present.
func syncTable(tbl *table.Model, t *recordTable, focusID string) {
	tbl.SetColumns(t.Columns())
	tbl.SetRows(t.Rows())
	if focusID != "" {
		if i := t.indexOf(focusID); i >= 0 {
			tbl.SetCursor(i)
			return
		}
	}
	if c := tbl.Cursor(); c >= t.count() {
		tbl.SetCursor(max(t.count()-1, 0))
	}
}
