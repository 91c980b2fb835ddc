package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// bookmarksDialog lists saved locations and lets the user add, visit and
// remove them.
type bookmarksDialog struct {
	store *BookmarkStore
	log   Logger

	tbl     table.Model
	input   textinput.Model
	prompt  promptKind
	details viewport.Model
	help    help.Model

	commands         []command
	includeTimestamp bool
	sortColumn       int
	showDetails      bool

	status string
	failed bool
	width  int
	height int
}

func newBookmarksDialog(store *BookmarkStore, includeTimestamp bool, log Logger) *bookmarksDialog {
	d := &bookmarksDialog{
		store:            store,
		log:              log,
		tbl:              newRecordTableModel(store.Table()),
		input:            newPromptInput(),
		details:          viewport.New(0, 8),
		help:             help.New(),
		includeTimestamp: includeTimestamp,
		sortColumn:       1,
	}
	d.commands = []command{
		newCommand([]string{"a"}, "a", "add current", d.handleAddCurrent),
		newCommand([]string{"l"}, "l", "add from list", d.handleAddFromList),
		newCommand([]string{"c"}, "c", "add coordinates", d.handleAddCoordinates),
		newCommand([]string{"t"}, "t", "date/time", d.handleToggleTimestamp),
		newCommand([]string{"enter"}, "enter", "go to", d.handleGoTo),
		newCommand([]string{"x", "delete"}, "x", "remove", d.handleRemove),
		newCommand([]string{"C"}, "C", "clear", d.handleClear),
		newCommand([]string{"i"}, "i", "import", d.handleImport),
		newCommand([]string{"e"}, "e", "export", d.handleExport),
		newCommand([]string{"s"}, "s", "sort", d.handleSort),
		newCommand([]string{"v"}, "v", "details", d.handleDetails),
	}
	return d
}

// capturesInput reports whether a prompt owns the keyboard.
func (d *bookmarksDialog) capturesInput() bool { return d.prompt != promptNone }

func (d *bookmarksDialog) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		if d.prompt != promptNone {
			d.input, cmd = d.input.Update(msg)
		}
		return cmd
	}

	if d.prompt != promptNone {
		return d.handlePromptKey(keyMsg)
	}
	if keyMsg.String() == "esc" && d.showDetails {
		d.showDetails = false
		d.layout()
		return nil
	}
	if cmd, handled := dispatch(d.commands, keyMsg); handled {
		return cmd
	}

	var cmd tea.Cmd
	d.tbl, cmd = d.tbl.Update(keyMsg)
	if d.showDetails {
		d.refreshDetails()
	}
	return cmd
}

func (d *bookmarksDialog) SetSize(width, height int) {
	d.width, d.height = width, height
	d.layout()
}

func (d *bookmarksDialog) layout() {
	// title, toggle, prompt, status, help and the frame
	chrome := 9
	tableHeight := d.height - chrome
	if d.showDetails {
		tableHeight -= d.details.Height + 1
	}
	d.tbl.SetHeight(max(tableHeight, 3))
	d.tbl.SetWidth(max(d.width-4, 20))
	d.details.Width = max(d.width-4, 20)
	d.input.Width = max(d.width-40, 20)
	d.help.Width = d.width
}

func (d *bookmarksDialog) setStatus(text string) {
	d.status = text
	d.failed = false
}

func (d *bookmarksDialog) setError(text string) {
	d.status = text
	d.failed = true
}

func (d *bookmarksDialog) sync(focusID string) {
	syncTable(&d.tbl, d.store.Table(), focusID)
	if d.showDetails {
		d.refreshDetails()
	}
}

// ============================================================================
// COMMAND HANDLERS
// ============================================================================

func (d *bookmarksDialog) handleAddCurrent() tea.Cmd {
	id, err := d.store.AddCurrentLocation(d.includeTimestamp)
	d.afterAdd(id, err)
	return nil
}

func (d *bookmarksDialog) handleAddFromList() tea.Cmd {
	return openPicker(pickLocation)
}

// addLocation receives the choice made in the location picker.
func (d *bookmarksDialog) addLocation(loc Location) {
	id, err := d.store.AddLocation(loc, d.includeTimestamp)
	d.afterAdd(id, err)
}

func (d *bookmarksDialog) handleAddCoordinates() tea.Cmd {
	return d.openPrompt(promptGPS, "48.8534, 2.3488")
}

func (d *bookmarksDialog) afterAdd(id string, err error) {
	if id == "" {
		d.setError("❌ " + err.Error())
		return
	}
	d.sync(id)
	rec, _ := d.store.Get(id)
	if err != nil {
		d.setError(fmt.Sprintf("⚠️ Bookmarked %s but not saved: %v", rec.Name, err))
		return
	}
	d.setStatus("⭐ Bookmarked: " + rec.Name)
}

func (d *bookmarksDialog) handleToggleTimestamp() tea.Cmd {
	d.includeTimestamp = !d.includeTimestamp
	if d.includeTimestamp {
		d.setStatus("🕑 New bookmarks keep the date and time")
	} else {
		d.setStatus("🕑 New bookmarks keep the location only")
	}
	return nil
}

func (d *bookmarksDialog) handleGoTo() tea.Cmd {
	id, ok := selectedID(d.tbl)
	if !ok {
		return nil
	}
	if err := d.store.GoTo(id); err != nil {
		d.log.Warn("go to bookmark failed", zap.String("id", id), zap.Error(err))
		d.setError("❌ " + err.Error())
		return nil
	}
	rec, _ := d.store.Get(id)
	d.setStatus("🧭 Moved to " + rec.Name)
	return nil
}

func (d *bookmarksDialog) handleRemove() tea.Cmd {
	id, ok := selectedID(d.tbl)
	if !ok {
		return nil
	}
	rec, _ := d.store.Get(id)
	if err := d.store.Remove(id); err != nil {
		d.setError("❌ " + err.Error())
	} else {
		d.setStatus("🗑️ Removed " + rec.Name)
	}
	d.sync("")
	return nil
}

func (d *bookmarksDialog) handleClear() tea.Cmd {
	if d.store.Len() == 0 {
		d.setStatus("No bookmarks to clear")
		return nil
	}
	return d.openPrompt(promptClear, "")
}

func (d *bookmarksDialog) handleImport() tea.Cmd {
	return d.openPrompt(promptImport, "bookmarks.json")
}

func (d *bookmarksDialog) handleExport() tea.Cmd {
	return d.openPrompt(promptExport, "bookmarks.html")
}

// handleSort cycles the sort key through the visible columns.
func (d *bookmarksDialog) handleSort() tea.Cmd {
	cols := d.store.Table().Columns()
	d.sortColumn++
	if d.sortColumn >= len(cols) {
		d.sortColumn = 1
	}
	focus, _ := selectedID(d.tbl)
	d.store.Table().sortBy(d.sortColumn)
	d.sync(focus)
	d.setStatus("↕ Sorted by " + cols[d.sortColumn].Title)
	return nil
}

func (d *bookmarksDialog) handleDetails() tea.Cmd {
	d.showDetails = !d.showDetails
	d.layout()
	if d.showDetails {
		d.refreshDetails()
	}
	return nil
}

func (d *bookmarksDialog) refreshDetails() {
	id, ok := selectedID(d.tbl)
	if !ok {
		d.details.SetContent("No bookmark selected.")
		return
	}
	rec, _ := d.store.Get(id)
	d.details.SetContent(renderMarkdown(bookmarkDetails(id, rec), d.details.Width))
	d.details.GotoTop()
}

// ============================================================================
// PROMPTS
// ============================================================================

func (d *bookmarksDialog) openPrompt(kind promptKind, placeholder string) tea.Cmd {
	d.prompt = kind
	d.input.Prompt = kind.label()
	d.input.Placeholder = placeholder
	d.input.SetValue("")
	d.input.Focus()
	return textinput.Blink
}

func (d *bookmarksDialog) closePrompt() {
	d.prompt = promptNone
	d.input.Blur()
	d.input.SetValue("")
}

func (d *bookmarksDialog) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		d.closePrompt()
		return nil
	case "enter":
		kind, value := d.prompt, strings.TrimSpace(d.input.Value())
		d.closePrompt()
		d.submitPrompt(kind, value)
		return nil
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return cmd
}

func (d *bookmarksDialog) submitPrompt(kind promptKind, value string) {
	switch kind {
	case promptGPS:
		if value == "" {
			return
		}
		id, err := d.store.AddCoordinates(value, d.includeTimestamp)
		d.afterAdd(id, err)

	case promptClear:
		if !strings.EqualFold(value, "y") && !strings.EqualFold(value, "yes") {
			d.setStatus("Clear cancelled")
			return
		}
		if err := d.store.Clear(); err != nil {
			d.setError("❌ " + err.Error())
		} else {
			d.setStatus("🗑️ All bookmarks removed")
		}
		d.sync("")

	case promptImport:
		if value == "" {
			return
		}
		n, err := d.store.Import(value)
		d.sync("")
		switch {
		case err != nil && n == 0:
			d.setError("❌ Import failed: " + err.Error())
		case err != nil:
			d.setError(fmt.Sprintf("⚠️ Imported %d bookmarks but not saved: %v", n, err))
		default:
			d.setStatus(fmt.Sprintf("📥 Imported %d bookmarks from %s", n, value))
		}

	case promptExport:
		if value == "" {
			return
		}
		if err := d.store.Export(value); err != nil {
			if errors.Is(err, ErrUnknownFormat) {
				d.setError("❌ Use a .json or .html file name")
				return
			}
			d.setError("❌ Export failed: " + err.Error())
			return
		}
		d.setStatus(fmt.Sprintf("📤 Exported %d bookmarks to %s", d.store.Len(), value))
	}
}

// ============================================================================
// RENDERING
// ============================================================================

func (d *bookmarksDialog) View() string {
	check := "[ ]"
	if d.includeTimestamp {
		check = "[x]"
	}

	sections := []string{
		titleStyle.Render(fmt.Sprintf("⭐ Bookmarks locations (%d)", d.store.Len())),
		d.tbl.View(),
	}
	if d.showDetails {
		sections = append(sections, detailsStyle.Render(d.details.View()))
	}
	sections = append(sections, toggleStyle.Render(check+" Date and time"))
	if d.prompt != promptNone {
		sections = append(sections, d.input.View())
	}
	sections = append(sections, renderStatus(d.status, d.failed), helpView(d.help, d.commands))

	return dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
