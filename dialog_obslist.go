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

// obsListDialog creates or edits one observing list.
type obsListDialog struct {
	store *ObservingListStore
	log   Logger

	tbl     table.Model
	input   textinput.Model
	prompt  promptKind
	details viewport.Model
	help    help.Model

	commands    []command
	showDetails bool

	status string
	failed bool
	width  int
	height int
}

func newObsListDialog(store *ObservingListStore, log Logger) *obsListDialog {
	d := &obsListDialog{
		store:   store,
		log:     log,
		tbl:     newRecordTableModel(store.Table()),
		input:   newPromptInput(),
		details: viewport.New(0, 8),
		help:    help.New(),
	}
	d.commands = []command{
		newCommand([]string{"n"}, "n", "name", d.handleRename),
		newCommand([]string{"a"}, "a", "add selected", d.handleAddSelection),
		newCommand([]string{"o"}, "o", "select object", d.handleSelectObject),
		newCommand([]string{"x", "delete"}, "x", "remove", d.handleRemove),
		newCommand([]string{"i"}, "i", "import", d.handleImport),
		newCommand([]string{"e"}, "e", "export", d.handleExport),
		newCommand([]string{"s"}, "s", "save", d.handleSave),
		newCommand([]string{"v"}, "v", "details", d.handleDetails),
		newCommand([]string{"esc"}, "esc", "close", d.handleExit),
	}
	if store.Name() == "" {
		d.setStatus("📋 New observing list, press n to name it")
	}
	return d
}

func (d *obsListDialog) capturesInput() bool { return d.prompt != promptNone }

func (d *obsListDialog) Update(msg tea.Msg) tea.Cmd {
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

func (d *obsListDialog) SetSize(width, height int) {
	d.width, d.height = width, height
	d.layout()
}

func (d *obsListDialog) layout() {
	chrome := 8
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

func (d *obsListDialog) setStatus(text string) {
	d.status = text
	d.failed = false
}

func (d *obsListDialog) setError(text string) {
	d.status = text
	d.failed = true
}

func (d *obsListDialog) sync(focusID string) {
	syncTable(&d.tbl, d.store.Table(), focusID)
	if d.showDetails {
		d.refreshDetails()
	}
}

func (d *obsListDialog) title() string {
	if d.store.Mode() == CreationMode && d.store.Name() == "" {
		return "🔭 Create observing list"
	}
	return fmt.Sprintf("🔭 Observing list: %s (%d)", d.store.Name(), d.store.Len())
}

// ============================================================================
// COMMAND HANDLERS
// ============================================================================

func (d *obsListDialog) handleRename() tea.Cmd {
	cmd := d.openPrompt(promptListName, "My observing list")
	d.input.SetValue(d.store.Name())
	d.input.CursorEnd()
	return cmd
}

func (d *obsListDialog) handleAddSelection() tea.Cmd {
	id, err := d.store.AddCurrentSelection()
	if id == "" {
		if errors.Is(err, ErrNoSelection) {
			d.setError("❌ No object selected, press o to select one")
		} else {
			d.setError("❌ " + err.Error())
		}
		return nil
	}

	d.sync(id)
	rec, _ := d.store.Get(id)
	switch {
	case errors.Is(err, ErrNoListName):
		d.setStatus("➕ Added " + rec.Name + ", name the list to save it")
	case err != nil:
		d.setError(fmt.Sprintf("⚠️ Added %s but not saved: %v", rec.Name, err))
	default:
		d.setStatus("➕ Added " + rec.Name)
	}
	return nil
}

func (d *obsListDialog) handleSelectObject() tea.Cmd {
	return openPicker(pickCatalogObject)
}

func (d *obsListDialog) handleRemove() tea.Cmd {
	id, ok := selectedID(d.tbl)
	if !ok {
		return nil
	}
	rec, _ := d.store.Get(id)
	err := d.store.Remove(id)
	d.sync("")
	switch {
	case err == nil, errors.Is(err, ErrNoListName):
		d.setStatus("🗑️ Removed " + rec.Name)
	default:
		d.setError("❌ " + err.Error())
	}
	return nil
}

func (d *obsListDialog) handleImport() tea.Cmd {
	return d.openPrompt(promptImport, "observing_list.json")
}

func (d *obsListDialog) handleExport() tea.Cmd {
	return d.openPrompt(promptExport, "observing_list.html")
}

func (d *obsListDialog) handleSave() tea.Cmd {
	listUUID, err := d.store.Finalize()
	switch {
	case errors.Is(err, ErrNoListName):
		d.setError("❌ Name the list before saving it (press n)")
	case err != nil:
		d.setError("❌ " + err.Error())
	default:
		d.log.Info("observing list finalized",
			zap.String("list", d.store.Name()), zap.String("uuid", listUUID))
		d.setStatus(fmt.Sprintf("💾 Saved %q", d.store.Name()))
	}
	return nil
}

// handleExit closes the dialog. Records were saved as they were added, so
// nothing is flushed here.
func (d *obsListDialog) handleExit() tea.Cmd {
	if d.showDetails {
		d.showDetails = false
		d.layout()
		return nil
	}
	msg := obsListExitMsg{ListName: d.store.Name(), ListUUID: d.store.ListUUID()}
	return func() tea.Msg { return msg }
}

func (d *obsListDialog) handleDetails() tea.Cmd {
	d.showDetails = !d.showDetails
	d.layout()
	if d.showDetails {
		d.refreshDetails()
	}
	return nil
}

func (d *obsListDialog) refreshDetails() {
	id, ok := selectedID(d.tbl)
	if !ok {
		d.details.SetContent("No object selected.")
		return
	}
	rec, _ := d.store.Get(id)
	d.details.SetContent(renderMarkdown(obsListRecordDetails(id, rec), d.details.Width))
	d.details.GotoTop()
}

// ============================================================================
// PROMPTS
// ============================================================================

func (d *obsListDialog) openPrompt(kind promptKind, placeholder string) tea.Cmd {
	d.prompt = kind
	d.input.Prompt = kind.label()
	d.input.Placeholder = placeholder
	d.input.SetValue("")
	d.input.Focus()
	return textinput.Blink
}

func (d *obsListDialog) closePrompt() {
	d.prompt = promptNone
	d.input.Blur()
	d.input.SetValue("")
}

func (d *obsListDialog) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
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

func (d *obsListDialog) submitPrompt(kind promptKind, value string) {
	if value == "" {
		return
	}
	switch kind {
	case promptListName:
		if err := d.store.Rename(value); err != nil {
			if errors.Is(err, ErrListExists) {
				d.setError(fmt.Sprintf("❌ A list named %q already exists", value))
			} else {
				d.setError("❌ " + err.Error())
			}
			return
		}
		if d.store.Len() == 0 {
			d.setStatus(fmt.Sprintf("📋 List named %q", d.store.Name()))
			return
		}
		if err := d.store.Save(); err != nil {
			d.setError("❌ " + err.Error())
			return
		}
		d.setStatus(fmt.Sprintf("💾 List saved as %q", d.store.Name()))

	case promptImport:
		n, err := d.store.Import(value)
		d.sync("")
		switch {
		case err != nil && n == 0:
			d.setError("❌ Import failed: " + err.Error())
		case err != nil:
			d.setError(fmt.Sprintf("⚠️ Imported %d objects but not saved: %v", n, err))
		default:
			d.setStatus(fmt.Sprintf("📥 Imported %d objects from %s", n, value))
		}

	case promptExport:
		if err := d.store.Export(value); err != nil {
			switch {
			case errors.Is(err, ErrNoListName):
				d.setError("❌ Name the list before exporting it (press n)")
			case errors.Is(err, ErrUnknownFormat):
				d.setError("❌ Use a .json or .html file name")
			default:
				d.setError("❌ Export failed: " + err.Error())
			}
			return
		}
		d.setStatus(fmt.Sprintf("📤 Exported %q to %s", d.store.Name(), value))
	}
}

// ============================================================================
// RENDERING
// ============================================================================

func (d *obsListDialog) View() string {
	sections := []string{
		titleStyle.Render(d.title()),
		d.tbl.View(),
	}
	if d.showDetails {
		sections = append(sections, detailsStyle.Render(d.details.View()))
	}
	if d.prompt != promptNone {
		sections = append(sections, d.input.View())
	}
	sections = append(sections, renderStatus(d.status, d.failed), helpView(d.help, d.commands))

	return dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
