package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case openPickerMsg:
		return m.handleOpenPicker(msg)
	case obsListExitMsg:
		return m.handleObsListExit(msg)
	}

	return m, m.updateActive(msg)
}

// Handle key messages
func (m *model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+b":
		return m.handleShowBookmarks()

	case "ctrl+o":
		return m.handleShowObservingList()

	case "ctrl+f":
		return m.handleFindObject()
	}

	if m.screen == screenPicker {
		return m.handlePickerKey(msg)
	}
	return m, m.updateActive(msg)
}

// updateActive forwards msg to the dialog on screen.
func (m *model) updateActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.screen {
	case screenObsList:
		if m.obsList != nil {
			cmd = m.obsList.Update(msg)
		}
	case screenPicker:
		m.picker, cmd = m.picker.Update(msg)
	default:
		cmd = m.bookmarks.Update(msg)
	}
	return cmd
}

func (m *model) leavePicker() {
	if m.screen == screenPicker {
		m.goBack()
	}
}

// Command handlers
func (m *model) handleShowBookmarks() (tea.Model, tea.Cmd) {
	m.leavePicker()
	m.pushScreen(screenBookmarks)
	m.setError("")
	return m, nil
}

func (m *model) handleShowObservingList() (tea.Model, tea.Cmd) {
	m.leavePicker()
	m.openObservingList(m.listName)
	m.setError("")
	return m, nil
}

func (m *model) handleFindObject() (tea.Model, tea.Cmd) {
	if m.screen == screenPicker {
		return m, nil
	}
	return m.handleOpenPicker(openPickerMsg{kind: pickCatalogObject})
}

func (m *model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.FilterState() != list.Filtering {
		switch msg.String() {
		case "esc":
			if m.picker.FilterState() == list.FilterApplied {
				break
			}
			m.goBack()
			return m, nil
		case "enter":
			return m.handlePickerChoice()
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

// Message handlers
func (m *model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	footerHeight := 1

	m.width, m.height = msg.Width, msg.Height
	m.bookmarks.SetSize(msg.Width, msg.Height-footerHeight)
	if m.obsList != nil {
		m.obsList.SetSize(msg.Width, msg.Height-footerHeight)
	}
	m.picker.SetSize(msg.Width, msg.Height-footerHeight)
	m.ready = true
	return m, nil
}

func (m *model) handleOpenPicker(msg openPickerMsg) (tea.Model, tea.Cmd) {
	var items []list.Item
	switch msg.kind {
	case pickLocation:
		for _, loc := range m.locations.Locations() {
			items = append(items, locationItem{loc: loc})
		}
		m.picker.Title = "📍 Choose a location (ENTER to bookmark, ESC to go back)"
	case pickCatalogObject:
		for i, obj := range m.session.Catalog() {
			items = append(items, catalogItem{obj: obj, index: i})
		}
		m.picker.Title = "🔭 Select an object (ENTER to select, ESC to go back)"
	}

	m.picker.ResetFilter()
	m.picker.ResetSelected()
	cmd := m.picker.SetItems(items)
	m.pushScreen(screenPicker)
	return m, cmd
}

func (m *model) handlePickerChoice() (tea.Model, tea.Cmd) {
	selected := m.picker.SelectedItem()
	if selected == nil {
		return m, nil
	}
	m.goBack()

	switch item := selected.(type) {
	case locationItem:
		if m.screen != screenBookmarks {
			m.pushScreen(screenBookmarks)
		}
		m.bookmarks.addLocation(item.loc)
	case catalogItem:
		m.session.Select(item.index)
		m.log.Debug("object selected", zap.String("name", item.obj.Name), zap.Int("index", item.index))
		m.setStatus("🎯 Selected: " + item.Title())
		if m.obsList != nil && m.screen == screenObsList {
			m.obsList.setStatus("🎯 Selected: " + item.Title() + ", press a to add it")
		}
	}
	return m, nil
}

func (m *model) handleObsListExit(msg obsListExitMsg) (tea.Model, tea.Cmd) {
	m.killObservingList()
	// A saved list is edited again the next time the dialog opens.
	if msg.ListName != "" && msg.ListUUID != "" {
		m.listName = msg.ListName
	}
	m.log.Info("observing list dialog closed",
		zap.String("list", msg.ListName), zap.String("uuid", msg.ListUUID))
	if msg.ListName == "" {
		m.setStatus("📋 Observing list closed")
	} else {
		m.setStatus(fmt.Sprintf("📋 Observing list %q closed", msg.ListName))
	}
	return m, nil
}

func (m *model) setStatus(text string) {
	m.status = text
	m.failed = false
}

func (m *model) setError(text string) {
	m.status = text
	m.failed = text != ""
}
