package main

import (
	"errors"

	"go.uber.org/zap"
)

// openObservingList shows the observing list dialog, creating it on first
// use. An open dialog is reused whatever listName is asked for.
func (m *model) openObservingList(listName string) {
	if m.obsList == nil {
		store := NewObservingListStore(
			m.config.Path(m.config.ObsListFile),
			listName,
			ObsListDeps{Clock: m.session, Observer: m.session, Selection: m.session, Sky: m.session},
			m.log,
		)
		m.obsList = newObsListDialog(store, m.log)
		if err := store.Load(); err != nil {
			m.log.Warn("observing list opened empty", zap.String("list", listName), zap.Error(err))
			if errors.Is(err, ErrNotFound) {
				m.obsList.setError("⚠️ No list named " + listName + " yet, it will be created on save")
			} else {
				m.obsList.setError("❌ " + err.Error())
			}
		}
		m.obsList.sync("")
		if m.ready {
			m.obsList.SetSize(m.width, m.height-1)
		}
		m.log.Info("observing list dialog opened",
			zap.String("list", listName), zap.Stringer("mode", store.Mode()))
	}
	m.pushScreen(screenObsList)
}

// killObservingList drops the observing list dialog. Calling it without an
// open dialog does nothing.
func (m *model) killObservingList() {
	if m.obsList == nil {
		return
	}
	m.obsList = nil
	m.removeScreen(screenObsList)
}
