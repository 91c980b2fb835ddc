package main

// Screen history: esc on a picker returns to the dialog that opened it.
func (m *model) pushScreen(s screen) {
	if m.screen == s {
		return
	}
	m.history = append(m.history, m.screen)
	m.screen = s
}

func (m *model) canGoBack() bool {
	return len(m.history) > 0
}

func (m *model) goBack() {
	if !m.canGoBack() {
		m.screen = screenBookmarks
		return
	}
	m.screen = m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
}

// removeScreen forgets every visit to s, leaving the current screen when it
// is s.
func (m *model) removeScreen(s screen) {
	kept := m.history[:0]
	for _, h := range m.history {
		if h != s && (len(kept) == 0 || kept[len(kept)-1] != h) {
			kept = append(kept, h)
		}
	}
	m.history = kept
	if m.screen == s {
		m.goBack()
	}
}
