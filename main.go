package main

import (
	"errors"
	"flag"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func main() {
	cfg, err := ParseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatal("Error:", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal("Error creating data directory:", err)
	}

	// The terminal belongs to the TUI, so logs go to a file.
	logger, err := NewLogger(cfg.LogLevel, cfg.PrettyLog, cfg.Path(cfg.LogFile))
	if err != nil {
		log.Fatal("Error creating logger:", err)
	}
	defer logger.Sync()

	sess := newSession(cfg)
	store := NewBookmarkStore(cfg.Path(cfg.BookmarksFile), sess, sess, logger)
	m := initialModel(cfg, sess, store, logger)
	if err := store.Load(); err != nil {
		m.setError("❌ Bookmarks not loaded: " + err.Error())
	}
	m.bookmarks.sync("")

	logger.Info("skymarks started",
		zap.String("data_dir", cfg.DataDir),
		zap.String("bookmarks", cfg.Path(cfg.BookmarksFile)),
		zap.String("observing_lists", cfg.Path(cfg.ObsListFile)),
	)

	// tea.WithAltScreen() gives us a clean terminal canvas to work with
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("TUI stopped", zap.Error(err))
		log.Fatal("Error running TUI:", err)
	}
}
