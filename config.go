package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	defaultBookmarksFile = "bookmarks_locations.json"
	defaultObsListFile   = "observingList.json"
	defaultLogFile       = "skymarks.log"
)

type Config struct {
	DataDir          string `yaml:"data_dir"`            // base directory for relative file names
	BookmarksFile    string `yaml:"bookmarks_file"`      // bookmark locations JSON file
	ObsListFile      string `yaml:"observing_list_file"` // observing lists JSON file
	ListName         string `yaml:"list_name"`           // non-empty opens the observing list in edit mode
	IncludeTimestamp bool   `yaml:"include_timestamp"`   // initial state of the bookmark date/time toggle

	LogLevel  string `yaml:"log_level"` // "debug" | "info" | "warn" | "error"
	LogFile   string `yaml:"log_file"`
	PrettyLog bool   `yaml:"pretty_log"`

	FieldOfView float64         `yaml:"fov"`       // degrees
	Location    Location        `yaml:"location"`  // observer location at start
	Locations   []Location      `yaml:"locations"` // location picker entries
	Catalog     []CatalogObject `yaml:"catalog"`   // selectable objects
}

func DefaultConfig() Config {
	dataDir := "."
	if dir, err := os.UserConfigDir(); err == nil {
		dataDir = filepath.Join(dir, "skymarks")
	}
	return Config{
		DataDir:          dataDir,
		BookmarksFile:    defaultBookmarksFile,
		ObsListFile:      defaultObsListFile,
		IncludeTimestamp: true,
		LogLevel:         "info",
		LogFile:          defaultLogFile,
		FieldOfView:      60,
		Location:         defaultLocations[0],
		Locations:        slices.Clone(defaultLocations),
		Catalog:          slices.Clone(defaultCatalog),
	}
}

// Path resolves a configured file name against DataDir.
func (c Config) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func applyEnvOverrides(config Config) Config {
	if val := os.Getenv("SKYMARKS_DATA_DIR"); val != "" {
		config.DataDir = val
	}
	if val := os.Getenv("SKYMARKS_BOOKMARKS_FILE"); val != "" {
		config.BookmarksFile = val
	}
	if val := os.Getenv("SKYMARKS_OBSLIST_FILE"); val != "" {
		config.ObsListFile = val
	}
	if val := os.Getenv("SKYMARKS_LIST_NAME"); val != "" {
		config.ListName = val
	}
	if val := os.Getenv("SKYMARKS_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}
	if val := os.Getenv("SKYMARKS_LOG_FILE"); val != "" {
		config.LogFile = val
	}
	if val := os.Getenv("SKYMARKS_PRETTY_LOG"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			config.PrettyLog = b
		}
	}
	if val := os.Getenv("SKYMARKS_FOV"); val != "" {
		if fov, err := strconv.ParseFloat(val, 64); err == nil && fov > 0 {
			config.FieldOfView = fov
		}
	}

	return config
}

// ParseFlags builds the configuration: defaults, then the -config file, then
// SKYMARKS_* variables, then flags given on the command line.
func ParseFlags(args []string) (Config, error) {
	fs := flag.NewFlagSet("skymarks", flag.ContinueOnError)

	var flagValues Config
	configFile := fs.String("config", "", "Path to YAML config file")
	fs.StringVar(&flagValues.DataDir, "data-dir", "", "Directory holding the JSON files")
	fs.StringVar(&flagValues.BookmarksFile, "bookmarks", "", "Bookmark locations file")
	fs.StringVar(&flagValues.ObsListFile, "obslist", "", "Observing lists file")
	fs.StringVar(&flagValues.ListName, "list", "", "Observing list to edit")
	fs.StringVar(&flagValues.LogLevel, "log-level", "", "Log level")
	fs.StringVar(&flagValues.LogFile, "log-file", "", "Log file")
	fs.BoolVar(&flagValues.PrettyLog, "pretty-log", false, "Human readable log lines")
	fs.BoolVar(&flagValues.IncludeTimestamp, "timestamp", true, "Store date and time with new bookmarks")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	config := DefaultConfig()
	if *configFile != "" {
		fileConfig, err := loadConfigFromFile(*configFile)
		if err != nil {
			return Config{}, err
		}
		config = fileConfig
	}
	config = applyEnvOverrides(config)

	// Only flags given explicitly override the layers below.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data-dir":
			config.DataDir = flagValues.DataDir
		case "bookmarks":
			config.BookmarksFile = flagValues.BookmarksFile
		case "obslist":
			config.ObsListFile = flagValues.ObsListFile
		case "list":
			config.ListName = flagValues.ListName
		case "log-level":
			config.LogLevel = flagValues.LogLevel
		case "log-file":
			config.LogFile = flagValues.LogFile
		case "pretty-log":
			config.PrettyLog = flagValues.PrettyLog
		case "timestamp":
			config.IncludeTimestamp = flagValues.IncludeTimestamp
		}
	})

	return config, nil
}

// loadConfigFromFile reads a YAML file on top of the defaults, so keys missing
// from the file keep their default value.
func loadConfigFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("read config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", filename, err)
	}
	return config, nil
}
