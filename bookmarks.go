package main

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookmarkRecord is a saved observer location. Fields are declared in key
// order so the file reads the same as one written by the desktop program.
type BookmarkRecord struct {
	JD        string `json:"jd,omitempty"` // local civil time, "YYYY-MM-DD HH:MM:SS"
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Name      string `json:"name"` // ex: "New York, United States"
}

// BookmarkStore keeps bookmarks keyed by UUID together with the table that
// displays them. Every mutation touches both in the same call.
type BookmarkStore struct {
	path     string
	records  map[string]BookmarkRecord
	table    *recordTable
	clock    Clock
	observer Observer
	log      Logger
	newID    func() string
}

func NewBookmarkStore(path string, clock Clock, observer Observer, log Logger) *BookmarkStore {
	return &BookmarkStore{
		path:     path,
		records:  map[string]BookmarkRecord{},
		table:    newRecordTable("Location", "Date and time", "Latitude", "Longitude"),
		clock:    clock,
		observer: observer,
		log:      log,
		newID:    uuid.NewString,
	}
}

func (s *BookmarkStore) Len() int { return len(s.records) }

func (s *BookmarkStore) Table() *recordTable { return s.table }

func (s *BookmarkStore) Get(id string) (BookmarkRecord, bool) {
	rec, ok := s.records[id]
	return rec, ok
}

// AddCurrentLocation bookmarks the observer's current location. The record is
// kept even when persisting it fails; the save error is returned.
func (s *BookmarkStore) AddCurrentLocation(includeTimestamp bool) (string, error) {
	loc := s.observer.CurrentLocation()
	s.log.Debug("bookmarking current location",
		zap.String("name", loc.Name),
		zap.String("country", loc.Country),
		zap.String("state", loc.State),
		zap.Float64("latitude", loc.Latitude),
		zap.Float64("longitude", loc.Longitude),
	)
	return s.add(bookmarkFromLocation(loc), includeTimestamp)
}

// AddLocation bookmarks a location picked from the location list.
func (s *BookmarkStore) AddLocation(loc Location, includeTimestamp bool) (string, error) {
	return s.add(bookmarkFromLocation(loc), includeTimestamp)
}

// AddCoordinates bookmarks typed GPS coordinates such as "48.85, 2.35".
func (s *BookmarkStore) AddCoordinates(input string, includeTimestamp bool) (string, error) {
	lat, lon, err := parseCoordinates(input)
	if err != nil {
		s.log.Warn("rejected GPS coordinates", zap.String("input", input), zap.Error(err))
		return "", err
	}
	rec := BookmarkRecord{
		Name:      formatNumber(lat) + ", " + formatNumber(lon),
		Latitude:  formatNumber(lat),
		Longitude: formatNumber(lon),
	}
	return s.add(rec, includeTimestamp)
}

func (s *BookmarkStore) add(rec BookmarkRecord, includeTimestamp bool) (string, error) {
	if includeTimestamp {
		rec.JD = localTimestamp(s.clock)
	}
	id := s.newID()
	s.insert(id, rec)
	return id, s.Save()
}

func (s *BookmarkStore) insert(id string, rec BookmarkRecord) {
	s.records[id] = rec
	s.table.replaceRow(id, rec.Name, rec.JD, rec.Latitude, rec.Longitude)
}

// Remove deletes one bookmark and rewrites the file.
func (s *BookmarkStore) Remove(id string) error {
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("remove bookmark %s: %w", id, ErrNotFound)
	}
	delete(s.records, id)
	s.table.removeRow(id)
	return s.write()
}

// Clear drops every bookmark. The file is rewritten with an empty collection
// so cleared bookmarks do not come back on the next start.
func (s *BookmarkStore) Clear() error {
	s.records = map[string]BookmarkRecord{}
	s.table.clear()
	return s.write()
}

// Save writes the whole store. An unset path or an empty store is logged and
// nothing is written.
func (s *BookmarkStore) Save() error {
	if s.path == "" {
		s.log.Warn("bookmarks not saved: no file configured")
		return ErrNoPath
	}
	if len(s.records) == 0 {
		s.log.Warn("bookmarks not saved: collection is empty", zap.String("path", s.path))
		return ErrEmptyStore
	}
	return s.write()
}

func (s *BookmarkStore) write() error {
	if s.path == "" {
		s.log.Warn("bookmarks not saved: no file configured")
		return ErrNoPath
	}
	if _, err := readBookmarksFile(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		backup, berr := backupFile(s.path)
		if berr != nil {
			s.log.Error("bookmark file is unreadable and could not be backed up",
				zap.String("path", s.path), zap.Error(err), zap.NamedError("backup_error", berr))
			return fmt.Errorf("back up unreadable %s: %w", s.path, berr)
		}
		s.log.Warn("bookmark file is unreadable, moved aside",
			zap.String("path", s.path), zap.String("backup", backup), zap.Error(err))
	}
	doc := bookmarksDocument{bookmarksRootKey: s.records}
	if err := writeJSONFile(s.path, doc); err != nil {
		s.log.Error("failed to save bookmarks", zap.String("path", s.path), zap.Error(err))
		return err
	}
	s.log.Debug("bookmarks saved", zap.String("path", s.path), zap.Int("count", len(s.records)))
	return nil
}

// Load replaces the in-memory bookmarks with the content of the bookmark
// file. A missing file is an empty collection.
func (s *BookmarkStore) Load() error {
	if s.path == "" {
		return ErrNoPath
	}
	records, err := readBookmarksFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		s.log.Error("failed to load bookmarks", zap.String("path", s.path), zap.Error(err))
		return err
	}
	s.records = map[string]BookmarkRecord{}
	s.table.clear()
	for _, id := range slices.Sorted(maps.Keys(records)) {
		s.insert(id, records[id])
	}
	s.table.sortBy(1)
	s.log.Info("bookmarks loaded", zap.String("path", s.path), zap.Int("count", len(records)))
	return nil
}

// Import merges bookmarks from a JSON or HTML export. Records with a known
// UUID replace the stored one.
func (s *BookmarkStore) Import(path string) (int, error) {
	records, err := importBookmarks(path)
	if err != nil {
		s.log.Error("bookmark import failed", zap.String("path", path), zap.Error(err))
		return 0, err
	}
	for _, id := range slices.Sorted(maps.Keys(records)) {
		s.insert(id, records[id])
	}
	if len(records) == 0 {
		return 0, nil
	}
	return len(records), s.write()
}

// Export writes the bookmarks to path, as HTML when the extension asks for it.
func (s *BookmarkStore) Export(path string) error {
	if err := exportBookmarks(path, s.table.Columns(), s.records, s.table.Rows()); err != nil {
		s.log.Error("bookmark export failed", zap.String("path", path), zap.Error(err))
		return err
	}
	return nil
}

// GoTo moves the observer to a bookmarked location and, when the bookmark
// carries a timestamp, sets the simulation clock to it.
func (s *BookmarkStore) GoTo(id string) error {
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("go to bookmark %s: %w", id, ErrNotFound)
	}
	lat, err := strconv.ParseFloat(rec.Latitude, 64)
	if err != nil {
		return fmt.Errorf("bookmark %s latitude: %w", id, ErrInvalidCoordinates)
	}
	lon, err := strconv.ParseFloat(rec.Longitude, 64)
	if err != nil {
		return fmt.Errorf("bookmark %s longitude: %w", id, ErrInvalidCoordinates)
	}

	s.observer.MoveTo(Location{Name: rec.Name, Latitude: lat, Longitude: lon})
	if rec.JD != "" {
		jd, err := parseLocalTimestamp(rec.JD, s.clock)
		if err != nil {
			return err
		}
		s.clock.SetJD(jd)
	}
	return nil
}

// bookmarkFromLocation builds "name, country" with "(state)" appended when
// set. A location restored by GoTo carries the full name and no country.
func bookmarkFromLocation(loc Location) BookmarkRecord {
	name := loc.Name
	if loc.Country != "" {
		name += ", " + loc.Country
	}
	if loc.State != "" {
		name += "(" + loc.State + ")"
	}
	return BookmarkRecord{
		Name:      name,
		Latitude:  formatNumber(loc.Latitude),
		Longitude: formatNumber(loc.Longitude),
	}
}

func parseCoordinates(input string) (lat, lon float64, err error) {
	parts := strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == ';' || r == ' ' })
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%q: want \"lat, lon\": %w", input, ErrInvalidCoordinates)
	}
	if lat, err = strconv.ParseFloat(parts[0], 64); err != nil {
		return 0, 0, fmt.Errorf("latitude %q: %w", parts[0], ErrInvalidCoordinates)
	}
	if lon, err = strconv.ParseFloat(parts[1], 64); err != nil {
		return 0, 0, fmt.Errorf("longitude %q: %w", parts[1], ErrInvalidCoordinates)
	}
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("%q out of range: %w", input, ErrInvalidCoordinates)
	}
	return lat, lon, nil
}
