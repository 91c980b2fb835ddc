package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	nebulaType       = "Nebula"
	customObjectType = "CustomObject"

	unnamedObjectLabel   = "Unnamed object"
	unknownConstellation = "unknown"

	// createdAtLayout renders the "Current date time" of a list.
	createdAtLayout = "Mon Jan 2 15:04:05 2006"
)

// ListMode tells whether the observing list dialog creates a new list or
// edits one already in the file.
type ListMode int

const (
	CreationMode ListMode = iota
	EditMode
)

func (m ListMode) String() string {
	if m == EditMode {
		return "edit"
	}
	return "create"
}

// ObservingListRecord is one observed object. Optional fields are omitted
// from the file when empty; fov only when positive.
type ObservingListRecord struct {
	Constellation   string  `json:"constellation,omitempty"`
	Dec             string  `json:"dec,omitempty"`
	FOV             float64 `json:"fov,omitempty"`
	IsVisibleMarker bool    `json:"isVisibleMarker,omitempty"`
	JD              string  `json:"jd,omitempty"`
	Location        string  `json:"location,omitempty"`
	Magnitude       string  `json:"magnitude,omitempty"`
	Name            string  `json:"name"`
	NameI18n        string  `json:"nameI18n,omitempty"`
	RA              string  `json:"ra,omitempty"`
	Type            string  `json:"type,omitempty"`
}

func (r ObservingListRecord) normalized() ObservingListRecord {
	if r.FOV < 0 {
		r.FOV = 0
	}
	return r
}

// ObsListDeps groups the collaborators read when an object is added.
type ObsListDeps struct {
	Clock     Clock
	Observer  Observer
	Selection Selection
	Sky       Sky
}

// ObservingListStore holds one named observing list and its display table.
type ObservingListStore struct {
	path       string
	name       string
	loadedName string
	listUUID   string
	createdAt  string
	mode       ListMode

	records map[string]ObservingListRecord
	table   *recordTable

	deps  ObsListDeps
	log   Logger
	newID func() string
	now   func() time.Time
}

// NewObservingListStore starts in EditMode when listName is set, CreationMode
// otherwise. Records of an existing list are only read by Load.
func NewObservingListStore(path, listName string, deps ObsListDeps, log Logger) *ObservingListStore {
	mode := CreationMode
	if listName != "" {
		mode = EditMode
	}
	return &ObservingListStore{
		path:    path,
		name:    listName,
		mode:    mode,
		records: map[string]ObservingListRecord{},
		table: newRecordTable(
			"Object name", "Localized name", "Type", "Right ascension",
			"Declination", "Magnitude", "Constellation",
		),
		deps:  deps,
		log:   log,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

func (s *ObservingListStore) Mode() ListMode      { return s.mode }
func (s *ObservingListStore) Name() string        { return s.name }
func (s *ObservingListStore) ListUUID() string    { return s.listUUID }
func (s *ObservingListStore) Len() int            { return len(s.records) }
func (s *ObservingListStore) Table() *recordTable { return s.table }
// Rename names the list unless another list in the file already uses the
// name. The file is not written.
func (s *ObservingListStore) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNoListName
	}
	if name != s.loadedName && s.path != "" {
		if lists, err := readObsListFile(s.path); err == nil {
			if _, taken := lists[name]; taken {
				s.log.Warn("observing list name already used", zap.String("list", name))
				return fmt.Errorf("observing list %q: %w", name, ErrListExists)
			}
		}
	}
	s.name = name
	return nil
}

func (s *ObservingListStore) Get(id string) (ObservingListRecord, bool) {
	rec, ok := s.records[id]
	return rec, ok
}

// AddCurrentSelection records the selected object. Without a selection it
// logs a warning and changes nothing. The record is kept even when saving
// fails, e.g. because the list has no name yet.
func (s *ObservingListStore) AddCurrentSelection() (string, error) {
	obj, ok := s.deps.Selection.Selected()
	if !ok {
		s.log.Warn("no object selected, nothing added to the observing list")
		return "", ErrNoSelection
	}

	rec := s.recordFromObject(obj)
	id := s.newID()
	s.insert(id, rec)
	s.log.Debug("object added to observing list",
		zap.String("id", id),
		zap.String("name", rec.Name),
		zap.String("type", rec.Type),
	)
	return id, s.Save()
}

func (s *ObservingListStore) recordFromObject(obj SkyObject) ObservingListRecord {
	rec := ObservingListRecord{
		Name:     obj.EnglishName(),
		NameI18n: obj.NameI18n(),
		Type:     obj.Type(),
	}
	if rec.Type == nebulaType {
		if designation := s.deps.Sky.LatestDSODesignation(); designation != "" {
			rec.Name = designation
		}
	}

	pos := obj.EquatorialPos()
	if rec.Name == "" || rec.Type == customObjectType {
		ra, dec := rectToSphe(pos)
		rec.RA = radToHmsStr(ra)
		rec.Dec = radToDmsStr(dec)
		if strings.Contains(strings.ToLower(rec.Name), "marker") {
			rec.IsVisibleMarker = true
		}
		if rec.Name == "" {
			rec.Name = rec.RA + ", " + rec.Dec
			rec.NameI18n = unnamedObjectLabel
			if fov := s.deps.Sky.FieldOfView(); fov > 0 {
				rec.FOV = fov
			}
		}
	}

	rec.Magnitude = formatNumber(obj.VMagnitude())
	rec.Constellation = s.deps.Sky.Constellation(pos)
	if rec.Constellation == "" {
		rec.Constellation = unknownConstellation
	}
	rec.JD = localTimestamp(s.deps.Clock)
	rec.Location = observerLocationString(s.deps.Observer.CurrentLocation())
	return rec
}

// observerLocationString is "name, country", or "lat, lon" for an unnamed location.
func observerLocationString(loc Location) string {
	if loc.Name == "" {
		return formatNumber(loc.Latitude) + ", " + formatNumber(loc.Longitude)
	}
	if loc.Country == "" {
		return loc.Name
	}
	return loc.Name + ", " + loc.Country
}

func (s *ObservingListStore) insert(id string, rec ObservingListRecord) {
	s.records[id] = rec
	s.table.replaceRow(id,
		rec.Name, rec.NameI18n, rec.Type, rec.RA, rec.Dec, rec.Magnitude, rec.Constellation,
	)
}

// Remove drops one object and saves the list.
func (s *ObservingListStore) Remove(id string) error {
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("remove object %s: %w", id, ErrNotFound)
	}
	delete(s.records, id)
	s.table.removeRow(id)
	return s.Save()
}

// Save writes this list into the observing list file. Other lists in the
// file are kept. The list keeps its UUID and creation time across saves.
func (s *ObservingListStore) Save() error {
	if s.path == "" {
		s.log.Warn("observing list not saved: no file configured")
		return ErrNoPath
	}
	if s.name == "" {
		s.log.Warn("observing list not saved: the list has no name")
		return ErrNoListName
	}

	lists, err := readObsListFile(s.path)
	if err != nil {
		backup, berr := backupFile(s.path)
		if berr != nil {
			s.log.Error("observing list file is unreadable and could not be backed up",
				zap.String("path", s.path), zap.Error(err), zap.NamedError("backup_error", berr))
			return fmt.Errorf("back up unreadable %s: %w", s.path, berr)
		}
		s.log.Warn("observing list file is unreadable, moved aside",
			zap.String("path", s.path), zap.String("backup", backup), zap.Error(err))
		lists = map[string]json.RawMessage{}
	}
	if _, taken := lists[s.name]; taken && s.name != s.loadedName {
		s.log.Warn("observing list not saved: name already used",
			zap.String("list", s.name), zap.String("path", s.path))
		return fmt.Errorf("observing list %q: %w", s.name, ErrListExists)
	}

	if s.listUUID == "" {
		s.listUUID = s.newID()
	}
	if s.createdAt == "" {
		s.createdAt = s.now().Format(createdAtLayout)
	}

	raw, err := json.Marshal(s.document())
	if err != nil {
		s.log.Error("failed to encode observing list", zap.String("list", s.name), zap.Error(err))
		return err
	}
	if s.loadedName != "" && s.loadedName != s.name {
		delete(lists, s.loadedName)
	}
	lists[s.name] = raw

	if err := writeJSONFile(s.path, lists); err != nil {
		s.log.Error("failed to save observing list",
			zap.String("path", s.path), zap.String("list", s.name), zap.Error(err))
		return err
	}
	s.loadedName = s.name
	s.log.Debug("observing list saved",
		zap.String("list", s.name), zap.Int("count", len(s.records)))
	return nil
}

func (s *ObservingListStore) document() obsListDocument {
	return obsListDocument{
		UUID:      s.listUUID,
		CreatedAt: s.createdAt,
		Records:   s.records,
	}
}

// Load reads the list named at construction from the file. It is a no-op in
// CreationMode.
func (s *ObservingListStore) Load() error {
	if s.mode == CreationMode || s.name == "" {
		return nil
	}
	if s.path == "" {
		return ErrNoPath
	}
	lists, err := readObsListFile(s.path)
	if err != nil {
		s.log.Error("failed to read observing lists", zap.String("path", s.path), zap.Error(err))
		return err
	}
	raw, ok := lists[s.name]
	if !ok {
		s.log.Warn("observing list not found", zap.String("list", s.name), zap.String("path", s.path))
		return fmt.Errorf("observing list %q: %w", s.name, ErrNotFound)
	}
	var doc obsListDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.log.Error("failed to decode observing list", zap.String("list", s.name), zap.Error(err))
		return fmt.Errorf("decode observing list %q: %w", s.name, err)
	}

	s.listUUID = doc.UUID
	s.createdAt = doc.CreatedAt
	s.loadedName = s.name
	s.records = map[string]ObservingListRecord{}
	s.table.clear()
	for _, id := range slices.Sorted(maps.Keys(doc.Records)) {
		s.insert(id, doc.Records[id])
	}
	s.log.Info("observing list loaded", zap.String("list", s.name), zap.Int("count", len(doc.Records)))
	return nil
}

// Import merges the objects of an exported list. An unnamed list takes the
// name of the imported one.
func (s *ObservingListStore) Import(path string) (int, error) {
	name, doc, err := importObsList(path, s.name)
	if err != nil {
		s.log.Error("observing list import failed", zap.String("path", path), zap.Error(err))
		return 0, err
	}
	if s.name == "" {
		s.name = name
	}
	for _, id := range slices.Sorted(maps.Keys(doc.Records)) {
		s.insert(id, doc.Records[id])
	}
	if len(doc.Records) == 0 {
		return 0, nil
	}
	return len(doc.Records), s.Save()
}

// Export writes only this list to path, as HTML when the extension asks for it.
func (s *ObservingListStore) Export(path string) error {
	if s.name == "" {
		s.log.Warn("observing list not exported: the list has no name")
		return ErrNoListName
	}
	if s.listUUID == "" {
		s.listUUID = s.newID()
	}
	if s.createdAt == "" {
		s.createdAt = s.now().Format(createdAtLayout)
	}
	if err := exportObsList(path, s.name, s.document(), s.table); err != nil {
		s.log.Error("observing list export failed", zap.String("path", path), zap.Error(err))
		return err
	}
	return nil
}

// Finalize saves the list and returns its persistent identifier.
func (s *ObservingListStore) Finalize() (string, error) {
	if err := s.Save(); err != nil {
		return "", err
	}
	return s.listUUID, nil
}
