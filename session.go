package main

import (
	"math"
	"slices"
	"time"
)

// CatalogObject is a selectable object of the standalone session.
type CatalogObject struct {
	Name          string  `yaml:"name"`
	NameI18n      string  `yaml:"name_i18n"`
	Type          string  `yaml:"type"`
	RA            float64 `yaml:"ra"`  // hours
	Dec           float64 `yaml:"dec"` // degrees
	Magnitude     float64 `yaml:"magnitude"`
	Constellation string  `yaml:"constellation"`
	Designation   string  `yaml:"designation"` // ex: "M 31", for deep-sky objects
}

func (o CatalogObject) equatorialPos() Vec3 {
	ra := o.RA * 15 * math.Pi / 180
	dec := o.Dec * math.Pi / 180
	return Vec3{math.Cos(dec) * math.Cos(ra), math.Cos(dec) * math.Sin(ra), math.Sin(dec)}
}

// catalogObject adapts a CatalogObject to SkyObject.
type catalogObject struct {
	obj CatalogObject
}

func (o catalogObject) EnglishName() string { return o.obj.Name }
func (o catalogObject) Type() string        { return o.obj.Type }
func (o catalogObject) VMagnitude() float64 { return o.obj.Magnitude }
func (o catalogObject) EquatorialPos() Vec3 { return o.obj.equatorialPos() }

func (o catalogObject) NameI18n() string {
	if o.obj.NameI18n != "" {
		return o.obj.NameI18n
	}
	return o.obj.Name
}

var defaultLocations = []Location{
	{ID: "paris", Name: "Paris", Country: "France", State: "Île-de-France", Latitude: 48.8534, Longitude: 2.3488},
	{ID: "london", Name: "London", Country: "United Kingdom", Latitude: 51.5085, Longitude: -0.1257},
	{ID: "mauna-kea", Name: "Mauna Kea", Country: "United States", State: "Hawaii", Latitude: 19.8207, Longitude: -155.4681},
	{ID: "paranal", Name: "Cerro Paranal", Country: "Chile", Latitude: -24.6272, Longitude: -70.4044},
}

var defaultCatalog = []CatalogObject{
	{Name: "Sirius", Type: "Star", RA: 6.7525, Dec: -16.7161, Magnitude: -1.46, Constellation: "CMa"},
	{Name: "Betelgeuse", Type: "Star", RA: 5.9195, Dec: 7.4071, Magnitude: 0.42, Constellation: "Ori"},
	{Name: "Vega", Type: "Star", RA: 18.6156, Dec: 38.7837, Magnitude: 0.03, Constellation: "Lyr"},
	{Name: "Andromeda Galaxy", Type: nebulaType, RA: 0.7123, Dec: 41.2692, Magnitude: 3.44, Constellation: "And", Designation: "M 31"},
	{Name: "Orion Nebula", Type: nebulaType, RA: 5.5881, Dec: -5.3911, Magnitude: 4, Constellation: "Ori", Designation: "M 42"},
	{Name: "Marker 1", Type: customObjectType, RA: 12, Dec: 10},
	{Name: "", Type: customObjectType, RA: 20.5, Dec: -30.25},
}

// session implements every collaborator for the standalone program: the
// clock follows the wall clock plus an adjustable offset, the selection comes
// from the configured catalog.
type session struct {
	location  Location
	locations []Location
	catalog   []CatalogObject
	selected  int
	lastDSO   string
	fov       float64

	now     func() time.Time
	tz      *time.Location
	jdDelta float64 // simulated JD minus wall clock JD
}

func newSession(cfg Config) *session {
	return &session{
		location:  cfg.Location,
		locations: slices.Clone(cfg.Locations),
		catalog:   slices.Clone(cfg.Catalog),
		selected:  -1,
		fov:       cfg.FieldOfView,
		now:       time.Now,
		tz:        time.Local,
	}
}

func (s *session) JD() float64 {
	return timeToJulianDay(s.now()) + s.jdDelta
}

func (s *session) UTCOffset(jd float64) float64 {
	_, offset := julianDayToTime(jd).In(s.tz).Zone()
	return float64(offset) / 3600
}

func (s *session) SetJD(jd float64) {
	s.jdDelta = jd - timeToJulianDay(s.now())
}

func (s *session) CurrentLocation() Location { return s.location }
func (s *session) MoveTo(loc Location)       { s.location = loc }
func (s *session) Locations() []Location     { return s.locations }
func (s *session) Catalog() []CatalogObject  { return s.catalog }

func (s *session) Selected() (SkyObject, bool) {
	if s.selected < 0 || s.selected >= len(s.catalog) {
		return nil, false
	}
	return catalogObject{s.catalog[s.selected]}, true
}

// Select makes catalog entry i the current selection; -1 clears it.
func (s *session) Select(i int) {
	if i < 0 || i >= len(s.catalog) {
		s.selected = -1
		return
	}
	s.selected = i
	if obj := s.catalog[i]; obj.Type == nebulaType {
		s.lastDSO = obj.Designation
	}
}

func (s *session) LatestDSODesignation() string { return s.lastDSO }
func (s *session) FieldOfView() float64         { return s.fov }

// Constellation looks pos up in the catalog; positions outside it are unknown.
func (s *session) Constellation(pos Vec3) string {
	for _, obj := range s.catalog {
		p := obj.equatorialPos()
		if math.Abs(p[0]-pos[0]) < 1e-9 && math.Abs(p[1]-pos[1]) < 1e-9 && math.Abs(p[2]-pos[2]) < 1e-9 {
			return obj.Constellation
		}
	}
	return ""
}
