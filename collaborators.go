package main

// Narrow views of the sky program. The dialogs only ever read the current
// context through these interfaces, the session in session.go provides the
// standalone implementations.

// Location is an observer location on Earth. Latitude and longitude are in degrees.
type Location struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Country   string  `yaml:"country"`
	State     string  `yaml:"state"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// Vec3 is a rectangular equatorial position.
type Vec3 [3]float64

// SkyObject is the currently selected celestial object.
type SkyObject interface {
	EnglishName() string
	NameI18n() string
	Type() string
	// EquatorialPos returns the position in equatorial coordinates of the current epoch.
	EquatorialPos() Vec3
	VMagnitude() float64
}

// Clock is the simulation clock.
type Clock interface {
	JD() float64
	// UTCOffset returns the offset from UTC in hours at the given Julian Day.
	UTCOffset(jd float64) float64
	SetJD(jd float64)
}

// Observer exposes the current observer location.
type Observer interface {
	CurrentLocation() Location
	MoveTo(loc Location)
}

// Selection tracks the currently selected object.
type Selection interface {
	Selected() (SkyObject, bool)
}

// Sky answers catalog and view questions about the current sky.
type Sky interface {
	// Constellation returns the IAU abbreviation for pos, or "" when unknown.
	Constellation(pos Vec3) string
	LatestDSODesignation() string
	FieldOfView() float64
}

// LocationDB lists known locations for the location picker.
type LocationDB interface {
	Locations() []Location
}
