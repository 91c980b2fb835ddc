package main

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeClock is a fixed simulation clock with a constant UTC offset.
type fakeClock struct {
	jd     float64
	offset float64 // hours
}

func (c *fakeClock) JD() float64               { return c.jd }
func (c *fakeClock) UTCOffset(float64) float64 { return c.offset }
func (c *fakeClock) SetJD(jd float64)          { c.jd = jd }

// clockAt returns a clock showing the given UTC instant.
func clockAt(t time.Time, offset float64) *fakeClock {
	return &fakeClock{jd: timeToJulianDay(t), offset: offset}
}

type fakeObserver struct {
	loc   Location
	moves []Location
}

func (o *fakeObserver) CurrentLocation() Location { return o.loc }

func (o *fakeObserver) MoveTo(loc Location) {
	o.loc = loc
	o.moves = append(o.moves, loc)
}

type fakeObject struct {
	name     string
	nameI18n string
	typ      string
	pos      Vec3
	mag      float64
}

func (o fakeObject) EnglishName() string { return o.name }
func (o fakeObject) NameI18n() string    { return o.nameI18n }
func (o fakeObject) Type() string        { return o.typ }
func (o fakeObject) EquatorialPos() Vec3 { return o.pos }
func (o fakeObject) VMagnitude() float64 { return o.mag }

type fakeSelection struct {
	obj SkyObject
}

func (s *fakeSelection) Selected() (SkyObject, bool) { return s.obj, s.obj != nil }

type fakeSky struct {
	constellation string
	designation   string
	fov           float64
}

func (s *fakeSky) Constellation(Vec3) string    { return s.constellation }
func (s *fakeSky) LatestDSODesignation() string { return s.designation }
func (s *fakeSky) FieldOfView() float64         { return s.fov }

var paris = Location{ID: "paris", Name: "Paris", Country: "France", State: "Île-de-France", Latitude: 48.8534, Longitude: 2.3488}

// newObservedLogger returns a logger whose entries can be inspected.
func newObservedLogger() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return wrapZap(zap.New(core)), logs
}

func nopLogger() Logger {
	return wrapZap(zap.NewNop())
}

// readJSONObject decodes a file into a generic object for key-presence checks.
func readJSONObject(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var obj map[string]any
	require.NoError(t, json.Unmarshal(data, &obj))
	return obj
}

// sequentialIDs replaces UUID generation with predictable identifiers.
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + string(rune('a'+n-1))
	}
}
