package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var (
	betelgeuse = fakeObject{
		name: "Betelgeuse", nameI18n: "Bételgeuse", typ: "Star",
		pos: CatalogObject{RA: 5.9195, Dec: 7.4071}.equatorialPos(), mag: 0.42,
	}
	unnamedCustom = fakeObject{
		typ: customObjectType,
		pos: CatalogObject{RA: 5.9195, Dec: 7.4071}.equatorialPos(),
	}
)

type obsListFixture struct {
	store     *ObservingListStore
	clock     *fakeClock
	observer  *fakeObserver
	selection *fakeSelection
	sky       *fakeSky
	path      string
}

func newObsListFixture(t *testing.T, listName string) *obsListFixture {
	t.Helper()
	f := &obsListFixture{
		clock:     clockAt(time.Date(2024, 3, 1, 20, 30, 0, 0, time.UTC), 1),
		observer:  &fakeObserver{loc: Location{Name: "Paris", Country: "France", Latitude: 48.85, Longitude: 2.35}},
		selection: &fakeSelection{},
		sky:       &fakeSky{constellation: "Ori", fov: 60},
		path:      filepath.Join(t.TempDir(), "observingList.json"),
	}
	f.store = f.newStore(listName, nopLogger())
	return f
}

func (f *obsListFixture) newStore(listName string, log Logger) *ObservingListStore {
	s := NewObservingListStore(f.path, listName, ObsListDeps{
		Clock:     f.clock,
		Observer:  f.observer,
		Selection: f.selection,
		Sky:       f.sky,
	}, log)
	s.now = func() time.Time { return time.Date(2024, 3, 1, 21, 30, 0, 0, time.UTC) }
	return s
}

func TestObsListModes(t *testing.T) {
	f := newObsListFixture(t, "")
	assert.Equal(t, CreationMode, f.store.Mode())
	assert.Equal(t, "create", f.store.Mode().String())

	f = newObsListFixture(t, "Winter")
	assert.Equal(t, EditMode, f.store.Mode())
	assert.Equal(t, "edit", f.store.Mode().String())
}

func TestObsListAddWithoutSelection(t *testing.T) {
	f := newObsListFixture(t, "Winter")
	log, logs := newObservedLogger()
	f.store = f.newStore("Winter", log)

	id, err := f.store.AddCurrentSelection()
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Empty(t, id)
	assert.Zero(t, f.store.Len())
	assert.Zero(t, f.store.Table().count())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.NoFileExists(t, f.path)
}

func TestObsListAddNamedObject(t *testing.T) {
	f := newObsListFixture(t, "Winter")
	f.selection.obj = betelgeuse

	id, err := f.store.AddCurrentSelection()
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.Len())
	rowID, _ := f.store.Table().idAt(0)
	assert.Equal(t, id, rowID)

	rec, ok := f.store.Get(id)
	require.True(t, ok)
	assert.Equal(t, ObservingListRecord{
		Name:          "Betelgeuse",
		NameI18n:      "Bételgeuse",
		Type:          "Star",
		Magnitude:     "0.42",
		Constellation: "Ori",
		JD:            "2024-03-01 21:30:00",
		Location:      "Paris, France",
	}, rec)
}

func TestObsListAddUnnamedCustomObject(t *testing.T) {
	f := newObsListFixture(t, "Winter")
	f.selection.obj = unnamedCustom

	id, err := f.store.AddCurrentSelection()
	require.NoError(t, err)

	rec, _ := f.store.Get(id)
	assert.Equal(t, "5h55m10.2s", rec.RA)
	assert.Equal(t, "+7°24'25.6\"", rec.Dec)
	assert.Equal(t, rec.RA+", "+rec.Dec, rec.Name)
	assert.Equal(t, unnamedObjectLabel, rec.NameI18n)
	assert.Positive(t, rec.FOV)
	assert.Equal(t, 60.0, rec.FOV)
	assert.False(t, rec.IsVisibleMarker)
}

func TestObsListAddCustomObjectVariants(t *testing.T) {
	tests := []struct {
		name   string
		object fakeObject
		sky    fakeSky
		check  func(t *testing.T, rec ObservingListRecord)
	}{
		{
			name:   "named marker",
			object: fakeObject{name: "Marker 1", typ: customObjectType, pos: Vec3{1, 0, 0}},
			sky:    fakeSky{fov: 60},
			check: func(t *testing.T, rec ObservingListRecord) {
				assert.Equal(t, "Marker 1", rec.Name)
				assert.True(t, rec.IsVisibleMarker)
				assert.Equal(t, "0h00m00.0s", rec.RA)
				assert.Equal(t, "+0°00'00.0\"", rec.Dec)
				assert.Zero(t, rec.FOV)
				assert.Equal(t, unknownConstellation, rec.Constellation)
			},
		},
		{
			name:   "unnamed object without field of view",
			object: fakeObject{typ: customObjectType, pos: Vec3{0, 0, 1}},
			sky:    fakeSky{fov: 0},
			check: func(t *testing.T, rec ObservingListRecord) {
				assert.Equal(t, "0h00m00.0s, +90°00'00.0\"", rec.Name)
				assert.Zero(t, rec.FOV)
			},
		},
		{
			name:   "nebula takes the DSO designation",
			object: fakeObject{name: "Andromeda Galaxy", typ: nebulaType, pos: Vec3{1, 0, 0}, mag: 3.44},
			sky:    fakeSky{designation: "M 31", constellation: "And"},
			check: func(t *testing.T, rec ObservingListRecord) {
				assert.Equal(t, "M 31", rec.Name)
				assert.Empty(t, rec.RA)
				assert.Equal(t, "3.44", rec.Magnitude)
				assert.Equal(t, "And", rec.Constellation)
			},
		},
		{
			name:   "nebula without designation keeps its name",
			object: fakeObject{name: "Orion Nebula", typ: nebulaType, pos: Vec3{1, 0, 0}},
			sky:    fakeSky{},
			check: func(t *testing.T, rec ObservingListRecord) {
				assert.Equal(t, "Orion Nebula", rec.Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newObsListFixture(t, "Winter")
			sky := tt.sky
			f.store.deps.Sky = &sky
			f.selection.obj = tt.object

			id, err := f.store.AddCurrentSelection()
			require.NoError(t, err)
			rec, _ := f.store.Get(id)
			tt.check(t, rec)
		})
	}
}

func TestObserverLocationString(t *testing.T) {
	assert.Equal(t, "48.85, 2.35", observerLocationString(Location{Latitude: 48.85, Longitude: 2.35}))
	assert.Equal(t, "Paris, France", observerLocationString(Location{Name: "Paris", Country: "France"}))
	assert.Equal(t, "Paris, France(Île-de-France)", observerLocationString(Location{Name: "Paris, France(Île-de-France)"}))
}

func TestObsListSaveWithoutName(t *testing.T) {
	f := newObsListFixture(t, "")
	log, logs := newObservedLogger()
	f.store = f.newStore("", log)
	f.selection.obj = betelgeuse

	id, err := f.store.AddCurrentSelection()
	assert.ErrorIs(t, err, ErrNoListName)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, f.store.Len())
	assert.NoFileExists(t, f.path)
	assert.Equal(t, 1, logs.FilterMessage("observing list not saved: the list has no name").Len())
}

func TestObsListSaveWithoutPath(t *testing.T) {
	f := newObsListFixture(t, "Winter")
	f.path = ""
	f.store = f.newStore("Winter", nopLogger())
	f.selection.obj = betelgeuse

	_, err := f.store.AddCurrentSelection()
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestObsListSaveDocument(t *testing.T) {
	f := newObsListFixture(t, "Winter")
	f.store.newID = sequentialIDs("rec-")

	f.selection.obj = betelgeuse
	starID, err := f.store.AddCurrentSelection()
	require.NoError(t, err)
	f.selection.obj = unnamedCustom
	customID, err := f.store.AddCurrentSelection()
	require.NoError(t, err)

	doc := readJSONObject(t, f.path)
	require.Contains(t, doc, "Winter")
	list := doc["Winter"].(map[string]any)
	assert.Equal(t, f.store.ListUUID(), list[listUUIDKey])
	assert.Equal(t, "Fri Mar 1 21:30:00 2024", list[listCreatedAtKey])

	star := list[starID].(map[string]any)
	assert.ElementsMatch(t,
		[]string{"constellation", "jd", "location", "magnitude", "name", "nameI18n", "type"},
		keysOf(star))

	custom := list[customID].(map[string]any)
	assert.ElementsMatch(t,
		[]string{"constellation", "dec", "fov", "jd", "location", "magnitude", "name", "nameI18n", "ra", "type"},
		keysOf(custom))
	assert.Equal(t, 60.0, custom["fov"])
}

func TestObsListKeepsIdentityAcrossSaves(t *testing.T) {
	f := newObsListFixture(t, "Winter")
	f.selection.obj = betelgeuse

	_, err := f.store.AddCurrentSelection()
	require.NoError(t, err)
	first := f.store.ListUUID()
	require.NotEmpty(t, first)

	_, err = f.store.AddCurrentSelection()
	require.NoError(t, err)
	assert.Equal(t, first, f.store.ListUUID())

	listUUID, err := f.store.Finalize()
	require.NoError(t, err)
	assert.Equal(t, first, listUUID)
}

func TestObsListSaveKeepsOtherLists(t *testing.T) {
	f := newObsListFixture(t, "Winter")
	other := `{"Summer": {"UUID": "summer-uuid", "Current date time": "Sat Jun 1 22:00:00 2024", "x": {"name": "Vega"}}}`
	require.NoError(t, os.WriteFile(f.path, []byte(other), 0o644))

	f.selection.obj = betelgeuse
	_, err := f.store.AddCurrentSelection()
	require.NoError(t, err)

	doc := readJSONObject(t, f.path)
	assert.Contains(t, doc, "Summer")
	assert.Contains(t, doc, "Winter")
	assert.Equal(t, "summer-uuid", doc["Summer"].(map[string]any)[listUUIDKey])
}

func TestObsListRenameReplacesKey(t *testing.T) {
	f := newObsListFixture(t, "Winter")
	f.selection.obj = betelgeuse
	_, err := f.store.AddCurrentSelection()
	require.NoError(t, err)

	require.NoError(t, f.store.Rename("  Winter 2024 "))
	assert.Equal(t, "Winter 2024", f.store.Name())
	require.NoError(t, f.store.Save())

	doc := readJSONObject(t, f.path)
	assert.NotContains(t, doc, "Winter")
	assert.Contains(t, doc, "Winter 2024")
}

func TestObsListNameAlreadyUsed(t *testing.T) {
	f := newObsListFixture(t, "Winter")
	f.selection.obj = betelgeuse
	for range 3 {
		_, err := f.store.AddCurrentSelection()
		require.NoError(t, err)
	}
	require.NoError(t, f.store.Rename("Winter"))

	fresh := f.newStore("", nopLogger())
	assert.ErrorIs(t, fresh.Rename("Winter"), ErrListExists)
	assert.Empty(t, fresh.Name())
	require.NoError(t, fresh.Rename("Spring"))

	log, logs := newObservedLogger()
	unloaded := f.newStore("Winter", log)
	id, err := unloaded.AddCurrentSelection()
	assert.ErrorIs(t, err, ErrListExists)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, logs.FilterMessage("observing list not saved: name already used").Len())

	winter := readJSONObject(t, f.path)["Winter"].(map[string]any)
	assert.Len(t, winter, 3+2)
	assert.Equal(t, f.store.ListUUID(), winter[listUUIDKey])
}

func TestObsListSaveBacksUpUnreadableFile(t *testing.T) {
	f := newObsListFixture(t, "Winter")
	require.NoError(t, os.WriteFile(f.path, []byte("{not json"), 0o644))

	f.selection.obj = betelgeuse
	_, err := f.store.AddCurrentSelection()
	require.NoError(t, err)

	backup, err := os.ReadFile(f.path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(backup))
	assert.Contains(t, readJSONObject(t, f.path), "Winter")
}

func TestObsListLoad(t *testing.T) {
	f := newObsListFixture(t, "Winter")
	f.selection.obj = betelgeuse
	starID, err := f.store.AddCurrentSelection()
	require.NoError(t, err)
	f.selection.obj = unnamedCustom
	customID, err := f.store.AddCurrentSelection()
	require.NoError(t, err)

	edited := f.newStore("Winter", nopLogger())
	require.NoError(t, edited.Load())
	assert.Equal(t, 2, edited.Len())
	assert.Equal(t, 2, edited.Table().count())
	assert.Equal(t, f.store.ListUUID(), edited.ListUUID())

	for _, id := range []string{starID, customID} {
		want, _ := f.store.Get(id)
		got, ok := edited.Get(id)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	missing := f.newStore("Spring", nopLogger())
	assert.ErrorIs(t, missing.Load(), ErrNotFound)

	created := f.newStore("", nopLogger())
	assert.NoError(t, created.Load())
	assert.Zero(t, created.Len())
}

func TestObsListLoadClampsNegativeFOV(t *testing.T) {
	f := newObsListFixture(t, "Winter")
	content := `{"Winter": {"UUID": "u", "Current date time": "d", "r1": {"name": "x", "fov": -5}}}`
	require.NoError(t, os.WriteFile(f.path, []byte(content), 0o644))

	require.NoError(t, f.store.Load())
	rec, ok := f.store.Get("r1")
	require.True(t, ok)
	assert.Zero(t, rec.FOV)
}

func TestObsListRemove(t *testing.T) {
	f := newObsListFixture(t, "Winter")
	f.selection.obj = betelgeuse
	first, err := f.store.AddCurrentSelection()
	require.NoError(t, err)
	second, err := f.store.AddCurrentSelection()
	require.NoError(t, err)

	require.NoError(t, f.store.Remove(first))
	assert.Equal(t, 1, f.store.Len())
	assert.Equal(t, -1, f.store.Table().indexOf(first))

	list := readJSONObject(t, f.path)["Winter"].(map[string]any)
	assert.NotContains(t, list, first)
	assert.Contains(t, list, second)

	assert.ErrorIs(t, f.store.Remove(first), ErrNotFound)
}

func TestObsListExportImport(t *testing.T) {
	for _, name := range []string{"winter.json", "winter.html"} {
		t.Run(name, func(t *testing.T) {
			f := newObsListFixture(t, "Winter")
			f.selection.obj = betelgeuse
			starID, err := f.store.AddCurrentSelection()
			require.NoError(t, err)
			f.selection.obj = unnamedCustom
			customID, err := f.store.AddCurrentSelection()
			require.NoError(t, err)

			exportPath := filepath.Join(t.TempDir(), name)
			require.NoError(t, f.store.Export(exportPath))

			g := newObsListFixture(t, "")
			n, err := g.store.Import(exportPath)
			require.NoError(t, err)
			assert.Equal(t, 2, n)
			assert.Equal(t, "Winter", g.store.Name())

			for _, id := range []string{starID, customID} {
				want, _ := f.store.Get(id)
				got, ok := g.store.Get(id)
				require.True(t, ok, "missing %s", id)
				assert.Equal(t, want, got)
			}
			assert.FileExists(t, g.path)
		})
	}
}

func TestObsListExportRequiresName(t *testing.T) {
	f := newObsListFixture(t, "")
	assert.ErrorIs(t, f.store.Export(filepath.Join(t.TempDir(), "list.json")), ErrNoListName)
}

func TestObsListExportJSONHoldsOnlyThisList(t *testing.T) {
	f := newObsListFixture(t, "Winter")
	require.NoError(t, os.WriteFile(f.path, []byte(`{"Summer": {"UUID": "s", "Current date time": "d"}}`), 0o644))
	f.selection.obj = betelgeuse
	_, err := f.store.AddCurrentSelection()
	require.NoError(t, err)

	exportPath := filepath.Join(t.TempDir(), "winter.json")
	require.NoError(t, f.store.Export(exportPath))

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	var lists map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &lists))
	assert.Len(t, lists, 1)
	assert.Contains(t, lists, "Winter")
}

func TestObsListFinalizeWithoutName(t *testing.T) {
	f := newObsListFixture(t, "")
	listUUID, err := f.store.Finalize()
	assert.ErrorIs(t, err, ErrNoListName)
	assert.Empty(t, listUUID)
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
