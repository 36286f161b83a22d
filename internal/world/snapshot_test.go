package world

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testState() *State {
	mana := 120
	return &State{
		Characters: map[string]*Character{
			"Elora": {
				Name: "Elora", Role: "Apothicaire", Age: 31,
				Pos: [2]int{4, 4}, Energy: 80, Mana: &mana,
				Stats: map[string]int{"MAGIE": 8, "SAVOIR": 9},
				XP:    40, Level: 2,
				Inventory: []string{"Potion de Soin"},
				Gold:      85,
				Rel:       map[string]int{"Kael": 55},
				BusyUntil: 1230,
			},
			"Kael": {
				Name: "Kael", Role: "Forgeron",
				Pos: [2]int{1, 2}, Energy: 60, Level: 1,
			},
		},
		Clock:   Clock{Minutes: 1215},
		Logs:    []string{"**20h15 - Elora** ..."},
		Weather: Weather{Condition: "Pluvieux 🌧️"},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world_state.sav")
	store := NewStore(path, zerolog.Nop())

	orig := testState()
	require.NoError(t, store.Save(orig))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, orig.Clock.Minutes, loaded.Clock.Minutes)
	assert.Equal(t, orig.Logs, loaded.Logs)
	assert.Equal(t, orig.Weather, loaded.Weather)
	assert.Equal(t, orig.Characters, loaded.Characters)
}

func TestSnapshotIsArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world_state.sav")
	store := NewStore(path, zerolog.Nop())
	require.NoError(t, store.Save(testState()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err, "snapshot should be a zip archive")

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["state.json"])
	assert.True(t, names["metadata.json"])
	assert.True(t, names["version.txt"])
}

func TestLoadBareJSONFallback(t *testing.T) {
	// Older sessions wrote the document directly, without the archive
	// wrapper; Load must still accept it.
	path := filepath.Join(t.TempDir(), "world_state.json")

	doc := map[string]any{
		"characters": map[string]any{
			"Lila": map[string]any{"role": "Aubergiste", "pos": []int{3, 3}, "energy": 90},
		},
		"world_time": 600,
		"logs":       []string{"a", "b"},
		"weather":    "Brumeux 🌫️",
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	store := NewStore(path, zerolog.Nop())
	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, 600, loaded.Clock.Minutes)
	assert.Equal(t, "Brumeux 🌫️", loaded.Weather.Condition)

	lila := loaded.Characters["Lila"]
	require.NotNil(t, lila)
	assert.Equal(t, "Lila", lila.Name)
	assert.Equal(t, 90, lila.Energy)
	// Level is backfilled for records that predate progression.
	assert.Equal(t, 1, lila.Level)
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.sav"), zerolog.Nop())
	loaded, err := store.Load()
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSaveIsAtomicReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world_state.sav")
	store := NewStore(path, zerolog.Nop())

	require.NoError(t, store.Save(testState()))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	st := testState()
	st.Clock.Minutes = 9999
	require.NoError(t, store.Save(st))

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// No temp file left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWeatherUnmarshalRecordAndString(t *testing.T) {
	var w Weather
	require.NoError(t, json.Unmarshal([]byte(`"Orageux ⛈️"`), &w))
	assert.Equal(t, "Orageux ⛈️", w.Condition)

	temp := `{"type":"Pluvieux 🌧️","temperature":12}`
	require.NoError(t, json.Unmarshal([]byte(temp), &w))
	assert.Equal(t, "Pluvieux 🌧️", w.Condition)
	require.NotNil(t, w.Temperature)
	assert.Equal(t, 12, *w.Temperature)
}
