package world

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SnapshotVersion is written into every archive's metadata.
const SnapshotVersion = "2"

// Archive entry names. Saves are zip archives with these fixed members;
// Load also accepts a bare JSON document written by older sessions.
const (
	entryState    = "state.json"
	entryMetadata = "metadata.json"
	entryVersion  = "version.txt"
)

// snapshotDoc is the persisted world document.
type snapshotDoc struct {
	Characters map[string]*Character `json:"characters"`
	WorldTime  int                   `json:"world_time"`
	Logs       []string              `json:"logs"`
	Weather    Weather               `json:"weather"`
}

// Metadata rides alongside the state in the archive.
type Metadata struct {
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	ID        uuid.UUID `json:"id"`
}

// Store persists the world to a single snapshot file. Writes are whole
// file and atomic (temp + rename); there is no finer transactionality.
type Store struct {
	Path string
	log  zerolog.Logger
}

// NewStore returns a store writing to path.
func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{Path: path, log: log}
}

// Save writes the current world state. Failures are reported to the
// caller but are never fatal to a turn; the next save supersedes.
func (st *Store) Save(s *State) error {
	doc := snapshotDoc{
		Characters: s.Characters,
		WorldTime:  s.Clock.Minutes,
		Logs:       s.Logs,
		Weather:    s.Weather,
	}
	if doc.Logs == nil {
		doc.Logs = []string{}
	}

	stateData, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	metaData, err := json.MarshalIndent(Metadata{
		Version:   SnapshotVersion,
		Timestamp: time.Now().UTC(),
		ID:        uuid.New(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot metadata: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range []struct {
		name string
		data []byte
	}{
		{entryState, stateData},
		{entryMetadata, metaData},
		{entryVersion, []byte(SnapshotVersion + "\n")},
	} {
		w, err := zw.Create(entry.name)
		if err != nil {
			return fmt.Errorf("failed to create archive entry %s: %w", entry.name, err)
		}
		if _, err := w.Write(entry.data); err != nil {
			return fmt.Errorf("failed to write archive entry %s: %w", entry.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	if dir := filepath.Dir(st.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create save directory: %w", err)
		}
	}
	tmp := st.Path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, st.Path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	st.log.Debug().Str("path", st.Path).Int("characters", len(s.Characters)).Msg("world saved")
	return nil
}

// Load reads the snapshot back. A missing file is not an error: it
// returns (nil, nil) so the caller can start from the seed. The archive
// format is preferred; a bare JSON document is accepted as a fallback.
func (st *Store) Load() (*State, error) {
	data, err := os.ReadFile(st.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", st.Path, err)
	}

	stateData := data
	if zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
		stateData, err = readArchiveEntry(zr, entryState)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot archive %s: %w", st.Path, err)
		}
		if metaRaw, err := readArchiveEntry(zr, entryMetadata); err == nil {
			var meta Metadata
			if json.Unmarshal(metaRaw, &meta) == nil {
				st.log.Debug().Str("version", meta.Version).Time("saved_at", meta.Timestamp).Msg("loading snapshot")
			}
		}
	}

	var doc snapshotDoc
	if err := json.Unmarshal(stateData, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", st.Path, err)
	}

	for name, c := range doc.Characters {
		c.Name = name
		if c.Level == 0 {
			c.Level = 1
		}
	}
	return &State{
		Characters: doc.Characters,
		Clock:      Clock{Minutes: doc.WorldTime},
		Logs:       doc.Logs,
		Weather:    doc.Weather,
	}, nil
}

func readArchiveEntry(zr *zip.Reader, name string) ([]byte, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
