// Package session persists editing state between runs: the file being
// edited, the serialized document, and the caret position. State lives in a
// single JSON file written atomically.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	// ErrNoSession reports that no session file exists yet.
	ErrNoSession = errors.New("no saved session")
	// ErrCorruptSession reports a session file that is not valid JSON or is
	// missing required fields.
	ErrCorruptSession = errors.New("corrupt session file")
)

// formatVersion guards against reading files written by an incompatible
// layout.
const formatVersion = 1

// State is everything that survives between runs.
type State struct {
	Path        string    // document file path, empty for an unsaved buffer
	Markup      string    // serialized document
	CaretOffset int       // absolute caret offset into the document
	SavedAt     time.Time
}

// Store reads and writes session state at a fixed location.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the session file location.
func (s *Store) Path() string { return s.path }

// Load reads the saved session. A missing file is ErrNoSession; unreadable
// content is ErrCorruptSession.
func (s *Store) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, ErrNoSession
		}
		return State{}, fmt.Errorf("read session: %w", err)
	}

	if !gjson.ValidBytes(data) {
		return State{}, fmt.Errorf("%w: invalid JSON", ErrCorruptSession)
	}
	root := gjson.ParseBytes(data)
	if v := root.Get("version"); !v.Exists() || v.Int() != formatVersion {
		return State{}, fmt.Errorf("%w: unsupported version %s", ErrCorruptSession, v.Raw)
	}

	st := State{
		Path:        root.Get("document.path").String(),
		Markup:      root.Get("document.markup").String(),
		CaretOffset: int(root.Get("caret.offset").Int()),
	}
	if saved := root.Get("saved_at"); saved.Exists() {
		if ts, err := time.Parse(time.RFC3339, saved.String()); err == nil {
			st.SavedAt = ts
		}
	}
	if st.CaretOffset < 0 {
		st.CaretOffset = 0
	}
	return st, nil
}

// Save writes the session atomically: a temp file in the same directory,
// fsynced, then renamed over the target.
func (s *Store) Save(st State) error {
	if st.SavedAt.IsZero() {
		st.SavedAt = time.Now()
	}

	data := []byte("{}")
	var err error
	for _, f := range []struct {
		path  string
		value any
	}{
		{"version", formatVersion},
		{"saved_at", st.SavedAt.Format(time.RFC3339)},
		{"document.path", st.Path},
		{"document.markup", st.Markup},
		{"caret.offset", st.CaretOffset},
	} {
		if data, err = sjson.SetBytes(data, f.path, f.value); err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("session temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}
