package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeAt(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "session.json"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := storeAt(t)
	want := State{
		Path:        "/home/me/notes.md",
		Markup:      "<h1># Title</h1>\n<p>body &amp; more</p>",
		CaretOffset: 12,
		SavedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want.Path, got.Path)
	assert.Equal(t, want.Markup, got.Markup)
	assert.Equal(t, want.CaretOffset, got.CaretOffset)
	assert.True(t, want.SavedAt.Equal(got.SavedAt))
}

func TestSaveFillsTimestamp(t *testing.T) {
	s := storeAt(t)
	require.NoError(t, s.Save(State{Markup: "<p></p>"}))

	got, err := s.Load()
	require.NoError(t, err)
	assert.False(t, got.SavedAt.IsZero())
}

func TestLoadMissingFile(t *testing.T) {
	s := storeAt(t)
	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLoadCorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not JSON", "{caret: oops"},
		{"missing version", `{"document":{"markup":"<p></p>"}}`},
		{"wrong version", `{"version":99}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := storeAt(t)
			require.NoError(t, os.WriteFile(s.Path(), []byte(tt.content), 0o644))
			_, err := s.Load()
			assert.ErrorIs(t, err, ErrCorruptSession)
		})
	}
}

func TestLoadClampsNegativeOffset(t *testing.T) {
	s := storeAt(t)
	content := `{"version":1,"caret":{"offset":-7},"document":{"markup":"<p></p>"}}`
	require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o644))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, got.CaretOffset)
}

func TestSaveCreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "nested", "deep", "session.json"))
	require.NoError(t, s.Save(State{Markup: "<p></p>"}))

	_, err := s.Load()
	assert.NoError(t, err)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := storeAt(t)
	require.NoError(t, s.Save(State{Markup: "<p>x</p>"}))

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "session.json", entries[0].Name())
}

func TestAutosaverSavesOnTickAndStop(t *testing.T) {
	s := storeAt(t)

	var mu sync.Mutex
	offset := 1
	a := NewAutosaver(s, 20*time.Millisecond, func() State {
		mu.Lock()
		defer mu.Unlock()
		offset++
		return State{Markup: "<p>x</p>", CaretOffset: offset}
	})
	a.Start()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := s.Load(); err == nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	first, err := s.Load()
	require.NoError(t, err, "expected a tick save")

	a.Stop()

	final, err := s.Load()
	require.NoError(t, err)
	assert.Greater(t, final.CaretOffset, first.CaretOffset, "Stop performs a final save")

	// Stop is idempotent.
	a.Stop()
}
