package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadState_MissingFile(t *testing.T) {
	state := LoadState(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.NotNil(t, state)
	assert.Empty(t, state)
}

func TestLoadState_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	state := LoadState(path)
	assert.Empty(t, state)
}

func TestPersistState_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	state := State{
		"/var/log/syslog":   int64(1234),
		"/var/log/auth.log": int64(0),
	}
	require.NoError(t, PersistState(path, state))

	loaded := LoadState(path)
	assert.Equal(t, state, loaded)
}

func TestPersistState_OverwritesPreviousState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	require.NoError(t, PersistState(path, State{"/var/log/syslog": 10}))
	require.NoError(t, PersistState(path, State{"/var/log/syslog": 20}))

	loaded := LoadState(path)
	assert.Equal(t, int64(20), loaded["/var/log/syslog"])
}

func TestPersistState_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	require.NoError(t, PersistState(path, State{"/var/log/syslog": 10}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}
