package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// State maps an absolute file path to the last byte offset already shipped.
// It is exclusively owned by one agent process and rewritten after every
// tick.
type State map[string]int64

// LoadState reads the persisted offset mapping. A missing or unreadable
// state file yields an empty mapping; offsets are then initialized to the
// current end of file on first observation so historical content is never
// re-shipped.
func LoadState(path string) State {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.WithField("file", path).WithError(err).Warn("could not read state file, starting fresh")
		}
		return State{}
	}

	state := State{}
	if err := json.Unmarshal(data, &state); err != nil {
		logrus.WithField("file", path).WithError(err).Warn("could not parse state file, starting fresh")
		return State{}
	}
	return state
}

// PersistState writes the offset mapping through a temp file in the same
// directory followed by a rename, so a crash mid-write cannot corrupt
// previously good offsets.
func PersistState(path string, state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal state: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".agent-state-*.json")
	if err != nil {
		return fmt.Errorf("could not create temp state file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("could not write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("could not close temp state file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("could not replace state file: %w", err)
	}
	return nil
}
