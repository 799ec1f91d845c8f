package agent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MuchTitan/go-log-collector/internal/config"
	"github.com/sirupsen/logrus"
)

// TimestampFormat is the client-side timestamp sent with every upload.
const TimestampFormat = "20060102_150405"

// Snapshot is one batch of newly read log bytes from one tick, aggregated
// across all monitored files on a host.
type Snapshot struct {
	Timestamp time.Time
	Data      []byte
	Files     int
}

// Agent harvests new log content from the monitored files and delivers it
// to the central service. One agent process exclusively owns its state file.
type Agent struct {
	hostname  string
	interval  time.Duration
	stateFile string
	paths     []string
	scanDir   string
	uploader  *Uploader
	state     State
}

func New(cfg config.AgentConfig) (*Agent, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("no server url provided for agent")
	}

	paths := cfg.Paths
	if len(paths) == 0 && cfg.ScanDir == "" {
		paths = WellKnownLogFiles
	}

	return &Agent{
		hostname:  cfg.Hostname,
		interval:  cfg.Interval(),
		stateFile: cfg.StateFile,
		paths:     paths,
		scanDir:   cfg.ScanDir,
		uploader:  NewUploader(cfg.ServerURL, cfg.Hostname, cfg.UploadTimeout()),
	}, nil
}

// Run loops discover -> tick -> persist -> upload -> sleep until the context
// is cancelled. Every tick is fully synchronous and state is persisted
// before the sleep, so a cancellation during sleep loses nothing.
func (a *Agent) Run(ctx context.Context) error {
	a.state = LoadState(a.stateFile)
	logrus.WithFields(logrus.Fields{
		"hostname": a.hostname,
		"interval": a.interval.String(),
	}).Info("Starting tail agent")

	for {
		a.runTick(ctx)

		select {
		case <-ctx.Done():
			logrus.Info("Stopping tail agent")
			return nil
		case <-time.After(a.interval):
		}
	}
}

func (a *Agent) runTick(ctx context.Context) {
	files := Discover(a.paths, a.scanDir)
	snapshot := Tick(a.state, files)

	if err := PersistState(a.stateFile, a.state); err != nil {
		logrus.WithField("file", a.stateFile).WithError(err).Error("could not persist offset state")
	}

	if snapshot == nil {
		logrus.Debug("no new log data this tick")
		return
	}

	logrus.WithFields(logrus.Fields{
		"files": snapshot.Files,
		"bytes": len(snapshot.Data),
	}).Info("collected log snapshot")

	if err := a.uploader.Upload(ctx, snapshot); err != nil {
		// No retry queue: the next tick produces an independent snapshot.
		logrus.WithError(err).Warn("snapshot upload failed")
	}
}

// Tick compares every monitored file against its stored offset and collects
// the newly appended byte ranges into one snapshot. It returns nil when no
// file contributed any bytes. Offsets in state are advanced in place.
func Tick(state State, files []string) *Snapshot {
	var buf bytes.Buffer
	contributed := 0

	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			// Unreadable this tick only, offset stays so the data is
			// retried next tick.
			logrus.WithField("path", path).WithError(err).Debug("could not stat file, skipping")
			continue
		}
		length := info.Size()

		offset, known := state[path]
		if !known {
			// First observation: never ship pre-existing content.
			state[path] = length
			continue
		}

		if length < offset {
			// Rotation or truncation, restart from the beginning.
			logrus.WithFields(logrus.Fields{
				"path":   path,
				"offset": offset,
				"length": length,
			}).Info("file shrank, resetting offset")
			offset = 0
			state[path] = 0
		}

		if length == offset {
			continue
		}

		data, err := readRange(path, offset, length)
		if err != nil {
			logrus.WithField("path", path).WithError(err).Warn("could not read file, skipping this tick")
			continue
		}

		fmt.Fprintf(&buf, "==== %s ====\n", path)
		if !utf8.Valid(data) {
			fmt.Fprintf(&buf, "[decode error: invalid utf-8 in %s, replaced invalid bytes]\n", path)
			data = []byte(strings.ToValidUTF8(string(data), "�"))
		}
		buf.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			buf.WriteByte('\n')
		}

		// Advance regardless of decode success so the same bytes are never
		// read twice.
		state[path] = length
		contributed++
	}

	if contributed == 0 {
		return nil
	}

	return &Snapshot{
		Timestamp: time.Now(),
		Data:      buf.Bytes(),
		Files:     contributed,
	}
}

func readRange(path string, offset, length int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error while opening file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("error seeking to offset %d: %w", offset, err)
	}

	data := make([]byte, length-offset)
	if _, err := io.ReadFull(file, data); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			// File shrank between stat and read, next tick handles it.
			return nil, fmt.Errorf("file shrank during read: %w", err)
		}
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return data, nil
}
