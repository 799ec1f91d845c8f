package server

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MuchTitan/go-log-collector/internal/anomaly"
	"github.com/sirupsen/logrus"
)

const timestampFormat = "20060102_150405"

type uploadResponse struct {
	Status       string `json:"status"`
	SavedAs      string `json:"saved_as"`
	LinesScanned int    `json:"lines_scanned"`
	NonGoodCount int    `json:"non_good_count"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// sanitizeComponent strips path separators and parent-directory sequences so
// client supplied values cannot escape the receiving directory.
func sanitizeComponent(value string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", "..", "_")
	return replacer.Replace(value)
}

func sanitizeTimestamp(value string) string {
	replacer := strings.NewReplacer(" ", "_", ":", "", "/", "_", "\\", "_", "..", "_")
	return replacer.Replace(value)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "empty filename")
		return
	}

	hostname := r.FormValue("hostname")
	if hostname == "" {
		hostname = "unknown_host"
	}

	timestamp := r.FormValue("timestamp")
	if timestamp == "" {
		// fallback to server-side time if client didn't send it
		timestamp = time.Now().UTC().Format(timestampFormat)
	}

	// Build filename: hostname_timestamp_originalname
	originalName := sanitizeComponent(filepath.Base(header.Filename))
	outName := sanitizeComponent(hostname) + "_" + sanitizeTimestamp(timestamp) + "_" + originalName
	outPath := filepath.Join(s.receivedDir, outName)

	out, err := os.Create(outPath)
	if err != nil {
		logrus.WithField("file", outPath).WithError(err).Error("could not create received file")
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	size, err := io.Copy(out, file)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		logrus.WithField("file", outPath).WithError(err).Error("could not write received file")
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	logrus.WithFields(logrus.Fields{
		"file":     outName,
		"bytes":    size,
		"hostname": hostname,
	}).Info("received log snapshot")

	linesScanned, nonGoodCount := s.classifyAndPersist(outPath, hostname, timestamp)

	writeJSON(w, http.StatusOK, uploadResponse{
		Status:       "ok",
		SavedAs:      outName,
		LinesScanned: linesScanned,
		NonGoodCount: nonGoodCount,
	})
}

// classifyAndPersist reads the stored snapshot line by line, classifies each
// non-blank line and records every non-benign one. Classifier failures
// degrade to unclassified lines, the raw file is retained either way.
func (s *Server) classifyAndPersist(storedFile, hostname, uploadTS string) (int, int) {
	file, err := os.Open(storedFile)
	if err != nil {
		logrus.WithField("file", storedFile).WithError(err).Error("could not reopen stored snapshot for classification")
		return 0, 0
	}
	defer file.Close()

	linesScanned := 0
	nonGoodCount := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		linesScanned++

		label, err := s.classifier.Classify(line)
		if err != nil {
			// Unclassified: skip anomaly recording, never fail the request.
			logrus.WithError(err).Warn("classifier unavailable for line")
			continue
		}

		if anomaly.IsBenign(label, s.benignLabel) {
			continue
		}

		s.recorder.Record(anomaly.Record{
			LoggedAt: time.Now(),
			UploadTS: uploadTS,
			Hostname: hostname,
			Label:    label,
			Severity: anomaly.Severity(label),
			Line:     line,
		})
		nonGoodCount++
	}

	if err := scanner.Err(); err != nil {
		logrus.WithField("file", storedFile).WithError(err).Error("error scanning stored snapshot")
	}

	return linesScanned, nonGoodCount
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
