package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/MuchTitan/go-log-collector/internal/anomaly"
	"github.com/MuchTitan/go-log-collector/internal/classifier"
	"github.com/MuchTitan/go-log-collector/internal/config"
	"github.com/sirupsen/logrus"
)

// Server is the central ingestion and classification service. It accepts
// snapshot uploads, persists the raw bytes under the receiving directory,
// classifies every line and records anomalies through the recorder.
type Server struct {
	addr          string
	receivedDir   string
	benignLabel   string
	maxUploadSize int64
	classifier    classifier.Classifier
	recorder      *anomaly.Recorder
	server        *http.Server
}

func New(cfg config.ServerConfig, cls classifier.Classifier, recorder *anomaly.Recorder) (*Server, error) {
	if err := os.MkdirAll(cfg.ReceivedDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create receiving directory: %w", err)
	}

	s := &Server{
		addr:          fmt.Sprintf("%s:%d", cfg.Listen, cfg.Port),
		receivedDir:   cfg.ReceivedDir,
		benignLabel:   cfg.BenignLabel,
		maxUploadSize: cfg.MaxUploadSize,
		classifier:    cls,
		recorder:      recorder,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:        s.addr,
		Handler:     mux,
		ReadTimeout: time.Second * 30,
	}

	return s, nil
}

// Handler exposes the route mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	go func() {
		logrus.WithField("Addr", s.addr).Info("Starting ingestion server")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithField("Addr", s.addr).WithError(err).Error("error during ingestion server")
		}
	}()
	return nil
}

func (s *Server) Shutdown() error {
	logrus.Info("Stopping ingestion server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*60)
	defer shutdownCancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("error during http server shutdown")
		return err
	}
	return nil
}
