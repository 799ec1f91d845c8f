package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/MuchTitan/go-log-collector/internal/anomaly"
	"github.com/MuchTitan/go-log-collector/internal/classifier"
	"github.com/MuchTitan/go-log-collector/internal/config"
	"github.com/MuchTitan/go-log-collector/internal/server"
	"github.com/sirupsen/logrus"
)

type FlagOptions struct {
	configPath *string
}

var opts = FlagOptions{}

func init() {
	opts.configPath = flag.String("cfg", "/etc/log-collector/cfg.yaml", "provide the path to your config file")
	flag.Parse()
}

func main() {
	cfg, err := config.Load(*opts.configPath)
	if err != nil {
		panic(err)
	}

	cls, err := classifier.NewRuleClassifier(cfg.Classifier)
	if err != nil {
		panic(err)
	}

	sink, err := anomaly.NewFileSink(cfg.Server.AnomalyFile)
	if err != nil {
		panic(err)
	}
	defer sink.Close()

	store, err := anomaly.NewStore(cfg.Server.DBFile)
	if err != nil {
		panic(err)
	}
	defer store.Close()

	var forwarder anomaly.Forwarder
	if cfg.Server.Gelf.Enabled {
		gelfForwarder, err := anomaly.NewGELFForwarder(cfg.Server.Gelf)
		if err != nil {
			panic(err)
		}
		defer gelfForwarder.Close()
		forwarder = gelfForwarder
	}

	recorder := anomaly.NewRecorder(sink, store, forwarder)

	srv, err := server.New(cfg.Server, cls, recorder)
	if err != nil {
		panic(err)
	}

	if err := srv.Start(); err != nil {
		panic(err)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	if err := srv.Shutdown(); err != nil {
		logrus.WithError(err).Error("server shutdown failed")
		os.Exit(1)
	}
}
