package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/MuchTitan/go-log-collector/internal/agent"
	"github.com/MuchTitan/go-log-collector/internal/config"
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

	tailAgent, err := agent.New(cfg.Agent)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Cancellation is checked between ticks, state writes finish first.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("Shutdown signal received")
		cancel()
	}()

	if err := tailAgent.Run(ctx); err != nil {
		logrus.WithError(err).Error("agent exited with error")
		os.Exit(1)
	}
}
