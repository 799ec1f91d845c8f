package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for both binaries. The agent
// only reads System and Agent, the server reads System, Server and
// Classifier, but one file format serves both so the same config can be
// shipped to every host.
type Config struct {
	System     SystemConfig     `yaml:"System"`
	Agent      AgentConfig      `yaml:"Agent"`
	Server     ServerConfig     `yaml:"Server"`
	Classifier ClassifierConfig `yaml:"Classifier"`
}

// SystemConfig holds system-wide configuration
type SystemConfig struct {
	LogLevel string `yaml:"logLevel"`
	LogFile  string `yaml:"logFile"`
}

// AgentConfig configures the tail agent
type AgentConfig struct {
	Hostname             string   `yaml:"hostname"`
	ServerURL            string   `yaml:"serverUrl"`
	IntervalSeconds      int      `yaml:"intervalSeconds"`
	StateFile            string   `yaml:"stateFile"`
	Paths                []string `yaml:"paths"`
	ScanDir              string   `yaml:"scanDir"`
	UploadTimeoutSeconds int      `yaml:"uploadTimeoutSeconds"`
}

func (a *AgentConfig) Interval() time.Duration {
	return time.Duration(a.IntervalSeconds) * time.Second
}

func (a *AgentConfig) UploadTimeout() time.Duration {
	return time.Duration(a.UploadTimeoutSeconds) * time.Second
}

// ServerConfig configures the central ingestion service
type ServerConfig struct {
	Listen        string     `yaml:"listen"`
	Port          int        `yaml:"port"`
	ReceivedDir   string     `yaml:"receivedDir"`
	AnomalyFile   string     `yaml:"anomalyFile"`
	DBFile        string     `yaml:"dbFile"`
	BenignLabel   string     `yaml:"benignLabel"`
	MaxUploadSize int64      `yaml:"maxUploadSize"`
	Gelf          GelfConfig `yaml:"gelf"`
}

// GelfConfig configures optional anomaly forwarding to a Graylog endpoint
type GelfConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Mode    string `yaml:"mode"`
}

// ClassifierConfig configures the rule based line classifier
type ClassifierConfig struct {
	DefaultLabel string           `yaml:"defaultLabel"`
	Rules        []ClassifierRule `yaml:"rules"`
}

type ClassifierRule struct {
	Pattern string `yaml:"pattern"`
	Label   string `yaml:"label"`
}

const DefaultMaxUploadSize int64 = 32 << 20 // 32MB

func (c *SystemConfig) GetLogLevel() logrus.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "TRACE":
		return logrus.TraceLevel
	case "DEBUG":
		return logrus.DebugLevel
	case "WARNING":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	default:
		// Default LogLevel Info
		return logrus.InfoLevel
	}
}

// Load reads the config file, expands environment variables, applies
// defaults and sets up logging.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Replace environment variables
	expandedData := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.setupLogging(); err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Agent.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			hostname = "unknown_host"
		}
		c.Agent.Hostname = hostname
	}
	if c.Agent.IntervalSeconds == 0 {
		c.Agent.IntervalSeconds = 30
	}
	if c.Agent.StateFile == "" {
		c.Agent.StateFile = "./agent-state.json"
	}
	if c.Agent.UploadTimeoutSeconds == 0 {
		c.Agent.UploadTimeoutSeconds = 30
	}

	if c.Server.Listen == "" {
		c.Server.Listen = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReceivedDir == "" {
		c.Server.ReceivedDir = "./received_logs"
	}
	if c.Server.AnomalyFile == "" {
		c.Server.AnomalyFile = "./anomalies.log"
	}
	if c.Server.DBFile == "" {
		c.Server.DBFile = "./anomalies.db"
	}
	if c.Server.BenignLabel == "" {
		c.Server.BenignLabel = "GOOD_LOG"
	}
	if c.Server.MaxUploadSize == 0 {
		c.Server.MaxUploadSize = DefaultMaxUploadSize
	}
	if c.Server.Gelf.Mode == "" {
		c.Server.Gelf.Mode = "udp"
	}
	if c.Server.Gelf.Port == 0 {
		c.Server.Gelf.Port = 12201
	}

	if c.Classifier.DefaultLabel == "" {
		c.Classifier.DefaultLabel = "GOOD_LOG"
	}
}

func (c *Config) setupLogging() error {
	writers := []io.Writer{os.Stderr}

	if c.System.LogFile != "" {
		file, err := os.OpenFile(c.System.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, file)
	}

	// Set log level based on config
	logrus.SetLevel(c.System.GetLogLevel())

	// Create multi-writer
	writer := io.MultiWriter(writers...)
	logrus.SetOutput(writer)

	logrus.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339, // Use RFC3339 format (2006-01-02T15:04:05Z07:00)
	})

	return nil
}
