package anomaly

import (
	"fmt"
	"io"

	"github.com/MuchTitan/go-log-collector/internal/config"

	"gopkg.in/Graylog2/go-gelf.v2/gelf"
)

// GELFForwarder ships anomaly records to a Graylog endpoint. It is an
// optional third sink, forwarding failures never affect the mandatory ones.
type GELFForwarder struct {
	writer gelf.Writer
}

func NewGELFForwarder(cfg config.GelfConfig) (*GELFForwarder, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var w gelf.Writer
	var err error
	switch cfg.Mode {
	case "udp":
		w, err = gelf.NewUDPWriter(addr)
	case "tcp":
		w, err = gelf.NewTCPWriter(addr)
	default:
		return nil, fmt.Errorf("mode: '%v' is not supported", cfg.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s writer: %w", cfg.Mode, err)
	}

	return &GELFForwarder{writer: w}, nil
}

func (g *GELFForwarder) Forward(rec Record) error {
	msg := gelf.Message{
		Version:  "1.1",
		Host:     rec.Hostname,
		Short:    rec.Line,
		TimeUnix: float64(rec.LoggedAt.Unix()),
		Level:    gelf.LOG_WARNING,
		Extra: map[string]any{
			"_label":     rec.Label,
			"_upload_ts": rec.UploadTS,
		},
	}
	if rec.Severity != "" {
		msg.Extra["_severity"] = rec.Severity
	}
	return g.writer.WriteMessage(&msg)
}

func (g *GELFForwarder) Close() error {
	if closer, ok := g.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
