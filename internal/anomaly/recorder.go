package anomaly

import (
	"github.com/sirupsen/logrus"
)

type Appender interface {
	Append(Record) error
}

type Inserter interface {
	Insert(Record) error
}

type Forwarder interface {
	Forward(Record) error
}

// Recorder fans one anomaly record out to the append-only file, the
// structured store and the optional GELF forwarder. The targets are
// independent best-effort sinks, not a transaction: a failure in one is
// logged and never blocks the others or the request.
type Recorder struct {
	sink      Appender
	store     Inserter
	forwarder Forwarder
}

func NewRecorder(sink Appender, store Inserter, forwarder Forwarder) *Recorder {
	return &Recorder{
		sink:      sink,
		store:     store,
		forwarder: forwarder,
	}
}

func (r *Recorder) Record(rec Record) {
	if err := r.sink.Append(rec); err != nil {
		logrus.WithFields(logrus.Fields{
			"hostname": rec.Hostname,
			"label":    rec.Label,
		}).WithError(err).Error("could not append anomaly to file sink")
	}

	if r.store != nil {
		if err := r.store.Insert(rec); err != nil {
			logrus.WithFields(logrus.Fields{
				"hostname": rec.Hostname,
				"label":    rec.Label,
			}).WithError(err).Error("could not insert anomaly into store")
		}
	}

	if r.forwarder != nil {
		if err := r.forwarder.Forward(rec); err != nil {
			logrus.WithError(err).Warn("could not forward anomaly via gelf")
		}
	}
}
