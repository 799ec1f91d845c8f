package classifier

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/MuchTitan/go-log-collector/internal/config"
)

// ErrUnavailable signals that the classifier capability could not run for a
// line. Callers treat the line as unclassified and skip anomaly recording.
var ErrUnavailable = errors.New("classifier unavailable")

// Classifier turns one log line into a label string. The only contract is
// label-or-unavailable, no confidence scores and no batching.
type Classifier interface {
	Classify(line string) (string, error)
}

type rule struct {
	pattern *regexp.Regexp
	label   string
}

// RuleClassifier matches a line against an ordered list of regex rules.
// The first matching rule wins, lines matching no rule get the default
// label.
type RuleClassifier struct {
	rules        []rule
	defaultLabel string
}

func NewRuleClassifier(cfg config.ClassifierConfig) (*RuleClassifier, error) {
	rc := &RuleClassifier{
		defaultLabel: cfg.DefaultLabel,
	}

	for _, r := range cfg.Rules {
		if r.Label == "" {
			return nil, fmt.Errorf("classifier rule %q has no label", r.Pattern)
		}
		pattern, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("could not compile classifier rule %q: %w", r.Pattern, err)
		}
		rc.rules = append(rc.rules, rule{pattern: pattern, label: r.Label})
	}

	return rc, nil
}

func (rc *RuleClassifier) Classify(line string) (string, error) {
	for _, r := range rc.rules {
		if r.pattern.MatchString(line) {
			return r.label, nil
		}
	}
	return rc.defaultLabel, nil
}
