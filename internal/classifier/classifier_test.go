package classifier

import (
	"testing"

	"github.com/MuchTitan/go-log-collector/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleClassifier_FirstMatchWins(t *testing.T) {
	cls, err := NewRuleClassifier(config.ClassifierConfig{
		DefaultLabel: "GOOD_LOG",
		Rules: []config.ClassifierRule{
			{Pattern: `auth failure`, Label: "BAD_LOG_AUTH_5"},
			{Pattern: `failure`, Label: "BAD_LOG_GENERIC_1"},
		},
	})
	require.NoError(t, err)

	label, err := cls.Classify("auth failure for root")
	require.NoError(t, err)
	assert.Equal(t, "BAD_LOG_AUTH_5", label)
}

func TestRuleClassifier_DefaultLabel(t *testing.T) {
	cls, err := NewRuleClassifier(config.ClassifierConfig{
		DefaultLabel: "GOOD_LOG",
		Rules: []config.ClassifierRule{
			{Pattern: `error`, Label: "BAD_LOG_ERROR"},
		},
	})
	require.NoError(t, err)

	label, err := cls.Classify("systemd started session 42")
	require.NoError(t, err)
	assert.Equal(t, "GOOD_LOG", label)
}

func TestNewRuleClassifier_InvalidPattern(t *testing.T) {
	_, err := NewRuleClassifier(config.ClassifierConfig{
		DefaultLabel: "GOOD_LOG",
		Rules: []config.ClassifierRule{
			{Pattern: `([`, Label: "BAD_LOG"},
		},
	})
	assert.Error(t, err)
}

func TestNewRuleClassifier_MissingLabel(t *testing.T) {
	_, err := NewRuleClassifier(config.ClassifierConfig{
		DefaultLabel: "GOOD_LOG",
		Rules: []config.ClassifierRule{
			{Pattern: `error`},
		},
	})
	assert.Error(t, err)
}
