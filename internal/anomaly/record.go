package anomaly

import (
	"strings"
	"time"
)

// Record is one anomalous log line. Created on ingestion, never mutated.
type Record struct {
	LoggedAt time.Time // server receipt time
	UploadTS string    // client-reported timestamp, stored verbatim
	Hostname string
	Label    string
	Severity string // optional, "" when the label has no numeric suffix
	Line     string
}

// IsBenign reports whether a classifier label denotes the benign class,
// case-insensitively.
func IsBenign(label, benignLabel string) bool {
	return strings.EqualFold(label, benignLabel)
}

// Severity extracts the numeric suffix of a label: the final "_" separated
// segment when it is purely digits, e.g. BAD_LOG_REASON_3 -> "3". Labels
// without a numeric suffix have no severity.
func Severity(label string) string {
	parts := strings.Split(label, "_")
	last := parts[len(parts)-1]
	if last == "" {
		return ""
	}
	for _, r := range last {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return last
}
