package agent

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

// WellKnownLogFiles is the default set of host log files the agent watches
// when no explicit paths are configured. Files that do not exist on the
// host are skipped at discovery time.
var WellKnownLogFiles = []string{
	"/var/log/syslog",
	"/var/log/messages",
	"/var/log/dmesg",
	"/var/log/auth.log",
	"/var/log/secure",
	"/var/log/cron.log",
	"/var/log/cron",
	"/var/log/boot.log",
	"/var/log/ufw.log",
	"/var/log/fail2ban.log",
	"/var/log/mysql/error.log",
	"/var/log/postgresql/postgresql.log",
}

// extensionless basenames that are still log files
var logBasenames = []string{
	"syslog",
	"messages",
	"dmesg",
	"secure",
	"cron",
	"maillog",
	"lastlog",
}

// IsLogName reports whether a file basename looks like a log file: a ".log"
// suffix, a rotation segment like "syslog.log.1", or one of the well known
// extensionless names.
func IsLogName(name string) bool {
	if strings.HasSuffix(name, ".log") {
		return true
	}
	if strings.Contains(name, ".log.") {
		return true
	}
	return slices.Contains(logBasenames, name)
}

// Discover resolves the monitored file set for one tick. Static paths are
// taken as-is, scanDir (when set) is walked recursively and filtered through
// IsLogName. Missing or unstattable paths are skipped, never an error.
// Identity is the absolute resolved path, deduplicated.
func Discover(paths []string, scanDir string) []string {
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			logrus.WithField("path", path).WithError(err).Warn("could not resolve path")
			return
		}
		info, err := os.Stat(absPath)
		if err != nil || info.IsDir() {
			return
		}
		if _, exists := seen[absPath]; exists {
			return
		}
		seen[absPath] = struct{}{}
		files = append(files, absPath)
	}

	for _, path := range paths {
		add(path)
	}

	if scanDir != "" {
		err := filepath.WalkDir(scanDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subtree, keep walking the rest
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if IsLogName(d.Name()) {
				add(path)
			}
			return nil
		})
		if err != nil {
			logrus.WithField("dir", scanDir).WithError(err).Warn("could not scan log directory")
		}
	}

	return files
}
