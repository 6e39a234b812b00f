package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bap/internal/paths"
)

// keepLogs bounds how many session logs stay in ROOT/logs.
const keepLogs = 20

// New creates a logger that writes to a timestamped file inside ROOT/logs.
// The returned closer should be closed when logging is no longer needed.
// Older session logs beyond the retention limit are removed.
func New(p paths.RootPaths) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := time.Now().Format("20060102-150405") + ".log"
	filePath := filepath.Join(p.LogsDir, filename)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	prune(p.LogsDir, keepLogs)

	logger := log.New(file, "", log.LstdFlags|log.Lmicroseconds)
	return logger, file, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func prune(dir string, keep int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	var logs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".log") {
			logs = append(logs, e.Name())
		}
	}
	if len(logs) <= keep {
		return
	}
	// Timestamped names sort chronologically.
	sort.Strings(logs)
	for _, name := range logs[:len(logs)-keep] {
		_ = os.Remove(filepath.Join(dir, name))
	}
}
