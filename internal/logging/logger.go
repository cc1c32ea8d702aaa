// Package logging provides categorized file-based logging for quorum.
// Each category writes to its own file under <rootDir>/logs/. Before
// Initialize (or when disabled) every category is a no-op logger, so
// library code can log unconditionally.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log stream.
type Category string

const (
	CategoryBoot     Category = "boot"     // startup, config loading
	CategorySession  Category = "session"  // session lifecycle
	CategoryPhase    Category = "phase"    // round loop, turn actions
	CategoryMotion   Category = "motion"   // seconding and voting
	CategoryElection Category = "election" // leader election
	CategoryMemory   Category = "memory"   // memory store reads/writes
	CategoryDocs     Category = "docs"     // documentation review loop
	CategoryAPI      Category = "api"      // model client calls
)

var (
	mu      sync.Mutex
	logsDir string
	enabled bool
	loggers = map[Category]*zap.SugaredLogger{}
	files   []*os.File
	nop     = zap.NewNop().Sugar()
)

// Initialize sets up the logging directory. Call once at startup.
// With debug=false logging stays a silent no-op.
func Initialize(rootDir string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	if !debug {
		enabled = false
		return nil
	}
	logsDir = filepath.Join(rootDir, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("create logs directory: %w", err)
	}
	enabled = true
	Get(CategoryBoot).Infow("logging initialized", "dir", logsDir)
	return nil
}

// Get returns the logger for a category, creating it on first use.
func Get(cat Category) *zap.SugaredLogger {
	if !enabled {
		return nop
	}
	mu.Lock()
	defer mu.Unlock()
	if lg, ok := loggers[cat]; ok {
		return lg
	}

	path := filepath.Join(logsDir, string(cat)+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] cannot open %s: %v\n", path, err)
		loggers[cat] = nop
		return nop
	}
	files = append(files, f)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), zapcore.DebugLevel)
	lg := zap.New(core).Sugar().With("category", string(cat))
	loggers[cat] = lg
	return lg
}

// Shutdown flushes and closes all category logs.
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	for _, lg := range loggers {
		_ = lg.Sync()
	}
	for _, f := range files {
		_ = f.Close()
	}
	loggers = map[Category]*zap.SugaredLogger{}
	files = nil
	enabled = false
}
