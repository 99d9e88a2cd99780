package logging

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// New builds the pipeline logger. Output always goes to stderr; when logDir
// is non-empty a timestamped log file is added alongside, one file per
// process start.
func New(mode, logDir string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, err
		}
		name := time.Now().Format("2006-01-02-15.04.05") + "_casepipe.log"
		cfg.OutputPaths = append(cfg.OutputPaths, filepath.Join(logDir, name))
	}

	return cfg.Build()
}

// Nop returns a no-op logger for tests and for callers that do not care
// about pipeline logs.
func Nop() *zap.Logger {
	return zap.NewNop()
}
