package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"heartbound/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	writerMu     sync.Mutex
	activeWriter io.Writer = os.Stdout
)

// Init configures the global zerolog logger from LogConfig.
// Invalid levels fall back to info rather than failing startup.
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var output io.Writer = os.Stdout
	if cfg.FilePath != "" {
		if w, err := newCappedFileWriter(cfg.FilePath, cfg.FileMaxMB); err == nil {
			output = w
		}
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	writerMu.Lock()
	activeWriter = output
	writerMu.Unlock()

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer returns the destination the global logger writes to, so request
// loggers can share it.
func Writer() io.Writer {
	writerMu.Lock()
	defer writerMu.Unlock()
	return activeWriter
}
