package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	backgroundLogFile = "background.log"
	logSubDir         = "logs"

	logDirPermission = 0o700
	logMaxBackups    = 3
	logMaxSizeMB     = 1
)

// setupLogOutput moves logging from stderr into a rotated file when
// requested. Nobody reads the stderr of the background process, so it
// logs into the workflow cache dir unless configured otherwise.
func setupLogOutput(logger *log.Logger, logFile string, background bool, cacheDir string) error {
	if logFile == "" && background {
		logFile = filepath.Join(cacheDir, logSubDir, backgroundLogFile)
	}

	if logFile == "" {
		logger.SetOutput(os.Stderr)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), logDirPermission); err != nil {
		return errors.Wrap(err, "create log dir")
	}

	logger.SetOutput(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		Compress:   true,
	})
	logger.SetFormatter(&log.TextFormatter{DisableColors: true, FullTimestamp: true})

	return nil
}
