// Package logutil gives scripts a named logger with four levels.
package logutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/scalesql/groovyutil/internal/logring"
	"github.com/shiena/ansicolor"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// LoggerName is attached to every script message
const LoggerName = "script.logger"

var ring = logring.New(100)

var logger = logrus.WithField("logger", LoggerName)

func init() {
	logrus.AddHook(ring)
}

// Debug logs a formatted message at debug level
func Debug(format string, args ...any) {
	logger.Debugf(format, args...)
}

// Info logs a formatted message at info level
func Info(format string, args ...any) {
	logger.Infof(format, args...)
}

// Warn logs a formatted message at warn level
func Warn(format string, args ...any) {
	logger.Warnf(format, args...)
}

// Error logs a formatted message at error level
func Error(format string, args ...any) {
	logger.Errorf(format, args...)
}

// SetLevel sets the level by name: trace, debug, info, warn, error
func SetLevel(name string) error {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return errors.Wrap(err, "logrus.parselevel")
	}
	logrus.SetLevel(lvl)
	return nil
}

// Recent returns the most recent messages at info and above, oldest first
func Recent() []logring.Event {
	return ring.Values()
}

// ConfigureConsole writes colored text to stdout
func ConfigureConsole() {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if runtime.GOOS == "windows" {
		logrus.SetOutput(ansicolor.NewAnsiColorWriter(os.Stdout))
		return
	}
	logrus.SetOutput(os.Stdout)
}

// ConfigureFileLogging writes log lines to a time stamped file in dir
// and to stdout. It returns the name of the log file.
func ConfigureFileLogging(dir string) (string, error) {
	file, name, err := createLogFile(afero.NewOsFs(), dir, time.Now())
	if err != nil {
		return "", err
	}
	logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	logrus.SetOutput(io.MultiWriter(file, os.Stdout))
	return name, nil
}

func createLogFile(fs afero.Fs, dir string, now time.Time) (afero.File, string, error) {
	if dir == "" {
		dir = "log"
	}
	exists, err := afero.DirExists(fs, dir)
	if err != nil {
		return nil, "", errors.Wrap(err, "afero.direxists")
	}
	if !exists {
		err = fs.MkdirAll(dir, 0755)
		if err != nil {
			return nil, "", errors.Wrap(err, "fs.mkdirall")
		}
	}
	name := filepath.Join(dir, fmt.Sprintf("groovyutil_%s.log", now.Format("20060102_150405")))
	file, err := fs.Create(name)
	if err != nil {
		return nil, "", errors.Wrap(err, "fs.create")
	}
	return file, name, nil
}
