package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once     sync.Once
	instance *log.Logger
)

func logger() *log.Logger {
	once.Do(func() {
		instance = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Prefix:          "shadow-demo",
		})
	})
	return instance
}

// SetLevel accepts debug, info, warn, error or fatal. Unknown names keep info.
func SetLevel(name string) {
	lvl, err := log.ParseLevel(strings.ToLower(name))
	if err != nil {
		lvl = log.InfoLevel
	}
	logger().SetLevel(lvl)
}

// SetOutput redirects the shared logger, mostly for tests.
func SetOutput(w io.Writer) {
	logger().SetOutput(w)
}

func Debug(msg string, keyvals ...interface{}) { logger().Debug(msg, keyvals...) }
func Info(msg string, keyvals ...interface{})  { logger().Info(msg, keyvals...) }
func Warn(msg string, keyvals ...interface{})  { logger().Warn(msg, keyvals...) }
func Error(msg string, keyvals ...interface{}) { logger().Error(msg, keyvals...) }

// Fatal logs and exits. Only context initialisation failures end up here.
func Fatal(msg string, keyvals ...interface{}) { logger().Fatal(msg, keyvals...) }
