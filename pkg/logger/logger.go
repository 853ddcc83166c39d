package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case DEBUG:
		return logrus.DebugLevel
	case INFO:
		return logrus.InfoLevel
	case WARN:
		return logrus.WarnLevel
	case ERROR:
		return logrus.ErrorLevel
	default:
		return logrus.FatalLevel
	}
}

// ParseLevel accepts the names used by LOG_LEVEL. Unknown names map to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

type Config struct {
	Level        LogLevel
	Prefix       string
	JSON         bool
	ReportCaller bool
	Output       io.Writer
}

func DefaultConfig() Config {
	return Config{
		Level:  INFO,
		Output: os.Stdout,
	}
}

// Logger is a printf-style facade over logrus.
type Logger struct {
	base  *logrus.Logger
	entry *logrus.Entry
	exit  func(int)
}

var (
	defaultLogger *Logger
	once          sync.Once
)

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	base := logrus.New()
	base.SetOutput(cfg.Output)
	base.SetLevel(cfg.Level.logrusLevel())
	base.SetReportCaller(cfg.ReportCaller)
	if cfg.JSON {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	entry := logrus.NewEntry(base)
	if cfg.Prefix != "" {
		entry = entry.WithField("component", cfg.Prefix)
	}
	return &Logger{base: base, entry: entry, exit: os.Exit}
}

// GetLogger returns the process-wide logger, configured from LOG_LEVEL and
// LOG_FORMAT=json on first use.
func GetLogger() *Logger {
	once.Do(func() {
		cfg := DefaultConfig()
		if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
			cfg.Level = ParseLevel(envLevel)
		}
		cfg.JSON = strings.EqualFold(os.Getenv("LOG_FORMAT"), "json")
		defaultLogger = New(cfg)
	})
	return defaultLogger
}

// SetLevel changes the level of l and every logger derived from it.
func (l *Logger) SetLevel(level LogLevel) {
	l.base.SetLevel(level.logrusLevel())
}

// Entry exposes the underlying logrus entry for structured fields.
func (l *Logger) Entry() *logrus.Entry {
	return l.entry
}

// With returns a child logger carrying the given key/value pairs. A key
// without a value is dropped.
func (l *Logger) With(args ...any) *Logger {
	fields := make(logrus.Fields, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		fields[fmt.Sprint(args[i])] = args[i+1]
	}
	return &Logger{base: l.base, entry: l.entry.WithFields(fields), exit: l.exit}
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	lv := level.logrusLevel()
	if !l.base.IsLevelEnabled(lv) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	// Entry.Log never exits, even at FatalLevel
	l.entry.Log(lv, msg)

	if level == FATAL {
		l.exit(1)
	}
}

func (l *Logger) Debugf(format string, args ...any) { l.log(DEBUG, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(INFO, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(WARN, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(ERROR, format, args...) }

// Fatalf logs at FATAL and exits the process.
func (l *Logger) Fatalf(format string, args ...any) { l.log(FATAL, format, args...) }

func (l *Logger) Debug(msg string) { l.log(DEBUG, msg) }
func (l *Logger) Info(msg string)  { l.log(INFO, msg) }
func (l *Logger) Warn(msg string)  { l.log(WARN, msg) }
func (l *Logger) Error(msg string) { l.log(ERROR, msg) }

// Package-level helpers on the default logger.

func Debugf(format string, args ...any) { GetLogger().Debugf(format, args...) }
func Infof(format string, args ...any)  { GetLogger().Infof(format, args...) }
func Warnf(format string, args ...any)  { GetLogger().Warnf(format, args...) }
func Errorf(format string, args ...any) { GetLogger().Errorf(format, args...) }
func Fatalf(format string, args ...any) { GetLogger().Fatalf(format, args...) }

func SetLevel(level LogLevel) { GetLogger().SetLevel(level) }
