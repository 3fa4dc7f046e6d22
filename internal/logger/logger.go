package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var (
	defaultLogger = log.New(os.Stderr, "", log.LstdFlags)
	minLevel      = INFO
)

func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

func SetFlags(flag int) {
	defaultLogger.SetFlags(flag)
}

// SetLevel drops messages below level. FATAL is always written.
func SetLevel(level LogLevel) {
	minLevel = level
}

func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO", "":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "FATAL":
		return FATAL, nil
	}

	return INFO, fmt.Errorf("unknown log level %q", s)
}

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
	}

	return ""
}

func formatMessage(level LogLevel, format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	return fmt.Sprintf("[%s] [WGCONF] %s", level, msg)
}

func logAt(level LogLevel, format string, args ...interface{}) {
	if level < minLevel {
		return
	}

	defaultLogger.Println(formatMessage(level, format, args...))
}

func Debug(format string, args ...interface{}) {
	logAt(DEBUG, format, args...)
}

func Info(format string, args ...interface{}) {
	logAt(INFO, format, args...)
}

func Warn(format string, args ...interface{}) {
	logAt(WARN, format, args...)
}

func Error(format string, args ...interface{}) {
	logAt(ERROR, format, args...)
}

func Fatal(format string, args ...interface{}) {
	defaultLogger.Fatal(formatMessage(FATAL, format, args...))
}
