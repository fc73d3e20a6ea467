/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LogLevel represents the severity of the log message.
type LogLevel int

const (
	// DEBUG level for detailed debug information.
	DEBUG LogLevel = iota
	// INFO level for general informational messages.
	INFO
	// WARN level for warning messages.
	WARN
	// ERROR level for error messages.
	ERROR
)

// LogLevels maps the names accepted in the config file to levels.
var LogLevels = map[string]LogLevel{
	"debug":   DEBUG,
	"info":    INFO,
	"warn":    WARN,
	"warning": WARN,
	"error":   ERROR,
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[91m"
	colorYellow = "\033[93m"
	colorGreen  = "\033[92m"
	colorGrey   = "\033[90m"
)

var (
	logMutex sync.Mutex
	output   io.Writer = os.Stderr
	minLevel           = INFO
)

// SetLevel drops every message below level.
func SetLevel(level LogLevel) {
	logMutex.Lock()
	minLevel = level
	logMutex.Unlock()
}

// SetOutput redirects log lines, mostly for tests.
func SetOutput(w io.Writer) {
	logMutex.Lock()
	output = w
	logMutex.Unlock()
}

func prefix(level LogLevel) (string, string) {
	switch level {
	case DEBUG:
		return "DEBUG ", colorGrey
	case INFO:
		return "INFO  ", colorGreen
	case WARN:
		return "WARN  ", colorYellow
	case ERROR:
		return "ERROR ", colorRed
	}
	return "", colorReset
}

func logMessage(level LogLevel, message string) {
	logMutex.Lock()
	defer logMutex.Unlock()
	if level < minLevel {
		return
	}
	levelStr, color := prefix(level)
	fmt.Fprintln(output, time.Now().Format(time.StampMilli)+" "+color+levelStr+message+colorReset)
}

func Debug(v ...interface{}) {
	logMessage(DEBUG, fmt.Sprint(v...))
}

func Debugf(format string, v ...interface{}) {
	logMessage(DEBUG, fmt.Sprintf(format, v...))
}

func Info(v ...interface{}) {
	logMessage(INFO, fmt.Sprint(v...))
}

func Infof(format string, v ...interface{}) {
	logMessage(INFO, fmt.Sprintf(format, v...))
}

func Warn(v ...interface{}) {
	logMessage(WARN, fmt.Sprint(v...))
}

func Warnf(format string, v ...interface{}) {
	logMessage(WARN, fmt.Sprintf(format, v...))
}

func Error(v ...interface{}) {
	logMessage(ERROR, fmt.Sprint(v...))
}

func Errorf(format string, v ...interface{}) {
	logMessage(ERROR, fmt.Sprintf(format, v...))
}
