// Package logging is the leveled diagnostic logger used across ridestats.
package logging

import (
	"fmt"
	"log"
	"strings"
)

// Level orders log severities; lower values are more verbose.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	level = LevelInfo
	// Logf is the sink every message ends up in. Tests or the CLI can replace it with SetLogger.
	Logf func(format string, v ...interface{}) = log.Printf
)

// SetLogger replaces the sink. Passing nil mutes all output.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// ParseLevel maps a level name ("debug", "info", "warn", "error") onto a Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level: %s", name)
}

// SetLevel parses and applies a level name.
func SetLevel(name string) error {
	l, err := ParseLevel(name)
	if err != nil {
		return err
	}
	level = l
	return nil
}

// CurrentLevel reports the active level.
func CurrentLevel() Level { return level }

func Debugf(format string, v ...interface{}) {
	if level <= LevelDebug {
		Logf("[DEBUG] "+format, v...)
	}
}

func Infof(format string, v ...interface{}) {
	if level <= LevelInfo {
		Logf("[INFO] "+format, v...)
	}
}

func Warnf(format string, v ...interface{}) {
	if level <= LevelWarn {
		Logf("[WARN] "+format, v...)
	}
}

func Errorf(format string, v ...interface{}) {
	if level <= LevelError {
		Logf("[ERROR] "+format, v...)
	}
}
