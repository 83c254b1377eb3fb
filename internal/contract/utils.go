package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/entrain-io/entrain/schema"
)

// Color variables for console output.
var (
	SevereColor   = color.New(color.FgRed, color.Bold)     // severeColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // highColor represents strong, distinct warning.
	ModerateColor = color.New(color.FgYellow)              // moderateColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // lowColor represents informational / low-priority signal.
)

// GetPlainLabel returns a plain text label for the given risk level.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(level schema.RiskLevel) string {
	return string(level)
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(level schema.RiskLevel) string {
	text := GetPlainLabel(level)

	switch level {
	case schema.SevereRisk:
		return SevereColor.Sprint(text)
	case schema.HighRisk:
		return HighColor.Sprint(text)
	case schema.ModerateRisk:
		return ModerateColor.Sprint(text)
	default: // "LOW"
		return LowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// TruncateText truncates a string to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to ensure there's space for both the "..." suffix and at
// least one character of content.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogNotice logs an advisory message to stderr.
func LogNotice(msg string) {
	_, _ = fmt.Fprintf(os.Stderr, "⚠️  %s\n", msg)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".entrain_cache.db"
	}
	return filepath.Join(homeDir, ".entrain_cache.db")
}

// GetAssessmentDBFilePath returns the path to the SQLite DB file for assessment storage.
func GetAssessmentDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".entrain_assessments.db"
	}
	return filepath.Join(homeDir, ".entrain_assessments.db")
}
