package models

import (
	"time"
)

// Severity levels accepted by the log API. Stored and sent uppercase.
const (
	SeverityDebug    = "DEBUG"
	SeverityInfo     = "INFO"
	SeverityWarning  = "WARNING"
	SeverityError    = "ERROR"
	SeverityCritical = "CRITICAL"
)

// Severities lists the severity levels in ascending order.
var Severities = []string{SeverityDebug, SeverityInfo, SeverityWarning, SeverityError, SeverityCritical}

// Sources lists the source names the UI suggests. The server accepts any lowercase source.
var Sources = []string{"application", "database", "security", "network", "system"}

// LogRecord is a server-owned log entry
type LogRecord struct {
	ID        int       `json:"id" yaml:"id"`
	Message   string    `json:"message" yaml:"message"`
	Severity  string    `json:"severity" yaml:"severity"`
	Source    string    `json:"source" yaml:"source"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// LogInput is the body of create and update requests
type LogInput struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Source   string `json:"source"`
}

// IsValidSeverity reports whether s is one of the known severity levels.
func IsValidSeverity(s string) bool {
	for _, v := range Severities {
		if v == s {
			return true
		}
	}
	return false
}
