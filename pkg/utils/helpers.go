package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewRecordID generates a unique identifier for a fact or link record
func NewRecordID() string {
	return uuid.New().String()
}

// ChildID builds a detail sub-record identifier scoped to its parent,
// e.g. "a1b2_VAR_0" for the first variant of product a1b2.
func ChildID(parentID, kind string, index int) string {
	return fmt.Sprintf("%s_%s_%d", parentID, kind, index)
}

// FormatDuration formats a duration to a human-readable string
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.String()
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

// Contains checks if a string slice contains a specific string
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// GetStringOrDefault returns the value if not empty, otherwise returns the default
func GetStringOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
