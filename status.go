package devtrack

import (
	"fmt"
	"strings"
)

// Status is the development stage of a project.
type Status string

// Detailed lifecycle, as used by development teams.
const (
	PreDevelopment Status = "Pre-Development"
	Construction   Status = "Construction"
	PostContract   Status = "Post-Contract"
)

// Simplified lifecycle, as used by lighter dashboards.
const (
	Planning   Status = "Planning"
	InProgress Status = "In Progress"
	Completed  Status = "Completed"
)

// UnknownStatus is the category used when counting records with no status.
const UnknownStatus = "Unknown"

// AllStatuses returns all valid status values.
func AllStatuses() []Status {
	return []Status{PreDevelopment, Construction, PostContract, Planning, InProgress, Completed}
}

// ParseStatus parses a status, case-insensitive and tolerant on separators:
// "construction", "pre development" and "in-progress" are all accepted.
// An empty string is the empty Status.
func ParseStatus(s string) (Status, error) {
	norm := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		return strings.NewReplacer("-", "", " ", "", "_", "").Replace(s)
	}
	n := norm(s)
	if n == "" {
		return "", nil
	}
	for _, st := range AllStatuses() {
		if norm(string(st)) == n {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q: must be one of %v", s, AllStatuses())
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	for _, st := range AllStatuses() {
		if s == st {
			return true
		}
	}
	return false
}

func (s Status) String() string { return string(s) }
