package models

import "strings"

// Priority is the severity tier of an issue.
type Priority string

const (
	Low    Priority = "low"
	Medium Priority = "medium"
	High   Priority = "high"
)

// Vote thresholds for the suggested priority, inclusive.
const (
	HighVoteThreshold   = 10
	MediumVoteThreshold = 5
	LowVoteThreshold    = 1
)

// DerivePriority maps a vote count to the advisory tier. A nil result
// means the issue has no votes and therefore no suggestion.
func DerivePriority(voteCount int) *Priority {
	var p Priority
	switch {
	case voteCount >= HighVoteThreshold:
		p = High
	case voteCount >= MediumVoteThreshold:
		p = Medium
	case voteCount >= LowVoteThreshold:
		p = Low
	default:
		return nil
	}
	return &p
}

// ParsePriority lowercases an administrator supplied tier and checks it.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case Low, Medium, High:
		return p, nil
	case "":
		return "", Invalid("priority is required")
	default:
		return "", Invalid("invalid priority %q", raw)
	}
}
