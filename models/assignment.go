package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus enum. Deliberately disjoint from IssueStatus.
type AssignmentStatus string

const (
	AssignmentInProgress AssignmentStatus = "in-progress"
	AssignmentCompleted  AssignmentStatus = "Completed"
	AssignmentIssue      AssignmentStatus = "Issue"
)

// ParseAssignmentStatus validates a worker supplied fork status.
func ParseAssignmentStatus(raw string) (AssignmentStatus, bool) {
	switch s := AssignmentStatus(strings.TrimSpace(raw)); s {
	case AssignmentInProgress, AssignmentCompleted, AssignmentIssue:
		return s, true
	}
	return "", false
}

// Terminal reports whether the fork can no longer change status.
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentCompleted || s == AssignmentIssue
}

// Comment is a progress note left by the gram sevak.
type Comment struct {
	Text      string    `bson:"text" json:"text"`
	Date      string    `bson:"date" json:"date"`
	Time      string    `bson:"time" json:"time"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// GramSevakAssignment is the worker-facing fork of an Issue, created on
// every assign action and never synchronized back to the original.
type GramSevakAssignment struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OriginalIssueID primitive.ObjectID   `bson:"originalIssueId" json:"originalIssueId"`
	Type            string               `bson:"type" json:"type"`
	Description     string               `bson:"description" json:"description"`
	Location        Location             `bson:"location" json:"location"`
	Images          []string             `bson:"images" json:"images"`
	SubmittedBy     primitive.ObjectID   `bson:"submittedBy" json:"submittedBy"`
	Votes           []primitive.ObjectID `bson:"votes" json:"votes"`
	Priority        Priority             `bson:"priority" json:"priority"`
	AssignedTo      string               `bson:"assignedTo" json:"assignedTo"`
	AssignedKey     string               `bson:"assignedKey" json:"assignedKey"`
	Status          AssignmentStatus     `bson:"status" json:"status"`
	Comments        []Comment            `bson:"comments" json:"comments"`
	ProofPhotos     []string             `bson:"proofPhotos" json:"proofPhotos"`
	IssueCreatedAt  time.Time            `bson:"issueCreatedAt" json:"issueCreatedAt"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ForkAssignment snapshots issue for worker. The issue is expected to
// already carry the new priority and assignee.
func ForkAssignment(issue *Issue, priority Priority, worker string, now time.Time) *GramSevakAssignment {
	return &GramSevakAssignment{
		ID:              primitive.NewObjectID(),
		OriginalIssueID: issue.ID,
		Type:            issue.Type,
		Description:     issue.Description,
		Location:        issue.Location,
		Images:          append([]string{}, issue.Images...),
		SubmittedBy:     issue.SubmittedBy,
		Votes:           append([]primitive.ObjectID{}, issue.Votes...),
		Priority:        priority,
		AssignedTo:      worker,
		AssignedKey:     WorkerKey(worker),
		Status:          AssignmentInProgress,
		Comments:        []Comment{},
		ProofPhotos:     []string{},
		IssueCreatedAt:  issue.CreatedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Clone returns a deep copy.
func (a *GramSevakAssignment) Clone() *GramSevakAssignment {
	c := *a
	c.Images = append([]string(nil), a.Images...)
	c.Votes = append([]primitive.ObjectID(nil), a.Votes...)
	c.Comments = append([]Comment(nil), a.Comments...)
	c.ProofPhotos = append([]string(nil), a.ProofPhotos...)
	return &c
}

// WorkerKey folds a free-text worker name into its routing key.
func WorkerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AssignmentUpdate is the change set applied to a fork in one call.
type AssignmentUpdate struct {
	Status      *AssignmentStatus
	Comments    []Comment
	ProofPhotos []string
}

// Empty reports whether applying u would change nothing.
func (u AssignmentUpdate) Empty() bool {
	return u.Status == nil && len(u.Comments) == 0 && len(u.ProofPhotos) == 0
}

// AssignmentStats summarizes a list of forks.
type AssignmentStats struct {
	Total      int `json:"total"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Issue      int `json:"issue"`
	TotalVotes int `json:"totalVotes"`
}

// SummarizeAssignments counts forks per status.
func SummarizeAssignments(list []*GramSevakAssignment) AssignmentStats {
	stats := AssignmentStats{Total: len(list)}
	for _, a := range list {
		switch a.Status {
		case AssignmentInProgress:
			stats.InProgress++
		case AssignmentCompleted:
			stats.Completed++
		case AssignmentIssue:
			stats.Issue++
		}
		stats.TotalVotes += len(a.Votes)
	}
	return stats
}
