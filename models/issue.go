package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueStatus enum
type IssueStatus string

const (
	Pending    IssueStatus = "pending"
	InProgress IssueStatus = "in-progress"
	Approved   IssueStatus = "approved"
	Rejected   IssueStatus = "rejected"
)

// Location is a plain lat/lng pair as submitted by the citizen.
type Location struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Issue represents a civic issue reported by a villager.
// Votes is the source of truth for the vote count.
type Issue struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Type        string               `bson:"type" json:"type"`
	Description string               `bson:"description" json:"description"`
	Location    Location             `bson:"location" json:"location"`
	Images      []string             `bson:"images" json:"images"`
	SubmittedBy primitive.ObjectID   `bson:"submittedBy" json:"submittedBy"`
	Votes       []primitive.ObjectID `bson:"votes" json:"votes"`
	Status      IssueStatus          `bson:"status" json:"status"`
	Priority    *Priority            `bson:"priority" json:"priority"`
	AssignedTo  *string              `bson:"assignedTo" json:"assignedTo"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// VoteCount returns the number of distinct citizens that voted.
func (i *Issue) VoteCount() int {
	return len(i.Votes)
}

// HasVoted reports whether citizen is already in the vote set.
func (i *Issue) HasVoted(citizen primitive.ObjectID) bool {
	for _, v := range i.Votes {
		if v == citizen {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers never share slices with a store.
func (i *Issue) Clone() *Issue {
	c := *i
	c.Images = append([]string(nil), i.Images...)
	c.Votes = append([]primitive.ObjectID(nil), i.Votes...)
	if i.Priority != nil {
		p := *i.Priority
		c.Priority = &p
	}
	if i.AssignedTo != nil {
		a := *i.AssignedTo
		c.AssignedTo = &a
	}
	return &c
}

// allowedFrom lists, per target status, the statuses an issue may leave to reach it.
var allowedFrom = map[IssueStatus][]IssueStatus{
	Approved:   {Pending, InProgress},
	Rejected:   {Pending, InProgress},
	InProgress: {Pending, InProgress},
}

// TransitionSources returns the statuses from which to is reachable.
// Approved and rejected are terminal, so they never appear as a source.
func TransitionSources(to IssueStatus) []IssueStatus {
	return allowedFrom[to]
}

// CanTransition reports whether an issue in from may move to to.
func CanTransition(from, to IssueStatus) bool {
	for _, s := range allowedFrom[to] {
		if s == from {
			return true
		}
	}
	return false
}

// IssueView is an Issue as served to clients, with derived fields.
type IssueView struct {
	*Issue
	VoteCount         int       `json:"voteCount"`
	SuggestedPriority *Priority `json:"suggestedPriority"`
}

// View attaches the vote count and the advisory priority.
func (i *Issue) View() IssueView {
	return IssueView{
		Issue:             i,
		VoteCount:         i.VoteCount(),
		SuggestedPriority: DerivePriority(i.VoteCount()),
	}
}
