// Package store persists issues, gram sevak assignments and users.
// MongoDB is the production backend; the in-memory backend serves
// tests and local development.
package store

import (
	"context"
	"time"

	"gramsetu-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names.
const (
	IssuesCollection      = "issues"
	AssignmentsCollection = "gramsevak_assigned_issues"
	UsersCollection       = "users"
)

// Transition describes a status change on an Issue. When SetAssignment
// is true, Priority and AssignedTo are written verbatim, nil included.
type Transition struct {
	To            models.IssueStatus
	SetAssignment bool
	Priority      *models.Priority
	AssignedTo    *string
	At            time.Time
}

// AssignmentFilter narrows ListAssignments. Zero values match everything.
type AssignmentFilter struct {
	Status      models.AssignmentStatus
	AssignedKey string
}

type IssueStore interface {
	CreateIssue(ctx context.Context, issue *models.Issue) error
	GetIssue(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	// ListIssues returns every issue, newest first.
	ListIssues(ctx context.Context) ([]*models.Issue, error)
	// AddVote appends citizen to the vote set only if absent, as one
	// atomic store operation.
	AddVote(ctx context.Context, id, citizen primitive.ObjectID, at time.Time) (*models.Issue, error)
	// TransitionIssue applies t only if the current status may lead to t.To.
	TransitionIssue(ctx context.Context, id primitive.ObjectID, t Transition) (*models.Issue, error)
}

type AssignmentStore interface {
	CreateAssignment(ctx context.Context, a *models.GramSevakAssignment) error
	GetAssignment(ctx context.Context, id primitive.ObjectID) (*models.GramSevakAssignment, error)
	// ListAssignments returns matching forks, newest first.
	ListAssignments(ctx context.Context, filter AssignmentFilter) ([]*models.GramSevakAssignment, error)
	// UpdateAssignment appends comments and photos and, when a status is
	// given, moves a still in-progress fork to it.
	UpdateAssignment(ctx context.Context, id primitive.ObjectID, u models.AssignmentUpdate, at time.Time) (*models.GramSevakAssignment, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByMobile(ctx context.Context, mobile string) (*models.User, error)
}

// Transactor runs fn so that the store writes it makes commit together,
// when the backend can offer that.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles the collections used by the services.
type Store struct {
	Issues      IssueStore
	Assignments AssignmentStore
	Users       UserStore
	Tx          Transactor
}
