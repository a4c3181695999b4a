package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gramsetu-be/models"
	"gramsetu-be/notify"
	"gramsetu-be/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueService owns the citizen-facing Issue: submission, votes and the
// administrator's status transitions.
type IssueService struct {
	store    *store.Store
	notifier notify.Notifier
	now      Clock
}

func NewIssueService(s *store.Store, n notify.Notifier) *IssueService {
	return &IssueService{store: s, notifier: n, now: time.Now}
}

// SubmitInput is a citizen's new issue.
type SubmitInput struct {
	Type        string
	Description string
	Location    *models.Location
	Images      []string
	SubmittedBy primitive.ObjectID
}

func (in SubmitInput) validate() error {
	if strings.TrimSpace(in.Type) == "" {
		return models.Invalid("type is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return models.Invalid("description is required")
	}
	if in.Location == nil {
		return models.Invalid("location (lat, lng) is required")
	}
	if in.Location.Lat < -90 || in.Location.Lat > 90 || in.Location.Lng < -180 || in.Location.Lng > 180 {
		return models.Invalid("location is out of range")
	}
	for _, img := range in.Images {
		if strings.TrimSpace(img) == "" {
			return models.Invalid("images must not contain empty entries")
		}
	}
	if in.SubmittedBy.IsZero() {
		return models.Invalid("submitter is required")
	}
	return nil
}

// Submit creates a pending issue and announces it to everyone.
func (s *IssueService) Submit(ctx context.Context, in SubmitInput) (*models.Issue, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	issue := &models.Issue{
		ID:          primitive.NewObjectID(),
		Type:        strings.TrimSpace(in.Type),
		Description: strings.TrimSpace(in.Description),
		Location:    *in.Location,
		Images:      append([]string{}, in.Images...),
		SubmittedBy: in.SubmittedBy,
		Votes:       []primitive.ObjectID{},
		Status:      models.Pending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Issues.CreateIssue(ctx, issue); err != nil {
		return nil, err
	}

	s.notifier.Broadcast(notify.EventNewIssue, issue.View())
	return issue, nil
}

func (s *IssueService) List(ctx context.Context) ([]*models.Issue, error) {
	return s.store.Issues.ListIssues(ctx)
}

func (s *IssueService) Get(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	return s.store.Issues.GetIssue(ctx, id)
}

// CastVote adds citizen to the issue's vote set. A second vote by the
// same citizen fails with models.ErrAlreadyVoted and changes nothing.
func (s *IssueService) CastVote(ctx context.Context, id, citizen primitive.ObjectID) (*models.Issue, error) {
	if citizen.IsZero() {
		return nil, models.Invalid("citizen is required")
	}
	issue, err := s.store.Issues.AddVote(ctx, id, citizen, s.now())
	if err != nil {
		return nil, err
	}

	s.notifier.Broadcast(notify.EventVoteUpdate, issue.View())
	return issue, nil
}

// Approve closes the issue as approved.
func (s *IssueService) Approve(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	return s.transition(ctx, id, store.Transition{To: models.Approved})
}

// Reject closes the issue and clears any priority and assignee.
func (s *IssueService) Reject(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	return s.transition(ctx, id, store.Transition{To: models.Rejected, SetAssignment: true})
}

func (s *IssueService) transition(ctx context.Context, id primitive.ObjectID, t store.Transition) (*models.Issue, error) {
	t.At = s.now()
	issue, err := s.store.Issues.TransitionIssue(ctx, id, t)
	if err != nil {
		return nil, err
	}

	s.notifier.Broadcast(notify.EventIssueUpdate, issue.View())
	return issue, nil
}

// Assign moves the issue to in-progress with an explicit priority and
// worker, then forks a GramSevakAssignment from it. The explicit
// priority always wins over the vote-derived suggestion.
//
// Both writes go through the store's Transactor. Without transaction
// support a failed fork leaves the issue assigned with no fork; that
// case is logged and returned, not repaired.
func (s *IssueService) Assign(ctx context.Context, id primitive.ObjectID, priority, worker string) (*models.Issue, *models.GramSevakAssignment, error) {
	p, err := models.ParsePriority(priority)
	if err != nil {
		return nil, nil, err
	}
	worker = strings.TrimSpace(worker)
	if worker == "" {
		return nil, nil, models.Invalid("assignedTo is required")
	}

	var (
		issue *models.Issue
		fork  *models.GramSevakAssignment
	)
	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := s.now()
		updated, err := s.store.Issues.TransitionIssue(ctx, id, store.Transition{
			To:            models.InProgress,
			SetAssignment: true,
			Priority:      &p,
			AssignedTo:    &worker,
			At:            now,
		})
		if err != nil {
			return err
		}

		f := models.ForkAssignment(updated, p, worker, now)
		if err := s.store.Assignments.CreateAssignment(ctx, f); err != nil {
			slog.Error("issue assigned but fork not created", "issue", id.Hex(), "worker", worker, "error", err)
			return err
		}
		issue, fork = updated, f
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.notifier.Broadcast(notify.EventIssueUpdate, issue.View())
	s.notifier.Direct(worker, notify.EventNewGramSevakIssue, fork)
	return issue, fork, nil
}
