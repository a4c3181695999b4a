package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"gramsetu-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memory keeps every collection behind one mutex, so each method is
// atomic in the same way a single-document MongoDB update is.
type memory struct {
	mu          sync.Mutex
	issues      []*models.Issue
	assignments []*models.GramSevakAssignment
	users       []*models.User
}

// NewMemory returns a Store that lives in process memory. Its
// Transactor runs the callback as is, with no rollback.
func NewMemory() *Store {
	m := &memory{}
	return &Store{
		Issues:      (*memoryIssues)(m),
		Assignments: (*memoryAssignments)(m),
		Users:       (*memoryUsers)(m),
		Tx:          passthroughTx{},
	}
}

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memoryIssues memory

func (s *memoryIssues) CreateIssue(_ context.Context, issue *models.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if issue.Votes == nil {
		issue.Votes = []primitive.ObjectID{}
	}
	if issue.Images == nil {
		issue.Images = []string{}
	}
	s.issues = append(s.issues, issue.Clone())
	return nil
}

func (s *memoryIssues) find(id primitive.ObjectID) *models.Issue {
	for _, issue := range s.issues {
		if issue.ID == id {
			return issue
		}
	}
	return nil
}

func (s *memoryIssues) GetIssue(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue := s.find(id)
	if issue == nil {
		return nil, models.ErrIssueNotFound
	}
	return issue.Clone(), nil
}

func (s *memoryIssues) ListIssues(_ context.Context) ([]*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Issue, 0, len(s.issues))
	for i := len(s.issues) - 1; i >= 0; i-- {
		out = append(out, s.issues[i].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memoryIssues) AddVote(_ context.Context, id, citizen primitive.ObjectID, at time.Time) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue := s.find(id)
	if issue == nil {
		return nil, models.ErrIssueNotFound
	}
	if issue.HasVoted(citizen) {
		return nil, models.ErrAlreadyVoted
	}
	issue.Votes = append(issue.Votes, citizen)
	issue.UpdatedAt = at
	return issue.Clone(), nil
}

func (s *memoryIssues) TransitionIssue(_ context.Context, id primitive.ObjectID, t Transition) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue := s.find(id)
	if issue == nil {
		return nil, models.ErrIssueNotFound
	}
	if !models.CanTransition(issue.Status, t.To) {
		return nil, models.ErrInvalidTransition
	}
	issue.Status = t.To
	issue.UpdatedAt = t.At
	if t.SetAssignment {
		issue.Priority = t.Priority
		issue.AssignedTo = t.AssignedTo
	}
	return issue.Clone(), nil
}

type memoryAssignments memory

func (s *memoryAssignments) CreateAssignment(_ context.Context, a *models.GramSevakAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	s.assignments = append(s.assignments, a.Clone())
	return nil
}

func (s *memoryAssignments) find(id primitive.ObjectID) *models.GramSevakAssignment {
	for _, a := range s.assignments {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *memoryAssignments) GetAssignment(_ context.Context, id primitive.ObjectID) (*models.GramSevakAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.find(id)
	if a == nil {
		return nil, models.ErrAssignmentNotFound
	}
	return a.Clone(), nil
}

func (s *memoryAssignments) ListAssignments(_ context.Context, filter AssignmentFilter) ([]*models.GramSevakAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*models.GramSevakAssignment{}
	for i := len(s.assignments) - 1; i >= 0; i-- {
		a := s.assignments[i]
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.AssignedKey != "" && a.AssignedKey != filter.AssignedKey {
			continue
		}
		out = append(out, a.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memoryAssignments) UpdateAssignment(_ context.Context, id primitive.ObjectID, u models.AssignmentUpdate, at time.Time) (*models.GramSevakAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.find(id)
	if a == nil {
		return nil, models.ErrAssignmentNotFound
	}
	if u.Status != nil {
		if a.Status != models.AssignmentInProgress {
			return nil, models.ErrInvalidTransition
		}
		a.Status = *u.Status
	}
	a.Comments = append(a.Comments, u.Comments...)
	a.ProofPhotos = append(a.ProofPhotos, u.ProofPhotos...)
	a.UpdatedAt = at
	return a.Clone(), nil
}

type memoryUsers memory

func (s *memoryUsers) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Mobile == u.Mobile {
			return models.ErrDuplicateUser
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	c := *u
	s.users = append(s.users, &c)
	return nil
}

func (s *memoryUsers) GetUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (s *memoryUsers) GetUserByMobile(_ context.Context, mobile string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Mobile == mobile {
			c := *u
			return &c, nil
		}
	}
	return nil, models.ErrUserNotFound
}
