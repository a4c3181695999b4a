package services

import (
	"context"
	"strings"
	"time"

	"gramsetu-be/models"
	"gramsetu-be/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	commentDateLayout = "2006-01-02"
	commentTimeLayout = "15:04:05"
)

// AssignmentService is the gram sevak's side: the forks created by
// IssueService.Assign. Fork status never flows back to the Issue.
type AssignmentService struct {
	store *store.Store
	now   Clock
}

func NewAssignmentService(s *store.Store) *AssignmentService {
	return &AssignmentService{store: s, now: time.Now}
}

// CommentInput is a progress note. Date and Time default to now.
type CommentInput struct {
	Text string
	Date string
	Time string
}

// AssignmentPatch is a partial update. Every field is optional but the
// patch as a whole must change something.
type AssignmentPatch struct {
	Status      *string
	Comments    []CommentInput
	ProofPhotos []string
}

// AssignmentList is a listing with per-status counts.
type AssignmentList struct {
	Stats       models.AssignmentStats
	Assignments []*models.GramSevakAssignment
}

// List returns all forks, or only those of one worker when assignedTo
// is set.
func (s *AssignmentService) List(ctx context.Context, assignedTo string) (*AssignmentList, error) {
	list, err := s.store.Assignments.ListAssignments(ctx, store.AssignmentFilter{
		AssignedKey: models.WorkerKey(assignedTo),
	})
	if err != nil {
		return nil, err
	}
	return &AssignmentList{Stats: models.SummarizeAssignments(list), Assignments: list}, nil
}

// ListCompleted returns forks the workers marked Completed.
func (s *AssignmentService) ListCompleted(ctx context.Context) ([]*models.GramSevakAssignment, error) {
	return s.store.Assignments.ListAssignments(ctx, store.AssignmentFilter{Status: models.AssignmentCompleted})
}

func (s *AssignmentService) Get(ctx context.Context, id primitive.ObjectID) (*models.GramSevakAssignment, error) {
	return s.store.Assignments.GetAssignment(ctx, id)
}

// SetStatus changes only the fork status.
func (s *AssignmentService) SetStatus(ctx context.Context, actor Actor, id primitive.ObjectID, status string) (*models.GramSevakAssignment, error) {
	return s.Update(ctx, actor, id, AssignmentPatch{Status: &status})
}

// Update applies patch to the fork. Comments and proof photos are always
// appended. The status may move from in-progress to Completed or Issue
// once; both are terminal.
func (s *AssignmentService) Update(ctx context.Context, actor Actor, id primitive.ObjectID, patch AssignmentPatch) (*models.GramSevakAssignment, error) {
	current, err := s.store.Assignments.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, current); err != nil {
		return nil, err
	}

	now := s.now()
	var update models.AssignmentUpdate

	if patch.Status != nil {
		status, ok := models.ParseAssignmentStatus(*patch.Status)
		if !ok {
			return nil, models.Invalid("invalid status %q", *patch.Status)
		}
		if status != current.Status {
			if current.Status.Terminal() || status == models.AssignmentInProgress {
				return nil, models.ErrInvalidTransition
			}
			update.Status = &status
		}
	}

	for _, in := range patch.Comments {
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return nil, models.Invalid("comment text is required")
		}
		c := models.Comment{Text: text, Date: in.Date, Time: in.Time, CreatedAt: now}
		if c.Date == "" {
			c.Date = now.Format(commentDateLayout)
		}
		if c.Time == "" {
			c.Time = now.Format(commentTimeLayout)
		}
		update.Comments = append(update.Comments, c)
	}

	for _, photo := range patch.ProofPhotos {
		photo = strings.TrimSpace(photo)
		if photo == "" {
			return nil, models.Invalid("proof photo must not be empty")
		}
		update.ProofPhotos = append(update.ProofPhotos, photo)
	}

	if update.Empty() {
		return nil, models.ErrNoOpUpdate
	}
	return s.store.Assignments.UpdateAssignment(ctx, id, update, now)
}

// authorize lets admins through and otherwise only the worker the fork
// was assigned to.
func authorize(actor Actor, a *models.GramSevakAssignment) error {
	switch actor.Role {
	case models.Admin:
		return nil
	case models.GramSevak:
		if models.WorkerKey(actor.Name) == a.AssignedKey {
			return nil
		}
		return models.ErrNotAssignee
	default:
		return models.ErrForbidden
	}
}
