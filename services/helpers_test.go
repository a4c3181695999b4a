package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gramsetu-be/models"
	"gramsetu-be/notify"
	"gramsetu-be/store"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	store       *store.Store
	recorder    *notify.Recorder
	issues      *IssueService
	assignments *AssignmentService
	clock       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    store.NewMemory(),
		recorder: &notify.Recorder{},
		clock:    time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	var mu sync.Mutex
	tick := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}
	f.issues = NewIssueService(f.store, f.recorder)
	f.issues.now = tick
	f.assignments = NewAssignmentService(f.store)
	f.assignments.now = tick
	return f
}

func (f *fixture) submit(t *testing.T, kind string) *models.Issue {
	t.Helper()
	issue, err := f.issues.Submit(context.Background(), SubmitInput{
		Type:        kind,
		Description: "no water since Monday",
		Location:    &models.Location{Lat: 19.07, Lng: 72.87},
		Images:      []string{"https://img/a.jpg"},
		SubmittedBy: primitive.NewObjectID(),
	})
	require.NoError(t, err)
	return issue
}

func (f *fixture) vote(t *testing.T, id primitive.ObjectID, n int) *models.Issue {
	t.Helper()
	var issue *models.Issue
	for i := 0; i < n; i++ {
		var err error
		issue, err = f.issues.CastVote(context.Background(), id, primitive.NewObjectID())
		require.NoError(t, err)
	}
	return issue
}

var errStoreDown = errors.New("store down")

// brokenAssignments fails every fork insert.
type brokenAssignments struct {
	store.AssignmentStore
}

func (brokenAssignments) CreateAssignment(context.Context, *models.GramSevakAssignment) error {
	return errStoreDown
}

// rollbackTx restores the issue when the callback fails, standing in for
// a transactional backend.
type rollbackTx struct {
	issues store.IssueStore
	id     primitive.ObjectID
}

func (r rollbackTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	before, err := r.issues.GetIssue(ctx, r.id)
	if err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		restoreTo := store.Transition{
			To: before.Status, SetAssignment: true,
			Priority: before.Priority, AssignedTo: before.AssignedTo, At: before.UpdatedAt,
		}
		// in-progress is re-enterable, so restore by forcing the fields back.
		_, _ = r.issues.TransitionIssue(ctx, r.id, restoreTo)
		return err
	}
	return nil
}
