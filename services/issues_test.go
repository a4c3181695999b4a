package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"gramsetu-be/models"
	"gramsetu-be/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSubmit_CreatesPendingAndBroadcasts(t *testing.T) {
	f := newFixture(t)
	issue := f.submit(t, "  water ")

	assert.Equal(t, models.Pending, issue.Status)
	assert.Equal(t, "water", issue.Type)
	assert.Nil(t, issue.Priority)
	assert.Nil(t, issue.AssignedTo)
	assert.Empty(t, issue.Votes)

	events := f.recorder.On(notify.BroadcastChannel)
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventNewIssue, events[0].Event)
}

func TestSubmit_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	by := primitive.NewObjectID()
	loc := &models.Location{Lat: 10, Lng: 10}

	cases := map[string]SubmitInput{
		"missing type":        {Description: "d", Location: loc, SubmittedBy: by},
		"missing description": {Type: "road", Location: loc, SubmittedBy: by},
		"missing location":    {Type: "road", Description: "d", SubmittedBy: by},
		"bad latitude":        {Type: "road", Description: "d", Location: &models.Location{Lat: 91}, SubmittedBy: by},
		"empty image":         {Type: "road", Description: "d", Location: loc, Images: []string{" "}, SubmittedBy: by},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.issues.Submit(ctx, in)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}

	list, err := f.issues.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.recorder.Events())
}

func TestCastVote_TwiceConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issue := f.submit(t, "road")
	citizen := primitive.NewObjectID()

	voted, err := f.issues.CastVote(ctx, issue.ID, citizen)
	require.NoError(t, err)
	assert.Equal(t, 1, voted.VoteCount())

	_, err = f.issues.CastVote(ctx, issue.ID, citizen)
	assert.ErrorIs(t, err, models.ErrAlreadyVoted)

	got, err := f.issues.Get(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.VoteCount())

	updates := 0
	for _, e := range f.recorder.Events() {
		if e.Event == notify.EventVoteUpdate {
			updates++
		}
	}
	assert.Equal(t, 1, updates, "a rejected vote publishes nothing")
}

func TestCastVote_UnknownIssue(t *testing.T) {
	f := newFixture(t)
	_, err := f.issues.CastVote(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCastVote_ConcurrentSameCitizen(t *testing.T) {
	f := newFixture(t)
	issue := f.submit(t, "road")
	citizen := primitive.NewObjectID()

	var ok, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.issues.CastVote(context.Background(), issue.ID, citizen)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, models.ErrAlreadyVoted):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(24), conflicts.Load())
}

func TestVoteCountNeverDecreases(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issue := f.submit(t, "road")

	last := 0
	for i := 0; i < 12; i++ {
		voted, err := f.issues.CastVote(ctx, issue.ID, primitive.NewObjectID())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, voted.VoteCount(), last)
		last = voted.VoteCount()
	}

	// Transitions keep the vote set intact.
	_, _, err := f.issues.Assign(ctx, issue.ID, "low", "Asha")
	require.NoError(t, err)
	rejected, err := f.issues.Reject(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, last, rejected.VoteCount())
}

func TestApprove_IsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issue := f.submit(t, "road")

	approved, err := f.issues.Approve(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Approved, approved.Status)

	_, err = f.issues.Reject(ctx, issue.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	_, _, err = f.issues.Assign(ctx, issue.ID, "high", "Asha")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	forks, err := f.assignments.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, forks.Assignments)
}

func TestReject_ClearsPriorityAndAssignee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issue := f.submit(t, "road")

	assigned, _, err := f.issues.Assign(ctx, issue.ID, "Medium", "Ravi")
	require.NoError(t, err)
	require.NotNil(t, assigned.Priority)
	require.NotNil(t, assigned.AssignedTo)

	rejected, err := f.issues.Reject(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Rejected, rejected.Status)
	assert.Nil(t, rejected.Priority)
	assert.Nil(t, rejected.AssignedTo)

	_, err = f.issues.Approve(ctx, issue.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestReject_UnknownIssue(t *testing.T) {
	f := newFixture(t)
	_, err := f.issues.Reject(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrIssueNotFound)
	assert.Empty(t, f.recorder.Events())
}

func TestAssign_ForksSnapshotAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issue := f.submit(t, "water")
	f.vote(t, issue.ID, 3)
	f.recorder = &notify.Recorder{}
	f.issues.notifier = f.recorder

	assigned, fork, err := f.issues.Assign(ctx, issue.ID, "LOW", " Asha ")
	require.NoError(t, err)

	assert.Equal(t, models.InProgress, assigned.Status)
	assert.Equal(t, models.Low, *assigned.Priority)
	assert.Equal(t, "Asha", *assigned.AssignedTo)

	assert.Equal(t, assigned.ID, fork.OriginalIssueID)
	assert.Equal(t, assigned.Type, fork.Type)
	assert.Equal(t, assigned.Description, fork.Description)
	assert.Equal(t, assigned.Location, fork.Location)
	assert.Equal(t, assigned.Images, fork.Images)
	assert.Equal(t, assigned.Votes, fork.Votes)
	assert.Equal(t, assigned.SubmittedBy, fork.SubmittedBy)
	assert.Equal(t, "asha", fork.AssignedKey)
	assert.Equal(t, models.AssignmentInProgress, fork.Status)

	forks, err := f.assignments.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, forks.Assignments, 1)
	assert.Equal(t, fork.ID, forks.Assignments[0].ID)

	events := f.recorder.Events()
	require.Len(t, events, 2)
	assert.Equal(t, notify.Published{Channel: notify.BroadcastChannel, Event: notify.EventIssueUpdate, Payload: assigned.View()}, events[0])
	assert.Equal(t, "gramsevak:asha", events[1].Channel)
	assert.Equal(t, notify.EventNewGramSevakIssue, events[1].Event)
	assert.Equal(t, fork, events[1].Payload)
}

func TestAssign_ReassignCreatesAnotherFork(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issue := f.submit(t, "road")

	_, first, err := f.issues.Assign(ctx, issue.ID, "low", "Asha")
	require.NoError(t, err)
	_, second, err := f.issues.Assign(ctx, issue.ID, "high", "Ravi")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	forks, err := f.assignments.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, forks.Assignments, 2)
}

func TestAssign_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issue := f.submit(t, "road")

	_, _, err := f.issues.Assign(ctx, issue.ID, "", "Asha")
	assert.ErrorIs(t, err, models.ErrValidation)
	_, _, err = f.issues.Assign(ctx, issue.ID, "high", "   ")
	assert.ErrorIs(t, err, models.ErrValidation)
	_, _, err = f.issues.Assign(ctx, issue.ID, "critical", "Asha")
	assert.ErrorIs(t, err, models.ErrValidation)
	_, _, err = f.issues.Assign(ctx, primitive.NewObjectID(), "high", "Asha")
	assert.ErrorIs(t, err, models.ErrIssueNotFound)

	got, err := f.issues.Get(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Pending, got.Status)
	assert.Nil(t, got.Priority)
}

func TestAssign_ForkFailureLeavesIssueAssigned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issue := f.submit(t, "road")
	f.store.Assignments = brokenAssignments{AssignmentStore: f.store.Assignments}
	before := len(f.recorder.Events())

	_, _, err := f.issues.Assign(ctx, issue.ID, "high", "Asha")
	require.ErrorIs(t, err, errStoreDown)

	got, err := f.issues.Get(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InProgress, got.Status, "without a transaction the first write stands")
	assert.Len(t, f.recorder.Events(), before, "no events after a failed assign")
}

func TestAssign_ForkFailureRolledBackInTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issue := f.submit(t, "road")
	// Move to in-progress first so the restore transition is legal.
	_, _, err := f.issues.Assign(ctx, issue.ID, "low", "Asha")
	require.NoError(t, err)

	f.store.Assignments = brokenAssignments{AssignmentStore: f.store.Assignments}
	f.store.Tx = rollbackTx{issues: f.store.Issues, id: issue.ID}

	_, _, err = f.issues.Assign(ctx, issue.ID, "high", "Ravi")
	require.ErrorIs(t, err, errStoreDown)

	got, err := f.issues.Get(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Low, *got.Priority)
	assert.Equal(t, "Asha", *got.AssignedTo)
}

// End to end: six votes suggest medium, the administrator's explicit
// high wins, and only Asha's room hears about the fork.
func TestScenario_OverrideAndRouting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hub := notify.NewHub()
	f.issues.notifier = hub

	asha := &collectingSub{id: "asha"}
	ravi := &collectingSub{id: "ravi"}
	hub.Register(asha)
	hub.Register(ravi)
	_, err := hub.Join(asha, "Asha")
	require.NoError(t, err)
	_, err = hub.Join(ravi, "Ravi")
	require.NoError(t, err)

	issue := f.submit(t, "water")
	voted := f.vote(t, issue.ID, 6)
	require.NotNil(t, voted.View().SuggestedPriority)
	assert.Equal(t, models.Medium, *voted.View().SuggestedPriority)

	assigned, _, err := f.issues.Assign(ctx, issue.ID, "high", "Asha")
	require.NoError(t, err)
	assert.Equal(t, models.InProgress, assigned.Status)
	assert.Equal(t, models.High, *assigned.Priority)

	assert.Equal(t, 1, asha.count(notify.EventNewGramSevakIssue))
	assert.Equal(t, 0, ravi.count(notify.EventNewGramSevakIssue))
	assert.Equal(t, 1, ravi.count(notify.EventIssueUpdate))
}

// A worker that was not connected hears nothing but still sees the fork
// in the full listing.
func TestScenario_OfflineWorkerReconciles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hub := notify.NewHub()
	f.issues.notifier = hub

	issue := f.submit(t, "road")
	_, fork, err := f.issues.Assign(ctx, issue.ID, "medium", "Asha")
	require.NoError(t, err)

	late := &collectingSub{id: "late"}
	hub.Register(late)
	_, err = hub.Join(late, "asha")
	require.NoError(t, err)
	assert.Equal(t, 0, late.count(notify.EventNewGramSevakIssue))

	list, err := f.assignments.List(ctx, "Asha")
	require.NoError(t, err)
	require.Len(t, list.Assignments, 1)
	assert.Equal(t, fork.ID, list.Assignments[0].ID)
}

type collectingSub struct {
	id string
	mu sync.Mutex
	ev []string
}

func (c *collectingSub) ID() string { return c.id }

func (c *collectingSub) Deliver(msg []byte) bool {
	var fr struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(msg, &fr); err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ev = append(c.ev, fr.Event)
	return true
}

func (c *collectingSub) count(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.ev {
		if e == event {
			n++
		}
	}
	return n
}
