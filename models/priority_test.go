package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDerivePriority(t *testing.T) {
	tests := []struct {
		votes int
		want  *Priority
	}{
		{0, nil},
		{1, ptr(Low)},
		{4, ptr(Low)},
		{5, ptr(Medium)},
		{9, ptr(Medium)},
		{10, ptr(High)},
		{250, ptr(High)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DerivePriority(tt.votes), "votes=%d", tt.votes)
	}
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority(" HIGH ")
	require.NoError(t, err)
	assert.Equal(t, High, p)

	_, err = ParsePriority("")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParsePriority("urgent")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(Pending, Approved))
	assert.True(t, CanTransition(Pending, Rejected))
	assert.True(t, CanTransition(Pending, InProgress))
	assert.True(t, CanTransition(InProgress, Rejected))
	assert.True(t, CanTransition(InProgress, InProgress))

	assert.False(t, CanTransition(Approved, Rejected))
	assert.False(t, CanTransition(Rejected, InProgress))
	assert.False(t, CanTransition(Approved, Pending))
}

func TestWorkerKey(t *testing.T) {
	assert.Equal(t, "asha", WorkerKey("  Asha "))
	assert.Equal(t, WorkerKey("ASHA"), WorkerKey("asha"))
}

func TestSummarizeAssignments(t *testing.T) {
	list := []*GramSevakAssignment{
		{Status: AssignmentInProgress, Votes: make([]primitive.ObjectID, 2)},
		{Status: AssignmentCompleted, Votes: make([]primitive.ObjectID, 3)},
		{Status: AssignmentIssue},
	}
	stats := SummarizeAssignments(list)
	assert.Equal(t, AssignmentStats{Total: 3, InProgress: 1, Completed: 1, Issue: 1, TotalVotes: 5}, stats)
}

func ptr(p Priority) *Priority { return &p }
