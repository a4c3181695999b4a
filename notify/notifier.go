// Package notify routes issue events to connected clients.
//
// Delivery is best-effort: an event reaches only the subscribers that
// are connected, and joined to the right room, at publish time. Nothing
// is queued for later. Clients reconcile by fetching full state over
// REST after they reconnect.
package notify

import (
	"gramsetu-be/models"
)

// Event names understood by the web client.
const (
	EventNewIssue          = "newIssue"
	EventVoteUpdate        = "voteUpdate"
	EventIssueUpdate       = "issueUpdate"
	EventNewGramSevakIssue = "newGramSevakIssue"

	// EventJoinGramSevak is sent by a client to join its worker room.
	EventJoinGramSevak = "joinGramSevak"
)

const roomPrefix = "gramsevak:"

// Notifier publishes events. Implementations must not block the caller
// on slow or absent subscribers.
type Notifier interface {
	// Broadcast reaches every connected subscriber.
	Broadcast(event string, payload any)
	// Direct reaches only subscribers joined to worker's room.
	Direct(worker, event string, payload any)
}

// ChannelKey is the room name for a worker's display name.
func ChannelKey(worker string) string {
	return roomPrefix + models.WorkerKey(worker)
}

// Frame is the wire envelope in both directions.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Discard drops every event. Used when real-time updates are disabled.
type Discard struct{}

func (Discard) Broadcast(string, any)      {}
func (Discard) Direct(string, string, any) {}
