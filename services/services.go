// Package services holds the issue lifecycle, the vote ledger and the
// gram sevak assignment ledger. Handlers call into it; it talks to the
// store and publishes events after each successful write.
package services

import (
	"time"

	"gramsetu-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   primitive.ObjectID
	Name string
	Role models.Role
}

// Clock returns the current time. Tests replace it.
type Clock func() time.Time
