package domain

import "time"

// ItemStatusChange is an immutable audit trail entry.
type ItemStatusChange struct {
	ID        string
	ItemID    string
	OldStatus ItemStatus
	NewStatus ItemStatus
	ActorID   *string
	Reason    string
	CreatedAt time.Time
}
