package dto

import "time"

// CreateItemRequest payload for POST /items.
type CreateItemRequest struct {
	OwnerID     string   `json:"ownerId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Cost        *int     `json:"cost"`
	Images      []string `json:"images"`
	Condition   string   `json:"condition"`
	Tags        []string `json:"tags"`
	Size        *string  `json:"size"`
	Category    string   `json:"category"`
}

// ItemResponse is the public view of a listing.
type ItemResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Cost        int       `json:"cost"`
	Images      []string  `json:"images"`
	Condition   string    `json:"condition"`
	Tags        []string  `json:"tags"`
	Size        *string   `json:"size,omitempty"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ItemStatusChangeResponse is one audit trail entry.
type ItemStatusChangeResponse struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"itemId"`
	OldStatus string    `json:"oldStatus,omitempty"`
	NewStatus string    `json:"newStatus"`
	ActorID   *string   `json:"actorId,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
