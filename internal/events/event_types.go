package events

import (
	"time"

	"github.com/spec-kit/rewear-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventItemCreated   EventType = "item_created"
	EventItemModerated EventType = "item_moderated"
	EventItemDeleted   EventType = "item_deleted"
	EventItemRedeemed  EventType = "item_redeemed"
	EventSwapProposed  EventType = "swap_proposed"
	EventSwapDecided   EventType = "swap_decided"
	EventSwapExpired   EventType = "swap_expired"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	ActorID   *string   `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// ItemCreatedPayload payload.
type ItemCreatedPayload struct {
	ItemID  string `json:"item_id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
}

// ItemModeratedPayload payload.
type ItemModeratedPayload struct {
	ItemID    string            `json:"item_id"`
	OwnerID   string            `json:"owner_id"`
	OldStatus domain.ItemStatus `json:"old_status"`
	NewStatus domain.ItemStatus `json:"new_status"`
}

// ItemDeletedPayload payload.
type ItemDeletedPayload struct {
	ItemID  string `json:"item_id"`
	OwnerID string `json:"owner_id"`
}

// ItemRedeemedPayload payload.
type ItemRedeemedPayload struct {
	RedemptionID string `json:"redemption_id"`
	ItemID       string `json:"item_id"`
	BuyerID      string `json:"buyer_id"`
	SellerID     string `json:"seller_id"`
	Cost         int    `json:"cost"`
}

// SwapPayload is shared by all swap events.
type SwapPayload struct {
	SwapID          string            `json:"swap_id"`
	InitiatorID     string            `json:"initiator_id"`
	CounterpartyID  string            `json:"counterparty_id"`
	ItemOfferedID   string            `json:"item_offered_id"`
	ItemRequestedID string            `json:"item_requested_id"`
	Status          domain.SwapStatus `json:"status"`
}

// NewSwapPayload copies the identifying fields of swap.
func NewSwapPayload(swap *domain.Swap) SwapPayload {
	return SwapPayload{
		SwapID:          swap.ID,
		InitiatorID:     swap.InitiatorID,
		CounterpartyID:  swap.CounterpartyID,
		ItemOfferedID:   swap.ItemOfferedID,
		ItemRequestedID: swap.ItemRequestedID,
		Status:          swap.Status,
	}
}
