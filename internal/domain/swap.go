package domain

import "time"

// SwapStatus enumerates lifecycle states for swaps.
type SwapStatus string

const (
	SwapStatusPending  SwapStatus = "pending"
	SwapStatusAccepted SwapStatus = "accepted"
	SwapStatusRejected SwapStatus = "rejected"
	SwapStatusExpired  SwapStatus = "expired"
)

// SwapDirection selects which side of a swap a user is on.
type SwapDirection string

const (
	SwapDirectionInitiated SwapDirection = "initiated"
	SwapDirectionReceived  SwapDirection = "received"
	SwapDirectionBoth      SwapDirection = "both"
)

// Swap is a proposed exchange of two Items between two Users.
type Swap struct {
	ID              string
	InitiatorID     string
	CounterpartyID  string
	ItemOfferedID   string
	ItemRequestedID string
	Status          SwapStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DecidedAt       *time.Time
}

// IsTerminal reports whether no further transition is allowed.
func (s SwapStatus) IsTerminal() bool {
	return s != SwapStatusPending
}

// References reports whether the swap names itemID on either side.
func (s *Swap) References(itemID string) bool {
	return s.ItemOfferedID == itemID || s.ItemRequestedID == itemID
}

// SettledItemStatus is the status both Items take when the swap ends in s.
func (s SwapStatus) SettledItemStatus() ItemStatus {
	if s == SwapStatusAccepted {
		return ItemStatusRedeemed
	}
	return ItemStatusAvailable
}

// SwapDetail is a swap with its parties and items loaded for display. Item
// pointers are nil when moderation has since deleted the item.
type SwapDetail struct {
	Swap          Swap
	ItemOffered   *Item
	ItemRequested *Item
	Initiator     *User
	Counterparty  *User
}
