package dto

import "time"

// ProposeSwapRequest payload for POST /swaps.
type ProposeSwapRequest struct {
	InitiatorID     string `json:"initiatorId"`
	ItemOfferedID   string `json:"itemOfferedId"`
	ItemRequestedID string `json:"itemRequestedId"`
}

// DecideSwapRequest payload for PUT /swaps.
type DecideSwapRequest struct {
	SwapID string `json:"swapId"`
	Status string `json:"status"`
	UserID string `json:"userId"`
}

// SwapResponse is a swap with its items and parties populated. Items are
// null once moderation deleted them.
type SwapResponse struct {
	ID              string        `json:"id"`
	Status          string        `json:"status"`
	Initiator       UserSummary   `json:"initiator"`
	Counterparty    UserSummary   `json:"counterparty"`
	ItemOffered     *ItemResponse `json:"itemOffered"`
	ItemRequested   *ItemResponse `json:"itemRequested"`
	ItemOfferedID   string        `json:"itemOfferedId"`
	ItemRequestedID string        `json:"itemRequestedId"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	DecidedAt       *time.Time    `json:"decidedAt,omitempty"`
}

// RedeemRequest payload for POST /redemptions.
type RedeemRequest struct {
	ItemID string `json:"itemId"`
}

// RedemptionResponse is one points purchase.
type RedemptionResponse struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"itemId"`
	BuyerID   string    `json:"buyerId"`
	SellerID  string    `json:"sellerId"`
	Cost      int       `json:"cost"`
	CreatedAt time.Time `json:"createdAt"`
}
