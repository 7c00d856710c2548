package domain

import "time"

// Redemption records an Item bought with points.
type Redemption struct {
	ID        string
	ItemID    string
	BuyerID   string
	SellerID  string
	Cost      int
	CreatedAt time.Time
}
