package domain

import "time"

// UserType separates regular members from moderators.
type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeAdmin    UserType = "admin"
)

// DefaultPoints is the balance granted on sign-up.
const DefaultPoints = 100

// User is a marketplace participant.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	AvatarURL    *string
	UserType     UserType
	Points       int
	// Items holds ids of the Items this user listed.
	Items     []string
	Rating    *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the user may moderate listings.
func (u *User) IsAdmin() bool {
	return u != nil && u.UserType == UserTypeAdmin
}

// Owns reports whether itemID is in the user's items set.
func (u *User) Owns(itemID string) bool {
	for _, id := range u.Items {
		if id == itemID {
			return true
		}
	}
	return false
}

func (t UserType) Valid() bool {
	return t == UserTypeCustomer || t == UserTypeAdmin
}
