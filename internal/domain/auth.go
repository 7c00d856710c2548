package domain

import "time"

// Token represents issued authentication token metadata.
type Token struct {
	SubjectID string
	UserType  UserType
	ExpiresAt time.Time
	IssuedAt  time.Time
}
