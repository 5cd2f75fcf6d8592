package entity

import "time"

type User struct {
	ID        int64
	Email     string
	FullName  string
	Role      string
	Status    UserStatus
	Provider  string
	Password  string // hashed, empty for provider-only accounts
	CreatedAt time.Time
}

type NewUser struct {
	ID       int64
	Email    string
	FullName string
	Role     string
	Status   UserStatus
	Provider string
}

// OAuthProfile is what a provider tells us about the signed-in account.
type OAuthProfile struct {
	Provider string
	Email    string
	Name     string
}

// Session is a freshly issued session token.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
}
