package domain

import (
	"regexp"
	"strings"
	"time"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

const MinPasswordLength = 6

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	DateJoined   time.Time  `json:"date_joined"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// NewUser validates registration input. The caller hashes the password.
func NewUser(username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, Validation("missing username, email, or password")
	}
	if !usernamePattern.MatchString(username) {
		return nil, Validation("invalid username format")
	}
	if !ValidEmail(email) {
		return nil, Validation("invalid email format")
	}
	if len(password) < MinPasswordLength {
		return nil, Validation("password must be at least %d characters long", MinPasswordLength)
	}
	return &User{
		Username:   username,
		Email:      email,
		DateJoined: time.Now().UTC(),
	}, nil
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Profile is the caller's account together with their holdings.
type Profile struct {
	User    User                  `json:"user"`
	Entries []CollectionEntryView `json:"collections"`
	Decks   []DeckSummary         `json:"decks"`
}
