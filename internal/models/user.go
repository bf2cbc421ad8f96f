package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCollector Role = "collector"
	RoleResident  Role = "resident"
	RoleRecorder  Role = "recorder"
)

// ParseRole normalizes a role string to its canonical lowercase form.
// Roles are stored lowercase and compared case-insensitively everywhere.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleCollector:
		return RoleCollector, true
	case RoleResident:
		return RoleResident, true
	case RoleRecorder:
		return RoleRecorder, true
	}
	return "", false
}

func (r Role) Is(other Role) bool {
	return strings.EqualFold(string(r), string(other))
}

type User struct {
	ID      int64
	Name    string
	Address string
	Email   string
	Contact string
	// ContactOpaque is set when the stored contact value could not be
	// decrypted and Contact holds the raw stored bytes instead.
	ContactOpaque     bool
	PasswordHash      []byte
	Role              Role
	GoogleID          *string
	AvatarURL         *string
	IsOAuthUser       bool
	IsVerified        bool
	VerificationToken *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Federated reports whether the account authenticates through an
// external identity provider and therefore carries no local password.
func (u User) Federated() bool {
	return u.GoogleID != nil && *u.GoogleID != ""
}
