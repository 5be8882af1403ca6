package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Role gates dashboard capabilities. Owner can change business configuration
// and money state; staff gets read plus day-to-day surfaces (chat, search).
type Role string

const (
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleOwner, RoleStaff:
		return true
	default:
		return false
	}
}

// Claims are the only supported JWT claims shape for this service.
type Claims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	TokenType TokenType `json:"token_type"`
}
