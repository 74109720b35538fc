package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	Email       string
	Permissions []enums.Permission
	JTI         string
}

// AccessTokenClaims represents the typed JWT presented by back-office staff.
type AccessTokenClaims struct {
	UserID      uuid.UUID          `json:"user_id"`
	Email       string             `json:"email,omitempty"`
	Permissions []enums.Permission `json:"permissions"`
	jwt.RegisteredClaims
}

// Capabilities resolves the claim permissions into a lookup set.
func (c AccessTokenClaims) Capabilities() Capabilities {
	return NewCapabilities(c.Permissions...)
}
