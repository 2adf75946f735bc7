package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT. The token
// embeds the subject id and expiry only; mutable user state (active flag,
// profile fields) stays in the credential store.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	Email     string
	Superuser bool
}

// AccessTokenClaims represents the typed JWT issued to clients. The subject id
// travels in the registered "sub" claim.
type AccessTokenClaims struct {
	Email     string `json:"email,omitempty"`
	Superuser bool   `json:"is_superuser,omitempty"`
	jwt.RegisteredClaims
}
