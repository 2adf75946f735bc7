package auth

import "github.com/0xweirdlabs/fastapi.prod.starter/internal/users"

// LoginDTO carries the form-encoded credentials of a password login.
type LoginDTO struct {
	Username string `validate:"required,email"`
	Password string `validate:"required"`
}

// TokenDTO is the bearer token envelope returned by a successful login.
type TokenDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// SignupDTO carries a self-service registration request.
type SignupDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	FullName string `json:"full_name" validate:"omitempty,max=255"`
}

// SignupResultDTO mirrors the signup response contract: the created account
// plus a session slot that stays empty until the email is confirmed.
type SignupResultDTO struct {
	User    *users.UserDTO `json:"user"`
	Session *TokenDTO      `json:"session"`
}

// AuthorizationURLDTO wraps the provider consent URL handed to clients
// starting a delegated login.
type AuthorizationURLDTO struct {
	AuthorizationURL string `json:"authorization_url"`
}

// MessageDTO is the generic acknowledgement body.
type MessageDTO struct {
	Message string `json:"message"`
}
