package provider

import "time"

// Profile is the normalized user record returned by the provider's userinfo
// endpoint.
type Profile struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Role     string         `json:"role"`
	Metadata map[string]any `json:"user_metadata"`
}

// FullName extracts a display name from the profile metadata when present.
func (p Profile) FullName() string {
	if p.Metadata == nil {
		return ""
	}
	if name, ok := p.Metadata["full_name"].(string); ok {
		return name
	}
	return ""
}

// Session is the provider-issued token bundle from a code exchange. The access
// token is an opaque bearer credential as far as this service is concerned.
type Session struct {
	AccessToken  string
	TokenType    string
	RefreshToken string
	Expiry       time.Time
}
