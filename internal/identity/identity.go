package identity

// Source records which path of the resolution chain produced an identity.
type Source string

const (
	// SourceProvider means the delegated provider vouched for the token online.
	SourceProvider Source = "provider"
	// SourceLocal means a locally-issued JWT was decoded and verified.
	SourceLocal Source = "local"
	// SourceProviderToken means a provider-issued JWT was verified offline
	// against the configured provider secret.
	SourceProviderToken Source = "provider_token"
)

// Identity is the normalized, request-scoped view of an authenticated caller.
// It is never persisted.
type Identity struct {
	Subject     string `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	Source      Source `json:"-"`
}
