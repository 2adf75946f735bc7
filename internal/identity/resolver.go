package identity

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	pkgauth "github.com/0xweirdlabs/fastapi.prod.starter/pkg/auth"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/config"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/db/models"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/errors"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/provider"
)

// ProviderValidator is the slice of the provider client the resolver needs.
type ProviderValidator interface {
	Configured() bool
	ValidateToken(ctx context.Context, accessToken string) (*provider.Profile, error)
}

// UserLookup loads local credential records so that resolved identities carry
// the current activation and privilege flags rather than stale claims.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Resolver turns a bearer token into an Identity. It tries the delegated
// provider first, then locally-issued tokens, then provider-issued tokens
// verified offline against the shared secret. A token that fails every path
// is rejected; there is no fallback identity.
type Resolver struct {
	jwt      config.JWTConfig
	provider config.ProviderConfig
	client   ProviderValidator
	users    UserLookup
}

func NewResolver(jwtCfg config.JWTConfig, providerCfg config.ProviderConfig, client ProviderValidator, users UserLookup) *Resolver {
	return &Resolver{jwt: jwtCfg, provider: providerCfg, client: client, users: users}
}

// Resolve authenticates a raw bearer token. Failures are classified: a token
// that verified under one of our secrets but has expired yields
// CodeTokenExpired, everything else yields CodeUnauthorized.
func (r *Resolver) Resolve(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New(errors.CodeUnauthorized, "not authenticated")
	}

	if r.client != nil && r.client.Configured() {
		profile, err := r.client.ValidateToken(ctx, token)
		if err == nil {
			return &Identity{
				Subject:  profile.ID,
				Email:    profile.Email,
				Role:     profile.Role,
				IsActive: true,
				Source:   SourceProvider,
			}, nil
		}
		// Provider rejection is not final: the token may be one of ours,
		// so fall through to the local verifiers.
	}

	claims, err := pkgauth.ParseAccessToken(r.jwt, token)
	if err == nil {
		// The token is ours, so this path is definitive: a missing or
		// disabled account cannot be resurrected by a weaker verifier.
		return r.identityFromClaims(ctx, claims)
	}
	expired := pkgauth.IsExpired(err)

	if r.provider.JWTSecret != "" {
		id, perr := r.resolveProviderToken(token)
		if perr == nil {
			return id, nil
		}
		if errors.IsCode(perr, errors.CodeTokenExpired) {
			expired = true
		}
	}

	if expired {
		return nil, errors.New(errors.CodeTokenExpired, "token has expired")
	}
	return nil, errors.New(errors.CodeUnauthorized, "could not validate credentials")
}

func (r *Resolver) identityFromClaims(ctx context.Context, claims *pkgauth.AccessTokenClaims) (*Identity, error) {
	id := &Identity{
		Subject:     claims.Subject,
		Email:       claims.Email,
		IsActive:    true,
		IsSuperuser: claims.Superuser,
		Source:      SourceLocal,
	}
	if r.users == nil {
		return id, nil
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.New(errors.CodeUnauthorized, "could not validate credentials")
	}
	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			return nil, errors.New(errors.CodeUnauthorized, "could not validate credentials")
		}
		return nil, err
	}
	id.Email = user.Email
	id.IsActive = user.IsActive
	id.IsSuperuser = user.IsSuperuser
	return id, nil
}

// resolveProviderToken verifies a provider-issued JWT offline. The signature
// check against the shared secret is mandatory; a provider token with a bad
// signature is rejected like any other forgery.
func (r *Resolver) resolveProviderToken(token string) (*Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(r.provider.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if pkgauth.IsExpired(err) {
			return nil, errors.New(errors.CodeTokenExpired, "token has expired")
		}
		return nil, errors.Wrap(errors.CodeUnauthorized, err, "could not validate credentials")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New(errors.CodeUnauthorized, "could not validate credentials")
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return &Identity{
		Subject:  sub,
		Email:    email,
		Role:     role,
		IsActive: true,
		Source:   SourceProviderToken,
	}, nil
}
