package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/0xweirdlabs/fastapi.prod.starter/internal/users"
	pkgauth "github.com/0xweirdlabs/fastapi.prod.starter/pkg/auth"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/config"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/db/models"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/errors"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/provider"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/security"
)

// userStore is the slice of the users repository the auth service needs.
type userStore interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// providerClient is the slice of the delegated identity client used for the
// browser login flow.
type providerClient interface {
	Configured() bool
	AuthorizationURL(providerName string) (string, error)
	ExchangeCode(ctx context.Context, code, state string) (*provider.Session, error)
	SignOut(ctx context.Context, token string) error
}

// Service implements password login, self-service signup, and the delegated
// provider flow.
type Service struct {
	repo     userStore
	client   providerClient
	jwt      config.JWTConfig
	password config.PasswordConfig
	now      func() time.Time
}

func NewService(repo userStore, client providerClient, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig) *Service {
	return &Service{
		repo:     repo,
		client:   client,
		jwt:      jwtCfg,
		password: passwordCfg,
		now:      time.Now,
	}
}

// normalizeEmail folds an address to the canonical stored form. Accounts are
// keyed by lowercased email, so login and signup must agree on case.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login verifies the credentials and mints an access token. Unknown email,
// wrong password, and disabled accounts all produce the same rejection so
// the response leaks nothing about which accounts exist.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*TokenDTO, error) {
	rejected := errors.New(errors.CodeUnauthorized, "incorrect email or password")

	email := normalizeEmail(dto.Username)
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			// Hash anyway to keep the timing profile of the two failure
			// modes close.
			_, _ = security.HashPassword(dto.Password, s.password)
			return nil, rejected
		}
		return nil, err
	}

	match, err := security.VerifyPassword(dto.Password, user.PasswordHash)
	if err != nil || !match {
		return nil, rejected
	}
	if !user.IsActive {
		return nil, rejected
	}

	now := s.now()
	token, err := pkgauth.MintAccessToken(s.jwt, now, pkgauth.AccessTokenPayload{
		UserID:    user.ID,
		Email:     user.Email,
		Superuser: user.IsSuperuser,
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "minting access token")
	}

	// Best effort; a failed timestamp write must not fail the login.
	_ = s.repo.UpdateLastLogin(ctx, user.ID, now)

	return &TokenDTO{AccessToken: token, TokenType: "bearer"}, nil
}

// Signup registers a local account. The session slot in the result stays
// empty: callers log in explicitly after registering.
func (s *Service) Signup(ctx context.Context, dto SignupDTO) (*SignupResultDTO, error) {
	email := normalizeEmail(dto.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, errors.New(errors.CodeConflict, "the user with this email already exists in the system")
	} else if !errors.IsCode(err, errors.CodeNotFound) {
		return nil, err
	}

	hash, err := security.HashPassword(dto.Password, s.password)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "hashing password")
	}

	user, err := s.repo.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		FullName:     dto.FullName,
	})
	if err != nil {
		return nil, err
	}

	return &SignupResultDTO{User: users.FromModel(user), Session: nil}, nil
}

// AuthorizationURL starts a delegated login by producing the provider consent
// URL. A deployment without provider credentials cannot serve this flow.
func (s *Service) AuthorizationURL(providerName string) (*AuthorizationURLDTO, error) {
	if s.client == nil || !s.client.Configured() {
		return nil, errors.New(errors.CodeNotImplemented, "oauth login is not configured")
	}
	url, err := s.client.AuthorizationURL(providerName)
	if err != nil {
		return nil, classifyProviderError(err)
	}
	return &AuthorizationURLDTO{AuthorizationURL: url}, nil
}

// CompleteCallback redeems the provider authorization code for a session
// token. The token is the provider's, not a locally minted one; the resolver
// accepts it through the delegated paths.
func (s *Service) CompleteCallback(ctx context.Context, code, state string) (*TokenDTO, error) {
	if s.client == nil || !s.client.Configured() {
		return nil, errors.New(errors.CodeNotImplemented, "oauth login is not configured")
	}
	if code == "" {
		return nil, errors.New(errors.CodeValidation, "authorization code is required")
	}
	session, err := s.client.ExchangeCode(ctx, code, state)
	if err != nil {
		return nil, classifyProviderError(err)
	}
	tokenType := session.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}
	return &TokenDTO{AccessToken: session.AccessToken, TokenType: tokenType}, nil
}

// Logout revokes the provider session when one exists. Locally minted tokens
// are stateless, so for those logout is an acknowledgement only.
func (s *Service) Logout(ctx context.Context, token string) error {
	if s.client == nil || !s.client.Configured() || token == "" {
		return nil
	}
	// Best effort: the provider may not know the token.
	_ = s.client.SignOut(ctx, token)
	return nil
}

func classifyProviderError(err error) error {
	switch provider.KindOf(err) {
	case provider.KindMisconfigured:
		return errors.Wrap(errors.CodeNotImplemented, err, "oauth login is not configured")
	case provider.KindInvalidCode, provider.KindInvalidToken:
		return errors.Wrap(errors.CodeUnauthorized, err, "could not validate provider credentials")
	case provider.KindUnreachable:
		return errors.Wrap(errors.CodeDependency, err, "identity provider is unavailable")
	default:
		return errors.Wrap(errors.CodeInternal, err, "identity provider request failed")
	}
}
