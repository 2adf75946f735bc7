package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xweirdlabs/fastapi.prod.starter/internal/users"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/config"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/db/models"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/errors"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/provider"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/security"
)

// cheapPasswordConfig keeps argon2 fast enough for unit tests.
func cheapPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func serviceJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "service-test-secret",
		Issuer:            "starter-api",
		ExpirationMinutes: 30,
	}
}

type fakeUserStore struct {
	byEmail    map[string]*models.User
	created    []users.CreateUserDTO
	createErr  error
	lastLogins map[uuid.UUID]time.Time
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byEmail:    map[string]*models.User{},
		lastLogins: map[uuid.UUID]time.Time{},
	}
}

func (f *fakeUserStore) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, dto)
	user := dto.ToModel()
	user.ID = uuid.New()
	f.byEmail[dto.Email] = user
	return user, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, errors.New(errors.CodeNotFound, "user not found")
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.lastLogins[id] = at
	return nil
}

func (f *fakeUserStore) addUser(t *testing.T, email, password string, active bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, cheapPasswordConfig())
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     active,
	}
	f.byEmail[email] = user
	return user
}

type fakeProviderClient struct {
	configured bool
	authURL    string
	authErr    error
	session    *provider.Session
	exchErr    error
	signOuts   []string
}

func (f *fakeProviderClient) Configured() bool { return f.configured }

func (f *fakeProviderClient) AuthorizationURL(_ string) (string, error) {
	return f.authURL, f.authErr
}

func (f *fakeProviderClient) ExchangeCode(_ context.Context, _, _ string) (*provider.Session, error) {
	if f.exchErr != nil {
		return nil, f.exchErr
	}
	return f.session, nil
}

func (f *fakeProviderClient) SignOut(_ context.Context, token string) error {
	f.signOuts = append(f.signOuts, token)
	return nil
}

func newService(store *fakeUserStore, client *fakeProviderClient) *Service {
	var pc providerClient
	if client != nil {
		pc = client
	}
	return NewService(store, pc, serviceJWTConfig(), cheapPasswordConfig())
}

func TestLoginSuccess(t *testing.T) {
	store := newFakeUserStore()
	user := store.addUser(t, "alice@example.com", "correct horse", true)
	svc := newService(store, nil)

	token, err := svc.Login(context.Background(), LoginDTO{Username: "alice@example.com", Password: "correct horse"})

	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Contains(t, store.lastLogins, user.ID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	store := newFakeUserStore()
	store.addUser(t, "alice@example.com", "correct horse", true)
	store.addUser(t, "bob@example.com", "hunter2hunter2", false)
	svc := newService(store, nil)

	cases := map[string]LoginDTO{
		"unknown email":    {Username: "nobody@example.com", Password: "whatever-pass"},
		"wrong password":   {Username: "alice@example.com", Password: "wrong password"},
		"inactive account": {Username: "bob@example.com", Password: "hunter2hunter2"},
	}
	for name, dto := range cases {
		t.Run(name, func(t *testing.T) {
			token, err := svc.Login(context.Background(), dto)
			assert.Nil(t, token)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeUnauthorized))
			assert.Equal(t, "incorrect email or password", errors.As(err).Message())
		})
	}
}

func TestSignupCreatesInactiveSessionlessResult(t *testing.T) {
	store := newFakeUserStore()
	svc := newService(store, nil)

	result, err := svc.Signup(context.Background(), SignupDTO{
		Email:    "new@example.com",
		Password: "a strong password",
		FullName: "New Person",
	})

	require.NoError(t, err)
	assert.Nil(t, result.Session)
	assert.Equal(t, "new@example.com", result.User.Email)
	assert.True(t, result.User.IsActive)
	require.Len(t, store.created, 1)
	assert.NotEqual(t, "a strong password", store.created[0].PasswordHash)
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	store := newFakeUserStore()
	store.addUser(t, "taken@example.com", "some password", true)
	svc := newService(store, nil)

	result, err := svc.Signup(context.Background(), SignupDTO{
		Email:    "taken@example.com",
		Password: "another password",
	})

	assert.Nil(t, result)
	assert.True(t, errors.IsCode(err, errors.CodeConflict))
}

func TestSignupLowercasesEmailForStorageAndLogin(t *testing.T) {
	store := newFakeUserStore()
	svc := newService(store, nil)

	result, err := svc.Signup(context.Background(), SignupDTO{
		Email:    "Alice@Example.com",
		Password: "a strong password",
	})

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", result.User.Email)

	_, err = svc.Login(context.Background(), LoginDTO{Username: "alice@example.com", Password: "a strong password"})
	assert.NoError(t, err)
	_, err = svc.Login(context.Background(), LoginDTO{Username: "ALICE@EXAMPLE.COM", Password: "a strong password"})
	assert.NoError(t, err)
}

func TestSignupDuplicateEmailConflictsAcrossCase(t *testing.T) {
	store := newFakeUserStore()
	store.addUser(t, "taken@example.com", "some password", true)
	svc := newService(store, nil)

	result, err := svc.Signup(context.Background(), SignupDTO{
		Email:    "TAKEN@Example.com",
		Password: "another password",
	})

	assert.Nil(t, result)
	assert.True(t, errors.IsCode(err, errors.CodeConflict))
}

func TestAuthorizationURLWithoutProvider(t *testing.T) {
	svc := newService(newFakeUserStore(), nil)

	_, err := svc.AuthorizationURL("google")

	assert.True(t, errors.IsCode(err, errors.CodeNotImplemented))
}

func TestAuthorizationURLDelegates(t *testing.T) {
	client := &fakeProviderClient{configured: true, authURL: "https://provider.example.com/authorize?x=y"}
	svc := newService(newFakeUserStore(), client)

	dto, err := svc.AuthorizationURL("google")

	require.NoError(t, err)
	assert.Equal(t, "https://provider.example.com/authorize?x=y", dto.AuthorizationURL)
}

func TestCompleteCallbackReturnsProviderSession(t *testing.T) {
	client := &fakeProviderClient{
		configured: true,
		session:    &provider.Session{AccessToken: "provider-access-token", TokenType: "bearer"},
	}
	svc := newService(newFakeUserStore(), client)

	token, err := svc.CompleteCallback(context.Background(), "auth-code", "state-blob")

	require.NoError(t, err)
	assert.Equal(t, "provider-access-token", token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)
}

func TestCompleteCallbackRequiresCode(t *testing.T) {
	client := &fakeProviderClient{configured: true}
	svc := newService(newFakeUserStore(), client)

	_, err := svc.CompleteCallback(context.Background(), "", "state-blob")

	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}

func TestCompleteCallbackClassifiesProviderFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code errors.Code
	}{
		{"rejected code", &provider.Error{Kind: provider.KindInvalidCode}, errors.CodeUnauthorized},
		{"provider down", &provider.Error{Kind: provider.KindUnreachable}, errors.CodeDependency},
		{"not configured", &provider.Error{Kind: provider.KindMisconfigured}, errors.CodeNotImplemented},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeProviderClient{configured: true, exchErr: tc.err}
			svc := newService(newFakeUserStore(), client)

			_, err := svc.CompleteCallback(context.Background(), "auth-code", "state-blob")

			assert.True(t, errors.IsCode(err, tc.code))
		})
	}
}

func TestLogoutRevokesProviderSession(t *testing.T) {
	client := &fakeProviderClient{configured: true}
	svc := newService(newFakeUserStore(), client)

	require.NoError(t, svc.Logout(context.Background(), "some-token"))
	assert.Equal(t, []string{"some-token"}, client.signOuts)
}

func TestLogoutWithoutProviderIsNoop(t *testing.T) {
	svc := newService(newFakeUserStore(), nil)
	assert.NoError(t, svc.Logout(context.Background(), "some-token"))
}
