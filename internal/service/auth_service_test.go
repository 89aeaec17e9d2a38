package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/dom/heritage-gallery/internal/identity"
	"github.com/dom/heritage-gallery/internal/repository"
	"github.com/dom/heritage-gallery/internal/service"
	"github.com/dom/heritage-gallery/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T, env *serviceEnv, verifier identity.Verifier) *service.AuthService {
	t.Helper()
	return service.NewAuthService(env.repos.User, env.repos.Session, verifier, testutil.TestConfig(), env.log)
}

func TestAuthService_Register(t *testing.T) {
	env := newServiceEnv(t)
	authService := newAuthService(t, env, nil)
	ctx := context.Background()

	testutil.NewUserBuilder().
		WithUsername("existing").
		WithEmail("existing@example.com").
		Build(t, env.db)

	tests := []struct {
		name    string
		input   service.RegisterInput
		wantErr error
		wantMsg string
	}{
		{
			name: "successful registration",
			input: service.RegisterInput{
				Username:    "newuser",
				Email:       "  NewUser@Example.com ",
				Password:    "password123",
				DisplayName: "New User",
			},
		},
		{
			name: "duplicate username",
			input: service.RegisterInput{
				Username: "existing",
				Email:    "fresh@example.com",
				Password: "password123",
			},
			wantErr: domain.ErrUsernameTaken,
		},
		{
			name: "duplicate email",
			input: service.RegisterInput{
				Username: "fresh",
				Email:    "existing@example.com",
				Password: "password123",
			},
			wantErr: domain.ErrEmailTaken,
		},
		{
			name: "short username",
			input: service.RegisterInput{
				Username: "ab",
				Email:    "ab@example.com",
				Password: "password123",
			},
			wantErr: domain.ErrInvalidInput,
			wantMsg: "username must be at least 3 characters",
		},
		{
			name: "short password",
			input: service.RegisterInput{
				Username: "shortpw",
				Email:    "shortpw@example.com",
				Password: "short",
			},
			wantErr: domain.ErrInvalidInput,
			wantMsg: "password must be at least 8 characters",
		},
		{
			name: "invalid email",
			input: service.RegisterInput{
				Username: "bademail",
				Email:    "not-an-email",
				Password: "password123",
			},
			wantErr: domain.ErrInvalidInput,
			wantMsg: "email must be a valid email address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := authService.Register(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantMsg != "" {
					assert.EqualError(t, err, tt.wantMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "newuser", result.User.Username)
			assert.Equal(t, "newuser@example.com", result.User.Email)
			assert.Equal(t, "New User", result.User.DisplayName)
			assert.Equal(t, domain.MarketplaceRoleViewer, result.User.MarketplaceRole)
			assert.NotEmpty(t, result.AccessToken)
			assert.NotEmpty(t, result.RefreshToken)
			assert.True(t, result.ExpiresAt.After(time.Now()))
		})
	}
}

func TestAuthService_RegisterDefaultsDisplayName(t *testing.T) {
	env := newServiceEnv(t)
	authService := newAuthService(t, env, nil)

	result, err := authService.Register(context.Background(), service.RegisterInput{
		Username: "kalamkari",
		Email:    "kalamkari@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "kalamkari", result.User.DisplayName)
}

// staleLookupUserRepo hides existing users from the uniqueness pre-check,
// as if a concurrent registration committed between the check and the insert.
type staleLookupUserRepo struct {
	repository.UserRepository
	inserted bool
}

func (r *staleLookupUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if !r.inserted {
		return nil, gorm.ErrRecordNotFound
	}
	return r.UserRepository.GetByUsername(ctx, username)
}

func (r *staleLookupUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if !r.inserted {
		return nil, gorm.ErrRecordNotFound
	}
	return r.UserRepository.GetByEmail(ctx, email)
}

func (r *staleLookupUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.inserted = true
	return r.UserRepository.Create(ctx, user)
}

func TestAuthService_RegisterConcurrentDuplicate(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	testutil.NewUserBuilder().
		WithUsername("pithora").
		WithEmail("pithora@example.com").
		Build(t, env.db)

	tests := []struct {
		name    string
		input   service.RegisterInput
		wantErr error
	}{
		{
			name: "username taken",
			input: service.RegisterInput{
				Username: "pithora",
				Email:    "someone@example.com",
				Password: "password123",
			},
			wantErr: domain.ErrUsernameTaken,
		},
		{
			name: "email taken",
			input: service.RegisterInput{
				Username: "someone",
				Email:    "pithora@example.com",
				Password: "password123",
			},
			wantErr: domain.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &staleLookupUserRepo{UserRepository: env.repos.User}
			authService := service.NewAuthService(users, env.repos.Session, nil, testutil.TestConfig(), env.log)

			result, err := authService.Register(ctx, tt.input)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrConflict)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	env := newServiceEnv(t)
	authService := newAuthService(t, env, nil)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().
		WithEmail("login@example.com").
		WithPassword("correctpassword").
		Build(t, env.db)
	testutil.NewUserBuilder().
		WithEmail("federated@example.com").
		Build(t, env.db)
	require.NoError(t, env.db.Model(&domain.User{}).Where("email = ?", "federated@example.com").Update("password_hash", "").Error)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"successful login", "login@example.com", password, nil},
		{"email is case insensitive", "LOGIN@example.com", password, nil},
		{"wrong password", "login@example.com", "wrongpassword", domain.ErrInvalidCredentials},
		{"unknown email", "nobody@example.com", password, domain.ErrInvalidCredentials},
		{"account without password", "federated@example.com", "anything", domain.ErrInvalidCredentials},
		{"missing password", "login@example.com", "", domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := authService.Login(ctx, service.LoginInput{Email: tt.email, Password: tt.password})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, result.User.ID)
			assert.NotEmpty(t, result.AccessToken)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	env := newServiceEnv(t)
	authService := newAuthService(t, env, nil)
	ctx := context.Background()

	result, err := authService.Register(ctx, service.RegisterInput{
		Username: "tokenuser",
		Email:    "token@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	claims, err := authService.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID.String(), (*claims)["sub"])

	_, err = authService.ValidateToken("invalid-token")
	assert.Error(t, err)

	otherCfg := testutil.TestConfig()
	otherCfg.JWTSecret = "a-different-secret"
	other := service.NewAuthService(env.repos.User, env.repos.Session, nil, otherCfg, env.log)
	_, err = other.ValidateToken(result.AccessToken)
	assert.Error(t, err, "tokens signed with another secret must be rejected")
}

func TestAuthService_RefreshTokens(t *testing.T) {
	env := newServiceEnv(t)
	authService := newAuthService(t, env, nil)
	ctx := context.Background()

	registered, err := authService.Register(ctx, service.RegisterInput{
		Username: "refresher",
		Email:    "refresher@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	rotated, err := authService.RefreshTokens(ctx, registered.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, rotated.User.ID)
	assert.NotEqual(t, registered.RefreshToken, rotated.RefreshToken)

	// The old refresh token was consumed by rotation.
	_, err = authService.RefreshTokens(ctx, registered.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)

	sessionID, _, _ := strings.Cut(rotated.RefreshToken, ".")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", "abc"},
		{"bad session id", "not-a-uuid.secret"},
		{"unknown session", uuid.New().String() + ".secret"},
		{"wrong secret", sessionID + ".wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authService.RefreshTokens(ctx, tt.token)
			assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)
			assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		})
	}

	// A wrong secret must not burn the session.
	_, err = authService.RefreshTokens(ctx, rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthService_RefreshTokensExpired(t *testing.T) {
	env := newServiceEnv(t)
	authService := newAuthService(t, env, nil)
	ctx := context.Background()

	result, err := authService.Register(ctx, service.RegisterInput{
		Username: "expiring",
		Email:    "expiring@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&domain.UserSession{}).
		Where("user_id = ?", result.User.ID).
		Update("expires_at", time.Now().Add(-time.Minute).UTC()).Error)

	_, err = authService.RefreshTokens(ctx, result.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)
}

func TestAuthService_Logout(t *testing.T) {
	env := newServiceEnv(t)
	authService := newAuthService(t, env, nil)
	ctx := context.Background()

	input := service.RegisterInput{Username: "leaver", Email: "leaver@example.com", Password: "password123"}
	first, err := authService.Register(ctx, input)
	require.NoError(t, err)
	second, err := authService.Login(ctx, service.LoginInput{Email: input.Email, Password: input.Password})
	require.NoError(t, err)

	require.NoError(t, authService.Logout(ctx, first.User.ID))

	for _, token := range []string{first.RefreshToken, second.RefreshToken} {
		_, err := authService.RefreshTokens(ctx, token)
		assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)
	}
}

func TestAuthService_ExchangeIDToken(t *testing.T) {
	env := newServiceEnv(t)
	verifier := testutil.NewFakeVerifier()
	authService := newAuthService(t, env, verifier)
	ctx := context.Background()

	local, _ := testutil.NewUserBuilder().
		WithUsername("local_artist").
		WithEmail("artist@example.com").
		Build(t, env.db)

	verifier.AddToken("new-user-token", &identity.Identity{
		Subject:       "sub-new",
		Issuer:        "https://securetoken.google.com/heritage",
		Email:         "Priya.Sharma@example.com",
		EmailVerified: true,
		Name:          "Priya Sharma",
		Picture:       "https://example.com/priya.png",
	})
	verifier.AddToken("link-token", &identity.Identity{
		Subject:       "sub-link",
		Email:         "artist@example.com",
		EmailVerified: true,
	})
	verifier.AddToken("unverified-token", &identity.Identity{
		Subject:       "sub-unverified",
		Email:         "unverified@example.com",
		EmailVerified: false,
	})

	t.Run("creates a user on first sight", func(t *testing.T) {
		result, err := authService.ExchangeIDToken(ctx, "new-user-token")
		require.NoError(t, err)
		assert.Equal(t, "priya_sharma", result.User.Username)
		assert.Equal(t, "priya.sharma@example.com", result.User.Email)
		assert.Equal(t, "Priya Sharma", result.User.DisplayName)
		assert.Equal(t, "https://example.com/priya.png", result.User.AvatarURL)
		assert.False(t, result.User.HasPassword())
		assert.NotEmpty(t, result.RefreshToken)

		again, err := authService.ExchangeIDToken(ctx, "new-user-token")
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, again.User.ID)
	})

	t.Run("links an existing account by verified email", func(t *testing.T) {
		result, err := authService.ExchangeIDToken(ctx, "link-token")
		require.NoError(t, err)
		assert.Equal(t, local.ID, result.User.ID)

		linked, err := env.repos.User.GetBySubject(ctx, "sub-link")
		require.NoError(t, err)
		assert.Equal(t, local.ID, linked.ID)
	})

	t.Run("creates a user with unverified email", func(t *testing.T) {
		result, err := authService.ExchangeIDToken(ctx, "unverified-token")
		require.NoError(t, err)
		assert.Equal(t, "unverified", result.User.Username)
		assert.Equal(t, "unverified", result.User.DisplayName)
	})

	t.Run("rejects unknown tokens", func(t *testing.T) {
		_, err := authService.ExchangeIDToken(ctx, "forged")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("without a verifier", func(t *testing.T) {
		bare := newAuthService(t, env, nil)
		_, err := bare.ExchangeIDToken(ctx, "new-user-token")
		assert.ErrorIs(t, err, service.ErrIdentityUnavailable)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	env := newServiceEnv(t)
	verifier := testutil.NewFakeVerifier()
	authService := newAuthService(t, env, verifier)
	ctx := context.Background()

	registered, err := authService.Register(ctx, service.RegisterInput{
		Username: "bearer",
		Email:    "bearer@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	federated, _ := testutil.NewUserBuilder().WithSubject("sub-federated").Build(t, env.db)
	verifier.AddToken("id-token", &identity.Identity{Subject: "sub-federated"})

	tests := []struct {
		name    string
		bearer  string
		want    uuid.UUID
		wantErr bool
	}{
		{"app access token", registered.AccessToken, registered.User.ID, false},
		{"third-party id token", "id-token", federated.ID, false},
		{"empty", "", uuid.Nil, true},
		{"garbage", "garbage", uuid.Nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := authService.Authenticate(ctx, tt.bearer)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnauthenticated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, userID)
		})
	}
}

func TestAuthService_GetUserByID(t *testing.T) {
	env := newServiceEnv(t)
	authService := newAuthService(t, env, nil)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, env.db)

	found, err := authService.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, found.Username)

	_, err = authService.GetUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
