package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dom/heritage-gallery/internal/config"
	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/dom/heritage-gallery/internal/identity"
	"github.com/dom/heritage-gallery/internal/platform/logger"
	"github.com/dom/heritage-gallery/internal/repository"
	"github.com/dom/heritage-gallery/internal/validation"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidRefreshToken = domain.NewError(domain.ErrUnauthenticated, "Invalid or expired refresh token")
	ErrInvalidAccessToken  = domain.NewError(domain.ErrUnauthenticated, "Invalid or expired token")
	ErrIdentityUnavailable = domain.NewError(domain.ErrUnauthenticated, "Identity provider is not configured")
)

var usernameUnsafe = regexp.MustCompile(`[^a-z0-9_]+`)

type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	verifier    identity.Verifier
	cfg         *config.Config
	log         *logger.Logger
}

// NewAuthService wires local and third-party sign-in. verifier may be nil.
func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, verifier identity.Verifier, cfg *config.Config, log *logger.Logger) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		verifier:    verifier,
		cfg:         cfg,
		log:         log.With("service", "AuthService"),
	}
}

type RegisterInput struct {
	Username    string `json:"username" validate:"required,min=3,max=30,username"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"displayName" validate:"omitempty,max=50"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Username = strings.TrimSpace(input.Username)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if existing, err := s.userRepo.GetByUsername(ctx, input.Username); err == nil && existing != nil {
		return nil, domain.ErrUsernameTaken
	}
	if existing, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = input.Username
	}

	user := &domain.User{
		ID:              uuid.New(),
		Username:        input.Username,
		Email:           input.Email,
		PasswordHash:    string(hashedPassword),
		DisplayName:     displayName,
		MarketplaceRole: domain.MarketplaceRoleViewer,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateRegistration(ctx, user)
		}
		return nil, err
	}

	s.log.Info("user registered", "user_id", user.ID)
	return s.generateTokens(ctx, user)
}

// duplicateRegistration resolves a unique-key violation from a concurrent
// registration into the matching conflict error.
func (s *AuthService) duplicateRegistration(ctx context.Context, user *domain.User) error {
	if _, err := s.userRepo.GetByUsername(ctx, user.Username); err == nil {
		return domain.ErrUsernameTaken
	}
	return domain.ErrEmailTaken
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.HasPassword() {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.generateTokens(ctx, user)
}

// ExchangeIDToken verifies a third-party ID token and signs the mapped user in.
func (s *AuthService) ExchangeIDToken(ctx context.Context, rawIDToken string) (*AuthResult, error) {
	user, err := s.userFromIDToken(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}
	return s.generateTokens(ctx, user)
}

// Authenticate resolves a bearer token to a user id. App access tokens are
// tried first, then third-party ID tokens when a verifier is configured.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (uuid.UUID, error) {
	if bearer == "" {
		return uuid.Nil, ErrInvalidAccessToken
	}

	if claims, err := s.ValidateToken(bearer); err == nil {
		return userIDFromClaims(claims)
	}

	if s.verifier == nil {
		return uuid.Nil, ErrInvalidAccessToken
	}
	user, err := s.userFromIDToken(ctx, bearer)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

func (s *AuthService) userFromIDToken(ctx context.Context, rawIDToken string) (*domain.User, error) {
	if s.verifier == nil {
		return nil, ErrIdentityUnavailable
	}

	id, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	user, err := s.userRepo.GetBySubject(ctx, id.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(id.Email))

	// First sight of this subject: link an existing local account by verified email.
	if email != "" && id.EmailVerified {
		existing, err := s.userRepo.GetByEmail(ctx, email)
		if err == nil && existing.Subject == nil {
			subject := id.Subject
			existing.Subject = &subject
			if existing.AvatarURL == "" {
				existing.AvatarURL = id.Picture
			}
			if err := s.userRepo.Update(ctx, existing); err != nil {
				return nil, err
			}
			s.log.Info("linked identity to existing user", "user_id", existing.ID, "issuer", id.Issuer)
			return existing, nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	subject := id.Subject
	user = &domain.User{
		ID:              uuid.New(),
		Subject:         &subject,
		Username:        s.deriveUsername(ctx, email, id.Subject),
		Email:           email,
		DisplayName:     id.Name,
		AvatarURL:       id.Picture,
		MarketplaceRole: domain.MarketplaceRoleViewer,
	}
	if user.Email == "" {
		user.Email = id.Subject + "@users.noreply.invalid"
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("created user from identity", "user_id", user.ID, "issuer", id.Issuer)
	return user, nil
}

// deriveUsername builds a unique username from the email local part.
func (s *AuthService) deriveUsername(ctx context.Context, email, subject string) string {
	base := strings.SplitN(email, "@", 2)[0]
	base = usernameUnsafe.ReplaceAllString(strings.ToLower(base), "_")
	base = strings.Trim(base, "_")
	if len(base) < 3 {
		base = "user"
	}
	if len(base) > 20 {
		base = base[:20]
	}

	if _, err := s.userRepo.GetByUsername(ctx, base); errors.Is(err, gorm.ErrRecordNotFound) {
		return base
	}
	suffix := strings.ToLower(usernameUnsafe.ReplaceAllString(subject, ""))
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	if suffix == "" {
		suffix = uuid.New().String()[:6]
	}
	return base + "_" + suffix
}

func (s *AuthService) generateTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, expiresAt, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	secret, err := randomSecret()
	if err != nil {
		return nil, err
	}
	hashedRefresh, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	session := &domain.UserSession{
		ID:               uuid.New(),
		UserID:           user.ID,
		RefreshTokenHash: string(hashedRefresh),
		ExpiresAt:        time.Now().Add(s.cfg.RefreshTokenTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: session.ID.String() + "." + secret,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *AuthService) generateAccessToken(user *domain.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTokenTTL())
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"name": user.DisplayName,
		"exp":  expiresAt.Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	return signed, expiresAt, err
}

func (s *AuthService) ValidateToken(tokenString string) (*jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return &claims, nil
	}

	return nil, errors.New("invalid token")
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// RefreshTokens rotates a refresh token of the form <sessionId>.<secret>.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*AuthResult, error) {
	idPart, secret, ok := strings.Cut(refreshToken, ".")
	if !ok || secret == "" {
		return nil, ErrInvalidRefreshToken
	}
	sessionID, err := uuid.Parse(idPart)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if session.Expired(time.Now()) {
		_ = s.sessionRepo.Delete(ctx, session.ID)
		return nil, ErrInvalidRefreshToken
	}
	if err := bcrypt.CompareHashAndPassword([]byte(session.RefreshTokenHash), []byte(secret)); err != nil {
		return nil, ErrInvalidRefreshToken
	}

	if err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	return s.generateTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.sessionRepo.DeleteByUserID(ctx, userID)
}

func userIDFromClaims(claims *jwt.MapClaims) (uuid.UUID, error) {
	sub, ok := (*claims)["sub"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidAccessToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalidAccessToken
	}
	return userID, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
