package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"
	"time"

	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username    string
	email       string
	displayName string
	password    string
	subject     *string
	role        domain.MarketplaceRole
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username:    "user_" + suffix,
		email:       fmt.Sprintf("user_%s@example.com", suffix),
		displayName: "Test User " + suffix,
		password:    "testpassword123",
		role:        domain.MarketplaceRoleViewer,
	}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithDisplayName sets the display name
func (b *UserBuilder) WithDisplayName(name string) *UserBuilder {
	b.displayName = name
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithSubject links the user to a third-party identity
func (b *UserBuilder) WithSubject(subject string) *UserBuilder {
	b.subject = &subject
	return b
}

func (b *UserBuilder) WithRole(role domain.MarketplaceRole) *UserBuilder {
	b.role = role
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:              uuid.New(),
		Subject:         b.subject,
		Username:        b.username,
		Email:           b.email,
		PasswordHash:    string(hashedPassword),
		DisplayName:     b.displayName,
		MarketplaceRole: b.role,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID              string `json:"id"`
		Username        string `json:"username"`
		Email           string `json:"email"`
		DisplayName     string `json:"displayName"`
		MarketplaceRole string `json:"marketplaceRole"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate registers the user via the API and returns the user and access token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	reqBody := map[string]string{
		"username":    b.username,
		"email":       b.email,
		"password":    b.password,
		"displayName": b.displayName,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status code: %d: %s", resp.StatusCode, data)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, _ := uuid.Parse(authResp.User.ID)
	user := &domain.User{
		ID:          userID,
		Username:    authResp.User.Username,
		Email:       authResp.User.Email,
		DisplayName: authResp.User.DisplayName,
	}

	return user, authResp.AccessToken
}

// ArtworkBuilder creates artwork records directly in the database
type ArtworkBuilder struct {
	owner       *domain.User
	title       string
	description string
	tags        []string
	createdAt   time.Time
}

func NewArtworkBuilder() *ArtworkBuilder {
	return &ArtworkBuilder{
		title: "Untitled " + uuid.New().String()[:8],
		tags:  []string{},
	}
}

func (b *ArtworkBuilder) WithOwner(user *domain.User) *ArtworkBuilder {
	b.owner = user
	return b
}

func (b *ArtworkBuilder) WithTitle(title string) *ArtworkBuilder {
	b.title = title
	return b
}

func (b *ArtworkBuilder) WithDescription(description string) *ArtworkBuilder {
	b.description = description
	return b
}

func (b *ArtworkBuilder) WithTags(tags ...string) *ArtworkBuilder {
	b.tags = tags
	return b
}

func (b *ArtworkBuilder) WithCreatedAt(t time.Time) *ArtworkBuilder {
	b.createdAt = t
	return b
}

// Build creates the artwork in the database
func (b *ArtworkBuilder) Build(t *testing.T, db *gorm.DB) *domain.Artwork {
	t.Helper()

	if b.owner == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.owner = user
	}

	id := uuid.New()
	key := fmt.Sprintf("artworks/%s/%s.png", b.owner.ID, id)
	artwork := &domain.Artwork{
		ID:          id,
		Title:       b.title,
		Description: b.description,
		ImageURL:    "https://cdn.test/bucket/" + key,
		StoragePath: key,
		ContentType: "image/png",
		SizeBytes:   int64(len(PNGBytes())),
		OwnerID:     b.owner.ID,
		OwnerEmail:  b.owner.Email,
		Tags:        datatypes.JSONSlice[string](b.tags),
		CreatedAt:   b.createdAt,
		UpdatedAt:   b.createdAt,
	}

	if err := db.Create(artwork).Error; err != nil {
		t.Fatalf("failed to create artwork: %v", err)
	}
	return artwork
}

// GameSessionBuilder creates game sessions directly in the database
type GameSessionBuilder struct {
	user      *domain.User
	contentID string
	score     int
	maxScore  int
	timeSpent int
	createdAt time.Time
}

func NewGameSessionBuilder() *GameSessionBuilder {
	return &GameSessionBuilder{
		contentID: "warli-quiz",
		score:     50,
		maxScore:  100,
		timeSpent: 60,
	}
}

func (b *GameSessionBuilder) WithUser(user *domain.User) *GameSessionBuilder {
	b.user = user
	return b
}

func (b *GameSessionBuilder) WithContentID(contentID string) *GameSessionBuilder {
	b.contentID = contentID
	return b
}

func (b *GameSessionBuilder) WithScore(score int) *GameSessionBuilder {
	b.score = score
	return b
}

func (b *GameSessionBuilder) WithCreatedAt(t time.Time) *GameSessionBuilder {
	b.createdAt = t
	return b
}

// Build creates the session in the database
func (b *GameSessionBuilder) Build(t *testing.T, db *gorm.DB) *domain.GameSession {
	t.Helper()

	if b.user == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.user = user
	}

	session := &domain.GameSession{
		ID:           uuid.New(),
		UserID:       b.user.ID,
		ContentID:    b.contentID,
		Score:        b.score,
		MaxScore:     b.maxScore,
		TimeSpent:    b.timeSpent,
		IsCompleted:  true,
		Achievements: datatypes.JSONSlice[string]{},
		CreatedAt:    b.createdAt,
	}

	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to create game session: %v", err)
	}
	return session
}

// PNGBytes returns a tiny but well-formed PNG image.
func PNGBytes() []byte {
	return []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
		0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
		0x89, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
		0x42, 0x60, 0x82,
	}
}

// UploadFile describes the file part of a multipart upload.
type UploadFile struct {
	FieldName   string
	FileName    string
	ContentType string
	Data        []byte
}

// CreateUploadRequest builds a multipart request with the given form fields and optional file.
func CreateUploadRequest(t *testing.T, url string, fields map[string]string, file *UploadFile, token string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}

	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.FieldName, file.FileName))
		header.Set("Content-Type", file.ContentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			t.Fatalf("failed to write file part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, body)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
