package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dom/heritage-gallery/internal/api"
	"github.com/dom/heritage-gallery/internal/config"
	"github.com/dom/heritage-gallery/internal/identity"
	"github.com/dom/heritage-gallery/internal/objectstore"
	"github.com/dom/heritage-gallery/internal/platform/logger"
	"github.com/dom/heritage-gallery/internal/repository"
	repoPostgres "github.com/dom/heritage-gallery/internal/repository/postgres"
	"github.com/dom/heritage-gallery/internal/service"
	"github.com/dom/heritage-gallery/internal/websocket"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// TestDB wraps a migrated database used by a single test.
type TestDB struct {
	DB  *gorm.DB
	DSN string

	cleanup func()
}

// NewTestDB opens a private in-memory SQLite database with the full schema.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dsn := fmt.Sprintf("file:test_%s?mode=memory&cache=shared", strings.ReplaceAll(uuid.New().String(), "-", ""))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// A single connection keeps the shared in-memory database alive and serializes writes.
	sqlDB.SetMaxOpenConns(1)

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		DB:  db,
		DSN: dsn,
		cleanup: func() {
			sqlDB.Close()
		},
	}

	t.Cleanup(testDB.Cleanup)
	return testDB
}

// Cleanup releases the database.
func (tdb *TestDB) Cleanup() {
	if tdb.cleanup != nil {
		tdb.cleanup()
		tdb.cleanup = nil
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"game_sessions",
		"artworks",
		"user_sessions",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec("DELETE FROM " + table).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:                 "0",
		Environment:          "test",
		LogLevel:             "error",
		CORSOrigins:          []string{"*"},
		DatabaseDriver:       "sqlite",
		JWTSecret:            "test-jwt-secret-key-for-testing-only",
		JWTExpirationHours:   1,
		RefreshTokenTTL:      time.Hour,
		StorageBackend:       "memory",
		StoragePublicBaseURL: "https://cdn.test/bucket",
		StorageTimeout:       5 * time.Second,
		MaxUploadBytes:       10 * 1024 * 1024,
	}
}

// FakeVerifier accepts ID tokens registered with AddToken.
type FakeVerifier struct {
	mu     sync.RWMutex
	tokens map[string]*identity.Identity
}

func NewFakeVerifier() *FakeVerifier {
	return &FakeVerifier{tokens: make(map[string]*identity.Identity)}
}

func (f *FakeVerifier) AddToken(token string, id *identity.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = id
}

func (f *FakeVerifier) Verify(ctx context.Context, rawIDToken string) (*identity.Identity, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	id, ok := f.tokens[rawIDToken]
	if !ok {
		return nil, identity.ErrInvalidToken
	}
	copied := *id
	return &copied, nil
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Hub      *websocket.Hub
	Store    *objectstore.MemoryStore
	Verifier *FakeVerifier
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()
	log := logger.NewNop()

	repos := repoPostgres.NewRepositories(testDB.DB)
	store := objectstore.NewMemoryStore(cfg.StoragePublicBaseURL)
	verifier := NewFakeVerifier()
	hub := websocket.NewHub(log)
	go hub.Run()

	services := service.NewServices(service.Dependencies{
		Repos:    repos,
		Store:    store,
		Verifier: verifier,
		Events:   hub,
		Config:   cfg,
		Logger:   log,
	})
	router := api.NewRouter(services, hub, cfg, log)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Hub:      hub,
		Store:    store,
		Verifier: verifier,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// WebSocketURL returns the WebSocket URL with token
func (ts *TestServer) WebSocketURL(token string) string {
	wsURL := "ws" + ts.Server.URL[4:] // Replace "http" with "ws"
	return fmt.Sprintf("%s/api/v1/ws?token=%s", wsURL, token)
}
