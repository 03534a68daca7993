package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/hotel-concierge/internal/domain"
	"github.com/tbourn/hotel-concierge/internal/llm"
	"github.com/tbourn/hotel-concierge/internal/repo"
)

// newServiceDB opens a migrated in-memory database seeded with the demo
// hotels.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := repo.SeedHotels(context.Background(), db, repo.DemoHotels()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

// dbRepo proxies the repo free functions.
type dbRepo struct{}

func (dbRepo) GetHotel(ctx context.Context, db *gorm.DB, id string) (*domain.Hotel, error) {
	return repo.GetHotel(ctx, db, id)
}
func (dbRepo) ListFaqs(ctx context.Context, db *gorm.DB, hotelID, lang string) ([]domain.Faq, error) {
	return repo.ListFaqs(ctx, db, hotelID, lang)
}
func (dbRepo) UpsertSession(ctx context.Context, db *gorm.DB, hotelID, sessionID string) error {
	return repo.UpsertSession(ctx, db, hotelID, sessionID)
}
func (dbRepo) CreateMessage(ctx context.Context, db *gorm.DB, hotelID, sessionID, role, text, lang, source string) (*domain.ChatMessage, error) {
	return repo.CreateMessage(ctx, db, hotelID, sessionID, role, text, lang, source)
}

// brokenLogRepo fails every conversation log write.
type brokenLogRepo struct{ dbRepo }

func (brokenLogRepo) UpsertSession(context.Context, *gorm.DB, string, string) error {
	return errors.New("disk full")
}
func (brokenLogRepo) CreateMessage(context.Context, *gorm.DB, string, string, string, string, string, string) (*domain.ChatMessage, error) {
	return nil, errors.New("disk full")
}

// fakeModel is a scripted Completer.
type fakeModel struct {
	mu      sync.Mutex
	enabled bool
	reply   string
	err     error
	prompts []llm.Prompt
}

func (m *fakeModel) Enabled() bool { return m.enabled }

func (m *fakeModel) Complete(_ context.Context, p llm.Prompt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, p)
	return m.reply, m.err
}

func (m *fakeModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// countingLimiter records calls and returns a fixed answer.
type countingLimiter struct {
	mu      sync.Mutex
	allowed bool
	err     error
	keys    []string
}

func (l *countingLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	return l.allowed, l.err
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Add(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func messagesOf(t *testing.T, db *gorm.DB, hotelID string) []domain.ChatMessage {
	t.Helper()
	msgs, err := repo.ListMessagesSince(context.Background(), db, hotelID, time.Time{})
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	return msgs
}
