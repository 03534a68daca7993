package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/hotel-concierge/internal/domain"
)

func TestUpsertSession_InsertThenReassign(t *testing.T) {
	db := newRepoDB(t, true)
	ctx := context.Background()

	if err := UpsertSession(ctx, db, "h1", "s1"); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}
	if err := UpsertSession(ctx, db, "h1", "s1"); err != nil {
		t.Fatalf("UpsertSession (repeat): %v", err)
	}
	if err := UpsertSession(ctx, db, "h2", "s1"); err != nil {
		t.Fatalf("UpsertSession (reassign): %v", err)
	}

	var rows []domain.ChatSession
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("find sessions: %v", err)
	}
	if len(rows) != 1 || rows[0].HotelID != "h2" {
		t.Fatalf("expected one session reassigned to h2, got %+v", rows)
	}
}

func TestCreateMessage_DefaultsLang_AndValidatesRole(t *testing.T) {
	db := newRepoDB(t, true)
	ctx := context.Background()

	m, err := CreateMessage(ctx, db, "h1", "s1", domain.RoleUser, "γεια", "", domain.SourceUser)
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if m.ID == "" || m.Lang != DefaultLang || m.CreatedAt.Location() != time.UTC {
		t.Fatalf("unexpected message: %+v", m)
	}

	if _, err := CreateMessage(ctx, db, "h1", "s1", "system", "x", "en", ""); err == nil {
		t.Fatalf("expected role check violation")
	}
}

func TestCreateMessage_NoTable(t *testing.T) {
	if m, err := CreateMessage(context.Background(), newRepoDB(t, false), "h1", "s1", "user", "x", "en", "user"); err == nil || m != nil {
		t.Fatalf("expected error without table, got m=%v err=%v", m, err)
	}
}

func TestListMessagesSince_WindowAndOrder(t *testing.T) {
	db := newRepoDB(t, true)
	ctx := context.Background()
	now := time.Now().UTC()

	old := &domain.ChatMessage{ID: "old", HotelID: "h1", SessionID: "s1", Role: "user", Message: "old", Lang: "en", Source: "user", CreatedAt: now.Add(-48 * time.Hour)}
	a := &domain.ChatMessage{ID: "a", HotelID: "h1", SessionID: "s1", Role: "user", Message: "a", Lang: "en", Source: "user", CreatedAt: now.Add(-2 * time.Minute)}
	b := &domain.ChatMessage{ID: "b", HotelID: "h1", SessionID: "s1", Role: "assistant", Message: "b", Lang: "en", Source: "faq", CreatedAt: now.Add(-1 * time.Minute)}
	other := &domain.ChatMessage{ID: "x", HotelID: "h2", SessionID: "s9", Role: "user", Message: "x", Lang: "en", Source: "user", CreatedAt: now}
	for _, m := range []*domain.ChatMessage{b, old, other, a} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("seed %s: %v", m.ID, err)
		}
	}

	got, err := ListMessagesSince(ctx, db, "h1", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("ListMessagesSince: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected window/order: %+v", got)
	}
}
