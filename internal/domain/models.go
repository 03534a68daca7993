// Package domain defines the persistence models for hotels, their FAQ
// entries, chat sessions, logged messages and widget conversion events.
// These types are mapped with GORM and form the data layer read by the
// reply pipeline and the analytics endpoints.
package domain

import (
	"strings"
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Reply sources. Every logged assistant message carries one of these; the
// analytics aggregation groups by them.
const (
	SourceFAQ    = "faq"
	SourceFAQDB  = "faq_db"
	SourceOpenAI = "openai"
	SourceDummy  = "dummy"
	SourceLimit  = "limit"
	SourceAuth   = "auth"
	SourceHotel  = "hotel"
	SourceUser   = "user"
)

// Widget event types accepted by the event tracker.
const (
	EventBookingClick = "booking_click"
	EventLeadCreated  = "lead_created"
	EventWidgetOpen   = "widget_open"
	EventWidgetClose  = "widget_close"
)

// ValidEventType reports whether t is one of the tracked widget events.
func ValidEventType(t string) bool {
	switch t {
	case EventBookingClick, EventLeadCreated, EventWidgetOpen, EventWidgetClose:
		return true
	}
	return false
}

// Hotel is a tenant profile.
//
// Fields:
//   - ID: tenant identifier (the widget's hotel_id).
//   - Plan: "basic" or "pro"; unknown values are treated as basic.
//   - Languages: comma-separated language codes shown on the dashboard.
//   - WelcomeMessage: greeting fed to the model as context.
type Hotel struct {
	ID             string    `json:"id"              gorm:"type:varchar(64);primaryKey"`
	Name           string    `json:"name"            gorm:"type:varchar(255);not null"`
	Plan           string    `json:"plan"            gorm:"type:varchar(16);not null;default:'basic'"`
	Languages      string    `json:"languages"       gorm:"type:varchar(255);not null;default:'el,en'"`
	WelcomeMessage string    `json:"welcome_message" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for Hotel.
func (Hotel) TableName() string { return "hotels" }

// LanguageList splits Languages into trimmed, lowercased codes.
func (h Hotel) LanguageList() []string {
	var out []string
	for _, p := range strings.Split(h.Languages, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Faq is a tenant-authored question/answer pair for one language. Entries are
// matched in ascending ID order.
type Faq struct {
	ID        uint      `json:"id"       gorm:"primaryKey;autoIncrement"`
	HotelID   string    `json:"hotel_id" gorm:"type:varchar(64);not null;index:idx_faq_hotel_lang,priority:1"`
	Lang      string    `json:"lang"     gorm:"type:varchar(8);not null;index:idx_faq_hotel_lang,priority:2"`
	Question  string    `json:"question" gorm:"type:text;not null"`
	Answer    string    `json:"answer"   gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Faq.
func (Faq) TableName() string { return "faqs" }

// ChatSession records that a widget session talked to a hotel. It is upserted
// on every chat request.
type ChatSession struct {
	SessionID string    `json:"session_id" gorm:"type:varchar(128);primaryKey"`
	HotelID   string    `json:"hotel_id"   gorm:"type:varchar(64);not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for ChatSession.
func (ChatSession) TableName() string { return "chat_sessions" }

// ChatMessage is one logged utterance. User messages carry source "user";
// assistant messages carry the pipeline stage that produced them.
type ChatMessage struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	HotelID   string    `json:"hotel_id"   gorm:"type:varchar(64);not null;index:idx_msg_hotel_time,priority:1"`
	SessionID string    `json:"session_id" gorm:"type:varchar(128);not null;index"`
	Role      string    `json:"role"       gorm:"type:varchar(16);not null;check:role IN ('user','assistant')"`
	Message   string    `json:"message"    gorm:"type:text;not null"`
	Lang      string    `json:"lang"       gorm:"type:varchar(8)"`
	Source    string    `json:"source"     gorm:"type:varchar(16);index"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_msg_hotel_time,priority:2"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }

// ChatEvent is a widget conversion event such as a booking click.
// Meta holds the raw JSON object sent by the widget, if any.
type ChatEvent struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	HotelID   string    `json:"hotel_id"   gorm:"type:varchar(64);not null;index:idx_event_hotel_time,priority:1"`
	SessionID string    `json:"session_id" gorm:"type:varchar(128);not null"`
	EventType string    `json:"event_type" gorm:"type:varchar(32);not null;index"`
	Meta      string    `json:"meta"       gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_event_hotel_time,priority:2"`
}

// TableName returns the database table name for ChatEvent.
func (ChatEvent) TableName() string { return "chat_events" }
