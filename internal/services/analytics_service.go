// Package services – AnalyticsService
//
// AnalyticsService backs the read-only dashboard endpoints. Plain counts run
// as SQL aggregates in the repo layer; anything bucketed by time (per day,
// per hour, per session) is computed here from the message rows so the same
// code runs on SQLite and Postgres. All buckets are in UTC.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/hotel-concierge/internal/domain"
	"github.com/tbourn/hotel-concierge/internal/faq"
	"github.com/tbourn/hotel-concierge/internal/repo"
	"github.com/tbourn/hotel-concierge/internal/tenant"
	"github.com/tbourn/hotel-concierge/internal/utils"
)

// Query bounds.
const (
	DefaultDays    = 7
	MaxDays        = 90
	DefaultMinutes = 30
	MaxMinutes     = 24 * 60
	DefaultLive    = 40
	MaxLive        = 200

	topPeakHours      = 6
	topQuestions      = 8
	topicRunes        = 70
	minQuestionLength = 8
)

// DayBySource counts assistant replies of one UTC day by source.
type DayBySource struct {
	Day     string `json:"day" example:"2025-01-31"`
	FAQ     int64  `json:"faq"`
	FAQDB   int64  `json:"faq_db"`
	OpenAI  int64  `json:"openai"`
	Limit   int64  `json:"limit"`
	Dummy   int64  `json:"dummy"`
	Unknown int64  `json:"unknown"`
}

// DateCount is a per-day counter.
type DateCount struct {
	Date  string `json:"date" example:"2025-01-31"`
	Count int64  `json:"count"`
}

// HourCount is a per-hour-of-day counter (0-23, UTC).
type HourCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// LangCount is a per-language counter.
type LangCount struct {
	Lang  string `json:"lang"`
	Count int64  `json:"count"`
}

// TopicCount counts repeated guest questions.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int64  `json:"count"`
}

// Analytics is the per-hotel usage report.
type Analytics struct {
	HotelID        string           `json:"hotel_id"`
	Days           int              `json:"days"`
	TotalMessages  int64            `json:"total_messages"`
	UniqueSessions int64            `json:"unique_sessions"`
	TotalsBySource map[string]int64 `json:"totals_by_source"`
	ByDay          []DayBySource    `json:"by_day"`
	ChatsPerDay    []DateCount      `json:"chats_per_day"`
	PeakHours      []HourCount      `json:"peak_hours"`
}

// Summary is the plan-aware report with a human-readable sentence.
type Summary struct {
	HotelID          string           `json:"hotel_id"`
	Days             int              `json:"days"`
	Plan             string           `json:"plan"`
	AIDailyCap       int              `json:"ai_daily_cap"`
	AIUsedToday      int              `json:"ai_used_today"`
	FreeTotal        int64            `json:"free_total"`
	PaidTotal        int64            `json:"paid_total"`
	TotalMessages    int64            `json:"total_messages"`
	UniqueSessions   int64            `json:"unique_sessions"`
	AssistantSources map[string]int64 `json:"assistant_sources"`
	Summary          string           `json:"summary"`
}

// KPIs are the headline dashboard numbers.
type KPIs struct {
	TotalMessages  int64 `json:"total_messages"`
	UniqueSessions int64 `json:"unique_sessions"`
	BookingClicks  int64 `json:"booking_clicks"`
	LeadsCreated   int64 `json:"leads_created"`
}

// Conversion rates are events per unique session, 0 without sessions.
type Conversion struct {
	BookingRate float64 `json:"booking_rate"`
	LeadRate    float64 `json:"lead_rate"`
}

// Overview is the dashboard landing report.
type Overview struct {
	HotelID       string           `json:"hotel_id"`
	Days          int              `json:"days"`
	KPIs          KPIs             `json:"kpis"`
	LanguagesUsed []LangCount      `json:"languages_used"`
	PeakHours     []HourCount      `json:"peak_hours"`
	TopQuestions  []TopicCount     `json:"top_questions"`
	EventsByType  map[string]int64 `json:"events_by_type"`
	Conversion    Conversion       `json:"conversion"`
}

// LiveConversation summarizes one recently active session.
type LiveConversation struct {
	SessionID     string    `json:"session_id"`
	LastMessageAt time.Time `json:"last_message_at"`
	LastRole      string    `json:"last_role"`
	LastMessage   string    `json:"last_message"`
	MessageCount  int       `json:"message_count"`
}

// LiveConversations lists sessions active in the last Minutes minutes.
type LiveConversations struct {
	HotelID       string             `json:"hotel_id"`
	Minutes       int                `json:"minutes"`
	Conversations []LiveConversation `json:"conversations"`
}

// UsageReader reports today's model calls for a hotel.
type UsageReader interface {
	Used(ctx context.Context, hotelID string) (int, error)
}

// AnalyticsService computes dashboard reports for one hotel at a time.
type AnalyticsService struct {
	DB    *gorm.DB
	Plans tenant.Plans
	// Usage is optional; without it ai_used_today is 0.
	Usage UsageReader
	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *AnalyticsService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AnalyticsService) since(days int) time.Time {
	return s.now().Add(-time.Duration(days) * 24 * time.Hour)
}

func startSpan(ctx context.Context, op, hotelID string) (context.Context, trace.Span) {
	return otel.Tracer("services/AnalyticsService").Start(ctx, op,
		trace.WithAttributes(attribute.String("hotel.id", hotelID)),
	)
}

// Analytics returns totals, per-day source counts, guest messages per day and
// guest messages per hour. days is clamped to [1, MaxDays].
func (s *AnalyticsService) Analytics(ctx context.Context, hotelID string, days int) (*Analytics, error) {
	ctx, span := startSpan(ctx, "Analytics", hotelID)
	defer span.End()

	days = utils.Clamp(days, 1, MaxDays)
	since := s.since(days)
	out := &Analytics{HotelID: hotelID, Days: days}

	var err error
	if out.TotalMessages, err = repo.CountMessagesSince(ctx, s.DB, hotelID, since); err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	if out.UniqueSessions, err = repo.CountSessionsSince(ctx, s.DB, hotelID, since); err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	if out.TotalsBySource, err = repo.CountAssistantBySource(ctx, s.DB, hotelID, since); err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	msgs, err := repo.ListMessagesSince(ctx, s.DB, hotelID, since)
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}

	out.ByDay = repliesByDay(msgs)
	out.ChatsPerDay = guestMessagesPerDay(msgs)
	out.PeakHours = guestMessagesPerHour(msgs)
	return out, nil
}

// Summary returns the plan-aware report. It needs the hotel profile and
// returns ErrHotelNotFound without one.
func (s *AnalyticsService) Summary(ctx context.Context, hotelID string, days int) (*Summary, error) {
	ctx, span := startSpan(ctx, "Summary", hotelID)
	defer span.End()

	days = utils.Clamp(days, 1, MaxDays)
	since := s.since(days)

	hotel, err := repo.GetHotel(ctx, s.DB, hotelID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrHotelNotFound
		}
		return nil, fmt.Errorf("summary: %w", err)
	}

	total, err := repo.CountMessagesSince(ctx, s.DB, hotelID, since)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	sessions, err := repo.CountSessionsSince(ctx, s.DB, hotelID, since)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	sources, err := repo.CountAssistantBySource(ctx, s.DB, hotelID, since)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}

	plan := s.Plans.For(hotel.Plan)
	used := 0
	if s.Usage != nil {
		if used, err = s.Usage.Used(ctx, hotelID); err != nil {
			return nil, fmt.Errorf("summary: %w", err)
		}
	}

	out := &Summary{
		HotelID:          hotelID,
		Days:             days,
		Plan:             plan.Name,
		AIDailyCap:       plan.DailyCap,
		AIUsedToday:      used,
		FreeTotal:        sources[domain.SourceFAQ] + sources[domain.SourceFAQDB],
		PaidTotal:        sources[domain.SourceOpenAI],
		TotalMessages:    total,
		UniqueSessions:   sessions,
		AssistantSources: sources,
	}
	out.Summary = summarySentence(hotel.Name, out, sources[domain.SourceLimit], sources[repo.UnknownLabel])
	return out, nil
}

func summarySentence(name string, s *Summary, limitHits, unknown int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Αναφορά τελευταίων %d ημερών για %s (%s, plan: %s): ", s.Days, name, s.HotelID, strings.ToUpper(s.Plan))
	fmt.Fprintf(&b, "%d συνολικά μηνύματα, %d μοναδικά sessions.\n", s.TotalMessages, s.UniqueSessions)
	fmt.Fprintf(&b, "Απαντήσεις assistant: %d δωρεάν (FAQ), %d με AI. ", s.FreeTotal, s.PaidTotal)
	if limitHits > 0 {
		fmt.Fprintf(&b, "Το όριο AI χτυπήθηκε %d φορές.\n", limitHits)
	}
	if unknown > 0 {
		fmt.Fprintf(&b, "(%d παλαιότερες απαντήσεις χωρίς source.) ", unknown)
	}
	fmt.Fprintf(&b, "Ημερήσιο AI όριο plan: %d/ημέρα.", s.AIDailyCap)
	return b.String()
}

// Overview returns KPIs, languages, top peak hours, repeated questions,
// event counts and conversion rates.
func (s *AnalyticsService) Overview(ctx context.Context, hotelID string, days int) (*Overview, error) {
	ctx, span := startSpan(ctx, "Overview", hotelID)
	defer span.End()

	days = utils.Clamp(days, 1, MaxDays)
	since := s.since(days)
	out := &Overview{HotelID: hotelID, Days: days}

	var err error
	if out.KPIs.TotalMessages, err = repo.CountMessagesSince(ctx, s.DB, hotelID, since); err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	if out.KPIs.UniqueSessions, err = repo.CountSessionsSince(ctx, s.DB, hotelID, since); err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	langs, err := repo.CountByLang(ctx, s.DB, hotelID, since)
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	if out.EventsByType, err = repo.CountEventsByType(ctx, s.DB, hotelID, since); err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	msgs, err := repo.ListMessagesSince(ctx, s.DB, hotelID, since)
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}

	out.LanguagesUsed = make([]LangCount, 0, len(langs))
	for l, n := range langs {
		out.LanguagesUsed = append(out.LanguagesUsed, LangCount{Lang: l, Count: n})
	}
	sort.Slice(out.LanguagesUsed, func(i, j int) bool {
		a, b := out.LanguagesUsed[i], out.LanguagesUsed[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Lang < b.Lang
	})

	hours := guestMessagesPerHour(msgs)
	sort.Slice(hours, func(i, j int) bool {
		if hours[i].Count != hours[j].Count {
			return hours[i].Count > hours[j].Count
		}
		return hours[i].Hour < hours[j].Hour
	})
	if len(hours) > topPeakHours {
		hours = hours[:topPeakHours]
	}
	out.PeakHours = hours
	out.TopQuestions = repeatedQuestions(msgs, topQuestions)

	out.KPIs.BookingClicks = out.EventsByType[domain.EventBookingClick]
	out.KPIs.LeadsCreated = out.EventsByType[domain.EventLeadCreated]
	if n := out.KPIs.UniqueSessions; n > 0 {
		out.Conversion.BookingRate = float64(out.KPIs.BookingClicks) / float64(n)
		out.Conversion.LeadRate = float64(out.KPIs.LeadsCreated) / float64(n)
	}
	return out, nil
}

// Live lists sessions with messages in the last minutes, most recent first.
// minutes is clamped to [1, MaxMinutes] and limit to [1, MaxLive].
func (s *AnalyticsService) Live(ctx context.Context, hotelID string, minutes, limit int) (*LiveConversations, error) {
	ctx, span := startSpan(ctx, "Live", hotelID)
	defer span.End()

	minutes = utils.Clamp(minutes, 1, MaxMinutes)
	limit = utils.Clamp(limit, 1, MaxLive)

	msgs, err := repo.ListMessagesSince(ctx, s.DB, hotelID, s.now().Add(-time.Duration(minutes)*time.Minute))
	if err != nil {
		return nil, fmt.Errorf("live: %w", err)
	}

	bySession := make(map[string]*LiveConversation)
	for _, m := range msgs {
		c, ok := bySession[m.SessionID]
		if !ok {
			c = &LiveConversation{SessionID: m.SessionID}
			bySession[m.SessionID] = c
		}
		c.MessageCount++
		// Rows arrive oldest first, so the last one seen is the latest.
		c.LastMessageAt, c.LastRole, c.LastMessage = m.CreatedAt.UTC(), m.Role, m.Message
	}

	conv := make([]LiveConversation, 0, len(bySession))
	for _, c := range bySession {
		conv = append(conv, *c)
	}
	sort.Slice(conv, func(i, j int) bool {
		if !conv[i].LastMessageAt.Equal(conv[j].LastMessageAt) {
			return conv[i].LastMessageAt.After(conv[j].LastMessageAt)
		}
		return conv[i].SessionID < conv[j].SessionID
	})
	if len(conv) > limit {
		conv = conv[:limit]
	}
	return &LiveConversations{HotelID: hotelID, Minutes: minutes, Conversations: conv}, nil
}

func dayKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

// repliesByDay buckets assistant replies by UTC day and source. Sources
// outside the reported set count as unknown.
func repliesByDay(msgs []domain.ChatMessage) []DayBySource {
	idx := make(map[string]int)
	var out []DayBySource
	for _, m := range msgs {
		if m.Role != domain.RoleAssistant {
			continue
		}
		d := dayKey(m.CreatedAt)
		i, ok := idx[d]
		if !ok {
			i = len(out)
			idx[d] = i
			out = append(out, DayBySource{Day: d})
		}
		row := &out[i]
		switch m.Source {
		case domain.SourceFAQ:
			row.FAQ++
		case domain.SourceFAQDB:
			row.FAQDB++
		case domain.SourceOpenAI:
			row.OpenAI++
		case domain.SourceLimit:
			row.Limit++
		case domain.SourceDummy:
			row.Dummy++
		default:
			row.Unknown++
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	if out == nil {
		out = []DayBySource{}
	}
	return out
}

func guestMessagesPerDay(msgs []domain.ChatMessage) []DateCount {
	counts := make(map[string]int64)
	for _, m := range msgs {
		if m.Role == domain.RoleUser {
			counts[dayKey(m.CreatedAt)]++
		}
	}
	out := make([]DateCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, DateCount{Date: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// guestMessagesPerHour returns one entry per hour that has guest messages,
// ordered by hour.
func guestMessagesPerHour(msgs []domain.ChatMessage) []HourCount {
	var counts [24]int64
	for _, m := range msgs {
		if m.Role == domain.RoleUser {
			counts[m.CreatedAt.UTC().Hour()]++
		}
	}
	out := make([]HourCount, 0, 24)
	for h, n := range counts {
		if n > 0 {
			out = append(out, HourCount{Hour: h, Count: n})
		}
	}
	return out
}

// repeatedQuestions groups guest messages of at least minQuestionLength
// runes by their normalized first topicRunes runes.
func repeatedQuestions(msgs []domain.ChatMessage, n int) []TopicCount {
	counts := make(map[string]int64)
	for _, m := range msgs {
		if m.Role != domain.RoleUser || utf8.RuneCountInString(m.Message) < minQuestionLength {
			continue
		}
		topic := faq.Normalize(m.Message)
		if r := []rune(topic); len(r) > topicRunes {
			topic = string(r[:topicRunes])
		}
		counts[topic]++
	}
	out := make([]TopicCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, TopicCount{Topic: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
