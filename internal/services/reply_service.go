// Package services – ReplyService
//
// ReplyService answers one guest message for one hotel. The pipeline runs in
// a fixed order and stops at the first stage that produces a reply:
//
//  1. authenticate (hotel id, hotel key)
//  2. validate the message (non-empty, bounded length)
//  3. per-session fixed-window rate limit
//  4. load the hotel profile and derive the effective language
//  5. static FAQ rules               → source "faq"
//  6. hotel FAQ table                 → source "faq_db"
//  7. placeholder echo without a key  → source "dummy"
//  8. daily quota, then the model     → source "openai" (or "limit")
//
// Every reply from steps 5-8 is logged as an assistant message carrying its
// source. Conversation log writes never abort the reply.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/hotel-concierge/internal/domain"
	"github.com/tbourn/hotel-concierge/internal/faq"
	"github.com/tbourn/hotel-concierge/internal/limits"
	"github.com/tbourn/hotel-concierge/internal/llm"
	"github.com/tbourn/hotel-concierge/internal/observability"
	"github.com/tbourn/hotel-concierge/internal/tenant"
)

// NoSession is the session id used when the widget sends none.
const NoSession = "no-session"

// ReplyRepo is the persistence contract of the reply pipeline.
type ReplyRepo interface {
	// GetHotel returns the hotel profile or gorm.ErrRecordNotFound.
	GetHotel(ctx context.Context, db *gorm.DB, id string) (*domain.Hotel, error)
	// ListFaqs returns the hotel's FAQ entries for lang in stored order.
	ListFaqs(ctx context.Context, db *gorm.DB, hotelID, lang string) ([]domain.Faq, error)
	// UpsertSession records that sessionID talked to hotelID.
	UpsertSession(ctx context.Context, db *gorm.DB, hotelID, sessionID string) error
	// CreateMessage appends one message to the conversation log.
	CreateMessage(ctx context.Context, db *gorm.DB, hotelID, sessionID, role, text, lang, source string) (*domain.ChatMessage, error)
}

// RateLimiter admits or rejects one request for key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// UsageCounter tracks model calls per hotel per UTC day.
type UsageCounter interface {
	Reserve(ctx context.Context, hotelID string, dailyCap int) (limits.Ticket, bool, error)
	Release(ctx context.Context, t limits.Ticket) error
	Used(ctx context.Context, hotelID string) (int, error)
}

// Completer is the language model.
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, p llm.Prompt) (string, error)
}

// ReplyRequest is one inbound guest message.
type ReplyRequest struct {
	HotelID   string
	HotelKey  string
	SessionID string
	Message   string
}

// Reply is the outcome of the pipeline. On ErrQuotaExceeded the Reply still
// carries the limit text and source.
type Reply struct {
	HotelID   string
	SessionID string
	Text      string
	Source    string
	Lang      string
}

// ReplyService runs the reply pipeline. All fields except Model may be
// shared with other services; it is safe for concurrent use when its
// collaborators are.
type ReplyService struct {
	// DB is the GORM handle passed to Repo.
	DB *gorm.DB
	// Repo reads hotels and FAQ entries and writes the conversation log.
	Repo ReplyRepo

	Auth    *Authenticator
	Rules   *faq.RuleSet
	Plans   tenant.Plans
	Limiter RateLimiter
	// Usage is required once Model is enabled; without it model calls fail
	// closed.
	Usage UsageCounter
	// Model may be nil or disabled, which selects the placeholder reply.
	Model Completer

	// MaxMessageRunes bounds the trimmed message length; <=0 disables it.
	MaxMessageRunes int
}

// Reply answers req. Errors are the sentinels in errors.go, possibly
// wrapped; anything else is an internal failure.
func (s *ReplyService) Reply(ctx context.Context, req ReplyRequest) (Reply, error) {
	tr := otel.Tracer("services/ReplyService")
	ctx, span := tr.Start(ctx, "Reply",
		trace.WithAttributes(attribute.String("hotel.id", strings.TrimSpace(req.HotelID))),
	)
	defer span.End()

	out, err := s.reply(ctx, req)
	span.SetAttributes(attribute.String("reply.source", out.Source))
	if err != nil && !isExpected(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reply failed")
	}
	return out, err
}

func (s *ReplyService) reply(ctx context.Context, req ReplyRequest) (Reply, error) {
	hotelID, err := s.Auth.Authenticate(req.HotelID, req.HotelKey)
	if err != nil {
		observability.ObserveRejection(observability.RejectAuth)
		return Reply{Text: ReplyUnauthorized, Source: domain.SourceAuth}, err
	}

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		observability.ObserveRejection(observability.RejectValidation)
		return Reply{HotelID: hotelID}, ErrEmptyMessage
	}
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(msg) > s.MaxMessageRunes {
		observability.ObserveRejection(observability.RejectValidation)
		return Reply{HotelID: hotelID}, ErrMessageTooLong
	}

	sid := strings.TrimSpace(req.SessionID)
	if sid == "" {
		sid = NoSession
	}
	out := Reply{HotelID: hotelID, SessionID: sid}
	lg := zerolog.Ctx(ctx).With().Str("hotel_id", hotelID).Str("session_id", sid).Logger()

	if s.Limiter != nil {
		allowed, err := s.Limiter.Allow(ctx, hotelID+":"+sid)
		if err != nil {
			// Counter store down: admit the request.
			lg.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			observability.ObserveRejection(observability.RejectRate)
			return out, ErrRateLimited
		}
	}

	hotel, err := s.Repo.GetHotel(ctx, s.DB, hotelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.ObserveRejection(observability.RejectNotFound)
			out.Text, out.Source = ReplyHotelNotFound, domain.SourceHotel
			return out, ErrHotelNotFound
		}
		return out, fmt.Errorf("load hotel: %w", err)
	}

	plan := s.Plans.For(hotel.Plan)
	out.Lang = EffectiveLang(msg, plan)

	if err := s.Repo.UpsertSession(ctx, s.DB, hotelID, sid); err != nil {
		lg.Warn().Err(err).Msg("upsert session failed")
	}
	s.log(ctx, &lg, out, domain.RoleUser, msg, domain.SourceUser)

	if s.Rules != nil {
		if rule, ok := s.Rules.Match(msg); ok {
			return s.answer(ctx, &lg, out, rule.Answer, domain.SourceFAQ), nil
		}
	}

	rows, err := s.Repo.ListFaqs(ctx, s.DB, hotelID, out.Lang)
	if err != nil {
		return out, fmt.Errorf("load faqs: %w", err)
	}
	if e, ok := faq.MatchEntry(msg, toEntries(rows)); ok {
		return s.answer(ctx, &lg, out, e.Answer, domain.SourceFAQDB), nil
	}

	if s.Model == nil || !s.Model.Enabled() {
		return s.answer(ctx, &lg, out, dummyReply(hotelID, msg), domain.SourceDummy), nil
	}

	return s.complete(ctx, &lg, out, hotel, plan, msg)
}

// complete runs the quota gate and the model call.
func (s *ReplyService) complete(ctx context.Context, lg *zerolog.Logger, out Reply, hotel *domain.Hotel, plan tenant.Plan, msg string) (Reply, error) {
	if s.Usage == nil {
		return out, errNoUsageCounter
	}
	ticket, ok, err := s.Usage.Reserve(ctx, out.HotelID, plan.DailyCap)
	if err != nil {
		return out, fmt.Errorf("reserve model call: %w", err)
	}
	if !ok {
		observability.ObserveRejection(observability.RejectQuota)
		lg.Info().Str("plan", plan.Name).Int("daily_cap", plan.DailyCap).Msg("daily AI limit reached")
		return s.answer(ctx, lg, out, ReplyLimit, domain.SourceLimit), ErrQuotaExceeded
	}

	start := time.Now()
	text, err := s.Model.Complete(ctx, buildPrompt(hotel, out.SessionID, msg))
	if err != nil {
		observability.ObserveModelCall(observability.OutcomeError, time.Since(start))
		if rerr := s.Usage.Release(ctx, ticket); rerr != nil {
			lg.Warn().Err(rerr).Msg("release model call failed")
		}
		return out, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	outcome := observability.OutcomeOK
	if strings.TrimSpace(text) == "" {
		outcome = observability.OutcomeEmpty
		text = ReplyEmptyModel
	}
	observability.ObserveModelCall(outcome, time.Since(start))
	return s.answer(ctx, lg, out, text, domain.SourceOpenAI), nil
}

// UsedToday returns how many model calls hotelID has made today.
func (s *ReplyService) UsedToday(ctx context.Context, hotelID string) (int, error) {
	if s.Usage == nil {
		return 0, nil
	}
	return s.Usage.Used(ctx, hotelID)
}

// ModelEnabled reports whether a model credential is configured.
func (s *ReplyService) ModelEnabled() bool {
	return s.Model != nil && s.Model.Enabled()
}

// answer logs the assistant reply and fills in the result.
func (s *ReplyService) answer(ctx context.Context, lg *zerolog.Logger, out Reply, text, source string) Reply {
	out.Text, out.Source = text, source
	s.log(ctx, lg, out, domain.RoleAssistant, text, source)
	observability.ObserveReply(source)
	return out
}

func (s *ReplyService) log(ctx context.Context, lg *zerolog.Logger, r Reply, role, text, source string) {
	if _, err := s.Repo.CreateMessage(ctx, s.DB, r.HotelID, r.SessionID, role, text, r.Lang, source); err != nil {
		lg.Warn().Err(err).Str("role", role).Str("source", source).Msg("log message failed")
	}
}

func toEntries(rows []domain.Faq) []faq.Entry {
	out := make([]faq.Entry, len(rows))
	for i, r := range rows {
		out[i] = faq.Entry{Question: r.Question, Answer: r.Answer}
	}
	return out
}

// isExpected reports whether err is a handled rejection rather than a fault.
func isExpected(err error) bool {
	for _, e := range []error{
		ErrMissingCredentials, ErrUnauthorized, ErrEmptyMessage, ErrMessageTooLong,
		ErrRateLimited, ErrQuotaExceeded, ErrHotelNotFound,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
