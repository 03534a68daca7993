// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate queries behind the
// analytics and dashboard endpoints. Grouping is done on plain columns only
// so the same SQL runs on SQLite and Postgres; time bucketing happens in the
// service layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/hotel-concierge/internal/domain"
)

// UnknownLabel replaces empty group keys (messages logged without a source
// or language).
const UnknownLabel = "unknown"

type groupRow struct {
	Label string
	N     int64
}

// CountMessagesSince returns how many messages a hotel logged since the given
// instant (both roles).
func CountMessagesSince(ctx context.Context, db *gorm.DB, hotelID string, since time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Where("hotel_id = ? AND created_at >= ?", hotelID, since.UTC()).
		Count(&n).Error
	return n, err
}

// CountSessionsSince returns the number of distinct sessions that logged a
// message since the given instant.
func CountSessionsSince(ctx context.Context, db *gorm.DB, hotelID string, since time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Where("hotel_id = ? AND created_at >= ?", hotelID, since.UTC()).
		Distinct("session_id").
		Count(&n).Error
	return n, err
}

// CountAssistantBySource groups assistant replies by source tag.
func CountAssistantBySource(ctx context.Context, db *gorm.DB, hotelID string, since time.Time) (map[string]int64, error) {
	return groupCount(ctx, db.Model(&domain.ChatMessage{}).
		Where("hotel_id = ? AND role = ? AND created_at >= ?", hotelID, domain.RoleAssistant, since.UTC()),
		"source")
}

// CountByLang groups all messages by stored language.
func CountByLang(ctx context.Context, db *gorm.DB, hotelID string, since time.Time) (map[string]int64, error) {
	return groupCount(ctx, db.Model(&domain.ChatMessage{}).
		Where("hotel_id = ? AND created_at >= ?", hotelID, since.UTC()),
		"lang")
}

// CountEventsByType groups conversion events by type.
func CountEventsByType(ctx context.Context, db *gorm.DB, hotelID string, since time.Time) (map[string]int64, error) {
	return groupCount(ctx, db.Model(&domain.ChatEvent{}).
		Where("hotel_id = ? AND created_at >= ?", hotelID, since.UTC()),
		"event_type")
}

func groupCount(ctx context.Context, q *gorm.DB, col string) (map[string]int64, error) {
	var rows []groupRow
	err := q.WithContext(ctx).
		Select("COALESCE(" + col + ", '') AS label, COUNT(*) AS n").
		Group(col).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		k := r.Label
		if k == "" {
			k = UnknownLabel
		}
		out[k] += r.N
	}
	return out, nil
}
