// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for hotel profiles
// and their FAQ tables.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a hotel is not found, GetHotel returns ErrNotFound
//     (an alias of gorm.ErrRecordNotFound).
//   - On DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/hotel-concierge/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetHotel fetches a hotel profile by id, or ErrNotFound.
func GetHotel(ctx context.Context, db *gorm.DB, id string) (*domain.Hotel, error) {
	var h domain.Hotel
	if err := db.WithContext(ctx).Where("id = ?", id).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// SaveHotel inserts a hotel or overwrites the mutable profile fields of an
// existing one.
func SaveHotel(ctx context.Context, db *gorm.DB, h *domain.Hotel) error {
	now := time.Now().UTC()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	h.UpdatedAt = now
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "plan", "languages", "welcome_message", "updated_at"}),
		}).
		Create(h).Error
}

// ListFaqs returns a hotel's FAQ entries for one language in stored (id)
// order. An unknown hotel yields an empty slice.
func ListFaqs(ctx context.Context, db *gorm.DB, hotelID, lang string) ([]domain.Faq, error) {
	var out []domain.Faq
	err := db.WithContext(ctx).
		Where("hotel_id = ? AND lang = ?", hotelID, lang).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// CreateFaq appends an FAQ entry to a hotel's table.
func CreateFaq(ctx context.Context, db *gorm.DB, hotelID, lang, question, answer string) (*domain.Faq, error) {
	f := &domain.Faq{
		HotelID:   hotelID,
		Lang:      lang,
		Question:  question,
		Answer:    answer,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}
