package repository

import (
	"context"
	"fmt"
	"time"

	"lodging/src/models"
	"lodging/src/models/scopes"
	"lodging/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// WithTx returns a copy bound to tx.
func (r *ReservationRepository) WithTx(tx *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: tx}
}

func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).Preload("Property").Scopes(scopes.WithID(id)).First(&reservation).Error
	if err != nil {
		return nil, translate(err)
	}
	return &reservation, nil
}

// FindByIDForUpdate reads the reservation holding a row lock until the
// surrounding transaction ends.
func (r *ReservationRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(scopes.WithID(id)).
		First(&reservation).Error
	if err != nil {
		return nil, translate(err)
	}
	return &reservation, nil
}

func (r *ReservationRepository) ListByGuest(ctx context.Context, guestID uint) ([]models.Reservation, error) {
	reservations := []models.Reservation{}
	err := r.db.WithContext(ctx).
		Preload("Property").
		Where("guest_id = ?", guestID).
		Scopes(scopes.NewestFirst).
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("list guest reservations: %w", err)
	}
	return reservations, nil
}

func (r *ReservationRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Reservation, error) {
	reservations := []models.Reservation{}
	err := r.db.WithContext(ctx).
		Preload("Property").
		Where("property_id IN (?)", r.db.Model(&models.Property{}).Select("id").Where("owner_id = ?", ownerID)).
		Scopes(scopes.NewestFirst).
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("list owner reservations: %w", err)
	}
	return reservations, nil
}

func (r *ReservationRepository) ListByProperty(ctx context.Context, propertyID uint) ([]models.Reservation, error) {
	reservations := []models.Reservation{}
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("check_in_date ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("list property reservations: %w", err)
	}
	return reservations, nil
}

// HasOverlap reports whether a non-cancelled reservation of the property
// shares at least one day with [checkIn, checkOut], boundaries inclusive.
func (r *ReservationRepository) HasOverlap(ctx context.Context, propertyID uint, checkIn, checkOut time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Scopes(scopes.NotCancelled).
		Where("property_id = ?", propertyID).
		Where("check_in_date <= ? AND check_out_date >= ?", checkOut, checkIn).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("overlap query: %w", err)
	}
	return count > 0, nil
}

// Transition moves the reservation from one state to another with a single
// conditional update. Extra columns in fields are written by the same
// statement. ErrStaleState means the stored state no longer matched from.
func (r *ReservationRepository) Transition(ctx context.Context, id uint, from, to types.ReservationState, fields map[string]any) error {
	updates := map[string]any{"state": to}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND state = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("transition %s -> %s: %w", from, to, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *ReservationRepository) SetLast4(ctx context.Context, id uint, last4 string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Update("last4_card_digits", last4)
	if res.Error != nil {
		return fmt.Errorf("update card digits: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
