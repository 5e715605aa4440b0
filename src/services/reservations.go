package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lodging/src/models"
	"lodging/src/repository"
	"lodging/src/types"
	"lodging/src/utils"

	"gorm.io/gorm"
)

type CheckinInput struct {
	Code   string
	Photos []string
}

type CheckoutInput struct {
	Photos []string
}

// ReservationMachine owns reservations and their legal state transitions.
type ReservationMachine struct {
	*deps
	availability *AvailabilityChecker
	settlement   *SettlementEngine
	checkpoints  *CheckpointGate
}

// Create books the property for [checkIn, checkOut). The availability check
// and the insert run under the property's booking lock and inside one
// transaction holding the property row lock.
func (m *ReservationMachine) Create(ctx context.Context, guestID, propertyID uint, checkIn, checkOut time.Time) (*models.Reservation, error) {
	checkIn, checkOut = truncateDay(checkIn), truncateDay(checkOut)
	if !checkOut.After(checkIn) {
		return nil, ErrInvalidDateRange
	}
	if checkIn.Before(m.today()) {
		return nil, ErrPastDateRequested
	}

	lockCtx, cancel := context.WithTimeout(ctx, m.cfg.LockWait)
	defer cancel()
	unlock, err := m.locker.Lock(lockCtx, fmt.Sprintf("booking:property:%d", propertyID))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			m.log.Info("booking lock busy", "property_id", propertyID, "kind", KindConcurrentModification)
			return nil, reject(KindConcurrentModification, "property is being booked by someone else, retry")
		}
		return nil, fmt.Errorf("acquire booking lock: %w", err)
	}
	defer unlock()

	var reservation *models.Reservation
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := m.properties.WithTx(tx).FindByIDForUpdate(ctx, propertyID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPropertyNotFound
		}
		if err != nil {
			return err
		}

		reservations := m.reservations.WithTx(tx)
		overlap, err := reservations.HasOverlap(ctx, property.ID, checkIn, checkOut)
		if err != nil {
			return err
		}
		if overlap {
			return ErrPropertyUnavailable
		}

		quote, err := m.settlement.Quote(*property, checkIn, checkOut)
		if err != nil {
			return err
		}
		r := &models.Reservation{
			PropertyID:   property.ID,
			GuestID:      guestID,
			CheckInDate:  checkIn,
			CheckOutDate: checkOut,
			Nights:       quote.Nights,
			TotalPrice:   quote.TotalPrice,
			Currency:     quote.Currency,
			State:        types.RESERVATION_CONFIRMED,
		}
		if err := reservations.Create(ctx, r); err != nil {
			return err
		}
		r.Property = property
		reservation = r
		return nil
	})
	if err != nil {
		var rejection *Error
		if errors.As(err, &rejection) {
			m.log.Info("booking rejected", "property_id", propertyID, "guest_id", guestID, "kind", rejection.Kind)
		}
		return nil, err
	}

	m.log.Info("reservation confirmed", "reservation_id", reservation.ID, "property_id", propertyID, "to", reservation.State, "total_price", reservation.TotalPrice)
	m.publish(NewEvent(EventReservationConfirmed, *reservation, m.now()))
	if m.reminders != nil {
		if err := m.reminders.ScheduleCheckinWindow(ctx, *reservation); err != nil {
			m.log.Warn("could not schedule check-in reminder", "reservation_id", reservation.ID, "error", err)
		}
	}
	return reservation, nil
}

// Get returns the reservation to its guest or the property owner.
func (m *ReservationMachine) Get(ctx context.Context, callerID, id uint) (*models.Reservation, error) {
	return m.loadOwned(ctx, callerID, id, true)
}

func (m *ReservationMachine) ListForGuest(ctx context.Context, guestID uint) ([]models.Reservation, error) {
	return m.reservations.ListByGuest(ctx, guestID)
}

func (m *ReservationMachine) ListForOwner(ctx context.Context, ownerID uint) ([]models.Reservation, error) {
	return m.reservations.ListByOwner(ctx, ownerID)
}

// ListForProperty lists every reservation of a property to its owner.
func (m *ReservationMachine) ListForProperty(ctx context.Context, ownerID, propertyID uint) ([]models.Reservation, error) {
	property, err := m.properties.FindByID(ctx, propertyID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, err
	}
	if property.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return m.reservations.ListByProperty(ctx, propertyID)
}

func (m *ReservationMachine) CheckinCodesEnabled() bool {
	return m.cfg.CheckinKey != ""
}

// CheckinCode issues the sealed code a guest presents at check-in. Codes
// exist only for confirmed reservations.
func (m *ReservationMachine) CheckinCode(ctx context.Context, guestID, id uint) (string, error) {
	if !m.CheckinCodesEnabled() {
		return "", ErrCheckinCodesDisabled
	}
	r, err := m.loadOwned(ctx, guestID, id, false)
	if err != nil {
		return "", err
	}
	if r.State != types.RESERVATION_CONFIRMED {
		return "", reject(KindInvalidStateForTransition, "check-in codes are only issued for confirmed reservations")
	}
	return utils.IssueCheckinCode(m.cfg.CheckinKey, r.ID)
}

// CheckIn is open to the guest from confirmed, within the check-in window
// around check_in_date. A supplied code must open to this reservation.
func (m *ReservationMachine) CheckIn(ctx context.Context, guestID, id uint, in CheckinInput) (*models.Reservation, error) {
	r, err := m.loadOwned(ctx, guestID, id, false)
	if err != nil {
		return nil, err
	}
	if err := m.guard(r, types.RESERVATION_CHECKIN); err != nil {
		return nil, err
	}

	now := m.now()
	if d := now.Sub(r.CheckInDate); d > m.cfg.CheckinWindow || -d > m.cfg.CheckinWindow {
		m.log.Info("check-in rejected", "reservation_id", r.ID, "kind", KindOutsideCheckinWindow)
		return nil, ErrOutsideCheckinWindow
	}
	if in.Code != "" && m.cfg.CheckinKey != "" {
		codeID, err := utils.ReadCheckinCode(m.cfg.CheckinKey, in.Code)
		if err != nil || codeID != r.ID {
			m.log.Info("check-in rejected", "reservation_id", r.ID, "kind", KindInvalidCheckinCode)
			return nil, ErrInvalidCheckinCode
		}
	}
	photos, err := m.checkpoints.photosFromURLs(r.ID, guestID, in.Photos, types.PHOTO_CHECKIN)
	if err != nil {
		return nil, err
	}

	if err := m.transition(ctx, r, types.RESERVATION_CHECKIN, map[string]any{"checked_in_at": now}, photos); err != nil {
		return nil, err
	}
	r.CheckedInAt = &now
	m.publish(NewEvent(EventReservationCheckedIn, *r, now))
	return r, nil
}

// CheckOut is open to the guest from check-in at any time.
func (m *ReservationMachine) CheckOut(ctx context.Context, guestID, id uint, in CheckoutInput) (*models.Reservation, error) {
	r, err := m.loadOwned(ctx, guestID, id, false)
	if err != nil {
		return nil, err
	}
	if err := m.guard(r, types.RESERVATION_CHECKOUT); err != nil {
		return nil, err
	}
	photos, err := m.checkpoints.photosFromURLs(r.ID, guestID, in.Photos, types.PHOTO_CHECKOUT)
	if err != nil {
		return nil, err
	}

	now := m.now()
	if err := m.transition(ctx, r, types.RESERVATION_CHECKOUT, map[string]any{"checked_out_at": now}, photos); err != nil {
		return nil, err
	}
	r.CheckedOutAt = &now
	m.publish(NewEvent(EventReservationCheckedOut, *r, now))
	return r, nil
}

// Complete closes a checked-out stay. It needs at least MinCheckoutPhotos
// checkout photos and may be called by the guest or the property owner.
func (m *ReservationMachine) Complete(ctx context.Context, callerID, id uint) (*models.Reservation, error) {
	r, err := m.loadOwned(ctx, callerID, id, true)
	if err != nil {
		return nil, err
	}
	if err := m.guard(r, types.RESERVATION_COMPLETED); err != nil {
		return nil, err
	}
	n, err := m.checkpoints.CountPhotos(ctx, r.ID, types.PHOTO_CHECKOUT)
	if err != nil {
		return nil, err
	}
	if n < MinCheckoutPhotos {
		m.log.Info("completion rejected", "reservation_id", r.ID, "kind", KindMissingRequiredPhotos, "photos", n)
		return nil, ErrMissingRequiredPhotos
	}

	now := m.now()
	if err := m.transition(ctx, r, types.RESERVATION_COMPLETED, map[string]any{"completed_at": now}, nil); err != nil {
		return nil, err
	}
	r.CompletedAt = &now
	m.publish(NewEvent(EventReservationCompleted, *r, now))
	return r, nil
}

// Cancel is open to the guest from confirmed only; the penalty is settled by
// the settlement engine.
func (m *ReservationMachine) Cancel(ctx context.Context, guestID, id uint, reason string) (*CancellationResult, error) {
	return m.settlement.CancelWithPenalty(ctx, guestID, id, reason)
}

func (m *ReservationMachine) guard(r *models.Reservation, to types.ReservationState) error {
	if r.State.CanTransitionTo(to) {
		return nil
	}
	m.log.Info("transition rejected", "reservation_id", r.ID, "from", r.State, "to", to, "kind", KindInvalidStateForTransition)
	return reject(KindInvalidStateForTransition, "cannot move reservation from %s to %s", r.State, to)
}

// transition applies the conditional state update and inserts any evidence
// photos in the same transaction.
func (m *ReservationMachine) transition(ctx context.Context, r *models.Reservation, to types.ReservationState, fields map[string]any, photos []*models.CheckpointPhoto) error {
	from := r.State
	m.log.Info("transition", "reservation_id", r.ID, "from", from, "to", to)
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.reservations.WithTx(tx).Transition(ctx, r.ID, from, to, fields); err != nil {
			return err
		}
		return m.photos.WithTx(tx).Create(ctx, photos...)
	})
	if errors.Is(err, repository.ErrStaleState) {
		m.log.Info("transition lost race", "reservation_id", r.ID, "from", from, "to", to, "kind", KindConcurrentModification)
		return ErrConcurrentModification
	}
	if err != nil {
		m.log.Error("transition failed", "reservation_id", r.ID, "from", from, "to", to, "error", err)
		return err
	}
	r.State = to
	m.log.Info("transition done", "reservation_id", r.ID, "from", from, "to", to)
	return nil
}
