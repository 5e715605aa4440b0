package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"lodging/src/models"
	"lodging/src/repository"
	"lodging/src/types"

	"gorm.io/gorm"
)

type Quote struct {
	Nights      int     `json:"nights"`
	NightlyRate float64 `json:"nightly_rate"`
	TotalPrice  float64 `json:"total_price"`
	Currency    string  `json:"currency"`
}

type CancellationResult struct {
	Penalty     float64             `json:"penalty"`
	Reservation *models.Reservation `json:"reservation"`
}

type SettlementEngine struct {
	*deps
	cards *CardValidator
}

// Quote prices a stay. Both dates are truncated to midnight first so
// intraday differences never add or drop a night.
func (s *SettlementEngine) Quote(property models.Property, checkIn, checkOut time.Time) (Quote, error) {
	checkIn, checkOut = truncateDay(checkIn), truncateDay(checkOut)
	if !checkOut.After(checkIn) {
		return Quote{}, ErrInvalidDateRange
	}
	nights := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	return Quote{
		Nights:      nights,
		NightlyRate: property.NightlyRate,
		TotalPrice:  float64(nights) * property.NightlyRate,
		Currency:    property.Currency,
	}, nil
}

func (s *SettlementEngine) QuoteProperty(ctx context.Context, propertyID uint, checkIn, checkOut time.Time) (Quote, error) {
	property, err := s.properties.FindByID(ctx, propertyID)
	if errors.Is(err, repository.ErrNotFound) {
		return Quote{}, ErrPropertyNotFound
	}
	if err != nil {
		return Quote{}, err
	}
	return s.Quote(*property, checkIn, checkOut)
}

// Penalty is the cancellation charge for a reservation cancelled at now.
// It applies only when check-in is strictly closer than the threshold.
func (s *SettlementEngine) Penalty(r models.Reservation, now time.Time) float64 {
	hoursUntilCheckin := r.CheckInDate.Sub(now).Hours()
	if hoursUntilCheckin < s.cfg.PenaltyThreshold.Hours() {
		return s.cfg.PenaltyRate * r.TotalPrice
	}
	return 0
}

// CapturePayment validates the card and records a completed payment together
// with the reservation's card digits in one transaction.
func (s *SettlementEngine) CapturePayment(ctx context.Context, guestID, reservationID uint, card CardDetails) (*models.Payment, error) {
	check, err := s.cards.Validate(card.Number, card.CVV, card.ExpMonth, card.ExpYear)
	if err != nil {
		var rejection *Error
		if errors.As(err, &rejection) {
			s.log.Info("payment rejected", "reservation_id", reservationID, "kind", rejection.Kind)
			return nil, reject(rejection.Kind, "payment rejected: %s", rejection.Reason)
		}
		return nil, err
	}

	var payment *models.Payment
	var reservation *models.Reservation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservations := s.reservations.WithTx(tx)
		payments := s.payments.WithTx(tx)

		r, err := reservations.FindByIDForUpdate(ctx, reservationID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReservationNotFound
		}
		if err != nil {
			return err
		}
		if r.GuestID != guestID {
			return ErrNotOwner
		}
		if r.State == types.RESERVATION_CANCELLED {
			return reject(KindInvalidStateForTransition, "cannot pay for a cancelled reservation")
		}

		paid, err := payments.HasCompleted(ctx, r.ID)
		if err != nil {
			return err
		}
		if paid {
			return ErrAlreadyHasCompletedPayment
		}

		p := &models.Payment{
			ReservationID:   r.ID,
			Amount:          r.TotalPrice,
			Currency:        r.Currency,
			State:           types.PAYMENT_COMPLETED,
			Last4CardDigits: check.Last4,
			CardholderName:  card.CardholderName,
		}
		if err := payments.Create(ctx, p); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyHasCompletedPayment
			}
			return fmt.Errorf("insert payment: %w", err)
		}
		if err := reservations.SetLast4(ctx, r.ID, check.Last4); err != nil {
			return err
		}
		r.Last4CardDigits = &check.Last4
		payment, reservation = p, r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment captured", "reservation_id", reservation.ID, "payment_id", payment.ID.String(), "amount", payment.Amount)
	event := NewEvent(EventPaymentCompleted, *reservation, s.now())
	event.Amount = &payment.Amount
	s.publish(event)
	return payment, nil
}

// GetPayment returns the completed payment of a reservation to its guest or
// the property owner.
func (s *SettlementEngine) GetPayment(ctx context.Context, callerID, reservationID uint) (*models.Payment, error) {
	r, err := s.loadOwned(ctx, callerID, reservationID, true)
	if err != nil {
		return nil, err
	}
	payment, err := s.payments.FindCompleted(ctx, r.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPaymentNotFound
	}
	return payment, err
}

// CancelWithPenalty cancels a confirmed reservation. The penalty is computed
// from the time of cancellation and written by the same conditional update
// that moves the state.
func (s *SettlementEngine) CancelWithPenalty(ctx context.Context, guestID, reservationID uint, reason string) (*CancellationResult, error) {
	r, err := s.loadOwned(ctx, guestID, reservationID, false)
	if err != nil {
		return nil, err
	}
	if r.State != types.RESERVATION_CONFIRMED {
		s.log.Info("cancel rejected", "reservation_id", r.ID, "from", r.State, "kind", KindNotConfirmedCannotCancel)
		return nil, ErrNotConfirmedCannotCancel
	}

	now := s.now()
	penalty := s.Penalty(*r, now)
	fields := map[string]any{
		"cancelled_at":   now,
		"penalty_amount": penalty,
	}
	if reason != "" {
		fields["cancellation_reason"] = reason
	}
	s.log.Info("transition", "reservation_id", r.ID, "from", r.State, "to", types.RESERVATION_CANCELLED)
	err = s.reservations.Transition(ctx, r.ID, types.RESERVATION_CONFIRMED, types.RESERVATION_CANCELLED, fields)
	if errors.Is(err, repository.ErrStaleState) {
		s.log.Info("cancel lost race", "reservation_id", r.ID, "kind", KindConcurrentModification)
		return nil, ErrConcurrentModification
	}
	if err != nil {
		return nil, err
	}

	r.State = types.RESERVATION_CANCELLED
	r.CancelledAt = &now
	r.PenaltyAmount = &penalty
	if reason != "" {
		r.CancellationReason = &reason
	}
	s.log.Info("reservation cancelled", "reservation_id", r.ID, "penalty", penalty)
	if s.reminders != nil {
		if err := s.reminders.CancelCheckinWindow(ctx, r.ID); err != nil {
			s.log.Warn("could not drop check-in reminder", "reservation_id", r.ID, "error", err)
		}
	}

	event := NewEvent(EventReservationCancelled, *r, now)
	event.Penalty = &penalty
	s.publish(event)
	return &CancellationResult{Penalty: penalty, Reservation: r}, nil
}
