package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lodging/src/models"
	"lodging/src/repository"

	"gorm.io/gorm"
)

// BookingLocker serializes bookings of one property across processes. Lock
// blocks until the lock is held or ctx is done.
type BookingLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Notifier is a fire-and-forget sink for lifecycle events.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

type ReminderScheduler interface {
	ScheduleCheckinWindow(ctx context.Context, reservation models.Reservation) error
	CancelCheckinWindow(ctx context.Context, reservationID uint) error
}

const (
	EventReservationConfirmed  = "reservation.confirmed"
	EventReservationCheckedIn  = "reservation.checked_in"
	EventReservationCheckedOut = "reservation.checked_out"
	EventReservationCompleted  = "reservation.completed"
	EventReservationCancelled  = "reservation.cancelled"
	EventPaymentCompleted      = "payment.completed"
	EventCheckinWindowOpen     = "reservation.checkin_window_open"
)

type Event struct {
	Type          string    `json:"type"`
	ReservationID uint      `json:"reservation_id"`
	PropertyID    uint      `json:"property_id"`
	GuestID       uint      `json:"guest_id"`
	State         string    `json:"state,omitempty"`
	Amount        *float64  `json:"amount,omitempty"`
	Penalty       *float64  `json:"penalty,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewEvent(eventType string, r models.Reservation, at time.Time) Event {
	return Event{
		Type:          eventType,
		ReservationID: r.ID,
		PropertyID:    r.PropertyID,
		GuestID:       r.GuestID,
		State:         r.State.String(),
		OccurredAt:    at,
	}
}

type EngineConfig struct {
	Locker    BookingLocker
	Notifier  Notifier
	Reminders ReminderScheduler
	Logger    *slog.Logger
	Now       func() time.Time

	CheckinWindow    time.Duration
	PenaltyThreshold time.Duration
	PenaltyRate      float64
	LockWait         time.Duration
	NotifyTimeout    time.Duration

	// CheckinKey is the hex AES key check-in codes are sealed with. Codes
	// are not verified when empty.
	CheckinKey string

	// Dispatch runs post-commit side effects. Defaults to a new goroutine.
	Dispatch func(func())
}

// Engine wires the five lifecycle components over one store.
type Engine struct {
	Cards        *CardValidator
	Availability *AvailabilityChecker
	Reservations *ReservationMachine
	Settlement   *SettlementEngine
	Checkpoints  *CheckpointGate
}

type deps struct {
	db           *gorm.DB
	reservations *repository.ReservationRepository
	payments     *repository.PaymentRepository
	photos       *repository.PhotoRepository
	properties   *repository.PropertyRepository

	locker    BookingLocker
	notifier  Notifier
	reminders ReminderScheduler
	log       *slog.Logger
	now       func() time.Time
	dispatch  func(func())
	cfg       EngineConfig
}

func NewEngine(db *gorm.DB, cfg EngineConfig) *Engine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Locker == nil {
		cfg.Locker = noopLocker{}
	}
	if cfg.CheckinWindow <= 0 {
		cfg.CheckinWindow = 24 * time.Hour
	}
	if cfg.PenaltyThreshold <= 0 {
		cfg.PenaltyThreshold = 24 * time.Hour
	}
	if cfg.PenaltyRate <= 0 || cfg.PenaltyRate > 1 {
		cfg.Logger.Warn("penalty rate out of range, using default", "penalty_rate", cfg.PenaltyRate, "default", 0.5)
		cfg.PenaltyRate = 0.5
	}
	if cfg.LockWait <= 0 {
		cfg.LockWait = 3 * time.Second
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 10 * time.Second
	}
	if cfg.Dispatch == nil {
		cfg.Dispatch = func(f func()) { go f() }
	}

	d := &deps{
		db:           db,
		reservations: repository.NewReservationRepository(db),
		payments:     repository.NewPaymentRepository(db),
		photos:       repository.NewPhotoRepository(db),
		properties:   repository.NewPropertyRepository(db),
		locker:       cfg.Locker,
		notifier:     cfg.Notifier,
		reminders:    cfg.Reminders,
		log:          cfg.Logger,
		now:          cfg.Now,
		dispatch:     cfg.Dispatch,
		cfg:          cfg,
	}

	cards := NewCardValidator(cfg.Now)
	availability := &AvailabilityChecker{deps: d}
	checkpoints := &CheckpointGate{deps: d}
	settlement := &SettlementEngine{deps: d, cards: cards}
	machine := &ReservationMachine{
		deps:         d,
		availability: availability,
		settlement:   settlement,
		checkpoints:  checkpoints,
	}

	return &Engine{
		Cards:        cards,
		Availability: availability,
		Reservations: machine,
		Settlement:   settlement,
		Checkpoints:  checkpoints,
	}
}

// publish hands the event to the notifier after the caller's transaction
// has committed. Failures are logged only.
func (d *deps) publish(event Event) {
	if d.notifier == nil {
		return
	}
	d.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.NotifyTimeout)
		defer cancel()
		if err := d.notifier.Notify(ctx, event); err != nil {
			d.log.Warn("notification failed", "event", event.Type, "reservation_id", event.ReservationID, "error", err)
		}
	})
}

// loadOwned fetches a reservation and checks the caller against the allowed
// parties. Owners are allowed only when allowOwner is set.
func (d *deps) loadOwned(ctx context.Context, callerID, id uint, allowOwner bool) (*models.Reservation, error) {
	r, err := d.reservations.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	if r.GuestID == callerID {
		return r, nil
	}
	if allowOwner && r.Property != nil && r.Property.OwnerID == callerID {
		return r, nil
	}
	return nil, ErrNotOwner
}

func (d *deps) today() time.Time {
	return truncateDay(d.now())
}

// truncateDay drops time-of-day, yielding midnight UTC of the same calendar day.
func truncateDay(t time.Time) time.Time {
	y, m, day := t.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
