package types

import (
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type ReservationState string

const (
	RESERVATION_CONFIRMED ReservationState = "confirmed"
	RESERVATION_CHECKIN   ReservationState = "check-in"
	RESERVATION_CHECKOUT  ReservationState = "check-out"
	RESERVATION_COMPLETED ReservationState = "completed"
	RESERVATION_CANCELLED ReservationState = "cancelled"
)

var reservationTransitions = map[ReservationState][]ReservationState{
	RESERVATION_CONFIRMED: {RESERVATION_CHECKIN, RESERVATION_CANCELLED},
	RESERVATION_CHECKIN:   {RESERVATION_CHECKOUT},
	RESERVATION_CHECKOUT:  {RESERVATION_COMPLETED},
	RESERVATION_COMPLETED: {},
	RESERVATION_CANCELLED: {},
}

func (s ReservationState) IsValid() bool {
	_, ok := reservationTransitions[s]
	return ok
}

// CanTransitionTo reports whether the edge s -> target exists in the lifecycle graph.
func (s ReservationState) CanTransitionTo(target ReservationState) bool {
	for _, t := range reservationTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal is true for completed and cancelled reservations, and for unknown states.
func (s ReservationState) IsTerminal() bool {
	return len(reservationTransitions[s]) == 0
}

func (s ReservationState) String() string {
	return string(s)
}

type PaymentState string

const (
	PAYMENT_PENDING   PaymentState = "pending"
	PAYMENT_COMPLETED PaymentState = "completed"
)

type PhotoKind string

const (
	PHOTO_CHECKIN  PhotoKind = "checkin"
	PHOTO_CHECKOUT PhotoKind = "checkout"
)

func (k PhotoKind) IsValid() bool {
	return k == PHOTO_CHECKIN || k == PHOTO_CHECKOUT
}

type Environment string

const (
	Local      Environment = "local"
	Test       Environment = "test"
	Production Environment = "production"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type DateRangeQuery struct {
	CheckIn  string `form:"check_in" binding:"required,calendardate"`
	CheckOut string `form:"check_out" binding:"required,calendardate"`
}

type CreateReservationRequestBody struct {
	PropertyID uint   `json:"property_id" binding:"required"`
	CheckIn    string `json:"check_in" binding:"required,calendardate"`
	CheckOut   string `json:"check_out" binding:"required,calendardate"`
}

type ListReservationsQuery struct {
	As string `form:"as" binding:"omitempty,oneof=guest owner"`
}

type CancelReservationRequestBody struct {
	Reason string `json:"reason" binding:"max=500"`
}

type CheckinRequestBody struct {
	Code   string   `json:"code,omitempty"`
	Photos []string `json:"photos,omitempty" binding:"omitempty,dive,required,url"`
}

type CheckoutRequestBody struct {
	Photos []string `json:"photos,omitempty" binding:"omitempty,dive,required,url"`
}

type AddPhotoRequestBody struct {
	URL  string `json:"url" binding:"required,url"`
	Kind string `json:"kind" binding:"required,oneof=checkin checkout"`
}

type ListPhotosQuery struct {
	Kind string `form:"kind" binding:"omitempty,oneof=checkin checkout"`
}

// Card fields are kept as strings so the settlement engine, not the binder,
// decides which error kind a malformed value produces.
type ProcessPaymentRequestBody struct {
	CardNumber     string `json:"card_number" binding:"required"`
	CVV            string `json:"cvv" binding:"required"`
	ExpMonth       string `json:"exp_month" binding:"required"`
	ExpYear        string `json:"exp_year" binding:"required"`
	CardholderName string `json:"cardholder_name" binding:"required,max=120"`
}
