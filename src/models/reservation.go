package models

import (
	"lodging/src/types"
	"time"
)

// Reservation is one booked stay. Dates are calendar days stored at midnight UTC.
type Reservation struct {
	ID                 uint                   `gorm:"primarykey" json:"id"`
	PropertyID         uint                   `gorm:"index;not null" json:"property_id"`
	GuestID            uint                   `gorm:"index;not null" json:"guest_id"`
	CheckInDate        time.Time              `gorm:"not null;index" json:"check_in_date"`
	CheckOutDate       time.Time              `gorm:"not null;index" json:"check_out_date"`
	Nights             int                    `json:"nights"`
	TotalPrice         float64                `gorm:"not null" json:"total_price"`
	Currency           string                 `gorm:"default:'usd'" json:"currency,omitempty"`
	State              types.ReservationState `gorm:"type:varchar(16);index;not null;default:'confirmed'" json:"state"`
	CancelledAt        *time.Time             `json:"cancelled_at,omitempty"`
	CancellationReason *string                `json:"cancellation_reason,omitempty"`
	PenaltyAmount      *float64               `json:"penalty_amount,omitempty"`
	Last4CardDigits    *string                `gorm:"column:last4_card_digits;size:4" json:"last4_card_digits,omitempty"`
	CheckedInAt        *time.Time             `json:"checked_in_at,omitempty"`
	CheckedOutAt       *time.Time             `json:"checked_out_at,omitempty"`
	CompletedAt        *time.Time             `json:"completed_at,omitempty"`

	Property *Property         `gorm:"foreignKey:property_id" json:"property,omitempty"`
	Guest    *User             `gorm:"foreignKey:guest_id" json:"-"`
	Photos   []CheckpointPhoto `gorm:"foreignKey:reservation_id" json:"photos,omitempty"`

	types.Timestamps
}
