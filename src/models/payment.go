package models

import (
	"lodging/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment is a captured simulated card payment. The partial unique index keeps
// a reservation from ever holding two completed payments.
type Payment struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`

	ReservationID   uint               `gorm:"not null;index;uniqueIndex:idx_payments_completed_reservation,where:state = 'completed'" json:"reservation_id"`
	Amount          float64            `gorm:"not null" json:"amount"`
	Currency        string             `json:"currency,omitempty"`
	State           types.PaymentState `gorm:"type:varchar(16);not null;default:'pending'" json:"state"`
	Last4CardDigits string             `gorm:"column:last4_card_digits;size:4" json:"last4_card_digits"`
	CardholderName  string             `json:"cardholder_name"`

	Reservation *Reservation `gorm:"foreignKey:reservation_id" json:"-"`

	types.Timestamps
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
