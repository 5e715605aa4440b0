package models

import (
	"lodging/src/types"
)

type User struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `gorm:"uniqueIndex" json:"email,omitempty"`
	Role  string `gorm:"default:'guest'" json:"role,omitempty"`

	Reservations []Reservation `gorm:"foreignKey:guest_id" json:"reservations,omitempty"`
	Properties   []Property    `gorm:"foreignKey:owner_id" json:"properties,omitempty"`

	types.Timestamps
}

// All lists every model owned by this service in migration order.
func All() []any {
	return []any{
		&User{},
		&Property{},
		&Reservation{},
		&Payment{},
		&CheckpointPhoto{},
	}
}
