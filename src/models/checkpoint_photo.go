package models

import (
	"lodging/src/types"
	"time"
)

type CheckpointPhoto struct {
	ID uint `gorm:"primarykey" json:"id"`

	ReservationID uint            `gorm:"index;not null" json:"reservation_id"`
	URL           string          `gorm:"not null" json:"url"`
	Kind          types.PhotoKind `gorm:"type:varchar(16);index;not null" json:"kind"`
	UploadedBy    uint            `json:"uploaded_by,omitempty"`
	UploadedAt    time.Time       `gorm:"not null" json:"uploaded_at"`

	types.Timestamps
}
