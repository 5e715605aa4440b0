package models

import (
	"lodging/src/types"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type Property struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	OwnerID     uint    `gorm:"index;not null" json:"owner_id"`
	Name        string  `gorm:"not null" json:"name"`
	Slug        string  `gorm:"index" json:"slug,omitempty"`
	NightlyRate float64 `gorm:"not null" json:"nightly_rate"`
	Currency    string  `gorm:"default:'usd'" json:"currency,omitempty"`

	Owner *User `gorm:"foreignKey:owner_id" json:"-"`

	types.Timestamps
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.Slug == "" && p.Name != "" {
		p.Slug = slug.Make(p.Name)
	}
	if p.Currency == "" {
		p.Currency = "usd"
	}
	return nil
}
