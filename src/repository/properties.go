package repository

import (
	"context"

	"lodging/src/models"
	"lodging/src/models/scopes"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) WithTx(tx *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: tx}
}

func (r *PropertyRepository) FindByID(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	if err := r.db.WithContext(ctx).Scopes(scopes.WithID(id)).First(&property).Error; err != nil {
		return nil, translate(err)
	}
	return &property, nil
}

// FindByIDForUpdate locks the property row, serializing bookings of the
// same property across transactions.
func (r *PropertyRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(scopes.WithID(id)).
		First(&property).Error
	if err != nil {
		return nil, translate(err)
	}
	return &property, nil
}
