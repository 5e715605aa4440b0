// Package testdb opens throwaway in-memory sqlite databases with the
// service schema migrated, for package tests that need a real store.
package testdb

import (
	"fmt"
	"testing"

	"lodging/src/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func New(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=UTC", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %s", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %s", err)
	}
	// a single connection keeps the shared in-memory database alive and
	// serializes writers the way sqlite expects
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := gormDB.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %s", err)
	}
	return gormDB
}

func SeedProperty(t testing.TB, db *gorm.DB, ownerID uint, rate float64) models.Property {
	t.Helper()
	owner := models.User{ID: ownerID, Name: fmt.Sprintf("owner-%d", ownerID), Email: fmt.Sprintf("owner%d@example.com", ownerID), Role: "host"}
	if err := db.FirstOrCreate(&owner, models.User{ID: ownerID}).Error; err != nil {
		t.Fatalf("seed owner: %s", err)
	}
	p := models.Property{OwnerID: ownerID, Name: "Sea View Loft", NightlyRate: rate}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed property: %s", err)
	}
	return p
}

func SeedUser(t testing.TB, db *gorm.DB, id uint) models.User {
	t.Helper()
	u := models.User{ID: id, Name: fmt.Sprintf("guest-%d", id), Email: fmt.Sprintf("guest%d@example.com", id)}
	if err := db.FirstOrCreate(&u, models.User{ID: id}).Error; err != nil {
		t.Fatalf("seed user: %s", err)
	}
	return u
}
