package repository

import (
	"context"
	"testing"

	"lodging/src/db/testdb"
	"lodging/src/models"
	"lodging/src/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCompletedPaymentIsUniquePerReservation(t *testing.T) {
	gormDB := testdb.New(t)
	repo := NewPaymentRepository(gormDB)
	ctx := context.Background()

	first := &models.Payment{ReservationID: 3, Amount: 500, State: types.PAYMENT_COMPLETED, Last4CardDigits: "0366"}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotEmpty(t, first.ID.String())

	err := repo.Create(ctx, &models.Payment{ReservationID: 3, Amount: 500, State: types.PAYMENT_COMPLETED, Last4CardDigits: "1111"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	require.NoError(t, repo.Create(ctx, &models.Payment{ReservationID: 3, Amount: 500, State: types.PAYMENT_PENDING}))

	paid, err := repo.HasCompleted(ctx, 3)
	require.NoError(t, err)
	assert.True(t, paid)

	got, err := repo.FindCompleted(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "0366", got.Last4CardDigits)

	_, err = repo.FindCompleted(ctx, 4)
	assert.ErrorIs(t, err, ErrNotFound)
}
