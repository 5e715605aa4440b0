package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCardValidatorBounds(t *testing.T) {
	v := NewCardValidator(fixedClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)))
	const valid = "4532015112830366"

	check, err := v.Validate(valid, "123", "12", "2030")
	require.NoError(t, err)
	assert.Equal(t, "0366", check.Last4)

	check, err = v.Validate("4532 0151 1283 0366", "1234", "03", "26")
	require.NoError(t, err)
	assert.Equal(t, "0366", check.Last4)

	cases := []struct {
		name                     string
		number, cvv, month, year string
		want                     *Error
	}{
		{"twelve digits", "123456789012", "123", "12", "2030", ErrInvalidCardFormat},
		{"twenty digits", "12345678901234567890", "123", "12", "2030", ErrInvalidCardFormat},
		{"letters", "4532a15112830366", "123", "12", "2030", ErrInvalidCardFormat},
		{"empty", "   ", "123", "12", "2030", ErrInvalidCardFormat},
		{"short cvv", valid, "12", "12", "2030", ErrInvalidCvv},
		{"alpha cvv", valid, "12a", "12", "2030", ErrInvalidCvv},
		{"month 13", valid, "123", "13", "2030", ErrInvalidExpiry},
		{"month 0", valid, "123", "0", "2030", ErrInvalidExpiry},
		{"bad year", valid, "123", "12", "20301", ErrInvalidExpiry},
		{"expired year", valid, "123", "12", "2020", ErrCardExpired},
		{"expired month", valid, "123", "02", "2026", ErrCardExpired},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := v.Validate(c.number, c.cvv, c.month, c.year)
			assert.ErrorIs(t, err, c.want)
		})
	}
}
