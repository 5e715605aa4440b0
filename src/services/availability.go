package services

import (
	"context"
	"time"
)

type AvailabilityChecker struct {
	*deps
}

// IsAvailable reports whether no non-cancelled reservation of the property
// overlaps [checkIn, checkOut]. Boundaries are inclusive, so a checkout on
// day N conflicts with a check-in on day N.
func (a *AvailabilityChecker) IsAvailable(ctx context.Context, propertyID uint, checkIn, checkOut time.Time) (bool, error) {
	checkIn, checkOut = truncateDay(checkIn), truncateDay(checkOut)
	if !checkOut.After(checkIn) {
		return false, ErrInvalidDateRange
	}
	overlap, err := a.reservations.HasOverlap(ctx, propertyID, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return !overlap, nil
}
