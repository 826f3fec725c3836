package services

import (
	"context"
	"time"

	"github.com/chachabrian/staybook-backend/internal/apperror"
)

// AvailabilityChecker answers whether a house is free for a date range.
// Only pending and confirmed bookings hold dates. Ranges are half-open, so a
// stay may begin on the day another ends.
type AvailabilityChecker struct {
	houses   HouseStore
	bookings BookingStore
}

func NewAvailabilityChecker(houses HouseStore, bookings BookingStore) *AvailabilityChecker {
	return &AvailabilityChecker{houses: houses, bookings: bookings}
}

func (a *AvailabilityChecker) IsAvailable(ctx context.Context, houseID uint, checkIn, checkOut time.Time) (bool, error) {
	return a.IsAvailableExcluding(ctx, houseID, checkIn, checkOut, 0)
}

// IsAvailableExcluding ignores booking excludeID, so a booking being edited
// does not collide with itself.
func (a *AvailabilityChecker) IsAvailableExcluding(ctx context.Context, houseID uint, checkIn, checkOut time.Time, excludeID uint) (bool, error) {
	if err := validateRange(checkIn, checkOut); err != nil {
		return false, err
	}
	if _, err := a.houses.FindByID(ctx, houseID); err != nil {
		return false, err
	}

	n, err := a.bookings.CountOverlapping(ctx, houseID, checkIn, checkOut, excludeID)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func validateRange(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return apperror.Validation("Please add a check-in and check-out date")
	}
	if !checkIn.Before(checkOut) {
		return apperror.Validation("Check-out date must be after check-in date")
	}
	return nil
}
