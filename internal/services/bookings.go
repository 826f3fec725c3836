package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chachabrian/staybook-backend/internal/apperror"
	"github.com/chachabrian/staybook-backend/internal/models"
	"github.com/chachabrian/staybook-backend/pkg/utils"
)

var errDatesTaken = apperror.Conflict("House is already booked for the selected dates")

// BookingPatch holds the fields an update may change. House and user are
// fixed at creation and have no place here.
type BookingPatch struct {
	Status        *models.BookingStatus
	PaymentStatus *models.PaymentStatus
	CheckIn       *time.Time
	CheckOut      *time.Time
	TotalPrice    *float64
}

// BookingPage is one page of a booking listing.
type BookingPage struct {
	Bookings   []models.Booking
	Total      int64
	Pagination *utils.Pagination
}

type BookingService struct {
	houses   HouseStore
	bookings BookingStore
	checker  *AvailabilityChecker
	notifier BookingNotifier
	log      logrus.FieldLogger
}

func NewBookingService(houses HouseStore, bookings BookingStore, notifier BookingNotifier, log logrus.FieldLogger) *BookingService {
	return &BookingService{
		houses:   houses,
		bookings: bookings,
		checker:  NewAvailabilityChecker(houses, bookings),
		notifier: notifier,
		log:      log,
	}
}

func (s *BookingService) Checker() *AvailabilityChecker {
	return s.checker
}

func (s *BookingService) Create(ctx context.Context, caller Caller, houseID uint, checkIn, checkOut time.Time) (*models.Booking, error) {
	house, err := s.houses.FindByID(ctx, houseID)
	if err != nil {
		return nil, err
	}
	if !house.IsAvailable {
		return nil, apperror.Validation("House %d is not available for booking", houseID)
	}
	if err := validateRange(checkIn, checkOut); err != nil {
		return nil, err
	}

	free, err := s.checker.IsAvailable(ctx, houseID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, errDatesTaken
	}

	booking := &models.Booking{
		HouseID:       houseID,
		UserID:        caller.ID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		TotalPrice:    models.BookingPrice(checkIn, checkOut, house.Price),
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}
	if err := booking.Validate(); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.notify(ctx, BookingCreated, booking)
	return booking, nil
}

func (s *BookingService) Read(ctx context.Context, caller Caller, id uint, withHouse bool) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id, withHouse)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(booking.UserID) {
		return nil, apperror.Unauthorized("User %d is not authorized to access this booking", caller.ID)
	}
	return booking, nil
}

// List returns every booking of houseID when given, unfiltered by caller.
// Otherwise admins page through all bookings and users through their own.
func (s *BookingService) List(ctx context.Context, caller Caller, houseID *uint, page utils.Pagination) (*BookingPage, error) {
	if houseID != nil {
		if _, err := s.houses.FindByID(ctx, *houseID); err != nil {
			return nil, err
		}
		bookings, err := s.bookings.ListByHouse(ctx, *houseID)
		if err != nil {
			return nil, err
		}
		return &BookingPage{Bookings: bookings, Total: int64(len(bookings))}, nil
	}

	var owner *uint
	if !caller.IsAdmin() {
		owner = &caller.ID
	}
	bookings, total, err := s.bookings.List(ctx, owner, page)
	if err != nil {
		return nil, err
	}
	return &BookingPage{Bookings: bookings, Total: total, Pagination: &page}, nil
}

func (s *BookingService) Update(ctx context.Context, caller Caller, id uint, patch BookingPatch) (*models.Booking, error) {
	booking, err := s.Read(ctx, caller, id, false)
	if err != nil {
		return nil, err
	}

	wasActive := booking.Status.IsActive()
	datesChanged := false

	if patch.Status != nil {
		booking.Status = *patch.Status
	}
	if patch.PaymentStatus != nil {
		booking.PaymentStatus = *patch.PaymentStatus
	}
	if patch.CheckIn != nil && !patch.CheckIn.Equal(booking.CheckIn) {
		booking.CheckIn = *patch.CheckIn
		datesChanged = true
	}
	if patch.CheckOut != nil && !patch.CheckOut.Equal(booking.CheckOut) {
		booking.CheckOut = *patch.CheckOut
		datesChanged = true
	}

	if err := validateRange(booking.CheckIn, booking.CheckOut); err != nil {
		return nil, err
	}

	switch {
	case patch.TotalPrice != nil:
		booking.TotalPrice = *patch.TotalPrice
	case datesChanged:
		house, err := s.houses.FindByID(ctx, booking.HouseID)
		if err != nil {
			return nil, err
		}
		booking.TotalPrice = models.BookingPrice(booking.CheckIn, booking.CheckOut, house.Price)
	}

	if err := booking.Validate(); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}

	if booking.Status.IsActive() && (datesChanged || !wasActive) {
		free, err := s.checker.IsAvailableExcluding(ctx, booking.HouseID, booking.CheckIn, booking.CheckOut, booking.ID)
		if err != nil {
			return nil, err
		}
		if !free {
			return nil, errDatesTaken
		}
	}

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.notify(ctx, BookingUpdated, booking)
	return booking, nil
}

func (s *BookingService) Delete(ctx context.Context, caller Caller, id uint) error {
	booking, err := s.Read(ctx, caller, id, false)
	if err != nil {
		return err
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		return err
	}

	s.notify(ctx, BookingDeleted, booking)
	return nil
}

// notify never fails the request; delivery problems are only logged.
func (s *BookingService) notify(ctx context.Context, t BookingEventType, booking *models.Booking) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyBooking(ctx, NewBookingEvent(t, booking)); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event":     t,
			"bookingId": booking.ID,
		}).Warn("booking event delivery failed")
	}
}
