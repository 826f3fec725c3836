package services

import (
	"context"
	"errors"
	"time"

	"github.com/chachabrian/staybook-backend/internal/models"
	"github.com/chachabrian/staybook-backend/pkg/utils"
)

// Caller is the authenticated identity a request runs as.
type Caller struct {
	ID   uint
	Role models.Role
}

func (c Caller) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// CanAccess reports whether the caller owns a record of ownerID or is an admin.
func (c Caller) CanAccess(ownerID uint) bool {
	return c.IsAdmin() || (c.ID != 0 && c.ID == ownerID)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type HouseStore interface {
	Search(ctx context.Context, f models.HouseFilter) ([]models.House, int64, error)
	WithinBox(ctx context.Context, box utils.BoundingBox) ([]models.House, error)
	FindByID(ctx context.Context, id uint) (*models.House, error)
	Create(ctx context.Context, house *models.House) error
	Update(ctx context.Context, house *models.House) error
	Delete(ctx context.Context, id uint) error
}

type BookingStore interface {
	CountOverlapping(ctx context.Context, houseID uint, checkIn, checkOut time.Time, excludeID uint) (int64, error)
	Create(ctx context.Context, booking *models.Booking) error
	Update(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id uint, withHouse bool) (*models.Booking, error)
	ListByHouse(ctx context.Context, houseID uint) ([]models.Booking, error)
	List(ctx context.Context, userID *uint, page utils.Pagination) ([]models.Booking, int64, error)
	Delete(ctx context.Context, id uint) error
}

type BookingEventType string

const (
	BookingCreated BookingEventType = "booking_created"
	BookingUpdated BookingEventType = "booking_updated"
	BookingDeleted BookingEventType = "booking_deleted"
)

type BookingEvent struct {
	Type          BookingEventType     `json:"type" bson:"type"`
	BookingID     uint                 `json:"bookingId" bson:"booking_id"`
	HouseID       uint                 `json:"houseId" bson:"house_id"`
	UserID        uint                 `json:"userId" bson:"user_id"`
	Status        models.BookingStatus `json:"status" bson:"status"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus" bson:"payment_status"`
	CheckIn       time.Time            `json:"checkIn" bson:"check_in"`
	CheckOut      time.Time            `json:"checkOut" bson:"check_out"`
	At            time.Time            `json:"at" bson:"at"`
}

func NewBookingEvent(t BookingEventType, b *models.Booking) BookingEvent {
	return BookingEvent{
		Type:          t,
		BookingID:     b.ID,
		HouseID:       b.HouseID,
		UserID:        b.UserID,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		CheckIn:       b.CheckIn,
		CheckOut:      b.CheckOut,
		At:            time.Now().UTC(),
	}
}

type BookingNotifier interface {
	NotifyBooking(ctx context.Context, event BookingEvent) error
}

// BookingNotifiers fans an event out to every notifier and joins their errors.
type BookingNotifiers []BookingNotifier

func (n BookingNotifiers) NotifyBooking(ctx context.Context, event BookingEvent) error {
	var errs []error
	for _, notifier := range n {
		if err := notifier.NotifyBooking(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type HouseAction string

const (
	HouseCreated HouseAction = "create"
	HouseUpdated HouseAction = "update"
	HouseDeleted HouseAction = "delete"
)

// HouseEvent is the message search indexers consume.
type HouseEvent struct {
	Action  HouseAction `json:"action" bson:"action"`
	HouseID uint        `json:"house_id" bson:"house_id"`
	ActorID uint        `json:"actor_id,omitempty" bson:"actor_id"`
	At      time.Time   `json:"at" bson:"at"`
}

type HouseNotifier interface {
	NotifyHouse(ctx context.Context, event HouseEvent) error
}

type HouseNotifiers []HouseNotifier

func (n HouseNotifiers) NotifyHouse(ctx context.Context, event HouseEvent) error {
	var errs []error
	for _, notifier := range n {
		if err := notifier.NotifyHouse(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
