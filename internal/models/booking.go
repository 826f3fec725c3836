package models

import (
	"math"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsActive reports whether a booking in this status holds its dates.
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// ActiveBookingStatuses are the statuses that occupy the calendar.
func ActiveBookingStatuses() []string {
	return []string{string(BookingStatusPending), string(BookingStatusConfirmed)}
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Booking reserves [CheckIn, CheckOut) of a house for a user. HouseID and
// UserID never change after creation.
type Booking struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	HouseID       uint          `gorm:"not null;index" json:"houseId" validate:"required"`
	House         *House        `gorm:"constraint:OnDelete:CASCADE" json:"house,omitempty" validate:"-"`
	UserID        uint          `gorm:"not null;index" json:"userId" validate:"required"`
	User          *User         `gorm:"constraint:OnDelete:CASCADE" json:"-" validate:"-"`
	CheckIn       time.Time     `gorm:"not null" json:"checkIn" validate:"required"`
	CheckOut      time.Time     `gorm:"not null" json:"checkOut" validate:"required,gtfield=CheckIn"`
	TotalPrice    float64       `gorm:"not null" json:"totalPrice" validate:"gte=0"`
	Status        BookingStatus `gorm:"type:varchar(16);not null;default:pending;index" json:"status" validate:"oneof=pending confirmed cancelled"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(16);not null;default:pending" json:"paymentStatus" validate:"oneof=pending completed failed refunded"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}

// HouseDetails returns the populated house, which is only present when the
// caller asked for it when loading the booking.
func (b *Booking) HouseDetails() (*House, bool) {
	return b.House, b.House != nil
}

func (b *Booking) OwnedBy(userID uint) bool {
	return b.UserID == userID
}

func (b *Booking) Validate() error {
	return validateStruct(b)
}

// Overlaps applies the half-open interval test: touching ranges do not
// overlap.
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckIn.Before(checkOut) && checkIn.Before(b.CheckOut)
}

// Nights counts started days between check-in and check-out.
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// BookingPrice is nights multiplied by the nightly price.
func BookingPrice(checkIn, checkOut time.Time, nightly float64) float64 {
	return float64(Nights(checkIn, checkOut)) * nightly
}
