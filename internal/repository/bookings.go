package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chachabrian/staybook-backend/internal/models"
	"github.com/chachabrian/staybook-backend/pkg/utils"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CountOverlapping counts active bookings of the house that share a night
// with [checkIn, checkOut). excludeID, when non-zero, is left out.
func (r *BookingRepository) CountOverlapping(ctx context.Context, houseID uint, checkIn, checkOut time.Time, excludeID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Scopes(overlapping(houseID, checkIn, checkOut, excludeID)).
		Count(&n).Error
	return n, translate(err, "")
}

// Create inserts the booking while holding a lock on its house, so two
// requests for the same house are serialized between the overlap check and
// the insert.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkDatesFree(tx, booking); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(booking).Error
	})
	return translate(err, fmt.Sprintf("No house with the id of %d", booking.HouseID))
}

// Update saves the booking under the same lock as Create.
func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkDatesFree(tx, booking); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(booking).Error
	})
	return translate(err, fmt.Sprintf("No booking with the id of %d", booking.ID))
}

func checkDatesFree(tx *gorm.DB, booking *models.Booking) error {
	var house models.House
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&house, booking.HouseID).Error
	if err != nil {
		return err
	}
	if !booking.Status.IsActive() {
		return nil
	}

	var n int64
	err = tx.Model(&models.Booking{}).
		Scopes(overlapping(booking.HouseID, booking.CheckIn, booking.CheckOut, booking.ID)).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrDatesTaken
	}
	return nil
}

// FindByID loads a booking. The house is populated only when withHouse is set.
func (r *BookingRepository) FindByID(ctx context.Context, id uint, withHouse bool) (*models.Booking, error) {
	q := r.db.WithContext(ctx)
	if withHouse {
		q = q.Preload("House")
	}

	var booking models.Booking
	if err := q.First(&booking, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("No booking with the id of %d", id))
	}
	return &booking, nil
}

// ListByHouse returns every booking of the house, earliest stay first.
func (r *BookingRepository) ListByHouse(ctx context.Context, houseID uint) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := r.db.WithContext(ctx).
		Where("house_id = ?", houseID).
		Order("check_in ASC").
		Find(&bookings).Error
	return bookings, translate(err, "")
}

// List pages through bookings, newest first. A nil userID lists everyone's.
func (r *BookingRepository) List(ctx context.Context, userID *uint, page utils.Pagination) ([]models.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Booking{}).Scopes(ownedBy(userID)).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "")
	}

	bookings := []models.Booking{}
	err := r.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Preload("House").
		Order("created_at DESC").
		Order("id DESC").
		Offset(page.Skip).
		Limit(page.Limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, translate(err, "")
	}
	return bookings, total, nil
}

func (r *BookingRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Booking{}, id)
	if res.Error != nil {
		return translate(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, fmt.Sprintf("No booking with the id of %d", id))
	}
	return nil
}

// overlapping matches active bookings of a house whose stay intersects the
// half-open range [checkIn, checkOut).
func overlapping(houseID uint, checkIn, checkOut time.Time, excludeID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("house_id = ?", houseID).
			Where("status IN ?", models.ActiveBookingStatuses()).
			Where("check_in < ? AND check_out > ?", checkOut, checkIn)
		if excludeID != 0 {
			db = db.Where("id <> ?", excludeID)
		}
		return db
	}
}

func ownedBy(userID *uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if userID == nil {
			return db
		}
		return db.Where("user_id = ?", *userID)
	}
}
