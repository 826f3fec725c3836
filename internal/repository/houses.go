package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chachabrian/staybook-backend/internal/models"
	"github.com/chachabrian/staybook-backend/pkg/utils"
)

type HouseRepository struct {
	db *gorm.DB
}

func NewHouseRepository(db *gorm.DB) *HouseRepository {
	return &HouseRepository{db: db}
}

// Search returns one page of houses matching f and the total match count.
func (r *HouseRepository) Search(ctx context.Context, f models.HouseFilter) ([]models.House, int64, error) {
	page := utils.NewPagination(f.Page, f.Limit)

	var total int64
	err := r.db.WithContext(ctx).Model(&models.House{}).Scopes(houseFilter(f)).Count(&total).Error
	if err != nil {
		return nil, 0, translate(err, "")
	}

	houses := []models.House{}
	err = r.db.WithContext(ctx).
		Scopes(houseFilter(f), houseOrder(f.Sort)).
		Offset(page.Skip).
		Limit(page.Limit).
		Find(&houses).Error
	if err != nil {
		return nil, 0, translate(err, "")
	}
	return houses, total, nil
}

// WithinBox returns houses whose coordinates fall inside box.
func (r *HouseRepository) WithinBox(ctx context.Context, box utils.BoundingBox) ([]models.House, error) {
	houses := []models.House{}
	err := r.db.WithContext(ctx).Scopes(inBox(box)).Find(&houses).Error
	return houses, translate(err, "")
}

func (r *HouseRepository) FindByID(ctx context.Context, id uint) (*models.House, error) {
	var house models.House
	if err := r.db.WithContext(ctx).First(&house, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("No house with the id of %d", id))
	}
	return &house, nil
}

func (r *HouseRepository) Create(ctx context.Context, house *models.House) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(house).Error, "")
}

func (r *HouseRepository) Update(ctx context.Context, house *models.House) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(house).Error, "")
}

// Delete removes the house. Its bookings go with it through the foreign key.
func (r *HouseRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.House{}, id)
	if res.Error != nil {
		return translate(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, fmt.Sprintf("No house with the id of %d", id))
	}
	return nil
}

func houseFilter(f models.HouseFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = numberRange(db, "price", f.Price)
		db = numberRange(db, "bedrooms", f.Bedrooms)
		db = numberRange(db, "bathrooms", f.Bathrooms)

		if f.Available != nil {
			db = db.Where("is_available = ?", *f.Available)
		}
		if f.OwnerID != nil {
			db = db.Where("owner_id = ?", *f.OwnerID)
		}
		if f.City != "" {
			db = db.Where("LOWER(location_city) = LOWER(?)", f.City)
		}
		if f.Location != "" {
			like := "%" + escapeLike(f.Location) + "%"
			db = db.Where(
				"(location_address ILIKE ? OR location_city ILIKE ? OR location_state ILIKE ? OR location_zip_code ILIKE ?)",
				like, like, like, like,
			)
		}
		return db
	}
}

func numberRange(db *gorm.DB, column string, r models.NumberRange) *gorm.DB {
	if r.Gt != nil {
		db = db.Where(clause.Gt{Column: column, Value: *r.Gt})
	}
	if r.Gte != nil {
		db = db.Where(clause.Gte{Column: column, Value: *r.Gte})
	}
	if r.Lt != nil {
		db = db.Where(clause.Lt{Column: column, Value: *r.Lt})
	}
	if r.Lte != nil {
		db = db.Where(clause.Lte{Column: column, Value: *r.Lte})
	}
	return db
}

// houseOrder sorts by the requested columns, newest first when none are
// given. Columns must already be whitelisted.
func houseOrder(sort []models.SortField) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(sort) == 0 {
			sort = []models.SortField{{Column: "created_at", Desc: true}}
		}
		for _, s := range sort {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Column}, Desc: s.Desc})
		}
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true})
	}
}

func inBox(box utils.BoundingBox) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Where("location_lat BETWEEN ? AND ?", box.SouthWest.Lat, box.NorthEast.Lat).
			Where("location_lng BETWEEN ? AND ?", box.SouthWest.Lng, box.NorthEast.Lng)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
