package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Location is stored inline on the houses table with a location_ prefix.
type Location struct {
	Lat     float64 `gorm:"column:lat;index" json:"lat"`
	Lng     float64 `gorm:"column:lng;index" json:"lng"`
	Address string  `gorm:"column:address" json:"address"`
	City    string  `gorm:"column:city;index" json:"city"`
	State   string  `gorm:"column:state" json:"state"`
	ZipCode string  `gorm:"column:zip_code" json:"zipCode"`
}

func (l Location) HasCoordinates() bool {
	return l.Lat != 0 || l.Lng != 0
}

type House struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Title       string                      `gorm:"not null" json:"title" validate:"required,max=100"`
	Description string                      `gorm:"type:text;not null" json:"description" validate:"required,max=1000"`
	Price       float64                     `gorm:"not null;index" json:"price" validate:"gt=0"`
	Bedrooms    int                         `gorm:"not null;default:0;index" json:"bedrooms" validate:"gte=0"`
	Bathrooms   int                         `gorm:"not null;default:0" json:"bathrooms" validate:"gte=0"`
	Images      datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"images"`
	Amenities   datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"amenities"`
	Photo       string                      `json:"photo,omitempty"`
	OwnerID     uint                        `gorm:"not null;index" json:"owner"`
	Owner       *User                       `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	IsAvailable bool                        `gorm:"not null;default:true" json:"isAvailable"`
	Location    Location                    `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	CreatedAt   time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

// TableName specifies the table name
func (House) TableName() string {
	return "houses"
}

func (h *House) Validate() error {
	return validateStruct(h)
}

// OwnedBy reports whether userID listed the house.
func (h *House) OwnedBy(userID uint) bool {
	return h.OwnerID == userID
}

// NumberRange is an optional set of bounds on a numeric column. Nil bounds
// are ignored.
type NumberRange struct {
	Gt  *float64
	Gte *float64
	Lt  *float64
	Lte *float64
}

func (r NumberRange) IsZero() bool {
	return r.Gt == nil && r.Gte == nil && r.Lt == nil && r.Lte == nil
}

func (r NumberRange) Contains(v float64) bool {
	switch {
	case r.Gt != nil && !(v > *r.Gt):
		return false
	case r.Gte != nil && !(v >= *r.Gte):
		return false
	case r.Lt != nil && !(v < *r.Lt):
		return false
	case r.Lte != nil && !(v <= *r.Lte):
		return false
	}
	return true
}

// SortField orders by a whitelisted houses column.
type SortField struct {
	Column string
	Desc   bool
}

// HouseSortColumns maps the public sort keys to columns.
var HouseSortColumns = map[string]string{
	"price":     "price",
	"bedrooms":  "bedrooms",
	"bathrooms": "bathrooms",
	"title":     "title",
	"createdAt": "created_at",
}

// HouseFilter is the typed search criteria for listing houses.
type HouseFilter struct {
	Price     NumberRange
	Bedrooms  NumberRange
	Bathrooms NumberRange
	// Location matches address, city, state or zip code, case-insensitively.
	Location  string
	City      string
	Available *bool
	OwnerID   *uint
	Sort      []SortField
	Page      int
	Limit     int
}

// Matches applies the filter to an in-memory house.
func (f HouseFilter) Matches(h House) bool {
	if !f.Price.Contains(h.Price) ||
		!f.Bedrooms.Contains(float64(h.Bedrooms)) ||
		!f.Bathrooms.Contains(float64(h.Bathrooms)) {
		return false
	}
	if f.Available != nil && h.IsAvailable != *f.Available {
		return false
	}
	if f.OwnerID != nil && h.OwnerID != *f.OwnerID {
		return false
	}
	if f.City != "" && !strings.EqualFold(h.Location.City, f.City) {
		return false
	}
	if f.Location != "" {
		needle := strings.ToLower(f.Location)
		haystack := strings.ToLower(strings.Join([]string{
			h.Location.Address, h.Location.City, h.Location.State, h.Location.ZipCode,
		}, " "))
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
