package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/staybook-backend/internal/apperror"
	"github.com/chachabrian/staybook-backend/internal/models"
	"github.com/chachabrian/staybook-backend/internal/services"
	"github.com/chachabrian/staybook-backend/pkg/utils"
)

type HouseInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	Bedrooms    int             `json:"bedrooms"`
	Bathrooms   int             `json:"bathrooms"`
	Images      []string        `json:"images"`
	Amenities   []string        `json:"amenities"`
	IsAvailable *bool           `json:"isAvailable"`
	Location    models.Location `json:"location"`
}

type HouseUpdateInput struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *float64         `json:"price"`
	Bedrooms    *int             `json:"bedrooms"`
	Bathrooms   *int             `json:"bathrooms"`
	Images      *[]string        `json:"images"`
	Amenities   *[]string        `json:"amenities"`
	IsAvailable *bool            `json:"isAvailable"`
	Location    *models.Location `json:"location"`
}

// GetHouses lists houses with filtering, sorting and pagination.
func GetHouses(houses *services.HouseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseHouseFilter(c.Request.URL.Query())
		if err != nil {
			respondError(c, err)
			return
		}

		list, total, err := houses.Search(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}

		links := utils.NewPagination(filter.Page, filter.Limit).Links(total)
		respondList(c, list, len(list), total, &links)
	}
}

func GetHouse(houses *services.HouseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}

		house, err := houses.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, house)
	}
}

// CreateHouse lists a house owned by the caller.
func CreateHouse(houses *services.HouseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input HouseInput
		if !bindJSON(c, &input) {
			return
		}

		house := &models.House{
			Title:       input.Title,
			Description: input.Description,
			Price:       input.Price,
			Bedrooms:    input.Bedrooms,
			Bathrooms:   input.Bathrooms,
			Images:      input.Images,
			Amenities:   input.Amenities,
			IsAvailable: true,
			Location:    input.Location,
		}
		if input.IsAvailable != nil {
			house.IsAvailable = *input.IsAvailable
		}

		created, err := houses.Create(c.Request.Context(), callerFrom(c), house)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusCreated, created)
	}
}

func UpdateHouse(houses *services.HouseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}

		var input HouseUpdateInput
		if !bindJSON(c, &input) {
			return
		}

		house, err := houses.Update(c.Request.Context(), callerFrom(c), id, services.HousePatch{
			Title:       input.Title,
			Description: input.Description,
			Price:       input.Price,
			Bedrooms:    input.Bedrooms,
			Bathrooms:   input.Bathrooms,
			Images:      input.Images,
			Amenities:   input.Amenities,
			IsAvailable: input.IsAvailable,
			Location:    input.Location,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, house)
	}
}

// DeleteHouse removes the house and, through the foreign key, its bookings.
func DeleteHouse(houses *services.HouseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}

		if err := houses.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, gin.H{})
	}
}

// GetHousesInRadius finds houses within distance miles of a zipcode.
func GetHousesInRadius(houses *services.HouseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		distance, err := strconv.ParseFloat(c.Param("distance"), 64)
		if err != nil || distance <= 0 {
			respondError(c, apperror.Validation("Distance must be a positive number"))
			return
		}

		list, err := houses.InRadius(c.Request.Context(), c.Param("zipcode"), distance)
		if err != nil {
			respondError(c, err)
			return
		}
		respondList(c, list, len(list), int64(len(list)), nil)
	}
}

// UploadHousePhoto accepts a multipart "file" field and stores it.
func UploadHousePhoto(houses *services.HouseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}

		header, err := c.FormFile("file")
		if err != nil {
			respondError(c, apperror.Validation("Please upload a file"))
			return
		}
		file, err := header.Open()
		if err != nil {
			respondError(c, apperror.Validation("Please upload a file"))
			return
		}
		defer file.Close()

		house, err := houses.UploadPhoto(c.Request.Context(), callerFrom(c), id, &services.PhotoUpload{
			Filename: header.Filename,
			Size:     header.Size,
			Body:     file,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, house)
	}
}

// GetHouseAvailability reports whether a house is free for checkIn..checkOut.
func GetHouseAvailability(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}

		checkIn, checkOut, err := parseStay(c.Query("checkIn"), c.Query("checkOut"))
		if err != nil {
			respondError(c, err)
			return
		}

		available, err := bookings.Checker().IsAvailable(c.Request.Context(), id, checkIn, checkOut)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, gin.H{"available": available})
	}
}
