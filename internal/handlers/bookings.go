package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/staybook-backend/internal/apperror"
	"github.com/chachabrian/staybook-backend/internal/models"
	"github.com/chachabrian/staybook-backend/internal/services"
	"github.com/chachabrian/staybook-backend/pkg/utils"
)

type BookingInput struct {
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
}

// BookingUpdateInput lists the fields a client may change. House and user
// are not among them.
type BookingUpdateInput struct {
	Status        *models.BookingStatus `json:"status"`
	PaymentStatus *models.PaymentStatus `json:"paymentStatus"`
	CheckIn       *string               `json:"checkIn"`
	CheckOut      *string               `json:"checkOut"`
	TotalPrice    *float64              `json:"totalPrice"`
}

func parseStay(checkIn, checkOut string) (time.Time, time.Time, error) {
	if checkIn == "" || checkOut == "" {
		return time.Time{}, time.Time{}, apperror.Validation("Please add a check-in and check-out date")
	}
	in, err := parseDateParam("checkIn", checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	out, err := parseDateParam("checkOut", checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return in, out, nil
}

func parseDateParam(name, raw string) (time.Time, error) {
	t, err := utils.ParseDate(raw)
	if err != nil {
		return time.Time{}, apperror.Validation("%s must be a date (YYYY-MM-DD) or an RFC 3339 timestamp", name)
	}
	return t, nil
}

// GetBookings lists the caller's bookings, or all of them for admins.
func GetBookings(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.GetPagination(c)

		result, err := bookings.List(c.Request.Context(), callerFrom(c), nil, page)
		if err != nil {
			respondError(c, err)
			return
		}

		links := page.Links(result.Total)
		respondList(c, result.Bookings, len(result.Bookings), result.Total, &links)
	}
}

// GetHouseBookings lists every booking of one house.
func GetHouseBookings(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		houseID, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}

		result, err := bookings.List(c.Request.Context(), callerFrom(c), &houseID, utils.Pagination{})
		if err != nil {
			respondError(c, err)
			return
		}
		respondList(c, result.Bookings, len(result.Bookings), result.Total, nil)
	}
}

func CreateBooking(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		houseID, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}

		var input BookingInput
		if !bindJSON(c, &input) {
			return
		}
		checkIn, checkOut, err := parseStay(input.CheckIn, input.CheckOut)
		if err != nil {
			respondError(c, err)
			return
		}

		booking, err := bookings.Create(c.Request.Context(), callerFrom(c), houseID, checkIn, checkOut)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusCreated, booking)
	}
}

// GetBooking returns one booking with its house populated.
func GetBooking(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}

		booking, err := bookings.Read(c.Request.Context(), callerFrom(c), id, true)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, booking)
	}
}

func UpdateBooking(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}

		var input BookingUpdateInput
		if !bindJSON(c, &input) {
			return
		}

		patch := services.BookingPatch{
			Status:        input.Status,
			PaymentStatus: input.PaymentStatus,
			TotalPrice:    input.TotalPrice,
		}
		if input.CheckIn != nil {
			t, err := parseDateParam("checkIn", *input.CheckIn)
			if err != nil {
				respondError(c, err)
				return
			}
			patch.CheckIn = &t
		}
		if input.CheckOut != nil {
			t, err := parseDateParam("checkOut", *input.CheckOut)
			if err != nil {
				respondError(c, err)
				return
			}
			patch.CheckOut = &t
		}

		booking, err := bookings.Update(c.Request.Context(), callerFrom(c), id, patch)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, booking)
	}
}

func DeleteBooking(bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}

		if err := bookings.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, gin.H{})
	}
}
