package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/chachabrian/staybook-backend/internal/middleware"
	"github.com/chachabrian/staybook-backend/internal/models"
	"github.com/chachabrian/staybook-backend/internal/services"
	"github.com/chachabrian/staybook-backend/pkg/utils"
)

// Dependencies are the services the routes are served by. Audit may be nil
// when no audit store is configured.
type Dependencies struct {
	Tokens   *utils.TokenManager
	Accounts *services.AccountService
	Houses   *services.HouseService
	Bookings *services.BookingService
	Hub      *services.Hub
	Audit    AuditLog
}

// RegisterRoutes mounts the API under api.
func RegisterRoutes(api *gin.RouterGroup, deps Dependencies) {
	auth := middleware.AuthMiddleware(deps.Tokens)
	adminOnly := middleware.Authorize(models.RoleAdmin)

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", Register(deps.Accounts))
		authRoutes.POST("/login", Login(deps.Accounts))
		authRoutes.GET("/me", auth, GetMe(deps.Accounts))
		authRoutes.PUT("/updatedetails", auth, UpdateDetails(deps.Accounts))
		authRoutes.PUT("/updatepassword", auth, UpdatePassword(deps.Accounts))
	}

	houses := api.Group("/houses")
	{
		houses.GET("", GetHouses(deps.Houses))
		houses.POST("", auth, adminOnly, CreateHouse(deps.Houses))
		houses.GET("/radius/:zipcode/:distance", GetHousesInRadius(deps.Houses))
		houses.GET("/:id", GetHouse(deps.Houses))
		houses.PUT("/:id", auth, UpdateHouse(deps.Houses))
		houses.DELETE("/:id", auth, DeleteHouse(deps.Houses))
		houses.PUT("/:id/photo", auth, adminOnly, UploadHousePhoto(deps.Houses))
		houses.GET("/:id/availability", GetHouseAvailability(deps.Bookings))

		// :id is the house id; gin needs one wildcard name per segment.
		houses.GET("/:id/bookings", auth, GetHouseBookings(deps.Bookings))
		houses.POST("/:id/bookings", auth, CreateBooking(deps.Bookings))
	}

	bookings := api.Group("/bookings", auth)
	{
		bookings.GET("", GetBookings(deps.Bookings))
		bookings.GET("/:id", GetBooking(deps.Bookings))
		bookings.PUT("/:id", UpdateBooking(deps.Bookings))
		bookings.DELETE("/:id", DeleteBooking(deps.Bookings))
	}

	if deps.Hub != nil {
		api.GET("/ws", auth, WebSocketHandler(deps.Hub))
	}
	if deps.Audit != nil {
		api.GET("/audit/:resource/:id", auth, adminOnly, GetAuditHistory(deps.Audit))
	}
}
