package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/staybook-backend/internal/apperror"
	"github.com/chachabrian/staybook-backend/internal/services"
)

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateDetailsInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
}

type UpdatePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// bindJSON decodes the body into dst and answers 400 when it is malformed.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperror.Validation("Invalid request body: %s", err.Error()))
		return false
	}
	return true
}

func sendSession(c *gin.Context, status int, session *services.Session) {
	c.JSON(status, gin.H{
		"success": true,
		"token":   session.Token,
		"data":    session.User,
	})
}

func Register(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if !bindJSON(c, &input) {
			return
		}

		session, err := accounts.Register(c.Request.Context(), input.Name, input.Email, input.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		sendSession(c, http.StatusCreated, session)
	}
}

func Login(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if !bindJSON(c, &input) {
			return
		}

		session, err := accounts.Login(c.Request.Context(), input.Email, input.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		sendSession(c, http.StatusOK, session)
	}
}

// GetMe returns the authenticated user.
func GetMe(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := accounts.Me(c.Request.Context(), callerFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, user)
	}
}

func UpdateDetails(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateDetailsInput
		if !bindJSON(c, &input) {
			return
		}

		user, err := accounts.UpdateDetails(c.Request.Context(), callerFrom(c), input.Name, input.Email)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, user)
	}
}

// UpdatePassword checks the current password and hands back a new token.
func UpdatePassword(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdatePasswordInput
		if !bindJSON(c, &input) {
			return
		}

		session, err := accounts.UpdatePassword(c.Request.Context(), callerFrom(c), input.CurrentPassword, input.NewPassword)
		if err != nil {
			respondError(c, err)
			return
		}
		sendSession(c, http.StatusOK, session)
	}
}
