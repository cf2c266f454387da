package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"velox-backend/internal/shared/server/middleware"
	"velox-backend/internal/shared/server/respond"
)

// registerMeRoutes attaches /me, which echoes the identity resolved by the
// auth middleware.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

func meHandler(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	response := gin.H{"userId": userID}
	if email := middleware.UserEmailFromContext(c); email != "" {
		response["email"] = email
	}
	if name := middleware.UserNameFromContext(c); name != "" {
		response["name"] = name
	}
	respond.OK(c, response)
}
