package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/altamedica/clinic-app/models"
	"github.com/altamedica/clinic-app/services"
	"github.com/altamedica/clinic-app/utils"
)

// currentActor loads the authenticated user from the claims the auth
// middleware stored on the context. The branch scope of every call comes
// from this record, never from the request payload.
func currentActor(c *gin.Context, db *gorm.DB) (*models.User, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return nil, false
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unknown user"))
		return nil, false
	}
	return &user, true
}

// respondServiceError maps the service failure classes onto HTTP codes.
// Unknown errors are logged with context and surfaced as a generic 500;
// raw internal messages never reach the client.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrValidation):
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
	case errors.Is(err, services.ErrForbidden):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.Is(err, services.ErrStateConflict):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.ErrorLogger.Printf("Unhandled service error on %s %s: %v",
			c.Request.Method, c.Request.URL.Path, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
	}
}
