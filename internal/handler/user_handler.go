package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"payauth/internal/auth"
	"payauth/internal/errors"
	"payauth/internal/repository"
	"payauth/internal/service"
)

// ContextKeyClaims is where the JWT middleware stores *auth.Claims.
const ContextKeyClaims = "user"

// UserHandler serves the authenticated user's profile.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Me godoc
// @Summary Current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Profile
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	claims, ok := c.Get(ContextKeyClaims).(*auth.Claims)
	if !ok {
		return errorResponse(errors.Auth("invalid token"))
	}

	profile, err := h.svc.GetProfile(c.Request().Context(), claims.UserID)
	if err != nil {
		if stderrors.Is(err, repository.ErrUserNotFound) {
			return errorResponse(errors.Auth("invalid token"))
		}
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, profile)
}
