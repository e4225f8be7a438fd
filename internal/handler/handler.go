package handler

import (
	"github.com/labstack/echo/v4"

	"payauth/internal/errors"
)

// errorResponse maps a domain error onto an echo.HTTPError with a JSON body.
// The cause is kept as the internal error for logging and never sent to clients.
func errorResponse(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

// MessageResponse is a plain confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}
