package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"renewtrack.com/renewtrack/core"
)

// RespondError translates engine error kinds onto HTTP statuses. Anything
// unrecognized is a storage-level failure and reported as a 500 with the
// wrapped message intact.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, core.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, core.ErrMailProvider):
		status = http.StatusBadGateway
	}
	c.JSON(status, NewErrorResponse(err.Error()))
}
