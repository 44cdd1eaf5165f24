package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ErrorCase pairs a sentinel error with the status and message to return
// when an operation fails with it.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError writes the response for the first case whose
// sentinel matches err, or the fallback when none does. Every body carries
// success=false and the request's trace id via ErrorResponse, so handlers
// only declare their taxonomy and never build failure payloads by hand.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	status, message := fallbackStatus, fallbackMessage
	for _, cs := range cases {
		if cs.Err != nil && errors.Is(err, cs.Err) {
			status, message = cs.Status, cs.Message
			break
		}
	}
	c.JSON(status, NewErrorResponse(c, message))
}
