package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/gin-gonic/gin"
)

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindNotAuthorized:
		return http.StatusForbidden
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindPolicy:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with the context the caller needs to react to it.
func writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	if kind == domain.KindInternal {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error", "code": domain.CodeOf(err)})
		return
	}

	body := gin.H{"error": err.Error(), "code": domain.CodeOf(err)}

	var conflict *domain.BookingConflictError
	if errors.As(err, &conflict) {
		body["booking_id"] = conflict.BookingID
		body["reference"] = conflict.Reference
	}
	var window *domain.CheckInWindowError
	if errors.As(err, &window) {
		body["hours_until_departure"] = math.Round(window.HoursUntilDeparture*100) / 100
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		body["fields"] = verr.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg, "code": domain.ErrInvalidInput.Code()})
}

// idParam parses a positive int64 path parameter, answering 400 when it is not one.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
