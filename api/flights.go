package api

import (
	"net/http"

	"github.com/Domenick1991/seatflow/internal/service/flights"
	"github.com/Domenick1991/seatflow/internal/service/seats"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	flights flights.FlightUseCase
	seats   seats.UseCase
}

func NewFlightHandler(flights flights.FlightUseCase, seats seats.UseCase) *FlightHandler {
	return &FlightHandler{flights: flights, seats: seats}
}

// Register mounts the public flight routes. Seat holds additionally require auth.
func (h *FlightHandler) Register(router *gin.RouterGroup, auth gin.HandlerFunc) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/seats", h.listSeats)
	router.GET("/:id/seats/:seatId", h.getSeat)
	router.POST("/:id/seats/:seatId/hold", auth, h.hold)
	router.DELETE("/:id/seats/:seatId/hold", auth, h.release)
}

func (h *FlightHandler) list(c *gin.Context) {
	list, err := h.flights.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	flight, err := h.flights.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) listSeats(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	views, err := h.seats.ListSeats(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *FlightHandler) getSeat(c *gin.Context) {
	flightID, seatID, ok := seatParams(c)
	if !ok {
		return
	}
	view, err := h.seats.QuerySeatStatus(c.Request.Context(), flightID, seatID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *FlightHandler) hold(c *gin.Context) {
	flightID, seatID, ok := seatParams(c)
	if !ok {
		return
	}
	hold, err := h.seats.HoldSeat(c.Request.Context(), callerFrom(c), flightID, seatID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, hold)
}

func (h *FlightHandler) release(c *gin.Context) {
	flightID, seatID, ok := seatParams(c)
	if !ok {
		return
	}
	if err := h.seats.ReleaseSeatHold(c.Request.Context(), callerFrom(c), flightID, seatID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func seatParams(c *gin.Context) (int64, int64, bool) {
	flightID, ok := idParam(c, "id")
	if !ok {
		return 0, 0, false
	}
	seatID, ok := idParam(c, "seatId")
	return flightID, seatID, ok
}
