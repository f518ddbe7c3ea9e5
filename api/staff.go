package api

import (
	"net/http"

	"github.com/Domenick1991/seatflow/internal/notify"
	"github.com/Domenick1991/seatflow/internal/service/booking"
	"github.com/Domenick1991/seatflow/internal/service/flights"
	"github.com/gin-gonic/gin"
)

// StaffHandler serves administrative routes. Mount it behind RequireStaff.
type StaffHandler struct {
	flights       flights.FlightUseCase
	bookings      booking.BookingUseCase
	announcements notify.UseCase
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type reassignRequest struct {
	SeatID int64 `json:"seat_id" binding:"required"`
}

func NewStaffHandler(flights flights.FlightUseCase, bookings booking.BookingUseCase, announcements notify.UseCase) *StaffHandler {
	return &StaffHandler{flights: flights, bookings: bookings, announcements: announcements}
}

func (h *StaffHandler) Register(router *gin.RouterGroup) {
	router.POST("/flights", h.createFlight)
	router.DELETE("/flights/:id", h.deleteFlight)
	router.PUT("/flights/:id/status", h.updateStatus)
	router.PUT("/flights/:id/gate", h.updateGate)
	router.PUT("/flights/:id/schedule", h.updateSchedule)
	router.PUT("/flights/:id/seats/:seatId/pricing", h.updateSeatPricing)

	router.GET("/bookings", h.listBookings)
	router.POST("/bookings/:id/cancel", h.cancelBooking)
	router.PUT("/bookings/:id/seat", h.reassignSeat)

	router.GET("/announcements", h.listAnnouncements)
	router.POST("/announcements", h.createAnnouncement)
}

func (h *StaffHandler) createFlight(c *gin.Context) {
	var req flights.CreateFlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	flight, err := h.flights.CreateFlight(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

func (h *StaffHandler) deleteFlight(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.flights.DeleteFlight(c.Request.Context(), callerFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StaffHandler) updateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	flight, err := h.flights.UpdateStatus(c.Request.Context(), callerFrom(c), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *StaffHandler) updateGate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req flights.GateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	flight, err := h.flights.UpdateGate(c.Request.Context(), callerFrom(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *StaffHandler) updateSchedule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req flights.ScheduleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	flight, err := h.flights.UpdateSchedule(c.Request.Context(), callerFrom(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *StaffHandler) updateSeatPricing(c *gin.Context) {
	flightID, seatID, ok := seatParams(c)
	if !ok {
		return
	}
	var req flights.SeatPricingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	seat, err := h.flights.UpdateSeatPricing(c.Request.Context(), callerFrom(c), flightID, seatID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, seat)
}

func (h *StaffHandler) listBookings(c *gin.Context) {
	list, err := h.bookings.ListAllBookings(c.Request.Context(), callerFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *StaffHandler) cancelBooking(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	b, err := h.bookings.CancelBookingAsStaff(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *StaffHandler) reassignSeat(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req reassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	details, err := h.bookings.ReassignSeat(c.Request.Context(), callerFrom(c), id, req.SeatID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *StaffHandler) listAnnouncements(c *gin.Context) {
	list, err := h.announcements.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *StaffHandler) createAnnouncement(c *gin.Context) {
	var req notify.CreateAnnouncementInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	a, err := h.announcements.CreateAnnouncement(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}
