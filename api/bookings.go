package api

import (
	"net/http"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/service/booking"
	"github.com/Domenick1991/seatflow/internal/service/checkin"
	"github.com/Domenick1991/seatflow/internal/service/payment"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookings booking.BookingUseCase
	payments payment.PaymentUseCase
	checkIns checkin.CheckInUseCase
}

type createBookingRequest struct {
	FlightID  int64                 `json:"flight_id" binding:"required"`
	SeatID    int64                 `json:"seat_id" binding:"required"`
	Passenger *domain.PassengerData `json:"passenger"`
}

type payRequest struct {
	Method string `json:"method" binding:"required"`
}

func NewBookingHandler(bookings booking.BookingUseCase, payments payment.PaymentUseCase, checkIns checkin.CheckInUseCase) *BookingHandler {
	return &BookingHandler{bookings: bookings, payments: payments, checkIns: checkIns}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.listMine)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.cancel)
	router.POST("/:id/payment", h.pay)
	router.POST("/:id/check-in", h.checkIn)
	router.GET("/:id/boarding-pass", h.boardingPass)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	details, err := h.bookings.CreateBooking(c.Request.Context(), callerFrom(c), booking.CreateBookingInput{
		FlightID:  req.FlightID,
		SeatID:    req.SeatID,
		Passenger: req.Passenger,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, details)
}

func (h *BookingHandler) listMine(c *gin.Context) {
	list, err := h.bookings.ListMyBookings(c.Request.Context(), callerFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	details, err := h.bookings.GetBooking(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	b, err := h.bookings.CancelBooking(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) pay(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.payments.Pay(c.Request.Context(), callerFrom(c), id, req.Method)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *BookingHandler) checkIn(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	record, err := h.checkIns.CheckIn(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *BookingHandler) boardingPass(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	pass, err := h.checkIns.GetBoardingPass(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pass)
}
