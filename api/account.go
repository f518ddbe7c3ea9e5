package api

import (
	"net/http"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/notify"
	"github.com/Domenick1991/seatflow/internal/service/booking"
	"github.com/Domenick1991/seatflow/internal/service/payment"
	"github.com/gin-gonic/gin"
)

// AccountHandler serves the caller's own profile, payments and announcements.
type AccountHandler struct {
	profiles      booking.ProfileUseCase
	payments      payment.PaymentUseCase
	announcements notify.UseCase
}

func NewAccountHandler(profiles booking.ProfileUseCase, payments payment.PaymentUseCase, announcements notify.UseCase) *AccountHandler {
	return &AccountHandler{profiles: profiles, payments: payments, announcements: announcements}
}

func (h *AccountHandler) Register(router *gin.RouterGroup) {
	router.GET("/profile", h.getProfile)
	router.PUT("/profile", h.saveProfile)
	router.GET("/payments", h.paymentHistory)
	router.GET("/announcements", h.listAnnouncements)
}

func (h *AccountHandler) getProfile(c *gin.Context) {
	p, err := h.profiles.GetProfile(c.Request.Context(), callerFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *AccountHandler) saveProfile(c *gin.Context) {
	var req domain.PassengerData
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.profiles.SaveProfile(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *AccountHandler) paymentHistory(c *gin.Context) {
	list, err := h.payments.PaymentHistory(c.Request.Context(), callerFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AccountHandler) listAnnouncements(c *gin.Context) {
	list, err := h.announcements.ListForUser(c.Request.Context(), callerFrom(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
