package api

import (
	"net/http"

	"github.com/Domenick1991/seatflow/internal/notify"
	"github.com/Domenick1991/seatflow/internal/service/booking"
	"github.com/Domenick1991/seatflow/internal/service/checkin"
	"github.com/Domenick1991/seatflow/internal/service/flights"
	"github.com/Domenick1991/seatflow/internal/service/payment"
	"github.com/Domenick1991/seatflow/internal/service/seats"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Flights       flights.FlightUseCase
	Seats         seats.UseCase
	Bookings      booking.BookingUseCase
	Profiles      booking.ProfileUseCase
	Payments      payment.PaymentUseCase
	CheckIns      checkin.CheckInUseCase
	Announcements notify.UseCase
}

// NewRouter builds the gin engine serving /api/v1.
func NewRouter(svc Services, auth Authenticator, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(log))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	authn := Authenticate(auth)

	NewFlightHandler(svc.Flights, svc.Seats).Register(v1.Group("/flights"), authn)

	me := v1.Group("", authn)
	NewBookingHandler(svc.Bookings, svc.Payments, svc.CheckIns).Register(me.Group("/bookings"))
	NewAccountHandler(svc.Profiles, svc.Payments, svc.Announcements).Register(me.Group("/me"))

	NewStaffHandler(svc.Flights, svc.Bookings, svc.Announcements).Register(v1.Group("/staff", authn, RequireStaff()))
	return r
}
