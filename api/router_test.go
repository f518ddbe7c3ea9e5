package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/seatflow/internal/domain"
	"github.com/Domenick1991/seatflow/internal/notify"
	"github.com/Domenick1991/seatflow/internal/service/flights"
	"github.com/Domenick1991/seatflow/internal/service/seats"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var staff = domain.Caller{UserID: 99, Role: domain.RoleStaff}

type routerMocks struct {
	flights       *MockFlightUseCase
	seats         *MockSeatUseCase
	bookings      *MockBookingUseCase
	profiles      *MockProfileUseCase
	payments      *MockPaymentUseCase
	checkIns      *MockCheckInUseCase
	announcements *MockNotifyUseCase
}

func newTestRouter(t *testing.T) (*gin.Engine, *routerMocks, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := &routerMocks{
		flights:       &MockFlightUseCase{},
		seats:         &MockSeatUseCase{},
		bookings:      &MockBookingUseCase{},
		profiles:      &MockProfileUseCase{},
		payments:      &MockPaymentUseCase{},
		checkIns:      &MockCheckInUseCase{},
		announcements: &MockNotifyUseCase{},
	}
	core, logs := observer.New(zap.InfoLevel)
	auth := tokenAuth{"passenger-token": passenger, "staff-token": staff}
	r := NewRouter(Services{
		Flights:       m.flights,
		Seats:         m.seats,
		Bookings:      m.bookings,
		Profiles:      m.profiles,
		Payments:      m.payments,
		CheckIns:      m.checkIns,
		Announcements: m.announcements,
	}, auth, zap.New(core))
	return r, m, logs
}

func serve(r http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_ping(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := serve(r, "GET", "/ping", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_requestIDPropagated(t *testing.T) {
	r, m, logs := newTestRouter(t)
	m.flights.On("List", mock.Anything).Return([]domain.Flight{{ID: 1, FlightNumber: "SU100"}}, nil)

	req := httptest.NewRequest("GET", "/api/v1/flights", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "/api/v1/flights", entries[0].ContextMap()["path"])
}

func TestRouter_authentication(t *testing.T) {
	r, m, _ := newTestRouter(t)

	t.Run("missing token", func(t *testing.T) {
		w := serve(r, "GET", "/api/v1/bookings", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		w := serve(r, "GET", "/api/v1/me/profile", "forged", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("hold needs a token", func(t *testing.T) {
		w := serve(r, "POST", "/api/v1/flights/1/seats/2/hold", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		m.seats.AssertNotCalled(t, "HoldSeat", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("seat map is public", func(t *testing.T) {
		m.seats.On("ListSeats", mock.Anything, int64(1)).Return([]seats.SeatView{{Designator: "1A", PriceCents: 20000}}, nil).Once()
		w := serve(r, "GET", "/api/v1/flights/1/seats", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRouter_staffOnly(t *testing.T) {
	r, m, _ := newTestRouter(t)

	w := serve(r, "GET", "/api/v1/staff/bookings", "passenger-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	m.bookings.AssertNotCalled(t, "ListAllBookings", mock.Anything, mock.Anything)

	m.bookings.On("ListAllBookings", mock.Anything, staff).Return([]domain.BookingDetails{}, nil)
	w = serve(r, "GET", "/api/v1/staff/bookings", "staff-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	m.bookings.AssertExpectations(t)
}

func TestRouter_seatHold(t *testing.T) {
	r, m, _ := newTestRouter(t)
	expires := time.Date(2026, 3, 1, 9, 10, 0, 0, time.UTC)

	m.seats.On("HoldSeat", mock.Anything, passenger, int64(1), int64(2)).
		Return(&seats.Hold{FlightID: 1, SeatID: 2, ExpiresAt: expires}, nil)
	m.seats.On("ReleaseSeatHold", mock.Anything, passenger, int64(1), int64(3)).
		Return(&domain.BookingConflictError{Err: domain.ErrConflictingBooking, BookingID: 8, Reference: "QW12ER"})
	m.seats.On("ReleaseSeatHold", mock.Anything, passenger, int64(1), int64(2)).Return(nil)

	w := serve(r, "POST", "/api/v1/flights/1/seats/2/hold", "passenger-token", nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = serve(r, "DELETE", "/api/v1/flights/1/seats/3/hold", "passenger-token", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "QW12ER", decode(t, w)["reference"])

	w = serve(r, "DELETE", "/api/v1/flights/1/seats/2/hold", "passenger-token", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	m.seats.AssertExpectations(t)
}

func TestRouter_staffFlightOperations(t *testing.T) {
	r, m, _ := newTestRouter(t)

	m.flights.On("UpdateStatus", mock.Anything, staff, int64(4), "DELAYED").
		Return(&domain.Flight{ID: 4, Status: domain.FlightStatusDelayed}, nil)
	m.flights.On("UpdateGate", mock.Anything, staff, int64(4), flights.GateInput{Gate: "21", Terminal: "C"}).
		Return(&domain.Flight{ID: 4, Gate: "21", Terminal: "C"}, nil)
	m.flights.On("UpdateStatus", mock.Anything, staff, int64(4), "TAXIING").
		Return(nil, domain.ErrInvalidFlightStatus)

	w := serve(r, "PUT", "/api/v1/staff/flights/4/status", "staff-token", gin.H{"status": "DELAYED"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DELAYED", decode(t, w)["status"])

	w = serve(r, "PUT", "/api/v1/staff/flights/4/gate", "staff-token", gin.H{"gate": "21", "terminal": "C"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, "PUT", "/api/v1/staff/flights/4/status", "staff-token", gin.H{"status": "TAXIING"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FLIGHT_STATUS", decode(t, w)["code"])

	m.flights.AssertExpectations(t)
}

func TestRouter_staffReassignSeat(t *testing.T) {
	r, m, _ := newTestRouter(t)

	m.bookings.On("ReassignSeat", mock.Anything, staff, int64(5), int64(60)).Return(nil, domain.ErrSeatTaken)

	w := serve(r, "PUT", "/api/v1/staff/bookings/5/seat", "staff-token", gin.H{"seat_id": 60})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SEAT_TAKEN", decode(t, w)["code"])
}

func TestRouter_announcements(t *testing.T) {
	r, m, _ := newTestRouter(t)
	flightID := int64(4)

	m.announcements.On("ListForUser", mock.Anything, passenger.UserID).
		Return([]domain.Announcement{{ID: 1, FlightID: &flightID, Type: domain.AnnouncementGateChange, Title: "Gate change"}}, nil)
	m.announcements.On("CreateAnnouncement", mock.Anything, staff, notify.CreateAnnouncementInput{Title: "Welcome", Message: "Hello"}).
		Return(&domain.Announcement{ID: 2, Type: domain.AnnouncementGeneral, Title: "Welcome"}, nil)

	w := serve(r, "GET", "/api/v1/me/announcements", "passenger-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var list []domain.Announcement
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, domain.AnnouncementGateChange, list[0].Type)

	w = serve(r, "POST", "/api/v1/staff/announcements", "staff-token", gin.H{"title": "Welcome", "message": "Hello"})
	assert.Equal(t, http.StatusCreated, w.Code)
	m.announcements.AssertExpectations(t)
}

func TestStatusFor(t *testing.T) {
	cases := map[domain.Kind]int{
		domain.KindValidation:    http.StatusBadRequest,
		domain.KindNotFound:      http.StatusNotFound,
		domain.KindNotAuthorized: http.StatusForbidden,
		domain.KindConflict:      http.StatusConflict,
		domain.KindPolicy:        http.StatusUnprocessableEntity,
		domain.KindInternal:      http.StatusInternalServerError,
	}
	for kind, want := range cases {
		t.Run(kind.String(), func(t *testing.T) {
			assert.Equal(t, want, statusFor(kind))
		})
	}
}
