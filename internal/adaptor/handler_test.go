package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"library-booking/internal/data/repository"
	"library-booking/internal/dto/request"
	"library-booking/internal/dto/response"
	"library-booking/internal/usecase"
	"library-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubBookingService struct {
	usecase.BookingService
	createErr error
	gotUser   uuid.UUID
	cancelled string
	cancelBy  uuid.UUID
}

func (s *stubBookingService) CreateBooking(_ context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	s.gotUser = userID
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &response.BookingResponse{ID: uuid.NewString(), PlanID: req.PlanID, SeatID: req.SeatID}, nil
}

func (s *stubBookingService) CancelBooking(_ context.Context, adminID uuid.UUID, bookingID string) error {
	s.cancelled = bookingID
	s.cancelBy = adminID
	return nil
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func bookingBody() string {
	return fmt.Sprintf(`{"plan_id":%q,"seat_id":%q,"start_date":"2030-01-10","payment_method":"wallet"}`,
		uuid.NewString(), uuid.NewString())
}

func authed(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(utils.SetUserContext(req.Context(), userID, "member"))
}

func TestCreateBooking_Success(t *testing.T) {
	svc := &stubBookingService{}
	h := NewBookingHandler(svc, nil, zap.NewNop())
	userID := uuid.New()

	req := authed(httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(bookingBody())), userID)
	rec := httptest.NewRecorder()
	h.CreateBooking(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, userID, svc.gotUser)
	assert.True(t, decodeEnvelope(t, rec).Status)
}

func TestCreateBooking_InsufficientBalanceRedirectsToWallet(t *testing.T) {
	svc := &stubBookingService{
		createErr: fmt.Errorf("wallet balance 10.00 is below 1180.00: %w", repository.ErrInsufficientBalance),
	}
	h := NewBookingHandler(svc, nil, zap.NewNop())

	req := authed(httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(bookingBody())), uuid.New())
	rec := httptest.NewRecorder()
	h.CreateBooking(rec, req)

	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Status)
	assert.JSONEq(t, `{"redirect_to":"/wallet"}`, string(env.Errors))
}

func TestCreateBooking_Validation(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{}, nil, zap.NewNop())

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"plan_id":`},
		{"missing seat", fmt.Sprintf(`{"plan_id":%q,"start_date":"2030-01-10","payment_method":"cash"}`, uuid.NewString())},
		{"bad method", fmt.Sprintf(`{"plan_id":%q,"seat_id":%q,"start_date":"2030-01-10","payment_method":"card"}`, uuid.NewString(), uuid.NewString())},
		{"bad date", fmt.Sprintf(`{"plan_id":%q,"seat_id":%q,"start_date":"10/01/2030","payment_method":"cash"}`, uuid.NewString(), uuid.NewString())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authed(httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(tt.body)), uuid.New())
			rec := httptest.NewRecorder()
			h.CreateBooking(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateBooking_RequiresUser(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{}, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.CreateBooking(rec, httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(bookingBody())))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCancelBooking_UsesPathID(t *testing.T) {
	svc := &stubBookingService{}
	h := NewBookingHandler(svc, nil, zap.NewNop())

	r := chi.NewRouter()
	r.Put("/api/admin/bookings/{id}/cancel", h.CancelBooking)

	id := uuid.NewString()
	adminID := uuid.New()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodPut, "/api/admin/bookings/"+id+"/cancel", nil), adminID))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, svc.cancelled)
	assert.Equal(t, adminID, svc.cancelBy)
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("debit: %w", repository.ErrInsufficientBalance), http.StatusPaymentRequired},
		{errors.New("invalid credentials"), http.StatusUnauthorized},
		{errors.New("account is deactivated"), http.StatusForbidden},
		{errors.New("booking 42 not found"), http.StatusNotFound},
		{errors.New("seat A1 is already booked for 2030-01-01 to 2030-01-30"), http.StatusConflict},
		{errors.New("validation failed: Amount: This field is required"), http.StatusBadRequest},
		{errors.New("invalid booking ID format"), http.StatusBadRequest},
		{errors.New("refund request is approved, cannot process again"), http.StatusBadRequest},
		{errors.New("email already registered"), http.StatusBadRequest},
		{fmt.Errorf("booking 42 is no longer pending: %w", repository.ErrStatusChanged), http.StatusConflict},
		{fmt.Errorf("create booking: create booking LIB-1: %w", repository.ErrSeatTaken), http.StatusConflict},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(rec, zap.NewNop(), tt.err, "test")
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHandleServiceError_HidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	handleServiceError(rec, zap.NewNop(), errors.New("pq: password authentication failed"), "test")

	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Internal server error", env.Message)
}

func TestPaginationFromQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&per_page=500", nil)
	p := paginationFromQuery(req)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, utils.MaxPerPage, p.PerPage)

	p = paginationFromQuery(httptest.NewRequest(http.MethodGet, "/?page=abc", nil))
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, utils.DefaultPerPage, p.PerPage)
}
