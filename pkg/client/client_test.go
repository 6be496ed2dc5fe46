package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"library-booking/internal/dto/request"
	"library-booking/internal/dto/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method string
	Path   string
	Auth   string
}

// fakeAPI records every request and answers with the handler of its path
type fakeAPI struct {
	mu       sync.Mutex
	requests []recorded
	routes   map[string]http.HandlerFunc
}

func newFakeAPI(t *testing.T, routes map[string]http.HandlerFunc) (*fakeAPI, *httptest.Server) {
	api := &fakeAPI{routes: routes}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.requests = append(api.requests, recorded{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")})
		api.mu.Unlock()

		if h, ok := api.routes[r.Method+" "+r.URL.Path]; ok {
			h(w, r)
			return
		}
		writeEnvelope(w, http.StatusOK, true, "success", nil, nil)
	}))
	t.Cleanup(srv.Close)
	return api, srv
}

func (f *fakeAPI) calls() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.requests...)
}

func writeEnvelope(w http.ResponseWriter, code int, status bool, message string, data, errs any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"message": message,
		"data":    data,
		"errors":  errs,
	})
}

func TestResourceSave_PutWhenEditingElsePost(t *testing.T) {
	api, srv := newFakeAPI(t, nil)
	c := New(srv.URL, nil)
	plans := c.Plans()

	_, err := plans.Save(context.Background(), "", request.PlanRequest{Name: "Monthly", DurationDays: 30})
	require.NoError(t, err)
	_, err = plans.Save(context.Background(), "plan-7", request.PlanRequest{Name: "Monthly", DurationDays: 30})
	require.NoError(t, err)

	calls := api.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, recorded{Method: http.MethodPost, Path: "/api/admin/plans"}, calls[0])
	assert.Equal(t, recorded{Method: http.MethodPut, Path: "/api/admin/plans/plan-7"}, calls[1])
}

func TestResourceDelete_OnlyAfterConfirmation(t *testing.T) {
	api, srv := newFakeAPI(t, nil)
	c := New(srv.URL, nil)
	seats := c.Seats()

	var asked string
	sent, err := seats.Delete(context.Background(), "seat-1", ConfirmFunc(func(msg string) bool {
		asked = msg
		return false
	}))
	require.NoError(t, err)
	assert.False(t, sent)
	assert.NotEmpty(t, asked)
	assert.Empty(t, api.calls())

	sent, err = seats.Delete(context.Background(), "seat-1", nil)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, api.calls())

	sent, err = seats.Delete(context.Background(), "seat-1", ConfirmFunc(func(string) bool { return true }))
	require.NoError(t, err)
	assert.True(t, sent)
	require.Len(t, api.calls(), 1)
	assert.Equal(t, recorded{Method: http.MethodDelete, Path: "/api/admin/seats/seat-1"}, api.calls()[0])
}

func TestResourceList_ArrayAndPage(t *testing.T) {
	_, srv := newFakeAPI(t, map[string]http.HandlerFunc{
		"GET /api/admin/seats": func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, true, "success", []response.SeatResponse{{ID: "s1", SeatNumber: "A1"}}, nil)
		},
		"GET /api/admin/members": func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, true, "success", response.NewPaginatedResponse(
				[]response.UserResponse{{ID: "u1"}, {ID: "u2"}}, 1, 10, 2), nil)
		},
	})
	c := New(srv.URL, nil)

	seats, err := c.Seats().List(context.Background())
	require.NoError(t, err)
	require.Len(t, seats, 1)
	assert.Equal(t, "A1", seats[0].SeatNumber)

	members, err := c.Members().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestUnauthorized_ClearsStoreAndNavigatesToLogin(t *testing.T) {
	api, srv := newFakeAPI(t, map[string]http.HandlerFunc{
		"GET /api/wallet": func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusUnauthorized, false, "Invalid or expired session", nil, nil)
		},
	})

	store := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, store.SetToken("stale-token"))

	var navigatedTo string
	c := New(srv.URL, store, WithOnUnauthorized(func(path string) { navigatedTo = path }))

	_, err := c.GetWallet(context.Background())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, LoginPath, navigatedTo)

	token, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.Len(t, api.calls(), 1)
	assert.Equal(t, "Bearer stale-token", api.calls()[0].Auth)
}

func TestPayWithWallet_InsufficientBalanceSendsNoBooking(t *testing.T) {
	api, srv := newFakeAPI(t, map[string]http.HandlerFunc{
		"GET /api/wallet": func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, true, "success", response.WalletResponse{Balance: 500, Currency: "INR"}, nil)
		},
	})
	c := New(srv.URL, nil)

	_, err := c.PayWithWallet(context.Background(), request.CreateBookingRequest{PlanID: "p", SeatID: "s", StartDate: "2030-01-01"}, 1180)

	var redirect *RedirectError
	require.True(t, errors.As(err, &redirect))
	assert.Equal(t, WalletPath, redirect.Path)

	for _, call := range api.calls() {
		assert.NotEqual(t, "/api/bookings", call.Path)
	}
}

func TestPayWithWallet_ServerPaymentRequired(t *testing.T) {
	_, srv := newFakeAPI(t, map[string]http.HandlerFunc{
		"GET /api/wallet": func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, true, "success", response.WalletResponse{Balance: 2000}, nil)
		},
		"POST /api/bookings": func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusPaymentRequired, false, "insufficient wallet balance", nil,
				map[string]string{"redirect_to": "/wallet"})
		},
	})
	c := New(srv.URL, nil)

	_, err := c.PayWithWallet(context.Background(), request.CreateBookingRequest{PlanID: "p", SeatID: "s"}, 1180)

	var redirect *RedirectError
	require.True(t, errors.As(err, &redirect))
	assert.Equal(t, "/wallet", redirect.Path)
	assert.Equal(t, "insufficient wallet balance", redirect.Message)
}

func TestPayWithWallet_Success(t *testing.T) {
	var method string
	_, srv := newFakeAPI(t, map[string]http.HandlerFunc{
		"GET /api/wallet": func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, true, "success", response.WalletResponse{Balance: 2000}, nil)
		},
		"POST /api/bookings": func(w http.ResponseWriter, r *http.Request) {
			var req request.CreateBookingRequest
			json.NewDecoder(r.Body).Decode(&req)
			method = req.PaymentMethod
			writeEnvelope(w, http.StatusCreated, true, "Booking created", response.BookingResponse{ID: "b1", Status: "confirmed"}, nil)
		},
	})
	c := New(srv.URL, nil)

	booking, err := c.PayWithWallet(context.Background(), request.CreateBookingRequest{PlanID: "p", SeatID: "s", PaymentMethod: "cash"}, 1180)
	require.NoError(t, err)
	assert.Equal(t, "b1", booking.ID)
	assert.Equal(t, "wallet", method)
}

func TestErrors_ServerMessageOrFallback(t *testing.T) {
	_, srv := newFakeAPI(t, map[string]http.HandlerFunc{
		"POST /api/refund-requests": func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusBadRequest, false, "booking has already started, cannot request a refund", nil, nil)
		},
		"GET /api/offers": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("<html>bad gateway</html>"))
		},
	})
	c := New(srv.URL, nil)

	_, err := c.RequestRefund(context.Background(), "b1", "plans changed")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "booking has already started, cannot request a refund", apiErr.Message)

	_, err = c.GetOffers(context.Background())
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, FallbackMessage, apiErr.Message)
}

func TestLogin_StoresTokenAndSendsIt(t *testing.T) {
	api, srv := newFakeAPI(t, map[string]http.HandlerFunc{
		"POST /api/login": func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, true, "Login successful", response.AuthResponse{Token: "tok-1", Role: "admin"}, nil)
		},
	})
	store := NewMemoryStore()
	c := New(srv.URL, store)

	auth, err := c.Login(context.Background(), "asha@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", auth.Token)

	_, err = c.GetProfile(context.Background())
	require.NoError(t, err)

	calls := api.calls()
	require.Len(t, calls, 2)
	assert.Empty(t, calls[0].Auth)
	assert.Equal(t, "Bearer tok-1", calls[1].Auth)

	require.NoError(t, c.Logout(context.Background()))
	token, _ := store.Token()
	assert.Empty(t, token)
}

func TestPollUnreadCount(t *testing.T) {
	var hits atomic.Int64
	_, srv := newFakeAPI(t, map[string]http.HandlerFunc{
		"GET /api/notifications/unread-count": func(w http.ResponseWriter, r *http.Request) {
			n := hits.Add(1)
			writeEnvelope(w, http.StatusOK, true, "success", response.UnreadCountResponse{Count: n}, nil)
		},
	})
	c := New(srv.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	counts := make(chan int64, 10)
	done := make(chan struct{})
	go func() {
		c.PollUnreadCount(ctx, 10*time.Millisecond, func(n int64) { counts <- n })
		close(done)
	}()

	// the first poll happens immediately
	assert.Equal(t, int64(1), <-counts)
	assert.Equal(t, int64(2), <-counts)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestExpectedRefund(t *testing.T) {
	now := time.Date(2030, 1, 1, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		daysAhead int
		percent   int
		amount    float64
	}{
		{10, 100, 1180},
		{7, 100, 1180},
		{6, 50, 590},
		{3, 50, 590},
		{2, 0, 0},
		{0, 0, 0},
	}

	for _, tt := range tests {
		quote := ExpectedRefund(1180, now.AddDate(0, 0, tt.daysAhead), now)
		assert.Equal(t, tt.percent, quote.Percent, "days ahead %d", tt.daysAhead)
		assert.InDelta(t, tt.amount, quote.Amount, 0.001)
	}
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "creds.json"))

	token, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.SetToken("abc"))
	token, err = store.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}
