package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"library-booking/internal/dto/request"
	"library-booking/internal/dto/response"
	"library-booking/pkg/pricing"
)

// Page is one page of a paginated list
type Page[T any] struct {
	Data       []T                     `json:"data"`
	Pagination response.PaginationMeta `json:"pagination"`
}

func pageQuery(path string, page, perPage int, extra url.Values) string {
	query := url.Values{}
	for k, v := range extra {
		if len(v) > 0 && v[0] != "" {
			query[k] = v
		}
	}
	if page > 0 {
		query.Set("page", fmt.Sprint(page))
	}
	if perPage > 0 {
		query.Set("per_page", fmt.Sprint(perPage))
	}
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

// ==================== AUTH ====================

// Register creates the account and stores its session token
func (c *Client) Register(ctx context.Context, req request.RegisterRequest) (*response.AuthResponse, error) {
	var out response.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/register", req, &out); err != nil {
		return nil, err
	}
	return &out, c.store.SetToken(out.Token)
}

// Login stores the session token on success
func (c *Client) Login(ctx context.Context, identifier, password string) (*response.AuthResponse, error) {
	var out response.AuthResponse
	body := request.LoginRequest{Identifier: identifier, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/login", body, &out); err != nil {
		return nil, err
	}
	return &out, c.store.SetToken(out.Token)
}

// Logout always forgets the local token, even when the server call fails
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
	if clearErr := c.store.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}

func (c *Client) GetProfile(ctx context.Context) (*response.UserResponse, error) {
	var out response.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/user/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req request.UpdateProfileRequest) (*response.UserResponse, error) {
	var out response.UserResponse
	if err := c.do(ctx, http.MethodPut, "/api/user/profile", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, req request.ChangePasswordRequest) error {
	return c.do(ctx, http.MethodPut, "/api/user/password", req, nil)
}

// ==================== CATALOG ====================

func (c *Client) GetPlans(ctx context.Context) ([]response.PlanResponse, error) {
	var out []response.PlanResponse
	if err := c.do(ctx, http.MethodGet, "/api/plans", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSeats returns availability for a plan starting on startDate (YYYY-MM-DD)
func (c *Client) GetSeats(ctx context.Context, startDate, planID string) (*response.SeatAvailabilityResponse, error) {
	query := url.Values{"start_date": {startDate}, "plan_id": {planID}}

	var out response.SeatAvailabilityResponse
	if err := c.do(ctx, http.MethodGet, pageQuery("/api/seats", 0, 0, query), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOffers(ctx context.Context) ([]response.OfferResponse, error) {
	var out []response.OfferResponse
	if err := c.do(ctx, http.MethodGet, "/api/offers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetContent lists banners, facilities or notices by their path segment
func (c *Client) GetContent(ctx context.Context, kind string) ([]response.ContentResponse, error) {
	var out []response.ContentResponse
	if err := c.do(ctx, http.MethodGet, "/api/"+url.PathEscape(kind), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetGallery(ctx context.Context, category string) ([]response.GalleryImageResponse, error) {
	query := url.Values{"category": {category}}

	var out []response.GalleryImageResponse
	if err := c.do(ctx, http.MethodGet, pageQuery("/api/gallery", 0, 0, query), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ==================== CHECKOUT ====================

func (c *Client) Quote(ctx context.Context, req request.QuoteRequest) (*response.QuoteResponse, error) {
	var out response.QuoteResponse
	if err := c.do(ctx, http.MethodPost, "/api/checkout/quote", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ValidateCoupon(ctx context.Context, code string, amount float64) (*response.CouponValidationResponse, error) {
	var out response.CouponValidationResponse
	body := request.ValidateCouponRequest{Code: code, Amount: amount}
	if err := c.do(ctx, http.MethodPost, "/api/coupons/validate", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateBooking(ctx context.Context, req request.CreateBookingRequest) (*response.BookingResponse, error) {
	var out response.BookingResponse
	if err := c.do(ctx, http.MethodPost, "/api/bookings", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PayWithWallet checks the balance before booking. When it cannot cover
// total no request is made and a *RedirectError to the wallet page is
// returned; a 402 from the server yields the same error.
func (c *Client) PayWithWallet(ctx context.Context, req request.CreateBookingRequest, total float64) (*response.BookingResponse, error) {
	wallet, err := c.GetWallet(ctx)
	if err != nil {
		return nil, err
	}

	if wallet.Balance < total {
		return nil, &RedirectError{
			Path:    WalletPath,
			Message: fmt.Sprintf("insufficient wallet balance: %.2f available, %.2f required", wallet.Balance, total),
		}
	}

	req.PaymentMethod = "wallet"
	return c.CreateBooking(ctx, req)
}

func (c *Client) GetMyBookings(ctx context.Context, page, perPage int) (*Page[response.BookingResponse], error) {
	var out Page[response.BookingResponse]
	if err := c.do(ctx, http.MethodGet, pageQuery("/api/user/bookings", page, perPage, nil), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetRefundEstimate(ctx context.Context, bookingID string) (*response.RefundEstimateResponse, error) {
	var out response.RefundEstimateResponse
	if err := c.do(ctx, http.MethodGet, "/api/bookings/"+url.PathEscape(bookingID)+"/refund-estimate", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExpectedRefund quotes locally what a refund request would return today
func ExpectedRefund(amount float64, startDate time.Time, now time.Time) pricing.RefundQuote {
	return pricing.CalculateRefund(amount, startDate, now)
}

// ==================== REFUNDS ====================

func (c *Client) RequestRefund(ctx context.Context, bookingID, reason string) (*response.RefundResponse, error) {
	var out response.RefundResponse
	body := request.CreateRefundRequest{BookingID: bookingID, Reason: reason}
	if err := c.do(ctx, http.MethodPost, "/api/refund-requests", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetMyRefunds(ctx context.Context, page, perPage int) (*Page[response.RefundResponse], error) {
	var out Page[response.RefundResponse]
	if err := c.do(ctx, http.MethodGet, pageQuery("/api/user/refund-requests", page, perPage, nil), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ==================== WALLET & PAYMENTS ====================

func (c *Client) GetWallet(ctx context.Context) (*response.WalletResponse, error) {
	var out response.WalletResponse
	if err := c.do(ctx, http.MethodGet, "/api/wallet", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RechargeWallet(ctx context.Context, amount float64, transactionID string) (*response.WalletTransactionResponse, error) {
	var out response.WalletTransactionResponse
	body := request.RechargeWalletRequest{Amount: amount, TransactionID: transactionID}
	if err := c.do(ctx, http.MethodPost, "/api/wallet/recharge", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetMyPayments(ctx context.Context, page, perPage int) (*Page[response.PaymentResponse], error) {
	var out Page[response.PaymentResponse]
	if err := c.do(ctx, http.MethodGet, pageQuery("/api/user/payments", page, perPage, nil), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadReceipt returns the PDF bytes
func (c *Client) DownloadReceipt(ctx context.Context, paymentID string) ([]byte, error) {
	return c.doRaw(ctx, "/api/payments/"+url.PathEscape(paymentID)+"/receipt")
}

// ==================== NOTIFICATIONS & SUPPORT ====================

func (c *Client) GetNotifications(ctx context.Context, unreadOnly bool, page, perPage int) (*Page[response.NotificationResponse], error) {
	extra := url.Values{}
	if unreadOnly {
		extra.Set("unread", "true")
	}

	var out Page[response.NotificationResponse]
	if err := c.do(ctx, http.MethodGet, pageQuery("/api/notifications", page, perPage, extra), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUnreadCount(ctx context.Context) (int64, error) {
	var out response.UnreadCountResponse
	if err := c.do(ctx, http.MethodGet, "/api/notifications/unread-count", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/api/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/api/notifications/read-all", nil, nil)
}

func (c *Client) CreateTicket(ctx context.Context, req request.CreateTicketRequest) (*response.TicketDetailResponse, error) {
	var out response.TicketDetailResponse
	if err := c.do(ctx, http.MethodPost, "/api/support/tickets", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetMyTickets(ctx context.Context, page, perPage int) (*Page[response.TicketResponse], error) {
	var out Page[response.TicketResponse]
	if err := c.do(ctx, http.MethodGet, pageQuery("/api/support/tickets", page, perPage, nil), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReplyToTicket(ctx context.Context, ticketID, body string) (*response.TicketMessageResponse, error) {
	var out response.TicketMessageResponse
	path := "/api/support/tickets/" + url.PathEscape(ticketID) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, request.TicketMessageRequest{Body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ==================== ADMIN ====================

// Admin CRUD screens
func (c *Client) Members() *Resource[response.UserResponse] {
	return NewResource[response.UserResponse](c, "/api/admin/members")
}

func (c *Client) Seats() *Resource[response.SeatResponse] {
	return NewResource[response.SeatResponse](c, "/api/admin/seats")
}

func (c *Client) Plans() *Resource[response.PlanResponse] {
	return NewResource[response.PlanResponse](c, "/api/admin/plans")
}

func (c *Client) Coupons() *Resource[response.CouponResponse] {
	return NewResource[response.CouponResponse](c, "/api/admin/coupons")
}

func (c *Client) Offers() *Resource[response.OfferResponse] {
	return NewResource[response.OfferResponse](c, "/api/admin/offers")
}

func (c *Client) Banners() *Resource[response.ContentResponse] {
	return NewResource[response.ContentResponse](c, "/api/admin/banners")
}

func (c *Client) Facilities() *Resource[response.ContentResponse] {
	return NewResource[response.ContentResponse](c, "/api/admin/facilities")
}

func (c *Client) Notices() *Resource[response.ContentResponse] {
	return NewResource[response.ContentResponse](c, "/api/admin/notices")
}

func (c *Client) Gallery() *Resource[response.GalleryImageResponse] {
	return NewResource[response.GalleryImageResponse](c, "/api/admin/gallery")
}

// AdvanceBookings lists future bookings; Save creates one for a member and
// Delete cancels it
func (c *Client) AdvanceBookings() *Resource[response.BookingResponse] {
	return NewResource[response.BookingResponse](c, "/api/admin/advance-bookings")
}

func (c *Client) GetDashboard(ctx context.Context) (*response.DashboardResponse, error) {
	var out response.DashboardResponse
	if err := c.do(ctx, http.MethodGet, "/api/admin/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetBookings(ctx context.Context, status string, page, perPage int) (*Page[response.BookingResponse], error) {
	var out Page[response.BookingResponse]
	path := pageQuery("/api/admin/bookings", page, perPage, url.Values{"status": {status}})
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelBooking(ctx context.Context, bookingID string) error {
	return c.do(ctx, http.MethodPut, "/api/admin/bookings/"+url.PathEscape(bookingID)+"/cancel", nil, nil)
}

func (c *Client) GetRefunds(ctx context.Context, status string, page, perPage int) (*Page[response.RefundResponse], error) {
	var out Page[response.RefundResponse]
	path := pageQuery("/api/admin/refunds", page, perPage, url.Values{"status": {status}})
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ProcessRefund(ctx context.Context, req request.ProcessRefundRequest) (*response.RefundResponse, error) {
	var out response.RefundResponse
	if err := c.do(ctx, http.MethodPost, "/api/admin/refunds/process", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPayments(ctx context.Context, status, method string, page, perPage int) (*Page[response.PaymentResponse], error) {
	var out Page[response.PaymentResponse]
	path := pageQuery("/api/admin/payments", page, perPage, url.Values{"status": {status}, "method": {method}})
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePaymentStatus(ctx context.Context, paymentID string, req request.UpdatePaymentStatusRequest) (*response.PaymentResponse, error) {
	var out response.PaymentResponse
	if err := c.do(ctx, http.MethodPut, "/api/admin/payments/"+url.PathEscape(paymentID)+"/status", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdjustWallet(ctx context.Context, userID string, req request.AdjustWalletRequest) (*response.WalletTransactionResponse, error) {
	var out response.WalletTransactionResponse
	if err := c.do(ctx, http.MethodPost, "/api/admin/wallets/"+url.PathEscape(userID)+"/adjust", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetGateways(ctx context.Context) ([]response.GatewaySettingResponse, error) {
	var out []response.GatewaySettingResponse
	if err := c.do(ctx, http.MethodGet, "/api/admin/settings/gateways", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SaveGateway(ctx context.Context, provider string, req request.GatewaySettingRequest) (*response.GatewaySettingResponse, error) {
	var out response.GatewaySettingResponse
	if err := c.do(ctx, http.MethodPut, "/api/admin/settings/gateways/"+url.PathEscape(provider), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendNotification(ctx context.Context, req request.SendNotificationRequest) (*response.BroadcastResponse, error) {
	var out response.BroadcastResponse
	if err := c.do(ctx, http.MethodPost, "/api/admin/notifications", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAuditLogs(ctx context.Context, entityType, action string, page, perPage int) (*Page[response.AuditLogResponse], error) {
	var out Page[response.AuditLogResponse]
	path := pageQuery("/api/admin/audit-logs", page, perPage, url.Values{"entity_type": {entityType}, "action": {action}})
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTickets(ctx context.Context, status string, page, perPage int) (*Page[response.TicketResponse], error) {
	var out Page[response.TicketResponse]
	path := pageQuery("/api/admin/support/tickets", page, perPage, url.Values{"status": {status}})
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTicketStatus(ctx context.Context, ticketID, status string) (*response.TicketResponse, error) {
	var out response.TicketResponse
	body := request.UpdateTicketStatusRequest{Status: status}
	if err := c.do(ctx, http.MethodPut, "/api/admin/support/tickets/"+url.PathEscape(ticketID)+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReplyAsStaff(ctx context.Context, ticketID, body string) (*response.TicketMessageResponse, error) {
	var out response.TicketMessageResponse
	path := "/api/admin/support/tickets/" + url.PathEscape(ticketID) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, request.TicketMessageRequest{Body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
