package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/internal/data/repository"
	"library-booking/pkg/cache"
	"library-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// In-memory repositories. Each embeds its interface so methods a test does
// not need panic instead of silently passing.

type fakeUsers struct {
	repository.UserRepository
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUsers) FindActiveIDs(_ context.Context, role entity.UserRole) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for id, u := range f.users {
		if u.Role == role && u.IsActive {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeSessions struct {
	repository.SessionRepository
	cleaned int64
}

func (f *fakeSessions) CleanExpiredSessions(context.Context) (int64, error) {
	return f.cleaned, nil
}

type fakeWallets struct {
	repository.WalletRepository
	mu       sync.Mutex
	balances map[uuid.UUID]float64
	txns     []*entity.WalletTransaction
	failNext error
}

func (f *fakeWallets) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bal, ok := f.balances[userID]
	if !ok {
		return nil, nil
	}
	return &entity.Wallet{UserID: userID, Balance: bal}, nil
}

func (f *fakeWallets) apply(userID uuid.UUID, amount float64, kind entity.WalletTxnType, ref *string, desc string) (*entity.WalletTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return nil, err
	}

	bal := f.balances[userID]
	if kind == entity.WalletTxnDebit {
		if bal < amount {
			return nil, repository.ErrInsufficientBalance
		}
		bal -= amount
	} else {
		bal += amount
	}
	bal = utils.RoundMoney(bal)
	f.balances[userID] = bal

	txn := &entity.WalletTransaction{
		BaseSimple:   entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		UserID:       userID,
		Type:         kind,
		Amount:       amount,
		BalanceAfter: bal,
		Reference:    ref,
		Description:  desc,
	}
	f.txns = append(f.txns, txn)
	return txn, nil
}

func (f *fakeWallets) Credit(_ context.Context, userID uuid.UUID, amount float64, ref *string, desc string) (*entity.WalletTransaction, error) {
	return f.apply(userID, amount, entity.WalletTxnCredit, ref, desc)
}

func (f *fakeWallets) Debit(_ context.Context, userID uuid.UUID, amount float64, ref *string, desc string) (*entity.WalletTransaction, error) {
	return f.apply(userID, amount, entity.WalletTxnDebit, ref, desc)
}

func (f *fakeWallets) balance(userID uuid.UUID) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[userID]
}

type fakePlans struct {
	repository.PlanRepository
	plans map[uuid.UUID]*entity.Plan
}

func (f *fakePlans) FindByID(_ context.Context, id uuid.UUID) (*entity.Plan, error) {
	if p, ok := f.plans[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

type fakeSeats struct {
	repository.SeatRepository
	seats map[uuid.UUID]*entity.Seat
}

func (f *fakeSeats) FindByID(_ context.Context, id uuid.UUID) (*entity.Seat, error) {
	if s, ok := f.seats[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeSeats) FindByNumber(_ context.Context, number string) (*entity.Seat, error) {
	for _, s := range f.seats {
		if s.SeatNumber == number {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSeats) FindAll(_ context.Context, activeOnly bool) ([]*entity.Seat, error) {
	var out []*entity.Seat
	for _, s := range f.seats {
		if !activeOnly || s.IsActive {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (f *fakeSeats) Create(_ context.Context, s *entity.Seat) error {
	cp := *s
	f.seats[s.ID] = &cp
	return nil
}

func (f *fakeSeats) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.seats, id)
	return nil
}

type fakeCoupons struct {
	repository.CouponRepository
	mu      sync.Mutex
	coupons map[uuid.UUID]*entity.Coupon
}

func (f *fakeCoupons) FindByCode(_ context.Context, code string) (*entity.Coupon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.coupons {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCoupons) IncrementUsage(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.coupons[id]
	if !ok {
		return fmt.Errorf("coupon %s not found", id)
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return errors.New("usage limit reached")
	}
	c.UsedCount++
	return nil
}

func (f *fakeCoupons) DecrementUsage(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.coupons[id]; ok && c.UsedCount > 0 {
		c.UsedCount--
	}
	return nil
}

func (f *fakeCoupons) used(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.coupons[id].UsedCount
}

type fakeBookings struct {
	repository.BookingRepository
	mu       sync.Mutex
	bookings map[uuid.UUID]*entity.Booking
}

func (f *fakeBookings) Create(_ context.Context, b *entity.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookings) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeBookings) UpdateStatus(_ context.Context, id uuid.UUID, from, to entity.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != from {
		return fmt.Errorf("booking %s is no longer %s: %w", id, from, repository.ErrStatusChanged)
	}
	b.Status = to
	return nil
}

func (f *fakeBookings) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bookings, id)
	return nil
}

func (f *fakeBookings) HasOverlap(_ context.Context, seatID uuid.UUID, start, end time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.SeatID == seatID && b.HoldsSeat() && !b.StartDate.After(end) && !b.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookings) FindBookedSeatIDs(_ context.Context, start, end time.Time) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, b := range f.bookings {
		if b.HoldsSeat() && !b.StartDate.After(end) && !b.EndDate.Before(start) && !seen[b.SeatID] {
			seen[b.SeatID] = true
			ids = append(ids, b.SeatID)
		}
	}
	return ids, nil
}

func (f *fakeBookings) CountActiveForSeat(_ context.Context, seatID uuid.UUID, from time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.bookings {
		if b.SeatID == seatID && b.HoldsSeat() && !b.EndDate.Before(from) {
			n++
		}
	}
	return n, nil
}

func (f *fakeBookings) FindStalePending(_ context.Context, createdBefore time.Time) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Booking
	for _, b := range f.bookings {
		if b.Status == entity.BookingStatusPending && b.CreatedAt.Before(createdBefore) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeBookings) status(id uuid.UUID) entity.BookingStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[id]; ok {
		return b.Status
	}
	return ""
}

func (f *fakeBookings) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bookings)
}

type fakePayments struct {
	repository.PaymentRepository
	mu         sync.Mutex
	payments   map[uuid.UUID]*entity.Payment
	failCreate error
}

func (f *fakePayments) Create(_ context.Context, p *entity.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	cp := *p
	f.payments[p.ID] = &cp
	return nil
}

func (f *fakePayments) FindByID(_ context.Context, id uuid.UUID) (*entity.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakePayments) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.BookingID != nil && *p.BookingID == bookingID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePayments) UpdateStatus(_ context.Context, id uuid.UUID, from, to entity.PaymentStatus, txnID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok || p.Status != from {
		return fmt.Errorf("payment %s is no longer %s: %w", id, from, repository.ErrStatusChanged)
	}
	p.Status = to
	if txnID != nil {
		p.TransactionID = txnID
	}
	return nil
}

func (f *fakePayments) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.payments, id)
	return nil
}

func (f *fakePayments) byBooking(bookingID uuid.UUID) *entity.Payment {
	p, _ := f.FindByBookingID(context.Background(), bookingID)
	return p
}

type fakeRefunds struct {
	repository.RefundRepository
	mu      sync.Mutex
	refunds map[uuid.UUID]*entity.RefundRequest
}

func (f *fakeRefunds) Create(_ context.Context, r *entity.RefundRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.refunds[r.ID] = &cp
	return nil
}

func (f *fakeRefunds) FindByID(_ context.Context, id uuid.UUID) (*entity.RefundRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.refunds[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRefunds) FindOpenByBookingID(_ context.Context, bookingID uuid.UUID) (*entity.RefundRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.refunds {
		if r.BookingID == bookingID && (r.Status == entity.RefundStatusPending || r.Status == entity.RefundStatusApproved) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRefunds) Resolve(_ context.Context, id uuid.UUID, res repository.RefundResolution) (*entity.RefundRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.refunds[id]
	if !ok || r.Status != entity.RefundStatusPending {
		return nil, repository.ErrAlreadyProcessed
	}
	now := time.Now()
	r.Status = res.Status
	r.RefundedAmount = res.RefundedAmount
	r.RefundTo = res.RefundTo
	r.AdminNote = res.AdminNote
	r.ProcessedBy = &res.ProcessedBy
	r.ProcessedAt = &now
	cp := *r
	return &cp, nil
}

func (f *fakeRefunds) Reopen(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.refunds[id]; ok {
		r.Status = entity.RefundStatusPending
		r.RefundedAmount = nil
		r.RefundTo = nil
		r.ProcessedAt = nil
	}
	return nil
}

type fakeNotifications struct {
	repository.NotificationRepository
	mu      sync.Mutex
	sent    []*entity.Notification
	lookups int
}

func (f *fakeNotifications) Create(_ context.Context, n *entity.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifications) CreateBatch(_ context.Context, ns []*entity.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, ns...)
	return nil
}

func (f *fakeNotifications) CountByUserID(_ context.Context, userID uuid.UUID, unreadOnly bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	var n int64
	for _, sent := range f.sent {
		if sent.UserID == userID && (!unreadOnly || !sent.IsRead) {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sent := range f.sent {
		if sent.ID == id && sent.UserID == userID {
			sent.IsRead = true
			return nil
		}
	}
	return fmt.Errorf("notification %s not found", id.String())
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, sent := range f.sent {
		if sent.UserID == userID && !sent.IsRead {
			sent.IsRead = true
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) titlesFor(userID uuid.UUID) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var titles []string
	for _, n := range f.sent {
		if n.UserID == userID {
			titles = append(titles, n.Title)
		}
	}
	return titles
}

type fakeAudit struct {
	repository.AuditRepository
	mu   sync.Mutex
	logs []*entity.AuditLog
}

func (f *fakeAudit) Create(_ context.Context, l *entity.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, l)
	return nil
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.logs))
	for i, l := range f.logs {
		out[i] = l.Action
	}
	return out
}

// fixture wires the fakes into a Repository and seeds one member, one admin,
// one plan (1000, 30 days) and one seat
type fixture struct {
	repo          *repository.Repository
	users         *fakeUsers
	wallets       *fakeWallets
	plans         *fakePlans
	seats         *fakeSeats
	coupons       *fakeCoupons
	bookings      *fakeBookings
	payments      *fakePayments
	refunds       *fakeRefunds
	notifications *fakeNotifications
	audit         *fakeAudit
	sessions      *fakeSessions

	config *utils.Config
	cache  *cache.Cache
	log    *zap.Logger

	member *entity.User
	admin  *entity.User
	plan   *entity.Plan
	seat   *entity.Seat
}

func newFixture() *fixture {
	f := &fixture{
		users:         &fakeUsers{users: map[uuid.UUID]*entity.User{}},
		wallets:       &fakeWallets{balances: map[uuid.UUID]float64{}},
		plans:         &fakePlans{plans: map[uuid.UUID]*entity.Plan{}},
		seats:         &fakeSeats{seats: map[uuid.UUID]*entity.Seat{}},
		coupons:       &fakeCoupons{coupons: map[uuid.UUID]*entity.Coupon{}},
		bookings:      &fakeBookings{bookings: map[uuid.UUID]*entity.Booking{}},
		payments:      &fakePayments{payments: map[uuid.UUID]*entity.Payment{}},
		refunds:       &fakeRefunds{refunds: map[uuid.UUID]*entity.RefundRequest{}},
		notifications: &fakeNotifications{},
		audit:         &fakeAudit{},
		sessions:      &fakeSessions{},
		config: &utils.Config{
			App:         utils.AppConfig{Name: "City Library"},
			Billing:     utils.BillingConfig{GSTPercent: 18, Currency: "INR"},
			Maintenance: utils.MaintenanceConfig{PendingBookingTTL: 30 * time.Minute},
		},
		log: zap.NewNop(),
	}
	f.cache = cache.New(utils.RedisConfig{}, f.log)

	f.repo = &repository.Repository{
		User:         f.users,
		Session:      f.sessions,
		Wallet:       f.wallets,
		Plan:         f.plans,
		Seat:         f.seats,
		Coupon:       f.coupons,
		Booking:      f.bookings,
		Payment:      f.payments,
		Refund:       f.refunds,
		Notification: f.notifications,
		Audit:        f.audit,
	}

	f.member = &entity.User{Base: entity.Base{ID: uuid.New()}, Name: "Asha Rao", Email: "asha@example.com", Role: entity.RoleMember, IsActive: true}
	f.admin = &entity.User{Base: entity.Base{ID: uuid.New()}, Name: "Desk Admin", Email: "admin@example.com", Role: entity.RoleAdmin, IsActive: true}
	f.users.users[f.member.ID] = f.member
	f.users.users[f.admin.ID] = f.admin

	f.plan = &entity.Plan{Base: entity.Base{ID: uuid.New()}, Name: "Monthly", DurationDays: 30, Price: 1000, IsActive: true}
	f.plans.plans[f.plan.ID] = f.plan

	f.seat = &entity.Seat{Base: entity.Base{ID: uuid.New()}, SeatNumber: "A1", Section: "Quiet", IsActive: true}
	f.seats.seats[f.seat.ID] = f.seat

	return f
}

func (f *fixture) notificationService() NotificationService {
	return NewNotificationService(f.repo, f.cache, f.auditService(), f.log)
}

func (f *fixture) auditService() AuditService {
	return NewAuditService(f.audit, f.log)
}

func (f *fixture) bookingService() *bookingService {
	audit := f.auditService()
	coupon := NewCouponService(f.coupons, audit, f.log)
	return NewBookingService(f.repo, f.cache, coupon, f.notificationService(), audit, f.config, f.log).(*bookingService)
}

func (f *fixture) addCoupon(c *entity.Coupon) *entity.Coupon {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.coupons.coupons[c.ID] = c
	return c
}

// addBooking stores a booking for the member on the fixture seat
func (f *fixture) addBooking(status entity.BookingStatus, start time.Time, total float64) *entity.Booking {
	start = utils.TruncateDate(start)
	b := &entity.Booking{
		Base:        entity.Base{ID: uuid.New(), CreatedAt: time.Now()},
		OrderID:     utils.GenerateOrderID(),
		UserID:      f.member.ID,
		PlanID:      f.plan.ID,
		SeatID:      f.seat.ID,
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, f.plan.DurationDays-1),
		Subtotal:    total,
		TotalAmount: total,
		Status:      status,
	}
	f.bookings.bookings[b.ID] = b
	return b
}

func (f *fixture) addPayment(b *entity.Booking, method entity.PaymentMethod, status entity.PaymentStatus) *entity.Payment {
	p := &entity.Payment{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: time.Now()},
		BookingID: &b.ID,
		UserID:    b.UserID,
		Method:    method,
		Amount:    b.TotalAmount,
		Status:    status,
	}
	f.payments.payments[p.ID] = p
	return p
}
