package usecase

import (
	"library-booking/internal/data/repository"
	"library-booking/pkg/cache"
	"library-booking/pkg/receipt"
	"library-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth         AuthService
	Member       MemberService
	Plan         PlanService
	Seat         SeatService
	Booking      BookingService
	Refund       RefundService
	Wallet       WalletService
	Payment      PaymentService
	Coupon       CouponService
	Offer        OfferService
	Content      ContentService
	Gallery      GalleryService
	Notification NotificationService
	Support      SupportService
	Audit        AuditService
	Dashboard    DashboardService
	Maintenance  MaintenanceService
}

func NewService(repo *repository.Repository, cache *cache.Cache, config *utils.Config, log *zap.Logger) *Service {
	audit := NewAuditService(repo.Audit, log)
	notification := NewNotificationService(repo, cache, audit, log)
	coupon := NewCouponService(repo.Coupon, audit, log)
	receipts := receipt.NewGenerator(config.App.Name, config.Billing.Currency)

	return &Service{
		Auth:         NewAuthService(repo, config, log),
		Member:       NewMemberService(repo, audit, log),
		Plan:         NewPlanService(repo.Plan, audit, log),
		Seat:         NewSeatService(repo, audit, log),
		Booking:      NewBookingService(repo, cache, coupon, notification, audit, config, log),
		Refund:       NewRefundService(repo, notification, audit, log),
		Wallet:       NewWalletService(repo, notification, audit, config, log),
		Payment:      NewPaymentService(repo, receipts, notification, audit, log),
		Coupon:       coupon,
		Offer:        NewOfferService(repo.Offer, audit, log),
		Content:      NewContentService(repo.Content, audit, log),
		Gallery:      NewGalleryService(repo.Gallery, audit, log),
		Notification: notification,
		Support:      NewSupportService(repo, notification, audit, log),
		Audit:        audit,
		Dashboard:    NewDashboardService(repo.Stats, log),
		Maintenance:  NewMaintenanceService(repo, notification, config, log),
	}
}
