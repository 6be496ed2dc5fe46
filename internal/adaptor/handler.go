package adaptor

import (
	"library-booking/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth       *AuthHandler
	Member     *MemberHandler
	Catalog    *CatalogHandler
	Booking    *BookingHandler
	Refund     *RefundHandler
	Payment    *PaymentHandler
	Site       *SiteHandler
	Engagement *EngagementHandler
	Admin      *AdminHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(service.Auth, log),
		Member:     NewMemberHandler(service.Member, service.Wallet, log),
		Catalog:    NewCatalogHandler(service.Plan, service.Seat, log),
		Booking:    NewBookingHandler(service.Booking, service.Coupon, log),
		Refund:     NewRefundHandler(service.Refund, log),
		Payment:    NewPaymentHandler(service.Payment, service.Wallet, log),
		Site:       NewSiteHandler(service.Offer, service.Content, service.Gallery, log),
		Engagement: NewEngagementHandler(service.Notification, service.Support, log),
		Admin:      NewAdminHandler(service.Dashboard, service.Audit, log),
	}
}
