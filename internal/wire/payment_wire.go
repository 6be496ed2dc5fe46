package wire

import (
	"library-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	refundHandler *adaptor.RefundHandler,
	memberHandler *adaptor.MemberHandler,
	g guards,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		r.Get("/api/wallet", paymentHandler.GetWallet)
		r.Get("/api/wallet/transactions", paymentHandler.GetWalletTransactions)
		r.Post("/api/wallet/recharge", paymentHandler.RechargeWallet)

		r.Get("/api/user/payments", paymentHandler.GetUserPayments)
		r.Get("/api/payments/{id}/receipt", paymentHandler.DownloadReceipt)

		r.Post("/api/refund-requests", refundHandler.CreateRefundRequest)
		r.Get("/api/user/refund-requests", refundHandler.GetUserRefunds)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/payments", func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Get("/", paymentHandler.GetPayments)
		r.Put("/{id}/status", paymentHandler.UpdatePaymentStatus)
	})

	r.Route("/api/admin/settings/gateways", func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Get("/", paymentHandler.GetGateways)
		r.Put("/{provider}", paymentHandler.UpdateGateway)
	})

	r.Route("/api/admin/refunds", func(r chi.Router) {
		r.Use(g.auth, g.admin)

		r.Get("/", refundHandler.GetRefunds)
		r.Post("/process", refundHandler.ProcessRefund)
	})

	r.With(g.auth, g.admin).Post("/api/admin/wallets/{user_id}/adjust", memberHandler.AdjustWallet)
}
