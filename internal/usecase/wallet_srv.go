package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/internal/data/repository"
	"library-booking/internal/dto/request"
	"library-booking/internal/dto/response"
	"library-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const recentTransactions = 10

type WalletService interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*response.WalletResponse, error)
	GetTransactions(ctx context.Context, userID uuid.UUID, req request.PaginatedRequest) (*response.PaginatedResponse[response.WalletTransactionResponse], error)
	Recharge(ctx context.Context, userID uuid.UUID, req *request.RechargeWalletRequest) (*response.WalletTransactionResponse, error)

	// Admin
	AdjustBalance(ctx context.Context, userID string, req *request.AdjustWalletRequest) (*response.WalletTransactionResponse, error)
}

type walletService struct {
	repo         *repository.Repository
	notification NotificationService
	audit        AuditService
	currency     string
	log          *zap.Logger
}

func NewWalletService(repo *repository.Repository, notification NotificationService, audit AuditService, config *utils.Config, log *zap.Logger) WalletService {
	return &walletService{
		repo:         repo,
		notification: notification,
		audit:        audit,
		currency:     config.Billing.Currency,
		log:          log.With(zap.String("service", "wallet")),
	}
}

func (s *walletService) GetWallet(ctx context.Context, userID uuid.UUID) (*response.WalletResponse, error) {
	wallet, err := s.repo.Wallet.FindByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to get wallet", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("get wallet: %w", err)
	}

	txns, err := s.repo.Wallet.FindTransactions(ctx, userID, recentTransactions, 0)
	if err != nil {
		s.log.Error("Failed to get wallet transactions", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("get wallet transactions: %w", err)
	}

	resp := &response.WalletResponse{
		Currency:     s.currency,
		Transactions: response.MapSlice(txns, response.WalletTransactionToResponse),
	}
	if wallet != nil {
		resp.Balance = wallet.Balance
	}
	return resp, nil
}

func (s *walletService) GetTransactions(ctx context.Context, userID uuid.UUID, req request.PaginatedRequest) (*response.PaginatedResponse[response.WalletTransactionResponse], error) {
	txns, err := s.repo.Wallet.FindTransactions(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get wallet transactions", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("get wallet transactions: %w", err)
	}

	total, err := s.repo.Wallet.CountTransactions(ctx, userID)
	if err != nil {
		s.log.Error("Failed to count wallet transactions", zap.Error(err))
		return nil, fmt.Errorf("count wallet transactions: %w", err)
	}

	return response.NewPaginatedResponse(
		response.MapSlice(txns, response.WalletTransactionToResponse),
		req.Page, req.Limit(), total,
	), nil
}

// Recharge records the top-up as an online payment without a booking and
// credits the wallet once the payment row exists.
func (s *walletService) Recharge(ctx context.Context, userID uuid.UUID, req *request.RechargeWalletRequest) (*response.WalletTransactionResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	amount := utils.RoundMoney(req.Amount)
	if amount <= 0 {
		return nil, fmt.Errorf("invalid recharge amount %.2f", req.Amount)
	}
	transactionID := strings.TrimSpace(req.TransactionID)

	now := time.Now()
	payment := &entity.Payment{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:        userID,
		Method:        entity.PaymentMethodOnline,
		Amount:        amount,
		Status:        entity.PaymentStatusPending,
		TransactionID: &transactionID,
	}

	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		s.log.Error("Failed to record recharge payment", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("create payment: %w", err)
	}

	txn, err := s.repo.Wallet.Credit(ctx, userID, amount, &transactionID, "Wallet recharge")
	if err != nil {
		s.log.Error("Failed to credit wallet", zap.Error(err), zap.String("user_id", userID.String()), zap.Float64("amount", amount))
		if uerr := s.repo.Payment.UpdateStatus(context.WithoutCancel(ctx), payment.ID, entity.PaymentStatusPending, entity.PaymentStatusFailed, nil); uerr != nil {
			s.log.Error("Failed to fail recharge payment", zap.Error(uerr), zap.String("payment_id", payment.ID.String()))
		}
		return nil, fmt.Errorf("credit wallet: %w", err)
	}

	if err := s.repo.Payment.UpdateStatus(ctx, payment.ID, entity.PaymentStatusPending, entity.PaymentStatusCompleted, nil); err != nil {
		s.log.Error("Failed to complete recharge payment", zap.Error(err), zap.String("payment_id", payment.ID.String()))
	}

	s.log.Info("Wallet recharged",
		zap.String("user_id", userID.String()),
		zap.Float64("amount", amount),
		zap.Float64("balance", txn.BalanceAfter),
	)
	s.notification.Notify(ctx, userID, entity.NotificationPayment, "Wallet recharged",
		fmt.Sprintf("%.2f %s added. Balance: %.2f %s.", amount, s.currency, txn.BalanceAfter, s.currency))

	resp := response.WalletTransactionToResponse(txn)
	return &resp, nil
}

// ==================== ADMIN METHODS ====================

func (s *walletService) AdjustBalance(ctx context.Context, userID string, req *request.AdjustWalletRequest) (*response.WalletTransactionResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s", userID)
	}

	user, err := s.repo.User.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", userID)
	}

	amount := utils.RoundMoney(math.Abs(req.Amount))
	if amount == 0 {
		return nil, fmt.Errorf("invalid adjustment amount %.2f", req.Amount)
	}
	description := "Admin adjustment: " + strings.TrimSpace(req.Description)

	var txn *entity.WalletTransaction
	if req.Amount > 0 {
		txn, err = s.repo.Wallet.Credit(ctx, id, amount, nil, description)
	} else {
		txn, err = s.repo.Wallet.Debit(ctx, id, amount, nil, description)
	}
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, fmt.Errorf("cannot debit %.2f, wallet balance is too low", amount)
		}
		s.log.Error("Failed to adjust wallet", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("adjust wallet: %w", err)
	}

	s.audit.Record(ctx, "wallet.adjust", "wallet", userID, map[string]any{
		"amount":        req.Amount,
		"description":   req.Description,
		"balance_after": txn.BalanceAfter,
	})
	s.notification.Notify(ctx, id, entity.NotificationPayment, "Wallet adjusted",
		fmt.Sprintf("%s. Balance: %.2f %s.", description, txn.BalanceAfter, s.currency))

	resp := response.WalletTransactionToResponse(txn)
	return &resp, nil
}
