package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/config"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/economy"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/model"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/apperrors"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/logger"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/metrics"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepo is the slice of the forum's data layer the wallet needs.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error)
	AddXP(ctx context.Context, id string, xp int) (int, error)
}

// WalletService validates and executes DGT operations. Every check runs
// before any mutation, so a rejected request leaves no partial state.
type WalletService struct {
	cfg   *config.Config
	users UserRepo
	xp    *XPService
	admin *adminCreditLedger
}

func NewWalletService(cfg *config.Config, users UserRepo, xp *XPService) *WalletService {
	return &WalletService{
		cfg:   cfg,
		users: users,
		xp:    xp,
		admin: newAdminCreditLedger(),
	}
}

// ValidateTransfer runs the transfer checks shared by tips and direct
// transfers. Each failure maps to its own status: malformed amounts 400,
// unknown recipients 404.
func (s *WalletService) ValidateTransfer(ctx context.Context, from *model.User, toUserID string, amount decimal.Decimal) (*model.User, *apperrors.AppError) {
	if amount.Sign() <= 0 {
		metrics.GuardRejects.WithLabelValues("transfer", "non_positive_amount").Inc()
		return nil, apperrors.NewValidation("amount must be positive")
	}
	if amount.GreaterThan(decimal.NewFromFloat(s.cfg.Limits.MaxDGTTransfer)) {
		metrics.GuardRejects.WithLabelValues("transfer", "max_transfer").Inc()
		return nil, apperrors.NewValidation(fmt.Sprintf("amount exceeds max transfer of %.2f DGT", s.cfg.Limits.MaxDGTTransfer))
	}
	if toUserID == from.ID {
		metrics.GuardRejects.WithLabelValues("transfer", "self_transfer").Inc()
		return nil, apperrors.NewValidation("cannot transfer to yourself")
	}
	recipient, err := s.users.GetByID(ctx, toUserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		metrics.GuardRejects.WithLabelValues("transfer", "unknown_recipient").Inc()
		return nil, apperrors.NewNotFound("recipient not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return recipient, nil
}

// Tip moves amount from sender to recipient, takes the configured fee, and
// awards tip XP to the recipient under the tip-specific daily ceiling.
func (s *WalletService) Tip(ctx context.Context, from *model.User, req model.TransferRequest) (*model.TransactionResult, *apperrors.AppError) {
	if req.Amount.LessThan(decimal.NewFromFloat(s.cfg.Economy.MinTipDGT)) {
		metrics.GuardRejects.WithLabelValues("tip", "below_minimum").Inc()
		return nil, apperrors.NewValidation(fmt.Sprintf("tip below minimum of %.2f DGT", s.cfg.Economy.MinTipDGT))
	}
	recipient, appErr := s.ValidateTransfer(ctx, from, req.ToUserID, req.Amount)
	if appErr != nil {
		return nil, appErr
	}

	fee := req.Amount.Mul(decimal.NewFromFloat(s.cfg.Economy.TipFeePercentage)).Div(decimal.NewFromInt(100))
	newBalance, err := s.users.AdjustBalance(ctx, from.ID, req.Amount.Neg())
	if errors.Is(err, repository.ErrUserNotFound) {
		metrics.GuardRejects.WithLabelValues("tip", "insufficient_balance").Inc()
		return nil, apperrors.NewValidation("insufficient balance")
	}
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if _, err := s.users.AdjustBalance(ctx, recipient.ID, req.Amount.Sub(fee)); err != nil {
		// Roll the debit back; the tip never happened.
		_, _ = s.users.AdjustBalance(ctx, from.ID, req.Amount)
		return nil, apperrors.Wrap(err)
	}

	xpGranted, xpErr := s.xp.AwardTip(ctx, recipient, req.Amount)
	if xpErr != nil {
		// XP is a bonus on top of the tip, not part of it; the transfer stands.
		logger.Warn("tip XP award failed", "user_id", recipient.ID, "error", xpErr)
		xpGranted = 0
	}

	return &model.TransactionResult{
		TransactionID: uuid.NewString(),
		Amount:        req.Amount,
		Fee:           fee,
		XPGranted:     xpGranted,
		NewBalance:    newBalance,
	}, nil
}

// Transfer moves amount between users with no fee and no XP.
func (s *WalletService) Transfer(ctx context.Context, from *model.User, req model.TransferRequest) (*model.TransactionResult, *apperrors.AppError) {
	recipient, appErr := s.ValidateTransfer(ctx, from, req.ToUserID, req.Amount)
	if appErr != nil {
		return nil, appErr
	}
	newBalance, err := s.users.AdjustBalance(ctx, from.ID, req.Amount.Neg())
	if errors.Is(err, repository.ErrUserNotFound) {
		metrics.GuardRejects.WithLabelValues("transfer", "insufficient_balance").Inc()
		return nil, apperrors.NewValidation("insufficient balance")
	}
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if _, err := s.users.AdjustBalance(ctx, recipient.ID, req.Amount); err != nil {
		_, _ = s.users.AdjustBalance(ctx, from.ID, req.Amount)
		return nil, apperrors.Wrap(err)
	}
	return &model.TransactionResult{
		TransactionID: uuid.NewString(),
		Amount:        req.Amount,
		Fee:           decimal.Zero,
		NewBalance:    newBalance,
	}, nil
}

// Withdraw validates a withdrawal request. The feature-flag and account-age
// gates run in the wallet guard before this is reached.
func (s *WalletService) Withdraw(ctx context.Context, user *model.User, req model.WithdrawRequest) (*model.TransactionResult, *apperrors.AppError) {
	if req.Amount.Sign() <= 0 {
		metrics.GuardRejects.WithLabelValues("withdraw", "non_positive_amount").Inc()
		return nil, apperrors.NewValidation("amount must be positive")
	}
	if req.Amount.LessThan(decimal.NewFromFloat(s.cfg.Economy.MinWithdrawalDGT)) {
		metrics.GuardRejects.WithLabelValues("withdraw", "below_minimum").Inc()
		return nil, apperrors.NewValidation(fmt.Sprintf("withdrawal below minimum of %.2f DGT", s.cfg.Economy.MinWithdrawalDGT))
	}
	newBalance, err := s.users.AdjustBalance(ctx, user.ID, req.Amount.Neg())
	if errors.Is(err, repository.ErrUserNotFound) {
		metrics.GuardRejects.WithLabelValues("withdraw", "insufficient_balance").Inc()
		return nil, apperrors.NewValidation("insufficient balance")
	}
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return &model.TransactionResult{
		TransactionID: uuid.NewString(),
		Amount:        req.Amount,
		Fee:           decimal.Zero,
		NewBalance:    newBalance,
	}, nil
}

// FaucetClaim credits the faucet reward and grants its XP. The per-day claim
// budget is enforced by the faucet guard ahead of this call.
func (s *WalletService) FaucetClaim(ctx context.Context, user *model.User) (*model.TransactionResult, *apperrors.AppError) {
	newBalance, err := s.users.AdjustBalance(ctx, user.ID, decimal.NewFromFloat(s.cfg.Economy.FaucetRewardDGT))
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	xpGranted, _, xpErr := s.xp.AwardAction(ctx, user, economy.ActionFaucetClaim)
	if xpErr != nil {
		logger.Warn("faucet XP award failed", "user_id", user.ID, "error", xpErr)
		xpGranted = 0
	}
	return &model.TransactionResult{
		TransactionID: uuid.NewString(),
		Amount:        decimal.NewFromFloat(s.cfg.Economy.FaucetRewardDGT),
		Fee:           decimal.Zero,
		XPGranted:     xpGranted,
		NewBalance:    newBalance,
	}, nil
}

// ValidateRain checks a rain announcement against the configured constraints.
// Cooldown is handled by the tip guard's rate limiter.
func (s *WalletService) ValidateRain(req model.RainRequest) *apperrors.AppError {
	rain := s.cfg.Economy.RainSettings
	if req.Amount.LessThan(decimal.NewFromFloat(rain.MinAmount)) {
		metrics.GuardRejects.WithLabelValues("rain", "below_minimum").Inc()
		return apperrors.NewValidation(fmt.Sprintf("rain below minimum of %.2f DGT", rain.MinAmount))
	}
	if req.Recipients <= 0 || req.Recipients > rain.MaxRecipients {
		metrics.GuardRejects.WithLabelValues("rain", "recipient_count").Inc()
		return apperrors.NewValidation(fmt.Sprintf("recipients must be between 1 and %d", rain.MaxRecipients))
	}
	return nil
}

// AdminCredit applies a signed admin adjustment, bounded by a per-admin daily
// ceiling so a compromised admin session cannot mint without limit.
func (s *WalletService) AdminCredit(ctx context.Context, admin *model.User, req model.AdminCreditRequest) (*model.TransactionResult, *apperrors.AppError) {
	if req.Amount.Sign() == 0 {
		metrics.GuardRejects.WithLabelValues("admin_credit", "non_positive_amount").Inc()
		return nil, apperrors.NewValidation("amount must be non-zero")
	}
	ceiling := decimal.NewFromFloat(s.cfg.Limits.AdminCreditDailyCap)
	if !s.admin.tryReserve(admin.ID, req.Amount.Abs(), ceiling) {
		metrics.GuardRejects.WithLabelValues("admin_credit", "daily_cap").Inc()
		return nil, apperrors.NewValidation("admin credit daily ceiling exceeded")
	}
	target, err := s.users.GetByID(ctx, req.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		s.admin.release(admin.ID, req.Amount.Abs())
		metrics.GuardRejects.WithLabelValues("admin_credit", "unknown_target").Inc()
		return nil, apperrors.NewNotFound("target user not found")
	}
	if err != nil {
		s.admin.release(admin.ID, req.Amount.Abs())
		return nil, apperrors.Wrap(err)
	}
	newBalance, err := s.users.AdjustBalance(ctx, target.ID, req.Amount)
	if err != nil {
		s.admin.release(admin.ID, req.Amount.Abs())
		return nil, apperrors.Wrap(err)
	}
	return &model.TransactionResult{
		TransactionID: uuid.NewString(),
		Amount:        req.Amount,
		Fee:           decimal.Zero,
		NewBalance:    newBalance,
	}, nil
}

// adminCreditLedger tracks the absolute DGT an admin has moved today.
type adminCreditLedger struct {
	mu    sync.Mutex
	spent map[string]decimal.Decimal // Key: adminID:YYYY-MM-DD
}

func newAdminCreditLedger() *adminCreditLedger {
	return &adminCreditLedger{spent: make(map[string]decimal.Decimal)}
}

func (l *adminCreditLedger) tryReserve(adminID string, amount, ceiling decimal.Decimal) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := l.makeKey(adminID)
	if l.spent[key].Add(amount).GreaterThan(ceiling) {
		return false
	}
	l.spent[key] = l.spent[key].Add(amount)
	return true
}

func (l *adminCreditLedger) release(adminID string, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := l.makeKey(adminID)
	l.spent[key] = l.spent[key].Sub(amount)
}

func (l *adminCreditLedger) makeKey(adminID string) string {
	return adminID + ":" + time.Now().UTC().Format("2006-01-02")
}
