package handler

import (
	"net/http"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/middleware"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/model"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/apperrors"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	svc    *service.WalletService
	maxUSD decimal.Decimal
}

func NewWalletHandler(svc *service.WalletService, maxDepositUSD float64) *WalletHandler {
	return &WalletHandler{svc: svc, maxUSD: decimal.NewFromFloat(maxDepositUSD)}
}

// Deposit registers a deposit intent. The actual credit lands via the payment
// provider's webhook; this endpoint only validates and acknowledges.
func (h *WalletHandler) Deposit(c *gin.Context) {
	var req model.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidation(err.Error()))
		return
	}
	if req.AmountUSD.Sign() <= 0 {
		c.Error(apperrors.NewValidation("amount must be positive"))
		return
	}
	if req.AmountUSD.GreaterThan(h.maxUSD) {
		c.Error(apperrors.NewValidation("amount exceeds deposit ceiling"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"deposit_id": uuid.NewString(),
		"amount_usd": req.AmountUSD,
	})
}

func (h *WalletHandler) Tip(c *gin.Context) {
	user := middleware.UserFromContext(c)
	var req model.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidation(err.Error()))
		return
	}
	result, appErr := h.svc.Tip(c.Request.Context(), user, req)
	if appErr != nil {
		c.Error(appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func (h *WalletHandler) Transfer(c *gin.Context) {
	user := middleware.UserFromContext(c)
	var req model.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidation(err.Error()))
		return
	}
	result, appErr := h.svc.Transfer(c.Request.Context(), user, req)
	if appErr != nil {
		c.Error(appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func (h *WalletHandler) Withdraw(c *gin.Context) {
	user := middleware.UserFromContext(c)
	var req model.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidation(err.Error()))
		return
	}
	result, appErr := h.svc.Withdraw(c.Request.Context(), user, req)
	if appErr != nil {
		c.Error(appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func (h *WalletHandler) FaucetClaim(c *gin.Context) {
	user := middleware.UserFromContext(c)
	result, appErr := h.svc.FaucetClaim(c.Request.Context(), user)
	if appErr != nil {
		c.Error(appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func (h *WalletHandler) Rain(c *gin.Context) {
	var req model.RainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidation(err.Error()))
		return
	}
	if appErr := h.svc.ValidateRain(req); appErr != nil {
		c.Error(appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rain_id": uuid.NewString()})
}
