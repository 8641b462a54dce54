package model

import "github.com/shopspring/decimal"

// DepositRequest represents the incoming JSON body for a deposit intent.
type DepositRequest struct {
	AmountUSD decimal.Decimal `json:"amount_usd" binding:"required"`
	Currency  string          `json:"currency,omitempty"`
}

// TransferRequest covers both direct transfers and tips.
type TransferRequest struct {
	ToUserID string          `json:"to_user_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Note     string          `json:"note,omitempty"`
}

type WithdrawRequest struct {
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Address string          `json:"address" binding:"required"`
}

type RainRequest struct {
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Recipients int             `json:"recipients" binding:"required"`
}

type AdminCreditRequest struct {
	UserID string          `json:"user_id" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Reason string          `json:"reason,omitempty"`
}

// TransactionResult is returned for every admitted wallet operation.
type TransactionResult struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Fee           decimal.Decimal `json:"fee"`
	XPGranted     int             `json:"xp_granted,omitempty"`
	NewBalance    decimal.Decimal `json:"new_balance"`
}
