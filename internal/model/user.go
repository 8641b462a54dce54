package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the slice of the forum's user record this engine needs. The full
// account model lives in the forum service; we only consume it.
type User struct {
	ID         string          `db:"id" json:"id"`
	Username   string          `db:"username" json:"username"`
	Role       string          `db:"role" json:"role"`
	XP         int             `db:"xp" json:"xp"`
	BalanceDGT decimal.Decimal `db:"balance_dgt" json:"balance_dgt"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// AccountAge returns how long the account has existed as of now.
func (u *User) AccountAge(now time.Time) time.Duration {
	return now.Sub(u.CreatedAt)
}
