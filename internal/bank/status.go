// internal/bank/status.go
//
// 本檔定義帳戶狀態與待確認的大額提款。

package bank

import "github.com/shopspring/decimal"

// Status 為帳戶生命週期狀態；只能由 StatusActive 轉為 StatusBlocked。
type Status uint8

const (
	StatusActive Status = iota
	StatusBlocked
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// pendingWithdrawal 為單格的大額提款待確認記錄（none | pending(amount)）。
type pendingWithdrawal struct {
	amount decimal.Decimal
	set    bool
}

func pendingOf(amount decimal.Decimal) pendingWithdrawal {
	return pendingWithdrawal{amount: amount, set: true}
}

// matches 回報 amount 是否正好確認目前待確認的金額。
func (p pendingWithdrawal) matches(amount decimal.Decimal) bool {
	return p.set && p.amount.Equal(amount)
}
