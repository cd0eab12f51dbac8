// internal/bank/policy.go
//
// 信用額度、大額提款、轉帳上限與利率等常數。

package bank

import "github.com/shopspring/decimal"

var (
	// MaxDebt 為提款或轉帳後允許的最低餘額。
	MaxDebt = decimal.NewFromInt(-100000)

	// DebtToBlock 為催收後停用帳戶的門檻（嚴格低於才停用）。
	DebtToBlock = decimal.NewFromInt(-150000)

	// MaxWithdrawal 為需要二次確認的提款門檻（嚴格高於才需確認）。
	MaxWithdrawal = decimal.NewFromInt(20000)

	// MaxTransfer 為單筆轉帳上限。
	MaxTransfer = decimal.NewFromInt(50000)

	// CapitalizationRate 為非負餘額的計息利率。
	CapitalizationRate = decimal.RequireFromString("0.01")

	// CreditRate 為負餘額的催收利率。
	CreditRate = decimal.RequireFromString("0.1")
)

// interestOn 計算計息金額：無條件捨去到整數單位，不足一元的利息不入帳。
func interestOn(balance decimal.Decimal) decimal.Decimal {
	return balance.Mul(CapitalizationRate).Floor()
}

// debtIncrementOn 計算催收增額：精確到分並向下取整。
// balance 為負，因此增額只會更負（對銀行有利）。
func debtIncrementOn(balance decimal.Decimal) decimal.Decimal {
	return balance.Mul(CreditRate).Shift(2).Floor().Shift(-2)
}
