package console

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/bank"
)

func formatMoney(v decimal.Decimal) string { return v.StringFixed(2) }

// formatSnapshot 輸出一行帳戶狀態，例如：
//
//	alice balance=9900.00 pending=none status=active
func formatSnapshot(s bank.Snapshot) string {
	pending := "none"
	if s.Pending != nil {
		pending = formatMoney(*s.Pending)
	}
	return fmt.Sprintf("%s balance=%s pending=%s status=%s", s.ID, formatMoney(s.Balance), pending, s.Status)
}

func formatLog(l bank.Log) string {
	counter := "-"
	if l.CounterID != "" {
		counter = l.CounterID
	}
	return fmt.Sprintf("%s %-12s %-3s %12s counter=%s balance=%s %s",
		l.Time.Format(time.RFC3339), l.Operation, l.Direction, formatMoney(l.Amount),
		counter, formatMoney(l.Balance), l.Note)
}
