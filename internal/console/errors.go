// internal/console/errors.go
//
// 將 bank 的領域錯誤對應為穩定的錯誤代碼，輸出格式為 "error [<code>]: <message>"。
// 集中管理對應關係，確保所有指令的錯誤輸出一致。

package console

import (
	"errors"

	"ledger/internal/bank"
)

// errUsage 代表指令格式錯誤（參數數量、金額格式、未知指令）。
var errUsage = errors.New("usage")

// Code 回傳 err 所屬的錯誤類別代碼。
// ErrRecipientDeleted 包裝 ErrAccountDeleted，因此同屬 account-deleted。
func Code(err error) string {
	switch {
	case errors.Is(err, errUsage):
		return "usage"
	case errors.Is(err, bank.ErrInvalidArgument):
		return "invalid-argument"
	case errors.Is(err, bank.ErrAccountDeleted):
		return "account-deleted"
	case errors.Is(err, bank.ErrExceedCredit):
		return "exceed-credit"
	case errors.Is(err, bank.ErrTransferLimitExceeded):
		return "transfer-limit-exceeded"
	case errors.Is(err, bank.ErrCapitalizationNotApplicable):
		return "capitalization-not-applicable"
	case errors.Is(err, bank.ErrNoDebt):
		return "no-debt"
	case errors.Is(err, bank.ErrNotFound):
		return "not-found"
	case errors.Is(err, bank.ErrAccountExists):
		return "already-exists"
	default:
		return "internal"
	}
}
