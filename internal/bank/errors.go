// internal/bank/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 這些錯誤屬於商業邏輯層級（非系統錯誤），由上層（console）轉換成對應的錯誤代碼。
// 同一類別的錯誤共用一個根錯誤，呼叫端以 errors.Is 判斷類別即可。

package bank

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument 為參數錯誤的根錯誤；永遠最先檢查。
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNonPositiveAmount 代表金額 <= 0。
	ErrNonPositiveAmount = fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)

	// ErrMissingRecipient 代表轉帳沒有收款帳戶。
	ErrMissingRecipient = fmt.Errorf("%w: recipient must not be nil", ErrInvalidArgument)

	// ErrAccountDeleted 代表帳戶已被停用（債務超過 DebtToBlock）。
	ErrAccountDeleted = errors.New("account is deleted")

	// ErrRecipientDeleted 代表收款帳戶已被停用；errors.Is(err, ErrAccountDeleted) 亦成立。
	ErrRecipientDeleted = fmt.Errorf("%w: recipient", ErrAccountDeleted)

	// ErrExceedCredit 代表操作後餘額會低於 MaxDebt。
	ErrExceedCredit = errors.New("operation would exceed the credit limit")

	// ErrTransferLimitExceeded 代表單筆轉帳金額超過 MaxTransfer。
	ErrTransferLimitExceeded = errors.New("transfer amount exceeds the limit")

	// ErrCapitalizationNotApplicable 代表對負餘額計息。
	ErrCapitalizationNotApplicable = errors.New("cannot capitalize a negative balance")

	// ErrNoDebt 代表對非負餘額催收債務。
	ErrNoDebt = errors.New("account has no debt")

	// ErrNotFound 代表帳戶不存在。
	ErrNotFound = errors.New("account not found")

	// ErrAccountExists 代表帳戶 ID 已被使用。
	ErrAccountExists = errors.New("account already exists")
)
