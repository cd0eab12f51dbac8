// Package bank 定義核心領域模型與業務規則。
// 本檔定義 Account 實體與其五個操作，不含任何 I/O 或日誌細節。

package bank

import (
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// lockSeq 為每個 Account 分配遞增序號，轉帳時依序號取得兩把鎖以避免死鎖。
var lockSeq atomic.Uint64

// Account represents a bank account with a credit line.
// 所有欄位由 mu 保護；每個操作的前置檢查與欄位變更在同一臨界區內完成。
type Account struct {
	mu      sync.Mutex
	seq     uint64
	id      string
	balance decimal.Decimal
	pending pendingWithdrawal
	status  Status
}

// NewAccount 以 ID 與初始餘額建立帳戶；初始餘額不做任何檢查（可為負）。
func NewAccount(id string, balance decimal.Decimal) *Account {
	return &Account{
		seq:     lockSeq.Add(1),
		id:      id,
		balance: balance,
		status:  StatusActive,
	}
}

// ID 回傳帳戶識別碼。
func (a *Account) ID() string { return a.id }

// Balance 回傳目前餘額。
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// PendingWithdrawal 回傳待確認的大額提款金額；沒有時 ok 為 false。
func (a *Account) PendingWithdrawal() (amount decimal.Decimal, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending.amount, a.pending.set
}

// Status 回傳帳戶狀態。
func (a *Account) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Active 回報帳戶是否仍可操作。
func (a *Account) Active() bool { return a.Status() == StatusActive }

// Snapshot 回傳帳戶目前狀態的值拷貝。
func (a *Account) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// Withdraw 提款。金額超過 MaxWithdrawal 時第一次呼叫只登記待確認金額，
// 以相同金額再呼叫一次才會扣款；debited 回報本次是否真的扣款。
// 任何與待確認金額不同的提款都會取消原本的待確認。
func (a *Account) Withdraw(amount decimal.Decimal) (debited bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.withdraw(amount)
}

// Deposit 存款：金額需 > 0 且帳戶未停用；不影響待確認提款。
func (a *Account) Deposit(amount decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deposit(amount)
}

// Capitalize 對非負餘額計息，利息無條件捨去到整數。
func (a *Account) Capitalize() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.capitalize()
}

// CollectDebt 對負餘額加計 10% 債務（精確到分、向下取整）。
// 加計後餘額低於 DebtToBlock 時帳戶停用，之後所有操作都回傳 ErrAccountDeleted。
func (a *Account) CollectDebt() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.collectDebt()
}

// Transfer 從 a 轉出 amount 到 recipient。
// 轉帳期間同時持有雙方的鎖，外部看不到只完成一半的狀態。
func (a *Account) Transfer(amount decimal.Decimal, recipient *Account) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if recipient == nil {
		return ErrMissingRecipient
	}
	unlock := lockPair(a, recipient)
	defer unlock()
	return a.transfer(amount, recipient)
}

func (a *Account) withdraw(amount decimal.Decimal) (bool, error) {
	if !amount.IsPositive() {
		return false, ErrNonPositiveAmount
	}
	if a.status != StatusActive {
		return false, ErrAccountDeleted
	}
	if a.balance.Sub(amount).LessThan(MaxDebt) {
		return false, ErrExceedCredit
	}
	if amount.GreaterThan(MaxWithdrawal) && !a.pending.matches(amount) {
		a.pending = pendingOf(amount)
		return false, nil
	}
	a.balance = a.balance.Sub(amount)
	a.pending = pendingWithdrawal{}
	return true, nil
}

func (a *Account) deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if a.status != StatusActive {
		return ErrAccountDeleted
	}
	a.balance = a.balance.Add(amount)
	return nil
}

func (a *Account) capitalize() error {
	if a.status != StatusActive {
		return ErrAccountDeleted
	}
	if a.balance.IsNegative() {
		return ErrCapitalizationNotApplicable
	}
	a.balance = a.balance.Add(interestOn(a.balance))
	return nil
}

func (a *Account) collectDebt() error {
	if a.status != StatusActive {
		return ErrAccountDeleted
	}
	if !a.balance.IsNegative() {
		return ErrNoDebt
	}
	a.balance = a.balance.Add(debtIncrementOn(a.balance))
	if a.balance.LessThan(DebtToBlock) {
		a.status = StatusBlocked
	}
	return nil
}

// transfer 假設呼叫端已持有 a 與 recipient 的鎖，且 amount 與 recipient 已驗證。
func (a *Account) transfer(amount decimal.Decimal, recipient *Account) error {
	if a.status != StatusActive {
		return ErrAccountDeleted
	}
	if amount.GreaterThan(MaxTransfer) {
		return ErrTransferLimitExceeded
	}
	if a.balance.Sub(amount).LessThan(MaxDebt) {
		return ErrExceedCredit
	}
	if recipient.status != StatusActive {
		return ErrRecipientDeleted
	}
	a.balance = a.balance.Sub(amount)
	// 前面已確認金額為正且收款方有效，此處不會失敗。
	return recipient.deposit(amount)
}

func (a *Account) snapshotLocked() Snapshot {
	s := Snapshot{ID: a.id, Balance: a.balance, Status: a.status}
	if a.pending.set {
		p := a.pending.amount
		s.Pending = &p
	}
	return s
}

// lockPair 依序號由小到大鎖住兩個帳戶；同一帳戶只鎖一次。
func lockPair(a, b *Account) (unlock func()) {
	if a == b {
		a.mu.Lock()
		return a.mu.Unlock
	}
	first, second := a, b
	if second.seq < first.seq {
		first, second = second, first
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}

// Snapshot 為 Account 在某一時點的唯讀拷貝。
type Snapshot struct {
	ID      string
	Balance decimal.Decimal
	Pending *decimal.Decimal
	Status  Status
}

// Active 回報快照當下帳戶是否可操作。
func (s Snapshot) Active() bool { return s.Status == StatusActive }
