// internal/bank/bank.go

// Package bank 定義核心商業邏輯：帳戶開立、存款、提款、計息、催收、轉帳與交易日誌。
// Bank 以讀寫鎖保護帳戶索引表；實際的餘額變更在各帳戶自己的鎖內完成，
// 轉帳同時持有雙方的鎖，不同帳戶的操作可並行。
// 金額以 decimal 表示，避免浮點誤差。
package bank

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Bank 為聚合根 (Aggregate Root)：管理全系統帳戶。
// - mu：只保護 accts 索引表。
// - journal：每筆成功的金額異動都寫入一筆或多筆 Log。
type Bank struct {
	mu      sync.RWMutex
	accts   map[string]*Account
	journal Journal
	logger  *zap.Logger
	now     func() time.Time
}

// NewBank 建立空白銀行實例。journal 為 nil 時使用 MemoryJournal，logger 為 nil 時不輸出日誌。
func NewBank(journal Journal, logger *zap.Logger) *Bank {
	if journal == nil {
		journal = NewMemoryJournal()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bank{
		accts:   make(map[string]*Account),
		journal: journal,
		logger:  logger,
		now:     time.Now,
	}
}

// Open 以 ID 與初始餘額開立帳戶；id 為空時自動產生 UUID。
// 初始餘額不做檢查，可為負數。
func (b *Bank) Open(id string, balance decimal.Decimal) (Snapshot, error) {
	if id == "" {
		id = uuid.NewString()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.accts[id]; ok {
		return Snapshot{}, fmt.Errorf("open %q: %w", id, ErrAccountExists)
	}
	a := NewAccount(id, balance)
	b.accts[id] = a
	b.logger.Info("account opened", zap.String("account_id", id), zap.Stringer("balance", balance))
	return a.Snapshot(), nil
}

// Get 依 ID 取得帳戶的目前快照；若不存在回傳 ErrNotFound。
func (b *Bank) Get(id string) (Snapshot, error) {
	a, err := b.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	return a.Snapshot(), nil
}

// List 回傳所有帳戶快照，依 ID 排序。
func (b *Bank) List() []Snapshot {
	b.mu.RLock()
	accts := make([]*Account, 0, len(b.accts))
	for _, a := range b.accts {
		accts = append(accts, a)
	}
	b.mu.RUnlock()

	out := make([]Snapshot, 0, len(accts))
	for _, a := range accts {
		out = append(out, a.Snapshot())
	}
	slices.SortFunc(out, func(x, y Snapshot) int { return strings.Compare(x.ID, y.ID) })
	return out
}

// Deposit 存款：金額需 > 0；若帳戶不存在回傳 ErrNotFound。
func (b *Bank) Deposit(id string, amount decimal.Decimal) (Snapshot, error) {
	if !amount.IsPositive() {
		return Snapshot{}, fmt.Errorf("deposit: %w", ErrNonPositiveAmount)
	}
	a, err := b.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	snap, err := b.apply(a, func() ([]Log, error) {
		if err := a.deposit(amount); err != nil {
			return nil, err
		}
		return []Log{{
			AccountID: id, Operation: OpDeposit, Amount: amount,
			Direction: DirectionIn, Balance: a.balance, Note: "deposit",
		}}, nil
	})
	if err != nil {
		b.rejected(OpDeposit, id, err, zap.Stringer("amount", amount))
		return Snapshot{}, fmt.Errorf("deposit to %q: %w", id, err)
	}
	b.logger.Info("deposit completed",
		zap.String("account_id", id),
		zap.Stringer("amount", amount),
		zap.Stringer("balance", snap.Balance))
	return snap, nil
}

// Withdraw 提款。大額提款第一次只登記待確認（debited 為 false），
// 以相同金額再次提款才會扣款。
func (b *Bank) Withdraw(id string, amount decimal.Decimal) (snap Snapshot, debited bool, err error) {
	if !amount.IsPositive() {
		return Snapshot{}, false, fmt.Errorf("withdraw: %w", ErrNonPositiveAmount)
	}
	a, err := b.lookup(id)
	if err != nil {
		return Snapshot{}, false, err
	}
	snap, err = b.apply(a, func() ([]Log, error) {
		ok, err := a.withdraw(amount)
		if err != nil || !ok {
			return nil, err
		}
		debited = true
		return []Log{{
			AccountID: id, Operation: OpWithdraw, Amount: amount,
			Direction: DirectionOut, Balance: a.balance, Note: "withdraw",
		}}, nil
	})
	if err != nil {
		b.rejected(OpWithdraw, id, err, zap.Stringer("amount", amount))
		return Snapshot{}, false, fmt.Errorf("withdraw from %q: %w", id, err)
	}
	if !debited {
		b.logger.Info("large withdrawal awaiting confirmation",
			zap.String("account_id", id),
			zap.Stringer("amount", amount))
		return snap, false, nil
	}
	b.logger.Info("withdrawal completed",
		zap.String("account_id", id),
		zap.Stringer("amount", amount),
		zap.Stringer("balance", snap.Balance))
	return snap, true, nil
}

// Capitalize 對帳戶計息；利息為 0 時不寫日誌。
func (b *Bank) Capitalize(id string) (Snapshot, error) {
	a, err := b.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	snap, err := b.apply(a, func() ([]Log, error) {
		before := a.balance
		if err := a.capitalize(); err != nil {
			return nil, err
		}
		interest := a.balance.Sub(before)
		if interest.IsZero() {
			return nil, nil
		}
		return []Log{{
			AccountID: id, Operation: OpCapitalize, Amount: interest,
			Direction: DirectionIn, Balance: a.balance, Note: "interest",
		}}, nil
	})
	if err != nil {
		b.rejected(OpCapitalize, id, err)
		return Snapshot{}, fmt.Errorf("capitalize %q: %w", id, err)
	}
	b.logger.Info("interest capitalized", zap.String("account_id", id), zap.Stringer("balance", snap.Balance))
	return snap, nil
}

// CollectDebt 對負餘額加計債務；若因此停用帳戶，記錄於日誌備註並以 Warn 輸出。
func (b *Bank) CollectDebt(id string) (Snapshot, error) {
	a, err := b.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	snap, err := b.apply(a, func() ([]Log, error) {
		before := a.balance
		if err := a.collectDebt(); err != nil {
			return nil, err
		}
		note := "debt collected"
		if a.status == StatusBlocked {
			note = "debt collected; account blocked"
		}
		return []Log{{
			AccountID: id, Operation: OpCollectDebt, Amount: before.Sub(a.balance),
			Direction: DirectionOut, Balance: a.balance, Note: note,
		}}, nil
	})
	if err != nil {
		b.rejected(OpCollectDebt, id, err)
		return Snapshot{}, fmt.Errorf("collect debt from %q: %w", id, err)
	}
	if !snap.Active() {
		b.logger.Warn("account blocked after debt collection",
			zap.String("account_id", id),
			zap.Stringer("balance", snap.Balance))
		return snap, nil
	}
	b.logger.Info("debt collected", zap.String("account_id", id), zap.Stringer("balance", snap.Balance))
	return snap, nil
}

// Transfer 轉帳：先檢核金額與雙方帳戶存在，再於同時持有雙方鎖的臨界區內
// 完成扣款、入帳與雙邊日誌。任一步驟失敗皆不會改變任何帳戶狀態。
func (b *Bank) Transfer(fromID, toID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("transfer: %w", ErrNonPositiveAmount)
	}
	from, err := b.lookup(fromID)
	if err != nil {
		return err
	}
	to, err := b.lookup(toID)
	if err != nil {
		return err
	}

	unlock := lockPair(from, to)
	defer unlock()
	if err := from.transfer(amount, to); err != nil {
		b.rejected(OpTransfer, fromID, err, zap.String("recipient_id", toID), zap.Stringer("amount", amount))
		return fmt.Errorf("transfer %q -> %q: %w", fromID, toID, err)
	}
	b.record([]Log{
		{
			AccountID: fromID, Operation: OpTransfer, Amount: amount, Direction: DirectionOut,
			CounterID: toID, Balance: from.balance, Note: "transfer",
		},
		{
			AccountID: toID, Operation: OpTransfer, Amount: amount, Direction: DirectionIn,
			CounterID: fromID, Balance: to.balance, Note: "transfer",
		},
	})
	b.logger.Info("transfer completed",
		zap.String("account_id", fromID),
		zap.String("recipient_id", toID),
		zap.Stringer("amount", amount))
	return nil
}

// Logs 回傳指定帳戶的交易日誌。
func (b *Bank) Logs(id string) ([]Log, error) {
	if _, err := b.lookup(id); err != nil {
		return nil, err
	}
	logs, err := b.journal.Entries(id)
	if err != nil {
		return nil, fmt.Errorf("read journal of %q: %w", id, err)
	}
	return logs, nil
}

func (b *Bank) lookup(id string) (*Account, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	a, ok := b.accts[id]
	if !ok {
		return nil, fmt.Errorf("account %q: %w", id, ErrNotFound)
	}
	return a, nil
}

// apply 在帳戶臨界區內執行 fn，成功時在同一臨界區內寫入日誌並回傳快照，
// 使日誌順序與餘額變化順序一致。
func (b *Bank) apply(a *Account, fn func() ([]Log, error)) (Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	entries, err := fn()
	if err != nil {
		return Snapshot{}, err
	}
	b.record(entries)
	return a.snapshotLocked(), nil
}

// record 寫入日誌。金額異動已生效，日誌失敗只記錄錯誤不回滾。
func (b *Bank) record(entries []Log) {
	if len(entries) == 0 {
		return
	}
	now := b.now()
	for i := range entries {
		entries[i].Time = now
	}
	if err := b.journal.Record(entries); err != nil {
		b.logger.Error("failed to record journal entries",
			zap.String("account_id", entries[0].AccountID),
			zap.String("operation", string(entries[0].Operation)),
			zap.Error(err))
	}
}

func (b *Bank) rejected(op Operation, id string, err error, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("operation", string(op)),
		zap.String("account_id", id),
		zap.Error(err),
	}, fields...)
	b.logger.Warn("operation rejected", fields...)
}
