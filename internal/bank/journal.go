// internal/bank/journal.go
//
// 交易日誌：每筆實際移動金額的操作都會寫入一筆 Log。
// Journal 為介面，Bank 只依賴介面；預設實作為 in-memory。

package bank

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Operation 為產生日誌的操作種類。
type Operation string

const (
	OpDeposit     Operation = "deposit"
	OpWithdraw    Operation = "withdraw"
	OpCapitalize  Operation = "capitalize"
	OpCollectDebt Operation = "collect_debt"
	OpTransfer    Operation = "transfer"
)

// Direction 為資金流向。
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Log represents a transaction record.
type Log struct {
	Time      time.Time
	AccountID string
	Operation Operation
	Amount    decimal.Decimal
	Direction Direction
	CounterID string
	Balance   decimal.Decimal // 操作後餘額
	Note      string
}

// Journal 記錄並查詢交易日誌。
//
//go:generate mockgen -destination=mocks/mock_journal.go -package=mocks -source=journal.go Journal
type Journal interface {
	Record(entries []Log) error
	Entries(accountID string) ([]Log, error)
}

// MemoryJournal 為 in-memory 的 Journal 實作，可安全並行使用。
type MemoryJournal struct {
	mu      sync.Mutex
	entries map[string][]Log
}

// NewMemoryJournal 建立空白日誌。
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{entries: make(map[string][]Log)}
}

// Record 依序追加日誌；同一次呼叫的多筆記錄一起寫入。
func (j *MemoryJournal) Record(entries []Log) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, e := range entries {
		j.entries[e.AccountID] = append(j.entries[e.AccountID], e)
	}
	return nil
}

// Entries 回傳指定帳戶的日誌（值拷貝），避免外部修改內部切片。
func (j *MemoryJournal) Entries(accountID string) ([]Log, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	src := j.entries[accountID]
	out := make([]Log, len(src))
	copy(out, src)
	return out, nil
}
