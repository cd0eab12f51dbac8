// internal/bank/account_test.go
//
// Account 實體的單元測試：提款（含大額確認）、存款、計息、催收、停用與轉帳。
// 起始餘額皆為 10000，除非另有說明。

package bank

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startBalance = "10000"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestAccount(t *testing.T) *Account {
	t.Helper()
	return NewAccount("testAccount", d(startBalance))
}

// assertBalance 以 decimal.Equal 比較，"110" 與 "110.00" 視為相同。
func assertBalance(t *testing.T, want string, a *Account) {
	t.Helper()
	got := a.Balance()
	assert.Truef(t, d(want).Equal(got), "balance=%s want=%s", got, want)
}

func assertPending(t *testing.T, want string, a *Account) {
	t.Helper()
	got, ok := a.PendingWithdrawal()
	if want == "" {
		assert.False(t, ok, "pending should be none, got %s", got)
		return
	}
	require.True(t, ok, "pending should be %s, got none", want)
	assert.Truef(t, d(want).Equal(got), "pending=%s want=%s", got, want)
}

// withdrawConfirmed 提款並在需要時以相同金額確認。
func withdrawConfirmed(t *testing.T, a *Account, amount decimal.Decimal) {
	t.Helper()
	debited, err := a.Withdraw(amount)
	require.NoError(t, err)
	if !debited {
		debited, err = a.Withdraw(amount)
		require.NoError(t, err)
		require.True(t, debited)
	}
}

// depleteCredit 把餘額提領到正好 MaxDebt。
func depleteCredit(t *testing.T, a *Account) {
	t.Helper()
	withdrawConfirmed(t, a, a.Balance().Sub(MaxDebt))
}

// blockAccount 耗盡信用額度後催收五次：前四次仍有效，第五次停用。
func blockAccount(t *testing.T, a *Account) {
	t.Helper()
	depleteCredit(t, a)
	for i := 0; i < 4; i++ {
		require.NoError(t, a.CollectDebt())
		require.True(t, a.Active())
	}
	require.NoError(t, a.CollectDebt())
	require.False(t, a.Active())
}

func TestWithdraw_Successful(t *testing.T) {
	for _, amount := range []string{"10", "20", "21.7", "100", "1000", "10000", "20000"} {
		t.Run(amount, func(t *testing.T) {
			a := newTestAccount(t)
			debited, err := a.Withdraw(d(amount))
			require.NoError(t, err)
			assert.True(t, debited)
			assertBalance(t, d(startBalance).Sub(d(amount)).String(), a)
			assertPending(t, "", a)
			assert.True(t, a.Active())
		})
	}
}

func TestWithdraw_OverCredit(t *testing.T) {
	for _, amount := range []string{"110000.1", "200000", "300000"} {
		t.Run(amount, func(t *testing.T) {
			a := newTestAccount(t)
			_, err := a.Withdraw(d(amount))
			assert.ErrorIs(t, err, ErrExceedCredit)
			assertBalance(t, startBalance, a)
			assertPending(t, "", a)
			assert.True(t, a.Active())
		})
	}
}

func TestWithdraw_LargeAmountConfirmation(t *testing.T) {
	for _, amount := range []string{"20000.1", "30000", "40000", "110000"} {
		t.Run(amount, func(t *testing.T) {
			a := newTestAccount(t)

			debited, err := a.Withdraw(d(amount))
			require.NoError(t, err)
			assert.False(t, debited)
			assertBalance(t, startBalance, a)
			assertPending(t, amount, a)

			debited, err = a.Withdraw(d(amount))
			require.NoError(t, err)
			assert.True(t, debited)
			assertBalance(t, d(startBalance).Sub(d(amount)).String(), a)
			assertPending(t, "", a)
			assert.True(t, a.Active())
		})
	}
}

func TestWithdraw_ConfirmationMatchesNumericValue(t *testing.T) {
	a := newTestAccount(t)
	_, err := a.Withdraw(d("20000.1"))
	require.NoError(t, err)

	debited, err := a.Withdraw(d("20000.10"))
	require.NoError(t, err)
	assert.True(t, debited)
	assertBalance(t, "-10000.1", a)
}

func TestWithdraw_CancelledBySmallAmount(t *testing.T) {
	tests := []struct{ first, second string }{
		{"20000.1", "50"},
		{"30000", "100"},
		{"100000", "14"},
	}
	for _, tt := range tests {
		t.Run(tt.first+"/"+tt.second, func(t *testing.T) {
			a := newTestAccount(t)
			afterSecond := d(startBalance).Sub(d(tt.second)).String()

			_, err := a.Withdraw(d(tt.first))
			require.NoError(t, err)
			assertBalance(t, startBalance, a)
			assertPending(t, tt.first, a)

			debited, err := a.Withdraw(d(tt.second))
			require.NoError(t, err)
			assert.True(t, debited)
			assertBalance(t, afterSecond, a)
			assertPending(t, "", a)

			// 原本的大額提款已被取消，再次提款只會重新登記。
			debited, err = a.Withdraw(d(tt.first))
			require.NoError(t, err)
			assert.False(t, debited)
			assertBalance(t, afterSecond, a)
			assertPending(t, tt.first, a)
			assert.True(t, a.Active())
		})
	}
}

func TestWithdraw_CancelledByAnotherLargeAmount(t *testing.T) {
	tests := []struct{ first, second string }{
		{"20000.1", "25000"},
		{"30000", "90000"},
		{"100000", "110000"},
	}
	for _, tt := range tests {
		t.Run(tt.first+"/"+tt.second, func(t *testing.T) {
			a := newTestAccount(t)

			_, err := a.Withdraw(d(tt.first))
			require.NoError(t, err)
			assertPending(t, tt.first, a)

			debited, err := a.Withdraw(d(tt.second))
			require.NoError(t, err)
			assert.False(t, debited)
			assertBalance(t, startBalance, a)
			assertPending(t, tt.second, a)

			debited, err = a.Withdraw(d(tt.second))
			require.NoError(t, err)
			assert.True(t, debited)
			assertBalance(t, d(startBalance).Sub(d(tt.second)).String(), a)
			assertPending(t, "", a)
			assert.True(t, a.Active())
		})
	}
}

func TestWithdraw_FailureKeepsPending(t *testing.T) {
	a := newTestAccount(t)
	_, err := a.Withdraw(d("30000"))
	require.NoError(t, err)

	_, err = a.Withdraw(d("300000"))
	assert.ErrorIs(t, err, ErrExceedCredit)
	_, err = a.Withdraw(d("-1"))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assertBalance(t, startBalance, a)
	assertPending(t, "30000", a)
}

func TestDeposit(t *testing.T) {
	for _, amount := range []string{"1", "10", "100", "150", "1342.12", "54368976.54"} {
		t.Run(amount, func(t *testing.T) {
			a := newTestAccount(t)
			require.NoError(t, a.Deposit(d(amount)))
			assertBalance(t, d(startBalance).Add(d(amount)).String(), a)
			assert.True(t, a.Active())
		})
	}
}

func TestDeposit_KeepsPending(t *testing.T) {
	a := newTestAccount(t)
	_, err := a.Withdraw(d("25000"))
	require.NoError(t, err)
	require.NoError(t, a.Deposit(d("5")))
	assertPending(t, "25000", a)
}

func TestCapitalize(t *testing.T) {
	tests := []struct{ deposit, want string }{
		{"100", "101"},
		{"200", "202"},
		{"10", "10"},
		{"99", "99"},
		{"150", "151"},
		{"199", "200"},
		{"0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.deposit, func(t *testing.T) {
			a := newTestAccount(t)
			withdrawConfirmed(t, a, d(startBalance))
			if d(tt.deposit).IsPositive() {
				require.NoError(t, a.Deposit(d(tt.deposit)))
			}
			require.NoError(t, a.Capitalize())
			assertBalance(t, tt.want, a)
			assert.True(t, a.Active())
		})
	}
}

func TestCapitalize_NegativeBalance(t *testing.T) {
	for _, withdrawal := range []string{"1", "0.1", "0.01", "100", "1000"} {
		t.Run(withdrawal, func(t *testing.T) {
			a := newTestAccount(t)
			withdrawConfirmed(t, a, d(withdrawal).Add(d(startBalance)))
			assert.ErrorIs(t, a.Capitalize(), ErrCapitalizationNotApplicable)
			assert.True(t, a.Active())
			assertBalance(t, d(withdrawal).Neg().String(), a)
		})
	}
}

func TestCollectDebt(t *testing.T) {
	tests := []struct{ withdrawal, want string }{
		{"100", "-110"},
		{"200", "-220"},
		{"10", "-11"},
		{"1", "-1.1"},
		{"155.11", "-170.63"},
		{"99", "-108.9"},
		{"150", "-165"},
	}
	for _, tt := range tests {
		t.Run(tt.withdrawal, func(t *testing.T) {
			a := newTestAccount(t)
			withdrawConfirmed(t, a, d(tt.withdrawal).Add(d(startBalance)))
			require.NoError(t, a.CollectDebt())
			assertBalance(t, tt.want, a)
			assert.True(t, a.Active())
		})
	}
}

func TestCollectDebt_NonNegativeBalance(t *testing.T) {
	for _, deposit := range []string{"0", "100", "120", "1000000"} {
		t.Run(deposit, func(t *testing.T) {
			a := newTestAccount(t)
			withdrawConfirmed(t, a, d(startBalance))
			if d(deposit).IsPositive() {
				require.NoError(t, a.Deposit(d(deposit)))
			}
			assert.ErrorIs(t, a.CollectDebt(), ErrNoDebt)
			assertBalance(t, deposit, a)
		})
	}
}

func TestCollectDebt_BlocksFromMaxDebt(t *testing.T) {
	a := NewAccount("debtor", MaxDebt)
	for _, want := range []string{"-110000", "-121000", "-133100", "-146410"} {
		require.NoError(t, a.CollectDebt())
		assertBalance(t, want, a)
		require.True(t, a.Active())
	}
	require.NoError(t, a.CollectDebt())
	assertBalance(t, "-161051", a)
	assert.False(t, a.Active())
	assert.Equal(t, StatusBlocked, a.Status())

	// 停用後債務不再增加。
	assert.ErrorIs(t, a.CollectDebt(), ErrAccountDeleted)
	assertBalance(t, "-161051", a)
}

func TestBlockedAccountRejectsEverything(t *testing.T) {
	a := newTestAccount(t)
	blockAccount(t, a)
	before := a.Snapshot()

	assert.ErrorIs(t, a.Deposit(d("10")), ErrAccountDeleted)
	_, err := a.Withdraw(d("10"))
	assert.ErrorIs(t, err, ErrAccountDeleted)
	assert.ErrorIs(t, a.Capitalize(), ErrAccountDeleted)
	assert.ErrorIs(t, a.CollectDebt(), ErrAccountDeleted)
	assert.ErrorIs(t, a.Transfer(d("10"), NewAccount("recipient", d(startBalance))), ErrAccountDeleted)

	assert.Equal(t, before, a.Snapshot())
	assert.False(t, a.Active())
}

func TestBlockedAccountFreezesPending(t *testing.T) {
	a := NewAccount("debtor", d("-50000"))
	debited, err := a.Withdraw(d("30000"))
	require.NoError(t, err)
	require.False(t, debited)

	for i := 0; a.Active(); i++ {
		require.Less(t, i, 50, "account never blocked")
		require.NoError(t, a.CollectDebt())
	}

	_, err = a.Withdraw(d("30000"))
	assert.ErrorIs(t, err, ErrAccountDeleted)
	assertPending(t, "30000", a)
}

func TestTransfer_Successful(t *testing.T) {
	for _, amount := range []string{"10", "20", "21.7", "100", "1000", "10000", "20000", "50000"} {
		t.Run(amount, func(t *testing.T) {
			a := newTestAccount(t)
			recipient := NewAccount("recipient", d(startBalance))
			require.NoError(t, a.Transfer(d(amount), recipient))
			assertBalance(t, d(startBalance).Sub(d(amount)).String(), a)
			assertBalance(t, d(startBalance).Add(d(amount)).String(), recipient)
			assert.True(t, a.Active())
		})
	}
}

func TestTransfer_NilRecipient(t *testing.T) {
	a := newTestAccount(t)
	err := a.Transfer(d("10"), nil)
	assert.ErrorIs(t, err, ErrMissingRecipient)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assertBalance(t, startBalance, a)
	assert.True(t, a.Active())
}

func TestTransfer_BlockedRecipient(t *testing.T) {
	a := newTestAccount(t)
	recipient := NewAccount("recipient", d(startBalance))
	blockAccount(t, recipient)
	recipientBefore := recipient.Balance()

	err := a.Transfer(d("10"), recipient)
	assert.ErrorIs(t, err, ErrRecipientDeleted)
	assert.ErrorIs(t, err, ErrAccountDeleted)
	assert.True(t, a.Active())
	assertBalance(t, startBalance, a)
	assert.True(t, recipientBefore.Equal(recipient.Balance()))
}

// 收款方停用的檢查排在所有付款方檢查之後。
func TestTransfer_SenderChecksPrecedeBlockedRecipient(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		amount  string
		wantErr error
	}{
		{"over transfer limit", startBalance, "60000", ErrTransferLimitExceeded},
		{"over credit", "-99999", "2", ErrExceedCredit},
		{"valid transfer", startBalance, "10", ErrRecipientDeleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := NewAccount("sender", d(tt.initial))
			recipient := NewAccount("recipient", d(startBalance))
			blockAccount(t, recipient)
			recipientBefore := recipient.Balance()

			err := sender.Transfer(d(tt.amount), recipient)
			assert.ErrorIs(t, err, tt.wantErr)
			assertBalance(t, tt.initial, sender)
			assert.True(t, recipientBefore.Equal(recipient.Balance()))
			assert.True(t, sender.Active())
		})
	}
}

func TestTransfer_TooBig(t *testing.T) {
	for _, amount := range []string{"50000.01", "100000", "70000", "150000"} {
		t.Run(amount, func(t *testing.T) {
			a := newTestAccount(t)
			recipient := NewAccount("recipient", d(startBalance))
			assert.ErrorIs(t, a.Transfer(d(amount), recipient), ErrTransferLimitExceeded)
			assertBalance(t, startBalance, recipient)
			assertBalance(t, startBalance, a)
			assert.True(t, a.Active())
			assert.True(t, recipient.Active())
		})
	}
}

func TestTransfer_OverCredit(t *testing.T) {
	tests := []struct{ initial, amount string }{
		{"-70000", "50000"},
		{"-50000.1", "50000"},
		{"-100000", "0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.initial+"/"+tt.amount, func(t *testing.T) {
			a := newTestAccount(t)
			withdrawConfirmed(t, a, d(startBalance).Add(d(tt.initial).Abs()))
			assertBalance(t, tt.initial, a)

			recipient := NewAccount("recipient", d(startBalance))
			assert.ErrorIs(t, a.Transfer(d(tt.amount), recipient), ErrExceedCredit)
			assertBalance(t, tt.initial, a)
			assertBalance(t, startBalance, recipient)
			assert.True(t, a.Active())
			assert.True(t, recipient.Active())
		})
	}
}

func TestTransfer_LeavesPendingAlone(t *testing.T) {
	a := newTestAccount(t)
	recipient := NewAccount("recipient", d(startBalance))
	_, err := a.Withdraw(d("30000"))
	require.NoError(t, err)

	require.NoError(t, a.Transfer(d("30000"), recipient))
	assertPending(t, "30000", a)
	assertBalance(t, "-20000", a)
}

func TestTransfer_ToSelf(t *testing.T) {
	a := newTestAccount(t)
	require.NoError(t, a.Transfer(d("500"), a))
	assertBalance(t, startBalance, a)
	assert.ErrorIs(t, a.Transfer(d("50000.01"), a), ErrTransferLimitExceeded)
}

func TestTransfer_ConservesTotal(t *testing.T) {
	a := NewAccount("a", d("-12345.67"))
	b := NewAccount("b", d("890.12"))
	total := a.Balance().Add(b.Balance())

	tests := []struct {
		amount  string
		wantErr error
	}{
		{"0.01", nil},
		{"49999.99", nil},
		{"1234.5", nil},
		{"50000", nil},
		{"50000.01", ErrTransferLimitExceeded},
	}
	for _, tt := range tests {
		if tt.wantErr == nil {
			require.NoError(t, a.Transfer(d(tt.amount), b))
			require.NoError(t, b.Transfer(d(tt.amount), a))
		} else {
			assert.ErrorIs(t, a.Transfer(d(tt.amount), b), tt.wantErr)
			assert.ErrorIs(t, b.Transfer(d(tt.amount), a), tt.wantErr)
		}
		assert.True(t, total.Equal(a.Balance().Add(b.Balance())))
	}
	assertBalance(t, "-12345.67", a)
}

func TestNonPositiveArguments(t *testing.T) {
	for _, amount := range []string{"0", "-0.01", "-0.1", "-20"} {
		t.Run(amount, func(t *testing.T) {
			a := newTestAccount(t)
			_, err := a.Withdraw(d(amount))
			assert.ErrorIs(t, err, ErrNonPositiveAmount)
			assert.ErrorIs(t, a.Deposit(d(amount)), ErrNonPositiveAmount)
			assert.ErrorIs(t, a.Transfer(d(amount), NewAccount("recipient", d(startBalance))), ErrNonPositiveAmount)

			assertBalance(t, startBalance, a)
			assert.True(t, a.Active())
		})
	}
}

func TestArgumentCheckedBeforeState(t *testing.T) {
	a := newTestAccount(t)
	blockAccount(t, a)

	_, err := a.Withdraw(d("0"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, a.Deposit(d("-1")), ErrInvalidArgument)
	assert.ErrorIs(t, a.Transfer(d("10"), nil), ErrInvalidArgument)
	// 寄款方停用的檢查早於轉帳上限。
	assert.ErrorIs(t, a.Transfer(d("60000"), NewAccount("r", d("0"))), ErrAccountDeleted)
}

func TestSnapshot(t *testing.T) {
	a := newTestAccount(t)
	s := a.Snapshot()
	assert.Equal(t, "testAccount", s.ID)
	assert.Nil(t, s.Pending)
	assert.True(t, s.Active())

	_, err := a.Withdraw(d("25000"))
	require.NoError(t, err)
	s = a.Snapshot()
	require.NotNil(t, s.Pending)
	assert.True(t, d("25000").Equal(*s.Pending))
	assert.Equal(t, "active", s.Status.String())
}

func TestConcurrentOppositeTransfers(t *testing.T) {
	a := NewAccount("a", d("1000"))
	b := NewAccount("b", d("1000"))

	const n = 200
	var wg sync.WaitGroup
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, a.Transfer(d("1"), b))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, b.Transfer(d("1"), a))
		}()
	}
	wg.Wait()

	assert.True(t, d("2000").Equal(a.Balance().Add(b.Balance())))
	assertBalance(t, "1000", a)
	assertBalance(t, "1000", b)
}

func TestConcurrentWithdrawalsRespectCreditLimit(t *testing.T) {
	a := NewAccount("a", decimal.Zero)

	const workers = 200
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			debited, err := a.Withdraw(d("1000"))
			if err != nil {
				assert.ErrorIs(t, err, ErrExceedCredit)
				return
			}
			if debited {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, accepted)
	assertBalance(t, MaxDebt.String(), a)
}
