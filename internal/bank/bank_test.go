// internal/bank/bank_test.go
//
// 本檔為帳戶表的單元與並行測試。
// 覆蓋：查詢、存提款、轉帳、餘額非負、總額守恆、反向轉帳無死鎖、快照還原。

package bank

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"threadbank/internal/storage"
)

// bal 為小工具：安全取出帳戶餘額。
func bal(t *testing.T, tb *Table, id int) int64 {
	t.Helper()
	b, err := tb.Balance(id)
	if err != nil {
		t.Fatalf("Balance(%d) err=%v", id, err)
	}
	return b
}

func TestNewTable(t *testing.T) {
	tb := NewTable(100, Units(1000))
	if tb.Len() != 100 {
		t.Fatalf("Len=%d want=100", tb.Len())
	}
	if got := bal(t, tb, 99); got != 100000 {
		t.Fatalf("balance=%d want=100000", got)
	}
	if _, err := tb.Balance(100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := tb.Balance(-1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

// TestDepositWithdraw 測試存款與提款：正常路徑、非法金額、餘額不足。
func TestDepositWithdraw(t *testing.T) {
	tb := NewTable(3, 10000)

	if b, err := tb.Deposit(1, 5000); err != nil || b != 15000 {
		t.Fatalf("deposit b=%d err=%v", b, err)
	}
	if b, err := tb.Withdraw(1, 3000); err != nil || b != 12000 {
		t.Fatalf("withdraw b=%d err=%v", b, err)
	}

	if _, err := tb.Deposit(1, 0); !errors.Is(err, ErrBadAmount) {
		t.Fatalf("expect ErrBadAmount, got %v", err)
	}
	if _, err := tb.Withdraw(1, -1); !errors.Is(err, ErrBadAmount) {
		t.Fatalf("expect ErrBadAmount, got %v", err)
	}
	if _, err := tb.Deposit(7, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expect ErrNotFound, got %v", err)
	}

	// 餘額不足：拒絕且餘額不變
	if b, err := tb.Withdraw(1, 12001); !errors.Is(err, ErrInsufficient) || b != 12000 {
		t.Fatalf("expect ErrInsufficient with unchanged balance, got b=%d err=%v", b, err)
	}
	if got := bal(t, tb, 1); got != 12000 {
		t.Fatalf("balance=%d want=12000", got)
	}

	// 剛好提光是允許的
	if b, err := tb.Withdraw(1, 12000); err != nil || b != 0 {
		t.Fatalf("withdraw all b=%d err=%v", b, err)
	}
}

func TestDepositOverflow(t *testing.T) {
	tb := NewTable(2, 0)
	tb.Restore([]storage.Record{{ID: 0, Balance: 1<<63 - 10}})
	if _, err := tb.Deposit(0, 11); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expect ErrOverflow, got %v", err)
	}
	if _, err := tb.Transfer(1, 0, 0); !errors.Is(err, ErrBadAmount) {
		t.Fatalf("expect ErrBadAmount, got %v", err)
	}
}

// TestTransferScenario 驗證 5 → 9 轉帳後的餘額，以及失敗情境不改變狀態。
func TestTransferScenario(t *testing.T) {
	tb := NewTable(10, Units(1000))

	res, err := tb.Transfer(5, 9, Units(400))
	if err != nil {
		t.Fatal(err)
	}
	if res.FromBal != Units(600) || res.ToBal != Units(1400) {
		t.Fatalf("result=%+v", res)
	}
	if got := FormatAmount(bal(t, tb, 5)); got != "600.00" {
		t.Fatalf("l 5 = %s", got)
	}
	if got := FormatAmount(bal(t, tb, 9)); got != "1400.00" {
		t.Fatalf("l 9 = %s", got)
	}

	if _, err := tb.Withdraw(5, Units(900)); !errors.Is(err, ErrInsufficient) {
		t.Fatalf("expect ErrInsufficient, got %v", err)
	}
	if got := FormatAmount(bal(t, tb, 5)); got != "600.00" {
		t.Fatalf("l 5 after failed withdraw = %s", got)
	}

	if _, err := tb.Transfer(5, 5, Units(10)); !errors.Is(err, ErrSameAccount) {
		t.Fatalf("expect ErrSameAccount, got %v", err)
	}
	if _, err := tb.Transfer(5, 9, Units(601)); !errors.Is(err, ErrInsufficient) {
		t.Fatalf("expect ErrInsufficient, got %v", err)
	}
	if _, err := tb.Transfer(5, 10, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expect ErrNotFound, got %v", err)
	}
	for _, amt := range []int64{0, -5} {
		if _, err := tb.Transfer(5, 9, amt); !errors.Is(err, ErrBadAmount) {
			t.Fatalf("amt=%d want ErrBadAmount, got %v", amt, err)
		}
	}
	if tb.Total() != Units(10000) {
		t.Fatalf("total=%d", tb.Total())
	}
}

// TestConcurrentReversedTransfers 驗證反向並行轉帳（例如 3→7 與 7→3）皆會完成。
func TestConcurrentReversedTransfers(t *testing.T) {
	tb := NewTable(10, Units(1000))

	const n = 500
	var wg sync.WaitGroup
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = tb.Transfer(3, 7, 10)
		}()
		go func() {
			defer wg.Done()
			_, _ = tb.Transfer(7, 3, 5)
		}()
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("transfers did not complete: deadlock")
	}

	if total := bal(t, tb, 3) + bal(t, tb, 7); total != Units(2000) {
		t.Fatalf("total=%d want=%d", total, Units(2000))
	}
}

// TestRandomOperationsConservation 驗證隨機並行操作下：餘額永不為負，
// 總額只依成功的存提款變動，轉帳不改變總額。
func TestRandomOperationsConservation(t *testing.T) {
	const accounts = 8
	tb := NewTable(accounts, Units(100))
	start := tb.Total()

	var (
		mu    sync.Mutex
		delta int64
		wg    sync.WaitGroup
	)
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			var local int64
			for i := 0; i < 2000; i++ {
				a, b := rng.Intn(accounts), rng.Intn(accounts)
				amt := int64(rng.Intn(3000) + 1)
				switch rng.Intn(4) {
				case 0:
					if _, err := tb.Deposit(a, amt); err == nil {
						local += amt
					}
				case 1:
					if _, err := tb.Withdraw(a, amt); err == nil {
						local -= amt
					}
				case 2:
					_, _ = tb.Transfer(a, b, amt)
				default:
					if v, err := tb.Balance(a); err != nil || v < 0 {
						t.Errorf("balance=%d err=%v", v, err)
					}
				}
			}
			mu.Lock()
			delta += local
			mu.Unlock()
		}(int64(w))
	}
	wg.Wait()

	if got := tb.Total(); got != start+delta {
		t.Fatalf("total=%d want=%d", got, start+delta)
	}
	for id := 0; id < accounts; id++ {
		if b := bal(t, tb, id); b < 0 {
			t.Fatalf("account %d negative: %d", id, b)
		}
	}
}

// TestConcurrentDepositsRaceSafety 驗證多個 goroutine 同時存款仍具資料一致性。
func TestConcurrentDepositsRaceSafety(t *testing.T) {
	tb := NewTable(1, 0)

	const workers = 100
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := tb.Deposit(0, 1); err != nil {
				t.Errorf("deposit err: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := bal(t, tb, 0); got != workers {
		t.Fatalf("balance=%d want=%d", got, workers)
	}
}

// TestSnapshotRestore 驗證快照與還原；超出範圍或負餘額的記錄被略過。
func TestSnapshotRestore(t *testing.T) {
	tb := NewTable(4, 1000)
	_, _ = tb.Deposit(0, 200)
	_, _ = tb.Withdraw(1, 100)
	_, _ = tb.Transfer(0, 3, 800)

	snap := tb.Snapshot()
	want := []storage.Record{{ID: 0, Balance: 400}, {ID: 1, Balance: 900}, {ID: 2, Balance: 1000}, {ID: 3, Balance: 1800}}
	for i := range want {
		if snap[i] != want[i] {
			t.Fatalf("snap[%d]=%+v want=%+v", i, snap[i], want[i])
		}
	}

	tb2 := NewTable(4, 1000)
	recs := append(snap[:2:2], storage.Record{ID: 42, Balance: 7}, storage.Record{ID: 2, Balance: -500})
	if skipped := tb2.Restore(recs); skipped != 2 {
		t.Fatalf("skipped=%d want 2", skipped)
	}
	if bal(t, tb2, 0) != 400 || bal(t, tb2, 1) != 900 {
		t.Fatalf("restored balances mismatch")
	}
	// 負餘額的記錄不套用
	if bal(t, tb2, 2) != 1000 {
		t.Fatalf("account 2 = %d want default 1000", bal(t, tb2, 2))
	}
	// 未出現在記錄中的帳戶維持初始值
	if bal(t, tb2, 3) != 1000 {
		t.Fatalf("account 3 = %d want default 1000", bal(t, tb2, 3))
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		5:      "0.05",
		60000:  "600.00",
		140000: "1400.00",
		12345:  "123.45",
	}
	for in, want := range cases {
		if got := FormatAmount(in); got != want {
			t.Errorf("FormatAmount(%d)=%q want %q", in, got, want)
		}
	}
}
