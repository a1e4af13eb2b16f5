// internal/bank/bank.go

// Package bank 定義核心商業邏輯：查詢、存款、提款、轉帳。
// 與單一互斥鎖的設計不同，這裡每個帳戶各自持有一把讀寫鎖：
//   - 查詢只取單一帳戶的讀鎖。
//   - 存款、提款只取單一帳戶的寫鎖。
//   - 轉帳同時取兩個帳戶的寫鎖，且一律依帳戶編號由小到大取得，
//     與 from/to 方向無關，因此任兩筆並行轉帳不會形成循環等待。
//
// 金額以 int64 的最小貨幣單位（分）儲存，避免浮點誤差。
package bank

import (
	"math"

	"threadbank/internal/storage"
)

// Table 為固定大小的帳戶表，帳戶編號密集分布於 [0, N)。
// 帳戶於建立後永不新增或刪除，因此切片本身不需要鎖。
type Table struct {
	accts []*Account
}

// NewTable 建立 n 個帳戶，每個帳戶的初始餘額為 initial（分）。
func NewTable(n int, initial int64) *Table {
	t := &Table{accts: make([]*Account, n)}
	for i := range t.accts {
		t.accts[i] = &Account{id: i, balance: initial}
	}
	return t
}

// Len 回傳帳戶數量。
func (t *Table) Len() int { return len(t.accts) }

func (t *Table) account(id int) (*Account, error) {
	if id < 0 || id >= len(t.accts) {
		return nil, ErrNotFound
	}
	return t.accts[id], nil
}

// Balance 在讀鎖下回傳帳戶餘額。
func (t *Table) Balance(id int) (int64, error) {
	a, err := t.account(id)
	if err != nil {
		return 0, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.balance, nil
}

// Deposit 存款：金額需 > 0；回傳存款後餘額。
func (t *Table) Deposit(id int, amt int64) (int64, error) {
	a, err := t.account(id)
	if err != nil {
		return 0, err
	}
	if amt <= 0 {
		return 0, ErrBadAmount
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.balance > math.MaxInt64-amt {
		return a.balance, ErrOverflow
	}
	a.balance += amt
	return a.balance, nil
}

// Withdraw 提款：金額需 > 0 且不得超過餘額（維持非負）；回傳提款後餘額。
// 失敗時回傳的餘額為未變動的原餘額。
func (t *Table) Withdraw(id int, amt int64) (int64, error) {
	a, err := t.account(id)
	if err != nil {
		return 0, err
	}
	if amt <= 0 {
		return 0, ErrBadAmount
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.balance < amt {
		return a.balance, ErrInsufficient
	}
	a.balance -= amt
	return a.balance, nil
}

// Transfer 轉帳結果：兩邊帳戶在釋放鎖之前讀到的餘額。
type Transfer struct {
	From, To       int
	Amount         int64
	FromBal, ToBal int64
}

// Transfer 在兩把寫鎖下原子地將 amt 由 from 轉到 to。
// 檢查順序：帳戶存在 → 金額 → 相同帳戶；前三者皆不取鎖。
func (t *Table) Transfer(from, to int, amt int64) (Transfer, error) {
	res := Transfer{From: from, To: to, Amount: amt}
	src, err := t.account(from)
	if err != nil {
		return res, err
	}
	dst, err := t.account(to)
	if err != nil {
		return res, err
	}
	if amt <= 0 {
		return res, ErrBadAmount
	}
	if from == to {
		return res, ErrSameAccount
	}

	first, second := src, dst
	if second.id < first.id {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if src.balance < amt {
		res.FromBal, res.ToBal = src.balance, dst.balance
		return res, ErrInsufficient
	}
	if dst.balance > math.MaxInt64-amt {
		res.FromBal, res.ToBal = src.balance, dst.balance
		return res, ErrOverflow
	}
	src.balance -= amt
	dst.balance += amt
	res.FromBal, res.ToBal = src.balance, dst.balance
	return res, nil
}

// Total 依編號順序取得全部讀鎖後加總餘額，得到一致的總額快照。
func (t *Table) Total() int64 {
	for _, a := range t.accts {
		a.mu.RLock()
	}
	var sum int64
	for _, a := range t.accts {
		sum += a.balance
	}
	for i := len(t.accts) - 1; i >= 0; i-- {
		t.accts[i].mu.RUnlock()
	}
	return sum
}

// Snapshot 依帳戶編號順序匯出所有 (編號, 餘額) 記錄，供持久化使用。
// 只在所有 desk 停止後呼叫，但仍逐一取讀鎖以維持鎖定紀律。
func (t *Table) Snapshot() []storage.Record {
	out := make([]storage.Record, len(t.accts))
	for i, a := range t.accts {
		a.mu.RLock()
		out[i] = storage.Record{ID: int32(a.id), Balance: a.balance}
		a.mu.RUnlock()
	}
	return out
}

// Restore 由持久化記錄還原餘額並回傳略過的記錄數。
// 超出範圍的編號與負餘額的記錄皆略過，這些帳戶與缺少記錄的帳戶維持初始餘額。
func (t *Table) Restore(recs []storage.Record) int {
	skipped := 0
	for _, r := range recs {
		a, err := t.account(int(r.ID))
		if err != nil || r.Balance < 0 {
			skipped++
			continue
		}
		a.mu.Lock()
		a.balance = r.Balance
		a.mu.Unlock()
	}
	return skipped
}
