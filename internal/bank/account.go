// internal/bank/account.go

// Package bank 定義帳戶表（Account Table）與其鎖定紀律。
// 本檔定義單一帳戶記錄，不含任何連線或儲存細節。

package bank

import "sync"

// Account is one slot of the account table.
// 餘額只能在持有 mu（讀鎖或寫鎖）時讀寫。
type Account struct {
	mu      sync.RWMutex
	id      int
	balance int64 // 以「分」為單位
}

// ID 回傳帳戶編號（在 [0, N) 範圍內，永不改變）。
func (a *Account) ID() int { return a.id }
