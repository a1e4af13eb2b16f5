// internal/bank/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 這些錯誤屬於商業邏輯層級，由上層的指令處理器轉換成 "fail: ..." 回覆。

package bank

import "errors"

var (
	// ErrNotFound 代表帳戶編號超出帳戶表範圍。
	ErrNotFound = errors.New("account not found")

	// ErrBadAmount 代表金額非法（<= 0）。
	ErrBadAmount = errors.New("amount must be > 0")

	// ErrInsufficient 代表餘額不足，提款或轉出失敗且餘額不變。
	ErrInsufficient = errors.New("insufficient balance")

	// ErrSameAccount 代表轉帳來源與目標帳戶相同。
	ErrSameAccount = errors.New("from and to are same")

	// ErrOverflow 代表存入後餘額會超出 int64 可表示範圍。
	ErrOverflow = errors.New("balance overflow")
)
