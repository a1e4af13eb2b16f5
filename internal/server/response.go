// internal/server/response.go
//
// 本檔負責統一回覆格式：每個指令恰好一行 "ok: <detail>" 或 "fail: <reason>"。
// 錯誤到回覆文字的對應集中在 failReason，各指令處理器不自行組字串。

package server

import (
	"errors"
	"io"

	"threadbank/internal/bank"
)

func ok(detail string) string { return "ok: " + detail }

func fail(reason string) string { return "fail: " + reason }

// failReason 將錯誤轉為客戶端看到的原因。op 用於在同一種錯誤下給出更貼切的文字。
func failReason(op string, err error) string {
	switch {
	case errors.Is(err, ErrUnknownCommand):
		return "Unknown command"
	case errors.Is(err, ErrInvalidAccount):
		return "Invalid account"
	case errors.Is(err, bank.ErrNotFound) && op == OpBalance:
		return "Invalid account"
	case errors.Is(err, bank.ErrInsufficient):
		return "Insufficient funds"
	case errors.Is(err, bank.ErrSameAccount):
		return "Cannot transfer to same account"
	case errors.Is(err, bank.ErrOverflow):
		return "Amount too large"
	default:
		return "Invalid parameters"
	}
}

// writeLine 寫出一行回覆（自動加上換行）。
func writeLine(w io.Writer, line string) error {
	_, err := io.WriteString(w, line+"\n")
	return err
}
