// internal/server/errors.go
//
// 協定層錯誤（protocol errors）：指令格式不正確時回傳給客戶端，連線保持開啟。

package server

import "errors"

var (
	// ErrUnknownCommand 代表指令代號不存在。
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidParameters 代表參數數量或型別錯誤，或金額非正數。
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrInvalidAccount 代表查詢指令的帳戶參數無法解析。
	ErrInvalidAccount = errors.New("invalid account")
)
