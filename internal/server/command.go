// internal/server/command.go
//
// 單行 ASCII 指令的解析。解析只檢查語法；帳戶是否存在由 bank 層判斷。
//
//	l <id>
//	w <id> <amount>
//	d <id> <amount>
//	t <from> <to> <amount>
//	q

package server

import (
	"strconv"
	"strings"

	"threadbank/internal/bank"
)

// 指令代號。
const (
	OpBalance  = "l"
	OpWithdraw = "w"
	OpDeposit  = "d"
	OpTransfer = "t"
	OpQuit     = "q"
)

// Command 為解析後的指令。
type Command struct {
	Op      string
	Account int
	To      int
	Euros   int64 // 客戶端輸入的整數金額，用於回覆文字
	Amount  int64 // 換算後的分
}

// ParseCommand 解析一行（不含換行符號）指令。
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrUnknownCommand
	}

	cmd := Command{Op: fields[0], Account: -1, To: -1}
	args := fields[1:]

	switch cmd.Op {
	case OpBalance:
		if len(args) != 1 {
			return cmd, ErrInvalidAccount
		}
		id, err := parseAccount(args[0])
		if err != nil {
			return cmd, ErrInvalidAccount
		}
		cmd.Account = id

	case OpWithdraw, OpDeposit:
		if len(args) != 2 {
			return cmd, ErrInvalidParameters
		}
		id, err := parseAccount(args[0])
		if err != nil {
			return cmd, ErrInvalidParameters
		}
		euros, err := parseAmount(args[1])
		if err != nil {
			return cmd, ErrInvalidParameters
		}
		cmd.Account, cmd.Euros, cmd.Amount = id, euros, bank.Units(euros)

	case OpTransfer:
		if len(args) != 3 {
			return cmd, ErrInvalidParameters
		}
		from, err := parseAccount(args[0])
		if err != nil {
			return cmd, ErrInvalidParameters
		}
		to, err := parseAccount(args[1])
		if err != nil {
			return cmd, ErrInvalidParameters
		}
		euros, err := parseAmount(args[2])
		if err != nil {
			return cmd, ErrInvalidParameters
		}
		cmd.Account, cmd.To, cmd.Euros, cmd.Amount = from, to, euros, bank.Units(euros)

	default:
		return cmd, ErrUnknownCommand
	}
	return cmd, nil
}

func parseAccount(s string) (int, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// parseAmount 接受 32 位元範圍內的正整數歐元金額。
func parseAmount(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, ErrInvalidParameters
	}
	return n, nil
}
