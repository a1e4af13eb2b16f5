// internal/server/handler.go
//
// Package server
// ─────────────────────────────────────────────
// 提供串流 socket 介面，作為 bank 模組的應用層。
// 每個指令處理器僅負責：
//  1. 接收已解析的指令
//  2. 呼叫 bank 層執行商業邏輯
//  3. 回傳單行回覆
//  4. 寫出一筆稽核紀錄（含變動後餘額）
//
// 分層：
//   - bank：純商業邏輯與鎖定紀律，與連線無關。
//   - desk：佇列、分派與 worker 生命週期。
//   - server：指令迴圈、回覆格式與關閉協調。
package server

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"threadbank/internal/audit"
	"threadbank/internal/bank"
	"threadbank/internal/desk"
	"threadbank/internal/metrics"
)

// Handler 執行 session 的指令迴圈，實作 desk.Handler。
type Handler struct {
	table    *bank.Table
	stop     *desk.Flag
	greeting string
	audit    *audit.Logger
	logger   *zap.Logger
	metrics  *metrics.Instruments
}

// NewHandler 建立指令處理器；a、logger、m 可為 nil。
func NewHandler(t *bank.Table, stop *desk.Flag, greeting string, a *audit.Logger, logger *zap.Logger, m *metrics.Instruments) *Handler {
	if a == nil {
		a = audit.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.Noop()
	}
	return &Handler{table: t, stop: stop, greeting: greeting, audit: a, logger: logger, metrics: m}
}

// Serve 先送出問候行，接著每讀一行執行一個指令並回覆一行。
// 收到 "q" 時不回覆直接結束；讀寫失敗或連線關閉時靜默結束。
// 關閉旗標在每次讀取前檢查：進行中的指令一定會完成並回覆。
func (h *Handler) Serve(deskID int, s *desk.Session) {
	defer s.Close()
	log := h.logger.With(zap.Int("desk", deskID), zap.Stringer("session", s.ID))

	if err := writeLine(s.Conn, h.greeting); err != nil {
		log.Debug("greeting failed", zap.Error(err))
		return
	}

	sc := bufio.NewScanner(s.Conn)
	for !h.stop.IsSet() && sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == OpQuit {
			log.Debug("client quit")
			return
		}
		reply := h.Execute(deskID, s.ID.String(), line)
		if err := writeLine(s.Conn, reply); err != nil {
			log.Debug("reply failed", zap.Error(err))
			return
		}
	}
	if err := sc.Err(); err != nil {
		log.Debug("session read ended", zap.Error(err))
	}
}

// balance 處理 "l <id>"。
func (h *Handler) balance(rec *audit.Record, cmd Command) (string, error) {
	b, err := h.table.Balance(cmd.Account)
	if err != nil {
		rec.Message = fmt.Sprintf("Desk %d: Invalid balance inquiry", rec.Desk)
		return "", err
	}
	rec.Balance = bank.FormatAmount(b)
	rec.Message = fmt.Sprintf("Desk %d: Balance inquiry for account %d: %s", rec.Desk, cmd.Account, rec.Balance)
	return ok(rec.Balance), nil
}

// withdraw 處理 "w <id> <amount>"。
func (h *Handler) withdraw(rec *audit.Record, cmd Command) (string, error) {
	b, err := h.table.Withdraw(cmd.Account, cmd.Amount)
	switch {
	case err == nil:
		rec.Balance = bank.FormatAmount(b)
		rec.Message = fmt.Sprintf("Desk %d: Withdrew %d from account %d, new balance: %s", rec.Desk, cmd.Euros, cmd.Account, rec.Balance)
		return ok(fmt.Sprintf("Withdrew %d euros", cmd.Euros)), nil
	case isFundsError(err):
		rec.Balance = bank.FormatAmount(b)
		rec.Message = fmt.Sprintf("Desk %d: Failed withdrawal of %d from account %d (insufficient funds)", rec.Desk, cmd.Euros, cmd.Account)
	default:
		rec.Message = fmt.Sprintf("Desk %d: Invalid withdrawal command", rec.Desk)
	}
	return "", err
}

// deposit 處理 "d <id> <amount>"。
func (h *Handler) deposit(rec *audit.Record, cmd Command) (string, error) {
	b, err := h.table.Deposit(cmd.Account, cmd.Amount)
	if err != nil {
		rec.Message = fmt.Sprintf("Desk %d: Invalid deposit command", rec.Desk)
		return "", err
	}
	rec.Balance = bank.FormatAmount(b)
	rec.Message = fmt.Sprintf("Desk %d: Deposited %d to account %d, new balance: %s", rec.Desk, cmd.Euros, cmd.Account, rec.Balance)
	return ok(fmt.Sprintf("Deposited %d euros", cmd.Euros)), nil
}

// transfer 處理 "t <from> <to> <amount>"。
func (h *Handler) transfer(rec *audit.Record, cmd Command) (string, error) {
	res, err := h.table.Transfer(cmd.Account, cmd.To, cmd.Amount)
	switch {
	case err == nil:
		rec.Balance = bank.FormatAmount(res.FromBal)
		rec.Message = fmt.Sprintf("Desk %d: Transferred %d from account %d to account %d, new balances: %s / %s",
			rec.Desk, cmd.Euros, cmd.Account, cmd.To, bank.FormatAmount(res.FromBal), bank.FormatAmount(res.ToBal))
		return ok(fmt.Sprintf("Transferred %d euros", cmd.Euros)), nil
	case isSameAccount(err):
		rec.Message = fmt.Sprintf("Desk %d: Failed transfer (same account)", rec.Desk)
	case isFundsError(err):
		rec.Balance = bank.FormatAmount(res.FromBal)
		rec.Message = fmt.Sprintf("Desk %d: Failed transfer of %d from account %d (insufficient funds)", rec.Desk, cmd.Euros, cmd.Account)
	default:
		rec.Message = fmt.Sprintf("Desk %d: Invalid transfer command", rec.Desk)
	}
	return "", err
}

// invalidMessage 為解析失敗時的稽核訊息，依指令代號給出對應的描述。
func invalidMessage(deskID int, op string) string {
	switch op {
	case OpBalance:
		return fmt.Sprintf("Desk %d: Invalid balance inquiry", deskID)
	case OpWithdraw:
		return fmt.Sprintf("Desk %d: Invalid withdrawal command", deskID)
	case OpDeposit:
		return fmt.Sprintf("Desk %d: Invalid deposit command", deskID)
	case OpTransfer:
		return fmt.Sprintf("Desk %d: Invalid transfer command", deskID)
	default:
		return fmt.Sprintf("Desk %d: Unknown command", deskID)
	}
}

func amountText(cmd Command) string {
	if cmd.Euros <= 0 {
		return ""
	}
	return strconv.FormatInt(cmd.Euros, 10)
}

func (h *Handler) observe(op, outcome string) {
	h.metrics.Command(context.Background(), op, outcome)
}
