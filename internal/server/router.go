// internal/server/router.go
//
// 本檔負責指令路由：由指令代號對應到處理器。
// 與 handler.go 分離：
//   - handler.go 定義「如何處理指令」
//   - router.go 定義「指令如何被導向」與稽核、指標的共同收尾

package server

import (
	"errors"

	"threadbank/internal/audit"
	"threadbank/internal/bank"
)

type route func(h *Handler, rec *audit.Record, cmd Command) (string, error)

var routes = map[string]route{
	OpBalance:  (*Handler).balance,
	OpWithdraw: (*Handler).withdraw,
	OpDeposit:  (*Handler).deposit,
	OpTransfer: (*Handler).transfer,
}

// Execute 解析並執行一行指令，回傳回覆文字（不含換行）。
// 每個指令恰好寫出一筆稽核紀錄。
func (h *Handler) Execute(deskID int, session, line string) string {
	cmd, err := ParseCommand(line)
	rec := audit.Record{
		Desk:    deskID,
		Session: session,
		Op:      cmd.Op,
		Account: cmd.Account,
		To:      cmd.To,
		Amount:  amountText(cmd),
	}

	var reply string
	if err == nil {
		reply, err = routes[cmd.Op](h, &rec, cmd)
	} else {
		rec.Account, rec.To, rec.Amount = -1, -1, ""
		rec.Message = invalidMessage(deskID, cmd.Op)
	}

	switch {
	case err == nil:
		rec.Outcome = audit.OutcomeOK
	case isFundsError(err) || isSameAccount(err):
		rec.Outcome = audit.OutcomeFail
		reply = fail(failReason(cmd.Op, err))
	default:
		rec.Outcome = audit.OutcomeInvalid
		reply = fail(failReason(cmd.Op, err))
	}

	h.audit.Write(rec)
	h.observe(metricOp(cmd.Op), rec.Outcome)
	return reply
}

func metricOp(op string) string {
	if _, known := routes[op]; known {
		return op
	}
	return "unknown"
}

func isFundsError(err error) bool { return errors.Is(err, bank.ErrInsufficient) }

func isSameAccount(err error) bool { return errors.Is(err, bank.ErrSameAccount) }
