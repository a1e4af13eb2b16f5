// internal/audit/audit.go

// Package audit 提供交易稽核紀錄（audit log）。
// 每個完成的指令寫出一行，附帶時間戳、desk 編號、操作描述與結果；
// 所有 desk 共用同一個 sink，寫入經由 zapcore.Lock 串行化。
package audit

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Outcome 值。
const (
	OutcomeOK      = "ok"
	OutcomeFail    = "fail"
	OutcomeInvalid = "invalid"
)

// Record 描述一個已完成指令的稽核內容。
// Account/To 為 -1 表示不適用；Balance 為空字串表示不附帶餘額。
type Record struct {
	Desk    int
	Session string
	Op      string
	Account int
	To      int
	Amount  string
	Balance string
	Outcome string
	Message string
}

// Logger 為稽核紀錄的寫入端。
type Logger struct {
	z *zap.Logger
}

// New 以既有的 zap logger 建立稽核紀錄器（測試時可傳入 observer core）。
func New(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{z: z}
}

// Open 以附加模式開啟 path，回傳稽核紀錄器與關閉函式。
func Open(path string) (*Logger, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(f), zapcore.InfoLevel)

	l := New(zap.New(core))
	closeFn := func() error {
		_ = l.z.Sync()
		return f.Close()
	}
	return l, closeFn, nil
}

// Event 寫出與指令無關的伺服器事件，例如啟動與關閉。
func (l *Logger) Event(msg string) {
	l.z.Info(msg)
}

// Write 寫出一筆指令稽核紀錄。
func (l *Logger) Write(r Record) {
	fields := make([]zap.Field, 0, 8)
	fields = append(fields, zap.Int("desk", r.Desk))
	if r.Session != "" {
		fields = append(fields, zap.String("session", r.Session))
	}
	if r.Op != "" {
		fields = append(fields, zap.String("op", r.Op))
	}
	if r.Account >= 0 {
		fields = append(fields, zap.Int("account", r.Account))
	}
	if r.To >= 0 {
		fields = append(fields, zap.Int("to", r.To))
	}
	if r.Amount != "" {
		fields = append(fields, zap.String("amount", r.Amount))
	}
	if r.Balance != "" {
		fields = append(fields, zap.String("balance", r.Balance))
	}
	fields = append(fields, zap.String("outcome", r.Outcome))
	l.z.Info(r.Message, fields...)
}

// Sync 將緩衝內容寫出。
func (l *Logger) Sync() error { return l.z.Sync() }
