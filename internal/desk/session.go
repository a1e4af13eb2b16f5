// internal/desk/session.go

package desk

import (
	"net"
	"time"

	"github.com/google/uuid"
)

// Session 為一條已接受的客戶端連線。
// 從出列到指令迴圈結束，只由取得它的 desk worker 擁有；結束後連線即關閉。
type Session struct {
	ID       uuid.UUID
	Conn     net.Conn
	Accepted time.Time
}

// NewSession 包裝剛接受的連線。
func NewSession(conn net.Conn) *Session {
	return &Session{ID: uuid.New(), Conn: conn, Accepted: time.Now()}
}

// Close 關閉底層連線。
func (s *Session) Close() error { return s.Conn.Close() }

// Entry 為佇列中的一筆待服務項目：(session, desk 編號)。
type Entry struct {
	Session *Session
	Desk    int
}
