package desk

import (
	"net"
	"testing"
	"time"
)

// pipeSession 建立一個以 net.Pipe 為底的 session，回傳 session 與客戶端那一端。
func pipeSession(t *testing.T) (*Session, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return NewSession(server), client
}

// within 在 d 內等待 ch 關閉或收到值，否則讓測試失敗。
func within[T any](t *testing.T, d time.Duration, ch chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(d):
		t.Fatalf("timed out waiting for %s", what)
	}
	var zero T
	return zero
}
