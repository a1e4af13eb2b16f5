// internal/desk/worker.go
//
// Desk worker 狀態機：WaitingForWork → Serving → WaitingForWork ... → Stopped。
// 觀察到關閉旗標且佇列回報沒有工作時進入終態 Stopped。

package desk

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"threadbank/internal/metrics"
)

// State 為 worker 目前所處的狀態。
type State int32

const (
	WaitingForWork State = iota
	Serving
	Stopped
)

func (s State) String() string {
	switch s {
	case WaitingForWork:
		return "waiting"
	case Serving:
		return "serving"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Handler 執行一個 session 的指令迴圈；回傳時 session 已結束。
// Handler 負責關閉 session 的連線。
type Handler interface {
	Serve(desk int, s *Session)
}

// HandlerFunc 讓一般函式滿足 Handler。
type HandlerFunc func(desk int, s *Session)

// Serve 呼叫 f(desk, s)。
func (f HandlerFunc) Serve(desk int, s *Session) { f(desk, s) }

// Worker 為單一 desk 的服務者，只從自己的佇列取工作。
type Worker struct {
	id      int
	queue   *Queue
	stop    *Flag
	handler Handler
	logger  *zap.Logger
	metrics *metrics.Instruments

	state   atomic.Int32
	current atomic.Pointer[Session]
}

// NewWorker 建立編號為 id 的 worker。
func NewWorker(id int, q *Queue, stop *Flag, h Handler, logger *zap.Logger, m *metrics.Instruments) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.Noop()
	}
	return &Worker{
		id:      id,
		queue:   q,
		stop:    stop,
		handler: h,
		logger:  logger.With(zap.Int("desk", id)),
		metrics: m,
	}
}

// ID 回傳 desk 編號。
func (w *Worker) ID() int { return w.id }

// State 回傳目前狀態。
func (w *Worker) State() State { return State(w.state.Load()) }

// Run 執行 worker 迴圈直到進入 Stopped；在自己的 goroutine 中呼叫。
func (w *Worker) Run() {
	ctx := context.Background()
	defer w.state.Store(int32(Stopped))

	for !w.stop.IsSet() {
		w.state.Store(int32(WaitingForWork))
		e, ok := w.queue.Dequeue()
		if !ok {
			continue
		}
		w.metrics.Dequeued(ctx, w.id)

		w.current.Store(e.Session)
		if w.stop.IsSet() {
			// 出列後才觀察到關閉：不開始新的 session。
			w.current.Store(nil)
			w.refuse(e)
			break
		}

		w.state.Store(int32(Serving))
		start := time.Now()
		w.handler.Serve(w.id, e.Session)
		w.current.Store(nil)
		w.metrics.SessionServed(ctx, w.id, time.Since(start))
	}

	for _, e := range w.queue.Drain() {
		w.metrics.Dequeued(ctx, w.id)
		w.refuse(e)
	}
	w.logger.Debug("desk stopped")
}

// Interrupt 讓目前 session 中閒置的讀取立即返回，使指令迴圈得以觀察到關閉旗標。
// 正在執行的指令不受影響：讀取期限只作用在下一次讀取。
func (w *Worker) Interrupt() {
	if s := w.current.Load(); s != nil {
		_ = s.Conn.SetReadDeadline(time.Now())
	}
}

func (w *Worker) refuse(e Entry) {
	w.logger.Info("session closed unserved at shutdown", zap.Stringer("session", e.Session.ID))
	_ = e.Session.Close()
}
