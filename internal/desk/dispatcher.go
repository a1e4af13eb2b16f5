// internal/desk/dispatcher.go

package desk

import (
	"context"

	"go.uber.org/zap"

	"threadbank/internal/metrics"
)

// Dispatcher 把新 session 分派到目前佔用最少的 desk 佇列。
type Dispatcher struct {
	queues  []*Queue
	stop    *Flag
	logger  *zap.Logger
	metrics *metrics.Instruments
}

// NewDispatcher 建立 dispatcher；logger 與 m 可為 nil。
func NewDispatcher(queues []*Queue, stop *Flag, logger *zap.Logger, m *metrics.Instruments) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.Noop()
	}
	return &Dispatcher{queues: queues, stop: stop, logger: logger, metrics: m}
}

// Assign 回傳佔用數最小的 desk 編號；平手時取編號最小者。
// 讀取的是不持鎖的快照，之後的 Enqueue 仍可能因佇列已滿而阻塞。
func (d *Dispatcher) Assign() int {
	best, least := 0, d.queues[0].Len()
	for i := 1; i < len(d.queues); i++ {
		if n := d.queues[i].Len(); n < least {
			best, least = i, n
		}
	}
	return best
}

// Dispatch 將 s 放入選定 desk 的佇列並回傳 desk 編號。
// 目標佇列已滿時阻塞；關閉開始後回傳 ErrShuttingDown，s 不會被放入任何佇列。
func (d *Dispatcher) Dispatch(s *Session) (int, error) {
	if d.stop.IsSet() {
		return -1, ErrShuttingDown
	}
	ctx := context.Background()
	desk := d.Assign()
	// 先計入佇列深度：worker 可能在 Enqueue 返回前就取出並扣除
	d.metrics.Enqueued(ctx, desk)
	if err := d.queues[desk].Enqueue(Entry{Session: s, Desk: desk}); err != nil {
		d.metrics.Dequeued(ctx, desk)
		return -1, err
	}
	d.logger.Debug("session dispatched",
		zap.Stringer("session", s.ID),
		zap.Int("desk", desk),
	)
	return desk, nil
}
