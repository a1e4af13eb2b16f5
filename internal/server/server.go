// internal/server/server.go
//
// Server 為整個程序的上下文物件：帳戶表、desk 佇列、worker、dispatcher、
// 關閉旗標與監聽資源皆在此建立一次，再以參照交給各元件，不使用全域變數。
//
// 關閉順序（每一步完成後才進行下一步）：
//  1. 設定關閉旗標
//  2. 廣播喚醒所有 desk 佇列，並中斷各 desk 閒置中的讀取
//  3. 停止接受新連線
//  4. 等待所有 worker 進入 Stopped
//  5. 呼叫 persist 保存帳戶表
//  6. 釋放監聽資源（移除 socket 檔）

package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"threadbank/internal/audit"
	"threadbank/internal/bank"
	"threadbank/internal/config"
	"threadbank/internal/desk"
	"threadbank/internal/metrics"
)

// Server 串接 transport、dispatcher 與 desk 池。
type Server struct {
	cfg     config.Config
	table   *bank.Table
	persist func() error

	logger  *zap.Logger
	audit   *audit.Logger
	metrics *metrics.Instruments

	stop       *desk.Flag
	queues     []*desk.Queue
	workers    []*desk.Worker
	dispatcher *desk.Dispatcher
	handler    *Handler

	ln       net.Listener
	ready    chan struct{}
	quit     chan struct{}
	quitOnce sync.Once
}

// Option 調整 Server 的可選依賴。
type Option func(*Server)

// WithLogger 設定程序日誌。
func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.logger = l } }

// WithAudit 設定稽核紀錄器。
func WithAudit(a *audit.Logger) Option { return func(s *Server) { s.audit = a } }

// WithMetrics 設定指標。
func WithMetrics(m *metrics.Instruments) Option { return func(s *Server) { s.metrics = m } }

// NewServer 建立伺服器。persist 可為 nil；若提供則於所有 desk 停止後呼叫一次。
func NewServer(cfg config.Config, t *bank.Table, persist func() error, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		table:   t,
		persist: persist,
		stop:    desk.NewFlag(),
		ready:   make(chan struct{}),
		quit:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.audit == nil {
		s.audit = audit.New(nil)
	}
	if s.metrics == nil {
		s.metrics = metrics.Noop()
	}

	s.handler = NewHandler(t, s.stop, cfg.Greeting, s.audit, s.logger, s.metrics)
	s.queues = make([]*desk.Queue, cfg.Desks)
	s.workers = make([]*desk.Worker, cfg.Desks)
	for i := range s.queues {
		s.queues[i] = desk.NewQueue(cfg.QueueCapacity, s.stop)
		s.workers[i] = desk.NewWorker(i, s.queues[i], s.stop, s.handler, s.logger, s.metrics)
	}
	s.dispatcher = desk.NewDispatcher(s.queues, s.stop, s.logger, s.metrics)
	return s
}

// Ready 回傳在開始監聽後關閉的 channel。
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr 回傳實際監聽位址；僅在 Ready 之後有效。
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// States 回傳各 desk worker 目前的狀態。
func (s *Server) States() []desk.State {
	out := make([]desk.State, len(s.workers))
	for i, w := range s.workers {
		out[i] = w.State()
	}
	return out
}

// Shutdown 觸發關閉程序；可重複呼叫。Run 會在完成關閉後返回。
func (s *Server) Shutdown() {
	s.quitOnce.Do(func() { close(s.quit) })
}

// Run 開始監聽並服務，直到 ctx 結束或 Shutdown 被呼叫，然後執行關閉程序。
// 回傳的錯誤來自監聽失敗或保存失敗；保存失敗時記憶體狀態不受影響。
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.listen()
	if err != nil {
		return err
	}
	s.ln = ln
	close(s.ready)

	s.audit.Event("Bank server started")
	s.logger.Info("bank server started",
		zap.String("network", s.cfg.Network),
		zap.Stringer("addr", ln.Addr()),
		zap.Int("desks", len(s.workers)),
		zap.Int("queue_capacity", s.cfg.QueueCapacity),
		zap.Int("accounts", s.table.Len()),
	)

	var g errgroup.Group
	for _, w := range s.workers {
		w := w
		g.Go(func() error {
			w.Run()
			return nil
		})
	}

	accepting := make(chan struct{})
	go func() {
		defer close(accepting)
		s.acceptLoop()
	}()

	select {
	case <-ctx.Done():
	case <-s.quit:
	}
	return s.shutdown(&g, accepting)
}

func (s *Server) listen() (net.Listener, error) {
	if s.cfg.Network == "unix" {
		// 清除上次遺留的 socket 檔。
		if err := os.Remove(s.cfg.Address); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
	}
	ln, err := net.Listen(s.cfg.Network, s.cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("listen %s %s: %w", s.cfg.Network, s.cfg.Address, err)
	}
	return ln, nil
}

// acceptLoop 接受連線並交給 dispatcher；dispatcher 在目標佇列滿時阻塞。
func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.stop.IsSet() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed", zap.Error(err))
			continue
		}

		sess := desk.NewSession(conn)
		if _, err := s.dispatcher.Dispatch(sess); err != nil {
			s.logger.Info("session refused", zap.Stringer("session", sess.ID), zap.Error(err))
			_ = sess.Close()
		}
	}
}

func (s *Server) shutdown(g *errgroup.Group, accepting <-chan struct{}) error {
	s.logger.Info("bank server shutting down")
	s.audit.Event("Bank server shutting down")

	s.stop.Set()
	for _, q := range s.queues {
		q.Wake()
	}
	for _, w := range s.workers {
		w.Interrupt()
	}

	_ = s.ln.Close()
	<-accepting

	_ = g.Wait()
	s.logger.Info("all desks stopped")

	var saveErr error
	if s.persist != nil {
		if err := s.persist(); err != nil {
			saveErr = fmt.Errorf("save accounts: %w", err)
			s.logger.Error("saving accounts failed", zap.Error(err))
		} else {
			s.logger.Info("accounts saved")
		}
	}

	if s.cfg.Network == "unix" {
		if err := os.Remove(s.cfg.Address); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("remove socket failed", zap.Error(err))
		}
	}
	_ = s.audit.Sync()
	return saveErr
}
