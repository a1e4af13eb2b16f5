// cmd/server/main.go

// 本服務在串流 socket 上提供查詢、存款、提款、轉帳指令。
// 此檔案負責初始化各模組（config, bank, storage, audit, metrics, server），
// 啟動時載入帳戶狀態檔，收到 SIGINT/SIGTERM 後依序關閉並保存狀態。

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"threadbank/internal/audit"
	"threadbank/internal/bank"
	"threadbank/internal/config"
	"threadbank/internal/metrics"
	"threadbank/internal/server"
	"threadbank/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "bank server:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", os.Getenv("BANK_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	auditLog, closeAudit, err := audit.Open(cfg.AuditFile)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer closeAudit()

	mp, err := metrics.NewProvider(context.Background(), metrics.Export{
		Exporter: cfg.MetricsExporter,
		Endpoint: cfg.MetricsEndpoint,
		Interval: cfg.MetricsInterval,
	})
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	otel.SetMeterProvider(mp)
	// 伺服器結束後才關閉 provider，最後的佇列深度與 session 資料會在此送出
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mp.Shutdown(ctx); err != nil {
			logger.Warn("metrics shutdown failed", zap.Error(err))
		}
	}()

	m, err := metrics.New(otel.GetMeterProvider().Meter(metrics.MeterName))
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// 初始化帳戶表，再以上次保存的狀態覆蓋；檔案不存在或過短時維持預設餘額
	table := bank.NewTable(cfg.Accounts, bank.Units(cfg.InitialBalance))
	recs, err := storage.Load(cfg.StateFile, cfg.StateFormat, cfg.Accounts)
	if err != nil {
		logger.Warn("loading accounts failed, starting from defaults",
			zap.String("file", cfg.StateFile), zap.Error(err))
	} else {
		skipped := table.Restore(recs)
		if skipped > 0 {
			logger.Warn("state file records skipped",
				zap.String("file", cfg.StateFile), zap.Int("skipped", skipped))
		}
		logger.Info("accounts loaded", zap.String("file", cfg.StateFile), zap.Int("records", len(recs)-skipped))
	}

	// persist：所有 desk 停止後將帳戶表寫入狀態檔
	persist := func() error {
		return storage.Save(cfg.StateFile, cfg.StateFormat, table.Snapshot())
	}

	srv := server.NewServer(cfg, table, persist,
		server.WithLogger(logger),
		server.WithAudit(auditLog),
		server.WithMetrics(m),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, srv, os.Stdout)
}

// serve 執行 srv，並在監聽成功後才印出啟動訊息；監聽失敗時只回傳錯誤。
func serve(ctx context.Context, srv *server.Server, out io.Writer) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.Run(ctx) }()

	select {
	case <-srv.Ready():
		fmt.Fprintf(out, "Bank server started. Listening on %s\n", srv.Addr())
	case err := <-errc:
		return err
	}
	err := <-errc
	fmt.Fprintln(out, "Server shutdown complete.")
	return err
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
