// internal/metrics/metrics.go

// Package metrics 定義伺服器的 OpenTelemetry 指標：
// 連線數、指令結果、各 desk 佇列深度與 session 時長。
package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName 為本服務註冊 meter 時使用的名稱。
const MeterName = "threadbank"

// Instruments 集合所有指標。零值不可用，請用 New 或 Noop 建立。
type Instruments struct {
	sessions   metric.Int64Counter
	commands   metric.Int64Counter
	queueDepth metric.Int64UpDownCounter
	duration   metric.Float64Histogram
}

// New 在 meter 上建立所有指標。
func New(meter metric.Meter) (*Instruments, error) {
	var (
		m   Instruments
		err error
	)
	if m.sessions, err = meter.Int64Counter("bank.sessions",
		metric.WithDescription("Sessions handed to a desk."),
		metric.WithUnit("1")); err != nil {
		return nil, err
	}
	if m.commands, err = meter.Int64Counter("bank.commands",
		metric.WithDescription("Commands executed, by command and outcome."),
		metric.WithUnit("1")); err != nil {
		return nil, err
	}
	if m.queueDepth, err = meter.Int64UpDownCounter("bank.desk.queue_depth",
		metric.WithDescription("Sessions waiting in a desk queue."),
		metric.WithUnit("1")); err != nil {
		return nil, err
	}
	if m.duration, err = meter.Float64Histogram("bank.session.duration",
		metric.WithDescription("Time a desk spent serving one session."),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return &m, nil
}

// Noop 回傳不記錄任何資料的指標集合。
func Noop() *Instruments {
	m, _ := New(noop.NewMeterProvider().Meter(MeterName))
	return m
}

// Enqueued 記錄一個 session 進入 desk 佇列。
func (m *Instruments) Enqueued(ctx context.Context, desk int) {
	m.queueDepth.Add(ctx, 1, metric.WithAttributes(attribute.Int("desk", desk)))
}

// Dequeued 記錄一個 session 離開 desk 佇列。
func (m *Instruments) Dequeued(ctx context.Context, desk int) {
	m.queueDepth.Add(ctx, -1, metric.WithAttributes(attribute.Int("desk", desk)))
}

// SessionServed 記錄一個 session 的服務時長。
func (m *Instruments) SessionServed(ctx context.Context, desk int, d time.Duration) {
	attrs := metric.WithAttributes(attribute.Int("desk", desk))
	m.sessions.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}

// Command 記錄一個指令的結果。
func (m *Instruments) Command(ctx context.Context, command, outcome string) {
	m.commands.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	))
}
