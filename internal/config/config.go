// internal/config/config.go

// Package config 負責組裝伺服器設定。
// 載入順序：預設值 → YAML 設定檔（可選）→ 環境變數覆寫。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"threadbank/internal/metrics"
	"threadbank/internal/storage"
)

// ErrInvalid 代表設定值不合法。
var ErrInvalid = errors.New("invalid config")

// Config 為伺服器的完整設定。
type Config struct {
	Network        string         `yaml:"network"`         // "unix" 或 "tcp"
	Address        string         `yaml:"address"`         // socket 路徑或 host:port
	Desks          int            `yaml:"desks"`           // desk（worker）數量
	QueueCapacity  int            `yaml:"queue_capacity"`  // 每個 desk 佇列容量
	Accounts       int            `yaml:"accounts"`        // 帳戶數量
	InitialBalance int64          `yaml:"initial_balance"` // 每個帳戶的初始餘額（歐元）
	StateFile      string         `yaml:"state_file"`
	StateFormat    storage.Format `yaml:"state_format"`
	AuditFile      string         `yaml:"audit_file"`
	LogLevel       string         `yaml:"log_level"`
	Greeting       string         `yaml:"greeting"`

	MetricsExporter string        `yaml:"metrics_exporter"` // none / stdout / otlp
	MetricsEndpoint string        `yaml:"metrics_endpoint"` // otlp collector host:port
	MetricsInterval time.Duration `yaml:"metrics_interval"`
}

// Default 回傳預設設定。
func Default() Config {
	return Config{
		Network:        "unix",
		Address:        "/tmp/bank_socket",
		Desks:          5,
		QueueCapacity:  10,
		Accounts:       100,
		InitialBalance: 1000,
		StateFile:      "accounts.dat",
		StateFormat:    storage.FormatBinary,
		AuditFile:      "bank.log",
		LogLevel:       "info",
		Greeting:       "ready",

		MetricsExporter: metrics.ExporterNone,
		MetricsInterval: 30 * time.Second,
	}
}

// Load 依序套用預設值、path 指定的 YAML 檔（path 為空則略過）與環境變數，
// 最後驗證結果。
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"BANK_NETWORK":    &cfg.Network,
		"BANK_ADDRESS":    &cfg.Address,
		"BANK_STATE_FILE": &cfg.StateFile,
		"BANK_AUDIT_FILE": &cfg.AuditFile,
		"BANK_LOG_LEVEL":  &cfg.LogLevel,
		"BANK_GREETING":   &cfg.Greeting,

		"BANK_METRICS_EXPORTER": &cfg.MetricsExporter,
		"BANK_METRICS_ENDPOINT": &cfg.MetricsEndpoint,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("BANK_STATE_FORMAT"); ok {
		cfg.StateFormat = storage.Format(v)
	}

	ints := map[string]*int{
		"BANK_DESKS":          &cfg.Desks,
		"BANK_QUEUE_CAPACITY": &cfg.QueueCapacity,
		"BANK_ACCOUNTS":       &cfg.Accounts,
	}
	for key, dst := range ints {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
			}
			*dst = n
		}
	}
	if v, ok := os.LookupEnv("BANK_INITIAL_BALANCE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: BANK_INITIAL_BALANCE=%q", ErrInvalid, v)
		}
		cfg.InitialBalance = n
	}
	if v, ok := os.LookupEnv("BANK_METRICS_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: BANK_METRICS_INTERVAL=%q", ErrInvalid, v)
		}
		cfg.MetricsInterval = d
	}
	return nil
}

// Validate 檢查設定值是否可用。
func (c Config) Validate() error {
	switch {
	case c.Network != "unix" && c.Network != "tcp":
		return fmt.Errorf("%w: network %q", ErrInvalid, c.Network)
	case c.Address == "":
		return fmt.Errorf("%w: empty address", ErrInvalid)
	case c.Desks < 1:
		return fmt.Errorf("%w: desks must be >= 1", ErrInvalid)
	case c.QueueCapacity < 1:
		return fmt.Errorf("%w: queue_capacity must be >= 1", ErrInvalid)
	case c.Accounts < 1:
		return fmt.Errorf("%w: accounts must be >= 1", ErrInvalid)
	case c.InitialBalance < 0:
		return fmt.Errorf("%w: initial_balance must be >= 0", ErrInvalid)
	case c.StateFormat != storage.FormatBinary && c.StateFormat != storage.FormatJSON:
		return fmt.Errorf("%w: state_format %q", ErrInvalid, c.StateFormat)
	case c.MetricsExporter != metrics.ExporterNone &&
		c.MetricsExporter != metrics.ExporterStdout &&
		c.MetricsExporter != metrics.ExporterOTLP:
		return fmt.Errorf("%w: metrics_exporter %q", ErrInvalid, c.MetricsExporter)
	case c.MetricsInterval <= 0:
		return fmt.Errorf("%w: metrics_interval must be > 0", ErrInvalid)
	}
	return nil
}
