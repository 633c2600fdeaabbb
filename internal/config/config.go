package config

import (
	"fmt"
	"os"
	"strings"

	"strata/internal/market"

	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
)

// Config 主配置（TOML）。周期与结构参数在 profiles 文件中单独维护。
type Config struct {
	Symbol       string `toml:"symbol"`
	FineInterval string `toml:"fine_interval"`
	HistoryLimit int    `toml:"history_limit"`
	TickSize     string `toml:"tick_size"`
	LogLevel     string `toml:"log_level"`
	HTTPAddr     string `toml:"http_addr"`
	SQLitePath   string `toml:"sqlite_path"`
	ProfilesPath string `toml:"profiles_path"`
	ChartPath    string `toml:"chart_path"`

	tick decimal.Decimal
}

func (c *Config) withDefaults() {
	if c.FineInterval == "" {
		c.FineInterval = "15m"
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 600
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":9985"
	}
	if c.ProfilesPath == "" {
		c.ProfilesPath = "profiles.yaml"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Tick 返回最小报价单位；未配置时为零值。
func (c *Config) Tick() decimal.Decimal { return c.tick }

// Load 读取并校验主配置。非法周期与 tick 配置在此处直接拒绝。
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.withDefaults()

	cfg.Symbol = strings.ToUpper(strings.TrimSpace(cfg.Symbol))
	if cfg.Symbol == "" {
		return nil, fmt.Errorf("config: symbol is required")
	}
	if _, err := market.IntervalSeconds(cfg.FineInterval); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.TickSize != "" {
		tick, err := decimal.NewFromString(cfg.TickSize)
		if err != nil || !tick.IsPositive() {
			return nil, fmt.Errorf("config: invalid tick_size %q", cfg.TickSize)
		}
		cfg.tick = tick
	}
	return &cfg, nil
}
