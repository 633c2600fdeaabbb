package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"strata/internal/agent"
	"strata/internal/analysis/indicator"
	"strata/internal/config"
	"strata/internal/config/loader"
	"strata/internal/gateway/binance"
	"strata/internal/logger"
	"strata/internal/render"
	"strata/internal/store"
	"strata/internal/structure"
	"strata/internal/transport/http/api"
)

func main() {
	cfgPath := flag.String("config", "config.toml", "主配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Errorf("加载配置失败: %v", err)
		os.Exit(1)
	}
	if lv, ok := logger.ParseLevel(cfg.LogLevel); ok {
		logger.SetLevel(lv)
	}

	profileLoader := loader.NewProfileLoader(cfg.ProfilesPath)
	if err := profileLoader.WriteDefault(); err != nil {
		logger.Errorf("初始化 profiles 失败: %v", err)
		os.Exit(1)
	}
	profiles, err := profileLoader.Load()
	if err != nil {
		logger.Errorf("加载 profiles 失败: %v", err)
		os.Exit(1)
	}

	timeframes := make([]agent.Timeframe, 0, len(profiles))
	for _, p := range profiles {
		analyzer, err := structure.New(structure.Config{
			Interval:       p.Interval,
			FineInterval:   cfg.FineInterval,
			Lookback:       p.Lookback,
			FractalWidth:   p.FractalWidth,
			SeriesCapacity: p.SeriesCapacity,
			TickSize:       cfg.Tick(),
		})
		if err != nil {
			logger.Errorf("构建 %s 分析器失败: %v", p.Interval, err)
			os.Exit(1)
		}
		timeframes = append(timeframes, agent.Timeframe{Interval: p.Interval, Analyzer: analyzer})
	}

	source, err := binance.New(binance.Config{})
	if err != nil {
		logger.Errorf("初始化行情源失败: %v", err)
		os.Exit(1)
	}
	defer source.Close()

	klines := store.NewMemoryKlineStore()
	var persist store.KlineStore
	if cfg.SQLitePath != "" {
		sq, err := store.NewSQLiteKlineStore(cfg.SQLitePath)
		if err != nil {
			logger.Warnf("打开 SQLite 失败，落盘关闭: %v", err)
		} else {
			persist = sq
			defer sq.Close()
		}
	}

	var charts *render.ChartWriter
	if cfg.ChartPath != "" {
		charts = render.NewChartWriter(cfg.ChartPath, cfg.Symbol)
	}
	dashboard := render.NewDashboard(os.Stdout, cfg.Symbol)

	monitor, err := agent.NewMonitor(agent.MonitorParams{
		Source:       source,
		Klines:       klines,
		Persist:      persist,
		Symbol:       cfg.Symbol,
		FineInterval: cfg.FineInterval,
		HistoryLimit: cfg.HistoryLimit,
		Timeframes:   timeframes,
		Indicator:    indicator.Settings{},
		Dashboard:    dashboard,
		Charts:       charts,
	})
	if err != nil {
		logger.Errorf("构建监控失败: %v", err)
		os.Exit(1)
	}

	server, err := api.NewServer(api.Config{
		Addr:     cfg.HTTPAddr,
		Symbol:   cfg.Symbol,
		Provider: monitor,
		Klines:   klines,
		Profiles: profileLoader,
		ChartDir: cfg.ChartPath,
	})
	if err != nil {
		logger.Errorf("构建 HTTP 服务失败: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return monitor.Start(gctx) })
	g.Go(func() error { return server.Start(gctx) })

	logger.Infof("strata 启动: symbol=%s http=%s timeframes=%d", cfg.Symbol, cfg.HTTPAddr, len(timeframes))
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("退出: %v", err)
		os.Exit(1)
	}
	logger.Infof("已退出")
}
