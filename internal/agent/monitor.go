package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"strata/internal/analysis/indicator"
	"strata/internal/logger"
	"strata/internal/market"
	"strata/internal/render"
	"strata/internal/store"
	"strata/internal/structure"
)

const defaultHistoryLimit = 500

// Timeframe 把一个分析周期与它的分析器绑定。
type Timeframe struct {
	Interval string
	Analyzer *structure.Analyzer
}

type MonitorParams struct {
	Source       market.Source
	Klines       *store.MemoryKlineStore
	Persist      store.KlineStore // 可选，落盘用
	Symbol       string
	FineInterval string
	HistoryLimit int
	Timeframes   []Timeframe
	Indicator    indicator.Settings
	Dashboard    *render.Dashboard
	Charts       *render.ChartWriter
}

// Monitor 维护各周期的 K 线缓存，在粗周期收线时重算市场结构，
// 并把最新快照推给各个输出端。
type Monitor struct {
	source       market.Source
	klines       *store.MemoryKlineStore
	persist      store.KlineStore
	symbol       string
	fineInterval string
	historyLimit int
	timeframes   []Timeframe
	indicatorCfg indicator.Settings
	dashboard    *render.Dashboard
	charts       *render.ChartWriter

	mu         sync.RWMutex
	snapshots  map[string]structure.Snapshot
	indicators map[string]indicator.Context
}

func NewMonitor(p MonitorParams) (*Monitor, error) {
	if p.Source == nil {
		return nil, fmt.Errorf("source 不能为空")
	}
	if p.Klines == nil {
		return nil, fmt.Errorf("kline store 不能为空")
	}
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol 不能为空")
	}
	if len(p.Timeframes) == 0 {
		return nil, fmt.Errorf("至少需要一个分析周期")
	}
	if p.HistoryLimit <= 0 {
		p.HistoryLimit = defaultHistoryLimit
	}
	return &Monitor{
		source:       p.Source,
		klines:       p.Klines,
		persist:      p.Persist,
		symbol:       p.Symbol,
		fineInterval: p.FineInterval,
		historyLimit: p.HistoryLimit,
		timeframes:   p.Timeframes,
		indicatorCfg: p.Indicator,
		dashboard:    p.Dashboard,
		charts:       p.Charts,
		snapshots:    make(map[string]structure.Snapshot),
		indicators:   make(map[string]indicator.Context),
	}, nil
}

// Snapshot 返回指定周期的最新快照。
func (m *Monitor) Snapshot(interval string) (structure.Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[interval]
	return snap, ok
}

// Snapshots 返回所有周期的最新快照（顺序与配置一致）。
func (m *Monitor) Snapshots() []structure.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]structure.Snapshot, 0, len(m.timeframes))
	for _, tf := range m.timeframes {
		if snap, ok := m.snapshots[tf.Interval]; ok {
			out = append(out, snap)
		}
	}
	return out
}

// Indicators 返回指定周期的背景指标。
func (m *Monitor) Indicators(interval string) (indicator.Context, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rep, ok := m.indicators[interval]
	return rep, ok
}

// Start 预热历史数据并进入实时循环，阻塞直到 ctx 取消或行情流结束。
func (m *Monitor) Start(ctx context.Context) error {
	if err := m.warmup(ctx); err != nil {
		return fmt.Errorf("warmup: %w", err)
	}

	intervals := make([]string, 0, len(m.timeframes)+1)
	if m.fineInterval != "" {
		intervals = append(intervals, m.fineInterval)
	}
	for _, tf := range m.timeframes {
		if tf.Interval != m.fineInterval {
			intervals = append(intervals, tf.Interval)
		}
	}

	events, err := m.source.Subscribe(ctx, []string{m.symbol}, intervals, market.SubscribeOptions{
		OnConnect: func() {
			logger.Infof("[monitor] WS 已连接，订阅 %s %v", m.symbol, intervals)
		},
		OnDisconnect: func(err error) {
			if err != nil {
				logger.Warnf("[monitor] WS 断线: %v", err)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return fmt.Errorf("行情流已关闭")
			}
			m.onCandleEvent(ctx, ev)
		}
	}
}

// warmup 并发拉取细粒度与各分析周期的历史 K 线，然后做一次全量重算。
func (m *Monitor) warmup(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	fetch := func(interval string, limit int) func() error {
		return func() error {
			candles, err := m.source.FetchHistory(gctx, m.symbol, interval, limit)
			if err != nil {
				return fmt.Errorf("fetch %s %s: %w", m.symbol, interval, err)
			}
			if err := m.klines.Set(gctx, m.symbol, interval, candles); err != nil {
				return err
			}
			if m.persist != nil {
				if err := m.persist.Put(gctx, m.symbol, interval, candles, limit); err != nil {
					logger.Warnf("[monitor] 持久化 %s 历史失败: %v", interval, err)
				}
			}
			if report, err := market.CheckContinuity(interval, candles); err != nil {
				logger.Warnf("[monitor] %s 连续性检查失败: %v", interval, err)
			} else if !report.Complete() {
				logger.Warnf("[monitor] %s 历史存在 %d 处缺口 (present=%d expected=%d)",
					interval, len(report.Gaps), report.Present, report.Expected)
			}
			logger.Infof("[monitor] %s %s 历史就绪: %d 根", m.symbol, interval, len(candles))
			return nil
		}
	}

	if m.fineInterval != "" {
		g.Go(fetch(m.fineInterval, m.historyLimit))
	}
	for _, tf := range m.timeframes {
		if tf.Interval != m.fineInterval {
			g.Go(fetch(tf.Interval, m.historyLimit))
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rg, rctx := errgroup.WithContext(ctx)
	for _, tf := range m.timeframes {
		tf := tf
		rg.Go(func() error {
			m.recompute(rctx, tf)
			return nil
		})
	}
	return rg.Wait()
}

func (m *Monitor) onCandleEvent(ctx context.Context, ev market.CandleEvent) {
	if ev.Symbol != m.symbol {
		return
	}
	if err := m.klines.Put(ctx, m.symbol, ev.Interval, []market.Candle{ev.Candle}, m.historyLimit); err != nil {
		logger.Errorf("[monitor] 缓存 %s K 线失败: %v", ev.Interval, err)
		return
	}
	if !ev.Final {
		return
	}
	if m.persist != nil {
		if err := m.persist.Put(ctx, m.symbol, ev.Interval, []market.Candle{ev.Candle}, m.historyLimit); err != nil {
			logger.Warnf("[monitor] 持久化 %s K 线失败: %v", ev.Interval, err)
		}
	}
	for _, tf := range m.timeframes {
		if tf.Interval == ev.Interval {
			m.recompute(ctx, tf)
		}
	}
}

// recompute 对单个周期做一次全量结构重算并发布结果。
func (m *Monitor) recompute(ctx context.Context, tf Timeframe) {
	coarse, err := m.klines.Get(ctx, m.symbol, tf.Interval)
	if err != nil || len(coarse) == 0 {
		return
	}
	fineInterval := m.fineInterval
	if fineInterval == "" {
		fineInterval = tf.Interval
	}
	fine, err := m.klines.Get(ctx, m.symbol, fineInterval)
	if err != nil || len(fine) == 0 {
		fine = coarse
	}

	started := time.Now()
	snap, changed := tf.Analyzer.Update(structure.Bars{
		Coarse: market.NewSeries(coarse),
		Fine:   market.NewSeries(fine),
	})
	if !changed {
		return
	}
	logger.Debugf("[monitor] %s %s 结构更新: trend=%s/%s choch=%s sweep=%v (%s)",
		m.symbol, tf.Interval, snap.Trend.Direction, snap.Trend.Status,
		snap.Choch, snap.LiquiditySweep, time.Since(started).Truncate(time.Millisecond))

	rep, repErr := indicator.Compute(tf.Interval, coarse, m.indicatorCfg)

	m.mu.Lock()
	m.snapshots[tf.Interval] = snap
	if repErr == nil {
		m.indicators[tf.Interval] = rep
	}
	m.mu.Unlock()

	if m.dashboard != nil {
		m.dashboard.Publish(snap)
	}
	if m.charts != nil {
		if _, err := m.charts.Write(snap, coarse); err != nil {
			logger.Warnf("[monitor] 导出 %s 图表失败: %v", tf.Interval, err)
		}
	}
}
