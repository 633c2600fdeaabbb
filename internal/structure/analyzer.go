package structure

import (
	"fmt"

	"strata/internal/market"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Config 描述单个分析周期实例的参数。
type Config struct {
	Interval       string // 分析周期（coarse）
	FineInterval   string // 展示周期（fine）
	Lookback       int    // 分型扫描回看的 K 线数
	FractalWidth   int    // 分型窗口宽度
	SeriesCapacity int    // 高/低点序列各自的容量上限
	TickSize       decimal.Decimal
}

func (c Config) withDefaults() Config {
	out := c
	if out.Lookback <= 0 {
		out.Lookback = 100
	}
	if out.FractalWidth <= 0 {
		out.FractalWidth = 4
	}
	if out.SeriesCapacity <= 0 {
		out.SeriesCapacity = defaultSeriesCapacity
	}
	return out
}

// Snapshot 是一次分析 tick 的不可变输出，供呈现端消费。
type Snapshot struct {
	TraceID        string          `json:"trace_id"`
	Interval       string          `json:"interval"`
	CoarseOpenTime int64           `json:"coarse_open_time"`
	Highs          []Swing         `json:"highs"`
	Lows           []Swing         `json:"lows"`
	Trend          Trend           `json:"trend"`
	Choch          ChochKind       `json:"choch"`
	LiquiditySweep bool            `json:"liquidity_sweep"`
	Expansion      decimal.Decimal `json:"expansion"`
	HasExpansion   bool            `json:"has_expansion"`
}

// Analyzer 持有一个周期的全部结构状态。实例之间彼此独立，可并行求值。
// 每个 tick 都从回看窗口整体重算，而不是增量维护。
type Analyzer struct {
	cfg           Config
	finePerCoarse int
	series        *SwingSeries
	last          Snapshot
	hasLast       bool
}

// New 校验配置并构造 Analyzer。未知周期标签在此处拒绝，而不是分析时兜底。
func New(cfg Config) (*Analyzer, error) {
	cfg = cfg.withDefaults()
	coarseSec, err := market.IntervalSeconds(cfg.Interval)
	if err != nil {
		return nil, fmt.Errorf("analyzer interval: %w", err)
	}
	fineSec, err := market.IntervalSeconds(cfg.FineInterval)
	if err != nil {
		return nil, fmt.Errorf("analyzer fine interval: %w", err)
	}
	if fineSec > coarseSec {
		return nil, fmt.Errorf("fine interval %s is coarser than %s", cfg.FineInterval, cfg.Interval)
	}
	if cfg.FractalWidth >= cfg.Lookback {
		return nil, fmt.Errorf("fractal width %d must be below lookback %d", cfg.FractalWidth, cfg.Lookback)
	}
	return &Analyzer{
		cfg:           cfg,
		finePerCoarse: int(coarseSec / fineSec),
		series:        NewSwingSeries(cfg.SeriesCapacity),
	}, nil
}

func (a *Analyzer) Interval() string { return a.cfg.Interval }

// Series 返回当前摆动点序列的拷贝视图。
func (a *Analyzer) Series() (highs, lows []Swing) {
	return a.series.Highs(), a.series.Lows()
}

// Last returns the most recent snapshot, if any tick has produced one.
func (a *Analyzer) Last() (Snapshot, bool) { return a.last, a.hasLast }

// Update 运行一次完整的分析 tick：分型扫描 → 交替修复 → 趋势分类（offset 0/1）
// → CHoCH → 反转闸门 → 流动性猎杀。未发现新摆动点时保持旧状态不动，
// 返回 false。
func (a *Analyzer) Update(src BarSource) (Snapshot, bool) {
	currentIdx := src.CoarseBarCount() - 1
	if currentIdx < 0 {
		return a.last, false
	}

	fresh := NewSwingSeries(a.cfg.SeriesCapacity)
	if !detectPivots(src, currentIdx, a.cfg.Lookback, a.cfg.FractalWidth, a.finePerCoarse, fresh) {
		return a.last, false
	}
	enforceAlternation(src, fresh, a.finePerCoarse)

	prev := classifyTrend(fresh, 1)
	hasPrev := fresh.HighCount() >= 4 && fresh.LowCount() >= 4
	raw := classifyTrend(fresh, 0)
	choch := detectChoch(src, fresh, prev, hasPrev)
	gated, forced := gateReversal(fresh, raw, prev, choch)
	sweep := forced || detectSweep(src, fresh, gated)

	a.series = fresh

	snap := Snapshot{
		TraceID:        uuid.NewString(),
		Interval:       a.cfg.Interval,
		Highs:          fresh.Highs(),
		Lows:           fresh.Lows(),
		Trend:          gated,
		Choch:          choch.Kind,
		LiquiditySweep: sweep,
	}
	if bar, ok := src.CoarseBar(currentIdx); ok {
		snap.CoarseOpenTime = bar.OpenTime
	}
	if exp, ok := a.expansion(fresh); ok {
		snap.Expansion = exp
		snap.HasExpansion = true
	}
	a.last = snap
	a.hasLast = true
	return snap, true
}

// expansion 返回最近高低点落差（以最小报价单位计）。
func (a *Analyzer) expansion(s *SwingSeries) (decimal.Decimal, bool) {
	sh0, okH := s.High(0)
	sl0, okL := s.Low(0)
	if !okH || !okL {
		return decimal.Decimal{}, false
	}
	diff := decimal.NewFromFloat(sh0.Price).Sub(decimal.NewFromFloat(sl0.Price))
	if a.cfg.TickSize.IsPositive() {
		diff = diff.Div(a.cfg.TickSize)
	}
	return diff, true
}
