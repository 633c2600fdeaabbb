package structure

import "strata/internal/market"

// Swing 表示一个摆动点（分型极值）。Price 取自分析周期；DisplayPrice 与
// FineIndex 定位展示周期内最极端的影线，仅用于呈现，不参与结构判断。
type Swing struct {
	CoarseOpenTime int64   `json:"coarse_open_time"`
	FineOpenTime   int64   `json:"fine_open_time"`
	Price          float64 `json:"price"`
	DisplayPrice   float64 `json:"display_price"`
	FineIndex      int     `json:"fine_index"`
}

// SwingSeries holds the detected swing highs and lows, most recent first,
// each side capped at a fixed capacity. Appends past capacity are ignored.
type SwingSeries struct {
	highs    []Swing
	lows     []Swing
	capacity int
}

const defaultSeriesCapacity = 50

func NewSwingSeries(capacity int) *SwingSeries {
	if capacity <= 0 {
		capacity = defaultSeriesCapacity
	}
	return &SwingSeries{
		highs:    make([]Swing, 0, capacity),
		lows:     make([]Swing, 0, capacity),
		capacity: capacity,
	}
}

func (s *SwingSeries) Capacity() int { return s.capacity }

func (s *SwingSeries) AddHigh(sw Swing) {
	if len(s.highs) >= s.capacity {
		return
	}
	s.highs = append(s.highs, sw)
}

func (s *SwingSeries) AddLow(sw Swing) {
	if len(s.lows) >= s.capacity {
		return
	}
	s.lows = append(s.lows, sw)
}

func (s *SwingSeries) HighCount() int { return len(s.highs) }
func (s *SwingSeries) LowCount() int  { return len(s.lows) }

// High returns the i-th most recent swing high (0 = newest).
func (s *SwingSeries) High(i int) (Swing, bool) {
	if i < 0 || i >= len(s.highs) {
		return Swing{}, false
	}
	return s.highs[i], true
}

// Low returns the i-th most recent swing low (0 = newest).
func (s *SwingSeries) Low(i int) (Swing, bool) {
	if i < 0 || i >= len(s.lows) {
		return Swing{}, false
	}
	return s.lows[i], true
}

// Highs 返回高点序列的拷贝（最近在前）。
func (s *SwingSeries) Highs() []Swing {
	out := make([]Swing, len(s.highs))
	copy(out, s.highs)
	return out
}

// Lows 返回低点序列的拷贝（最近在前）。
func (s *SwingSeries) Lows() []Swing {
	out := make([]Swing, len(s.lows))
	copy(out, s.lows)
	return out
}

// BarSource 提供分析周期（coarse）与展示周期（fine）两套 K 线的只读访问。
type BarSource interface {
	CoarseBar(i int) (market.Candle, bool)
	FineBar(i int) (market.Candle, bool)
	CoarseIndexAtOrAfter(openTime int64) (int, bool)
	FineIndexAtOrAfter(openTime int64) (int, bool)
	CoarseBarCount() int
	FineBarCount() int
}

// Bars adapts two market.Series (coarse/fine) to the BarSource interface.
type Bars struct {
	Coarse *market.Series
	Fine   *market.Series
}

func (b Bars) CoarseBar(i int) (market.Candle, bool) { return b.Coarse.Bar(i) }
func (b Bars) FineBar(i int) (market.Candle, bool)   { return b.Fine.Bar(i) }
func (b Bars) CoarseIndexAtOrAfter(t int64) (int, bool) {
	return b.Coarse.IndexAtOrAfter(t)
}
func (b Bars) FineIndexAtOrAfter(t int64) (int, bool) { return b.Fine.IndexAtOrAfter(t) }
func (b Bars) CoarseBarCount() int                    { return b.Coarse.Len() }
func (b Bars) FineBarCount() int                      { return b.Fine.Len() }
