package market

import (
	"fmt"
	"sort"
	"strings"
)

// Candle 表示一根 K 线（毫秒时间戳）。
type Candle struct {
	OpenTime  int64
	CloseTime int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Trades    int64
}

var intervalSeconds = map[string]int64{
	"1m":  60,
	"3m":  180,
	"5m":  300,
	"15m": 900,
	"30m": 1800,
	"1h":  3600,
	"2h":  7200,
	"4h":  14400,
	"6h":  21600,
	"8h":  28800,
	"12h": 43200,
	"1d":  86400,
	"3d":  259200,
	"1w":  604800,
}

// IntervalSeconds maps an interval label to its bar duration in seconds.
// Unknown labels are a configuration error and must be rejected up front.
func IntervalSeconds(interval string) (int64, error) {
	key := strings.ToLower(strings.TrimSpace(interval))
	if s, ok := intervalSeconds[key]; ok {
		return s, nil
	}
	return 0, fmt.Errorf("unsupported interval: %q", interval)
}

// Series 封装按 OpenTime 升序排列的 K 线序列，提供时间到下标的查找。
type Series struct {
	candles []Candle
}

// NewSeries copies the given candles and sorts them by open time.
func NewSeries(candles []Candle) *Series {
	dst := make([]Candle, len(candles))
	copy(dst, candles)
	sort.Slice(dst, func(i, j int) bool { return dst[i].OpenTime < dst[j].OpenTime })
	return &Series{candles: dst}
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.candles)
}

// Bar returns the candle at index i.
func (s *Series) Bar(i int) (Candle, bool) {
	if s == nil || i < 0 || i >= len(s.candles) {
		return Candle{}, false
	}
	return s.candles[i], true
}

// IndexAtOrAfter returns the index of the first candle whose open time is
// >= openTime. Reports false when every candle opens earlier.
func (s *Series) IndexAtOrAfter(openTime int64) (int, bool) {
	if s == nil || len(s.candles) == 0 {
		return 0, false
	}
	idx := sort.Search(len(s.candles), func(i int) bool {
		return s.candles[i].OpenTime >= openTime
	})
	if idx >= len(s.candles) {
		return 0, false
	}
	return idx, true
}
