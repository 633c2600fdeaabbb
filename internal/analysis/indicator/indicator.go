package indicator

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"strata/internal/market"
)

// Settings 控制随快照一并输出的背景指标。
type Settings struct {
	EMAFast   int     `json:"ema_fast,omitempty"`
	EMASlow   int     `json:"ema_slow,omitempty"`
	RSIPeriod int     `json:"rsi_period,omitempty"`
	ATRPeriod int     `json:"atr_period,omitempty"`
	RSIUpper  float64 `json:"rsi_upper,omitempty"`
	RSILower  float64 `json:"rsi_lower,omitempty"`
}

func (s Settings) withDefaults() Settings {
	if s.EMAFast <= 0 {
		s.EMAFast = 21
	}
	if s.EMASlow <= 0 {
		s.EMASlow = 55
	}
	if s.RSIPeriod <= 0 {
		s.RSIPeriod = 14
	}
	if s.ATRPeriod <= 0 {
		s.ATRPeriod = 14
	}
	if s.RSIUpper == 0 {
		s.RSIUpper = 70
	}
	if s.RSILower == 0 {
		s.RSILower = 30
	}
	return s
}

// Value 单个指标的最新读数与状态标签。
type Value struct {
	Latest float64 `json:"latest"`
	State  string  `json:"state,omitempty"`
	Note   string  `json:"note,omitempty"`
}

// Context carries the indicator readings published alongside a structure
// snapshot. Purely presentational: nothing here feeds back into the
// pivot/trend pipeline.
type Context struct {
	Interval string           `json:"interval"`
	Count    int              `json:"count"`
	Values   map[string]Value `json:"values"`
}

// Compute 计算一个周期的背景指标快照。
func Compute(interval string, candles []market.Candle, cfg Settings) (Context, error) {
	out := Context{Interval: interval, Count: len(candles), Values: make(map[string]Value)}
	if len(candles) == 0 {
		return out, fmt.Errorf("no candles")
	}
	cfg = cfg.withDefaults()

	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}
	lastClose := closes[len(closes)-1]

	emaFast := lastValid(talib.Ema(closes, cfg.EMAFast))
	emaSlow := lastValid(talib.Ema(closes, cfg.EMASlow))
	out.Values["ema_fast"] = Value{
		Latest: emaFast,
		State:  relativeState(lastClose, emaFast),
		Note:   fmt.Sprintf("EMA%d vs price", cfg.EMAFast),
	}
	out.Values["ema_slow"] = Value{
		Latest: emaSlow,
		State:  relativeState(lastClose, emaSlow),
		Note:   fmt.Sprintf("EMA%d vs price", cfg.EMASlow),
	}

	rsi := lastValid(talib.Rsi(closes, cfg.RSIPeriod))
	state := "neutral"
	switch {
	case rsi >= cfg.RSIUpper:
		state = "overbought"
	case rsi <= cfg.RSILower:
		state = "oversold"
	}
	out.Values["rsi"] = Value{Latest: rsi, State: state}

	atr := lastValid(talib.Atr(highs, lows, closes, cfg.ATRPeriod))
	out.Values["atr"] = Value{Latest: atr, Note: fmt.Sprintf("ATR%d", cfg.ATRPeriod)}

	return out, nil
}

func lastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		v := series[i]
		if math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
			continue
		}
		return v
	}
	return 0
}

func relativeState(price, ref float64) string {
	switch {
	case ref <= 0:
		return ""
	case price > ref:
		return "above"
	case price < ref:
		return "below"
	default:
		return "at"
	}
}
