package structure

import (
	"testing"

	"strata/internal/market"

	"github.com/shopspring/decimal"
)

// zigzagBars is a stepped uptrend with fractal peaks every 4th bar and
// troughs in between (width 2, half-window 1).
func zigzagBars() []market.Candle {
	data := [][3]float64{
		{100, 95, 98}, {105, 97, 103}, {112, 100, 110}, {107, 99, 101},
		{104, 96, 100}, {108, 98, 106}, {116, 102, 114}, {110, 101, 104},
		{106, 99, 102}, {109, 100, 107}, {120, 104, 118}, {112, 103, 106},
		{108, 101, 104}, {111, 102, 109}, {124, 106, 122}, {115, 105, 108},
		{110, 103, 106}, {113, 104, 111}, {126, 108, 124}, {118, 107, 110},
		{114, 105, 108}, {117, 106, 115}, {128, 110, 127}, {121, 109, 112},
		{119, 108, 114},
	}
	out := make([]market.Candle, 0, len(data))
	for i, d := range data {
		out = append(out, bar(int64(i)*1000, d[0], d[1], d[2]))
	}
	return out
}

func TestAnalyzerUpdateEndToEnd(t *testing.T) {
	a, err := New(Config{
		Interval:       "4h",
		FineInterval:   "4h",
		Lookback:       23,
		FractalWidth:   2,
		SeriesCapacity: 20,
		TickSize:       decimal.NewFromFloat(0.5),
	})
	if err != nil {
		t.Fatal(err)
	}
	coarse := zigzagBars()
	src := barsOf(coarse, coarse)

	snap, ok := a.Update(src)
	if !ok {
		t.Fatal("expected a tick with pivots")
	}
	if snap.Trend != (Trend{DirectionBullish, StatusMomentum}) {
		t.Fatalf("want bullish momentum, got %v/%v", snap.Trend.Direction, snap.Trend.Status)
	}
	if snap.Choch != Continuation {
		t.Fatalf("rising structure should continue, got %v", snap.Choch)
	}
	if snap.LiquiditySweep {
		t.Fatal("no sweep in a clean uptrend")
	}
	if len(snap.Highs) != 6 || len(snap.Lows) != 5 {
		t.Fatalf("unexpected series sizes: %d highs %d lows", len(snap.Highs), len(snap.Lows))
	}
	if !snap.HasExpansion || !snap.Expansion.Equal(decimal.NewFromInt(46)) {
		t.Fatalf("expansion (128-105)/0.5 = 46, got %s", snap.Expansion)
	}
	if snap.TraceID == "" {
		t.Fatal("snapshot must carry a trace id")
	}
	highs, lows := a.Series()
	if !mergedAlternates(seriesOf(t, highs, lows)) {
		t.Fatal("alternation invariant violated in the stored series")
	}
}

func TestAnalyzerRecomputeIsDeterministic(t *testing.T) {
	a, err := New(Config{Interval: "4h", FineInterval: "4h", Lookback: 23, FractalWidth: 2})
	if err != nil {
		t.Fatal(err)
	}
	coarse := zigzagBars()
	src := barsOf(coarse, coarse)

	first, ok := a.Update(src)
	if !ok {
		t.Fatal("first tick should produce a snapshot")
	}
	second, ok := a.Update(src)
	if !ok {
		t.Fatal("second tick should produce a snapshot")
	}
	first.TraceID, second.TraceID = "", ""
	if first.Trend != second.Trend || first.Choch != second.Choch ||
		first.LiquiditySweep != second.LiquiditySweep ||
		len(first.Highs) != len(second.Highs) || len(first.Lows) != len(second.Lows) {
		t.Fatal("full recompute over identical bars must yield identical output")
	}
}

func TestAnalyzerInsufficientHistoryLeavesStateUntouched(t *testing.T) {
	a, err := New(Config{Interval: "1h", FineInterval: "1h", Lookback: 50, FractalWidth: 4})
	if err != nil {
		t.Fatal(err)
	}
	coarse := zigzagBars()[:10]
	src := barsOf(coarse, coarse)

	if _, ok := a.Update(src); ok {
		t.Fatal("no pivots means no state change")
	}
	if _, has := a.Last(); has {
		t.Fatal("no snapshot should exist yet")
	}
}

func TestNewAnalyzerRejectsBadConfig(t *testing.T) {
	if _, err := New(Config{Interval: "7x", FineInterval: "1m"}); err == nil {
		t.Fatal("unknown interval must be rejected at construction")
	}
	if _, err := New(Config{Interval: "1m", FineInterval: "1h"}); err == nil {
		t.Fatal("fine interval coarser than the analysis interval must be rejected")
	}
	if _, err := New(Config{Interval: "1h", FineInterval: "1m", Lookback: 4, FractalWidth: 6}); err == nil {
		t.Fatal("fractal width above the lookback must be rejected")
	}
}
