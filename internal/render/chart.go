package render

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"strata/internal/market"
	"strata/internal/structure"
)

// ChartWriter 把 K 线与结构摆动点导出为独立的 HTML 图表。
type ChartWriter struct {
	dir    string
	symbol string
}

func NewChartWriter(dir, symbol string) *ChartWriter {
	return &ChartWriter{dir: dir, symbol: symbol}
}

// Write renders one interval's candles plus the snapshot's swing markers
// and writes <symbol>_<interval>.html under the configured directory.
func (w *ChartWriter) Write(snap structure.Snapshot, candles []market.Candle) (string, error) {
	if len(candles) == 0 {
		return "", fmt.Errorf("no candles for %s %s", w.symbol, snap.Interval)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create chart dir: %w", err)
	}

	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s %s", w.symbol, snap.Interval),
			Subtitle: fmt.Sprintf("%s / %s, choch=%s, sweep=%v", snap.Trend.Direction, snap.Trend.Status, snap.Choch, snap.LiquiditySweep),
		}),
		charts.WithXAxisOpts(opts.XAxis{Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 60, End: 100}),
	)

	axis := make([]string, 0, len(candles))
	bars := make([]opts.KlineData, 0, len(candles))
	for _, c := range candles {
		axis = append(axis, formatOpenTime(c.OpenTime))
		bars = append(bars, opts.KlineData{Value: [4]float64{c.Open, c.Close, c.Low, c.High}})
	}
	kline.SetXAxis(axis).AddSeries("kline", bars)

	highs := charts.NewScatter()
	highs.AddSeries("swing high", swingPoints(snap.Highs, candles),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#d94e5d"}),
	)
	lows := charts.NewScatter()
	lows.AddSeries("swing low", swingPoints(snap.Lows, candles),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#47b262"}),
	)
	kline.Overlap(highs, lows)

	path := filepath.Join(w.dir, fmt.Sprintf("%s_%s.html", w.symbol, snap.Interval))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()
	if err := kline.Render(f); err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}
	return path, nil
}

// swingPoints 只保留能对齐到可见 K 线的摆动点。
func swingPoints(swings []structure.Swing, candles []market.Candle) []opts.ScatterData {
	index := make(map[int64]int, len(candles))
	for i, c := range candles {
		index[c.OpenTime] = i
	}
	out := make([]opts.ScatterData, 0, len(swings))
	for _, s := range swings {
		if _, ok := index[s.CoarseOpenTime]; !ok {
			continue
		}
		out = append(out, opts.ScatterData{
			Value:      []interface{}{formatOpenTime(s.CoarseOpenTime), s.DisplayPrice},
			SymbolSize: 10,
		})
	}
	return out
}

func formatOpenTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("01-02 15:04")
}
