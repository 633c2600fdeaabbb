package render

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"strata/internal/structure"
)

// Dashboard 把各周期最新的结构快照渲染成终端表格。
type Dashboard struct {
	mu     sync.Mutex
	out    io.Writer
	symbol string
	latest map[string]structure.Snapshot
}

func NewDashboard(out io.Writer, symbol string) *Dashboard {
	return &Dashboard{
		out:    out,
		symbol: symbol,
		latest: make(map[string]structure.Snapshot),
	}
}

// Publish 记录一个周期的最新快照并重绘整表。
func (d *Dashboard) Publish(snap structure.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.latest[snap.Interval] = snap
	d.render()
}

func (d *Dashboard) render() {
	intervals := make([]string, 0, len(d.latest))
	for iv := range d.latest {
		intervals = append(intervals, iv)
	}
	sort.Strings(intervals)

	t := table.NewWriter()
	t.SetOutputMirror(d.out)
	t.SetTitle("%s structure", d.symbol)
	t.AppendHeader(table.Row{"TF", "Trend", "Status", "CHoCH", "Sweep", "Expansion", "Highs", "Lows"})
	for _, iv := range intervals {
		snap := d.latest[iv]
		t.AppendRow(table.Row{
			iv,
			colorDirection(snap.Trend.Direction),
			snap.Trend.Status.String(),
			snap.Choch.String(),
			boolMark(snap.LiquiditySweep),
			expansionCell(snap),
			len(snap.Highs),
			len(snap.Lows),
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

func colorDirection(dir structure.Direction) string {
	switch dir {
	case structure.DirectionBullish:
		return text.FgGreen.Sprint(dir.String())
	case structure.DirectionBearish:
		return text.FgRed.Sprint(dir.String())
	default:
		return dir.String()
	}
}

func boolMark(v bool) string {
	if v {
		return "yes"
	}
	return "-"
}

func expansionCell(snap structure.Snapshot) string {
	if !snap.HasExpansion {
		return "-"
	}
	return fmt.Sprintf("%s ticks", snap.Expansion.String())
}
