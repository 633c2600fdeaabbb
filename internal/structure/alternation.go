package structure

import "sort"

type taggedSwing struct {
	Swing
	isHigh bool
}

// enforceAlternation 将 series 重建为严格 高/低 交替的序列：按时间升序合并
// 高低点，遇到连续同类型时在两者之间合成一个缺失的反向摆动点。
// Fewer than two pivots means there is nothing to enforce.
func enforceAlternation(src BarSource, series *SwingSeries, finePerCoarse int) {
	merged := make([]taggedSwing, 0, series.HighCount()+series.LowCount())
	for _, sw := range series.Highs() {
		merged = append(merged, taggedSwing{Swing: sw, isHigh: true})
	}
	for _, sw := range series.Lows() {
		merged = append(merged, taggedSwing{Swing: sw, isHigh: false})
	}
	if len(merged) < 2 {
		return
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CoarseOpenTime < merged[j].CoarseOpenTime
	})

	out := make([]taggedSwing, 0, len(merged)+len(merged)/2)
	out = append(out, merged[0])
	for _, cur := range merged[1:] {
		last := out[len(out)-1]
		if last.isHigh == cur.isHigh {
			if synth, ok := synthesizeBetween(src, last.Swing, cur.Swing, !last.isHigh, finePerCoarse); ok {
				out = append(out, taggedSwing{Swing: synth, isHigh: !last.isHigh})
			}
		}
		out = append(out, cur)
	}

	rebuilt := NewSwingSeries(series.capacity)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i].isHigh {
			rebuilt.AddHigh(out[i].Swing)
		} else {
			rebuilt.AddLow(out[i].Swing)
		}
	}
	series.highs = rebuilt.highs
	series.lows = rebuilt.lows
}

// synthesizeBetween 在两个连续同类型摆动点之间寻找最极端的反向价格，
// 合成缺失的摆动点。wantHigh 指明要合成的类型。
// Degenerate spans (no bars strictly between, failed lookups) yield nothing.
func synthesizeBetween(src BarSource, a, b Swing, wantHigh bool, finePerCoarse int) (Swing, bool) {
	ai, ok := src.CoarseIndexAtOrAfter(a.CoarseOpenTime)
	if !ok {
		return Swing{}, false
	}
	bi, ok := src.CoarseIndexAtOrAfter(b.CoarseOpenTime)
	if !ok {
		return Swing{}, false
	}
	bestIdx := -1
	bestPrice := 0.0
	bestTime := int64(0)
	for i := ai + 1; i < bi; i++ {
		bar, ok := src.CoarseBar(i)
		if !ok {
			continue
		}
		v := bar.Low
		if wantHigh {
			v = bar.High
		}
		if bestIdx < 0 || (wantHigh && v > bestPrice) || (!wantHigh && v < bestPrice) {
			bestIdx = i
			bestPrice = v
			bestTime = bar.OpenTime
		}
	}
	if bestIdx < 0 {
		return Swing{}, false
	}
	return locateSwing(src, bestTime, bestPrice, wantHigh, finePerCoarse)
}
