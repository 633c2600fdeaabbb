package structure

// detectPivots 在 [currentIdx-lookback+half, currentIdx-half] 范围内做分型扫描，
// 检出的高低点直接追加到 series。返回本轮是否至少发现一个摆动点。
//
// A bar is a swing high only when its high is strictly greater than every
// other high inside the centered window of width `width`; ties disqualify.
// Swing lows are symmetric on the low side.
func detectPivots(src BarSource, currentIdx, lookback, width, finePerCoarse int, series *SwingSeries) bool {
	if currentIdx < lookback {
		// Not enough history for a full window yet.
		return false
	}
	half := width / 2
	found := false
	for i := currentIdx - half; i >= currentIdx-lookback+half; i-- {
		bar, ok := src.CoarseBar(i)
		if !ok {
			continue
		}
		isHigh := true
		isLow := true
		for j := i - half; j <= i+half; j++ {
			if j == i {
				continue
			}
			other, ok := src.CoarseBar(j)
			if !ok {
				isHigh, isLow = false, false
				break
			}
			if other.High >= bar.High {
				isHigh = false
			}
			if other.Low <= bar.Low {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}
		if isHigh {
			if sw, ok := locateSwing(src, bar.OpenTime, bar.High, true, finePerCoarse); ok {
				series.AddHigh(sw)
				found = true
			}
		}
		if isLow {
			if sw, ok := locateSwing(src, bar.OpenTime, bar.Low, false, finePerCoarse); ok {
				series.AddLow(sw)
				found = true
			}
		}
	}
	return found
}

// locateSwing 在 coarse bar 覆盖的 fine 区间内找最极端的影线，组装 Swing。
// A failed fine-series lookup skips this pivot only, never the whole tick.
func locateSwing(src BarSource, coarseOpenTime int64, price float64, isHigh bool, finePerCoarse int) (Swing, bool) {
	start, ok := src.FineIndexAtOrAfter(coarseOpenTime)
	if !ok {
		return Swing{}, false
	}
	end := start + finePerCoarse
	if total := src.FineBarCount(); end > total {
		end = total
	}
	bestIdx := -1
	bestPrice := 0.0
	bestTime := int64(0)
	for i := start; i < end; i++ {
		bar, ok := src.FineBar(i)
		if !ok {
			break
		}
		v := bar.Low
		if isHigh {
			v = bar.High
		}
		if bestIdx < 0 || (isHigh && v > bestPrice) || (!isHigh && v < bestPrice) {
			bestIdx = i
			bestPrice = v
			bestTime = bar.OpenTime
		}
	}
	if bestIdx < 0 {
		return Swing{}, false
	}
	return Swing{
		CoarseOpenTime: coarseOpenTime,
		FineOpenTime:   bestTime,
		Price:          price,
		DisplayPrice:   bestPrice,
		FineIndex:      bestIdx,
	}, true
}
