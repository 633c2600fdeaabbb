package structure

// ChochKind 结构转变信号种类。
type ChochKind int

const (
	Continuation ChochKind = iota
	ChochBullish
	ChochBearish
)

func (k ChochKind) String() string {
	switch k {
	case ChochBullish:
		return "choch_bullish"
	case ChochBearish:
		return "choch_bearish"
	default:
		return "continuation"
	}
}

// ChochResult 携带转变信号与双向触发时的流动性猎杀提示。
type ChochResult struct {
	Kind ChochKind `json:"kind"`
	// SweepHint is set only when both sides trigger simultaneously and the
	// recency winner matches the prior trend: the losing, older side is
	// read as a trap rather than a genuine break.
	SweepHint bool `json:"sweep_hint"`
}

// detectChoch evaluates the bullish and bearish structural tests
// independently. Each side needs a price break plus close confirmation on
// the bar that formed the breaking pivot. When both fire, the side whose
// pivot is more recent wins.
//
// hasPrev 为 false 时（高低点各不足 4 个）退回使用摆动点自身的递增/递减证据。
func detectChoch(src BarSource, s *SwingSeries, prev Trend, hasPrev bool) ChochResult {
	if s.HighCount() < 3 || s.LowCount() < 3 {
		return ChochResult{Kind: Continuation}
	}
	sh0, _ := s.High(0)
	sh1, _ := s.High(1)
	sh2, _ := s.High(2)
	sl0, _ := s.Low(0)
	sl1, _ := s.Low(1)
	sl2, _ := s.Low(2)

	bullish := sh0.Price > sh1.Price &&
		closeAbove(src, sh0.CoarseOpenTime, sh1.Price) &&
		(sh1.Price < sh2.Price || (hasPrev && prev.Direction != DirectionBullish))

	bearish := sl0.Price < sl1.Price &&
		closeBelow(src, sl0.CoarseOpenTime, sl1.Price) &&
		(sl1.Price > sl2.Price || (hasPrev && prev.Direction != DirectionBearish))

	switch {
	case bullish && bearish:
		kind := ChochBearish
		dir := DirectionBearish
		if sh0.CoarseOpenTime > sl0.CoarseOpenTime {
			kind = ChochBullish
			dir = DirectionBullish
		}
		hint := hasPrev && prev.Direction == dir
		return ChochResult{Kind: kind, SweepHint: hint}
	case bullish:
		return ChochResult{Kind: ChochBullish}
	case bearish:
		return ChochResult{Kind: ChochBearish}
	default:
		return ChochResult{Kind: Continuation}
	}
}

// closeAbove reports whether the close of the coarse bar opening at
// openTime exceeds level. A failed lookup fails the confirmation only.
func closeAbove(src BarSource, openTime int64, level float64) bool {
	idx, ok := src.CoarseIndexAtOrAfter(openTime)
	if !ok {
		return false
	}
	bar, ok := src.CoarseBar(idx)
	if !ok {
		return false
	}
	return bar.Close > level
}

func closeBelow(src BarSource, openTime int64, level float64) bool {
	idx, ok := src.CoarseIndexAtOrAfter(openTime)
	if !ok {
		return false
	}
	bar, ok := src.CoarseBar(idx)
	if !ok {
		return false
	}
	return bar.Close < level
}
