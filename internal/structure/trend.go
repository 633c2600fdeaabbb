package structure

// Direction 趋势方向。
type Direction int

const (
	DirectionNone Direction = iota
	DirectionBullish
	DirectionBearish
)

func (d Direction) String() string {
	switch d {
	case DirectionBullish:
		return "bullish"
	case DirectionBearish:
		return "bearish"
	default:
		return "none"
	}
}

// Status 趋势置信度：Momentum 表示对侧摆动点也佐证方向，Compression 表示方向
// 成立但缺少对侧佐证。
type Status int

const (
	StatusNone Status = iota
	StatusMomentum
	StatusCompression
)

func (s Status) String() string {
	switch s {
	case StatusMomentum:
		return "momentum"
	case StatusCompression:
		return "compression"
	default:
		return "none"
	}
}

// Trend 组合方向与置信度。
type Trend struct {
	Direction Direction `json:"direction"`
	Status    Status    `json:"status"`
}

// classifyTrend derives the trend from the three most recent alternating
// highs and lows at the given recency offset (0 = current, 1 = previous).
// The branches form a strict priority chain: primary bullish, primary
// bearish, ambiguous bullish, ambiguous bearish, none — first match wins.
func classifyTrend(s *SwingSeries, offset int) Trend {
	need := 3 + offset
	if s.HighCount() < need || s.LowCount() < need {
		return Trend{}
	}
	sh0, _ := s.High(offset)
	sh1, _ := s.High(offset + 1)
	sh2, _ := s.High(offset + 2)
	sl0, _ := s.Low(offset)
	sl1, _ := s.Low(offset + 1)
	sl2, _ := s.Low(offset + 2)

	risingLows := sl2.Price < sl1.Price && sl1.Price < sl0.Price
	sweptLow := sl2.Price > sl1.Price && sl0.Price > sl2.Price
	if (risingLows || sweptLow) && sl0.Price > sl1.Price {
		if sh0.Price > sh1.Price {
			return Trend{Direction: DirectionBullish, Status: StatusMomentum}
		}
		return Trend{Direction: DirectionBullish, Status: StatusCompression}
	}

	fallingHighs := sh2.Price > sh1.Price && sh1.Price > sh0.Price
	sweptHigh := sh2.Price < sh1.Price && sh0.Price < sh2.Price
	if (fallingHighs || sweptHigh) && sh0.Price < sh1.Price {
		if sl0.Price < sl1.Price {
			return Trend{Direction: DirectionBearish, Status: StatusMomentum}
		}
		return Trend{Direction: DirectionBearish, Status: StatusCompression}
	}

	// Ambiguous dip-then-recover, only taken with a confirming opposite side.
	if sl2.Price > sl1.Price && sl1.Price < sl0.Price && sh0.Price > sh1.Price {
		return Trend{Direction: DirectionBullish, Status: StatusMomentum}
	}
	if sh2.Price < sh1.Price && sh1.Price > sh0.Price && sl0.Price < sl1.Price {
		return Trend{Direction: DirectionBearish, Status: StatusMomentum}
	}

	return Trend{}
}
