package structure

// gateReversal 决定是否接受一次原始方向翻转。返回最终趋势与是否强制挂出
// 流动性猎杀标记（dual-CHoCH 覆盖时为 true）。
//
// Acceptance rules, in order:
//  1. sweep hint → revert to the previous direction with momentum, force
//     the sweep flag;
//  2. candidate flip → accept only with a matching CHoCH kind, otherwise
//     fall back to compression while deeper structure still holds
//     (sh0>sh3 / sl0<sl3), otherwise undetermined;
//  3. no candidate flip → pass the raw call through.
func gateReversal(s *SwingSeries, raw, prev Trend, choch ChochResult) (Trend, bool) {
	if choch.SweepHint {
		return Trend{Direction: prev.Direction, Status: StatusMomentum}, true
	}

	switch {
	case prev.Direction == DirectionBullish && raw.Direction == DirectionBearish:
		if choch.Kind == ChochBearish {
			return Trend{Direction: DirectionBearish, Status: raw.Status}, false
		}
		if s.HighCount() >= 4 {
			sh0, _ := s.High(0)
			sh3, _ := s.High(3)
			if sh0.Price > sh3.Price {
				return Trend{Direction: DirectionBullish, Status: StatusCompression}, false
			}
		}
		return Trend{}, false

	case prev.Direction == DirectionBearish && raw.Direction == DirectionBullish:
		if choch.Kind == ChochBullish {
			return Trend{Direction: DirectionBullish, Status: raw.Status}, false
		}
		if s.LowCount() >= 4 {
			sl0, _ := s.Low(0)
			sl3, _ := s.Low(3)
			if sl0.Price < sl3.Price {
				return Trend{Direction: DirectionBearish, Status: StatusCompression}, false
			}
		}
		return Trend{}, false
	}

	return raw, false
}
