package structure

// detectSweep 在给定（已过闸的）方向上识别假反转形态：价格扫过前一摆动位后
// 收回，视作流动性猎杀而非真实结构破坏。
func detectSweep(src BarSource, s *SwingSeries, gated Trend) bool {
	if s.HighCount() < 3 || s.LowCount() < 3 {
		return false
	}
	sh0, _ := s.High(0)
	sh1, _ := s.High(1)
	sh2, _ := s.High(2)
	sl0, _ := s.Low(0)
	sl1, _ := s.Low(1)
	sl2, _ := s.Low(2)

	switch gated.Direction {
	case DirectionBullish:
		if sl1.Price < sl2.Price && sl0.Price > sl1.Price && sh0.Price > sh1.Price {
			return true
		}
		return sl0.Price < sl1.Price &&
			(closeAbove(src, sl0.CoarseOpenTime, sl1.Price) || sh0.Price > sh1.Price)
	case DirectionBearish:
		if sh1.Price > sh2.Price && sh0.Price < sh1.Price && sl0.Price < sl1.Price {
			return true
		}
		return sh0.Price > sh1.Price &&
			(closeBelow(src, sh0.CoarseOpenTime, sh1.Price) || sl0.Price < sl1.Price)
	default:
		return false
	}
}
