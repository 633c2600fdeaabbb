package structure

import (
	"testing"

	"strata/internal/market"
)

// bar builds a coarse candle with a one-second nominal span.
func bar(t int64, h, l, c float64) market.Candle {
	return market.Candle{OpenTime: t, CloseTime: t + 999, Open: c, High: h, Low: l, Close: c}
}

func barsOf(coarse, fine []market.Candle) Bars {
	return Bars{Coarse: market.NewSeries(coarse), Fine: market.NewSeries(fine)}
}

func swingAt(t int64, price float64) Swing {
	return Swing{CoarseOpenTime: t, FineOpenTime: t, Price: price, DisplayPrice: price}
}

// seriesOf fills a SwingSeries from most-recent-first price/time pairs.
func seriesOf(t *testing.T, highs, lows []Swing) *SwingSeries {
	t.Helper()
	s := NewSwingSeries(0)
	for _, sw := range highs {
		s.AddHigh(sw)
	}
	for _, sw := range lows {
		s.AddLow(sw)
	}
	return s
}

// mergedAlternates walks the series in time order and reports whether the
// entry types strictly alternate.
func mergedAlternates(s *SwingSeries) bool {
	type entry struct {
		t      int64
		isHigh bool
	}
	var all []entry
	for _, sw := range s.Highs() {
		all = append(all, entry{sw.CoarseOpenTime, true})
	}
	for _, sw := range s.Lows() {
		all = append(all, entry{sw.CoarseOpenTime, false})
	}
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[j].t < all[i].t {
				all[i], all[j] = all[j], all[i]
			}
		}
	}
	for i := 1; i < len(all); i++ {
		if all[i].isHigh == all[i-1].isHigh {
			return false
		}
	}
	return true
}
