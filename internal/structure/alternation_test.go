package structure

import (
	"testing"

	"strata/internal/market"
)

func TestEnforceAlternationSynthesizesMissingLow(t *testing.T) {
	coarse := []market.Candle{
		bar(0, 100, 95, 98),
		bar(1000, 110, 96, 105), // detected high
		bar(2000, 101, 92, 95),
		bar(3000, 102, 89, 94), // deepest low between the two highs
		bar(4000, 115, 97, 112), // detected high
		bar(5000, 104, 94, 96),
		bar(6000, 103, 85, 90), // detected low
	}
	src := barsOf(coarse, coarse)
	s := NewSwingSeries(10)
	s.AddHigh(swingAt(4000, 115))
	s.AddHigh(swingAt(1000, 110))
	s.AddLow(swingAt(6000, 85))

	enforceAlternation(src, s, 1)

	if !mergedAlternates(s) {
		t.Fatal("merged series must strictly alternate after enforcement")
	}
	if s.LowCount() != 2 {
		t.Fatalf("want synthesized low, got %d lows", s.LowCount())
	}
	synth, _ := s.Low(1)
	if synth.Price != 89 || synth.CoarseOpenTime != 3000 {
		t.Fatalf("synthesized low should be the extreme between the highs, got %+v", synth)
	}
}

func TestEnforceAlternationDegenerateGap(t *testing.T) {
	// Adjacent same-type pivots with no bar strictly between them: the
	// later pivot is appended without insertion.
	coarse := []market.Candle{
		bar(0, 100, 95, 98),
		bar(1000, 110, 96, 105),
		bar(2000, 112, 97, 108),
	}
	src := barsOf(coarse, coarse)
	s := NewSwingSeries(10)
	s.AddHigh(swingAt(2000, 112))
	s.AddHigh(swingAt(1000, 110))

	enforceAlternation(src, s, 1)

	if s.HighCount() != 2 || s.LowCount() != 0 {
		t.Fatalf("no synthetic pivot expected, got %d highs %d lows", s.HighCount(), s.LowCount())
	}
}

func TestEnforceAlternationNoOpBelowTwoPivots(t *testing.T) {
	coarse := []market.Candle{bar(0, 100, 95, 98)}
	src := barsOf(coarse, coarse)
	s := NewSwingSeries(10)
	s.AddHigh(swingAt(0, 100))

	enforceAlternation(src, s, 1)

	if s.HighCount() != 1 || s.LowCount() != 0 {
		t.Fatal("single pivot must pass through untouched")
	}
}

func TestEnforceAlternationProperty(t *testing.T) {
	// A messy raw batch: runs of same-type pivots in several places.
	var coarse []market.Candle
	highsAt := map[int64]float64{1000: 110, 3000: 114, 5000: 118, 9000: 111}
	lowsAt := map[int64]float64{7000: 84, 11000: 86}
	for i := int64(0); i <= 12; i++ {
		t0 := i * 1000
		h, l := 100.0+float64(i%3), 90.0-float64(i%3)
		if v, ok := highsAt[t0]; ok {
			h = v
		}
		if v, ok := lowsAt[t0]; ok {
			l = v
		}
		coarse = append(coarse, bar(t0, h, l, (h+l)/2))
	}
	src := barsOf(coarse, coarse)
	s := NewSwingSeries(20)
	for t0, p := range highsAt {
		s.AddHigh(swingAt(t0, p))
	}
	for t0, p := range lowsAt {
		s.AddLow(swingAt(t0, p))
	}

	enforceAlternation(src, s, 1)

	if !mergedAlternates(s) {
		t.Fatalf("alternation invariant violated: highs=%v lows=%v", s.Highs(), s.Lows())
	}
}

func TestSwingSeriesCapacity(t *testing.T) {
	s := NewSwingSeries(2)
	s.AddHigh(swingAt(0, 1))
	s.AddHigh(swingAt(1000, 2))
	s.AddHigh(swingAt(2000, 3)) // past capacity, silently dropped
	if s.HighCount() != 2 {
		t.Fatalf("capacity must cap appends, got %d", s.HighCount())
	}
}
