package structure

import (
	"testing"

	"strata/internal/market"
)

func sweepFixture(t *testing.T, highs, lows []Swing, closes map[int64]float64) (*SwingSeries, Bars) {
	t.Helper()
	var coarse []market.Candle
	for t0, c := range closes {
		coarse = append(coarse, bar(t0, c+1, c-1, c))
	}
	return seriesOf(t, highs, lows), barsOf(coarse, nil)
}

func TestDetectSweepBullishRecovered(t *testing.T) {
	// sl1 dipped under sl2, price recovered above sl1, highs confirm.
	highs := []Swing{swingAt(9000, 112), swingAt(6000, 110), swingAt(3000, 111)}
	lows := []Swing{swingAt(8000, 97), swingAt(5000, 94), swingAt(2000, 96)}
	s, src := sweepFixture(t, highs, lows, nil)

	if !detectSweep(src, s, Trend{Direction: DirectionBullish}) {
		t.Fatal("recovered dip under the prior low should flag a sweep")
	}
}

func TestDetectSweepBullishUnrecoveredNeedsClose(t *testing.T) {
	// sl0 under sl1: only a close back above sl1 (or confirming highs)
	// qualifies.
	highs := []Swing{swingAt(9000, 108), swingAt(6000, 110), swingAt(3000, 111)}
	lows := []Swing{swingAt(8000, 93), swingAt(5000, 94), swingAt(2000, 92)}

	s, src := sweepFixture(t, highs, lows, map[int64]float64{8000: 95})
	if !detectSweep(src, s, Trend{Direction: DirectionBullish}) {
		t.Fatal("close back above the swept low should flag a sweep")
	}

	s, src = sweepFixture(t, highs, lows, map[int64]float64{8000: 92})
	if detectSweep(src, s, Trend{Direction: DirectionBullish}) {
		t.Fatal("no recovery close and no confirming highs: not a sweep")
	}
}

func TestDetectSweepBearishMirror(t *testing.T) {
	// sh1 poked above sh2, price fell back under sh1, lows confirm.
	highs := []Swing{swingAt(9000, 108), swingAt(6000, 113), swingAt(3000, 111)}
	lows := []Swing{swingAt(8000, 92), swingAt(5000, 94), swingAt(2000, 96)}
	s, src := sweepFixture(t, highs, lows, nil)

	if !detectSweep(src, s, Trend{Direction: DirectionBearish}) {
		t.Fatal("rejected poke above the prior high should flag a sweep")
	}
}

func TestDetectSweepRequiresDirectionAndHistory(t *testing.T) {
	highs := []Swing{swingAt(9000, 112), swingAt(6000, 110), swingAt(3000, 111)}
	lows := []Swing{swingAt(8000, 97), swingAt(5000, 94), swingAt(2000, 96)}
	s, src := sweepFixture(t, highs, lows, nil)

	if detectSweep(src, s, Trend{}) {
		t.Fatal("no gated direction, no sweep")
	}

	short, src2 := sweepFixture(t, highs[:2], lows[:2], nil)
	if detectSweep(src2, short, Trend{Direction: DirectionBullish}) {
		t.Fatal("insufficient history must report false")
	}
}
