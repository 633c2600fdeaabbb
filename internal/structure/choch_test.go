package structure

import (
	"testing"

	"strata/internal/market"
)

// chochFixture builds a series plus the coarse bars backing the close
// confirmations of the breaking pivots.
func chochFixture(t *testing.T, highs, lows []Swing, closes map[int64]float64) (*SwingSeries, Bars) {
	t.Helper()
	var coarse []market.Candle
	for t0, c := range closes {
		coarse = append(coarse, bar(t0, c+1, c-1, c))
	}
	return seriesOf(t, highs, lows), barsOf(coarse, nil)
}

func TestDetectChochBullish(t *testing.T) {
	highs := []Swing{swingAt(9000, 110), swingAt(6000, 105), swingAt(3000, 108)}
	lows := []Swing{swingAt(8000, 96), swingAt(5000, 95), swingAt(2000, 94)}
	s, src := chochFixture(t, highs, lows, map[int64]float64{9000: 111, 8000: 97})

	got := detectChoch(src, s, Trend{Direction: DirectionBearish}, true)
	if got.Kind != ChochBullish || got.SweepHint {
		t.Fatalf("want plain bullish choch, got %+v", got)
	}
}

func TestDetectChochCloseConfirmationRequired(t *testing.T) {
	highs := []Swing{swingAt(9000, 110), swingAt(6000, 105), swingAt(3000, 108)}
	lows := []Swing{swingAt(8000, 96), swingAt(5000, 95), swingAt(2000, 94)}
	// Break without close confirmation: bar closes back under sh1.
	s, src := chochFixture(t, highs, lows, map[int64]float64{9000: 104, 8000: 97})

	got := detectChoch(src, s, Trend{Direction: DirectionBearish}, true)
	if got.Kind != Continuation {
		t.Fatalf("unconfirmed break must be continuation, got %v", got.Kind)
	}
}

func TestDetectChochDualTieBreakByRecency(t *testing.T) {
	highs := []Swing{swingAt(9000, 110), swingAt(4000, 105), swingAt(2000, 108)}
	lows := []Swing{swingAt(8000, 90), swingAt(5000, 95), swingAt(3000, 92)}
	closes := map[int64]float64{9000: 111, 8000: 89}
	s, src := chochFixture(t, highs, lows, closes)

	// Both structural tests hold; the high pivot is newer.
	got := detectChoch(src, s, Trend{}, false)
	if got.Kind != ChochBullish {
		t.Fatalf("recency tie-break should favor the newer high, got %v", got.Kind)
	}

	// Swap the pivot recency: now the low is newer.
	highs[0].CoarseOpenTime = 7000
	closes = map[int64]float64{7000: 111, 8000: 89}
	s, src = chochFixture(t, highs, lows, closes)
	got = detectChoch(src, s, Trend{}, false)
	if got.Kind != ChochBearish {
		t.Fatalf("recency tie-break should flip with timestamps, got %v", got.Kind)
	}
}

func TestDetectChochDualSweepHint(t *testing.T) {
	highs := []Swing{swingAt(9000, 110), swingAt(4000, 105), swingAt(2000, 108)}
	lows := []Swing{swingAt(8000, 90), swingAt(5000, 95), swingAt(3000, 92)}
	s, src := chochFixture(t, highs, lows, map[int64]float64{9000: 111, 8000: 89})

	// Winner (bullish) matches the prior trend: the losing bearish side is
	// read as a liquidity grab.
	got := detectChoch(src, s, Trend{Direction: DirectionBullish}, true)
	if got.Kind != ChochBullish || !got.SweepHint {
		t.Fatalf("want bullish choch with sweep hint, got %+v", got)
	}

	// Prior trend on the losing side: no hint.
	got = detectChoch(src, s, Trend{Direction: DirectionBearish}, true)
	if got.SweepHint {
		t.Fatal("sweep hint requires the winner to match the prior trend")
	}
}

func TestDetectChochFallbackWithoutPreviousTrend(t *testing.T) {
	// Highs were rising (sh1 > sh2), so without a previous trend the
	// bullish test has no declining-structure evidence to stand on.
	highs := []Swing{swingAt(9000, 110), swingAt(6000, 108), swingAt(3000, 105)}
	lows := []Swing{swingAt(8000, 96), swingAt(5000, 94), swingAt(2000, 95)}
	s, src := chochFixture(t, highs, lows, map[int64]float64{9000: 111, 8000: 97})

	if got := detectChoch(src, s, Trend{}, false); got.Kind != Continuation {
		t.Fatalf("want continuation under fallback evidence, got %v", got.Kind)
	}

	// With a non-bullish previous trend the same shape does break.
	if got := detectChoch(src, s, Trend{Direction: DirectionBearish}, true); got.Kind != ChochBullish {
		t.Fatalf("previous-trend check should admit the break, got %v", got.Kind)
	}
}

func TestDetectChochInsufficientHistory(t *testing.T) {
	highs := []Swing{swingAt(9000, 110), swingAt(6000, 105)}
	lows := []Swing{swingAt(8000, 96), swingAt(5000, 95)}
	s, src := chochFixture(t, highs, lows, nil)

	got := detectChoch(src, s, Trend{}, false)
	if got.Kind != Continuation || got.SweepHint {
		t.Fatalf("want bare continuation, got %+v", got)
	}
}
