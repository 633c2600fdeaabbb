package store

import (
	"context"
	"testing"

	"strata/internal/market"
)

func candleAt(openTime int64, close float64) market.Candle {
	return market.Candle{OpenTime: openTime, CloseTime: openTime + 999, Close: close}
}

func TestMemoryKlineStorePutOverwritesSameBar(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryKlineStore()

	if err := s.Put(ctx, "BTCUSDT", "1m", []market.Candle{candleAt(1000, 10)}, 10); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// 同一根 K 线的增量更新应覆盖而不是追加
	if err := s.Put(ctx, "BTCUSDT", "1m", []market.Candle{candleAt(1000, 11)}, 10); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, "BTCUSDT", "1m")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 1 || got[0].Close != 11 {
		t.Fatalf("got %v, want single bar with close 11", got)
	}
}

func TestMemoryKlineStorePutTrims(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryKlineStore()
	for i := int64(0); i < 5; i++ {
		if err := s.Put(ctx, "BTCUSDT", "1m", []market.Candle{candleAt(i*1000, float64(i))}, 3); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	got, _ := s.Get(ctx, "BTCUSDT", "1m")
	if len(got) != 3 {
		t.Fatalf("len=%d, want 3", len(got))
	}
	if got[0].OpenTime != 2000 || got[2].OpenTime != 4000 {
		t.Fatalf("trim kept wrong window: %v", got)
	}
}

func TestMemoryKlineStoreExport(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryKlineStore()
	if err := s.Set(ctx, "BTCUSDT", "1m", []market.Candle{
		candleAt(1000, 1), candleAt(2000, 2), candleAt(3000, 3),
	}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Export(ctx, "BTCUSDT", "1m", 2)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(got) != 2 || got[0].OpenTime != 2000 || got[1].OpenTime != 3000 {
		t.Fatalf("Export window wrong: %v", got)
	}

	all, err := s.Export(ctx, "BTCUSDT", "1m", 100)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Export over-limit should cap at available bars, got %d", len(all))
	}

	if none, _ := s.Export(ctx, "ETHUSDT", "1m", 2); len(none) != 0 {
		t.Fatalf("unknown symbol should export nothing, got %v", none)
	}
}

func TestMemoryKlineStoreRequiresKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryKlineStore()
	if err := s.Put(ctx, "", "1m", []market.Candle{candleAt(0, 1)}, 10); err == nil {
		t.Fatal("Put without symbol should fail")
	}
	if _, err := s.Export(ctx, "BTCUSDT", "", 5); err == nil {
		t.Fatal("Export without interval should fail")
	}
}

func TestMemoryKlineStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryKlineStore()
	_ = s.Set(ctx, "BTCUSDT", "1m", []market.Candle{candleAt(1000, 1)})
	got, _ := s.Get(ctx, "BTCUSDT", "1m")
	got[0].Close = 99
	again, _ := s.Get(ctx, "BTCUSDT", "1m")
	if again[0].Close != 1 {
		t.Fatal("Get must not expose internal slice")
	}
}
