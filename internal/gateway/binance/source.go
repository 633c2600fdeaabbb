package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"strata/internal/logger"
	"strata/internal/market"

	"github.com/adshao/go-binance/v2/futures"
)

const maxHistoryLimit = 1500

// Source 实现了 market.Source，负责 Binance 合约行情的 REST/WS 接入。
type Source struct {
	cfg    Config
	client *futures.Client

	mu     sync.Mutex
	ws     *combinedStreamsClient
	cancel context.CancelFunc
}

func New(cfg Config) (*Source, error) {
	final := cfg.withDefaults()
	client := futures.NewClient("", "")
	client.HTTPClient.Timeout = final.HTTPTimeout
	return &Source{cfg: final, client: client}, nil
}

func (s *Source) FetchHistory(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	interval = strings.ToLower(strings.TrimSpace(interval))
	if interval == "" {
		return nil, fmt.Errorf("interval is required")
	}
	logger.Debugf("[binance] klines %s %s limit=%d", symbol, interval, limit)
	raw, err := s.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance history: %w", err)
	}
	out := make([]market.Candle, 0, len(raw))
	for _, k := range raw {
		if k == nil {
			continue
		}
		out = append(out, market.Candle{
			OpenTime:  k.OpenTime,
			CloseTime: k.CloseTime,
			Open:      parseFloat(k.Open),
			High:      parseFloat(k.High),
			Low:       parseFloat(k.Low),
			Close:     parseFloat(k.Close),
			Volume:    parseFloat(k.Volume),
			Trades:    k.TradeNum,
		})
	}
	return out, nil
}

func (s *Source) Subscribe(ctx context.Context, symbols, intervals []string, opts market.SubscribeOptions) (<-chan market.CandleEvent, error) {
	if len(symbols) == 0 || len(intervals) == 0 {
		return nil, fmt.Errorf("symbols and intervals are required for subscription")
	}
	ws := newCombinedStreamsClient(s.cfg.WSBaseURL, s.cfg.WSBatchSize)
	ws.SetCallbacks(opts.OnConnect, opts.OnDisconnect)
	if err := ws.Connect(); err != nil {
		return nil, fmt.Errorf("binance ws connect: %w", err)
	}

	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = 1024
	}
	out := make(chan market.CandleEvent, buffer)
	var wg sync.WaitGroup
	for _, interval := range intervals {
		iv := strings.ToLower(strings.TrimSpace(interval))
		if err := ws.BatchSubscribeKlines(symbols, iv); err != nil {
			ws.Close()
			return nil, fmt.Errorf("subscribe %s klines: %w", iv, err)
		}
		for _, sym := range symbols {
			stream := strings.ToLower(sym) + "@kline_" + iv
			frames := ws.AddSubscriber(stream, buffer)
			wg.Add(1)
			go func() {
				defer wg.Done()
				pumpKlines(ctx, frames, out)
			}()
		}
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	wsCtx, cancel := context.WithCancel(ctx)
	go func() {
		<-wsCtx.Done()
		ws.Close()
	}()

	s.mu.Lock()
	if s.ws != nil {
		s.ws.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.ws = ws
	s.cancel = cancel
	s.mu.Unlock()
	return out, nil
}

// pumpKlines 将原始 WS 帧转换为 CandleEvent 并转发。
func pumpKlines(ctx context.Context, frames <-chan []byte, out chan<- market.CandleEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-frames:
			if !ok {
				return
			}
			var payload struct {
				Symbol string `json:"s"`
				Kline  struct {
					OpenTime  int64  `json:"t"`
					CloseTime int64  `json:"T"`
					Interval  string `json:"i"`
					Open      string `json:"o"`
					High      string `json:"h"`
					Low       string `json:"l"`
					Close     string `json:"c"`
					Volume    string `json:"v"`
					Trades    int64  `json:"n"`
					Final     bool   `json:"x"`
				} `json:"k"`
			}
			if err := json.Unmarshal(b, &payload); err != nil {
				logger.Debugf("[binance] bad kline frame: %v", err)
				continue
			}
			ev := market.CandleEvent{
				Symbol:   payload.Symbol,
				Interval: payload.Kline.Interval,
				Final:    payload.Kline.Final,
				Candle: market.Candle{
					OpenTime:  payload.Kline.OpenTime,
					CloseTime: payload.Kline.CloseTime,
					Open:      parseFloat(payload.Kline.Open),
					High:      parseFloat(payload.Kline.High),
					Low:       parseFloat(payload.Kline.Low),
					Close:     parseFloat(payload.Kline.Close),
					Volume:    parseFloat(payload.Kline.Volume),
					Trades:    payload.Kline.Trades,
				},
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Source) Stats() market.SourceStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ws == nil {
		return market.SourceStats{}
	}
	return s.ws.Stats()
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.ws != nil {
		s.ws.Close()
		s.ws = nil
	}
	return nil
}

func parseFloat(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return f
}
