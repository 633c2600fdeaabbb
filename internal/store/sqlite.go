package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"strata/internal/market"

	_ "modernc.org/sqlite"
)

// SQLiteKlineStore 将 K 线落盘，重启后可热恢复历史窗口。
type SQLiteKlineStore struct {
	db *sql.DB
}

const klineSchema = `
CREATE TABLE IF NOT EXISTS klines (
	symbol     TEXT    NOT NULL,
	interval   TEXT    NOT NULL,
	open_time  INTEGER NOT NULL,
	close_time INTEGER NOT NULL,
	open       REAL    NOT NULL,
	high       REAL    NOT NULL,
	low        REAL    NOT NULL,
	close      REAL    NOT NULL,
	volume     REAL    NOT NULL,
	trades     INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (symbol, interval, open_time)
);`

func NewSQLiteKlineStore(path string) (*SQLiteKlineStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(klineSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init kline schema: %w", err)
	}
	return &SQLiteKlineStore{db: db}, nil
}

func (s *SQLiteKlineStore) Close() error { return s.db.Close() }

// Put upserts the batch and trims rows beyond max per symbol+interval.
func (s *SQLiteKlineStore) Put(ctx context.Context, symbol, interval string, ks []market.Candle, max int) error {
	if symbol == "" || interval == "" {
		return errors.New("symbol and interval are required")
	}
	if len(ks) == 0 {
		return nil
	}
	if max <= 0 {
		max = 500
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO klines (symbol, interval, open_time, close_time, open, high, low, close, volume, trades)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(symbol, interval, open_time) DO UPDATE SET
	close_time = excluded.close_time,
	open = excluded.open, high = excluded.high,
	low = excluded.low, close = excluded.close,
	volume = excluded.volume, trades = excluded.trades`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, c := range ks {
		if _, err := stmt.ExecContext(ctx, symbol, interval, c.OpenTime, c.CloseTime,
			c.Open, c.High, c.Low, c.Close, c.Volume, c.Trades); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `
DELETE FROM klines WHERE symbol = ? AND interval = ? AND open_time NOT IN (
	SELECT open_time FROM klines WHERE symbol = ? AND interval = ?
	ORDER BY open_time DESC LIMIT ?)`,
		symbol, interval, symbol, interval, max); err != nil {
		return err
	}
	return tx.Commit()
}

// Get 返回全部已存 K 线（按时间升序）。
func (s *SQLiteKlineStore) Get(ctx context.Context, symbol, interval string) ([]market.Candle, error) {
	return s.query(ctx, symbol, interval, 0)
}

// Export 返回最近 limit 根 K 线（按时间升序）。
func (s *SQLiteKlineStore) Export(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	if limit <= 0 {
		return nil, nil
	}
	return s.query(ctx, symbol, interval, limit)
}

func (s *SQLiteKlineStore) query(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	if symbol == "" || interval == "" {
		return nil, errors.New("symbol and interval are required")
	}
	q := `SELECT open_time, close_time, open, high, low, close, volume, trades
FROM klines WHERE symbol = ? AND interval = ? ORDER BY open_time DESC`
	args := []any{symbol, interval}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []market.Candle
	for rows.Next() {
		var c market.Candle
		if err := rows.Scan(&c.OpenTime, &c.CloseTime, &c.Open, &c.High, &c.Low,
			&c.Close, &c.Volume, &c.Trades); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Rows come newest first; flip to ascending order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
