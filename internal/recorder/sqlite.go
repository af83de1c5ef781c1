package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/RizzyDope/paper-trading-bot/internal/model"
)

// SQLiteRecorder persists trade history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so analysis reads don't block the bot's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			closed_at        INTEGER NOT NULL,
			symbol           TEXT,
			side             TEXT,
			entry_price      REAL,
			exit_price       REAL,
			pnl              REAL,
			r_multiple       REAL,
			result           TEXT,
			reason           TEXT,
			duration_seconds INTEGER,
			equity_after     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_closed ON trades(closed_at)`,

		`CREATE TABLE IF NOT EXISTS daily_summaries (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			date         TEXT NOT NULL,
			total_trades INTEGER,
			wins         INTEGER,
			losses       INTEGER,
			net_pnl      REAL,
			avg_r        REAL,
			equity       REAL,
			rejections   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_date ON daily_summaries(date)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordTrade persists one completed round trip.
func (r *SQLiteRecorder) RecordTrade(rec model.TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO trades
		(closed_at, symbol, side, entry_price, exit_price, pnl, r_multiple, result, reason, duration_seconds, equity_after)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ClosedAt.Unix(), rec.Symbol, string(rec.Side),
		rec.Entry, rec.Exit, rec.Pnl, rec.RMultiple,
		rec.Result, string(rec.Reason), int64(rec.Duration.Seconds()), rec.EquityAfter,
	)
	return err
}

// RecordDailySummary persists the rollover snapshot.
func (r *SQLiteRecorder) RecordDailySummary(sum DailySummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO daily_summaries
		(date, total_trades, wins, losses, net_pnl, avg_r, equity, rejections)
		VALUES (?,?,?,?,?,?,?,?)`,
		sum.Date, sum.TotalTrades, sum.Wins, sum.Losses,
		sum.NetPnl, sum.AvgR, sum.Equity, sum.Rejections,
	)
	return err
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
