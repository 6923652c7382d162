package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"StockPulse/internal/model"
)

// SQLiteRecorder persists run results to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.Named("recorder")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id           TEXT PRIMARY KEY,
			kind         TEXT NOT NULL,
			started_at   INTEGER NOT NULL,
			window_start INTEGER,
			window_end   INTEGER,
			symbols      INTEGER,
			failed       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON analysis_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS symbol_summaries (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id             TEXT NOT NULL REFERENCES analysis_runs(id),
			rank               INTEGER,
			symbol             TEXT NOT NULL,
			category           TEXT,
			avg_monthly_change REAL,
			win_rate           REAL,
			recent_trend_6m    REAL,
			total_months       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_symbol ON symbol_summaries(symbol)`,

		`CREATE TABLE IF NOT EXISTS monthly_observations (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL REFERENCES analysis_runs(id),
			symbol          TEXT NOT NULL,
			year            INTEGER,
			month           INTEGER,
			avg_first_half  REAL,
			avg_second_half REAL,
			change_pct      REAL,
			trend           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_obs_symbol ON monthly_observations(symbol, year, month)`,

		`CREATE TABLE IF NOT EXISTS screener_picks (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL REFERENCES analysis_runs(id),
			symbol     TEXT NOT NULL,
			close      REAL,
			prev_close REAL,
			live       REAL,
			stop_loss  TEXT,
			target     TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS predictions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL REFERENCES analysis_runs(id),
			symbol     TEXT NOT NULL,
			close      REAL,
			live       REAL,
			target     REAL,
			stop_loss  REAL,
			sentiment  TEXT,
			confidence REAL,
			reasoning  TEXT,
			source     TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run row together with its summaries and observations
// in a single transaction.
func (r *SQLiteRecorder) RecordRun(run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var windowStart, windowEnd any
	if !run.WindowStart.IsZero() {
		windowStart, windowEnd = run.WindowStart.Unix(), run.WindowEnd.Unix()
	}
	if _, err := tx.Exec(`INSERT INTO analysis_runs
		(id, kind, started_at, window_start, window_end, symbols, failed)
		VALUES (?,?,?,?,?,?,?)`,
		run.ID, run.Kind, run.StartedAt.Unix(), windowStart, windowEnd,
		len(run.Summaries), run.Failed,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, s := range run.Summaries {
		if _, err := tx.Exec(`INSERT INTO symbol_summaries
			(run_id, rank, symbol, category, avg_monthly_change, win_rate, recent_trend_6m, total_months)
			VALUES (?,?,?,?,?,?,?,?)`,
			run.ID, i+1, s.Symbol, s.Category,
			s.AvgMonthlyChange, s.WinRate, s.RecentTrend6M, s.TotalMonths,
		); err != nil {
			return fmt.Errorf("insert summary %s: %w", s.Symbol, err)
		}
	}

	for symbol, obs := range run.Observations {
		for _, o := range obs {
			if _, err := tx.Exec(`INSERT INTO monthly_observations
				(run_id, symbol, year, month, avg_first_half, avg_second_half, change_pct, trend)
				VALUES (?,?,?,?,?,?,?,?)`,
				run.ID, symbol, o.Year, int(o.Month),
				o.AvgFirstHalf, o.AvgSecondHalf, o.ChangePct, o.Trend,
			); err != nil {
				return fmt.Errorf("insert observation %s %d-%02d: %w", symbol, o.Year, o.Month, err)
			}
		}
	}
	return tx.Commit()
}

// RecordPicks stores the screener picks of a run. Either every pick is
// written or none is.
func (r *SQLiteRecorder) RecordPicks(runID string, picks []model.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, p := range picks {
		if _, err := tx.Exec(`INSERT INTO screener_picks
			(run_id, symbol, close, prev_close, live, stop_loss, target)
			VALUES (?,?,?,?,?,?,?)`,
			runID, p.Symbol, p.Close, p.PrevClose, p.Live, p.StopLoss.String(), p.Target.String(),
		); err != nil {
			return fmt.Errorf("insert pick %s: %w", p.Symbol, err)
		}
	}
	return tx.Commit()
}

// RecordPredictions stores the next-session predictions of a run in a single
// transaction.
func (r *SQLiteRecorder) RecordPredictions(runID string, preds []model.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, p := range preds {
		if _, err := tx.Exec(`INSERT INTO predictions
			(run_id, symbol, close, live, target, stop_loss, sentiment, confidence, reasoning, source)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			runID, p.Symbol, p.Close, p.Live, p.Target, p.StopLoss,
			p.Sentiment, p.Confidence, p.Reasoning, p.Source,
		); err != nil {
			return fmt.Errorf("insert prediction %s: %w", p.Symbol, err)
		}
	}
	return tx.Commit()
}

// HistoryEntry is one recorded summary of a symbol.
type HistoryEntry struct {
	RunID     string
	StartedAt time.Time
	Rank      int
	Summary   model.SymbolSummary
}

// SymbolHistory returns the recorded summaries of one symbol, newest run first.
func (r *SQLiteRecorder) SymbolHistory(symbol string) ([]HistoryEntry, error) {
	rows, err := r.db.Query(`SELECT ar.id, ar.started_at, s.rank, s.category,
			s.avg_monthly_change, s.win_rate, s.recent_trend_6m, s.total_months
		FROM symbol_summaries s JOIN analysis_runs ar ON ar.id = s.run_id
		WHERE s.symbol = ?
		ORDER BY ar.started_at DESC, s.id DESC`, symbol)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var (
			e       HistoryEntry
			started int64
		)
		e.Summary.Symbol = symbol
		if err := rows.Scan(&e.RunID, &started, &e.Rank, &e.Summary.Category,
			&e.Summary.AvgMonthlyChange, &e.Summary.WinRate, &e.Summary.RecentTrend6M, &e.Summary.TotalMonths); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.StartedAt = time.Unix(started, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
