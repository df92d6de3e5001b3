// Package storage persists the ledger state in a local SQLite database.
//
// The adapter never diffs: Save replaces the stored state wholesale inside a
// single transaction, and Load rebuilds the full State. The database file is
// the one durable record of the ledger.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"jarras/internal/core"

	_ "modernc.org/sqlite"
)

const themeKey = "theme"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save replaces the persisted ledger with the given state.
func (r *SQLiteRepository) Save(ctx context.Context, state core.State) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"jars", "transactions", "lf_history"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, jar := range core.Jars {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO jars (code, balance_cents) VALUES (?, ?)`,
			string(jar), state.Balances[jar].Cents)
		if err != nil {
			return fmt.Errorf("insert jar %s: %w", jar, err)
		}
	}

	for pos, t := range state.History {
		dist, err := encodeDistribution(t.Distribution)
		if err != nil {
			return fmt.Errorf("encode distribution for %s: %w", t.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO transactions (id, position, kind, fecha, monto_cents, descripcion, distribution, jar)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, pos, string(t.Kind), t.Date.UTC().Format(time.RFC3339Nano),
			t.Amount.Cents, t.Description, dist, nullableJar(t.Jar))
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	for _, p := range state.Growth {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO lf_history (fecha, saldo_cents) VALUES (?, ?)`,
			p.Date.UTC().Format(time.RFC3339Nano), p.Balance.Cents)
		if err != nil {
			return fmt.Errorf("insert growth point: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		themeKey, string(state.Theme))
	if err != nil {
		return fmt.Errorf("save theme: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	slog.DebugContext(ctx, "Ledger state saved",
		"transactions", len(state.History),
		"growth_points", len(state.Growth),
		"total_cents", state.TotalBalance().Cents)

	return nil
}

// Load rebuilds the ledger state from the database. The second return is
// false on first run, before any state was saved.
func (r *SQLiteRepository) Load(ctx context.Context) (core.State, bool, error) {
	state := core.NewState()

	rows, err := r.db.QueryContext(ctx, `SELECT code, balance_cents FROM jars`)
	if err != nil {
		return core.State{}, false, fmt.Errorf("query jars: %w", err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var code string
		var cents int64
		if err := rows.Scan(&code, &cents); err != nil {
			return core.State{}, false, fmt.Errorf("scan jar: %w", err)
		}
		jar, err := core.ParseJar(code)
		if err != nil {
			return core.State{}, false, fmt.Errorf("stored jar %q: %w", code, err)
		}
		state.Balances[jar] = core.Money{Cents: cents}
		found = true
	}
	if err := rows.Err(); err != nil {
		return core.State{}, false, fmt.Errorf("iterate jars: %w", err)
	}
	if !found {
		return core.State{}, false, nil
	}

	if state.History, err = r.loadTransactions(ctx); err != nil {
		return core.State{}, false, err
	}
	if state.Growth, err = r.loadGrowth(ctx); err != nil {
		return core.State{}, false, err
	}

	var theme string
	err = r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, themeKey).Scan(&theme)
	switch {
	case err == sql.ErrNoRows:
		// keep the default
	case err != nil:
		return core.State{}, false, fmt.Errorf("load theme: %w", err)
	default:
		if core.Theme(theme).Validate() == nil {
			state.Theme = core.Theme(theme)
		}
	}

	slog.InfoContext(ctx, "Ledger state loaded",
		"transactions", len(state.History),
		"growth_points", len(state.Growth))

	return state, true, nil
}

func (r *SQLiteRepository) loadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, fecha, monto_cents, descripcion, distribution, jar
		 FROM transactions ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	history := []core.Transaction{}
	for rows.Next() {
		var (
			t     core.Transaction
			kind  string
			fecha string
			dist  sql.NullString
			jar   sql.NullString
		)
		if err := rows.Scan(&t.ID, &kind, &fecha, &t.Amount.Cents, &t.Description, &dist, &jar); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = core.TxKind(kind)
		if t.Date, err = time.Parse(time.RFC3339Nano, fecha); err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", fecha, err)
		}
		if dist.Valid {
			if t.Distribution, err = decodeDistribution(dist.String); err != nil {
				return nil, fmt.Errorf("decode distribution for %s: %w", t.ID, err)
			}
		}
		if jar.Valid {
			t.Jar = core.Jar(jar.String)
		}
		history = append(history, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return history, nil
}

func (r *SQLiteRepository) loadGrowth(ctx context.Context) ([]core.GrowthPoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT fecha, saldo_cents FROM lf_history ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query lf history: %w", err)
	}
	defer rows.Close()

	growth := []core.GrowthPoint{}
	for rows.Next() {
		var (
			p     core.GrowthPoint
			fecha string
		)
		if err := rows.Scan(&fecha, &p.Balance.Cents); err != nil {
			return nil, fmt.Errorf("scan growth point: %w", err)
		}
		if p.Date, err = time.Parse(time.RFC3339Nano, fecha); err != nil {
			return nil, fmt.Errorf("parse growth date %q: %w", fecha, err)
		}
		growth = append(growth, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lf history: %w", err)
	}
	return growth, nil
}

// encodeDistribution stores deltas as a JSON object of cents keyed by jar
// code, e.g. {"NEC":55000,"LF":10000}.
func encodeDistribution(dist map[core.Jar]core.Money) (sql.NullString, error) {
	if dist == nil {
		return sql.NullString{}, nil
	}
	cents := make(map[core.Jar]int64, len(dist))
	for jar, m := range dist {
		cents[jar] = m.Cents
	}
	b, err := json.Marshal(cents)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeDistribution(raw string) (map[core.Jar]core.Money, error) {
	cents := map[core.Jar]int64{}
	if err := json.Unmarshal([]byte(raw), &cents); err != nil {
		return nil, err
	}
	dist := make(map[core.Jar]core.Money, len(cents))
	for jar, c := range cents {
		dist[jar] = core.Money{Cents: c}
	}
	return dist, nil
}

func nullableJar(j core.Jar) sql.NullString {
	if j == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: string(j), Valid: true}
}
