// Package store handles SQLite persistence of decode history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/gliss/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for decode history.
type Store struct {
	db *sql.DB
}

// Filter narrows history queries.
type Filter struct {
	Lang   string
	Layout string
	// Since keeps decodes at or after this instant; nil keeps everything.
	Since *time.Time
}

// Summary aggregates decode history for the stats report.
type Summary struct {
	Total         int
	SwipeTypes    int
	Taps          int
	Cancelled     int
	Fallbacks     int
	MeanLatencyMs float64
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS decodes (
			id INTEGER PRIMARY KEY,
			at_ms INTEGER NOT NULL,
			layout TEXT NOT NULL,
			lang TEXT NOT NULL,
			kind INTEGER NOT NULL,
			raw_sequence TEXT NOT NULL,
			top_word TEXT NOT NULL,
			candidate_cnt INTEGER NOT NULL,
			latency_ms INTEGER NOT NULL,
			fallback INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS decode_key_stats (
			decode_id INTEGER NOT NULL,
			key TEXT NOT NULL,
			crossings INTEGER NOT NULL,
			discarded INTEGER NOT NULL,
			dwell_sum_ms REAL NOT NULL,
			score_sum REAL NOT NULL,
			PRIMARY KEY (decode_id, key)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_decodes_at_ms ON decodes(at_ms);`,
		`CREATE INDEX IF NOT EXISTS idx_decode_key_stats_key ON decode_key_stats(key);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertDecode stores one finished decode and its per-key crossing stats.
func (s *Store) InsertDecode(ctx context.Context, rec model.DecodeRecord, keys []model.KeyStat) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	fallback := 0
	if rec.Fallback {
		fallback = 1
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO decodes (at_ms, layout, lang, kind, raw_sequence, top_word, candidate_cnt, latency_ms, fallback)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.At,
		rec.Layout,
		rec.Lang,
		int(rec.Kind),
		rec.RawSequence,
		rec.TopWord,
		rec.CandidateCnt,
		rec.LatencyMs,
		fallback,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(keys) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO decode_key_stats (decode_id, key, crossings, discarded, dwell_sum_ms, score_sum)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, ks := range keys {
			n := float64(ks.Crossings)
			if _, err := stmt.ExecContext(ctx, id, ks.Key, ks.Crossings, ks.Discarded, ks.MeanDwell*n, ks.MeanScore*n); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListDecodes returns history rows matching the filter, oldest first.
func (s *Store) ListDecodes(ctx context.Context, f Filter) ([]model.DecodeRecord, error) {
	clauses, args := f.where()
	query := fmt.Sprintf(`SELECT at_ms, layout, lang, kind, raw_sequence, top_word, candidate_cnt, latency_ms, fallback
		FROM decodes
		WHERE %s
		ORDER BY at_ms ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.DecodeRecord
	for rows.Next() {
		var rec model.DecodeRecord
		var kind, fallback int
		if err := rows.Scan(&rec.At, &rec.Layout, &rec.Lang, &kind, &rec.RawSequence, &rec.TopWord, &rec.CandidateCnt, &rec.LatencyMs, &fallback); err != nil {
			return nil, err
		}
		rec.Kind = model.GestureKind(kind)
		rec.Fallback = fallback != 0
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Summarize aggregates decode history matching the filter.
func (s *Store) Summarize(ctx context.Context, f Filter) (Summary, error) {
	clauses, args := f.where()
	query := fmt.Sprintf(`SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(fallback), 0),
			COALESCE(AVG(latency_ms), 0)
		FROM decodes
		WHERE %s`, strings.Join(clauses, " AND "))
	full := []any{int(model.GestureSwipeType), int(model.GestureTap), int(model.GestureCancelled)}
	full = append(full, args...)

	var sum Summary
	row := s.db.QueryRowContext(ctx, query, full...)
	if err := row.Scan(&sum.Total, &sum.SwipeTypes, &sum.Taps, &sum.Cancelled, &sum.Fallbacks, &sum.MeanLatencyMs); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

// WeakKeys aggregates per-key crossing quality over the most recent
// decodes. Keys with the highest discard share come first.
func (s *Store) WeakKeys(ctx context.Context, window int, lang string) ([]model.KeyStat, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_decodes AS (
		SELECT id FROM decodes
		WHERE (? = '' OR lang = ?)
		ORDER BY at_ms DESC
		LIMIT ?
	)
	SELECT ks.key, SUM(ks.crossings), SUM(ks.discarded), SUM(ks.dwell_sum_ms), SUM(ks.score_sum)
	FROM decode_key_stats ks
	JOIN recent_decodes r ON r.id = ks.decode_id
	GROUP BY ks.key
	ORDER BY CAST(SUM(ks.discarded) AS REAL) / MAX(SUM(ks.crossings) + SUM(ks.discarded), 1) DESC, ks.key ASC`

	rows, err := s.db.QueryContext(ctx, query, lang, lang, window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.KeyStat
	for rows.Next() {
		var ks model.KeyStat
		var dwellSum, scoreSum float64
		if err := rows.Scan(&ks.Key, &ks.Crossings, &ks.Discarded, &dwellSum, &scoreSum); err != nil {
			return nil, err
		}
		if ks.Crossings > 0 {
			ks.MeanDwell = dwellSum / float64(ks.Crossings)
			ks.MeanScore = scoreSum / float64(ks.Crossings)
		}
		result = append(result, ks)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (f Filter) where() ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if f.Lang != "" {
		clauses = append(clauses, "lang = ?")
		args = append(args, f.Lang)
	}
	if f.Layout != "" {
		clauses = append(clauses, "layout = ?")
		args = append(args, f.Layout)
	}
	if f.Since != nil {
		clauses = append(clauses, "at_ms >= ?")
		args = append(args, f.Since.UnixMilli())
	}
	return clauses, args
}
