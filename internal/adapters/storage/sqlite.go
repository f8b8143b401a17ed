package storage

// sqlite.go: journal de la sesión.
//
//   - `scans`: una fila por scan (outcome, pares, encontradas, mejor profit).
//   - `decisions`: una fila por veredicto sobre una carta (skip, accept,
//     ejecución ok o fallida) con las firmas que llegaron a la red.
//   - Prune al arrancar: nada con más de 30 días.

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS scans (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    scanned_at  DATETIME NOT NULL,
    outcome     TEXT     NOT NULL,
    tokens      INTEGER  NOT NULL DEFAULT 0,
    pairs       INTEGER  NOT NULL DEFAULT 0,
    found       INTEGER  NOT NULL DEFAULT 0,
    best_profit REAL     NOT NULL DEFAULT 0,
    duration_ms INTEGER  NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS decisions (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    opportunity_id TEXT     NOT NULL,
    cycle          TEXT     NOT NULL,
    kind           TEXT     NOT NULL,
    profit_usd     REAL     NOT NULL DEFAULT 0,
    signatures     TEXT     NOT NULL DEFAULT '',
    error          TEXT     NOT NULL DEFAULT '',
    decided_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scans_at     ON scans(scanned_at DESC);
CREATE INDEX IF NOT EXISTS idx_decisions_at ON decisions(decided_at DESC);
`

const retention = 30 * 24 * time.Hour

// SQLiteJournal implementa ports.Journal usando SQLite (pure Go, sin CGo).
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal abre (o crea) la base de datos en la ruta dada.
// ":memory:" da un journal que vive lo que dura el proceso.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteJournal: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer; además :memory: es por conexión
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteJournal: apply schema: %w", err)
	}

	j := &SQLiteJournal{db: db}
	j.pruneOld(context.Background())
	return j, nil
}

// Record inserta una decisión y devuelve su id.
func (j *SQLiteJournal) Record(ctx context.Context, d domain.Decision) (int64, error) {
	at := d.At
	if at.IsZero() {
		at = time.Now()
	}
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO decisions
			(opportunity_id, cycle, kind, profit_usd, signatures, error, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.OpportunityID, d.Cycle, string(d.Kind), d.ProfitUSD,
		strings.Join(d.Signatures, ","), d.Error, at.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage.Record: insert %s: %w", d.OpportunityID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage.Record: last id: %w", err)
	}
	return id, nil
}

// Decisions devuelve las últimas decisiones, la más reciente primero.
func (j *SQLiteJournal) Decisions(ctx context.Context, limit int) ([]domain.Decision, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, opportunity_id, cycle, kind, profit_usd, signatures, error, decided_at
		FROM decisions
		ORDER BY decided_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.Decisions: query: %w", err)
	}
	defer rows.Close()

	var out []domain.Decision
	for rows.Next() {
		var d domain.Decision
		var kind, sigs string
		if err := rows.Scan(&d.ID, &d.OpportunityID, &d.Cycle, &kind, &d.ProfitUSD, &sigs, &d.Error, &d.At); err != nil {
			return nil, fmt.Errorf("storage.Decisions: scan row: %w", err)
		}
		d.Kind = domain.DecisionKind(kind)
		if sigs != "" {
			d.Signatures = strings.Split(sigs, ",")
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// RecordScan persiste el resumen de un scan.
func (j *SQLiteJournal) RecordScan(ctx context.Context, s domain.ScanSummary) error {
	at := s.At
	if at.IsZero() {
		at = time.Now()
	}
	if _, err := j.db.ExecContext(ctx, `
		INSERT INTO scans (scanned_at, outcome, tokens, pairs, found, best_profit, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		at.UTC(), s.Outcome, s.Tokens, s.Pairs, s.Found, s.BestProfitUSD, s.Duration.Milliseconds(),
	); err != nil {
		return fmt.Errorf("storage.RecordScan: insert: %w", err)
	}
	return nil
}

// Scans devuelve los últimos resúmenes, el más reciente primero.
func (j *SQLiteJournal) Scans(ctx context.Context, limit int) ([]domain.ScanSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT scanned_at, outcome, tokens, pairs, found, best_profit, duration_ms
		FROM scans
		ORDER BY scanned_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.Scans: query: %w", err)
	}
	defer rows.Close()

	var out []domain.ScanSummary
	for rows.Next() {
		var s domain.ScanSummary
		var ms int64
		if err := rows.Scan(&s.At, &s.Outcome, &s.Tokens, &s.Pairs, &s.Found, &s.BestProfitUSD, &ms); err != nil {
			return nil, fmt.Errorf("storage.Scans: scan row: %w", err)
		}
		s.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// pruneOld elimina filas fuera de la ventana de retención.
func (j *SQLiteJournal) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retention)
	j.db.ExecContext(ctx, `DELETE FROM scans WHERE scanned_at < ?`, cutoff)
	j.db.ExecContext(ctx, `DELETE FROM decisions WHERE decided_at < ?`, cutoff)
}
