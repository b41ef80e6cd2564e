// Package runs persists the results of portfolio construction runs.
package runs

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/stratolab/strato-go/internal/modules/arbitrage"
)

// Schema is the run store schema, applied on startup.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	uuid            TEXT PRIMARY KEY,
	status          TEXT NOT NULL,
	objective       REAL NOT NULL,
	capital         REAL NOT NULL,
	num_instruments INTEGER NOT NULL,
	holdings        BLOB NOT NULL,
	created_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Run is one stored portfolio construction result.
type Run struct {
	UUID           string              `json:"uuid"`
	Status         arbitrage.Status    `json:"status"`
	Objective      float64             `json:"objective"`
	Capital        float64             `json:"capital"`
	NumInstruments int                 `json:"num_instruments"`
	Holdings       []arbitrage.Holding `json:"holdings"`
	CreatedAt      time.Time           `json:"created_at"`
}

// Repository handles CRUD operations for construction runs. Holdings are
// stored as a msgpack blob; the queryable columns are kept flat.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a run repository and ensures the schema exists.
func NewRepository(db *sql.DB, log zerolog.Logger) (*Repository, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("failed to apply runs schema: %w", err)
	}
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "runs").Logger(),
	}, nil
}

// Save stores a construction result and returns the generated run UUID.
func (r *Repository) Save(result arbitrage.Result, capital float64) (string, error) {
	blob, err := msgpack.Marshal(result.Portfolio.Holdings)
	if err != nil {
		return "", fmt.Errorf("failed to encode holdings: %w", err)
	}

	id := uuid.New().String()
	_, err = r.db.Exec(`
		INSERT INTO runs (uuid, status, objective, capital, num_instruments, holdings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		string(result.Status),
		result.Objective,
		capital,
		len(result.Portfolio.Holdings),
		blob,
		time.Now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	r.log.Debug().
		Str("uuid", id).
		Str("status", string(result.Status)).
		Float64("objective", result.Objective).
		Msg("run saved")

	return id, nil
}

// GetByID fetches a single run. Returns sql.ErrNoRows when absent.
func (r *Repository) GetByID(id string) (*Run, error) {
	row := r.db.QueryRow(`
		SELECT uuid, status, objective, capital, num_instruments, holdings, created_at
		FROM runs WHERE uuid = ?
	`, id)
	return scanRun(row)
}

// List returns the most recent runs, newest first.
func (r *Repository) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT uuid, status, objective, capital, num_instruments, holdings, created_at
		FROM runs ORDER BY created_at DESC, uuid LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// DeleteOlderThan removes runs created before the cutoff and returns the
// number of rows deleted.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM runs WHERE created_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old runs: %w", err)
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}

// Count returns the number of stored runs.
func (r *Repository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run       Run
		status    string
		blob      []byte
		createdAt int64
	)
	if err := row.Scan(&run.UUID, &status, &run.Objective, &run.Capital, &run.NumInstruments, &blob, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if err := msgpack.Unmarshal(blob, &run.Holdings); err != nil {
		return nil, fmt.Errorf("failed to decode holdings: %w", err)
	}

	run.Status = arbitrage.Status(status)
	run.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &run, nil
}
