package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/signalsfoundry/orbit-risk/model"
)

// Store persists whole fetch generations of the TLE catalog in sqlite so
// the service can restart, and ride out upstream outages, without
// refetching. Records are only ever served from a single generation.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if necessary) the catalog cache at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog cache: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS generations (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			fetched_at BIGINT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS records (
			generation BIGINT NOT NULL,
			number     BIGINT,
			name       TEXT,
			line1      TEXT,
			line2      TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_records_generation ON records(generation);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create catalog schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes one fetch generation and prunes all older ones in the same
// transaction, so a reader never sees records from two fetches mixed.
func (s *Store) Save(ctx context.Context, fetchedAt time.Time, records []model.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog save: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO generations (fetched_at) VALUES (?)`, fetchedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	generation, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("generation id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (generation, number, name, line1, line2) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare record insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, generation, rec.Number, rec.Name, rec.Line1, rec.Line2); err != nil {
			return fmt.Errorf("insert record %d: %w", rec.Number, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE generation != ?`, generation); err != nil {
		return fmt.Errorf("prune old records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM generations WHERE id != ?`, generation); err != nil {
		return fmt.Errorf("prune old generations: %w", err)
	}

	return tx.Commit()
}

// Latest returns the most recent cached generation and its fetch time. No
// cached generation at all returns an empty batch and a zero time, not an
// error.
func (s *Store) Latest(ctx context.Context) ([]model.Record, time.Time, error) {
	var (
		generation int64
		fetchedAt  int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, fetched_at FROM generations ORDER BY id DESC LIMIT 1`).
		Scan(&generation, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read latest generation: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT number, name, line1, line2 FROM records WHERE generation = ?`, generation)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read cached records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var rec model.Record
		if err := rows.Scan(&rec.Number, &rec.Name, &rec.Line1, &rec.Line2); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan cached record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("iterate cached records: %w", err)
	}

	return records, time.Unix(fetchedAt, 0).UTC(), nil
}
