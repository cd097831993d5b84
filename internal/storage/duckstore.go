package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/geotrack/geotrack/internal/models"
	"github.com/google/uuid"
	"github.com/marcboeker/go-duckdb"
)

// DuckStore archives merged tracks in a DuckDB file. Every run is appended
// under its own run_id so one database can collect many merges.
type DuckStore struct {
	db     *sql.DB
	dbPath string
}

// OpenDuckStore opens (or creates) the database at dbPath.
func OpenDuckStore(dbPath string) (*DuckStore, error) {
	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		_, err := execer.ExecContext(context.Background(), "PRAGMA enable_progress_bar=false", nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS positions (
			run_id  VARCHAR NOT NULL,
			seq     INTEGER NOT NULL,
			ts      TIMESTAMP NOT NULL,
			lat     DOUBLE NOT NULL,
			lon     DOUBLE NOT NULL,
			alt     DOUBLE,
			source  VARCHAR
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &DuckStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (ds *DuckStore) Path() string {
	return ds.dbPath
}

// AppendRun writes positions in order under a fresh run ID and returns it.
func (ds *DuckStore) AppendRun(ctx context.Context, positions []models.Position) (string, error) {
	runID := uuid.New().String()

	conn, err := ds.db.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	// The Appender needs the raw driver connection.
	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "positions")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		for i, p := range positions {
			var alt interface{}
			if p.Altitude != nil {
				alt = *p.Altitude
			}
			err := appender.AppendRow(
				runID,
				int32(i),
				p.Timestamp.UTC(),
				p.Latitude,
				p.Longitude,
				alt,
				p.Source,
			)
			if err != nil {
				return fmt.Errorf("failed to append row %d: %w", i, err)
			}
		}

		return appender.Flush()
	})
	if err != nil {
		return "", fmt.Errorf("appender error: %w", err)
	}

	return runID, nil
}

// CountRun returns how many positions were stored for runID.
func (ds *DuckStore) CountRun(ctx context.Context, runID string) (int, error) {
	var n int
	err := ds.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM positions WHERE run_id = ?", runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting run %s: %w", runID, err)
	}
	return n, nil
}

// RunTimestamps returns the stored timestamps of runID in insertion order.
func (ds *DuckStore) RunTimestamps(ctx context.Context, runID string) ([]time.Time, error) {
	rows, err := ds.db.QueryContext(ctx, "SELECT ts FROM positions WHERE run_id = ? ORDER BY seq", runID)
	if err != nil {
		return nil, fmt.Errorf("querying run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		out = append(out, ts.UTC())
	}
	return out, rows.Err()
}

// Close closes the database.
func (ds *DuckStore) Close() error {
	return ds.db.Close()
}
