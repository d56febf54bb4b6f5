// Package telemetry persists engine events to an embedded DuckDB database
// and answers the dashboard's KPI queries. It is an analytics log, not
// resumable simulation state.
package telemetry

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/marcboeker/go-duckdb"
	"github.com/warehouse-sim/backend/internal/models"
)

// batchSize is how many events accumulate before a flush.
const batchSize = 256

type eventRow struct {
	ts        int64
	kind      string
	orderID   string
	distance  float64
	duration  float64
	aisle     float64
	rack      float64
	itemCount int
}

// Store is the DuckDB-backed event log. Record is safe to call from the
// simulation goroutine while queries run from HTTP handlers.
type Store struct {
	db     *sql.DB
	dbPath string

	mu    sync.Mutex
	batch []eventRow
}

// KPIReport summarizes the simulation run for the dashboard.
type KPIReport struct {
	OrdersCompleted      int     `json:"ordersCompleted"`
	TotalDistance        float64 `json:"totalDistance"`
	AvgOrderDistance     float64 `json:"avgOrderDistance"`
	AvgCompletionSeconds float64 `json:"avgCompletionSeconds"`
	MovementEvents       int     `json:"movementEvents"`
	DirectionChanges     int     `json:"directionChanges"`
}

// NewStore creates the event database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "telemetry.duckdb")
	// Start fresh each run; the log is per-simulation.
	os.Remove(dbPath)

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE events (
			ts         BIGINT NOT NULL,
			kind       VARCHAR NOT NULL,
			order_id   VARCHAR,
			distance   DOUBLE,
			duration   DOUBLE,
			aisle      DOUBLE,
			rack       DOUBLE,
			item_count INTEGER
		)
	`)
	if err != nil {
		db.Close()
		os.Remove(dbPath)
		return nil, fmt.Errorf("failed to create events table: %w", err)
	}

	fmt.Printf("[Telemetry] Event store ready at %s\n", dbPath)
	return &Store{
		db:     db,
		dbPath: dbPath,
		batch:  make([]eventRow, 0, batchSize),
	}, nil
}

// Record buffers one engine event. Flushes happen on batch overflow or an
// explicit Flush.
func (s *Store) Record(ev models.Event) {
	row := eventRow{ts: time.Now().UnixMilli(), kind: ev.Kind()}

	switch e := ev.(type) {
	case models.OrderCompleted:
		row.orderID = e.OrderID
		row.distance = e.TotalDistance
		row.itemCount = e.ItemCount
		if e.ElapsedTime != "" {
			if d, err := time.ParseDuration(e.ElapsedTime); err == nil {
				row.duration = d.Seconds()
			}
		}
	case models.RobotMoved:
		row.distance = e.Distance
		row.duration = e.MovementTime
		row.aisle = e.NewPosition.Aisle
		row.rack = e.NewPosition.Rack
	case models.DirectionChanged:
		// Kind alone carries the signal.
	}

	s.mu.Lock()
	s.batch = append(s.batch, row)
	full := len(s.batch) >= batchSize
	s.mu.Unlock()

	if full {
		if err := s.Flush(); err != nil {
			fmt.Printf("[Telemetry] Flush failed: %v\n", err)
		}
	}
}

// Flush writes the buffered events to the database.
func (s *Store) Flush() error {
	s.mu.Lock()
	if len(s.batch) == 0 {
		s.mu.Unlock()
		return nil
	}
	pending := make([]eventRow, len(s.batch))
	copy(pending, s.batch)
	s.batch = s.batch[:0]
	s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin telemetry batch: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO events (ts, kind, order_id, distance, duration, aisle, rack, item_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare telemetry insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range pending {
		if _, err := stmt.Exec(row.ts, row.kind, row.orderID, row.distance, row.duration, row.aisle, row.rack, row.itemCount); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert telemetry row: %w", err)
		}
	}
	return tx.Commit()
}

// KPIs aggregates the run so far.
func (s *Store) KPIs(ctx context.Context) (*KPIReport, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}

	report := &KPIReport{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(distance), 0),
		       COALESCE(AVG(distance), 0),
		       COALESCE(AVG(duration), 0)
		FROM events WHERE kind = ?`, models.EventOrderCompleted).
		Scan(&report.OrdersCompleted, &report.TotalDistance, &report.AvgOrderDistance, &report.AvgCompletionSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to query order KPIs: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE kind = ?`, models.EventRobotMoved).
		Scan(&report.MovementEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to query movement count: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE kind = ?`, models.EventDirectionChanged).
		Scan(&report.DirectionChanges)
	if err != nil {
		return nil, fmt.Errorf("failed to query direction changes: %w", err)
	}

	return report, nil
}

// RecentOrders returns the most recent order completions, newest first.
func (s *Store) RecentOrders(ctx context.Context, limit int) ([]map[string]any, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, order_id, distance, duration, item_count
		FROM events WHERE kind = ?
		ORDER BY ts DESC LIMIT ?`, models.EventOrderCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent orders: %w", err)
	}
	defer rows.Close()

	out := make([]map[string]any, 0, limit)
	for rows.Next() {
		var ts int64
		var orderID string
		var distance, duration float64
		var itemCount int
		if err := rows.Scan(&ts, &orderID, &distance, &duration, &itemCount); err != nil {
			return nil, err
		}
		out = append(out, map[string]any{
			"timestamp":         ts,
			"orderId":           orderID,
			"distance":          distance,
			"completionSeconds": duration,
			"itemCount":         itemCount,
		})
	}
	return out, rows.Err()
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	if err := s.Flush(); err != nil {
		fmt.Printf("[Telemetry] Final flush failed: %v\n", err)
	}
	return s.db.Close()
}
