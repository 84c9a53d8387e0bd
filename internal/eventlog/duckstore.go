// Package eventlog stores detection and audit events in a DuckDB file.
// DuckDB keeps month-scale event history queryable without loading it
// into RAM.
package eventlog

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

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/logger"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
)

// Options tunes the DuckDB instance.
type Options struct {
	MemoryLimit string
	Threads     int
	BatchSize   int
}

// DefaultOptions returns options suitable for an embedded console.
func DefaultOptions() Options {
	return Options{
		MemoryLimit: "512MB",
		Threads:     2,
		BatchSize:   512,
	}
}

// DuckStore is an append-oriented event log backed by DuckDB. Writes are
// batched through the native Appender; reads go through filtered,
// paginated queries guarded by a small semaphore.
type DuckStore struct {
	db     *sql.DB
	dbPath string

	mu         sync.Mutex
	batch      []*models.Event
	batchSize  int
	eventCount int64
	nextID     int64
	lastError  error

	// Cache for total counts by filter to avoid repeated COUNT queries
	countCache   map[string]int
	countCacheMu sync.RWMutex

	// Semaphore to limit concurrent queries
	querySem chan struct{}
}

// Open opens (creating if needed) the event log at dbPath.
func Open(dbPath string, opts Options) (*DuckStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir event log dir: %w", err)
	}

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit),
			fmt.Sprintf("PRAGMA threads=%d", opts.Threads),
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
		CREATE TABLE IF NOT EXISTS events (
			id         BIGINT PRIMARY KEY,
			ts         BIGINT NOT NULL,
			level      VARCHAR NOT NULL,
			source     VARCHAR NOT NULL,
			zone_id    VARCHAR,
			label      VARCHAR,
			confidence DOUBLE,
			count      INTEGER,
			message    VARCHAR NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create events table: %w", err)
	}
	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts)"); err != nil {
		logger.Warn("EventLog", "idx_events_ts creation failed: %v", err)
	}

	var count, maxID sql.NullInt64
	if err := db.QueryRow("SELECT COUNT(*), MAX(id) FROM events").Scan(&count, &maxID); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read event count: %w", err)
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultOptions().BatchSize
	}

	logger.Info("EventLog", "opened %s (%d events)", dbPath, count.Int64)
	return &DuckStore{
		db:         db,
		dbPath:     dbPath,
		batch:      make([]*models.Event, 0, batchSize),
		batchSize:  batchSize,
		eventCount: count.Int64,
		nextID:     maxID.Int64 + 1,
		countCache: make(map[string]int),
		querySem:   make(chan struct{}, 3),
	}, nil
}

// Append records an event. Events are batched; call Flush to force them
// to disk.
func (ds *DuckStore) Append(e *models.Event) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	e.ID = ds.nextID
	ds.nextID++
	ds.eventCount++
	ds.batch = append(ds.batch, e)

	if len(ds.batch) >= ds.batchSize {
		if err := ds.flushLocked(); err != nil {
			ds.lastError = err
			logger.Error("EventLog", "flush error: %v", err)
		}
	}
}

// Flush writes any batched events to DuckDB.
func (ds *DuckStore) Flush() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.flushLocked()
}

// LastError returns the last error that occurred during a background flush.
func (ds *DuckStore) LastError() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.lastError
}

// Len returns the total number of events, including unflushed ones.
func (ds *DuckStore) Len() int64 {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.eventCount
}

// flushLocked writes the current batch using the native Appender API.
func (ds *DuckStore) flushLocked() error {
	if len(ds.batch) == 0 {
		return nil
	}

	conn, err := ds.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "events")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		for i, e := range ds.batch {
			err := appender.AppendRow(
				e.ID,
				e.Timestamp.UnixMilli(),
				string(e.Level),
				string(e.Source),
				e.ZoneID,
				e.Label,
				e.Confidence,
				int32(e.Count),
				e.Message,
			)
			if err != nil {
				return fmt.Errorf("failed to append row %d: %w", i, err)
			}
		}

		return appender.Flush()
	})
	if err != nil {
		return fmt.Errorf("appender error: %w", err)
	}

	ds.batch = ds.batch[:0]
	ds.clearCountCache()
	return nil
}

// QueryParams defines filters and sorting for event queries.
type QueryParams struct {
	Level         string
	Source        string
	ZoneID        string
	Search        string
	Since         time.Time
	Until         time.Time
	SortDirection string // "asc" or "desc", default desc (newest first)
}

// Query returns filtered, paginated events plus the total matching count.
func (ds *DuckStore) Query(ctx context.Context, params QueryParams, page, pageSize int) ([]models.Event, int, error) {
	// Unflushed events would be invisible to the query.
	if err := ds.Flush(); err != nil {
		return nil, 0, err
	}

	select {
	case ds.querySem <- struct{}{}:
		defer func() { <-ds.querySem }()
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}

	where, args := buildWhereClause(params)

	cacheKey := fmt.Sprintf("%s|%v", where, args)
	ds.countCacheMu.RLock()
	total, found := ds.countCache[cacheKey]
	ds.countCacheMu.RUnlock()

	if !found {
		countQuery := "SELECT COUNT(*) FROM events"
		if where != "" {
			countQuery += " WHERE " + where
		}
		if err := ds.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count query failed: %w", err)
		}
		ds.countCacheMu.Lock()
		ds.countCache[cacheKey] = total
		ds.countCacheMu.Unlock()
	}

	if total == 0 {
		return []models.Event{}, 0, nil
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	dir := "DESC"
	if params.SortDirection == "asc" {
		dir = "ASC"
	}

	query := "SELECT id, ts, level, source, zone_id, label, confidence, count, message FROM events"
	if where != "" {
		query += " WHERE " + where
	}
	query += fmt.Sprintf(" ORDER BY ts %s, id %s LIMIT %d OFFSET %d", dir, dir, pageSize, offset)

	rows, err := ds.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	events := make([]models.Event, 0, pageSize)
	for rows.Next() {
		var (
			e       models.Event
			tsMs    int64
			level   string
			source  string
			zoneID  sql.NullString
			label   sql.NullString
			conf    sql.NullFloat64
			count   sql.NullInt32
			message string
		)
		if err := rows.Scan(&e.ID, &tsMs, &level, &source, &zoneID, &label, &conf, &count, &message); err != nil {
			return nil, 0, err
		}
		e.Timestamp = time.UnixMilli(tsMs).UTC()
		e.Level = models.EventLevel(level)
		e.Source = models.EventSource(source)
		e.ZoneID = zoneID.String
		e.Label = label.String
		e.Confidence = conf.Float64
		e.Count = int(count.Int32)
		e.Message = message
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func buildWhereClause(params QueryParams) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if params.Level != "" {
		clauses = append(clauses, "level = ?")
		args = append(args, params.Level)
	}
	if params.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, params.Source)
	}
	if params.ZoneID != "" {
		clauses = append(clauses, "zone_id = ?")
		args = append(args, params.ZoneID)
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		clauses = append(clauses, "(message ILIKE ? OR label ILIKE ?)")
		args = append(args, pattern, pattern)
	}
	if !params.Since.IsZero() {
		clauses = append(clauses, "ts >= ?")
		args = append(args, params.Since.UnixMilli())
	}
	if !params.Until.IsZero() {
		clauses = append(clauses, "ts <= ?")
		args = append(args, params.Until.UnixMilli())
	}

	if len(clauses) == 0 {
		return "", nil
	}
	where := clauses[0]
	for i := 1; i < len(clauses); i++ {
		where += " AND " + clauses[i]
	}
	return where, args
}

// Summary is a per-level / per-source breakdown of the stored events.
type Summary struct {
	Total       int64            `json:"total"`
	ByLevel     map[string]int64 `json:"byLevel"`
	BySource    map[string]int64 `json:"bySource"`
	LastEventAt time.Time        `json:"lastEventAt,omitempty"`
}

// Summarize counts events by level and source across the whole log.
func (ds *DuckStore) Summarize(ctx context.Context) (Summary, error) {
	summary := Summary{
		ByLevel:  make(map[string]int64),
		BySource: make(map[string]int64),
	}
	if err := ds.Flush(); err != nil {
		return summary, err
	}

	select {
	case ds.querySem <- struct{}{}:
		defer func() { <-ds.querySem }()
	case <-ctx.Done():
		return summary, ctx.Err()
	}

	rows, err := ds.db.QueryContext(ctx, "SELECT level, source, COUNT(*), MAX(ts) FROM events GROUP BY level, source")
	if err != nil {
		return summary, fmt.Errorf("summary query failed: %w", err)
	}
	defer rows.Close()

	var lastMs int64
	for rows.Next() {
		var (
			level, source string
			count, maxTs  int64
		)
		if err := rows.Scan(&level, &source, &count, &maxTs); err != nil {
			return summary, fmt.Errorf("summary scan failed: %w", err)
		}
		summary.Total += count
		summary.ByLevel[level] += count
		summary.BySource[source] += count
		if maxTs > lastMs {
			lastMs = maxTs
		}
	}
	if lastMs > 0 {
		summary.LastEventAt = time.UnixMilli(lastMs).UTC()
	}
	return summary, rows.Err()
}

// Prune deletes events older than the retention window and returns the
// number removed.
func (ds *DuckStore) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if err := ds.Flush(); err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-retention).UnixMilli()
	res, err := ds.db.ExecContext(ctx, "DELETE FROM events WHERE ts < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune failed: %w", err)
	}
	removed, _ := res.RowsAffected()
	if removed > 0 {
		ds.mu.Lock()
		ds.eventCount -= removed
		ds.mu.Unlock()
		ds.clearCountCache()
		logger.Info("EventLog", "pruned %d events older than %s", removed, retention)
	}
	return removed, nil
}

func (ds *DuckStore) clearCountCache() {
	ds.countCacheMu.Lock()
	ds.countCache = make(map[string]int)
	ds.countCacheMu.Unlock()
}

// Close flushes outstanding events and closes the database.
func (ds *DuckStore) Close() error {
	if err := ds.Flush(); err != nil {
		logger.Error("EventLog", "final flush failed: %v", err)
	}
	return ds.db.Close()
}
