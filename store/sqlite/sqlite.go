/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements ledger.TxStore using SQLite. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  officers:      tracked personnel, keyed by id
  leave_records: entitlement records, keyed by id

  The two collections are independently addressable; no foreign key is
  declared between them. Referential integrity is owned by the caller
  that also owns officer lifecycle.

ATOMICITY:
  WithTx wraps multi-write operations (partial-redeem splits, cascade
  deletes) in a database transaction, so readers observe either all of
  the writes or none of them.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite. The database is
  opened in WAL (Write-Ahead Logging) mode: readers don't block, one
  writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/folgas.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := ledger.NewEngine(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go: interface definitions
  - ledger/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/vigia/folga-engine/ledger"
)

// Store implements ledger.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite allows a single writer, and :memory:
	// databases are per-connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS officers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		rank TEXT NOT NULL,
		matricula TEXT,
		unit TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leave_records (
		id TEXT PRIMARY KEY,
		officer_id TEXT NOT NULL,
		service_type TEXT NOT NULL,
		service_description TEXT,
		service_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL,
		date_used TEXT,
		notes TEXT
	);

	-- Per-officer record sets are the hot path (details view, cascade).
	CREATE INDEX IF NOT EXISTS idx_leave_records_officer
		ON leave_records(officer_id);

	-- For status aggregation across the whole store.
	CREATE INDEX IF NOT EXISTS idx_leave_records_status
		ON leave_records(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// OFFICERS (ledger.Store interface)
// =============================================================================

func (s *Store) ListOfficers(ctx context.Context) ([]ledger.Officer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listOfficers(ctx, s.db)
}

func (s *Store) GetOfficer(ctx context.Context, id ledger.OfficerID) (*ledger.Officer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getOfficer(ctx, s.db, id)
}

func (s *Store) PutOfficer(ctx context.Context, o ledger.Officer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putOfficer(ctx, s.db, o)
}

func (s *Store) DeleteOfficer(ctx context.Context, id ledger.OfficerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteOfficer(ctx, s.db, id)
}

func listOfficers(ctx context.Context, q querier) ([]ledger.Officer, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, name, rank, matricula, unit, created_at FROM officers ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query officers: %w", err)
	}
	defer rows.Close()

	var officers []ledger.Officer
	for rows.Next() {
		o, err := scanOfficer(rows)
		if err != nil {
			return nil, err
		}
		officers = append(officers, o)
	}
	return officers, rows.Err()
}

func getOfficer(ctx context.Context, q querier, id ledger.OfficerID) (*ledger.Officer, error) {
	var (
		o         ledger.Officer
		matricula sql.NullString
		unit      sql.NullString
		createdAt string
	)
	err := q.QueryRowContext(ctx,
		"SELECT id, name, rank, matricula, unit, created_at FROM officers WHERE id = ?",
		string(id),
	).Scan(&o.ID, &o.Name, &o.Rank, &matricula, &unit, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	o.Matricula = matricula.String
	o.Unit = unit.String
	o.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &o, nil
}

func putOfficer(ctx context.Context, q querier, o ledger.Officer) error {
	query := `
		INSERT INTO officers (id, name, rank, matricula, unit, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			rank = excluded.rank,
			matricula = excluded.matricula,
			unit = excluded.unit
	`
	_, err := q.ExecContext(ctx, query,
		string(o.ID), o.Name, string(o.Rank),
		nullString(o.Matricula), nullString(o.Unit),
		o.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save officer: %w", err)
	}
	return nil
}

func deleteOfficer(ctx context.Context, q querier, id ledger.OfficerID) error {
	_, err := q.ExecContext(ctx, "DELETE FROM officers WHERE id = ?", string(id))
	return err
}

func scanOfficer(rows *sql.Rows) (ledger.Officer, error) {
	var (
		o         ledger.Officer
		matricula sql.NullString
		unit      sql.NullString
		createdAt string
	)
	if err := rows.Scan(&o.ID, &o.Name, &o.Rank, &matricula, &unit, &createdAt); err != nil {
		return o, fmt.Errorf("failed to scan officer: %w", err)
	}
	o.Matricula = matricula.String
	o.Unit = unit.String
	o.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return o, nil
}

// =============================================================================
// LEAVE RECORDS (ledger.Store interface)
// =============================================================================

const recordColumns = "id, officer_id, service_type, service_description, service_date, amount, status, date_used, notes"

func (s *Store) ListRecords(ctx context.Context) ([]ledger.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryRecords(ctx, s.db,
		"SELECT "+recordColumns+" FROM leave_records ORDER BY service_date DESC")
}

func (s *Store) ListRecordsByOfficer(ctx context.Context, officerID ledger.OfficerID) ([]ledger.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRecordsByOfficer(ctx, s.db, officerID)
}

func (s *Store) GetRecord(ctx context.Context, id ledger.RecordID) (*ledger.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getRecord(ctx, s.db, id)
}

func (s *Store) PutRecord(ctx context.Context, r ledger.LeaveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putRecord(ctx, s.db, r)
}

func (s *Store) DeleteRecord(ctx context.Context, id ledger.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteRecord(ctx, s.db, id)
}

func listRecordsByOfficer(ctx context.Context, q querier, officerID ledger.OfficerID) ([]ledger.LeaveRecord, error) {
	return queryRecords(ctx, q,
		"SELECT "+recordColumns+" FROM leave_records WHERE officer_id = ? ORDER BY service_date DESC",
		string(officerID))
}

func getRecord(ctx context.Context, q querier, id ledger.RecordID) (*ledger.LeaveRecord, error) {
	records, err := queryRecords(ctx, q,
		"SELECT "+recordColumns+" FROM leave_records WHERE id = ?", string(id))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func putRecord(ctx context.Context, q querier, r ledger.LeaveRecord) error {
	query := `
		INSERT INTO leave_records
		(id, officer_id, service_type, service_description, service_date, amount, status, date_used, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount = excluded.amount,
			status = excluded.status,
			date_used = excluded.date_used,
			notes = excluded.notes
	`
	var dateUsed sql.NullString
	if !r.DateUsed.IsZero() {
		dateUsed = sql.NullString{String: r.DateUsed.String(), Valid: true}
	}

	_, err := q.ExecContext(ctx, query,
		string(r.ID), string(r.OfficerID), string(r.ServiceType),
		nullString(r.ServiceDescription),
		r.ServiceDate.String(),
		r.Amount.String(),
		string(r.Status),
		dateUsed,
		nullString(r.Notes),
	)
	if err != nil {
		return fmt.Errorf("failed to save leave record: %w", err)
	}
	return nil
}

func deleteRecord(ctx context.Context, q querier, id ledger.RecordID) error {
	_, err := q.ExecContext(ctx, "DELETE FROM leave_records WHERE id = ?", string(id))
	return err
}

func queryRecords(ctx context.Context, q querier, query string, args ...any) ([]ledger.LeaveRecord, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave records: %w", err)
	}
	defer rows.Close()

	var records []ledger.LeaveRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (ledger.LeaveRecord, error) {
	var (
		r           ledger.LeaveRecord
		description sql.NullString
		serviceDate string
		amount      string
		dateUsed    sql.NullString
		notes       sql.NullString
	)
	err := rows.Scan(
		&r.ID, &r.OfficerID, &r.ServiceType, &description,
		&serviceDate, &amount, &r.Status, &dateUsed, &notes,
	)
	if err != nil {
		return r, fmt.Errorf("failed to scan leave record: %w", err)
	}

	r.ServiceDescription = description.String
	r.Notes = notes.String
	r.ServiceDate, _ = ledger.ParseDate(serviceDate)
	if dateUsed.Valid && dateUsed.String != "" {
		r.DateUsed, _ = ledger.ParseDate(dateUsed.String)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return r, fmt.Errorf("failed to parse amount %q: %w", amount, err)
	}
	r.Amount = d
	return r, nil
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore routes every call through the open transaction. The parent's
// lock is already held by WithTx.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) ListOfficers(ctx context.Context) ([]ledger.Officer, error) {
	return listOfficers(ctx, ts.tx)
}

func (ts *txStore) GetOfficer(ctx context.Context, id ledger.OfficerID) (*ledger.Officer, error) {
	return getOfficer(ctx, ts.tx, id)
}

func (ts *txStore) PutOfficer(ctx context.Context, o ledger.Officer) error {
	return putOfficer(ctx, ts.tx, o)
}

func (ts *txStore) DeleteOfficer(ctx context.Context, id ledger.OfficerID) error {
	return deleteOfficer(ctx, ts.tx, id)
}

func (ts *txStore) ListRecords(ctx context.Context) ([]ledger.LeaveRecord, error) {
	return queryRecords(ctx, ts.tx,
		"SELECT "+recordColumns+" FROM leave_records ORDER BY service_date DESC")
}

func (ts *txStore) ListRecordsByOfficer(ctx context.Context, officerID ledger.OfficerID) ([]ledger.LeaveRecord, error) {
	return listRecordsByOfficer(ctx, ts.tx, officerID)
}

func (ts *txStore) GetRecord(ctx context.Context, id ledger.RecordID) (*ledger.LeaveRecord, error) {
	return getRecord(ctx, ts.tx, id)
}

func (ts *txStore) PutRecord(ctx context.Context, r ledger.LeaveRecord) error {
	return putRecord(ctx, ts.tx, r)
}

func (ts *txStore) DeleteRecord(ctx context.Context, id ledger.RecordID) error {
	return deleteRecord(ctx, ts.tx, id)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"leave_records", "officers"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
