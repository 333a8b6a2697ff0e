/*
store.go - Persistence contract for officers and leave records

PURPOSE:
  Defines the interface between the ledger engine and the database.
  Persisted state is two independently addressable collections, Officers
  and LeaveRecords, each keyed by id. No foreign-key enforcement is
  assumed at the storage layer.

KEY INTERFACES:
  Store:   typed CRUD over both collections
  TxStore: Store plus all-or-nothing multi-write support

ATOMIC OPERATIONS:
  A partial redemption writes two records (the reduced original and the
  new USED portion); deleting an officer removes the officer and every
  record that references it. Both must be applied as a single unit from
  the perspective of any concurrent reader. TxStore.WithTx provides that:
  either every write inside fn is observed, or none is.

CONSISTENCY:
  Implementations must provide at least read-your-writes within one
  logical session, and must return copies (or otherwise caller-safe
  values) from every read.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: production SQLite store
  - ledger/store/memory.go: in-memory store for tests and dev

SEE ALSO:
  - engine.go: the only consumer of this contract
*/
package ledger

import "context"

// =============================================================================
// STORE - Typed CRUD over the two persisted collections
// =============================================================================

type Store interface {
	// Officers
	ListOfficers(ctx context.Context) ([]Officer, error)
	GetOfficer(ctx context.Context, id OfficerID) (*Officer, error) // nil, nil when absent
	PutOfficer(ctx context.Context, o Officer) error                // full-record replace
	DeleteOfficer(ctx context.Context, id OfficerID) error

	// Leave records
	ListRecords(ctx context.Context) ([]LeaveRecord, error)
	ListRecordsByOfficer(ctx context.Context, officerID OfficerID) ([]LeaveRecord, error)
	GetRecord(ctx context.Context, id RecordID) (*LeaveRecord, error) // nil, nil when absent
	PutRecord(ctx context.Context, r LeaveRecord) error               // full-record replace
	DeleteRecord(ctx context.Context, id RecordID) error
}

// =============================================================================
// TRANSACTIONAL STORE - For atomic multi-write operations
// =============================================================================

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn against a transactional view of the store.
	// If fn returns an error, every write inside it is rolled back.
	// If fn returns nil, the writes are committed together.
	WithTx(ctx context.Context, fn func(Store) error) error
}
