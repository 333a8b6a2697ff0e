/*
engine.go - The leave balance engine

PURPOSE:
  Implements entitlement grants, the redeem/split algorithm, cascade
  deletion and balance aggregation over an injected Store. This is the
  single writer for an officer's record set; every mutating operation is
  a blocking, synchronous call that is atomic at operation granularity.

THE CONSERVATION LAW:
  For any successful redeem on an officer, the AVAILABLE total decreases
  by exactly the redeemed quantity and the USED total increases by the
  same quantity; the officer's grand total never changes. Partial
  redemptions therefore write both halves of the split inside one store
  transaction - either both are observed or neither is.

STALE REFERENCES:
  Redeem is addressed by record id, never by a caller-held copy. The
  current record is reloaded inside the transaction and preconditions
  are checked against that state, so a second redeem with a stale view
  of the amount is rejected rather than double-spent.

SEE ALSO:
  - store.go: the persistence contract this engine is written against
  - projection.go: the pure filter/sort read views
*/
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Engine is the leave balance ledger. All access to persisted state goes
// through the injected store; the engine itself holds no mutable state.
type Engine struct {
	store  TxStore
	nowFn  func() time.Time
	newID  func() string
	report ReportGenerator // optional, may be nil
}

// Option configures an Engine.
type Option func(*Engine)

// WithReportGenerator wires the optional narrative-report collaborator.
func WithReportGenerator(gen ReportGenerator) Option {
	return func(e *Engine) { e.report = gen }
}

// NewEngine creates an engine over the given store.
func NewEngine(store TxStore, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		nowFn: time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// =============================================================================
// OFFICERS
// =============================================================================

// RegisterOfficer creates a new officer with a fresh id.
func (e *Engine) RegisterOfficer(ctx context.Context, name string, rank Rank, matricula, unit string) (Officer, error) {
	if strings.TrimSpace(name) == "" || !rank.Valid() {
		return Officer{}, ErrInvalidOfficer
	}
	o := Officer{
		ID:        OfficerID(e.newID()),
		Name:      strings.TrimSpace(name),
		Rank:      rank,
		Matricula: matricula,
		Unit:      unit,
		CreatedAt: e.nowFn().UTC(),
	}
	if err := e.store.PutOfficer(ctx, o); err != nil {
		return Officer{}, storeErr("register officer", err)
	}
	return o, nil
}

// ReplaceOfficer overwrites an existing officer record in full. There are
// no partial patch semantics; callers send the whole record back.
func (e *Engine) ReplaceOfficer(ctx context.Context, o Officer) error {
	if strings.TrimSpace(o.Name) == "" || !o.Rank.Valid() {
		return ErrInvalidOfficer
	}
	existing, err := e.store.GetOfficer(ctx, o.ID)
	if err != nil {
		return storeErr("replace officer", err)
	}
	if existing == nil {
		return ErrOfficerNotFound
	}
	o.CreatedAt = existing.CreatedAt // creation time is immutable
	if err := e.store.PutOfficer(ctx, o); err != nil {
		return storeErr("replace officer", err)
	}
	return nil
}

// Officers lists every tracked officer.
func (e *Engine) Officers(ctx context.Context) ([]Officer, error) {
	officers, err := e.store.ListOfficers(ctx)
	if err != nil {
		return nil, storeErr("list officers", err)
	}
	return officers, nil
}

// Officer returns one officer by id.
func (e *Engine) Officer(ctx context.Context, id OfficerID) (Officer, error) {
	o, err := e.store.GetOfficer(ctx, id)
	if err != nil {
		return Officer{}, storeErr("get officer", err)
	}
	if o == nil {
		return Officer{}, ErrOfficerNotFound
	}
	return *o, nil
}

// RemoveOfficer deletes an officer and every leave record that references
// it. Both steps commit together: no reader ever sees the officer gone
// while orphaned records remain, or the reverse.
func (e *Engine) RemoveOfficer(ctx context.Context, id OfficerID) error {
	existing, err := e.store.GetOfficer(ctx, id)
	if err != nil {
		return storeErr("remove officer", err)
	}
	if existing == nil {
		return ErrOfficerNotFound
	}

	err = e.store.WithTx(ctx, func(s Store) error {
		if err := s.DeleteOfficer(ctx, id); err != nil {
			return err
		}
		records, err := s.ListRecordsByOfficer(ctx, id)
		if err != nil {
			return err
		}
		for _, r := range records {
			if err := s.DeleteRecord(ctx, r.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storeErr("remove officer", err)
	}
	return nil
}

// =============================================================================
// GRANTS
// =============================================================================

// GrantInput describes a new entitlement.
type GrantInput struct {
	OfficerID          OfficerID
	ServiceType        ServiceType
	ServiceDescription string
	ServiceDate        Date
	Amount             decimal.Decimal
	Notes              string

	// DateUsed, when set, records the grant directly as USED on that date
	// (a grant-and-redeem shortcut for leave already taken).
	DateUsed Date
}

// Grant creates a new leave record with a fresh id. Referential integrity
// against the officer collection is the caller's concern; the engine
// accepts any officer id here.
func (e *Engine) Grant(ctx context.Context, in GrantInput) (LeaveRecord, error) {
	if !ValidAmount(in.Amount) || !in.ServiceType.Valid() || in.ServiceDate.IsZero() || in.OfficerID == "" {
		return LeaveRecord{}, ErrInvalidGrant
	}

	rec := LeaveRecord{
		ID:                 RecordID(e.newID()),
		OfficerID:          in.OfficerID,
		ServiceType:        in.ServiceType,
		ServiceDescription: in.ServiceDescription,
		ServiceDate:        in.ServiceDate,
		Amount:             in.Amount,
		Status:             StatusAvailable,
		Notes:              in.Notes,
	}
	if !in.DateUsed.IsZero() {
		rec.Status = StatusUsed
		rec.DateUsed = in.DateUsed
	}

	if err := e.store.PutRecord(ctx, rec); err != nil {
		return LeaveRecord{}, storeErr("grant", err)
	}
	return rec, nil
}

// =============================================================================
// REDEEM / SPLIT
// =============================================================================

// RedeemResult reports what a redemption did.
type RedeemResult struct {
	// Redeemed is the record holding the consumed quantity: the original
	// on a full redemption, the newly created USED portion on a split.
	Redeemed LeaveRecord

	// Remainder is the reduced AVAILABLE original after a split, nil on a
	// full redemption.
	Remainder *LeaveRecord
}

// Redeem consumes qty from the record's available balance on the given
// date.
//
// Full redemption (qty == amount) updates the record in place to USED.
// Partial redemption (qty < amount) reduces the original and creates a
// new USED record carrying the consumed quantity, with the split marker
// appended to its notes. Both writes commit atomically.
//
// Preconditions are checked against the record as currently persisted,
// not against any caller-held copy. On failure nothing is written.
func (e *Engine) Redeem(ctx context.Context, id RecordID, qty decimal.Decimal, date Date) (RedeemResult, error) {
	var result RedeemResult

	err := e.store.WithTx(ctx, func(s Store) error {
		rec, err := s.GetRecord(ctx, id)
		if err != nil {
			return storeErr("redeem", err)
		}
		if rec == nil {
			return ErrRecordNotFound
		}

		if rec.Status != StatusAvailable {
			return &InvalidRedemptionError{
				RecordID: id, Status: rec.Status,
				Available: rec.Amount, Requested: qty,
				Reason: "not_available",
			}
		}
		if !ValidAmount(qty) {
			return &InvalidRedemptionError{
				RecordID: id, Status: rec.Status,
				Available: rec.Amount, Requested: qty,
				Reason: "bad_quantization",
			}
		}
		if qty.GreaterThan(rec.Amount) {
			return &InvalidRedemptionError{
				RecordID: id, Status: rec.Status,
				Available: rec.Amount, Requested: qty,
				Reason: "quantity_out_of_range",
			}
		}
		if date.IsZero() {
			return &InvalidRedemptionError{
				RecordID: id, Status: rec.Status,
				Available: rec.Amount, Requested: qty,
				Reason: "invalid_date",
			}
		}

		if qty.Equal(rec.Amount) {
			// Full redemption: one write, record identity preserved.
			updated := *rec
			updated.Status = StatusUsed
			updated.DateUsed = date
			if err := s.PutRecord(ctx, updated); err != nil {
				return storeErr("redeem", err)
			}
			result = RedeemResult{Redeemed: updated}
			return nil
		}

		// Partial redemption: reduce the original, mint the USED portion.
		remainder := *rec
		remainder.Amount = rec.Amount.Sub(qty)
		if err := s.PutRecord(ctx, remainder); err != nil {
			return storeErr("redeem", err)
		}

		used := LeaveRecord{
			ID:                 RecordID(e.newID()),
			OfficerID:          rec.OfficerID,
			ServiceType:        rec.ServiceType,
			ServiceDescription: rec.ServiceDescription,
			ServiceDate:        rec.ServiceDate,
			Amount:             qty,
			Status:             StatusUsed,
			DateUsed:           date,
			Notes:              appendSplitMarker(rec.Notes),
		}
		if err := s.PutRecord(ctx, used); err != nil {
			return storeErr("redeem", err)
		}

		result = RedeemResult{Redeemed: used, Remainder: &remainder}
		return nil
	})
	if err != nil {
		// Business errors from inside the transaction pass through;
		// anything else is transaction transport (BeginTx/Commit).
		if errors.Is(err, ErrRecordNotFound) ||
			errors.Is(err, ErrInvalidRedemption) ||
			errors.Is(err, ErrStoreUnavailable) {
			return RedeemResult{}, err
		}
		return RedeemResult{}, storeErr("redeem", err)
	}
	return result, nil
}

func appendSplitMarker(notes string) string {
	if notes == "" {
		return SplitMarker
	}
	return notes + " " + SplitMarker
}

// =============================================================================
// RECORD ACCESS AND DELETION
// =============================================================================

// Record returns one leave record by id.
func (e *Engine) Record(ctx context.Context, id RecordID) (LeaveRecord, error) {
	rec, err := e.store.GetRecord(ctx, id)
	if err != nil {
		return LeaveRecord{}, storeErr("get record", err)
	}
	if rec == nil {
		return LeaveRecord{}, ErrRecordNotFound
	}
	return *rec, nil
}

// RecordsByOfficer returns an officer's full record set.
func (e *Engine) RecordsByOfficer(ctx context.Context, officerID OfficerID) ([]LeaveRecord, error) {
	records, err := e.store.ListRecordsByOfficer(ctx, officerID)
	if err != nil {
		return nil, storeErr("list records", err)
	}
	return records, nil
}

// DeleteRecord removes a single leave record. No cascading effects.
func (e *Engine) DeleteRecord(ctx context.Context, id RecordID) error {
	rec, err := e.store.GetRecord(ctx, id)
	if err != nil {
		return storeErr("delete record", err)
	}
	if rec == nil {
		return ErrRecordNotFound
	}
	if err := e.store.DeleteRecord(ctx, id); err != nil {
		return storeErr("delete record", err)
	}
	return nil
}

// ServiceDescriptions returns the distinct non-empty descriptions an
// officer has used for a service type, for prefilling new entries.
func (e *Engine) ServiceDescriptions(ctx context.Context, officerID OfficerID, serviceType ServiceType) ([]string, error) {
	records, err := e.RecordsByOfficer(ctx, officerID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if r.ServiceType != serviceType || r.ServiceDescription == "" {
			continue
		}
		if !seen[r.ServiceDescription] {
			seen[r.ServiceDescription] = true
			out = append(out, r.ServiceDescription)
		}
	}
	return out, nil
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Summary is the system-wide balance aggregate. EXPIRED records contribute
// to neither total.
type Summary struct {
	OfficerCount   int
	TotalAvailable decimal.Decimal
	TotalUsed      decimal.Decimal
}

// Summarize aggregates balances across every officer. Both collections
// are read under one transactional view: a cascade delete committing
// between the two reads must never produce a count and totals taken
// from different states of the store.
func (e *Engine) Summarize(ctx context.Context) (Summary, error) {
	sum := Summary{TotalAvailable: decimal.Zero, TotalUsed: decimal.Zero}

	err := e.store.WithTx(ctx, func(s Store) error {
		officers, err := s.ListOfficers(ctx)
		if err != nil {
			return err
		}
		records, err := s.ListRecords(ctx)
		if err != nil {
			return err
		}

		sum.OfficerCount = len(officers)
		for _, r := range records {
			switch r.Status {
			case StatusAvailable:
				sum.TotalAvailable = sum.TotalAvailable.Add(r.Amount)
			case StatusUsed:
				sum.TotalUsed = sum.TotalUsed.Add(r.Amount)
			case StatusExpired:
				// excluded from both totals
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, storeErr("summarize", err)
	}
	return sum, nil
}

// Balance is one officer's aggregate.
type Balance struct {
	Available decimal.Decimal
	Used      decimal.Decimal
}

// OfficerBalance aggregates one officer's records.
func (e *Engine) OfficerBalance(ctx context.Context, officerID OfficerID) (Balance, error) {
	records, err := e.RecordsByOfficer(ctx, officerID)
	if err != nil {
		return Balance{}, err
	}
	b := Balance{Available: decimal.Zero, Used: decimal.Zero}
	for _, r := range records {
		switch r.Status {
		case StatusAvailable:
			b.Available = b.Available.Add(r.Amount)
		case StatusUsed:
			b.Used = b.Used.Add(r.Amount)
		case StatusExpired:
		}
	}
	return b, nil
}

// =============================================================================
// NARRATIVE REPORT (optional collaborator)
// =============================================================================

// NarrativeReport produces the best-effort text summary for one officer.
// The ledger functions fully without the generator: an engine built
// without one fails here with ErrReportNotConfigured and nothing else
// is affected.
func (e *Engine) NarrativeReport(ctx context.Context, officerID OfficerID) (string, error) {
	if e.report == nil {
		return "", ErrReportNotConfigured
	}
	officer, err := e.Officer(ctx, officerID)
	if err != nil {
		return "", err
	}
	records, err := e.RecordsByOfficer(ctx, officerID)
	if err != nil {
		return "", err
	}
	return e.report.GenerateOfficerReport(ctx, officer, records)
}
