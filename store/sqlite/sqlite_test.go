package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigia/folga-engine/ledger"
	"github.com/vigia/folga-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sqliteOfficer(id string) ledger.Officer {
	return ledger.Officer{
		ID:        ledger.OfficerID(id),
		Name:      "Silva",
		Rank:      ledger.RankCabo,
		Matricula: "12345",
		Unit:      "1º BPM",
		CreatedAt: time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC),
	}
}

func sqliteRecord(id, officerID string) ledger.LeaveRecord {
	return ledger.LeaveRecord{
		ID:                 ledger.RecordID(id),
		OfficerID:          ledger.OfficerID(officerID),
		ServiceType:        ledger.ServiceCarnaval,
		ServiceDescription: "Posto 3",
		ServiceDate:        ledger.NewDate(2024, time.February, 12),
		Amount:             ledger.Days(1.5),
		Status:             ledger.StatusAvailable,
		Notes:              "escala extra",
	}
}

func TestSQLite_OfficerRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	want := sqliteOfficer("o-1")

	require.NoError(t, s.PutOfficer(ctx, want))

	got, err := s.GetOfficer(ctx, "o-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Rank, got.Rank)
	assert.Equal(t, want.Matricula, got.Matricula)
	assert.Equal(t, want.Unit, got.Unit)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

func TestSQLite_PutOfficerUpsertKeepsCreatedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	original := sqliteOfficer("o-1")
	require.NoError(t, s.PutOfficer(ctx, original))

	updated := original
	updated.Name = "Silva Junior"
	updated.CreatedAt = time.Now()
	require.NoError(t, s.PutOfficer(ctx, updated))

	got, err := s.GetOfficer(ctx, "o-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Silva Junior", got.Name)
	assert.True(t, original.CreatedAt.Equal(got.CreatedAt), "created_at is write-once")
}

func TestSQLite_GetMissingIsNilNil(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	o, err := s.GetOfficer(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, o)

	r, err := s.GetRecord(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestSQLite_RecordRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	want := sqliteRecord("r-1", "o-1")
	want.DateUsed = ledger.NewDate(2024, time.March, 5)
	want.Status = ledger.StatusUsed

	require.NoError(t, s.PutRecord(ctx, want))

	got, err := s.GetRecord(ctx, "r-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.OfficerID, got.OfficerID)
	assert.Equal(t, want.ServiceType, got.ServiceType)
	assert.Equal(t, want.ServiceDescription, got.ServiceDescription)
	assert.True(t, want.ServiceDate.Equal(got.ServiceDate))
	assert.True(t, want.Amount.Equal(got.Amount), "decimal survives the TEXT column exactly")
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, "2024-03-05", got.DateUsed.String())
	assert.Equal(t, want.Notes, got.Notes)
}

func TestSQLite_RecordWithoutDateUsed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutRecord(ctx, sqliteRecord("r-1", "o-1")))

	got, err := s.GetRecord(ctx, "r-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.DateUsed.IsZero())
}

func TestSQLite_ListRecordsByOfficer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutRecord(ctx, sqliteRecord("r-1", "o-1")))
	require.NoError(t, s.PutRecord(ctx, sqliteRecord("r-2", "o-2")))
	require.NoError(t, s.PutRecord(ctx, sqliteRecord("r-3", "o-1")))

	records, err := s.ListRecordsByOfficer(ctx, "o-1")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSQLite_WithTxRollsBackOnError(t *testing.T) {
	// GIVEN: a record in the store
	// WHEN: a transaction deletes it, inserts another, then fails
	// THEN: the database is exactly as before
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutRecord(ctx, sqliteRecord("r-1", "o-1")))

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx ledger.Store) error {
		if err := tx.DeleteRecord(ctx, "r-1"); err != nil {
			return err
		}
		if err := tx.PutRecord(ctx, sqliteRecord("r-2", "o-1")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	r1, err := s.GetRecord(ctx, "r-1")
	require.NoError(t, err)
	assert.NotNil(t, r1)

	r2, err := s.GetRecord(ctx, "r-2")
	require.NoError(t, err)
	assert.Nil(t, r2)
}

func TestSQLite_EngineEndToEnd(t *testing.T) {
	// The full partial-redeem path against the real storage backend.
	s := newTestStore(t)
	e := ledger.NewEngine(s)
	ctx := context.Background()

	o, err := e.RegisterOfficer(ctx, "Santos", ledger.RankPrimeiroSgt, "11223", "RAIO")
	require.NoError(t, err)

	rec, err := e.Grant(ctx, ledger.GrantInput{
		OfficerID:   o.ID,
		ServiceType: ledger.ServiceEleicao,
		ServiceDate: ledger.NewDate(2024, time.October, 6),
		Amount:      ledger.Days(2),
	})
	require.NoError(t, err)

	result, err := e.Redeem(ctx, rec.ID, ledger.Days(0.5), ledger.NewDate(2024, time.November, 1))
	require.NoError(t, err)
	require.NotNil(t, result.Remainder)
	assert.True(t, result.Remainder.Amount.Equal(ledger.Days(1.5)))
	assert.Equal(t, ledger.SplitMarker, result.Redeemed.Notes)

	b, err := e.OfficerBalance(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, b.Available.Add(b.Used).Equal(ledger.Days(2)))

	require.NoError(t, e.RemoveOfficer(ctx, o.ID))
	records, err := s.ListRecordsByOfficer(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLite_Reset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutOfficer(ctx, sqliteOfficer("o-1")))
	require.NoError(t, s.PutRecord(ctx, sqliteRecord("r-1", "o-1")))

	require.NoError(t, s.Reset(ctx))

	officers, err := s.ListOfficers(ctx)
	require.NoError(t, err)
	assert.Empty(t, officers)
	records, err := s.ListRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
