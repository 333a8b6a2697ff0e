// Package store provides Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/vigia/folga-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	officers map[ledger.OfficerID]ledger.Officer
	records  map[ledger.RecordID]ledger.LeaveRecord
}

func NewMemory() *Memory {
	return &Memory{
		officers: make(map[ledger.OfficerID]ledger.Officer),
		records:  make(map[ledger.RecordID]ledger.LeaveRecord),
	}
}

// Officers

func (m *Memory) ListOfficers(_ context.Context) ([]ledger.Officer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ledger.Officer, 0, len(m.officers))
	for _, o := range m.officers {
		out = append(out, o)
	}
	return out, nil
}

func (m *Memory) GetOfficer(_ context.Context, id ledger.OfficerID) (*ledger.Officer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.officers[id]
	if !ok {
		return nil, nil
	}
	c := o
	return &c, nil
}

func (m *Memory) PutOfficer(_ context.Context, o ledger.Officer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.officers[o.ID] = o
	return nil
}

func (m *Memory) DeleteOfficer(_ context.Context, id ledger.OfficerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.officers, id)
	return nil
}

// Leave records

func (m *Memory) ListRecords(_ context.Context) ([]ledger.LeaveRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ledger.LeaveRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

func (m *Memory) ListRecordsByOfficer(_ context.Context, officerID ledger.OfficerID) ([]ledger.LeaveRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ledger.LeaveRecord
	for _, r := range m.records {
		if r.OfficerID == officerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) GetRecord(_ context.Context, id ledger.RecordID) (*ledger.LeaveRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	c := r
	return &c, nil
}

func (m *Memory) PutRecord(_ context.Context, r ledger.LeaveRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.ID] = r
	return nil
}

func (m *Memory) DeleteRecord(_ context.Context, id ledger.RecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn against the store under the write lock. For the
// memory store atomicity is simulated with a snapshot that is restored
// when fn fails, so readers never observe a half-applied operation.
func (tm *TxMemory) WithTx(_ context.Context, fn func(ledger.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snap := tm.snapshot()
	view := &txMemoryView{parent: tm.Memory}

	if err := fn(view); err != nil {
		tm.restore(snap)
		return err
	}
	return nil
}

func (tm *TxMemory) snapshot() memorySnapshot {
	officers := make(map[ledger.OfficerID]ledger.Officer, len(tm.officers))
	for k, v := range tm.officers {
		officers[k] = v
	}
	records := make(map[ledger.RecordID]ledger.LeaveRecord, len(tm.records))
	for k, v := range tm.records {
		records[k] = v
	}
	return memorySnapshot{officers: officers, records: records}
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.officers = s.officers
	tm.records = s.records
}

type memorySnapshot struct {
	officers map[ledger.OfficerID]ledger.Officer
	records  map[ledger.RecordID]ledger.LeaveRecord
}

// txMemoryView accesses the parent maps directly; the lock is already
// held by WithTx.
type txMemoryView struct {
	parent *Memory
}

func (tv *txMemoryView) ListOfficers(_ context.Context) ([]ledger.Officer, error) {
	out := make([]ledger.Officer, 0, len(tv.parent.officers))
	for _, o := range tv.parent.officers {
		out = append(out, o)
	}
	return out, nil
}

func (tv *txMemoryView) GetOfficer(_ context.Context, id ledger.OfficerID) (*ledger.Officer, error) {
	o, ok := tv.parent.officers[id]
	if !ok {
		return nil, nil
	}
	c := o
	return &c, nil
}

func (tv *txMemoryView) PutOfficer(_ context.Context, o ledger.Officer) error {
	tv.parent.officers[o.ID] = o
	return nil
}

func (tv *txMemoryView) DeleteOfficer(_ context.Context, id ledger.OfficerID) error {
	delete(tv.parent.officers, id)
	return nil
}

func (tv *txMemoryView) ListRecords(_ context.Context) ([]ledger.LeaveRecord, error) {
	out := make([]ledger.LeaveRecord, 0, len(tv.parent.records))
	for _, r := range tv.parent.records {
		out = append(out, r)
	}
	return out, nil
}

func (tv *txMemoryView) ListRecordsByOfficer(_ context.Context, officerID ledger.OfficerID) ([]ledger.LeaveRecord, error) {
	var out []ledger.LeaveRecord
	for _, r := range tv.parent.records {
		if r.OfficerID == officerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (tv *txMemoryView) GetRecord(_ context.Context, id ledger.RecordID) (*ledger.LeaveRecord, error) {
	r, ok := tv.parent.records[id]
	if !ok {
		return nil, nil
	}
	c := r
	return &c, nil
}

func (tv *txMemoryView) PutRecord(_ context.Context, r ledger.LeaveRecord) error {
	tv.parent.records[r.ID] = r
	return nil
}

func (tv *txMemoryView) DeleteRecord(_ context.Context, id ledger.RecordID) error {
	delete(tv.parent.records, id)
	return nil
}
