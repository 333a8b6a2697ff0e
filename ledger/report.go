package ledger

import "context"

// =============================================================================
// REPORT GENERATOR - Optional narrative-report collaborator
// =============================================================================

// ReportGenerator turns a read-only snapshot of one officer's ledger into
// a natural-language summary. Implementations are external services and
// may fail; callers treat every failure as best-effort degradation
// (ErrReportUnavailable / ErrReportNotConfigured), never as a ledger
// failure.
type ReportGenerator interface {
	GenerateOfficerReport(ctx context.Context, officer Officer, records []LeaveRecord) (string, error)
}
