/*
Package ledger provides the compensatory-leave ("folga") balance engine.

PURPOSE:
  This package contains the data model and algorithms for tracking leave
  entitlements earned for extra duty and their later redemption. It records
  grants, redeems them fully or partially (splitting records so that no
  balance is ever lost or duplicated), and answers balance and summary
  queries.

KEY CONCEPTS IN THIS FILE (types.go):
  - Officer: a tracked person (rank, matricula, unit)
  - LeaveRecord: one quantum of entitlement, from grant to redemption
  - Rank / ServiceType / Status: closed enumerations with display labels
  - Amount helpers: exact half-day quantities via decimal.Decimal

DESIGN PRINCIPLES:
  1. Conservation: redeeming never changes an officer's total balance
  2. Precision: decimal.Decimal, never float64, for leave quantities
  3. Closed variants: every switch over an enumeration is exhaustive
  4. Copies out: callers never receive aliases into stored state

USAGE:
  rec := ledger.LeaveRecord{
      OfficerID:   off.ID,
      ServiceType: ledger.ServiceCarnaval,
      ServiceDate: ledger.NewDate(2024, time.February, 12),
      Amount:      ledger.Days(1.5),
      Status:      ledger.StatusAvailable,
  }

SEE ALSO:
  - engine.go: Grant / Redeem / cascade delete / Summarize
  - projection.go: filter and sort read views
  - store.go: persistence contract
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Leave quantities in exact half-day steps
// =============================================================================

// Days builds a leave amount from a float literal. Quantities are always
// multiples of 0.5 days; ValidAmount enforces that on input paths.
func Days(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

var halfDay = decimal.New(5, -1) // 0.5

// ValidAmount reports whether v is a positive multiple of half a day.
func ValidAmount(v decimal.Decimal) bool {
	if !v.IsPositive() {
		return false
	}
	return v.Mod(halfDay).IsZero()
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type OfficerID string
type RecordID string

// =============================================================================
// RANK - Closed enumeration of the rank ladder
// =============================================================================

type Rank string

const (
	RankCoronel         Rank = "CEL"
	RankTenenteCoronel  Rank = "TEN_CEL"
	RankMajor           Rank = "MAJ"
	RankCapitao         Rank = "CAP"
	RankPrimeiroTenente Rank = "TEN1"
	RankSegundoTenente  Rank = "TEN2"
	RankAspirante       Rank = "ASP"
	RankSubtenente      Rank = "SUB"
	RankPrimeiroSgt     Rank = "SGT1"
	RankSegundoSgt      Rank = "SGT2"
	RankTerceiroSgt     Rank = "SGT3"
	RankCabo            Rank = "CB"
	RankSoldado         Rank = "SD"
)

// Ranks lists every rank in hierarchy order.
func Ranks() []Rank {
	return []Rank{
		RankCoronel, RankTenenteCoronel, RankMajor, RankCapitao,
		RankPrimeiroTenente, RankSegundoTenente, RankAspirante,
		RankSubtenente, RankPrimeiroSgt, RankSegundoSgt, RankTerceiroSgt,
		RankCabo, RankSoldado,
	}
}

func (r Rank) Valid() bool {
	switch r {
	case RankCoronel, RankTenenteCoronel, RankMajor, RankCapitao,
		RankPrimeiroTenente, RankSegundoTenente, RankAspirante,
		RankSubtenente, RankPrimeiroSgt, RankSegundoSgt, RankTerceiroSgt,
		RankCabo, RankSoldado:
		return true
	}
	return false
}

// Label returns the display form used on forms and reports.
func (r Rank) Label() string {
	switch r {
	case RankCoronel:
		return "Coronel"
	case RankTenenteCoronel:
		return "Tenente-Coronel"
	case RankMajor:
		return "Major"
	case RankCapitao:
		return "Capitão"
	case RankPrimeiroTenente:
		return "1º Tenente"
	case RankSegundoTenente:
		return "2º Tenente"
	case RankAspirante:
		return "Aspirante"
	case RankSubtenente:
		return "Subtenente"
	case RankPrimeiroSgt:
		return "1º Sargento"
	case RankSegundoSgt:
		return "2º Sargento"
	case RankTerceiroSgt:
		return "3º Sargento"
	case RankCabo:
		return "Cabo"
	case RankSoldado:
		return "Soldado"
	}
	return string(r)
}

// =============================================================================
// SERVICE TYPE - Duty categories that generate entitlements
// =============================================================================

type ServiceType string

const (
	ServiceCarnaval    ServiceType = "CARNAVAL"
	ServiceReveillon   ServiceType = "REVEILLON"
	ServiceSemanaSanta ServiceType = "SEMANA_SANTA"
	ServiceEleicao     ServiceType = "ELEICAO"
	ServiceFortal      ServiceType = "FORTAL"
	ServiceEscalaExtra ServiceType = "ESCALA_EXTRA"
	ServiceOutros      ServiceType = "OUTROS"
)

func ServiceTypes() []ServiceType {
	return []ServiceType{
		ServiceCarnaval, ServiceReveillon, ServiceSemanaSanta,
		ServiceEleicao, ServiceFortal, ServiceEscalaExtra, ServiceOutros,
	}
}

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceCarnaval, ServiceReveillon, ServiceSemanaSanta,
		ServiceEleicao, ServiceFortal, ServiceEscalaExtra, ServiceOutros:
		return true
	}
	return false
}

func (s ServiceType) Label() string {
	switch s {
	case ServiceCarnaval:
		return "Carnaval"
	case ServiceReveillon:
		return "Réveillon"
	case ServiceSemanaSanta:
		return "Semana Santa"
	case ServiceEleicao:
		return "Operação Eleição"
	case ServiceFortal:
		return "Fortal"
	case ServiceEscalaExtra:
		return "Escala Extra"
	case ServiceOutros:
		return "Outros"
	}
	return string(s)
}

// =============================================================================
// STATUS - Per-record state machine
// =============================================================================

// Status is the lifecycle state of a LeaveRecord.
//
// Transitions (only the redeem operation moves records between states):
//
//	AVAILABLE --full redeem--> USED
//	AVAILABLE --partial redeem--> AVAILABLE (reduced) + new USED record
//
// USED and EXPIRED are terminal. Nothing in this engine produces EXPIRED;
// it exists as a valid input state for filtering and summaries.
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusUsed      Status = "USED"
	StatusExpired   Status = "EXPIRED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusUsed, StatusExpired:
		return true
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusAvailable:
		return "Disponível"
	case StatusUsed:
		return "Gozada"
	case StatusExpired:
		return "Expirada"
	}
	return string(s)
}

// =============================================================================
// OFFICER
// =============================================================================

type Officer struct {
	ID        OfficerID
	Name      string
	Rank      Rank
	Matricula string // external badge/registration number, optional
	Unit      string // free text, optional
	CreatedAt time.Time
}

// =============================================================================
// LEAVE RECORD - One quantum of entitlement
// =============================================================================

// LeaveRecord tracks one entitlement from grant to redemption.
//
// INVARIANTS:
//   - Amount > 0 always; a record never holds a zero or negative balance.
//   - DateUsed is set iff Status == USED.
//   - OfficerID, ServiceType, ServiceDescription and ServiceDate are
//     immutable once created; only Amount, Status, DateUsed and Notes
//     change, and only through Redeem.
//   - No record returns from USED or EXPIRED to AVAILABLE.
type LeaveRecord struct {
	ID                 RecordID
	OfficerID          OfficerID
	ServiceType        ServiceType
	ServiceDescription string // names the specific operation/event, optional
	ServiceDate        Date   // when the qualifying duty occurred
	Amount             decimal.Decimal
	Status             Status
	DateUsed           Date   // zero unless Status == USED
	Notes              string // append-only by convention on splits
}

// SplitMarker is appended to the notes of the USED portion created by a
// partial redemption.
const SplitMarker = "(Fracionada)"
