/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the engine, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/vigia/folga-engine/ledger"
)

// =============================================================================
// OFFICERS
// =============================================================================

// OfficerDTO represents an officer in API responses.
type OfficerDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Rank      string `json:"rank"`
	RankLabel string `json:"rank_label"`
	Matricula string `json:"matricula,omitempty"`
	Unit      string `json:"unit,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

func toOfficerDTO(o ledger.Officer) OfficerDTO {
	return OfficerDTO{
		ID:        string(o.ID),
		Name:      o.Name,
		Rank:      string(o.Rank),
		RankLabel: o.Rank.Label(),
		Matricula: o.Matricula,
		Unit:      o.Unit,
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
	}
}

// CreateOfficerRequest is the request to register an officer.
type CreateOfficerRequest struct {
	Name      string `json:"name"`
	Rank      string `json:"rank"`
	Matricula string `json:"matricula"`
	Unit      string `json:"unit"`
}

// ReplaceOfficerRequest is the request for a full-record replace.
type ReplaceOfficerRequest struct {
	Name      string `json:"name"`
	Rank      string `json:"rank"`
	Matricula string `json:"matricula"`
	Unit      string `json:"unit"`
}

// OfficerDetailDTO bundles an officer with its aggregate balance.
type OfficerDetailDTO struct {
	Officer   OfficerDTO `json:"officer"`
	Available float64    `json:"total_available"`
	Used      float64    `json:"total_used"`
}

// =============================================================================
// LEAVE RECORDS
// =============================================================================

// LeaveRecordDTO represents one entitlement record in API responses.
type LeaveRecordDTO struct {
	ID                 string  `json:"id"`
	OfficerID          string  `json:"officer_id"`
	ServiceType        string  `json:"service_type"`
	ServiceTypeLabel   string  `json:"service_type_label"`
	ServiceDescription string  `json:"service_description,omitempty"`
	ServiceDate        string  `json:"service_date"`
	Amount             float64 `json:"amount"`
	Status             string  `json:"status"`
	StatusLabel        string  `json:"status_label"`
	DateUsed           string  `json:"date_used,omitempty"`
	Notes              string  `json:"notes,omitempty"`
}

func toRecordDTO(r ledger.LeaveRecord) LeaveRecordDTO {
	amount, _ := r.Amount.Float64()
	return LeaveRecordDTO{
		ID:                 string(r.ID),
		OfficerID:          string(r.OfficerID),
		ServiceType:        string(r.ServiceType),
		ServiceTypeLabel:   r.ServiceType.Label(),
		ServiceDescription: r.ServiceDescription,
		ServiceDate:        r.ServiceDate.String(),
		Amount:             amount,
		Status:             string(r.Status),
		StatusLabel:        r.Status.Label(),
		DateUsed:           r.DateUsed.String(),
		Notes:              r.Notes,
	}
}

func toRecordDTOs(records []ledger.LeaveRecord) []LeaveRecordDTO {
	dtos := make([]LeaveRecordDTO, len(records))
	for i, r := range records {
		dtos[i] = toRecordDTO(r)
	}
	return dtos
}

// GrantRequest is the request to create an entitlement.
type GrantRequest struct {
	OfficerID          string  `json:"officer_id"`
	ServiceType        string  `json:"service_type"`
	ServiceDescription string  `json:"service_description"`
	ServiceDate        string  `json:"service_date"`
	Amount             float64 `json:"amount"`
	Notes              string  `json:"notes"`
	DateUsed           string  `json:"date_used"` // optional grant-and-redeem shortcut
}

// RedeemRequest is the request to consume part or all of a record.
type RedeemRequest struct {
	Quantity float64 `json:"quantity"`
	Date     string  `json:"date"`
}

// RedeemResponse reports the records a redemption produced or updated.
type RedeemResponse struct {
	Redeemed  LeaveRecordDTO  `json:"redeemed"`
	Remainder *LeaveRecordDTO `json:"remainder,omitempty"`
}

// =============================================================================
// SUMMARY AND METADATA
// =============================================================================

// SummaryDTO is the system-wide aggregate.
type SummaryDTO struct {
	OfficerCount   int     `json:"officer_count"`
	TotalAvailable float64 `json:"total_available"`
	TotalUsed      float64 `json:"total_used"`
}

// EnumValueDTO pairs a wire value with its display label.
type EnumValueDTO struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// MetaDTO serves the closed enumerations to form frontends.
type MetaDTO struct {
	Ranks        []EnumValueDTO `json:"ranks"`
	ServiceTypes []EnumValueDTO `json:"service_types"`
	Statuses     []EnumValueDTO `json:"statuses"`
}

// ReportDTO wraps the narrative report text.
type ReportDTO struct {
	Report string `json:"report"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
