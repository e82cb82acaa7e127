package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type AuthorityLevel string

const (
	AuthorityMunicipal AuthorityLevel = "municipal"
	AuthorityBarangay  AuthorityLevel = "barangay"
)

// ExemptionRule waives or reduces a document fee for holders of a special
// status. Purposes, when set, limits the rule to those purpose types.
// ReducedFee nil means a full waiver.
type ExemptionRule struct {
	Status     SpecialStatusType `json:"status"`
	Purposes   []PurposeType     `json:"purposes,omitempty"`
	ReducedFee *decimal.Decimal  `json:"reduced_fee,omitempty"`
}

// ExemptionRules is evaluated in order; the first matching rule wins.
type ExemptionRules []ExemptionRule

// exemptionPriority orders rules decoded from the map encoding.
var exemptionPriority = []SpecialStatusType{SpecialStatusSenior, SpecialStatusPWD, SpecialStatusStudent}

// UnmarshalJSON accepts the list form and the older map form
// {"senior": true, "pwd": {"reduced_fee": 50}}.
func (r *ExemptionRules) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = nil
		return nil
	}

	if data[0] == '[' {
		var rules []ExemptionRule
		if err := json.Unmarshal(data, &rules); err != nil {
			return fmt.Errorf("invalid exemption rules: %w", err)
		}
		*r = rules
		return nil
	}

	var byStatus map[string]json.RawMessage
	if err := json.Unmarshal(data, &byStatus); err != nil {
		return fmt.Errorf("invalid exemption rules: %w", err)
	}

	var rules ExemptionRules
	for _, status := range exemptionPriority {
		raw, ok := byStatus[string(status)]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		switch {
		case bytes.Equal(raw, []byte("true")):
			rules = append(rules, ExemptionRule{Status: status})
		case bytes.Equal(raw, []byte("false")), bytes.Equal(raw, []byte("null")):
		default:
			var body struct {
				Purposes   []PurposeType    `json:"purposes"`
				ReducedFee *decimal.Decimal `json:"reduced_fee"`
			}
			if err := json.Unmarshal(raw, &body); err != nil {
				return fmt.Errorf("invalid exemption rule for %s: %w", status, err)
			}
			rules = append(rules, ExemptionRule{Status: status, Purposes: body.Purposes, ReducedFee: body.ReducedFee})
		}
	}
	*r = rules
	return nil
}

type DocumentType struct {
	ID              int32                      `json:"id"`
	Name            string                     `json:"name"`
	Code            string                     `json:"code"`
	Description     string                     `json:"description"`
	Fee             decimal.Decimal            `json:"fee"`
	ProcessingDays  int32                      `json:"processing_days"`
	SupportsDigital bool                       `json:"supports_digital"`
	AuthorityLevel  AuthorityLevel             `json:"authority_level"`
	MunicipalityID  *int32                     `json:"municipality_id,omitempty"`
	BarangayID      *int32                     `json:"barangay_id,omitempty"`
	Requirements    []string                   `json:"requirements"`
	FeeTiers        map[string]decimal.Decimal `json:"fee_tiers,omitempty"`
	ExemptionRules  ExemptionRules             `json:"exemption_rules,omitempty"`
	IsActive        bool                       `json:"is_active"`
}

func (d *DocumentType) HasFeeTiers() bool {
	return len(d.FeeTiers) > 0
}

type DeliveryMethod string

const (
	DeliveryDigital DeliveryMethod = "digital"
	DeliveryPickup  DeliveryMethod = "pickup"
)

type PickupLocation string

const (
	PickupMunicipal PickupLocation = "municipal"
	PickupBarangay  PickupLocation = "barangay"
)

type PurposeType string

const (
	PurposeEducational PurposeType = "educational"
	PurposeEmployment  PurposeType = "employment"
	PurposeBusiness    PurposeType = "business"
	PurposeLegal       PurposeType = "legal"
	PurposeTravel      PurposeType = "travel"
	PurposeMedical     PurposeType = "medical"
	PurposeGovernment  PurposeType = "government"
	PurposeOther       PurposeType = "other"
)

func (p PurposeType) Valid() bool {
	switch p {
	case PurposeEducational, PurposeEmployment, PurposeBusiness, PurposeLegal,
		PurposeTravel, PurposeMedical, PurposeGovernment, PurposeOther:
		return true
	}
	return false
}

type CivilStatus string

const (
	CivilStatusSingle    CivilStatus = "single"
	CivilStatusMarried   CivilStatus = "married"
	CivilStatusWidowed   CivilStatus = "widowed"
	CivilStatusSeparated CivilStatus = "separated"
	CivilStatusAnnulled  CivilStatus = "annulled"
)

func (c CivilStatus) Valid() bool {
	switch c {
	case CivilStatusSingle, CivilStatusMarried, CivilStatusWidowed, CivilStatusSeparated, CivilStatusAnnulled:
		return true
	}
	return false
}

type DocumentRequestStatus string

const (
	DocumentRequestPending        DocumentRequestStatus = "pending"
	DocumentRequestProcessing     DocumentRequestStatus = "processing"
	DocumentRequestReadyForPickup DocumentRequestStatus = "ready_for_pickup"
	DocumentRequestCompleted      DocumentRequestStatus = "completed"
	DocumentRequestRejected       DocumentRequestStatus = "rejected"
)

func (s DocumentRequestStatus) IsTerminal() bool {
	return s == DocumentRequestCompleted || s == DocumentRequestRejected
}

// CanTransitionTo reports whether an admin may move a request from s to next.
// Pickup requests pass through ready_for_pickup; digital ones complete directly.
func (s DocumentRequestStatus) CanTransitionTo(next DocumentRequestStatus, delivery DeliveryMethod) bool {
	switch s {
	case DocumentRequestPending:
		return next == DocumentRequestProcessing || next == DocumentRequestRejected
	case DocumentRequestProcessing:
		switch next {
		case DocumentRequestRejected:
			return true
		case DocumentRequestReadyForPickup:
			return delivery == DeliveryPickup
		case DocumentRequestCompleted:
			return delivery == DeliveryDigital
		}
	case DocumentRequestReadyForPickup:
		return next == DocumentRequestCompleted
	}
	return false
}

type DocumentRequest struct {
	ID                    int32                 `json:"id"`
	RequestNumber         string                `json:"request_number"`
	UserID                int32                 `json:"user_id"`
	DocumentTypeID        int32                 `json:"document_type_id"`
	MunicipalityID        int32                 `json:"municipality_id"`
	BarangayID            *int32                `json:"barangay_id,omitempty"`
	DeliveryMethod        DeliveryMethod        `json:"delivery_method"`
	PickupLocation        *PickupLocation       `json:"pickup_location,omitempty"`
	PurposeType           PurposeType           `json:"purpose_type"`
	PurposeOther          string                `json:"purpose_other,omitempty"`
	BusinessType          string                `json:"business_type,omitempty"`
	CivilStatus           CivilStatus           `json:"civil_status"`
	Age                   *int32                `json:"age,omitempty"`
	Remarks               string                `json:"remarks,omitempty"`
	RequirementsSubmitted bool                  `json:"requirements_submitted"`
	RequirementFiles      map[string]string     `json:"requirement_files"`
	DocumentsPending      bool                  `json:"documents_pending"`
	OriginalFee           decimal.Decimal       `json:"original_fee"`
	FinalFee              decimal.Decimal       `json:"final_fee"`
	ExemptionType         string                `json:"exemption_type,omitempty"`
	Status                DocumentRequestStatus `json:"status"`
	RejectionReason       *string               `json:"rejection_reason,omitempty"`
	ClaimCodeHash         string                `json:"-"`
	ReadyAt               *time.Time            `json:"ready_at,omitempty"`
	CompletedAt           *time.Time            `json:"completed_at,omitempty"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}
