package domain

import "time"

type ProgramType string

const (
	ProgramTypeGeneral     ProgramType = "general"
	ProgramTypeFinancial   ProgramType = "financial"
	ProgramTypeEducational ProgramType = "educational"
	ProgramTypeHealth      ProgramType = "health"
	ProgramTypeLivelihood  ProgramType = "livelihood"
)

func (t ProgramType) Valid() bool {
	switch t {
	case ProgramTypeGeneral, ProgramTypeFinancial, ProgramTypeEducational, ProgramTypeHealth, ProgramTypeLivelihood:
		return true
	}
	return false
}

// EligibilityCriteria is the stored tag set of a program. Age is the legacy
// string encoding (">=18", "18-65") kept for rows written before age_min and
// age_max existed.
type EligibilityCriteria struct {
	AgeMin           *int   `json:"age_min,omitempty"`
	AgeMax           *int   `json:"age_max,omitempty"`
	Age              string `json:"age,omitempty"`
	LocationRequired bool   `json:"location_required,omitempty"`
}

// IsEmpty reports whether no tag is set.
func (c *EligibilityCriteria) IsEmpty() bool {
	return c == nil || (c.AgeMin == nil && c.AgeMax == nil && c.Age == "" && !c.LocationRequired)
}

type Program struct {
	ID                  int32                `json:"id"`
	Name                string               `json:"name"`
	Code                string               `json:"code"`
	Type                ProgramType          `json:"program_type"`
	Description         string               `json:"description"`
	DurationDays        *int32               `json:"duration_days,omitempty"`
	MunicipalityID      *int32               `json:"municipality_id,omitempty"`
	EligibilityCriteria *EligibilityCriteria `json:"eligibility_criteria"`
	Requirements        []string             `json:"requirements"`
	IsActive            bool                 `json:"is_active"`
	CompletedAt         *time.Time           `json:"completed_at,omitempty"`
	CreatedBy           int32                `json:"created_by"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusUnderReview ApplicationStatus = "under_review"
	ApplicationStatusApproved    ApplicationStatus = "approved"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusApproved || s == ApplicationStatusRejected
}

// CanTransitionTo encodes pending -> under_review (optional) -> approved|rejected.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	switch s {
	case ApplicationStatusPending:
		return next == ApplicationStatusUnderReview || next == ApplicationStatusApproved || next == ApplicationStatusRejected
	case ApplicationStatusUnderReview:
		return next == ApplicationStatusApproved || next == ApplicationStatusRejected
	}
	return false
}

const (
	ApplicationDataExplanationLetter = "explanation_letter"
	ApplicationDataNotes             = "notes"
)

type Application struct {
	ID                  int32             `json:"id"`
	ApplicationNumber   string            `json:"application_number"`
	ProgramID           int32             `json:"program_id"`
	UserID              int32             `json:"user_id"`
	Status              ApplicationStatus `json:"status"`
	RejectionReason     *string           `json:"rejection_reason,omitempty"`
	SupportingDocuments []string          `json:"supporting_documents"`
	ApplicationData     map[string]string `json:"application_data"`
	DocumentsPending    bool              `json:"documents_pending"`
	ReviewedBy          *int32            `json:"reviewed_by,omitempty"`
	ReviewedAt          *time.Time        `json:"reviewed_at,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}
