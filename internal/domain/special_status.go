package domain

import (
	"strings"
	"time"
)

type SpecialStatusType string

const (
	SpecialStatusStudent SpecialStatusType = "student"
	SpecialStatusPWD     SpecialStatusType = "pwd"
	SpecialStatusSenior  SpecialStatusType = "senior"
)

func (t SpecialStatusType) Valid() bool {
	return t == SpecialStatusStudent || t == SpecialStatusPWD || t == SpecialStatusSenior
}

// ExemptionLabel is the identifier shown to residents, e.g. "SENIOR".
func (t SpecialStatusType) ExemptionLabel() string {
	return strings.ToUpper(string(t))
}

type SpecialStatusState string

const (
	SpecialStatusPending  SpecialStatusState = "pending"
	SpecialStatusApproved SpecialStatusState = "approved"
	SpecialStatusRejected SpecialStatusState = "rejected"
	SpecialStatusExpired  SpecialStatusState = "expired"
)

type SpecialStatus struct {
	ID              int32              `json:"id"`
	UserID          int32              `json:"user_id"`
	StatusType      SpecialStatusType  `json:"status_type"`
	Status          SpecialStatusState `json:"status"`
	SchoolName      string             `json:"school_name,omitempty"`
	SemesterStart   *time.Time         `json:"semester_start,omitempty"`
	SemesterEnd     *time.Time         `json:"semester_end,omitempty"`
	DisabilityType  string             `json:"disability_type,omitempty"`
	IDNumber        string             `json:"id_number,omitempty"`
	DocumentKey     string             `json:"document_key,omitempty"`
	ExpiresAt       *time.Time         `json:"expires_at,omitempty"`
	RenewalOf       *int32             `json:"renewal_of,omitempty"`
	ReviewedBy      *int32             `json:"reviewed_by,omitempty"`
	RejectionReason *string            `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// IsActiveAt reports whether the status grants benefits at t.
func (s *SpecialStatus) IsActiveAt(t time.Time) bool {
	if s.Status != SpecialStatusApproved {
		return false
	}
	return s.ExpiresAt == nil || t.Before(*s.ExpiresAt)
}
