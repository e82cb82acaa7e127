package workflow

import (
	"strings"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/eligibility"
)

const (
	RuleProgramRequired     = "program_required"
	RuleProgramInactive     = "program_inactive"
	RuleExplanationRequired = "explanation_letter_required"
	RuleDocumentsRequired   = "documents_required"
)

// ApplicationDraft is a benefit-program application about to be submitted.
type ApplicationDraft struct {
	Program         *domain.Program
	Eligibility     eligibility.Result
	ApplicationData map[string]string
	AttachmentCount int
}

// CheckApplication gates submission. Ineligible applicants get an
// EligibilityError with the itemised reasons; other unmet rules come back
// as a ValidationError.
func CheckApplication(d ApplicationDraft) error {
	if d.Program != nil && d.Program.IsActive && !d.Eligibility.Overall {
		return &domain.EligibilityError{Reasons: d.Eligibility.Reasons()}
	}
	if v := ApplicationViolations(d); len(v) > 0 {
		return &domain.ValidationError{Violations: v}
	}
	return nil
}

// ApplicationViolations lists the non-eligibility rules that are unmet.
func ApplicationViolations(d ApplicationDraft) []domain.Violation {
	var v []domain.Violation
	p := d.Program
	if p == nil {
		return append(v, domain.Violation{Field: "program_id", Rule: RuleProgramRequired, Message: "Select a program to apply for"})
	}
	if !p.IsActive {
		v = append(v, domain.Violation{Field: "program_id", Rule: RuleProgramInactive, Message: p.Name + " is no longer accepting applications"})
	}

	if d.Eligibility.RequiresExplanation() && strings.TrimSpace(d.ApplicationData[domain.ApplicationDataExplanationLetter]) == "" {
		v = append(v, domain.Violation{
			Field:   "application_data.explanation_letter",
			Rule:    RuleExplanationRequired,
			Message: "Write a short letter explaining why you are applying",
		})
	}

	if len(p.Requirements) > 0 && d.AttachmentCount < 1 {
		v = append(v, domain.Violation{
			Field:   "documents",
			Rule:    RuleDocumentsRequired,
			Message: "Attach at least one supporting document: " + strings.Join(p.Requirements, ", "),
		})
	}
	return v
}

// CanSubmitApplication reports whether the submit control is enabled.
func CanSubmitApplication(d ApplicationDraft) bool {
	return CheckApplication(d) == nil
}
