package eligibility

import (
	"fmt"
	"time"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/utils"
)

// Applicant holds the profile fields the evaluator reads.
type Applicant struct {
	DateOfBirth    *time.Time
	MunicipalityID *int32
}

// ApplicantFromUser copies the relevant profile fields.
func ApplicantFromUser(u *domain.User) Applicant {
	if u == nil {
		return Applicant{}
	}
	return Applicant{DateOfBirth: u.DateOfBirth, MunicipalityID: u.MunicipalityID}
}

// Check is the outcome of a single criterion. Message is prefixed with ✅ or
// ❌ and is shown to residents and kept for review.
type Check struct {
	Required bool   `json:"required"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message,omitempty"`
	Value    *int   `json:"value,omitempty"`
}

type Result struct {
	HasTags  bool  `json:"has_tags"`
	Overall  bool  `json:"overall"`
	Age      Check `json:"age"`
	Location Check `json:"location"`
}

// RequiresExplanation reports whether the applicant must attach an
// explanation letter. Programs without tags ask for one; tagged programs
// only accept optional notes.
func (r Result) RequiresExplanation() bool {
	return !r.HasTags
}

// Reasons lists the failed messages, age first.
func (r Result) Reasons() []string {
	var out []string
	if r.Age.Required && !r.Age.Passed {
		out = append(out, r.Age.Message)
	}
	if r.Location.Required && !r.Location.Passed {
		out = append(out, r.Location.Message)
	}
	return out
}

const (
	msgAgeUnreadable    = "❌ The program's age requirement could not be read. Please contact the program office."
	msgLocationMissing  = "❌ A registered municipality is required for this program"
	msgLocationMismatch = "❌ This program is only open to residents of its municipality"
	msgLocationOK       = "✅ You are a registered resident of the program's municipality"
	msgLocationOnFile   = "✅ Registered municipality on file"
)

// Evaluate checks an applicant against a program's criteria at instant now.
// Null or empty criteria mean the program is open to everyone.
func Evaluate(criteria *domain.EligibilityCriteria, applicant Applicant, programMunicipalityID *int32, now time.Time) Result {
	if criteria.IsEmpty() {
		return Result{HasTags: false, Overall: true, Age: Check{Passed: true}, Location: Check{Passed: true}}
	}

	rules, err := ParseCriteria(criteria)
	res := EvaluateRules(rules, applicant, programMunicipalityID, now)
	if err != nil {
		res.HasTags = true
		res.Age = Check{Required: true, Passed: false, Message: msgAgeUnreadable}
		res.Overall = false
	}
	return res
}

// EvaluateRules runs already parsed rules. An empty rule list passes with
// HasTags false.
func EvaluateRules(rules []Rule, applicant Applicant, programMunicipalityID *int32, now time.Time) Result {
	res := Result{
		HasTags:  len(rules) > 0,
		Age:      Check{Passed: true},
		Location: Check{Passed: true},
	}

	for _, r := range rules {
		switch rule := r.(type) {
		case AgeRange:
			res.Age = checkAge(rule, applicant.DateOfBirth, now)
		case LocationRequired:
			res.Location = checkLocation(applicant.MunicipalityID, programMunicipalityID)
		}
	}

	res.Overall = (!res.Age.Required || res.Age.Passed) && (!res.Location.Required || res.Location.Passed)
	return res
}

func checkAge(rule AgeRange, dob *time.Time, now time.Time) Check {
	c := Check{Required: true}
	if dob == nil {
		c.Message = fmt.Sprintf("❌ Date of birth is missing from your profile; it is needed to check the age requirement (%s)", rule.Describe())
		return c
	}

	age := utils.Age(*dob, now)
	c.Value = &age
	c.Passed = age >= rule.Min && (rule.Max == nil || age <= *rule.Max)
	if c.Passed {
		c.Message = fmt.Sprintf("✅ Age requirement met: you are %d years old (required: %s)", age, rule.Describe())
	} else {
		c.Message = fmt.Sprintf("❌ Age requirement not met: you are %d years old (required: %s)", age, rule.Describe())
	}
	return c
}

func checkLocation(applicantMunicipality, programMunicipality *int32) Check {
	c := Check{Required: true}
	switch {
	case applicantMunicipality == nil:
		c.Message = msgLocationMissing
	case programMunicipality != nil && *programMunicipality != *applicantMunicipality:
		c.Message = msgLocationMismatch
	case programMunicipality != nil:
		c.Passed = true
		c.Message = msgLocationOK
	default:
		c.Passed = true
		c.Message = msgLocationOnFile
	}
	return c
}
