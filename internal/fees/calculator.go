// Package fees computes document request fees from a document type's fee
// schedule and exemption rules. Everything here is pure.
package fees

import (
	"slices"

	"munlink-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// StatusSet holds the special statuses an applicant currently has active.
type StatusSet map[domain.SpecialStatusType]struct{}

func NewStatusSet(types ...domain.SpecialStatusType) StatusSet {
	s := make(StatusSet, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

func (s StatusSet) Has(t domain.SpecialStatusType) bool {
	_, ok := s[t]
	return ok
}

type Input struct {
	PurposeType           domain.PurposeType
	BusinessType          string
	RequirementsSubmitted bool
	SpecialStatuses       StatusSet
}

type Calculation struct {
	OriginalFee   decimal.Decimal
	FinalFee      decimal.Decimal
	ExemptionType string
}

func (c Calculation) Exempted() bool {
	return c.ExemptionType != ""
}

// Label renders the exemption for display, e.g. "Exempted: SENIOR".
func (c Calculation) Label() string {
	if !c.Exempted() {
		return ""
	}
	return "Exempted: " + c.ExemptionType
}

// Calculate returns the fee for a request. A business type listed in the
// fee tiers overrides the base fee. Exemptions are tried in order and the
// first match wins, but only once every requirement has been submitted.
func Calculate(docType *domain.DocumentType, in Input) Calculation {
	original := OriginalFee(docType, in.BusinessType)
	calc := Calculation{OriginalFee: original, FinalFee: original}

	if !in.RequirementsSubmitted {
		return calc
	}

	rule, ok := MatchExemption(docType.ExemptionRules, in.PurposeType, in.SpecialStatuses)
	if !ok {
		return calc
	}

	calc.FinalFee = decimal.Zero
	if rule.ReducedFee != nil && rule.ReducedFee.IsPositive() {
		calc.FinalFee = decimal.Min(*rule.ReducedFee, original)
	}
	calc.ExemptionType = rule.Status.ExemptionLabel()
	return calc
}

// OriginalFee picks the fee tier for businessType, falling back to the base fee.
func OriginalFee(docType *domain.DocumentType, businessType string) decimal.Decimal {
	if businessType != "" {
		if tier, ok := docType.FeeTiers[businessType]; ok {
			return tier
		}
	}
	return docType.Fee
}

// MatchExemption returns the first rule the applicant qualifies for.
func MatchExemption(rules domain.ExemptionRules, purpose domain.PurposeType, statuses StatusSet) (domain.ExemptionRule, bool) {
	for _, rule := range rules {
		if !statuses.Has(rule.Status) {
			continue
		}
		if len(rule.Purposes) > 0 && !slices.Contains(rule.Purposes, purpose) {
			continue
		}
		return rule, true
	}
	return domain.ExemptionRule{}, false
}
