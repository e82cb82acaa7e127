package workflow

import (
	"fmt"
	"strings"

	"munlink-backend/internal/domain"
)

// Rule identifiers carried on violations.
const (
	RuleDocumentTypeRequired   = "document_type_required"
	RuleDocumentTypeOutOfScope = "document_type_out_of_scope"
	RuleDocumentTypeInactive   = "document_type_inactive"
	RuleMunicipalityRequired   = "municipality_required"
	RuleMunicipalityMismatch   = "municipality_mismatch"
	RulePurposeRequired        = "purpose_required"
	RulePurposeOtherRequired   = "purpose_other_required"
	RulePurposeOtherUnexpected = "purpose_other_unexpected"
	RuleCivilStatusRequired    = "civil_status_required"
	RuleBusinessTypeRequired   = "business_type_required"
	RuleBusinessTypeUnexpected = "business_type_unexpected"
	RuleRequirementsMissing    = "requirements_missing"
	RuleDeliveryMethodRequired = "delivery_method_required"
	RuleDigitalUnsupported     = "digital_unsupported"
	RulePickupLocationRequired = "pickup_location_required"
	RuleBarangayPickup         = "barangay_pickup_unavailable"
	RuleConsentRequired        = "consent_required"
)

// DocumentRequestDraft is everything known about a request at the moment the
// resident presses submit.
type DocumentRequestDraft struct {
	DocumentType           *domain.DocumentType
	RegisteredMunicipality *domain.Municipality
	RegisteredBarangayID   *int32
	BrowsingMunicipality   *domain.Municipality
	PurposeType            domain.PurposeType
	PurposeOther           string
	CivilStatus            domain.CivilStatus
	BusinessType           string
	DeliveryMethod         domain.DeliveryMethod
	PickupLocation         domain.PickupLocation
	AttachedRequirements   map[string]int
	ConsentAcknowledged    bool
}

// CheckDocumentRequest returns every unmet submission rule. An empty result
// means the request may be submitted.
func CheckDocumentRequest(d DocumentRequestDraft) []domain.Violation {
	var v []domain.Violation
	add := func(field, rule, msg string) {
		v = append(v, domain.Violation{Field: field, Rule: rule, Message: msg})
	}

	// resolved document type, municipality and purpose
	doc := d.DocumentType
	if doc == nil {
		add("document_type_id", RuleDocumentTypeRequired, "Select the document you want to request")
	} else if !doc.IsActive {
		add("document_type_id", RuleDocumentTypeInactive, fmt.Sprintf("%s is no longer offered", doc.Name))
	}

	if d.RegisteredMunicipality == nil {
		add("municipality_id", RuleMunicipalityRequired, "Set your registered municipality in your profile before requesting documents")
	} else if d.BrowsingMunicipality != nil && d.BrowsingMunicipality.ID != d.RegisteredMunicipality.ID {
		add("municipality_id", RuleMunicipalityMismatch, MismatchMessage(d.BrowsingMunicipality, d.RegisteredMunicipality))
	}

	if doc != nil && d.RegisteredMunicipality != nil && !inScope(doc, d.RegisteredMunicipality.ID, d.RegisteredBarangayID) {
		add("document_type_id", RuleDocumentTypeOutOfScope, fmt.Sprintf("%s is not issued for your registered municipality or barangay", doc.Name))
	}

	switch {
	case !d.PurposeType.Valid():
		add("purpose_type", RulePurposeRequired, "Select the purpose of your request")
	case d.PurposeType == domain.PurposeOther && strings.TrimSpace(d.PurposeOther) == "":
		add("purpose_other", RulePurposeOtherRequired, "Describe the purpose of your request")
	case d.PurposeType != domain.PurposeOther && strings.TrimSpace(d.PurposeOther) != "":
		add("purpose_other", RulePurposeOtherUnexpected, "A purpose description is only needed when the purpose is Other")
	}

	if !d.CivilStatus.Valid() {
		add("civil_status", RuleCivilStatusRequired, "Select your civil status")
	}

	if doc != nil {
		_, known := doc.FeeTiers[d.BusinessType]
		switch {
		case doc.HasFeeTiers() && !known:
			add("business_type", RuleBusinessTypeRequired, "Select your business type")
		case !doc.HasFeeTiers() && d.BusinessType != "":
			add("business_type", RuleBusinessTypeUnexpected, fmt.Sprintf("%s does not use a business type", doc.Name))
		}

		if missing := MissingRequirements(doc.Requirements, d.AttachedRequirements); len(missing) > 0 {
			add("requirements", RuleRequirementsMissing, "Upload a file for: "+strings.Join(missing, ", "))
		}
	}

	switch d.DeliveryMethod {
	case domain.DeliveryDigital:
		if doc != nil && !doc.SupportsDigital {
			add("delivery_method", RuleDigitalUnsupported, fmt.Sprintf("%s can only be picked up in person", doc.Name))
		}
	case domain.DeliveryPickup:
		switch d.PickupLocation {
		case domain.PickupMunicipal:
		case domain.PickupBarangay:
			if d.RegisteredBarangayID == nil {
				add("pickup_location", RuleBarangayPickup, "Barangay pickup needs a registered barangay in your profile; choose municipal pickup instead")
			}
		default:
			add("pickup_location", RulePickupLocationRequired, "Choose where you will pick up the document")
		}
	default:
		add("delivery_method", RuleDeliveryMethodRequired, "Choose how you want to receive the document")
	}

	if !d.ConsentAcknowledged {
		add("consent", RuleConsentRequired, "Confirm that the information you provided is true and correct")
	}

	return v
}

// CanSubmitDocumentRequest reports whether the submit control is enabled.
func CanSubmitDocumentRequest(d DocumentRequestDraft) bool {
	return len(CheckDocumentRequest(d)) == 0
}

// MismatchMessage directs the resident back to their registered municipality.
// Requests are never rerouted on the resident's behalf.
func MismatchMessage(browsing, registered *domain.Municipality) string {
	return fmt.Sprintf(
		"You are browsing %s, but you are registered in %s. Document requests must be filed with your registered municipality. Switch to %s to continue.",
		browsing.Name, registered.Name, registered.Name,
	)
}

// MissingRequirements lists requirement labels without an attached file, in
// the document type's order.
func MissingRequirements(requirements []string, attached map[string]int) []string {
	var missing []string
	for _, label := range requirements {
		if attached[label] <= 0 {
			missing = append(missing, label)
		}
	}
	return missing
}

// RequirementsReady reports whether every requirement has a file.
func RequirementsReady(requirements []string, attached map[string]int) bool {
	return len(MissingRequirements(requirements, attached)) == 0
}

func inScope(doc *domain.DocumentType, municipalityID int32, barangayID *int32) bool {
	switch doc.AuthorityLevel {
	case domain.AuthorityBarangay:
		return doc.BarangayID != nil && barangayID != nil && *doc.BarangayID == *barangayID
	default:
		return doc.MunicipalityID == nil || *doc.MunicipalityID == municipalityID
	}
}
