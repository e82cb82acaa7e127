package workflow

import (
	"errors"
	"testing"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/eligibility"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

var (
	iba      = &domain.Municipality{ID: 5, Name: "Iba"}
	botolan  = &domain.Municipality{ID: 7, Name: "Botolan"}
	cedula   = &domain.DocumentType{ID: 1, Name: "Community Tax Certificate", IsActive: true, Fee: decimal.NewFromInt(50), AuthorityLevel: domain.AuthorityMunicipal, MunicipalityID: ptr(int32(5)), Requirements: []string{"Valid ID"}, SupportsDigital: true}
	business = &domain.DocumentType{ID: 2, Name: "Business Clearance", IsActive: true, Fee: decimal.NewFromInt(100), AuthorityLevel: domain.AuthorityMunicipal, MunicipalityID: ptr(int32(5)), FeeTiers: map[string]decimal.Decimal{"big_business": decimal.NewFromInt(500)}}
)

func validDraft() DocumentRequestDraft {
	return DocumentRequestDraft{
		DocumentType:           cedula,
		RegisteredMunicipality: iba,
		RegisteredBarangayID:   ptr(int32(51)),
		BrowsingMunicipality:   iba,
		PurposeType:            domain.PurposeEmployment,
		CivilStatus:            domain.CivilStatusSingle,
		DeliveryMethod:         domain.DeliveryPickup,
		PickupLocation:         domain.PickupMunicipal,
		AttachedRequirements:   map[string]int{"Valid ID": 1},
		ConsentAcknowledged:    true,
	}
}

func rules(v []domain.Violation) []string {
	out := make([]string, 0, len(v))
	for _, x := range v {
		out = append(out, x.Rule)
	}
	return out
}

func TestCheckDocumentRequest_Valid(t *testing.T) {
	assert.Empty(t, CheckDocumentRequest(validDraft()))
	assert.True(t, CanSubmitDocumentRequest(validDraft()))
}

func TestCheckDocumentRequest_RequirementToggle(t *testing.T) {
	d := validDraft()
	d.AttachedRequirements = map[string]int{}
	assert.False(t, CanSubmitDocumentRequest(d))
	assert.Equal(t, []string{RuleRequirementsMissing}, rules(CheckDocumentRequest(d)))

	d.AttachedRequirements["Valid ID"] = 1
	assert.True(t, CanSubmitDocumentRequest(d))

	delete(d.AttachedRequirements, "Valid ID")
	assert.False(t, CanSubmitDocumentRequest(d))
}

func TestCheckDocumentRequest_MunicipalityMismatch(t *testing.T) {
	d := validDraft()
	d.BrowsingMunicipality = botolan

	v := CheckDocumentRequest(d)
	require.Len(t, v, 1)
	assert.Equal(t, RuleMunicipalityMismatch, v[0].Rule)
	assert.Equal(t, "You are browsing Botolan, but you are registered in Iba. Document requests must be filed with your registered municipality. Switch to Iba to continue.", v[0].Message)
}

func TestCheckDocumentRequest_Rules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *DocumentRequestDraft)
		rule   string
	}{
		{"No document type", func(d *DocumentRequestDraft) { d.DocumentType = nil; d.AttachedRequirements = nil }, RuleDocumentTypeRequired},
		{"Inactive document type", func(d *DocumentRequestDraft) {
			doc := *cedula
			doc.IsActive = false
			d.DocumentType = &doc
		}, RuleDocumentTypeInactive},
		{"Document type of another municipality", func(d *DocumentRequestDraft) {
			doc := *cedula
			doc.MunicipalityID = ptr(int32(7))
			d.DocumentType = &doc
		}, RuleDocumentTypeOutOfScope},
		{"Barangay document of another barangay", func(d *DocumentRequestDraft) {
			doc := *cedula
			doc.AuthorityLevel = domain.AuthorityBarangay
			doc.BarangayID = ptr(int32(99))
			d.DocumentType = &doc
		}, RuleDocumentTypeOutOfScope},
		{"No registered municipality", func(d *DocumentRequestDraft) { d.RegisteredMunicipality = nil }, RuleMunicipalityRequired},
		{"No purpose", func(d *DocumentRequestDraft) { d.PurposeType = "" }, RulePurposeRequired},
		{"Other without description", func(d *DocumentRequestDraft) { d.PurposeType = domain.PurposeOther }, RulePurposeOtherRequired},
		{"Description without other", func(d *DocumentRequestDraft) { d.PurposeOther = "scholarship" }, RulePurposeOtherUnexpected},
		{"No civil status", func(d *DocumentRequestDraft) { d.CivilStatus = "" }, RuleCivilStatusRequired},
		{"Business type on untiered document", func(d *DocumentRequestDraft) { d.BusinessType = "big_business" }, RuleBusinessTypeUnexpected},
		{"No delivery method", func(d *DocumentRequestDraft) { d.DeliveryMethod = "" }, RuleDeliveryMethodRequired},
		{"No pickup location", func(d *DocumentRequestDraft) { d.PickupLocation = "" }, RulePickupLocationRequired},
		{"Barangay pickup without barangay", func(d *DocumentRequestDraft) {
			d.PickupLocation = domain.PickupBarangay
			d.RegisteredBarangayID = nil
		}, RuleBarangayPickup},
		{"No consent", func(d *DocumentRequestDraft) { d.ConsentAcknowledged = false }, RuleConsentRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			assert.Contains(t, rules(CheckDocumentRequest(d)), tt.rule)
			assert.False(t, CanSubmitDocumentRequest(d))
		})
	}
}

func TestCheckDocumentRequest_Delivery(t *testing.T) {
	t.Run("Digital when supported", func(t *testing.T) {
		d := validDraft()
		d.DeliveryMethod = domain.DeliveryDigital
		d.PickupLocation = ""
		assert.Empty(t, CheckDocumentRequest(d))
	})

	t.Run("Digital when not supported", func(t *testing.T) {
		d := validDraft()
		doc := *cedula
		doc.SupportsDigital = false
		d.DocumentType = &doc
		d.DeliveryMethod = domain.DeliveryDigital
		assert.Equal(t, []string{RuleDigitalUnsupported}, rules(CheckDocumentRequest(d)))
	})

	t.Run("Barangay pickup with barangay", func(t *testing.T) {
		d := validDraft()
		d.PickupLocation = domain.PickupBarangay
		assert.Empty(t, CheckDocumentRequest(d))
	})
}

func TestCheckDocumentRequest_BusinessType(t *testing.T) {
	d := validDraft()
	d.DocumentType = business
	d.AttachedRequirements = nil

	assert.Equal(t, []string{RuleBusinessTypeRequired}, rules(CheckDocumentRequest(d)))

	d.BusinessType = "unknown"
	assert.Equal(t, []string{RuleBusinessTypeRequired}, rules(CheckDocumentRequest(d)))

	d.BusinessType = "big_business"
	assert.Empty(t, CheckDocumentRequest(d))
}

func TestMissingRequirements(t *testing.T) {
	reqs := []string{"Valid ID", "Cedula", "Proof of Residency"}
	assert.Equal(t, []string{"Cedula"}, MissingRequirements(reqs, map[string]int{"Valid ID": 1, "Proof of Residency": 2}))
	assert.Equal(t, reqs, MissingRequirements(reqs, nil))
	assert.True(t, RequirementsReady(nil, nil))
}

func openProgram() *domain.Program {
	return &domain.Program{ID: 1, Name: "Ayuda", IsActive: true}
}

func TestCheckApplication(t *testing.T) {
	open := eligibility.Result{HasTags: false, Overall: true}
	tagged := eligibility.Result{HasTags: true, Overall: true}

	t.Run("No tags requires an explanation letter", func(t *testing.T) {
		d := ApplicationDraft{Program: openProgram(), Eligibility: open}
		err := CheckApplication(d)
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.True(t, verr.HasRule(RuleExplanationRequired))

		d.ApplicationData = map[string]string{domain.ApplicationDataExplanationLetter: "I lost my job during the typhoon."}
		assert.NoError(t, CheckApplication(d))
	})

	t.Run("Tagged program allows empty notes", func(t *testing.T) {
		assert.NoError(t, CheckApplication(ApplicationDraft{Program: openProgram(), Eligibility: tagged}))
	})

	t.Run("Ineligible applicant", func(t *testing.T) {
		res := eligibility.Result{
			HasTags: true,
			Overall: false,
			Age:     eligibility.Check{Required: true, Passed: false, Message: "❌ Age requirement not met"},
		}
		err := CheckApplication(ApplicationDraft{Program: openProgram(), Eligibility: res})
		var eerr *domain.EligibilityError
		require.True(t, errors.As(err, &eerr))
		assert.Equal(t, []string{"❌ Age requirement not met"}, eerr.Reasons)
	})

	t.Run("Requirements need an attachment", func(t *testing.T) {
		p := openProgram()
		p.Requirements = []string{"Barangay Certificate of Indigency"}
		d := ApplicationDraft{Program: p, Eligibility: tagged}
		assert.False(t, CanSubmitApplication(d))

		d.AttachmentCount = 1
		assert.True(t, CanSubmitApplication(d))
	})

	t.Run("Retired program", func(t *testing.T) {
		p := openProgram()
		p.IsActive = false
		err := CheckApplication(ApplicationDraft{Program: p, Eligibility: tagged})
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.True(t, verr.HasRule(RuleProgramInactive))
	})

	t.Run("Missing program", func(t *testing.T) {
		err := CheckApplication(ApplicationDraft{Eligibility: open})
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.True(t, verr.HasRule(RuleProgramRequired))
	})
}
