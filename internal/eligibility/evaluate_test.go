package eligibility

import (
	"testing"
	"time"

	"munlink-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func dob(years, months, days int) *time.Time {
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(-years, -months, -days)
	return &d
}

func TestEvaluate_NoTags(t *testing.T) {
	applicants := []Applicant{
		{},
		{DateOfBirth: dob(5, 0, 0)},
		{MunicipalityID: ptr(int32(3))},
	}

	for _, criteria := range []*domain.EligibilityCriteria{nil, {}} {
		for _, a := range applicants {
			res := Evaluate(criteria, a, ptr(int32(7)), now)
			assert.False(t, res.HasTags)
			assert.True(t, res.Overall)
			assert.True(t, res.RequiresExplanation())
			assert.Empty(t, res.Reasons())
		}
	}
}

func TestEvaluate_AgeBoundary(t *testing.T) {
	criteria := &domain.EligibilityCriteria{AgeMin: ptr(18)}

	t.Run("Exactly eighteen today", func(t *testing.T) {
		res := Evaluate(criteria, Applicant{DateOfBirth: dob(18, 0, 0)}, nil, now)
		assert.True(t, res.HasTags)
		assert.True(t, res.Age.Required)
		assert.True(t, res.Age.Passed)
		assert.Equal(t, 18, *res.Age.Value)
		assert.True(t, res.Overall)
		assert.Contains(t, res.Age.Message, "✅")
		assert.False(t, res.RequiresExplanation())
	})

	t.Run("One day short of eighteen", func(t *testing.T) {
		short := dob(18, 0, -1)
		res := Evaluate(criteria, Applicant{DateOfBirth: short}, nil, now)
		assert.False(t, res.Age.Passed)
		assert.Equal(t, 17, *res.Age.Value)
		assert.False(t, res.Overall)
		assert.Contains(t, res.Age.Message, "❌")
		assert.Equal(t, []string{res.Age.Message}, res.Reasons())
	})

	t.Run("Missing date of birth", func(t *testing.T) {
		res := Evaluate(criteria, Applicant{}, nil, now)
		assert.True(t, res.Age.Required)
		assert.False(t, res.Age.Passed)
		assert.Nil(t, res.Age.Value)
		assert.Contains(t, res.Age.Message, "Date of birth")
		assert.False(t, res.Overall)
	})
}

func TestEvaluate_AgeRange(t *testing.T) {
	criteria := &domain.EligibilityCriteria{AgeMin: ptr(60), AgeMax: ptr(65)}

	tests := []struct {
		age    int
		passed bool
	}{
		{59, false},
		{60, true},
		{63, true},
		{65, true},
		{66, false},
	}

	for _, tt := range tests {
		res := Evaluate(criteria, Applicant{DateOfBirth: dob(tt.age, 0, 0)}, nil, now)
		assert.Equal(t, tt.passed, res.Age.Passed, "age %d", tt.age)
		assert.Equal(t, tt.passed, res.Overall, "age %d", tt.age)
		assert.Contains(t, res.Age.Message, "60-65")
	}
}

func TestEvaluate_Location(t *testing.T) {
	criteria := &domain.EligibilityCriteria{LocationRequired: true}

	t.Run("Mismatch", func(t *testing.T) {
		res := Evaluate(criteria, Applicant{MunicipalityID: ptr(int32(5))}, ptr(int32(7)), now)
		assert.True(t, res.Location.Required)
		assert.False(t, res.Location.Passed)
		assert.False(t, res.Overall)
		assert.Contains(t, res.Location.Message, "❌")
	})

	t.Run("Same municipality", func(t *testing.T) {
		res := Evaluate(criteria, Applicant{MunicipalityID: ptr(int32(7))}, ptr(int32(7)), now)
		assert.True(t, res.Location.Passed)
		assert.True(t, res.Overall)
	})

	t.Run("Applicant without municipality", func(t *testing.T) {
		res := Evaluate(criteria, Applicant{}, ptr(int32(7)), now)
		assert.False(t, res.Location.Passed)
		assert.Equal(t, msgLocationMissing, res.Location.Message)
	})

	t.Run("Province wide program", func(t *testing.T) {
		res := Evaluate(criteria, Applicant{MunicipalityID: ptr(int32(5))}, nil, now)
		assert.True(t, res.Location.Passed)
	})

	t.Run("Age not required when only location is tagged", func(t *testing.T) {
		res := Evaluate(criteria, Applicant{MunicipalityID: ptr(int32(7))}, ptr(int32(7)), now)
		assert.False(t, res.Age.Required)
		assert.True(t, res.HasTags)
	})
}

func TestEvaluate_Combined(t *testing.T) {
	criteria := &domain.EligibilityCriteria{AgeMin: ptr(18), LocationRequired: true}
	res := Evaluate(criteria, Applicant{DateOfBirth: dob(17, 0, 0), MunicipalityID: ptr(int32(5))}, ptr(int32(7)), now)

	assert.False(t, res.Overall)
	assert.Len(t, res.Reasons(), 2)
}

func TestEvaluate_LegacyAge(t *testing.T) {
	t.Run("Legacy string", func(t *testing.T) {
		criteria := &domain.EligibilityCriteria{Age: ">=18"}
		assert.True(t, Evaluate(criteria, Applicant{DateOfBirth: dob(18, 0, 0)}, nil, now).Overall)
		assert.False(t, Evaluate(criteria, Applicant{DateOfBirth: dob(17, 0, 0)}, nil, now).Overall)
	})

	t.Run("Explicit minimum wins over legacy string", func(t *testing.T) {
		criteria := &domain.EligibilityCriteria{Age: ">=18", AgeMin: ptr(21)}
		res := Evaluate(criteria, Applicant{DateOfBirth: dob(19, 0, 0)}, nil, now)
		assert.False(t, res.Age.Passed)
	})

	t.Run("Unreadable legacy string fails closed", func(t *testing.T) {
		criteria := &domain.EligibilityCriteria{Age: "adults", LocationRequired: true}
		res := Evaluate(criteria, Applicant{DateOfBirth: dob(40, 0, 0), MunicipalityID: ptr(int32(7))}, ptr(int32(7)), now)
		assert.True(t, res.HasTags)
		assert.True(t, res.Age.Required)
		assert.False(t, res.Age.Passed)
		assert.True(t, res.Location.Passed)
		assert.False(t, res.Overall)
	})
}

func TestParseLegacyAge(t *testing.T) {
	tests := []struct {
		raw string
		lo  *int
		hi  *int
	}{
		{">=18", ptr(18), nil},
		{">= 18", ptr(18), nil},
		{">17", ptr(18), nil},
		{"<=65", nil, ptr(65)},
		{"<66", nil, ptr(65)},
		{"60-65", ptr(60), ptr(65)},
		{"18+", ptr(18), nil},
		{"18", ptr(18), nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			lo, hi, err := ParseLegacyAge(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}

	for _, raw := range []string{"", "adults", "65-60", "<0", ">=x", "-5"} {
		_, _, err := ParseLegacyAge(raw)
		assert.ErrorIs(t, err, ErrInvalidAgeTag, raw)
	}
}

func TestParseCriteria(t *testing.T) {
	rules, err := ParseCriteria(&domain.EligibilityCriteria{AgeMin: ptr(60), AgeMax: ptr(65), LocationRequired: true})
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, AgeRange{Min: 60, Max: ptr(65)}, rules[0])
	assert.Equal(t, LocationRequired{}, rules[1])

	rules, err = ParseCriteria(&domain.EligibilityCriteria{AgeMin: ptr(30), AgeMax: ptr(20)})
	assert.ErrorIs(t, err, ErrInvalidAgeTag)
	assert.Empty(t, rules)
}

func TestNormalizeCriteria(t *testing.T) {
	t.Run("Legacy rewritten", func(t *testing.T) {
		out, err := NormalizeCriteria(&domain.EligibilityCriteria{Age: "18-30", LocationRequired: true})
		require.NoError(t, err)
		assert.Equal(t, &domain.EligibilityCriteria{AgeMin: ptr(18), AgeMax: ptr(30), LocationRequired: true}, out)
	})

	t.Run("Empty becomes nil", func(t *testing.T) {
		out, err := NormalizeCriteria(&domain.EligibilityCriteria{})
		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("Invalid rejected", func(t *testing.T) {
		_, err := NormalizeCriteria(&domain.EligibilityCriteria{Age: "old"})
		assert.ErrorIs(t, err, ErrInvalidAgeTag)
	})
}

func TestAgeRangeDescribe(t *testing.T) {
	assert.Equal(t, "18+", AgeRange{Min: 18}.Describe())
	assert.Equal(t, "60-65", AgeRange{Min: 60, Max: ptr(65)}.Describe())
	assert.Equal(t, "up to 30", AgeRange{Max: ptr(30)}.Describe())
}
