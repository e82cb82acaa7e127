package eligibility

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"munlink-backend/internal/domain"
)

var ErrInvalidAgeTag = errors.New("invalid age tag")

// Rule is one parsed eligibility tag. The set of implementations is closed:
// AgeRange and LocationRequired.
type Rule interface {
	rule()
}

// AgeRange requires Min <= age and, when Max is set, age <= Max.
type AgeRange struct {
	Min int
	Max *int
}

// LocationRequired requires residency in the program's municipality.
type LocationRequired struct{}

func (AgeRange) rule()         {}
func (LocationRequired) rule() {}

// Describe renders the range the way residents read it: "18+", "60-65", "up to 30".
func (a AgeRange) Describe() string {
	switch {
	case a.Max == nil:
		return fmt.Sprintf("%d+", a.Min)
	case a.Min == 0:
		return fmt.Sprintf("up to %d", *a.Max)
	default:
		return fmt.Sprintf("%d-%d", a.Min, *a.Max)
	}
}

// ParseCriteria turns stored criteria into rules. Explicit age_min/age_max
// take precedence over the legacy age string. On a malformed legacy age the
// rules that could be read are returned together with the error.
func ParseCriteria(c *domain.EligibilityCriteria) ([]Rule, error) {
	if c.IsEmpty() {
		return nil, nil
	}

	var rules []Rule
	var parseErr error

	if c.AgeMin != nil || c.AgeMax != nil || c.Age != "" {
		age, err := ageRange(c)
		if err != nil {
			parseErr = err
		} else {
			rules = append(rules, age)
		}
	}

	if c.LocationRequired {
		rules = append(rules, LocationRequired{})
	}

	return rules, parseErr
}

func ageRange(c *domain.EligibilityCriteria) (AgeRange, error) {
	var lo, hi *int
	if c.Age != "" {
		legacyLo, legacyHi, err := ParseLegacyAge(c.Age)
		if err != nil && c.AgeMin == nil && c.AgeMax == nil {
			return AgeRange{}, err
		}
		if err == nil {
			lo, hi = legacyLo, legacyHi
		}
	}
	if c.AgeMin != nil {
		lo = c.AgeMin
	}
	if c.AgeMax != nil {
		hi = c.AgeMax
	}

	r := AgeRange{Max: hi}
	if lo != nil {
		r.Min = *lo
	}
	if r.Min < 0 || (r.Max != nil && *r.Max < r.Min) {
		return AgeRange{}, fmt.Errorf("%w: range %s is empty", ErrInvalidAgeTag, r.Describe())
	}
	return r, nil
}

// ParseLegacyAge reads the string encodings found on older programs:
// ">=18", ">18", "<=65", "<65", "18-65", "18+" and a bare "18".
func ParseLegacyAge(raw string) (lo, hi *int, err error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if s == "" {
		return nil, nil, fmt.Errorf("%w: empty", ErrInvalidAgeTag)
	}

	num := func(v string) (int, error) {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAgeTag, raw)
		}
		return n, nil
	}

	switch {
	case strings.HasPrefix(s, ">="):
		n, err := num(s[2:])
		return intPtr(n), nil, err
	case strings.HasPrefix(s, ">"):
		n, err := num(s[1:])
		return intPtr(n + 1), nil, err
	case strings.HasPrefix(s, "<="):
		n, err := num(s[2:])
		return nil, intPtr(n), err
	case strings.HasPrefix(s, "<"):
		n, err := num(s[1:])
		if err == nil && n == 0 {
			err = fmt.Errorf("%w: %q", ErrInvalidAgeTag, raw)
		}
		return nil, intPtr(n - 1), err
	case strings.HasSuffix(s, "+"):
		n, err := num(strings.TrimSuffix(s, "+"))
		return intPtr(n), nil, err
	case strings.Contains(s, "-"):
		left, right, _ := strings.Cut(s, "-")
		a, err := num(left)
		if err != nil {
			return nil, nil, err
		}
		b, err := num(right)
		if err != nil {
			return nil, nil, err
		}
		if b < a {
			return nil, nil, fmt.Errorf("%w: %q", ErrInvalidAgeTag, raw)
		}
		return intPtr(a), intPtr(b), nil
	default:
		n, err := num(s)
		return intPtr(n), nil, err
	}
}

// NormalizeCriteria rewrites a legacy age string into age_min/age_max so
// newly stored programs carry a single encoding. Empty criteria become nil.
func NormalizeCriteria(c *domain.EligibilityCriteria) (*domain.EligibilityCriteria, error) {
	if c.IsEmpty() {
		return nil, nil
	}

	out := &domain.EligibilityCriteria{LocationRequired: c.LocationRequired}
	if c.AgeMin != nil || c.AgeMax != nil || c.Age != "" {
		r, err := ageRange(c)
		if err != nil {
			return nil, err
		}
		out.AgeMin = intPtr(r.Min)
		out.AgeMax = r.Max
	}
	return out, nil
}

func intPtr(v int) *int {
	return &v
}
