package domain

import "regexp"

var categoryCodePattern = regexp.MustCompile(`^[A-Z]{2,10}-[A-Z0-9]{2,12}$`)

// CanonicalCategory is one fixed cost-classification code in the taxonomy.
// The set is loaded once at process start and never mutated afterwards.
type CanonicalCategory struct {
	Code      string
	Group     string
	Label     string
	Execution ExecutionType
	CostClass CostClass
	SourceRef string
}

// ValidateCode checks the GROUP-SUFFIX code shape.
func (c *CanonicalCategory) ValidateCode() error {
	if !categoryCodePattern.MatchString(c.Code) {
		return NewValidationError("code",
			"category code %q must match GROUP-SUFFIX (uppercase, e.g. LABOR-ENG)", c.Code)
	}
	return nil
}
