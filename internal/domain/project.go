package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

var projectCodePattern = regexp.MustCompile(`^[A-Z]{2,6}-[A-Z0-9]{2,8}$`)

type Project struct {
	ID            string
	Code          string
	Name          string
	Client        string
	Currency      string
	ContractValue decimal.Decimal
	StartDate     time.Time
	EndDate       *time.Time
	MonthlyBudget *decimal.Decimal

	// ActiveBaselineID points at the single accepted baseline whose line
	// items feed the live forecast. Nil until a first baseline is accepted.
	ActiveBaselineID *string

	Status    ProjectStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateCode checks that Code is non-empty and matches the required
// format: 2-6 uppercase letters, a dash, then 2-8 letters/digits
// (e.g. NET-MX01, SEC-0042).
func (p *Project) ValidateCode() error {
	if p.Code == "" {
		return NewValidationError("code", "project code is required")
	}
	if !projectCodePattern.MatchString(p.Code) {
		return NewValidationError("code",
			"project code %q must be 2-6 uppercase letters, a dash, then 2-8 letters/digits (e.g. NET-MX01)", p.Code)
	}
	return nil
}

// DisplayID returns the best short identifier for display.
func (p *Project) DisplayID() string {
	if p.Code != "" {
		return p.Code
	}
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}

// MonthRange is an inclusive 1-based month window relative to project start.
type MonthRange struct {
	Start int
	End   int
}

// Validate checks the range is well formed.
func (r MonthRange) Validate() error {
	if r.Start < 1 {
		return NewValidationError("monthRange", "start month %d must be >= 1", r.Start)
	}
	if r.End < r.Start {
		return NewValidationError("monthRange", "end month %d precedes start month %d", r.End, r.Start)
	}
	return nil
}

// Months returns the number of months covered by the range.
func (r MonthRange) Months() int {
	return r.End - r.Start + 1
}

// Contains reports whether month falls inside the range.
func (r MonthRange) Contains(month int) bool {
	return month >= r.Start && month <= r.End
}

// String renders the range for logs and error messages.
func (r MonthRange) String() string {
	return fmt.Sprintf("[%d..%d]", r.Start, r.End)
}
