// Package taxonomy normalizes arbitrary or legacy cost-category identifiers
// to the canonical vocabulary. The catalog is built once at process start
// and is read-only afterwards; it is injected into every component that
// needs it rather than living in package-level state.
package taxonomy

import (
	"sort"
	"strings"

	"github.com/dortega/finz/internal/domain"
)

// Catalog is the immutable lookup over canonical categories and legacy
// aliases. Lookups are O(1) map reads; no locking is needed because the
// catalog never changes after construction.
type Catalog struct {
	categories map[string]domain.CanonicalCategory
	aliases    map[string]string
	groups     map[string][]string
}

// NewCatalog validates the category set and alias map and builds the
// resolver. It fails when codes are malformed or duplicated, or when an
// alias points at a code that does not exist.
func NewCatalog(categories []domain.CanonicalCategory, aliases map[string]string) (*Catalog, error) {
	if len(categories) == 0 {
		return nil, domain.NewValidationError("categories", "catalog requires at least one canonical category")
	}

	c := &Catalog{
		categories: make(map[string]domain.CanonicalCategory, len(categories)),
		aliases:    make(map[string]string, len(aliases)),
		groups:     make(map[string][]string),
	}

	for _, cat := range categories {
		if err := cat.ValidateCode(); err != nil {
			return nil, err
		}
		if _, dup := c.categories[cat.Code]; dup {
			return nil, domain.NewValidationError("categories", "duplicate canonical code %q", cat.Code)
		}
		if cat.Group == "" {
			return nil, domain.NewValidationError("categories", "category %q is missing a group", cat.Code)
		}
		c.categories[cat.Code] = cat
		c.groups[cat.Group] = append(c.groups[cat.Group], cat.Code)
	}

	for alias, code := range aliases {
		key := Normalize(alias)
		if key == "" {
			return nil, domain.NewValidationError("aliases", "empty alias for code %q", code)
		}
		if _, ok := c.categories[code]; !ok {
			return nil, domain.NewValidationError("aliases", "alias %q maps to unknown code %q", alias, code)
		}
		if prior, dup := c.aliases[key]; dup && prior != code {
			return nil, domain.NewValidationError("aliases", "alias %q maps to both %q and %q", alias, prior, code)
		}
		c.aliases[key] = code
	}

	for _, codes := range c.groups {
		sort.Strings(codes)
	}
	return c, nil
}

// Resolve maps an identifier to a canonical code. Canonical codes pass
// through unchanged; anything else goes through the legacy alias map.
// Unknown identifiers return a typed UnresolvedIdentifierError so callers
// can report the offending value; they are never silently coerced.
func (c *Catalog) Resolve(identifier string) (string, error) {
	trimmed := strings.TrimSpace(identifier)
	if _, ok := c.categories[trimmed]; ok {
		return trimmed, nil
	}
	if code, ok := c.aliases[Normalize(identifier)]; ok {
		return code, nil
	}
	return "", &domain.UnresolvedIdentifierError{Identifier: identifier}
}

// Category returns the canonical category for a code.
func (c *Catalog) Category(code string) (domain.CanonicalCategory, bool) {
	cat, ok := c.categories[code]
	return cat, ok
}

// Codes returns all canonical codes in sorted order.
func (c *Catalog) Codes() []string {
	out := make([]string, 0, len(c.categories))
	for code := range c.categories {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Groups returns all category groups in sorted order.
func (c *Catalog) Groups() []string {
	out := make([]string, 0, len(c.groups))
	for g := range c.groups {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// GroupCodes returns the sorted codes belonging to a group.
func (c *Catalog) GroupCodes(group string) []string {
	return c.groups[group]
}

// Normalize folds the naming-scheme noise observed in historical data:
// case, surrounding whitespace, and underscore/whitespace run differences.
// "MOD_Ingenieros" and " mod ingenieros " normalize identically.
func Normalize(identifier string) string {
	fields := strings.FieldsFunc(strings.ToUpper(strings.TrimSpace(identifier)), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '_'
	})
	return strings.Join(fields, " ")
}
