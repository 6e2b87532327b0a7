package taxonomy

import (
	"errors"
	"testing"

	"github.com/dortega/finz/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_CanonicalPassThrough(t *testing.T) {
	c := DefaultCatalog()

	code, err := c.Resolve("LABOR-ENG")
	require.NoError(t, err)
	assert.Equal(t, "LABOR-ENG", code)

	// Surrounding whitespace is tolerated for canonical codes too.
	code, err = c.Resolve("  SW-LIC ")
	require.NoError(t, err)
	assert.Equal(t, "SW-LIC", code)
}

func TestResolve_LegacyAliases(t *testing.T) {
	c := DefaultCatalog()

	cases := map[string]string{
		"MOD Ingenieros":  "LABOR-ENG",
		"mod_ingenieros":  "LABOR-ENG",
		"MOD_INGENIEROS":  "LABOR-ENG",
		" mod ingenieros": "LABOR-ENG",
		"Viajes":          "TRAVEL-AIR",
		"noc_compartido":  "SERVICES-NOC",
		"LICENCIAS":       "SW-LIC",
	}
	for in, want := range cases {
		code, err := c.Resolve(in)
		require.NoError(t, err, "resolving %q", in)
		assert.Equal(t, want, code, "resolving %q", in)
	}
}

func TestResolve_UnknownIdentifier(t *testing.T) {
	c := DefaultCatalog()

	_, err := c.Resolve("misc_overhead")
	var ue *domain.UnresolvedIdentifierError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "misc_overhead", ue.Identifier, "rejection carries the offending value")
}

func TestNewCatalog_RejectsBrokenInput(t *testing.T) {
	good := domain.CanonicalCategory{Code: "LABOR-ENG", Group: "labor", Label: "Engineering"}

	t.Run("empty set", func(t *testing.T) {
		_, err := NewCatalog(nil, nil)
		require.Error(t, err)
	})

	t.Run("malformed code", func(t *testing.T) {
		_, err := NewCatalog([]domain.CanonicalCategory{{Code: "labor_eng", Group: "labor"}}, nil)
		require.Error(t, err)
	})

	t.Run("duplicate code", func(t *testing.T) {
		_, err := NewCatalog([]domain.CanonicalCategory{good, good}, nil)
		require.Error(t, err)
	})

	t.Run("missing group", func(t *testing.T) {
		_, err := NewCatalog([]domain.CanonicalCategory{{Code: "LABOR-ENG"}}, nil)
		require.Error(t, err)
	})

	t.Run("alias to unknown code", func(t *testing.T) {
		_, err := NewCatalog([]domain.CanonicalCategory{good}, map[string]string{"x": "NOPE-XX"})
		require.Error(t, err)
	})

	t.Run("conflicting aliases", func(t *testing.T) {
		other := domain.CanonicalCategory{Code: "LABOR-SDM", Group: "labor"}
		_, err := NewCatalog([]domain.CanonicalCategory{good, other}, map[string]string{
			"mod_eng": "LABOR-ENG",
			"MOD ENG": "LABOR-SDM",
		})
		require.Error(t, err)
	})
}

func TestCatalog_GroupsAndCodes(t *testing.T) {
	c := DefaultCatalog()

	codes := c.Codes()
	assert.NotEmpty(t, codes)
	for _, g := range c.Groups() {
		assert.NotEmpty(t, c.GroupCodes(g), "every group must contain at least one code")
	}

	cat, ok := c.Category("HW-EQUIP")
	require.True(t, ok)
	assert.Equal(t, domain.CostCapital, cat.CostClass)
	assert.Equal(t, domain.ExecutionOneTime, cat.Execution)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "MOD INGENIEROS", Normalize("  mod_Ingenieros "))
	assert.Equal(t, "MOD INGENIEROS", Normalize("MOD  INGENIEROS"))
	assert.Equal(t, "", Normalize("   "))
}
