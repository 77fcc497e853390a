package paramdb

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvgrid/helioserve/internal/solar/pvmodule"
)

func TestLoadModules(t *testing.T) {
	t.Parallel()

	db, err := Load(filepath.Join("testdata", "sam_modules.csv"))
	require.NoError(t, err)

	assert.Equal(t, 2, db.Len())
	assert.Equal(t, []string{
		"Canadian_Solar_CS5P_220M__2009_",
		"Example_Module_Model",
	}, db.Names())
}

func TestGetSanitizesLookupName(t *testing.T) {
	t.Parallel()

	db, err := Load(filepath.Join("testdata", "sam_modules.csv"))
	require.NoError(t, err)

	// Raw and sanitized names resolve to the same entry.
	raw, err := db.Get("Canadian Solar CS5P-220M (2009)")
	require.NoError(t, err)
	sanitized, err := db.Get("Canadian_Solar_CS5P_220M__2009_")
	require.NoError(t, err)
	assert.Equal(t, raw, sanitized)

	assert.InDelta(t, 5.09, raw["Isco"], 1e-12)
	assert.InDelta(t, 96, raw["Cells_in_Series"], 1e-12)

	// Non-numeric columns are not carried as coefficients.
	_, hasMaterial := raw["Material"]
	assert.False(t, hasMaterial)
}

func TestGetUnknownName(t *testing.T) {
	t.Parallel()

	db, err := Load(filepath.Join("testdata", "sam_modules.csv"))
	require.NoError(t, err)

	_, err = db.Get("No Such Module")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	t.Parallel()

	db, err := Load(filepath.Join("testdata", "sam_modules.csv"))
	require.NoError(t, err)

	first, err := db.Get("Example_Module_Model")
	require.NoError(t, err)
	first["Isco"] = -1

	second, err := db.Get("Example_Module_Model")
	require.NoError(t, err)
	assert.InDelta(t, 5.0, second["Isco"], 1e-12)
}

func TestModuleEntryDecodesAsSAPMParams(t *testing.T) {
	t.Parallel()

	db, err := Load(filepath.Join("testdata", "sam_modules.csv"))
	require.NoError(t, err)

	entry, err := db.Get("Canadian_Solar_CS5P_220M__2009_")
	require.NoError(t, err)

	params, err := pvmodule.SAPMParamsFromMap(entry)
	require.NoError(t, err)
	assert.InDelta(t, 59.6, params.VOCO, 1e-12)
}

func TestInverterEntryDecodesAsSNLParams(t *testing.T) {
	t.Parallel()

	db, err := Load(filepath.Join("testdata", "sam_inverters.csv"))
	require.NoError(t, err)

	entry, err := db.Get("ABB: MICRO-0.25-I-OUTD-US-208 [CEC 2014]")
	require.NoError(t, err)

	params, err := pvmodule.SNLInverterParamsFromMap(entry)
	require.NoError(t, err)
	assert.InDelta(t, 250, params.Paco, 1e-12)
	assert.InDelta(t, -9.1e-05, params.C1, 1e-18)
}

func TestParseRejectsEmptyDatabase(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("Name,Isco\nUnits,A\n[0],\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no components")
}

func TestParseRejectsDuplicateNames(t *testing.T) {
	t.Parallel()

	csv := "Name,Isco\nUnits,A\n[0],\nSame Module,5\nSame Module,6\n"
	_, err := Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"SunPower_SPR_220_BLK__2007__E18_",
		SanitizeName(`SunPower SPR-220/BLK (2007) E18:`))
}

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	c, err := LoadCatalog(
		filepath.Join("testdata", "sam_modules.csv"),
		filepath.Join("testdata", "sam_inverters.csv"),
	)
	require.NoError(t, err)
	require.NotNil(t, c.Modules)
	require.NotNil(t, c.Inverters)
	assert.Equal(t, 2, c.Modules.Len())
	assert.Equal(t, 2, c.Inverters.Len())
}

func TestLoadCatalogOptionalPaths(t *testing.T) {
	t.Parallel()

	c, err := LoadCatalog("", "")
	require.NoError(t, err)
	assert.Nil(t, c.Modules)
	assert.Nil(t, c.Inverters)

	_, err = LoadCatalog(filepath.Join("testdata", "missing.csv"), "")
	require.Error(t, err)
}
