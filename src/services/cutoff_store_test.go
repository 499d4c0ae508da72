package services

import (
	"context"
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/faturamento/backend/src/database"
	"github.com/username/faturamento/backend/src/models"
	"github.com/username/faturamento/backend/src/security/validation"
)

func TestCutoffStoreCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutoff_marcas.json")
	store := NewCutoffStore(path, nil)

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultAdjustments(), got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cutoff_inicial": 0`)
	assert.Contains(t, string(data), "\n  \"LA FONTE\"")
}

func TestCutoffStoreRoundTrip(t *testing.T) {
	store := NewCutoffStore(filepath.Join(t.TempDir(), "cutoff_marcas.json"), nil)
	in := models.AdjustmentMap{
		"PAPAIZ":  {Initial: 1000.125, Final: 0.1},
		"SILVANA": {Initial: 0, Final: 123456789.987},
	}

	saved, err := store.Save(context.Background(), in, "admin")
	require.NoError(t, err)
	assert.Equal(t, in, saved)

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestCutoffStoreMalformedFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutoff_marcas.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	got, err := NewCutoffStore(path, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultAdjustments(), got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data), "malformed file is not overwritten")
}

func TestCutoffStoreValidation(t *testing.T) {
	store := NewCutoffStore(filepath.Join(t.TempDir(), "cutoff_marcas.json"), nil)
	ctx := context.Background()

	cases := map[string]models.AdjustmentMap{
		"nan":       {"PAPAIZ": {Final: math.NaN()}},
		"inf":       {"PAPAIZ": {Initial: math.Inf(1)}},
		"empty key": {"  ": {}},
		"script":    {"<script>x</script>": {}},
		"duplicate": {"papaiz": {}, "PAPAIZ": {}},
	}
	for name, in := range cases {
		_, err := store.Save(ctx, in, "admin")
		assert.ErrorIs(t, err, validation.ErrValidationFailed, name)
	}

	saved, err := store.Save(ctx, models.AdjustmentMap{" <b>la fonte</b> ": {Initial: 5}}, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.AdjustmentMap{"LA FONTE": {Initial: 5}}, saved)
}

func TestCutoffStoreAcceptsNegativeCorrections(t *testing.T) {
	store := NewCutoffStore(filepath.Join(t.TempDir(), "cutoff_marcas.json"), nil)

	want := models.AdjustmentMap{"PAPAIZ": {Initial: -500, Final: -0.25}}
	saved, err := store.Save(context.Background(), want, "admin")
	require.NoError(t, err)
	assert.Equal(t, want, saved)

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCutoffStoreRecordsAudit(t *testing.T) {
	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "meta.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(db))

	store := NewCutoffStore(filepath.Join(dir, "cutoff_marcas.json"), db)
	_, err = store.Save(context.Background(), models.AdjustmentMap{"PAPAIZ": {Initial: 10, Final: 2}, "VAULT": {}}, "admin")
	require.NoError(t, err)

	var (
		count   int
		initial float64
		by      string
	)
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM cutoff_changes").Scan(&count))
	assert.Equal(t, 2, count)
	err = db.QueryRow("SELECT cutoff_initial, changed_by FROM cutoff_changes WHERE brand = ?", "PAPAIZ").Scan(&initial, &by)
	require.NoError(t, err)
	assert.Equal(t, 10.0, initial)
	assert.Equal(t, "admin", by)

	err = db.QueryRow("SELECT brand FROM cutoff_changes WHERE brand = ?", "NONE").Scan(&by)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
