package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/username/faturamento/backend/src/logger"
	"github.com/username/faturamento/backend/src/models"
	"github.com/username/faturamento/backend/src/security/validation"
)

// DefaultCutoffBrands are created with zero adjustments when no store exists.
var DefaultCutoffBrands = []string{"LA FONTE", "PAPAIZ", "SILVANA", "VAULT"}

// DefaultAdjustments returns a fresh zeroed map for DefaultCutoffBrands.
func DefaultAdjustments() models.AdjustmentMap {
	out := make(models.AdjustmentMap, len(DefaultCutoffBrands))
	for _, brand := range DefaultCutoffBrands {
		out[brand] = models.BrandAdjustment{}
	}
	return out
}

// CutoffStore persists the per-brand cutoff adjustments as a human-editable JSON file.
// Saves also append one audit row per brand to cutoff_changes when a DB is set.
type CutoffStore struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func NewCutoffStore(path string, db *sql.DB) *CutoffStore {
	return &CutoffStore{path: path, db: db}
}

// Load reads the store, creating it with defaults when it does not exist.
// An unreadable or malformed file yields the defaults and a warning; the file is left as is.
func (s *CutoffStore) Load() (models.AdjustmentMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		defaults := DefaultAdjustments()
		if werr := s.writeFile(defaults); werr != nil {
			return nil, werr
		}
		logger.L.Info("Cutoff store created with defaults", "path", s.path)
		return defaults, nil
	}
	if err != nil {
		logger.L.Warn("Could not read cutoff store, using defaults", "path", s.path, "error", err)
		return DefaultAdjustments(), nil
	}

	var adjustments models.AdjustmentMap
	if err := json.Unmarshal(data, &adjustments); err != nil {
		logger.L.Warn("Cutoff store is malformed, using defaults", "path", s.path, "error", err)
		return DefaultAdjustments(), nil
	}
	if adjustments == nil {
		adjustments = models.AdjustmentMap{}
	}
	return adjustments, nil
}

// Save validates and fully overwrites the store. Values round-trip exactly.
func (s *CutoffStore) Save(ctx context.Context, adjustments models.AdjustmentMap, changedBy string) (models.AdjustmentMap, error) {
	clean, err := NormalizeAdjustments(adjustments)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeFile(clean); err != nil {
		return nil, err
	}
	s.recordChanges(ctx, clean, changedBy)
	return clean, nil
}

// NormalizeAdjustments sanitizes and upper-cases brand keys and rejects
// non-finite values. Negative corrections are allowed.
func NormalizeAdjustments(adjustments models.AdjustmentMap) (models.AdjustmentMap, error) {
	clean := make(models.AdjustmentMap, len(adjustments))
	for brand, adj := range adjustments {
		if err := validation.CheckXSSPatterns(brand, "brand", "cutoff"); err != nil {
			return nil, err
		}
		key := validation.SanitizeBrandKey(brand)
		if err := validation.ValidateBrand(key); err != nil {
			return nil, err
		}
		for name, v := range map[string]float64{"cutoff_inicial": adj.Initial, "cutoff_final": adj.Final} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: %s for %s must be a finite number", validation.ErrValidationFailed, name, key)
			}
		}
		if _, dup := clean[key]; dup {
			return nil, fmt.Errorf("%w: brand %s given more than once", validation.ErrValidationFailed, key)
		}
		clean[key] = adj
	}
	return clean, nil
}

func (s *CutoffStore) writeFile(adjustments models.AdjustmentMap) error {
	data, err := json.MarshalIndent(adjustments, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode cutoff store: %v", ErrPersistenceFailure, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create cutoff directory: %v", ErrPersistenceFailure, err)
	}
	tmp, err := os.CreateTemp(dir, ".cutoff-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp cutoff file: %v", ErrPersistenceFailure, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write cutoff store: %v", ErrPersistenceFailure, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close cutoff store: %v", ErrPersistenceFailure, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replace cutoff store: %v", ErrPersistenceFailure, err)
	}
	return nil
}

// recordChanges is best effort: the JSON file is authoritative.
func (s *CutoffStore) recordChanges(ctx context.Context, adjustments models.AdjustmentMap, changedBy string) {
	if s.db == nil {
		return
	}
	brands := make([]string, 0, len(adjustments))
	for b := range adjustments {
		brands = append(brands, b)
	}
	sort.Strings(brands)

	for _, brand := range brands {
		adj := adjustments[brand]
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO cutoff_changes (brand, cutoff_initial, cutoff_final, changed_by) VALUES (?, ?, ?, ?)`,
			brand, adj.Initial, adj.Final, changedBy)
		if err != nil {
			logger.FromContext(ctx).Error("Failed to record cutoff change", "brand", brand, "error", err)
			return
		}
	}
}
