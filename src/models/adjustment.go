package models

// BrandAdjustment is the manual cutoff correction for one brand.
// Initial is added to revenue and Final is subtracted from it.
type BrandAdjustment struct {
	Initial float64 `json:"cutoff_inicial"`
	Final   float64 `json:"cutoff_final"`
}

// AdjustmentMap is keyed by brand name.
type AdjustmentMap map[string]BrandAdjustment

// Clone returns an independent copy.
func (m AdjustmentMap) Clone() AdjustmentMap {
	out := make(AdjustmentMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
