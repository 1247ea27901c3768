package forecast

import (
	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/google/uuid"
)

const (
	FeatureUsage       = "avg_usage_per_day"
	FeatureLeadTime    = "restock_lead_time"
	FeatureStock       = "current_stock"
	FeatureMinRequired = "min_required"

	defaultConfidence = 0.85
)

// Coefficients weight each input in the feature contribution breakdown.
type Coefficients struct {
	Usage       float64
	LeadTime    float64
	Stock       float64
	MinRequired float64
}

func DefaultCoefficients() Coefficients {
	return Coefficients{Usage: 0.4, LeadTime: 0.3, Stock: 0.15, MinRequired: 0.15}
}

// ModelConfig is the demand formula configuration resolved once per request and
// handed to Estimate.
type ModelConfig struct {
	ID           uuid.NullUUID
	Version      string
	Coefficients Coefficients
	Confidence   float64
}

// ModelConfigFromRegistry builds a ModelConfig from a registry row. Coefficients
// can be overridden through hyperparameters.coefficients.
func ModelConfigFromRegistry(m *domain.ModelRegistry) ModelConfig {
	cfg := ModelConfig{
		Coefficients: DefaultCoefficients(),
		Confidence:   defaultConfidence,
	}
	if m == nil {
		return cfg
	}

	cfg.ID = uuid.NullUUID{UUID: m.ID, Valid: m.ID != uuid.Nil}
	cfg.Version = m.ModelVersion

	if m.R2 != nil {
		cfg.Confidence = clamp(*m.R2, 0, 1)
	}

	raw, ok := m.Hyperparameters["coefficients"].(map[string]interface{})
	if !ok {
		return cfg
	}
	override := func(key string, dst *float64) {
		if v, ok := raw[key].(float64); ok && v >= 0 {
			*dst = v
		}
	}
	override(FeatureUsage, &cfg.Coefficients.Usage)
	override(FeatureLeadTime, &cfg.Coefficients.LeadTime)
	override(FeatureStock, &cfg.Coefficients.Stock)
	override(FeatureMinRequired, &cfg.Coefficients.MinRequired)

	return cfg
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
