package pricing

import (
	"errors"
	"fmt"
)

// Table holds the credit prices. It is configuration: build it once at
// startup and do not modify it afterwards.
type Table struct {
	BaseCosts          map[string]int          `json:"base_costs" yaml:"base_costs"`
	DefaultCost        int                     `json:"default_cost" yaml:"default_cost"`
	SizeMultipliers    map[SizeTier]float64    `json:"size_multipliers" yaml:"size_multipliers"`
	QualityMultipliers map[QualityTier]float64 `json:"quality_multipliers" yaml:"quality_multipliers"`
}

// DefaultTable returns the canonical price list.
func DefaultTable() Table {
	return Table{
		BaseCosts: map[string]int{
			"text":         1,
			"image":        1,
			"data":         1,
			"document":     2,
			"ebook":        2,
			"archive":      2,
			"spreadsheet":  2,
			"presentation": 3,
			"audio":        3,
			"vector":       3,
			"ocr":          4,
			"video":        5,
			"cad":          10,
			"ai-upscale":   20,
		},
		DefaultCost: 2,
		SizeMultipliers: map[SizeTier]float64{
			SizeSmall:  1.0,
			SizeMedium: 1.5,
			SizeLarge:  2.0,
			SizeXLarge: 3.0,
		},
		QualityMultipliers: map[QualityTier]float64{
			QualityStandard: 1.0,
			QualityHigh:     1.4,
			QualityMaximum:  2.0,
		},
	}
}

// Validate checks that every price is positive and that multipliers never
// decrease from one tier to the next.
func (t Table) Validate() error {
	var errs []error
	if t.DefaultCost < 1 {
		errs = append(errs, fmt.Errorf("default_cost must be at least 1, got %d", t.DefaultCost))
	}
	for category, cost := range t.BaseCosts {
		if cost < 1 {
			errs = append(errs, fmt.Errorf("base_costs[%s] must be at least 1, got %d", category, cost))
		}
	}

	prev := 0.0
	for _, tier := range SizeTiers {
		m, ok := t.SizeMultipliers[tier]
		if !ok {
			errs = append(errs, fmt.Errorf("size_multipliers[%s] is missing", tier))
			continue
		}
		if m <= 0 || m < prev {
			errs = append(errs, fmt.Errorf("size_multipliers[%s]=%v must be positive and not below the previous tier", tier, m))
		}
		prev = m
	}

	prev = 0.0
	for _, tier := range QualityTiers {
		m, ok := t.QualityMultipliers[tier]
		if !ok {
			errs = append(errs, fmt.Errorf("quality_multipliers[%s] is missing", tier))
			continue
		}
		if m <= 0 || m < prev {
			errs = append(errs, fmt.Errorf("quality_multipliers[%s]=%v must be positive and not below the previous tier", tier, m))
		}
		prev = m
	}
	return errors.Join(errs...)
}
