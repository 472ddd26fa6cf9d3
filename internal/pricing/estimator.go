// Package pricing turns a requested conversion into a credit charge.
package pricing

import (
	"log/slog"
	"math"
	"strings"
)

// epsilon absorbs float error so that e.g. 5 * 1.4 prices as 7, not 8.
const epsilon = 1e-9

// CostQuote is the breakdown behind a credit charge.
type CostQuote struct {
	Category          string      `json:"category"`
	FileSizeBytes     int64       `json:"file_size_bytes"`
	QualityTier       QualityTier `json:"quality_tier"`
	SizeTier          SizeTier    `json:"size_tier"`
	BaseCost          int         `json:"base_cost"`
	SizeMultiplier    float64     `json:"size_multiplier"`
	QualityMultiplier float64     `json:"quality_multiplier"`
	CreditsRequired   int         `json:"credits_required"`
	DefaultedCategory bool        `json:"defaulted_category"`
}

// Estimator prices conversions from a Table. It never touches balances.
type Estimator struct {
	table  Table
	logger *slog.Logger
}

// NewEstimator returns an Estimator over table. A nil logger discards output.
func NewEstimator(table Table, logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Estimator{table: table, logger: logger}
}

// Table returns the price list in use.
func (e *Estimator) Table() Table { return e.table }

// EstimateCost returns the credits for one conversion. The result is at
// least 1.
func (e *Estimator) EstimateCost(category string, fileSizeBytes int64, tier QualityTier) int {
	return e.Quote(category, fileSizeBytes, tier).CreditsRequired
}

// Quote is EstimateCost with the full breakdown. Unknown categories are priced
// at the table's default cost and logged.
func (e *Estimator) Quote(category string, fileSizeBytes int64, tier QualityTier) CostQuote {
	category = strings.ToLower(strings.TrimSpace(category))
	if fileSizeBytes < 0 {
		fileSizeBytes = 0
	}
	if tier == "" {
		tier = QualityStandard
	}

	q := CostQuote{
		Category:      category,
		FileSizeBytes: fileSizeBytes,
		QualityTier:   tier,
		SizeTier:      SizeTierFor(fileSizeBytes),
	}

	base, ok := e.table.BaseCosts[category]
	if !ok {
		base = e.table.DefaultCost
		q.DefaultedCategory = true
		e.logger.Warn("unknown conversion category, using default cost",
			"category", category, "default_cost", base)
	}
	q.BaseCost = base

	q.SizeMultiplier = e.table.SizeMultipliers[q.SizeTier]
	if q.SizeMultiplier <= 0 {
		q.SizeMultiplier = 1
	}
	qm, ok := e.table.QualityMultipliers[tier]
	if !ok || qm <= 0 {
		e.logger.Warn("unknown quality tier, using multiplier 1", "tier", tier)
		qm = 1
	}
	q.QualityMultiplier = qm

	raw := float64(base) * q.SizeMultiplier * q.QualityMultiplier
	q.CreditsRequired = max(1, int(math.Ceil(raw-epsilon)))
	return q
}
