package pricing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownQualityTier is returned by ParseQualityTier.
var ErrUnknownQualityTier = errors.New("unknown quality tier")

// QualityTier is the output quality a customer pays for.
type QualityTier string

const (
	QualityStandard QualityTier = "standard"
	QualityHigh     QualityTier = "high"
	QualityMaximum  QualityTier = "maximum"
)

// QualityTiers lists the tiers from cheapest to most expensive.
var QualityTiers = []QualityTier{QualityStandard, QualityHigh, QualityMaximum}

// legacyTiers maps the older low/medium/high/ultra naming onto QualityTier.
var legacyTiers = map[string]QualityTier{
	"low":    QualityStandard,
	"medium": QualityStandard,
	"ultra":  QualityMaximum,
}

// ParseQualityTier accepts the canonical names and the legacy ones. An empty
// string selects QualityStandard.
func ParseQualityTier(s string) (QualityTier, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return QualityStandard, nil
	}
	for _, t := range QualityTiers {
		if string(t) == key {
			return t, nil
		}
	}
	if t, ok := legacyTiers[key]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownQualityTier, s)
}

// SizeTier buckets a file by byte size.
type SizeTier string

const (
	SizeSmall  SizeTier = "small"
	SizeMedium SizeTier = "medium"
	SizeLarge  SizeTier = "large"
	SizeXLarge SizeTier = "xlarge"
)

const (
	MiB int64 = 1024 * 1024
	GiB int64 = 1024 * MiB
)

// Size thresholds are exclusive upper bounds.
const (
	smallLimit  = 10 * MiB
	mediumLimit = 100 * MiB
	largeLimit  = 1 * GiB
)

// SizeTiers lists the tiers from smallest to largest.
var SizeTiers = []SizeTier{SizeSmall, SizeMedium, SizeLarge, SizeXLarge}

// SizeTierFor returns the tier for a file of size bytes. Negative sizes are
// treated as empty files.
func SizeTierFor(size int64) SizeTier {
	switch {
	case size < smallLimit:
		return SizeSmall
	case size < mediumLimit:
		return SizeMedium
	case size < largeLimit:
		return SizeLarge
	default:
		return SizeXLarge
	}
}
