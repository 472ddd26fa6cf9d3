package router

import (
	"sort"
	"strings"
)

// FormatGraph maps a format token to the ordered list of formats it converts
// to in one hop. Edges are directional.
type FormatGraph map[string][]string

// QualityInfo describes a direct (source, target) conversion.
type QualityInfo struct {
	Lossless         bool `json:"lossless" yaml:"lossless"`
	QualityScore     int  `json:"quality_score" yaml:"quality_score"`
	RecommendedSteps int  `json:"recommended_steps" yaml:"recommended_steps"`
}

// QualityKey identifies an entry of a QualityTable.
type QualityKey struct {
	From string
	To   string
}

// QualityTable is sparse: missing pairs use Options.DefaultQuality.
type QualityTable map[QualityKey]QualityInfo

// Lookup returns the entry for (from, to) if present.
func (t QualityTable) Lookup(from, to string) (QualityInfo, bool) {
	info, ok := t[QualityKey{From: from, To: to}]
	return info, ok
}

// Normalize lowercases and trims a format token. A leading dot is dropped so
// file extensions can be passed directly.
func Normalize(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}

// Targets returns the direct conversions out of format.
func (g FormatGraph) Targets(format string) []string {
	return g[Normalize(format)]
}

// HasEdge reports whether from converts to to in a single hop.
func (g FormatGraph) HasEdge(from, to string) bool {
	to = Normalize(to)
	for _, t := range g.Targets(from) {
		if t == to {
			return true
		}
	}
	return false
}

// Formats lists every token that appears as a source or a target, sorted.
func (g FormatGraph) Formats() []string {
	seen := make(map[string]struct{}, len(g))
	for from, targets := range g {
		seen[from] = struct{}{}
		for _, t := range targets {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy of the graph.
func (g FormatGraph) Clone() FormatGraph {
	out := make(FormatGraph, len(g))
	for from, targets := range g {
		out[from] = append([]string(nil), targets...)
	}
	return out
}
