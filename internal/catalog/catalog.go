// Package catalog holds the static tables the planner runs on: the format
// graph, per-pair quality, format categories and the price list. A catalog is
// assembled once at startup and treated as read-only afterwards.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ah-its-andy/anclora-nexus/internal/pricing"
	"github.com/ah-its-andy/anclora-nexus/internal/router"
)

// Catalog is the full set of planner configuration.
type Catalog struct {
	Graph      router.FormatGraph
	Quality    router.QualityTable
	Categories map[string]string // format -> category
	Aliases    map[string]string // alternative spelling -> format
	Pricing    pricing.Table
	Router     router.Options
}

// fileSpec is the on-disk layout. Every section is optional; a present
// section replaces the matching built-in one.
type fileSpec struct {
	Graph      map[string][]string `yaml:"graph"`
	Quality    []qualityEntry      `yaml:"quality"`
	Categories map[string][]string `yaml:"categories"`
	Aliases    map[string]string   `yaml:"aliases"`
	Pricing    *pricingSpec        `yaml:"pricing"`
	Router     yaml.Node           `yaml:"router"`
}

type qualityEntry struct {
	From             string `yaml:"from"`
	To               string `yaml:"to"`
	Lossless         bool   `yaml:"lossless"`
	QualityScore     int    `yaml:"quality_score"`
	RecommendedSteps int    `yaml:"recommended_steps"`
}

type pricingSpec struct {
	BaseCosts          map[string]int                  `yaml:"base_costs"`
	DefaultCost        *int                            `yaml:"default_cost"`
	SizeMultipliers    map[pricing.SizeTier]float64    `yaml:"size_multipliers"`
	QualityMultipliers map[pricing.QualityTier]float64 `yaml:"quality_multipliers"`
}

// Load returns the default catalog with the sections found in the YAML file
// at path laid over it. An empty path returns the defaults.
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if err := c.apply(data); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return c, nil
}

func (c *Catalog) apply(data []byte) error {
	var doc fileSpec
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}

	if doc.Graph != nil {
		c.Graph = router.FormatGraph(doc.Graph)
	}
	if doc.Quality != nil {
		c.Quality = make(router.QualityTable, len(doc.Quality))
		for _, e := range doc.Quality {
			c.Quality[router.QualityKey{From: e.From, To: e.To}] = router.QualityInfo{
				Lossless:         e.Lossless,
				QualityScore:     e.QualityScore,
				RecommendedSteps: e.RecommendedSteps,
			}
		}
	}
	if doc.Categories != nil {
		c.Categories = invertGroups(doc.Categories)
	}
	if doc.Aliases != nil {
		c.Aliases = doc.Aliases
	}
	if p := doc.Pricing; p != nil {
		if p.BaseCosts != nil {
			c.Pricing.BaseCosts = p.BaseCosts
		}
		if p.DefaultCost != nil {
			c.Pricing.DefaultCost = *p.DefaultCost
		}
		if p.SizeMultipliers != nil {
			c.Pricing.SizeMultipliers = p.SizeMultipliers
		}
		if p.QualityMultipliers != nil {
			c.Pricing.QualityMultipliers = p.QualityMultipliers
		}
	}
	if doc.Router.Kind != 0 {
		// keys absent from the section keep their current value
		opts := c.Router
		if err := doc.Router.Decode(&opts); err != nil {
			return fmt.Errorf("router: %w", err)
		}
		c.Router = opts
	}
	return nil
}

// Validate reports every problem found, joined into one error.
func (c *Catalog) Validate() error {
	var errs []error
	checkToken := func(where, token string) {
		if token == "" || token != router.Normalize(token) {
			errs = append(errs, fmt.Errorf("%s: format %q must be a non-empty lowercase token", where, token))
		}
	}

	for from, targets := range c.Graph {
		checkToken("graph", from)
		for _, t := range targets {
			checkToken("graph["+from+"]", t)
		}
	}
	for k, info := range c.Quality {
		checkToken("quality", k.From)
		checkToken("quality", k.To)
		if info.QualityScore < 0 || info.QualityScore > 100 {
			errs = append(errs, fmt.Errorf("quality[%s->%s]: score %d outside 0-100", k.From, k.To, info.QualityScore))
		}
		if info.RecommendedSteps < 0 {
			errs = append(errs, fmt.Errorf("quality[%s->%s]: recommended_steps must be non-negative", k.From, k.To))
		}
	}
	for format := range c.Categories {
		checkToken("categories", format)
	}
	for alias, format := range c.Aliases {
		checkToken("aliases", alias)
		checkToken("aliases["+alias+"]", format)
	}

	// zero would be silently replaced by the router default
	o := c.Router
	if o.DefaultQuality < 1 || o.DefaultQuality > 100 || o.QualityFloor < 1 || o.QualityFloor > 100 {
		errs = append(errs, errors.New("router: default_quality and quality_floor must be within 1-100"))
	}
	for name, v := range map[string]int64{
		"step_penalty":          int64(o.StepPenalty),
		"base_time":             int64(o.BaseTime),
		"per_step_time":         int64(o.PerStepTime),
		"recommended_max_steps": int64(o.RecommendedMaxSteps),
		"default_max_steps":     int64(o.DefaultMaxSteps),
		"max_alternatives":      int64(o.MaxAlternatives),
	} {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("router: %s must be positive", name))
		}
	}

	if err := c.Pricing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("pricing: %w", err))
	}
	return errors.Join(errs...)
}

// Resolve normalises a format token and maps aliases (jpeg -> jpg).
func (c *Catalog) Resolve(format string) string {
	f := router.Normalize(format)
	if canonical, ok := c.Aliases[f]; ok {
		return canonical
	}
	return f
}

// Category returns the pricing category of a format.
func (c *Catalog) Category(format string) (string, bool) {
	category, ok := c.Categories[c.Resolve(format)]
	return category, ok
}

// Known reports whether format appears in the graph or the category map.
func (c *Catalog) Known(format string) bool {
	f := c.Resolve(format)
	if _, ok := c.Categories[f]; ok {
		return true
	}
	if _, ok := c.Graph[f]; ok {
		return true
	}
	for _, targets := range c.Graph {
		for _, t := range targets {
			if t == f {
				return true
			}
		}
	}
	return false
}

// FormatInfo describes one format for listings.
type FormatInfo struct {
	Format   string   `json:"format"`
	Category string   `json:"category,omitempty"`
	Targets  []string `json:"targets"`
}

// Formats lists every format in the graph with its category and direct
// targets, sorted by name.
func (c *Catalog) Formats() []FormatInfo {
	names := c.Graph.Formats()
	for f := range c.Categories {
		if !contains(names, f) {
			names = append(names, f)
		}
	}
	sort.Strings(names)

	out := make([]FormatInfo, 0, len(names))
	for _, f := range names {
		targets := append([]string{}, c.Graph[f]...)
		out = append(out, FormatInfo{Format: f, Category: c.Categories[f], Targets: targets})
	}
	return out
}

// NewRouter builds a router over the catalog's graph and quality table.
func (c *Catalog) NewRouter() *router.Router {
	return router.New(c.Graph, c.Quality, c.Router)
}

// NewEstimator builds a cost estimator over the catalog's price list.
func (c *Catalog) NewEstimator(logger *slog.Logger) *pricing.Estimator {
	return pricing.NewEstimator(c.Pricing, logger)
}

// ConversionCategory picks the category a conversion is billed under: the
// target's, else the source's, else "" (which prices at the default cost).
func (c *Catalog) ConversionCategory(source, target string) string {
	if category, ok := c.Category(target); ok {
		return category
	}
	if category, ok := c.Category(source); ok {
		return category
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
