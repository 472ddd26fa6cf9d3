// Package router plans conversions between file formats. It searches the
// format graph breadth-first and ranks every route it finds by hop count and
// estimated quality. Nothing here performs a conversion.
package router

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrInvalidFormat is returned for empty format tokens.
var ErrInvalidFormat = errors.New("invalid format")

// Options holds the product-tuning constants used to score paths.
type Options struct {
	DefaultQuality      int           `json:"default_quality" yaml:"default_quality"`
	StepPenalty         int           `json:"step_penalty" yaml:"step_penalty"`
	QualityFloor        int           `json:"quality_floor" yaml:"quality_floor"`
	BaseTime            time.Duration `json:"base_time" yaml:"base_time"`
	PerStepTime         time.Duration `json:"per_step_time" yaml:"per_step_time"`
	RecommendedMaxSteps int           `json:"recommended_max_steps" yaml:"recommended_max_steps"`
	DefaultMaxSteps     int           `json:"default_max_steps" yaml:"default_max_steps"`
	MaxAlternatives     int           `json:"max_alternatives" yaml:"max_alternatives"`
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		DefaultQuality:      95,
		StepPenalty:         5,
		QualityFloor:        50,
		BaseTime:            2 * time.Second,
		PerStepTime:         1500 * time.Millisecond,
		RecommendedMaxSteps: 3,
		DefaultMaxSteps:     5,
		MaxAlternatives:     2,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DefaultQuality == 0 {
		o.DefaultQuality = d.DefaultQuality
	}
	if o.StepPenalty == 0 {
		o.StepPenalty = d.StepPenalty
	}
	if o.QualityFloor == 0 {
		o.QualityFloor = d.QualityFloor
	}
	if o.BaseTime == 0 {
		o.BaseTime = d.BaseTime
	}
	if o.PerStepTime == 0 {
		o.PerStepTime = d.PerStepTime
	}
	if o.RecommendedMaxSteps == 0 {
		o.RecommendedMaxSteps = d.RecommendedMaxSteps
	}
	if o.DefaultMaxSteps == 0 {
		o.DefaultMaxSteps = d.DefaultMaxSteps
	}
	if o.MaxAlternatives == 0 {
		o.MaxAlternatives = d.MaxAlternatives
	}
	return o
}

// Router answers path queries over a fixed graph. It is safe for concurrent
// use: the tables are copied on construction and never written again.
type Router struct {
	graph   FormatGraph
	quality QualityTable
	opts    Options
}

// New builds a Router. Zero-valued options take their defaults.
func New(graph FormatGraph, quality QualityTable, opts Options) *Router {
	q := make(QualityTable, len(quality))
	for k, v := range quality {
		q[QualityKey{From: Normalize(k.From), To: Normalize(k.To)}] = v
	}
	g := make(FormatGraph, len(graph))
	for from, targets := range graph {
		norm := make([]string, 0, len(targets))
		for _, t := range targets {
			norm = append(norm, Normalize(t))
		}
		g[Normalize(from)] = norm
	}
	return &Router{graph: g, quality: q, opts: opts.withDefaults()}
}

// Graph returns a copy of the router's format graph.
func (r *Router) Graph() FormatGraph { return r.graph.Clone() }

// Options returns the tuning in effect.
func (r *Router) Options() Options { return r.opts }

type frontierItem struct {
	format string
	path   []string
}

// FindPaths returns every route from source to target found within maxSteps
// hops, best first. maxSteps <= 0 selects Options.DefaultMaxSteps. An empty
// result with a nil error means the conversion is not possible.
func (r *Router) FindPaths(source, target string, maxSteps int) ([]ConversionPath, error) {
	src, dst, err := normalizePair(source, target)
	if err != nil {
		return nil, err
	}
	if maxSteps <= 0 {
		maxSteps = r.opts.DefaultMaxSteps
	}
	if src == dst {
		return []ConversionPath{r.newPath([]string{src})}, nil
	}

	found := []ConversionPath{}
	visited := map[string]bool{src: true}
	queue := []frontierItem{{format: src, path: []string{src}}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		steps := len(cur.path) - 1
		if steps >= maxSteps {
			continue
		}

		for _, next := range r.graph[cur.format] {
			if contains(cur.path, next) {
				continue
			}
			path := make([]string, len(cur.path)+1)
			copy(path, cur.path)
			path[len(cur.path)] = next

			if next == dst {
				found = append(found, r.newPath(path))
				continue
			}
			if visited[next] || steps+1 >= maxSteps {
				continue
			}
			visited[next] = true
			queue = append(queue, frontierItem{format: next, path: path})
		}
	}

	rank(found)
	return found, nil
}

// CanConvert reports whether any route exists within the default step budget.
func (r *Router) CanConvert(source, target string) bool {
	paths, err := r.FindPaths(source, target, 0)
	return err == nil && len(paths) > 0
}

// ReachableTargets lists the formats reachable from source within maxSteps
// hops, sorted. Source itself is not included.
func (r *Router) ReachableTargets(source string, maxSteps int) ([]string, error) {
	src := Normalize(source)
	if src == "" {
		return nil, fmt.Errorf("source: %w", ErrInvalidFormat)
	}
	if maxSteps <= 0 {
		maxSteps = r.opts.DefaultMaxSteps
	}

	depth := map[string]int{src: 0}
	queue := []string{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if depth[cur] >= maxSteps {
			continue
		}
		for _, next := range r.graph[cur] {
			if _, ok := depth[next]; ok {
				continue
			}
			depth[next] = depth[cur] + 1
			queue = append(queue, next)
		}
	}

	out := make([]string, 0, len(depth)-1)
	for f := range depth {
		if f != src {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out, nil
}

func normalizePair(source, target string) (string, string, error) {
	src, dst := Normalize(source), Normalize(target)
	if src == "" {
		return "", "", fmt.Errorf("source: %w", ErrInvalidFormat)
	}
	if dst == "" {
		return "", "", fmt.Errorf("target: %w", ErrInvalidFormat)
	}
	return src, dst, nil
}

func contains(path []string, format string) bool {
	for _, p := range path {
		if p == format {
			return true
		}
	}
	return false
}
