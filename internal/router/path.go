package router

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ConversionPath is one planned route. It is built once per query and never
// modified afterwards.
type ConversionPath struct {
	Path             []string      `json:"path"`
	Steps            int           `json:"steps"`
	IsOptimal        bool          `json:"is_optimal"`
	IsRecommended    bool          `json:"is_recommended"`
	Lossless         bool          `json:"lossless"`
	EstimatedQuality int           `json:"estimated_quality"`
	EstimatedTime    time.Duration `json:"-"`
	EstimatedSeconds float64       `json:"estimated_time_seconds"`
}

// Source is the first format of the path.
func (p ConversionPath) Source() string { return p.Path[0] }

// Target is the last format of the path.
func (p ConversionPath) Target() string { return p.Path[len(p.Path)-1] }

// Hops returns the consecutive (from, to) pairs of the path.
func (p ConversionPath) Hops() [][2]string {
	hops := make([][2]string, 0, p.Steps)
	for i := 0; i+1 < len(p.Path); i++ {
		hops = append(hops, [2]string{p.Path[i], p.Path[i+1]})
	}
	return hops
}

func (p ConversionPath) String() string {
	return strings.Join(p.Path, " -> ")
}

func (r *Router) newPath(path []string) ConversionPath {
	steps := len(path) - 1
	p := ConversionPath{
		Path:          path,
		Steps:         steps,
		IsOptimal:     steps == 1,
		IsRecommended: steps <= r.opts.RecommendedMaxSteps,
	}
	if steps == 0 {
		p.Lossless = true
		p.EstimatedQuality = 100
		return p
	}

	base := r.opts.DefaultQuality
	if info, ok := r.quality.Lookup(path[0], path[steps]); ok {
		base = info.QualityScore
		p.Lossless = info.Lossless && steps == 1
	}
	p.EstimatedQuality = max(r.opts.QualityFloor, base-r.opts.StepPenalty*(steps-1))
	p.EstimatedTime = r.opts.BaseTime + time.Duration(steps-1)*r.opts.PerStepTime
	p.EstimatedSeconds = p.EstimatedTime.Seconds()
	return p
}

// rank orders paths by hop count, then by quality. Ties keep discovery order.
func rank(paths []ConversionPath) {
	sort.SliceStable(paths, func(i, j int) bool {
		if paths[i].Steps != paths[j].Steps {
			return paths[i].Steps < paths[j].Steps
		}
		return paths[i].EstimatedQuality > paths[j].EstimatedQuality
	})
}

// Recommendation is the caller-facing answer to "how do I get from A to B".
type Recommendation struct {
	Source       string           `json:"source"`
	Target       string           `json:"target"`
	Supported    bool             `json:"supported"`
	Primary      *ConversionPath  `json:"primary,omitempty"`
	Alternatives []ConversionPath `json:"alternatives"`
	Warning      string           `json:"warning,omitempty"`
	All          []ConversionPath `json:"-"`
}

// Recommend runs FindPaths and splits the result into a primary path and at
// most Options.MaxAlternatives alternatives.
func (r *Router) Recommend(source, target string, maxSteps int) (Recommendation, error) {
	paths, err := r.FindPaths(source, target, maxSteps)
	if err != nil {
		return Recommendation{}, err
	}
	rec := Recommendation{
		Source:       Normalize(source),
		Target:       Normalize(target),
		Alternatives: []ConversionPath{},
		All:          paths,
	}
	if len(paths) == 0 {
		return rec, nil
	}

	rec.Supported = true
	primary := paths[0]
	rec.Primary = &primary
	if !primary.IsRecommended {
		rec.Warning = fmt.Sprintf("conversion needs %d steps, more than the recommended %d; expect reduced quality", primary.Steps, r.opts.RecommendedMaxSteps)
	}
	for _, alt := range paths[1:] {
		if len(rec.Alternatives) == r.opts.MaxAlternatives {
			break
		}
		rec.Alternatives = append(rec.Alternatives, alt)
	}
	return rec, nil
}
