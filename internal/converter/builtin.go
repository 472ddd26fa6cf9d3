package converter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ah-its-andy/anclora-nexus/internal/router"
)

// BuiltinOptions carries what the builtin converters need to know about the
// planner.
type BuiltinOptions struct {
	Graph     router.FormatGraph
	Timing    router.Options
	TimeScale float64
}

// RegisterBuiltinConverters registers the named builtins on reg and returns
// how many were registered. Unknown names are logged and skipped.
func RegisterBuiltinConverters(reg *Registry, names []string, opts BuiltinOptions, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(names) == 0 {
		logger.Info("no builtin converters configured")
		return 0
	}

	registered := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		switch strings.ToLower(name) {
		case SimulatedName:
			reg.Register(NewSimulatedConverter(opts.Graph, opts.Timing, opts.TimeScale))
			logger.Info("registered builtin converter", "name", SimulatedName)
			registered++
		default:
			logger.Warn("unknown builtin converter", "name", name)
		}
	}
	return registered
}

// ListAvailableBuiltinConverters returns a list of all available builtin converter names
func ListAvailableBuiltinConverters() []string {
	return []string{SimulatedName}
}

const SimulatedName = "simulated"

// SimulatedConverter stands in for a real converter. It accepts every edge of
// its graph and takes the router's estimated time for the hop, scaled.
type SimulatedConverter struct {
	graph  router.FormatGraph
	timing router.Options
	scale  float64
}

// NewSimulatedConverter builds a simulated converter. A nil graph accepts any
// edge. A non-positive scale makes every hop instant.
func NewSimulatedConverter(graph router.FormatGraph, timing router.Options, scale float64) *SimulatedConverter {
	if scale < 0 {
		scale = 0
	}
	c := &SimulatedConverter{timing: timing, scale: scale}
	if graph != nil {
		c.graph = graph.Clone()
	}
	return c
}

func (c *SimulatedConverter) Name() string { return SimulatedName }

func (c *SimulatedConverter) CanConvert(from, to string) bool {
	if c.graph == nil {
		return true
	}
	return c.graph.HasEdge(from, to)
}

// hopTime is the unscaled time of the hop at index i.
func (c *SimulatedConverter) hopTime(i int) time.Duration {
	if i == 0 {
		return c.timing.BaseTime
	}
	return c.timing.PerStepTime
}

func (c *SimulatedConverter) Convert(ctx context.Context, req HopRequest) (HopResult, error) {
	if !c.CanConvert(req.From, req.To) {
		return HopResult{}, fmt.Errorf("%s cannot convert %s -> %s: %w", c.Name(), req.From, req.To, ErrNoConverter)
	}

	start := time.Now()
	if d := time.Duration(float64(c.hopTime(req.Index)) * c.scale); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return HopResult{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return HopResult{}, err
	}

	elapsed := time.Since(start)
	output := OutputName(req.InputName, req.To)
	return HopResult{
		OutputName: output,
		Log: fmt.Sprintf("[%s] hop %d %s: %s -> %s (%s quality) wrote %s in %s",
			c.Name(), req.Index, req.Kind, req.From, req.To, req.Quality, output, elapsed.Round(time.Millisecond)),
		Duration: elapsed,
	}, nil
}

// OutputName swaps the extension of name for format. An empty name yields
// "output.<format>".
func OutputName(name, format string) string {
	if name == "" {
		return "output." + format
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + "." + format
}
