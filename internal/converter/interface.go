package converter

import (
	"context"
	"time"
)

// Kind tags a hop by the kind of work it represents. It is derived from the
// categories of the two formats.
type Kind string

const (
	KindTranscode Kind = "transcode" // same family, different encoding
	KindExtract   Kind = "extract"   // pull a stream or frames out of a container
	KindArchive   Kind = "archive"   // pack, unpack or repack
	KindRender    Kind = "render"    // rasterise a document or vector source
)

var renderSources = map[string]bool{
	"text":         true,
	"document":     true,
	"ebook":        true,
	"vector":       true,
	"spreadsheet":  true,
	"presentation": true,
}

// KindFor classifies a hop from the categories of its endpoints.
func KindFor(fromCategory, toCategory string) Kind {
	switch {
	case fromCategory == "archive" || toCategory == "archive":
		return KindArchive
	case fromCategory == "video" && (toCategory == "audio" || toCategory == "image"):
		return KindExtract
	case toCategory == "image" && renderSources[fromCategory]:
		return KindRender
	default:
		return KindTranscode
	}
}

// HopRequest describes one edge of a conversion path.
type HopRequest struct {
	Kind         Kind
	JobID        string
	Index        int // 0-based position of the hop in the path
	From         string
	To           string
	FromCategory string
	ToCategory   string
	Quality      string
	InputName    string
	SizeBytes    int64
	Options      map[string]string
}

// HopResult is what a converter reports back for a finished hop.
type HopResult struct {
	OutputName string
	Log        string
	Duration   time.Duration
}

// Converter executes single hops.
type Converter interface {
	// Name returns the unique name of this converter
	Name() string

	// CanConvert reports whether this converter handles the from -> to edge
	CanConvert(from, to string) bool

	// Convert runs the hop. It must return promptly once ctx is done.
	Convert(ctx context.Context, req HopRequest) (HopResult, error)
}

// ConverterInfo provides information about a registered converter
type ConverterInfo struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}
