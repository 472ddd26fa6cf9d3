package router

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph() FormatGraph {
	return FormatGraph{
		"txt":  {"pdf", "html", "docx"},
		"html": {"pdf", "txt"},
		"docx": {"pdf", "txt"},
		"pdf":  {"png", "jpg", "txt"},
		"jpg":  {"png", "webp"},
		"png":  {"jpg", "webp"},
		"webp": {"gif"},
		"gif":  {"bmp"},
		"bmp":  {"tiff"},
		"tiff": {"ico"},
		"mp3":  {"wav"},
		"wav":  {"flac", "ogg"},
		"flac": {"wav"},
		"ogg":  {"mp3"},
	}
}

func testQuality() QualityTable {
	return QualityTable{
		{From: "txt", To: "pdf"}: {Lossless: true, QualityScore: 98, RecommendedSteps: 1},
		{From: "txt", To: "png"}: {QualityScore: 85, RecommendedSteps: 2},
		{From: "pdf", To: "txt"}: {QualityScore: 70, RecommendedSteps: 1},
	}
}

func newTestRouter() *Router {
	return New(testGraph(), testQuality(), Options{})
}

func TestFindPaths_Identity(t *testing.T) {
	r := newTestRouter()
	for _, f := range r.Graph().Formats() {
		t.Run(f, func(t *testing.T) {
			paths, err := r.FindPaths(f, f, 0)
			require.NoError(t, err)
			require.Len(t, paths, 1)
			assert.Equal(t, 0, paths[0].Steps)
			assert.Equal(t, 100, paths[0].EstimatedQuality)
			assert.Equal(t, time.Duration(0), paths[0].EstimatedTime)
			assert.Equal(t, []string{f}, paths[0].Path)
			assert.False(t, paths[0].IsOptimal)
			assert.True(t, paths[0].IsRecommended)
		})
	}
}

func TestFindPaths_IdentityIsCaseInsensitive(t *testing.T) {
	r := newTestRouter()
	paths, err := r.FindPaths("PDF", " pdf ", 0)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, []string{"pdf"}, paths[0].Path)
}

func TestFindPaths_Direct(t *testing.T) {
	r := newTestRouter()
	paths, err := r.FindPaths("TXT", "pdf", 0)
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	primary := paths[0]
	assert.Equal(t, []string{"txt", "pdf"}, primary.Path)
	assert.Equal(t, 1, primary.Steps)
	assert.True(t, primary.IsOptimal)
	assert.True(t, primary.IsRecommended)
	assert.True(t, primary.Lossless)
	assert.Equal(t, 98, primary.EstimatedQuality)
	assert.Equal(t, 2*time.Second, primary.EstimatedTime)

	// txt -> html -> pdf and txt -> docx -> pdf rank behind the direct hop.
	require.Len(t, paths, 3)
	assert.Equal(t, []string{"txt", "html", "pdf"}, paths[1].Path)
	assert.Equal(t, []string{"txt", "docx", "pdf"}, paths[2].Path)
	assert.Equal(t, 93, paths[1].EstimatedQuality)
	assert.False(t, paths[1].Lossless)
}

func TestFindPaths_TwoHops(t *testing.T) {
	r := newTestRouter()
	paths, err := r.FindPaths("txt", "png", 0)
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	primary := paths[0]
	assert.Equal(t, []string{"txt", "pdf", "png"}, primary.Path)
	assert.Equal(t, 2, primary.Steps)
	assert.False(t, primary.IsOptimal)
	assert.True(t, primary.IsRecommended)
	assert.Equal(t, 80, primary.EstimatedQuality)
	assert.Equal(t, 3500*time.Millisecond, primary.EstimatedTime)
	assert.InDelta(t, 3.5, primary.EstimatedSeconds, 1e-9)
}

func TestFindPaths_NoRoute(t *testing.T) {
	r := newTestRouter()

	paths, err := r.FindPaths("txt", "flac", 0)
	require.NoError(t, err)
	assert.Empty(t, paths)
	assert.NotNil(t, paths)
	assert.False(t, r.CanConvert("txt", "flac"))
}

func TestFindPaths_UnknownFormatIsDisconnected(t *testing.T) {
	r := newTestRouter()

	paths, err := r.FindPaths("xyz", "pdf", 0)
	require.NoError(t, err)
	assert.Empty(t, paths)

	paths, err = r.FindPaths("pdf", "xyz", 0)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestFindPaths_EmptyToken(t *testing.T) {
	r := newTestRouter()

	_, err := r.FindPaths("", "pdf", 0)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.Contains(t, err.Error(), "source")

	_, err = r.FindPaths("pdf", "   ", 0)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.Contains(t, err.Error(), "target")

	assert.False(t, r.CanConvert("", "pdf"))
}

func TestFindPaths_Directionality(t *testing.T) {
	r := newTestRouter()

	require.True(t, r.Graph().HasEdge("mp3", "wav"))
	require.False(t, r.Graph().HasEdge("wav", "mp3"))

	assert.True(t, r.CanConvert("wav", "mp3"))
	paths, err := r.FindPaths("wav", "mp3", 0)
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	for _, p := range paths {
		assert.NotEqual(t, 1, p.Steps, "unexpected direct path %s", p)
	}
	assert.Equal(t, []string{"wav", "ogg", "mp3"}, paths[0].Path)
}

func TestFindPaths_StepCap(t *testing.T) {
	r := newTestRouter()

	// jpg -> webp -> gif -> bmp -> tiff -> ico is five hops.
	paths, err := r.FindPaths("jpg", "ico", 0)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, 5, paths[0].Steps)
	assert.False(t, paths[0].IsRecommended)

	for maxSteps := 1; maxSteps < 5; maxSteps++ {
		paths, err := r.FindPaths("jpg", "ico", maxSteps)
		require.NoError(t, err)
		assert.Empty(t, paths, "maxSteps=%d", maxSteps)
	}

	paths, err = r.FindPaths("txt", "tiff", 0)
	require.NoError(t, err)
	assert.Empty(t, paths, "txt -> tiff needs six hops")
}

func TestFindPaths_Invariants(t *testing.T) {
	r := newTestRouter()
	formats := r.Graph().Formats()

	for _, src := range formats {
		for _, dst := range formats {
			for _, maxSteps := range []int{1, 2, 3, 5} {
				paths, err := r.FindPaths(src, dst, maxSteps)
				require.NoError(t, err)

				prevSteps, prevQuality := -1, 101
				for _, p := range paths {
					assert.LessOrEqual(t, p.Steps, maxSteps)
					assert.GreaterOrEqual(t, p.EstimatedQuality, 50)
					assert.Equal(t, src, p.Source())
					assert.Equal(t, dst, p.Target())
					assert.Equal(t, len(p.Path)-1, p.Steps)
					assert.GreaterOrEqual(t, p.Steps, prevSteps)
					if p.Steps > prevSteps {
						assert.LessOrEqual(t, p.EstimatedQuality, prevQuality)
					}
					prevSteps, prevQuality = p.Steps, p.EstimatedQuality

					seen := map[string]bool{}
					for _, f := range p.Path {
						assert.False(t, seen[f], "format %s repeated in %s", f, p)
						seen[f] = true
					}
					for _, hop := range p.Hops() {
						assert.True(t, r.Graph().HasEdge(hop[0], hop[1]), "no edge %v", hop)
					}
				}
			}
		}
	}
}

func TestFindPaths_QualityFloor(t *testing.T) {
	graph := FormatGraph{"a": {"b"}, "b": {"c"}, "c": {"d"}, "d": {"e"}}
	quality := QualityTable{{From: "a", To: "e"}: {QualityScore: 60}}
	r := New(graph, quality, Options{})

	paths, err := r.FindPaths("a", "e", 0)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, 4, paths[0].Steps)
	assert.Equal(t, 50, paths[0].EstimatedQuality)
	assert.Equal(t, 6500*time.Millisecond, paths[0].EstimatedTime)
}

func TestFindPaths_CustomOptions(t *testing.T) {
	r := New(FormatGraph{"a": {"b"}, "b": {"c"}}, nil, Options{
		DefaultQuality: 90,
		StepPenalty:    10,
		BaseTime:       time.Second,
		PerStepTime:    time.Second,
	})

	paths, err := r.FindPaths("a", "c", 0)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, 80, paths[0].EstimatedQuality)
	assert.Equal(t, 2*time.Second, paths[0].EstimatedTime)
}

func TestFindPaths_GraphIsCopied(t *testing.T) {
	g := FormatGraph{"a": {"b"}}
	r := New(g, nil, Options{})
	g["a"][0] = "z"

	assert.True(t, r.CanConvert("a", "b"))
	assert.False(t, r.CanConvert("a", "z"))
}

func TestRecommend(t *testing.T) {
	r := newTestRouter()

	t.Run("primary and alternatives", func(t *testing.T) {
		rec, err := r.Recommend("txt", "png", 0)
		require.NoError(t, err)
		assert.True(t, rec.Supported)
		require.NotNil(t, rec.Primary)
		assert.Equal(t, []string{"txt", "pdf", "png"}, rec.Primary.Path)
		assert.LessOrEqual(t, len(rec.Alternatives), 2)
		assert.Empty(t, rec.Warning)
		assert.Equal(t, rec.All[0].Path, rec.Primary.Path)
	})

	t.Run("unsupported", func(t *testing.T) {
		rec, err := r.Recommend("txt", "flac", 0)
		require.NoError(t, err)
		assert.False(t, rec.Supported)
		assert.Nil(t, rec.Primary)
		assert.Empty(t, rec.Alternatives)
	})

	t.Run("complexity warning", func(t *testing.T) {
		rec, err := r.Recommend("jpg", "ico", 0)
		require.NoError(t, err)
		assert.True(t, rec.Supported)
		assert.Contains(t, rec.Warning, "5 steps")
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := r.Recommend("", "png", 0)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}

func TestReachableTargets(t *testing.T) {
	r := newTestRouter()

	targets, err := r.ReachableTargets("mp3", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"flac", "ogg", "wav"}, targets)

	targets, err = r.ReachableTargets("txt", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"docx", "html", "pdf"}, targets)

	targets, err = r.ReachableTargets("nope", 0)
	require.NoError(t, err)
	assert.Empty(t, targets)

	_, err = r.ReachableTargets("", 0)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestGraphHelpers(t *testing.T) {
	g := testGraph()
	assert.Equal(t, []string{"pdf", "html", "docx"}, g.Targets(".TXT"))
	assert.True(t, g.HasEdge("pdf", "PNG"))
	assert.Contains(t, g.Formats(), "ico")
	assert.Equal(t, "mp3", Normalize(" .MP3 "))
}

func TestRouter_ConcurrentQueries(t *testing.T) {
	r := newTestRouter()
	pairs := [][2]string{{"txt", "png"}, {"txt", "ico"}, {"mp3", "flac"}, {"pdf", "txt"}, {"txt", "wav"}, {"png", "png"}}

	want := make(map[[2]string][]ConversionPath, len(pairs))
	for _, p := range pairs {
		paths, err := r.FindPaths(p[0], p[1], 0)
		require.NoError(t, err)
		want[p] = paths
	}

	const workers = 16
	got := make([]map[[2]string][]ConversionPath, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			got[w] = make(map[[2]string][]ConversionPath, len(pairs))
			for i := 0; i < 50; i++ {
				p := pairs[(w+i)%len(pairs)]
				paths, err := r.FindPaths(p[0], p[1], 0)
				if err != nil {
					errs[w] = err
					return
				}
				got[w][p] = paths
				r.CanConvert(p[0], p[1])
				if _, err := r.ReachableTargets(p[0], 0); err != nil {
					errs[w] = err
					return
				}
			}
		}(w)
	}
	wg.Wait()

	for w := 0; w < workers; w++ {
		require.NoError(t, errs[w])
		for p, paths := range got[w] {
			assert.Equal(t, want[p], paths, "%s -> %s", p[0], p[1])
		}
	}
}
