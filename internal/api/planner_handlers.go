package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ah-its-andy/anclora-nexus/internal/catalog"
	"github.com/ah-its-andy/anclora-nexus/internal/pricing"
	"github.com/ah-its-andy/anclora-nexus/internal/router"
)

// sniffLen is how much of an upload is read for content detection.
const sniffLen = 3072

func (s *Server) listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.catalog.Formats()})
}

func (s *Server) reachableTargets(c *gin.Context) {
	maxSteps, ok := maxStepsParam(c)
	if !ok {
		return
	}
	format := s.catalog.Resolve(c.Param("format"))
	targets, err := s.planner.ReachableTargets(format, maxSteps)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"format": format, "targets": targets})
}

// detectFormat identifies the format of a multipart "file" upload.
func (s *Server) detectFormat(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	head = head[:n]

	format, err := s.catalog.Detect(fh.Filename, head)
	if err != nil {
		errorJSON(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	category, _ := s.catalog.Category(format)
	c.JSON(http.StatusOK, gin.H{
		"format":     format,
		"category":   category,
		"mime":       catalog.MIME(head),
		"size_bytes": fh.Size,
		"targets":    s.catalog.Graph.Targets(format),
	})
}

// pathsResponse is a Recommendation with every path found attached.
type pathsResponse struct {
	router.Recommendation
	Paths []router.ConversionPath `json:"paths"`
}

func (s *Server) findPaths(c *gin.Context) {
	maxSteps, ok := maxStepsParam(c)
	if !ok {
		return
	}
	from, to := s.catalog.Resolve(c.Query("from")), s.catalog.Resolve(c.Query("to"))
	rec, err := s.planner.Recommend(from, to, maxSteps)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, pathsResponse{Recommendation: rec, Paths: rec.All})
}

func (s *Server) canConvert(c *gin.Context) {
	from, to := s.catalog.Resolve(c.Query("from")), s.catalog.Resolve(c.Query("to"))
	if from == "" || to == "" {
		errorJSON(c, http.StatusBadRequest, router.ErrInvalidFormat.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "can_convert": s.planner.CanConvert(from, to)})
}

// quoteInputs reads ?size= and ?quality=.
func quoteInputs(c *gin.Context) (int64, pricing.QualityTier, bool) {
	var size int64
	if raw := c.Query("size"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			errorJSON(c, http.StatusBadRequest, "size must be a non-negative integer")
			return 0, "", false
		}
		size = v
	}
	tier, err := pricing.ParseQualityTier(c.Query("quality"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return 0, "", false
	}
	return size, tier, true
}

// quotePath plans from -> to and prices the conversion.
func (s *Server) quotePath(c *gin.Context) {
	size, tier, ok := quoteInputs(c)
	if !ok {
		return
	}
	maxSteps, ok := maxStepsParam(c)
	if !ok {
		return
	}
	from, to := s.catalog.Resolve(c.Query("from")), s.catalog.Resolve(c.Query("to"))
	rec, err := s.planner.Recommend(from, to, maxSteps)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	quote := s.estimator.Quote(s.catalog.ConversionCategory(from, to), size, tier)
	c.JSON(http.StatusOK, gin.H{"route": rec, "quote": quote})
}

func (s *Server) estimateCost(c *gin.Context) {
	size, tier, ok := quoteInputs(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.estimator.Quote(c.Query("category"), size, tier))
}
