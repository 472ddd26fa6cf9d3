// Package api exposes the planner, the estimator and staged jobs over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ah-its-andy/anclora-nexus/internal/catalog"
	"github.com/ah-its-andy/anclora-nexus/internal/converter"
	"github.com/ah-its-andy/anclora-nexus/internal/ledger"
	"github.com/ah-its-andy/anclora-nexus/internal/livelog"
	"github.com/ah-its-andy/anclora-nexus/internal/pricing"
	"github.com/ah-its-andy/anclora-nexus/internal/router"
	"github.com/ah-its-andy/anclora-nexus/internal/worker"
)

// Deps are the components the server is wired to.
type Deps struct {
	Catalog  *catalog.Catalog
	DB       *gorm.DB
	Queue    *worker.Queue
	Ledger   *ledger.Memory
	Registry *converter.Registry
	Live     *livelog.Manager
	Logger   *slog.Logger
}

type Server struct {
	Router *gin.Engine

	catalog   *catalog.Catalog
	planner   *router.Router
	estimator *pricing.Estimator
	db        *gorm.DB
	queue     *worker.Queue
	ledger    *ledger.Memory
	registry  *converter.Registry
	live      *livelog.Manager
	logger    *slog.Logger
}

func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.Live == nil {
		d.Live = livelog.NewManager()
	}

	g := gin.Default()
	s := &Server{
		Router:    g,
		catalog:   d.Catalog,
		planner:   d.Catalog.NewRouter(),
		estimator: d.Catalog.NewEstimator(d.Logger),
		db:        d.DB,
		queue:     d.Queue,
		ledger:    d.Ledger,
		registry:  d.Registry,
		live:      d.Live,
		logger:    d.Logger,
	}

	api := g.Group("/api")
	api.GET("/health", s.health)

	api.GET("/formats", s.listFormats)
	api.GET("/formats/:format/targets", s.reachableTargets)
	api.POST("/detect", s.detectFormat)
	api.GET("/paths", s.findPaths)
	api.GET("/can-convert", s.canConvert)
	api.GET("/quote", s.quotePath)
	api.GET("/cost", s.estimateCost)

	api.POST("/jobs", s.createJob)
	api.GET("/jobs", s.listJobs)
	api.GET("/jobs/:id", s.getJob)
	api.GET("/jobs/:id/hops", s.listHops)
	api.GET("/jobs/:id/log", s.liveLog)
	api.GET("/stats", s.getStats)

	api.GET("/accounts/:id/balance", s.getBalance)
	api.GET("/accounts/:id/history", s.getHistory)
	api.POST("/accounts/:id/credit", s.creditAccount)

	api.GET("/converters", s.listConverters)
	api.POST("/converters/:name/enable", s.enableConverter)
	api.POST("/converters/:name/disable", s.disableConverter)

	return s
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errorJSON(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"error": msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// maxStepsParam reads ?max_steps=. Absent means the router default.
func maxStepsParam(c *gin.Context) (int, bool) {
	raw := c.Query("max_steps")
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		errorJSON(c, http.StatusBadRequest, "max_steps must be a non-negative integer")
		return 0, false
	}
	return v, true
}
