package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ah-its-andy/anclora-nexus/internal/converter"
	"github.com/ah-its-andy/anclora-nexus/internal/db"
	"github.com/ah-its-andy/anclora-nexus/internal/ledger"
	"github.com/ah-its-andy/anclora-nexus/internal/pricing"
	"github.com/ah-its-andy/anclora-nexus/internal/router"
)

type createJobRequest struct {
	Account   string `json:"account" binding:"required"`
	From      string `json:"from" binding:"required"`
	To        string `json:"to" binding:"required"`
	SizeBytes int64  `json:"size_bytes" binding:"gte=0"`
	Quality   string `json:"quality"`
	PathIndex int    `json:"path_index" binding:"gte=0"`
	MaxSteps  int    `json:"max_steps" binding:"gte=0"`
	FileName  string `json:"file_name"`
}

// createJob plans, prices and pays for a conversion, then queues it.
func (s *Server) createJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	tier, err := pricing.ParseQualityTier(req.Quality)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	from, to := s.catalog.Resolve(req.From), s.catalog.Resolve(req.To)
	paths, err := s.planner.FindPaths(from, to, req.MaxSteps)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, router.ErrInvalidFormat) {
			code = http.StatusBadRequest
		}
		errorJSON(c, code, err.Error())
		return
	}
	if len(paths) == 0 {
		errorJSON(c, http.StatusUnprocessableEntity, fmt.Sprintf("no conversion route from %s to %s", from, to))
		return
	}
	if req.PathIndex >= len(paths) {
		errorJSON(c, http.StatusBadRequest, fmt.Sprintf("path_index %d out of range, %d paths available", req.PathIndex, len(paths)))
		return
	}
	path := paths[req.PathIndex]
	if path.Steps == 0 {
		errorJSON(c, http.StatusBadRequest, "source and target are the same format")
		return
	}

	quote := s.estimator.Quote(s.catalog.ConversionCategory(from, to), req.SizeBytes, tier)
	balance, err := s.ledger.Deduct(req.Account, quote.CreditsRequired)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientCredits) {
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error":            err.Error(),
				"balance":          balance,
				"credits_required": quote.CreditsRequired,
			})
			return
		}
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}

	job := &db.Job{
		ID:               uuid.NewString(),
		AccountID:        req.Account,
		Source:           from,
		Target:           to,
		Path:             db.JoinPath(path.Path),
		Steps:            path.Steps,
		FileName:         req.FileName,
		SizeBytes:        quote.FileSizeBytes,
		Category:         quote.Category,
		QualityTier:      string(quote.QualityTier),
		Credits:          quote.CreditsRequired,
		EstimatedQuality: path.EstimatedQuality,
	}
	if err := db.CreateJob(s.db, job); err != nil {
		s.refund(job)
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.queue.Enqueue(job.ID); err != nil {
		msg := fmt.Sprintf("enqueue: %v", err)
		if serr := db.SetStatus(s.db, job.ID, db.StatusFailed, &msg); serr != nil {
			s.logger.Error("mark unqueued job failed", "job", job.ID, "error", serr)
		}
		s.refund(job)
		errorJSON(c, http.StatusServiceUnavailable, msg)
		return
	}

	s.logger.Info("job staged", "job", job.ID, "account", job.AccountID, "path", job.Path, "credits", job.Credits)
	c.JSON(http.StatusAccepted, gin.H{
		"job":     job,
		"route":   path,
		"quote":   quote,
		"balance": balance,
	})
}

func (s *Server) refund(job *db.Job) {
	if _, err := s.ledger.Refund(job.AccountID, job.Credits); err != nil {
		s.logger.Error("refund credits", "job", job.ID, "error", err)
	}
}

func (s *Server) listJobs(c *gin.Context) {
	limit := parseIntDefault(c.Query("limit"), 50)
	offset := parseIntDefault(c.Query("offset"), 0)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	jobs, total, err := db.ListJobs(s.db, db.Status(c.Query("status")), limit, offset)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": jobs, "total": total})
}

// loadJob writes a 404 and returns nil when the job does not exist.
func (s *Server) loadJob(c *gin.Context) *db.Job {
	job, err := db.GetJob(s.db, c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			errorJSON(c, http.StatusNotFound, "not found")
		} else {
			errorJSON(c, http.StatusInternalServerError, err.Error())
		}
		return nil
	}
	return job
}

func (s *Server) getJob(c *gin.Context) {
	if job := s.loadJob(c); job != nil {
		c.JSON(http.StatusOK, job)
	}
}

func (s *Server) listHops(c *gin.Context) {
	job := s.loadJob(c)
	if job == nil {
		return
	}
	hops, err := db.ListHops(s.db, job.ID)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": hops, "total": len(hops)})
}

// liveLog returns the buffered output of a running job.
func (s *Server) liveLog(c *gin.Context) {
	job := s.loadJob(c)
	if job == nil {
		return
	}
	l, ok := s.live.Get(job.ID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"job_id": job.ID, "status": job.Status, "active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"job_id": job.ID, "status": job.Status, "active": true, "log": l})
}

func (s *Server) getStats(c *gin.Context) {
	stats, err := db.GetStats(s.db)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"jobs":        stats,
		"queue_len":   s.queue.Len(),
		"active_jobs": len(s.live.Active()),
		"formats":     len(s.catalog.Formats()),
	})
}

func (s *Server) getBalance(c *gin.Context) {
	account := c.Param("id")
	c.JSON(http.StatusOK, gin.H{"account": account, "balance": s.ledger.Balance(account)})
}

func (s *Server) getHistory(c *gin.Context) {
	account := c.Param("id")
	c.JSON(http.StatusOK, gin.H{"account": account, "data": s.ledger.History(account)})
}

type creditRequest struct {
	Amount int `json:"amount" binding:"required,gt=0"`
}

func (s *Server) creditAccount(c *gin.Context) {
	var req creditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	account := c.Param("id")
	balance, err := s.ledger.Credit(account, req.Amount)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account, "balance": balance})
}

func (s *Server) listConverters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data":      s.registry.ListInfo(),
		"available": converter.ListAvailableBuiltinConverters(),
	})
}

func (s *Server) enableConverter(c *gin.Context) {
	s.toggleConverter(c, true)
}

func (s *Server) disableConverter(c *gin.Context) {
	s.toggleConverter(c, false)
}

func (s *Server) toggleConverter(c *gin.Context, enable bool) {
	name := c.Param("name")
	var err error
	if enable {
		err = s.registry.Enable(name)
	} else {
		err = s.registry.Disable(name)
	}
	if err != nil {
		if errors.Is(err, converter.ErrUnknownConverter) {
			errorJSON(c, http.StatusNotFound, err.Error())
			return
		}
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "enabled": enable})
}
