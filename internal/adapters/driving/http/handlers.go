package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/logger"
)

// trigger binds HTTP paths to a run mode.
type trigger struct {
	name  string
	mode  domain.RunMode
	paths []string
}

// triggers lists the run routes. The mixed-case sync path is kept for
// callers of the earlier service.
var triggers = []trigger{
	{
		name:  "sync_ftp_csv_Products",
		mode:  domain.RunModeSync,
		paths: []string{"/sync_ftp_csv_products", "/sync_ftp_csv_Products"},
	},
	{
		name:  "remove_other_locations_quantity",
		mode:  domain.RunModeZeroOut,
		paths: []string{"/remove_other_locations_quantity"},
	},
}

const defaultRunsLimit = 20

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleTrigger(t trigger) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := domain.RunRequest{Mode: t.mode, Source: domain.FeedSourceFTP}

		run, err := s.reconciler.Run(s.runCtx, req)
		if errors.Is(err, domain.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   err.Error(),
				"message": "Loader error from " + t.name,
			})
			return
		}
		if err != nil {
			logger.Error("Loader error from %s: %v", t.name, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   err.Error(),
				"message": "Loader error from " + t.name,
			})
			return
		}

		body := gin.H{"success": true}
		if run != nil {
			body["run_id"] = run.ID
		}
		c.JSON(http.StatusOK, body)
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	status, err := s.reconciler.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRunsLimit)))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	runs, err := s.history.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []domain.RunResult{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

func (s *Server) handleRun(c *gin.Context) {
	run, err := s.history.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}
