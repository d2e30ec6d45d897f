package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/service"
)

// MatchHandler expone las corridas de matching.
type MatchHandler struct {
	logger   *zap.Logger
	matchSvc *service.MatchService
}

func NewMatchHandler(logger *zap.Logger, matchSvc *service.MatchService) *MatchHandler {
	return &MatchHandler{logger: logger, matchSvc: matchSvc}
}

// RunMatching maneja POST /pipelines/:id/matches.
func (h *MatchHandler) RunMatching(c *gin.Context) {
	var req struct {
		SubmissionID string `json:"submission_id" binding:"required"`
		OppositeKind string `json:"opposite_kind" binding:"required,oneof=subject opposite"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid match request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	results, err := h.matchSvc.MatchSubmission(c.Request.Context(), c.Param("id"), req.SubmissionID, domain.EntityKind(req.OppositeKind))
	if err != nil {
		writeError(c, h.logger, "run matching", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Rescore maneja POST /pipelines/:id/rescore.
func (h *MatchHandler) Rescore(c *gin.Context) {
	var req struct {
		SubmissionIDs []string `json:"submission_ids" binding:"required,min=1"`
		OppositeKind  string   `json:"opposite_kind" binding:"required,oneof=subject opposite"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid rescore request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	results, err := h.matchSvc.RescoreSubmissions(c.Request.Context(), c.Param("id"), req.SubmissionIDs, domain.EntityKind(req.OppositeKind))
	if err != nil {
		writeError(c, h.logger, "rescore", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ListMatches maneja GET /submissions/:id/matches.
func (h *MatchHandler) ListMatches(c *gin.Context) {
	results, err := h.matchSvc.ListMatches(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "list matches", err)
		return
	}
	if results == nil {
		results = []domain.MatchResult{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
