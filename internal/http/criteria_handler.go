package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/service"
)

type CriteriaHandler struct {
	logger      *zap.Logger
	criteriaSvc *service.CriteriaService
}

func NewCriteriaHandler(logger *zap.Logger, criteriaSvc *service.CriteriaService) *CriteriaHandler {
	return &CriteriaHandler{logger: logger, criteriaSvc: criteriaSvc}
}

// Validate maneja POST /pipelines/:id/criteria/validate. Responde 204 si los
// criterios son validos y 422 con el indice del primer criterio invalido.
func (h *CriteriaHandler) Validate(c *gin.Context) {
	var req struct {
		SubjectFormID  string                  `json:"subject_form_id"`
		OppositeFormID string                  `json:"opposite_form_id"`
		Criteria       []domain.MatchCriterion `json:"criteria"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid criteria request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.criteriaSvc.Validate(c.Request.Context(), service.ValidateRequest{
		PipelineID:     c.Param("id"),
		SubjectFormID:  req.SubjectFormID,
		OppositeFormID: req.OppositeFormID,
		Criteria:       req.Criteria,
	})
	if err != nil {
		writeError(c, h.logger, "validate criteria", err)
		return
	}
	c.Status(http.StatusNoContent)
}
