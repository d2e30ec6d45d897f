package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/matching"
	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/metrics"
	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/repository"
)

// CriteriaService valida criterios de matching antes de que se persistan.
type CriteriaService struct {
	criteriaRepo repository.CriteriaRepository
	formRepo     repository.FormRepository
	logger       *zap.Logger
}

func NewCriteriaService(criteriaRepo repository.CriteriaRepository, formRepo repository.FormRepository, logger *zap.Logger) *CriteriaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CriteriaService{criteriaRepo: criteriaRepo, formRepo: formRepo, logger: logger}
}

// ValidateRequest describe un cambio de criterios. Los IDs de formulario
// vacios se toman de la configuracion guardada del pipeline; si Criteria es
// nil se validan los criterios guardados.
type ValidateRequest struct {
	PipelineID     string
	SubjectFormID  string
	OppositeFormID string
	Criteria       []domain.MatchCriterion
}

// Validate devuelve nil, un error de validacion (errors.Is ErrValidation) o
// un *domain.LookupError si algun store falla.
func (s *CriteriaService) Validate(ctx context.Context, req ValidateRequest) error {
	subjectFormID, oppositeFormID, criteria := req.SubjectFormID, req.OppositeFormID, req.Criteria
	if subjectFormID == "" || oppositeFormID == "" || criteria == nil {
		set, err := s.criteriaRepo.Get(ctx, req.PipelineID)
		if err != nil {
			return domain.NewLookupError("load criteria", err)
		}
		if subjectFormID == "" {
			subjectFormID = set.SubjectFormID
		}
		if oppositeFormID == "" {
			oppositeFormID = set.OppositeFormID
		}
		if criteria == nil {
			criteria = set.Criteria
		}
	}

	subjectForm, err := s.formRepo.FindByID(ctx, subjectFormID)
	if err != nil {
		return domain.NewLookupError("load subject form", err)
	}
	oppositeForm, err := s.formRepo.FindByID(ctx, oppositeFormID)
	if err != nil {
		return domain.NewLookupError("load opposite form", err)
	}

	err = matching.ValidateCriteria(subjectForm, oppositeForm, criteria)
	switch {
	case err == nil:
		metrics.CriteriaValidationsTotal.WithLabelValues("valid").Inc()
	case errors.Is(err, domain.ErrValidation):
		metrics.CriteriaValidationsTotal.WithLabelValues("invalid").Inc()
		s.logger.Info("criteria rejected", zap.String("pipeline_id", req.PipelineID), zap.Error(err))
	}
	return err
}
