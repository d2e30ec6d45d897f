package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/matching"
	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/metrics"
	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/repository"
)

const (
	defaultFieldWeight       = 0.7
	defaultPersonalityWeight = 0.3
	defaultWorkers           = 8
)

// Los IDs de resultado son estables por par: el mismo par siempre produce el mismo ID.
var matchIDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("dealfuze:match-result"))

// MatchOptions ajusta el orquestador. Los valores en cero usan los defaults.
type MatchOptions struct {
	TopN              int
	Workers           int
	FieldWeight       float64
	PersonalityWeight float64
}

func (o MatchOptions) withDefaults() MatchOptions {
	if o.TopN <= 0 {
		o.TopN = matching.DefaultTopN
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.FieldWeight <= 0 && o.PersonalityWeight <= 0 {
		o.FieldWeight = defaultFieldWeight
		o.PersonalityWeight = defaultPersonalityWeight
	}
	return o
}

// MatchService orquesta una corrida de matching: carga criterios y pool,
// registra categorias, arma la shortlist, puntua en paralelo y persiste.
type MatchService struct {
	criteriaRepo    repository.CriteriaRepository
	formRepo        repository.FormRepository
	submissionRepo  repository.SubmissionRepository
	personalityRepo repository.PersonalityRepository
	matchRepo       repository.MatchRepository
	logger          *zap.Logger
	opts            MatchOptions
	now             func() time.Time
}

func NewMatchService(
	criteriaRepo repository.CriteriaRepository,
	formRepo repository.FormRepository,
	submissionRepo repository.SubmissionRepository,
	personalityRepo repository.PersonalityRepository,
	matchRepo repository.MatchRepository,
	logger *zap.Logger,
	opts MatchOptions,
) *MatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchService{
		criteriaRepo:    criteriaRepo,
		formRepo:        formRepo,
		submissionRepo:  submissionRepo,
		personalityRepo: personalityRepo,
		matchRepo:       matchRepo,
		logger:          logger,
		opts:            opts.withDefaults(),
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// matchRun es el estado compartido por todas las postulaciones de una corrida.
type matchRun struct {
	pipelineID   string
	subjectKind  domain.EntityKind
	oppositeKind domain.EntityKind
	criteria     []domain.MatchCriterion
	subjectForm  domain.Form
	oppositeForm domain.Form
	defs         matching.FieldDefs
	subjects     []domain.Submission
	pool         []domain.Submission
	registry     *matching.CategoryRegistry
}

// RunMatching evalua subject contra el pool del tipo oppositeKind del pipeline.
// Un pool vacio devuelve un resultado vacio sin error.
func (s *MatchService) RunMatching(ctx context.Context, pipelineID string, subject domain.Submission, oppositeKind domain.EntityKind) ([]domain.MatchResult, error) {
	start := time.Now()
	run, err := s.prepare(ctx, pipelineID, []domain.Submission{subject}, oppositeKind)
	if err != nil {
		s.observe(oppositeKind, start, err)
		return nil, err
	}
	results, err := s.matchSubject(ctx, run, run.subjects[0])
	s.observe(oppositeKind, start, err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// MatchSubmission resuelve la postulacion por ID y corre RunMatching.
func (s *MatchService) MatchSubmission(ctx context.Context, pipelineID, submissionID string, oppositeKind domain.EntityKind) ([]domain.MatchResult, error) {
	subject, err := s.submissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		return nil, domain.NewLookupError("load submission", err)
	}
	return s.RunMatching(ctx, pipelineID, subject, oppositeKind)
}

// RescoreBatch re-evalua varias postulaciones del mismo tipo reutilizando un
// solo registro de categorias y un solo pool.
func (s *MatchService) RescoreBatch(ctx context.Context, pipelineID string, subjects []domain.Submission, oppositeKind domain.EntityKind) (map[string][]domain.MatchResult, error) {
	out := make(map[string][]domain.MatchResult, len(subjects))
	if len(subjects) == 0 {
		return out, nil
	}

	start := time.Now()
	run, err := s.prepare(ctx, pipelineID, subjects, oppositeKind)
	if err != nil {
		s.observe(oppositeKind, start, err)
		return nil, err
	}
	for _, subject := range run.subjects {
		results, err := s.matchSubject(ctx, run, subject)
		if err != nil {
			s.observe(oppositeKind, start, err)
			return nil, fmt.Errorf("rescore %s: %w", subject.ID, err)
		}
		out[subject.ID] = results
	}
	s.observe(oppositeKind, start, nil)
	return out, nil
}

// RescoreSubmissions resuelve las postulaciones por ID y corre RescoreBatch.
func (s *MatchService) RescoreSubmissions(ctx context.Context, pipelineID string, submissionIDs []string, oppositeKind domain.EntityKind) (map[string][]domain.MatchResult, error) {
	subjects := make([]domain.Submission, 0, len(submissionIDs))
	for _, id := range submissionIDs {
		sub, err := s.submissionRepo.FindByID(ctx, id)
		if err != nil {
			return nil, domain.NewLookupError("load submission", err)
		}
		subjects = append(subjects, sub)
	}
	return s.RescoreBatch(ctx, pipelineID, subjects, oppositeKind)
}

// ListMatches devuelve los resultados persistidos de una postulacion.
func (s *MatchService) ListMatches(ctx context.Context, submissionID string) ([]domain.MatchResult, error) {
	results, err := s.matchRepo.ListBySubject(ctx, submissionID)
	if err != nil {
		return nil, domain.NewLookupError("list matches", err)
	}
	return results, nil
}

func (s *MatchService) prepare(ctx context.Context, pipelineID string, subjects []domain.Submission, oppositeKind domain.EntityKind) (*matchRun, error) {
	if !oppositeKind.Valid() {
		return nil, fmt.Errorf("unknown opposite kind %q: %w", oppositeKind, domain.ErrValidation)
	}
	subjectKind := oppositeKind.Other()
	for _, sub := range subjects {
		if sub.EntityKind != subjectKind {
			return nil, fmt.Errorf("submission %s is %q, expected %q: %w", sub.ID, sub.EntityKind, subjectKind, domain.ErrValidation)
		}
	}

	set, err := s.criteriaRepo.Get(ctx, pipelineID)
	if err != nil {
		return nil, domain.NewLookupError("load criteria", err)
	}
	subjectForm, err := s.formRepo.FindByID(ctx, set.FormIDFor(subjectKind))
	if err != nil {
		return nil, domain.NewLookupError("load subject form", err)
	}
	oppositeForm, err := s.formRepo.FindByID(ctx, set.FormIDFor(oppositeKind))
	if err != nil {
		return nil, domain.NewLookupError("load opposite form", err)
	}
	for _, sub := range subjects {
		if sub.FormID != "" && sub.FormID != subjectForm.ID {
			return nil, fmt.Errorf("submission %s does not belong to pipeline %s: %w", sub.ID, pipelineID, domain.ErrValidation)
		}
	}

	// Los datos guardados se ajustan al formulario igual que en la carga.
	coerced := make([]domain.Submission, 0, len(subjects))
	for _, sub := range subjects {
		data, err := domain.CoerceSubmissionData(subjectForm, sub.Data)
		if err != nil {
			return nil, fmt.Errorf("submission %s: %w: %w", sub.ID, domain.ErrValidation, err)
		}
		sub.Data = data
		coerced = append(coerced, sub)
	}

	stored, err := s.submissionRepo.FindByForm(ctx, oppositeForm.ID)
	if err != nil {
		return nil, domain.NewLookupError("load opposite pool", err)
	}
	pool := make([]domain.Submission, 0, len(stored))
	for _, cand := range stored {
		data, err := domain.CoerceSubmissionData(oppositeForm, cand.Data)
		if err != nil {
			s.logger.Warn("skipping candidate with invalid data",
				zap.String("pipeline_id", pipelineID),
				zap.String("submission_id", cand.ID),
				zap.Error(err),
			)
			metrics.MatchCandidatesTotal.WithLabelValues("invalid").Inc()
			continue
		}
		cand.Data = data
		pool = append(pool, cand)
	}

	run := &matchRun{
		pipelineID:   pipelineID,
		subjectKind:  subjectKind,
		oppositeKind: oppositeKind,
		criteria:     set.OrientedFor(subjectKind),
		subjectForm:  subjectForm,
		oppositeForm: oppositeForm,
		defs:         matching.NewFieldDefs(subjectForm, oppositeForm),
		subjects:     coerced,
		pool:         pool,
		registry:     matching.NewCategoryRegistry(),
	}
	// Primero las categorias de los subjects, despues las del pool.
	for _, sub := range run.subjects {
		registerCategories(run.registry, sub, subjectForm.CategoryKeys())
	}
	for _, cand := range pool {
		registerCategories(run.registry, cand, oppositeForm.CategoryKeys())
	}
	return run, nil
}

func registerCategories(registry *matching.CategoryRegistry, sub domain.Submission, keys []string) {
	for _, k := range keys {
		v, ok := sub.Value(k)
		if !ok {
			continue
		}
		for _, name := range v.Strings() {
			if registry.Has(name) {
				continue
			}
			registry.AddCategory(name, registry.Neighbors(name))
		}
	}
}

func (s *MatchService) matchSubject(ctx context.Context, run *matchRun, subject domain.Submission) ([]domain.MatchResult, error) {
	if len(run.pool) == 0 {
		s.logger.Info("empty opposite pool",
			zap.String("pipeline_id", run.pipelineID),
			zap.String("subject_id", subject.ID),
		)
		return []domain.MatchResult{}, nil
	}

	shortlist := matching.RankCandidates(subject, run.pool, run.registry, matching.RankOptions{
		TopN:                  s.opts.TopN,
		SubjectCategoryKeys:   run.subjectForm.CategoryKeys(),
		CandidateCategoryKeys: run.oppositeForm.CategoryKeys(),
	})

	eligible := make([]matching.RankedCandidate, 0, len(shortlist))
	for _, c := range shortlist {
		if matching.PassesRequired(subject, c.Submission, run.criteria, run.defs) {
			eligible = append(eligible, c)
		}
	}
	metrics.MatchCandidatesTotal.WithLabelValues("pool").Add(float64(len(run.pool)))
	metrics.MatchCandidatesTotal.WithLabelValues("shortlist").Add(float64(len(shortlist)))
	metrics.MatchCandidatesTotal.WithLabelValues("eligible").Add(float64(len(eligible)))

	ids := make([]string, 0, len(eligible)+1)
	ids = append(ids, subject.ID)
	for _, c := range eligible {
		ids = append(ids, c.Submission.ID)
	}
	profiles, err := s.personalityRepo.FindBySubmissions(ctx, ids)
	if err != nil {
		return nil, domain.NewLookupError("load personality profiles", err)
	}

	// El puntaje es puro; cada goroutine escribe solo su posicion.
	results := make([]domain.MatchResult, len(eligible))
	now := s.now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, cand := range eligible {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.scorePair(run, subject, cand, profiles, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b domain.MatchResult) int {
		return cmp.Compare(b.TotalScore, a.TotalScore)
	})

	for _, r := range results {
		if err := s.matchRepo.Upsert(ctx, r); err != nil {
			s.logger.Warn("match upsert failed",
				zap.Error(err),
				zap.String("subject_id", r.SubjectSubmissionID),
				zap.String("opposite_id", r.OppositeSubmissionID),
			)
			return nil, domain.NewLookupError("upsert match", err)
		}
	}
	metrics.MatchCandidatesTotal.WithLabelValues("scored").Add(float64(len(results)))

	s.logger.Info("match run finished",
		zap.String("pipeline_id", run.pipelineID),
		zap.String("subject_id", subject.ID),
		zap.Int("pool", len(run.pool)),
		zap.Int("shortlist", len(shortlist)),
		zap.Int("eligible", len(eligible)),
		zap.Int("categories", run.registry.Len()),
	)
	return results, nil
}

func (s *MatchService) scorePair(run *matchRun, subject domain.Submission, cand matching.RankedCandidate, profiles map[string]domain.PersonalityProfile, now time.Time) domain.MatchResult {
	ev := matching.EvaluateFields(subject, cand.Submission, run.criteria, run.defs)

	result := domain.MatchResult{
		ID:                   PairID(subject.ID, cand.Submission.ID),
		PipelineID:           run.pipelineID,
		SubjectSubmissionID:  subject.ID,
		OppositeSubmissionID: cand.Submission.ID,
		FieldScore:           ev.Score,
		TotalScore:           ev.Score,
		PerFieldScores:       ev.PerField,
		TraitDistance:        cand.TraitDistance,
		CategoryScore:        cand.CategoryScore,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	a, okA := profiles[subject.ID]
	b, okB := profiles[cand.Submission.ID]
	if !okA || !okB {
		metrics.PersonalityProfileTotal.WithLabelValues("missing").Inc()
		return result
	}
	metrics.PersonalityProfileTotal.WithLabelValues("present").Inc()

	ps := matching.ScorePersonality(a, b)
	result.PersonalityScore = &ps
	total := ev.Score*s.opts.FieldWeight + ps*s.opts.PersonalityWeight
	result.TotalScore = min(max(total, 0), 100)
	return result
}

func (s *MatchService) observe(oppositeKind domain.EntityKind, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.MatchRunsTotal.WithLabelValues(string(oppositeKind), status).Inc()
	metrics.MatchRunDuration.WithLabelValues(string(oppositeKind)).Observe(time.Since(start).Seconds())
}

// PairID es el ID determinista del resultado de un par.
func PairID(subjectID, oppositeID string) string {
	return uuid.NewSHA1(matchIDNamespace, []byte(subjectID+"/"+oppositeID)).String()
}
