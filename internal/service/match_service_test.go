package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/repository"
)

const testPipeline = "pipe-1"

var stageOptions = []domain.FieldOption{
	{Label: "Seed", Value: "seed"},
	{Label: "Series A", Value: "series_a"},
}

// matchFixture carga un pipeline founders/inversores en memoria.
func matchFixture() *repository.MemoryStore {
	store := repository.NewMemoryStore()
	store.PutForm(domain.Form{ID: "founders", PipelineID: testPipeline, EntityKind: domain.EntitySubject, Fields: []domain.FormField{
		{Key: "industry", Type: domain.FieldText},
		{Key: "funding", Type: domain.FieldNumber},
		{Key: "stage", Type: domain.FieldSelect, Options: stageOptions},
		{Key: "sector", Type: domain.FieldText, IsCategoryField: true},
	}})
	store.PutForm(domain.Form{ID: "investors", PipelineID: testPipeline, EntityKind: domain.EntityOpposite, Fields: []domain.FormField{
		{Key: "focus_industry", Type: domain.FieldText},
		{Key: "ticket", Type: domain.FieldNumber},
		{Key: "stages", Type: domain.FieldSelectBoxes, Options: stageOptions},
		{Key: "sector_focus", Type: domain.FieldText, IsCategoryField: true},
	}})
	store.PutCriteria(domain.MatchCriteriaSet{
		PipelineID:     testPipeline,
		SubjectFormID:  "founders",
		OppositeFormID: "investors",
		Criteria: []domain.MatchCriterion{
			{SubjectFieldKey: "industry", OppositeFieldKey: "focus_industry", MatchType: domain.MatchExact, Required: true},
			{SubjectFieldKey: "funding", OppositeFieldKey: "ticket", MatchType: domain.MatchSoft, Weight: 2},
			{SubjectFieldKey: "stage", OppositeFieldKey: "stages", MatchType: domain.MatchSoft, Weight: 1},
		},
	})

	store.PutSubmission(founder("F1", "tech", 100, "seed", "FinTech"))
	store.PutSubmission(founder("F2", "finance", 100, "seed", "Retail"))

	store.PutSubmission(investor("I1", "tech", 100, []string{"seed"}, "Finance"))
	store.PutSubmission(investor("I2", "tech", 200, []string{"series_a"}, "Healthcare"))
	store.PutSubmission(investor("I3", "finance", 100, []string{"seed"}, "Finance"))
	store.PutSubmission(investor("I4", "tech", 90, []string{"seed"}, "Healthcare"))
	return store
}

func founder(id, industry string, funding float64, stage, sector string) domain.Submission {
	return domain.Submission{ID: id, FormID: "founders", EntityKind: domain.EntitySubject, Data: map[string]domain.Value{
		"industry": domain.StringValue(industry),
		"funding":  domain.NumberValue(funding),
		"stage":    domain.StringValue(stage),
		"sector":   domain.StringValue(sector),
	}}
}

func investor(id, industry string, ticket float64, stages []string, sector string) domain.Submission {
	return domain.Submission{ID: id, FormID: "investors", EntityKind: domain.EntityOpposite, Data: map[string]domain.Value{
		"focus_industry": domain.StringValue(industry),
		"ticket":         domain.NumberValue(ticket),
		"stages":         domain.ListValue(stages...),
		"sector_focus":   domain.StringValue(sector),
	}}
}

func newTestMatchService(store *repository.MemoryStore) *MatchService {
	return NewMatchService(
		store.Criteria(),
		store.Forms(),
		store.Submissions(),
		store.Personality(),
		store.Matches(),
		zap.NewNop(),
		MatchOptions{Workers: 2},
	)
}

func loadSubmission(t *testing.T, store *repository.MemoryStore, id string) domain.Submission {
	t.Helper()
	s, err := store.Submissions().FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("fixture submission %s: %v", id, err)
	}
	return s
}

func resultFor(results []domain.MatchResult, oppositeID string) (domain.MatchResult, bool) {
	for _, r := range results {
		if r.OppositeSubmissionID == oppositeID {
			return r, true
		}
	}
	return domain.MatchResult{}, false
}

func TestRunMatchingScoresAndFilters(t *testing.T) {
	store := matchFixture()
	svc := newTestMatchService(store)

	results, err := svc.RunMatching(context.Background(), testPipeline, loadSubmission(t, store, "F1"), domain.EntityOpposite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if _, ok := resultFor(results, "I3"); ok {
		t.Fatalf("finance investor must be excluded by the required exact criterion")
	}

	order := []string{"I1", "I4", "I2"}
	for i, id := range order {
		if results[i].OppositeSubmissionID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, results[i].OppositeSubmissionID)
		}
	}

	i1, _ := resultFor(results, "I1")
	if i1.FieldScore != 100 {
		t.Fatalf("expected perfect field score, got %f", i1.FieldScore)
	}
	i4, _ := resultFor(results, "I4")
	want := (2*math.Exp(-0.5) + 1) / 3 * 100
	if math.Abs(i4.FieldScore-want) > 1e-9 {
		t.Fatalf("expected field score %f, got %f", want, i4.FieldScore)
	}
	i2, _ := resultFor(results, "I2")
	if i2.FieldScore != 0 {
		t.Fatalf("expected decayed numeric below threshold to score 0, got %f", i2.FieldScore)
	}

	for _, r := range results {
		if r.PersonalityScore != nil {
			t.Fatalf("expected no personality score without profiles")
		}
		if r.TotalScore != r.FieldScore {
			t.Fatalf("expected total == field score without profiles, got %f vs %f", r.TotalScore, r.FieldScore)
		}
		if r.ID != PairID("F1", r.OppositeSubmissionID) {
			t.Fatalf("unexpected pair id %s", r.ID)
		}
	}
}

func TestRunMatchingCategorySimilarity(t *testing.T) {
	store := matchFixture()
	svc := newTestMatchService(store)

	results, err := svc.RunMatching(context.Background(), testPipeline, loadSubmission(t, store, "F1"), domain.EntityOpposite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	finance, _ := resultFor(results, "I1")
	health, _ := resultFor(results, "I4")
	if finance.CategoryScore <= 0 {
		t.Fatalf("expected FinTech/Finance similarity > 0, got %f", finance.CategoryScore)
	}
	if health.CategoryScore != 0 {
		t.Fatalf("expected FinTech/Healthcare similarity 0, got %f", health.CategoryScore)
	}
}

func TestRunMatchingWithPersonality(t *testing.T) {
	store := matchFixture()
	store.PutProfile(domain.PersonalityProfile{SubmissionID: "F1", RiskTolerance: 3, TypeTag: domain.FounderVisionary, CategoryFocus: []string{"fintech"}})
	store.PutProfile(domain.PersonalityProfile{SubmissionID: "I1", RiskTolerance: 3, TypeTag: domain.InvestorVenture, CategoryFocus: []string{"fintech"}})
	svc := newTestMatchService(store)

	results, err := svc.RunMatching(context.Background(), testPipeline, loadSubmission(t, store, "F1"), domain.EntityOpposite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i1, _ := resultFor(results, "I1")
	if i1.PersonalityScore == nil {
		t.Fatalf("expected personality score for pair with both profiles")
	}
	ps := *i1.PersonalityScore
	if ps < 0 || ps > 100 {
		t.Fatalf("personality score out of range: %f", ps)
	}
	want := i1.FieldScore*0.7 + ps*0.3
	if math.Abs(i1.TotalScore-want) > 1e-9 {
		t.Fatalf("expected total %f, got %f", want, i1.TotalScore)
	}

	i4, _ := resultFor(results, "I4")
	if i4.PersonalityScore != nil || i4.TotalScore != i4.FieldScore {
		t.Fatalf("pair with one missing profile must degrade to field score")
	}
}

func TestRunMatchingUpsertIsIdempotent(t *testing.T) {
	store := matchFixture()
	svc := newTestMatchService(store)
	subject := loadSubmission(t, store, "F1")

	first, err := svc.RunMatching(context.Background(), testPipeline, subject, domain.EntityOpposite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.RunMatching(context.Background(), testPipeline, subject, domain.EntityOpposite); err != nil {
		t.Fatalf("unexpected error on rerun: %v", err)
	}
	if store.MatchCount() != len(first) {
		t.Fatalf("expected %d stored pairs, got %d", len(first), store.MatchCount())
	}

	stored, err := svc.ListMatches(context.Background(), "F1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stored) != len(first) || stored[0].OppositeSubmissionID != first[0].OppositeSubmissionID {
		t.Fatalf("stored matches do not mirror the run: %+v", stored)
	}
}

func TestRunMatchingEmptyPool(t *testing.T) {
	store := repository.NewMemoryStore()
	store.PutForm(domain.Form{ID: "founders", EntityKind: domain.EntitySubject})
	store.PutForm(domain.Form{ID: "investors", EntityKind: domain.EntityOpposite})
	store.PutCriteria(domain.MatchCriteriaSet{PipelineID: testPipeline, SubjectFormID: "founders", OppositeFormID: "investors"})
	svc := newTestMatchService(store)

	results, err := svc.RunMatching(context.Background(), testPipeline, founder("F9", "tech", 1, "seed", "AI"), domain.EntityOpposite)
	if err != nil {
		t.Fatalf("empty pool must not be an error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil results, got %v", results)
	}
}

func TestRunMatchingFromInvestorSide(t *testing.T) {
	store := matchFixture()
	svc := newTestMatchService(store)

	results, err := svc.RunMatching(context.Background(), testPipeline, loadSubmission(t, store, "I1"), domain.EntitySubject)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].OppositeSubmissionID != "F1" {
		t.Fatalf("expected only the tech founder, got %+v", results)
	}
	if results[0].FieldScore != 100 {
		t.Fatalf("expected flipped criteria to score 100, got %f", results[0].FieldScore)
	}
	if _, ok := results[0].PerFieldScores["ticket"]; !ok {
		t.Fatalf("per field scores must be keyed by the subject side field, got %v", results[0].PerFieldScores)
	}
}

func TestRunMatchingCoercesStoredData(t *testing.T) {
	store := matchFixture()
	store.PutSubmission(domain.Submission{ID: "I5", FormID: "investors", EntityKind: domain.EntityOpposite, Data: map[string]domain.Value{
		"focus_industry": domain.StringValue("tech"),
		"ticket":         domain.NumberValue(100),
		"stages":         domain.ListValue("pre_seed"),
		"sector_focus":   domain.StringValue("Finance"),
	}})
	store.PutSubmission(domain.Submission{ID: "I6", FormID: "investors", EntityKind: domain.EntityOpposite, Data: map[string]domain.Value{
		"focus_industry": domain.StringValue("tech"),
		"ticket":         domain.NumberValue(100),
		"stages":         domain.StringValue("seed"),
		"sector_focus":   domain.StringValue("Finance"),
	}})
	svc := newTestMatchService(store)

	results, err := svc.RunMatching(context.Background(), testPipeline, loadSubmission(t, store, "F1"), domain.EntityOpposite)
	if err != nil {
		t.Fatalf("an invalid stored candidate must not fail the run: %v", err)
	}
	if _, ok := resultFor(results, "I5"); ok {
		t.Fatalf("candidate with an unknown option must be skipped")
	}
	r, ok := resultFor(results, "I6")
	if !ok || r.PerFieldScores["stage"] != 100 {
		t.Fatalf("expected coerced selectboxes to match, got %+v", r)
	}

	bad := founder("F9", "tech", 100, "seed", "FinTech")
	bad.Data["stage"] = domain.NumberValue(2)
	if _, err := svc.RunMatching(context.Background(), testPipeline, bad, domain.EntityOpposite); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for a subject outside its form, got %v", err)
	}
}

func TestRunMatchingRejectsBadInput(t *testing.T) {
	store := matchFixture()
	svc := newTestMatchService(store)
	f1 := loadSubmission(t, store, "F1")
	foreign := f1
	foreign.FormID = "other"

	cases := map[string]struct {
		subject domain.Submission
		kind    domain.EntityKind
	}{
		"unknown kind":       {f1, domain.EntityKind("partner")},
		"same kind":          {f1, domain.EntitySubject},
		"foreign submission": {foreign, domain.EntityOpposite},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.RunMatching(context.Background(), testPipeline, tc.subject, tc.kind)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

type failingCriteriaRepo struct{ err error }

func (f failingCriteriaRepo) Get(ctx context.Context, pipelineID string) (domain.MatchCriteriaSet, error) {
	return domain.MatchCriteriaSet{}, f.err
}

type failingMatchRepo struct {
	repository.MatchRepository
	err error
}

func (f failingMatchRepo) Upsert(ctx context.Context, result domain.MatchResult) error {
	return f.err
}

type failingPersonalityRepo struct {
	repository.PersonalityRepository
	err error
}

func (f failingPersonalityRepo) FindBySubmissions(ctx context.Context, ids []string) (map[string]domain.PersonalityProfile, error) {
	return nil, f.err
}

func TestRunMatchingPropagatesLookupFailures(t *testing.T) {
	store := matchFixture()
	subject := loadSubmission(t, store, "F1")
	boom := errors.New("connection reset")

	services := map[string]*MatchService{
		"criteria": NewMatchService(failingCriteriaRepo{err: boom}, store.Forms(), store.Submissions(), store.Personality(), store.Matches(), zap.NewNop(), MatchOptions{}),
		"profiles": NewMatchService(store.Criteria(), store.Forms(), store.Submissions(), failingPersonalityRepo{err: boom}, store.Matches(), zap.NewNop(), MatchOptions{}),
		"upsert":   NewMatchService(store.Criteria(), store.Forms(), store.Submissions(), store.Personality(), failingMatchRepo{err: boom}, zap.NewNop(), MatchOptions{}),
	}
	for name, svc := range services {
		t.Run(name, func(t *testing.T) {
			_, err := svc.RunMatching(context.Background(), testPipeline, subject, domain.EntityOpposite)
			if !errors.Is(err, domain.ErrExternalLookup) {
				t.Fatalf("expected ErrExternalLookup, got %v", err)
			}
			if !errors.Is(err, boom) {
				t.Fatalf("expected cause to be preserved, got %v", err)
			}
			var lookupErr *domain.LookupError
			if !errors.As(err, &lookupErr) {
				t.Fatalf("expected *LookupError, got %T", err)
			}
		})
	}
}

func TestRunMatchingMissingCriteriaIsNotFound(t *testing.T) {
	store := matchFixture()
	svc := newTestMatchService(store)

	_, err := svc.RunMatching(context.Background(), "nope", loadSubmission(t, store, "F1"), domain.EntityOpposite)
	if !errors.Is(err, domain.ErrNotFound) || !errors.Is(err, domain.ErrExternalLookup) {
		t.Fatalf("expected not found lookup error, got %v", err)
	}
}

func TestRunMatchingCancelledContext(t *testing.T) {
	store := matchFixture()
	svc := newTestMatchService(store)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RunMatching(ctx, testPipeline, loadSubmission(t, store, "F1"), domain.EntityOpposite)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if store.MatchCount() != 0 {
		t.Fatalf("no result may be persisted after cancellation")
	}
}

func TestRescoreSubmissions(t *testing.T) {
	store := matchFixture()
	svc := newTestMatchService(store)

	out, err := svc.RescoreSubmissions(context.Background(), testPipeline, []string{"F1", "F2"}, domain.EntityOpposite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out["F1"]) != 3 {
		t.Fatalf("expected 3 results for F1, got %d", len(out["F1"]))
	}
	if len(out["F2"]) != 1 || out["F2"][0].OppositeSubmissionID != "I3" {
		t.Fatalf("expected only the finance investor for F2, got %+v", out["F2"])
	}

	if _, err := svc.RescoreSubmissions(context.Background(), testPipeline, []string{"F1", "ghost"}, domain.EntityOpposite); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown submission, got %v", err)
	}
}

func TestMatchOptionsDefaults(t *testing.T) {
	o := MatchOptions{}.withDefaults()
	if o.TopN != 50 || o.Workers != defaultWorkers || o.FieldWeight != 0.7 || o.PersonalityWeight != 0.3 {
		t.Fatalf("unexpected defaults %+v", o)
	}
	custom := MatchOptions{FieldWeight: 1}.withDefaults()
	if custom.FieldWeight != 1 || custom.PersonalityWeight != 0 {
		t.Fatalf("explicit weights must be kept, got %+v", custom)
	}
}
