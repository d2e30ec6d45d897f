package main

import (
	"strings"
	"testing"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
)

func TestCheckResults(t *testing.T) {
	subject := domain.Submission{ID: "f1", EntityKind: domain.EntitySubject}
	kinds := map[string]domain.EntityKind{
		"f1": domain.EntitySubject,
		"f2": domain.EntitySubject,
		"i1": domain.EntityOpposite,
		"i2": domain.EntityOpposite,
	}
	ps := 80.0
	bad := 140.0

	cases := []struct {
		name    string
		results []domain.MatchResult
		topN    int
		want    string
	}{
		{
			name: "clean",
			results: []domain.MatchResult{
				{SubjectSubmissionID: "f1", OppositeSubmissionID: "i1", FieldScore: 90, TotalScore: 87, PersonalityScore: &ps},
				{SubjectSubmissionID: "f1", OppositeSubmissionID: "i2", FieldScore: 40, TotalScore: 40},
			},
			topN: 5,
		},
		{
			name: "too many",
			results: []domain.MatchResult{
				{SubjectSubmissionID: "f1", OppositeSubmissionID: "i1"},
				{SubjectSubmissionID: "f1", OppositeSubmissionID: "i2"},
			},
			topN: 1,
			want: "exceed",
		},
		{
			name:    "same kind",
			results: []domain.MatchResult{{SubjectSubmissionID: "f1", OppositeSubmissionID: "f2"}},
			want:    "same kind",
		},
		{
			name: "unsorted",
			results: []domain.MatchResult{
				{SubjectSubmissionID: "f1", OppositeSubmissionID: "i1", FieldScore: 10, TotalScore: 10},
				{SubjectSubmissionID: "f1", OppositeSubmissionID: "i2", FieldScore: 20, TotalScore: 20},
			},
			want: "not sorted",
		},
		{
			name:    "personality out of range",
			results: []domain.MatchResult{{SubjectSubmissionID: "f1", OppositeSubmissionID: "i1", FieldScore: 50, TotalScore: 50, PersonalityScore: &bad}},
			want:    "personality score",
		},
		{
			name:    "total without personality",
			results: []domain.MatchResult{{SubjectSubmissionID: "f1", OppositeSubmissionID: "i1", FieldScore: 50, TotalScore: 60}},
			want:    "total must equal",
		},
		{
			name: "duplicate",
			results: []domain.MatchResult{
				{SubjectSubmissionID: "f1", OppositeSubmissionID: "i1"},
				{SubjectSubmissionID: "f1", OppositeSubmissionID: "i1"},
			},
			want: "duplicate",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			issues := checkResults(subject, tc.results, tc.topN, kinds)
			if tc.want == "" {
				if len(issues) != 0 {
					t.Fatalf("expected no issues, got %v", issues)
				}
				return
			}
			joined := strings.Join(issues, "; ")
			if !strings.Contains(joined, tc.want) {
				t.Fatalf("expected issue containing %q, got %q", tc.want, joined)
			}
		})
	}
}

func TestLoadDefaultFixture(t *testing.T) {
	store, fx, err := loadFixture(defaultFixture)
	if err != nil {
		t.Fatalf("default fixture must load: %v", err)
	}
	if fx.Pipeline.PipelineID == "" || len(fx.Pipeline.Criteria) == 0 {
		t.Fatalf("expected pipeline criteria in fixture")
	}
	sub, err := store.Submissions().FindByID(t.Context(), "fnd-carepath")
	if err != nil {
		t.Fatalf("expected fixture submission: %v", err)
	}
	if got := sub.Data["sector"].List; len(got) != 1 || got[0] != "Health Tech" {
		t.Fatalf("expected checked selectboxes only, got %v", got)
	}
	if sub.EntityKind != domain.EntitySubject {
		t.Fatalf("expected kind from form, got %q", sub.EntityKind)
	}
}

func TestLoadFixtureRejectsBadData(t *testing.T) {
	raw := []byte(`{
		"forms": [{"id": "f", "entity_kind": "subject", "fields": [{"key": "n", "type": "number"}]}],
		"submissions": [{"id": "s", "form_id": "f", "data": {"n": "many"}}]
	}`)
	if _, _, err := loadFixture(raw); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFixtureRunIsClean(t *testing.T) {
	store, fx, err := loadFixture(defaultFixture)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	report, err := runChecks(t.Context(), store, fx, 10)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Issues) != 0 {
		t.Fatalf("expected clean run, got %v", report.Issues)
	}
	ledgerly := report.Results["fnd-ledgerly"]
	for _, r := range ledgerly {
		if r.OppositeSubmissionID == "inv-harbor" {
			t.Fatalf("finance investor must not match a tech founder")
		}
	}
	if len(ledgerly) == 0 || ledgerly[0].OppositeSubmissionID != "inv-northstar" {
		t.Fatalf("expected inv-northstar first for fnd-ledgerly, got %+v", ledgerly)
	}
}
