package main

import (
	"fmt"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
)

// checkResults revisa los invariantes de una corrida y devuelve las violaciones.
// kinds mapea ID de postulacion a su tipo.
func checkResults(subject domain.Submission, results []domain.MatchResult, topN int, kinds map[string]domain.EntityKind) []string {
	var issues []string
	if topN > 0 && len(results) > topN {
		issues = append(issues, fmt.Sprintf("%d results exceed top %d", len(results), topN))
	}

	seen := make(map[string]struct{}, len(results))
	for i, r := range results {
		if r.SubjectSubmissionID != subject.ID {
			issues = append(issues, fmt.Sprintf("result %d belongs to %s", i, r.SubjectSubmissionID))
		}
		if kinds[r.OppositeSubmissionID] == subject.EntityKind {
			issues = append(issues, fmt.Sprintf("%s has the same kind as the subject", r.OppositeSubmissionID))
		}
		if _, dup := seen[r.OppositeSubmissionID]; dup {
			issues = append(issues, fmt.Sprintf("duplicate pair with %s", r.OppositeSubmissionID))
		}
		seen[r.OppositeSubmissionID] = struct{}{}

		if !inScoreRange(r.FieldScore) || !inScoreRange(r.TotalScore) {
			issues = append(issues, fmt.Sprintf("%s: score out of range (field=%.2f total=%.2f)", r.OppositeSubmissionID, r.FieldScore, r.TotalScore))
		}
		if r.PersonalityScore == nil {
			if r.TotalScore != r.FieldScore {
				issues = append(issues, fmt.Sprintf("%s: total must equal field score without personality", r.OppositeSubmissionID))
			}
		} else if !inScoreRange(*r.PersonalityScore) {
			issues = append(issues, fmt.Sprintf("%s: personality score %.2f out of range", r.OppositeSubmissionID, *r.PersonalityScore))
		}
		if i > 0 && results[i-1].TotalScore < r.TotalScore {
			issues = append(issues, fmt.Sprintf("results not sorted at position %d", i))
		}
	}
	return issues
}

func inScoreRange(v float64) bool {
	return v >= 0 && v <= 100
}
