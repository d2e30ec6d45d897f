package domain

import "time"

// MatchResult es el resultado de evaluar un par subject/opposite. Se persiste
// con upsert sobre (SubjectSubmissionID, OppositeSubmissionID).
type MatchResult struct {
	ID                   string             `json:"id"`
	PipelineID           string             `json:"pipeline_id"`
	SubjectSubmissionID  string             `json:"subject_submission_id"`
	OppositeSubmissionID string             `json:"opposite_submission_id"`
	FieldScore           float64            `json:"field_score"`
	PersonalityScore     *float64           `json:"personality_score,omitempty"`
	TotalScore           float64            `json:"total_score"`
	PerFieldScores       map[string]float64 `json:"per_field_scores"`
	TraitDistance        float64            `json:"trait_distance"`
	CategoryScore        float64            `json:"category_score"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}
