package domain

import "time"

// PersonalityType es la etiqueta tipologica que produce el clasificador externo.
type PersonalityType string

const (
	FounderVisionary    PersonalityType = "visionary"
	FounderOperator     PersonalityType = "operator"
	FounderTechnologist PersonalityType = "technologist"
	FounderHustler      PersonalityType = "hustler"

	InvestorVenture   PersonalityType = "venture"
	InvestorAngel     PersonalityType = "angel"
	InvestorStrategic PersonalityType = "strategic"
	InvestorImpact    PersonalityType = "impact"
)

// PersonalityProfile es de solo lectura para el motor de matching.
type PersonalityProfile struct {
	SubmissionID    string          `json:"submission_id"`
	EntityKind      EntityKind      `json:"entity_kind"`
	RiskTolerance   int             `json:"risk_tolerance"` // 1 (conservador) a 4 (agresivo)
	CategoryFocus   []string        `json:"category_focus"`
	ExperienceLevel int             `json:"experience_level"`
	Languages       []string        `json:"languages"`
	Countries       []string        `json:"countries"`
	Education       []string        `json:"education"`
	Interests       []string        `json:"interests"`
	NetworkSize     int             `json:"network_size"`
	FollowerCount   int             `json:"follower_count"`
	TypeTag         PersonalityType `json:"type_tag,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
