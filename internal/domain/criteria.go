package domain

// MatchType define como se comparan dos respuestas.
type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchSoft  MatchType = "soft"
)

// MatchCriterion empareja un campo del formulario de founders (subject) con
// uno del formulario de inversores (opposite).
type MatchCriterion struct {
	SubjectFieldKey  string    `json:"subject_field_key"`
	OppositeFieldKey string    `json:"opposite_field_key"`
	Weight           float64   `json:"weight"`
	MatchType        MatchType `json:"match_type"`
	Required         bool      `json:"required"`
}

// EffectiveWeight aplica el peso por defecto (1) cuando no se configuro.
func (c MatchCriterion) EffectiveWeight() float64 {
	if c.Weight <= 0 {
		return 1
	}
	return c.Weight
}

// Flipped intercambia los lados del criterio.
func (c MatchCriterion) Flipped() MatchCriterion {
	c.SubjectFieldKey, c.OppositeFieldKey = c.OppositeFieldKey, c.SubjectFieldKey
	return c
}

// MatchCriteriaSet es la configuracion de matching de un pipeline.
type MatchCriteriaSet struct {
	PipelineID     string           `json:"pipeline_id"`
	SubjectFormID  string           `json:"subject_form_id"`
	OppositeFormID string           `json:"opposite_form_id"`
	Criteria       []MatchCriterion `json:"criteria"`
}

// FormIDFor devuelve el formulario que recibe postulaciones del tipo kind.
func (s MatchCriteriaSet) FormIDFor(kind EntityKind) string {
	if kind == EntityOpposite {
		return s.OppositeFormID
	}
	return s.SubjectFormID
}

// OrientedFor devuelve los criterios vistos desde una postulacion de tipo kind:
// SubjectFieldKey siempre apunta al formulario de esa postulacion.
func (s MatchCriteriaSet) OrientedFor(kind EntityKind) []MatchCriterion {
	out := make([]MatchCriterion, len(s.Criteria))
	for i, c := range s.Criteria {
		if kind == EntityOpposite {
			c = c.Flipped()
		}
		out[i] = c
	}
	return out
}
