package domain

import "time"

// EntityKind distingue los dos lados del pipeline.
type EntityKind string

const (
	// EntitySubject son las postulaciones de founders.
	EntitySubject EntityKind = "subject"
	// EntityOpposite son las postulaciones de inversores.
	EntityOpposite EntityKind = "opposite"
)

func (k EntityKind) Valid() bool {
	return k == EntitySubject || k == EntityOpposite
}

// Other devuelve el lado contrario.
func (k EntityKind) Other() EntityKind {
	if k == EntitySubject {
		return EntityOpposite
	}
	return EntitySubject
}

const (
	SubmissionStatusNew      = "new"
	SubmissionStatusMatched  = "matched"
	SubmissionStatusArchived = "archived"
)

type Submission struct {
	ID         string           `json:"id"`
	FormID     string           `json:"form_id"`
	EntityKind EntityKind       `json:"entity_kind"`
	Data       map[string]Value `json:"data"`
	Status     string           `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Value devuelve la respuesta de un campo; ok es false si falta o esta vacia.
func (s Submission) Value(key string) (Value, bool) {
	v, ok := s.Data[key]
	if !ok || v.IsNull() {
		return Value{}, false
	}
	return v, true
}
