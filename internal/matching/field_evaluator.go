package matching

import (
	"math"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
)

// numericDecay: exp(-5*relDiff) cruza 0.5 en relDiff = ln(2)/5.
const (
	numericDecay    = 5.0
	numericMinMatch = 0.5
)

// FieldDefs son los campos resueltos de ambos formularios, indexados por key.
type FieldDefs struct {
	Subject   map[string]domain.FormField
	Candidate map[string]domain.FormField
}

func NewFieldDefs(subjectForm, candidateForm domain.Form) FieldDefs {
	return FieldDefs{Subject: subjectForm.FieldIndex(), Candidate: candidateForm.FieldIndex()}
}

// fieldType prefiere el tipo del lado subject; los criterios validados
// garantizan que ambos lados son compatibles.
func (d FieldDefs) fieldType(c domain.MatchCriterion) domain.FieldType {
	if f, ok := d.Subject[c.SubjectFieldKey]; ok {
		return f.Type
	}
	if f, ok := d.Candidate[c.OppositeFieldKey]; ok {
		return f.Type
	}
	return ""
}

// FieldEvaluation es el resultado de comparar un par contra todos los criterios.
type FieldEvaluation struct {
	Eligible    bool
	Score       float64 // 0..100
	PerField    map[string]float64
	MatchWeight float64
	TotalWeight float64
}

// SplitCriteria separa criterios obligatorios de los que puntuan.
func SplitCriteria(criteria []domain.MatchCriterion) (required, scored []domain.MatchCriterion) {
	for _, c := range criteria {
		if c.Required {
			required = append(required, c)
		} else {
			scored = append(scored, c)
		}
	}
	return required, scored
}

// PassesRequired es el filtro duro: cada criterio obligatorio debe cumplirse.
// Si falta la respuesta en cualquiera de los lados el candidato no es elegible.
func PassesRequired(subject, candidate domain.Submission, criteria []domain.MatchCriterion, defs FieldDefs) bool {
	for _, c := range criteria {
		if !c.Required {
			continue
		}
		a, okA := subject.Value(c.SubjectFieldKey)
		b, okB := candidate.Value(c.OppositeFieldKey)
		if !okA || !okB {
			return false
		}
		if !satisfies(c.MatchType, defs.fieldType(c), a, b) {
			return false
		}
	}
	return true
}

// EvaluateFields aplica el filtro duro y luego el puntaje ponderado de los
// criterios no obligatorios. Es una funcion pura de sus entradas.
func EvaluateFields(subject, candidate domain.Submission, criteria []domain.MatchCriterion, defs FieldDefs) FieldEvaluation {
	if !PassesRequired(subject, candidate, criteria, defs) {
		return FieldEvaluation{}
	}

	_, scored := SplitCriteria(criteria)
	keys := perFieldKeys(scored)
	ev := FieldEvaluation{Eligible: true, PerField: make(map[string]float64, len(scored))}
	for i, c := range scored {
		w := c.EffectiveWeight()
		ev.TotalWeight += w

		a, okA := subject.Value(c.SubjectFieldKey)
		b, okB := candidate.Value(c.OppositeFieldKey)
		if !okA || !okB {
			continue
		}

		key := keys[i]
		ft := defs.fieldType(c)
		switch {
		case c.MatchType == domain.MatchExact && scalarEqual(a, b):
			ev.PerField[key] = 100
			ev.MatchWeight += w
		case c.MatchType == domain.MatchSoft && ft.HasOptions() && overlaps(a, b):
			ev.PerField[key] = 100
			ev.MatchWeight += w
		case c.MatchType == domain.MatchSoft && !ft.HasOptions() && scalarEqual(a, b):
			// sin opciones, soft se comporta como igualdad escalar (igual que el filtro)
			ev.PerField[key] = 100
			ev.MatchWeight += w
		case a.Kind == domain.ValueNumber && b.Kind == domain.ValueNumber:
			score := NumericMatchScore(a.Num, b.Num)
			if score > numericMinMatch {
				ev.PerField[key] = score * 100
				ev.MatchWeight += w * score
			} else {
				ev.PerField[key] = 0
			}
		default:
			ev.PerField[key] = 0
		}
	}

	if ev.TotalWeight > 0 {
		ev.Score = ev.MatchWeight / ev.TotalWeight * 100
	}
	return ev
}

// perFieldKeys usa la key del lado subject; si dos criterios comparten esa key
// ambos pasan a "subject->opposite" para no pisarse en PerField.
func perFieldKeys(criteria []domain.MatchCriterion) []string {
	seen := make(map[string]int, len(criteria))
	for _, c := range criteria {
		seen[c.SubjectFieldKey]++
	}
	keys := make([]string, len(criteria))
	for i, c := range criteria {
		keys[i] = c.SubjectFieldKey
		if seen[c.SubjectFieldKey] > 1 {
			keys[i] = c.SubjectFieldKey + "->" + c.OppositeFieldKey
		}
	}
	return keys
}

// NumericMatchScore = exp(-5 * |a-b| / max(a,b)), en [0,1].
func NumericMatchScore(a, b float64) float64 {
	denom := math.Max(math.Abs(a), math.Abs(b))
	if denom == 0 {
		return 1
	}
	return math.Exp(-numericDecay * math.Abs(a-b) / denom)
}

func satisfies(mt domain.MatchType, ft domain.FieldType, a, b domain.Value) bool {
	if mt == domain.MatchSoft && ft.HasOptions() {
		return overlaps(a, b)
	}
	return scalarEqual(a, b)
}

// overlaps cubre selectboxes (cualquier elemento en comun) y select/radio
// (el escalar aparece en la lista del otro lado o es igual).
func overlaps(a, b domain.Value) bool {
	bs := b.Strings()
	for _, x := range a.Strings() {
		for _, y := range bs {
			if x == y {
				return true
			}
		}
	}
	return false
}

func scalarEqual(a, b domain.Value) bool {
	if a.Kind == b.Kind {
		return a.Equal(b)
	}
	sa, okA := a.Scalar()
	sb, okB := b.Scalar()
	return okA && okB && sa == sb
}
