package matching

import "github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"

// ValidateCriteria verifica que cada par de campos sea comparable: mismo tipo,
// o ambos con opciones y listas de opciones identicas. Devuelve el primer
// error encontrado; todos envuelven domain.ErrValidation.
func ValidateCriteria(subjectForm, oppositeForm domain.Form, criteria []domain.MatchCriterion) error {
	for i, c := range criteria {
		sf, okS := lookupField(c.SubjectFieldKey, subjectForm, oppositeForm)
		of, okO := lookupField(c.OppositeFieldKey, oppositeForm, subjectForm)
		if !okS || !okO {
			return &domain.MissingFieldError{CriterionIndex: i, SubjectKey: c.SubjectFieldKey, OppositeKey: c.OppositeFieldKey}
		}
		if err := checkPair(i, sf, of); err != nil {
			return err
		}
	}
	return nil
}

func lookupField(key string, forms ...domain.Form) (domain.FormField, bool) {
	for _, f := range forms {
		if field, ok := f.Field(key); ok {
			return field, true
		}
	}
	return domain.FormField{}, false
}

func checkPair(i int, a, b domain.FormField) error {
	aOpts, bOpts := a.Type.HasOptions(), b.Type.HasOptions()
	switch {
	case aOpts && bOpts:
		if a.SerializedOptions() != b.SerializedOptions() {
			return &domain.IncompatibleOptionsError{CriterionIndex: i, SubjectKey: a.Key, OppositeKey: b.Key}
		}
		return nil
	case a.Type == b.Type:
		return nil
	default:
		return &domain.IncompatibleTypeError{
			CriterionIndex: i,
			SubjectKey:     a.Key,
			SubjectType:    a.Type,
			OppositeKey:    b.Key,
			OppositeType:   b.Type,
		}
	}
}
