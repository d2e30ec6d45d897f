package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation agrupa los errores de configuracion de criterios.
	ErrValidation = errors.New("validation error")
	// ErrMissingData se usa cuando un par no tiene los datos de un criterio o
	// perfil. El motor lo resuelve omitiendo ese termino.
	ErrMissingData = errors.New("missing data")
	// ErrExternalLookup indica que un store colaborador fallo.
	ErrExternalLookup = errors.New("external lookup failure")
	ErrNotFound       = errors.New("not found")
)

// MissingFieldError: un criterio referencia un campo que no existe en ningun formulario.
type MissingFieldError struct {
	CriterionIndex int
	SubjectKey     string
	OppositeKey    string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("criterion %d: field not found in forms (subject=%q, opposite=%q)", e.CriterionIndex, e.SubjectKey, e.OppositeKey)
}

func (e *MissingFieldError) Unwrap() error { return ErrValidation }

// IncompatibleOptionsError: dos campos con opciones tienen listas distintas.
type IncompatibleOptionsError struct {
	CriterionIndex int
	SubjectKey     string
	OppositeKey    string
}

func (e *IncompatibleOptionsError) Error() string {
	return fmt.Sprintf("criterion %d: option sets of %q and %q differ", e.CriterionIndex, e.SubjectKey, e.OppositeKey)
}

func (e *IncompatibleOptionsError) Unwrap() error { return ErrValidation }

// IncompatibleTypeError: los tipos de ambos campos no se pueden comparar.
type IncompatibleTypeError struct {
	CriterionIndex int
	SubjectKey     string
	SubjectType    FieldType
	OppositeKey    string
	OppositeType   FieldType
}

func (e *IncompatibleTypeError) Error() string {
	return fmt.Sprintf("criterion %d: field %q (%s) is not compatible with %q (%s)", e.CriterionIndex, e.SubjectKey, e.SubjectType, e.OppositeKey, e.OppositeType)
}

func (e *IncompatibleTypeError) Unwrap() error { return ErrValidation }

// LookupError envuelve fallas de los stores externos.
type LookupError struct {
	Op  string
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *LookupError) Unwrap() []error { return []error{ErrExternalLookup, e.Err} }

// NewLookupError devuelve nil si err es nil.
func NewLookupError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &LookupError{Op: op, Err: err}
}
