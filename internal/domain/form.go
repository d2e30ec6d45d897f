package domain

import (
	"encoding/json"
	"fmt"
)

// FieldType es el tipo de componente del formulario.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldTextArea    FieldType = "textarea"
	FieldNumber      FieldType = "number"
	FieldSelect      FieldType = "select"
	FieldSelectBoxes FieldType = "selectboxes"
	FieldRadio       FieldType = "radio"
	FieldEmail       FieldType = "email"
	FieldDate        FieldType = "date"
	FieldFile        FieldType = "file"
	FieldURL         FieldType = "url"
	FieldCheckbox    FieldType = "checkbox"
)

// HasOptions indica si el tipo lleva lista de opciones.
func (t FieldType) HasOptions() bool {
	return t == FieldSelect || t == FieldSelectBoxes || t == FieldRadio
}

type FieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type FormField struct {
	Key             string        `json:"key"`
	Label           string        `json:"label,omitempty"`
	Type            FieldType     `json:"type"`
	Options         []FieldOption `json:"options,omitempty"`
	Required        bool          `json:"required"`
	IsCategoryField bool          `json:"is_category_field"`
}

// HasOption indica si value es una de las opciones declaradas.
func (f FormField) HasOption(value string) bool {
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// SerializedOptions es la forma canonica usada para comparar listas de opciones.
func (f FormField) SerializedOptions() string {
	opts := f.Options
	if opts == nil {
		opts = []FieldOption{}
	}
	b, _ := json.Marshal(opts)
	return string(b)
}

type Form struct {
	ID         string      `json:"id"`
	PipelineID string      `json:"pipeline_id"`
	EntityKind EntityKind  `json:"entity_kind"`
	Name       string      `json:"name"`
	Fields     []FormField `json:"fields"`
}

// Field busca un campo por key.
func (f Form) Field(key string) (FormField, bool) {
	for _, field := range f.Fields {
		if field.Key == key {
			return field, true
		}
	}
	return FormField{}, false
}

// FieldIndex indexa los campos por key.
func (f Form) FieldIndex() map[string]FormField {
	out := make(map[string]FormField, len(f.Fields))
	for _, field := range f.Fields {
		out[field.Key] = field
	}
	return out
}

// CategoryKeys devuelve las keys marcadas como campo de categoria.
func (f Form) CategoryKeys() []string {
	var keys []string
	for _, field := range f.Fields {
		if field.IsCategoryField {
			keys = append(keys, field.Key)
		}
	}
	return keys
}

// DecodeSubmissionData valida los valores crudos de una postulacion contra los
// tipos del formulario. Las keys que el formulario no declara se conservan tal
// cual llegan.
func DecodeSubmissionData(form Form, raw map[string]any) (map[string]Value, error) {
	data := make(map[string]Value, len(raw))
	for key, rawValue := range raw {
		v, err := ValueFromAny(rawValue)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		data[key] = v
	}
	out, err := CoerceSubmissionData(form, data)
	if err != nil {
		return nil, err
	}
	for _, field := range form.Fields {
		if !field.Required {
			continue
		}
		if v, ok := out[field.Key]; !ok || v.IsNull() {
			return nil, fmt.Errorf("field %s: %w", field.Key, ErrMissingData)
		}
	}
	return out, nil
}

// CoerceSubmissionData ajusta valores ya decodificados (por ejemplo leidos de
// la base) al tipo de cada campo del formulario. No exige obligatorios.
// Devuelve un mapa nuevo.
func CoerceSubmissionData(form Form, data map[string]Value) (map[string]Value, error) {
	fields := form.FieldIndex()
	out := make(map[string]Value, len(data))
	for key, v := range data {
		field, ok := fields[key]
		if !ok || v.IsNull() {
			out[key] = v
			continue
		}
		c, err := coerceValue(field, v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		out[key] = c
	}
	return out, nil
}

func coerceValue(field FormField, v Value) (Value, error) {
	switch field.Type {
	case FieldNumber:
		if v.Kind != ValueNumber {
			return Value{}, fmt.Errorf("expected number, got %s", v.Kind)
		}
	case FieldSelectBoxes:
		if v.Kind == ValueString {
			v = ListValue(v.Str)
		}
		if v.Kind != ValueList {
			return Value{}, fmt.Errorf("expected list, got %s", v.Kind)
		}
		for _, item := range v.List {
			if len(field.Options) > 0 && !field.HasOption(item) {
				return Value{}, fmt.Errorf("unknown option %q", item)
			}
		}
	case FieldSelect, FieldRadio:
		s, ok := v.Scalar()
		if !ok {
			return Value{}, fmt.Errorf("expected scalar, got %s", v.Kind)
		}
		if len(field.Options) > 0 && !field.HasOption(s) {
			return Value{}, fmt.Errorf("unknown option %q", s)
		}
		v = StringValue(s)
	case FieldCheckbox:
		if v.Kind != ValueBool {
			return Value{}, fmt.Errorf("expected bool, got %s", v.Kind)
		}
	}
	return v, nil
}
