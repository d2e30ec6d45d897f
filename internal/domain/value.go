package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// ValueKind identifica la variante concreta de un Value.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueNumber
	ValueString
	ValueList
	ValueBool
)

func (k ValueKind) String() string {
	switch k {
	case ValueNumber:
		return "number"
	case ValueString:
		return "string"
	case ValueList:
		return "list"
	case ValueBool:
		return "bool"
	default:
		return "null"
	}
}

// Value es la respuesta de un campo de formulario: numero, texto, lista de
// strings (selectboxes) o booleano.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	List []string
	Bool bool
}

func NumberValue(n float64) Value     { return Value{Kind: ValueNumber, Num: n} }
func StringValue(s string) Value      { return Value{Kind: ValueString, Str: s} }
func ListValue(items ...string) Value { return Value{Kind: ValueList, List: append([]string(nil), items...)} }
func BoolValue(b bool) Value          { return Value{Kind: ValueBool, Bool: b} }

// IsNull indica ausencia de respuesta. Una lista vacia o un string vacio
// tambien cuentan como ausentes.
func (v Value) IsNull() bool {
	switch v.Kind {
	case ValueNull:
		return true
	case ValueString:
		return v.Str == ""
	case ValueList:
		return len(v.List) == 0
	}
	return false
}

// Strings devuelve la respuesta como lista: los escalares se envuelven en una
// lista de un elemento.
func (v Value) Strings() []string {
	switch v.Kind {
	case ValueList:
		return v.List
	case ValueString:
		if v.Str == "" {
			return nil
		}
		return []string{v.Str}
	case ValueNumber:
		return []string{strconv.FormatFloat(v.Num, 'f', -1, 64)}
	case ValueBool:
		return []string{strconv.FormatBool(v.Bool)}
	}
	return nil
}

// Scalar devuelve la representacion textual de un valor escalar.
func (v Value) Scalar() (string, bool) {
	switch v.Kind {
	case ValueString:
		return v.Str, true
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64), true
	case ValueBool:
		return strconv.FormatBool(v.Bool), true
	}
	return "", false
}

// Equal compara por igualdad escalar; las listas se comparan elemento a elemento.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueNull:
		return true
	case ValueNumber:
		return v.Num == o.Num
	case ValueString:
		return v.Str == o.Str
	case ValueBool:
		return v.Bool == o.Bool
	case ValueList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if v.List[i] != o.List[i] {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueNumber:
		return json.Marshal(v.Num)
	case ValueString:
		return json.Marshal(v.Str)
	case ValueList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case ValueBool:
		return json.Marshal(v.Bool)
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ValueFromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ValueFromAny convierte un valor JSON generico en Value.
func ValueFromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Value{}, nil
	case float64:
		return NumberValue(t), nil
	case int:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Value{}, err
		}
		return NumberValue(n), nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case []string:
		return ListValue(t...), nil
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			switch e := item.(type) {
			case string:
				items = append(items, e)
			case float64:
				items = append(items, strconv.FormatFloat(e, 'f', -1, 64))
			case bool:
				items = append(items, strconv.FormatBool(e))
			default:
				return Value{}, fmt.Errorf("unsupported list element %T", item)
			}
		}
		return ListValue(items...), nil
	case map[string]any:
		// selectboxes de formio llegan como {"opcion": true, ...}
		items := make([]string, 0, len(t))
		for k, on := range t {
			if b, ok := on.(bool); ok && b {
				items = append(items, k)
			}
		}
		sort.Strings(items)
		return ListValue(items...), nil
	}
	return Value{}, fmt.Errorf("unsupported value type %T", raw)
}
