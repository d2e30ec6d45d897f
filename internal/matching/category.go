package matching

import (
	"math"
	"strings"
)

// CategoryRegistry mantiene las categorias ordenadas por cercania semantica.
// Cada run de matching crea el suyo; no es seguro para escrituras concurrentes
// y debe quedar de solo lectura antes del fan-out de scoring.
type CategoryRegistry struct {
	names      []string // orden actual; el codigo de names[i] es EncodeFamilyCode(i)
	index      map[string]int
	similarity map[string]map[string]float64
}

func NewCategoryRegistry() *CategoryRegistry {
	return &CategoryRegistry{
		index:      make(map[string]int),
		similarity: make(map[string]map[string]float64),
	}
}

// AddCategory registra name cerca de sus vecinos conocidos y devuelve su codigo.
// Si ya existe devuelve el codigo actual sin tocar nada.
func (r *CategoryRegistry) AddCategory(name string, closest []string) string {
	if _, ok := r.index[name]; ok {
		return r.Code(name)
	}

	insertAt := len(r.names)
	var sum float64
	found := 0
	for _, c := range closest {
		if pos, ok := r.index[c]; ok {
			sum += float64(pos)
			found++
		}
	}
	if found > 0 {
		insertAt = int(math.Round(sum / float64(found)))
	}

	r.names = append(r.names, "")
	copy(r.names[insertAt+1:], r.names[insertAt:])
	r.names[insertAt] = name
	for i := insertAt; i < len(r.names); i++ {
		r.index[r.names[i]] = i
	}

	for _, c := range closest {
		if c == name {
			continue
		}
		r.setSimilarity(name, c, LexicalSimilarity(name, c))
	}
	return mustFamilyCode(insertAt)
}

func (r *CategoryRegistry) setSimilarity(a, b string, v float64) {
	if r.similarity[a] == nil {
		r.similarity[a] = make(map[string]float64)
	}
	if r.similarity[b] == nil {
		r.similarity[b] = make(map[string]float64)
	}
	r.similarity[a][b] = v
	r.similarity[b][a] = v
}

// Similarity solo conoce pares comparados explicitamente al insertar; el resto es 0.
func (r *CategoryRegistry) Similarity(a, b string) float64 {
	if a == b {
		if _, ok := r.index[a]; ok {
			return 1
		}
		return 0
	}
	return r.similarity[a][b]
}

// Code devuelve el codigo actual de name, o "" si no esta registrado.
func (r *CategoryRegistry) Code(name string) string {
	pos, ok := r.index[name]
	if !ok {
		return ""
	}
	return mustFamilyCode(pos)
}

func (r *CategoryRegistry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

func (r *CategoryRegistry) Len() int { return len(r.names) }

// Names devuelve las categorias en orden.
func (r *CategoryRegistry) Names() []string {
	return append([]string(nil), r.names...)
}

// OrderedCodes devuelve los codigos en el mismo orden que Names.
func (r *CategoryRegistry) OrderedCodes() []string {
	out := make([]string, len(r.names))
	for i := range r.names {
		out[i] = mustFamilyCode(i)
	}
	return out
}

// Neighbors devuelve las categorias registradas que comparten alguna palabra
// con name. Si ninguna comparte palabras, devuelve las que comparten trigramas.
func (r *CategoryRegistry) Neighbors(name string) []string {
	words := categoryWords(name)
	var out []string
	for _, other := range r.names {
		if other != name && jaccard(words, categoryWords(other)) > 0 {
			out = append(out, other)
		}
	}
	if len(out) > 0 {
		return out
	}
	grams := trigrams(name)
	for _, other := range r.names {
		if other != name && jaccard(grams, trigrams(other)) > 0 {
			out = append(out, other)
		}
	}
	return out
}

// LexicalSimilarity es el Jaccard de palabras (minusculas, separadas por
// espacios o guiones). Si no comparten ninguna palabra se usa el Jaccard de
// trigramas de caracteres, para que nombres compuestos como "FinTech" y
// "Finance" no queden en 0.
func LexicalSimilarity(a, b string) float64 {
	if s := jaccard(categoryWords(a), categoryWords(b)); s > 0 {
		return s
	}
	return jaccard(trigrams(a), trigrams(b))
}

func categoryWords(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '-' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}

func trigrams(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for w := range categoryWords(s) {
		runes := []rune(w)
		if len(runes) < 3 {
			out[w] = struct{}{}
			continue
		}
		for i := 0; i+3 <= len(runes); i++ {
			out[string(runes[i:i+3])] = struct{}{}
		}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
