package matching

import (
	"cmp"
	"slices"
	"sort"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
)

const (
	DefaultTopN = 50

	traitScoreWeight    = 0.7
	categoryScoreWeight = 0.3
)

// RankOptions configura RankCandidates.
type RankOptions struct {
	TopN int
	// Keys de campos de categoria del formulario del subject y del pool.
	SubjectCategoryKeys   []string
	CandidateCategoryKeys []string
}

// RankedCandidate es un candidato de la shortlist con su desglose.
type RankedCandidate struct {
	Submission    domain.Submission
	PoolIndex     int
	TraitDistance float64
	CategoryScore float64
	Score         float64
}

// RankCandidates ordena el pool en dos etapas: prefiltro por distancia de
// rasgos (se quedan 2*TopN) y re-ranking combinando rasgos y categorias.
// Nunca devuelve postulaciones del mismo tipo que subject ni mas de TopN.
func RankCandidates(subject domain.Submission, pool []domain.Submission, registry *CategoryRegistry, opts RankOptions) []RankedCandidate {
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	excluded := make(map[string]struct{}, len(opts.SubjectCategoryKeys)+len(opts.CandidateCategoryKeys))
	for _, k := range opts.SubjectCategoryKeys {
		excluded[k] = struct{}{}
	}
	for _, k := range opts.CandidateCategoryKeys {
		excluded[k] = struct{}{}
	}

	candidates := make([]RankedCandidate, 0, len(pool))
	for i, cand := range pool {
		if cand.EntityKind == subject.EntityKind {
			continue
		}
		candidates = append(candidates, RankedCandidate{
			Submission:    cand,
			PoolIndex:     i,
			TraitDistance: traitDistance(subject, cand, excluded),
		})
	}

	slices.SortStableFunc(candidates, func(a, b RankedCandidate) int {
		return cmp.Compare(a.TraitDistance, b.TraitDistance)
	})
	if len(candidates) > 2*topN {
		candidates = candidates[:2*topN]
	}

	subjectCats := categoryValues(subject, opts.SubjectCategoryKeys)
	for i := range candidates {
		c := &candidates[i]
		c.CategoryScore = categoryScore(registry, subjectCats, categoryValues(c.Submission, opts.CandidateCategoryKeys))
		c.Score = traitScoreWeight*(1-c.TraitDistance) + categoryScoreWeight*c.CategoryScore
	}

	// Empates exactos conservan el orden original del pool.
	slices.SortStableFunc(candidates, func(a, b RankedCandidate) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(a.PoolIndex, b.PoolIndex)
	})
	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}

// traitDistance promedia la distancia de codigos sobre las keys compartidas;
// sin keys compartidas la distancia es maxima.
func traitDistance(a, b domain.Submission, excluded map[string]struct{}) float64 {
	keys := make([]string, 0, len(a.Data))
	for k := range a.Data {
		if _, skip := excluded[k]; skip {
			continue
		}
		if _, ok := a.Value(k); !ok {
			continue
		}
		if _, ok := b.Value(k); !ok {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return 1
	}
	sort.Strings(keys)

	var sum float64
	for _, k := range keys {
		sum += TraitDistance(EncodeTrait(a.Data[k]), EncodeTrait(b.Data[k]))
	}
	return sum / float64(len(keys))
}

func categoryValues(s domain.Submission, keys []string) []string {
	var out []string
	for _, k := range keys {
		if v, ok := s.Value(k); ok {
			out = append(out, v.Strings()...)
		}
	}
	return out
}

func categoryScore(registry *CategoryRegistry, a, b []string) float64 {
	if registry == nil || len(a) == 0 || len(b) == 0 {
		return 0
	}
	best := 0.0
	for _, x := range a {
		for _, y := range b {
			if s := registry.Similarity(x, y); s > best {
				best = s
			}
		}
	}
	return best
}
