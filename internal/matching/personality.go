package matching

import (
	"math"
	"strings"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
)

// Pesos fijos del rubro de personalidad.
const (
	weightType     = 0.35
	weightCategory = 0.30
	weightRisk     = 0.20
	weightInterest = 0.10
	weightNetwork  = 0.05

	maxBackgroundBonus = 10.0
	neutralTypeScore   = 50.0
)

type typePair struct {
	founder  domain.PersonalityType
	investor domain.PersonalityType
}

var (
	bestTypePairs = pairSet(
		typePair{domain.FounderVisionary, domain.InvestorVenture},
		typePair{domain.FounderOperator, domain.InvestorStrategic},
		typePair{domain.FounderTechnologist, domain.InvestorAngel},
		typePair{domain.FounderHustler, domain.InvestorImpact},
		typePair{domain.FounderTechnologist, domain.InvestorVenture},
		typePair{domain.FounderOperator, domain.InvestorImpact},
	)
	worstTypePairs = pairSet(
		typePair{domain.FounderVisionary, domain.InvestorStrategic},
		typePair{domain.FounderHustler, domain.InvestorVenture},
		typePair{domain.FounderTechnologist, domain.InvestorImpact},
		typePair{domain.FounderOperator, domain.InvestorAngel},
	)
)

func pairSet(pairs ...typePair) map[typePair]struct{} {
	out := make(map[typePair]struct{}, len(pairs))
	for _, p := range pairs {
		out[p] = struct{}{}
	}
	return out
}

// PersonalityBreakdown detalla cada eje del puntaje (todos en 0..100 salvo Bonus).
type PersonalityBreakdown struct {
	Type     float64
	Category float64
	Risk     float64
	Interest float64
	Network  float64
	Bonus    float64 // ya escalado y con tope de 10 puntos
	Total    float64
}

// ScorePersonality devuelve la compatibilidad 0..100 entre dos perfiles.
func ScorePersonality(a, b domain.PersonalityProfile) float64 {
	return ExplainPersonality(a, b).Total
}

// ExplainPersonality calcula el puntaje y su desglose.
func ExplainPersonality(a, b domain.PersonalityProfile) PersonalityBreakdown {
	bd := PersonalityBreakdown{
		Type:     typeCompatibility(a.TypeTag, b.TypeTag),
		Category: overlapRatio(a.CategoryFocus, b.CategoryFocus) * 100,
		Risk:     riskAlignment(a.RiskTolerance, b.RiskTolerance),
		Interest: overlapRatio(a.Interests, b.Interests) * 100,
		Network:  networkProximity(a, b),
		Bonus:    backgroundBonus(a, b),
	}
	total := bd.Type*weightType +
		bd.Category*weightCategory +
		bd.Risk*weightRisk +
		bd.Interest*weightInterest +
		bd.Network*weightNetwork +
		bd.Bonus
	bd.Total = math.Max(0, math.Min(100, total))
	return bd
}

// typeCompatibility no depende de que lado es founder.
func typeCompatibility(a, b domain.PersonalityType) float64 {
	if a == "" || b == "" {
		return neutralTypeScore
	}
	for _, p := range []typePair{{a, b}, {b, a}} {
		if _, ok := bestTypePairs[p]; ok {
			return 100
		}
		if _, ok := worstTypePairs[p]; ok {
			return 0
		}
	}
	return neutralTypeScore
}

// riskAlignment penaliza al doble cualquier diferencia distinta de cero.
func riskAlignment(a, b int) float64 {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d == 0 {
		return 100
	}
	return math.Max(0, (100-float64(d)*25)*0.5)
}

func networkProximity(a, b domain.PersonalityProfile) float64 {
	netDiff := math.Abs(float64(networkTier(a.NetworkSize) - networkTier(b.NetworkSize)))
	folDiff := math.Abs(float64(followerTier(a.FollowerCount) - followerTier(b.FollowerCount)))
	avg := (netDiff + folDiff) / 2
	return math.Max(0, 100-avg*2)
}

func networkTier(n int) int {
	switch {
	case n < 100:
		return 0
	case n < 300:
		return 1
	case n < 500:
		return 2
	default:
		return 3
	}
}

func followerTier(n int) int {
	switch {
	case n < 1000:
		return 0
	case n < 5000:
		return 1
	case n < 10000:
		return 2
	default:
		return 3
	}
}

// backgroundBonus suma idioma/pais (50+50) y educacion (100), escala por 0.1
// y corta en 10 puntos.
func backgroundBonus(a, b domain.PersonalityProfile) float64 {
	location := overlapRatio(a.Languages, b.Languages)*50 + overlapRatio(a.Countries, b.Countries)*50
	education := overlapRatio(a.Education, b.Education) * 100
	return math.Min(maxBackgroundBonus, (location+education)*0.1)
}

// overlapRatio = |A ∩ B| / max(|A|,|B|), sin distinguir mayusculas.
func overlapRatio(a, b []string) float64 {
	sa, sb := stringSet(a), stringSet(b)
	denom := len(sa)
	if len(sb) > denom {
		denom = len(sb)
	}
	if denom == 0 {
		return 0
	}
	inter := 0
	for k := range sa {
		if _, ok := sb[k]; ok {
			inter++
		}
	}
	return float64(inter) / float64(denom)
}

func stringSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.ToLower(strings.TrimSpace(it))
		if it != "" {
			out[it] = struct{}{}
		}
	}
	return out
}
