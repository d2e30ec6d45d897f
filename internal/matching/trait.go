package matching

import (
	"math"
	"strings"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
)

const (
	traitAlphabet   = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	traitBase       = 62
	TraitCodeLength = 9
)

// traitSpace = 62^9
var traitSpace = func() uint64 {
	n := uint64(1)
	for i := 0; i < TraitCodeLength; i++ {
		n *= traitBase
	}
	return n
}()

// NormalizeTrait lleva cualquier respuesta a [0,1]. Los numeros se asumen ya
// escalados; los strings pasan por un hash de 32 bits; las listas promedian.
func NormalizeTrait(v domain.Value) float64 {
	switch v.Kind {
	case domain.ValueNumber:
		return clamp01(v.Num)
	case domain.ValueString:
		return hashUnit(v.Str)
	case domain.ValueBool:
		if v.Bool {
			return 1
		}
		return 0
	case domain.ValueList:
		if len(v.List) == 0 {
			return 0
		}
		var sum float64
		for _, item := range v.List {
			sum += hashUnit(item)
		}
		return sum / float64(len(v.List))
	}
	return 0
}

// hashUnit: hash = hash*31 + c sobre 32 bits, mapeado a [0,1].
func hashUnit(s string) float64 {
	var h uint32
	for _, r := range s {
		h = (h << 5) - h + uint32(r)
	}
	return float64(h) / float64(math.MaxUint32)
}

// EncodeTrait genera el codigo base-62 de 9 caracteres de una respuesta.
func EncodeTrait(v domain.Value) string {
	return encodeUnit(NormalizeTrait(v))
}

func encodeUnit(x float64) string {
	n := uint64(clamp01(x) * float64(traitSpace))
	if n >= traitSpace {
		n = traitSpace - 1
	}
	var buf [TraitCodeLength]byte
	for i := TraitCodeLength - 1; i >= 0; i-- {
		buf[i] = traitAlphabet[n%traitBase]
		n /= traitBase
	}
	return string(buf[:])
}

// TraitDistance suma la diferencia de indice por posicion y la normaliza a [0,1].
// Codigos mal formados quedan a distancia maxima.
func TraitDistance(a, b string) float64 {
	if len(a) != TraitCodeLength || len(b) != TraitCodeLength {
		return 1
	}
	total := 0
	for i := 0; i < TraitCodeLength; i++ {
		ia := strings.IndexByte(traitAlphabet, a[i])
		ib := strings.IndexByte(traitAlphabet, b[i])
		if ia < 0 || ib < 0 {
			return 1
		}
		d := ia - ib
		if d < 0 {
			d = -d
		}
		total += d
	}
	return float64(total) / float64(TraitCodeLength*traitBase)
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
