// Package matching contiene el motor de matching: codigos de familia,
// registro de categorias, codificacion de rasgos, ranking de perfiles,
// evaluacion de criterios y puntaje de personalidad. Todo es puro salvo
// CategoryRegistry, que vive un solo run.
package matching

import (
	"errors"
	"strings"
)

var ErrInvalidFamilyCode = errors.New("invalid family code")

// maxFamilyCodeLen: 13 letras ya cubren cualquier rank de un registro real y
// siguen entrando en un int64.
const maxFamilyCodeLen = 13

// EncodeFamilyCode convierte un rank >= 0 al codigo estilo columna de planilla
// (0 -> A, 25 -> Z, 26 -> AA).
func EncodeFamilyCode(rank int) (string, error) {
	if rank < 0 {
		return "", ErrInvalidFamilyCode
	}
	var buf []byte
	for rank >= 0 {
		buf = append(buf, byte('A'+rank%26))
		rank = rank/26 - 1
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf), nil
}

// DecodeFamilyCode invierte EncodeFamilyCode.
func DecodeFamilyCode(code string) (int, error) {
	if code == "" || len(code) > maxFamilyCodeLen {
		return 0, ErrInvalidFamilyCode
	}
	rank := 0
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c < 'A' || c > 'Z' {
			return 0, ErrInvalidFamilyCode
		}
		rank = rank*26 + int(c-'A'+1)
	}
	return rank - 1, nil
}

// CompareFamilyCodes ordena codigos igual que sus ranks: primero por largo,
// despues lexicograficamente.
func CompareFamilyCodes(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func mustFamilyCode(rank int) string {
	code, err := EncodeFamilyCode(rank)
	if err != nil {
		panic(err)
	}
	return code
}
