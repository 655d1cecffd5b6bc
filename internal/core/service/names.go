package service

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yndnr/sumconf-go/internal/core/domain"
)

// forbiddenNameChars cannot appear in an application name because they
// are unsafe or ambiguous in file names.
const forbiddenNameChars = `.!@$%^&*()[]|:;<>?/\`

// assigned covers every Unicode category except Cn (unassigned).
var assigned = []*unicode.RangeTable{
	unicode.L, unicode.M, unicode.N, unicode.P, unicode.S, unicode.Z, unicode.C,
}

// ValidateAppName checks that name is usable to build file names.
// It fails with ErrInvalidAppName for empty names and names containing
// control characters, unassigned code points or forbidden punctuation.
// suspect reports a valid name with characters other than letters,
// numbers, '_' and '-'.
func ValidateAppName(name string) (suspect bool, err error) {
	if name == "" {
		return false, domain.ErrInvalidAppName.WithDetails("empty name")
	}
	if !utf8.ValidString(name) {
		return false, domain.ErrInvalidAppName.WithDetails(fmt.Sprintf("%q is not valid UTF-8", name))
	}

	for _, r := range name {
		switch {
		case unicode.IsControl(r), !unicode.In(r, assigned...), strings.ContainsRune(forbiddenNameChars, r):
			return false, domain.ErrInvalidAppName.WithDetails(fmt.Sprintf("%q", name))
		case unicode.IsLetter(r), unicode.IsNumber(r), r == '_', r == '-':
		default:
			suspect = true
		}
	}
	return suspect, nil
}
