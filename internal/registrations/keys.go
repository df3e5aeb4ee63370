package registrations

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// KeyLength is the only shape check applied to a key. Whether a key is real
// is decided by the record store lookup.
const KeyLength = 10

var (
	// ErrNoKey is returned when no answer has the length of a key.
	ErrNoKey = errors.New("no answer looks like a key")
	// ErrAmbiguousKey is returned when more than one answer could be the key.
	ErrAmbiguousKey = errors.New("more than one answer looks like a key")
)

// NormalizeAnswer trims surrounding whitespace and lowercases an answer.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CandidateKeys returns the normalized answers that are exactly KeyLength characters long.
func CandidateKeys(answers []string) []string {
	var out []string
	for _, a := range answers {
		a = NormalizeAnswer(a)
		if utf8.RuneCountInString(a) == KeyLength {
			out = append(out, a)
		}
	}
	return out
}

// ExtractKey returns the single candidate key among answers. It never
// guesses between several candidates.
func ExtractKey(answers []string) (string, []string, error) {
	candidates := CandidateKeys(answers)
	switch len(candidates) {
	case 0:
		return "", nil, ErrNoKey
	case 1:
		return candidates[0], candidates, nil
	default:
		return "", candidates, ErrAmbiguousKey
	}
}
