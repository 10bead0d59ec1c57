package domain

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	domerr "github.com/opst/vocabfab/pkg/domain/errors"
)

const (
	MinNameLength = 2
	MaxNameLength = 100
)

type Term struct {
	Id           string
	Name         string
	VocabularyId string
}

type Vocabulary struct {
	Id    string
	Name  string
	Terms []Term
}

// TermNames returns names of Terms in the Vocabulary, in the stored order.
func (v Vocabulary) TermNames() []string {
	names := make([]string, len(v.Terms))
	for nth, t := range v.Terms {
		names[nth] = t.Name
	}
	return names
}

func (v Vocabulary) Equal(o Vocabulary) bool {
	if v.Id != o.Id || v.Name != o.Name || len(v.Terms) != len(o.Terms) {
		return false
	}
	for nth := range v.Terms {
		if v.Terms[nth] != o.Terms[nth] {
			return false
		}
	}
	return true
}

// ValidateVocabularyName checks the name can be a name of Vocabulary.
//
// It should have 2 to 100 characters.
//
// # Returns
//
// - error: nil when ok. Otherwise it wraps ErrInvalid.
func ValidateVocabularyName(name string) error {
	l := utf8.RuneCountInString(name)
	if l < MinNameLength {
		return fmt.Errorf(
			"%w: vocabulary name %q must be at least %d characters long",
			domerr.ErrInvalid, name, MinNameLength,
		)
	}
	if MaxNameLength < l {
		return fmt.Errorf(
			"%w: vocabulary name must be a maximum of %d characters long",
			domerr.ErrInvalid, MaxNameLength,
		)
	}
	return nil
}

// ValidateTermName checks the name can be a name of Term.
//
// It should have 2 to 100 characters,
// and consist of letters, digits, spaces and symbols "-", "_" and ".".
//
// # Returns
//
// - error: nil when ok. Otherwise it wraps ErrInvalid.
func ValidateTermName(name string) error {
	l := utf8.RuneCountInString(name)
	if l < MinNameLength {
		return fmt.Errorf(
			"%w: term %q must be at least %d characters long",
			domerr.ErrInvalid, name, MinNameLength,
		)
	}
	if MaxNameLength < l {
		return fmt.Errorf(
			"%w: term must be a maximum of %d characters long",
			domerr.ErrInvalid, MaxNameLength,
		)
	}
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
		case r == ' ', r == '-', r == '_', r == '.':
		default:
			return fmt.Errorf(
				"%w: term %q must be alphanumeric characters or symbols: -_.",
				domerr.ErrInvalid, name,
			)
		}
	}
	return nil
}

// NormalizeTerms validates terms and drops duplicates.
//
// The first occurrence of each term is kept at its position.
func NormalizeTerms(terms []string) ([]string, error) {
	known := map[string]struct{}{}
	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		if err := ValidateTermName(t); err != nil {
			return nil, err
		}
		if _, ok := known[t]; ok {
			continue
		}
		known[t] = struct{}{}
		normalized = append(normalized, t)
	}
	return normalized, nil
}

// Lookup is a result of finding a Vocabulary by its name.
//
// It is either Found (with the Vocabulary) or Absent.
// Being absent is not an error.
type Lookup struct {
	vocabulary *Vocabulary
}

func Found(v Vocabulary) Lookup {
	return Lookup{vocabulary: &v}
}

func Absent() Lookup {
	return Lookup{}
}

// Get returns the found Vocabulary.
//
// The bool is false when the Vocabulary is absent.
func (l Lookup) Get() (Vocabulary, bool) {
	if l.vocabulary == nil {
		return Vocabulary{}, false
	}
	return *l.vocabulary, true
}

func (l Lookup) IsFound() bool {
	return l.vocabulary != nil
}

func (l Lookup) String() string {
	if v, ok := l.Get(); ok {
		return fmt.Sprintf("Found(%s: %s)", v.Name, v.Id)
	}
	return "Absent"
}
