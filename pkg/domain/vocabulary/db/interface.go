package db

import (
	"context"

	"github.com/opst/vocabfab/pkg/domain"
)

type VocabularyInterface interface {
	// Find a Vocabulary by its name or id.
	//
	// # Args
	//
	// - context.Context
	//
	// - string: name or id of the Vocabulary. Id takes priority when both match.
	//
	// # Returns
	//
	// - domain.Lookup: Found with the Vocabulary and its Terms, or Absent.
	// Absence is not an error.
	//
	// - error: other failures.
	Find(ctx context.Context, nameOrId string) (domain.Lookup, error)

	// List all Vocabularies with their Terms, sorted by name.
	List(ctx context.Context) ([]domain.Vocabulary, error)

	// Create a new Vocabulary with Terms.
	//
	// Terms are created in the given order, atomically with the Vocabulary.
	//
	// # Args
	//
	// - context.Context
	//
	// - string: name of the new Vocabulary.
	//
	// - []string: names of Terms. They should not have duplicates.
	//
	// # Returns
	//
	// - domain.Vocabulary: created one
	//
	// - error: Conflict (wrapping ErrConflict) when the name is already in use.
	Create(ctx context.Context, name string, terms []string) (domain.Vocabulary, error)

	// CreateTerm adds a Term to the Vocabulary.
	//
	// # Returns
	//
	// - domain.Term: created one
	//
	// - error: Missing when the Vocabulary is not found,
	// Conflict when the Term is already in the Vocabulary.
	CreateTerm(ctx context.Context, vocabularyId string, name string) (domain.Term, error)

	// Terms returns Terms in the Vocabulary, in the order of creation.
	//
	// # Returns
	//
	// - error: Missing when the Vocabulary is not found.
	Terms(ctx context.Context, vocabularyId string) ([]domain.Term, error)

	// DeleteTerm removes a Term, specified by its name or id, from the Vocabulary.
	//
	// # Returns
	//
	// - error: Missing when there are no such Term in the Vocabulary.
	DeleteTerm(ctx context.Context, vocabularyId string, nameOrId string) error

	// Delete removes the Vocabulary with its Terms.
	//
	// # Returns
	//
	// - error: Missing when the Vocabulary is not found.
	Delete(ctx context.Context, vocabularyId string) error
}
