// Package actions implements vocabulary actions over the store,
// with authorization of actors.
//
// Reading actions are allowed for everyone. Writing actions require sysadmin.
package actions

import (
	"context"
	"fmt"

	"github.com/opst/vocabfab/pkg/domain"
	kerr "github.com/opst/vocabfab/pkg/domain/errors"
	kvocab "github.com/opst/vocabfab/pkg/domain/vocabulary/db"
	"github.com/opst/vocabfab/pkg/provision"
)

// names of actions.
const (
	VocabularyShow   = "vocabulary_show"
	VocabularyList   = "vocabulary_list"
	VocabularyCreate = "vocabulary_create"
	VocabularyDelete = "vocabulary_delete"
	TagCreate        = "tag_create"
	TagDelete        = "tag_delete"
	TagList          = "tag_list"
	GetSiteUser      = "get_site_user"
)

// Unauthorized is an error that the Actor is not allowed to do the action.
type Unauthorized struct {
	Actor  domain.Actor
	Action string
}

func (u Unauthorized) Error() string {
	who := u.Actor.Name
	if u.Actor.IsAnonymous() {
		who = "anonymous user"
	}
	return fmt.Sprintf("%s is not authorized to %s", who, u.Action)
}

func (u Unauthorized) Unwrap() error {
	return kerr.ErrNotAuthorized
}

type Actions struct {
	vocab    kvocab.VocabularyInterface
	siteUser domain.Actor
}

var _ provision.Actions = &Actions{}

// New returns Actions over the store.
//
// siteUser is the Actor of the site itself. It should be sysadmin.
func New(vocab kvocab.VocabularyInterface, siteUser domain.Actor) *Actions {
	return &Actions{vocab: vocab, siteUser: siteUser}
}

func authorizeWrite(actor domain.Actor, action string) error {
	if actor.IsAnonymous() || !actor.Sysadmin {
		return Unauthorized{Actor: actor, Action: action}
	}
	return nil
}

func missing(what string, id string) error {
	return fmt.Errorf("%w: %s %q", kerr.ErrMissing, what, id)
}

// ShowVocabulary looks a Vocabulary up by its name or id.
func (a *Actions) ShowVocabulary(ctx context.Context, actor domain.Actor, nameOrId string) (domain.Lookup, error) {
	return a.vocab.Find(ctx, nameOrId)
}

// ListVocabularies returns all Vocabularies.
func (a *Actions) ListVocabularies(ctx context.Context, actor domain.Actor) ([]domain.Vocabulary, error) {
	return a.vocab.List(ctx)
}

// CreateVocabulary creates a Vocabulary without Terms.
func (a *Actions) CreateVocabulary(ctx context.Context, actor domain.Actor, name string) (domain.Vocabulary, error) {
	return a.CreateVocabularyWithTerms(ctx, actor, name, nil)
}

// CreateVocabularyWithTerms creates a Vocabulary with Terms at once.
//
// Duplicated terms are dropped.
func (a *Actions) CreateVocabularyWithTerms(ctx context.Context, actor domain.Actor, name string, terms []string) (domain.Vocabulary, error) {
	if err := authorizeWrite(actor, VocabularyCreate); err != nil {
		return domain.Vocabulary{}, err
	}
	if err := domain.ValidateVocabularyName(name); err != nil {
		return domain.Vocabulary{}, err
	}
	terms, err := domain.NormalizeTerms(terms)
	if err != nil {
		return domain.Vocabulary{}, err
	}
	return a.vocab.Create(ctx, name, terms)
}

// DeleteVocabulary removes a Vocabulary, specified by its name or id, with its Terms.
func (a *Actions) DeleteVocabulary(ctx context.Context, actor domain.Actor, nameOrId string) error {
	if err := authorizeWrite(actor, VocabularyDelete); err != nil {
		return err
	}
	vocab, err := a.lookup(ctx, nameOrId)
	if err != nil {
		return err
	}
	return a.vocab.Delete(ctx, vocab.Id)
}

func (a *Actions) lookup(ctx context.Context, nameOrId string) (domain.Vocabulary, error) {
	l, err := a.vocab.Find(ctx, nameOrId)
	if err != nil {
		return domain.Vocabulary{}, err
	}
	vocab, ok := l.Get()
	if !ok {
		return domain.Vocabulary{}, missing("vocabulary", nameOrId)
	}
	return vocab, nil
}

// CreateTerm adds a Term to the Vocabulary specified by its name or id.
func (a *Actions) CreateTerm(ctx context.Context, actor domain.Actor, vocabularyId string, term string) (domain.Term, error) {
	if err := authorizeWrite(actor, TagCreate); err != nil {
		return domain.Term{}, err
	}
	if err := domain.ValidateTermName(term); err != nil {
		return domain.Term{}, err
	}
	vocab, err := a.lookup(ctx, vocabularyId)
	if err != nil {
		return domain.Term{}, err
	}
	return a.vocab.CreateTerm(ctx, vocab.Id, term)
}

// DeleteTerm removes a Term, specified by its name or id, from the Vocabulary.
func (a *Actions) DeleteTerm(ctx context.Context, actor domain.Actor, vocabularyId string, nameOrId string) error {
	if err := authorizeWrite(actor, TagDelete); err != nil {
		return err
	}
	vocab, err := a.lookup(ctx, vocabularyId)
	if err != nil {
		return err
	}
	return a.vocab.DeleteTerm(ctx, vocab.Id, nameOrId)
}

// ListTerms returns Terms in the Vocabulary specified by its name or id.
//
// Terms are read after the lookup, so they reflect the latest creations.
func (a *Actions) ListTerms(ctx context.Context, actor domain.Actor, vocabularyId string) ([]domain.Term, error) {
	vocab, err := a.lookup(ctx, vocabularyId)
	if err != nil {
		return nil, err
	}
	return a.vocab.Terms(ctx, vocab.Id)
}

// SiteUser returns the Actor of the site.
//
// Only sysadmins can know it.
func (a *Actions) SiteUser(ctx context.Context, actor domain.Actor) (domain.Actor, error) {
	if err := authorizeWrite(actor, GetSiteUser); err != nil {
		return domain.Actor{}, err
	}
	return a.siteUser, nil
}
