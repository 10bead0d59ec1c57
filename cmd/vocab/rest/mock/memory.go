package mock

import (
	"context"
	"fmt"
	"slices"

	"github.com/opst/vocabfab/pkg/domain"
	kerr "github.com/opst/vocabfab/pkg/domain/errors"
)

// Memory is a set of Vocabularies which WithMemory serves.
type Memory struct {
	Site         domain.Actor
	Vocabularies []domain.Vocabulary

	seq int
}

func (mem *Memory) find(nameOrId string) int {
	return slices.IndexFunc(mem.Vocabularies, func(v domain.Vocabulary) bool {
		return v.Id == nameOrId || v.Name == nameOrId
	})
}

func (mem *Memory) id(prefix string) string {
	mem.seq += 1
	return fmt.Sprintf("%s-%d", prefix, mem.seq)
}

// clone copies v so that callers never share Terms with Memory,
// as vocabd responses do.
func clone(v domain.Vocabulary) domain.Vocabulary {
	v.Terms = slices.Clone(v.Terms)
	return v
}

// WithMemory sets all Impl to work on mem, like vocabd does.
//
// It returns m itself.
func (m *MockVocabClient) WithMemory(mem *Memory) *MockVocabClient {
	m.Impl.ShowVocabulary = func(ctx context.Context, actor domain.Actor, nameOrId string) (domain.Lookup, error) {
		nth := mem.find(nameOrId)
		if nth < 0 {
			return domain.Absent(), nil
		}
		return domain.Found(clone(mem.Vocabularies[nth])), nil
	}
	m.Impl.ListVocabularies = func(ctx context.Context, actor domain.Actor) ([]domain.Vocabulary, error) {
		vs := make([]domain.Vocabulary, 0, len(mem.Vocabularies))
		for _, v := range mem.Vocabularies {
			vs = append(vs, clone(v))
		}
		return vs, nil
	}
	m.Impl.CreateVocabulary = func(ctx context.Context, actor domain.Actor, name string) (domain.Vocabulary, error) {
		if 0 <= mem.find(name) {
			return domain.Vocabulary{}, fmt.Errorf("%w: vocabulary name is already in use", kerr.ErrConflict)
		}
		v := domain.Vocabulary{Id: mem.id("vocab"), Name: name}
		mem.Vocabularies = append(mem.Vocabularies, v)
		return clone(v), nil
	}
	m.Impl.DeleteVocabulary = func(ctx context.Context, actor domain.Actor, nameOrId string) error {
		nth := mem.find(nameOrId)
		if nth < 0 {
			return fmt.Errorf("%w: vocabulary", kerr.ErrMissing)
		}
		mem.Vocabularies = slices.Delete(mem.Vocabularies, nth, nth+1)
		return nil
	}
	m.Impl.CreateTerm = func(ctx context.Context, actor domain.Actor, vocabularyId string, term string) (domain.Term, error) {
		nth := mem.find(vocabularyId)
		if nth < 0 {
			return domain.Term{}, fmt.Errorf("%w: vocabulary", kerr.ErrMissing)
		}
		v := &mem.Vocabularies[nth]
		if slices.Contains(v.TermNames(), term) {
			return domain.Term{}, fmt.Errorf("%w: term is already in use", kerr.ErrConflict)
		}
		t := domain.Term{Id: mem.id("term"), Name: term, VocabularyId: v.Id}
		v.Terms = append(v.Terms, t)
		return t, nil
	}
	m.Impl.DeleteTerm = func(ctx context.Context, actor domain.Actor, vocabularyId string, nameOrId string) error {
		nth := mem.find(vocabularyId)
		if nth < 0 {
			return fmt.Errorf("%w: vocabulary", kerr.ErrMissing)
		}
		v := &mem.Vocabularies[nth]
		tnth := slices.IndexFunc(v.Terms, func(t domain.Term) bool {
			return t.Id == nameOrId || t.Name == nameOrId
		})
		if tnth < 0 {
			return fmt.Errorf("%w: term", kerr.ErrMissing)
		}
		v.Terms = slices.Delete(v.Terms, tnth, tnth+1)
		return nil
	}
	m.Impl.ListTerms = func(ctx context.Context, actor domain.Actor, vocabularyId string) ([]domain.Term, error) {
		nth := mem.find(vocabularyId)
		if nth < 0 {
			return nil, fmt.Errorf("%w: vocabulary", kerr.ErrMissing)
		}
		return slices.Clone(mem.Vocabularies[nth].Terms), nil
	}
	m.Impl.GetSiteUser = func(ctx context.Context, actor domain.Actor) (domain.Actor, error) {
		return mem.Site, nil
	}
	return m
}
