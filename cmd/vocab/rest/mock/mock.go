package mock

import (
	"context"
	"sync"
	"testing"

	"github.com/opst/vocabfab/cmd/vocab/rest"
	"github.com/opst/vocabfab/pkg/domain"
)

type CreateTermArgs struct {
	VocabularyId string
	Term         string
}

type DeleteTermArgs struct {
	VocabularyId string
	NameOrId     string
}

// MockVocabClient is a VocabClient with replaceable implementations.
//
// Calling a method without its Impl fails the test.
type MockVocabClient struct {
	t   *testing.T
	mux sync.Mutex

	Impl struct {
		ShowVocabulary   func(ctx context.Context, actor domain.Actor, nameOrId string) (domain.Lookup, error)
		ListVocabularies func(ctx context.Context, actor domain.Actor) ([]domain.Vocabulary, error)
		CreateVocabulary func(ctx context.Context, actor domain.Actor, name string) (domain.Vocabulary, error)
		DeleteVocabulary func(ctx context.Context, actor domain.Actor, nameOrId string) error
		CreateTerm       func(ctx context.Context, actor domain.Actor, vocabularyId string, term string) (domain.Term, error)
		DeleteTerm       func(ctx context.Context, actor domain.Actor, vocabularyId string, nameOrId string) error
		ListTerms        func(ctx context.Context, actor domain.Actor, vocabularyId string) ([]domain.Term, error)
		GetSiteUser      func(ctx context.Context, actor domain.Actor) (domain.Actor, error)
	}

	Calls struct {
		ShowVocabulary   []string
		ListVocabularies int
		CreateVocabulary []string
		DeleteVocabulary []string
		CreateTerm       []CreateTermArgs
		DeleteTerm       []DeleteTermArgs
		ListTerms        []string
		GetSiteUser      int

		// Actors passed to any methods, in order.
		Actors []domain.Actor
	}
}

var _ rest.VocabClient = &MockVocabClient{}

func New(t *testing.T) *MockVocabClient {
	return &MockVocabClient{t: t}
}

func (m *MockVocabClient) record(actor domain.Actor, f func()) {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.Calls.Actors = append(m.Calls.Actors, actor)
	f()
}

func (m *MockVocabClient) ShowVocabulary(ctx context.Context, actor domain.Actor, nameOrId string) (domain.Lookup, error) {
	m.t.Helper()
	m.record(actor, func() { m.Calls.ShowVocabulary = append(m.Calls.ShowVocabulary, nameOrId) })
	if m.Impl.ShowVocabulary == nil {
		m.t.Fatal("ShowVocabulary should not be called")
	}
	return m.Impl.ShowVocabulary(ctx, actor, nameOrId)
}

func (m *MockVocabClient) ListVocabularies(ctx context.Context, actor domain.Actor) ([]domain.Vocabulary, error) {
	m.t.Helper()
	m.record(actor, func() { m.Calls.ListVocabularies += 1 })
	if m.Impl.ListVocabularies == nil {
		m.t.Fatal("ListVocabularies should not be called")
	}
	return m.Impl.ListVocabularies(ctx, actor)
}

func (m *MockVocabClient) CreateVocabulary(ctx context.Context, actor domain.Actor, name string) (domain.Vocabulary, error) {
	m.t.Helper()
	m.record(actor, func() { m.Calls.CreateVocabulary = append(m.Calls.CreateVocabulary, name) })
	if m.Impl.CreateVocabulary == nil {
		m.t.Fatal("CreateVocabulary should not be called")
	}
	return m.Impl.CreateVocabulary(ctx, actor, name)
}

func (m *MockVocabClient) DeleteVocabulary(ctx context.Context, actor domain.Actor, nameOrId string) error {
	m.t.Helper()
	m.record(actor, func() { m.Calls.DeleteVocabulary = append(m.Calls.DeleteVocabulary, nameOrId) })
	if m.Impl.DeleteVocabulary == nil {
		m.t.Fatal("DeleteVocabulary should not be called")
	}
	return m.Impl.DeleteVocabulary(ctx, actor, nameOrId)
}

func (m *MockVocabClient) CreateTerm(ctx context.Context, actor domain.Actor, vocabularyId string, term string) (domain.Term, error) {
	m.t.Helper()
	m.record(actor, func() {
		m.Calls.CreateTerm = append(m.Calls.CreateTerm, CreateTermArgs{VocabularyId: vocabularyId, Term: term})
	})
	if m.Impl.CreateTerm == nil {
		m.t.Fatal("CreateTerm should not be called")
	}
	return m.Impl.CreateTerm(ctx, actor, vocabularyId, term)
}

func (m *MockVocabClient) DeleteTerm(ctx context.Context, actor domain.Actor, vocabularyId string, nameOrId string) error {
	m.t.Helper()
	m.record(actor, func() {
		m.Calls.DeleteTerm = append(m.Calls.DeleteTerm, DeleteTermArgs{VocabularyId: vocabularyId, NameOrId: nameOrId})
	})
	if m.Impl.DeleteTerm == nil {
		m.t.Fatal("DeleteTerm should not be called")
	}
	return m.Impl.DeleteTerm(ctx, actor, vocabularyId, nameOrId)
}

func (m *MockVocabClient) ListTerms(ctx context.Context, actor domain.Actor, vocabularyId string) ([]domain.Term, error) {
	m.t.Helper()
	m.record(actor, func() { m.Calls.ListTerms = append(m.Calls.ListTerms, vocabularyId) })
	if m.Impl.ListTerms == nil {
		m.t.Fatal("ListTerms should not be called")
	}
	return m.Impl.ListTerms(ctx, actor, vocabularyId)
}

func (m *MockVocabClient) GetSiteUser(ctx context.Context, actor domain.Actor) (domain.Actor, error) {
	m.t.Helper()
	m.record(actor, func() { m.Calls.GetSiteUser += 1 })
	if m.Impl.GetSiteUser == nil {
		m.t.Fatal("GetSiteUser should not be called")
	}
	return m.Impl.GetSiteUser(ctx, actor)
}
