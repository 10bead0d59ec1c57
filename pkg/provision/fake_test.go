package provision_test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/opst/vocabfab/pkg/domain"
	kerr "github.com/opst/vocabfab/pkg/domain/errors"
)

// memActions is an in-memory Actions for tests.
//
// It records calls as "<action> <argument>" lines.
type memActions struct {
	mux    sync.Mutex
	vocabs map[string]*domain.Vocabulary
	seq    int

	Calls []string

	// hooks to inject failures. when they return non-nil error, the action fails.
	BeforeShow   func(name string) error
	BeforeCreate func(name string) error
	BeforeTerm   func(vocab string, term string) error
}

func newMemActions() *memActions {
	return &memActions{vocabs: map[string]*domain.Vocabulary{}}
}

func (m *memActions) nextId(prefix string) string {
	m.seq += 1
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

// put creates a Vocabulary directly, without recording calls.
func (m *memActions) put(name string, terms ...string) domain.Vocabulary {
	m.mux.Lock()
	defer m.mux.Unlock()
	v := &domain.Vocabulary{Id: m.nextId("vocab"), Name: name, Terms: []domain.Term{}}
	for _, t := range terms {
		v.Terms = append(v.Terms, domain.Term{Id: m.nextId("term"), Name: t, VocabularyId: v.Id})
	}
	m.vocabs[name] = v
	return *v
}

func (m *memActions) byId(id string) *domain.Vocabulary {
	for _, v := range m.vocabs {
		if v.Id == id {
			return v
		}
	}
	return nil
}

// Writes counts calls which write.
func (m *memActions) Writes() int {
	m.mux.Lock()
	defer m.mux.Unlock()
	n := 0
	for _, c := range m.Calls {
		var action string
		fmt.Sscan(c, &action)
		if action == "vocabulary_create" || action == "tag_create" {
			n += 1
		}
	}
	return n
}

func (m *memActions) Names() []string {
	m.mux.Lock()
	defer m.mux.Unlock()
	names := []string{}
	for n := range m.vocabs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (m *memActions) Get(name string) (domain.Vocabulary, bool) {
	m.mux.Lock()
	defer m.mux.Unlock()
	v, ok := m.vocabs[name]
	if !ok {
		return domain.Vocabulary{}, false
	}
	return *v, true
}

func (m *memActions) ShowVocabulary(_ context.Context, _ domain.Actor, name string) (domain.Lookup, error) {
	m.mux.Lock()
	m.Calls = append(m.Calls, "vocabulary_show "+name)
	hook := m.BeforeShow
	m.mux.Unlock()
	if hook != nil {
		if err := hook(name); err != nil {
			return domain.Absent(), err
		}
	}

	m.mux.Lock()
	defer m.mux.Unlock()
	v, ok := m.vocabs[name]
	if !ok {
		return domain.Absent(), nil
	}
	found := *v
	found.Terms = append([]domain.Term{}, v.Terms...)
	return domain.Found(found), nil
}

func (m *memActions) CreateVocabulary(_ context.Context, _ domain.Actor, name string) (domain.Vocabulary, error) {
	m.mux.Lock()
	m.Calls = append(m.Calls, "vocabulary_create "+name)
	hook := m.BeforeCreate
	m.mux.Unlock()
	if hook != nil {
		if err := hook(name); err != nil {
			return domain.Vocabulary{}, err
		}
	}

	m.mux.Lock()
	defer m.mux.Unlock()
	if _, ok := m.vocabs[name]; ok {
		return domain.Vocabulary{}, fmt.Errorf("%w: %s", kerr.ErrConflict, name)
	}
	v := &domain.Vocabulary{Id: m.nextId("vocab"), Name: name, Terms: []domain.Term{}}
	m.vocabs[name] = v
	return *v, nil
}

func (m *memActions) CreateTerm(_ context.Context, _ domain.Actor, vocabularyId string, term string) (domain.Term, error) {
	m.mux.Lock()
	m.Calls = append(m.Calls, "tag_create "+term)
	hook := m.BeforeTerm
	m.mux.Unlock()

	m.mux.Lock()
	v := m.byId(vocabularyId)
	m.mux.Unlock()
	if v == nil {
		return domain.Term{}, fmt.Errorf("%w: %s", kerr.ErrMissing, vocabularyId)
	}
	if hook != nil {
		if err := hook(v.Name, term); err != nil {
			return domain.Term{}, err
		}
	}

	m.mux.Lock()
	defer m.mux.Unlock()
	for _, t := range v.Terms {
		if t.Name == term {
			return domain.Term{}, fmt.Errorf("%w: %s", kerr.ErrConflict, term)
		}
	}
	t := domain.Term{Id: m.nextId("term"), Name: term, VocabularyId: v.Id}
	v.Terms = append(v.Terms, t)
	return t, nil
}

func (m *memActions) ListTerms(_ context.Context, _ domain.Actor, vocabularyId string) ([]domain.Term, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.Calls = append(m.Calls, "tag_list "+vocabularyId)
	v := m.byId(vocabularyId)
	if v == nil {
		return nil, fmt.Errorf("%w: %s", kerr.ErrMissing, vocabularyId)
	}
	return append([]domain.Term{}, v.Terms...), nil
}
