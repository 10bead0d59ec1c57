package mocks

import (
	"context"
	"errors"

	"github.com/opst/vocabfab/pkg/domain"
	kdbmock "github.com/opst/vocabfab/pkg/domain/internal/db/mock"
	kdb "github.com/opst/vocabfab/pkg/domain/vocabulary/db"
)

type CreateArgs struct {
	Name  string
	Terms []string
}

type CreateTermArgs struct {
	VocabularyId string
	Name         string
}

type DeleteTermArgs struct {
	VocabularyId string
	NameOrId     string
}

type VocabularyInterface struct {
	Impl struct {
		Find       func(ctx context.Context, nameOrId string) (domain.Lookup, error)
		List       func(ctx context.Context) ([]domain.Vocabulary, error)
		Create     func(ctx context.Context, name string, terms []string) (domain.Vocabulary, error)
		CreateTerm func(ctx context.Context, vocabularyId string, name string) (domain.Term, error)
		Terms      func(ctx context.Context, vocabularyId string) ([]domain.Term, error)
		DeleteTerm func(ctx context.Context, vocabularyId string, nameOrId string) error
		Delete     func(ctx context.Context, vocabularyId string) error
	}
	Calls struct {
		Find       kdbmock.CallLog[string]
		List       kdbmock.CallLog[struct{}]
		Create     kdbmock.CallLog[CreateArgs]
		CreateTerm kdbmock.CallLog[CreateTermArgs]
		Terms      kdbmock.CallLog[string]
		DeleteTerm kdbmock.CallLog[DeleteTermArgs]
		Delete     kdbmock.CallLog[string]
	}
}

var _ kdb.VocabularyInterface = &VocabularyInterface{}

func NewVocabularyInterface() *VocabularyInterface {
	return &VocabularyInterface{}
}

func (m *VocabularyInterface) Find(ctx context.Context, nameOrId string) (domain.Lookup, error) {
	m.Calls.Find = append(m.Calls.Find, nameOrId)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, nameOrId)
	}

	panic(errors.New("should not be called"))
}

func (m *VocabularyInterface) List(ctx context.Context) ([]domain.Vocabulary, error) {
	m.Calls.List = append(m.Calls.List, struct{}{})
	if m.Impl.List != nil {
		return m.Impl.List(ctx)
	}

	panic(errors.New("should not be called"))
}

func (m *VocabularyInterface) Create(ctx context.Context, name string, terms []string) (domain.Vocabulary, error) {
	m.Calls.Create = append(m.Calls.Create, CreateArgs{Name: name, Terms: terms})
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, name, terms)
	}

	panic(errors.New("should not be called"))
}

func (m *VocabularyInterface) CreateTerm(ctx context.Context, vocabularyId string, name string) (domain.Term, error) {
	m.Calls.CreateTerm = append(m.Calls.CreateTerm, CreateTermArgs{VocabularyId: vocabularyId, Name: name})
	if m.Impl.CreateTerm != nil {
		return m.Impl.CreateTerm(ctx, vocabularyId, name)
	}

	panic(errors.New("should not be called"))
}

func (m *VocabularyInterface) Terms(ctx context.Context, vocabularyId string) ([]domain.Term, error) {
	m.Calls.Terms = append(m.Calls.Terms, vocabularyId)
	if m.Impl.Terms != nil {
		return m.Impl.Terms(ctx, vocabularyId)
	}

	panic(errors.New("should not be called"))
}

func (m *VocabularyInterface) DeleteTerm(ctx context.Context, vocabularyId string, nameOrId string) error {
	m.Calls.DeleteTerm = append(m.Calls.DeleteTerm, DeleteTermArgs{VocabularyId: vocabularyId, NameOrId: nameOrId})
	if m.Impl.DeleteTerm != nil {
		return m.Impl.DeleteTerm(ctx, vocabularyId, nameOrId)
	}

	panic(errors.New("should not be called"))
}

func (m *VocabularyInterface) Delete(ctx context.Context, vocabularyId string) error {
	m.Calls.Delete = append(m.Calls.Delete, vocabularyId)
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, vocabularyId)
	}

	panic(errors.New("should not be called"))
}
