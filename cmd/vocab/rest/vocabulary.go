package rest

import (
	"context"
	"errors"
	"net/url"

	"github.com/opst/vocabfab/pkg/actions"
	"github.com/opst/vocabfab/pkg/api/types/action"
	"github.com/opst/vocabfab/pkg/domain"
	kerr "github.com/opst/vocabfab/pkg/domain/errors"
)

func (c *client) ShowVocabulary(ctx context.Context, actor domain.Actor, nameOrId string) (domain.Lookup, error) {
	v, err := get[action.Vocabulary](
		ctx, c, actor, actions.VocabularyShow, url.Values{"id": {nameOrId}},
	)
	if errors.Is(err, kerr.ErrMissing) {
		return domain.Absent(), nil
	} else if err != nil {
		return domain.Lookup{}, err
	}
	return domain.Found(v.Vocabulary()), nil
}

func (c *client) ListVocabularies(ctx context.Context, actor domain.Actor) ([]domain.Vocabulary, error) {
	vs, err := get[[]action.Vocabulary](ctx, c, actor, actions.VocabularyList, nil)
	if err != nil {
		return nil, err
	}
	ret := make([]domain.Vocabulary, 0, len(vs))
	for _, v := range vs {
		ret = append(ret, v.Vocabulary())
	}
	return ret, nil
}

func (c *client) CreateVocabulary(ctx context.Context, actor domain.Actor, name string) (domain.Vocabulary, error) {
	v, err := post[action.Vocabulary](
		ctx, c, actor, actions.VocabularyCreate, action.VocabularyCreate{Name: name},
	)
	if err != nil {
		return domain.Vocabulary{}, err
	}
	return v.Vocabulary(), nil
}

func (c *client) DeleteVocabulary(ctx context.Context, actor domain.Actor, nameOrId string) error {
	_, err := post[any](ctx, c, actor, actions.VocabularyDelete, action.Id{Id: nameOrId})
	return err
}

func (c *client) CreateTerm(ctx context.Context, actor domain.Actor, vocabularyId string, term string) (domain.Term, error) {
	t, err := post[action.Tag](
		ctx, c, actor, actions.TagCreate,
		action.TagCreate{Name: term, VocabularyId: vocabularyId},
	)
	if err != nil {
		return domain.Term{}, err
	}
	return t.Term(), nil
}

func (c *client) DeleteTerm(ctx context.Context, actor domain.Actor, vocabularyId string, nameOrId string) error {
	_, err := post[any](
		ctx, c, actor, actions.TagDelete,
		action.TagDelete{Id: nameOrId, VocabularyId: vocabularyId},
	)
	return err
}

func (c *client) ListTerms(ctx context.Context, actor domain.Actor, vocabularyId string) ([]domain.Term, error) {
	tags, err := get[[]action.Tag](
		ctx, c, actor, actions.TagList,
		url.Values{"vocabulary_id": {vocabularyId}, "all_fields": {"true"}},
	)
	if err != nil {
		return nil, err
	}
	ret := make([]domain.Term, 0, len(tags))
	for _, t := range tags {
		ret = append(ret, t.Term())
	}
	return ret, nil
}

func (c *client) GetSiteUser(ctx context.Context, actor domain.Actor) (domain.Actor, error) {
	u, err := get[action.User](ctx, c, actor, actions.GetSiteUser, nil)
	if err != nil {
		return domain.Actor{}, err
	}
	return domain.Actor{Name: u.Name, Sysadmin: u.Sysadmin}, nil
}
