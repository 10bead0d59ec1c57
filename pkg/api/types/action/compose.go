package action

import "github.com/opst/vocabfab/pkg/domain"

func ComposeTag(t domain.Term) Tag {
	return Tag{Id: t.Id, Name: t.Name, VocabularyId: t.VocabularyId, DisplayName: t.Name}
}

func ComposeVocabulary(v domain.Vocabulary) Vocabulary {
	tags := make([]Tag, 0, len(v.Terms))
	for _, t := range v.Terms {
		tags = append(tags, ComposeTag(t))
	}
	return Vocabulary{Id: v.Id, Name: v.Name, Tags: tags}
}

func (t Tag) Term() domain.Term {
	return domain.Term{Id: t.Id, Name: t.Name, VocabularyId: t.VocabularyId}
}

func (v Vocabulary) Vocabulary() domain.Vocabulary {
	terms := make([]domain.Term, 0, len(v.Tags))
	for _, t := range v.Tags {
		terms = append(terms, t.Term())
	}
	return domain.Vocabulary{Id: v.Id, Name: v.Name, Terms: terms}
}
