package db

import (
	kkeychain "github.com/opst/vocabfab/pkg/domain/keychain/db"
	kschema "github.com/opst/vocabfab/pkg/domain/schema/db"
	kvocab "github.com/opst/vocabfab/pkg/domain/vocabulary/db"
)

type VocabDatabase interface {
	Vocabulary() kvocab.VocabularyInterface
	Schema() kschema.SchemaInterface
	Keychain() kkeychain.KeychainInterface
	Close() error
}
