package domain

// domain package contains the Domain Models of vocabfab.
//
// `domain/vocabfab` exposes the root object.
// Entrypoints of applications should instantiate it and use it to reach the stores.
//
// `domain/ENTITY.go` has entities and the rules over them.
// For example, `domain/vocabulary.go` contains `Vocabulary` and `Term`.
//
// `domain/ENTITY/db` contains the interface to persist the entity,
// and `domain/ENTITY/db/postgres` implements it on PostgreSQL.
//
// # Entities
//
// - `vocabulary`: a named, closed set of controlled Terms usable to annotate catalog entries.
// A Term belongs to exactly one Vocabulary, and is unique in it.
//
// - `keychain`: named locks on the database. Provisioning of a Vocabulary takes one
// so that processes starting together do not race.
//
// - `schema`: version of the database schema.
