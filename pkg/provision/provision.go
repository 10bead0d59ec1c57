// Package provision ensures Vocabularies and their Terms exist exactly once.
//
// A Provisioner looks a Vocabulary up by name and creates it (with its Terms)
// only when it is absent. Running it again against the same store performs
// no writes.
//
// The Provisioner does not talk to the store directly. It calls Actions,
// which is implemented both in-process (package actions) and over HTTP
// (the vocab CLI's rest client), so both take the same path.
package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"

	"github.com/opst/vocabfab/pkg/domain"
	kerr "github.com/opst/vocabfab/pkg/domain/errors"
)

// Actions is a set of actions which Provisioner calls.
//
// Every call carries the acting principal explicitly.
type Actions interface {
	// ShowVocabulary looks a Vocabulary up by its name.
	//
	// # Returns
	//
	// - domain.Lookup: Found with the Vocabulary, or Absent.
	//
	// - error: any failure other than absence, like connection or authorization errors.
	ShowVocabulary(ctx context.Context, actor domain.Actor, name string) (domain.Lookup, error)

	// CreateVocabulary creates an empty Vocabulary.
	//
	// # Returns
	//
	// - error: wraps ErrConflict when the name is already in use.
	CreateVocabulary(ctx context.Context, actor domain.Actor, name string) (domain.Vocabulary, error)

	// CreateTerm adds a Term to the Vocabulary.
	//
	// # Returns
	//
	// - error: wraps ErrConflict when the Term is already in the Vocabulary.
	CreateTerm(ctx context.Context, actor domain.Actor, vocabularyId string, term string) (domain.Term, error)

	// ListTerms returns Terms in the Vocabulary.
	ListTerms(ctx context.Context, actor domain.Actor, vocabularyId string) ([]domain.Term, error)
}

// Locker serializes critical sections by name.
type Locker interface {
	Lock(ctx context.Context, name string, criticalSection func(context.Context) error) error
}

// Spec is what a Vocabulary should be.
type Spec struct {
	Name  string   `json:"name" yaml:"name"`
	Terms []string `json:"terms" yaml:"terms"`
}

type State int

const (
	// The Vocabulary has been there. Nothing is written.
	Exists State = iota + 1

	// The Vocabulary is created with its Terms.
	Created

	// The Vocabulary has been there, and missing Terms are added.
	Reconciled
)

func (s State) String() string {
	switch s {
	case Exists:
		return "exists"
	case Created:
		return "created"
	case Reconciled:
		return "reconciled"
	default:
		return "unchecked"
	}
}

// Outcome is a result of Ensure.
type Outcome struct {
	State State

	// Vocabulary as Ensure knows at last.
	//
	// When Ensure fails halfway, it has Terms created until the failure.
	Vocabulary domain.Vocabulary

	// Terms created by Ensure, in the order of creation.
	CreatedTerms []string
}

// Result is an Outcome of a Spec in EnsureAll.
type Result struct {
	Spec    Spec
	Outcome Outcome
	Err     error
}

type Provisioner struct {
	logger *log.Logger
	policy Policy
	locker Locker
}

type Option func(*Provisioner) *Provisioner

// WithPolicy sets how to treat Vocabularies which already exist.
//
// StrictNoop is the default.
func WithPolicy(p Policy) Option {
	return func(pr *Provisioner) *Provisioner {
		pr.policy = p
		return pr
	}
}

// WithLock makes Ensure run while holding the lock named after the Vocabulary.
//
// Provisioners sharing a Locker never check-then-create the same Vocabulary at once.
func WithLock(locker Locker) Option {
	return func(pr *Provisioner) *Provisioner {
		pr.locker = locker
		return pr
	}
}

// New creates a Provisioner.
//
// When logger is nil, nothing is logged.
func New(logger *log.Logger, options ...Option) *Provisioner {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	pr := &Provisioner{logger: logger, policy: StrictNoop}
	for _, o := range options {
		pr = o(pr)
	}
	return pr
}

// LockName is the name of the lock which Ensure takes for the Vocabulary.
func LockName(vocabulary string) string {
	return "vocabulary/" + vocabulary
}

// Ensure makes the Vocabulary described by spec exist.
//
// Duplicated terms in spec are dropped, keeping the first occurrence.
//
// # Returns
//
// - Outcome: what Ensure has done.
//
// - error: an invalid spec (ErrInvalid) or a failure from actions.
// Errors from actions are wrapped, so errors.Is works for them.
func (pr *Provisioner) Ensure(ctx context.Context, actions Actions, actor domain.Actor, spec Spec) (Outcome, error) {
	if err := domain.ValidateVocabularyName(spec.Name); err != nil {
		return Outcome{}, err
	}
	terms, err := domain.NormalizeTerms(spec.Terms)
	if err != nil {
		return Outcome{}, fmt.Errorf("vocabulary %q: %w", spec.Name, err)
	}

	if pr.locker == nil {
		return pr.ensure(ctx, actions, actor, spec.Name, terms)
	}

	var outcome Outcome
	err = pr.locker.Lock(ctx, LockName(spec.Name), func(ctx context.Context) error {
		o, err := pr.ensure(ctx, actions, actor, spec.Name, terms)
		outcome = o
		return err
	})
	return outcome, err
}

func (pr *Provisioner) ensure(ctx context.Context, actions Actions, actor domain.Actor, name string, terms []string) (Outcome, error) {
	lookup, err := actions.ShowVocabulary(ctx, actor, name)
	if err != nil {
		return Outcome{}, fmt.Errorf("looking up vocabulary %q: %w", name, err)
	}
	if vocab, ok := lookup.Get(); ok {
		pr.logger.Printf("vocabulary %q already exists, skipping.", name)
		return pr.existing(ctx, actions, actor, vocab, terms)
	}

	pr.logger.Printf("creating vocabulary %q", name)
	vocab, err := actions.CreateVocabulary(ctx, actor, name)
	if errors.Is(err, kerr.ErrConflict) {
		// someone else has created it since our lookup.
		pr.logger.Printf("vocabulary %q has been created concurrently. use it.", name)
		lookup, lerr := actions.ShowVocabulary(ctx, actor, name)
		if lerr != nil {
			return Outcome{}, fmt.Errorf("looking up vocabulary %q: %w", name, lerr)
		}
		vocab, ok := lookup.Get()
		if !ok {
			return Outcome{}, fmt.Errorf("creating vocabulary %q: %w", name, err)
		}
		return pr.existing(ctx, actions, actor, vocab, terms)
	} else if err != nil {
		return Outcome{}, fmt.Errorf("creating vocabulary %q: %w", name, err)
	}

	outcome := Outcome{State: Created, Vocabulary: vocab}
	if err := pr.addTerms(ctx, actions, actor, &outcome, terms); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// existing handles a Vocabulary which has been there, by the policy.
func (pr *Provisioner) existing(ctx context.Context, actions Actions, actor domain.Actor, vocab domain.Vocabulary, terms []string) (Outcome, error) {
	outcome := Outcome{State: Exists, Vocabulary: vocab}
	if pr.policy != ReconcileTerms {
		return outcome, nil
	}

	current, err := actions.ListTerms(ctx, actor, vocab.Id)
	if err != nil {
		return outcome, fmt.Errorf("listing terms of vocabulary %q: %w", vocab.Name, err)
	}
	outcome.Vocabulary.Terms = current

	known := domain.Vocabulary{Terms: current}.TermNames()
	missing := slices.DeleteFunc(slices.Clone(terms), func(t string) bool {
		return slices.Contains(known, t)
	})
	if len(missing) == 0 {
		return outcome, nil
	}

	pr.logger.Printf("vocabulary %q lacks %d term(s). adding them.", vocab.Name, len(missing))
	if err := pr.addTerms(ctx, actions, actor, &outcome, missing); err != nil {
		return outcome, err
	}
	if 0 < len(outcome.CreatedTerms) {
		outcome.State = Reconciled
	}
	return outcome, nil
}

func (pr *Provisioner) addTerms(ctx context.Context, actions Actions, actor domain.Actor, outcome *Outcome, terms []string) error {
	vocab := &outcome.Vocabulary
	for _, t := range terms {
		pr.logger.Printf("adding term %q to vocabulary %q", t, vocab.Name)
		term, err := actions.CreateTerm(ctx, actor, vocab.Id, t)
		if errors.Is(err, kerr.ErrConflict) {
			pr.logger.Printf("term %q is already in vocabulary %q.", t, vocab.Name)
			continue
		} else if err != nil {
			return fmt.Errorf("adding term %q to vocabulary %q: %w", t, vocab.Name, err)
		}
		vocab.Terms = append(vocab.Terms, term)
		outcome.CreatedTerms = append(outcome.CreatedTerms, t)
	}
	return nil
}

// EnsureAll Ensures each spec in order.
//
// A failure on a spec does not stop others.
//
// # Returns
//
// - []Result: for each spec, in the same order.
//
// - error: joined errors of failed specs. nil when all succeeded.
func (pr *Provisioner) EnsureAll(ctx context.Context, actions Actions, actor domain.Actor, specs []Spec) ([]Result, error) {
	results := make([]Result, 0, len(specs))
	errs := []error{}
	for _, s := range specs {
		outcome, err := pr.Ensure(ctx, actions, actor, s)
		results = append(results, Result{Spec: s, Outcome: outcome, Err: err})
		if err != nil {
			pr.logger.Printf("failed to provision vocabulary %q: %v", s.Name, err)
			errs = append(errs, err)
			continue
		}
		pr.logger.Printf("vocabulary %q: %s", s.Name, outcome.State)
	}
	return results, errors.Join(errs...)
}
