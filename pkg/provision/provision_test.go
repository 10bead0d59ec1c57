package provision_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/opst/vocabfab/pkg/domain"
	kerr "github.com/opst/vocabfab/pkg/domain/errors"
	kcmock "github.com/opst/vocabfab/pkg/domain/keychain/db/mock"
	"github.com/opst/vocabfab/pkg/provision"
	"github.com/opst/vocabfab/pkg/utils/cmp"
	"github.com/opst/vocabfab/pkg/utils/try"
)

var sysadmin = domain.Actor{Name: "site-user", Sysadmin: true}

func TestEnsure_EmptyStore(t *testing.T) {
	ctx := context.Background()
	actions := newMemActions()
	logs := new(bytes.Buffer)
	testee := provision.New(log.New(logs, "", 0))

	outcome := try.To(testee.Ensure(
		ctx, actions, sysadmin, provision.Spec{Name: "genre", Terms: []string{"jazz", "soul"}},
	)).OrFatal(t)

	if outcome.State != provision.Created {
		t.Errorf("state: %s", outcome.State)
	}
	if !cmp.SliceEq(outcome.CreatedTerms, []string{"jazz", "soul"}) {
		t.Errorf("created terms: %v", outcome.CreatedTerms)
	}
	if !cmp.SliceEq(outcome.Vocabulary.TermNames(), []string{"jazz", "soul"}) {
		t.Errorf("vocabulary terms: %v", outcome.Vocabulary.TermNames())
	}

	expectedCalls := []string{
		"vocabulary_show genre",
		"vocabulary_create genre",
		"tag_create jazz",
		"tag_create soul",
	}
	if !cmp.SliceEq(actions.Calls, expectedCalls) {
		t.Errorf("calls:\n===actual===\n%v\n===expected===\n%v", actions.Calls, expectedCalls)
	}

	for _, line := range []string{
		`creating vocabulary "genre"`,
		`adding term "jazz" to vocabulary "genre"`,
		`adding term "soul" to vocabulary "genre"`,
	} {
		if !strings.Contains(logs.String(), line) {
			t.Errorf("log does not contain %q:\n%s", line, logs.String())
		}
	}
}

func TestEnsure_Idempotence(t *testing.T) {
	ctx := context.Background()
	actions := newMemActions()
	testee := provision.New(nil)
	spec := provision.Spec{Name: "genre", Terms: []string{"jazz", "soul"}}

	first := try.To(testee.Ensure(ctx, actions, sysadmin, spec)).OrFatal(t)
	writesAfterFirst := actions.Writes()

	second := try.To(testee.Ensure(ctx, actions, sysadmin, spec)).OrFatal(t)

	if second.State != provision.Exists {
		t.Errorf("state of second call: %s", second.State)
	}
	if writes := actions.Writes() - writesAfterFirst; writes != 0 {
		t.Errorf("second call performs %d writes", writes)
	}
	if !cmp.SliceEq(actions.Names(), []string{"genre"}) {
		t.Errorf("vocabularies: %v", actions.Names())
	}
	v, _ := actions.Get("genre")
	if !cmp.SliceEq(v.TermNames(), []string{"jazz", "soul"}) {
		t.Errorf("terms: %v", v.TermNames())
	}
	if !second.Vocabulary.Equal(first.Vocabulary) {
		t.Errorf("vocabulary:\n===first===\n%+v\n===second===\n%+v", first.Vocabulary, second.Vocabulary)
	}
}

func TestEnsure_ExistingVocabulary(t *testing.T) {
	type When struct {
		Policy   provision.Policy
		Existing []string
		Terms    []string
	}
	type Then struct {
		State        provision.State
		Calls        []string
		CreatedTerms []string
		StoredTerms  []string
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			ctx := context.Background()
			actions := newMemActions()
			existing := actions.put("genre", when.Existing...)
			logs := new(bytes.Buffer)
			testee := provision.New(log.New(logs, "", 0), provision.WithPolicy(when.Policy))

			outcome := try.To(testee.Ensure(
				ctx, actions, sysadmin, provision.Spec{Name: "genre", Terms: when.Terms},
			)).OrFatal(t)

			if outcome.State != then.State {
				t.Errorf("state: actual = %s, expected = %s", outcome.State, then.State)
			}
			if outcome.Vocabulary.Id != existing.Id {
				t.Errorf("vocabulary: %+v", outcome.Vocabulary)
			}
			if !cmp.SliceEq(outcome.CreatedTerms, then.CreatedTerms) {
				t.Errorf("created terms: actual = %v, expected = %v", outcome.CreatedTerms, then.CreatedTerms)
			}

			calls := make([]string, 0, len(actions.Calls))
			for _, c := range actions.Calls {
				calls = append(calls, strings.ReplaceAll(c, existing.Id, "<id>"))
			}
			if !cmp.SliceEq(calls, then.Calls) {
				t.Errorf("calls:\n===actual===\n%v\n===expected===\n%v", calls, then.Calls)
			}

			v, _ := actions.Get("genre")
			if !cmp.SliceEq(v.TermNames(), then.StoredTerms) {
				t.Errorf("stored terms: actual = %v, expected = %v", v.TermNames(), then.StoredTerms)
			}
			if !strings.Contains(logs.String(), `vocabulary "genre" already exists`) {
				t.Errorf("log does not tell it exists:\n%s", logs.String())
			}
		}
	}

	t.Run("strict-noop performs no writes even when terms are missing", theory(
		When{
			Policy:   provision.StrictNoop,
			Existing: []string{"jazz"},
			Terms:    []string{"jazz", "soul"},
		},
		Then{
			State:        provision.Exists,
			Calls:        []string{"vocabulary_show genre"},
			CreatedTerms: nil,
			StoredTerms:  []string{"jazz"},
		},
	))

	t.Run("reconcile-terms adds missing terms in order, and keeps extra ones", theory(
		When{
			Policy:   provision.ReconcileTerms,
			Existing: []string{"jazz", "blues"},
			Terms:    []string{"soul", "jazz", "funk"},
		},
		Then{
			State: provision.Reconciled,
			Calls: []string{
				"vocabulary_show genre",
				"tag_list <id>",
				"tag_create soul",
				"tag_create funk",
			},
			CreatedTerms: []string{"soul", "funk"},
			StoredTerms:  []string{"jazz", "blues", "soul", "funk"},
		},
	))

	t.Run("reconcile-terms writes nothing when no terms are missing", theory(
		When{
			Policy:   provision.ReconcileTerms,
			Existing: []string{"jazz", "soul"},
			Terms:    []string{"soul"},
		},
		Then{
			State:        provision.Exists,
			Calls:        []string{"vocabulary_show genre", "tag_list <id>"},
			CreatedTerms: nil,
			StoredTerms:  []string{"jazz", "soul"},
		},
	))
}

func TestEnsure_DuplicatedTermsAreDropped(t *testing.T) {
	ctx := context.Background()
	actions := newMemActions()
	testee := provision.New(nil)

	outcome := try.To(testee.Ensure(
		ctx, actions, sysadmin,
		provision.Spec{Name: "genre", Terms: []string{"soul", "jazz", "soul", "jazz", "funk"}},
	)).OrFatal(t)

	if !cmp.SliceEq(outcome.CreatedTerms, []string{"soul", "jazz", "funk"}) {
		t.Errorf("created terms: %v", outcome.CreatedTerms)
	}
}

func TestEnsure_InvalidSpec(t *testing.T) {
	for name, spec := range map[string]provision.Spec{
		"empty name":           {Name: "", Terms: []string{"jazz"}},
		"too short name":       {Name: "g", Terms: []string{"jazz"}},
		"too long name":        {Name: strings.Repeat("g", 101)},
		"empty term":           {Name: "genre", Terms: []string{"jazz", ""}},
		"term with bad symbol": {Name: "genre", Terms: []string{"r&b"}},
	} {
		t.Run(name, func(t *testing.T) {
			actions := newMemActions()
			testee := provision.New(nil)

			_, err := testee.Ensure(context.Background(), actions, sysadmin, spec)
			if !errors.Is(err, kerr.ErrInvalid) {
				t.Errorf("unexpected error: %v", err)
			}
			if len(actions.Calls) != 0 {
				t.Errorf("unexpected calls: %v", actions.Calls)
			}
		})
	}
}

func TestEnsure_Failures(t *testing.T) {
	t.Run("lookup failure other than absence propagates, and nothing is written", func(t *testing.T) {
		actions := newMemActions()
		expectedErr := errors.New("connection refused")
		actions.BeforeShow = func(string) error { return expectedErr }
		logs := new(bytes.Buffer)
		testee := provision.New(log.New(logs, "", 0))

		_, err := testee.Ensure(context.Background(), actions, sysadmin, provision.Spec{Name: "genre"})
		if !errors.Is(err, expectedErr) {
			t.Errorf("unexpected error: %v", err)
		}
		if actions.Writes() != 0 {
			t.Errorf("unexpected calls: %v", actions.Calls)
		}
	})

	t.Run("failure on creating vocabulary is returned", func(t *testing.T) {
		actions := newMemActions()
		expectedErr := errors.New("not authorized")
		actions.BeforeCreate = func(string) error { return expectedErr }
		testee := provision.New(nil)

		_, err := testee.Ensure(
			context.Background(), actions, sysadmin,
			provision.Spec{Name: "genre", Terms: []string{"jazz"}},
		)
		if !errors.Is(err, expectedErr) {
			t.Errorf("unexpected error: %v", err)
		}
		if !cmp.SliceEq(actions.Calls, []string{"vocabulary_show genre", "vocabulary_create genre"}) {
			t.Errorf("unexpected calls: %v", actions.Calls)
		}
	})

	t.Run("failure on creating term stops the invocation", func(t *testing.T) {
		actions := newMemActions()
		expectedErr := errors.New("fake")
		actions.BeforeTerm = func(_ string, term string) error {
			if term == "soul" {
				return expectedErr
			}
			return nil
		}
		testee := provision.New(nil)

		outcome, err := testee.Ensure(
			context.Background(), actions, sysadmin,
			provision.Spec{Name: "genre", Terms: []string{"jazz", "soul", "funk"}},
		)
		if !errors.Is(err, expectedErr) {
			t.Errorf("unexpected error: %v", err)
		}
		if !cmp.SliceEq(outcome.CreatedTerms, []string{"jazz"}) {
			t.Errorf("created terms: %v", outcome.CreatedTerms)
		}
		for _, c := range actions.Calls {
			if c == "tag_create funk" {
				t.Errorf("term after the failure is created")
			}
		}
	})
}

func TestEnsure_Race(t *testing.T) {
	t.Run("when vocabulary is created by others after lookup, it is used as existing one", func(t *testing.T) {
		actions := newMemActions()
		actions.BeforeCreate = func(name string) error {
			actions.put(name, "jazz")
			return nil
		}
		logs := new(bytes.Buffer)
		testee := provision.New(log.New(logs, "", 0), provision.WithPolicy(provision.ReconcileTerms))

		outcome := try.To(testee.Ensure(
			context.Background(), actions, sysadmin,
			provision.Spec{Name: "genre", Terms: []string{"jazz", "soul"}},
		)).OrFatal(t)

		if outcome.State != provision.Reconciled {
			t.Errorf("state: %s", outcome.State)
		}
		v, _ := actions.Get("genre")
		if !cmp.SliceEq(v.TermNames(), []string{"jazz", "soul"}) {
			t.Errorf("terms: %v", v.TermNames())
		}
		if !strings.Contains(logs.String(), "created concurrently") {
			t.Errorf("log does not tell the race:\n%s", logs.String())
		}
	})

	t.Run("term created by others is counted as present", func(t *testing.T) {
		actions := newMemActions()
		actions.BeforeTerm = func(vocab string, term string) error {
			if term != "jazz" {
				return nil
			}
			actions.mux.Lock()
			defer actions.mux.Unlock()
			v := actions.vocabs[vocab]
			v.Terms = append(v.Terms, domain.Term{Id: "other", Name: "jazz", VocabularyId: v.Id})
			return nil
		}
		testee := provision.New(nil)

		outcome := try.To(testee.Ensure(
			context.Background(), actions, sysadmin,
			provision.Spec{Name: "genre", Terms: []string{"jazz", "soul"}},
		)).OrFatal(t)

		if outcome.State != provision.Created {
			t.Errorf("state: %s", outcome.State)
		}
		if !cmp.SliceEq(outcome.CreatedTerms, []string{"soul"}) {
			t.Errorf("created terms: %v", outcome.CreatedTerms)
		}
		v, _ := actions.Get("genre")
		if !cmp.SliceEq(v.TermNames(), []string{"jazz", "soul"}) {
			t.Errorf("terms: %v", v.TermNames())
		}
	})

	t.Run("concurrent Ensure with lock creates vocabulary once", func(t *testing.T) {
		actions := newMemActions()
		keychain := kcmock.New(t)
		testee := provision.New(nil, provision.WithLock(keychain))

		wg := sync.WaitGroup{}
		states := make([]provision.State, 5)
		for nth := range states {
			wg.Add(1)
			go func() {
				defer wg.Done()
				outcome, err := testee.Ensure(
					context.Background(), actions, sysadmin,
					provision.Spec{Name: "genre", Terms: []string{"jazz", "soul"}},
				)
				if err != nil {
					t.Error(err)
				}
				states[nth] = outcome.State
			}()
		}
		wg.Wait()

		created := 0
		for _, s := range states {
			if s == provision.Created {
				created += 1
			}
		}
		if created != 1 {
			t.Errorf("vocabulary is created %d times: %v", created, states)
		}

		creations := 0
		for _, c := range actions.Calls {
			if c == "vocabulary_create genre" {
				creations += 1
			}
		}
		if creations != 1 {
			t.Errorf("vocabulary_create is called %d times", creations)
		}
		for _, name := range keychain.Calls.Lock {
			if name != provision.LockName("genre") {
				t.Errorf("unexpected lock: %s", name)
			}
		}
	})

	t.Run("Lock failure is returned", func(t *testing.T) {
		actions := newMemActions()
		keychain := kcmock.New(t)
		expectedErr := errors.New("fake")
		keychain.Impl.Lock = func(context.Context, string, func(context.Context) error) error {
			return expectedErr
		}
		testee := provision.New(nil, provision.WithLock(keychain))

		_, err := testee.Ensure(context.Background(), actions, sysadmin, provision.Spec{Name: "genre"})
		if !errors.Is(err, expectedErr) {
			t.Errorf("unexpected error: %v", err)
		}
		if len(actions.Calls) != 0 {
			t.Errorf("unexpected calls: %v", actions.Calls)
		}
	})
}

func TestEnsureAll(t *testing.T) {
	specs := []provision.Spec{
		{Name: "genre", Terms: []string{"jazz", "soul"}},
		{Name: "composer", Terms: []string{"bach"}},
	}

	t.Run("all vocabularies exist afterward, regardless of the order", func(t *testing.T) {
		for _, order := range [][]provision.Spec{
			{specs[0], specs[1]},
			{specs[1], specs[0]},
		} {
			actions := newMemActions()
			testee := provision.New(nil)

			results := try.To(testee.EnsureAll(context.Background(), actions, sysadmin, order)).OrFatal(t)

			if !cmp.SliceEq(actions.Names(), []string{"composer", "genre"}) {
				t.Errorf("vocabularies: %v", actions.Names())
			}
			for nth, r := range results {
				if r.Spec.Name != order[nth].Name || r.Outcome.State != provision.Created || r.Err != nil {
					t.Errorf("result #%d: %+v", nth, r)
				}
			}
		}
	})

	t.Run("failure of one does not block others", func(t *testing.T) {
		actions := newMemActions()
		expectedErr := errors.New("fake")
		actions.BeforeCreate = func(name string) error {
			if name == "genre" {
				return expectedErr
			}
			return nil
		}
		logs := new(bytes.Buffer)
		testee := provision.New(log.New(logs, "", 0))

		results, err := testee.EnsureAll(context.Background(), actions, sysadmin, specs)
		if !errors.Is(err, expectedErr) {
			t.Errorf("unexpected error: %v", err)
		}
		if !cmp.SliceEq(actions.Names(), []string{"composer"}) {
			t.Errorf("vocabularies: %v", actions.Names())
		}
		if len(results) != 2 {
			t.Fatalf("results: %+v", results)
		}
		if !errors.Is(results[0].Err, expectedErr) {
			t.Errorf("result of genre: %+v", results[0])
		}
		if results[1].Err != nil || results[1].Outcome.State != provision.Created {
			t.Errorf("result of composer: %+v", results[1])
		}
		if !strings.Contains(logs.String(), `failed to provision vocabulary "genre"`) {
			t.Errorf("log does not tell the failure:\n%s", logs.String())
		}
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		actions := newMemActions()
		testee := provision.New(nil)

		try.To(testee.EnsureAll(context.Background(), actions, sysadmin, provision.Examples())).OrFatal(t)
		writes := actions.Writes()
		results := try.To(testee.EnsureAll(context.Background(), actions, sysadmin, provision.Examples())).OrFatal(t)

		if actions.Writes() != writes {
			t.Errorf("second run writes")
		}
		for _, r := range results {
			if r.Outcome.State != provision.Exists {
				t.Errorf("%s: %s", r.Spec.Name, r.Outcome.State)
			}
		}
	})
}

func TestParsePolicy(t *testing.T) {
	for given, then := range map[string]provision.Policy{
		"":                provision.StrictNoop,
		"strict-noop":     provision.StrictNoop,
		"reconcile-terms": provision.ReconcileTerms,
	} {
		if actual := try.To(provision.ParsePolicy(given)).OrFatal(t); actual != then {
			t.Errorf("ParsePolicy(%q) = %s, want %s", given, actual, then)
		}
	}

	if _, err := provision.ParsePolicy("remove-extra"); !errors.Is(err, kerr.ErrInvalid) {
		t.Errorf("unexpected error: %v", err)
	}
}
