package try

// Fataler is something which can stop the flow with an error.
//
// *testing.T and *log.Logger are Fatalers.
type Fataler interface {
	Fatal(...any)
}

// Either holds a result of a call returning (T, error).
//
// It is "ok" when the error is nil. Otherwise, the T value is meaningless.
type Either[T any] interface {
	// Get returns the pair as it was given.
	Get() (T, error)

	// OrFatal returns the value when ok.
	//
	// Otherwise, it calls ftl.Fatal(err).
	// When ftl has Helper() (like *testing.T), it is called first.
	OrFatal(ftl Fataler) T

	// OrDefault returns the value when ok, or d when not.
	OrDefault(d T) T
}

// To wraps a (T, error) pair.
//
//	v := try.To(strconv.Atoi("42")).OrFatal(t)
func To[T any](ok T, ng error) Either[T] {
	if ng == nil {
		return tryOk[T]{value: ok}
	}
	return tryNg[T]{err: ng}
}

// Map converts the value when ok.
func Map[T any, R any](e Either[T], mapper func(T) R) Either[R] {
	val, err := e.Get()
	if err != nil {
		return tryNg[R]{err: err}
	}
	return tryOk[R]{value: mapper(val)}
}

type tryOk[T any] struct {
	value T
}

func (ok tryOk[T]) Get() (T, error) {
	return ok.value, nil
}

func (ok tryOk[T]) OrFatal(Fataler) T {
	return ok.value
}

func (ok tryOk[T]) OrDefault(T) T {
	return ok.value
}

type tryNg[T any] struct {
	err error
}

func (ng tryNg[T]) Get() (T, error) {
	return *new(T), ng.err
}

func (ng tryNg[T]) OrFatal(ftl Fataler) T {
	if hlp, ok := ftl.(interface{ Helper() }); ok {
		hlp.Helper()
	}
	ftl.Fatal(ng.err)
	return *new(T)
}

func (ng tryNg[T]) OrDefault(d T) T {
	return d
}
