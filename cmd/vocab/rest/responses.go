package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	cerr "github.com/opst/vocabfab/cmd/vocab/errors"
	"github.com/opst/vocabfab/pkg/api/types/action"
	kerr "github.com/opst/vocabfab/pkg/domain/errors"
)

// sentinelOf tells which domain error the error envelope means.
//
// It returns nil for errors having no domain meaning.
func sentinelOf(e *action.Error) error {
	switch e.Type {
	case action.NotFoundError:
		return kerr.ErrMissing
	case action.AuthorizationError:
		return kerr.ErrNotAuthorized
	case action.ValidationError:
		if e.Conflicted() {
			return kerr.ErrConflict
		}
		return kerr.ErrInvalid
	}
	return nil
}

// unmarshalEnvelope reads the result of an action from the response.
//
// # Returns
//
// - T: result in the envelope.
//
// - error: CUIError. When the action has failed,
// it wraps ErrMissing, ErrConflict, ErrInvalid or ErrNotAuthorized as its cause,
// so errors.Is works.
func unmarshalEnvelope[T any](resp *http.Response, name string) (T, error) {
	zero := *new(T)
	class, ok := statusClass(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, cerr.New(fmt.Sprintf("%s: cannot read server message: %s", name, err), err)
	}

	env := action.Response[T]{}
	if err := json.Unmarshal(body, &env); err != nil {
		return zero, cerr.New(
			fmt.Sprintf("%s: %s (status code = %d)", name, class, resp.StatusCode), err,
		).WithDetail(string(body))
	}

	if env.Success && ok {
		return env.Result, nil
	}

	if env.Error == nil {
		return zero, cerr.New(
			fmt.Sprintf("%s: %s (status code = %d)", name, class, resp.StatusCode), nil,
		).WithDetail(string(body))
	}

	var cause error = env.Error
	if s := sentinelOf(env.Error); s != nil {
		cause = fmt.Errorf("%w: %w", s, env.Error)
	}
	return zero, cerr.New(fmt.Sprintf("%s: %s", name, env.Error.Error()), cause).
		WithHint(fmt.Sprintf("status code = %d, help: %s", resp.StatusCode, env.Help))
}
