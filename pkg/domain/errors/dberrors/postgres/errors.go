package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	domerr "github.com/opst/vocabfab/pkg/domain/errors"
)

// requested data is missing.
type Missing struct {
	Table    string
	Identity string
}

var _ error = Missing{}

func (m Missing) Error() string {
	return fmt.Sprintf("%s is not found in %s", m.Identity, m.Table)
}

func (m Missing) Unwrap() error {
	return domerr.ErrMissing
}

// inserting data violates an unique constraint.
type Conflict struct {
	Table      string
	Identity   string
	Constraint string
}

var _ error = Conflict{}

func (c Conflict) Error() string {
	return fmt.Sprintf(
		"%s is already in %s (constraint: %s)",
		c.Identity, c.Table, c.Constraint,
	)
}

func (c Conflict) Unwrap() error {
	return domerr.ErrConflict
}

// Classify converts violations reported by postgres into domain errors.
//
// UniqueViolation becomes Conflict, and ForeignKeyViolation becomes Missing
// (the referenced row is not there).
// Other errors are returned as they are.
func Classify(err error, identity string) error {
	pgerr := new(pgconn.PgError)
	if !errors.As(err, &pgerr) {
		return err
	}
	switch pgerr.Code {
	case pgerrcode.UniqueViolation:
		return Conflict{
			Table: pgerr.TableName, Identity: identity, Constraint: pgerr.ConstraintName,
		}
	case pgerrcode.ForeignKeyViolation:
		return Missing{Table: pgerr.TableName, Identity: identity}
	default:
		return err
	}
}
