package provision

import (
	"fmt"

	kerr "github.com/opst/vocabfab/pkg/domain/errors"
	"gopkg.in/yaml.v3"
)

// Policy tells what Ensure does for a Vocabulary which already exists.
type Policy string

const (
	// StrictNoop leaves existing Vocabularies as they are.
	StrictNoop Policy = "strict-noop"

	// ReconcileTerms adds Terms missing in existing Vocabularies.
	// Terms not in the Spec are never removed.
	ReconcileTerms Policy = "reconcile-terms"
)

// ParsePolicy parses s as a Policy. Empty string means StrictNoop.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case "":
		return StrictNoop, nil
	case StrictNoop, ReconcileTerms:
		return p, nil
	default:
		return "", fmt.Errorf(
			"%w: unknown policy %q (expected: %s or %s)",
			kerr.ErrInvalid, s, StrictNoop, ReconcileTerms,
		)
	}
}

func (p Policy) String() string {
	return string(p)
}

func (p *Policy) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParsePolicy(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
