package common

import (
	"fmt"
	"io"

	"github.com/opst/vocabfab/pkg/provision"
)

// WriteResults writes one line per vocabulary, telling what was done to it.
func WriteResults(w io.Writer, results []provision.Result) {
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\tfailed\t%s\n", r.Spec.Name, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d term(s) created\n", r.Spec.Name, r.Outcome.State, len(r.Outcome.CreatedTerms))
	}
}
