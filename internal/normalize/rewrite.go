package normalize

import (
	"github.com/rdswitchboard/doinorm/internal/doi"
	"github.com/rdswitchboard/doinorm/internal/prop"
)

// Rewrite is the outcome of normalizing one classified "doi" value.
type Rewrite struct {
	// Value is the value to write. Nil when Changed is false.
	Value prop.Value
	// Changed reports whether Value differs from the stored value.
	Changed bool
	// Unmatched counts strings (the scalar, or array elements) in which no
	// DOI was found and which were left as stored.
	Unmatched int
}

// Plan computes the rewrite for a classified value. Absent and Other shapes
// are never rewritten.
func Plan(shape doi.Shape) Rewrite {
	switch shape.Kind {
	case doi.KindScalar:
		n, ok := doi.Normalize(shape.Scalar)
		if !ok {
			return Rewrite{Unmatched: 1}
		}
		if n == shape.Scalar {
			return Rewrite{}
		}
		return Rewrite{Value: prop.String(n), Changed: true}

	case doi.KindStrings:
		var (
			out     = make([]string, len(shape.Strings))
			changed bool
			missed  int
		)
		for i, s := range shape.Strings {
			n, ok := doi.Normalize(s)
			if !ok {
				out[i] = s
				missed++
				continue
			}
			out[i] = n
			if n != s {
				changed = true
			}
		}
		if !changed {
			return Rewrite{Unmatched: missed}
		}
		return Rewrite{Value: prop.Strings(out...), Changed: true, Unmatched: missed}

	case doi.KindAbsent, doi.KindOther:
		return Rewrite{}

	default:
		return Rewrite{}
	}
}
